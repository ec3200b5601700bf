package host

import (
	"sync"
	"time"
)

// Manual is a host driven entirely by its caller. Frames run only on Step and
// events only on Dispatch, both on the calling goroutine.
type Manual struct {
	reg *registry

	mu     sync.Mutex
	width  int
	height int
	hidden bool
}

var _ Host = (*Manual)(nil)

// NewManual creates a manual host with the given viewport size.
func NewManual(width, height int) *Manual {
	return &Manual{reg: newRegistry(), width: width, height: height}
}

func (m *Manual) RequestFrame(fn FrameFunc) FrameID { return m.reg.requestFrame(fn) }
func (m *Manual) CancelFrame(id FrameID)            { m.reg.cancelFrame(id) }
func (m *Manual) Unlisten(id ListenerID)            { m.reg.unlisten(id) }

func (m *Manual) Listen(kind EventKind, fn func(Event)) ListenerID {
	return m.reg.listen(kind, fn)
}

// Size returns the viewport size.
func (m *Manual) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Step runs the frames pending at call time with timestamp ts and returns
// how many ran. Frames requested during the step wait for the next one.
// Nothing runs while the viewport is hidden.
func (m *Manual) Step(ts time.Duration) int {
	if m.Hidden() {
		return 0
	}
	fns := m.reg.takeFrames()
	for _, fn := range fns {
		fn(ts)
	}
	return len(fns)
}

// Dispatch delivers e to its listeners and returns how many received it.
// Resize and visibility events update the host state first.
func (m *Manual) Dispatch(e Event) int {
	m.mu.Lock()
	switch e.Kind {
	case Resize:
		m.width, m.height = e.Width, e.Height
	case Visibility:
		m.hidden = e.Hidden
	}
	m.mu.Unlock()
	return m.reg.dispatch(e)
}

// Hidden reports whether the viewport is hidden.
func (m *Manual) Hidden() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden
}

// Pending returns the number of pending frame requests.
func (m *Manual) Pending() int { return m.reg.pending() }

// Listeners returns the number of listeners registered for kind.
func (m *Manual) Listeners(kind EventKind) int { return m.reg.count(kind) }

// TotalListeners returns the number of registered listeners of any kind.
func (m *Manual) TotalListeners() int { return m.reg.total() }
