// Package host supplies frame callbacks and viewport events to mounted
// instances.
//
// A host serializes everything it delivers: frame callbacks and event
// listeners never run concurrently with each other.
package host

import (
	"sort"
	"sync"
	"time"
)

// EventKind identifies a viewport event.
type EventKind int

const (
	Resize EventKind = iota
	PointerMove
	Click
	Visibility
)

var eventNames = [...]string{"resize", "pointer-move", "click", "visibility"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is a viewport event.
type Event struct {
	Kind EventKind

	// Resize: the new viewport size.
	Width, Height int

	// PointerMove and Click: normalized device coordinates, X and Y in
	// [-1, 1] with +Y up.
	X, Y float64

	// Visibility: whether the viewport is now hidden.
	Hidden bool
}

// Percent converts the event's normalized coordinates to viewport percent
// with +Y down.
func (e Event) Percent() (float64, float64) {
	return (e.X + 1) * 50, (1 - e.Y) * 50
}

// FrameFunc is a frame callback. ts is the host's monotonic timestamp.
type FrameFunc func(ts time.Duration)

// FrameID identifies a pending frame request.
type FrameID uint64

// ListenerID identifies a registered listener.
type ListenerID uint64

// Host is the viewport and runtime a mounted instance runs in.
type Host interface {
	// RequestFrame schedules fn for the next frame. Requests are one-shot.
	RequestFrame(fn FrameFunc) FrameID
	// CancelFrame drops a pending request. Unknown IDs are ignored.
	CancelFrame(id FrameID)
	// Listen registers fn for events of kind.
	Listen(kind EventKind, fn func(Event)) ListenerID
	// Unlisten removes a listener. Unknown IDs are ignored.
	Unlisten(id ListenerID)
	// Size returns the current viewport size.
	Size() (width, height int)
}

type listener struct {
	kind EventKind
	fn   func(Event)
}

// registry holds pending frames and listeners. Safe for concurrent use;
// callbacks are always invoked without the lock held.
type registry struct {
	mu        sync.Mutex
	nextID    uint64
	frames    map[FrameID]FrameFunc
	listeners map[ListenerID]listener
}

func newRegistry() *registry {
	return &registry{
		frames:    make(map[FrameID]FrameFunc),
		listeners: make(map[ListenerID]listener),
	}
}

func (r *registry) id() uint64 {
	r.nextID++
	return r.nextID
}

func (r *registry) requestFrame(fn FrameFunc) FrameID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := FrameID(r.id())
	r.frames[id] = fn
	return id
}

func (r *registry) cancelFrame(id FrameID) {
	r.mu.Lock()
	delete(r.frames, id)
	r.mu.Unlock()
}

func (r *registry) listen(kind EventKind, fn func(Event)) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ListenerID(r.id())
	r.listeners[id] = listener{kind: kind, fn: fn}
	return id
}

func (r *registry) unlisten(id ListenerID) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// takeFrames removes and returns the pending frames in request order.
func (r *registry) takeFrames() []FrameFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	ids := make([]FrameID, 0, len(r.frames))
	for id := range r.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]FrameFunc, len(ids))
	for i, id := range ids {
		fns[i] = r.frames[id]
		delete(r.frames, id)
	}
	return fns
}

// dispatch delivers e to the listeners of its kind in registration order.
func (r *registry) dispatch(e Event) int {
	r.mu.Lock()
	ids := make([]ListenerID, 0, len(r.listeners))
	for id, l := range r.listeners {
		if l.kind == e.Kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Event), len(ids))
	for i, id := range ids {
		fns[i] = r.listeners[id].fn
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return len(fns)
}

func (r *registry) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *registry) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

func (r *registry) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
