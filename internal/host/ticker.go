package host

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/starfield/internal/logging"
)

// eventQueue is how many posted events may wait for the run loop.
const eventQueue = 64

// Ticker is a host whose frames fire on a fixed-rate timer. Run owns one
// goroutine that delivers both frames and posted events, so callbacks never
// overlap. Frames are withheld while the viewport is hidden.
type Ticker struct {
	reg    *registry
	rate   time.Duration
	events chan Event
	logger *log.Logger

	mu     sync.Mutex
	width  int
	height int
	hidden bool
	frames uint64
}

var _ Host = (*Ticker)(nil)

// NewTicker creates a ticker host firing frames every rate.
func NewTicker(width, height int, rate time.Duration, logger *log.Logger) *Ticker {
	if rate <= 0 {
		rate = time.Second / 60
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ticker{
		reg:    newRegistry(),
		rate:   rate,
		events: make(chan Event, eventQueue),
		logger: logger,
		width:  width,
		height: height,
	}
}

func (t *Ticker) RequestFrame(fn FrameFunc) FrameID { return t.reg.requestFrame(fn) }
func (t *Ticker) CancelFrame(id FrameID)            { t.reg.cancelFrame(id) }
func (t *Ticker) Unlisten(id ListenerID)            { t.reg.unlisten(id) }

func (t *Ticker) Listen(kind EventKind, fn func(Event)) ListenerID {
	return t.reg.listen(kind, fn)
}

// Size returns the viewport size.
func (t *Ticker) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Hidden reports whether frames are currently withheld.
func (t *Ticker) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

// Frames returns the number of frame callbacks delivered.
func (t *Ticker) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Post queues an event for the run loop. Safe to call from any goroutine.
// Returns false if the queue is full and the event was dropped.
func (t *Ticker) Post(e Event) bool {
	select {
	case t.events <- e:
		return true
	default:
		t.logger.Warn("event dropped", "kind", e.Kind)
		return false
	}
}

// Run delivers frames and events until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	start := time.Now()
	tick := time.NewTicker(t.rate)
	defer tick.Stop()

	t.logger.Debug("host started", "rate", t.rate)
	defer t.logger.Debug("host stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-t.events:
			t.deliver(e)
		case now := <-tick.C:
			if t.Hidden() {
				continue
			}
			fns := t.reg.takeFrames()
			ts := now.Sub(start)
			for _, fn := range fns {
				fn(ts)
			}
			t.mu.Lock()
			t.frames += uint64(len(fns))
			t.mu.Unlock()
		}
	}
}

func (t *Ticker) deliver(e Event) {
	t.mu.Lock()
	switch e.Kind {
	case Resize:
		t.width, t.height = e.Width, e.Height
	case Visibility:
		t.hidden = e.Hidden
	}
	t.mu.Unlock()
	t.reg.dispatch(e)
}
