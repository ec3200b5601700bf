package anim

import "time"

// Animator recomputes the live state of the entities it owns for one clock
// value.
type Animator interface {
	Animate(now time.Duration)
}

// AnimatorFunc adapts a function to Animator.
type AnimatorFunc func(now time.Duration)

// Animate calls f(now).
func (f AnimatorFunc) Animate(now time.Duration) { f(now) }

// Scheduler owns the animation clock. Host frame callbacks pass through a
// Gate; explicit ticks bypass it but are clamped the same way.
type Scheduler struct {
	gate      *Gate
	maxDelta  time.Duration
	clock     time.Duration
	ticks     uint64
	animators []Animator
}

// NewScheduler creates a scheduler that accepts at most one tick per interval
// and applies at most maxDelta of clock time per tick.
func NewScheduler(interval, maxDelta time.Duration) *Scheduler {
	return &Scheduler{
		gate:     NewGate(interval, maxDelta),
		maxDelta: maxDelta,
	}
}

// Add registers animators. They run in registration order.
func (s *Scheduler) Add(as ...Animator) {
	s.animators = append(s.animators, as...)
}

// Frame handles a host frame callback at timestamp ts and reports whether a
// tick ran.
func (s *Scheduler) Frame(ts time.Duration) bool {
	dt, ok := s.gate.Accept(ts)
	if !ok {
		return false
	}
	s.advance(dt)
	return true
}

// Tick advances the clock by dt, clamped to [0, maxDelta], and runs one tick.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	if s.maxDelta > 0 && dt > s.maxDelta {
		dt = s.maxDelta
	}
	s.advance(dt)
}

// Refresh recomputes live state at the current clock without advancing it.
func (s *Scheduler) Refresh() {
	for _, a := range s.animators {
		a.Animate(s.clock)
	}
}

// Clock returns the animation time.
func (s *Scheduler) Clock() time.Duration {
	return s.clock
}

// Ticks returns the number of ticks run so far.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Interval returns the target interval between accepted frames.
func (s *Scheduler) Interval() time.Duration {
	return s.gate.Interval()
}

func (s *Scheduler) advance(dt time.Duration) {
	s.clock += dt
	s.ticks++
	s.Refresh()
}
