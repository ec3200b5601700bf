// Package anim advances entity state once per accepted frame.
//
// Everything here is a pure function of immutable entity parameters and the
// scheduler clock. Nothing accumulates per tick, so a clamped or skipped frame
// never desynchronizes the animation.
package anim

import "time"

// jitter is how far short of the target interval a callback may arrive and
// still be accepted. Frame sources firing at the target rate would otherwise
// alternate between accepted and skipped callbacks.
const jitter = time.Millisecond

// Gate throttles host frame callbacks to a target interval.
//
// The first callback only primes the gate. After that a callback is accepted
// when the time since the previous accepted one exceeds the interval; the
// remainder modulo the interval carries over so the cadence does not drift.
// Elapsed times above maxDelta are clamped and the carry is dropped.
type Gate struct {
	interval time.Duration
	maxDelta time.Duration

	primed  bool
	cadence time.Duration // Cadence origin, includes the carried remainder
	prev    time.Duration // Timestamp of the previous accepted callback
}

// NewGate creates a gate. A non-positive interval accepts every callback; a
// non-positive maxDelta disables clamping.
func NewGate(interval, maxDelta time.Duration) *Gate {
	return &Gate{interval: interval, maxDelta: maxDelta}
}

// Interval returns the target interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Accept reports whether the callback at host timestamp ts should run a tick,
// and the clock delta to apply when it should.
func (g *Gate) Accept(ts time.Duration) (time.Duration, bool) {
	if !g.primed || ts < g.prev {
		g.prime(ts)
		return 0, false
	}

	elapsed := ts - g.cadence
	if g.interval > 0 && elapsed <= g.interval-jitter {
		return 0, false
	}

	dt := ts - g.prev
	g.prev = ts

	switch {
	case g.maxDelta > 0 && dt > g.maxDelta:
		dt = g.maxDelta
		g.cadence = ts
	case g.interval > 0 && elapsed >= g.interval:
		g.cadence = ts - elapsed%g.interval
	default:
		g.cadence = ts
	}
	return dt, true
}

// Reset forgets the previous callback; the next one primes again.
func (g *Gate) Reset() {
	g.primed = false
}

func (g *Gate) prime(ts time.Duration) {
	g.primed = true
	g.cadence = ts
	g.prev = ts
}
