package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/starfield/internal/field"
)

const ms = time.Millisecond

func TestGate(t *testing.T) {
	g := NewGate(16*ms, 100*ms)

	steps := []struct {
		name   string
		ts     time.Duration
		wantDt time.Duration
		wantOK bool
	}{
		{"first callback primes", 1000 * ms, 0, false},
		{"too early", 1010 * ms, 0, false},
		{"interval exceeded", 1017 * ms, 17 * ms, true},
		{"carried remainder", 1032 * ms, 15 * ms, true},
		{"long pause is clamped", 6032 * ms, 100 * ms, true},
		{"cadence restarts after clamp", 6040 * ms, 0, false},
		{"next after clamp", 6049 * ms, 17 * ms, true},
		{"clock went backwards", 3000 * ms, 0, false},
		{"after re-prime", 3020 * ms, 20 * ms, true},
	}
	for _, st := range steps {
		dt, ok := g.Accept(st.ts)
		assert.Equal(t, st.wantOK, ok, st.name)
		assert.Equal(t, st.wantDt, dt, st.name)
	}
}

func TestGate_JitterTolerance(t *testing.T) {
	g := NewGate(time.Second/60, 100*ms)
	g.Accept(0)

	accepted := 0
	for i := 1; i <= 60; i++ {
		if _, ok := g.Accept(time.Duration(i) * time.Second / 60); ok {
			accepted++
		}
	}
	assert.Equal(t, 60, accepted)
}

func TestGate_ThrottlesFastSource(t *testing.T) {
	g := NewGate(time.Second/30, 100*ms)
	g.Accept(0)

	accepted := 0
	for i := 1; i <= 120; i++ {
		if _, ok := g.Accept(time.Duration(i) * time.Second / 120); ok {
			accepted++
		}
	}
	assert.InDelta(t, 30, accepted, 1)
}

func TestScheduler_ClampsSuspension(t *testing.T) {
	s := NewScheduler(16*ms, 100*ms)
	orbit := &Orbit{Items: []field.Entity{{Angle: 0, Velocity: 90, Radius: 10, Size: 1, Opacity: 1}}}
	s.Add(orbit)

	assert.False(t, s.Frame(0))
	require.True(t, s.Frame(20*ms))
	assert.Equal(t, 20*ms, s.Clock())

	// Five seconds in the background, then one callback on return.
	require.True(t, s.Frame(5020*ms))
	assert.Equal(t, 120*ms, s.Clock())
	assert.Equal(t, uint64(2), s.Ticks())

	want := Polar(90*0.12, 10)
	assert.InDelta(t, want.X, orbit.Items[0].Live.Pos.X, 1e-9)
	assert.InDelta(t, want.Y, orbit.Items[0].Live.Pos.Y, 1e-9)
}

func TestScheduler_TickClamps(t *testing.T) {
	s := NewScheduler(16*ms, 100*ms)
	calls := 0
	s.Add(AnimatorFunc(func(time.Duration) { calls++ }))

	s.Tick(-time.Second)
	assert.Equal(t, time.Duration(0), s.Clock())
	s.Tick(5 * time.Second)
	assert.Equal(t, 100*ms, s.Clock())
	s.Tick(10 * ms)
	assert.Equal(t, 110*ms, s.Clock())
	assert.Equal(t, 3, calls)

	s.Refresh()
	assert.Equal(t, 4, calls)
	assert.Equal(t, uint64(3), s.Ticks())
}

func TestOrbit_DriftFree(t *testing.T) {
	items := []field.Entity{
		{Angle: 30, Velocity: 15, Radius: 160},
		{Angle: 200, Velocity: -12, Radius: 240},
		{Angle: 359, Velocity: 9, Radius: 320},
	}
	s := NewScheduler(0, 100*ms)
	orbit := &Orbit{Items: items}
	s.Add(orbit)

	// Ten minutes of uneven frames.
	for i := 0; s.Clock() < 10*time.Minute; i++ {
		s.Tick(time.Duration(7+i%23) * ms)
	}

	for _, e := range orbit.Items {
		angle := OrbitAngle(e.Angle, e.Velocity, s.Clock())
		assert.True(t, angle >= 0 && angle < 360)
		want := Polar(angle, e.Radius)
		assert.InDelta(t, want.X, e.Live.Pos.X, 1e-6)
		assert.InDelta(t, want.Y, e.Live.Pos.Y, 1e-6)
	}
}

func TestOrbitAngle(t *testing.T) {
	assert.InDelta(t, 45.0, OrbitAngle(30, 15, time.Second), 1e-9)
	assert.InDelta(t, 348.0, OrbitAngle(0, -12, time.Second), 1e-9)
	assert.InDelta(t, 0.0, OrbitAngle(0, 9, 40*time.Second), 1e-9)
}

func TestLifecycle(t *testing.T) {
	var l Lifecycle
	assert.Equal(t, Uninitialized, l.State())

	assert.ErrorIs(t, l.To(Running), ErrTransition)
	assert.ErrorIs(t, l.To(Disposed), ErrTransition)

	require.NoError(t, l.To(Initializing))
	require.NoError(t, l.To(Running))
	require.NoError(t, l.To(Suspended))
	assert.ErrorIs(t, l.To(Suspended), ErrTransition)
	require.NoError(t, l.To(Running))
	require.NoError(t, l.To(Disposed))

	for _, s := range []State{Uninitialized, Initializing, Running, Suspended, Disposed} {
		assert.False(t, l.Can(s), "disposed -> %s", s)
	}
	assert.Equal(t, "disposed", l.State().String())
}

func TestEasing(t *testing.T) {
	spring := Spring(10, 0.5)
	for name, ease := range map[string]Easing{
		"linear":   Linear,
		"outCubic": EaseOutCubic,
		"inOut":    EaseInOutQuad,
		"spring":   spring,
	} {
		assert.InDelta(t, 0.0, ease(0), 1e-9, name)
		assert.InDelta(t, 1.0, ease(1), 1e-9, name)
		assert.InDelta(t, 0.0, ease(-3), 1e-9, name)
		assert.InDelta(t, 1.0, ease(7), 1e-9, name)
	}
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-9)
	assert.InDelta(t, 0.5, EaseInOutQuad(0.5), 1e-9)

	overshoot := false
	for p := 0.0; p <= 1; p += 0.01 {
		if spring(p) > 1 {
			overshoot = true
		}
	}
	assert.True(t, overshoot, "under-damped spring should overshoot")
}

func TestEasingByName(t *testing.T) {
	assert.InDelta(t, EaseOutCubic(0.3), EasingByName("ease-out-cubic")(0.3), 1e-9)
	assert.InDelta(t, 0.3, EasingByName("bogus")(0.3), 1e-9)
}
