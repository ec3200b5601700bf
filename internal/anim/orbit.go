package anim

import (
	"math"
	"time"

	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/physics"
)

// OrbitAngle is the polar angle of an orbiter at clock now, in [0, 360).
func OrbitAngle(initial, velocity float64, now time.Duration) float64 {
	return field.WrapDegrees(initial + velocity*now.Seconds())
}

// Polar converts an angle in degrees and a radius into a position around the
// origin.
func Polar(deg, radius float64) field.Vec3 {
	r := field.Radians(deg)
	return field.Vec3{X: radius * math.Cos(r), Y: radius * math.Sin(r)}
}

// Orbit moves items around concentric rings at constant angular velocity.
type Orbit struct {
	Items []field.Entity
}

// Animate implements Animator.
func (o *Orbit) Animate(now time.Duration) {
	for i := range o.Items {
		e := &o.Items[i]
		e.Live = field.Live{
			Pos:     Polar(OrbitAngle(e.Angle, e.Velocity, now), e.Radius),
			Size:    e.Size,
			Opacity: e.Opacity,
		}
	}
}

// Radar sweeps a beam around the origin and highlights the first blip the
// beam is over.
type Radar struct {
	Items []field.Entity

	// OnHighlight, when set, is called each time a different blip becomes
	// highlighted. A panic inside it clears the highlight for that tick.
	OnHighlight func(field.Entity)

	speed     float64 // Degrees per second
	threshold float64 // Degrees
	sweep     float64
	current   int
	faults    int
}

// NewRadar creates a radar sweeping at speed degrees per second that
// highlights blips within threshold degrees of the beam.
func NewRadar(items []field.Entity, speed, threshold float64) *Radar {
	return &Radar{Items: items, speed: speed, threshold: threshold, current: -1}
}

// Sweep returns the beam angle of the last tick.
func (r *Radar) Sweep() float64 {
	return r.sweep
}

// Highlighted returns the highlighted blip, if any.
func (r *Radar) Highlighted() (field.Entity, bool) {
	if r.current < 0 || r.current >= len(r.Items) {
		return field.Entity{}, false
	}
	return r.Items[r.current], true
}

// Faults returns how many ticks lost their highlight to a panic.
func (r *Radar) Faults() int {
	return r.faults
}

// Animate implements Animator.
func (r *Radar) Animate(now time.Duration) {
	r.sweep = field.WrapDegrees(r.speed * now.Seconds())
	r.current = r.highlight()
	for i := range r.Items {
		e := &r.Items[i]
		op := e.Opacity
		if i == r.current {
			op = 1
		}
		e.Live = field.Live{
			Pos:         Polar(e.Angle, e.Radius),
			Size:        e.Size,
			Opacity:     op,
			Highlighted: i == r.current,
		}
	}
}

func (r *Radar) highlight() (idx int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.faults++
			idx = -1
		}
	}()

	idx = -1
	for i := range r.Items {
		if physics.AngularDistance(r.sweep, r.Items[i].Angle) < r.threshold {
			idx = i
			break
		}
	}
	if idx >= 0 && idx != r.current && r.OnHighlight != nil {
		r.OnHighlight(r.Items[idx])
	}
	return idx
}
