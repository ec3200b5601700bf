package anim

import (
	"math"
	"time"

	"github.com/tomz197/starfield/internal/field"
)

// twinkleFloor is the dimmest a star gets, relative to its base opacity.
const twinkleFloor = 0.35

// Twinkle pulses star opacity on a per-star sine envelope.
type Twinkle struct {
	Stars []field.Entity
}

// Animate implements Animator.
func (tw *Twinkle) Animate(now time.Duration) {
	t := now.Seconds()
	for i := range tw.Stars {
		e := &tw.Stars[i]
		w := 0.5 + 0.5*math.Sin(2*math.Pi*e.Velocity*t+e.Phase)
		e.Live = field.Live{
			Pos:     e.Pos,
			Size:    e.Size,
			Opacity: e.Opacity * (twinkleFloor + (1-twinkleFloor)*w),
		}
	}
}

// Sparkle grows and shrinks sparkles over their duration, offset by phase.
type Sparkle struct {
	Items []field.Entity
}

// Animate implements Animator.
func (sp *Sparkle) Animate(now time.Duration) {
	t := now.Seconds()
	for i := range sp.Items {
		e := &sp.Items[i]
		period := e.Duration.Seconds()
		pulse := 1.0
		if period > 0 {
			p := math.Mod(t+e.Phase, period) / period
			pulse = math.Sin(math.Pi * p)
		}
		e.Live = field.Live{
			Pos:     e.Pos,
			Size:    e.Size * pulse,
			Opacity: e.Opacity * pulse,
		}
	}
}

// shootingTravel is how far a streak moves over its duration, viewport percent.
const shootingTravel = 40.0

// ShootingStars spawns a streak on a fixed clock interval into a capped
// rolling set and moves each streak along its heading.
type ShootingStars struct {
	gen    *field.Generator
	set    *field.Transients
	every  time.Duration
	buffer time.Duration
	next   time.Duration
}

// NewShootingStars seeds up to limit streaks at clock zero and spawns one
// more every interval. A non-positive limit disables the effect.
func NewShootingStars(gen *field.Generator, limit int, every, buffer time.Duration) *ShootingStars {
	s := &ShootingStars{
		gen:    gen,
		set:    field.NewTransients(limit),
		every:  every,
		buffer: buffer,
		next:   every,
	}
	for i := 0; i < s.set.Cap(); i++ {
		s.set.Add(gen.ShootingStar(0, buffer))
	}
	return s
}

// Entities returns the live streaks.
func (s *ShootingStars) Entities() []field.Entity {
	return s.set.Items()
}

// Len returns the number of live streaks.
func (s *ShootingStars) Len() int {
	return s.set.Len()
}

// Animate implements Animator.
func (s *ShootingStars) Animate(now time.Duration) {
	if s.set.Cap() > 0 && s.every > 0 && now >= s.next {
		s.set.Add(s.gen.ShootingStar(now, s.buffer))
		s.next = now + s.every
	}
	s.set.Expire(now)

	items := s.set.Items()
	for i := range items {
		e := &items[i]
		t := e.Age(now).Seconds() - e.Phase
		p := 0.0
		if d := e.Duration.Seconds(); d > 0 && t > 0 {
			p = math.Min(t/d, 1)
		}
		dx, dy := heading(e.Angle)
		e.Live = field.Live{
			Pos:     field.Vec3{X: e.Pos.X + dx*shootingTravel*p, Y: e.Pos.Y + dy*shootingTravel*p},
			Size:    e.Size,
			Opacity: e.Opacity * streakEnvelope(t, e.Duration.Seconds()),
		}
	}
}

// streakEnvelope is the keyframed fade: 0, full at 5%, full at 80%, 0.
func streakEnvelope(t, d float64) float64 {
	if t <= 0 || d <= 0 {
		return 0
	}
	p := t / d
	switch {
	case p < 0.05:
		return p / 0.05
	case p < 0.8:
		return 1
	case p < 1:
		return 1 - (p-0.8)/0.2
	default:
		return 0
	}
}

func heading(deg float64) (float64, float64) {
	r := field.Radians(deg)
	return math.Cos(r), math.Sin(r)
}
