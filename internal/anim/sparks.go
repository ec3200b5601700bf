package anim

import (
	"time"

	"github.com/tomz197/starfield/internal/field"
)

// Sparks bursts short-lived sparks out of click positions.
type Sparks struct {
	gen  *field.Generator
	set  *field.Transients
	cfg  field.BurstConfig
	ease Easing
}

// NewSparks creates a spark animator holding at most limit live sparks.
func NewSparks(gen *field.Generator, cfg field.BurstConfig, limit int, ease Easing) *Sparks {
	if ease == nil {
		ease = EaseOutCubic
	}
	return &Sparks{
		gen:  gen,
		set:  field.NewTransients(limit),
		cfg:  cfg,
		ease: ease,
	}
}

// Burst spawns one burst at (x, y), viewport percent, and returns how many
// sparks it added.
func (s *Sparks) Burst(x, y float64, now time.Duration) int {
	sparks := s.gen.Burst(x, y, now, s.cfg)
	s.set.Add(sparks...)
	return len(sparks)
}

// Entities returns the live sparks.
func (s *Sparks) Entities() []field.Entity {
	return s.set.Items()
}

// Len returns the number of live sparks.
func (s *Sparks) Len() int {
	return s.set.Len()
}

// Animate implements Animator.
func (s *Sparks) Animate(now time.Duration) {
	s.set.Expire(now)
	items := s.set.Items()
	for i := range items {
		e := &items[i]
		p := 1.0
		if e.Duration > 0 {
			p = float64(e.Age(now)) / float64(e.Duration)
		}
		k := s.ease(p)
		// Travel may overshoot with a spring; the fade never leaves [0, 1].
		fade := field.Clamp01(1 - k)
		dx, dy := heading(e.Angle)
		e.Live = field.Live{
			Pos:     field.Vec3{X: e.Pos.X + dx*e.Radius*k, Y: e.Pos.Y + dy*e.Radius*k},
			Size:    e.Size * fade,
			Opacity: e.Opacity * fade,
		}
	}
}
