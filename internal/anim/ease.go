package anim

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Easing maps progress in [0, 1] onto an eased value. Inputs outside [0, 1]
// are clamped.
type Easing func(p float64) float64

func clampUnit(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}

// Linear is the identity easing.
func Linear(p float64) float64 {
	return clampUnit(p)
}

// EaseOutCubic decelerates toward the end.
func EaseOutCubic(p float64) float64 {
	p = clampUnit(p)
	return 1 - math.Pow(1-p, 3)
}

// EaseInOutQuad accelerates then decelerates.
func EaseInOutQuad(p float64) float64 {
	p = clampUnit(p)
	if p < 0.5 {
		return 2 * p * p
	}
	return 1 - math.Pow(-2*p+2, 2)/2
}

// springSamples is the resolution of a sampled spring curve.
const springSamples = 120

// Spring returns an easing that follows an under-damped spring settling from
// 0 to 1. The curve is sampled once with harmonica and interpolated. It may
// overshoot 1 before settling; it always ends at exactly 1.
func Spring(frequency, damping float64) Easing {
	s := harmonica.NewSpring(harmonica.FPS(springSamples), frequency, damping)
	curve := make([]float64, springSamples+1)
	pos, vel := 0.0, 0.0
	for i := 1; i <= springSamples; i++ {
		pos, vel = s.Update(pos, vel, 1)
		curve[i] = pos
	}
	curve[springSamples] = 1

	return func(p float64) float64 {
		x := clampUnit(p) * springSamples
		i := int(x)
		if i >= springSamples {
			return 1
		}
		frac := x - float64(i)
		return curve[i] + (curve[i+1]-curve[i])*frac
	}
}

// EasingByName resolves a preset name. Unknown names fall back to Linear.
func EasingByName(name string) Easing {
	switch name {
	case "ease-out-cubic", "easeOutCubic":
		return EaseOutCubic
	case "ease-in-out", "easeInOutQuad":
		return EaseInOutQuad
	case "spring":
		return Spring(10, 0.5)
	default:
		return Linear
	}
}
