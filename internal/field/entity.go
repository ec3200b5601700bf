// Package field generates the entity collections animated sections draw.
package field

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind identifies what an entity depicts.
type Kind int

const (
	KindStar         Kind = iota // Fixed background star (viewport percent)
	KindShootingStar             // Transient streak (viewport percent)
	KindSpark                    // Transient click spark (viewport percent origin, polar burst)
	KindParticle                 // 3D particle (world space)
	KindOrbiter                  // Orbiting skill icon (polar)
	KindBlip                     // Radar skill (polar)
	KindSparkle                  // Twinkling colored sparkle (viewport percent)
	KindDrifter                  // Bouncing particle with links (viewport percent)
)

var kindNames = [...]string{"star", "shooting-star", "spark", "particle", "orbiter", "blip", "sparkle", "drifter"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Vec3 is a position. Z is zero for 2D kinds.
type Vec3 struct {
	X, Y, Z float64
}

// Live is the transient state recomputed every tick by the scheduler.
// Renderers read it; nothing else writes it.
type Live struct {
	Pos         Vec3
	Opacity     float64
	Size        float64
	Highlighted bool
}

// Entity is one animated visual element.
// Everything except Live is fixed at creation.
type Entity struct {
	ID   uint64
	Kind Kind

	Pos    Vec3    // Source position; semantics depend on Kind
	Angle  float64 // Initial polar angle in degrees (orbiters, blips, sparks)
	Radius float64 // Polar distance (orbiters, blips, spark travel)

	Size     float64        // > 0
	Opacity  float64        // [0, 1]
	Color    colorful.Color // Normalized channels
	Phase    float64        // Fade offset or start delay, seconds
	Velocity float64        // Angular velocity (deg/s) or rotation multiplier
	Strength float64        // Pointer effect multiplier
	Drift    Vec3           // Linear velocity for drifters, percent per second

	Duration  time.Duration // Fade or travel envelope length
	Lifetime  time.Duration // Total lifetime; 0 means permanent
	CreatedAt time.Duration // Scheduler clock at creation

	Label    string // Skill name
	Asset    string // Icon reference, never validated
	Category string

	Live Live
}

// Transient reports whether the entity has a bounded lifetime.
func (e *Entity) Transient() bool {
	return e.Lifetime > 0
}

// Expired reports whether a transient entity has outlived its lifetime at now.
func (e *Entity) Expired(now time.Duration) bool {
	return e.Lifetime > 0 && now-e.CreatedAt >= e.Lifetime
}

// Age returns the time since creation, never negative.
func (e *Entity) Age(now time.Duration) time.Duration {
	if now < e.CreatedAt {
		return 0
	}
	return now - e.CreatedAt
}

// Range is a closed [Min, Max] interval for randomized attributes.
type Range struct {
	Min, Max float64
}

// minSize keeps every generated entity visible.
const minSize = 0.1

// SizeRange normalizes a size range: ordered, strictly positive.
func SizeRange(r Range) Range {
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < minSize {
		r.Min = minSize
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// UnitRange normalizes a range into [0, 1] (opacities).
func UnitRange(r Range) Range {
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	r.Min = Clamp01(r.Min)
	r.Max = Clamp01(r.Max)
	return r
}

// Scale multiplies both bounds.
func (r Range) Scale(f float64) Range {
	return Range{Min: r.Min * f, Max: r.Max * f}
}

// Lerp maps t in [0, 1] onto the range.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp01 clamps v into [0, 1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// WrapDegrees maps any angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
