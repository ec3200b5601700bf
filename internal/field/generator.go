package field

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/device"
)

// ColorPick selects how entities draw colors from a palette.
type ColorPick int

const (
	PickRandom ColorPick = iota
	PickCyclic
)

// Config describes one generated collection.
type Config struct {
	Count   int
	Size    Range
	Opacity Range // Zero value means the default band [0.2, 1.0]
	Colors  []colorful.Color
	Pick    ColorPick
}

// Default opacity band for generated entities.
var defaultOpacity = Range{Min: 0.2, Max: 1.0}

// Generator produces entity collections. Each mounted instance owns one; the
// ID counter and random source are never shared between instances.
type Generator struct {
	rng     *rand.Rand
	profile device.Profile
	nextID  uint64
}

// NewGenerator creates a generator. A zero seed means time-seeded.
func NewGenerator(seed int64, profile device.Profile) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		profile: profile,
		nextID:  1,
	}
}

// Profile returns the device profile the generator scales with.
func (g *Generator) Profile() device.Profile {
	return g.profile
}

func (g *Generator) id() uint64 {
	id := g.nextID
	g.nextID++
	return id
}

// between returns a uniform value in [lo, hi).
func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// prepare applies device scaling and normalization to a config.
func (g *Generator) prepare(cfg Config) (int, Range, Range) {
	n := g.profile.Count(cfg.Count)
	size := SizeRange(SizeRange(cfg.Size).Scale(g.profile.SizeScale))
	opacity := defaultOpacity
	if cfg.Opacity != (Range{}) {
		opacity = UnitRange(cfg.Opacity)
	}
	return n, size, opacity
}

func (g *Generator) color(cfg Config, i int) colorful.Color {
	if len(cfg.Colors) == 0 {
		return White
	}
	if cfg.Pick == PickCyclic {
		return cfg.Colors[i%len(cfg.Colors)]
	}
	return cfg.Colors[g.rng.Intn(len(cfg.Colors))]
}

// Stars fills the viewport with fixed, twinkling stars.
// Positions are viewport percentages in [0, 100).
func (g *Generator) Stars(cfg Config) []Entity {
	n, size, opacity := g.prepare(cfg)
	stars := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		stars = append(stars, Entity{
			ID:       g.id(),
			Kind:     KindStar,
			Pos:      Vec3{X: g.between(0, 100), Y: g.between(0, 100)},
			Size:     size.Lerp(g.rng.Float64()),
			Opacity:  opacity.Lerp(g.rng.Float64()),
			Color:    g.color(cfg, i),
			Phase:    g.between(0, 2*math.Pi),
			Velocity: g.between(0.3, 1.2), // Twinkle rate, Hz
		})
	}
	return stars
}

// Sparkles fills the viewport with colored sparkles that pulse in scale.
func (g *Generator) Sparkles(cfg Config) []Entity {
	n, size, opacity := g.prepare(cfg)
	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entity{
			ID:       g.id(),
			Kind:     KindSparkle,
			Pos:      Vec3{X: g.between(0, 100), Y: g.between(0, 100)},
			Angle:    g.between(0, 360),
			Size:     size.Lerp(g.between(0.4, 1.0)),
			Opacity:  opacity.Lerp(g.rng.Float64()),
			Color:    g.color(cfg, i),
			Phase:    g.between(0, 2),
			Duration: time.Duration(g.between(1.5, 3.5) * float64(time.Second)),
		})
	}
	return out
}

// Drifters fills the viewport with slowly moving particles that bounce off
// the edges and link to their neighbors.
func (g *Generator) Drifters(cfg Config) []Entity {
	n, size, opacity := g.prepare(cfg)
	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		heading := g.between(0, 2*math.Pi)
		speed := g.between(1, 4)
		out = append(out, Entity{
			ID:      g.id(),
			Kind:    KindDrifter,
			Pos:     Vec3{X: g.between(0, 100), Y: g.between(0, 100)},
			Drift:   Vec3{X: math.Cos(heading) * speed, Y: math.Sin(heading) * speed},
			Size:    size.Lerp(g.rng.Float64()),
			Opacity: opacity.Lerp(g.rng.Float64()),
			Color:   g.color(cfg, i),
		})
	}
	return out
}

// Sphere shell bounds for 3D particles, in world units.
const (
	sphereMinRadius = 1.0
	sphereMaxRadius = 5.0
	sphereFlatten   = 0.2
)

// Sphere distributes particles uniformly over a flattened spherical shell.
// The per-instance random attributes mirror the instancing buffer the raster
// renderer uploads: alpha, size multiplier, pointer strength, rotation speed.
func (g *Generator) Sphere(cfg Config) []Entity {
	n, size, _ := g.prepare(cfg)
	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		theta := g.rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*g.rng.Float64() - 1)
		r := g.between(sphereMinRadius, sphereMaxRadius)

		out = append(out, Entity{
			ID:   g.id(),
			Kind: KindParticle,
			Pos: Vec3{
				X: r * math.Sin(phi) * math.Cos(theta),
				Y: r * math.Sin(phi) * math.Sin(theta),
				Z: r * math.Cos(phi) * sphereFlatten,
			},
			Opacity:  0.3 + 0.7*g.rng.Float64(),
			Size:     size.Lerp(g.between(0.2, 1.0)),
			Strength: g.between(0.5, 1.0),
			Velocity: g.between(-1, 1),
			Color:    g.color(cfg, i),
		})
	}
	return out
}

// Item is static content attached to orbiting or radar entities.
type Item struct {
	Label    string
	Asset    string
	Category string
	Angle    float64 // Explicit initial angle; used by rings when HasAngle is set
	HasAngle bool
	Color    colorful.Color
}

// Band is an angular sector with a distance band, for radar layouts.
type Band struct {
	Start, End float64 // Degrees
	MinDist    float64
	MaxDist    float64
}

// Sector partitions the band evenly among items: item i sits at
// start + step*i + step/2, so every angle lies strictly inside the sector and
// no two items share an angle. Distances step from MinDist toward MaxDist.
func (g *Generator) Sector(items []Item, b Band) []Entity {
	if len(items) == 0 {
		return nil
	}
	if b.End < b.Start {
		b.Start, b.End = b.End, b.Start
	}
	if b.MaxDist < b.MinDist {
		b.MinDist, b.MaxDist = b.MaxDist, b.MinDist
	}
	n := float64(len(items))
	step := (b.End - b.Start) / n
	distStep := (b.MaxDist - b.MinDist) / n

	out := make([]Entity, 0, len(items))
	for i, it := range items {
		out = append(out, Entity{
			ID:       g.id(),
			Kind:     KindBlip,
			Angle:    WrapDegrees(b.Start + step*float64(i) + step/2),
			Radius:   (b.MinDist + distStep*float64(i)) * g.profile.RadiusScale,
			Size:     1,
			Opacity:  0.6,
			Color:    itemColor(it),
			Label:    it.Label,
			Asset:    it.Asset,
			Category: it.Category,
		})
	}
	return out
}

// RingSpec places items on one orbit.
type RingSpec struct {
	Radius   float64 // Layout units
	Velocity float64 // Degrees per second; negative is counter-clockwise
}

// Ring places items on an orbit, evenly partitioned unless an item carries an
// explicit initial angle.
func (g *Generator) Ring(items []Item, r RingSpec) []Entity {
	if len(items) == 0 {
		return nil
	}
	step := 360.0 / float64(len(items))
	out := make([]Entity, 0, len(items))
	for i, it := range items {
		angle := step * float64(i)
		if it.HasAngle {
			angle = it.Angle
		}
		out = append(out, Entity{
			ID:       g.id(),
			Kind:     KindOrbiter,
			Angle:    WrapDegrees(angle),
			Radius:   r.Radius * g.profile.RadiusScale,
			Velocity: r.Velocity * g.profile.SpeedScale,
			Size:     1,
			Opacity:  1,
			Color:    itemColor(it),
			Label:    it.Label,
			Asset:    it.Asset,
			Category: it.Category,
		})
	}
	return out
}

func itemColor(it Item) colorful.Color {
	if it.Color == (colorful.Color{}) {
		return White
	}
	return it.Color
}

// ShootingStarHeading is the direction streaks travel, in screen degrees
// (y grows downward): toward the lower left.
const ShootingStarHeading = 135.0

// ShootingStar spawns one streak. It starts in the upper half of the
// viewport, waits Phase seconds, then crosses over Duration.
func (g *Generator) ShootingStar(now time.Duration, buffer time.Duration) Entity {
	delay := g.between(0, 3)
	duration := time.Duration(g.between(1, 2.5) * float64(time.Second))
	return Entity{
		ID:        g.id(),
		Kind:      KindShootingStar,
		Pos:       Vec3{X: g.between(0, 100), Y: g.between(0, 50)},
		Angle:     ShootingStarHeading,
		Size:      g.between(8, 16) * g.profile.SizeScale, // Streak length, percent
		Opacity:   g.between(0.2, 1.0),
		Color:     White,
		Phase:     delay,
		Duration:  duration,
		Lifetime:  time.Duration(delay*float64(time.Second)) + duration + buffer,
		CreatedAt: now,
	}
}

// BurstConfig configures a click spark burst.
type BurstConfig struct {
	Count    int
	Size     float64
	Duration time.Duration
	Distance Range // Travel distance, viewport percent
	Colors   []colorful.Color
}

// Burst spawns sparks at (x, y) (viewport percent) flying outward in random
// directions.
func (g *Generator) Burst(x, y float64, now time.Duration, cfg BurstConfig) []Entity {
	n := g.profile.Count(cfg.Count)
	if n == 0 || cfg.Duration <= 0 {
		return nil
	}
	size := cfg.Size * g.profile.SizeScale
	if size < minSize {
		size = minSize
	}
	dist := cfg.Distance
	if dist == (Range{}) {
		dist = Range{Min: 5, Max: 15}
	}
	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entity{
			ID:        g.id(),
			Kind:      KindSpark,
			Pos:       Vec3{X: x, Y: y},
			Angle:     g.between(0, 360),
			Radius:    dist.Lerp(g.rng.Float64()),
			Size:      size,
			Opacity:   1,
			Color:     g.color(Config{Colors: cfg.Colors}, i),
			Duration:  cfg.Duration,
			Lifetime:  cfg.Duration,
			CreatedAt: now,
		})
	}
	return out
}
