package field

import (
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/starfield/internal/device"
)

func assertBounded(t *testing.T, es []Entity) {
	t.Helper()
	for _, e := range es {
		assert.Greater(t, e.Size, 0.0, "entity %d size", e.ID)
		assert.GreaterOrEqual(t, e.Opacity, 0.0, "entity %d opacity", e.ID)
		assert.LessOrEqual(t, e.Opacity, 1.0, "entity %d opacity", e.ID)
	}
}

func TestStars_BoundsAndCoverage(t *testing.T) {
	g := NewGenerator(1, device.Standard())
	stars := g.Stars(Config{Count: 500, Size: Range{Min: 0.1, Max: 1.1}})

	require.Len(t, stars, 500)
	assertBounded(t, stars)
	for _, s := range stars {
		assert.Equal(t, KindStar, s.Kind)
		assert.True(t, s.Pos.X >= 0 && s.Pos.X <= 100, "x=%v", s.Pos.X)
		assert.True(t, s.Pos.Y >= 0 && s.Pos.Y <= 100, "y=%v", s.Pos.Y)
		assert.True(t, defaultOpacity.Contains(s.Opacity))
	}
}

func TestStars_UniqueIDs(t *testing.T) {
	g := NewGenerator(2, device.Standard())
	seen := map[uint64]bool{}
	for _, batch := range [][]Entity{
		g.Stars(Config{Count: 50}),
		g.Sparkles(Config{Count: 50}),
		g.Sphere(Config{Count: 50}),
	} {
		for _, e := range batch {
			assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
			seen[e.ID] = true
		}
	}
	assert.Len(t, seen, 150)
}

func TestGenerators_AreIndependent(t *testing.T) {
	a := NewGenerator(3, device.Standard())
	b := NewGenerator(4, device.Standard())

	ea := a.Stars(Config{Count: 1})
	eb := b.Stars(Config{Count: 1})
	assert.Equal(t, uint64(1), ea[0].ID)
	assert.Equal(t, uint64(1), eb[0].ID)
}

func TestEmptyAndInvalidConfig(t *testing.T) {
	g := NewGenerator(5, device.Standard())

	assert.Empty(t, g.Stars(Config{Count: 0}))
	assert.Empty(t, g.Sphere(Config{Count: -10}))
	assert.Empty(t, g.Sector(nil, Band{Start: 0, End: 90}))
	assert.Empty(t, g.Ring(nil, RingSpec{Radius: 10}))
	assert.Empty(t, g.Burst(50, 50, 0, BurstConfig{Count: 0, Duration: time.Second}))

	// Inverted and negative ranges are repaired, never rejected.
	stars := g.Stars(Config{Count: 20, Size: Range{Min: 2, Max: -1}, Opacity: Range{Min: 3, Max: -2}})
	require.Len(t, stars, 20)
	assertBounded(t, stars)
}

func TestConstrainedProfile_HalvesAndShrinks(t *testing.T) {
	std := NewGenerator(6, device.Standard()).Stars(Config{Count: 100, Size: Range{Min: 1, Max: 1}})
	con := NewGenerator(6, device.Constrained()).Stars(Config{Count: 100, Size: Range{Min: 1, Max: 1}})

	assert.Len(t, std, 100)
	assert.Len(t, con, 50)
	assert.InDelta(t, 1.0, std[0].Size, 1e-9)
	assert.InDelta(t, 0.6, con[0].Size, 1e-9)
}

func TestSphere_Distribution(t *testing.T) {
	g := NewGenerator(7, device.Standard())
	ps := g.Sphere(Config{Count: 300, Size: Range{Min: 1, Max: 1}})

	require.Len(t, ps, 300)
	assertBounded(t, ps)
	for _, p := range ps {
		r2 := p.Pos.X*p.Pos.X + p.Pos.Y*p.Pos.Y
		assert.LessOrEqual(t, r2, sphereMaxRadius*sphereMaxRadius+1e-9)
		assert.LessOrEqual(t, abs(p.Pos.Z), sphereMaxRadius*sphereFlatten+1e-9)
		assert.True(t, p.Opacity >= 0.3 && p.Opacity <= 1)
		assert.True(t, p.Strength >= 0.5 && p.Strength <= 1)
		assert.True(t, p.Velocity >= -1 && p.Velocity <= 1)
	}
}

func TestSector_ThreeSkillsInQuarter(t *testing.T) {
	g := NewGenerator(8, device.Standard())
	items := []Item{{Label: "Go"}, {Label: "Rust"}, {Label: "Zig"}}

	blips := g.Sector(items, Band{Start: 0, End: 90, MinDist: 100, MaxDist: 160})
	require.Len(t, blips, 3)

	seen := map[float64]bool{}
	for _, b := range blips {
		assert.Greater(t, b.Angle, 0.0)
		assert.Less(t, b.Angle, 90.0)
		assert.False(t, seen[b.Angle], "angle %v shared", b.Angle)
		seen[b.Angle] = true
	}
	assert.InDelta(t, 15.0, blips[0].Angle, 1e-9)
	assert.InDelta(t, 45.0, blips[1].Angle, 1e-9)
	assert.InDelta(t, 75.0, blips[2].Angle, 1e-9)
	assert.InDelta(t, 100.0, blips[0].Radius, 1e-9)
	assert.InDelta(t, 120.0, blips[1].Radius, 1e-9)
	assert.Equal(t, "Rust", blips[1].Label)
}

func TestSector_InvertedBand(t *testing.T) {
	g := NewGenerator(9, device.Standard())
	blips := g.Sector([]Item{{Label: "a"}, {Label: "b"}}, Band{Start: 350, End: 280})
	require.Len(t, blips, 2)
	for _, b := range blips {
		assert.True(t, b.Angle > 280 && b.Angle < 350, "angle=%v", b.Angle)
	}
}

func TestRing_PartitionAndExplicitAngles(t *testing.T) {
	g := NewGenerator(10, device.Standard())
	orbiters := g.Ring([]Item{{Label: "a"}, {Label: "b"}, {Label: "c"}, {Label: "d"}}, RingSpec{Radius: 160, Velocity: 15})
	require.Len(t, orbiters, 4)
	for i, o := range orbiters {
		assert.InDelta(t, 90.0*float64(i), o.Angle, 1e-9)
		assert.InDelta(t, 160.0, o.Radius, 1e-9)
		assert.InDelta(t, 15.0, o.Velocity, 1e-9)
	}

	explicit := g.Ring([]Item{{Label: "x", Angle: 400, HasAngle: true}}, RingSpec{Radius: 10})
	assert.InDelta(t, 40.0, explicit[0].Angle, 1e-9)

	small := NewGenerator(10, device.Constrained()).Ring([]Item{{Label: "a"}}, RingSpec{Radius: 100, Velocity: 10})
	assert.InDelta(t, 40.0, small[0].Radius, 1e-9)
	assert.InDelta(t, 3.0, small[0].Velocity, 1e-9)
}

func TestShootingStar(t *testing.T) {
	g := NewGenerator(11, device.Standard())
	now := 7 * time.Second
	s := g.ShootingStar(now, 250*time.Millisecond)

	assert.Equal(t, KindShootingStar, s.Kind)
	assert.Equal(t, now, s.CreatedAt)
	assert.True(t, s.Transient())
	assert.True(t, s.Pos.Y >= 0 && s.Pos.Y <= 50)
	assert.GreaterOrEqual(t, s.Lifetime, s.Duration+250*time.Millisecond)
	assert.False(t, s.Expired(now+s.Lifetime-time.Millisecond))
	assert.True(t, s.Expired(now+s.Lifetime))
}

func TestBurst(t *testing.T) {
	g := NewGenerator(12, device.Standard())
	palette := []colorful.Color{ParseHex("#FFC700"), ParseHex("#FF0099")}
	sparks := g.Burst(30, 40, time.Second, BurstConfig{Count: 20, Size: 1, Duration: 600 * time.Millisecond, Colors: palette})

	require.Len(t, sparks, 20)
	assertBounded(t, sparks)
	for _, s := range sparks {
		assert.Equal(t, Vec3{X: 30, Y: 40}, s.Pos)
		assert.Equal(t, time.Second, s.CreatedAt)
		assert.Contains(t, palette, s.Color)
	}
}

func TestCyclicColors(t *testing.T) {
	g := NewGenerator(13, device.Standard())
	palette := ParsePalette([]string{"#ff0000", "#00ff00", "#0000ff"})
	stars := g.Stars(Config{Count: 6, Colors: palette, Pick: PickCyclic})
	for i, s := range stars {
		assert.Equal(t, palette[i%3], s.Color)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
