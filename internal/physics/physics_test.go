package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(0, 0, 3, 4), 1e-9)
	assert.InDelta(t, 25.0, DistanceSquared(0, 0, 3, 4), 1e-9)
	assert.True(t, PointInCircle(1, 1, 0, 0, 2))
	assert.False(t, PointInCircle(3, 0, 0, 0, 2))
}

func TestFalloff(t *testing.T) {
	tests := []struct {
		dist, radius, want float64
	}{
		{0, 10, 1},
		{5, 10, 0.5},
		{10, 10, 0},
		{12, 10, 0},
		{1, 0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Falloff(tt.dist, tt.radius), 1e-9, "dist=%v radius=%v", tt.dist, tt.radius)
	}
}

func TestAngularDistance(t *testing.T) {
	assert.InDelta(t, 10.0, AngularDistance(355, 5), 1e-9)
	assert.InDelta(t, 10.0, AngularDistance(5, 355), 1e-9)
	assert.InDelta(t, 180.0, AngularDistance(0, 180), 1e-9)
	assert.InDelta(t, 0.0, AngularDistance(720, 0), 1e-9)
}

func TestSpatialGrid_Neighborhood(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(1, 1, 0)
	g.Insert(99, 99, 1)
	g.Insert(12, 5, 2)

	var found []int
	g.QueryAround(1, 1, func(i int) bool {
		found = append(found, i)
		return false
	})
	assert.ElementsMatch(t, []int{0, 2}, found)
}

func TestSpatialGrid_EdgesDoNotWrap(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(1, 1, 0)
	g.Insert(99, 99, 1)
	g.Insert(-20, 150, 2) // Clamped into the bottom-left cell

	var found []int
	g.QueryAround(1, 1, func(i int) bool {
		found = append(found, i)
		return false
	})
	assert.ElementsMatch(t, []int{0}, found)

	found = found[:0]
	g.QueryAround(0, 99, func(i int) bool {
		found = append(found, i)
		return false
	})
	assert.ElementsMatch(t, []int{2}, found)
}

func TestSpatialGrid_StopsEarly(t *testing.T) {
	g := NewSpatialGrid(10, 10, 10)
	for i := 0; i < 5; i++ {
		g.Insert(5, 5, i)
	}
	calls := 0
	g.QueryAround(5, 5, func(int) bool {
		calls++
		return true
	})
	assert.Equal(t, 1, calls)

	g.Clear()
	g.QueryAround(5, 5, func(int) bool {
		t.Fatal("grid should be empty")
		return false
	})
}

func TestLinker(t *testing.T) {
	l := NewLinker(100, 100, 15, 0.4)
	pts := []Point{
		{X: 10, Y: 10},
		{X: 20, Y: 10}, // 10 from 0
		{X: 80, Y: 80},
		{X: 25, Y: 10}, // 5 from 1, exactly 15 from 0
	}

	links := l.Find(pts)
	require.Len(t, links, 2)

	byPair := map[[2]int]float64{}
	for _, k := range links {
		assert.Less(t, k.A, k.B)
		byPair[[2]int{k.A, k.B}] = k.Opacity
	}
	assert.InDelta(t, 0.4*(1-10.0/15), byPair[[2]int{0, 1}], 1e-9)
	assert.InDelta(t, 0.4*(1-5.0/15), byPair[[2]int{1, 3}], 1e-9)
	_, boundary := byPair[[2]int{0, 3}]
	assert.False(t, boundary)

	assert.Empty(t, l.Find(pts[:1]))
}
