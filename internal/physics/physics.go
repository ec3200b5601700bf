// Package physics provides distance helpers and neighborhood queries for
// entities laid out on a plane.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// Falloff maps a distance onto a linear weight: 1 at zero, 0 at or beyond
// radius.
func Falloff(dist, radius float64) float64 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	if dist <= 0 {
		return 1
	}
	return 1 - dist/radius
}

// AngularDistance returns the circular distance between two angles in
// degrees, in [0, 180].
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
