package draw

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// circleSegments picks a polygon resolution for a circle of radius r logical
// units so that edges stay under about two sub-pixels.
func (c *Canvas) circleSegments(r float64) int {
	px := r * math.Max(c.scaleX, c.scaleY)
	return min(max(int(px*math.Pi), 8), 96)
}

// circle fills the borrowed point buffer with a regular polygon.
func (c *Canvas) circle(center Point, r float64) []Point {
	n := c.circleSegments(r)
	pts := c.BorrowPoints(n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

// DrawDisc draws a filled circle. Discs smaller than one sub-pixel plot a
// single point.
func (c *Canvas) DrawDisc(center Point, r float64, col colorful.Color, alpha float64) {
	if r*math.Max(c.scaleX, c.scaleY) < 1 {
		c.Plot(center.X, center.Y, col, alpha)
		return
	}
	c.DrawPolygon(c.circle(center, r), col, alpha, true)
}

// DrawRing draws a circle outline.
func (c *Canvas) DrawRing(center Point, r float64, col colorful.Color, alpha float64) {
	if r <= 0 {
		return
	}
	c.DrawPolygon(c.circle(center, r), col, alpha, false)
}

// DrawWedge fills the circular sector between two angles in degrees, used
// for the radar beam.
func (c *Canvas) DrawWedge(center Point, r, fromDeg, toDeg float64, col colorful.Color, alpha float64) {
	if r <= 0 || toDeg <= fromDeg {
		return
	}
	n := max(int((toDeg-fromDeg)/5), 2)
	pts := c.BorrowPoints(n + 2)
	pts[0] = center
	for i := 0; i <= n; i++ {
		a := (fromDeg + (toDeg-fromDeg)*float64(i)/float64(n)) * math.Pi / 180
		pts[i+1] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	c.DrawPolygon(pts, col, alpha, true)
}
