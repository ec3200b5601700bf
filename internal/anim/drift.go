package anim

import (
	"math"
	"time"

	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/physics"
)

// bounce reflects an unbounded coordinate back into [0, 100].
func bounce(v float64) float64 {
	m := math.Mod(v, 200)
	if m < 0 {
		m += 200
	}
	if m > 100 {
		m = 200 - m
	}
	return m
}

// Drift moves drifters in straight lines, bouncing off the viewport edges,
// and links neighbors closer than the link distance.
type Drift struct {
	Items []field.Entity

	linker *physics.Linker
	points []physics.Point
	links  []physics.Link
}

// NewDrift creates a drift animator. A non-positive linkDist disables links.
func NewDrift(items []field.Entity, linkDist, linkOpacity float64) *Drift {
	d := &Drift{Items: items}
	if linkDist > 0 {
		d.linker = physics.NewLinker(100, 100, linkDist, linkOpacity)
	}
	return d
}

// Links returns the links of the last tick. The slice is reused.
func (d *Drift) Links() []physics.Link {
	return d.links
}

// Animate implements Animator.
func (d *Drift) Animate(now time.Duration) {
	t := now.Seconds()
	d.points = d.points[:0]
	for i := range d.Items {
		e := &d.Items[i]
		pos := field.Vec3{
			X: bounce(e.Pos.X + e.Drift.X*t),
			Y: bounce(e.Pos.Y + e.Drift.Y*t),
		}
		e.Live = field.Live{Pos: pos, Size: e.Size, Opacity: e.Opacity}
		d.points = append(d.points, physics.Point{X: pos.X, Y: pos.Y})
	}
	if d.linker != nil {
		d.links = d.linker.Find(d.points)
	}
}
