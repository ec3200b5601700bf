package physics

// Point is a 2D position.
type Point struct {
	X, Y float64
}

// Link joins two points closer than the link distance. A and B index the
// input slice, A < B.
type Link struct {
	A, B    int
	Opacity float64
}

// Linker finds links between nearby points. It keeps its grid and output
// slice between calls.
type Linker struct {
	grid       *SpatialGrid
	maxDist    float64
	maxOpacity float64
	links      []Link
}

// NewLinker creates a linker for a worldW x worldH plane. Links exist between
// points closer than maxDist; their opacity falls linearly from maxOpacity to
// zero at maxDist.
func NewLinker(worldW, worldH, maxDist, maxOpacity float64) *Linker {
	return &Linker{
		grid:       NewSpatialGrid(worldW, worldH, maxDist),
		maxDist:    maxDist,
		maxOpacity: maxOpacity,
	}
}

// Find returns every link between pts. The result is reused by the next call.
func (l *Linker) Find(pts []Point) []Link {
	l.links = l.links[:0]
	if l.maxDist <= 0 || len(pts) < 2 {
		return l.links
	}

	l.grid.Clear()
	for i, p := range pts {
		l.grid.Insert(p.X, p.Y, i)
	}

	maxSq := l.maxDist * l.maxDist
	for i, p := range pts {
		l.grid.QueryAround(p.X, p.Y, func(j int) bool {
			if j <= i {
				return false
			}
			q := pts[j]
			d2 := DistanceSquared(p.X, p.Y, q.X, q.Y)
			if d2 >= maxSq {
				return false
			}
			l.links = append(l.links, Link{
				A:       i,
				B:       j,
				Opacity: l.maxOpacity * Falloff(Distance(p.X, p.Y, q.X, q.Y), l.maxDist),
			})
			return false
		})
	}
	return l.links
}
