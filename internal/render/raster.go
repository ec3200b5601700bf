package render

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/field"
)

// attrStride is the number of floats per particle instance in the attribute
// buffer: alpha, size multiplier, pointer strength, rotation speed.
const attrStride = 4

// Program is the shared drawing state every particle instance is drawn with.
// It is built once at Init from the configured color.
type Program struct {
	Color      colorful.Color
	PointScale float64 // Pixels of radius per unit of instance size
	Strength   float64 // Pointer strength uniform; 0 when interaction is off
	Rotate     bool
}

// Geometry is the shared instance shape: a unit disc approximated by a
// polygon.
type Geometry struct {
	unit [][2]float64
}

func newGeometry(segments int) *Geometry {
	g := &Geometry{unit: make([][2]float64, segments)}
	for i := range g.unit {
		a := 2 * math.Pi * float64(i) / float64(segments)
		g.unit[i] = [2]float64{math.Cos(a), math.Sin(a)}
	}
	return g
}

// trace appends the geometry scaled to radius r at (x, y) to the current path.
// Sub-pixel instances become a plain circle.
func (g *Geometry) trace(ctx *gg.Context, x, y, r float64) {
	if r < 2 {
		ctx.DrawCircle(x, y, r)
		return
	}
	for i, p := range g.unit {
		px, py := x+p[0]*r, y+p[1]*r
		if i == 0 {
			ctx.MoveTo(px, py)
		} else {
			ctx.LineTo(px, py)
		}
	}
	ctx.ClosePath()
}

// RasterOptions configures the raster renderer.
type RasterOptions struct {
	Color            string // Hex; invalid falls back to white
	MouseInteraction bool
	Rotate           bool
	Background       colorful.Color
}

// alphaLevels is the number of alpha buckets particle instances are batched
// into.
const alphaLevels = 16

// Raster renders onto an offscreen gg surface. Particle instances share one
// Program and one Geometry; their per-instance attributes live in a parallel
// float32 buffer bound once. gg has no instancing, so instances are batched
// by quantized alpha: each bucket becomes one path and one Fill. The last
// frame is available as PNG.
type Raster struct {
	opts RasterOptions

	mu       sync.Mutex
	ctx      *gg.Context
	program  *Program
	geometry *Geometry
	attrs    []float32
	bound    int                // Instances in attrs
	buckets  [alphaLevels][]int // Instance indices per alpha level
	width    int
	height   int
	aspect   float64
	released bool
	draws    uint64
	fills    uint64
	frames   uint64
}

var _ Renderer = (*Raster)(nil)

// NewRaster creates a raster renderer. The surface is acquired by Init.
func NewRaster(opts RasterOptions) *Raster {
	return &Raster{opts: opts, aspect: 1}
}

// Init acquires the surface and builds the shared program and geometry.
func (r *Raster) Init(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return fmt.Errorf("%w: renderer already disposed", ErrSurfaceUnavailable)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSurfaceUnavailable, width, height)
	}
	r.ctx = gg.NewContext(width, height)
	r.program = &Program{
		Color:      field.ParseHex(r.opts.Color),
		PointScale: 2.5,
		Rotate:     r.opts.Rotate,
	}
	if r.opts.MouseInteraction {
		r.program.Strength = 0.1
	}
	r.geometry = newGeometry(12)
	r.setViewport(width, height)
	return nil
}

// Resize recomputes the viewport and projection aspect.
func (r *Raster) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil || r.released {
		return
	}
	if err := r.ctx.Resize(width, height); err != nil {
		return
	}
	r.setViewport(width, height)
}

func (r *Raster) setViewport(width, height int) {
	r.width, r.height = width, height
	r.aspect = float64(width) / float64(height)
}

// Aspect returns the viewport aspect ratio.
func (r *Raster) Aspect() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aspect
}

// Program returns the shared program, nil before Init.
func (r *Raster) Program() *Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

// Attributes returns a copy of the bound per-instance attribute buffer.
func (r *Raster) Attributes() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float32(nil), r.attrs[:r.bound*attrStride]...)
}

// Stats returns the number of frames drawn, of instanced draws issued and of
// fills those draws took.
func (r *Raster) Stats() (frames, draws, fills uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, r.draws, r.fills
}

// bind fills the attribute buffer from the particle layer. Entities are fixed
// for the life of an instance, so this runs once unless the layer changes
// size.
func (r *Raster) bind(ps []field.Entity) {
	if len(ps) == r.bound && r.attrs != nil {
		return
	}
	need := len(ps) * attrStride
	if cap(r.attrs) < need {
		r.attrs = make([]float32, need)
	}
	r.attrs = r.attrs[:need]
	for i, p := range ps {
		a := r.attrs[i*attrStride : (i+1)*attrStride]
		a[0] = float32(p.Opacity)
		a[1] = float32(p.Size)
		a[2] = float32(p.Strength)
		a[3] = float32(p.Velocity)
	}
	for l := range r.buckets {
		r.buckets[l] = r.buckets[l][:0]
	}
	for i := range ps {
		l := alphaLevel(r.attrs[i*attrStride])
		r.buckets[l] = append(r.buckets[l], i)
	}
	r.bound = len(ps)
}

// Draw renders one frame.
func (r *Raster) Draw(s *Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil || r.released {
		return ErrNotReady
	}
	bg := r.opts.Background
	r.ctx.ClearWithColor(gg.RGBA2(bg.R, bg.G, bg.B, 1))
	r.frames++
	if s == nil || s.Empty() {
		return nil
	}

	v := viewport{w: float64(r.width), h: float64(r.height)}
	if err := r.drawFlat(v, s); err != nil {
		return err
	}
	if err := r.drawPolar(v, s); err != nil {
		return err
	}
	if len(s.Particles) > 0 {
		r.bind(s.Particles)
		return r.drawInstances(v, s)
	}
	return nil
}

func alphaLevel(opacity float32) int {
	return int(math.Round(field.Clamp01(float64(opacity)) * (alphaLevels - 1)))
}

// drawInstances issues the frame's instanced draw: every particle goes
// through the shared program and geometry with its attributes from the
// buffer, one fill per alpha bucket.
func (r *Raster) drawInstances(v viewport, s *Scene) error {
	r.draws++
	col := r.program.Color
	n := min(r.bound, len(s.Particles))
	for l, idx := range r.buckets {
		traced := 0
		for _, i := range idx {
			if i >= n {
				continue
			}
			x, y, scale := v.world(s.Particles[i].Live.Pos, s.Camera)
			radius := float64(r.attrs[i*attrStride+1]) * r.program.PointScale * scale
			if radius <= 0 {
				continue
			}
			r.geometry.trace(r.ctx, x, y, radius)
			traced++
		}
		if traced == 0 {
			continue
		}
		alpha := float64(l) / (alphaLevels - 1)
		r.ctx.SetRGBA(col.R, col.G, col.B, 0.3+0.7*alpha)
		if err := r.ctx.Fill(); err != nil {
			return fmt.Errorf("draw instances: %w", err)
		}
		r.fills++
	}
	return nil
}

func (r *Raster) fillCircle(x, y, radius float64, col colorful.Color, alpha float64) error {
	if alpha <= 0 || radius <= 0 {
		return nil
	}
	r.ctx.SetRGBA(col.R, col.G, col.B, field.Clamp01(alpha))
	r.ctx.DrawCircle(x, y, radius)
	return r.ctx.Fill()
}

func (r *Raster) line(x1, y1, x2, y2, width float64, col colorful.Color, alpha float64) error {
	if alpha <= 0 {
		return nil
	}
	r.ctx.SetRGBA(col.R, col.G, col.B, field.Clamp01(alpha))
	r.ctx.SetLineWidth(width)
	r.ctx.DrawLine(x1, y1, x2, y2)
	return r.ctx.Stroke()
}

func (r *Raster) drawFlat(v viewport, s *Scene) error {
	unit := math.Min(v.w, v.h) / 400 // Pixels per entity size unit

	for _, e := range s.Stars {
		x, y := v.percent(e.Live.Pos)
		if err := r.fillCircle(x, y, e.Live.Size*unit*2, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	for _, e := range s.Sparkles {
		x, y := v.percent(e.Live.Pos)
		arm := e.Live.Size * unit * 4
		if err := r.line(x-arm, y, x+arm, y, 1, e.Color, e.Live.Opacity); err != nil {
			return err
		}
		if err := r.line(x, y-arm, x, y+arm, 1, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	for _, l := range s.Links {
		if l.A >= len(s.Drifters) || l.B >= len(s.Drifters) {
			continue
		}
		ax, ay := v.percent(s.Drifters[l.A].Live.Pos)
		bx, by := v.percent(s.Drifters[l.B].Live.Pos)
		if err := r.line(ax, ay, bx, by, 1, s.Drifters[l.A].Color, l.Opacity); err != nil {
			return err
		}
	}
	for _, e := range s.Drifters {
		x, y := v.percent(e.Live.Pos)
		if err := r.fillCircle(x, y, e.Live.Size*unit*2, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	for _, e := range s.ShootingStars {
		hx, hy := v.percent(e.Live.Pos)
		rad := field.Radians(e.Angle)
		length := e.Live.Size / 100 * v.w
		tx, ty := hx-math.Cos(rad)*length, hy-math.Sin(rad)*length
		if err := r.line(hx, hy, tx, ty, 1.5, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	for _, e := range s.Sparks {
		x, y := v.percent(e.Live.Pos)
		if err := r.fillCircle(x, y, e.Live.Size*unit*2, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	return nil
}

func (r *Raster) drawPolar(v viewport, s *Scene) error {
	scale := v.polarScale(s.Extent)
	cx, cy := v.center()

	for _, radius := range s.Rings {
		r.ctx.SetRGBA(ringColor.R, ringColor.G, ringColor.B, 0.12)
		r.ctx.SetLineWidth(1)
		r.ctx.DrawCircle(cx, cy, radius*scale)
		if err := r.ctx.Stroke(); err != nil {
			return err
		}
	}
	if s.Radar {
		reach := s.Extent * scale
		r.ctx.SetRGBA(radarColor.R, radarColor.G, radarColor.B, 0.25)
		from, to := field.Radians(s.Sweep-s.Beam), field.Radians(s.Sweep)
		r.ctx.MoveTo(cx, cy)
		r.ctx.LineTo(cx+reach*math.Cos(from), cy+reach*math.Sin(from))
		r.ctx.DrawArc(cx, cy, reach, from, to)
		r.ctx.ClosePath()
		if err := r.ctx.Fill(); err != nil {
			return err
		}
	}

	icon := math.Min(v.w, v.h) / 60
	for _, e := range s.Orbiters {
		x, y := v.polar(e.Live.Pos, scale)
		if err := r.fillCircle(x, y, icon*e.Live.Size, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	for _, e := range s.Blips {
		x, y := v.polar(e.Live.Pos, scale)
		size := icon * 0.6
		if e.Live.Highlighted {
			size = icon
		}
		if err := r.fillCircle(x, y, size, e.Color, e.Live.Opacity); err != nil {
			return err
		}
	}
	return nil
}

// EncodePNG writes the last drawn frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil || r.released {
		return ErrNotReady
	}
	return r.ctx.EncodePNG(w)
}

// Dispose releases the surface exactly once.
func (r *Raster) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	r.attrs = nil
	r.bound = 0
	r.buckets = [alphaLevels][]int{}
	if r.ctx == nil {
		return nil
	}
	err := r.ctx.Close()
	r.ctx = nil
	return err
}
