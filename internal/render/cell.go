package render

import (
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/field"
)

// Entity footprints on the logical canvas.
const (
	starRadius     = 0.5 // Per unit of entity size
	particleRadius = 0.8
	iconRadius     = 2.5
)

// Cell renders onto a half-block terminal canvas. Every entity is redrawn
// from its live state each frame; only changed cells reach the terminal.
type Cell struct {
	out    io.Writer
	cw     *draw.ChunkWriter
	canvas *draw.Canvas

	label     lipgloss.Style
	highlight lipgloss.Style

	maxW, maxH int
	ready      bool
	disposed   bool
}

var _ Renderer = (*Cell)(nil)

// NewCell creates a cell renderer writing ANSI output to w.
func NewCell(w io.Writer) *Cell {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(termenv.TrueColor)
	return &Cell{
		out:       w,
		label:     lr.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		highlight: lr.NewStyle().Foreground(lipgloss.Color("#67E8F9")).Bold(true),
		maxW:      config.MaxTermWidth,
		maxH:      config.MaxTermHeight,
	}
}

// Init acquires the terminal area. width and height are in cells.
func (c *Cell) Init(width, height int) error {
	if c.disposed || width <= 0 || height <= 0 {
		return ErrSurfaceUnavailable
	}
	w, h, offCol, offRow := draw.Fit(width, height, c.maxW, c.maxH)
	c.canvas = draw.NewScaledCanvas(w, h, config.ViewWidth, config.ViewHeight)
	c.canvas.SetOffset(offCol, offRow)
	c.cw = draw.NewChunkWriter(c.out, 0, 0)

	draw.HideCursor(c.cw)
	draw.ClearScreen(c.cw)
	c.canvas.RenderBorder(c.cw)
	c.ready = true
	return c.cw.Flush()
}

// Resize refits the canvas to a new terminal size.
func (c *Cell) Resize(width, height int) {
	if !c.ready || width <= 0 || height <= 0 {
		return
	}
	w, h, offCol, offRow := draw.Fit(width, height, c.maxW, c.maxH)
	c.canvas.Resize(w, h)
	c.canvas.SetOffset(offCol, offRow)
	c.canvas.ForceRedraw()

	draw.ClearScreen(c.cw)
	c.canvas.RenderBorder(c.cw)
}

// Aspect returns the aspect ratio of the logical drawing area.
func (c *Cell) Aspect() float64 {
	if c.canvas == nil {
		return float64(config.ViewWidth) / float64(config.ViewHeight)
	}
	return c.canvas.LogicalWidth() / c.canvas.LogicalHeight()
}

// Canvas exposes the underlying canvas.
func (c *Cell) Canvas() *draw.Canvas {
	return c.canvas
}

// Draw renders one frame.
func (c *Cell) Draw(s *Scene) error {
	if !c.ready {
		return ErrNotReady
	}
	c.canvas.Clear()
	if s != nil {
		c.drawScene(s)
	}
	if err := c.canvas.Render(c.cw); err != nil {
		return err
	}
	if s != nil {
		c.drawLabels(s)
	}
	return c.cw.Flush()
}

// Dispose restores the cursor. It does not clear the screen.
func (c *Cell) Dispose() error {
	if c.disposed {
		return nil
	}
	c.disposed = true
	if !c.ready {
		return nil
	}
	c.ready = false
	c.cw.ResetStyle()
	draw.ShowCursor(c.cw)
	return c.cw.Flush()
}

func (c *Cell) area() viewport {
	return viewport{w: c.canvas.LogicalWidth(), h: c.canvas.LogicalHeight()}
}

func (c *Cell) drawScene(s *Scene) {
	v := c.area()

	for _, e := range s.Stars {
		c.dot(v, e)
	}
	for _, e := range s.Sparkles {
		x, y := v.percent(e.Live.Pos)
		c.sparkle(x, y, e.Live.Size, e.Color, e.Live.Opacity)
	}
	for _, l := range s.Links {
		if l.A >= len(s.Drifters) || l.B >= len(s.Drifters) {
			continue
		}
		a, b := s.Drifters[l.A], s.Drifters[l.B]
		ax, ay := v.percent(a.Live.Pos)
		bx, by := v.percent(b.Live.Pos)
		c.canvas.DrawLine(draw.Point{X: ax, Y: ay}, draw.Point{X: bx, Y: by}, a.Color, l.Opacity)
	}
	for _, e := range s.Drifters {
		c.dot(v, e)
	}
	for _, e := range s.ShootingStars {
		c.streak(v, e)
	}
	for _, e := range s.Sparks {
		c.dot(v, e)
	}

	c.drawPolar(v, s)

	for _, e := range s.Particles {
		x, y, scale := v.world(e.Live.Pos, s.Camera)
		c.disc(x, y, e.Live.Size*particleRadius*scale, e.Color, e.Live.Opacity)
	}
}

func (c *Cell) drawPolar(v viewport, s *Scene) {
	scale := v.polarScale(s.Extent)
	cx, cy := v.center()
	center := draw.Point{X: cx, Y: cy}

	for _, r := range s.Rings {
		c.canvas.DrawRing(center, r*scale, ringColor, 0.12)
	}
	if s.Radar {
		for _, f := range []float64{1.0 / 3, 2.0 / 3, 1} {
			c.canvas.DrawRing(center, s.Extent*f*scale, radarColor, 0.15)
		}
		c.canvas.DrawWedge(center, s.Extent*scale, s.Sweep-s.Beam, s.Sweep, radarColor, 0.25)
	}
	for _, e := range s.Orbiters {
		x, y := v.polar(e.Live.Pos, scale)
		c.disc(x, y, iconRadius*e.Live.Size, e.Color, e.Live.Opacity)
	}
	for _, e := range s.Blips {
		x, y := v.polar(e.Live.Pos, scale)
		c.disc(x, y, iconRadius*e.Live.Size*0.6, e.Color, e.Live.Opacity)
		if e.Live.Highlighted {
			c.canvas.DrawRing(draw.Point{X: x, Y: y}, iconRadius*1.6, radarColor, 0.8)
		}
	}
}

// dot draws a viewport percent entity as a disc sized by its live size.
func (c *Cell) dot(v viewport, e field.Entity) {
	x, y := v.percent(e.Live.Pos)
	c.disc(x, y, e.Live.Size*starRadius, e.Color, e.Live.Opacity)
}

func (c *Cell) disc(x, y, r float64, col colorful.Color, alpha float64) {
	if alpha <= 0 || r <= 0 {
		return
	}
	c.canvas.DrawDisc(draw.Point{X: x, Y: y}, r, col, alpha)
}

// sparkle draws a small four-pointed cross scaled by size.
func (c *Cell) sparkle(x, y, size float64, col colorful.Color, alpha float64) {
	if alpha <= 0 || size <= 0 {
		return
	}
	arm := size * 1.5
	c.canvas.DrawLine(draw.Point{X: x - arm, Y: y}, draw.Point{X: x + arm, Y: y}, col, alpha*0.7)
	c.canvas.DrawLine(draw.Point{X: x, Y: y - arm}, draw.Point{X: x, Y: y + arm}, col, alpha*0.7)
	c.canvas.Plot(x, y, col, alpha)
}

// streak draws a shooting star as a bright head and a fading tail.
func (c *Cell) streak(v viewport, e field.Entity) {
	if e.Live.Opacity <= 0 {
		return
	}
	hx, hy := v.percent(e.Live.Pos)
	rad := field.Radians(e.Angle)
	// Tail length is a viewport percent of the width.
	length := e.Live.Size / 100 * v.w
	dx, dy := math.Cos(rad), math.Sin(rad)
	mid := draw.Point{X: hx - dx*length*0.4, Y: hy - dy*length*0.4}
	tail := draw.Point{X: hx - dx*length, Y: hy - dy*length}
	head := draw.Point{X: hx, Y: hy}

	c.canvas.DrawLine(mid, tail, e.Color, e.Live.Opacity*0.3)
	c.canvas.DrawLine(head, mid, e.Color, e.Live.Opacity)
}

// drawLabels writes skill names next to orbiting icons and radar blips.
// Cells under a label are repainted by the next Render.
func (c *Cell) drawLabels(s *Scene) {
	v := c.area()
	scale := v.polarScale(s.Extent)

	put := func(e field.Entity, style lipgloss.Style) {
		if e.Label == "" || e.Live.Opacity <= 0 {
			return
		}
		x, y := v.polar(e.Live.Pos, scale)
		text := style.Render(e.Label)
		width := lipgloss.Width(text)
		col, row := c.canvas.LogicalToTerminal(x, y+iconRadius*2)
		col -= width / 2

		left := c.canvas.OffsetCol() + 1
		right := left + c.canvas.TerminalWidth()
		top := c.canvas.OffsetRow() + 1
		bottom := top + c.canvas.TerminalHeight()
		if col < left || col+width > right || row < top || row >= bottom {
			return
		}
		c.cw.MoveCursor(col, row)
		c.cw.WriteString(text)
		c.canvas.Invalidate(col, row, width)
	}

	for _, e := range s.Orbiters {
		put(e, c.label)
	}
	for _, e := range s.Blips {
		if e.Live.Highlighted {
			put(e, c.highlight)
		} else {
			put(e, c.label)
		}
	}
}
