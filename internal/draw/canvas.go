package draw

import (
	"io"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// pixel is one half-block sub-pixel.
type pixel struct {
	color colorful.Color
	set   bool
}

// cell is what one terminal cell displays: a top and a bottom sub-pixel.
// overwritten marks cells covered by text since the last Render.
type cell struct {
	top, bottom pixel
	overwritten bool
}

// Canvas is a color drawing buffer with 2x vertical resolution using
// half-block characters. Drawing uses logical coordinates scaled to the
// terminal; Render only emits cells that changed since the previous frame.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []pixel // Flat slice: [y * termWidth + x]
	shown          []cell  // What the terminal currently displays
	stale          bool    // Next Render repaints every cell

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64
	scaleY        float64

	// Offset for centering the render area when the terminal is larger than
	// the max resolution. 0-based columns/rows to skip.
	offsetCol int
	offsetRow int

	// Reusable buffers
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewCanvas creates a canvas for the given terminal dimensions with a 1:1
// logical mapping.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to
// terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping the
// logical size. A size change forces a full repaint.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 0)
	termHeight = max(termHeight, 0)
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]pixel, c.subPixelHeight*termWidth)
		c.shown = make([]cell, termHeight*termWidth)
		c.stale = true
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// ForceRedraw makes the next Render repaint every cell, e.g. after the
// screen was cleared.
func (c *Canvas) ForceRedraw() {
	c.stale = true
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.stale = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels. The terminal keeps showing the previous frame
// until Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel blends col over a pixel at terminal sub-pixel coordinates.
func (c *Canvas) setPixel(x, y int, col colorful.Color, alpha float64) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight || alpha <= 0 {
		return
	}
	p := &c.pixels[y*c.termWidth+x]
	if !p.set {
		p.color = colorful.Color{}
		p.set = true
	}
	p.color = p.color.BlendRgb(col, math.Min(alpha, 1)).Clamped()
}

// toPixel scales logical coordinates to sub-pixel coordinates.
func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

// Plot blends one pixel at logical coordinates.
func (c *Canvas) Plot(x, y float64, col colorful.Color, alpha float64) {
	px, py := c.toPixel(x, y)
	c.setPixel(px, py, col, alpha)
}

// DrawLine draws a line using Bresenham's algorithm. Coordinates are logical.
func (c *Canvas) DrawLine(p1, p2 Point, col colorful.Color, alpha float64) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col, alpha)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon outline, filling the interior when filled is set.
func (c *Canvas) DrawPolygon(points []Point, col colorful.Color, alpha float64, filled bool) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points, col, alpha)
	}

	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col, alpha)
	}
}

// fillPolygon fills a polygon with a scanline pass in pixel space.
func (c *Canvas) fillPolygon(points []Point, col colorful.Color, alpha float64) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i]))
			xEnd := int(math.Floor(intersections[i+1]))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y, col, alpha)
			}
		}
	}
}

// Render writes the cells that changed since the previous Render.
func (c *Canvas) Render(w io.Writer) error {
	cw, ok := w.(*ChunkWriter)
	if !ok {
		cw = NewChunkWriter(w, 0, 0)
	}
	c.renderTo(cw)
	if !ok {
		return cw.Flush()
	}
	return nil
}

func (c *Canvas) renderTo(cw *ChunkWriter) {
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			next := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.stale && next == c.shown[idx] {
				continue
			}
			c.shown[idx] = next

			cw.MoveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			switch {
			case next.top.set && next.bottom.set:
				cw.SetColors(next.top.color, next.bottom.color)
				cw.WriteRune(BlockUpperHalf)
			case next.top.set:
				cw.SetForeground(next.top.color)
				cw.WriteRune(BlockUpperHalf)
			case next.bottom.set:
				cw.SetForeground(next.bottom.color)
				cw.WriteRune(BlockLowerHalf)
			default:
				cw.WriteRune(BlockEmpty)
			}
			cw.ResetStyle()
		}
	}
	c.stale = false
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(cw *ChunkWriter) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	if hasV {
		for _, r := range []struct {
			row         int
			left, right rune
		}{{top, '┌', '┐'}, {bottom, '└', '┘'}} {
			if hasH {
				cw.MoveCursor(left, r.row)
				cw.WriteRune(r.left)
			} else {
				cw.MoveCursor(c.offsetCol+1, r.row)
			}
			for i := 0; i < c.termWidth; i++ {
				cw.WriteRune('─')
			}
			if hasH {
				cw.WriteRune(r.right)
			}
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			cw.MoveCursor(left, row)
			cw.WriteRune('│')
			cw.MoveCursor(right, row)
			cw.WriteRune('│')
		}
	}
}

// Invalidate marks n cells starting at the 1-based terminal position
// (col, row), offset included, as overwritten by something other than the
// canvas, so the next Render repaints them.
func (c *Canvas) Invalidate(col, row, n int) {
	row -= 1 + c.offsetRow
	col -= 1 + c.offsetCol
	if row < 0 || row >= c.termHeight {
		return
	}
	for i := max(col, 0); i < min(col+n, c.termWidth); i++ {
		c.shown[row*c.termWidth+i].overwritten = true
	}
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height, in sub-pixels.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// PixelScale returns how many sub-pixels one logical unit spans, per axis.
func (c *Canvas) PixelScale() (float64, float64) {
	return c.scaleX, c.scaleY
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position (col, row), offset included.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1 + c.offsetCol, py/2 + 1 + c.offsetRow
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The slice is only valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}
