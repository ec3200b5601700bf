package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

func render(t *testing.T, c *Canvas) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	return buf.String()
}

func TestCanvas_EmptyRenderPaintsOnce(t *testing.T) {
	c := NewScaledCanvas(4, 2, 8, 8)

	first := render(t, c)
	assert.Equal(t, 8, strings.Count(first, "H"), "every cell is painted on the first frame")
	assert.Empty(t, render(t, c), "unchanged frame emits nothing")

	c.ForceRedraw()
	assert.NotEmpty(t, render(t, c))
}

func TestCanvas_OnlyChangedCellsRender(t *testing.T) {
	c := NewCanvas(10, 5)
	render(t, c)

	c.Plot(3, 4, white, 1)
	out := render(t, c)
	assert.Contains(t, out, "\033[3;4H")
	assert.Contains(t, out, "\033[38;2;255;255;255m")
	assert.Contains(t, out, string(BlockUpperHalf))
	assert.Equal(t, 1, strings.Count(out, "H"))

	// Clearing repaints that cell as empty.
	c.Clear()
	out = render(t, c)
	assert.Contains(t, out, "\033[3;4H ")
}

func TestCanvas_HalfBlocks(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}

	c := NewCanvas(3, 1)
	c.Plot(0, 0, red, 1)
	c.Plot(1, 1, blue, 1)
	c.Plot(2, 0, red, 1)
	c.Plot(2, 1, blue, 1)
	out := render(t, c)

	assert.Contains(t, out, "\033[1;1H\033[38;2;255;0;0m▀")
	assert.Contains(t, out, "\033[1;2H\033[38;2;0;0;255m▄")
	assert.Contains(t, out, "\033[1;3H\033[38;2;255;0;0m\033[48;2;0;0;255m▀")
}

func TestCanvas_OpacityBlends(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Plot(0, 0, white, 0.5)
	out := render(t, c)
	assert.Contains(t, out, "\033[38;2;128;128;128m")

	c.Clear()
	c.Plot(0, 0, white, 0)
	out = render(t, c)
	assert.NotContains(t, out, "38;2")
}

func TestCanvas_OutOfBoundsIgnored(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.NotPanics(t, func() {
		c.Plot(-5, -5, white, 1)
		c.Plot(100, 100, white, 1)
		c.DrawLine(Point{X: -10, Y: -10}, Point{X: 20, Y: 20}, white, 1)
		c.DrawDisc(Point{X: 2, Y: 2}, 10, white, 1)
	})
}

func TestCanvas_ResizeAndOffset(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	sx, sy := c.PixelScale()
	assert.InDelta(t, 0.1, sx, 1e-9)
	assert.InDelta(t, 0.1, sy, 1e-9)

	c.Resize(20, 10)
	assert.Equal(t, 20, c.TerminalWidth())
	assert.Equal(t, 10, c.TerminalHeight())
	sx, sy = c.PixelScale()
	assert.InDelta(t, 0.2, sx, 1e-9)
	assert.InDelta(t, 0.2, sy, 1e-9)

	c.SetOffset(3, 2)
	col, row := c.LogicalToTerminal(50, 50)
	assert.Equal(t, 10+1+3, col)
	assert.Equal(t, 10/2+1+2, row)
}

func TestCanvas_Shapes(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawDisc(Point{X: 10, Y: 10}, 4, white, 1)
	assert.True(t, c.pixels[10*20+10].set, "disc center is filled")

	c.Clear()
	c.DrawRing(Point{X: 10, Y: 10}, 6, white, 1)
	assert.False(t, c.pixels[10*20+10].set, "ring center stays empty")
	assert.True(t, c.pixels[10*20+16].set)

	c.Clear()
	c.DrawWedge(Point{X: 10, Y: 10}, 8, 0, 90, white, 1)
	assert.True(t, c.pixels[13*20+13].set)
	assert.False(t, c.pixels[7*20+7].set)
}

func TestFit(t *testing.T) {
	w, h, oc, or := Fit(80, 24, 200, 60)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, oc, or})

	w, h, oc, or = Fit(250, 70, 200, 60)
	assert.Equal(t, []int{200, 60, 25, 5}, []int{w, h, oc, or})
}

func TestChunkWriter_FlushesInChunks(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 2, 1)
	cw.MoveCursor(1, 1)
	cw.WriteString(strings.Repeat("x", maxChunkSize*3))
	assert.Greater(t, cw.Len(), maxChunkSize*3)

	require.NoError(t, cw.Flush())
	assert.Equal(t, 0, cw.Len())
	assert.True(t, strings.HasPrefix(buf.String(), "\033[2;3H"))
	assert.Equal(t, maxChunkSize*3, strings.Count(buf.String(), "x"))
}

func TestCanvas_InvalidateRepaints(t *testing.T) {
	c := NewCanvas(10, 4)
	c.SetOffset(2, 1)
	render(t, c)

	// A label was written over columns 2-4 of the second row.
	c.Invalidate(2+1+2, 1+2, 3)
	out := render(t, c)
	assert.Equal(t, 3, strings.Count(out, "H"))
	assert.Contains(t, out, "\033[3;5H")

	assert.Empty(t, render(t, c))
	assert.NotPanics(t, func() { c.Invalidate(-10, 100, 50) })
}
