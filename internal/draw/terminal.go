package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"
)

// maxChunkSize is the maximum bytes to write at once. Matches a typical MTU
// so frames stream smoothly over SSH.
const maxChunkSize = 1400

// Terminal control sequences.
const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
	seqAltScreen  = "\033[?1049h"
	seqMainScreen = "\033[?1049l"
	seqMouseOn    = "\033[?1003h\033[?1006h" // Any-motion tracking, SGR encoding
	seqMouseOff   = "\033[?1003l\033[?1006l"
	seqResetStyle = "\033[0m"
)

// ChunkWriter accumulates terminal output and writes it in chunks. Use
// MoveCursor, the style setters and WriteString to accumulate, then Flush.
type ChunkWriter struct {
	buf    strings.Builder
	bufw   *bufio.Writer
	numBuf [20]byte // Scratch buffer for allocation-free integer formatting
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter that writes to w. offsetCol and
// offsetRow are added to all MoveCursor coordinates.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		bufw:   bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the cursor offset.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

func (cw *ChunkWriter) writeInt(v int) {
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(v), 10))
}

// MoveCursor appends an ANSI cursor position sequence. col and row are
// 1-based; the offset is applied.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf.WriteString("\033[")
	cw.writeInt(row + cw.offRow)
	cw.buf.WriteByte(';')
	cw.writeInt(col + cw.offCol)
	cw.buf.WriteByte('H')
}

func (cw *ChunkWriter) writeRGB(selector int, c colorful.Color) {
	r, g, b := c.Clamped().RGB255()
	cw.buf.WriteString("\033[")
	cw.writeInt(selector)
	cw.buf.WriteString(";2;")
	cw.writeInt(int(r))
	cw.buf.WriteByte(';')
	cw.writeInt(int(g))
	cw.buf.WriteByte(';')
	cw.writeInt(int(b))
	cw.buf.WriteByte('m')
}

// SetForeground appends a 24-bit foreground color.
func (cw *ChunkWriter) SetForeground(c colorful.Color) {
	cw.writeRGB(38, c)
}

// SetColors appends 24-bit foreground and background colors.
func (cw *ChunkWriter) SetColors(fg, bg colorful.Color) {
	cw.writeRGB(38, fg)
	cw.writeRGB(48, bg)
}

// ResetStyle appends an SGR reset.
func (cw *ChunkWriter) ResetStyle() {
	cw.buf.WriteString(seqResetStyle)
}

// Write implements io.Writer.
func (cw *ChunkWriter) Write(p []byte) (n int, err error) {
	return cw.buf.Write(p)
}

// WriteString appends a string.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// WriteAt writes a string at a 1-based position; the offset is applied.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.buf.WriteString(s)
}

// WriteRune appends a rune.
func (cw *ChunkWriter) WriteRune(r rune) {
	cw.buf.WriteRune(r)
}

// Len returns the number of buffered bytes not yet flushed.
func (cw *ChunkWriter) Len() int {
	return cw.buf.Len()
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush writes the accumulated buffer to the underlying writer in chunks,
// then resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := cw.bufw.WriteString(chunk); err != nil {
			return err
		}
		if err := cw.bufw.Flush(); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return cw.bufw.Flush()
}

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and moves the cursor to the top-left.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, seqHideCursor)
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	io.WriteString(w, seqShowCursor)
}

// EnterAltScreen switches to the alternate screen buffer.
func EnterAltScreen(w io.Writer) {
	io.WriteString(w, seqAltScreen)
}

// ExitAltScreen returns to the main screen buffer.
func ExitAltScreen(w io.Writer) {
	io.WriteString(w, seqMainScreen)
}

// EnableMouse turns on any-motion mouse reporting in SGR encoding.
func EnableMouse(w io.Writer) {
	io.WriteString(w, seqMouseOn)
}

// DisableMouse turns mouse reporting off.
func DisableMouse(w io.Writer) {
	io.WriteString(w, seqMouseOff)
}

// Fit computes the render area and centering offsets for a terminal of
// termW x termH cells, capped at maxW x maxH. When capped, one cell on each
// side is kept free for the border.
func Fit(termW, termH, maxW, maxH int) (w, h, offCol, offRow int) {
	w, h = termW, termH
	if w > maxW {
		w = maxW
		offCol = (termW - w) / 2
	}
	if h > maxH {
		h = maxH
		offRow = (termH - h) / 2
	}
	return w, h, offCol, offRow
}
