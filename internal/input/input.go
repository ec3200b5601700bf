// Package input decodes terminal input: keys and SGR mouse reports.
package input

import (
	"bufio"
	"context"
	"strconv"
)

// Mouse button codes in SGR reports.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
	ButtonNone   = 3

	motionFlag = 32
	wheelFlag  = 64
)

// Mouse is one decoded SGR mouse report. Col and Row are 1-based terminal
// cells.
type Mouse struct {
	Col, Row int
	Button   int
	Motion   bool
	Release  bool
	Wheel    bool
}

// Click reports whether the event is a primary button press.
func (m Mouse) Click() bool {
	return m.Button == ButtonLeft && !m.Motion && !m.Release && !m.Wheel
}

// Input is the input collected since the last read.
type Input struct {
	Quit    bool
	Toggles int // Visibility toggle presses
	Mouse   []Mouse
	Pressed []byte // Plain key bytes, escape sequences removed
}

// Stream delivers input bytes via a channel and keeps partial escape
// sequences between reads.
type Stream struct {
	ch      chan byte
	pending []byte
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the
// stream. The goroutine exits when r fails or ctx is done; a read already in
// progress is not interrupted.
func StartStream(ctx context.Context, r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 256)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking and
// decodes them.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in, rest := Parse(buf)
	if len(rest) > 0 && !s.closed {
		s.pending = append([]byte(nil), rest...)
	}
	return in
}

// Parse decodes buf. An incomplete trailing escape sequence is returned as
// rest so the caller can prepend it to the next read.
func Parse(buf []byte) (in Input, rest []byte) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyKey(&in, b)
			continue
		}
		if i+1 >= len(buf) {
			return in, buf[i:]
		}
		if buf[i+1] != '[' {
			// Bare escape followed by another key.
			continue
		}
		if i+2 >= len(buf) {
			return in, buf[i:]
		}
		if buf[i+2] != '<' {
			// Other CSI sequences (arrows, focus) carry no meaning here.
			n := skipCSI(buf[i+2:])
			if n < 0 {
				return in, buf[i:]
			}
			i += 2 + n
			continue
		}
		m, n, ok := parseSGR(buf[i+3:])
		if n < 0 {
			return in, buf[i:]
		}
		if ok {
			in.Mouse = append(in.Mouse, m)
		}
		i += 3 + n
	}
	return in, nil
}

func applyKey(in *Input, b byte) {
	switch b {
	case 'q', 'Q', '\x03':
		in.Quit = true
	case 'p', 'P':
		in.Toggles++
	}
	in.Pressed = append(in.Pressed, b)
}

// skipCSI returns the index of the final byte of a CSI sequence body, or -1
// if the sequence is incomplete.
func skipCSI(body []byte) int {
	for j, b := range body {
		if b >= 0x40 && b <= 0x7e {
			return j
		}
	}
	return -1
}

// parseSGR decodes "b;x;yM" or "b;x;ym". n is the index of the final byte,
// -1 when incomplete. ok is false for malformed reports, which are skipped.
func parseSGR(body []byte) (m Mouse, n int, ok bool) {
	var fields [3]int
	field, start := 0, 0
	for j, b := range body {
		switch {
		case b >= '0' && b <= '9':
		case b == ';':
			if field >= 2 {
				return m, j, false
			}
			v, err := strconv.Atoi(string(body[start:j]))
			if err != nil {
				return m, j, false
			}
			fields[field] = v
			field++
			start = j + 1
		case b == 'M' || b == 'm':
			v, err := strconv.Atoi(string(body[start:j]))
			if err != nil || field != 2 {
				return m, j, false
			}
			fields[2] = v
			code := fields[0]
			return Mouse{
				Col:     fields[1],
				Row:     fields[2],
				Button:  code & 3,
				Motion:  code&motionFlag != 0,
				Wheel:   code&wheelFlag != 0,
				Release: b == 'm',
			}, j, true
		default:
			return m, j, false
		}
	}
	return m, -1, false
}
