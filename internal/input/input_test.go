package input

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParse_Keys(t *testing.T) {
	in, rest := Parse([]byte("xpP"))
	assert.Nil(t, rest)
	assert.False(t, in.Quit)
	assert.Equal(t, 2, in.Toggles)
	assert.Equal(t, []byte("xpP"), in.Pressed)

	in, _ = Parse([]byte("q"))
	assert.True(t, in.Quit)
	in, _ = Parse([]byte{0x03})
	assert.True(t, in.Quit)
}

func TestParse_Mouse(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  Mouse
		click bool
	}{
		{"press", "\x1b[<0;10;5M", Mouse{Col: 10, Row: 5, Button: ButtonLeft}, true},
		{"release", "\x1b[<0;10;5m", Mouse{Col: 10, Row: 5, Button: ButtonLeft, Release: true}, false},
		{"motion", "\x1b[<35;120;40M", Mouse{Col: 120, Row: 40, Button: ButtonNone, Motion: true}, false},
		{"drag", "\x1b[<32;3;4M", Mouse{Col: 3, Row: 4, Button: ButtonLeft, Motion: true}, false},
		{"right", "\x1b[<2;1;1M", Mouse{Col: 1, Row: 1, Button: ButtonRight}, false},
		{"wheel", "\x1b[<64;7;7M", Mouse{Col: 7, Row: 7, Button: ButtonLeft, Wheel: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, rest := Parse([]byte(tt.in))
			assert.Nil(t, rest)
			require.Len(t, in.Mouse, 1)
			assert.Equal(t, tt.want, in.Mouse[0])
			assert.Equal(t, tt.click, in.Mouse[0].Click())
			assert.Empty(t, in.Pressed)
		})
	}
}

func TestParse_MixedAndMalformed(t *testing.T) {
	in, rest := Parse([]byte("a\x1b[A\x1b[<0;2;3Mp\x1b[<1;2Mb"))
	assert.Nil(t, rest)
	assert.Equal(t, []byte("apb"), in.Pressed)
	assert.Equal(t, 1, in.Toggles)
	require.Len(t, in.Mouse, 1)
	assert.Equal(t, 2, in.Mouse[0].Col)
}

func TestParse_Incomplete(t *testing.T) {
	for _, tail := range []string{"\x1b", "\x1b[", "\x1b[<0;1", "\x1b[1;5"} {
		in, rest := Parse([]byte("z" + tail))
		assert.Equal(t, []byte("z"), in.Pressed)
		assert.Equal(t, []byte(tail), rest)
	}
}

func TestStream_CarriesPartialSequences(t *testing.T) {
	s := &Stream{ch: make(chan byte, 32)}
	for _, b := range []byte("\x1b[<0;4") {
		s.ch <- b
	}
	in := ReadInput(s)
	assert.Empty(t, in.Mouse)

	for _, b := range []byte(";9M") {
		s.ch <- b
	}
	in = ReadInput(s)
	require.Len(t, in.Mouse, 1)
	assert.Equal(t, Mouse{Col: 4, Row: 9}, in.Mouse[0])
}

func TestStartStream_EndsOnEOF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := StartStream(ctx, bufio.NewReader(strings.NewReader("pq")))
	var got Input
	require.Eventually(t, func() bool {
		in := ReadInput(s)
		got.Toggles += in.Toggles
		got.Quit = got.Quit || in.Quit
		return s.Closed()
	}, time.Second, time.Millisecond)

	assert.Equal(t, 1, got.Toggles)
	assert.True(t, got.Quit)
}
