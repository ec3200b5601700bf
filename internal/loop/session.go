// Package loop runs animated sections in terminal sessions.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/device"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/engine"
	"github.com/tomz197/starfield/internal/host"
	"github.com/tomz197/starfield/internal/input"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/render"
	"github.com/tomz197/starfield/internal/skills"
)

// Fallback size when the terminal cannot report one.
const (
	fallbackCols = 80
	fallbackRows = 24
)

// Options configures a session.
type Options struct {
	Field         config.FieldConfig
	TermSizeFunc  draw.TermSizeFunc // Defaults to draw.DefaultTermSizeFunc
	Profile       *device.Profile   // nil: detected from the terminal size
	Catalog       *skills.Catalog   // nil: embedded catalog
	Rate          time.Duration     // Host frame period; defaults to config.DisplayInterval
	MaxFrameDelta time.Duration     // Defaults to config.MaxFrameDelta
	IdleTimeout   time.Duration     // End the session after this long without input; 0 disables
	Logger        *log.Logger
}

// Session runs one instance against a terminal.
type Session struct {
	r    *bufio.Reader
	w    io.Writer
	opts Options
	log  *log.Logger

	ticker *host.Ticker
	inst   *engine.Instance

	cols, rows int
	hidden     bool
	lastInput  time.Time
}

// NewSession creates a session reading keys and mouse reports from r and
// drawing to w.
func NewSession(r io.Reader, w io.Writer, opts Options) *Session {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Rate <= 0 {
		opts.Rate = config.DisplayInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Session{
		r:    bufio.NewReader(r),
		w:    w,
		opts: opts,
		log:  opts.Logger,
	}
}

// Instance returns the session's instance, nil before Run.
func (s *Session) Instance() *engine.Instance {
	return s.inst
}

func (s *Session) termSize() (int, int) {
	cols, rows, err := s.opts.TermSizeFunc()
	if err != nil || cols <= 0 || rows <= 0 {
		return fallbackCols, fallbackRows
	}
	return cols, rows
}

// Run blocks until the user quits, the input ends or ctx is cancelled. The
// terminal is restored before it returns.
func (s *Session) Run(ctx context.Context) error {
	s.cols, s.rows = s.termSize()

	profile := device.Detect(device.Hints{Columns: s.cols, Rows: s.rows})
	if s.opts.Profile != nil {
		profile = *s.opts.Profile
	}
	opts := engine.OptionsFromConfig(s.opts.Field, profile)
	opts.Catalog = s.opts.Catalog
	if s.opts.MaxFrameDelta > 0 {
		opts.MaxFrameDelta = s.opts.MaxFrameDelta
	}

	s.ticker = host.NewTicker(s.cols, s.rows, s.opts.Rate, s.log)
	s.inst = engine.New(s.ticker, render.NewCell(s.w), opts, s.log)

	pointer := opts.MouseInteraction || opts.ClickSparks
	draw.EnterAltScreen(s.w)
	if pointer {
		draw.EnableMouse(s.w)
	}
	defer func() {
		if pointer {
			draw.DisableMouse(s.w)
		}
		draw.ExitAltScreen(s.w)
	}()

	if err := s.inst.Init(); err != nil {
		return fmt.Errorf("init instance: %w", err)
	}
	defer s.inst.Dispose()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := input.StartStream(ctx, s.r)
	s.lastInput = time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.ticker.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.pump(gctx, stream)
	})
	return g.Wait()
}

// pump forwards input and terminal size changes to the host until the
// session ends.
func (s *Session) pump(ctx context.Context, stream *input.Stream) error {
	poll := time.NewTicker(s.opts.Rate)
	defer poll.Stop()
	lastResize := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-poll.C:
			in := input.ReadInput(stream)
			if in.Quit || stream.Closed() {
				return nil
			}
			if len(in.Pressed) > 0 || len(in.Mouse) > 0 {
				s.lastInput = now
			}
			s.handle(in)

			if now.Sub(lastResize) >= config.ResizePollInterval {
				lastResize = now
				s.checkResize()
			}
			if s.opts.IdleTimeout > 0 && now.Sub(s.lastInput) > s.opts.IdleTimeout {
				s.log.Info("session idle, closing", "idle", now.Sub(s.lastInput).Round(time.Second))
				return nil
			}
		}
	}
}

func (s *Session) handle(in input.Input) {
	for i := 0; i < in.Toggles; i++ {
		s.hidden = !s.hidden
		s.ticker.Post(host.Event{Kind: host.Visibility, Hidden: s.hidden})
	}
	for _, m := range in.Mouse {
		x, y, ok := CellToNDC(m.Col, m.Row, s.cols, s.rows)
		if !ok {
			continue
		}
		if m.Click() {
			s.ticker.Post(host.Event{Kind: host.Click, X: x, Y: y})
		}
		if !m.Release && !m.Wheel {
			s.ticker.Post(host.Event{Kind: host.PointerMove, X: x, Y: y})
		}
	}
}

func (s *Session) checkResize() {
	cols, rows := s.termSize()
	if cols == s.cols && rows == s.rows {
		return
	}
	s.cols, s.rows = cols, rows
	s.ticker.Post(host.Event{Kind: host.Resize, Width: cols, Height: rows})
}

// CellToNDC maps a 1-based terminal cell to normalized device coordinates
// over the render area a cell renderer uses for a cols x rows terminal. ok is
// false outside the area.
func CellToNDC(col, row, cols, rows int) (x, y float64, ok bool) {
	w, h, offCol, offRow := draw.Fit(cols, rows, config.MaxTermWidth, config.MaxTermHeight)
	c, r := col-1-offCol, row-1-offRow
	if w <= 0 || h <= 0 || c < 0 || r < 0 || c >= w || r >= h {
		return 0, 0, false
	}
	x = (float64(c)+0.5)/float64(w)*2 - 1
	y = 1 - (float64(r)+0.5)/float64(h)*2
	return x, y, true
}
