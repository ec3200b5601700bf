package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/device"
	"github.com/tomz197/starfield/internal/engine"
	"github.com/tomz197/starfield/internal/host"
	"github.com/tomz197/starfield/internal/render"
	"github.com/tomz197/starfield/internal/skills"
)

// pageRefresh is how often the page polls for a new frame.
const pageRefresh = 100 * time.Millisecond

const (
	viewerCookie = "viewer"
	viewerTTL    = 2 * time.Minute // Viewers not heard from for this long are forgotten
)

// stage is one raster instance running on its own ticker host. Many
// browsers watch the same stage.
type stage struct {
	ticker  *host.Ticker
	raster  *render.Raster
	inst    *engine.Instance
	viewers *viewers
}

type viewer struct {
	hidden   bool
	lastSeen time.Time
}

// viewers tracks which browsers watching a stage can see it. The stage is
// hidden only while every known viewer is hidden.
type viewers struct {
	mu     sync.Mutex
	byID   map[string]viewer
	hidden bool
}

func newViewers() *viewers {
	return &viewers{byID: make(map[string]viewer)}
}

// set records one viewer's visibility and returns the stage visibility when
// it changed.
func (v *viewers) set(id string, hidden bool, now time.Time) (stageHidden, changed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.byID[id] = viewer{hidden: hidden, lastSeen: now}
	all := true
	for vid, vw := range v.byID {
		if now.Sub(vw.lastSeen) > viewerTTL {
			delete(v.byID, vid)
			continue
		}
		all = all && vw.hidden
	}
	if all == v.hidden {
		return v.hidden, false
	}
	v.hidden = all
	return all, true
}

// Len returns the number of known viewers.
func (v *viewers) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byID)
}

func newStage(cfg *config.Config, profile device.Profile, catalog *skills.Catalog, logger *log.Logger) *stage {
	logger = logger.With("profile", profile.Class.String())
	opts := engine.OptionsFromConfig(cfg.Field, profile)
	opts.Catalog = catalog
	opts.MaxFrameDelta = cfg.GetMaxFrameDelta()

	ticker := host.NewTicker(cfg.Web.Width, cfg.Web.Height, profile.TargetFrameInterval, logger)
	raster := render.NewRaster(render.RasterOptions{
		Color:            cfg.Field.Color,
		MouseInteraction: cfg.Field.MouseInteraction,
		Rotate:           cfg.Field.Rotation,
	})
	return &stage{
		ticker:  ticker,
		raster:  raster,
		inst:    engine.New(ticker, raster, opts, logger),
		viewers: newViewers(),
	}
}

// run drives the stage until ctx is cancelled.
func (s *stage) run(ctx context.Context) error {
	if err := s.inst.Init(); err != nil {
		return fmt.Errorf("init stage: %w", err)
	}
	defer s.inst.Dispose()
	return s.ticker.Run(ctx)
}

// see records a viewer's visibility and forwards a stage-wide change to the
// host.
func (s *stage) see(id string, hidden bool) {
	if id == "" {
		return
	}
	if h, changed := s.viewers.set(id, hidden, time.Now()); changed {
		s.ticker.Post(host.Event{Kind: host.Visibility, Hidden: h})
	}
}

// server serves the page, the frames and pointer events.
type server struct {
	stages map[device.Class]*stage
	page   string
	log    *log.Logger
}

func newServer(page string, stages map[device.Class]*stage, logger *log.Logger) *server {
	page = strings.ReplaceAll(page, "{{.Interval}}", strconv.Itoa(int(pageRefresh.Milliseconds())))
	return &server{stages: stages, page: page, log: logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /frame.png", s.handleFrame)
	mux.HandleFunc("POST /event", s.handleEvent)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// stageFor picks the stage matching the client's device.
func (s *server) stageFor(r *http.Request) *stage {
	profile := device.Detect(device.Hints{UserAgent: r.UserAgent()})
	if st, ok := s.stages[profile.Class]; ok {
		return st
	}
	return s.stages[device.ClassStandard]
}

func viewerID(r *http.Request) string {
	c, err := r.Cookie(viewerCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	if viewerID(r) == "" {
		http.SetCookie(w, &http.Cookie{
			Name:     viewerCookie,
			Value:    uuid.NewString(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, s.page)
}

func (s *server) handleFrame(w http.ResponseWriter, r *http.Request) {
	st := s.stageFor(r)
	if st == nil {
		http.Error(w, "no stage", http.StatusServiceUnavailable)
		return
	}
	// Only visible pages poll for frames.
	st.see(viewerID(r), false)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := st.raster.EncodePNG(w); err != nil {
		if errors.Is(err, render.ErrNotReady) {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		s.log.Debug("encode frame", "err", err)
	}
}

// parseEvent decodes an event query: kind is move, click or visibility;
// x and y are normalized device coordinates.
func parseEvent(r *http.Request) (host.Event, error) {
	q := r.URL.Query()
	var e host.Event
	switch q.Get("kind") {
	case "move":
		e.Kind = host.PointerMove
	case "click":
		e.Kind = host.Click
	case "visibility":
		hidden, err := strconv.ParseBool(q.Get("hidden"))
		if err != nil {
			return e, fmt.Errorf("hidden: %w", err)
		}
		return host.Event{Kind: host.Visibility, Hidden: hidden}, nil
	default:
		return e, fmt.Errorf("unknown kind %q", q.Get("kind"))
	}

	for _, c := range []struct {
		name string
		dst  *float64
	}{{"x", &e.X}, {"y", &e.Y}} {
		v, err := strconv.ParseFloat(q.Get(c.name), 64)
		if err != nil {
			return e, fmt.Errorf("%s: %w", c.name, err)
		}
		if v < -1 || v > 1 {
			return e, fmt.Errorf("%s out of range: %v", c.name, v)
		}
		*c.dst = v
	}
	return e, nil
}

func (s *server) handleEvent(w http.ResponseWriter, r *http.Request) {
	e, err := parseEvent(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := s.stageFor(r)
	if st == nil {
		http.Error(w, "no stage", http.StatusServiceUnavailable)
		return
	}
	if e.Kind == host.Visibility {
		id := viewerID(r)
		if id == "" {
			http.Error(w, "missing viewer cookie", http.StatusBadRequest)
			return
		}
		st.see(id, e.Hidden)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if !st.ticker.Post(e) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
