package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/device"
	"github.com/tomz197/starfield/internal/host"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/skills"
)

const iPhoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"

func testServer(t *testing.T) (*server, map[device.Class]*stage) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Web.Width, cfg.Web.Height = 64, 48
	cfg.Field.Variant = "particles"
	cfg.Field.Count = 40
	cfg.Field.Seed = 1

	logger := logging.Discard()
	stages := map[device.Class]*stage{
		device.ClassStandard:    newStage(cfg, device.Standard(), skills.Default(), logger),
		device.ClassConstrained: newStage(cfg, device.Constrained(), skills.Default(), logger),
	}
	t.Cleanup(func() {
		for _, st := range stages {
			st.inst.Dispose()
		}
	})
	return newServer(htmlPage, stages, logger), stages
}

func do(t *testing.T, h http.Handler, method, target, ua string) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, h, method, target, ua, "")
}

func doAs(t *testing.T, h http.Handler, method, target, ua, viewer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if viewer != "" {
		req.AddCookie(&http.Cookie{Name: viewerCookie, Value: viewer})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	s, _ := testServer(t)
	rec := do(t, s.routes(), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `src="/frame.png"`)
	assert.Contains(t, body, "const interval = 100;")
	assert.NotContains(t, body, "{{")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, viewerCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	// A returning viewer keeps its cookie.
	rec = doAs(t, s.routes(), http.MethodGet, "/", "", cookies[0].Value)
	assert.Empty(t, rec.Result().Cookies())
}

func TestFrame_PicksStageByUserAgent(t *testing.T) {
	s, stages := testServer(t)
	h := s.routes()

	// Only the constrained stage is mounted.
	require.NoError(t, stages[device.ClassConstrained].inst.Init())

	rec := do(t, h, http.MethodGet, "/frame.png", "Mozilla/5.0 (X11; Linux x86_64)")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodGet, "/frame.png", iPhoneUA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestEvent(t *testing.T) {
	s, _ := testServer(t)
	h := s.routes()

	tests := []struct {
		target string
		viewer string
		want   int
	}{
		{"/event?kind=click&x=0.5&y=-0.5", "", http.StatusAccepted},
		{"/event?kind=move&x=-1&y=1", "", http.StatusAccepted},
		{"/event?kind=visibility&hidden=true", "a", http.StatusAccepted},
		{"/event?kind=visibility&hidden=true", "", http.StatusBadRequest},
		{"/event?kind=click&x=2&y=0", "", http.StatusBadRequest},
		{"/event?kind=click&x=abc&y=0", "", http.StatusBadRequest},
		{"/event?kind=visibility&hidden=maybe", "a", http.StatusBadRequest},
		{"/event?kind=scroll", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, doAs(t, h, http.MethodPost, tt.target, "", tt.viewer).Code)
		})
	}

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/event?kind=click&x=0&y=0", "").Code)
}

func TestViewers(t *testing.T) {
	v := newViewers()
	now := time.Now()

	hidden, changed := v.set("a", false, now)
	assert.False(t, hidden)
	assert.False(t, changed)

	_, changed = v.set("b", true, now)
	assert.False(t, changed, "a still watches")

	hidden, changed = v.set("a", true, now)
	assert.True(t, hidden)
	assert.True(t, changed)

	hidden, changed = v.set("b", false, now)
	assert.False(t, hidden)
	assert.True(t, changed)

	// Stale viewers are forgotten.
	v.set("c", false, now.Add(viewerTTL+time.Second))
	assert.Equal(t, 1, v.Len())
}

func TestVisibility_OneViewerDoesNotFreezeOthers(t *testing.T) {
	s, stages := testServer(t)
	h := s.routes()
	st := stages[device.ClassStandard]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- st.run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool {
		return doAs(t, h, http.MethodGet, "/frame.png", "", "a").Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, http.StatusOK, doAs(t, h, http.MethodGet, "/frame.png", "", "b").Code)

	// a hides its tab; b keeps watching.
	require.Equal(t, http.StatusAccepted, doAs(t, h, http.MethodPost, "/event?kind=visibility&hidden=true", "", "a").Code)
	before := st.ticker.Frames()
	require.Eventually(t, func() bool {
		return st.ticker.Frames() > before+3
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, st.ticker.Hidden())

	// Once b hides too, the stage stops drawing.
	require.Equal(t, http.StatusAccepted, doAs(t, h, http.MethodPost, "/event?kind=visibility&hidden=true", "", "b").Code)
	require.Eventually(t, st.ticker.Hidden, 2*time.Second, 10*time.Millisecond)

	// Fetching a frame again means a is back.
	doAs(t, h, http.MethodGet, "/frame.png", "", "a")
	require.Eventually(t, func() bool { return !st.ticker.Hidden() }, 2*time.Second, 10*time.Millisecond)
}

func TestParseEvent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/event?kind=click&x=0.25&y=-0.75", nil)
	e, err := parseEvent(req)
	require.NoError(t, err)
	assert.Equal(t, host.Click, e.Kind)
	assert.InDelta(t, 0.25, e.X, 1e-9)
	assert.InDelta(t, -0.75, e.Y, 1e-9)

	x, y := e.Percent()
	assert.InDelta(t, 62.5, x, 1e-9)
	assert.InDelta(t, 87.5, y, 1e-9)
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	assert.Equal(t, http.StatusNoContent, do(t, s.routes(), http.MethodGet, "/healthz", "").Code)
}
