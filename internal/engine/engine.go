// Package engine binds a host, a renderer, a field generator and a frame
// scheduler into one mounted animated section.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tomz197/starfield/internal/anim"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/host"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/render"
)

var (
	// ErrDisposed is returned by operations on a disposed instance.
	ErrDisposed = errors.New("engine: instance disposed")
	// ErrNotRunning is returned by Tick when the instance is not running.
	ErrNotRunning = errors.New("engine: instance not running")
)

// extentMargin leaves room around the outermost ring or blip.
const extentMargin = 1.15

// aspecter is implemented by renderers whose drawing area aspect differs from
// the host viewport.
type aspecter interface {
	Aspect() float64
}

// Instance is one mounted animated section. It owns its entity collections
// and its renderer exclusively.
type Instance struct {
	id       uuid.UUID
	opts     Options
	host     host.Host
	renderer render.Renderer
	log      *log.Logger

	mu        sync.Mutex
	life      anim.Lifecycle
	closed    bool
	degraded  bool
	frame     host.FrameID
	hasFrame  bool
	listeners []host.ListenerID

	gen   *field.Generator
	sched *anim.Scheduler
	scene render.Scene

	twinkle   *anim.Twinkle
	sparkle   *anim.Sparkle
	shooting  *anim.ShootingStars
	sparks    *anim.Sparks
	particles *anim.Particles
	orbit     *anim.Orbit
	radar     *anim.Radar
	drift     *anim.Drift

	draws     uint64
	drawFails uint64
}

// New creates an instance. Nothing is acquired until Init. A nil logger
// discards output.
func New(h host.Host, r render.Renderer, opts Options, logger *log.Logger) *Instance {
	if logger == nil {
		logger = logging.Discard()
	}
	opts = opts.normalized()
	id := uuid.New()
	return &Instance{
		id:       id,
		opts:     opts,
		host:     h,
		renderer: r,
		log:      logger.With("instance", id.String(), "variant", string(opts.Variant)),
	}
}

// ID returns the instance identifier.
func (in *Instance) ID() uuid.UUID {
	return in.id
}

// Options returns the instance options.
func (in *Instance) Options() Options {
	return in.opts
}

// Init acquires the renderer, generates the field, registers listeners and
// requests the first frame. Calling Init on a running instance does nothing.
func (in *Instance) Init() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return ErrDisposed
	}
	if in.life.State() != anim.Uninitialized {
		return nil
	}
	if err := in.life.To(anim.Initializing); err != nil {
		return err
	}

	w, h := in.host.Size()
	if err := in.renderer.Init(w, h); err != nil {
		in.degraded = true
		in.log.Warn("renderer unavailable, running without drawing", "err", err, "width", w, "height", h)
	}

	in.gen = field.NewGenerator(in.opts.Seed, in.opts.Profile)
	in.sched = anim.NewScheduler(in.opts.Profile.TargetFrameInterval, in.opts.MaxFrameDelta)
	in.build()
	in.applyAspect(w, h)
	in.sched.Refresh()
	in.collect()

	in.listen(host.Resize, in.onResize)
	in.listen(host.Visibility, in.onVisibility)
	if in.opts.MouseInteraction {
		in.listen(host.PointerMove, in.onPointer)
	}
	if in.sparks != nil {
		in.listen(host.Click, in.onClick)
	}

	if err := in.life.To(anim.Running); err != nil {
		return err
	}
	in.requestFrame()

	in.log.Info("instance started",
		"entities", in.scene.Count(),
		"profile", in.opts.Profile.Class.String(),
		"degraded", in.degraded)
	return nil
}

// build generates the variant's collections and wires their animators.
func (in *Instance) build() {
	o := in.opts
	palette := field.ParsePalette(o.Colors)
	cfg := field.Config{Count: o.Count, Size: o.Size}

	switch o.Variant {
	case Starfield:
		in.twinkle = &anim.Twinkle{Stars: in.gen.Stars(cfg)}
		in.shooting = anim.NewShootingStars(in.gen, o.ShootingStars, config.ShootingStarEvery, config.ShootingStarBuffer)
		in.sched.Add(in.twinkle, in.shooting)

	case Sparkles:
		cfg.Colors = palette
		in.sparkle = &anim.Sparkle{Items: in.gen.Sparkles(cfg)}
		in.sched.Add(in.sparkle)

	case Constellation:
		cfg.Colors = palette
		cfg.Pick = field.PickCyclic
		in.drift = anim.NewDrift(in.gen.Drifters(cfg), config.LinkDistance, config.LinkOpacity)
		in.sched.Add(in.drift)

	case Particles:
		cfg.Colors = field.ParsePalette([]string{o.Color})
		popts := anim.DefaultParticleOptions()
		popts.Rotate = o.Rotation
		popts.Mode = o.PointerMode
		if !o.MouseInteraction {
			popts.Strength = 0
		}
		in.particles = anim.NewParticles(in.gen.Sphere(cfg), popts, anim.DefaultCamera())
		in.sched.Add(in.particles)

	case Orbit:
		var items []field.Entity
		for i, ring := range o.Catalog.Rings {
			orbiters := in.gen.Ring(o.Catalog.RingItems(i), ring.Spec())
			items = append(items, orbiters...)
			in.scene.Rings = append(in.scene.Rings, ring.Radius*o.Profile.RadiusScale)
		}
		in.orbit = &anim.Orbit{Items: items}
		in.scene.Extent = extentOf(items, in.scene.Rings)
		in.sched.Add(in.orbit)

	case Radar:
		var blips []field.Entity
		for _, sector := range o.Catalog.Sectors {
			blips = append(blips, in.gen.Sector(o.Catalog.SectorItems(sector.Name), sector.Band())...)
		}
		in.radar = anim.NewRadar(blips, config.RadarSweepDegPerSec, config.RadarHighlightDeg)
		in.radar.OnHighlight = func(e field.Entity) {
			in.log.Debug("skill highlighted", "skill", e.Label, "category", e.Category)
		}
		in.scene.Radar = true
		in.scene.Beam = config.RadarHighlightDeg * 2
		in.scene.Extent = extentOf(blips, nil)
		in.sched.Add(in.radar)
	}

	if o.ClickSparks {
		burst := field.BurstConfig{
			Count:    config.SparkCount,
			Size:     1,
			Duration: config.SparkDuration,
			Colors:   palette,
		}
		in.sparks = anim.NewSparks(in.gen, burst, config.SparkMaxLive, anim.EasingByName(o.SparkEasing))
		in.sched.Add(in.sparks)
	}
}

// extentOf returns the layout radius the polar layers need, with a margin.
func extentOf(items []field.Entity, rings []float64) float64 {
	var m float64
	for _, e := range items {
		m = max(m, e.Radius)
	}
	for _, r := range rings {
		m = max(m, r)
	}
	return m * extentMargin
}

func (in *Instance) listen(kind host.EventKind, fn func(host.Event)) {
	in.listeners = append(in.listeners, in.host.Listen(kind, fn))
}

func (in *Instance) requestFrame() {
	in.frame = in.host.RequestFrame(in.onFrame)
	in.hasFrame = true
}

func (in *Instance) cancelFrame() {
	if in.hasFrame {
		in.host.CancelFrame(in.frame)
		in.hasFrame = false
	}
}

func (in *Instance) onFrame(ts time.Duration) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.hasFrame = false
	if in.life.State() != anim.Running {
		return
	}
	if in.sched.Frame(ts) {
		in.draw()
	}
	in.requestFrame()
}

// Tick advances the clock by dt (clamped) and draws.
func (in *Instance) Tick(dt time.Duration) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return ErrDisposed
	}
	if in.life.State() != anim.Running {
		return fmt.Errorf("%w: %s", ErrNotRunning, in.life.State())
	}
	in.sched.Tick(dt)
	in.draw()
	return nil
}

// draw collects the scene and hands it to the renderer.
func (in *Instance) draw() {
	in.collect()
	if in.degraded {
		return
	}
	if err := in.renderer.Draw(&in.scene); err != nil {
		in.drawFails++
		in.log.Debug("draw failed", "err", err)
		return
	}
	in.draws++
}

// collect points the scene layers at the animators' live collections.
func (in *Instance) collect() {
	s := &in.scene
	s.Time = in.sched.Clock()
	if in.twinkle != nil {
		s.Stars = in.twinkle.Stars
	}
	if in.shooting != nil {
		s.ShootingStars = in.shooting.Entities()
	}
	if in.sparkle != nil {
		s.Sparkles = in.sparkle.Items
	}
	if in.drift != nil {
		s.Drifters = in.drift.Items
		s.Links = in.drift.Links()
	}
	if in.sparks != nil {
		s.Sparks = in.sparks.Entities()
	}
	if in.particles != nil {
		s.Particles = in.particles.Items
		s.Camera = in.particles.Camera()
	}
	if in.orbit != nil {
		s.Orbiters = in.orbit.Items
	}
	if in.radar != nil {
		s.Blips = in.radar.Items
		s.Sweep = in.radar.Sweep()
	}
}

// Suspend freezes the instance. Entity state is kept.
func (in *Instance) Suspend() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.suspend()
}

func (in *Instance) suspend() error {
	if in.closed {
		return ErrDisposed
	}
	if err := in.life.To(anim.Suspended); err != nil {
		return err
	}
	in.cancelFrame()
	in.log.Debug("suspended", "clock", in.sched.Clock())
	return nil
}

// Resume continues a suspended instance. The first tick after resuming is
// clamped like any other, so the animation does not jump.
func (in *Instance) Resume() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.resume()
}

func (in *Instance) resume() error {
	if in.closed {
		return ErrDisposed
	}
	if err := in.life.To(anim.Running); err != nil {
		return err
	}
	in.requestFrame()
	in.log.Debug("resumed", "clock", in.sched.Clock())
	return nil
}

func (in *Instance) onVisibility(e host.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()

	var err error
	if e.Hidden {
		err = in.suspend()
	} else {
		err = in.resume()
	}
	if err != nil && !errors.Is(err, anim.ErrTransition) {
		in.log.Debug("visibility change ignored", "err", err)
	}
}

func (in *Instance) onResize(e host.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed || e.Width <= 0 || e.Height <= 0 {
		return
	}
	if !in.degraded {
		in.renderer.Resize(e.Width, e.Height)
	}
	in.applyAspect(e.Width, e.Height)
}

func (in *Instance) applyAspect(w, h int) {
	if in.particles == nil {
		return
	}
	aspect := 1.0
	if a, ok := in.renderer.(aspecter); ok && !in.degraded {
		aspect = a.Aspect()
	} else if w > 0 && h > 0 {
		aspect = float64(w) / float64(h)
	}
	in.particles.SetAspect(aspect)
}

func (in *Instance) onPointer(e host.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.scene.Pointer = render.Pointer{X: e.X, Y: e.Y, Active: true}
	if in.particles != nil {
		in.particles.SetPointer(e.X, e.Y)
	}
}

func (in *Instance) onClick(e host.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.sparks == nil || in.life.State() != anim.Running {
		return
	}
	x, y := e.Percent()
	in.sparks.Burst(x, y, in.sched.Clock())
}

// Dispose cancels the pending frame, removes every listener and releases the
// renderer. It is safe to call more than once and after a partial Init.
func (in *Instance) Dispose() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil
	}
	in.closed = true

	in.cancelFrame()
	for _, id := range in.listeners {
		in.host.Unlisten(id)
	}
	in.listeners = nil

	err := in.renderer.Dispose()
	if err != nil {
		in.log.Warn("renderer release failed", "err", err)
	}
	if in.life.Can(anim.Disposed) {
		_ = in.life.To(anim.Disposed)
	}
	in.log.Info("instance disposed", "ticks", in.ticks(), "draws", in.draws)
	return err
}

func (in *Instance) ticks() uint64 {
	if in.sched == nil {
		return 0
	}
	return in.sched.Ticks()
}

// State returns the lifecycle state.
func (in *Instance) State() anim.State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.life.State()
}

// Disposed reports whether Dispose has run.
func (in *Instance) Disposed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

// Degraded reports whether the renderer failed to initialize.
func (in *Instance) Degraded() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.degraded
}

// Clock returns the animation clock.
func (in *Instance) Clock() time.Duration {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.sched == nil {
		return 0
	}
	return in.sched.Clock()
}

// Stats reports ticks run, frames drawn and failed draws.
func (in *Instance) Stats() (ticks, draws, failures uint64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ticks(), in.draws, in.drawFails
}

// Snapshot returns a copy of the current scene. Layer slices are copied so
// the result stays valid while the instance keeps running.
func (in *Instance) Snapshot() render.Scene {
	in.mu.Lock()
	defer in.mu.Unlock()

	s := in.scene
	s.Stars = append([]field.Entity(nil), s.Stars...)
	s.Sparkles = append([]field.Entity(nil), s.Sparkles...)
	s.Drifters = append([]field.Entity(nil), s.Drifters...)
	s.Links = append(s.Links[:0:0], s.Links...)
	s.ShootingStars = append([]field.Entity(nil), s.ShootingStars...)
	s.Sparks = append([]field.Entity(nil), s.Sparks...)
	s.Rings = append([]float64(nil), s.Rings...)
	s.Orbiters = append([]field.Entity(nil), s.Orbiters...)
	s.Blips = append([]field.Entity(nil), s.Blips...)
	s.Particles = append([]field.Entity(nil), s.Particles...)
	return s
}

// Highlighted returns the radar's highlighted skill, if any.
func (in *Instance) Highlighted() (field.Entity, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.radar == nil {
		return field.Entity{}, false
	}
	return in.radar.Highlighted()
}
