// Package render draws scenes produced by the animation engine.
//
// Two renderers exist. Cell keeps one drawn node per entity on a terminal
// canvas. Raster owns a drawing surface and draws every particle instance
// through one shared program and geometry per frame.
package render

import (
	"errors"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/anim"
	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/physics"
)

var (
	// ErrSurfaceUnavailable is returned by Init when no drawing surface can
	// be acquired.
	ErrSurfaceUnavailable = errors.New("render: surface unavailable")
	// ErrNotReady is returned by Draw before Init or after Dispose.
	ErrNotReady = errors.New("render: renderer not initialized")
)

// Renderer produces visible output from entity state.
type Renderer interface {
	// Init acquires the drawing surface for a width x height viewport.
	Init(width, height int) error
	// Resize adapts the surface and projection to a new viewport.
	Resize(width, height int)
	// Draw renders one frame. A scene with no entities draws nothing and
	// succeeds.
	Draw(s *Scene) error
	// Dispose releases the surface. Safe to call more than once.
	Dispose() error
}

// Pointer is the pointer position in normalized device coordinates.
type Pointer struct {
	X, Y   float64
	Active bool
}

// Scene is the read-only view of one frame. Layers are drawn in field order.
type Scene struct {
	Time time.Duration

	// Viewport percent layers.
	Stars         []field.Entity
	Sparkles      []field.Entity
	Drifters      []field.Entity
	Links         []physics.Link // Indices into Drifters
	ShootingStars []field.Entity
	Sparks        []field.Entity

	// Polar layers, layout units around the viewport center. Extent is the
	// layout radius that reaches the nearest viewport edge.
	Extent   float64
	Rings    []float64
	Orbiters []field.Entity
	Radar    bool
	Sweep    float64 // Degrees
	Beam     float64 // Beam width, degrees
	Blips    []field.Entity

	// World layer.
	Particles []field.Entity
	Camera    anim.Camera

	Pointer Pointer
}

// Count returns the number of entities in the scene.
func (s *Scene) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Stars) + len(s.Sparkles) + len(s.Drifters) + len(s.ShootingStars) +
		len(s.Sparks) + len(s.Orbiters) + len(s.Blips) + len(s.Particles)
}

// Empty reports whether there is nothing to draw.
func (s *Scene) Empty() bool {
	return s.Count() == 0 && (s == nil || (!s.Radar && len(s.Rings) == 0))
}

// viewport maps scene coordinates onto a width x height drawing area.
type viewport struct {
	w, h float64
}

// percent maps viewport percent to area coordinates.
func (v viewport) percent(p field.Vec3) (float64, float64) {
	return p.X / 100 * v.w, p.Y / 100 * v.h
}

// center returns the middle of the area.
func (v viewport) center() (float64, float64) {
	return v.w / 2, v.h / 2
}

// polarScale converts layout units to area units so that extent reaches the
// nearest edge.
func (v viewport) polarScale(extent float64) float64 {
	if extent <= 0 {
		return 1
	}
	return math.Min(v.w, v.h) / 2 / extent
}

// polar maps a layout position around the center to area coordinates.
func (v viewport) polar(p field.Vec3, scale float64) (float64, float64) {
	cx, cy := v.center()
	return cx + p.X*scale, cy + p.Y*scale
}

// world projects a world position through the camera and returns the area
// coordinates and perspective scale.
func (v viewport) world(p field.Vec3, cam anim.Camera) (float64, float64, float64) {
	nx, ny, scale := cam.Project(p)
	return (nx + 1) / 2 * v.w, (1 - ny) / 2 * v.h, scale
}

// Palette colors for scene furniture.
var (
	radarColor = colorful.Color{R: 0.13, G: 0.83, B: 0.93}
	ringColor  = colorful.Color{R: 1, G: 1, B: 1}
)
