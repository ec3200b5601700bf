package anim

import (
	"math"
	"time"

	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/physics"
)

// PointerMode selects whether the pointer pulls or pushes particles.
type PointerMode int

const (
	Attract PointerMode = iota
	Repel
)

// Camera is a perspective camera looking down -Z at the origin.
type Camera struct {
	FOV      float64 // Vertical field of view, degrees
	Distance float64 // Camera z
	Aspect   float64 // Width / height
}

// DefaultCamera matches the particle scene: 45 degrees, five units back.
func DefaultCamera() Camera {
	return Camera{FOV: 45, Distance: 5, Aspect: 1}
}

// HalfExtent returns the half width and half height of the visible z=0 plane.
func (c Camera) HalfExtent() (float64, float64) {
	h := c.Distance * math.Tan(field.Radians(c.FOV)/2)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return h * aspect, h
}

// Unproject maps normalized device coordinates onto the z=0 plane.
func (c Camera) Unproject(nx, ny float64) (float64, float64) {
	hw, hh := c.HalfExtent()
	return nx * hw, ny * hh
}

// Project maps a world point onto normalized device coordinates and returns
// the perspective scale at its depth.
func (c Camera) Project(p field.Vec3) (nx, ny, scale float64) {
	depth := c.Distance - p.Z
	if depth <= 0 {
		depth = 1e-3
	}
	scale = c.Distance / depth
	hw, hh := c.HalfExtent()
	return p.X * scale / hw, p.Y * scale / hh, scale
}

// ParticleOptions configures particle motion.
type ParticleOptions struct {
	Rotate   bool
	Speed    float64 // Rotation speed multiplier
	Strength float64 // Pointer displacement at the pointer, world units; 0 disables
	Radius   float64 // Pointer influence radius, world units
	Mode     PointerMode
}

// DefaultParticleOptions returns the stock particle motion.
func DefaultParticleOptions() ParticleOptions {
	return ParticleOptions{Rotate: true, Speed: 1, Strength: 0.1, Radius: 0.5}
}

// rotationRate scales the per-particle rotation speed, radians per second.
const rotationRate = 0.3

// Particles rotates a 3D particle cloud around the z axis and displaces
// particles near the pointer.
type Particles struct {
	Items  []field.Entity
	opts   ParticleOptions
	camera Camera

	pointer     bool
	pointerX    float64 // World units on z=0
	pointerY    float64
	pointerNDCX float64
	pointerNDCY float64
}

// NewParticles creates a particle animator.
func NewParticles(items []field.Entity, opts ParticleOptions, camera Camera) *Particles {
	return &Particles{Items: items, opts: opts, camera: camera}
}

// Camera returns the camera particles are projected with.
func (p *Particles) Camera() Camera {
	return p.camera
}

// SetAspect updates the camera aspect after a resize.
func (p *Particles) SetAspect(aspect float64) {
	p.camera.Aspect = aspect
	if p.pointer {
		p.pointerX, p.pointerY = p.camera.Unproject(p.pointerNDCX, p.pointerNDCY)
	}
}

// SetPointer moves the pointer, in normalized device coordinates.
func (p *Particles) SetPointer(nx, ny float64) {
	p.pointer = true
	p.pointerNDCX, p.pointerNDCY = nx, ny
	p.pointerX, p.pointerY = p.camera.Unproject(nx, ny)
}

// ClearPointer removes the pointer influence.
func (p *Particles) ClearPointer() {
	p.pointer = false
}

// Pointer returns the pointer in normalized device coordinates.
func (p *Particles) Pointer() (float64, float64, bool) {
	return p.pointerNDCX, p.pointerNDCY, p.pointer
}

// Animate implements Animator.
func (p *Particles) Animate(now time.Duration) {
	t := now.Seconds()
	for i := range p.Items {
		e := &p.Items[i]
		x, y := e.Pos.X, e.Pos.Y
		if p.opts.Rotate {
			r := math.Hypot(x, y)
			theta := math.Atan2(y, x) + t*e.Velocity*rotationRate*p.opts.Speed
			x, y = r*math.Cos(theta), r*math.Sin(theta)
		}
		if p.pointer {
			x, y = p.displace(x, y, e.Strength)
		}
		e.Live = field.Live{
			Pos:     field.Vec3{X: x, Y: y, Z: e.Pos.Z},
			Size:    e.Size,
			Opacity: e.Opacity,
		}
	}
}

func (p *Particles) displace(x, y, strength float64) (float64, float64) {
	if p.opts.Strength <= 0 || p.opts.Radius <= 0 {
		return x, y
	}
	if !physics.PointInCircle(x, y, p.pointerX, p.pointerY, p.opts.Radius) {
		return x, y
	}
	dx, dy := p.pointerX-x, p.pointerY-y
	dist := math.Hypot(dx, dy)
	if dist == 0 || dist >= p.opts.Radius {
		return x, y
	}
	k := (1 - dist/p.opts.Radius) * p.opts.Strength * strength
	if p.opts.Mode == Repel {
		k = -k
	}
	return x + dx/dist*k, y + dy/dist*k
}
