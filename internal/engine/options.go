package engine

import (
	"strings"
	"time"

	"github.com/tomz197/starfield/internal/anim"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/device"
	"github.com/tomz197/starfield/internal/field"
	"github.com/tomz197/starfield/internal/skills"
)

// Variant selects what an instance shows.
type Variant string

const (
	Starfield     Variant = "starfield"
	Particles     Variant = "particles"
	Orbit         Variant = "orbit"
	Radar         Variant = "radar"
	Sparkles      Variant = "sparkles"
	Constellation Variant = "constellation"
)

// Variants lists every variant in display order.
var Variants = []Variant{Starfield, Particles, Orbit, Radar, Sparkles, Constellation}

// ParseVariant resolves a variant name. Unknown names fall back to Starfield.
func ParseVariant(name string) Variant {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Variants {
		if v == known {
			return v
		}
	}
	return Starfield
}

// Options is the immutable configuration of one instance.
type Options struct {
	Variant Variant
	Count   int
	Size    field.Range
	Color   string   // Particle color, hex
	Colors  []string // Sparkle and spark palette, hex

	MouseInteraction bool
	Rotation         bool
	PointerMode      anim.PointerMode
	ClickSparks      bool
	SparkEasing      string
	ShootingStars    int // Requested live streaks; capped at config.ShootingStarMaxLive

	Seed          int64
	MaxFrameDelta time.Duration
	Profile       device.Profile
	Catalog       *skills.Catalog
}

// OptionsFromConfig converts mount-time configuration into instance options.
func OptionsFromConfig(cfg config.FieldConfig, profile device.Profile) Options {
	mode := anim.Attract
	if strings.EqualFold(cfg.PointerMode, "repel") {
		mode = anim.Repel
	}
	return Options{
		Variant:          ParseVariant(cfg.Variant),
		Count:            cfg.Count,
		Size:             field.Range{Min: cfg.SizeMin, Max: cfg.SizeMax},
		Color:            cfg.Color,
		Colors:           append([]string(nil), cfg.Colors...),
		MouseInteraction: cfg.MouseInteraction,
		Rotation:         cfg.Rotation,
		PointerMode:      mode,
		ClickSparks:      cfg.ClickSparks,
		SparkEasing:      cfg.SparkEasing,
		ShootingStars:    cfg.ShootingStars,
		Seed:             cfg.Seed,
		MaxFrameDelta:    config.MaxFrameDelta,
		Profile:          profile,
	}
}

// normalized fills unset options with defaults.
func (o Options) normalized() Options {
	o.Variant = ParseVariant(string(o.Variant))
	if o.Count < 0 {
		o.Count = 0
	}
	if o.Size == (field.Range{}) {
		o.Size = field.Range{Min: 0.4, Max: 1.4}
	}
	if o.ShootingStars < 0 {
		o.ShootingStars = 0
	}
	if o.ShootingStars > config.ShootingStarMaxLive {
		o.ShootingStars = config.ShootingStarMaxLive
	}
	if o.MaxFrameDelta <= 0 {
		o.MaxFrameDelta = config.MaxFrameDelta
	}
	if o.Profile.TargetFrameInterval <= 0 {
		o.Profile = device.Standard()
	}
	if o.Catalog == nil {
		o.Catalog = skills.Default()
	}
	if o.SparkEasing == "" {
		o.SparkEasing = "ease-out-cubic"
	}
	return o
}
