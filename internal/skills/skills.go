// Package skills holds the static skill catalog shown by the orbit and radar
// variants.
package skills

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/tomz197/starfield/internal/field"
	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var defaultCatalog []byte

// Skill is one catalog entry.
type Skill struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Icon     string   `yaml:"icon"`
	Color    string   `yaml:"color"`
	Sector   string   `yaml:"sector"`
	Ring     *int     `yaml:"ring"`  // nil: not on any orbit
	Angle    *float64 `yaml:"angle"` // nil: evenly partitioned on its ring
}

// Ring is one orbit.
type Ring struct {
	Radius   float64 `yaml:"radius"`
	Velocity float64 `yaml:"velocity"` // Degrees per second
}

// Sector is one radar band.
type Sector struct {
	Name    string  `yaml:"name"`
	Start   float64 `yaml:"start"`
	End     float64 `yaml:"end"`
	MinDist float64 `yaml:"min_dist"`
	MaxDist float64 `yaml:"max_dist"`
}

// Catalog is the parsed skill set.
type Catalog struct {
	Rings   []Ring   `yaml:"rings"`
	Sectors []Sector `yaml:"sectors"`
	Skills  []Skill  `yaml:"skills"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err) // embedded file is checked by tests
	}
	return c
}

// Load reads a catalog file, falling back to the embedded one when path is
// empty or missing.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	return Parse(data)
}

func (s Skill) item() field.Item {
	it := field.Item{
		Label:    s.Name,
		Asset:    s.Icon,
		Category: s.Category,
		Color:    field.ParseHex(s.Color),
	}
	if s.Angle != nil {
		it.Angle = *s.Angle
		it.HasAngle = true
	}
	return it
}

// RingItems returns the skills on ring i in catalog order.
func (c *Catalog) RingItems(i int) []field.Item {
	var out []field.Item
	for _, s := range c.Skills {
		if s.Ring != nil && *s.Ring == i {
			out = append(out, s.item())
		}
	}
	return out
}

// SectorItems returns the skills in the named sector in catalog order.
func (c *Catalog) SectorItems(name string) []field.Item {
	var out []field.Item
	for _, s := range c.Skills {
		if s.Sector == name {
			out = append(out, s.item())
		}
	}
	return out
}

// Band converts a sector to a generator band.
func (s Sector) Band() field.Band {
	return field.Band{Start: s.Start, End: s.End, MinDist: s.MinDist, MaxDist: s.MaxDist}
}

// Spec converts a ring to a generator ring spec.
func (r Ring) Spec() field.RingSpec {
	return field.RingSpec{Radius: r.Radius, Velocity: r.Velocity}
}

// MaxRadius returns the largest layout distance any ring or sector reaches.
func (c *Catalog) MaxRadius() float64 {
	var m float64
	for _, r := range c.Rings {
		m = max(m, r.Radius)
	}
	for _, s := range c.Sectors {
		m = max(m, s.MaxDist, s.MinDist)
	}
	return m
}
