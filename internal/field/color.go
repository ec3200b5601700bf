package field

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// White is the fallback for unparsable colors.
var White = colorful.Color{R: 1, G: 1, B: 1}

// ParseHex decodes "#rrggbb" (or "#rgb") into normalized channels.
// Invalid input falls back to white.
func ParseHex(hex string) colorful.Color {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return White
	}
	return c
}

// ParsePalette decodes a set of hex colors, dropping nothing: invalid entries
// become white. An empty set yields a single white entry.
func ParsePalette(hexes []string) []colorful.Color {
	if len(hexes) == 0 {
		return []colorful.Color{White}
	}
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		out[i] = ParseHex(h)
	}
	return out
}
