// Package device resolves the performance profile an animated section runs with.
//
// The profile is decided once by the host at initialization. Nothing in the
// engine re-evaluates it at runtime.
package device

import (
	"regexp"
	"time"
)

// Class is the coarse device capability class.
type Class int

const (
	ClassStandard Class = iota
	ClassConstrained
)

func (c Class) String() string {
	if c == ClassConstrained {
		return "constrained"
	}
	return "standard"
}

// Profile is the resolved set of performance-scaling parameters.
type Profile struct {
	Class               Class
	MaxEntities         int           // Hard cap on generated entities per collection
	TargetFrameInterval time.Duration // Minimum elapsed time between accepted ticks
	SizeScale           float64       // Multiplier applied to entity size ranges
	RadiusScale         float64       // Multiplier applied to orbit radii
	SpeedScale          float64       // Multiplier applied to orbit angular velocities
}

// Standard is the profile for desktop browsers and roomy terminals.
func Standard() Profile {
	return Profile{
		Class:               ClassStandard,
		MaxEntities:         4000,
		TargetFrameInterval: time.Second / 60,
		SizeScale:           1.0,
		RadiusScale:         1.0,
		SpeedScale:          1.0,
	}
}

// Constrained is the profile for phones and cramped terminals: half the
// entities, 30fps, smaller elements and slower orbits.
func Constrained() Profile {
	return Profile{
		Class:               ClassConstrained,
		MaxEntities:         1000,
		TargetFrameInterval: time.Second / 30,
		SizeScale:           0.6,
		RadiusScale:         0.4,
		SpeedScale:          0.3,
	}
}

// Count applies the profile to a requested entity count.
func (p Profile) Count(requested int) int {
	if requested <= 0 {
		return 0
	}
	n := requested
	if p.Class == ClassConstrained {
		n /= 2
		if n == 0 {
			n = 1
		}
	}
	if p.MaxEntities > 0 && n > p.MaxEntities {
		n = p.MaxEntities
	}
	return n
}

// Hints are what a host knows about the client when it mounts a section.
type Hints struct {
	UserAgent string // HTTP clients
	Columns   int    // Terminal clients
	Rows      int
}

// Small terminals are treated like phones.
const (
	minColumns = 60
	minRows    = 20
)

var mobileAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// Detect picks a profile from client hints.
func Detect(h Hints) Profile {
	if h.UserAgent != "" && mobileAgent.MatchString(h.UserAgent) {
		return Constrained()
	}
	if (h.Columns > 0 && h.Columns < minColumns) || (h.Rows > 0 && h.Rows < minRows) {
		return Constrained()
	}
	return Standard()
}
