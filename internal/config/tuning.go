package config

import "time"

// View resolution - the logical canvas in which cell renderers lay out entities.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 160 // Logical viewport width
	ViewHeight = 96  // Logical viewport height (in sub-pixels, so 48 terminal rows)
)

// Max render resolution - terminals larger than this get a centered, bordered area.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Frame pacing
const (
	// DisplayRate is how often hosts fire frame callbacks (the "vsync" of a terminal).
	DisplayRate = 60
	// DisplayInterval is the period between host frame callbacks.
	DisplayInterval = time.Second / DisplayRate
	// MaxFrameDelta clamps the elapsed time applied by a single tick so a resumed
	// animation does not jump forward by the whole suspension.
	MaxFrameDelta = 100 * time.Millisecond
)

// Shooting stars
const (
	ShootingStarEvery   = 2 * time.Second
	ShootingStarMaxLive = 8
	ShootingStarBuffer  = 250 * time.Millisecond
)

// Click sparks
const (
	SparkCount    = 20
	SparkDuration = 600 * time.Millisecond
	SparkMaxLive  = 200
)

// Radar
const (
	RadarSweepDegPerSec = 1000.0 / 30.0 // one degree every 30ms
	RadarHighlightDeg   = 15.0
)

// Constellation links
const (
	LinkDistance = 15.0 // viewport percent
	LinkOpacity  = 0.4
)

// Input
const (
	// ResizePollInterval is how often terminal sessions check for a size change.
	ResizePollInterval = 250 * time.Millisecond
)
