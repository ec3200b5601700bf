package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all starfield configuration.
type Config struct {
	Field   FieldConfig   `yaml:"field"`
	Timing  TimingConfig  `yaml:"timing"`
	Logging LoggingConfig `yaml:"logging"`
	SSH     SSHConfig     `yaml:"ssh"`
	Web     WebConfig     `yaml:"web"`
}

// FieldConfig is the plain data the page composition layer hands to an
// animated section when it mounts.
type FieldConfig struct {
	Variant          string   `yaml:"variant"` // starfield, particles, orbit, radar, sparkles, constellation
	Count            int      `yaml:"count"`
	Color            string   `yaml:"color"`  // hex, used by the particle variant
	Colors           []string `yaml:"colors"` // hex set for sparkles and sparks
	SizeMin          float64  `yaml:"size_min"`
	SizeMax          float64  `yaml:"size_max"`
	MouseInteraction bool     `yaml:"mouse_interaction"`
	Rotation         bool     `yaml:"rotation"`
	ClickSparks      bool     `yaml:"click_sparks"`
	ShootingStars    int      `yaml:"shooting_stars"`
	SparkEasing      string   `yaml:"spark_easing"` // linear, ease-out-cubic, ease-in-out, spring
	PointerMode      string   `yaml:"pointer_mode"` // attract or repel
	SkillsFile       string   `yaml:"skills_file"`  // empty means the embedded catalog
	Seed             int64    `yaml:"seed"`         // 0 means time-seeded
}

// TimingConfig configures frame pacing.
type TimingConfig struct {
	MaxFrameDelta string `yaml:"max_frame_delta"`
	DisplayRate   int    `yaml:"display_rate"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SSHConfig configures cmd/ssh.
type SSHConfig struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	HostKey string `yaml:"host_key"`
}

// WebConfig configures cmd/web.
type WebConfig struct {
	Host   string `yaml:"host"`
	Port   string `yaml:"port"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Field: FieldConfig{
			Variant:       "starfield",
			Count:         100,
			Color:         "#ffffff",
			Colors:        []string{"#FFC700", "#FF0099", "#00FFD1", "#7CFFCB", "#FFFFFF"},
			SizeMin:       0.4,
			SizeMax:       1.4,
			Rotation:      true,
			ClickSparks:   true,
			ShootingStars: 15,
			SparkEasing:   "ease-out-cubic",
			PointerMode:   "attract",
		},
		Timing: TimingConfig{
			MaxFrameDelta: MaxFrameDelta.String(),
			DisplayRate:   DisplayRate,
		},
		Logging: LoggingConfig{Level: "info"},
		SSH: SSHConfig{
			Host:    "::",
			Port:    "2222",
			HostKey: "/app/keys/host_key",
		},
		Web: WebConfig{
			Host:   "0.0.0.0",
			Port:   "8080",
			Width:  960,
			Height: 540,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets deployment environments override file settings.
func (c *Config) applyEnvOverrides() {
	c.Field.Variant = GetEnv("STARFIELD_VARIANT", c.Field.Variant)
	c.Field.Count = GetEnvInt("STARFIELD_COUNT", c.Field.Count)
	c.Field.Color = GetEnv("STARFIELD_COLOR", c.Field.Color)
	c.Field.MouseInteraction = GetEnvBool("STARFIELD_MOUSE", c.Field.MouseInteraction)
	c.Logging.Level = GetEnv("STARFIELD_LOG_LEVEL", c.Logging.Level)
	if d := GetEnvDuration("STARFIELD_MAX_FRAME_DELTA", 0); d > 0 {
		c.Timing.MaxFrameDelta = d.String()
	}

	c.SSH.Host = GetEnv("SSH_HOST", c.SSH.Host)
	c.SSH.Port = GetEnv("SSH_PORT", c.SSH.Port)
	c.SSH.HostKey = GetEnv("SSH_HOST_KEY", c.SSH.HostKey)

	c.Web.Host = GetEnv("WEB_HOST", c.Web.Host)
	c.Web.Port = GetEnv("WEB_PORT", c.Web.Port)
}

// normalize silently repairs invalid values; configuration errors never
// surface to the animated sections.
func (c *Config) normalize() {
	if c.Field.Count < 0 {
		c.Field.Count = 0
	}
	if c.Field.ShootingStars < 0 {
		c.Field.ShootingStars = 0
	}
	if c.Timing.DisplayRate <= 0 {
		c.Timing.DisplayRate = DisplayRate
	}
	if c.Web.Width <= 0 || c.Web.Height <= 0 {
		c.Web.Width, c.Web.Height = 960, 540
	}
}

// GetMaxFrameDelta parses the max frame delta, falling back to MaxFrameDelta.
func (c *Config) GetMaxFrameDelta() time.Duration {
	d, err := time.ParseDuration(c.Timing.MaxFrameDelta)
	if err != nil || d <= 0 {
		return MaxFrameDelta
	}
	return d
}

// GetDisplayInterval returns the host frame period.
func (c *Config) GetDisplayInterval() time.Duration {
	if c.Timing.DisplayRate <= 0 {
		return DisplayInterval
	}
	return time.Second / time.Duration(c.Timing.DisplayRate)
}
