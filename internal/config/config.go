// Package config loads host settings for the confetti overlay.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"

	// FallbackWidth and FallbackHeight size the window when the monitor
	// size cannot be read.
	FallbackWidth  = 1024
	FallbackHeight = 512
)

// Config holds the host configuration.
type Config struct {
	Backend  string         `yaml:"backend"`
	Window   WindowConfig   `yaml:"window"`
	Terminal TerminalConfig `yaml:"terminal"`
	Effect   EffectConfig   `yaml:"effect"`
	Audio    AudioConfig    `yaml:"audio"`
	Stats    StatsConfig    `yaml:"stats"`
	Log      LogConfig      `yaml:"log"`
}

// WindowConfig holds overlay window settings.
type WindowConfig struct {
	Width       int  `yaml:"width"`  // 0 = monitor width
	Height      int  `yaml:"height"` // 0 = monitor height
	Transparent bool `yaml:"transparent"`
	HUD         bool `yaml:"hud"` // living count and elapsed time
}

// TerminalConfig holds terminal surface settings.
type TerminalConfig struct {
	FPS        int `yaml:"fps"`
	CellWidth  int `yaml:"cell_width"`  // surface units per column
	CellHeight int `yaml:"cell_height"` // surface units per row
}

type EffectConfig struct {
	Continuous bool  `yaml:"continuous"` // recycle flakes until paused
	Seed       int64 `yaml:"seed"`       // 0 = time-based
}

type AudioConfig struct {
	Sound string `yaml:"sound"` // wav, mp3 or flac played with the effect
}

type StatsConfig struct {
	Output string `yaml:"output"` // CSV file for per-frame stats
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty = stderr
}

// Load reads the embedded defaults and overlays the YAML file at path.
// An empty path uses the defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for validity.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	if c.Backend != BackendWindow && c.Backend != BackendTerminal {
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return errors.New("window dimensions cannot be negative")
	}
	if c.Terminal.FPS < 1 || c.Terminal.FPS > 60 {
		return fmt.Errorf("terminal fps out of range (1-60): got %d", c.Terminal.FPS)
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return errors.New("terminal cell size must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// WindowSize returns the configured window size, falling back to the
// monitor size for zero dimensions.
func (c *Config) WindowSize(monitorW, monitorH int) (int, int) {
	w, h := c.Window.Width, c.Window.Height
	if w == 0 {
		w = monitorW
	}
	if h == 0 {
		h = monitorH
	}
	if w <= 0 || h <= 0 {
		return FallbackWidth, FallbackHeight
	}
	return w, h
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
