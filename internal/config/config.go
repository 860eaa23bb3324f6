package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Hackzzila/FrameUi/internal/layout"
)

// FileName is the configuration file looked up next to a document
const FileName = "framec.yaml"

// Config holds the options of the framec tool
type Config struct {
	// SassBinary is the dart-sass executable used for sass and scss styles
	SassBinary string `yaml:"sass"`

	// SassLoadPaths are extra directories searched by @use and @import
	SassLoadPaths []string `yaml:"load_paths,omitempty"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Viewport used by the layout and query commands
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	RTL    bool    `yaml:"rtl,omitempty"`

	// MinLevel hides diagnostics below this level (error, warn, info)
	MinLevel string `yaml:"diagnostics"`

	// Debounce is the watch delay in milliseconds
	Debounce int `yaml:"debounce_ms"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		SassBinary: "sass",
		LogLevel:   "warn",
		Width:      800,
		Height:     600,
		MinLevel:   "info",
		Debounce:   100,
	}
}

// Load reads framec.yaml from dir. A missing file yields the defaults;
// fields the file leaves out keep their default values.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be used as given
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("viewport %gx%g is negative", c.Width, c.Height)
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.MinLevel) {
	case "error", "warn", "info", "":
	default:
		return fmt.Errorf("unknown diagnostics level %q", c.MinLevel)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("negative debounce %d", c.Debounce)
	}
	return nil
}

// ZapLevel parses LogLevel
func (c Config) ZapLevel() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return lvl, nil
}

// Direction is the layout direction selected by RTL
func (c Config) Direction() layout.Direction {
	if c.RTL {
		return layout.DirectionRTL
	}
	return layout.DirectionLTR
}
