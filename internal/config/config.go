// Package config loads and validates diskinsight's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/diskinsight/internal/hashing"
	"github.com/idelchi/diskinsight/internal/logging"
)

// Formats lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var Formats = []string{"table", "json", "paths"}

// Config represents the application configuration.
type Config struct {
	Scan        Scan           `yaml:"scan"`
	Output      Output         `yaml:"output"`
	Log         logging.Config `yaml:"log"`
	MetricsFile string         `yaml:"metrics_file"`
}

// Scan holds options passed to the scan engine.
type Scan struct {
	Extensions       []string      `yaml:"extensions"`
	Excludes         []string      `yaml:"excludes"`
	MinSize          string        `yaml:"min_size"` // e.g., "1KB"
	Hash             string        `yaml:"hash"`
	Workers          int           `yaml:"workers"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

// Output holds presentation options.
type Output struct {
	Format string `yaml:"format"`
	Top    int    `yaml:"top"`
	Depth  int    `yaml:"depth"`
	Dupes  bool   `yaml:"dupes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: Scan{
			Extensions:       []string{},
			Excludes:         []string{},
			MinSize:          "0B",
			Hash:             string(hashing.Default),
			ProgressInterval: 500 * time.Millisecond,
		},
		Output: Output{
			Format: "table",
			Top:    10,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, falling back to Default when the
// file does not exist. Fields missing from the file keep their defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to configPath, creating the directory if needed.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // Config is not secret
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output.Format, Formats)
	}

	if c.Output.Top <= 0 {
		return errors.New("top must be > 0")
	}

	if c.Output.Depth < 0 {
		return errors.New("depth cannot be negative")
	}

	if c.Scan.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if !hashing.Valid(hashing.Algorithm(c.Scan.Hash)) {
		return fmt.Errorf("invalid hash %q: must be one of %v", c.Scan.Hash, hashing.Algorithms())
	}

	if _, err := c.MinSizeBytes(); err != nil {
		return err
	}

	for _, p := range c.Scan.Excludes {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}

	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	return nil
}

// MinSizeBytes parses Scan.MinSize.
func (c *Config) MinSizeBytes() (uint64, error) {
	if c.Scan.MinSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.Scan.MinSize)
	if err != nil {
		return 0, fmt.Errorf("invalid min-size %q: %w", c.Scan.MinSize, err)
	}

	return size, nil
}

// Path returns the default config path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "diskinsight", "config.yaml"), nil
}
