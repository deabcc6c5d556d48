// Package config loads and validates replay configurations.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/sarchlab/cachereplay/cache"
)

// Config represents the complete replay configuration.
type Config struct {
	NumCores         int         `yaml:"num_cores"`
	L1               LevelConfig `yaml:"l1"`
	L2               LevelConfig `yaml:"l2"`
	L3               LevelConfig `yaml:"l3"`
	ProgressInterval uint64      `yaml:"progress_interval"`
}

// LevelConfig describes the geometry of one cache level. Size accepts plain
// byte counts and human-readable strings such as "64KiB" or "5MiB".
type LevelConfig struct {
	Size          string `yaml:"size"`
	LineSize      uint64 `yaml:"line_size"`
	Associativity int    `yaml:"associativity"`
}

// NewDefault returns the default configuration: 78 cores, a 5 MiB 8-way L1
// per thread, a 39 MiB 8-way L2, and a 6 MiB 16-way L3, all with 64-byte
// lines.
func NewDefault() *Config {
	return &Config{
		NumCores:         78,
		L1:               LevelConfig{Size: "5MiB", LineSize: 64, Associativity: 8},
		L2:               LevelConfig{Size: "39MiB", LineSize: 64, Associativity: 8},
		L3:               LevelConfig{Size: "6MiB", LineSize: 64, Associativity: 16},
		ProgressInterval: 10000,
	}
}

// LoadFromFile reads a YAML configuration file on top of the defaults, so a
// file only needs to state the values it changes.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every level describes a realizable cache geometry.
func (c *Config) Validate() error {
	if c.NumCores <= 0 {
		return fmt.Errorf("num_cores must be positive, got %d", c.NumCores)
	}

	levels := []struct {
		name  string
		level LevelConfig
	}{
		{"l1", c.L1},
		{"l2", c.L2},
		{"l3", c.L3},
	}

	for _, l := range levels {
		if err := l.level.validate(); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	return nil
}

// CacheBuilder returns a cache builder configured with the level's geometry.
func (lc LevelConfig) CacheBuilder() (cache.Builder, error) {
	if err := lc.validate(); err != nil {
		return cache.Builder{}, err
	}

	size, err := ParseSize(lc.Size)
	if err != nil {
		return cache.Builder{}, err
	}

	return cache.MakeBuilder().
		WithByteSize(size).
		WithLineSize(lc.LineSize).
		WithWayAssociativity(lc.Associativity), nil
}

func (lc LevelConfig) validate() error {
	size, err := ParseSize(lc.Size)
	if err != nil {
		return err
	}

	if lc.LineSize == 0 {
		return fmt.Errorf("line_size must be positive")
	}

	if lc.Associativity <= 0 {
		return fmt.Errorf(
			"associativity must be positive, got %d", lc.Associativity)
	}

	setSize := lc.LineSize * uint64(lc.Associativity)
	if size%setSize != 0 {
		return fmt.Errorf(
			"size %s does not divide into %d-byte sets", lc.Size, setSize)
	}

	if size/setSize == 0 {
		return fmt.Errorf(
			"size %s cannot hold a single %d-byte set", lc.Size, setSize)
	}

	return nil
}

// ParseSize converts a size string to a byte count. It accepts plain decimal
// byte counts and binary units ("KiB", "MiB", "GiB", and the equally binary
// shorthands "KB", "MB", "GB").
func ParseSize(sizeStr string) (uint64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.ParseUint(sizeStr, 10, 64); err == nil {
		return val, nil
	}

	units := []struct {
		suffix     string
		multiplier uint64
	}{
		{"KiB", cache.KB},
		{"MiB", cache.MB},
		{"GiB", cache.GB},
		{"KB", cache.KB},
		{"MB", cache.MB},
		{"GB", cache.GB},
		{"B", 1},
	}

	upper := strings.ToUpper(sizeStr)
	for _, unit := range units {
		if !strings.HasSuffix(upper, strings.ToUpper(unit.suffix)) {
			continue
		}

		numStr := strings.TrimSpace(
			upper[:len(upper)-len(unit.suffix)])
		val, err := strconv.ParseUint(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size format: %s", sizeStr)
		}

		return val * unit.multiplier, nil
	}

	return 0, fmt.Errorf("invalid size format: %s", sizeStr)
}
