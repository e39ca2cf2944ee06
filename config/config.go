// Package config loads buffer manager settings from a JSONC file.
//
// Example file:
//
//	{
//	  // shape budget in bytes
//	  "shape_limit": 8192,
//	  "window": 2,
//	  "dynamic": false,
//	  "pool_heap": true,
//	  "preload": [3, 6, 12],
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"github.com/wippyai/fixedmem"
	"github.com/wippyai/fixedmem/buffers"
	"github.com/wippyai/fixedmem/errors"
)

// EnvVar names the config file used when no path is given explicitly.
const EnvVar = "FIXEDMEM_CONFIG"

// Config holds buffer manager settings.
type Config struct {
	Preload    []int `json:"preload,omitempty"`
	ShapeLimit int   `json:"shape_limit"`
	Window     int   `json:"window"`
	Dynamic    bool  `json:"dynamic"`
	PoolHeap   bool  `json:"pool_heap"`
}

// fileConfig distinguishes absent fields from zero values.
type fileConfig struct {
	ShapeLimit *int  `json:"shape_limit"`
	Window     *int  `json:"window"`
	Dynamic    *bool `json:"dynamic"`
	PoolHeap   *bool `json:"pool_heap"`
	Preload    []int `json:"preload"`
}

// Default returns the settings matching buffers.DefaultOptions.
func Default() Config {
	opts := buffers.DefaultOptions()
	return Config{
		ShapeLimit: opts.ShapeLimit,
		Window:     opts.Window,
		Dynamic:    opts.Dynamic,
		PoolHeap:   opts.PoolHeap,
	}
}

// Path returns the path named by EnvVar, or "".
func Path() string {
	return os.Getenv(EnvVar)
}

// Load reads and validates the JSONC file at path. Fields missing from the
// file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates JSONC config data. Comments and trailing
// commas are allowed; unknown fields are not.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "invalid JSONC")
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "invalid JSON")
	}

	cfg := Default()
	if fc.ShapeLimit != nil {
		cfg.ShapeLimit = *fc.ShapeLimit
	}
	if fc.Window != nil {
		cfg.Window = *fc.Window
	}
	if fc.Dynamic != nil {
		cfg.Dynamic = *fc.Dynamic
	}
	if fc.PoolHeap != nil {
		cfg.PoolHeap = *fc.PoolHeap
	}
	cfg.Preload = fc.Preload

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Window < buffers.DefaultWindow {
		return errors.InvalidConfig("window", c.Window, "must be at least 2")
	}
	if c.ShapeLimit < 0 {
		return errors.InvalidConfig("shape_limit", c.ShapeLimit, "must not be negative")
	}
	for _, size := range c.Preload {
		if size < 1 || size > fixedmem.MaxCapacity {
			return errors.InvalidConfig("preload", size, "sizes must be within 1..65535")
		}
	}
	return nil
}

// BufferOptions maps the settings onto manager options. The registry is
// left nil, meaning the default registry.
func (c Config) BufferOptions(logger *zap.Logger) buffers.Options {
	opts := buffers.Options{
		Logger:     logger,
		ShapeLimit: c.ShapeLimit,
		Window:     c.Window,
		Dynamic:    c.Dynamic,
		PoolHeap:   c.PoolHeap,
	}
	for _, size := range c.Preload {
		opts.Preload = append(opts.Preload, uint16(size))
	}
	return opts
}

// Format renders the settings as indented JSON.
func (c Config) Format() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}
	return string(data), nil
}
