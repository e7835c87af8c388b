package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Cache.Enabled && c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set when the cache is enabled")
	}
	if c.History.Enabled && c.Paths.HistoryPath == "" {
		return errors.New("paths.history_path must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Manifest == "" {
		return errors.New("export.manifest must be set")
	}
	if !slices.Contains(Renderers, c.Export.Renderer) {
		return fmt.Errorf("export.renderer %q is not supported (use one of: %s)", c.Export.Renderer, strings.Join(Renderers, ", "))
	}
	if c.Export.Threads < 1 {
		return errors.New("export.threads must be at least 1")
	}
	if c.Export.MaxBatch < 1 {
		return errors.New("export.max_batch must be at least 1")
	}
	if c.Export.SrcSize != "" {
		if _, _, err := ParseSize(c.Export.SrcSize); err != nil {
			return fmt.Errorf("export.src_size: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}

// ParseSize parses a WIDTHxHEIGHT pair such as "32x32".
func ParseSize(value string) (int, int, error) {
	width, height, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q must look like WIDTHxHEIGHT", value)
	}
	w, err := strconv.Atoi(width)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("size %q has an invalid width", value)
	}
	h, err := strconv.Atoi(height)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("size %q has an invalid height", value)
	}
	return w, h, nil
}
