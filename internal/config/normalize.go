package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.ScratchDir, err = expandPath(strings.TrimSpace(c.Paths.ScratchDir)); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryPath) == "" {
		c.Paths.HistoryPath = defaultHistoryPath()
	}
	if c.Paths.HistoryPath, err = expandPath(c.Paths.HistoryPath); err != nil {
		return fmt.Errorf("paths.history_path: %w", err)
	}
	if c.Export.Manifest, err = expandPath(strings.TrimSpace(c.Export.Manifest)); err != nil {
		return fmt.Errorf("export.manifest: %w", err)
	}
	if c.Export.Params, err = expandPath(strings.TrimSpace(c.Export.Params)); err != nil {
		return fmt.Errorf("export.params: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.Naming = strings.TrimSpace(c.Export.Naming)
	if c.Export.Naming == "" {
		c.Export.Naming = defaultNaming
	}
	formats := make([]string, 0, len(c.Export.Formats))
	seen := make(map[string]struct{}, len(c.Export.Formats))
	for _, format := range c.Export.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			continue
		}
		if _, ok := seen[format]; ok {
			continue
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}
	if len(formats) == 0 {
		formats = []string{defaultFormat}
	}
	c.Export.Formats = formats
	c.Export.Renderer = strings.ToLower(strings.TrimSpace(c.Export.Renderer))
	if c.Export.Renderer == "" {
		c.Export.Renderer = defaultRenderer
	}
	c.Export.SrcSize = strings.ToLower(strings.TrimSpace(c.Export.SrcSize))
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Tools.Inkscape, defaults.Inkscape)
	fill(&c.Tools.Rendersvg, defaults.Rendersvg)
	fill(&c.Tools.Convert, defaults.Convert)
	fill(&c.Tools.Cwebp, defaults.Cwebp)
	fill(&c.Tools.Avif, defaults.Avif)
	fill(&c.Tools.Flif, defaults.Flif)
	fill(&c.Tools.Oxipng, defaults.Oxipng)
	fill(&c.Tools.Svgcleaner, defaults.Svgcleaner)
	fill(&c.Tools.Exiftool, defaults.Exiftool)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
