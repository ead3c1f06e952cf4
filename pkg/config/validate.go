package config

import (
	"errors"
	"fmt"

	"github.com/xob0t/covergen/pkg/imageio"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateOverrides(); err != nil {
		return err
	}
	return nil
}

// Validate checks the render settings on their own, for callers that build
// a Render outside of Load.
func (r Render) Validate() error {
	if r.FontSize <= 0 {
		return fmt.Errorf("render.font_size must be positive, got %d", r.FontSize)
	}
	if r.StrokeOffset < 0 {
		return fmt.Errorf("render.stroke_offset must not be negative, got %d", r.StrokeOffset)
	}
	if r.PaddingRatio < 0 || r.PaddingRatio >= maxPaddingRatio {
		return fmt.Errorf("render.padding_ratio must be in [0, %.1f), got %v", maxPaddingRatio, r.PaddingRatio)
	}
	if _, err := r.Style(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.SeekSeconds < 0 {
		return errors.New("batch.seek_seconds must not be negative")
	}
	if c.Batch.Workers < 0 {
		return errors.New("batch.workers must not be negative")
	}
	if c.Batch.Quality < 1 || c.Batch.Quality > 100 {
		return fmt.Errorf("batch.quality must be between 1 and 100, got %d", c.Batch.Quality)
	}
	if c.Batch.MaxWidth < 0 {
		return errors.New("batch.max_width must not be negative")
	}
	if !imageio.SupportedExt(c.Batch.OutputExt) {
		return fmt.Errorf("batch.output_ext %q is not supported; use .jpg, .jpeg or .png", c.Batch.OutputExt)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validateOverrides() error {
	seen := make(map[string]bool, len(c.Overrides))
	for i, o := range c.Overrides {
		if o.File == "" {
			return fmt.Errorf("override #%d: file must be set", i+1)
		}
		if seen[o.File] {
			return fmt.Errorf("override %q is listed more than once", o.File)
		}
		seen[o.File] = true
		if o.FontSize < 0 {
			return fmt.Errorf("override %q: font_size must not be negative", o.File)
		}
	}
	return nil
}
