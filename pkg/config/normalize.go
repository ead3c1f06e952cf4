package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeRender(); err != nil {
		return err
	}
	if err := c.normalizeBatch(); err != nil {
		return err
	}
	if err := c.normalizeOverrides(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizeRender() error {
	if value, ok := os.LookupEnv(envFontPath); ok && strings.TrimSpace(value) != "" {
		c.Render.FontPath = value
	}
	var err error
	if c.Render.FontPath, err = expandPath(strings.TrimSpace(c.Render.FontPath)); err != nil {
		return fmt.Errorf("render.font_path: %w", err)
	}
	c.Render.TextColor = strings.TrimSpace(c.Render.TextColor)
	if c.Render.TextColor == "" {
		c.Render.TextColor = defaultTextColor
	}
	c.Render.StrokeColor = strings.TrimSpace(c.Render.StrokeColor)
	if c.Render.StrokeColor == "" {
		c.Render.StrokeColor = defaultStrokeColor
	}
	return nil
}

func (c *Config) normalizeBatch() error {
	if value, ok := os.LookupEnv(envFolder); ok && strings.TrimSpace(value) != "" {
		c.Batch.Folder = value
	}
	var err error
	if c.Batch.Folder, err = expandPath(strings.TrimSpace(c.Batch.Folder)); err != nil {
		return fmt.Errorf("batch.folder: %w", err)
	}
	c.Batch.OutputExt = strings.ToLower(strings.TrimSpace(c.Batch.OutputExt))
	switch {
	case c.Batch.OutputExt == "":
		c.Batch.OutputExt = defaultOutputExt
	case !strings.HasPrefix(c.Batch.OutputExt, "."):
		c.Batch.OutputExt = "." + c.Batch.OutputExt
	}
	if c.Batch.Quality == 0 {
		c.Batch.Quality = defaultQuality
	}
	return nil
}

func (c *Config) normalizeOverrides() error {
	for i := range c.Overrides {
		o := &c.Overrides[i]
		o.File = strings.TrimSpace(o.File)
		if strings.TrimSpace(o.FontPath) == "" {
			o.FontPath = ""
			continue
		}
		var err error
		if o.FontPath, err = expandPath(strings.TrimSpace(o.FontPath)); err != nil {
			return fmt.Errorf("override %q font_path: %w", o.File, err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
