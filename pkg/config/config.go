package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/xob0t/covergen/pkg/caption"
)

//go:embed sample_config.toml
var sampleConfig string

// Render contains the title rendering settings.
type Render struct {
	FontPath     string  `toml:"font_path"`
	FontSize     int     `toml:"font_size"`
	TextColor    string  `toml:"text_color"`
	StrokeColor  string  `toml:"stroke_color"`
	StrokeOffset int     `toml:"stroke_offset"`
	PaddingRatio float64 `toml:"padding_ratio"`
}

// Batch contains the folder run settings.
type Batch struct {
	Folder      string  `toml:"folder"`
	SeekSeconds float64 `toml:"seek_seconds"`
	Workers     int     `toml:"workers"`
	OutputExt   string  `toml:"output_ext"`
	Quality     int     `toml:"quality"`
	MaxWidth    int     `toml:"max_width"`
	Overwrite   bool    `toml:"overwrite"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Server contains the HTTP preview server settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Override replaces the title or font for a single video, matched by file name.
type Override struct {
	File     string `toml:"file"`
	Title    string `toml:"title"`
	FontPath string `toml:"font_path"`
	FontSize int    `toml:"font_size"`
}

// Config encapsulates all configuration values for covergen.
//
// Configuration sections:
//   - Render: font, size, colors, outline and padding
//   - Batch: folder, seek position, workers and output encoding
//   - Logging: log format and level
//   - Server: preview server bind address
//   - Overrides: per-video title and font replacements
type Config struct {
	Render    Render     `toml:"render"`
	Batch     Batch      `toml:"batch"`
	Logging   Logging    `toml:"logging"`
	Server    Server     `toml:"server"`
	Overrides []Override `toml:"override"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are returned and the bool result is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Style converts the render settings into a caption style.
func (r Render) Style() (caption.Style, error) {
	fill, err := ParseColor(r.TextColor)
	if err != nil {
		return caption.Style{}, fmt.Errorf("render.text_color: %w", err)
	}
	stroke, err := ParseColor(r.StrokeColor)
	if err != nil {
		return caption.Style{}, fmt.Errorf("render.stroke_color: %w", err)
	}
	return caption.Style{
		FontSize:     r.FontSize,
		Fill:         fill,
		Stroke:       stroke,
		StrokeOffset: r.StrokeOffset,
		PaddingRatio: r.PaddingRatio,
	}, nil
}

// Apply returns r with the non-zero fields of o layered on top.
func (o Override) Apply(r Render) Render {
	if o.FontPath != "" {
		r.FontPath = o.FontPath
	}
	if o.FontSize > 0 {
		r.FontSize = o.FontSize
	}
	return r
}

// OverrideMap indexes overrides by file name. Later entries win.
func (c *Config) OverrideMap() map[string]Override {
	if len(c.Overrides) == 0 {
		return nil
	}
	out := make(map[string]Override, len(c.Overrides))
	for _, o := range c.Overrides {
		out[o.File] = o
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
