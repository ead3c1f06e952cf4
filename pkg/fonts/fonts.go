// fonts.go - Font loading with custom TTF/OTF/TTC support and an embedded default.
// Uses golang.org/x/image/font/opentype for OpenType rendering. Defaults to the
// Go Regular font when no path is configured; a configured path that cannot be
// loaded is an error, never a silent fallback.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrFontLoad marks a font resource that could not be read, parsed or sized.
var ErrFontLoad = errors.New("font load failed")

// ReferenceSample is the glyph run whose bounding box defines line height.
// It spans a capital ascender and a descender.
const ReferenceSample = "A_g"

// Font is a parsed font resource. It is safe for concurrent use; faces
// created from it are not.
type Font struct {
	path   string
	parsed *opentype.Font
}

// Load reads and parses the font at path. An empty path selects the
// embedded Go Regular font.
func Load(path string) (*Font, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return parse("", goregular.TTF)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFontLoad, path, err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Font, error) {
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse collection %s: %w", ErrFontLoad, path, err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("%w: collection %s is empty", ErrFontLoad, path)
		}
		parsed, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("%w: collection %s: %w", ErrFontLoad, path, err)
		}
		return &Font{path: path, parsed: parsed}, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFontLoad, displayPath(path), err)
	}
	return &Font{path: path, parsed: parsed}, nil
}

// Path returns the file the font was loaded from, or "" for the embedded font.
func (f *Font) Path() string {
	return f.path
}

// Face returns a face at the given pixel size. Rendering happens at 72 DPI,
// so the size in points equals the size in pixels.
func (f *Font) Face(sizePx int) (*Face, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("%w: font size must be positive, got %d", ErrFontLoad, sizePx)
	}

	face, err := opentype.NewFace(f.parsed, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create face for %s: %w", ErrFontLoad, displayPath(f.path), err)
	}

	return &Face{Face: face, size: sizePx}, nil
}

// MissingGlyphs returns the distinct runes of s, other than spaces, that the
// font has no glyph for. They render as the font's notdef box.
func (f *Font) MissingGlyphs(s string) []rune {
	var (
		buf     sfnt.Buffer
		missing []rune
		seen    = make(map[rune]bool)
	)
	for _, r := range s {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		if idx, err := f.parsed.GlyphIndex(&buf, r); err != nil || idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

func displayPath(path string) string {
	if path == "" {
		return "embedded font"
	}
	return path
}
