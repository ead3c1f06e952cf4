package fonts

import (
	"sync"

	"golang.org/x/image/font"
)

// Face is a sized font face plus the whole-string metrics the caption
// layout is built on.
type Face struct {
	font.Face
	size int
}

// Size reports the pixel size the face was created with.
func (f *Face) Size() int {
	return f.size
}

// MeasureWidth returns the advance width of s in whole pixels, rounded up.
func (f *Face) MeasureWidth(s string) int {
	return font.MeasureString(f.Face, s).Ceil()
}

// LineHeight returns the height of the bounding box of ReferenceSample.
func (f *Face) LineHeight() int {
	bounds, _ := font.BoundString(f.Face, ReferenceSample)
	return (bounds.Max.Y - bounds.Min.Y).Ceil()
}

// Ascent returns the distance from the top of a line box to its baseline.
func (f *Face) Ascent() int {
	return f.Face.Metrics().Ascent.Ceil()
}

// Cache keeps parsed fonts by path so per-item overrides are read once.
// Only successful loads are kept: a path that failed is read again on the
// next Get, so a font installed after a failed run is picked up.
type Cache struct {
	mu    sync.Mutex
	fonts map[string]*Font
}

// NewCache returns an empty font cache.
func NewCache() *Cache {
	return &Cache{fonts: make(map[string]*Font)}
}

// Get returns the font at path, loading it on first use.
func (c *Cache) Get(path string) (*Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[path]; ok {
		return f, nil
	}
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.fonts[path] = f
	return f, nil
}
