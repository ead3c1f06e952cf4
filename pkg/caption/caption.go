// caption.go - Titles onto frames: segmentation, wrapping, layout and the
// outlined draw, for one image at a time.
package caption

import (
	"errors"
	"fmt"
	"image/draw"

	"golang.org/x/text/unicode/norm"

	"github.com/xob0t/covergen/pkg/fonts"
)

// ErrRender marks an unexpected failure while laying out or drawing text.
var ErrRender = errors.New("render failed")

// Captioner draws titles with one face and style. It is not safe for
// concurrent use; create one per goroutine.
type Captioner struct {
	face  *fonts.Face
	style Style
}

// New creates a captioner for f at style.FontSize.
func New(f *fonts.Font, style Style) (*Captioner, error) {
	face, err := f.Face(style.FontSize)
	if err != nil {
		return nil, err
	}
	return &Captioner{face: face, style: style}, nil
}

// Close releases the underlying face.
func (c *Captioner) Close() error {
	return c.face.Close()
}

// Lines returns the wrapped lines of title for an image of the given width.
// Titles are NFC-normalized first so decomposed file names measure the same
// as composed ones.
func (c *Captioner) Lines(title string, imageWidth int) []string {
	fragments := Segment(norm.NFC.String(title))
	return Wrap(fragments, c.face.MeasureWidth, MaxTextWidth(imageWidth, c.style.PaddingRatio))
}

// Apply draws title centered on dst and returns the computed block. A title
// with no drawable text leaves dst untouched.
func (c *Captioner) Apply(dst draw.Image, title string) (block Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			block, err = Block{}, fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()

	bounds := dst.Bounds()
	if bounds.Empty() {
		return Block{}, fmt.Errorf("%w: empty image", ErrRender)
	}

	lines := c.Lines(title, bounds.Dx())
	if len(lines) == 0 {
		return Block{}, nil
	}

	block = Layout(lines, bounds, c.face)
	for i, line := range block.Lines {
		DrawOutlined(dst, c.face, line, block.Origins[i], c.style)
	}
	return block, nil
}
