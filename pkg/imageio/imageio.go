// Package imageio reads source stills and writes finished covers.
//
// Every output follows one pipeline: decode or extract an image.Image,
// copy it into a drawable RGBA, caption it, then encode it by the output
// file's extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// ErrEncode marks a cover that could not be encoded or written.
var ErrEncode = errors.New("encode/write failed")

const (
	// DefaultExt is the output extension used when none is configured.
	DefaultExt = ".jpg"
	// DefaultQuality is the JPEG quality used when none is configured.
	DefaultQuality = 95
)

// SupportedExt reports whether ext (with its dot) is an output format Save can write.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// OutputPath returns source with its extension replaced by ext, so the cover
// lands beside the video under the same base name.
func OutputPath(source, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}

// Save encodes img to path, choosing the format from the extension. The
// image is written to a temporary file in the same directory and renamed
// into place, so a failed encode never leaves a partial cover behind.
func Save(path string, img image.Image, quality int) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %w", ErrEncode, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, img, format, quality); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrEncode, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", ErrEncode, path, err)
	}
	return nil
}

// Encode writes img to w in the format named by ext (".jpg", ".jpeg" or ".png").
func Encode(w io.Writer, img image.Image, ext string, quality int) error {
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := encode(w, img, format, quality); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

func encode(w io.Writer, img image.Image, format imaging.Format, quality int) error {
	if format != imaging.JPEG && format != imaging.PNG {
		return fmt.Errorf("unsupported output format %s: use .jpg or .png", format)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
}

// Load decodes the still at path, applying any EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return img, nil
}

// Decode reads a still from r, applying any EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ToDrawable returns an RGBA copy of img with its origin at (0,0).
// Decoded frames are often YCbCr, which cannot be drawn on.
func ToDrawable(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FitWidth scales img down to maxWidth, keeping the aspect ratio. Images
// already narrow enough, and a maxWidth of 0, return img unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	height := max(1, b.Dy()*maxWidth/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// NewSolidImage creates a uniform solid-color image.
func NewSolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}
