// Package testvideo writes small MJPEG AVI files from a still image. The
// files decode with ffmpeg and give frame extraction something real to
// seek through without shipping binary fixtures.
package testvideo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/xob0t/covergen/pkg/imageio"
)

// Options controls the generated clip.
type Options struct {
	Seconds int // clip length, at least 1
	FPS     int // defaults to 15
	Quality int // JPEG quality of every frame
}

const (
	avihSize = 56
	strhSize = 56
	strfSize = 40
	strlSize = 4 + (8 + strhSize) + (8 + strfSize)
	hdrlSize = 4 + (8 + avihSize) + (8 + strlSize)

	flagHasIndex = 0x10
	flagKeyframe = 0x10
)

// WriteFile writes an AVI repeating img to path.
func WriteFile(path string, img image.Image, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, img, opts)
}

// Write encodes img once and writes it as every frame of an AVI stream.
func Write(w io.Writer, img image.Image, opts Options) error {
	if img == nil || img.Bounds().Empty() {
		return errors.New("testvideo: empty image")
	}
	if opts.Seconds < 1 {
		opts.Seconds = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = 15
	}

	var frame bytes.Buffer
	if err := imageio.Encode(&frame, img, ".jpg", opts.Quality); err != nil {
		return err
	}
	data := frame.Bytes()
	size := uint32(len(data))
	padded := size + size%2

	width := uint32(img.Bounds().Dx())
	height := uint32(img.Bounds().Dy())
	fps := uint32(opts.FPS)
	frames := uint32(opts.Seconds) * fps

	chunkSize := 8 + padded
	moviSize := 4 + frames*chunkSize
	idx1Size := 8 + frames*16
	riffSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	aw := &writer{w: bufio.NewWriter(w)}

	aw.fourCC("RIFF")
	aw.u32(riffSize)
	aw.fourCC("AVI ")

	aw.fourCC("LIST")
	aw.u32(hdrlSize)
	aw.fourCC("hdrl")

	aw.fourCC("avih")
	aw.u32(avihSize)
	aw.u32(1_000_000 / fps)
	aw.u32(size * fps)
	aw.u32(0)
	aw.u32(flagHasIndex)
	aw.u32(frames)
	aw.u32(0)
	aw.u32(1) // streams
	aw.u32(size)
	aw.u32(width)
	aw.u32(height)
	aw.zeros(4 * 4)

	aw.fourCC("LIST")
	aw.u32(strlSize)
	aw.fourCC("strl")

	aw.fourCC("strh")
	aw.u32(strhSize)
	aw.fourCC("vids")
	aw.fourCC("MJPG")
	aw.u32(0)
	aw.u16(0)
	aw.u16(0)
	aw.u32(0)
	aw.u32(1)   // scale
	aw.u32(fps) // rate
	aw.u32(0)
	aw.u32(frames)
	aw.u32(size)
	aw.u32(0)
	aw.u32(0)
	aw.u16(0)
	aw.u16(0)
	aw.u16(uint16(width))
	aw.u16(uint16(height))

	// BITMAPINFOHEADER
	aw.fourCC("strf")
	aw.u32(strfSize)
	aw.u32(strfSize)
	aw.u32(width)
	aw.u32(height)
	aw.u16(1)
	aw.u16(24)
	aw.fourCC("MJPG")
	aw.u32(width * height * 3)
	aw.zeros(4 * 4)

	aw.fourCC("LIST")
	aw.u32(moviSize)
	aw.fourCC("movi")
	for range frames {
		aw.fourCC("00dc")
		aw.u32(size)
		aw.bytes(data)
		aw.zeros(int(padded - size))
	}

	aw.fourCC("idx1")
	aw.u32(frames * 16)
	offset := uint32(4)
	for range frames {
		aw.fourCC("00dc")
		aw.u32(flagKeyframe)
		aw.u32(offset)
		aw.u32(size)
		offset += chunkSize
	}

	if aw.err != nil {
		return fmt.Errorf("write avi: %w", aw.err)
	}
	if err := aw.w.Flush(); err != nil {
		return fmt.Errorf("write avi: %w", err)
	}
	return nil
}

// writer keeps the first error so the layout above reads top to bottom.
type writer struct {
	w   *bufio.Writer
	err error
}

func (aw *writer) bytes(b []byte) {
	if aw.err == nil {
		_, aw.err = aw.w.Write(b)
	}
}

func (aw *writer) fourCC(s string) { aw.bytes([]byte(s)) }

func (aw *writer) zeros(n int) { aw.bytes(make([]byte, n)) }

func (aw *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	aw.bytes(b[:])
}

func (aw *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	aw.bytes(b[:])
}
