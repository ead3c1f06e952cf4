// Package framesource pulls a single still frame out of a video file.
//
// The batch pipeline only depends on the Source interface; FFmpeg is the
// production implementation and Func adapts plain functions for tests and
// alternate sources.
package framesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	// ErrExtract marks a frame that could not be produced.
	ErrExtract = errors.New("frame extraction failed")
	// ErrSeekPastEnd marks a seek position beyond the video's duration.
	ErrSeekPastEnd = errors.New("seek position past end of video")
)

// Source produces the frame at seek seconds into the video at path.
type Source interface {
	ExtractFrame(ctx context.Context, path string, seek float64) (image.Image, error)
}

// Func adapts an ordinary function to Source.
type Func func(ctx context.Context, path string, seek float64) (image.Image, error)

// ExtractFrame calls f.
func (f Func) ExtractFrame(ctx context.Context, path string, seek float64) (image.Image, error) {
	return f(ctx, path, seek)
}

// FFmpeg extracts frames by running ffmpeg through ffmpeg-go. Probe and Grab
// default to the real binaries and may be replaced in tests.
type FFmpeg struct {
	// Probe returns ffprobe JSON for path.
	Probe func(path string) (string, error)
	// Grab returns one PNG-encoded frame at seek seconds.
	Grab func(ctx context.Context, path string, seek float64) ([]byte, error)
}

// NewFFmpeg returns an FFmpeg source backed by the ffmpeg and ffprobe binaries on PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		Probe: func(path string) (string, error) { return ffmpeg.Probe(path) },
		Grab:  grabFrame,
	}
}

// ExtractFrame implements Source. Every failure wraps ErrExtract.
func (f *FFmpeg) ExtractFrame(ctx context.Context, path string, seek float64) (image.Image, error) {
	if seek < 0 {
		return nil, fmt.Errorf("%w: negative seek %v", ErrExtract, seek)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := f.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %w", ErrExtract, path, err)
	}
	probe, err := ParseProbe(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, path, err)
	}
	if _, ok := probe.VideoStream(); !ok {
		return nil, fmt.Errorf("%w: %s has no video stream", ErrExtract, path)
	}
	if d := probe.DurationSeconds(); d > 0 && seek > d {
		return nil, fmt.Errorf("%w: %w: %.3fs > %.3fs", ErrExtract, ErrSeekPastEnd, seek, d)
	}

	data, err := f.Grab(ctx, path, seek)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: ffmpeg produced no frame at %.3fs", ErrExtract, path, seek)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode frame from %s: %w", ErrExtract, path, err)
	}
	return img, nil
}

// grabFrame runs ffmpeg with an input seek and pipes a single PNG frame to stdout.
func grabFrame(ctx context.Context, path string, seek float64) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	stream := ffmpeg.Input(path, ffmpeg.KwArgs{
		"ss": strconv.FormatFloat(seek, 'f', 3, 64),
	}).Output("pipe:", ffmpeg.KwArgs{
		"frames:v": "1",
		"f":        "image2pipe",
		"c:v":      "png",
	}).WithOutput(&stdout).WithErrorOutput(&stderr)

	cmd := stream.Compile()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
		}
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
