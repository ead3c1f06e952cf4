package testvideo

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/xob0t/covergen/pkg/imageio"
)

func TestWriteLayout(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFrames uint32
	}{
		{"defaults", Options{}, 15},
		{"three seconds", Options{Seconds: 3, FPS: 10}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			img := imageio.NewSolidImage(64, 36, color.RGBA{200, 10, 10, 255})
			if err := Write(&buf, img, tt.opts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			data := buf.Bytes()

			if string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
				t.Fatalf("bad RIFF header %q", data[:12])
			}
			if got := binary.LittleEndian.Uint32(data[4:8]); int(got) != len(data)-8 {
				t.Fatalf("RIFF size = %d, want %d", got, len(data)-8)
			}
			// avih starts after RIFF(12) and the hdrl LIST header(12).
			avih := data[24:]
			if string(avih[0:4]) != "avih" {
				t.Fatalf("expected avih, got %q", avih[0:4])
			}
			if got := binary.LittleEndian.Uint32(avih[24:28]); got != tt.wantFrames {
				t.Fatalf("frames = %d, want %d", got, tt.wantFrames)
			}
			if w, h := binary.LittleEndian.Uint32(avih[40:44]), binary.LittleEndian.Uint32(avih[44:48]); w != 64 || h != 36 {
				t.Fatalf("size = %dx%d, want 64x36", w, h)
			}
			if !bytes.Contains(data, []byte("idx1")) {
				t.Fatal("missing idx1 index")
			}
		})
	}
}

func TestWriteRejectsEmptyImage(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, Options{}); err == nil {
		t.Fatal("expected error for nil image")
	}
}
