package caption

import (
	"image"
	"testing"
)

func TestPaddingPixels(t *testing.T) {
	tests := []struct {
		width int
		ratio float64
		want  int
	}{
		{100, 0.05, 10},
		{1920, 0.05, 96},
		{1280, 0, 10},
		{1000, 0.2, 200},
		{1001, 0.1, 100},
		{1005, 0.1, 101},
	}
	for _, tt := range tests {
		if got := PaddingPixels(tt.width, tt.ratio); got != tt.want {
			t.Errorf("PaddingPixels(%d, %v) = %d, want %d", tt.width, tt.ratio, got, tt.want)
		}
	}

	if got := MaxTextWidth(1920, 0.05); got != 1728 {
		t.Errorf("MaxTextWidth(1920, 0.05) = %d, want 1728", got)
	}
}

func TestLayoutTotalHeight(t *testing.T) {
	m := monoMetrics{runeWidth: 10, height: 23}
	bounds := image.Rect(0, 0, 400, 300)

	for n := 0; n <= 5; n++ {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = "line"
		}
		b := Layout(lines, bounds, m)

		want := n*b.LineHeight + max(0, n-1)*b.LineSpacing
		if b.TotalHeight != want {
			t.Errorf("%d lines: TotalHeight = %d, want %d", n, b.TotalHeight, want)
		}
		if len(b.Origins) != n {
			t.Errorf("%d lines: got %d origins", n, len(b.Origins))
		}
	}
}

func TestLayoutRoundsLineSpacing(t *testing.T) {
	tests := []struct {
		height int
		want   int
	}{
		{20, 4},
		{23, 5}, // 4.6
		{22, 4}, // 4.4
		{25, 5},
		{48, 10}, // 9.6
	}
	for _, tt := range tests {
		b := Layout([]string{"a", "b"}, image.Rect(0, 0, 400, 300), monoMetrics{runeWidth: 10, height: tt.height})
		if b.LineSpacing != tt.want {
			t.Errorf("height %d: LineSpacing = %d, want %d", tt.height, b.LineSpacing, tt.want)
		}
		if want := 2*tt.height + tt.want; b.TotalHeight != want {
			t.Errorf("height %d: TotalHeight = %d, want %d", tt.height, b.TotalHeight, want)
		}
	}
}

func TestLayoutCentersBlockAndLines(t *testing.T) {
	m := monoMetrics{runeWidth: 10, height: 20}
	bounds := image.Rect(0, 0, 300, 200)

	b := Layout([]string{"abcd", "ab", "abcdefghij"}, bounds, m)

	if b.LineHeight != 20 || b.LineSpacing != 4 {
		t.Fatalf("LineHeight/Spacing = %d/%d, want 20/4", b.LineHeight, b.LineSpacing)
	}
	if b.TotalHeight != 68 {
		t.Fatalf("TotalHeight = %d, want 68", b.TotalHeight)
	}
	if b.StartY != 66 {
		t.Fatalf("StartY = %d, want 66", b.StartY)
	}

	want := []image.Point{{130, 66}, {140, 90}, {100, 114}}
	for i, p := range want {
		if b.Origins[i] != p {
			t.Errorf("Origins[%d] = %v, want %v", i, b.Origins[i], p)
		}
	}
}

func TestLayoutOverflowIsNotClamped(t *testing.T) {
	m := monoMetrics{runeWidth: 10, height: 50}
	b := Layout([]string{"a", "b", "c"}, image.Rect(0, 0, 100, 60), m)

	if b.StartY >= 0 {
		t.Fatalf("StartY = %d, want negative for a block taller than the image", b.StartY)
	}
}

func TestLayoutRespectsBoundsOffset(t *testing.T) {
	m := monoMetrics{runeWidth: 10, height: 20}
	b := Layout([]string{"ab"}, image.Rect(50, 100, 150, 200), m)

	if got, want := b.Origins[0], image.Pt(90, 140); got != want {
		t.Fatalf("Origins[0] = %v, want %v", got, want)
	}
}
