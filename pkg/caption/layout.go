package caption

import (
	"image"
	"math"
)

const (
	lineSpacingRatio = 0.2
	minPaddingPx     = 10
)

// PaddingPixels returns the horizontal padding on each side of the text:
// ratio of the image width, but never less than 10 pixels.
func PaddingPixels(imageWidth int, ratio float64) int {
	return max(minPaddingPx, int(math.Round(float64(imageWidth)*ratio)))
}

// MaxTextWidth returns the widest a line may be on an image of the given width.
func MaxTextWidth(imageWidth int, ratio float64) int {
	return imageWidth - 2*PaddingPixels(imageWidth, ratio)
}

// Layout centers the block of lines vertically within bounds and each line
// horizontally on its own. The block is not clamped: a title taller than the
// image starts above the top edge.
func Layout(lines []string, bounds image.Rectangle, m Metrics) Block {
	lineHeight := m.LineHeight()
	spacing := int(math.Round(float64(lineHeight) * lineSpacingRatio))

	n := len(lines)
	total := n*lineHeight + max(0, n-1)*spacing

	block := Block{
		Lines:       lines,
		LineHeight:  lineHeight,
		LineSpacing: spacing,
		TotalHeight: total,
		StartY:      bounds.Min.Y + (bounds.Dy()-total)/2,
		Origins:     make([]image.Point, 0, n),
	}

	y := block.StartY
	for _, line := range lines {
		x := bounds.Min.X + (bounds.Dx()-m.MeasureWidth(line))/2
		block.Origins = append(block.Origins, image.Pt(x, y))
		y += lineHeight + spacing
	}

	return block
}
