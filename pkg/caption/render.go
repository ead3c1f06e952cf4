package caption

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/covergen/pkg/fonts"
)

// strokeDirections are the eight unit offsets around a point, column by column.
var strokeDirections = [8]image.Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// DrawOutlined draws text with its line box's top-left corner at at. The
// stroke color is drawn at the eight offsets of StrokeOffset around at, then
// the fill color on top. With a zero offset only the fill is drawn.
func DrawOutlined(dst draw.Image, face *fonts.Face, text string, at image.Point, style Style) {
	baseline := at.Add(image.Pt(0, face.Ascent()))

	if k := style.StrokeOffset; k > 0 {
		stroke := image.NewUniform(style.Stroke)
		for _, d := range strokeDirections {
			drawString(dst, face, text, baseline.Add(d.Mul(k)), stroke)
		}
	}

	drawString(dst, face, text, baseline, image.NewUniform(style.Fill))
}

// drawString draws text with its baseline origin at dot.
func drawString(dst draw.Image, face font.Face, text string, dot image.Point, src image.Image) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	drawer.DrawString(text)
}
