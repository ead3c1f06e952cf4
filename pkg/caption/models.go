// Package caption lays out and draws outlined title text onto still images.
//
// The pipeline is Segment -> Wrap -> Layout -> DrawOutlined; Captioner runs
// it end to end for one image.
package caption

import (
	"image"
	"image/color"
)

// Style holds the visual parameters of one render call.
type Style struct {
	FontSize     int        // pixels
	Fill         color.RGBA // text color
	Stroke       color.RGBA // outline color
	StrokeOffset int        // outline displacement in pixels, 0 disables
	PaddingRatio float64    // horizontal padding as a fraction of image width
}

// Metrics is the typographic primitive the layout relies on: whole-string
// width and a fixed line height.
type Metrics interface {
	MeasureWidth(s string) int
	LineHeight() int
}

// Block is the geometry of a laid-out title. Origins are the top-left
// corners of each line box, in the same order as Lines.
type Block struct {
	Lines       []string
	LineHeight  int
	LineSpacing int
	TotalHeight int
	StartY      int
	Origins     []image.Point
}
