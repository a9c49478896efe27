// Package label stamps a small frame-index caption onto animate-mode
// frames, adapted from the teacher's pkg/stdimg/annotate.go text drawing
// (same golang.org/x/image/font stack, restricted to the one fixed-width
// basic font the teacher falls back to when no TTF path is given — a
// frame counter has no reason to accept a custom font).
package label

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// margin keeps the caption clear of the frame edge.
const margin = 4

// Stamp draws "<frame+1> / <total>" in the bottom-left corner of img,
// in-place, using the basic 7x13 bitmap font.
func Stamp(img *image.NRGBA, frame, total int) {
	text := fmt.Sprintf("%d / %d", frame+1, total)
	face := basicfont.Face7x13
	y := img.Bounds().Max.Y - margin
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col(img)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(margin), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// col picks white on a dark canvas and black on a light one by sampling
// the corner the caption is drawn into, so the counter stays legible
// regardless of the color currently filling that pixel.
func col(img *image.NRGBA) color.Color {
	b := img.Bounds()
	c := img.NRGBAAt(b.Min.X, b.Max.Y-1)
	lum := 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
	if lum > 128 {
		return color.Black
	}
	return color.White
}
