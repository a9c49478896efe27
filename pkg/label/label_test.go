package label

import (
	"image"
	"image/color"
	"testing"
)

func TestStampDrawsOnDarkCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}
	before := make([]byte, len(img.Pix))
	copy(before, img.Pix)

	Stamp(img, 6, 255)

	changed := false
	for i := range img.Pix {
		if img.Pix[i] != before[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("Stamp did not modify any pixel")
	}
}

func TestStampPicksContrastingColor(t *testing.T) {
	dark := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	light := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			dark.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			light.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	if c := col(dark); c != color.White {
		t.Fatalf("col(dark canvas) = %v, want white", c)
	}
	if c := col(light); c != color.Black {
		t.Fatalf("col(light canvas) = %v, want black", c)
	}
}
