// Package pngenc writes the generator's in-memory Bitmap (spec.md §3,
// "Bitmap") out as a PNG file with the sRGB gamma/chromaticity chunks and
// Adam7 interlacing spec.md §6 requires. Go's standard library image/png
// encoder can produce neither a gAMA/cHRM pair nor an interlaced PNG, so
// this package goes through ImageMagick's MagickWand API instead — the
// teacher's go.mod carried gopkg.in/gographics/imagick.v3 without ever
// importing it; this is the component that finally does.
package pngenc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/gographics/imagick.v3/imagick"
)

// sRGB gamma and the Rec. 709 / sRGB chromaticity primaries plus the D65
// white point, the values ImageMagick's own PNG writer stamps into
// gAMA/cHRM when asked for the sRGB colorspace explicitly.
const (
	srgbGamma = 1.0 / 2.2

	redX, redY     = 0.6400, 0.3300
	greenX, greenY = 0.3000, 0.6000
	blueX, blueY   = 0.1500, 0.0600
	whiteX, whiteY = 0.3127, 0.3290
)

var initOnce sync.Once

func ensureInitialized() {
	initOnce.Do(imagick.Initialize)
}

// Terminate releases ImageMagick's global state. cmd/kdforest calls this
// once, directly, just before os.Exit.
func Terminate() {
	imagick.Terminate()
}

// Bitmap is H rows of W 8-bit RGB triples, row-major, matching spec.md
// §3's Bitmap exactly: each cell is written at most once.
type Bitmap struct {
	W, H int
	Pix  []uint8 // len == W*H*3
}

// NewBitmap allocates a black W×H bitmap.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

// Set writes the RGB triple at (x,y).
func (b *Bitmap) Set(x, y int, r, g, bl uint8) {
	i := (y*b.W + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// wand builds a MagickWand over bmp's raw pixels with the sRGB colorspace,
// gamma, chromaticity and Adam7 interlace scheme set, ready to write.
func wand(bmp *Bitmap) (*imagick.MagickWand, error) {
	ensureInitialized()
	mw := imagick.NewMagickWand()
	if err := mw.ConstituteImage(uint(bmp.W), uint(bmp.H), "RGB", imagick.PIXEL_CHAR, bmp.Pix); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: constitute image: %w", err)
	}
	if err := mw.SetImageColorspace(imagick.COLORSPACE_SRGB); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: set colorspace: %w", err)
	}
	if err := mw.SetImageGamma(srgbGamma); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: set gamma: %w", err)
	}
	if err := mw.SetImageChromaticity(redX, redY, greenX, greenY, blueX, blueY, whiteX, whiteY); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: set chromaticity: %w", err)
	}
	if err := mw.SetImageInterlaceScheme(imagick.INTERLACE_PNG); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: set interlace scheme: %w", err)
	}
	if err := mw.SetFormat("PNG"); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("pngenc: set format: %w", err)
	}
	return mw, nil
}

// Write encodes bmp to path as an interlaced sRGB PNG. Every failure here
// is spec.md §7's IO_ERROR.
func Write(path string, bmp *Bitmap) error {
	mw, err := wand(bmp)
	if err != nil {
		return err
	}
	defer mw.Destroy()
	if err := mw.WriteImage(path); err != nil {
		return fmt.Errorf("pngenc: write %s: %w", path, err)
	}
	return nil
}

// FrameName returns the zero-padded frame filename for index i out of a
// run of total frames, e.g. FrameName(7, 256) == "007.png".
func FrameName(i, total int) string {
	n := total - 1
	width := 1
	for n >= 10 {
		width++
		n /= 10
	}
	return fmt.Sprintf("%0*d.png", width, i)
}

// WriteFrame writes bmp as frame i (of total) into dir, creating dir if
// needed.
func WriteFrame(dir string, i, total int, bmp *Bitmap) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pngenc: create frame directory %s: %w", dir, err)
	}
	return Write(filepath.Join(dir, FrameName(i, total)), bmp)
}

// terminalFrameCount is the number of trailing frames spec.md §6 requires
// animate mode to append once the image is complete, so a looping viewer
// pauses visibly on the finished result.
const terminalFrameCount = 120

// WriteTerminalFrames appends the 120 terminal frames spec.md §9(b)
// describes: on platforms with symlink support each is a symlink to
// last.png (itself the final rendered frame), written once; elsewhere
// each is a plain copy. Either is an acceptable implementation of the
// same observable behavior.
func WriteTerminalFrames(dir string, startIndex, total int, final *Bitmap) error {
	lastPath := filepath.Join(dir, "last.png")
	if err := Write(lastPath, final); err != nil {
		return err
	}
	for k := 0; k < terminalFrameCount; k++ {
		target := filepath.Join(dir, FrameName(startIndex+k, total))
		if err := os.Symlink("last.png", target); err == nil {
			continue
		}
		if err := copyFile(lastPath, target); err != nil {
			return fmt.Errorf("pngenc: write terminal frame %s: %w", target, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
