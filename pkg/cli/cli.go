package cli

import (
	"bufio"
	"fmt"
	"image"
	"os"

	"github.com/joho/godotenv"

	"github.com/kdforest/kdforest/pkg/colorcube"
	"github.com/kdforest/kdforest/pkg/colorspace"
	"github.com/kdforest/kdforest/pkg/frontier"
	"github.com/kdforest/kdforest/pkg/label"
	"github.com/kdforest/kdforest/pkg/passsched"
	"github.com/kdforest/kdforest/pkg/pngenc"
	"github.com/kdforest/kdforest/pkg/preview"
	"github.com/kdforest/kdforest/pkg/update"
)

// version is stamped at build time via -ldflags; it stays "dev" for
// unreleased builds, which -check-update reports as unparseable rather
// than guessing at a comparison.
var version = "dev"

// RunCLI is the generator's entry point, generalizing the teacher's
// interactive RunCLI loop (pkg/cli/cli.go) from a REPL over a single
// loaded image to a single validated-flags-in, one-file(or directory)-out
// run. It returns the process exit code spec.md §7 calls for rather than
// calling os.Exit itself, so cmd/kdforest stays a two-line wrapper.
func RunCLI(args []string) int {
	applyEnvDefaults(&args)

	cfg, modeSet, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return exitCode(err)
	}
	if cfg.Help {
		usage()
		return 0
	}

	if cfg.Pick {
		in := bufio.NewReader(os.Stdin)
		if err := runPicker(&cfg, modeSet, in); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitCode(err)
		}
	}

	if cfg.CheckUpdate {
		if err := update.CheckForUpdates(version); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if err := generate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return 0
}

// runPicker offers the interactive fzf-or-numbered-list picker (pkg/cli/
// pick.go) for whichever of order/selection/color-space the caller did
// not already pin on the command line.
func runPicker(cfg *Config, modeSet map[string]bool, in *bufio.Reader) error {
	for _, m := range Modes {
		if modeSet[m.Flag] {
			continue
		}
		v, err := pickMode(m, in)
		if err != nil {
			return err
		}
		switch m.Flag {
		case "order":
			o, _ := colorcube.Parse(v)
			cfg.Order = o
		case "selection":
			s, _ := frontier.Parse(v)
			cfg.Selection = s
		case "color-space":
			s, _ := colorspace.Parse(v)
			cfg.Space = s
		}
	}
	return nil
}

// generate runs the full pipeline of spec.md §4: enumerate the cube (A),
// convert to the chosen perceptual space as each color is consumed (B),
// place it via the frontier driver backed by the k-d forest (C, D), in
// the order the pass scheduler hands out (E), and write the result out
// as PNG (F) — animated frames plus terminal pause frames when -animate
// is set, a single finished image otherwise.
func generate(cfg Config) error {
	colors, err := colorcube.Enumerate(cfg.BitDepth, cfg.Order, cfg.Seed)
	if err != nil {
		return fmt.Errorf("cli: enumerate colors: %w", err)
	}

	w, h := colorcube.Dimensions(cfg.BitDepth)
	driver := frontier.New(w, h, cfg.Selection, cfg.Space, cfg.Seed)
	bmp := pngenc.NewBitmap(w, h)

	schedule := passsched.Schedule(len(colors))

	var frameDir string
	var frameEvery, frameCount, grandTotal int
	if cfg.Animate {
		frameDir = cfg.Output
		frameEvery = 1 << uint((cfg.BitDepth+1)/2)
		frameCount = (len(schedule) + frameEvery - 1) / frameEvery
		grandTotal = frameCount + 120
	}

	for j, idx := range schedule {
		color := colors[idx]
		p, err := driver.Place(j, color)
		if err != nil {
			return fmt.Errorf("cli: place color %d: %w", j, err)
		}
		px := driver.Pixels()[p]
		r, g, b := colorspace.Unpack(px.Color)
		bmp.Set(px.X, px.Y, r, g, b)

		if cfg.Animate && (j+1)%frameEvery == 0 {
			frameIdx := (j + 1) / frameEvery
			if err := writeFrame(frameDir, frameIdx-1, grandTotal, bmp); err != nil {
				return err
			}
		}
	}

	if !cfg.Animate {
		if err := pngenc.Write(cfg.Output, bmp); err != nil {
			return fmt.Errorf("cli: write %s: %w", cfg.Output, err)
		}
		if cfg.Preview {
			showPreview(bmp)
		}
		return nil
	}

	if err := pngenc.WriteTerminalFrames(frameDir, frameCount, grandTotal, bmp); err != nil {
		return fmt.Errorf("cli: write terminal frames: %w", err)
	}
	if cfg.Preview {
		showPreview(bmp)
	}
	return nil
}

// writeFrame labels bmp with its position in the animation and writes it
// out as one PNG frame. Labeling requires an image.NRGBA view since
// golang.org/x/image/font only draws onto draw.Image implementations.
func writeFrame(dir string, i, total int, bmp *pngenc.Bitmap) error {
	img := bitmapToNRGBA(bmp)
	label.Stamp(img, i, total)
	labeled := nrgbaToBitmap(img)
	if err := pngenc.WriteFrame(dir, i, total, labeled); err != nil {
		return fmt.Errorf("cli: write frame %d: %w", i, err)
	}
	return nil
}

func showPreview(bmp *pngenc.Bitmap) {
	if !preview.Supported() {
		return
	}
	if err := preview.Image(bitmapToNRGBA(bmp)); err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
	}
}

// bitmapToNRGBA copies a pngenc.Bitmap's packed RGB triples into a fully
// opaque image.NRGBA, the format both label.Stamp and preview.Image
// operate on.
func bitmapToNRGBA(bmp *pngenc.Bitmap) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, bmp.W, bmp.H))
	for y := 0; y < bmp.H; y++ {
		for x := 0; x < bmp.W; x++ {
			i := (y*bmp.W + x) * 3
			o := img.PixOffset(x, y)
			img.Pix[o] = bmp.Pix[i]
			img.Pix[o+1] = bmp.Pix[i+1]
			img.Pix[o+2] = bmp.Pix[i+2]
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

// nrgbaToBitmap reverses bitmapToNRGBA once label.Stamp has drawn onto
// the copy, discarding alpha (the PNG writer is always fully opaque).
func nrgbaToBitmap(img *image.NRGBA) *pngenc.Bitmap {
	b := img.Bounds()
	bmp := pngenc.NewBitmap(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			o := img.PixOffset(x, y)
			bmp.Set(x-b.Min.X, y-b.Min.Y, img.Pix[o], img.Pix[o+1], img.Pix[o+2])
		}
	}
	return bmp
}

// applyEnvDefaults loads .env (if present) and prepends flags derived
// from KDFOREST_* environment variables ahead of args. An env-derived flag
// is added only when args does not already carry that flag, so explicit
// command-line flags always win over .env-sourced defaults.
func applyEnvDefaults(args *[]string) {
	_ = godotenv.Load()

	var prefix []string
	prefix = prependIfAbsent(prefix, *args, "-seed", "KDFOREST_SEED")
	prefix = prependIfAbsent(prefix, *args, "-output", "KDFOREST_OUTPUT")
	if os.Getenv("KDFOREST_ANIMATE") != "" && !containsFlag(*args, "-animate") {
		prefix = append(prefix, "-animate")
	}
	*args = append(prefix, *args...)
}

func prependIfAbsent(prefix, args []string, flag, envVar string) []string {
	if containsFlag(args, flag) {
		return prefix
	}
	v := os.Getenv(envVar)
	if v == "" {
		return prefix
	}
	return append(prefix, flag, v)
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

// usage prints the flag table; the mode-flag lines come from the Modes
// registry (pkg/cli/modes.go), the same table parseArgs quotes in its
// error messages, after the teacher's single-source-of-truth pattern in
// meta.go.
func usage() {
	fmt.Fprintln(os.Stderr, "kdforest generates a k-d forest based color-cube image.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: kdforest [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  -bit-depth int      number of colors as 2^n, n in [2,24] [default 24]")
	for _, m := range Modes {
		fmt.Fprintln(os.Stderr, m.helpLine())
	}
	fmt.Fprintln(os.Stderr, "  -animate            write an animation frame sequence instead of one PNG")
	fmt.Fprintln(os.Stderr, "  -output string      output file (or, with -animate, directory) [default kd-forest.png / frames]")
	fmt.Fprintln(os.Stderr, "  -seed uint          RNG seed [default 0]")
	fmt.Fprintln(os.Stderr, "  -check-update       check GitHub for a newer release")
	fmt.Fprintln(os.Stderr, "  -preview            show the finished image in the terminal, if supported")
	fmt.Fprintln(os.Stderr, "  -pick               interactively choose any mode flag not given explicitly")
	fmt.Fprintln(os.Stderr, "  -help               print this message")
}
