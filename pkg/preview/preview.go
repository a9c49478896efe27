// Package preview renders a finished image.Image straight to the
// terminal, adapted from the Kitty/iTerm2/Sixel/chafa renderer in the
// teacher's pkg/cli/terminal_preview.go. The generator wires it to an
// optional -preview flag (spec.md §10.4): once the bitmap is complete,
// show it in place rather than requiring the user to open the written
// PNG. The detection and wire-protocol logic is unchanged from the
// teacher; godotenv loading is removed here since pkg/cli already loads
// .env once at startup (spec.md §10.3), so this package only reads
// PREVIEW_DEBUG directly.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"strings"
)

// debugf reads PREVIEW_DEBUG at call time, so a value loaded from .env by
// pkg/cli after this package was initialized still applies.
func debugf(format string, args ...interface{}) {
	if v := os.Getenv("PREVIEW_DEBUG"); v == "1" || v == "true" {
		fmt.Fprintf(os.Stderr, "kdforest-preview: "+format+"\n", args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "kitty") || strings.Contains(term, "ghostty") || strings.Contains(term, "ghost") {
		return true
	}
	if os.Getenv("KONSOLE_VERSION") != "" {
		return true
	}
	return false
}

// isInlineImageCapable detects terminals implementing the iTerm2-style
// inline-image OSC protocol (WezTerm, Warp, Tabby, VSCode's terminal, and
// compatible emulators).
func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "wezterm") || strings.Contains(term, "warp") || strings.Contains(term, "tabby") ||
		strings.Contains(term, "vscode") || strings.Contains(term, "wez") {
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	return false
}

// isSixelCapable heuristically detects sixel-capable terminals; set
// SIXEL_PREVIEW=1 to force it on for a terminal this misses.
func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "foot") || strings.Contains(term, "st") || strings.Contains(term, "linux") {
		return true
	}
	if os.Getenv("WT_SESSION") != "" {
		return true
	}
	return false
}

func hasChafa() bool {
	if os.Getenv("CHAFAPREVIEW") == "1" {
		return true
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

func postImageNewlines(requestedRows int) int {
	if requestedRows > 0 {
		switch {
		case requestedRows <= 2:
			return 1
		case requestedRows <= 6:
			return 2
		case requestedRows <= 20:
			return 3
		default:
			return 4
		}
	}
	return 1
}

// Supported reports whether the running terminal likely supports one of
// the preview backends (chafa counts as a valid universal fallback).
func Supported() bool {
	return isKitty() || isInlineImageCapable() || isSixelCapable() || hasChafa()
}

// Image encodes img as PNG and renders it in the terminal using whichever
// backend the environment supports, in the teacher's detection order:
// inline-capable terminals first, then kitty, then sixel, then chafa.
func Image(img image.Image) error {
	if img == nil {
		return fmt.Errorf("preview: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("preview: png encode: %w", err)
	}
	size := computeSize(img)
	return send(buf.Bytes(), size)
}

// Size conveys a target placement for terminal preview backends.
type Size struct {
	Cols, Rows              int
	PixelWidth, PixelHeight int
}

func computeSize(img image.Image) Size {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	const charW, charH = 8, 16
	const minCols, minRows = 6, 3
	const maxCols, maxRows = 80, 40

	maxPixelW, maxPixelH := maxCols*charW, maxRows*charH
	scale := math.Min(1.0, math.Min(float64(maxPixelW)/float64(w), float64(maxPixelH)/float64(h)))

	targetW := int(math.Round(float64(w) * scale))
	targetH := int(math.Round(float64(h) * scale))
	cols := int(math.Round(float64(targetW) / float64(charW)))
	rows := int(math.Round(float64(targetH) / float64(charH)))

	if cols < minCols {
		cols = minCols
	}
	if cols > maxCols {
		cols = maxCols
	}
	if rows < minRows {
		rows = minRows
	}
	if rows > maxRows {
		rows = maxRows
	}
	return Size{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

func send(blob []byte, size Size) error {
	if len(blob) == 0 {
		return fmt.Errorf("preview: empty image blob")
	}

	if isInlineImageCapable() {
		if err := sendInline(blob, size); err != nil {
			debugf("inline failed: %v", err)
			if isKitty() {
				if err2 := sendKitty(blob, size); err2 == nil {
					return nil
				}
			}
			if isSixelCapable() {
				if err3 := sendSixel(blob, size); err3 == nil {
					return nil
				}
			}
			if hasChafa() {
				if err4 := sendChafa(blob, size); err4 == nil {
					return nil
				}
			}
			return fmt.Errorf("preview: inline protocol failed: %w", err)
		}
		return nil
	}

	if isKitty() {
		if err := sendKitty(blob, size); err != nil {
			if isSixelCapable() {
				if err2 := sendSixel(blob, size); err2 == nil {
					return nil
				}
			}
			if hasChafa() {
				if err3 := sendChafa(blob, size); err3 == nil {
					return nil
				}
			}
			return fmt.Errorf("preview: kitty protocol failed: %w", err)
		}
		return nil
	}

	if isSixelCapable() {
		if err := sendSixel(blob, size); err != nil {
			if hasChafa() {
				if err2 := sendChafa(blob, size); err2 == nil {
					return nil
				}
			}
			return fmt.Errorf("preview: sixel protocol failed: %w", err)
		}
		return nil
	}

	if hasChafa() {
		return sendChafa(blob, size)
	}
	return fmt.Errorf("preview: no terminal image protocol available")
}

// sendKitty sends PNG bytes to the terminal using the kitty graphics
// protocol, chunked into <=4096-byte base64 segments per the protocol.
func sendKitty(data []byte, size Size) error {
	if len(data) == 0 {
		return fmt.Errorf("preview: no data")
	}
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096

	writeSeq := func(s string) error {
		_, err := os.Stdout.Write([]byte(s))
		return err
	}

	total := len(enc)
	first := true
	for pos := 0; pos < total; pos += chunkSize {
		end := pos + chunkSize
		if end > total {
			end = total
		}
		chunk := enc[pos:end]
		last := end == total
		mVal := "1"
		if last {
			mVal = "0"
		}
		if first {
			header := fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;", size.Cols, size.Rows, mVal)
			header += chunk + "\x1b\\"
			if err := writeSeq(header); err != nil {
				return err
			}
			first = false
			continue
		}
		if err := writeSeq("\x1b_Gm=" + mVal + ";" + chunk + "\x1b\\"); err != nil {
			return err
		}
	}
	for i := 0; i < postImageNewlines(size.Rows); i++ {
		fmt.Println()
	}
	return nil
}

// sendInline emits the iTerm2-style inline image OSC (1337) sequence.
func sendInline(data []byte, size Size) error {
	if len(data) == 0 {
		return fmt.Errorf("preview: no data")
	}
	enc := base64.StdEncoding.EncodeToString(data)
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=preview.png;inline=1;" + meta + ":" + enc + "\a"
	_, err := os.Stdout.Write([]byte(seq))
	for i := 0; i < postImageNewlines(0); i++ {
		fmt.Println()
	}
	return err
}

// sendSixel pipes PNG bytes to img2sixel, falling back to chafa and then
// to a raw inline sequence if neither external tool is present.
func sendSixel(data []byte, size Size) error {
	if len(data) == 0 {
		return fmt.Errorf("preview: no data")
	}
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err == nil {
		for i := 0; i < postImageNewlines(0); i++ {
			fmt.Println()
		}
		return nil
	}
	if err := sendChafa(data, size); err == nil {
		return nil
	}
	return sendInline(data, size)
}

// sendChafa invokes the external chafa tool to render a block/character
// approximation of the image.
func sendChafa(data []byte, size Size) error {
	if len(data) == 0 {
		return fmt.Errorf("preview: no data")
	}
	if os.Getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("preview: chafa disabled via NO_CHAFA=1")
	}
	if _, err := exec.LookPath("chafa"); err != nil {
		return fmt.Errorf("preview: chafa not found: %w", err)
	}
	chafaSize := fmt.Sprintf("%dx%d", size.Cols, size.Rows)
	args := []string{"--fill=block", "--symbols=block", "-s", chafaSize, "-"}
	if f := os.Getenv("CHAFA_FILL"); f != "" {
		args[0] = "--fill=" + f
	}
	if s := os.Getenv("CHAFA_SYMBOLS"); s != "" {
		args[1] = "--symbols=" + s
	}
	cmd := exec.Command("chafa", args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("preview: chafa failed: %w", err)
	}
	for i := 0; i < postImageNewlines(size.Rows); i++ {
		fmt.Println()
	}
	return nil
}
