package frontier

import (
	"testing"

	"github.com/kdforest/kdforest/pkg/colorcube"
	"github.com/kdforest/kdforest/pkg/colorspace"
)

func runFull(t *testing.T, b int, sel Selection, space colorspace.Space, order colorcube.Order, seed uint32) *Driver {
	t.Helper()
	colors, err := colorcube.Enumerate(b, order, seed)
	if err != nil {
		t.Fatal(err)
	}
	w, h := dimsFor(b)
	if w*h != len(colors) {
		t.Fatalf("W*H=%d != N=%d", w*h, len(colors))
	}
	d := New(w, h, sel, space, seed)
	for j, c := range colors {
		if _, err := d.Place(j, c); err != nil {
			t.Fatalf("Place(%d): %v", j, err)
		}
	}
	return d
}

func dimsFor(b int) (w, h int) {
	wBits := (b + 1) / 2
	hBits := b / 2
	return 1 << uint(wBits), 1 << uint(hBits)
}

// Property 1: every pixel filled exactly once; every color appears
// exactly once.
func TestEveryPixelFilledExactlyOnce(t *testing.T) {
	d := runFull(t, 8, Min, colorspace.Lab, colorcube.HueSort, 7)
	seen := map[uint32]int{}
	for _, p := range d.Pixels() {
		if !p.Filled {
			t.Fatalf("pixel (%d,%d) never filled", p.X, p.Y)
		}
		seen[p.Color]++
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("color %06x placed %d times", c, n)
		}
	}
	if len(seen) != d.W*d.H {
		t.Fatalf("got %d unique colors, want %d", len(seen), d.W*d.H)
	}
}

// Property 4: after each placement (except the first), the filled pixel
// has at least one filled Moore neighbor.
func TestEveryFillExceptFirstHasFilledNeighbor(t *testing.T) {
	colors, err := colorcube.Enumerate(8, colorcube.Sequential, 0)
	if err != nil {
		t.Fatal(err)
	}
	w, h := dimsFor(8)
	d := New(w, h, Min, colorspace.RGB, 0)

	for j, c := range colors {
		filledNow, err := d.Place(j, c)
		if err != nil {
			t.Fatalf("Place(%d): %v", j, err)
		}
		if j == 0 {
			continue
		}
		if !d.hasFilledNeighbor(filledNow) {
			t.Fatalf("placement %d: pixel %d has no filled Moore neighbor", j, filledNow)
		}
	}
}

// hasFilledNeighbor is test-only; production code never needs to ask this
// about an already-filled pixel.
func (d *Driver) hasFilledNeighbor(p int) bool {
	for _, n := range d.mooreNeighbors(p) {
		if d.pixels[n].Filled {
			return true
		}
	}
	return false
}

// Property 12: seed pixel placement is (W/2, H/2).
func TestSeedPixelIsCenter(t *testing.T) {
	d := runFull(t, 6, Min, colorspace.RGB, colorcube.Sequential, 3)
	seed := d.pixels[d.seedIdx]
	if seed.X != d.W/2 || seed.Y != d.H/2 {
		t.Fatalf("seed at (%d,%d), want (%d,%d)", seed.X, seed.Y, d.W/2, d.H/2)
	}
}

// Property 7: determinism given fixed seed/options.
func TestDeterministicAcrossRuns(t *testing.T) {
	d1 := runFull(t, 8, Mean, colorspace.Luv, colorcube.Hilbert, 42)
	d2 := runFull(t, 8, Mean, colorspace.Luv, colorcube.Hilbert, 42)
	for i := range d1.pixels {
		if d1.pixels[i].Color != d2.pixels[i].Color {
			t.Fatalf("pixel %d diverged: %06x vs %06x", i, d1.pixels[i].Color, d2.pixels[i].Color)
		}
	}
}

func TestMinModeSecondPlacementIsSeedNeighborNotNearest(t *testing.T) {
	colors, err := colorcube.Enumerate(6, colorcube.Sequential, 0)
	if err != nil {
		t.Fatal(err)
	}
	w, h := dimsFor(6)
	d := New(w, h, Min, colorspace.RGB, 0)
	if _, err := d.Place(0, colors[0]); err != nil {
		t.Fatal(err)
	}
	if d.ForestSize() != 0 {
		t.Fatalf("forest should be empty after seed placement in MIN mode, got size %d", d.ForestSize())
	}
	if _, err := d.Place(1, colors[1]); err != nil {
		t.Fatal(err)
	}
	filled := 0
	for _, p := range d.Pixels() {
		if p.Filled {
			filled++
		}
	}
	if filled != 2 {
		t.Fatalf("expected 2 filled pixels after second placement, got %d", filled)
	}
}
