package colorspace

import (
	"math"
	"testing"
)

func TestUnpackPackRoundTrip(t *testing.T) {
	cases := []uint32{0x000000, 0xFFFFFF, 0xFF0000, 0x00FF00, 0x0000FF, 0x123456}
	for _, c := range cases {
		r, g, b := Unpack(c)
		if got := Pack(r, g, b); got != c {
			t.Fatalf("Pack(Unpack(%06x)) = %06x", c, got)
		}
	}
}

func TestRGBSpaceIsNormalized(t *testing.T) {
	got := ToCoord(RGB, 0xFFFFFF)
	want := Coord{1, 1, 1}
	if got != want {
		t.Fatalf("ToCoord(RGB, white) = %+v, want %+v", got, want)
	}
	got = ToCoord(RGB, 0x000000)
	if got != (Coord{0, 0, 0}) {
		t.Fatalf("ToCoord(RGB, black) = %+v", got)
	}
}

func TestLuvZeroDenominatorYieldsZero(t *testing.T) {
	got := ToCoord(Luv, 0x000000)
	if got != (Coord{0, 0, 0}) {
		t.Fatalf("Luv(black) = %+v, want (0,0,0)", got)
	}
}

func TestLabWhiteIsFullLightness(t *testing.T) {
	got := ToCoord(Lab, 0xFFFFFF)
	if math.Abs(got.X-100) > 1e-6 {
		t.Fatalf("Lab(white).L = %v, want ~100", got.X)
	}
	if math.Abs(got.Y) > 1e-6 || math.Abs(got.Z) > 1e-6 {
		t.Fatalf("Lab(white) a/b not ~0: %+v", got)
	}
}

func TestLabBlackIsZeroLightness(t *testing.T) {
	got := ToCoord(Lab, 0x000000)
	if math.Abs(got.X) > 1e-9 {
		t.Fatalf("Lab(black).L = %v, want 0", got.X)
	}
}

func TestDist2(t *testing.T) {
	a := Coord{0, 0, 0}
	b := Coord{3, 4, 0}
	if got := Dist2(a, b); got != 25 {
		t.Fatalf("Dist2 = %v, want 25", got)
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Space{"rgb": RGB, "lab": Lab, "luv": Luv}
	for s, want := range cases {
		got, ok := Parse(s)
		if !ok || got != want {
			t.Fatalf("Parse(%q) = %v,%v want %v,true", s, got, ok, want)
		}
	}
	if _, ok := Parse("cmyk"); ok {
		t.Fatal("Parse(cmyk) should fail")
	}
}
