// Package colorcube enumerates the target color set for a given bit depth
// and orders it for presentation to the frontier driver, per spec.md §4.A.
package colorcube

import (
	"errors"
	"sort"

	"github.com/kdforest/kdforest/pkg/rng"
)

// ErrInvalidBitDepth is returned when B is outside [2,24].
var ErrInvalidBitDepth = errors.New("colorcube: bit depth must be in [2,24]")

// Order selects how the enumerated cube is handed to the driver.
type Order int

const (
	HueSort Order = iota
	Random
	Morton
	Hilbert
	Sequential
)

// Parse maps a flag value to an Order.
func Parse(s string) (Order, bool) {
	switch s {
	case "hue-sort":
		return HueSort, true
	case "random":
		return Random, true
	case "morton":
		return Morton, true
	case "hilbert":
		return Hilbert, true
	case "sequential":
		return Sequential, true
	default:
		return 0, false
	}
}

func (o Order) String() string {
	switch o {
	case HueSort:
		return "hue-sort"
	case Random:
		return "random"
	case Morton:
		return "morton"
	case Hilbert:
		return "hilbert"
	case Sequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// channelBits returns the per-channel bit counts (G, R, B), most-to-least
// perceptually important, per spec.md §4.A: bits[i] = (B+2-i) div 3 for
// i=0(G),1(R),2(B).
func channelBits(b int) (bG, bR, bB int) {
	bG = (b + 2) / 3
	bR = (b + 1) / 3
	bB = b / 3
	return
}

// Dimensions returns the W×H grid for bit depth b, per spec.md §1:
// W = 2^⌈B/2⌉, H = 2^⌊B/2⌋, so W·H == 2^B.
func Dimensions(b int) (w, h int) {
	return 1 << uint((b+1)/2), 1 << uint(b/2)
}

// Enumerate returns the N=2^B colors for bit depth b, as a multiset
// independent of order (spec.md §8 property 8): the set depends only on b.
// order selects the permutation in which they are returned; seed is
// consulted only for Random.
func Enumerate(b int, order Order, seed uint32) ([]uint32, error) {
	if b < 2 || b > 24 {
		return nil, ErrInvalidBitDepth
	}
	bG, bR, bB := channelBits(b)
	strideG := 1 << uint(8-bG)
	strideR := 1 << uint(8-bR)
	strideB := 1 << uint(8-bB)
	wG, wR, wB := 1<<uint(bG), 1<<uint(bR), 1<<uint(bB)

	switch order {
	case Sequential:
		return sequentialColors(wG, wR, wB, strideG, strideR, strideB), nil
	case Morton:
		return mortonColors(bG, bR, bB, strideG, strideR, strideB), nil
	case Hilbert:
		return hilbertColors(bG, bR, bB, strideG, strideR, strideB), nil
	case HueSort:
		colors := sequentialColors(wG, wR, wB, strideG, strideR, strideB)
		sort.Slice(colors, func(i, j int) bool {
			return hueLess(colors[i], colors[j])
		})
		return colors, nil
	case Random:
		colors := sequentialColors(wG, wR, wB, strideG, strideR, strideB)
		shuffle(colors, rng.New(seed))
		return colors, nil
	default:
		colors := sequentialColors(wG, wR, wB, strideG, strideR, strideB)
		sort.Slice(colors, func(i, j int) bool {
			return hueLess(colors[i], colors[j])
		})
		return colors, nil
	}
}

func pack(r, g, b int) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// sequentialColors enumerates in natural lexicographic order over
// (b_B, b_R, b_G): B slowest-varying, G fastest-varying.
func sequentialColors(wG, wR, wB, strideG, strideR, strideB int) []uint32 {
	out := make([]uint32, 0, wG*wR*wB)
	for bIdx := 0; bIdx < wB; bIdx++ {
		for rIdx := 0; rIdx < wR; rIdx++ {
			for gIdx := 0; gIdx < wG; gIdx++ {
				out = append(out, pack(rIdx*strideR, gIdx*strideG, bIdx*strideB))
			}
		}
	}
	return out
}

// mortonBitOrder returns, for each bit position from the LSB of the
// enumeration index upward, which channel (0=G,1=R,2=B) that bit belongs
// to. Channels are visited round-robin in perceptual priority order
// (G,R,B) and skipped once their bit budget is exhausted, so unequal
// per-channel bit counts still interleave cleanly.
func mortonBitOrder(bG, bR, bB int) []int {
	counts := [3]int{bG, bR, bB}
	total := bG + bR + bB
	seq := make([]int, 0, total)
	for i := 0; len(seq) < total; i++ {
		ch := i % 3
		if counts[ch] > 0 {
			seq = append(seq, ch)
			counts[ch]--
		}
	}
	return seq
}

func mortonColors(bG, bR, bB, strideG, strideR, strideB int) []uint32 {
	order := mortonBitOrder(bG, bR, bB)
	n := 1 << uint(bG+bR+bB)
	out := make([]uint32, n)
	for idx := 0; idx < n; idx++ {
		var chVal [3]int
		var used [3]int
		for p, ch := range order {
			bit := (idx >> uint(p)) & 1
			chVal[ch] |= bit << uint(used[ch])
			used[ch]++
		}
		out[idx] = pack(chVal[1]*strideR, chVal[0]*strideG, chVal[2]*strideB)
	}
	return out
}

// hilbertColors orders the cube by recursively bisecting whichever axis
// (G,R,B) currently has the largest extent, alternating traversal
// direction between halves. Every axis extent along the recursion is a
// power of two (inherited from the per-channel bit counts), so the split
// is always exact and every cell is visited exactly once: this is a
// bijection between [0,N) and the cube regardless of how closely it
// approximates a textbook compact Hilbert curve (see DESIGN.md).
func hilbertColors(bG, bR, bB, strideG, strideR, strideB int) []uint32 {
	w, h, d := 1<<uint(bG), 1<<uint(bR), 1<<uint(bB)
	out := make([]uint32, 0, w*h*d)

	var rec func(x0, y0, z0, dx, dy, dz int, flip bool)
	rec = func(x0, y0, z0, dx, dy, dz int, flip bool) {
		if dx == 1 && dy == 1 && dz == 1 {
			out = append(out, pack(y0*strideR, x0*strideG, z0*strideB))
			return
		}
		switch {
		case dx >= dy && dx >= dz && dx > 1:
			half := dx / 2
			a := func() { rec(x0, y0, z0, half, dy, dz, !flip) }
			b := func() { rec(x0+half, y0, z0, dx-half, dy, dz, flip) }
			if !flip {
				a()
				b()
			} else {
				b()
				a()
			}
		case dy >= dz && dy > 1:
			half := dy / 2
			a := func() { rec(x0, y0, z0, dx, half, dz, !flip) }
			b := func() { rec(x0, y0+half, z0, dx, dy-half, dz, flip) }
			if !flip {
				a()
				b()
			} else {
				b()
				a()
			}
		default:
			half := dz / 2
			a := func() { rec(x0, y0, z0, dx, dy, half, !flip) }
			b := func() { rec(x0, y0, z0+half, dx, dy, dz-half, flip) }
			if !flip {
				a()
				b()
			} else {
				b()
				a()
			}
		}
	}
	rec(0, 0, 0, w, h, d, false)
	return out
}

// shuffle performs a Fisher-Yates shuffle using the supplied RNG.
func shuffle(colors []uint32, g rng.Source) {
	for i := len(colors) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		colors[i], colors[j] = colors[j], colors[i]
	}
}

// hueLess implements the trig-free total hue comparator of spec.md §4.A.
// n = G-B, d = 2R-G-B; hue = atan2(sqrt(3)*n, d) mod 2pi, but this never
// evaluates atan2: it partitions by sign(d),sign(n) into three ordered
// regions and compares within a region by cross-multiplication.
func hueLess(ca, cb uint32) bool {
	ra, ga, ba := int((ca>>16)&0xff), int((ca>>8)&0xff), int(ca&0xff)
	rb, gb, bb := int((cb>>16)&0xff), int((cb>>8)&0xff), int(cb&0xff)

	na, da := ga-ba, 2*ra-ga-ba
	nb, db := gb-bb, 2*rb-gb-bb

	regionOf := func(n, d int) int {
		switch {
		case d >= 0 && n >= 0:
			return 0
		case d < 0:
			return 1
		default: // d>=0 && n<0
			return 2
		}
	}
	regA, regB := regionOf(na, da), regionOf(nb, db)
	if regA != regB {
		return regA < regB
	}
	// Same region: both denominators share the same sign, so comparing
	// na/da against nb/db by cross-multiplication needs no sign flip.
	// A degenerate 0/0 point (gray: na==da==0) counts as angle 0, so it
	// precedes exactly the region-0 points with n > 0 and ties with the
	// other angle-0 points (n == 0).
	if na == 0 && da == 0 {
		return nb > 0
	}
	lhs := int64(na) * int64(db)
	rhs := int64(nb) * int64(da)
	return lhs < rhs
}
