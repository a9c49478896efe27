// Package frontier drives pixel placement for the color-cube generator,
// per spec.md §4.D: it maintains the open-pixel set as entries in a
// k-d forest (pkg/kdforest) and picks, for each incoming color, which
// pixel to fill next.
package frontier

import (
	"errors"

	"github.com/kdforest/kdforest/pkg/colorspace"
	"github.com/kdforest/kdforest/pkg/kdforest"
	"github.com/kdforest/kdforest/pkg/rng"
)

// Selection chooses how the open-pixel set is represented and searched.
type Selection int

const (
	Min Selection = iota
	Mean
)

// Parse maps a flag value to a Selection.
func Parse(s string) (Selection, bool) {
	switch s {
	case "min":
		return Min, true
	case "mean":
		return Mean, true
	default:
		return 0, false
	}
}

func (s Selection) String() string {
	if s == Mean {
		return "mean"
	}
	return "min"
}

// ErrEmptyForest surfaces kdforest.ErrEmptyForest with the driver's own
// context: under correct operation the forest is never queried empty
// past the second placement, so this indicates a driver invariant bug
// (spec.md §7, EMPTY_FOREST).
var ErrEmptyForest = errors.New("frontier: nearest queried against an empty forest")

// Pixel is one grid cell. Value and Color are only meaningful once
// Filled; InForest/Handle are only meaningful while the pixel is part of
// the open set (spec.md §3's three-state invariant).
type Pixel struct {
	X, Y     int
	Filled   bool
	Color    uint32
	Value    colorspace.Coord
	InForest bool
	Handle   int32
}

// Driver owns the pixel grid, the k-d forest over it, and the RNG used
// for neighbor tie-breaking (spec.md §4.D, §6 RNG contract).
type Driver struct {
	W, H      int
	selection Selection
	space     colorspace.Space
	pixels    []Pixel
	forest    *kdforest.Forest
	rng       rng.Source
	seedIdx   int
	placed    int
}

// neighborOffsets lists the 8 Moore offsets in a fixed order so that
// "uniformly random neighbor" selection is reproducible given a seed.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// New builds a driver for a W×H grid.
func New(w, h int, selection Selection, space colorspace.Space, seed uint32) *Driver {
	d := &Driver{
		W:         w,
		H:         h,
		selection: selection,
		space:     space,
		pixels:    make([]Pixel, w*h),
		rng:       rng.New(seed),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d.pixels[d.index(x, y)] = Pixel{X: x, Y: y}
		}
	}
	d.forest = kdforest.New(func(payload int, idx int32) {
		d.pixels[payload].Handle = idx
	})
	return d
}

func (d *Driver) index(x, y int) int { return y*d.W + x }

func (d *Driver) inBounds(x, y int) bool {
	return x >= 0 && x < d.W && y >= 0 && y < d.H
}

// mooreNeighbors returns the pixel indices of p's Moore neighborhood that
// fall inside the grid, in the fixed order of neighborOffsets.
func (d *Driver) mooreNeighbors(p int) []int {
	px := d.pixels[p]
	out := make([]int, 0, 8)
	for _, off := range neighborOffsets {
		x, y := px.X+off[0], px.Y+off[1]
		if d.inBounds(x, y) {
			out = append(out, d.index(x, y))
		}
	}
	return out
}

func (d *Driver) unfilledNeighbors(p int) []int {
	ns := d.mooreNeighbors(p)
	out := ns[:0]
	for _, n := range ns {
		if !d.pixels[n].Filled {
			out = append(out, n)
		}
	}
	return out
}

func (d *Driver) hasUnfilledNeighbor(p int) bool {
	for _, n := range d.mooreNeighbors(p) {
		if !d.pixels[n].Filled {
			return true
		}
	}
	return false
}

func (d *Driver) randomChoice(candidates []int) int {
	return candidates[d.rng.Intn(len(candidates))]
}

// meanOfFilledNeighbors computes the arithmetic mean of the Coord values
// of q's filled Moore neighbors, per spec.md §4.D's MEAN update rule.
func (d *Driver) meanOfFilledNeighbors(q int) colorspace.Coord {
	var sum colorspace.Coord
	n := 0
	for _, nb := range d.mooreNeighbors(q) {
		if d.pixels[nb].Filled {
			v := d.pixels[nb].Value
			sum.X += v.X
			sum.Y += v.Y
			sum.Z += v.Z
			n++
		}
	}
	if n == 0 {
		return colorspace.Coord{}
	}
	inv := 1.0 / float64(n)
	return colorspace.Coord{X: sum.X * inv, Y: sum.Y * inv, Z: sum.Z * inv}
}

// fill marks p filled with the given 24-bit color/coord pair and applies
// the mode-specific update rule from spec.md §4.D.
func (d *Driver) fill(p int, color uint32, coord colorspace.Coord) {
	d.pixels[p].Filled = true
	d.pixels[p].Color = color
	d.pixels[p].Value = coord
	d.placed++

	if d.selection == Min {
		d.updateMin(p, coord)
		return
	}
	d.updateMean(p)
}

func (d *Driver) updateMin(p int, coord colorspace.Coord) {
	if d.hasUnfilledNeighbor(p) {
		d.forest.Insert(coord, p)
		d.pixels[p].InForest = true
	}
	for _, q := range d.mooreNeighbors(p) {
		if d.pixels[q].InForest && !d.hasUnfilledNeighbor(q) {
			d.forest.Remove(d.pixels[q].Handle)
			d.pixels[q].InForest = false
		}
	}
}

func (d *Driver) updateMean(p int) {
	if d.pixels[p].InForest {
		d.forest.Remove(d.pixels[p].Handle)
		d.pixels[p].InForest = false
	}
	for _, q := range d.mooreNeighbors(p) {
		if d.pixels[q].Filled {
			continue
		}
		mean := d.meanOfFilledNeighbors(q)
		if d.pixels[q].InForest {
			d.forest.Remove(d.pixels[q].Handle)
		}
		d.forest.Insert(mean, q)
		d.pixels[q].InForest = true
	}
}

// Place assigns the j-th color of the stream to a pixel and applies the
// corresponding update rule, per spec.md §4.D's Selection procedure. It
// replicates the source quirk recorded as Open Question (a) in spec.md
// §9: in MIN mode the seed pixel is never inserted into the forest, so
// the second placement must pick a random unfilled Moore neighbor of the
// seed directly rather than querying the (still-empty) forest. It
// returns the grid index of the pixel it just filled, so a caller writing
// out a bitmap doesn't have to rescan the whole pixel table after every
// placement.
func (d *Driver) Place(j int, color uint32) (int, error) {
	coord := colorspace.ToCoord(d.space, color)

	if j == 0 {
		p := d.index(d.W/2, d.H/2)
		d.seedIdx = p
		d.pixels[p].Filled = true
		d.pixels[p].Color = color
		d.pixels[p].Value = coord
		d.placed++
		if d.selection == Mean {
			d.updateMean(p)
		}
		// MIN mode: intentionally does not insert the seed (Open Question a).
		return p, nil
	}

	if j == 1 && d.selection == Min {
		unfilled := d.unfilledNeighbors(d.seedIdx)
		p := d.randomChoice(unfilled)
		d.fill(p, color, coord)
		return p, nil
	}

	payload, _, err := d.forest.Nearest(coord)
	if err != nil {
		if errors.Is(err, kdforest.ErrEmptyForest) {
			return 0, ErrEmptyForest
		}
		return 0, err
	}

	var p int
	if d.selection == Min {
		unfilled := d.unfilledNeighbors(payload)
		p = d.randomChoice(unfilled)
	} else {
		p = payload
	}
	d.fill(p, color, coord)
	return p, nil
}

// Pixels returns the underlying pixel grid (row-major, y*W+x).
func (d *Driver) Pixels() []Pixel { return d.pixels }

// Placed returns the number of pixels filled so far.
func (d *Driver) Placed() int { return d.placed }

// ForestSize returns the current live entry count of the open-pixel
// forest, for invariant checks (spec.md §8 property 2).
func (d *Driver) ForestSize() int { return d.forest.Size() }
