// Package kdforest implements the dynamic 3-D nearest-neighbor index
// described in spec.md §4.C: a Bentley-Saxe logarithmic decomposition of
// balanced k-d trees with amortized rebuilds and tombstoned deletion. It is
// the substrate the frontier driver (pkg/frontier) treats as the
// open-pixel set.
package kdforest

import (
	"errors"
	"math"

	"github.com/kdforest/kdforest/pkg/colorspace"
)

// ErrEmptyForest is returned by Nearest when the forest has no live points.
var ErrEmptyForest = errors.New("kdforest: nearest queried on empty forest")

// maxSlots bounds the number of Bentley-Saxe trees. 2^maxSlots vastly
// exceeds any bit depth this program supports (B<=24, N<=2^24), so slots
// never need to grow dynamically.
const maxSlots = 40

type node struct {
	coord       colorspace.Coord
	left, right int32
	axis        uint8
	tomb        bool
	payload     int
}

type slot struct {
	root int32 // -1 if this tree is empty
}

// RelocateFunc is invoked every time a node carrying payload is placed (or
// replaced) at pool index idx, including on its very first insertion. The
// forest does not own the caller's data; this is how a payload's owner
// learns (or re-learns, after a rebuild physically moves the node) its
// current handle. See spec.md §9 on the pixel/node ownership split.
type RelocateFunc func(payload int, idx int32)

// Forest is a Bentley-Saxe forest of balanced k-d trees over 3-D Coords.
type Forest struct {
	pool     []node
	free     []int32
	slots    [maxSlots]slot
	size     int // live point count
	sizeEst  int // live + tombstoned point count
	relocate RelocateFunc
}

// New returns an empty forest. onRelocate is called synchronously whenever
// a node is (re)placed, including during Insert itself, so callers can rely
// on their payload's handle being current by the time Insert returns.
func New(onRelocate RelocateFunc) *Forest {
	f := &Forest{relocate: onRelocate}
	for i := range f.slots {
		f.slots[i].root = -1
	}
	return f
}

// Size returns the live point count.
func (f *Forest) Size() int { return f.size }

// SizeEst returns the live-plus-tombstoned point count.
func (f *Forest) SizeEst() int { return f.sizeEst }

func (f *Forest) alloc() int32 {
	if n := len(f.free); n > 0 {
		idx := f.free[n-1]
		f.free = f.free[:n-1]
		return idx
	}
	f.pool = append(f.pool, node{})
	return int32(len(f.pool) - 1)
}

func (f *Forest) freeNode(idx int32) {
	f.free = append(f.free, idx)
}

type buildPoint struct {
	coord   colorspace.Coord
	payload int
}

// harvestAndFree walks the tree rooted at idx, collects its live points,
// and returns every node (live or tombstoned) in it to the free list. It
// is the mechanism by which a rebuild discards tombstones: nothing about a
// harvested tree survives except the live coordinates it carried.
func (f *Forest) harvestAndFree(idx int32) (points []buildPoint, visited int) {
	var rec func(i int32)
	rec = func(i int32) {
		if i == -1 {
			return
		}
		n := f.pool[i]
		rec(n.left)
		rec(n.right)
		visited++
		if !n.tomb {
			points = append(points, buildPoint{coord: n.coord, payload: n.payload})
		}
		f.freeNode(i)
	}
	rec(idx)
	return points, visited
}

// build constructs a single balanced k-d tree from points, per the
// "Balanced build" procedure of spec.md §4.C: three axis-sorted index
// arrays are maintained in parallel and partitioned in place at each
// split, rather than re-sorting a flattened slice every level.
func (f *Forest) build(points []buildPoint) int32 {
	n := len(points)
	if n == 0 {
		return -1
	}
	var idxByAxis [3][]int32
	for a := 0; a < 3; a++ {
		idx := make([]int32, n)
		for i := range idx {
			idx[i] = int32(i)
		}
		axis := a
		insertionSortByAxis(idx, points, axis)
		idxByAxis[a] = idx
	}
	goesLeft := make([]bool, n)
	return f.buildRec(points, idxByAxis, goesLeft, 0)
}

// insertionSortByAxis orders idx by points[idx[i]].coord.Get(axis), with
// ties on coordinate equality broken by original array position (the
// unsorted index itself), per spec.md §4.C. A simple stable sort suffices;
// this is only called once per axis per build, not per recursion level.
func insertionSortByAxis(idx []int32, points []buildPoint, axis int) {
	less := func(i, j int32) bool {
		vi, vj := points[i].coord.Get(axis), points[j].coord.Get(axis)
		if vi != vj {
			return vi < vj
		}
		return i < j
	}
	for i := 1; i < len(idx); i++ {
		v := idx[i]
		j := i - 1
		for j >= 0 && less(v, idx[j]) {
			idx[j+1] = idx[j]
			j--
		}
		idx[j+1] = v
	}
}

// buildRec builds one level of the balanced tree and recurses on the two
// partitions. goesLeft is a scratch buffer sized to the whole input point
// set, reused at every level (only the entries for indices still active at
// this level are meaningful), so partitioning is O(n) per level.
func (f *Forest) buildRec(points []buildPoint, idxByAxis [3][]int32, goesLeft []bool, depth int) int32 {
	n := len(idxByAxis[0])
	if n == 0 {
		return -1
	}
	axis := depth % 3
	medianPos := n / 2
	rootOrig := idxByAxis[axis][medianPos]

	for pos, orig := range idxByAxis[axis] {
		goesLeft[orig] = pos < medianPos
	}

	var leftIdx, rightIdx [3][]int32
	for a := 0; a < 3; a++ {
		left := make([]int32, 0, medianPos)
		right := make([]int32, 0, n-medianPos-1)
		for _, orig := range idxByAxis[a] {
			if orig == rootOrig {
				continue
			}
			if goesLeft[orig] {
				left = append(left, orig)
			} else {
				right = append(right, orig)
			}
		}
		leftIdx[a] = left
		rightIdx[a] = right
	}

	leftChild := f.buildRec(points, leftIdx, goesLeft, depth+1)
	rightChild := f.buildRec(points, rightIdx, goesLeft, depth+1)

	idx := f.alloc()
	f.pool[idx] = node{
		coord:   points[rootOrig].coord,
		left:    leftChild,
		right:   rightChild,
		axis:    uint8(axis),
		payload: points[rootOrig].payload,
	}
	if f.relocate != nil {
		f.relocate(points[rootOrig].payload, idx)
	}
	return idx
}

// Insert logically adds a point to the forest, per spec.md §4.C's
// structural rule: it either triggers a full tombstone compaction (when
// the tombstone ratio has crossed 50%) or cascades into the smallest empty
// slot, merging every lower slot's live points into one fresh tree.
func (f *Forest) Insert(coord colorspace.Coord, payload int) {
	if f.sizeEst+1 >= 2*(f.size+1) {
		f.compactAndInsert(coord, payload)
		return
	}

	k := 0
	for k < maxSlots && f.slots[k].root != -1 {
		k++
	}

	var gathered []buildPoint
	discarded := 0
	for i := 0; i < k; i++ {
		pts, visited := f.harvestAndFree(f.slots[i].root)
		gathered = append(gathered, pts...)
		discarded += visited - len(pts)
		f.slots[i].root = -1
	}
	gathered = append(gathered, buildPoint{coord: coord, payload: payload})

	f.slots[k].root = f.build(gathered)
	f.sizeEst -= discarded
	f.sizeEst++
	f.size++
}

// compactAndInsert discards every tombstone across the whole forest, then
// redeposits the surviving live points (plus the point being inserted)
// into slots matching the binary expansion of the new total, exactly as
// if that many points had been inserted one at a time with no deletions.
func (f *Forest) compactAndInsert(coord colorspace.Coord, payload int) {
	var gathered []buildPoint
	for i := range f.slots {
		if f.slots[i].root == -1 {
			continue
		}
		pts, _ := f.harvestAndFree(f.slots[i].root)
		gathered = append(gathered, pts...)
		f.slots[i].root = -1
	}
	gathered = append(gathered, buildPoint{coord: coord, payload: payload})

	total := len(gathered)
	f.size = total
	f.sizeEst = total

	pos := 0
	for bit := topBit(total); bit >= 0; bit-- {
		if total&(1<<uint(bit)) == 0 {
			continue
		}
		count := 1 << uint(bit)
		chunk := gathered[pos : pos+count]
		pos += count
		f.slots[bit].root = f.build(chunk)
	}
}

func topBit(v int) int {
	b := -1
	for v > 0 {
		b++
		v >>= 1
	}
	return b
}

// Remove logically deletes the node at handle (as returned via the
// RelocateFunc passed to New). The node stays in place, tombstoned, until
// a later rebuild physically discards it.
func (f *Forest) Remove(handle int32) {
	n := &f.pool[handle]
	if n.tomb {
		return
	}
	n.tomb = true
	f.size--
}

// Nearest returns the payload and coordinate of the live node minimizing
// squared Euclidean distance to target, per spec.md §4.C: near-child-first
// branch and bound, threading the same running bound across every root in
// turn. It fails with ErrEmptyForest if size==0.
func (f *Forest) Nearest(target colorspace.Coord) (payload int, coord colorspace.Coord, err error) {
	if f.size == 0 {
		return 0, colorspace.Coord{}, ErrEmptyForest
	}
	bestIdx := int32(-1)
	bestDist := math.Inf(1)
	for i := 0; i < maxSlots; i++ {
		if f.slots[i].root == -1 {
			continue
		}
		f.nearestRec(f.slots[i].root, target, &bestIdx, &bestDist)
	}
	if bestIdx == -1 {
		return 0, colorspace.Coord{}, ErrEmptyForest
	}
	n := f.pool[bestIdx]
	return n.payload, n.coord, nil
}

func (f *Forest) nearestRec(idx int32, target colorspace.Coord, bestIdx *int32, bestDist *float64) {
	if idx == -1 {
		return
	}
	n := &f.pool[idx]
	if !n.tomb {
		if d := colorspace.Dist2(n.coord, target); d < *bestDist {
			*bestDist = d
			*bestIdx = idx
		}
	}
	delta := target.Get(int(n.axis)) - n.coord.Get(int(n.axis))
	near, far := n.left, n.right
	if delta > 0 {
		near, far = n.right, n.left
	}
	f.nearestRec(near, target, bestIdx, bestDist)
	if delta*delta <= *bestDist {
		f.nearestRec(far, target, bestIdx, bestDist)
	}
}

// sizeOfSlot reports the live point count of the tree in slot k, for
// tests that check the structural rebalance rule directly (spec.md §8
// property 6). It walks the tree, which is fine for test-sized inputs;
// production code never needs per-slot counts.
func (f *Forest) sizeOfSlot(k int) (live int, occupied bool) {
	if f.slots[k].root == -1 {
		return 0, false
	}
	var rec func(idx int32)
	rec = func(idx int32) {
		if idx == -1 {
			return
		}
		n := f.pool[idx]
		if !n.tomb {
			live++
		}
		rec(n.left)
		rec(n.right)
	}
	rec(f.slots[k].root)
	return live, true
}
