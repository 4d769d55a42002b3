// Package neighbor implements the Neighborhood Probe (§4.1): for a CTU,
// it samples the adopted quadtree depths of its spatial and temporal
// neighbors along a border strip whose length is set by a radius R, producing the
// per-depth adoption bitmaps the Similarity Classifier and RRSP
// Classifier build their α/β groups from.
//
// Grounded on the teacher's writeCodingQuadtreeInterleaved boundary
// check (video_encoder_h265.go) for the "missing neighbor yields an
// all-false array" pattern, generalized from a single inBoundary test
// into the seven-position probe this core needs.
package neighbor

import "github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"

// Position enumerates the seven neighbor positions a probe may sample
// (§4.1).
type Position int

const (
	Left Position = iota
	Above
	AboveLeft
	AboveRight
	Right
	Bottom
	Colocated

	numPositions = 7
)

// DepthSet is a per-depth adoption bitmap, indexed 0..MaxDepth, matching
// the sizing of RangeDepths/ReducedRangeDepths (§3 "Allowed-depth
// bitsets").
type DepthSet [partition.MaxDepth + 1]bool

// Any reports whether any depth is set.
func (s DepthSet) Any() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// Result is the outcome of probing all seven positions around one CTU.
type Result struct {
	Adopted [numPositions]DepthSet
}

// At returns the adoption set for a given position.
func (r Result) At(p Position) DepthSet { return r.Adopted[p] }

// AdoptedByColocated is the cached colocated-neighbor adoption bitmap
// (§3 "AdoptedByColocated"), consulted by the SBD Low-similarity branch.
func (r Result) AdoptedByColocated() DepthSet { return r.Adopted[Colocated] }

// stripUnits returns the (row, col) minimum-unit coordinates, in the
// neighbor's own 16x16 local grid, that the probe samples for radius R:
// for Left/Right/Above/Bottom, the one-unit-wide column or row touching
// the shared boundary, limited to its first R samples; for AboveRight,
// the last R samples of its bottom row; for AboveLeft, its bottom-right
// corner unit; for Colocated, the whole CTU whatever R is. The strip is
// one minimum unit deep for every R, so R=64 does not cover the whole of
// a spatial neighbor. The
// returned sets are nested by construction as R grows (8 ⊆ 16 ⊆ 32 ⊆ 64),
// which is what gives SBD its radius-monotonicity property (§8 invariant 3).
func stripUnits(pos Position, r int) [][2]int {
	unitsR := r / partition.MinUnitSize
	if unitsR > partition.UnitsPerSide {
		unitsR = partition.UnitsPerSide
	}
	last := partition.UnitsPerSide - 1

	var out [][2]int
	switch pos {
	case Left:
		for row := 0; row < unitsR; row++ {
			out = append(out, [2]int{row, last})
		}
	case Above:
		for col := 0; col < unitsR; col++ {
			out = append(out, [2]int{last, col})
		}
	case Right:
		for row := 0; row < unitsR; row++ {
			out = append(out, [2]int{row, 0})
		}
	case Bottom:
		for col := 0; col < unitsR; col++ {
			out = append(out, [2]int{0, col})
		}
	case AboveLeft:
		out = append(out, [2]int{last, last})
	case AboveRight:
		for col := last - unitsR + 1; col <= last; col++ {
			out = append(out, [2]int{last, col})
		}
	case Colocated:
		for row := 0; row < partition.UnitsPerSide; row++ {
			for col := 0; col < partition.UnitsPerSide; col++ {
				out = append(out, [2]int{row, col})
			}
		}
	}
	return out
}

// ctuAtOffset returns the neighbor CTU of pic at (ctu.CTUX+dx, ctu.CTUY+dy),
// or nil if it doesn't exist (out of picture).
func ctuAtOffset(pic *partition.Picture, ctu *partition.CTU, dx, dy int) *partition.CTU {
	return pic.CTUAt(ctu.CTUX+dx, ctu.CTUY+dy)
}

// NeighborCTU resolves the CTU a given position refers to, or nil if it
// doesn't exist. Exported for classifiers (RRSP §4.3) that need the raw
// neighbor CTU rather than a pre-sampled adoption bitmap, e.g. to count
// adoption within a sub-region of the neighbor's grid.
func NeighborCTU(pic *partition.Picture, ctu *partition.CTU, p Position) *partition.CTU {
	return neighborCTU(pic, ctu, p)
}

// neighborCTU resolves the CTU a given position refers to. Colocated
// resolves through the picture's temporal-reference pointer rather than
// a spatial offset.
func neighborCTU(pic *partition.Picture, ctu *partition.CTU, p Position) *partition.CTU {
	switch p {
	case Left:
		return ctuAtOffset(pic, ctu, -1, 0)
	case Above:
		return ctuAtOffset(pic, ctu, 0, -1)
	case AboveLeft:
		return ctuAtOffset(pic, ctu, -1, -1)
	case AboveRight:
		return ctuAtOffset(pic, ctu, 1, -1)
	case Right:
		return ctuAtOffset(pic, ctu, 1, 0)
	case Bottom:
		return ctuAtOffset(pic, ctu, 0, 1)
	case Colocated:
		if pic.Colocated == nil {
			return nil
		}
		return pic.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
	}
	return nil
}

// sample builds the adoption bitmap for one neighbor CTU's strip.
func sample(n *partition.CTU, strip [][2]int) DepthSet {
	var set DepthSet
	if n == nil {
		return set
	}
	for _, rc := range strip {
		raster := rc[0]*partition.UnitsPerSide + rc[1]
		z := partition.RasterToZscan(raster)
		d := int(n.Grid.Units[z].Depth)
		if d >= 0 && d <= partition.MaxDepth {
			set[d] = true
		}
	}
	return set
}

// Probe samples all seven neighbor positions of ctu at radius r (§4.1).
// Right and Bottom are only meaningful when pic is an already-fully-
// decided picture (e.g. reached via Colocated): within the picture
// currently being compressed those CTUs have not been visited yet and
// their grid content is not a valid neighbor signal (§5 ordering
// guarantees). Callers probing the picture under compression should
// ignore Result.At(Right) and Result.At(Bottom).
func Probe(pic *partition.Picture, ctu *partition.CTU, r int) Result {
	var res Result
	for p := Position(0); p < numPositions; p++ {
		n := neighborCTU(pic, ctu, p)
		res.Adopted[p] = sample(n, stripUnits(p, r))
	}
	return res
}

// GrandColocated resolves the "colocated of colocated" CTU consulted by
// the RRSP grandfather-frame recursion (§4.3 HIGH branch), or nil if
// either hop is missing.
func GrandColocated(pic *partition.Picture, ctu *partition.CTU) *partition.CTU {
	if pic.Colocated == nil || pic.Colocated.Colocated == nil {
		return nil
	}
	return pic.Colocated.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
}
