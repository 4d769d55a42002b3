package rrsp

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// SubPosition enumerates the four 32x32 sub-CTUs of §4.3: w (top-left),
// x (top-right), y (bottom-left), z (bottom-right).
type SubPosition int

const (
	TopLeft SubPosition = iota
	TopRight
	BottomLeft
	BottomRight
)

// Sim is the rrspSim classification of §4.3.
type Sim int

const (
	Low Sim = iota
	Medium
	High
)

// quadrant describes one sub-CTU's own 8x8-unit bounds within the
// 16x16 local grid (rows/cols expressed in minimum-unit coordinates).
type quadrant struct{ rowStart, colStart int }

var quadrants = [4]quadrant{
	TopLeft:     {0, 0},
	TopRight:    {0, 8},
	BottomLeft:  {8, 0},
	BottomRight: {8, 8},
}

// borderSource describes one border source used to build the reduced α
// group; leftSource/aboveSource index it by sub-CTU position (§9 Design
// Notes: "precompute at startup as const tables indexed by sub-CTU
// position; do not inline the address arithmetic at each call site").
// Each names an 8x8-unit strip, either from an external spatial neighbor
// of the CTU (useExternal == true) or from a sibling quadrant already
// inside the same CTU (useExternal == false, quadrant index into
// `quadrants`).
type borderSource struct {
	external neighbor.Position
	internal int // sibling quadrant index, used when useExternal is false
	useExternal bool
}

var leftSource = [4]borderSource{
	TopLeft:     {external: neighbor.Left, useExternal: true},
	TopRight:    {internal: int(TopLeft), useExternal: false},
	BottomLeft:  {external: neighbor.Left, useExternal: true},
	BottomRight: {internal: int(BottomLeft), useExternal: false},
}

var aboveSource = [4]borderSource{
	TopLeft:     {external: neighbor.Above, useExternal: true},
	TopRight:    {external: neighbor.Above, useExternal: true},
	BottomLeft:  {internal: int(TopLeft), useExternal: false},
	BottomRight: {internal: int(TopRight), useExternal: false},
}

// sampleBorder reads the adopted-depth set of one border source of ctu.
func sampleBorder(pic *partition.Picture, ctu *partition.CTU, src borderSource) neighbor.DepthSet {
	var out neighbor.DepthSet
	if src.useExternal {
		n := neighbor.NeighborCTU(pic, ctu, src.external)
		if n == nil {
			return out
		}
		q := quadrants[nearestQuadrantFor(src.external)]
		sampleQuadrant(n, q, &out)
		return out
	}
	q := quadrants[src.internal]
	sampleQuadrant(ctu, q, &out)
	return out
}

// nearestQuadrantFor picks the one quadrant of an external neighbor CTU
// that is sampled for position p: Left gives its top-right quadrant,
// Above its bottom-left quadrant, and every other position its
// bottom-right quadrant. The choice does not depend on which sub-CTU is
// being classified.
func nearestQuadrantFor(p neighbor.Position) SubPosition {
	switch p {
	case neighbor.Left:
		return TopRight // neighbor's right-side quadrant touches our left edge
	case neighbor.Above:
		return BottomLeft // neighbor's bottom-side quadrant touches our top edge
	default:
		return BottomRight
	}
}

func sampleQuadrant(ctu *partition.CTU, q quadrant, out *neighbor.DepthSet) {
	for row := q.rowStart; row < q.rowStart+8; row++ {
		for col := q.colStart; col < q.colStart+8; col++ {
			raster := row*partition.UnitsPerSide + col
			z := partition.RasterToZscan(raster)
			d := int(ctu.Grid.Units[z].Depth)
			if d >= 0 && d <= partition.MaxDepth {
				out[d] = true
			}
		}
	}
}

// colocatedQuadrantSet reads the colocated CTU's same sub-CTU quadrant.
func colocatedQuadrantSet(pic *partition.Picture, ctu *partition.CTU, pos SubPosition) neighbor.DepthSet {
	var out neighbor.DepthSet
	if pic.Colocated == nil {
		return out
	}
	coloc := pic.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
	if coloc == nil {
		return out
	}
	sampleQuadrant(coloc, quadrants[pos], &out)
	return out
}

// weightedReduce folds a list of depth-sets into the reduced index space
// of ReducedDepthSet (idx = depth-1, depth 0 folded into idx 0), per the
// §4.3 formula "increment ReducedAdopted[d-1] by (1 + [d==0])".
func weightedReduce(sets []neighbor.DepthSet) (reduced [partition.MaxDepth]int) {
	for _, s := range sets {
		for d := 0; d <= partition.MaxDepth; d++ {
			if !s[d] {
				continue
			}
			idx := d - 1
			weight := 1
			if d == 0 {
				idx = 0
				weight = 2
			}
			if idx < 0 {
				idx = 0
			}
			if idx > partition.MaxDepth-1 {
				idx = partition.MaxDepth - 1
			}
			reduced[idx] += weight
		}
	}
	return
}

// alphaReduced builds the reduced α group of §4.3 for one sub-CTU
// position: border units from the corresponding neighbor strips plus
// the colocated CTU's same quadrant, weighted per weightedReduce.
func alphaReduced(pic *partition.Picture, ctu *partition.CTU, pos SubPosition) (reduced [partition.MaxDepth]int, sets []neighbor.DepthSet) {
	sets = []neighbor.DepthSet{
		sampleBorder(pic, ctu, leftSource[pos]),
		sampleBorder(pic, ctu, aboveSource[pos]),
		colocatedQuadrantSet(pic, ctu, pos),
	}
	reduced = weightedReduce(sets)
	return
}

// betaSets samples the colocated CTU's own Left/Above spatial neighbors,
// each at the quadrant nearestQuadrantFor picks (pos is not consulted) —
// one ring further out than α — keeping the two
// sources distinct so their adopted depths can be weighted independently
// (§4.3's "build reduced β", which the distilled spec leaves as an
// addressing detail — this core re-derives it from the neighbor position
// rather than mimicking the source's pointer aliasing, per §9 Design
// Notes / Open Question).
func betaSets(pic *partition.Picture, ctu *partition.CTU, pos SubPosition) []neighbor.DepthSet {
	if pic.Colocated == nil {
		return nil
	}
	coloc := pic.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
	if coloc == nil {
		return nil
	}
	var sets []neighbor.DepthSet
	for _, p := range [2]neighbor.Position{neighbor.Left, neighbor.Above} {
		n := neighbor.NeighborCTU(pic.Colocated, coloc, p)
		if n == nil {
			continue
		}
		var out neighbor.DepthSet
		sampleQuadrant(n, quadrants[nearestQuadrantFor(p)], &out)
		sets = append(sets, out)
	}
	return sets
}

// betaReduced is betaSets folded into one depth-admission set, used where
// classifySubHigh, classifySubMedium and classifySubLow only need to know which depths β touches
// at all.
func betaReduced(pic *partition.Picture, ctu *partition.CTU, pos SubPosition) neighbor.DepthSet {
	var out neighbor.DepthSet
	for _, s := range betaSets(pic, ctu, pos) {
		for d := range s {
			if s[d] {
				out[d] = true
			}
		}
	}
	return out
}

// betaReducedCounts is betaSets folded into the same weighted reduced-
// index space as alphaReduced, used where classifySubMedium needs β's
// own adoption strength rather than a bare membership test.
func betaReducedCounts(pic *partition.Picture, ctu *partition.CTU, pos SubPosition) [partition.MaxDepth]int {
	return weightedReduce(betaSets(pic, ctu, pos))
}

func classifySim(reduced [partition.MaxDepth]int) Sim {
	zero := 0
	for _, c := range reduced {
		if c == 0 {
			zero++
		}
	}
	switch zero {
	case 2:
		return High
	case 1:
		return Medium
	default:
		return Low
	}
}
