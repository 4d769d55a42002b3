package rrsp

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// Depth0Result is the outcome of the depth-0 pre-check of §4.3.
type Depth0Result struct {
	OnlyDepth0 bool
	Check64x64 bool
}

// ClassifyDepth0 runs the §4.3 depth-0 logic. grandColocated is the
// colocated-of-colocated CTU (or nil), resolved by the caller via
// neighbor.GrandColocated, so it is threaded in rather than looked up
// here.
func ClassifyDepth0(pic *partition.Picture, ctu *partition.CTU, qp int, grandColocated *partition.CTU) Depth0Result {
	probe := neighbor.Probe(pic, ctu, 64)

	aSets := make([]neighbor.DepthSet, 0, 4)
	for _, p := range a64Positions {
		aSets = append(aSets, probe.At(p))
	}
	bSets := betaSets64(pic, ctu, probe)

	allA := allAdoptDepth(aSets, 0)
	allB := allAdoptDepth(bSets, 0)

	if allA && allB {
		onlyDepth0 := qp > 35 || grandColocated == nil || grandColocated.Grid.Units[0].Depth == 0
		return Depth0Result{OnlyDepth0: onlyDepth0}
	}

	colocatedIsI := pic.Colocated != nil && pic.Colocated.Slice == partition.SliceI
	aHasAdopter := contributingCount(aSets) > 0
	bHasAdopter := contributingCount(bSets) > 0

	numCTUsInA := 0
	for _, s := range aSets {
		if s.Any() {
			numCTUsInA++
		}
	}
	depth1Quadrants := 0
	for _, p := range a64Positions {
		depth1Quadrants += countDepth1Quadrants(pic, ctu, p)
	}
	halfOfQuadrants := numCTUsInA * 4 / 2

	check := aHasAdopter ||
		(colocatedIsI && ctu.Y < 32) ||
		bHasAdopter ||
		(numCTUsInA > 0 && depth1Quadrants >= halfOfQuadrants)

	return Depth0Result{Check64x64: check}
}

// countDepth1Quadrants counts how many of the four 32x32 quadrants of
// the neighbor CTU at position p contain at least one minimum unit
// adopted at depth 1.
func countDepth1Quadrants(pic *partition.Picture, ctu *partition.CTU, p neighbor.Position) int {
	n := neighbor.NeighborCTU(pic, ctu, p)
	if n == nil {
		return 0
	}
	half := partition.UnitsPerSide / 2
	count := 0
	for qy := 0; qy < 2; qy++ {
		for qx := 0; qx < 2; qx++ {
			found := false
			for row := qy * half; row < (qy+1)*half && !found; row++ {
				for col := qx * half; col < (qx+1)*half; col++ {
					raster := row*partition.UnitsPerSide + col
					z := partition.RasterToZscan(raster)
					if n.Grid.Units[z].Depth == 1 {
						found = true
						break
					}
				}
			}
			if found {
				count++
			}
		}
	}
	return count
}
