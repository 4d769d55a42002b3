// Package rrsp implements the Reduced-Region Similarity Partitioning
// classifier (§4.3): a finer-grained companion to the Similarity
// Classifier that prunes the allowed depth set per 32x32 sub-CTU using
// colocated-neighbor 8x8 CUs, plus a depth-0 pre-check that can skip
// recursion below depth 0 entirely.
//
// Grounded on the same Neighborhood Probe (§4.1) the Similarity
// Classifier consumes; the α/β aggregation pattern is shared with
// internal/sbd but built over 8x8-granularity strips instead of
// whole-CTU ones, per §4.3's own "reduced" terminology.
package rrsp

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

var a64Positions = [4]neighbor.Position{neighbor.Left, neighbor.Above, neighbor.AboveLeft, neighbor.Colocated}

// betaSets64 builds the B64/β group of §4.3: the current CTU's
// AboveRight neighbor plus the colocated CTU's own spatial
// Above/Left/Right/Bottom neighbors.
func betaSets64(pic *partition.Picture, ctu *partition.CTU, probe neighbor.Result) []neighbor.DepthSet {
	sets := []neighbor.DepthSet{probe.At(neighbor.AboveRight)}
	if pic.Colocated == nil {
		return sets
	}
	colocatedCTU := pic.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
	if colocatedCTU == nil {
		return sets
	}
	colocProbe := neighbor.Probe(pic.Colocated, colocatedCTU, 64)
	sets = append(sets,
		colocProbe.At(neighbor.Above),
		colocProbe.At(neighbor.Left),
		colocProbe.At(neighbor.Right),
		colocProbe.At(neighbor.Bottom),
	)
	return sets
}

// contributingCount reports how many of the given depth sets contributed
// at least one adopted depth.
func contributingCount(sets []neighbor.DepthSet) int {
	n := 0
	for _, s := range sets {
		if s.Any() {
			n++
		}
	}
	return n
}

// allAdoptDepth reports whether every contributing set in sets has
// adopted depth d, possibly among others (sets that contributed nothing are ignored,
// matching §4.3 "every contributing neighbor ... adopts 64x64").
func allAdoptDepth(sets []neighbor.DepthSet, d int) bool {
	for _, s := range sets {
		if s.Any() && !s[d] {
			return false
		}
	}
	return true
}

func anyAdopts(sets []neighbor.DepthSet, d int) bool {
	for _, s := range sets {
		if s[d] {
			return true
		}
	}
	return false
}
