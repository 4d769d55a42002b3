package rrsp

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// ReducedDepthSet is ReducedRangeDepths[0..maxDepth-1] of §3, indexed by
// idx = depth-1: idx 0 admits depth 1, idx MaxDepth-1 admits MaxDepth.
type ReducedDepthSet [partition.MaxDepth]bool

// GrandfatherGuard is the single-entry recursion guard of §4.3 HIGH /
// §5 "the grandfather-frame recursion ... uses a process-local
// single-entry guard flag". Per §9 Design Notes it must be carried as a
// parameter, never shared global mutable state; callers create one per
// top-level compress() call chain and pass it down.
type GrandfatherGuard struct {
	used bool
}

// enter reports whether the guard was free and claims it; the caller
// must call release when the recursive consultation returns.
func (g *GrandfatherGuard) enter() bool {
	if g.used {
		return false
	}
	g.used = true
	return true
}

func (g *GrandfatherGuard) release() { g.used = false }

func admitAllReduced() ReducedDepthSet {
	var s ReducedDepthSet
	for i := range s {
		s[i] = true
	}
	return s
}

func soleIndex(reduced [partition.MaxDepth]int) int {
	for i, c := range reduced {
		if c > 0 {
			return i
		}
	}
	return -1
}

// ClassifySub runs the §4.3 per-32x32-sub-CTU logic for one sub-CTU
// position and returns the admitted reduced depth set.
func ClassifySub(pic *partition.Picture, ctu *partition.CTU, pos SubPosition, qp int, guard *GrandfatherGuard) ReducedDepthSet {
	reduced, _ := alphaReduced(pic, ctu, pos)
	sim := classifySim(reduced)

	switch sim {
	case High:
		return classifySubHigh(pic, ctu, pos, qp, reduced, guard)
	case Medium:
		return classifySubMedium(pic, ctu, pos, reduced)
	default:
		return classifySubLow(pic, ctu, pos, reduced)
	}
}

func classifySubHigh(pic *partition.Picture, ctu *partition.CTU, pos SubPosition, qp int, reduced [partition.MaxDepth]int, guard *GrandfatherGuard) ReducedDepthSet {
	idxH := soleIndex(reduced)
	if idxH < 0 {
		return admitAllReduced()
	}

	beta := betaReduced(pic, ctu, pos)
	extraIdx := -1
	for d := 0; d <= partition.MaxDepth; d++ {
		if !beta[d] {
			continue
		}
		idx := d - 1
		if idx < 0 {
			idx = 0
		}
		if idx != idxH {
			extraIdx = idx
			break
		}
	}

	var out ReducedDepthSet
	out[idxH] = true

	if extraIdx >= 0 {
		step := 1
		if extraIdx < idxH {
			step = -1
		}
		next := idxH + step
		if next >= 0 && next < partition.MaxDepth {
			out[next] = true
		}
		return out
	}

	// β matches α: consult the grandfather frame, guarded against
	// unbounded recursion (§5, §9 Design Notes).
	if idxH > 0 {
		out[idxH-1] = true
		return out
	}
	if guard != nil && guard.enter() {
		defer guard.release()
		g := neighbor.GrandColocated(pic, ctu)
		if g != nil && qp <= 35 {
			// idxH==0 is already the shallowest reduced depth, so there is
			// no predecessor index to admit directly; instead consult the
			// grandfather frame's own quadrant and, if it needed depth > 1
			// there, widen admission to the next reduced index too.
			var gset neighbor.DepthSet
			sampleQuadrant(g, quadrants[pos], &gset)
			for d := 2; d <= partition.MaxDepth; d++ {
				if gset[d] {
					if idxH+1 < partition.MaxDepth {
						out[idxH+1] = true
					}
					break
				}
			}
		}
	}
	return out
}

func classifySubMedium(pic *partition.Picture, ctu *partition.CTU, pos SubPosition, reduced [partition.MaxDepth]int) ReducedDepthSet {
	var out ReducedDepthSet
	for i, c := range reduced {
		if c > 0 {
			out[i] = true
		}
	}

	if reduced[0] > 1 && partition.MaxDepth-3 >= 0 && reduced[partition.MaxDepth-3] >= 16 {
		out[0] = true
		return out
	}

	beta := betaReduced(pic, ctu, pos)
	betaCount := betaReducedCounts(pic, ctu, pos)
	minForDepth := func(d int) int {
		if d == 0 {
			return 4
		}
		return 2
	}
	for d := 0; d <= partition.MaxDepth; d++ {
		if !beta[d] {
			continue
		}
		idx := d - 1
		if idx < 0 {
			idx = 0
		}
		if out[idx] {
			continue
		}
		if betaCount[idx] >= minForDepth(d) {
			out[idx] = true
			return out
		}
	}

	for i, c := range reduced {
		if c == 1 {
			out[i] = false
			return out
		}
	}
	return out
}

func classifySubLow(pic *partition.Picture, ctu *partition.CTU, pos SubPosition, reduced [partition.MaxDepth]int) ReducedDepthSet {
	out := admitAllReduced()
	md := partition.MaxDepth

	switch {
	case reduced[0] > 20 && md-3 >= 0 && md-3 < md:
		out[md-3] = false
	case md-3 >= 0 && reduced[md-3] > 20:
		out[0] = false
	case md-3 >= 0 && reduced[md-3] <= 2:
		out[md-3] = false
	case reduced[0] < 4:
		beta := betaReduced(pic, ctu, pos)
		if !beta[1] {
			out[0] = false
		}
	}
	return out
}
