// Package sbd implements the Similarity-Based Decision classifier
// (§4.2): it aggregates the Neighborhood Probe's per-position adoption
// bitmaps into α/β groups and derives the depth set the R-D Driver is
// allowed to evaluate at a CTU.
//
// Grounded on the teacher's boundary/adoption pattern in
// writeCodingQuadtreeInterleaved (video_encoder_h265.go), generalized
// from a single split-or-not boundary test into the multi-way
// similarity dispatch this core needs; the neighbor aggregation itself
// has no teacher analogue and is built directly from §4.2.
package sbd

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// Counters holds the transient per-CTU group counters of §3 "Group
// counters", retained on Result for callers that need them (e.g. tests,
// diagnostics).
type Counters struct {
	AlphaDepths [partition.MaxDepth + 1]int
	BetaDepths  [partition.MaxDepth + 1]int
	SizeAlpha   int
	SimLevel    int
}

// Result is the outcome of classifying one CTU (§4.2 Output: RangeDepths[]).
type Result struct {
	RangeDepths neighbor.DepthSet
	Counters    Counters
}

var alphaPositions = [4]neighbor.Position{neighbor.Left, neighbor.Above, neighbor.AboveLeft, neighbor.Colocated}

// aggregate sums a probe's positions into a per-depth count array and
// reports how many positions contributed at least one depth.
func aggregate(probe neighbor.Result, positions []neighbor.Position) (counts [partition.MaxDepth + 1]int, size int) {
	for _, p := range positions {
		set := probe.At(p)
		if !set.Any() {
			continue
		}
		size++
		for d := 0; d <= partition.MaxDepth; d++ {
			if set[d] {
				counts[d]++
			}
		}
	}
	return
}

func adoptedSet(counts [partition.MaxDepth + 1]int) neighbor.DepthSet {
	var s neighbor.DepthSet
	for d, c := range counts {
		s[d] = c > 0
	}
	return s
}

func admitAll() neighbor.DepthSet {
	var s neighbor.DepthSet
	for d := range s {
		s[d] = true
	}
	return s
}

func subsetOf(sub, super neighbor.DepthSet) bool {
	for d := range sub {
		if sub[d] && !super[d] {
			return false
		}
	}
	return true
}

// betaCounts builds the HIGH/Medium-High β group of §4.2: the current
// CTU's AboveRight neighbor, plus the colocated CTU's own spatial
// Left/Above/Right/Bottom neighbors in its reference picture.
func betaCounts(pic *partition.Picture, ctu *partition.CTU, probe neighbor.Result, r int) [partition.MaxDepth + 1]int {
	var counts [partition.MaxDepth + 1]int
	addSet := func(s neighbor.DepthSet) {
		for d := 0; d <= partition.MaxDepth; d++ {
			if s[d] {
				counts[d]++
			}
		}
	}
	addSet(probe.At(neighbor.AboveRight))

	if pic.Colocated == nil {
		return counts
	}
	colocatedCTU := pic.Colocated.CTUAt(ctu.CTUX, ctu.CTUY)
	if colocatedCTU == nil {
		return counts
	}
	colocProbe := neighbor.Probe(pic.Colocated, colocatedCTU, r)
	addSet(colocProbe.At(neighbor.Left))
	addSet(colocProbe.At(neighbor.Above))
	addSet(colocProbe.At(neighbor.Right))
	addSet(colocProbe.At(neighbor.Bottom))
	return counts
}

// Classify runs the Similarity Classifier for one CTU (§4.2). Callers
// must only invoke this for inter slices with SBD enabled; the spec
// scopes SBD to that case explicitly.
func Classify(pic *partition.Picture, ctu *partition.CTU, r int) Result {
	probe := neighbor.Probe(pic, ctu, r)
	alphaCounts, sizeAlpha := aggregate(probe, alphaPositions[:])
	alphaSet := adoptedSet(alphaCounts)

	simLevel := 0
	for _, c := range alphaCounts {
		if c > 0 {
			simLevel++
		}
	}

	maxDepth := partition.MaxDepth
	res := Result{Counters: Counters{AlphaDepths: alphaCounts, SizeAlpha: sizeAlpha, SimLevel: simLevel}}

	switch {
	case simLevel == 0:
		res.RangeDepths = admitAll()
	case simLevel == 1:
		res.RangeDepths = classifyHigh(pic, ctu, probe, r, alphaSet, &res.Counters)
	case simLevel >= 2 && simLevel <= maxDepth-3:
		res.RangeDepths = classifyMediumHigh(pic, ctu, probe, r, alphaCounts, alphaSet, &res.Counters)
	case simLevel == maxDepth-2:
		res.RangeDepths = classifyMediumLow(alphaCounts, sizeAlpha, alphaSet)
	case simLevel == maxDepth-1:
		res.RangeDepths = classifyLow(alphaCounts, probe.AdoptedByColocated(), maxDepth)
	default:
		res.RangeDepths = admitAll()
	}
	return res
}

func soleDepth(set neighbor.DepthSet) int {
	for d, v := range set {
		if v {
			return d
		}
	}
	return -1
}

func clipDepth(d, maxDepth int) int {
	if d < 0 {
		return 0
	}
	if d > maxDepth {
		return maxDepth
	}
	return d
}

// classifyHigh implements §4.2 "High (=1)".
func classifyHigh(pic *partition.Picture, ctu *partition.CTU, probe neighbor.Result, r int, alphaSet neighbor.DepthSet, counters *Counters) neighbor.DepthSet {
	betaC := betaCounts(pic, ctu, probe, r)
	betaSet := adoptedSet(betaC)
	counters.BetaDepths = betaC

	alphaD := soleDepth(alphaSet)
	maxDepth := partition.MaxDepth

	if subsetOf(betaSet, alphaSet) {
		var out neighbor.DepthSet
		out[alphaD] = true
		return out
	}

	deepest := -1
	for d := maxDepth; d >= 0; d-- {
		if betaSet[d] || alphaSet[d] {
			deepest = d
			break
		}
	}

	var out neighbor.DepthSet
	out[alphaD] = true
	if deepest == alphaD {
		out[clipDepth(deepest-1, maxDepth)] = true
	} else {
		out[clipDepth(alphaD+1, maxDepth)] = true
	}
	return out
}

// classifyMediumHigh implements §4.2 "Medium-High (2..maxDepth-3)".
func classifyMediumHigh(pic *partition.Picture, ctu *partition.CTU, probe neighbor.Result, r int, alphaCounts [partition.MaxDepth + 1]int, alphaSet neighbor.DepthSet, counters *Counters) neighbor.DepthSet {
	betaC := betaCounts(pic, ctu, probe, r)
	betaSet := adoptedSet(betaC)
	counters.BetaDepths = betaC

	aboveLeftOnly := adoptedByAboveLeftOnly(pic, ctu, probe, r)

	if subsetOf(betaSet, alphaSet) {
		var out neighbor.DepthSet
		dropped := false
		for d := range aboveLeftOnly {
			if aboveLeftOnly[d] {
				dropped = true
				break
			}
		}
		for d := 0; d <= partition.MaxDepth; d++ {
			if !alphaSet[d] {
				continue
			}
			if dropped && aboveLeftOnly[d] {
				continue
			}
			out[d] = true
		}
		return out
	}

	out := alphaSet
	bestD, bestCount := -1, 0
	for d := 0; d <= partition.MaxDepth; d++ {
		if betaSet[d] && !alphaSet[d] && betaC[d] > bestCount {
			bestD, bestCount = d, betaC[d]
		}
	}
	if bestD >= 0 {
		out[bestD] = true
	}
	return out
}

// adoptedByAboveLeftOnly reports, per depth, whether AboveLeft is the
// only α contributor that adopted it.
func adoptedByAboveLeftOnly(pic *partition.Picture, ctu *partition.CTU, probe neighbor.Result, r int) neighbor.DepthSet {
	var out neighbor.DepthSet
	aboveLeft := probe.At(neighbor.AboveLeft)
	others := [3]neighbor.Position{neighbor.Left, neighbor.Above, neighbor.Colocated}
	for d := 0; d <= partition.MaxDepth; d++ {
		if !aboveLeft[d] {
			continue
		}
		uniq := true
		for _, p := range others {
			if probe.At(p)[d] {
				uniq = false
				break
			}
		}
		out[d] = uniq
	}
	return out
}

// classifyMediumLow implements §4.2 "Medium-Low (=maxDepth-2)".
func classifyMediumLow(alphaCounts [partition.MaxDepth + 1]int, sizeAlpha int, alphaSet neighbor.DepthSet) neighbor.DepthSet {
	out := alphaSet
	if sizeAlpha <= 1 {
		return out
	}
	for dU := 0; dU <= partition.MaxDepth; dU++ {
		if alphaCounts[dU] != sizeAlpha {
			continue
		}
		for d2 := 0; d2 <= partition.MaxDepth; d2++ {
			if d2 != dU && alphaCounts[d2] == 1 {
				out[d2] = false
				return out
			}
		}
	}
	return out
}

// classifyLow implements §4.2 "Low (=maxDepth-1)".
func classifyLow(alphaCounts [partition.MaxDepth + 1]int, colocated neighbor.DepthSet, maxDepth int) neighbor.DepthSet {
	out := admitAll()

	minCount := alphaCounts[0]
	for _, c := range alphaCounts[1:] {
		if c < minCount {
			minCount = c
		}
	}
	var tied []int
	for d, c := range alphaCounts {
		if c == minCount {
			tied = append(tied, d)
		}
	}
	if len(tied) == 0 {
		return out
	}
	if len(tied) == 1 {
		out[tied[0]] = false
		return out
	}

	lowSum, highSum := 0, 0
	if colocated[0] {
		lowSum++
	}
	if colocated[1] {
		lowSum++
	}
	if colocated[maxDepth] {
		highSum++
	}
	if maxDepth-1 >= 0 && colocated[maxDepth-1] {
		highSum++
	}

	mid := maxDepth / 2
	dropFromLow := highSum > lowSum
	for _, d := range tied {
		inLow := d <= mid
		if (dropFromLow && !inLow) || (!dropFromLow && inLow) {
			out[d] = false
			return out
		}
	}
	out[tied[0]] = false
	return out
}
