// Package dispatch implements the Per-Depth Candidate Dispatcher
// (§4.4): given a CU node's depth, slice type, parent partition, and
// the configuration flags that gate optional shapes, it builds the
// ordered list of prediction-mode candidates the Recursive R-D Driver
// evaluates at that node.
//
// Grounded on §9 Design Notes: "the per-candidate enumeration is
// naturally expressed as a tagged-variant list of candidate
// descriptors... implementers should build a candidate-list that the
// driver iterates" rather than reproducing the source's flat, stateful
// control flow. Candidates that can only be skipped based on a sibling's
// *evaluation result* (early-skip-detection, CBF-fast-mode) carry that
// contingency as a declarative flag the driver checks, instead of the
// dispatcher trying to predict the outcome itself.
package dispatch

import "github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"

// Kind tags what a Candidate asks the driver to evaluate.
type Kind int

const (
	KindInterMergeSkip Kind = iota
	KindInter
	KindIntra
	KindIPCM
)

// Candidate is one tagged-variant entry in the dispatcher's output list
// (§9 Design Notes).
type Candidate struct {
	Kind Kind
	Part partition.PartSize
	Pred partition.PredMode

	// ForceMerge marks the merge/skip evaluation (§4.4 step 1): the
	// driver evaluates the first merge candidate once and marks the
	// result as a skip when it has no non-zero CBF.
	ForceMerge bool

	// MergeAMP marks an AMP shape restricted to merge candidates only
	// (§4.4.1 "as merge-AMP").
	MergeAMP bool

	// SkipIfPriorSkipWon tells the driver to skip this candidate
	// entirely once an earlier merge/skip candidate in this same list
	// has already won as a skip (§4.4 step 2 early-skip-detection path).
	SkipIfPriorSkipWon bool

	// SkipIfPriorZeroCbf tells the driver to skip this candidate if the
	// immediately preceding sibling candidate's winning root CBF was
	// zero and CBF-fast-mode is enabled (§4.4 step 2 "CBF-fast may skip
	// subsequent siblings").
	SkipIfPriorZeroCbf bool

	// MinCUOnly restricts the candidate to the maximum-depth (minimum
	// CU size) node only (§4.4 step 2 NxN, step 4 intra NxN).
	MinCUOnly bool

	// RequiresNonZeroCbf gates intra 2Nx2N at non-I slices: evaluated
	// only if the current best has any non-zero CBF (§4.4 step 3).
	RequiresNonZeroCbf bool
}

// Options carries the configuration surface fields §4.4 reads (§6
// Configuration surface, subset relevant to candidate enumeration).
type Options struct {
	SliceType              partition.SliceType
	TQBEnabled             bool
	PCMEnabled             bool
	PCMMinSize, PCMMaxSize int
	EarlySkipDetection     bool
	CbfFastMode            bool
	AMPEnabled             bool
	FastDecisionForMerge   bool
}

// Build enumerates the candidate list for a CU node of the given depth,
// width, and parent partition (§4.4). minCUWidth bounds the
// min-CU-size-only steps (N×N, intra N×N); maxDepth is not read.
func Build(depth, maxDepth, cuWidth, minCUWidth int, parentPart partition.PartSize, parentWasMerge, parentWasSkip bool, opts Options) []Candidate {
	var list []Candidate
	atMinSize := cuWidth <= minCUWidth
	inter := opts.SliceType != partition.SliceI

	if inter {
		if opts.EarlySkipDetection {
			list = append(list, Candidate{Kind: KindInter, Part: partition.Part2Nx2N, Pred: partition.PredInter})
		}
		list = append(list, Candidate{Kind: KindInterMergeSkip, Part: partition.Part2Nx2N, Pred: partition.PredInter, ForceMerge: true})
		if !opts.EarlySkipDetection {
			list = append(list, Candidate{Kind: KindInter, Part: partition.Part2Nx2N, Pred: partition.PredInter})
		}

		if atMinSize && opts.CbfFastMode {
			list = append(list, Candidate{Kind: KindInter, Part: partition.PartNxN, Pred: partition.PredInter, MinCUOnly: true, SkipIfPriorSkipWon: true})
		}
		list = append(list, Candidate{Kind: KindInter, Part: partition.PartNx2N, Pred: partition.PredInter, SkipIfPriorSkipWon: true})
		list = append(list, Candidate{Kind: KindInter, Part: partition.Part2NxN, Pred: partition.PredInter, SkipIfPriorSkipWon: true, SkipIfPriorZeroCbf: opts.CbfFastMode})

		if opts.AMPEnabled && cuWidth < 64 {
			list = append(list, amp(depth, parentPart, parentWasMerge, parentWasSkip)...)
		}
	}

	list = append(list, Candidate{Kind: KindIntra, Part: partition.Part2Nx2N, Pred: partition.PredIntra, RequiresNonZeroCbf: inter})

	if atMinSize {
		list = append(list, Candidate{Kind: KindIntra, Part: partition.PartNxN, Pred: partition.PredIntra, MinCUOnly: true})
	}

	if opts.PCMEnabled && cuWidth >= opts.PCMMinSize && cuWidth <= opts.PCMMaxSize {
		list = append(list, Candidate{Kind: KindIPCM})
	}

	return list
}

// amp builds the AMP candidate subset of §4.4.1 for the given parent
// partition.
func amp(depth int, parentPart partition.PartSize, parentWasMerge, parentWasSkip bool) []Candidate {
	testHor, testVer, merge := ampOrientation(parentPart, parentWasMerge, parentWasSkip)
	if !testHor && !testVer {
		return nil
	}
	var out []Candidate
	if testHor {
		out = append(out,
			Candidate{Kind: KindInter, Part: partition.Part2NxnU, Pred: partition.PredInter, MergeAMP: merge},
			Candidate{Kind: KindInter, Part: partition.Part2NxnD, Pred: partition.PredInter, MergeAMP: merge},
		)
	}
	if testVer {
		out = append(out,
			Candidate{Kind: KindInter, Part: partition.PartnLx2N, Pred: partition.PredInter, MergeAMP: merge},
			Candidate{Kind: KindInter, Part: partition.PartnRx2N, Pred: partition.PredInter, MergeAMP: merge},
		)
	}
	return out
}

// ampOrientation implements §4.4.1's orientation-selection table.
func ampOrientation(parentPart partition.PartSize, parentWasMerge, parentWasSkip bool) (testHor, testVer, merge bool) {
	switch {
	case parentPart == partition.Part2NxN:
		return true, false, false
	case parentPart == partition.PartNx2N:
		return false, true, false
	case parentPart == partition.Part2Nx2N && !parentWasMerge && !parentWasSkip:
		return true, true, false
	case parentPart.IsAMP():
		return true, true, true
	case parentPart == partition.PartNone:
		// No parent partition (the root node, or a parent that did not
		// evaluate itself): both orientations as merge-AMP. The current
		// best's partition is not consulted.
		return true, true, true
	case parentPart == partition.Part2Nx2N:
		// Parent is 2Nx2N and merged or skipped: both orientations as
		// merge-AMP.
		return true, true, true
	}
	return false, false, false
}
