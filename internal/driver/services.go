// Package driver implements the Recursive R-D Driver (§4.5) and QP
// Range Planner (§4.6): the core quadtree walk that drives the Per-Depth
// Candidate Dispatcher, issues children recursions, compares parent vs.
// child cost, and maintains working buffers and entropy-coder contexts.
//
// Grounded on the teacher's writeCodingQuadtreeInterleaved recursion
// shape (video_encoder_h265.go): a depth-parameterized function that
// checks picture-boundary fit, recurses into four Z-order children when
// split, and falls through to leaf handling otherwise. This package
// generalizes that shape from "always split until boundary-fit" into a
// full R-D-compared recursive search.
package driver

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/entropy"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// PredictionSearch is the §6 "Prediction search" external collaborator:
// given a tentative CU and its working buffers, fill prediction/
// residual/reconstruction samples in place.
type PredictionSearch interface {
	Search(node *partition.CUNode, buffers *partition.DepthBuffers) error
}

// ResidualCoder is the §6 "Residual encode & RD" collaborator: encode
// residual coefficients and update the node's bits/bins/distortion/cost.
type ResidualCoder interface {
	Encode(node *partition.CUNode, buffers *partition.DepthBuffers) error
}

// MergeCandidate is one merge-candidate MV field (§6 "Merge candidate list").
type MergeCandidate struct {
	InterDir uint8
	MVx, MVy [2]int16
	RefIdx   [2]int8
}

// MergeCandidates is the §6 "Merge candidate list" collaborator.
type MergeCandidates interface {
	Candidates(node *partition.CUNode) ([]MergeCandidate, error)
}

// CostModel is the §6 "R-D cost combiner": cost = λ·bits + distortion,
// or the lossless variant when node.Unit.TransquantBypass is set.
type CostModel interface {
	Combine(bits, distortion, lambda float64, lossless bool) float64
}

// EntropyCoder is the subset of *entropy.Coder the driver and
// serialization walk call through an interface so that external
// services can be substituted in tests (§6 "Entropy coder").
type EntropyCoder interface {
	SaveContext() entropy.Context
	LoadContext(entropy.Context)
	BitsWritten() float64
	BinsWritten() int
	EncodeSplitCUFlag(depth int, split bool)
	EncodeTransquantBypassFlag(bool)
	EncodeCuQpDeltaAbs(int)
	EncodeCuQpDeltaSign(bool)
	EncodeChromaQpAdjFlag(bool)
}

// RateController is the §6 "Rate controller" collaborator.
type RateController interface {
	CurrentQP() int
}

// AdaptiveQPSource is the §6 "Adaptive-QP layer" collaborator.
type AdaptiveQPSource interface {
	ActivityOffset(x, y, size int) int
}

// ARLSink is the §6 "ARL statistics sink" collaborator (optional).
type ARLSink interface {
	CollectInterLuma(ctuAddr int, histogram []int)
}

// BudgetTracker reports whether the slice byte budget has been reached
// (§4.5 step 7 "If slice byte budget has been reached...").
type BudgetTracker interface {
	BudgetReached() bool
}
