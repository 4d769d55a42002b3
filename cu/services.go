package cu

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/driver"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/entropy"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/serialize"
)

// The external-collaborator interfaces of §6 live in internal/driver;
// this package re-exports them under the names callers construct
// Analyzer against, so the service contracts are part of the public API
// without internal/driver itself depending on cu (which would cycle,
// since driver is cu's implementation detail, not the reverse).
type (
	PredictionSearch = driver.PredictionSearch
	ResidualCoder    = driver.ResidualCoder
	MergeCandidate   = driver.MergeCandidate
	MergeCandidates  = driver.MergeCandidates
	CostModel        = driver.CostModel
	RateController   = driver.RateController
	AdaptiveQPSource = driver.AdaptiveQPSource
	ARLSink          = driver.ARLSink
	BudgetTracker    = driver.BudgetTracker
)

// EntropyCoder is the full §6 entropy-coder contract this package needs:
// the driver's R-D-search subset plus the serialization walk's syntax-
// emission subset. *entropy.Coder satisfies it directly.
type EntropyCoder interface {
	driver.EntropyCoder
	serialize.EntropyCoder
}

// CoefficientCoder is the serialization-time half of "Residual encode &
// RD" (§6): given the final chosen CU, emit its coefficients.
type CoefficientCoder = serialize.CoefficientCoder

// IPCMWriter is the serialization-time raw-sample path for IPCM CUs.
type IPCMWriter = serialize.IPCMWriter

// MergeCandCount reports how many merge candidates were available for a
// unit, used to size merge_idx's code during serialization.
type MergeCandCount = serialize.MergeCandCount

// Services bundles every external collaborator an Analyzer needs across
// both the R-D search and the serialization walk.
type Services struct {
	Prediction PredictionSearch
	Residual   ResidualCoder
	Merge      MergeCandidates
	Cost       CostModel
	Entropy    EntropyCoder
	RateCtrl   RateController
	AdaptiveQP AdaptiveQPSource
	ARL        ARLSink
	Budget     BudgetTracker

	Coeffs      CoefficientCoder
	PCM         IPCMWriter
	MergeCounts MergeCandCount
}

// compile-time assertion that *entropy.Coder satisfies the combined
// EntropyCoder contract above.
var _ EntropyCoder = (*entropy.Coder)(nil)
