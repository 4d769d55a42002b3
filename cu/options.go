// Package cu is the public entry point of the Coding Unit analysis
// core: recursive quadtree R-D search, SBD/RRSP fast-decision gating,
// per-depth candidate dispatch, QP range planning, and the post-decision
// serialization walk, wired over a caller-supplied Picture and a set of
// external collaborator services (§6).
//
// Grounded on the teacher's HEVCEncoderConfig (video_h265.go) for the
// "plain struct of typed fields and enums" configuration shape, and on
// lepton.ExitCode (lepton/errors.go) / astc.ErrorCode (astc/errors.go)
// for the fatal-configuration error code pattern used here.
package cu

import "github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"

// FastSearch enumerates §6's FastSearch configuration axis.
type FastSearch int

const (
	FastSearchNormal FastSearch = iota
	FastSearchSelective
)

// CostMode enumerates §6's CostMode configuration axis.
type CostMode int

const (
	CostModeStandard CostMode = iota
	CostModeMixedLosslessLossy
)

// TQBForce enumerates the three states of CUTransquantBypassFlagForceValue:
// unset, forced off, forced on.
type TQBForce int

const (
	TQBNotForced TQBForce = iota
	TQBForceOff
	TQBForceOn
)

// Options is the full §6 configuration surface plus the SPEC_FULL
// supplements (AddCUDepth, MinCuDQPSize, DeltaQPEnabled,
// ChromaQPAdjEnabled, AMPEnabled, PCMEnabled/PCMMinSize/PCMMaxSize,
// TQBEnabled).
type Options struct {
	UseSBD            bool
	UseRRSP           bool
	R                 int // radius ∈ {8,16,32,64}
	UseRateCtrl       bool
	UseAdaptiveQP     bool
	QPAdaptationRange int
	UseAdaptQpSelect  bool

	UseEarlyCU              bool
	UseEarlySkipDetection   bool
	UseCbfFastMode          bool
	UseFastDecisionForMerge bool
	FastSearch              FastSearch

	MaxDeltaQP   int
	CostMode     CostMode
	TQBForce     TQBForce
	TQBEnabled   bool
	MinCuDQPSize int
	AddCUDepth   int

	DeltaQPEnabled     bool
	ChromaQPAdjEnabled bool
	AMPEnabled         bool

	PCMEnabled bool
	PCMMinSize int
	PCMMaxSize int
}

// ExitCode is the fatal-configuration error code of §7, grounded on
// lepton.ExitCode / astc.ErrorCode's small-integer-with-String() shape.
type ExitCode int

const (
	ExitOK ExitCode = iota
	ExitBadRadius
	ExitBadQPRange
	ExitBadPCMRange
	ExitBadMinCuDQPSize
)

func (e ExitCode) String() string {
	switch e {
	case ExitOK:
		return "ok"
	case ExitBadRadius:
		return "unsupported neighborhood-probe radius R"
	case ExitBadQPRange:
		return "MaxDeltaQP or QPAdaptationRange out of range"
	case ExitBadPCMRange:
		return "PCMMinSize/PCMMaxSize inconsistent with the minimum CU size"
	case ExitBadMinCuDQPSize:
		return "MinCuDQPSize is not a power-of-two CU size between the minimum CU size and the CTU size"
	}
	return "unknown configuration error"
}

// ConfigError reports a §7 "Configuration inconsistency" failure,
// returned from NewAnalyzer rather than panicked: the caller can still
// recover by fixing Options and retrying, unlike a Sentinel decision
// failure.
type ConfigError struct {
	Code ExitCode
}

func (e *ConfigError) Error() string { return e.Code.String() }

// validate checks §6/§7's configuration-inconsistency conditions against
// the SPS the analyzer will run over.
func (o Options) validate(sps partition.SPSParams) error {
	if o.UseSBD || o.UseRRSP {
		switch o.R {
		case 8, 16, 32, 64:
		default:
			return &ConfigError{Code: ExitBadRadius}
		}
	}
	if o.MaxDeltaQP < 0 || o.QPAdaptationRange < 0 {
		return &ConfigError{Code: ExitBadQPRange}
	}
	if o.PCMEnabled {
		if o.PCMMinSize > o.PCMMaxSize || o.PCMMinSize < sps.MinCUSize || o.PCMMaxSize > partition.CTUSize {
			return &ConfigError{Code: ExitBadPCMRange}
		}
	}
	if o.MinCuDQPSize != 0 {
		size := o.MinCuDQPSize
		if size < sps.MinCUSize || size > partition.CTUSize || size&(size-1) != 0 {
			return &ConfigError{Code: ExitBadMinCuDQPSize}
		}
	}
	return nil
}
