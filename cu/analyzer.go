package cu

import (
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/driver"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/serialize"
)

// Re-export the partition-level types callers build Pictures/CTUs from,
// so a caller of this package never has to import internal/partition
// directly.
type (
	SliceType = partition.SliceType
	SPSParams = partition.SPSParams
	CTU       = partition.CTU
	Picture   = partition.Picture
	MinUnit   = partition.MinUnit
	PartSize  = partition.PartSize
	PredMode  = partition.PredMode
)

const (
	SliceI = partition.SliceI
	SliceP = partition.SliceP
	SliceB = partition.SliceB
)

// NewPicture allocates a picture's CTU grid, delegating to
// internal/partition.
func NewPicture(width, height int, slice SliceType, sps SPSParams, qp int) *Picture {
	return partition.NewPicture(width, height, slice, sps, qp)
}

// Analyzer runs the full per-CTU decision pipeline (§4) and, once a
// picture's CTUs are all decided, the serialization walk (§4.7) over it.
type Analyzer struct {
	opts Options
	svc  Services
	ws   *partition.WorkingSet
	sps  partition.SPSParams
}

// NewAnalyzer validates opts against sps (§7 "Configuration
// inconsistency") and constructs an Analyzer.
func NewAnalyzer(sps partition.SPSParams, opts Options, svc Services) (*Analyzer, error) {
	if err := opts.validate(sps); err != nil {
		return nil, err
	}
	return &Analyzer{
		opts: opts,
		svc:  svc,
		ws:   partition.NewWorkingSet(),
		sps:  sps,
	}, nil
}

func tqbForceValue(f TQBForce) int {
	switch f {
	case TQBForceOff:
		return 0
	case TQBForceOn:
		return 1
	}
	return -1
}

func (a *Analyzer) driverOptions() driver.Options {
	return driver.Options{
		UseSBD:                  a.opts.UseSBD,
		UseRRSP:                 a.opts.UseRRSP,
		R:                       a.opts.R,
		UseRateCtrl:             a.opts.UseRateCtrl,
		UseAdaptiveQP:           a.opts.UseAdaptiveQP,
		QPAdaptationRange:       a.opts.QPAdaptationRange,
		UseAdaptQpSelect:        a.opts.UseAdaptQpSelect,
		UseEarlyCU:              a.opts.UseEarlyCU,
		UseEarlySkipDetection:   a.opts.UseEarlySkipDetection,
		UseCbfFastMode:          a.opts.UseCbfFastMode,
		UseFastDecisionForMerge: a.opts.UseFastDecisionForMerge,
		MaxDeltaQP:              a.opts.MaxDeltaQP,
		CostModeMixedLossless:   a.opts.CostMode == CostModeMixedLosslessLossy,
		TQBForceValue:           tqbForceValue(a.opts.TQBForce),
		AddCUDepth:              a.opts.AddCUDepth,
		MinCuDQPSize:            a.opts.MinCuDQPSize,
		DeltaQPEnabled:          a.opts.DeltaQPEnabled,
		ChromaQPAdjEnabled:      a.opts.ChromaQPAdjEnabled,
		AMPEnabled:              a.opts.AMPEnabled,
		PCMEnabled:              a.opts.PCMEnabled,
		PCMMinSize:              a.opts.PCMMinSize,
		PCMMaxSize:              a.opts.PCMMaxSize,
		TQBEnabled:              a.opts.TQBEnabled,
	}
}

// CompressCTU runs the Recursive R-D Driver (§4.5) over one CTU of pic,
// filling in its partition grid with the winning decisions. lambda is the
// R-D cost combiner's λ for the current slice.
func (a *Analyzer) CompressCTU(pic *Picture, ctu *CTU, lambda float64) error {
	dr := &driver.Driver{
		Pic:    pic,
		Opts:   a.driverOptions(),
		Svc:    a.driverServices(),
		WS:     a.ws,
		Lambda: lambda,
	}
	return dr.CompressCTU(ctu)
}

func (a *Analyzer) driverServices() driver.Services {
	return driver.Services{
		Prediction: a.svc.Prediction,
		Residual:   a.svc.Residual,
		Merge:      a.svc.Merge,
		Cost:       a.svc.Cost,
		Entropy:    a.svc.Entropy,
		RateCtrl:   a.svc.RateCtrl,
		AdaptiveQP: a.svc.AdaptiveQP,
		ARL:        a.svc.ARL,
		Budget:     a.svc.Budget,
	}
}

// EncodeCTU runs the Serialization Walk (§4.7) over one already-decided
// CTU, emitting its syntax elements through Services.Entropy.
func (a *Analyzer) EncodeCTU(pic *Picture, ctu *CTU) error {
	w := a.walker(pic)
	return w.EncodeCTU(ctu)
}

// EncodeSlice runs the Serialization Walk across every CTU of pic in
// raster order, including the end-of-slice-segment terminating bits
// (§4.7 step 4).
func (a *Analyzer) EncodeSlice(pic *Picture) error {
	w := a.walker(pic)
	return w.EncodeSlice()
}

func (a *Analyzer) walker(pic *Picture) *serialize.Walker {
	return &serialize.Walker{
		Pic:                pic,
		Entropy:            a.svc.Entropy,
		Coeffs:             a.svc.Coeffs,
		PCM:                a.svc.PCM,
		MergeCounts:        a.svc.MergeCounts,
		MinCuDQPSize:       a.opts.MinCuDQPSize,
		DeltaQPEnabled:     a.opts.DeltaQPEnabled,
		ChromaQPAdjEnabled: a.opts.ChromaQPAdjEnabled,
	}
}
