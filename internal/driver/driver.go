package driver

import (
	"fmt"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/dispatch"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/entropy"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/neighbor"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/rrsp"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/sbd"
)

// Role indexes the three-column entropy-context matrix of §3 "Entropy
// contexts".
type Role int

const (
	CurrBest Role = iota
	NextBest
	TempBest

	numRoles = 3
)

// ContextMatrix is the depth x role matrix of §3.
type ContextMatrix [partition.MaxDepth + 1][numRoles]entropy.Context

// Options is the configuration surface the driver reads (§6
// "Configuration surface"), plus SPEC_FULL's supplemented AddCUDepth
// and MinCuDQPSize fields.
type Options struct {
	UseSBD, UseRRSP           bool
	R                         int
	UseRateCtrl               bool
	UseAdaptiveQP             bool
	QPAdaptationRange         int
	UseAdaptQpSelect          bool
	UseEarlyCU                bool
	UseEarlySkipDetection     bool
	UseCbfFastMode            bool
	UseFastDecisionForMerge   bool
	MaxDeltaQP                int
	CostModeMixedLossless     bool
	TQBForceValue             int // -1 = not forced
	AddCUDepth                int
	MinCuDQPSize              int
	DeltaQPEnabled            bool
	ChromaQPAdjEnabled        bool
	AMPEnabled                bool
	PCMEnabled                bool
	PCMMinSize, PCMMaxSize    int
	TQBEnabled                bool
}

// Services bundles the §6 external collaborators.
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
}

// Driver runs the Recursive R-D Driver over one picture's CTUs (§4.5).
type Driver struct {
	Pic    *partition.Picture
	Opts   Options
	Svc    Services
	WS     *partition.WorkingSet
	Lambda float64

	ctx        ContextMatrix
	guard      rrsp.GrandfatherGuard
	ctu        *partition.CTU
	baseQP     int
	sbdRange   [partition.MaxDepth + 1]bool
	onlyDepth0 bool
	check64x64 bool
	dqp        dqpState
}

// dqpState tracks the §4.5 step 7 / TEncCu.h m_bEncodeDQP-style
// bookkeeping for the quantization group currently being compressed:
// once any CU within the group has committed to a real (non-split)
// decision, no other CU in the same group pays the cu_qp_delta
// signaling bit again.
type dqpState struct {
	lastCodedQP  int
	codedInGroup bool
}

// FatalDecisionError is the §7 "Sentinel decision failure" assertion-
// class defect: no candidate produced a finite cost at a CTU.
type FatalDecisionError struct {
	CTUAddr int
	Depth   int
}

func (e *FatalDecisionError) Error() string {
	return fmt.Sprintf("cu analysis: no finite-cost candidate at CTU %d depth %d", e.CTUAddr, e.Depth)
}

// CompressCTU runs §4.5 for one CTU (§4.5 top-level entry point).
func (dr *Driver) CompressCTU(ctu *partition.CTU) error {
	dr.ctu = ctu
	dr.baseQP = dr.Pic.QP
	if dr.Opts.UseAdaptiveQP && dr.Svc.AdaptiveQP != nil {
		dr.baseQP = clipQP(dr.baseQP + dr.Svc.AdaptiveQP.ActivityOffset(ctu.X, ctu.Y, partition.CTUSize))
	}
	dr.dqp = dqpState{lastCodedQP: dr.baseQP}
	dr.onlyDepth0 = false
	dr.check64x64 = false

	for d := range dr.sbdRange {
		dr.sbdRange[d] = true
	}
	if dr.Pic.Slice != partition.SliceI && dr.Opts.UseSBD {
		res := sbd.Classify(dr.Pic, ctu, dr.Opts.R)
		dr.sbdRange = res.RangeDepths
	}

	var reduced rrsp.ReducedDepthSet
	for i := range reduced {
		reduced[i] = true
	}

	if err := dr.compress(0, 0, ctu.X, ctu.Y, partition.PartNone, false, false, reduced); err != nil {
		return err
	}

	if dr.Svc.ARL != nil && dr.Pic.Slice != partition.SliceI {
		histogram := make([]int, partition.MaxDepth+1)
		for _, u := range ctu.Grid.Units {
			if u.Pred == partition.PredInter {
				histogram[u.Depth]++
			}
		}
		dr.Svc.ARL.CollectInterLuma(ctu.RasterAddr, histogram)
	}
	return nil
}

func (dr *Driver) allowSelf(d int, reduced rrsp.ReducedDepthSet) bool {
	if dr.Pic.Slice == partition.SliceI {
		return true
	}
	if d == 0 {
		if dr.Opts.UseSBD {
			return dr.sbdRange[0]
		}
		return true
	}
	if dr.Opts.UseRRSP {
		return reduced[d-1]
	}
	if dr.Opts.UseSBD {
		return dr.sbdRange[d]
	}
	return true
}

func (dr *Driver) allowSplit(d int) bool {
	if dr.Pic.Slice == partition.SliceI {
		return true
	}
	if d == 0 && dr.Opts.UseRRSP && dr.onlyDepth0 {
		return false
	}
	if dr.Opts.UseSBD {
		any := false
		for dd := d + 1; dd <= partition.MaxDepth; dd++ {
			if dr.sbdRange[dd] {
				any = true
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// compress implements §4.5's recursive procedure.
func (dr *Driver) compress(d, zOffset, x, y int, parentPart partition.PartSize, parentMerge, parentSkip bool, reduced rrsp.ReducedDepthSet) error {
	db := dr.WS.Depths[d]
	cuWidth := partition.SizeAtDepth(d)
	db.TempCU.Reset(d, zOffset, x, y)
	db.BestCU.Reset(d, zOffset, x, y)

	if dr.Opts.DeltaQPEnabled && dr.Opts.MinCuDQPSize > 0 && cuWidth == dr.Opts.MinCuDQPSize {
		dr.dqp = dqpState{lastCodedQP: dr.baseQP}
	}

	dr.ctx[d][CurrBest] = dr.Svc.Entropy.SaveContext()

	if d == 0 && dr.Pic.Slice != partition.SliceI && dr.Opts.UseRRSP {
		grand := neighbor.GrandColocated(dr.Pic, dr.ctu)
		res := rrsp.ClassifyDepth0(dr.Pic, dr.ctu, dr.baseQP, grand)
		dr.onlyDepth0 = res.OnlyDepth0
		dr.check64x64 = res.Check64x64
	}

	inBoundary := dr.Pic.InBoundary(x, y, cuWidth)
	allowSelf := dr.allowSelf(d, reduced)

	if inBoundary && allowSelf {
		if err := dr.evaluateSelf(d, zOffset, x, y, cuWidth, parentPart, parentMerge, parentSkip); err != nil {
			return err
		}
	}

	bSubBranch := !(dr.Opts.UseEarlyCU && inBoundary && allowSelf && db.BestCU.Unit.Skip)
	belowMaxDepth := d < partition.MaxDepth-dr.Opts.AddCUDepth

	forcedSplit := !inBoundary
	heuristicSplit := inBoundary && dr.allowSplit(d)
	willSplit := belowMaxDepth && bSubBranch && (forcedSplit || heuristicSplit)

	if willSplit {
		if err := dr.evaluateSplit(d, zOffset, x, y, cuWidth); err != nil {
			return err
		}
	}

	if db.BestCU.Cost >= partition.MaxCost && !(!inBoundary && !willSplit) {
		panic((&FatalDecisionError{CTUAddr: dr.ctu.RasterAddr, Depth: d}).Error())
	}

	if db.BestCU.Unit.Part != partition.PartNone {
		dr.ctu.Grid.FillRect(zOffset, d, db.BestCU.Unit)

		if dr.Opts.DeltaQPEnabled && dr.Opts.MinCuDQPSize > 0 && cuWidth <= dr.Opts.MinCuDQPSize && !dr.dqp.codedInGroup {
			dr.dqp.codedInGroup = true
			dr.dqp.lastCodedQP = int(db.BestCU.Unit.QP)
		}
	}
	return nil
}

// evaluateSelf runs §4.4's candidate dispatch and §4.6's QP range over
// this node, keeping the winner in db.BestCU (via SwapBestTemp on win).
func (dr *Driver) evaluateSelf(d, zOffset, x, y, cuWidth int, parentPart partition.PartSize, parentMerge, parentSkip bool) error {
	db := dr.WS.Depths[d]
	minCUWidth := partition.SizeAtDepth(partition.MaxDepth)

	dispatchOpts := dispatch.Options{
		SliceType:            dr.Pic.Slice,
		TQBEnabled:           dr.Opts.TQBEnabled,
		PCMEnabled:           dr.Opts.PCMEnabled,
		PCMMinSize:           dr.Opts.PCMMinSize,
		PCMMaxSize:           dr.Opts.PCMMaxSize,
		EarlySkipDetection:   dr.Opts.UseEarlySkipDetection,
		CbfFastMode:          dr.Opts.UseCbfFastMode,
		AMPEnabled:           dr.Opts.AMPEnabled,
		FastDecisionForMerge: dr.Opts.UseFastDecisionForMerge,
	}
	candidates := dispatch.Build(d, partition.MaxDepth, cuWidth, minCUWidth, parentPart, parentMerge, parentSkip, dispatchOpts)

	qpOpts := QPPlanOptions{
		MaxDeltaQP:        dr.Opts.MaxDeltaQP,
		MinCuDQPSize:      dr.Opts.MinCuDQPSize,
		TQBEnabled:        dr.Opts.TQBEnabled,
		TQBForce:          dr.Opts.TQBForceValue >= 0,
		UseRateCtrl:       dr.Opts.UseRateCtrl,
		QPAdaptationRange: dr.Opts.QPAdaptationRange,
	}
	rcQP := dr.baseQP
	if dr.Svc.RateCtrl != nil {
		rcQP = dr.Svc.RateCtrl.CurrentQP()
	}
	qpIterations := PlanQPRange(cuWidth, dr.baseQP, qpOpts, rcQP)

	priorSkipWon := false
	priorZeroCbf := false
	pcmRawBits := float64(cuWidth*cuWidth) * 8 * 1.5

	entryCtx := dr.Svc.Entropy.SaveContext()

	for _, qpIter := range qpIterations {
		for _, cand := range candidates {
			if cand.SkipIfPriorSkipWon && priorSkipWon {
				continue
			}
			if cand.SkipIfPriorZeroCbf && priorZeroCbf {
				continue
			}
			if cand.RequiresNonZeroCbf && !hasNonZeroCBF(db.BestCU.Unit) {
				continue
			}
			if cand.Kind == dispatch.KindIPCM {
				if !(db.BestCU.Cost > costOfRawPCM(pcmRawBits, dr.Lambda) || db.BestCU.Bits > pcmRawBits) {
					continue
				}
			}

			dr.Svc.Entropy.LoadContext(entryCtx)

			db.TempCU.Reset(d, zOffset, x, y)
			db.TempCU.Unit.Depth = uint8(d)
			db.TempCU.Unit.Part = cand.Part
			db.TempCU.Unit.Pred = cand.Pred
			db.TempCU.Unit.TransquantBypass = qpIter.Lossless
			db.TempCU.Unit.QP = int8(qpIter.QP)
			db.TempCU.Unit.Merge = cand.ForceMerge || cand.MergeAMP

			if cand.Kind == dispatch.KindIPCM {
				db.TempCU.Unit.IPCM = true
				db.TempCU.Unit.Part = partition.Part2Nx2N
				db.TempCU.Bits = pcmRawBits
				db.TempCU.Distortion = 0
			} else {
				if db.TempCU.Unit.Merge && dr.Svc.Merge != nil {
					mvs, err := dr.Svc.Merge.Candidates(&db.TempCU)
					if err != nil {
						return err
					}
					if len(mvs) > 0 {
						chosen := mvs[0]
						db.TempCU.Unit.MergeIdx = 0
						db.TempCU.Unit.InterDir = chosen.InterDir
						db.TempCU.Unit.MVx = chosen.MVx
						db.TempCU.Unit.MVy = chosen.MVy
						db.TempCU.Unit.RefIdx = chosen.RefIdx
					}
				}
				if err := dr.Svc.Prediction.Search(&db.TempCU, db); err != nil {
					return err
				}
				if err := dr.Svc.Residual.Encode(&db.TempCU, db); err != nil {
					return err
				}
				if db.TempCU.Unit.Merge && !hasNonZeroCBF(db.TempCU.Unit) {
					db.TempCU.Unit.Skip = true
				}
			}

			db.TempCU.Cost = dr.Svc.Cost.Combine(db.TempCU.Bits, db.TempCU.Distortion, dr.Lambda, qpIter.Lossless)

			if db.TempCU.Cost < db.BestCU.Cost {
				db.SwapBestTemp()
				priorSkipWon = db.BestCU.Unit.Skip
				priorZeroCbf = !hasNonZeroCBF(db.BestCU.Unit)
			}
		}
	}

	if db.BestCU.Valid() {
		splitFlagBits := 1.0
		db.BestCU.Bits += splitFlagBits
		db.BestCU.Cost = dr.Svc.Cost.Combine(db.BestCU.Bits, db.BestCU.Distortion, dr.Lambda, db.BestCU.Unit.TransquantBypass)
	}
	return nil
}

func hasNonZeroCBF(u partition.MinUnit) bool {
	return u.CBFLuma || u.CBFCb || u.CBFCr
}

func costOfRawPCM(bits, lambda float64) float64 {
	return lambda * bits
}

// evaluateSplit implements §4.5 step 7: recurse into the four Z-order
// children, accumulate their cost into tempCU, and keep split vs.
// no-split by comparing against bestCU.
func (dr *Driver) evaluateSplit(d, zOffset, x, y, cuWidth int) error {
	db := dr.WS.Depths[d]
	childSize := cuWidth / 2
	db.TempCU.Reset(d, zOffset, x, y)

	for i := 0; i < 4; i++ {
		childZOffset := partition.ZOffsetOfChild(zOffset, d, i)
		childX := x + (i%2)*childSize
		childY := y + (i/2)*childSize

		var reduced rrsp.ReducedDepthSet
		for j := range reduced {
			reduced[j] = true
		}
		if d == 0 && dr.Pic.Slice != partition.SliceI && dr.Opts.UseRRSP {
			pos := rrsp.SubPosition(i)
			reduced = rrsp.ClassifySub(dr.Pic, dr.ctu, pos, dr.baseQP, &dr.guard)
			if dr.Pic.Colocated != nil && dr.Pic.Colocated.Slice == partition.SliceI && dr.ctu.Y < 32 {
				reduced[0] = true
			}
		}

		if i == 0 {
			dr.Svc.Entropy.LoadContext(dr.ctx[d][CurrBest])
		} else {
			dr.Svc.Entropy.LoadContext(dr.ctx[d+1][NextBest])
		}

		if err := dr.compress(d+1, childZOffset, childX, childY, db.BestCU.Unit.Part, db.BestCU.Unit.Merge, db.BestCU.Unit.Skip, reduced); err != nil {
			return err
		}

		childDB := dr.WS.Depths[d+1]
		db.TempCU.Bits += childDB.BestCU.Bits
		db.TempCU.Distortion += childDB.BestCU.Distortion
		dr.ctx[d+1][NextBest] = dr.Svc.Entropy.SaveContext()
	}

	splitFlagBits := 1.0
	db.TempCU.Bits += splitFlagBits

	if dr.Opts.DeltaQPEnabled && dr.dqp.codedInGroup {
		db.TempCU.Bits += 1
	}

	dr.ctx[d][TempBest] = dr.Svc.Entropy.SaveContext()

	db.TempCU.Cost = dr.Svc.Cost.Combine(db.TempCU.Bits, db.TempCU.Distortion, dr.Lambda, false)
	if dr.Svc.Budget != nil && dr.Svc.Budget.BudgetReached() {
		if dr.Opts.CostModeMixedLossless && dr.Lambda > 0 {
			db.TempCU.Cost += 1 / dr.Lambda
		} else {
			db.TempCU.Cost += 1
		}
	}

	if db.TempCU.Cost < db.BestCU.Cost {
		db.TempCU.Unit.Part = partition.PartNone // split: no single partition shape at this node
		db.SwapBestTemp()
		dr.ctx[d][NextBest] = dr.ctx[d][TempBest]
	} else {
		dr.ctx[d][NextBest] = dr.Svc.Entropy.SaveContext()
	}
	return nil
}
