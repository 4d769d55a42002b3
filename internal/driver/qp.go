package driver

// MaxQP is the HEVC luma QP ceiling for an 8-bit sequence (QpBDOffsetLuma
// = 0, so the floor is 0 too).
const MaxQP = 51

// QPIteration is one step of the §4.6 QP range, expressed as the
// explicit enum §9 Design Notes calls for ("Lossless, Lossy(q)") instead
// of mutating a loop variable to a sentinel and restoring it.
type QPIteration struct {
	Lossless bool
	QP       int
}

// QPPlanOptions carries the subset of the configuration surface (§6)
// the QP Range Planner reads.
type QPPlanOptions struct {
	MaxDeltaQP       int
	MinCuDQPSize     int
	TQBEnabled       bool
	TQBForce         bool
	UseRateCtrl      bool
	UseAdaptiveQP    bool
	QPAdaptationRange int
}

// PlanQPRange computes the §4.6 QP iteration list for a CU of the given
// width at baseQP (already adjusted by slice QP plus any adaptive-QP
// offset the caller folded in).
func PlanQPRange(cuWidth, baseQP int, opts QPPlanOptions, rateCtrlQP int) []QPIteration {
	var qMin, qMax int

	if cuWidth >= opts.MinCuDQPSize {
		qMin = clipQP(baseQP - opts.MaxDeltaQP)
		qMax = clipQP(baseQP + opts.MaxDeltaQP)
	} else {
		qMin, qMax = baseQP, baseQP
	}

	if opts.UseRateCtrl {
		qMin, qMax = rateCtrlQP, rateCtrlQP
	}

	if opts.TQBForce {
		qMax = qMin
	}

	var out []QPIteration
	if opts.TQBEnabled {
		out = append(out, QPIteration{Lossless: true, QP: qMin})
	}
	for q := qMin; q <= qMax; q++ {
		out = append(out, QPIteration{QP: q})
	}
	return out
}

func clipQP(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQP {
		return MaxQP
	}
	return q
}
