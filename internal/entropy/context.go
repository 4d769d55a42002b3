package entropy

// Context is a value-typed snapshot of every CABAC probability state
// (§3 "Entropy contexts ... Snapshots are cheap value-typed copies").
// Copying a Context by value is the whole save/restore operation; there
// is no pointer aliasing to worry about.
type Context struct {
	states [NumContexts]uint8 // state<<1 | mps
}

// initValue is HM's context-init table value (HEVC spec Table 9-5 family)
// for the subset of syntax elements this core models. Index matches the
// Ctx* constants; split_cu_flag and cu_skip_flag carry a separate seed
// for each of their context indices.
var initValue = [NumContexts]uint8{
	CtxSplitCUFlag + 0: 139,
	CtxSplitCUFlag + 1: 141,
	CtxSplitCUFlag + 2: 157,
	CtxSkipFlag + 0:    197,
	CtxSkipFlag + 1:    185,
	CtxSkipFlag + 2:    201,
	CtxPredModeFlag:    149,
	CtxPartMode + 0:    184,
	CtxPartMode + 1:    154,
	CtxPartMode + 2:    154,
	CtxPartMode + 3:    154,
	CtxPrevIntraLuma:   184,
	CtxIntraChroma:     63,
	CtxRqtRootCbf:      79,
	CtxMergeFlag:       154,
	CtxMergeIdx:        154,
	CtxTransquantBypass: 154,
	CtxCuQpDeltaAbs + 0: 154,
	CtxCuQpDeltaAbs + 1: 154,
	CtxChromaQpAdjFlag:  154,
}

// NewContext derives an initial context set for the given slice QP,
// following HM's preCtxState formula (cabac_hevc.go initContexts):
//
//	preCtxState = Clip3(1, 126, ((initValue>>4)*5 - 45 + sliceQP)>>1)
//	state = mps==1 ? preCtxState-1 : 126-preCtxState
func NewContext(sliceQP int) Context {
	var c Context
	for i := 0; i < NumContexts; i++ {
		iv := int(initValue[i])
		slope := (iv >> 4) * 5 - 45
		pre := (slope + sliceQP) >> 1
		if pre < 1 {
			pre = 1
		} else if pre > 126 {
			pre = 126
		}
		mps := uint8(0)
		if pre >= 64 {
			mps = 1
		}
		var stateVal int
		if mps == 1 {
			stateVal = pre - 1
		} else {
			stateVal = 126 - pre
		}
		// Fold into the 63-entry LPS-range table domain; HM's real
		// derivation keeps this within range by construction, but the
		// reduced context set here uses a coarser initValue table, so
		// clamp defensively.
		if stateVal < 0 {
			stateVal = 0
		} else if stateVal > 62 {
			stateVal = 62
		}
		c.states[i] = (uint8(stateVal) << 1) | mps
	}
	return c
}
