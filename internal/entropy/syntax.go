package entropy

// EncodeSplitCUFlag encodes split_cu_flag, context-selected by depth
// (§4.7 step 2).
func (c *Coder) EncodeSplitCUFlag(depth int, split bool) {
	ctx := CtxSplitCUFlag + depth
	if depth >= 2 {
		ctx = CtxSplitCUFlag + 2
	}
	c.EncodeBin(ctx, boolToBin(split))
}

// EncodeSkipFlag encodes cu_skip_flag (§4.7 step 3, non-intra slices).
func (c *Coder) EncodeSkipFlag(depth int, skip bool) {
	ctx := CtxSkipFlag + depth
	if depth >= 2 {
		ctx = CtxSkipFlag + 2
	}
	c.EncodeBin(ctx, boolToBin(skip))
}

// EncodeTransquantBypassFlag encodes cu_transquant_bypass_flag (§4.6 TQB).
func (c *Coder) EncodeTransquantBypassFlag(tqb bool) {
	c.EncodeBin(CtxTransquantBypass, boolToBin(tqb))
}

// EncodePredModeFlag encodes pred_mode_flag (1 = intra). Not present for
// I-slices (inferred MODE_INTRA).
func (c *Coder) EncodePredModeFlag(intra bool) {
	c.EncodeBin(CtxPredModeFlag, boolToBin(intra))
}

// EncodePartMode encodes part_mode using a truncated-unary-with-context
// prefix (HEVC clause 9.3.3.7), enough to distinguish the five
// non-AMP/AMP-indistinguishable shapes this core dispatches (§4.4).
func (c *Coder) EncodePartMode(cuSizeIsMin bool, amp bool, p int) {
	// p: 0=2Nx2N 1=2NxN 2=Nx2N 3=NxN 4=AMP-horizontal 5=AMP-vertical
	switch {
	case p == 0:
		c.EncodeBin(CtxPartMode+0, 1)
		return
	case p == 3 && cuSizeIsMin:
		c.EncodeBin(CtxPartMode+0, 0)
		c.EncodeBin(CtxPartMode+1, 0)
		c.EncodeBin(CtxPartMode+2, 0)
		return
	}
	c.EncodeBin(CtxPartMode+0, 0)
	if p == 1 || p == 4 {
		c.EncodeBin(CtxPartMode+1, 1)
	} else {
		c.EncodeBin(CtxPartMode+1, 0)
	}
	if amp {
		if p == 4 {
			c.EncodeBypass(1)
		} else if p == 5 {
			c.EncodeBypass(0)
		}
	}
}

// EncodeMergeFlag encodes merge_flag for inter 2Nx2N/skip candidates.
func (c *Coder) EncodeMergeFlag(merge bool) {
	c.EncodeBin(CtxMergeFlag, boolToBin(merge))
}

// EncodeMergeIdx encodes merge_idx as a context-then-bypass truncated
// unary, up to maxCand-1.
func (c *Coder) EncodeMergeIdx(idx, maxCand int) {
	if maxCand <= 1 {
		return
	}
	if idx == 0 {
		c.EncodeBin(CtxMergeIdx, 0)
		return
	}
	c.EncodeBin(CtxMergeIdx, 1)
	for i := 1; i < idx; i++ {
		c.EncodeBypass(1)
	}
	if idx < maxCand-1 {
		c.EncodeBypass(0)
	}
}

// EncodePrevIntraLumaPredFlag encodes prev_intra_luma_pred_flag.
func (c *Coder) EncodePrevIntraLumaPredFlag(inMPM bool) {
	c.EncodeBin(CtxPrevIntraLuma, boolToBin(inMPM))
}

// EncodeMPMIdx encodes mpm_idx, a truncated unary with max value 2,
// bypass coded.
func (c *Coder) EncodeMPMIdx(idx int) {
	if idx == 0 {
		c.EncodeBypass(0)
		return
	}
	c.EncodeBypass(1)
	if idx == 1 {
		c.EncodeBypass(0)
	} else {
		c.EncodeBypass(1)
	}
}

// EncodeRemIntraLumaPredMode encodes rem_intra_luma_pred_mode, a 5-bit
// fixed-length bypass-coded field.
func (c *Coder) EncodeRemIntraLumaPredMode(mode int) {
	c.EncodeBypassBits(uint32(mode), 5)
}

// EncodeIntraChromaPredMode encodes intra_chroma_pred_mode (§4.7).
// mode 4 means DM_CHROMA (derived from luma).
func (c *Coder) EncodeIntraChromaPredMode(mode int) {
	if mode == 4 {
		c.EncodeBin(CtxIntraChroma, 0)
		return
	}
	c.EncodeBin(CtxIntraChroma, 1)
	c.EncodeBypassBits(uint32(mode), 2)
}

// EncodeRqtRootCbf encodes rqt_root_cbf.
func (c *Coder) EncodeRqtRootCbf(cbf bool) {
	c.EncodeBin(CtxRqtRootCbf, boolToBin(cbf))
}

// EncodeCuQpDeltaAbs encodes the absolute value of cu_qp_delta as a
// context-prefixed truncated-unary-then-bypass field (clause 9.3.3.10,
// simplified to the magnitudes MaxDeltaQP bounds).
func (c *Coder) EncodeCuQpDeltaAbs(absVal int) {
	if absVal == 0 {
		c.EncodeBin(CtxCuQpDeltaAbs+0, 0)
		return
	}
	c.EncodeBin(CtxCuQpDeltaAbs+0, 1)
	for i := 1; i < absVal && i < 5; i++ {
		c.EncodeBin(CtxCuQpDeltaAbs+1, 1)
	}
	if absVal < 5 {
		c.EncodeBin(CtxCuQpDeltaAbs+1, 0)
	} else {
		c.EncodeBypassBits(uint32(absVal-5), 8)
	}
}

// EncodeCuQpDeltaSign encodes the sign of a nonzero cu_qp_delta, bypass
// coded.
func (c *Coder) EncodeCuQpDeltaSign(negative bool) {
	c.EncodeBypass(boolToBin(negative))
}

// EncodeChromaQpAdjFlag encodes cu_chroma_qp_offset_flag.
func (c *Coder) EncodeChromaQpAdjFlag(present bool) {
	c.EncodeBin(CtxChromaQpAdjFlag, boolToBin(present))
}

// EncodePCMFlag encodes pcm_flag. This is a terminating bin, not a
// context-coded one (HM: m_pcBinIf->encodeBinTrm(uiIPCM)).
func (c *Coder) EncodePCMFlag(pcm bool) {
	c.EncodeTerminate(boolToBin(pcm))
}

// EncodeEndOfSliceSegmentFlag encodes end_of_slice_segment_flag, a
// terminating bin.
func (c *Coder) EncodeEndOfSliceSegmentFlag(end bool) {
	c.EncodeTerminate(boolToBin(end))
}

func boolToBin(b bool) int {
	if b {
		return 1
	}
	return 0
}
