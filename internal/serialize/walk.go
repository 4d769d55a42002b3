// Package serialize implements the Serialization Walk (§4.7): once a
// CTU's quadtree decisions are final, it replays them in Z-order and
// drives the entropy coder's syntax-element methods in the order a
// decoder expects to parse them.
//
// Grounded on the teacher's writeCodingQuadtreeInterleaved recursion
// shape (video_encoder_h265.go) for the depth-first Z-order walk itself;
// the syntax-element emission order is new to this core and follows
// §4.7 directly, calling into internal/entropy's named encoders.
package serialize

import "github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"

// EntropyCoder is the subset of *entropy.Coder the walk drives.
type EntropyCoder interface {
	EncodeSplitCUFlag(depth int, split bool)
	EncodeTransquantBypassFlag(bool)
	EncodeSkipFlag(depth int, skip bool)
	EncodeMergeIdx(idx, maxCand int)
	EncodePredModeFlag(intra bool)
	EncodePartMode(cuSizeIsMin bool, amp bool, p int)
	EncodePrevIntraLumaPredFlag(inMPM bool)
	EncodeMPMIdx(idx int)
	EncodeRemIntraLumaPredMode(mode int)
	EncodeIntraChromaPredMode(mode int)
	EncodeRqtRootCbf(cbf bool)
	EncodeCuQpDeltaAbs(absVal int)
	EncodeCuQpDeltaSign(negative bool)
	EncodeChromaQpAdjFlag(present bool)
	EncodePCMFlag(pcm bool)
	EncodeEndOfSliceSegmentFlag(end bool)
}

// CoefficientCoder is the §6 "Residual encode & RD" collaborator's
// serialization half: once a CU's mode is fixed, emit its residual
// coefficients (and, for intra, the predicted direction's residual
// transform tree). Kept distinct from driver.ResidualCoder because the
// R-D search encodes a trial CU's cost, while this emits the one chosen
// CU's bits into the final bitstream.
type CoefficientCoder interface {
	EncodeCoefficients(u *partition.MinUnit) error
}

// IPCMWriter is the §6 "Entropy coder" collaborator's raw-sample half:
// flush CABAC for byte alignment, emit the raw PCM samples, then resume.
type IPCMWriter interface {
	WritePCMSamples(u *partition.MinUnit) error
}

// MergeCandCount reports how many merge candidates were available for a
// unit, needed to size merge_idx's truncated-unary code (§4.7 step 3).
type MergeCandCount interface {
	MergeCandidateCount(u *partition.MinUnit) int
}

// Walker drives the serialization walk over one picture's CTUs.
type Walker struct {
	Pic          *partition.Picture
	Entropy      EntropyCoder
	Coeffs       CoefficientCoder
	PCM          IPCMWriter
	MergeCounts  MergeCandCount
	MinCuDQPSize int

	DeltaQPEnabled     bool
	ChromaQPAdjEnabled bool
}

// dqpGroupState tracks the per-quantization-group bookkeeping §4.7 step
// 2 resets "at the appropriate CU sizes": refQP is the group's predicted
// QP that cu_qp_delta is coded relative to.
type dqpGroupState struct {
	qpCoded        bool
	chromaAdjCoded bool
	refQP          int
}

// EncodeCTU runs §4.7 for one CTU: encode(ctu, zOffset=0, d=0).
func (w *Walker) EncodeCTU(ctu *partition.CTU) error {
	dqp := dqpGroupState{refQP: w.Pic.QP}
	return w.encode(ctu, 0, 0, ctu.X, ctu.Y, &dqp)
}

// EncodeSlice runs §4.7 step 4 across every CTU of the picture in raster
// order, in addition to driving EncodeCTU for each: a terminating 0 bit
// after every CTU but the slice's last, and a terminating 1 bit after it.
func (w *Walker) EncodeSlice() error {
	for i := range w.Pic.CTUs {
		ctu := &w.Pic.CTUs[i]
		if err := w.EncodeCTU(ctu); err != nil {
			return err
		}
		last := i == len(w.Pic.CTUs)-1
		w.Entropy.EncodeEndOfSliceSegmentFlag(last)
	}
	return nil
}

func (w *Walker) encode(ctu *partition.CTU, zOffset, d, x, y int, dqp *dqpGroupState) error {
	cuWidth := partition.SizeAtDepth(d)
	inPicture := w.Pic.InBoundary(x, y, cuWidth)

	storedDepth := int(ctu.Grid.Units[zOffset].Depth)
	split := storedDepth > d || !inPicture

	if inPicture {
		w.Entropy.EncodeSplitCUFlag(d, split)
	}

	if split {
		if cuWidth == w.MinCuDQPSize {
			*dqp = dqpGroupState{refQP: w.Pic.QP}
		}
		childSize := cuWidth / 2
		for i := 0; i < 4; i++ {
			childZOffset := partition.ZOffsetOfChild(zOffset, d, i)
			childX := x + (i%2)*childSize
			childY := y + (i/2)*childSize
			if childX >= w.Pic.Width || childY >= w.Pic.Height {
				continue
			}
			if err := w.encode(ctu, childZOffset, d+1, childX, childY, dqp); err != nil {
				return err
			}
		}
		return nil
	}

	return w.encodeLeaf(ctu, zOffset, d, x, y, dqp)
}

// encodeLeaf implements §4.7 step 3 for one decided CU.
func (w *Walker) encodeLeaf(ctu *partition.CTU, zOffset, d, x, y int, dqp *dqpGroupState) error {
	u := &ctu.Grid.Units[zOffset]

	if u.TransquantBypass {
		w.Entropy.EncodeTransquantBypassFlag(true)
	}

	inter := w.Pic.Slice != partition.SliceI
	if inter {
		w.Entropy.EncodeSkipFlag(d, u.Skip)
		if u.Skip {
			maxCand := 5
			if w.MergeCounts != nil {
				maxCand = w.MergeCounts.MergeCandidateCount(u)
			}
			w.Entropy.EncodeMergeIdx(int(u.MergeIdx), maxCand)
			return nil
		}
	}

	w.Entropy.EncodePredModeFlag(u.Pred == partition.PredIntra)

	cuSizeIsMin := partition.SizeAtDepth(d) == partition.SizeAtDepth(partition.MaxDepth)
	amp := u.Part.IsAMP()
	w.Entropy.EncodePartMode(cuSizeIsMin, amp, partModeCode(u.Part))

	if u.Pred == partition.PredIntra && u.Part == partition.Part2Nx2N && u.IPCM {
		w.Entropy.EncodePCMFlag(true)
		if w.PCM != nil {
			return w.PCM.WritePCMSamples(u)
		}
		return nil
	}

	if u.Pred == partition.PredIntra {
		w.Entropy.EncodePCMFlag(false)
		w.encodeIntraPredInfo(ctu, zOffset, d, x, y)
		w.Entropy.EncodeIntraChromaPredMode(int(u.IntraChromaMode))
	} else {
		if u.Merge {
			maxCand := 5
			if w.MergeCounts != nil {
				maxCand = w.MergeCounts.MergeCandidateCount(u)
			}
			w.Entropy.EncodeMergeIdx(int(u.MergeIdx), maxCand)
		}
	}

	w.Entropy.EncodeRqtRootCbf(u.CBFLuma || u.CBFCb || u.CBFCr)
	if w.DeltaQPEnabled && !dqp.qpCoded {
		w.encodeQpDelta(u, dqp)
	}
	if w.ChromaQPAdjEnabled && !dqp.chromaAdjCoded {
		w.Entropy.EncodeChromaQpAdjFlag(false)
		dqp.chromaAdjCoded = true
	}

	if w.Coeffs != nil {
		return w.Coeffs.EncodeCoefficients(u)
	}
	return nil
}

func (w *Walker) encodeQpDelta(u *partition.MinUnit, dqp *dqpGroupState) {
	delta := int(u.QP) - dqp.refQP
	w.Entropy.EncodeCuQpDeltaAbs(abs(delta))
	if delta != 0 {
		w.Entropy.EncodeCuQpDeltaSign(delta < 0)
	}
	dqp.qpCoded = true
	dqp.refQP = int(u.QP)
}

// encodeIntraPredInfo emits prev_intra_luma_pred_flag/mpm_idx/
// rem_intra_luma_pred_mode (§4.7 step 3) for the CU at (zOffset, d, x, y).
// PartNxN carries four independently predicted luma PUs (one per minimum
// unit quadrant); every other intra partition shape carries one.
func (w *Walker) encodeIntraPredInfo(ctu *partition.CTU, zOffset, d, x, y int) {
	if ctu.Grid.Units[zOffset].Part != partition.PartNxN {
		w.encodeIntraLumaPU(ctu, zOffset, x, y)
		return
	}
	half := partition.SizeAtDepth(d) / 2
	for i := 0; i < 4; i++ {
		puZOffset := partition.ZOffsetOfChild(zOffset, d, i)
		puX := x + (i%2)*half
		puY := y + (i/2)*half
		w.encodeIntraLumaPU(ctu, puZOffset, puX, puY)
	}
}

// encodeIntraLumaPU emits the MPM-coded luma direction for one PU, using
// the decided grid to look up its left/above neighbors' modes (clause
// 8.4.2's candIntraPredModeA/B derivation).
func (w *Walker) encodeIntraLumaPU(ctu *partition.CTU, zOffset, x, y int) {
	mode := ctu.Grid.Units[zOffset].IntraLumaMode
	candA, availA := w.intraModeAt(x-partition.MinUnitSize, y)
	candB, availB := w.intraModeAt(x, y-partition.MinUnitSize)
	mpm := deriveMPM(candA, availA, candB, availB)

	for i, m := range mpm {
		if m == mode {
			w.Entropy.EncodePrevIntraLumaPredFlag(true)
			w.Entropy.EncodeMPMIdx(i)
			return
		}
	}

	w.Entropy.EncodePrevIntraLumaPredFlag(false)
	sorted := mpm
	if sorted[0] > sorted[1] {
		sorted[0], sorted[1] = sorted[1], sorted[0]
	}
	if sorted[1] > sorted[2] {
		sorted[1], sorted[2] = sorted[2], sorted[1]
	}
	if sorted[0] > sorted[1] {
		sorted[0], sorted[1] = sorted[1], sorted[0]
	}
	rem := int(mode)
	for _, m := range sorted {
		if rem > int(m) {
			rem--
		}
	}
	w.Entropy.EncodeRemIntraLumaPredMode(rem)
}

// intraModeAt returns the intra luma mode decided for the minimum unit
// covering picture position (x, y), and whether that position holds an
// available intra-coded neighbor at all (in picture, already decided,
// and itself intra).
func (w *Walker) intraModeAt(x, y int) (uint8, bool) {
	if x < 0 || y < 0 || x >= w.Pic.Width || y >= w.Pic.Height {
		return modeDC, false
	}
	ctu := w.Pic.CTUAt(x/partition.CTUSize, y/partition.CTUSize)
	lx, ly := x-ctu.X, y-ctu.Y
	raster := (ly/partition.MinUnitSize)*partition.UnitsPerSide + lx/partition.MinUnitSize
	unit := &ctu.Grid.Units[partition.RasterToZscan(raster)]
	if unit.Pred != partition.PredIntra {
		return modeDC, false
	}
	return unit.IntraLumaMode, true
}

const (
	modePlanar   = 0
	modeDC       = 1
	modeVertical = 26
)

// deriveMPM builds the three-entry most-probable-mode candidate list of
// clause 8.4.2 from the left/above neighbors' luma modes.
func deriveMPM(candA uint8, availA bool, candB uint8, availB bool) [3]uint8 {
	a, b := uint8(modeDC), uint8(modeDC)
	if availA {
		a = candA
	}
	if availB {
		b = candB
	}
	if a == b {
		if a < 2 {
			return [3]uint8{modePlanar, modeDC, modeVertical}
		}
		return [3]uint8{a, uint8(2 + (int(a)+29)%32), uint8(2 + (int(a)-2+1)%32)}
	}
	list := [3]uint8{a, b, modePlanar}
	if a != modePlanar && b != modePlanar {
		list[2] = modePlanar
	} else if a != modeDC && b != modeDC {
		list[2] = modeDC
	} else {
		list[2] = modeVertical
	}
	return list
}

func partModeCode(p partition.PartSize) int {
	switch p {
	case partition.Part2Nx2N:
		return 0
	case partition.Part2NxN:
		return 1
	case partition.PartNx2N:
		return 2
	case partition.PartNxN:
		return 3
	case partition.Part2NxnU, partition.Part2NxnD:
		return 4
	case partition.PartnLx2N, partition.PartnRx2N:
		return 5
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
