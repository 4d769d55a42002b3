package entropy

import "testing"

func TestSaveLoadContextRoundTrip(t *testing.T) {
	c := NewCoder(26)
	snap := c.SaveContext()

	c.EncodeBin(CtxSplitCUFlag, 1)
	c.EncodeBin(CtxSplitCUFlag, 0)
	c.EncodeBin(CtxSkipFlag, 1)

	if c.SaveContext() == snap {
		t.Fatalf("context did not change after encoding bins")
	}

	c.LoadContext(snap)
	if c.SaveContext() != snap {
		t.Fatalf("LoadContext did not restore the saved snapshot")
	}
}

func TestLoadContextLeavesEngineStateAlone(t *testing.T) {
	c := NewCoder(26)
	c.EncodeBypass(1)
	c.EncodeBypass(0)
	binsBefore := c.BinsWritten()

	snap := NewContext(30)
	c.LoadContext(snap)

	if c.BinsWritten() != binsBefore {
		t.Fatalf("LoadContext must not touch engine-level counters, got bins=%d want=%d", c.BinsWritten(), binsBefore)
	}
}

func TestEncodeProducesDeterministicOutput(t *testing.T) {
	run := func() []byte {
		c := NewCoder(26)
		c.EncodeSplitCUFlag(0, true)
		c.EncodeSplitCUFlag(1, false)
		c.EncodeSkipFlag(1, false)
		c.EncodePredModeFlag(true)
		c.EncodePartMode(false, false, 0)
		c.EncodePrevIntraLumaPredFlag(true)
		c.EncodeMPMIdx(1)
		c.EncodeIntraChromaPredMode(4)
		c.EncodeEndOfSliceSegmentFlag(true)
		return c.Finish()
	}

	out1 := run()
	out2 := run()

	if len(out1) == 0 {
		t.Fatalf("expected non-empty output")
	}
	if len(out1) != len(out2) {
		t.Fatalf("non-deterministic output length: %d vs %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("non-deterministic output at byte %d: %x vs %x", i, out1[i], out2[i])
		}
	}
}

func TestMergeIdxTruncatedUnary(t *testing.T) {
	for _, tc := range []struct {
		idx, maxCand int
	}{
		{0, 1}, {0, 4}, {1, 4}, {2, 4}, {3, 4},
	} {
		c := NewCoder(26)
		binsBefore := c.BinsWritten()
		c.EncodeMergeIdx(tc.idx, tc.maxCand)
		if tc.maxCand <= 1 && c.BinsWritten() != binsBefore {
			t.Fatalf("single-candidate merge_idx must encode zero bins")
		}
	}
}

func TestFlushForPCMThenResume(t *testing.T) {
	c := NewCoder(26)
	c.EncodeSplitCUFlag(0, false)
	mid := c.FlushForPCM()
	if len(mid) == 0 {
		t.Fatalf("expected FlushForPCM to emit byte-aligned bytes")
	}
	c.ResumeAfterPCM()
	c.EncodeBypass(1)
	out := c.Finish()
	if len(out) == 0 {
		t.Fatalf("expected coder to keep producing output after PCM resume")
	}
}
