package dispatch

import (
	"testing"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

// TestAMPParent2NxN mirrors §8 boundary scenario 4: parent partition
// 2NxN with AMP enabled admits only the horizontal AMP shapes.
func TestAMPParent2NxN(t *testing.T) {
	opts := Options{SliceType: partition.SliceP, AMPEnabled: true}
	list := Build(1, partition.MaxDepth, 32, 8, partition.Part2NxN, false, false, opts)

	var sawHor, sawVer bool
	for _, c := range list {
		switch c.Part {
		case partition.Part2NxnU, partition.Part2NxnD:
			sawHor = true
		case partition.PartnLx2N, partition.PartnRx2N:
			sawVer = true
		}
	}
	if !sawHor {
		t.Fatalf("expected horizontal AMP shapes for parent=2NxN, got %+v", list)
	}
	if sawVer {
		t.Fatalf("expected no vertical AMP shapes for parent=2NxN, got %+v", list)
	}
}

func TestAMPDisabledAtFullCTUWidth(t *testing.T) {
	opts := Options{SliceType: partition.SliceP, AMPEnabled: true}
	list := Build(0, partition.MaxDepth, 64, 8, partition.Part2Nx2N, false, false, opts)
	for _, c := range list {
		if c.Part.IsAMP() {
			t.Fatalf("AMP must be disabled at CU width 64, got candidate %+v", c)
		}
	}
}

func TestIntraSliceOnlyIntraCandidates(t *testing.T) {
	opts := Options{SliceType: partition.SliceI}
	list := Build(0, partition.MaxDepth, 64, 8, partition.PartNone, false, false, opts)
	for _, c := range list {
		if c.Pred == partition.PredInter {
			t.Fatalf("I-slice must not produce inter candidates, got %+v", c)
		}
	}
}

func TestPCMAdmittedWithinSizeRange(t *testing.T) {
	opts := Options{SliceType: partition.SliceI, PCMEnabled: true, PCMMinSize: 8, PCMMaxSize: 32}
	list := Build(2, partition.MaxDepth, 16, 8, partition.PartNone, false, false, opts)
	found := false
	for _, c := range list {
		if c.Kind == KindIPCM {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an IPCM candidate within [PCMMinSize, PCMMaxSize], got %+v", list)
	}
}

func TestPCMOmittedOutsideSizeRange(t *testing.T) {
	opts := Options{SliceType: partition.SliceI, PCMEnabled: true, PCMMinSize: 16, PCMMaxSize: 32}
	list := Build(3, partition.MaxDepth, 8, 8, partition.PartNone, false, false, opts)
	for _, c := range list {
		if c.Kind == KindIPCM {
			t.Fatalf("did not expect IPCM candidate below PCMMinSize, got %+v", list)
		}
	}
}
