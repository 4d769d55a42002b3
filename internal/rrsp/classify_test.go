package rrsp

import (
	"testing"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

func sps() partition.SPSParams {
	return partition.SPSParams{MinCUSize: 8, MaxDepth: partition.MaxDepth}
}

// TestOnlyDepth0HighQP mirrors §8 boundary scenario 3: groups A64/B64
// full, every contributor at depth 0, QP above the sufficient-condition
// threshold.
func TestOnlyDepth0HighQP(t *testing.T) {
	ref := partition.NewPicture(128, 128, partition.SliceI, sps(), 37)
	pic := partition.NewPicture(128, 128, partition.SliceP, sps(), 37)
	pic.Colocated = ref

	ctu := pic.CTUAt(1, 1)
	var u partition.MinUnit
	u.Depth = 0
	for _, dxy := range [][2]int{{-1, 0}, {0, -1}, {-1, -1}, {1, -1}} {
		if n := pic.CTUAt(1+dxy[0], 1+dxy[1]); n != nil {
			n.Grid.FillRect(0, 0, u)
		}
	}
	ref.CTUAt(1, 1).Grid.FillRect(0, 0, u)
	if n := ref.CTUAt(0, 1); n != nil {
		n.Grid.FillRect(0, 0, u)
	}
	if n := ref.CTUAt(1, 0); n != nil {
		n.Grid.FillRect(0, 0, u)
	}
	if n := ref.CTUAt(2, 1); n != nil {
		n.Grid.FillRect(0, 0, u)
	}
	if n := ref.CTUAt(1, 2); n != nil {
		n.Grid.FillRect(0, 0, u)
	}

	res := ClassifyDepth0(pic, ctu, 37, nil)
	if !res.OnlyDepth0 {
		t.Fatalf("expected OnlyDepth0=true at QP=37 with full depth-0 adoption, got %+v", res)
	}
}

func TestClassifySubAdmitsAtLeastOneDepth(t *testing.T) {
	pic := partition.NewPicture(64, 64, partition.SliceP, sps(), 26)
	ctu := pic.CTUAt(0, 0)
	guard := &GrandfatherGuard{}

	for _, pos := range []SubPosition{TopLeft, TopRight, BottomLeft, BottomRight} {
		out := ClassifySub(pic, ctu, pos, 26, guard)
		any := false
		for _, v := range out {
			if v {
				any = true
			}
		}
		if !any {
			t.Fatalf("position %v admitted no depth at all: %v", pos, out)
		}
	}
}

func TestGrandfatherGuardSingleEntry(t *testing.T) {
	g := &GrandfatherGuard{}
	if !g.enter() {
		t.Fatalf("expected first enter to succeed")
	}
	if g.enter() {
		t.Fatalf("expected second concurrent enter to fail while held")
	}
	g.release()
	if !g.enter() {
		t.Fatalf("expected enter to succeed again after release")
	}
}
