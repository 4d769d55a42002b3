package sbd

import (
	"testing"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

func sps() partition.SPSParams {
	return partition.SPSParams{MinCUSize: 8, MaxDepth: partition.MaxDepth}
}

// TestAllNeighborsMissingColocatedOnly mirrors §8 boundary scenario 2:
// inter slice at the picture corner with Left/Above/AboveLeft missing
// and only the colocated CTU contributing a single depth.
func TestAllNeighborsMissingColocatedOnly(t *testing.T) {
	ref := partition.NewPicture(64, 64, partition.SliceI, sps(), 26)
	pic := partition.NewPicture(64, 64, partition.SliceP, sps(), 26)
	pic.Colocated = ref

	var u partition.MinUnit
	u.Depth = 0
	ref.CTUAt(0, 0).Grid.FillRect(0, 0, u)

	ctu := pic.CTUAt(0, 0)
	res := Classify(pic, ctu, 8)

	if res.Counters.SimLevel != 1 {
		t.Fatalf("expected simLevel=1 (High), got %d", res.Counters.SimLevel)
	}
	if !res.RangeDepths[0] {
		t.Fatalf("expected depth 0 admitted, got %v", res.RangeDepths)
	}
}

func TestNoContributingNeighborsAdmitsAll(t *testing.T) {
	pic := partition.NewPicture(64, 64, partition.SliceP, sps(), 26)
	ctu := pic.CTUAt(0, 0)

	res := Classify(pic, ctu, 8)
	if res.Counters.SimLevel != 0 {
		t.Fatalf("expected simLevel=0 with no neighbors, got %d", res.Counters.SimLevel)
	}
	for d := 0; d <= partition.MaxDepth; d++ {
		if !res.RangeDepths[d] {
			t.Fatalf("expected depth %d admitted when no neighbor contributes, got %v", d, res.RangeDepths)
		}
	}
}

func TestMediumLowDropsUniqueDepth(t *testing.T) {
	alphaCounts := [partition.MaxDepth + 1]int{0: 3, 1: 1, 2: 0, 3: 0}
	alphaSet := adoptedSet(alphaCounts)
	out := classifyMediumLow(alphaCounts, 3, alphaSet)
	if out[1] {
		t.Fatalf("expected the uniquely-adopted depth 1 to be dropped, got %v", out)
	}
	if !out[0] {
		t.Fatalf("expected the universally-adopted depth 0 to remain admitted, got %v", out)
	}
}

func TestLowDropsLowestCountDepth(t *testing.T) {
	alphaCounts := [partition.MaxDepth + 1]int{0: 5, 1: 3, 2: 1, 3: 4}
	var colocated [partition.MaxDepth + 1]bool
	out := classifyLow(alphaCounts, colocated, partition.MaxDepth)
	if out[2] {
		t.Fatalf("expected lowest-count depth 2 to be dropped, got %v", out)
	}
	for _, d := range []int{0, 1, 3} {
		if !out[d] {
			t.Fatalf("expected depth %d to remain admitted, got %v", d, out)
		}
	}
}
