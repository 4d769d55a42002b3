package neighbor

import (
	"testing"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

func sps() partition.SPSParams {
	return partition.SPSParams{MinCUSize: 8, MaxDepth: partition.MaxDepth}
}

func TestProbeMissingNeighborsAllFalse(t *testing.T) {
	pic := partition.NewPicture(64, 64, partition.SliceI, sps(), 26)
	ctu := pic.CTUAt(0, 0)

	res := Probe(pic, ctu, 8)
	for p := Position(0); p < numPositions; p++ {
		if res.At(p).Any() {
			t.Fatalf("position %d expected all-false for a single-CTU picture, got %v", p, res.At(p))
		}
	}
}

func TestProbeSamplesAdoptedDepth(t *testing.T) {
	pic := partition.NewPicture(128, 128, partition.SliceP, sps(), 26)
	ctu := pic.CTUAt(1, 1)
	left := pic.CTUAt(0, 1)

	var u partition.MinUnit
	u.Depth = 2
	left.Grid.FillRect(0, 0, u)

	res := Probe(pic, ctu, 64)
	if !res.At(Left).Any() {
		t.Fatalf("expected Left neighbor adoption to be visible at R=64")
	}
	if !res.At(Left)[2] {
		t.Fatalf("expected depth 2 adopted by Left neighbor, got %v", res.At(Left))
	}
}

func TestStripUnitsMonotonicInR(t *testing.T) {
	radii := []int{8, 16, 32, 64}
	positions := []Position{Left, Above, Right, Bottom, AboveRight}
	for _, p := range positions {
		prevSet := map[[2]int]bool{}
		for _, r := range radii {
			cur := stripUnits(p, r)
			curSet := map[[2]int]bool{}
			for _, rc := range cur {
				curSet[rc] = true
			}
			for k := range prevSet {
				if !curSet[k] {
					t.Fatalf("position %v: unit %v present at smaller R but missing at R=%d", p, k, r)
				}
			}
			prevSet = curSet
		}
	}
}

func TestColocatedIgnoresR(t *testing.T) {
	ref := partition.NewPicture(64, 64, partition.SliceI, sps(), 26)
	pic := partition.NewPicture(64, 64, partition.SliceP, sps(), 26)
	pic.Colocated = ref
	ctu := pic.CTUAt(0, 0)

	var u partition.MinUnit
	u.Depth = 3
	ref.CTUAt(0, 0).Grid.FillRect(0, 0, u)

	for _, r := range []int{8, 16, 32, 64} {
		res := Probe(pic, ctu, r)
		if !res.At(Colocated)[3] {
			t.Fatalf("colocated probe at R=%d should always see full-CTU adoption", r)
		}
	}
}

func TestGrandColocatedMissingWithoutChain(t *testing.T) {
	pic := partition.NewPicture(64, 64, partition.SliceP, sps(), 26)
	ctu := pic.CTUAt(0, 0)
	if g := GrandColocated(pic, ctu); g != nil {
		t.Fatalf("expected nil grandcolocated without a colocated chain")
	}
}
