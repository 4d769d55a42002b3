package partition

import "testing"

func TestZscanRasterRoundTrip(t *testing.T) {
	for z := 0; z < NumMinUnits; z++ {
		r := ZscanToRaster(z)
		if r < 0 || r >= NumMinUnits {
			t.Fatalf("ZscanToRaster(%d) = %d out of range", z, r)
		}
		if RasterToZscan(r) != z {
			t.Fatalf("round trip broken: z=%d -> raster=%d -> z=%d", z, r, RasterToZscan(r))
		}
	}
}

func TestZscanRasterIsBijection(t *testing.T) {
	seen := make(map[int]bool, NumMinUnits)
	for z := 0; z < NumMinUnits; z++ {
		r := ZscanToRaster(z)
		if seen[r] {
			t.Fatalf("raster address %d produced by more than one z-scan index", r)
		}
		seen[r] = true
	}
	if len(seen) != NumMinUnits {
		t.Fatalf("expected %d distinct raster addresses, got %d", NumMinUnits, len(seen))
	}
}

func TestUnitsAtDepthAndSizeAtDepth(t *testing.T) {
	cases := []struct {
		depth, units, size int
	}{
		{0, 16, 64},
		{1, 8, 32},
		{2, 4, 16},
		{3, 2, 8},
	}
	for _, c := range cases {
		if got := UnitsAtDepth(c.depth); got != c.units {
			t.Errorf("UnitsAtDepth(%d) = %d, want %d", c.depth, got, c.units)
		}
		if got := SizeAtDepth(c.depth); got != c.size {
			t.Errorf("SizeAtDepth(%d) = %d, want %d", c.depth, got, c.size)
		}
	}
}

func TestZOffsetOfChildCoversQuadrant(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		off := ZOffsetOfChild(0, 0, i)
		if seen[off] {
			t.Fatalf("child %d collides with a previous child's z-offset %d", i, off)
		}
		seen[off] = true
		if off < 0 || off >= NumMinUnits {
			t.Fatalf("child %d z-offset %d out of range", i, off)
		}
	}
}
