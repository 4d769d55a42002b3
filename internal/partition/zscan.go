// Package partition holds the per-CTU minimum-unit grid, the Z-scan
// addressing tables, and the working CU-node and sample-buffer types that
// the recursive R-D driver mutates at every depth.
package partition

// MaxDepth is the deepest quadtree level this core supports: 64x64 at
// depth 0 down to 8x8 at depth 3.
const MaxDepth = 3

// CTUSize is the luma width/height of a coding tree unit in samples.
const CTUSize = 64

// MinUnitSize is the luma width/height of one minimum unit (4x4 samples).
const MinUnitSize = 4

// UnitsPerSide is the number of minimum units along one side of a CTU.
const UnitsPerSide = CTUSize / MinUnitSize // 16

// NumMinUnits is the number of minimum units covering one CTU.
const NumMinUnits = UnitsPerSide * UnitsPerSide // 256

// zscanToRaster and rasterToZscan are computed once at package init and
// never mutated afterward (§5 "Global tables ... read-only thereafter").
var (
	zscanToRaster [NumMinUnits]uint16
	rasterToZscan [NumMinUnits]uint16
)

func init() {
	bitsPerAxis := 0
	for 1<<bitsPerAxis < UnitsPerSide {
		bitsPerAxis++
	}
	for z := 0; z < NumMinUnits; z++ {
		x, y := 0, 0
		for bit := 0; bit < bitsPerAxis; bit++ {
			x |= ((z >> (2 * bit)) & 1) << bit
			y |= ((z >> (2*bit + 1)) & 1) << bit
		}
		raster := y*UnitsPerSide + x
		zscanToRaster[z] = uint16(raster)
		rasterToZscan[raster] = uint16(z)
	}
}

// ZscanToRaster converts a Z-scan minimum-unit address to its raster
// address within a CTU.
func ZscanToRaster(z int) int { return int(zscanToRaster[z]) }

// RasterToZscan converts a raster minimum-unit address to its Z-scan
// address within a CTU.
func RasterToZscan(raster int) int { return int(rasterToZscan[raster]) }

// UnitsAtDepth returns the minimum-unit side length of a CU at depth d.
func UnitsAtDepth(d int) int {
	return UnitsPerSide >> uint(d)
}

// SizeAtDepth returns the luma sample side length of a CU at depth d.
func SizeAtDepth(d int) int {
	return CTUSize >> uint(d)
}

// ZOffsetOfChild returns the Z-scan minimum-unit offset of child i
// (0=top-left, 1=top-right, 2=bottom-left, 3=bottom-right) of a node at
// depth d whose own Z-scan offset is parentOffset.
func ZOffsetOfChild(parentOffset, d, i int) int {
	unitsChild := UnitsAtDepth(d + 1)
	return parentOffset + i*unitsChild*unitsChild
}
