package partition

import "math"

// MaxCost is the sentinel "uninitialized tentative" cost of §3 invariant 2.
const MaxCost = math.MaxFloat64

// CUNode is a tentative or best decision at a given (depth, Z-scan offset)
// within a CTU (§3 "CU node (working)").
type CUNode struct {
	Depth   int
	ZOffset int
	X, Y    int // pixel origin within the picture

	Unit MinUnit

	Bits       float64
	Bins       int
	Distortion float64
	Cost       float64
}

// Reset clears n to the uninitialized-tentative state.
func (n *CUNode) Reset(depth, zOffset, x, y int) {
	*n = CUNode{Depth: depth, ZOffset: zOffset, X: x, Y: y, Cost: MaxCost}
}

// Valid reports whether n holds a finite, assigned decision (§8 invariant 2).
func (n *CUNode) Valid() bool {
	return n.Cost < MaxCost && n.Unit.Part != PartNone
}
