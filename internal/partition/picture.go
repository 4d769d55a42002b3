package partition

// SliceType enumerates the three HEVC slice types of §3 "Picture".
type SliceType uint8

const (
	SliceI SliceType = iota
	SliceP
	SliceB
)

// SPSParams carries the subset of sequence/picture parameter set fields
// the CU analysis core reads (§3 "Picture").
type SPSParams struct {
	MinCUSize          int // luma samples, e.g. 8
	MaxDepth           int // quadtree depth at MinCUSize, e.g. 3
	AddCUDepth         int // TEncCu.h's getMaxCuDQPDepth()-style floor on recursion (SPEC_FULL)
	PCMMinSize         int
	PCMMaxSize         int
	PCMEnabled         bool
	DeltaQPEnabled     bool
	ChromaQPAdjEnabled bool
	AMPEnabled         bool
	TQBEnabled         bool
	MinCuDQPSize       int
}

// CTU is the top node of a per-CTU quadtree (§3 "CTU (64x64)").
type CTU struct {
	RasterAddr int
	CTUX, CTUY int // CTU-grid coordinates
	X, Y       int // pixel origin
	Grid       Grid
}

// Picture is a grid of CTUs in raster order (§3 "Picture").
type Picture struct {
	Width, Height   int // luma samples
	CTUsWide, CTUsTall int
	Slice           SliceType
	SPS             SPSParams
	QP              int

	CTUs []CTU

	// Colocated is the temporal reference picture consulted by the
	// Neighborhood Probe's Colocated position; nil for the first picture
	// or for intra-only configurations.
	Colocated *Picture
}

// NewPicture allocates a picture's CTU grid in raster order.
func NewPicture(width, height int, slice SliceType, sps SPSParams, qp int) *Picture {
	ctusWide := (width + CTUSize - 1) / CTUSize
	ctusTall := (height + CTUSize - 1) / CTUSize
	p := &Picture{
		Width: width, Height: height,
		CTUsWide: ctusWide, CTUsTall: ctusTall,
		Slice: slice, SPS: sps, QP: qp,
		CTUs: make([]CTU, ctusWide*ctusTall),
	}
	for cy := 0; cy < ctusTall; cy++ {
		for cx := 0; cx < ctusWide; cx++ {
			addr := cy*ctusWide + cx
			p.CTUs[addr] = CTU{
				RasterAddr: addr,
				CTUX:       cx, CTUY: cy,
				X: cx * CTUSize, Y: cy * CTUSize,
			}
		}
	}
	return p
}

// CTUAt returns the CTU at grid coordinates (cx, cy), or nil if out of
// range (§4.1 "A missing neighbor (out of picture / out of slice) yields
// an all-false array").
func (p *Picture) CTUAt(cx, cy int) *CTU {
	if p == nil || cx < 0 || cy < 0 || cx >= p.CTUsWide || cy >= p.CTUsTall {
		return nil
	}
	return &p.CTUs[cy*p.CTUsWide+cx]
}

// InBoundary reports whether a CU of size `size` at pixel origin (x, y)
// lies fully inside the picture (§4.5 step 3).
func (p *Picture) InBoundary(x, y, size int) bool {
	return x+size <= p.Width && y+size <= p.Height
}
