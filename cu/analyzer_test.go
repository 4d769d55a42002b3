package cu

import (
	"testing"

	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/entropy"
	"github.com/NOT-REAL-GAMES/hevc-cu-core/internal/partition"
)

type fakePrediction struct{}

func (fakePrediction) Search(node *partition.CUNode, buffers *partition.DepthBuffers) error {
	return nil
}

type fakeResidual struct{}

func (fakeResidual) Encode(node *partition.CUNode, buffers *partition.DepthBuffers) error {
	size := partition.SizeAtDepth(node.Depth)
	node.Bits = float64(size * size)
	node.Distortion = float64(size * size)
	node.Unit.CBFLuma = true
	return nil
}

type fakeCost struct{}

func (fakeCost) Combine(bits, distortion, lambda float64, lossless bool) float64 {
	return distortion + bits*lambda
}

func sps() SPSParams {
	return SPSParams{MinCUSize: 8, MaxDepth: partition.MaxDepth}
}

func TestNewAnalyzerRejectsBadRadius(t *testing.T) {
	_, err := NewAnalyzer(sps(), Options{UseSBD: true, R: 17}, Services{})
	if err == nil {
		t.Fatalf("expected a ConfigError for an unsupported radius")
	}
	var cfgErr *ConfigError
	if ce, ok := err.(*ConfigError); ok {
		cfgErr = ce
	}
	if cfgErr == nil || cfgErr.Code != ExitBadRadius {
		t.Fatalf("expected ExitBadRadius, got %v", err)
	}
}

func TestNewAnalyzerRejectsInconsistentPCMRange(t *testing.T) {
	_, err := NewAnalyzer(sps(), Options{PCMEnabled: true, PCMMinSize: 32, PCMMaxSize: 16}, Services{})
	if err == nil {
		t.Fatalf("expected a ConfigError for PCMMinSize > PCMMaxSize")
	}
}

func TestNewAnalyzerAcceptsValidOptions(t *testing.T) {
	_, err := NewAnalyzer(sps(), Options{UseSBD: true, R: 16, MaxDeltaQP: 2}, Services{})
	if err != nil {
		t.Fatalf("unexpected error from valid options: %v", err)
	}
}

func TestCompressAndEncodeCTURoundTrip(t *testing.T) {
	pic := NewPicture(64, 64, SliceI, sps(), 32)
	a, err := NewAnalyzer(sps(), Options{MinCuDQPSize: 8}, Services{
		Prediction: fakePrediction{},
		Residual:   fakeResidual{},
		Cost:       fakeCost{},
		Entropy:    entropy.NewCoder(pic.QP),
	})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	ctu := pic.CTUAt(0, 0)
	if err := a.CompressCTU(pic, ctu, 0.1); err != nil {
		t.Fatalf("CompressCTU: %v", err)
	}
	for i, u := range ctu.Grid.Units {
		if u.Part == partition.PartNone {
			t.Fatalf("minimum unit %d left without a decision", i)
		}
	}

	if err := a.EncodeCTU(pic, ctu); err != nil {
		t.Fatalf("EncodeCTU: %v", err)
	}
}
