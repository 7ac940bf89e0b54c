package nn

import (
	"github.com/born-ml/holoprop/internal/tensor"
)

// ReLU applies f(x) = max(0, x).
type ReLU struct {
	backend Backend
}

// NewReLU creates a new ReLU activation module.
func NewReLU(backend Backend) *ReLU {
	return &ReLU{backend: backend}
}

// Forward applies ReLU activation.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return r.backend.ReLU(input)
}

// Parameters returns nil (ReLU has no parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// LeakyReLU applies f(x) = x for x > 0, slope*x otherwise.
type LeakyReLU struct {
	slope   float32
	backend Backend
}

// NewLeakyReLU creates a LeakyReLU with the given negative slope.
func NewLeakyReLU(slope float32, backend Backend) *LeakyReLU {
	return &LeakyReLU{slope: slope, backend: backend}
}

// Forward applies LeakyReLU activation.
func (r *LeakyReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return r.backend.LeakyReLU(input, r.slope)
}

// Parameters returns nil.
func (r *LeakyReLU) Parameters() []*Parameter {
	return nil
}
