package cpu

import (
	"github.com/born-ml/holoprop/internal/tensor"
)

// ReLU computes max(0, x) elementwise.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.Zeros(x.Shape())
	dst := out.Data()
	for i, v := range x.Data() {
		if v > 0 {
			dst[i] = v
		}
	}
	return out
}

// LeakyReLU computes x for x > 0 and slope*x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.Tensor, slope float32) *tensor.Tensor {
	out := tensor.Zeros(x.Shape())
	dst := out.Data()
	for i, v := range x.Data() {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = slope * v
		}
	}
	return out
}
