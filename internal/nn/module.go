// Package nn implements the inference-time network modules used by holoprop:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named weight tensors, loadable from checkpoints
//   - Layers: Conv2D, ConvTranspose2D, InstanceNorm2D, BatchNorm2D, ReLU, LeakyReLU
//   - Sequential: Container for stacking layers
//   - UNet: Encoder-decoder image->phase network
//   - ResNet: Residual-correction network
//   - Net: Adapter exposing a Module through an error-returning Forward
//
// Modules only run forward passes; weights come from initialization or
// from a checkpoint via LoadStateDict.
package nn

import (
	"github.com/born-ml/holoprop/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewConv2D(3, 24, 3, 1, 1, false, backend, rng),
//	    nn.NewBatchNorm2D(24, backend),
//	    nn.NewReLU(backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Layers panic on a channel mismatch; Net validates before calling in.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all parameters of this module, named relative to it.
	// Returns nil for modules without parameters (e.g., activations).
	Parameters() []*Parameter
}

// Backend is the set of kernels the layers need.
// *cpu.CPUBackend implements it.
type Backend interface {
	Conv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor
	ConvTranspose2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor
	AddChannelBias(x, bias *tensor.Tensor) *tensor.Tensor
	ReLU(x *tensor.Tensor) *tensor.Tensor
	LeakyReLU(x *tensor.Tensor, slope float32) *tensor.Tensor
	InstanceNorm2D(x, weight, bias *tensor.Tensor, eps float64) *tensor.Tensor
	BatchNorm2D(x, runningMean, runningVar, weight, bias *tensor.Tensor, eps float64) *tensor.Tensor
}
