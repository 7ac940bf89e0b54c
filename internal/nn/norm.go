package nn

import (
	"math/rand"

	"github.com/born-ml/holoprop/internal/tensor"
)

// normEps matches the epsilon of the common framework defaults.
const normEps = 1e-5

// NormKind selects the normalization layer used inside a network.
type NormKind string

// Supported normalization kinds.
const (
	NormInstance NormKind = "instance"
	NormBatch    NormKind = "batch"
	NormNone     NormKind = "none"
)

// newNorm builds the normalization layer for kind, or nil for NormNone.
func newNorm(kind NormKind, channels int, backend Backend, rng *rand.Rand) Module {
	switch kind {
	case NormInstance:
		return NewInstanceNorm2D(backend)
	case NormBatch:
		return NewBatchNorm2DInit(channels, backend, rng)
	default:
		return nil
	}
}

// InstanceNorm2D normalizes each (batch, channel) plane independently.
// It has no affine parameters.
type InstanceNorm2D struct {
	backend Backend
}

// NewInstanceNorm2D creates an instance normalization layer.
func NewInstanceNorm2D(backend Backend) *InstanceNorm2D {
	return &InstanceNorm2D{backend: backend}
}

// Forward normalizes input per plane.
func (n *InstanceNorm2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	return n.backend.InstanceNorm2D(input, nil, nil, normEps)
}

// Parameters returns nil.
func (n *InstanceNorm2D) Parameters() []*Parameter {
	return nil
}

// BatchNorm2D applies batch normalization with stored running statistics.
//
// Parameters: weight, bias, running_mean, running_var (all [channels]).
type BatchNorm2D struct {
	weight      *Parameter
	bias        *Parameter
	runningMean *Parameter
	runningVar  *Parameter

	backend Backend
}

// NewBatchNorm2D creates a batch normalization layer with identity statistics
// (weight 1, bias 0, mean 0, variance 1).
func NewBatchNorm2D(channels int, backend Backend) *BatchNorm2D {
	return &BatchNorm2D{
		weight:      NewParameter("weight", Ones(tensor.Shape{channels})),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{channels})),
		runningMean: NewParameter("running_mean", tensor.Zeros(tensor.Shape{channels})),
		runningVar:  NewParameter("running_var", Ones(tensor.Shape{channels})),
		backend:     backend,
	}
}

// NewBatchNorm2DInit is NewBatchNorm2D with weight drawn from N(1, 0.02).
func NewBatchNorm2DInit(channels int, backend Backend, rng *rand.Rand) *BatchNorm2D {
	bn := NewBatchNorm2D(channels, backend)
	bn.weight = NewParameter("weight", Normal(tensor.Shape{channels}, 1, InitStd, rng))
	return bn
}

// Forward normalizes input with the running statistics.
func (n *BatchNorm2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	return n.backend.BatchNorm2D(input,
		n.runningMean.Tensor(), n.runningVar.Tensor(),
		n.weight.Tensor(), n.bias.Tensor(), normEps)
}

// Parameters returns weight, bias and the running statistics.
func (n *BatchNorm2D) Parameters() []*Parameter {
	return []*Parameter{n.weight, n.bias, n.runningMean, n.runningVar}
}
