package nn

import (
	"math/rand"

	"github.com/born-ml/holoprop/internal/tensor"
)

// InitStd is the standard deviation of the normal initialization.
const InitStd = 0.02

// Normal creates a tensor with values drawn from N(mean, std²).
//
// rng makes initialization reproducible; pass rand.New(rand.NewSource(seed)).
func Normal(shape tensor.Shape, mean, std float64, rng *rand.Rand) *tensor.Tensor {
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32(mean + std*rng.NormFloat64())
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape tensor.Shape) *tensor.Tensor {
	return tensor.Full(shape, 1)
}
