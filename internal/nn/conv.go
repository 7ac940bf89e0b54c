package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Example:
//
//	conv := nn.NewConv2D(3, 32, 4, 2, 1, true, backend, rng) // halves H and W
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter
	bias   *Parameter // nil when the layer has no bias

	backend Backend
}

// NewConv2D creates a 2D convolution with N(0, 0.02) weights and zero bias.
func NewConv2D(inChannels, outChannels, kernelSize, stride, padding int, useBias bool, backend Backend, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 || stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid geometry kernel=%d stride=%d padding=%d", kernelSize, stride, padding))
	}

	c := &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("weight", Normal(tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}, 0, InitStd, rng)),
		backend:     backend,
	}
	if useBias {
		c.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{outChannels}))
	}
	return c
}

// Forward performs the forward pass.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	if s := input.Shape(); len(s) != 4 || s[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input %v does not have %d channels", s, c.inChannels))
	}
	out := c.backend.Conv2D(input, c.weight.Tensor(), c.stride, c.padding)
	if c.bias != nil {
		out = c.backend.AddChannelBias(out, c.bias.Tensor())
	}
	return out
}

// Parameters returns the weight and, if present, the bias.
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias != nil {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// String returns a string representation of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding, c.bias != nil)
}

// ConvTranspose2D is a 2D transposed convolution layer.
//
// Weight shape: [in_channels, out_channels, kernel, kernel]
//
//	out_h = (height - 1)*stride - 2*padding + kernel
type ConvTranspose2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter
	bias   *Parameter

	backend Backend
}

// NewConvTranspose2D creates a transposed convolution with N(0, 0.02) weights.
func NewConvTranspose2D(inChannels, outChannels, kernelSize, stride, padding int, useBias bool, backend Backend, rng *rand.Rand) *ConvTranspose2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv_transpose2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 || stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv_transpose2d: invalid geometry kernel=%d stride=%d padding=%d", kernelSize, stride, padding))
	}

	c := &ConvTranspose2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("weight", Normal(tensor.Shape{inChannels, outChannels, kernelSize, kernelSize}, 0, InitStd, rng)),
		backend:     backend,
	}
	if useBias {
		c.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{outChannels}))
	}
	return c
}

// Forward performs the forward pass.
func (c *ConvTranspose2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	if s := input.Shape(); len(s) != 4 || s[1] != c.inChannels {
		panic(fmt.Sprintf("conv_transpose2d: input %v does not have %d channels", s, c.inChannels))
	}
	out := c.backend.ConvTranspose2D(input, c.weight.Tensor(), c.stride, c.padding)
	if c.bias != nil {
		out = c.backend.AddChannelBias(out, c.bias.Tensor())
	}
	return out
}

// Parameters returns the weight and, if present, the bias.
func (c *ConvTranspose2D) Parameters() []*Parameter {
	if c.bias != nil {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// String returns a string representation of the layer.
func (c *ConvTranspose2D) String() string {
	return fmt.Sprintf("ConvTranspose2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding, c.bias != nil)
}
