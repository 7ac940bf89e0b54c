package nn

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/born-ml/holoprop/internal/tensor"
)

// ResNetConfig describes a residual-correction network.
type ResNetConfig struct {
	InChannels  int // Input image channels
	OutChannels int // Output channels
	Features    int // Width of the residual trunk
	Blocks      int // Number of residual blocks in the trunk
}

// DefaultResNetConfig returns the 24-feature, 15-block configuration.
func DefaultResNetConfig(in, out int) ResNetConfig {
	return ResNetConfig{InChannels: in, OutChannels: out, Features: 24, Blocks: 15}
}

// Validate checks the configuration.
func (c ResNetConfig) Validate() error {
	switch {
	case c.InChannels <= 0 || c.OutChannels <= 0:
		return fmt.Errorf("resnet: invalid channels in=%d, out=%d", c.InChannels, c.OutChannels)
	case c.Features <= 0:
		return fmt.Errorf("resnet: invalid features %d", c.Features)
	case c.Blocks < 0:
		return fmt.Errorf("resnet: invalid block count %d", c.Blocks)
	}
	return nil
}

// ResidualBlock computes relu(bn(conv(relu(bn(conv(x)))))) + x.
// Input and output widths are equal, so the identity needs no projection.
type ResidualBlock struct {
	conv1 *Conv2D
	bn1   *BatchNorm2D
	conv2 *Conv2D
	bn2   *BatchNorm2D

	backend Backend
}

// NewResidualBlock creates a residual block of the given width.
func NewResidualBlock(channels int, backend Backend, rng *rand.Rand) *ResidualBlock {
	return &ResidualBlock{
		conv1:   NewConv2D(channels, channels, 3, 1, 1, false, backend, rng),
		bn1:     NewBatchNorm2DInit(channels, backend, rng),
		conv2:   NewConv2D(channels, channels, 3, 1, 1, false, backend, rng),
		bn2:     NewBatchNorm2DInit(channels, backend, rng),
		backend: backend,
	}
}

// Forward applies the block.
func (b *ResidualBlock) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := b.backend.ReLU(b.bn1.Forward(b.conv1.Forward(input)))
	out = b.backend.ReLU(b.bn2.Forward(b.conv2.Forward(out)))

	dst := out.Data()
	for i, v := range input.Data() {
		dst[i] += v
	}
	return out
}

// Parameters returns "conv1.*", "bn1.*", "conv2.*", "bn2.*".
func (b *ResidualBlock) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, prefixAll("conv1", b.conv1.Parameters())...)
	params = append(params, prefixAll("bn1", b.bn1.Parameters())...)
	params = append(params, prefixAll("conv2", b.conv2.Parameters())...)
	params = append(params, prefixAll("bn2", b.bn2.Parameters())...)
	return params
}

// ResNet is the residual-correction network:
//
//	stem:   conv3x3(in -> F) + BN + ReLU
//	trunk:  Blocks x ResidualBlock(F)
//	head:   cat(input, trunk) -> conv3x3(in+F -> out) + BN + ReLU
//
// It is fully convolutional with stride 1, so it accepts any H and W.
type ResNet struct {
	cfg    ResNetConfig
	stem   *Sequential
	blocks []*ResidualBlock
	head   *Sequential
}

// NewResNet builds a ResNet. Panics on an invalid configuration.
func NewResNet(cfg ResNetConfig, backend Backend, rng *rand.Rand) *ResNet {
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	r := &ResNet{
		cfg: cfg,
		stem: NewSequential(
			NewConv2D(cfg.InChannels, cfg.Features, 3, 1, 1, false, backend, rng),
			NewBatchNorm2DInit(cfg.Features, backend, rng),
			NewReLU(backend),
		),
		blocks: make([]*ResidualBlock, cfg.Blocks),
		head: NewSequential(
			NewConv2D(cfg.InChannels+cfg.Features, cfg.OutChannels, 3, 1, 1, false, backend, rng),
			NewBatchNorm2DInit(cfg.OutChannels, backend, rng),
			NewReLU(backend),
		),
	}
	for i := range r.blocks {
		r.blocks[i] = NewResidualBlock(cfg.Features, backend, rng)
	}
	return r
}

// Config returns the network configuration.
func (r *ResNet) Config() ResNetConfig {
	return r.cfg
}

// Forward runs the network.
func (r *ResNet) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := r.stem.Forward(input)
	for _, b := range r.blocks {
		out = b.Forward(out)
	}
	out = tensor.Cat([]*tensor.Tensor{input, out}, tensor.AxisChannel)
	return r.head.Forward(out)
}

// Parameters returns "stem.*", "blocks.<i>.*" and "head.*".
func (r *ResNet) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, prefixAll("stem", r.stem.Parameters())...)
	for i, b := range r.blocks {
		params = append(params, prefixAll("blocks."+strconv.Itoa(i), b.Parameters())...)
	}
	params = append(params, prefixAll("head", r.head.Parameters())...)
	return params
}

// String returns a string representation of the network.
func (r *ResNet) String() string {
	return fmt.Sprintf("ResNet(in=%d, out=%d, features=%d, blocks=%d)",
		r.cfg.InChannels, r.cfg.OutChannels, r.cfg.Features, r.cfg.Blocks)
}
