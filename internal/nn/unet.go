package nn

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/born-ml/holoprop/internal/tensor"
)

// UNetConfig describes an encoder-decoder network.
type UNetConfig struct {
	InChannels  int      // Input image channels
	OutChannels int      // Output channels (1 for a phase map, 2 for amplitude+phase)
	NumDowns    int      // Number of stride-2 levels; inputs must be multiples of 2^NumDowns
	MinFeatures int      // Features at the outermost level
	MaxFeatures int      // Cap on features at deeper levels
	Norm        NormKind // Normalization inside the network
	OuterSkip   bool     // Concatenate the input with the decoder output before a final 3x3 projection
}

// DefaultUNetConfig returns the depth-8 configuration used for phase generation.
func DefaultUNetConfig(in, out int) UNetConfig {
	return UNetConfig{
		InChannels:  in,
		OutChannels: out,
		NumDowns:    8,
		MinFeatures: 32,
		MaxFeatures: 512,
		Norm:        NormInstance,
		OuterSkip:   true,
	}
}

// Validate checks the configuration.
func (c UNetConfig) Validate() error {
	switch {
	case c.InChannels <= 0 || c.OutChannels <= 0:
		return fmt.Errorf("unet: invalid channels in=%d, out=%d", c.InChannels, c.OutChannels)
	case c.NumDowns < 2:
		return fmt.Errorf("unet: num_downs must be >= 2, got %d", c.NumDowns)
	case c.MinFeatures <= 0 || c.MaxFeatures < c.MinFeatures:
		return fmt.Errorf("unet: invalid features min=%d, max=%d", c.MinFeatures, c.MaxFeatures)
	}
	switch c.Norm {
	case NormInstance, NormBatch, NormNone:
	default:
		return fmt.Errorf("unet: unknown norm %q", c.Norm)
	}
	return nil
}

// Multiple returns the total downsampling factor 2^NumDowns.
func (c UNetConfig) Multiple() int {
	return 1 << c.NumDowns
}

// features returns the channel width at level i.
func (c UNetConfig) features(i int) int {
	return min(c.MinFeatures<<i, c.MaxFeatures)
}

// unetLevel is one skip-connected level of the U.
// Level 0 is outermost, level NumDowns-1 innermost.
type unetLevel struct {
	down *Sequential
	up   *Sequential
}

// UNet is a U-shaped encoder-decoder.
//
// Level i downsamples with a 4x4 stride-2 convolution to min(nf0*2^i, max)
// features and upsamples with a 4x4 stride-2 transposed convolution; every
// level but the outermost returns its input concatenated with its decoder
// output. Levels follow the pix2pix layout:
//
//	outermost: down = [conv]                   up = [relu, convT]
//	middle:    down = [leaky, conv, norm]      up = [relu, convT, norm]
//	innermost: down = [leaky, conv]            up = [relu, convT, norm]
//
// With OuterSkip the outermost level also concatenates the input, and a 3x3
// convolution projects to OutChannels.
type UNet struct {
	cfg    UNetConfig
	levels []unetLevel
	final  *Conv2D // nil without OuterSkip
}

// NewUNet builds a UNet. Panics on an invalid configuration.
func NewUNet(cfg UNetConfig, backend Backend, rng *rand.Rand) *UNet {
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	useBias := cfg.Norm != NormBatch
	innermost := cfg.NumDowns - 1
	u := &UNet{cfg: cfg, levels: make([]unetLevel, cfg.NumDowns)}

	for i := 0; i < cfg.NumDowns; i++ {
		inner := cfg.features(i)

		var input, outer int
		if i == 0 {
			input = cfg.InChannels
			outer = cfg.OutChannels
			if cfg.OuterSkip {
				outer = cfg.features(0)
			}
		} else {
			input = cfg.features(i - 1)
			outer = input
		}

		upIn := 2 * inner
		if i == innermost {
			upIn = inner
		}

		down := NewSequential()
		if i > 0 {
			down.Add(NewLeakyReLU(0.2, backend))
		}
		down.Add(NewConv2D(input, inner, 4, 2, 1, useBias, backend, rng))
		if i > 0 && i < innermost {
			down.Add(newNorm(cfg.Norm, inner, backend, rng))
		}

		up := NewSequential(
			NewReLU(backend),
			NewConvTranspose2D(upIn, outer, 4, 2, 1, useBias, backend, rng),
		)
		if i > 0 {
			up.Add(newNorm(cfg.Norm, outer, backend, rng))
		}

		u.levels[i] = unetLevel{down: down, up: up}
	}

	if cfg.OuterSkip {
		u.final = NewConv2D(cfg.InChannels+cfg.features(0), cfg.OutChannels, 3, 1, 1, true, backend, rng)
	}
	return u
}

// Config returns the network configuration.
func (u *UNet) Config() UNetConfig {
	return u.cfg
}

// Forward runs the network. H and W must be multiples of 2^NumDowns.
func (u *UNet) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := u.forwardLevel(0, input)
	if u.final != nil {
		out = u.final.Forward(out)
	}
	return out
}

func (u *UNet) forwardLevel(i int, x *tensor.Tensor) *tensor.Tensor {
	level := u.levels[i]
	h := level.down.Forward(x)
	if i+1 < len(u.levels) {
		h = u.forwardLevel(i+1, h)
	}
	y := level.up.Forward(h)
	if i == 0 && u.final == nil {
		return y
	}
	return tensor.Cat([]*tensor.Tensor{x, y}, tensor.AxisChannel)
}

// Parameters returns "levels.<i>.down.*", "levels.<i>.up.*" and "final.*".
func (u *UNet) Parameters() []*Parameter {
	var params []*Parameter
	for i, level := range u.levels {
		prefix := "levels." + strconv.Itoa(i)
		params = append(params, prefixAll(prefix+".down", level.down.Parameters())...)
		params = append(params, prefixAll(prefix+".up", level.up.Parameters())...)
	}
	if u.final != nil {
		params = append(params, prefixAll("final", u.final.Parameters())...)
	}
	return params
}

// String returns a string representation of the network.
func (u *UNet) String() string {
	return fmt.Sprintf("UNet(in=%d, out=%d, num_downs=%d, features=%d..%d, norm=%s, outer_skip=%v)",
		u.cfg.InChannels, u.cfg.OutChannels, u.cfg.NumDowns, u.cfg.MinFeatures, u.cfg.MaxFeatures, u.cfg.Norm, u.cfg.OuterSkip)
}
