package nn

import (
	"fmt"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Net exposes a Module through the error-returning Forward contract used by
// the inverse-propagation dispatcher, and declares its channel layout.
//
// Net validates rank, input channels and, for encoder-decoders, the
// stride multiple before the module runs; it never pads. Callers bring
// inputs to a valid size with adapt.Padded.
type Net struct {
	name        string
	module      Module
	inChannels  int
	outChannels int
	multiple    int
}

// NewNet wraps module with an (in, out) channel contract and a stride
// multiple (1 for networks that accept any size).
func NewNet(name string, module Module, inChannels, outChannels, multiple int) *Net {
	return &Net{
		name:        name,
		module:      module,
		inChannels:  inChannels,
		outChannels: outChannels,
		multiple:    max(multiple, 1),
	}
}

// NewUNetNet builds a UNet and wraps it in a Net.
func NewUNetNet(name string, u *UNet) *Net {
	cfg := u.Config()
	return NewNet(name, u, cfg.InChannels, cfg.OutChannels, cfg.Multiple())
}

// NewResNetNet builds a ResNet and wraps it in a Net.
func NewResNetNet(name string, r *ResNet) *Net {
	cfg := r.Config()
	return NewNet(name, r, cfg.InChannels, cfg.OutChannels, 1)
}

// Forward validates input and runs the module.
func (n *Net) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.CheckImage(n.name, input, n.inChannels); err != nil {
		return nil, err
	}
	if hw := input.Shape().Spatial(); hw[0]%n.multiple != 0 || hw[1]%n.multiple != 0 {
		return nil, &tensor.ShapeError{
			Op:     n.name,
			Got:    input.Shape(),
			Detail: fmt.Sprintf("spatial size must be a multiple of %d", n.multiple),
		}
	}

	out := n.module.Forward(input)
	if err := tensor.CheckImage(n.name, out, n.outChannels); err != nil {
		return nil, fmt.Errorf("%s produced an invalid output: %w", n.name, err)
	}
	return out, nil
}

// Name returns the name given at construction.
func (n *Net) Name() string {
	return n.name
}

// Module returns the wrapped module.
func (n *Net) Module() Module {
	return n.module
}

// InChannels returns the declared input channel count.
func (n *Net) InChannels() int {
	return n.inChannels
}

// OutChannels returns the declared output channel count.
func (n *Net) OutChannels() int {
	return n.outChannels
}

// StrideMultiple returns the multiple H and W must satisfy.
func (n *Net) StrideMultiple() int {
	return n.multiple
}
