package adapt

import (
	"fmt"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Forwarder is a fallible image-to-image transformation.
type Forwarder interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// Padded runs an inner transformation at the working size its stride
// multiple requires and returns the result at the caller's size.
//
// The working size and the original size are tracked separately: the input
// is adapted to the working size, the output back to the original one.
type Padded struct {
	inner    Forwarder
	multiple int
}

// NewPadded wraps inner, whose inputs must have H and W divisible by multiple.
// Panics if multiple < 1.
func NewPadded(inner Forwarder, multiple int) *Padded {
	if multiple < 1 {
		panic(fmt.Sprintf("adapt: multiple must be >= 1, got %d", multiple))
	}
	return &Padded{inner: inner, multiple: multiple}
}

// Forward pads x to the working size, runs the inner transformation and
// adapts its output back to the spatial size of x.
func (p *Padded) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.CheckImage("adapt.padded", x, 0); err != nil {
		return nil, err
	}
	original := x.Shape().Spatial()
	working := WorkingSize(original, p.multiple)

	in, err := Adapt(x, working)
	if err != nil {
		return nil, err
	}
	out, err := p.inner.Forward(in)
	if err != nil {
		return nil, err
	}
	return Adapt(out, original)
}

// Multiple returns the stride multiple of the wrapped transformation.
func (p *Padded) Multiple() int {
	return p.multiple
}

// Unwrap returns the wrapped transformation.
func (p *Padded) Unwrap() Forwarder {
	return p.inner
}
