package nn

import (
	"github.com/born-ml/holoprop/internal/tensor"
)

// Parameter is a named weight tensor of a module.
//
// Names are relative to the owning module ("weight", "bias"); containers
// prefix them so that a whole network yields dotted paths such as
// "blocks.3.conv1.weight".
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "running_mean")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// prefixed returns a view of p whose name is prefix + "." + name.
// The tensor is shared, so loading into the view loads into the layer.
func (p *Parameter) prefixed(prefix string) *Parameter {
	return &Parameter{name: prefix + "." + p.name, tensor: p.tensor}
}

// prefixAll prefixes every parameter name with prefix.
func prefixAll(prefix string, params []*Parameter) []*Parameter {
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = p.prefixed(prefix)
	}
	return out
}
