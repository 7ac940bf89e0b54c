package nn

import (
	"strconv"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Parameters are prefixed with their module index ("0.weight", "1.running_mean").
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container. Nil modules are skipped,
// which lets builders write optional layers inline.
func NewSequential(modules ...Module) *Sequential {
	s := &Sequential{}
	for _, m := range modules {
		s.Add(m)
	}
	return s
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all parameters, prefixed with the module index.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for i, module := range s.modules {
		params = append(params, prefixAll(strconv.Itoa(i), module.Parameters())...)
	}
	return params
}

// Add appends a module to the sequence. A nil module is ignored.
func (s *Sequential) Add(module Module) {
	if module == nil {
		return
	}
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}
