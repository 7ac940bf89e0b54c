package nn

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/holoprop/internal/tensor"
)

// State dict errors.
var (
	ErrMissingParameter    = errors.New("missing parameter")
	ErrUnexpectedParameter = errors.New("unexpected parameter")
	ErrParameterShape      = errors.New("parameter shape mismatch")
)

// StateDict returns the module's parameters keyed by dotted name.
// The tensors are shared with the module.
func StateDict(m Module) map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for _, p := range m.Parameters() {
		sd[p.Name()] = p.Tensor()
	}
	return sd
}

// LoadStateDict copies tensors from sd into the module's parameters.
//
// Every parameter must be present with a matching shape. With strict set,
// keys in sd that name no parameter are an error too. All problems are
// reported together; on error the module may be partially loaded.
func LoadStateDict(m Module, sd map[string]*tensor.Tensor, strict bool) error {
	params := m.Parameters()
	known := make(map[string]struct{}, len(params))

	var errs []error
	for _, p := range params {
		known[p.Name()] = struct{}{}
		src, ok := sd[p.Name()]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingParameter, p.Name()))
			continue
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			errs = append(errs, fmt.Errorf("%w: %s: checkpoint %v, module %v",
				ErrParameterShape, p.Name(), src.Shape(), p.Tensor().Shape()))
			continue
		}
		copy(p.Tensor().Data(), src.Data())
	}

	if strict {
		var extra []string
		for name := range sd {
			if _, ok := known[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnexpectedParameter, name))
		}
	}

	return errors.Join(errs...)
}

// SubDict returns the entries of sd under prefix, with "prefix." stripped.
func SubDict(sd map[string]*tensor.Tensor, prefix string) map[string]*tensor.Tensor {
	out := make(map[string]*tensor.Tensor)
	p := prefix + "."
	for name, t := range sd {
		if rest, ok := strings.CutPrefix(name, p); ok {
			out[rest] = t
		}
	}
	return out
}

// WithPrefix returns a copy of sd whose keys are prefixed with "prefix.".
func WithPrefix(sd map[string]*tensor.Tensor, prefix string) map[string]*tensor.Tensor {
	out := make(map[string]*tensor.Tensor, len(sd))
	for name, t := range sd {
		out[prefix+"."+name] = t
	}
	return out
}
