package inverse

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/born-ml/holoprop/internal/adapt"
	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/tensor"
)

// Dispatcher computes SLM phase patterns with the pipeline chosen at
// construction. It keeps no state between calls; it is safe for concurrent
// use when its collaborators are.
type Dispatcher struct {
	p pipeline
}

// pipeline is implemented by one struct per Tag, each holding exactly the
// collaborators that pipeline needs.
type pipeline interface {
	tag() Tag
	computePhase(x *tensor.Tensor) (*tensor.Tensor, error)
}

// New builds a dispatcher for tag from a role -> collaborator mapping.
//
// It fails with a *ConfigError when tag is unknown, a role name is unknown,
// a required role is missing or nil, or a collaborator lacks the capability
// its role needs. Roles that tag does not use are ignored.
func New(tag Tag, roles map[Role]any) (*Dispatcher, error) {
	if Roles(tag) == nil {
		return nil, &ConfigError{Tag: tag, Reason: "unknown pipeline"}
	}

	names := make([]string, 0, len(roles))
	for r := range roles {
		names = append(names, string(r))
	}
	sort.Strings(names)
	for _, name := range names {
		if !knownRole(Role(name)) {
			return nil, &ConfigError{Tag: tag, Role: Role(name), Reason: "unknown role"}
		}
	}

	switch tag {
	case CNNOnly:
		inv, err := lookup[Transform](tag, roles, RoleInverseCNN, "Transform")
		if err != nil {
			return nil, err
		}
		return NewCNNOnly(inv), nil

	case CNNASMDPAC:
		target, err := lookup[Transform](tag, roles, RoleTargetCNN, "Transform")
		if err != nil {
			return nil, err
		}
		enc, err := lookup[Encoder](tag, roles, RoleASMDPAC, "Encoder")
		if err != nil {
			return nil, err
		}
		return NewCNNASMDPAC(target, enc), nil

	default: // CNNASMCNN
		target, err := lookup[Transform](tag, roles, RoleTargetCNN, "Transform")
		if err != nil {
			return nil, err
		}
		prop, err := lookup[Propagator](tag, roles, RoleInverseASM, "Propagator")
		if err != nil {
			return nil, err
		}
		slm, err := lookup[Transform](tag, roles, RoleSLMCNN, "Transform")
		if err != nil {
			return nil, err
		}
		return NewCNNASMCNN(target, prop, slm), nil
	}
}

// NewCNNOnly returns a cnn_only dispatcher. Panics if inverse is nil.
func NewCNNOnly(inverse Transform) *Dispatcher {
	mustHave(CNNOnly, RoleInverseCNN, inverse)
	return &Dispatcher{p: &cnnOnly{inverse: padded(inverse)}}
}

// NewCNNASMDPAC returns a cnn_asm_dpac dispatcher. Panics on a nil collaborator.
func NewCNNASMDPAC(target Transform, dpac Encoder) *Dispatcher {
	mustHave(CNNASMDPAC, RoleTargetCNN, target)
	mustHave(CNNASMDPAC, RoleASMDPAC, dpac)
	return &Dispatcher{p: &cnnASMDPAC{target: padded(target), dpac: dpac}}
}

// NewCNNASMCNN returns a cnn_asm_cnn dispatcher. Panics on a nil collaborator.
func NewCNNASMCNN(target Transform, asm Propagator, slm Transform) *Dispatcher {
	mustHave(CNNASMCNN, RoleTargetCNN, target)
	mustHave(CNNASMCNN, RoleInverseASM, asm)
	mustHave(CNNASMCNN, RoleSLMCNN, slm)
	return &Dispatcher{p: &cnnASMCNN{target: padded(target), asm: asm, slm: padded(slm)}}
}

// Tag returns the pipeline tag.
func (d *Dispatcher) Tag() Tag {
	return d.p.tag()
}

// ComputePhase returns the [batch, 1, H, W] SLM phase for a
// [batch, channels, H, W] target image. Phases are not clamped.
//
// Shape problems are reported as *tensor.ShapeError; collaborator failures
// are wrapped with the failing role.
func (d *Dispatcher) ComputePhase(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.CheckImage("compute_phase", x, 0); err != nil {
		return nil, err
	}

	out, err := d.p.computePhase(x)
	if err != nil {
		return nil, err
	}

	want := x.Shape().WithChannels(1)
	if err := tensor.CheckImage("compute_phase", out, 1); err != nil {
		return nil, err
	}
	if !out.Shape().Equal(want) {
		return nil, &tensor.ShapeError{
			Op:     "compute_phase",
			Got:    out.Shape(),
			Want:   want,
			Detail: "phase map does not match the target image",
		}
	}
	return out, nil
}

type cnnOnly struct {
	inverse Transform
}

func (p *cnnOnly) tag() Tag { return CNNOnly }

func (p *cnnOnly) computePhase(x *tensor.Tensor) (*tensor.Tensor, error) {
	return forward(RoleInverseCNN, p.inverse, x)
}

type cnnASMDPAC struct {
	target Transform
	dpac   Encoder
}

func (p *cnnASMDPAC) tag() Tag { return CNNASMDPAC }

func (p *cnnASMDPAC) computePhase(x *tensor.Tensor) (*tensor.Tensor, error) {
	amp, phase, err := ampPhase(p.target, x)
	if err != nil {
		return nil, err
	}
	_, slm, err := p.dpac.Encode(amp, phase)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", RoleASMDPAC, err)
	}
	return slm, nil
}

type cnnASMCNN struct {
	target Transform
	asm    Propagator
	slm    Transform
}

func (p *cnnASMCNN) tag() Tag { return CNNASMCNN }

func (p *cnnASMCNN) computePhase(x *tensor.Tensor) (*tensor.Tensor, error) {
	amp, phase, err := ampPhase(p.target, x)
	if err != nil {
		return nil, err
	}
	f, err := field.Build(amp, phase)
	if err != nil {
		return nil, err
	}
	f, err = p.asm.Propagate(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", RoleInverseASM, err)
	}

	slmAmp, slmPhase := field.Decompose(f)
	features := tensor.Cat([]*tensor.Tensor{slmAmp, slmPhase}, tensor.AxisChannel)
	return forward(RoleSLMCNN, p.slm, features)
}

// ampPhase runs the target-estimation transform and splits its output into
// amplitude (channel 0) and phase (channel 1).
func ampPhase(target Transform, x *tensor.Tensor) (amp, phase *tensor.Tensor, err error) {
	ap, err := forward(RoleTargetCNN, target, x)
	if err != nil {
		return nil, nil, err
	}
	if err := tensor.CheckImage(string(RoleTargetCNN), ap, 2); err != nil {
		return nil, nil, err
	}
	return ap.Channel(0), ap.Channel(1), nil
}

func forward(role Role, t Transform, x *tensor.Tensor) (*tensor.Tensor, error) {
	y, err := t.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", role, err)
	}
	if err := tensor.CheckImage(string(role), y, 0); err != nil {
		return nil, err
	}
	return y, nil
}

// padded wraps transforms that declare a stride multiple above 1.
func padded(t Transform) Transform {
	if s, ok := t.(StrideMultiple); ok && s.StrideMultiple() > 1 {
		return adapt.NewPadded(t, s.StrideMultiple())
	}
	return t
}

// lookup fetches role from roles as capability T, named capability in errors.
func lookup[T any](tag Tag, roles map[Role]any, role Role, capability string) (T, error) {
	var zero T
	v, ok := roles[role]
	if !ok || isNil(v) {
		return zero, &ConfigError{Tag: tag, Role: role, Reason: "missing collaborator"}
	}
	c, ok := v.(T)
	if !ok {
		return zero, &ConfigError{
			Tag:    tag,
			Role:   role,
			Reason: fmt.Sprintf("%T does not implement %s", v, capability),
		}
	}
	return c, nil
}

func mustHave(tag Tag, role Role, v any) {
	if isNil(v) {
		panic(&ConfigError{Tag: tag, Role: role, Reason: "missing collaborator"})
	}
}

// isNil reports whether v is nil or a nil pointer, map, slice, func or chan
// wrapped in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
