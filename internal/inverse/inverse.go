// Package inverse composes learned transforms and physical operators into
// the inverse-propagation pipelines that compute an SLM phase pattern from
// a target image.
//
// A Dispatcher is built once for one of three pipelines:
//
//	cnn_only:     slm = inverse_cnn(x)
//	cnn_asm_dpac: ap = target_cnn(x); slm = asm_dpac.Encode(ap[0], ap[1])
//	cnn_asm_cnn:  ap = target_cnn(x); f = inverse_asm(ap[0]·exp(i·ap[1]))
//	              slm = slm_cnn(cat(|f|, arg f))
//
// Every 2-channel intermediate holds amplitude in channel 0 and phase in
// channel 1. Transforms that declare a stride multiple are run at the padded
// working size and their outputs cropped back, so callers may pass any H, W.
package inverse

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/tensor"
)

// Tag selects a pipeline.
type Tag string

// Supported pipelines.
const (
	CNNOnly    Tag = "cnn_only"
	CNNASMDPAC Tag = "cnn_asm_dpac"
	CNNASMCNN  Tag = "cnn_asm_cnn"
)

// Tags returns all supported pipeline tags.
func Tags() []Tag {
	return []Tag{CNNOnly, CNNASMDPAC, CNNASMCNN}
}

// ParseTag returns the tag named by s.
func ParseTag(s string) (Tag, error) {
	tag := Tag(s)
	if !slices.Contains(Tags(), tag) {
		return "", &ConfigError{Tag: tag, Reason: "unknown pipeline"}
	}
	return tag, nil
}

// Role names a collaborator slot.
type Role string

// Collaborator roles.
const (
	RoleInverseCNN Role = "inverse_cnn" // Transform: image -> phase (cnn_only)
	RoleTargetCNN  Role = "target_cnn"  // Transform: image -> amplitude+phase
	RoleASMDPAC    Role = "asm_dpac"    // Encoder
	RoleInverseASM Role = "inverse_asm" // Propagator
	RoleSLMCNN     Role = "slm_cnn"     // Transform: amplitude+phase -> phase
)

// Roles returns the roles tag requires, in pipeline order.
func Roles(tag Tag) []Role {
	switch tag {
	case CNNOnly:
		return []Role{RoleInverseCNN}
	case CNNASMDPAC:
		return []Role{RoleTargetCNN, RoleASMDPAC}
	case CNNASMCNN:
		return []Role{RoleTargetCNN, RoleInverseASM, RoleSLMCNN}
	}
	return nil
}

func knownRole(r Role) bool {
	switch r {
	case RoleInverseCNN, RoleTargetCNN, RoleASMDPAC, RoleInverseASM, RoleSLMCNN:
		return true
	}
	return false
}

// Transform is a learned image-to-image mapping.
type Transform interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// Propagator is a free-space propagation operator with a fixed distance.
type Propagator interface {
	Propagate(f *field.Field) (*field.Field, error)
}

// Encoder maps an amplitude/phase pair to a phase-only SLM pattern.
type Encoder interface {
	Encode(amp, phase *tensor.Tensor) (encAmp, slmPhase *tensor.Tensor, err error)
}

// StrideMultiple is implemented by transforms whose inputs must have H and W
// divisible by a fixed multiple.
type StrideMultiple interface {
	StrideMultiple() int
}

// ErrConfig is matched by every *ConfigError via errors.Is.
var ErrConfig = errors.New("invalid dispatcher configuration")

// ConfigError reports an invalid dispatcher configuration.
type ConfigError struct {
	Tag    Tag    // Requested pipeline
	Role   Role   // Offending role, empty when the tag itself is invalid
	Reason string // What is wrong
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("inverse: %s: role %s: %s", e.Tag, e.Role, e.Reason)
	}
	return fmt.Sprintf("inverse: %q: %s", e.Tag, e.Reason)
}

// Is makes errors.Is(err, ErrConfig) hold for any *ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
