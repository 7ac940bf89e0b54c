// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package holo

import (
	"github.com/born-ml/holoprop/internal/inverse"
)

// Dispatcher computes SLM phase patterns for one pipeline.
type Dispatcher = inverse.Dispatcher

// Tag names a pipeline.
type Tag = inverse.Tag

// Role names a component slot of a pipeline.
type Role = inverse.Role

// Supported pipelines.
const (
	CNNOnly    = inverse.CNNOnly
	CNNASMDPAC = inverse.CNNASMDPAC
	CNNASMCNN  = inverse.CNNASMCNN
)

// Component roles.
const (
	RoleInverseCNN = inverse.RoleInverseCNN
	RoleTargetCNN  = inverse.RoleTargetCNN
	RoleASMDPAC    = inverse.RoleASMDPAC
	RoleInverseASM = inverse.RoleInverseASM
	RoleSLMCNN     = inverse.RoleSLMCNN
)

// Transform is a learned image-to-image mapping.
type Transform = inverse.Transform

// Propagator is a free-space propagation operator.
type Propagator = inverse.Propagator

// Encoder maps an amplitude/phase pair to a phase-only pattern.
type Encoder = inverse.Encoder

// ConfigError reports an invalid dispatcher configuration.
type ConfigError = inverse.ConfigError

// ErrConfig is matched by every *ConfigError.
var ErrConfig = inverse.ErrConfig

// Tags returns the supported pipelines.
func Tags() []Tag {
	return inverse.Tags()
}

// ParseTag parses a pipeline name.
func ParseTag(s string) (Tag, error) {
	return inverse.ParseTag(s)
}

// Roles returns the roles required by tag.
func Roles(tag Tag) []Role {
	return inverse.Roles(tag)
}

// New builds a dispatcher for tag from role-keyed components.
// Components for roles the pipeline does not use are ignored.
func New(tag Tag, roles map[Role]any) (*Dispatcher, error) {
	return inverse.New(tag, roles)
}

// NewCNNOnly builds a cnn_only dispatcher.
func NewCNNOnly(inverseCNN Transform) *Dispatcher {
	return inverse.NewCNNOnly(inverseCNN)
}

// NewCNNASMDPAC builds a cnn_asm_dpac dispatcher.
func NewCNNASMDPAC(target Transform, dpac Encoder) *Dispatcher {
	return inverse.NewCNNASMDPAC(target, dpac)
}

// NewCNNASMCNN builds a cnn_asm_cnn dispatcher.
func NewCNNASMCNN(target Transform, asm Propagator, slm Transform) *Dispatcher {
	return inverse.NewCNNASMCNN(target, asm, slm)
}
