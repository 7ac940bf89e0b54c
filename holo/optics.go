// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package holo

import (
	"github.com/born-ml/holoprop/internal/adapt"
	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/optics"
	"github.com/born-ml/holoprop/tensor"
)

// Field is a batch of complex wave fields, [N, 1, H, W].
type Field = field.Field

// Params describes the optical setup of a propagation.
type Params = optics.Params

// ASM is the angular spectrum propagator.
type ASM = optics.ASM

// DPAC is the double-phase amplitude encoder.
type DPAC = optics.DPAC

// DPACOptions configures a DPAC encoder.
type DPACOptions = optics.DPACOptions

// ErrInvalidParams is returned for unusable optical parameters.
var ErrInvalidParams = optics.ErrInvalidParams

// NewASM creates an angular spectrum propagator.
func NewASM(params Params) (*ASM, error) {
	return optics.NewASM(params)
}

// NewDPAC creates a DPAC encoder. A nil prop encodes the field as given.
func NewDPAC(prop Propagator, opts DPACOptions) *DPAC {
	return optics.NewDPAC(prop, opts)
}

// BuildField combines amplitude and phase images into a field.
func BuildField(amp, phase *tensor.Tensor) (*Field, error) {
	return field.Build(amp, phase)
}

// DecomposeField splits a field into amplitude and phase in (-π, π].
func DecomposeField(f *Field) (amp, phase *tensor.Tensor) {
	return field.Decompose(f)
}

// ReshapeSize returns the smallest multiple of multiple that is >= dim.
func ReshapeSize(dim, multiple int) int {
	return adapt.ReshapeSize(dim, multiple)
}

// Adapt center-pads and center-crops x to target height and width.
func Adapt(x *tensor.Tensor, target [2]int) (*tensor.Tensor, error) {
	return adapt.Adapt(x, target)
}
