// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/holoprop/internal/nn"
	"github.com/born-ml/holoprop/tensor"
)

// Module is the interface implemented by all layers.
type Module = nn.Module

// Backend is the set of kernels a network needs to run.
type Backend = nn.Backend

// Parameter is a named tensor owned by a module.
type Parameter = nn.Parameter

// NormKind selects the normalization layer used inside a network.
type NormKind = nn.NormKind

// Supported normalization kinds.
const (
	NormInstance = nn.NormInstance
	NormBatch    = nn.NormBatch
	NormNone     = nn.NormNone
)

// Sentinel errors returned by LoadStateDict.
var (
	ErrMissingParameter    = nn.ErrMissingParameter
	ErrUnexpectedParameter = nn.ErrUnexpectedParameter
	ErrParameterShape      = nn.ErrParameterShape
)

// UNet is an encoder/decoder network with skip connections.
type UNet = nn.UNet

// UNetConfig configures a UNet.
type UNetConfig = nn.UNetConfig

// ResNet is a stride-1 residual network.
type ResNet = nn.ResNet

// ResNetConfig configures a ResNet.
type ResNetConfig = nn.ResNetConfig

// Net wraps a module with its channel contract and stride multiple.
type Net = nn.Net

// Sequential chains modules.
type Sequential = nn.Sequential

// DefaultUNetConfig returns the default UNet configuration.
func DefaultUNetConfig(in, out int) UNetConfig {
	return nn.DefaultUNetConfig(in, out)
}

// NewUNet creates a UNet with randomly initialized weights.
//
// Example:
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1))
//	unet := nn.NewUNet(nn.DefaultUNetConfig(1, 2), backend, rng)
//	net := nn.NewUNetNet("inverse_cnn", unet)
//	out, err := net.Forward(x) // x: [N, 1, H, W] with H, W divisible by net.StrideMultiple()
func NewUNet(cfg UNetConfig, backend Backend, rng *rand.Rand) *UNet {
	return nn.NewUNet(cfg, backend, rng)
}

// DefaultResNetConfig returns the default ResNet configuration.
func DefaultResNetConfig(in, out int) ResNetConfig {
	return nn.DefaultResNetConfig(in, out)
}

// NewResNet creates a ResNet with randomly initialized weights.
func NewResNet(cfg ResNetConfig, backend Backend, rng *rand.Rand) *ResNet {
	return nn.NewResNet(cfg, backend, rng)
}

// NewUNetNet wraps a UNet as a Net.
func NewUNetNet(name string, u *UNet) *Net {
	return nn.NewUNetNet(name, u)
}

// NewResNetNet wraps a ResNet as a Net.
func NewResNetNet(name string, r *ResNet) *Net {
	return nn.NewResNetNet(name, r)
}

// NewSequential creates a Sequential from modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// StateDict returns the parameters of m keyed by name.
func StateDict(m Module) map[string]*tensor.Tensor {
	return nn.StateDict(m)
}

// LoadStateDict copies sd into the parameters of m.
// With strict set, keys unknown to m are an error.
func LoadStateDict(m Module, sd map[string]*tensor.Tensor, strict bool) error {
	return nn.LoadStateDict(m, sd, strict)
}
