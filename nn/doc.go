// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the image-to-image networks used by holoprop.
//
// # Overview
//
// This package contains:
//   - Networks: UNet, ResNet
//   - Wrappers: Net (channel contract and stride multiple)
//   - Utilities: Sequential, Module interface, Parameter
//   - Weights: StateDict, LoadStateDict
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/holoprop/backend/cpu"
//	    "github.com/born-ml/holoprop/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    net := nn.NewResNetNet("target_cnn", nn.NewResNet(nn.DefaultResNetConfig(3, 2), backend, rng))
//	    out, err := net.Forward(x) // [N, 3, H, W] -> [N, 2, H, W]
//	}
//
// Networks are inference only. Weights are loaded with LoadStateDict,
// typically from a safetensors file read by the loader package.
package nn
