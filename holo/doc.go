// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package holo computes phase-only SLM patterns from target images.
//
// # Overview
//
// A Dispatcher runs one of three pipelines, selected by a Tag:
//
//	cnn_only      image -> inverse CNN -> phase
//	cnn_asm_dpac  image -> target CNN -> (amp, phase) -> DPAC -> phase
//	cnn_asm_cnn   image -> target CNN -> (amp, phase) -> inverse ASM -> SLM CNN -> phase
//
// Every pipeline maps [N, C, H, W] to [N, 1, H, W] without changing H or W.
// Networks with stride constraints are padded to a compatible size and the
// result is cropped back, centered.
//
// # Basic Usage
//
//	import "github.com/born-ml/holoprop/holo"
//
//	func main() {
//	    cfg := holo.DefaultConfig()
//	    p, err := holo.Build(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    phase, err := p.Dispatcher.ComputePhase(img) // img: [N, 3, H, W]
//	}
//
// Components can also be assembled by hand:
//
//	asm, _ := holo.NewASM(holo.Params{Wavelength: 520e-9, PixelPitch: 6.4e-6, Distance: 0.02})
//	d, err := holo.New(holo.CNNASMDPAC, map[holo.Role]any{
//	    holo.RoleTargetCNN: targetNet,
//	    holo.RoleASMDPAC:   holo.NewDPAC(asm, holo.DPACOptions{}),
//	})
//
// # Errors
//
// Construction problems are reported as *ConfigError (matching ErrConfig).
// Input layout problems are reported as *tensor.ShapeError.
package holo
