// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/holoprop/internal/backend/cpu"
	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/nn"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend implements the convolution, activation and
// normalization kernels used by the holoprop networks in pure Go.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how kernels split work across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements nn.Backend.
var _ nn.Backend = (*Backend)(nil)

// New creates a new CPU backend using all available cores.
//
// Example:
//
//	import (
//	    "github.com/born-ml/holoprop/backend/cpu"
//	    "github.com/born-ml/holoprop/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    unet := nn.NewUNet(nn.DefaultUNetConfig(1, 2), backend, rand.New(rand.NewSource(1)))
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the default parallelism settings.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
