// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go compute backend for holoprop networks.
//
// Convolutions are lowered to im2col plus a single GEMM per image and run
// batch-parallel. Results do not depend on the number of workers.
//
// Usage:
//
//	backend := cpu.New()                                       // all cores
//	serial := cpu.NewWithConfig(cpu.ParallelConfig{Enabled: false})
package cpu
