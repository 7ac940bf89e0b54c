// Package cpu implements the float32 kernels behind holoprop's networks.
//
// Convolutions lower to SGEMM through gonum's blas32; per-image work is spread
// across goroutines with internal/parallel. Kernels panic on layout errors, as
// they are only reached after the caller validated its inputs.
package cpu

import (
	"github.com/born-ml/holoprop/internal/parallel"
)

// CPUBackend runs tensor kernels on the host CPU.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend using all available cores.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the backend's parallel configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}
