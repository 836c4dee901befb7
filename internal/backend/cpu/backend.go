// Package cpu implements 2-D convolution on the CPU as im2col patch
// extraction followed by a gonum BLAS contraction.
package cpu

import (
	"fmt"

	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
)

// CPUBackend runs convolutions on the calling goroutine, fanning patch
// extraction and layout permutes out according to its parallel config.
// It holds no per-call state and is safe for concurrent use on distinct buffers.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the parallel config used by the backend.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// scratch allocates a call-scoped buffer. Shapes reaching here were already
// validated, so a failure is a bug.
func (cpu *CPUBackend) scratch(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	t, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create scratch tensor %v: %v", shape, err))
	}
	return t
}
