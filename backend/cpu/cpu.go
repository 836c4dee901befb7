// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/convolve/internal/backend/cpu"
	"github.com/born-ml/convolve/internal/parallel"
)

// Backend represents the CPU backend implementation.
//
// It exposes Conv2D (layout dispatch), Conv2DNCHW, Conv2DNHWC,
// NewConv2DOutput and Permute4.
type Backend = internalcpu.CPUBackend

// Conv2DConfig holds kernel size, stride, dilation and padding of a 2-D convolution.
type Conv2DConfig = internalcpu.Conv2DConfig

// ParallelConfig controls how patch extraction and layout permutes are split
// across goroutines.
type ParallelConfig = parallel.Config

// Precondition errors; see the package documentation.
var (
	ErrShape      = internalcpu.ErrShape
	ErrBiasShape  = internalcpu.ErrBiasShape
	ErrOutputSize = internalcpu.ErrOutputSize
	ErrConfig     = internalcpu.ErrConfig
	ErrDType      = internalcpu.ErrDType
)

// Axis permutations accepted by Backend.Permute4.
var (
	PermNCHWToNHWC   = internalcpu.PermNCHWToNHWC
	PermNHWCToNCHW   = internalcpu.PermNHWCToNCHW
	PermFilterToHWCM = internalcpu.PermFilterToHWCM
)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	err := backend.Conv2D(x, w, b, y, cpu.NewConv2DConfig(3, 3), tensor.ChannelsLast)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// NewConv2DConfig returns a config for a kernelH x kernelW window with
// stride 1, dilation 1 and no padding.
func NewConv2DConfig(kernelH, kernelW int) Conv2DConfig {
	return internalcpu.NewConv2DConfig(kernelH, kernelW)
}
