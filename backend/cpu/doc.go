// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for 2-D convolution.
//
// # Overview
//
// Convolution is computed in three stages:
//   - Layout normalization: channel-first tensors are transposed to channel-last
//   - Im2col: every output position's receptive field becomes one matrix row
//   - Contraction: the patch matrix is multiplied by the filter matrix with
//     gonum BLAS, then the bias is broadcast over all rows
//
// Both float32 and float64 tensors are supported.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convolve/backend/cpu"
//	    "github.com/born-ml/convolve/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    cfg := cpu.NewConv2DConfig(3, 3).WithStride(2, 2).WithSymmetricPadding(1, 1)
//
//	    // x: (N, C, H, W), w: (M, C, 3, 3), b: (M)
//	    y, err := backend.NewConv2DOutput(x, w, cfg, tensor.ChannelsFirst)
//	    if err != nil { ... }
//	    if err := backend.Conv2DNCHW(x, w, b, y, cfg); err != nil { ... }
//	}
//
// # Errors
//
// All failures are precondition violations detected before any output is
// written. They wrap ErrShape, ErrBiasShape, ErrOutputSize, ErrConfig or
// ErrDType and can be matched with errors.Is.
//
// # Thread Safety
//
// The CPU backend holds no per-call state. Concurrent calls are safe as
// long as they write to distinct output tensors.
package cpu
