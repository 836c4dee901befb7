// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense buffers exchanged with the convolution backend.
//
// # Overview
//
// A RawTensor is a row-major buffer with a Shape and a DataType. The
// convolution kernels accept float32 and float64 tensors of rank 4
// (images and filters) and rank 1 (bias).
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convolve/backend/cpu"
//	    "github.com/born-ml/convolve/tensor"
//	)
//
//	func main() {
//	    x, _ := tensor.FromSlice(pixels, tensor.Shape{1, 3, 32, 32})  // NCHW
//	    data := tensor.Data[float32](x)                               // zero-copy view
//	    ...
//	}
//
// # Layouts
//
// Rank-4 image tensors are either ChannelsFirst (N, C, H, W) or
// ChannelsLast (N, H, W, C). The layout is not stored in the tensor; it is
// passed alongside it to the convolution entry points.
//
// # Memory Management
//
// Buffers are reference-counted. Clone shares the buffer; Release drops a
// reference and frees the memory when the last one goes away.
package tensor
