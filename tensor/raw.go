// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/convolve/internal/tensor"
)

// RawTensor is the dense tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Zero-copy data access via AsFloat32(), AsFloat64() and Data[T]
//   - Reference counting via Clone() and Release()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()  // Type-safe access
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType is the runtime element type of a tensor.
type DataType = tensor.DataType

// Float is the constraint satisfied by float32 and float64.
type Float = tensor.Float

// Device identifies where a tensor's memory lives.
type Device = tensor.Device

// Layout is the physical axis order of a rank-4 image tensor.
type Layout = tensor.Layout

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// CPU is the host memory device.
const CPU = tensor.CPU

// Supported layouts.
const (
	ChannelsFirst = tensor.ChannelsFirst // (N, C, H, W)
	ChannelsLast  = tensor.ChannelsLast  // (N, H, W, C)
)

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a CPU tensor holding a copy of data.
func FromSlice[T Float](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Data returns a zero-copy []T view of r. Panics if T does not match r's dtype.
func Data[T Float](r *RawTensor) []T {
	return tensor.Data[T](r)
}

// ParseLayout parses "NCHW" or "NHWC" (and their channels-first/last spellings).
func ParseLayout(s string) (Layout, error) {
	return tensor.ParseLayout(s)
}
