package cpu

import (
	"github.com/born-ml/convolve/internal/tensor"
	"github.com/pkg/errors"
)

// Conv2D convolves input with filter, adds bias and writes the result into
// output, dispatching on layout to Conv2DNCHW or Conv2DNHWC.
func (cpu *CPUBackend) Conv2D(input, filter, bias, output *tensor.RawTensor, cfg Conv2DConfig, layout tensor.Layout) error {
	switch layout {
	case tensor.ChannelsFirst:
		return cpu.Conv2DNCHW(input, filter, bias, output, cfg)
	case tensor.ChannelsLast:
		return cpu.Conv2DNHWC(input, filter, bias, output, cfg)
	default:
		return errors.Wrapf(ErrConfig, "unknown layout %v", layout)
	}
}

// Conv2DNCHW performs a channel-first 2-D convolution using im2col.
//
// Input shape:  [N, C, H, W]
// Filter shape: [M, C, kernel_h, kernel_w]
// Bias shape:   [M]
// Output shape: [N, M, out_h, out_w], allocated by the caller (see NewConv2DOutput)
//
// Input and filter are first transposed to channel-last, run through the
// shared channel-last pipeline, and the result is transposed back into
// output. All scratch buffers are released before returning.
//
// On error nothing has been written to output.
func (cpu *CPUBackend) Conv2DNCHW(input, filter, bias, output *tensor.RawTensor, cfg Conv2DConfig) error {
	g, err := validateConv2D(input, filter, bias, output, cfg, tensor.ChannelsFirst)
	if err != nil {
		return err
	}

	switch g.dtype {
	case tensor.Float32:
		conv2dNCHW[float32](cpu, g, cfg, input, filter, bias, output)
	case tensor.Float64:
		conv2dNCHW[float64](cpu, g, cfg, input, filter, bias, output)
	default:
		return errors.Wrapf(ErrDType, "unsupported dtype %s", g.dtype)
	}
	return nil
}

// Conv2DNHWC performs a channel-last 2-D convolution using im2col.
//
// Input shape:  [N, H, W, C]
// Filter shape: [M, kernel_h, kernel_w, C]
// Bias shape:   [M]
// Output shape: [N, out_h, out_w, M], allocated by the caller (see NewConv2DOutput)
//
// Neither input nor filter is copied: the filter is read as a transposed
// [M, kernel_h*kernel_w*C] matrix and the product lands directly in output.
//
// On error nothing has been written to output.
func (cpu *CPUBackend) Conv2DNHWC(input, filter, bias, output *tensor.RawTensor, cfg Conv2DConfig) error {
	g, err := validateConv2D(input, filter, bias, output, cfg, tensor.ChannelsLast)
	if err != nil {
		return err
	}

	switch g.dtype {
	case tensor.Float32:
		conv2dNHWC[float32](cpu, g, cfg, input, filter, bias, output)
	case tensor.Float64:
		conv2dNHWC[float64](cpu, g, cfg, input, filter, bias, output)
	default:
		return errors.Wrapf(ErrDType, "unsupported dtype %s", g.dtype)
	}
	return nil
}

// NewConv2DOutput allocates a zeroed output tensor sized for convolving
// input with filter under cfg and layout.
func (cpu *CPUBackend) NewConv2DOutput(input, filter *tensor.RawTensor, cfg Conv2DConfig, layout tensor.Layout) (*tensor.RawTensor, error) {
	if input == nil || filter == nil {
		return nil, errors.Wrap(ErrShape, "input and filter tensors are required")
	}
	if len(filter.Shape()) != 4 {
		return nil, errors.Wrapf(ErrShape, "filter must be rank 4, got %v", filter.Shape())
	}
	shape, err := cfg.OutputShape(input.Shape(), layout, filter.Shape()[0])
	if err != nil {
		return nil, err
	}
	return tensor.NewRaw(shape, input.DType(), cpu.device)
}

func conv2dNCHW[T tensor.Float](cpu *CPUBackend, g convGeometry, cfg Conv2DConfig, input, filter, bias, output *tensor.RawTensor) {
	// (N,C,H,W) -> (N,H,W,C)
	x := cpu.scratch(tensor.Shape{g.N, g.H, g.W, g.C}, g.dtype)
	defer x.Release()
	permute4(tensor.Data[T](x), tensor.Data[T](input), [4]int{g.N, g.C, g.H, g.W}, PermNCHWToNHWC, cpu.par)

	// (M,C,kh,kw) -> (kh,kw,C,M), i.e. a [K, M] matrix
	w := cpu.scratch(tensor.Shape{cfg.KernelH, cfg.KernelW, g.C, g.M}, g.dtype)
	defer w.Release()
	permute4(tensor.Data[T](w), tensor.Data[T](filter), [4]int{g.M, g.C, cfg.KernelH, cfg.KernelW}, PermFilterToHWCM, cpu.par)

	y := cpu.scratch(tensor.Shape{g.N, g.OutH, g.OutW, g.M}, g.dtype)
	defer y.Release()
	conv2dChannelsLast(cpu, g, cfg, tensor.Data[T](x), tensor.Data[T](w), false, tensor.Data[T](bias), tensor.Data[T](y))

	// (N,out_h,out_w,M) -> (N,M,out_h,out_w)
	permute4(tensor.Data[T](output), tensor.Data[T](y), [4]int{g.N, g.OutH, g.OutW, g.M}, PermNHWCToNCHW, cpu.par)
}

func conv2dNHWC[T tensor.Float](cpu *CPUBackend, g convGeometry, cfg Conv2DConfig, input, filter, bias, output *tensor.RawTensor) {
	// (M,kh,kw,C) is already a row-major [M, K] matrix.
	conv2dChannelsLast(cpu, g, cfg, tensor.Data[T](input), tensor.Data[T](filter), true, tensor.Data[T](bias), tensor.Data[T](output))
}

// conv2dChannelsLast is the pipeline shared by both layouts:
//  1. im2col: x [N,H,W,C] -> patches [P, K]
//  2. gemm:   patches [P, K] @ filter [K, M] -> y [P, M]
//  3. bias:   y[p, m] += bias[m]
//
// with P = N*out_h*out_w and K = kernel_h*kernel_w*C. filterMK selects a
// [M, K] filter read transposed instead of a [K, M] one.
func conv2dChannelsLast[T tensor.Float](cpu *CPUBackend, g convGeometry, cfg Conv2DConfig, x, filter []T, filterMK bool, bias, y []T) {
	rows := g.rows()

	patches := cpu.scratch(tensor.Shape{rows, g.K}, g.dtype)
	defer patches.Release()
	col := tensor.Data[T](patches)

	im2col(col, x, g, cfg, cpu.par)
	gemm(y, col, filter, rows, g.K, g.M, filterMK)
	addBias(y, bias, rows, g.M, cpu.par)
}
