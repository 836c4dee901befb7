package cpu

import (
	"github.com/born-ml/convolve/internal/tensor"
	"github.com/pkg/errors"
)

// convGeometry is the validated size information of one Conv2D call.
type convGeometry struct {
	N, H, W, C int // input batch, height, width, channels
	M          int // output channels
	OutH, OutW int
	K          int // patch length: KernelH * KernelW * C
	dtype      tensor.DataType
}

// rows is the number of output positions, the row count of the patch matrix.
func (g convGeometry) rows() int {
	return g.N * g.OutH * g.OutW
}

// validateConv2D runs every precondition check before any element is read.
//
// Expected shapes:
//
//	ChannelsFirst: input (N,C,H,W)  filter (M,C,kh,kw)  output (N,M,out_h,out_w)
//	ChannelsLast:  input (N,H,W,C)  filter (M,kh,kw,C)  output (N,out_h,out_w,M)
//	bias (M) for both.
func validateConv2D(input, filter, bias, output *tensor.RawTensor, cfg Conv2DConfig, layout tensor.Layout) (convGeometry, error) {
	var g convGeometry

	if !layout.Valid() {
		return g, errors.Wrapf(ErrConfig, "unknown layout %v", layout)
	}
	if err := cfg.Validate(); err != nil {
		return g, err
	}
	if input == nil || filter == nil || output == nil {
		return g, errors.Wrap(ErrShape, "input, filter and output tensors are required")
	}
	if bias == nil {
		return g, errors.Wrap(ErrBiasShape, "bias tensor is required")
	}

	xs := input.Shape()
	if len(xs) != 4 {
		return g, errors.Wrapf(ErrShape, "input must be rank 4 %s, got %v", layout, xs)
	}
	if layout == tensor.ChannelsFirst {
		g.N, g.C, g.H, g.W = xs[0], xs[1], xs[2], xs[3]
	} else {
		g.N, g.H, g.W, g.C = xs[0], xs[1], xs[2], xs[3]
	}

	fs := filter.Shape()
	if len(fs) != 4 {
		return g, errors.Wrapf(ErrShape, "filter must be rank 4, got %v", fs)
	}
	g.M = fs[0]
	var fc, fkh, fkw int
	if layout == tensor.ChannelsFirst {
		fc, fkh, fkw = fs[1], fs[2], fs[3]
	} else {
		fkh, fkw, fc = fs[1], fs[2], fs[3]
	}
	if fc != g.C {
		return g, errors.Wrapf(ErrShape, "filter %v has %d input channels, input %v has %d", fs, fc, xs, g.C)
	}
	if fkh != cfg.KernelH || fkw != cfg.KernelW {
		return g, errors.Wrapf(ErrShape, "filter %v has kernel %dx%d, config wants %dx%d",
			fs, fkh, fkw, cfg.KernelH, cfg.KernelW)
	}

	bs := bias.Shape()
	if len(bs) != 1 {
		return g, errors.Wrapf(ErrBiasShape, "bias must be rank 1, got %v", bs)
	}
	if bs[0] != g.M {
		return g, errors.Wrapf(ErrBiasShape, "bias length %d does not match %d output channels", bs[0], g.M)
	}

	want, err := cfg.OutputShape(xs, layout, g.M)
	if err != nil {
		return g, err
	}
	if !output.Shape().Equal(want) {
		return g, errors.Wrapf(ErrOutputSize, "output shape %v, want %v", output.Shape(), want)
	}
	if layout == tensor.ChannelsFirst {
		g.OutH, g.OutW = want[2], want[3]
	} else {
		g.OutH, g.OutW = want[1], want[2]
	}

	g.dtype = input.DType()
	for _, t := range []struct {
		name string
		raw  *tensor.RawTensor
	}{{"filter", filter}, {"bias", bias}, {"output", output}} {
		if t.raw.DType() != g.dtype {
			return g, errors.Wrapf(ErrDType, "%s is %s, input is %s", t.name, t.raw.DType(), g.dtype)
		}
	}

	g.K = cfg.KernelH * cfg.KernelW * g.C
	return g, nil
}
