package cpu

import (
	"github.com/born-ml/convolve/internal/tensor"
	"github.com/pkg/errors"
)

// Conv2DConfig holds the window geometry of a 2-D convolution.
// Height and width are configured independently; padding may be asymmetric.
//
// The zero value is not usable: build one with NewConv2DConfig.
type Conv2DConfig struct {
	KernelH, KernelW     int
	StrideH, StrideW     int
	DilationH, DilationW int
	PadTop, PadBottom    int
	PadLeft, PadRight    int
}

// NewConv2DConfig returns a config for a kernelH x kernelW window with
// stride 1, dilation 1 and no padding.
func NewConv2DConfig(kernelH, kernelW int) Conv2DConfig {
	return Conv2DConfig{
		KernelH:   kernelH,
		KernelW:   kernelW,
		StrideH:   1,
		StrideW:   1,
		DilationH: 1,
		DilationW: 1,
	}
}

// WithStride returns a copy of c with the given strides.
func (c Conv2DConfig) WithStride(h, w int) Conv2DConfig {
	c.StrideH, c.StrideW = h, w
	return c
}

// WithDilation returns a copy of c with the given dilations.
func (c Conv2DConfig) WithDilation(h, w int) Conv2DConfig {
	c.DilationH, c.DilationW = h, w
	return c
}

// WithPadding returns a copy of c with per-edge padding.
func (c Conv2DConfig) WithPadding(top, bottom, left, right int) Conv2DConfig {
	c.PadTop, c.PadBottom, c.PadLeft, c.PadRight = top, bottom, left, right
	return c
}

// WithSymmetricPadding pads h rows above and below and w columns left and right.
func (c Conv2DConfig) WithSymmetricPadding(h, w int) Conv2DConfig {
	return c.WithPadding(h, h, w, w)
}

// Validate checks that every field is in range.
func (c Conv2DConfig) Validate() error {
	switch {
	case c.KernelH < 1 || c.KernelW < 1:
		return errors.Wrapf(ErrConfig, "kernel %dx%d must be positive", c.KernelH, c.KernelW)
	case c.StrideH < 1 || c.StrideW < 1:
		return errors.Wrapf(ErrConfig, "stride %dx%d must be positive", c.StrideH, c.StrideW)
	case c.DilationH < 1 || c.DilationW < 1:
		return errors.Wrapf(ErrConfig, "dilation %dx%d must be positive", c.DilationH, c.DilationW)
	case c.PadTop < 0 || c.PadBottom < 0 || c.PadLeft < 0 || c.PadRight < 0:
		return errors.Wrapf(ErrConfig, "padding (t=%d b=%d l=%d r=%d) must be non-negative",
			c.PadTop, c.PadBottom, c.PadLeft, c.PadRight)
	}
	return nil
}

// OutputSize returns the spatial output size for an h x w input:
//
//	out = floor((in + pad_before + pad_after - dilation*(kernel-1) - 1) / stride) + 1
//
// A result below 1 means the dilated kernel does not fit the padded input.
func (c Conv2DConfig) OutputSize(h, w int) (outH, outW int) {
	outH = outputDim(h, c.PadTop, c.PadBottom, c.KernelH, c.StrideH, c.DilationH)
	outW = outputDim(w, c.PadLeft, c.PadRight, c.KernelW, c.StrideW, c.DilationW)
	return outH, outW
}

func outputDim(in, padBefore, padAfter, kernel, stride, dilation int) int {
	span := in + padBefore + padAfter - dilation*(kernel-1) - 1
	if span < 0 {
		return 0
	}
	return span/stride + 1
}

// OutputShape returns the output shape of convolving an input of the given
// shape and layout with outChannels filters.
func (c Conv2DConfig) OutputShape(input tensor.Shape, layout tensor.Layout, outChannels int) (tensor.Shape, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(input) != 4 {
		return nil, errors.Wrapf(ErrShape, "input must be rank 4, got rank %d %v", len(input), input)
	}
	if outChannels < 1 {
		return nil, errors.Wrapf(ErrShape, "output channel count %d must be positive", outChannels)
	}

	n, h, w, ok := spatialDims(input, layout)
	if !ok {
		return nil, errors.Wrapf(ErrConfig, "unknown layout %v", layout)
	}
	outH, outW := c.OutputSize(h, w)
	if outH < 1 || outW < 1 {
		return nil, errors.Wrapf(ErrConfig,
			"kernel %dx%d (dilation %dx%d) does not fit %dx%d input with padding (t=%d b=%d l=%d r=%d)",
			c.KernelH, c.KernelW, c.DilationH, c.DilationW, h, w, c.PadTop, c.PadBottom, c.PadLeft, c.PadRight)
	}

	if layout == tensor.ChannelsFirst {
		return tensor.Shape{n, outChannels, outH, outW}, nil
	}
	return tensor.Shape{n, outH, outW, outChannels}, nil
}

// spatialDims extracts batch, height and width from a rank-4 shape.
func spatialDims(s tensor.Shape, layout tensor.Layout) (n, h, w int, ok bool) {
	switch layout {
	case tensor.ChannelsFirst:
		return s[0], s[2], s[3], true
	case tensor.ChannelsLast:
		return s[0], s[1], s[2], true
	default:
		return 0, 0, 0, false
	}
}
