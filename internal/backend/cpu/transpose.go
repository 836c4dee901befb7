package cpu

import (
	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
	"github.com/pkg/errors"
)

// Axis permutations used by the layout normalizer. Axis i of the result is
// axis perm[i] of the source.
var (
	// PermNCHWToNHWC moves channels last: (N,C,H,W) -> (N,H,W,C).
	// Applied to a channel-first filter it gives (M,kh,kw,C), the channel-last filter order.
	PermNCHWToNHWC = [4]int{0, 2, 3, 1}
	// PermNHWCToNCHW moves channels back: (N,H,W,C) -> (N,C,H,W).
	PermNHWCToNCHW = [4]int{0, 3, 1, 2}
	// PermFilterToHWCM lays a (M,C,kh,kw) filter out as a [kh*kw*C, M] matrix.
	PermFilterToHWCM = [4]int{2, 3, 1, 0}
)

// Permute4 returns a new tensor holding x with its axes reordered by perm.
func (cpu *CPUBackend) Permute4(x *tensor.RawTensor, perm [4]int) (*tensor.RawTensor, error) {
	if x == nil || len(x.Shape()) != 4 {
		return nil, errors.Wrap(ErrShape, "permute4: input must be a rank-4 tensor")
	}
	outShape, err := x.Shape().Permute(perm[:])
	if err != nil {
		return nil, errors.Wrap(ErrShape, err.Error())
	}
	out := cpu.scratch(outShape, x.DType())

	dims := [4]int{x.Shape()[0], x.Shape()[1], x.Shape()[2], x.Shape()[3]}
	switch x.DType() {
	case tensor.Float32:
		permute4(tensor.Data[float32](out), tensor.Data[float32](x), dims, perm, cpu.par)
	case tensor.Float64:
		permute4(tensor.Data[float64](out), tensor.Data[float64](x), dims, perm, cpu.par)
	}
	return out, nil
}

// permute4 writes src, a dense row-major tensor of size dims, into dst with
// axis i of dst taken from axis perm[i] of src. dst is walked sequentially;
// src is gathered through its strides.
func permute4[T tensor.Float](dst, src []T, dims, perm [4]int, cfg parallel.Config) {
	srcStrides := [4]int{dims[1] * dims[2] * dims[3], dims[2] * dims[3], dims[3], 1}

	var outDims, step [4]int
	for i, p := range perm {
		outDims[i] = dims[p]
		step[i] = srcStrides[p]
	}

	inner := outDims[2] * outDims[3]
	parallel.For(outDims[0]*outDims[1], func(ab int) {
		a, b := ab/outDims[1], ab%outDims[1]
		base := a*step[0] + b*step[1]
		o := ab * inner
		for c := 0; c < outDims[2]; c++ {
			s := base + c*step[2]
			for d := 0; d < outDims[3]; d++ {
				dst[o] = src[s]
				o++
				s += step[3]
			}
		}
	}, cfg)
}
