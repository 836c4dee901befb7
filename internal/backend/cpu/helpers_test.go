package cpu

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/convolve/internal/tensor"
	"github.com/stretchr/testify/require"
)

// referenceConv2D is a direct nested-loop convolution on channel-first data.
// It shares no code with the im2col path.
//
// x: [n, c, h, w], f: [m, c, kh, kw], b: [m]. Returns y: [n, m, outH, outW].
func referenceConv2D(x []float64, n, c, h, w int, f []float64, m int, b []float64, cfg Conv2DConfig) (y []float64, outH, outW int) {
	outH = (h+cfg.PadTop+cfg.PadBottom-cfg.DilationH*(cfg.KernelH-1)-1)/cfg.StrideH + 1
	outW = (w+cfg.PadLeft+cfg.PadRight-cfg.DilationW*(cfg.KernelW-1)-1)/cfg.StrideW + 1
	y = make([]float64, n*m*outH*outW)

	for in := 0; in < n; in++ {
		for om := 0; om < m; om++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := b[om]
					for ic := 0; ic < c; ic++ {
						for kh := 0; kh < cfg.KernelH; kh++ {
							for kw := 0; kw < cfg.KernelW; kw++ {
								ih := oh*cfg.StrideH - cfg.PadTop + kh*cfg.DilationH
								iw := ow*cfg.StrideW - cfg.PadLeft + kw*cfg.DilationW
								if ih < 0 || ih >= h || iw < 0 || iw >= w {
									continue
								}
								xv := x[((in*c+ic)*h+ih)*w+iw]
								fv := f[((om*c+ic)*cfg.KernelH+kh)*cfg.KernelW+kw]
								sum += xv * fv
							}
						}
					}
					y[((in*m+om)*outH+oh)*outW+ow] = sum
				}
			}
		}
	}
	return y, outH, outW
}

// randomSlice returns deterministic values in [-1, 1).
func randomSlice(r *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()*2 - 1
	}
	return out
}

// rawFrom builds a tensor of dtype T from float64 test data.
func rawFrom[T tensor.Float](t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	conv := make([]T, len(data))
	for i, v := range data {
		conv[i] = T(v)
	}
	raw, err := tensor.FromSlice(conv, shape)
	require.NoError(t, err)
	return raw
}

// toFloat64 reads any float tensor as []float64.
func toFloat64(raw *tensor.RawTensor) []float64 {
	if raw.DType() == tensor.Float64 {
		return append([]float64(nil), raw.AsFloat64()...)
	}
	src := raw.AsFloat32()
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

// requireClose fails if any element differs by more than tol relative to
// max(1, |want|).
func requireClose(t *testing.T, want, got []float64, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		scale := math.Max(1, math.Abs(want[i]))
		if math.Abs(want[i]-got[i]) > tol*scale {
			t.Fatalf("element %d: want %v, got %v (tol %g)", i, want[i], got[i], tol)
		}
	}
}

func fill(raw *tensor.RawTensor, v float32) {
	data := raw.AsFloat32()
	for i := range data {
		data[i] = v
	}
}
