package cpu

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
)

func benchmarkConv2D(b *testing.B, backend *CPUBackend, layout tensor.Layout, n, c, h, w, m, k int) {
	r := rand.New(rand.NewPCG(1, 2))
	cfg := NewConv2DConfig(k, k).WithSymmetricPadding(k/2, k/2)

	xShape := tensor.Shape{n, c, h, w}
	fShape := tensor.Shape{m, c, k, k}
	if layout == tensor.ChannelsLast {
		xShape = tensor.Shape{n, h, w, c}
		fShape = tensor.Shape{m, k, k, c}
	}

	input, _ := tensor.NewRaw(xShape, tensor.Float32, tensor.CPU)
	filter, _ := tensor.NewRaw(fShape, tensor.Float32, tensor.CPU)
	bias, _ := tensor.NewRaw(tensor.Shape{m}, tensor.Float32, tensor.CPU)
	for _, raw := range []*tensor.RawTensor{input, filter, bias} {
		data := raw.AsFloat32()
		for i := range data {
			data[i] = r.Float32()
		}
	}
	output, err := backend.NewConv2DOutput(input, filter, cfg, layout)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := backend.Conv2D(input, filter, bias, output, cfg, layout); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConv2D(b *testing.B) {
	sizes := []struct {
		n, c, h, w, m, k int
	}{
		{1, 3, 32, 32, 16, 3},
		{8, 16, 28, 28, 32, 3},
		{1, 64, 14, 14, 64, 1},
	}
	for _, s := range sizes {
		for _, layout := range []tensor.Layout{tensor.ChannelsFirst, tensor.ChannelsLast} {
			name := fmt.Sprintf("%s/N%d_C%d_%dx%d_M%d_K%d", layout, s.n, s.c, s.h, s.w, s.m, s.k)
			b.Run(name, func(b *testing.B) {
				benchmarkConv2D(b, New(), layout, s.n, s.c, s.h, s.w, s.m, s.k)
			})
			b.Run(name+"/sequential", func(b *testing.B) {
				benchmarkConv2D(b, NewWithConfig(parallel.Sequential()), layout, s.n, s.c, s.h, s.w, s.m, s.k)
			})
		}
	}
}
