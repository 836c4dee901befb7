package cpu

import (
	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
)

// im2col transforms a channel-last input into the patch matrix.
//
// Input:  x   [N, H, W, C]
// Output: col [N * out_h * out_w, kernel_h * kernel_w * C]
//
// Row (n, oh, ow) holds the receptive field of that output position with
// kernel row slowest, then kernel column, then channel fastest. The filter
// matrix must use the same (kh, kw, c) order or results are silently wrong.
//
// Tap (kh, kw) of row (n, oh, ow) reads
//
//	ih = oh*stride_h - pad_top  + kh*dilation_h
//	iw = ow*stride_w - pad_left + kw*dilation_w
//
// and contributes zeros when (ih, iw) lies outside the input. Every element
// of col is written, so col does not need to be cleared beforehand.
func im2col[T tensor.Float](col, x []T, g convGeometry, cfg Conv2DConfig, par parallel.Config) {
	tapLen := g.C
	rowLen := cfg.KernelW * tapLen

	parallel.ForRange(g.rows(), func(start, end int) {
		for row := start; row < end; row++ {
			ow := row % g.OutW
			oh := (row / g.OutW) % g.OutH
			n := row / (g.OutW * g.OutH)

			dst := col[row*g.K : (row+1)*g.K]
			hBase := oh*cfg.StrideH - cfg.PadTop
			wBase := ow*cfg.StrideW - cfg.PadLeft
			img := n * g.H * g.W * g.C

			idx := 0
			for kh := 0; kh < cfg.KernelH; kh++ {
				ih := hBase + kh*cfg.DilationH
				if ih < 0 || ih >= g.H {
					clear(dst[idx : idx+rowLen])
					idx += rowLen
					continue
				}
				for kw := 0; kw < cfg.KernelW; kw++ {
					iw := wBase + kw*cfg.DilationW
					if iw < 0 || iw >= g.W {
						clear(dst[idx : idx+tapLen])
					} else {
						src := img + (ih*g.W+iw)*g.C
						copy(dst[idx:idx+tapLen], x[src:src+tapLen])
					}
					idx += tapLen
				}
			}
		}
	}, par)
}
