package cpu

import (
	"testing"

	"github.com/born-ml/convolve/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geometryFor(t *testing.T, n, h, w, c int, cfg Conv2DConfig) convGeometry {
	t.Helper()
	outH, outW := cfg.OutputSize(h, w)
	require.Positive(t, outH)
	require.Positive(t, outW)
	return convGeometry{
		N: n, H: h, W: w, C: c,
		OutH: outH, OutW: outW,
		K: cfg.KernelH * cfg.KernelW * c,
	}
}

// TestIm2col_Ordering pins the column order to kernel row, kernel column,
// then channel fastest.
func TestIm2col_Ordering(t *testing.T) {
	// NHWC [1, 2, 2, 2]: x[h][w][c] = 100*h + 10*w + c
	x := []float32{0, 1, 10, 11, 100, 101, 110, 111}
	cfg := NewConv2DConfig(2, 2)
	g := geometryFor(t, 1, 2, 2, 2, cfg)
	require.Equal(t, 1, g.rows())

	col := make([]float32, g.rows()*g.K)
	im2col(col, x, g, cfg, parallel.Sequential())

	assert.Equal(t, x, col)
}

func TestIm2col_PaddingTaps(t *testing.T) {
	// NHWC [1, 2, 2, 1]
	x := []float64{1, 2, 3, 4}
	cfg := NewConv2DConfig(2, 2).WithSymmetricPadding(1, 1)
	g := geometryFor(t, 1, 2, 2, 1, cfg)
	require.Equal(t, 3, g.OutH)
	require.Equal(t, 3, g.OutW)

	col := make([]float64, g.rows()*g.K)
	for i := range col {
		col[i] = -1 // every slot must be overwritten
	}
	im2col(col, x, g, cfg, parallel.Sequential())

	assert.Equal(t, []float64{
		0, 0, 0, 1, // (0,0)
		0, 0, 1, 2, // (0,1)
		0, 0, 2, 0, // (0,2)
		0, 1, 0, 3, // (1,0)
		1, 2, 3, 4, // (1,1)
		2, 0, 4, 0, // (1,2)
		0, 3, 0, 0, // (2,0)
		3, 4, 0, 0, // (2,1)
		4, 0, 0, 0, // (2,2)
	}, col)
}

func TestIm2col_DilatedRowFullyOutside(t *testing.T) {
	// NHWC [1, 3, 3, 2]
	x := make([]float32, 18)
	for i := range x {
		x[i] = float32(i + 1)
	}
	cfg := NewConv2DConfig(2, 2).WithDilation(2, 2).WithPadding(4, 0, 0, 0)
	g := geometryFor(t, 1, 3, 3, 2, cfg)
	// out_h = (3+4-2-1)/1+1 = 5, out_w = (3-2-1)/1+1 = 1
	require.Equal(t, 5, g.OutH)
	require.Equal(t, 1, g.OutW)

	col := make([]float32, g.rows()*g.K)
	for i := range col {
		col[i] = -1
	}
	im2col(col, x, g, cfg, parallel.Sequential())

	// Rows oh=0,1 read ih in {-4,-2} and {-3,-1}: entirely padding.
	for i, v := range col[:2*g.K] {
		require.Zero(t, v, "col[%d]", i)
	}
	// Row oh=4 reads ih 0 and 2, iw 0 and 2.
	last := col[4*g.K:]
	assert.Equal(t, []float32{1, 2, 5, 6, 13, 14, 17, 18}, last)
}

func TestIm2col_BatchRowsAndParallelMatchSequential(t *testing.T) {
	const n, h, w, c = 3, 7, 6, 2
	x := make([]float64, n*h*w*c)
	for i := range x {
		x[i] = float64(i)
	}
	cfg := NewConv2DConfig(3, 2).WithStride(2, 1).WithPadding(1, 1, 0, 1)
	g := geometryFor(t, n, h, w, c, cfg)

	sequential := make([]float64, g.rows()*g.K)
	im2col(sequential, x, g, cfg, parallel.Sequential())

	concurrent := make([]float64, g.rows()*g.K)
	im2col(concurrent, x, g, cfg, parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2})
	assert.Equal(t, sequential, concurrent)

	// First row of the second image starts at input offset h*w*c.
	row := g.OutH * g.OutW
	first := sequential[row*g.K : row*g.K+g.K]
	// oh=0 reads ih -1 (padding) then 0 and 1 for kernel rows 1 and 2.
	assert.Equal(t, []float64{0, 0, 0, 0}, first[:2*c])
	assert.Equal(t, x[h*w*c:h*w*c+2*c], first[2*c:4*c])
}
