package cpu

import (
	"testing"

	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermute4_NCHWToNHWC(t *testing.T) {
	// [1, 2, 2, 3]: x[n][c][h][w] = 100*c + 10*h + w
	src := make([]float32, 12)
	for c := 0; c < 2; c++ {
		for h := 0; h < 2; h++ {
			for w := 0; w < 3; w++ {
				src[(c*2+h)*3+w] = float32(100*c + 10*h + w)
			}
		}
	}

	dst := make([]float32, 12)
	permute4(dst, src, [4]int{1, 2, 2, 3}, PermNCHWToNHWC, parallel.Sequential())

	assert.Equal(t, []float32{
		0, 100, 1, 101, 2, 102,
		10, 110, 11, 111, 12, 112,
	}, dst)
}

func TestPermute4_FilterToHWCM(t *testing.T) {
	// [M=2, C=2, kh=1, kw=2]: f[m][c][0][kw] = 1000*m + 10*c + kw
	src := []float64{
		0, 1, 10, 11,
		1000, 1001, 1010, 1011,
	}
	dst := make([]float64, 8)
	permute4(dst, src, [4]int{2, 2, 1, 2}, PermFilterToHWCM, parallel.Sequential())

	// [kh=1, kw=2, C=2, M=2]
	assert.Equal(t, []float64{
		0, 1000, 10, 1010,
		1, 1001, 11, 1011,
	}, dst)
}

func TestPermute4_RoundTrip(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1})
	x, err := tensor.NewRaw(tensor.Shape{2, 3, 4, 5}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	for i := range x.AsFloat64() {
		x.AsFloat64()[i] = float64(i)
	}

	nhwc, err := backend.Permute4(x, PermNCHWToNHWC)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 4, 5, 3}, nhwc.Shape())

	back, err := backend.Permute4(nhwc, PermNHWCToNCHW)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), back.Shape())
	assert.Equal(t, x.AsFloat64(), back.AsFloat64())
}

func TestPermute4_Invalid(t *testing.T) {
	backend := New()
	x, err := tensor.NewRaw(tensor.Shape{2, 3, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	_, err = backend.Permute4(x, PermNCHWToNHWC)
	require.ErrorIs(t, err, ErrShape)

	y, err := tensor.NewRaw(tensor.Shape{2, 3, 4, 5}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	_, err = backend.Permute4(y, [4]int{0, 0, 1, 2})
	require.ErrorIs(t, err, ErrShape)
}
