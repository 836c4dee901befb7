package cpu

import (
	"github.com/born-ml/convolve/internal/parallel"
	"github.com/born-ml/convolve/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// gemm computes c = a @ b, all dense row-major.
//
//	a: [m, k]
//	b: [k, n], or [n, k] read transposed when transB is set
//	c: [m, n], overwritten
//
// gonum's Gemm splits large products across goroutines on its own.
func gemm[T tensor.Float](c, a, b []T, m, k, n int, transB bool) {
	tB := blas.NoTrans
	bRows, bCols := k, n
	if transB {
		tB = blas.Trans
		bRows, bCols = n, k
	}

	switch a := any(a).(type) {
	case []float32:
		blas32.Gemm(blas.NoTrans, tB, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
			blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float32)},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float32)})
	case []float64:
		blas64.Gemm(blas.NoTrans, tB, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
			blas64.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float64)},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float64)})
	}
}

// addBias adds bias[j] to column j of every row of y ([rows, m]).
func addBias[T tensor.Float](y, bias []T, rows, m int, par parallel.Config) {
	parallel.ForRange(rows, func(start, end int) {
		for r := start; r < end; r++ {
			row := y[r*m : (r+1)*m]
			for j, b := range bias {
				row[j] += b
			}
		}
	}, par)
}
