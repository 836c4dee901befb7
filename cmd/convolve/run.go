package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/born-ml/convolve/backend/cpu"
	"github.com/born-ml/convolve/tensor"
	"github.com/spf13/cobra"
)

type runOptions struct {
	layout     string
	dtype      string
	batch      int
	channels   int
	height     int
	width      int
	filters    int
	cfg        cpu.Conv2DConfig
	seed       uint64
	iterations int
	sequential bool
	check      bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{cfg: cpu.NewConv2DConfig(3, 3)}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convolve random data and report shape, checksum and timing",
		Example: `  convolve run --layout NHWC --channels 16 --filters 32 --kernel-h 3 --kernel-w 3 --pad-top 1 --pad-bottom 1
  convolve run --dtype float64 --stride-h 2 --stride-w 2 --check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConv(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.layout, "layout", "NCHW", "tensor layout: NCHW or NHWC")
	f.StringVar(&opts.dtype, "dtype", "float32", "element type: float32 or float64")
	f.IntVarP(&opts.batch, "batch", "n", 1, "batch size N")
	f.IntVarP(&opts.channels, "channels", "c", 3, "input channels C")
	f.IntVar(&opts.height, "height", 32, "input height H")
	f.IntVar(&opts.width, "width", 32, "input width W")
	f.IntVarP(&opts.filters, "filters", "m", 8, "output channels M")
	f.IntVar(&opts.cfg.KernelH, "kernel-h", 3, "kernel height")
	f.IntVar(&opts.cfg.KernelW, "kernel-w", 3, "kernel width")
	f.IntVar(&opts.cfg.StrideH, "stride-h", 1, "vertical stride")
	f.IntVar(&opts.cfg.StrideW, "stride-w", 1, "horizontal stride")
	f.IntVar(&opts.cfg.DilationH, "dilation-h", 1, "vertical dilation")
	f.IntVar(&opts.cfg.DilationW, "dilation-w", 1, "horizontal dilation")
	f.IntVar(&opts.cfg.PadTop, "pad-top", 0, "zero rows above the input")
	f.IntVar(&opts.cfg.PadBottom, "pad-bottom", 0, "zero rows below the input")
	f.IntVar(&opts.cfg.PadLeft, "pad-left", 0, "zero columns left of the input")
	f.IntVar(&opts.cfg.PadRight, "pad-right", 0, "zero columns right of the input")
	f.Uint64Var(&opts.seed, "seed", 1, "random seed")
	f.IntVar(&opts.iterations, "iterations", 1, "number of timed runs")
	f.BoolVar(&opts.sequential, "sequential", false, "disable goroutine fan-out in the backend")
	f.BoolVar(&opts.check, "check", false, "also run the other layout and compare results")
	return cmd
}

func runConv(cmd *cobra.Command, opts runOptions) error {
	layout, err := tensor.ParseLayout(opts.layout)
	if err != nil {
		return err
	}
	if opts.iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", opts.iterations)
	}

	par := cpu.DefaultParallelConfig()
	if opts.sequential {
		par.Enabled = false
	}
	backend := cpu.NewWithConfig(par)

	var p *problem
	switch opts.dtype {
	case "float32":
		p, err = newProblem[float32](opts)
	case "float64":
		p, err = newProblem[float64](opts)
	default:
		return fmt.Errorf("unknown dtype %q (want float32 or float64)", opts.dtype)
	}
	if err != nil {
		return err
	}

	slog.Debug("conv2d problem",
		"layout", layout, "dtype", opts.dtype,
		"input", p.shapeIn(layout), "filter", p.shapeFilter(layout), "config", fmt.Sprintf("%+v", opts.cfg))

	y, elapsed, err := p.run(backend, layout, opts.cfg, opts.iterations)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "layout:   %s\n", layout)
	fmt.Fprintf(out, "output:   %v %s\n", y.Shape(), y.DType())
	fmt.Fprintf(out, "checksum: %.6g\n", checksum(y))
	fmt.Fprintf(out, "time:     %v/iter over %d iter(s)\n", elapsed/time.Duration(opts.iterations), opts.iterations)

	if !opts.check {
		return nil
	}

	other := tensor.ChannelsLast
	if layout == tensor.ChannelsLast {
		other = tensor.ChannelsFirst
	}
	z, _, err := p.run(backend, other, opts.cfg, 1)
	if err != nil {
		return err
	}
	perm := cpu.PermNHWCToNCHW
	if other == tensor.ChannelsFirst {
		perm = cpu.PermNCHWToNHWC
	}
	z, err = backend.Permute4(z, perm)
	if err != nil {
		return err
	}

	diff := maxRelDiff(y, z)
	fmt.Fprintf(out, "check:    %s vs %s max relative difference %.3g\n", layout, other, diff)
	if diff > 1e-5 {
		return fmt.Errorf("layouts disagree: max relative difference %.3g exceeds 1e-5", diff)
	}
	return nil
}

// problem holds channel-first input, filter and bias; the other layout is
// derived on demand.
type problem struct {
	input, filter, bias *tensor.RawTensor
}

func newProblem[T tensor.Float](opts runOptions) (*problem, error) {
	r := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	random := func(shape tensor.Shape) (*tensor.RawTensor, error) {
		data := make([]T, shape.NumElements())
		for i := range data {
			data[i] = T(r.Float64()*2 - 1)
		}
		return tensor.FromSlice(data, shape)
	}

	input, err := random(tensor.Shape{opts.batch, opts.channels, opts.height, opts.width})
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	filter, err := random(tensor.Shape{opts.filters, opts.channels, opts.cfg.KernelH, opts.cfg.KernelW})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	bias, err := random(tensor.Shape{opts.filters})
	if err != nil {
		return nil, fmt.Errorf("bias: %w", err)
	}
	return &problem{input: input, filter: filter, bias: bias}, nil
}

func (p *problem) shapeIn(layout tensor.Layout) tensor.Shape {
	s := p.input.Shape()
	if layout == tensor.ChannelsLast {
		return tensor.Shape{s[0], s[2], s[3], s[1]}
	}
	return s
}

func (p *problem) shapeFilter(layout tensor.Layout) tensor.Shape {
	s := p.filter.Shape()
	if layout == tensor.ChannelsLast {
		return tensor.Shape{s[0], s[2], s[3], s[1]}
	}
	return s
}

// run convolves the problem in the given layout iterations times and returns
// the output together with the total time spent inside Conv2D.
func (p *problem) run(backend *cpu.Backend, layout tensor.Layout, cfg cpu.Conv2DConfig, iterations int) (*tensor.RawTensor, time.Duration, error) {
	input, filter := p.input, p.filter
	if layout == tensor.ChannelsLast {
		var err error
		if input, err = backend.Permute4(p.input, cpu.PermNCHWToNHWC); err != nil {
			return nil, 0, err
		}
		defer input.Release()
		if filter, err = backend.Permute4(p.filter, cpu.PermNCHWToNHWC); err != nil {
			return nil, 0, err
		}
		defer filter.Release()
	}

	y, err := backend.NewConv2DOutput(input, filter, cfg, layout)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := backend.Conv2D(input, filter, p.bias, y, cfg, layout); err != nil {
			return nil, 0, err
		}
	}
	return y, time.Since(start), nil
}

func values(t *tensor.RawTensor) []float64 {
	if t.DType() == tensor.Float64 {
		return t.AsFloat64()
	}
	src := t.AsFloat32()
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

func checksum(t *tensor.RawTensor) float64 {
	var sum float64
	for _, v := range values(t) {
		sum += v
	}
	return sum
}

func maxRelDiff(a, b *tensor.RawTensor) float64 {
	av, bv := values(a), values(b)
	var worst float64
	for i := range av {
		d := math.Abs(av[i]-bv[i]) / math.Max(1, math.Abs(av[i]))
		worst = math.Max(worst, d)
	}
	return worst
}
