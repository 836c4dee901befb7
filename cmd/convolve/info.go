package main

import (
	"fmt"
	"runtime"

	"github.com/born-ml/convolve/backend/cpu"
	"github.com/spf13/cobra"
	xcpu "golang.org/x/sys/cpu"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show backend, parallelism and CPU feature information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			par := cpu.DefaultParallelConfig()

			fmt.Fprintf(out, "backend:     %s\n", cpu.New().Name())
			fmt.Fprintf(out, "platform:    %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
			fmt.Fprintf(out, "cpus:        %d\n", runtime.NumCPU())
			fmt.Fprintf(out, "parallel:    enabled=%t workers=%d min_chunk=%d\n",
				par.Enabled, par.NumWorkers, par.MinChunkSize)
			fmt.Fprintf(out, "cpu features: %s\n", cpuFeatures())
		},
	}
}

// cpuFeatures lists the SIMD extensions detected on this machine.
func cpuFeatures() string {
	var feats []string
	add := func(name string, ok bool) {
		if ok {
			feats = append(feats, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse4.1", xcpu.X86.HasSSE41)
		add("avx", xcpu.X86.HasAVX)
		add("avx2", xcpu.X86.HasAVX2)
		add("fma", xcpu.X86.HasFMA)
		add("avx512f", xcpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", xcpu.ARM64.HasASIMD)
		add("fphp", xcpu.ARM64.HasFPHP)
		add("sve", xcpu.ARM64.HasSVE)
	}
	if len(feats) == 0 {
		return "none detected"
	}
	return fmt.Sprint(feats)
}
