// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// darray_bench runs the operators of the catalogue over arrays with different physical
// layouts, checks that every layout yields the same values and prints the time per element.
//
// Usage:
//
//	darray_bench -size=256 -rank=2 -ops=exp,sum,binary:add -check
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/darray/ops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

var (
	flagSize   = flag.Int("size", 64, "Dimension of each axis of the benchmarked arrays.")
	flagRank   = flag.Int("rank", 2, "Number of axes of the benchmarked arrays.")
	flagRepeat = flag.Int("repeat", 10, "Number of times each operator is applied per layout.")
	flagOps    = flag.String("ops", "", "Comma-separated list of operators to run, either "+
		"\"kind:name\" (e.g. \"reduce:max\") or a bare name, matching every kind. Defaults to all operators.")
	flagDTypes = flag.String("dtypes", "int8,int32,float32,float64", "Comma-separated list of dtypes.")
	flagCheck  = flag.Bool("check", true, "Check that every layout yields the same values as the contiguous one. "+
		"If any differs the program exits with a non-zero status.")
	flagNoSimd = flag.Bool("nosimd", false, "Disables the vectorized loops in all layouts. "+
		"Set HWY_NO_SIMD to also run the vector operations in scalar mode.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagSize < 0 || *flagRank < 0 || *flagRepeat < 1 {
		klog.Errorf("Invalid -size=%d, -rank=%d or -repeat=%d", *flagSize, *flagRank, *flagRepeat)
		os.Exit(1)
	}
	if *flagNoSimd {
		simd.Disable()
	}
	klog.V(1).Infof("SIMD %s, %d bytes vectors, CPU features: %s", simd.Name(), hwy.CurrentWidth(), cpuFeatures())

	refs, err := selectOps(*flagOps)
	if err != nil {
		klog.Errorf("%v, valid names are unary:%v reduce:%v binary:%v", err, ops.UnaryNames(), ops.ReduceNames(), ops.BinaryNames())
		os.Exit(1)
	}
	dts, err := parseDTypes(*flagDTypes)
	if err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
	if failures := bench(refs, dts); failures > 0 && *flagCheck {
		klog.Errorf("%d case(s) failed", failures)
		os.Exit(1)
	}
}

func parseDTypes(list string) ([]dtypes.DType, error) {
	var dts []dtypes.DType
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "int8":
			dts = append(dts, dtypes.Int8)
		case "int32":
			dts = append(dts, dtypes.Int32)
		case "float32":
			dts = append(dts, dtypes.Float32)
		case "float64":
			dts = append(dts, dtypes.Float64)
		case "":
		default:
			return nil, errors.Errorf("unsupported dtype %q, valid values are int8, int32, float32 and float64", name)
		}
	}
	return dts, nil
}

// bench runs every operator and dtype over all the layouts, prints the results table and
// returns the number of failed cases.
func bench(refs []opRef, dts []dtypes.DType) (failures int) {
	bar := progressbar.NewOptions(len(refs)*len(dts),
		progressbar.OptionSetDescription("benchmarking"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	table := newResultsTable(
		[]string{"Operator", "DType", "Layout", "Strategy", "Elements", "ns/element", "Status"},
		lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Left)
	var seed uint64
	for _, ref := range refs {
		for _, dtype := range dts {
			seed++
			c := newBenchCase(ref, dtype, *flagSize, *flagRank, seed)
			var reference []float64
			for _, layoutName := range layoutNames {
				r := c.run(layoutName, *flagRepeat)
				status, failed := "ok", false
				switch {
				case errors.Is(r.err, ops.ErrOperationNotSupported):
					status = "n/a"
				case r.err != nil:
					status, failed = fmt.Sprintf("error: %v", r.err), true
				case reference == nil:
					reference = r.values
				case *flagCheck && !agree(dtype, reference, r.values):
					status, failed = "mismatch", true
				}
				if failed {
					failures++
				}
				size := c.input.Size()
				table.Row(failed, ref.String(), dtype.String(), layoutName, r.strategy.String(),
					humanize.Comma(int64(size)), nsPerElement(r.elapsed, size*(*flagRepeat)), status)
			}
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()

	fmt.Println(titleStyle.Render(fmt.Sprintf("darray operators (SIMD %s, CPU %s)", simd.Name(), cpuFeatures())))
	fmt.Println(table.Render())
	return
}

func nsPerElement(elapsed time.Duration, elements int) string {
	if elements == 0 {
		return "-"
	}
	return humanize.FormatFloat("#,###.##", float64(elapsed.Nanoseconds())/float64(elements))
}

// cpuFeatures lists the vector instruction sets reported by the CPU. hwy may use a narrower
// width, e.g. when built without GOEXPERIMENT=simd.
func cpuFeatures() string {
	var features []string
	for _, f := range []struct {
		name string
		has  bool
	}{
		{"sse2", cpu.X86.HasSSE2},
		{"avx2", cpu.X86.HasAVX2},
		{"avx512", cpu.X86.HasAVX512F},
		{"neon", cpu.ARM64.HasASIMD},
		{"sve", cpu.ARM64.HasSVE},
	} {
		if f.has {
			features = append(features, f.name)
		}
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ",")
}
