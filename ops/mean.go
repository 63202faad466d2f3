// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/gopjrt/dtypes"
)

// floatReduction is a floating-point only ReduceOp implemented by one generic function.
type floatReduction struct {
	name string
	f32  func(d loops.Descriptor, s *storage.Storage[float32]) float32
	f64  func(d loops.Descriptor, s *storage.Storage[float64]) float64
}

var _ ReduceOp = (*floatReduction)(nil)

func (op *floatReduction) Name() string       { return op.name }
func (op *floatReduction) FloatingOnly() bool { return true }

func (op *floatReduction) ReduceInt8(loops.Descriptor, *storage.Storage[int8]) (int8, error) {
	return 0, notSupported(op.name, dtypes.Int8)
}

func (op *floatReduction) ReduceInt32(loops.Descriptor, *storage.Storage[int32]) (int32, error) {
	return 0, notSupported(op.name, dtypes.Int32)
}

func (op *floatReduction) ReduceFloat32(d loops.Descriptor, s *storage.Storage[float32]) (float32, error) {
	return op.f32(d, s), nil
}

func (op *floatReduction) ReduceFloat64(d loops.Descriptor, s *storage.Storage[float64]) (float64, error) {
	return op.f64(d, s), nil
}

// ReduceMean returns the arithmetic mean. It is NaN for an empty descriptor.
//
// It uses two passes: a first estimate sum/n is corrected by the mean of the deviations
// from it, which compensates for most of the rounding of the first pass.
func ReduceMean() ReduceOp {
	return &floatReduction{name: "mean", f32: mean[float32], f64: mean[float64]}
}

func mean[T floats](d loops.Descriptor, s *storage.Storage[T]) T {
	n := T(d.Size())
	m := runReduce(d, s, nil, false, sumReducer[T]()) / n
	correction := runReduce(d, s, shiftKernel(-m), false, sumReducer[T]())
	return m + correction/n
}

// ReduceNanMean returns the mean of the non-NaN elements, with the same two passes as
// ReduceMean. It is NaN if there are no such elements.
func ReduceNanMean() ReduceOp {
	return &floatReduction{name: "nanmean", f32: nanMean[float32], f64: nanMean[float64]}
}

func nanMean[T floats](d loops.Descriptor, s *storage.Storage[T]) T {
	n := T(d.Size() - countNaN(d, s))
	m := runReduce(d, s, nil, false, skipNaN(sumReducer[T]())) / n
	correction := runReduce(d, s, shiftKernel(-m), false, skipNaN(sumReducer[T]()))
	return m + correction/n
}

// ReduceVarc returns the variance with ddof delta degrees of freedom: ddof=0 is the
// population variance and ddof=1 the unbiased sample variance.
//
// With c = x - mean, it computes (sum(c^2) - sum(c)^2/(n-ddof)) / (n-ddof), where the
// second term corrects the rounding of the mean. If initMean is not NaN it is used as the
// mean, instead of computing it with ReduceMean.
//
// It returns an error wrapping ErrInvalidParameter if ddof < 0.
func ReduceVarc(ddof int, initMean float64) (ReduceOp, error) {
	if ddof < 0 {
		return nil, invalidParameter("varc(ddof=%d): ddof must be >= 0", ddof)
	}
	return &floatReduction{
		name: "varc",
		f32: func(d loops.Descriptor, s *storage.Storage[float32]) float32 {
			return varc(d, s, ddof, float32(initMean))
		},
		f64: func(d loops.Descriptor, s *storage.Storage[float64]) float64 {
			return varc(d, s, ddof, initMean)
		},
	}, nil
}

func varc[T floats](d loops.Descriptor, s *storage.Storage[T], ddof int, m T) T {
	if m != m {
		m = mean(d, s)
	}
	sum2 := runReduce(d, s, squaredShiftKernel(-m), false, sumReducer[T]())
	sum1 := runReduce(d, s, shiftKernel(-m), false, sumReducer[T]())
	n := T(d.Size() - ddof)
	return (sum2 - sum1*sum1/n) / n
}

// shiftKernel returns x -> x+delta. NaN maps to NaN.
func shiftKernel[T floats](delta T) *unaryKernel[T] {
	vDelta := hwy.Set(delta)
	return newUnaryKernel(
		func(x T) T { return x + delta },
		func(v hwy.Vec[T]) hwy.Vec[T] { return hwy.Add(v, vDelta) })
}

// squaredShiftKernel returns x -> (x+delta)^2.
func squaredShiftKernel[T floats](delta T) *unaryKernel[T] {
	vDelta := hwy.Set(delta)
	return newUnaryKernel(
		func(x T) T {
			c := x + delta
			return c * c
		},
		func(v hwy.Vec[T]) hwy.Vec[T] {
			c := hwy.Add(v, vDelta)
			return hwy.Mul(c, c)
		})
}

// countNaN counts the NaN elements visited by d.
func countNaN[T floats](d loops.Descriptor, s *storage.Storage[T]) int {
	count := 0
	switch d.Strategy() {
	case loops.StrategyUnit:
		for _, p := range d.Offsets {
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				count += hwy.IsNaN(s.GetVector(p)).CountTrue()
				p += d.SimdLen
			}
			for ; i < d.Bound; i++ {
				count += isNaNCount(s.Get(p))
				p++
			}
		}
	case loops.StrategyStep:
		idx := d.SimdIdx()
		for _, p := range d.Offsets {
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				count += hwy.IsNaN(s.GatherVector(p, idx)).CountTrue()
				p += d.SimdLen * d.Step
			}
			for ; i < d.Bound; i++ {
				count += isNaNCount(s.Get(p))
				p += d.Step
			}
		}
	default:
		for _, p := range d.Offsets {
			for range d.Bound {
				count += isNaNCount(s.Get(p))
				p += d.Step
			}
		}
	}
	return count
}

func isNaNCount[T floats](x T) int {
	if math.IsNaN(float64(x)) {
		return 1
	}
	return 0
}
