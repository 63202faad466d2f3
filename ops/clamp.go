// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/types/storage"
)

// Clamp returns the operator that limits elements to the range [minValue, maxValue].
//
// Each bound is optional: a bound that converts (see FromFloat64) to the NaN sentinel of the
// dtype is disabled. So math.NaN() disables a bound for every dtype, and for integers so does
// the lowest value of the type. Elements below minValue are set to minValue, then elements
// above maxValue are set to maxValue. NaN elements are left unchanged.
//
// It returns an error wrapping ErrInvalidParameter if both bounds are set and minValue > maxValue.
func Clamp(minValue, maxValue float64) (*Elementwise, error) {
	if !math.IsNaN(minValue) && !math.IsNaN(maxValue) && minValue > maxValue {
		return nil, invalidParameter("clamp(min=%g, max=%g): min is greater than max", minValue, maxValue)
	}
	return &Elementwise{
		name:          "clamp",
		int8Kernel:    clampKernel(FromFloat64[int8](minValue), FromFloat64[int8](maxValue)),
		int32Kernel:   clampKernel(FromFloat64[int32](minValue), FromFloat64[int32](maxValue)),
		float32Kernel: clampKernel(FromFloat64[float32](minValue), FromFloat64[float32](maxValue)),
		float64Kernel: clampKernel(minValue, maxValue),
	}, nil
}

func clampKernel[T storage.Supported](minValue, maxValue T) *unaryKernel[T] {
	hasMin, hasMax := !storage.IsNaN(minValue), !storage.IsNaN(maxValue)
	if !hasMin && !hasMax {
		return newUnaryKernel(func(x T) T { return x }, func(v hwy.Vec[T]) hwy.Vec[T] { return v })
	}
	scalar := func(x T) T {
		if hasMin && x < minValue {
			x = minValue
		}
		if hasMax && x > maxValue {
			x = maxValue
		}
		return x
	}
	vector := func(v hwy.Vec[T]) hwy.Vec[T] {
		if hasMin {
			vMin := hwy.Set(minValue)
			v = hwy.IfThenElse(hwy.LessThan(v, vMin), vMin, v)
		}
		if hasMax {
			vMax := hwy.Set(maxValue)
			v = hwy.IfThenElse(hwy.GreaterThan(v, vMax), vMax, v)
		}
		return v
	}
	return newUnaryKernel(scalar, vector)
}
