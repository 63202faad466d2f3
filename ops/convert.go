// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/gomlx/darray/types/storage"
)

// floats are the element types of the floating-point only kernels.
type floats interface {
	float32 | float64
}

// FromFloat64 converts an operator parameter to the element type T.
//
// For integer types the value is truncated toward zero and saturated to the range of T,
// and NaN becomes the integer NaN sentinel (the lowest value, see storage.NaN).
// For float32, values beyond its range become infinities.
func FromFloat64[T storage.Supported](x float64) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		if math.IsNaN(x) {
			return storage.NaN[T]()
		}
		return any(int8(math.Max(math.MinInt8, math.Min(math.MaxInt8, math.Trunc(x))))).(T)
	case int32:
		if math.IsNaN(x) {
			return storage.NaN[T]()
		}
		return any(int32(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(x))))).(T)
	case float32:
		return any(float32(x)).(T)
	}
	return any(x).(T)
}

// mathFn lifts a float64 function of package math to T.
func mathFn[T floats](fn func(float64) float64) func(T) T {
	var zero T
	if _, ok := any(zero).(float64); ok {
		return any(fn).(func(T) T)
	}
	return func(x T) T { return T(fn(float64(x))) }
}
