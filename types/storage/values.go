// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package storage

import "math"

// Integer types have no NaN: their lowest representable value is used as the
// "missing value" sentinel instead.

// NaN returns the NaN sentinel of T: math.NaN() for floats, the lowest value for integers.
func NaN[T Supported]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(math.MinInt8)).(T)
	case int32:
		return any(int32(math.MinInt32)).(T)
	case float32:
		return any(float32(math.NaN())).(T)
	}
	return any(math.NaN()).(T)
}

// IsNaN reports whether v is the NaN sentinel of T.
func IsNaN[T Supported](v T) bool {
	switch v := any(v).(type) {
	case int8:
		return v == math.MinInt8
	case int32:
		return v == math.MinInt32
	case float32:
		return v != v
	case float64:
		return v != v
	}
	return false
}

// IsFloat reports whether T is a floating-point type.
func IsFloat[T Supported]() bool {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return true
	}
	return false
}

// Lowest returns the lowest value of T: -Inf for floats.
func Lowest[T Supported]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(math.MinInt8)).(T)
	case int32:
		return any(int32(math.MinInt32)).(T)
	case float32:
		return any(float32(math.Inf(-1))).(T)
	}
	return any(math.Inf(-1)).(T)
}

// Highest returns the highest value of T: +Inf for floats.
func Highest[T Supported]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(math.MaxInt8)).(T)
	case int32:
		return any(int32(math.MaxInt32)).(T)
	case float32:
		return any(float32(math.Inf(1))).(T)
	}
	return any(math.Inf(1)).(T)
}

// MaxFinite returns the largest finite value of T.
func MaxFinite[T Supported]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(math.MaxInt8)).(T)
	case int32:
		return any(int32(math.MaxInt32)).(T)
	case float32:
		return any(float32(math.MaxFloat32)).(T)
	}
	return any(float64(math.MaxFloat64)).(T)
}

// MinFinite returns the lowest finite value of T.
func MinFinite[T Supported]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(math.MinInt8)).(T)
	case int32:
		return any(int32(math.MinInt32)).(T)
	case float32:
		return any(float32(-math.MaxFloat32)).(T)
	}
	return any(float64(-math.MaxFloat64)).(T)
}
