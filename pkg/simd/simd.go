// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simd

import "github.com/ajroetker/go-highway/hwy"

// lanes returns the values of v in a new slice.
func lanes[T hwy.Lanes](v hwy.Vec[T]) []T {
	values := make([]T, v.NumLanes())
	hwy.Store(v, values)
	return values
}

// Map applies fn to every lane.
//
// It is used for the transcendental functions, which are computed with the scalar Go math
// library so the vector results match the scalar ones exactly.
func Map[T hwy.Lanes](v hwy.Vec[T], fn func(T) T) hwy.Vec[T] {
	values := lanes(v)
	for i, x := range values {
		values[i] = fn(x)
	}
	return hwy.Load(values)
}

// Max returns the lane-wise maximum. A NaN in either operand yields NaN, as with the Go
// builtin max.
func Max[T hwy.Lanes](a, b hwy.Vec[T]) hwy.Vec[T] {
	return hwy.IfThenElse(hwy.Equal(a, a), hwy.Max(a, b), a)
}

// Min returns the lane-wise minimum. A NaN in either operand yields NaN, as with the Go
// builtin min.
func Min[T hwy.Lanes](a, b hwy.Vec[T]) hwy.Vec[T] {
	return hwy.IfThenElse(hwy.Equal(a, a), hwy.Min(a, b), a)
}

// ReduceMax returns the maximum lane value, or NaN if any lane is NaN.
func ReduceMax[T hwy.Lanes](v hwy.Vec[T]) T {
	if !hwy.Equal(v, v).AllTrue() {
		return firstNaN(v)
	}
	return hwy.ReduceMax(v)
}

// ReduceMin returns the minimum lane value, or NaN if any lane is NaN.
func ReduceMin[T hwy.Lanes](v hwy.Vec[T]) T {
	if !hwy.Equal(v, v).AllTrue() {
		return firstNaN(v)
	}
	return hwy.ReduceMin(v)
}

func firstNaN[T hwy.Lanes](v hwy.Vec[T]) T {
	values := lanes(v)
	for _, x := range values {
		if x != x {
			return x
		}
	}
	return values[0]
}

// ReduceMul multiplies all lanes, in increasing lane order. Integer lanes wrap around.
func ReduceMul[T hwy.Lanes](v hwy.Vec[T]) T {
	prod := T(1)
	for _, x := range lanes(v) {
		prod *= x
	}
	return prod
}
