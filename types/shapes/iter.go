// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import "iter"

// Iter iterates over all the indices of the layout, in row-major order.
//
// The yielded slice is owned by Iter and reused between iterations: don't change or keep
// it inside the loop, clone it instead.
func (l Layout) Iter() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		l.walk(func(indices []int, _ int) bool { return yield(indices) })
	}
}

// Positions iterates over the storage positions of all the elements, in row-major (logical)
// order.
func (l Layout) Positions() iter.Seq[int] {
	return func(yield func(int) bool) {
		l.walk(func(_ []int, pos int) bool { return yield(pos) })
	}
}

// walk calls fn with the indices and the storage position of every element in row-major
// order, until fn returns false.
//
// The position is carried along with the indices: incrementing an axis adds its stride,
// and wrapping it back to 0 subtracts dim*stride. Axes of dimension 1 never move.
func (l Layout) walk(fn func(indices []int, pos int) bool) {
	if !l.Ok() {
		return
	}
	var moving []int
	for axis, dim := range l.Dimensions {
		if dim <= 0 {
			return
		}
		if dim > 1 {
			moving = append(moving, axis)
		}
	}

	indices := make([]int, l.Rank())
	pos := l.Offset
	for {
		if !fn(indices, pos) {
			return
		}
		i := len(moving) - 1
		for ; i >= 0; i-- {
			axis := moving[i]
			indices[axis]++
			pos += l.Strides[axis]
			if indices[axis] < l.Dimensions[axis] {
				break
			}
			pos -= indices[axis] * l.Strides[axis]
			indices[axis] = 0
		}
		if i < 0 {
			return
		}
	}
}
