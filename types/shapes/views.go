// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"

	"github.com/pkg/errors"
)

// The functions in this file derive new layouts over the same storage positions.
// None of them moves data.

// Transpose returns the layout with its axes permuted: axis i of the result is axis
// permutation[i] of l.
func (l Layout) Transpose(permutation ...int) (Layout, error) {
	if len(permutation) != l.Rank() {
		return Layout{}, errors.Errorf("Transpose(%v): permutation has %d axes, layout %s has rank %d",
			permutation, len(permutation), l, l.Rank())
	}
	seen := make([]bool, l.Rank())
	result := l.Clone()
	for i, axis := range permutation {
		if axis < 0 || axis >= l.Rank() || seen[axis] {
			return Layout{}, errors.Errorf("Transpose(%v): invalid permutation for rank %d", permutation, l.Rank())
		}
		seen[axis] = true
		result.Dimensions[i] = l.Dimensions[axis]
		result.Strides[i] = l.Strides[axis]
	}
	return result, nil
}

// Narrow restricts axis to the indices [start, end).
func (l Layout) Narrow(axis, start, end int) (Layout, error) {
	if axis < 0 || axis >= l.Rank() {
		return Layout{}, errors.Errorf("Narrow(axis=%d): axis out-of-bounds for layout %s", axis, l)
	}
	if start < 0 || end < start || end > l.Dimensions[axis] {
		return Layout{}, errors.Errorf("Narrow(axis=%d, %d, %d): invalid range for dimension %d",
			axis, start, end, l.Dimensions[axis])
	}
	result := l.Clone()
	result.Offset += start * l.Strides[axis]
	result.Dimensions[axis] = end - start
	return result, nil
}

// Step keeps only every step-th index of axis, starting at 0.
func (l Layout) Step(axis, step int) (Layout, error) {
	if axis < 0 || axis >= l.Rank() {
		return Layout{}, errors.Errorf("Step(axis=%d): axis out-of-bounds for layout %s", axis, l)
	}
	if step < 1 {
		return Layout{}, errors.Errorf("Step(axis=%d, step=%d): step must be >= 1", axis, step)
	}
	result := l.Clone()
	result.Dimensions[axis] = (l.Dimensions[axis] + step - 1) / step
	result.Strides[axis] *= step
	return result, nil
}

// Reshape returns a contiguous layout with new dimensions over the same positions.
// Only contiguous layouts can be reshaped.
func (l Layout) Reshape(dimensions ...int) (Layout, error) {
	if !l.IsContiguous() {
		return Layout{}, errors.Errorf("Reshape(%v): layout %s is not contiguous", dimensions, l)
	}
	result := Make(l.DType, dimensions...)
	if result.Size() != l.Size() {
		return Layout{}, errors.Errorf("Reshape(%v): size %d differs from size %d of layout %s",
			dimensions, result.Size(), l.Size(), l)
	}
	result.Offset = l.Offset
	return result, nil
}

// Axis returns the rank-1 layout of the given axis, starting at the element with the
// given indices (the index of axis itself is ignored).
func (l Layout) Axis(axis int, indices ...int) Layout {
	indices = slices.Clone(indices)
	indices[axis] = 0
	return Layout{
		DType:      l.DType,
		Dimensions: []int{l.Dimensions[axis]},
		Strides:    []int{l.Strides[axis]},
		Offset:     l.Position(indices...),
	}
}
