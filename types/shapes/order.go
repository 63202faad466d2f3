// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"
	"strconv"
)

// Order defines in which order the axes of a layout are traversed.
type Order int

const (
	// OrderC traverses the last axis fastest (row-major).
	OrderC Order = iota

	// OrderF traverses the first axis fastest (column-major).
	OrderF

	// OrderS follows the storage: the axis with the smallest stride is traversed fastest.
	// Axes of dimension 1 are always traversed slowest, their stride is irrelevant.
	OrderS
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case OrderC:
		return "C"
	case OrderF:
		return "F"
	case OrderS:
		return "S"
	}
	return "Order(" + strconv.Itoa(int(o)) + ")"
}

// AxesInOrder returns the axes of l from the slowest to the fastest varying one
// for the given traversal order.
func (l Layout) AxesInOrder(order Order) []int {
	axes := make([]int, l.Rank())
	for i := range axes {
		axes[i] = i
	}
	switch order {
	case OrderF:
		slices.Reverse(axes)
	case OrderS:
		slices.SortStableFunc(axes, func(a, b int) int {
			unitA, unitB := l.Dimensions[a] == 1, l.Dimensions[b] == 1
			switch {
			case unitA && !unitB:
				return -1
			case !unitA && unitB:
				return 1
			case unitA && unitB:
				return 0
			}
			// Larger strides first.
			return l.Strides[b] - l.Strides[a]
		})
	}
	return axes
}
