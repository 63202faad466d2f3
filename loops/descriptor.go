// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package loops builds the iteration plans used by the operators in package ops.
//
// A Descriptor reduces the traversal of an N-dimensional strided layout to two nested
// loops: an outer loop over a list of starting positions (Offsets) and an inner loop
// of Bound elements separated by Step positions. The inner loop is split into a vector
// phase [0, SimdBound) processed SimdLen elements at a time, and a scalar remainder.
package loops

import (
	"iter"
	"math"
	"strconv"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/shapes"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Descriptor is the iteration plan of one traversal. Treat it as immutable: build a new one
// for each traversal instead of changing its fields.
type Descriptor struct {
	// Offsets are the starting positions of each inner loop, in visiting order.
	Offsets []int

	// Bound is the number of elements of each inner loop.
	Bound int

	// Step is the distance, in storage positions, between two elements of an inner loop.
	Step int

	// SimdLen is the number of vector lanes for the dtype.
	SimdLen int

	// SimdBound is the largest multiple of SimdLen <= Bound, or 0 if the inner loop
	// cannot be vectorized.
	SimdBound int

	simdIdx hwy.Vec[int32]
}

// Strategy is the iteration strategy of a Descriptor.
type Strategy int

const (
	// StrategyGeneric processes every element with scalar code.
	StrategyGeneric Strategy = iota

	// StrategyUnit uses contiguous vector loads and stores.
	StrategyUnit

	// StrategyStep uses gathers and scatters with the lane pattern SimdIdx.
	StrategyStep
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategyGeneric:
		return "Generic"
	case StrategyUnit:
		return "Unit"
	case StrategyStep:
		return "Step"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// New creates a Descriptor for elements of the given dtype.
//
// The vector phase is disabled (SimdBound == 0) if SIMD is disabled, if step < 1, or if
// the lane pattern [0, step, ..., step*(SimdLen-1)] doesn't fit an int32.
func New(dtype dtypes.DType, offsets []int, bound, step int) Descriptor {
	switch dtype {
	case dtypes.Int8, dtypes.Int32, dtypes.Float32, dtypes.Float64:
	default:
		exceptions.Panicf("loops.New(): dtype %s not supported", dtype)
	}
	d := Descriptor{
		Offsets: offsets,
		Bound:   bound,
		Step:    step,
		SimdLen: lanesOf(dtype),
	}
	if simd.Enabled() && step >= 1 && int64(step)*int64(d.SimdLen-1) <= math.MaxInt32 {
		d.SimdBound = bound - bound%d.SimdLen
		d.simdIdx = hwy.IndicesStride[int32](d.SimdLen, 0, int32(step))
	}
	return d
}

// lanesOf returns the number of lanes of the hwy vectors of dtype.
func lanesOf(dtype dtypes.DType) int {
	switch dtype {
	case dtypes.Int8:
		return hwy.MaxLanes[int8]()
	case dtypes.Int32:
		return hwy.MaxLanes[int32]()
	case dtypes.Float32:
		return hwy.MaxLanes[float32]()
	}
	return hwy.MaxLanes[float64]()
}

// Of returns the Descriptor that visits every element of layout in the given order.
//
// Axes of dimension 1 are ignored, and consecutive axes whose strides chain are merged
// into one, which doesn't change the visiting order. A rank-0 layout has one offset with
// Bound 1. An empty layout has no offsets.
func Of(layout shapes.Layout, order shapes.Order) Descriptor {
	if !layout.Ok() {
		exceptions.Panicf("loops.Of(): invalid layout %s", layout)
	}
	return build(layout.AxesInOrder(order), layout)[0]
}

// OfPair returns the Descriptors that visit the elements of a and b side by side: the
// n-th position visited in a holds the element with the same indices as the n-th
// position visited in b. The axes order is derived from a.
func OfPair(a, b shapes.Layout, order shapes.Order) (Descriptor, Descriptor, error) {
	if !a.Ok() || !b.Ok() {
		return Descriptor{}, Descriptor{}, errors.Errorf("loops.OfPair(%s, %s): invalid layout", a, b)
	}
	if !a.EqualDimensions(b) {
		return Descriptor{}, Descriptor{}, errors.Errorf("loops.OfPair(%s, %s): dimensions don't match", a, b)
	}
	ds := build(a.AxesInOrder(order), a, b)
	return ds[0], ds[1], nil
}

// build creates one Descriptor per layout, all sharing the same axes (slowest first),
// the same merges and hence the same number of offsets and bound.
func build(axes []int, layouts ...shapes.Layout) []Descriptor {
	first := layouts[0]
	results := make([]Descriptor, len(layouts))
	if first.Size() == 0 {
		for i, l := range layouts {
			results[i] = New(l.DType, nil, 0, 1)
		}
		return results
	}

	var dims []int
	strides := make([][]int, len(layouts))
	for _, axis := range axes {
		if first.Dimensions[axis] == 1 {
			continue
		}
		dims = append(dims, first.Dimensions[axis])
		for i, l := range layouts {
			strides[i] = append(strides[i], l.Strides[axis])
		}
	}

	// Merge the innermost axis with its outer neighbour while the strides chain, in all layouts.
	for len(dims) > 1 {
		n := len(dims)
		canMerge := true
		for i := range layouts {
			if strides[i][n-2] != dims[n-1]*strides[i][n-1] {
				canMerge = false
				break
			}
		}
		if !canMerge {
			break
		}
		dims[n-2] *= dims[n-1]
		dims = dims[:n-1]
		for i := range layouts {
			strides[i][n-2] = strides[i][n-1]
			strides[i] = strides[i][:n-1]
		}
	}

	for i, l := range layouts {
		if len(dims) == 0 {
			results[i] = New(l.DType, []int{l.Offset}, 1, 1)
			continue
		}
		inner := len(dims) - 1
		results[i] = New(l.DType, outerOffsets(l.Offset, dims[:inner], strides[i][:inner]), dims[inner], strides[i][inner])
	}
	return results
}

// outerOffsets enumerates the positions of all index combinations of the given axes,
// the last axis varying fastest.
func outerOffsets(base int, dims, strides []int) []int {
	count := 1
	for _, dim := range dims {
		count *= dim
	}
	offsets := make([]int, 0, count)
	counter := make([]int, len(dims))
	pos := base
	for {
		offsets = append(offsets, pos)
		axis := len(dims) - 1
		for ; axis >= 0; axis-- {
			counter[axis]++
			pos += strides[axis]
			if counter[axis] < dims[axis] {
				break
			}
			pos -= counter[axis] * strides[axis]
			counter[axis] = 0
		}
		if axis < 0 {
			break
		}
	}
	return offsets
}

// Strategy returns the iteration strategy to use for the Descriptor.
func (d Descriptor) Strategy() Strategy {
	switch {
	case d.SimdBound > 0 && d.Step == 1:
		return StrategyUnit
	case d.SimdBound > 0 && d.Step > 1:
		return StrategyStep
	}
	return StrategyGeneric
}

// SimdIdx returns the lane pattern [0, Step, 2*Step, ...] used to gather and scatter vectors.
// It has no lanes if the Descriptor has no vector phase.
func (d Descriptor) SimdIdx() hwy.Vec[int32] { return d.simdIdx }

// Size returns the total number of visited elements.
func (d Descriptor) Size() int { return len(d.Offsets) * d.Bound }

// WithoutSimd returns a copy of the Descriptor with the vector phase disabled, so it is
// always traversed with StrategyGeneric.
func (d Descriptor) WithoutSimd() Descriptor {
	d.SimdBound = 0
	d.simdIdx = hwy.Vec[int32]{}
	return d
}

// Split partitions the offsets in at most n contiguous chunks of about the same size.
// Every chunk keeps the inner loop parameters of d. It returns no chunks if d has no offsets.
//
// If d has a single offset, as contiguous layouts do, the inner loop is split instead:
// chunks cover consecutive ranges of the inner loop, each a multiple of SimdLen elements
// except for the last one.
func (d Descriptor) Split(n int) []Descriptor {
	if n < 1 {
		exceptions.Panicf("Descriptor.Split(%d): number of chunks must be >= 1", n)
	}
	numOffsets := len(d.Offsets)
	if numOffsets == 1 && n > 1 {
		return d.splitInner(n)
	}
	n = min(n, numOffsets)
	chunks := make([]Descriptor, 0, n)
	start := 0
	for i := range n {
		end := start + (numOffsets-start)/(n-i)
		chunk := d
		chunk.Offsets = d.Offsets[start:end]
		chunks = append(chunks, chunk)
		start = end
	}
	return chunks
}

func (d Descriptor) splitInner(n int) []Descriptor {
	size := (d.Bound + n - 1) / n
	if rem := size % d.SimdLen; rem != 0 {
		size += d.SimdLen - rem
	}
	chunks := make([]Descriptor, 0, n)
	for start := 0; start < d.Bound; start += size {
		chunk := d
		chunk.Offsets = []int{d.Offsets[0] + start*d.Step}
		chunk.Bound = min(size, d.Bound-start)
		if d.SimdBound > 0 {
			chunk.SimdBound = chunk.Bound - chunk.Bound%d.SimdLen
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Positions iterates over the storage positions in visiting order: offsets in order and,
// for each offset, the inner loop in increasing index.
func (d Descriptor) Positions() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, offset := range d.Offsets {
			pos := offset
			for range d.Bound {
				if !yield(pos) {
					return
				}
				pos += d.Step
			}
		}
	}
}
