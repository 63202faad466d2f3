/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package shapes defines Layout and associated tools.
//
// A Layout describes how the elements of a multi-dimensional array are placed in a flat
// storage: the DType of the elements, the dimension of each axis, the stride (in elements)
// of each axis and the position of the first element.
//
// Multiple layouts may point into the same storage: a transposed or narrowed array is just
// a different Layout over the same elements. Layouts never own data.
//
// ## Glossary
//
//   - Rank: number of axes of an array.
//   - Axis: the index of a dimension on a multidimensional array.
//   - Dimension: the size of an array in one of its axes.
//   - Stride: the distance, in elements, between two consecutive indices of an axis.
//   - Offset: the position in the storage of the element with all indices 0.
//   - DType: the data type of the elements. Enumeration defined in github.com/gomlx/gopjrt/dtypes
//
// Example: the array `[][]int32{{0, 1, 2}, {3, 4, 5}}` stored in row-major order has the
// layout `(Int32)[2 3] strides=[3 1]`. Its transpose is `(Int32)[3 2] strides=[1 3]`, over the
// very same storage.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Layout describes the shape and the placement of an array's elements in a flat storage.
//
// Use Make for a contiguous row-major layout, or MakeStrided for arbitrary strides.
type Layout struct {
	DType      dtypes.DType
	Dimensions []int
	Strides    []int
	Offset     int
}

// Make returns a contiguous row-major Layout with the given dimensions and offset 0.
//
// It panics if any dimension is negative. Dimensions of 0 are valid and describe an empty array.
func Make(dtype dtypes.DType, dimensions ...int) Layout {
	l := Layout{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s, %v): cannot create a layout with an axis with dimension < 0", dtype, dimensions)
		}
	}
	l.Strides = RowMajorStrides(l.Dimensions)
	return l
}

// MakeStrided returns a Layout with explicit strides and offset, after validating it.
func MakeStrided(dtype dtypes.DType, dimensions, strides []int, offset int) (Layout, error) {
	l := Layout{
		DType:      dtype,
		Dimensions: slices.Clone(dimensions),
		Strides:    slices.Clone(strides),
		Offset:     offset,
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// RowMajorStrides returns the strides of a contiguous array with the given dimensions,
// with the last axis varying fastest.
func RowMajorStrides(dimensions []int) []int {
	strides := make([]int, len(dimensions))
	stride := 1
	for axis := len(dimensions) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= max(dimensions[axis], 1)
	}
	return strides
}

// Invalid returns an invalid layout.
//
// Invalid().Ok() == false.
func Invalid() Layout {
	return Layout{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Layout. A "zero" Layout{} is invalid.
func (l Layout) Ok() bool { return l.DType != dtypes.InvalidDType }

// Rank of the layout, that is, the number of axes.
func (l Layout) Rank() int { return len(l.Dimensions) }

// IsScalar returns whether the layout represents a scalar, that is there are no axes (rank==0).
func (l Layout) IsScalar() bool { return l.Ok() && l.Rank() == 0 }

// normalizeAxis converts negative axes (counting from the end) and panics if out-of-bounds.
func (l Layout) normalizeAxis(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += l.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= l.Rank() {
		exceptions.Panicf("axis %d out-of-bounds for rank %d (layout=%s)", axis, l.Rank(), l)
	}
	return adjustedAxis
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (l Layout) Dim(axis int) int {
	return l.Dimensions[l.normalizeAxis(axis)]
}

// Stride returns the stride of the given axis, with the same axis conventions as Dim.
func (l Layout) Stride(axis int) int {
	return l.Strides[l.normalizeAxis(axis)]
}

// String implements stringer, pretty-prints the layout.
func (l Layout) String() string {
	if l.Rank() == 0 {
		return fmt.Sprintf("(%s) offset=%d", l.DType, l.Offset)
	}
	return fmt.Sprintf("(%s)%v strides=%v offset=%d", l.DType, l.Dimensions, l.Strides, l.Offset)
}

// Size returns the number of elements described by the layout. It's the product of all dimensions.
func (l Layout) Size() (size int) {
	size = 1
	for _, d := range l.Dimensions {
		size *= d
	}
	return
}

// Memory returns the memory used by the elements of the layout, in bytes.
func (l Layout) Memory() uintptr {
	return l.DType.Memory() * uintptr(l.Size())
}

// Extent returns the minimum length a storage must have to hold every position of the layout.
// It is 0 for empty layouts.
func (l Layout) Extent() int {
	if l.Size() == 0 {
		return 0
	}
	last := l.Offset
	for axis, dim := range l.Dimensions {
		last += (dim - 1) * l.Strides[axis]
	}
	return last + 1
}

// Position returns the storage position of the element with the given indices.
// It doesn't check the indices are in range.
func (l Layout) Position(indices ...int) int {
	pos := l.Offset
	for axis, idx := range indices {
		pos += idx * l.Strides[axis]
	}
	return pos
}

// IsContiguous returns whether the elements are packed in row-major order without gaps.
// The offset is not considered.
func (l Layout) IsContiguous() bool {
	expected := 1
	for axis := l.Rank() - 1; axis >= 0; axis-- {
		dim := l.Dimensions[axis]
		if dim == 1 {
			continue
		}
		if l.Strides[axis] != expected {
			return false
		}
		expected *= dim
	}
	return true
}

// Equal compares two layouts for equality: dtype, dimensions, strides and offset are compared.
func (l Layout) Equal(l2 Layout) bool {
	return l.DType == l2.DType && l.Offset == l2.Offset &&
		slices.Equal(l.Dimensions, l2.Dimensions) && slices.Equal(l.Strides, l2.Strides)
}

// EqualDimensions compares two layouts for equality of dimensions. Dtypes and strides can be different.
func (l Layout) EqualDimensions(l2 Layout) bool {
	return slices.Equal(l.Dimensions, l2.Dimensions)
}

// Clone returns a new deep copy of the layout.
func (l Layout) Clone() (l2 Layout) {
	l2 = l
	l2.Dimensions = slices.Clone(l.Dimensions)
	l2.Strides = slices.Clone(l.Strides)
	return
}
