// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package darray implements DArray, a strided view over a flat storage, and the entry
// points to run the operators of package ops over it.
//
// Several DArray values can share the same storage: views created with Transpose,
// Narrow, Step or Reshape never copy data, so an operator applied to a view changes the
// elements seen by every other view of the same storage.
//
// Errors are returned, including the ones raised as panics by the lower level packages,
// which are converted at the entry points of this package.
package darray

import (
	"fmt"
	"slices"

	"github.com/gomlx/darray/types/shapes"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// DArray is a layout over a storage. It is a small value, cheap to copy, and methods that
// create views return a new DArray sharing the storage.
type DArray struct {
	storage storage.Any
	layout  shapes.Layout
}

// New creates a DArray over an existing storage. The layout must be valid, have the dtype
// of the storage and only address positions within it.
func New(s storage.Any, layout shapes.Layout) (*DArray, error) {
	if s == nil {
		return nil, errors.New("darray.New(): nil storage")
	}
	if err := layout.Validate(); err != nil {
		return nil, errors.WithMessage(err, "darray.New()")
	}
	if layout.DType != s.DType() {
		return nil, errors.Errorf("darray.New(): layout %s doesn't match storage dtype %s", layout, s.DType())
	}
	if err := layout.CheckFits(s.Len()); err != nil {
		return nil, errors.WithMessage(err, "darray.New()")
	}
	return &DArray{storage: s, layout: layout}, nil
}

// FromSlice creates a contiguous row-major DArray backed by data, which is not copied.
// If no dimensions are given, it is a rank-1 array with len(data) elements.
func FromSlice[T storage.Supported](data []T, dimensions ...int) (*DArray, error) {
	if len(dimensions) == 0 {
		dimensions = []int{len(data)}
	}
	layout, err := makeLayout(dtypes.FromGenericsType[T](), dimensions)
	if err != nil {
		return nil, err
	}
	if layout.Size() != len(data) {
		return nil, errors.Errorf("darray.FromSlice(): dimensions %v need %d elements, got %d",
			dimensions, layout.Size(), len(data))
	}
	return &DArray{storage: storage.FromSlice(data), layout: layout}, nil
}

// Zeros creates a contiguous row-major DArray filled with zeros.
func Zeros(dtype dtypes.DType, dimensions ...int) (*DArray, error) {
	layout, err := makeLayout(dtype, dimensions)
	if err != nil {
		return nil, err
	}
	s, err := storage.Make(dtype, layout.Size())
	if err != nil {
		return nil, err
	}
	return &DArray{storage: s, layout: layout}, nil
}

func makeLayout(dtype dtypes.DType, dimensions []int) (layout shapes.Layout, err error) {
	err = exceptions.TryCatch[error](func() { layout = shapes.Make(dtype, dimensions...) })
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "dimensions %v", dimensions)
	}
	return layout, nil
}

// Layout implements shapes.HasLayout.
func (a *DArray) Layout() shapes.Layout { return a.layout }

// Storage returns the storage shared by all the views of a.
func (a *DArray) Storage() storage.Any { return a.storage }

// DType of the elements.
func (a *DArray) DType() dtypes.DType { return a.layout.DType }

// Rank is the number of axes.
func (a *DArray) Rank() int { return a.layout.Rank() }

// Dimensions returns a copy of the dimensions of a.
func (a *DArray) Dimensions() []int { return slices.Clone(a.layout.Dimensions) }

// Size is the number of elements.
func (a *DArray) Size() int { return a.layout.Size() }

// IsContiguous returns whether the elements of a fill a block of the storage in row-major order.
func (a *DArray) IsContiguous() bool { return a.layout.IsContiguous() }

// String implements fmt.Stringer.
func (a *DArray) String() string { return fmt.Sprintf("DArray%s", a.layout) }

func (a *DArray) view(layout shapes.Layout, err error) (*DArray, error) {
	if err != nil {
		return nil, err
	}
	return &DArray{storage: a.storage, layout: layout}, nil
}

// Transpose returns a view with the axes permuted: axis i of the view is axis permutation[i] of a.
func (a *DArray) Transpose(permutation ...int) (*DArray, error) {
	return a.view(a.layout.Transpose(permutation...))
}

// Narrow returns a view where axis is restricted to the indices [start, end).
func (a *DArray) Narrow(axis, start, end int) (*DArray, error) {
	return a.view(a.layout.Narrow(axis, start, end))
}

// Step returns a view with every step-th index of axis.
func (a *DArray) Step(axis, step int) (*DArray, error) {
	return a.view(a.layout.Step(axis, step))
}

// Reshape returns a view with new dimensions. Only contiguous arrays can be reshaped,
// use Copy first for the others.
func (a *DArray) Reshape(dimensions ...int) (*DArray, error) {
	var (
		layout shapes.Layout
		err    error
	)
	if catchErr := exceptions.TryCatch[error](func() { layout, err = a.layout.Reshape(dimensions...) }); catchErr != nil {
		return nil, catchErr
	}
	return a.view(layout, err)
}

// Copy returns a new contiguous row-major DArray with its own storage and the values of a.
func (a *DArray) Copy() *DArray {
	layout := shapes.Make(a.layout.DType, a.layout.Dimensions...)
	var s storage.Any
	switch src := a.storage.(type) {
	case *storage.Storage[int8]:
		s = storage.FromSlice(gather(src, a.layout))
	case *storage.Storage[int32]:
		s = storage.FromSlice(gather(src, a.layout))
	case *storage.Storage[float32]:
		s = storage.FromSlice(gather(src, a.layout))
	case *storage.Storage[float64]:
		s = storage.FromSlice(gather(src, a.layout))
	default:
		exceptions.Panicf("DArray.Copy(): storage %T not supported", a.storage)
	}
	return &DArray{storage: s, layout: layout}
}

// Flat returns a new slice with the values of a in row-major order.
func Flat[T storage.Supported](a *DArray) ([]T, error) {
	s, err := storage.As[T](a.storage)
	if err != nil {
		return nil, err
	}
	return gather(s, a.layout), nil
}

func gather[T storage.Supported](s *storage.Storage[T], layout shapes.Layout) []T {
	values := make([]T, 0, layout.Size())
	for pos := range layout.Positions() {
		values = append(values, s.Get(pos))
	}
	return values
}

// call runs fn converting panics with an error to a returned error.
func call(fn func() error) error {
	var fnErr error
	if err := exceptions.TryCatch[error](func() { fnErr = fn() }); err != nil {
		return err
	}
	return fnErr
}
