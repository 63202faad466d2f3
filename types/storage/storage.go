// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package storage implements the flat typed buffers that hold the elements of arrays.
//
// A Storage knows nothing about shapes: it only answers scalar and vector reads and
// writes at integer positions. Many layouts (see package shapes) may alias the same Storage.
package storage

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Supported lists the element types of a Storage.
type Supported interface {
	int8 | int32 | float32 | float64
}

// Storage is a fixed length flat buffer of elements of type T.
//
// Accessors don't check bounds beyond what Go does for slices: an out-of-range position panics.
type Storage[T Supported] struct {
	data []T
}

// New creates a zero-initialized Storage with n elements.
func New[T Supported](n int) *Storage[T] {
	if n < 0 {
		exceptions.Panicf("storage.New[%s](%d): negative length", dtypes.FromGenericsType[T](), n)
	}
	return &Storage[T]{data: make([]T, n)}
}

// FromSlice creates a Storage backed by data. The slice is not copied: changes to the
// Storage are visible in data and vice-versa.
func FromSlice[T Supported](data []T) *Storage[T] {
	return &Storage[T]{data: data}
}

// DType returns the dtype of the elements.
func (s *Storage[T]) DType() dtypes.DType { return dtypes.FromGenericsType[T]() }

// Len returns the number of elements.
func (s *Storage[T]) Len() int { return len(s.data) }

// Get returns the element at pos.
func (s *Storage[T]) Get(pos int) T { return s.data[pos] }

// Set stores value at pos.
func (s *Storage[T]) Set(pos int, value T) { s.data[pos] = value }

// GetVector loads hwy.MaxLanes[T]() consecutive elements starting at pos.
func (s *Storage[T]) GetVector(pos int) hwy.Vec[T] {
	return hwy.Load(s.data[pos:])
}

// SetVector stores all lanes of v in consecutive elements starting at pos.
func (s *Storage[T]) SetVector(pos int, v hwy.Vec[T]) {
	hwy.Store(v, s.data[pos:])
}

// GatherVector loads lane i from pos+indices[i].
//
// Positions beyond the end of the storage read as zero.
func (s *Storage[T]) GatherVector(pos int, indices hwy.Vec[int32]) hwy.Vec[T] {
	return hwy.GatherIndex(s.data[pos:], indices)
}

// ScatterVector stores lane i of v at pos+indices[i].
//
// Lanes whose position is beyond the end of the storage are dropped.
func (s *Storage[T]) ScatterVector(pos int, indices hwy.Vec[int32], v hwy.Vec[T]) {
	hwy.ScatterIndex(v, s.data[pos:], indices)
}

// Data returns the underlying slice. It is not a copy.
func (s *Storage[T]) Data() []T { return s.data }

// Fill sets every element to value.
func (s *Storage[T]) Fill(value T) {
	for i := range s.data {
		s.data[i] = value
	}
}

// Clone returns a deep copy.
func (s *Storage[T]) Clone() *Storage[T] {
	data := make([]T, len(s.data))
	copy(data, s.data)
	return &Storage[T]{data: data}
}

// CloneAny implements Any.
func (s *Storage[T]) CloneAny() Any { return s.Clone() }

// AnyData implements Any. It returns the underlying []T.
func (s *Storage[T]) AnyData() any { return s.data }

// Any is a Storage of any of the Supported types, used where the dtype is only known at runtime.
type Any interface {
	DType() dtypes.DType
	Len() int
	AnyData() any
	CloneAny() Any
}

// Make creates a zero-initialized Storage for the given dtype.
func Make(dtype dtypes.DType, n int) (Any, error) {
	if n < 0 {
		return nil, errors.Errorf("storage.Make(%s, %d): negative length", dtype, n)
	}
	switch dtype {
	case dtypes.Int8:
		return New[int8](n), nil
	case dtypes.Int32:
		return New[int32](n), nil
	case dtypes.Float32:
		return New[float32](n), nil
	case dtypes.Float64:
		return New[float64](n), nil
	}
	return nil, errors.Errorf("storage.Make(%s, %d): dtype not supported, only Int8, Int32, Float32 and Float64", dtype, n)
}

// FromAnySlice wraps a []int8, []int32, []float32 or []float64 without copying.
func FromAnySlice(data any) (Any, error) {
	switch data := data.(type) {
	case []int8:
		return FromSlice(data), nil
	case []int32:
		return FromSlice(data), nil
	case []float32:
		return FromSlice(data), nil
	case []float64:
		return FromSlice(data), nil
	}
	return nil, errors.Errorf("storage.FromAnySlice(%T): type not supported", data)
}

// As casts s to a *Storage[T], returning an error if the dtype doesn't match.
func As[T Supported](s Any) (*Storage[T], error) {
	typed, ok := s.(*Storage[T])
	if !ok {
		return nil, errors.Errorf("storage of dtype %s cannot be used as %s", s.DType(), dtypes.FromGenericsType[T]())
	}
	return typed, nil
}

// MustAs is like As, but panics on a dtype mismatch.
func MustAs[T Supported](s Any) *Storage[T] {
	typed, ok := s.(*Storage[T])
	if !ok {
		exceptions.Panicf("storage of dtype %s cannot be used as %s", s.DType(), dtypes.FromGenericsType[T]())
	}
	return typed
}
