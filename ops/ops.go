// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops implements the operators that run over strided arrays: element-wise
// transforms applied in place, reductions to a scalar and binary element-wise operations.
//
// Operators hold only their parameters. They are applied to a storage.Storage following a
// loops.Descriptor, which tells which positions to visit and in which order. For each call
// one of three strategies is used (see loops.Strategy): contiguous vector loads, gathered
// vector loads or scalar code. The strategy never changes the result for element-wise
// operators; see the documentation of each reduction for its accumulation order.
//
// Each operator has one entry point per dtype (ApplyInt8, ..., ApplyFloat64). The generic
// functions Apply, Reduce, ApplyBinary and ApplyBinaryScalar select the entry point from the
// storage type, and ApplyAny and ReduceAny do the same for storages only known at runtime.
//
// Operators that only make sense for floating-point numbers return an error wrapping
// ErrOperationNotSupported for int8 and int32, without touching any element.
package ops

import (
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/types/storage"
	"github.com/pkg/errors"
)

// Operator is the part common to all operators.
type Operator interface {
	// Name of the operator, used in error messages and by the catalogue.
	Name() string

	// FloatingOnly returns whether the operator is only defined for float32 and float64.
	FloatingOnly() bool
}

// UnaryOp transforms in place the elements visited by a descriptor.
type UnaryOp interface {
	Operator
	ApplyInt8(d loops.Descriptor, s *storage.Storage[int8]) error
	ApplyInt32(d loops.Descriptor, s *storage.Storage[int32]) error
	ApplyFloat32(d loops.Descriptor, s *storage.Storage[float32]) error
	ApplyFloat64(d loops.Descriptor, s *storage.Storage[float64]) error
}

// ReduceOp folds the elements visited by a descriptor into one value of the element type.
type ReduceOp interface {
	Operator
	ReduceInt8(d loops.Descriptor, s *storage.Storage[int8]) (int8, error)
	ReduceInt32(d loops.Descriptor, s *storage.Storage[int32]) (int32, error)
	ReduceFloat32(d loops.Descriptor, s *storage.Storage[float32]) (float32, error)
	ReduceFloat64(d loops.Descriptor, s *storage.Storage[float64]) (float64, error)
}

// BinaryOp combines two traversals element by element, storing the result in the first one:
// dst[i] = op(dst[i], src[i]). The descriptors must have the same number of offsets and the
// same bound, as built by loops.OfPair.
type BinaryOp interface {
	Operator
	ApplyInt8(dd loops.Descriptor, dst *storage.Storage[int8], sd loops.Descriptor, src *storage.Storage[int8]) error
	ApplyInt32(dd loops.Descriptor, dst *storage.Storage[int32], sd loops.Descriptor, src *storage.Storage[int32]) error
	ApplyFloat32(dd loops.Descriptor, dst *storage.Storage[float32], sd loops.Descriptor, src *storage.Storage[float32]) error
	ApplyFloat64(dd loops.Descriptor, dst *storage.Storage[float64], sd loops.Descriptor, src *storage.Storage[float64]) error

	// ApplyScalar variants compute dst[i] = op(dst[i], value).
	ApplyScalarInt8(d loops.Descriptor, dst *storage.Storage[int8], value int8) error
	ApplyScalarInt32(d loops.Descriptor, dst *storage.Storage[int32], value int32) error
	ApplyScalarFloat32(d loops.Descriptor, dst *storage.Storage[float32], value float32) error
	ApplyScalarFloat64(d loops.Descriptor, dst *storage.Storage[float64], value float64) error
}

// Apply runs the unary operator on s.
func Apply[T storage.Supported](op UnaryOp, d loops.Descriptor, s *storage.Storage[T]) error {
	switch s := any(s).(type) {
	case *storage.Storage[int8]:
		return op.ApplyInt8(d, s)
	case *storage.Storage[int32]:
		return op.ApplyInt32(d, s)
	case *storage.Storage[float32]:
		return op.ApplyFloat32(d, s)
	case *storage.Storage[float64]:
		return op.ApplyFloat64(d, s)
	}
	return nil
}

// ApplyAny is like Apply, for a storage whose type is only known at runtime.
func ApplyAny(op UnaryOp, d loops.Descriptor, s storage.Any) error {
	switch s := s.(type) {
	case *storage.Storage[int8]:
		return op.ApplyInt8(d, s)
	case *storage.Storage[int32]:
		return op.ApplyInt32(d, s)
	case *storage.Storage[float32]:
		return op.ApplyFloat32(d, s)
	case *storage.Storage[float64]:
		return op.ApplyFloat64(d, s)
	}
	return notSupported(op.Name(), s.DType())
}

// Reduce runs the reduction on s.
func Reduce[T storage.Supported](op ReduceOp, d loops.Descriptor, s *storage.Storage[T]) (T, error) {
	var (
		result any
		err    error
	)
	switch s := any(s).(type) {
	case *storage.Storage[int8]:
		result, err = op.ReduceInt8(d, s)
	case *storage.Storage[int32]:
		result, err = op.ReduceInt32(d, s)
	case *storage.Storage[float32]:
		result, err = op.ReduceFloat32(d, s)
	case *storage.Storage[float64]:
		result, err = op.ReduceFloat64(d, s)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// ReduceAny is like Reduce, for a storage whose type is only known at runtime.
// The result has the Go type of the elements.
func ReduceAny(op ReduceOp, d loops.Descriptor, s storage.Any) (any, error) {
	switch s := s.(type) {
	case *storage.Storage[int8]:
		return op.ReduceInt8(d, s)
	case *storage.Storage[int32]:
		return op.ReduceInt32(d, s)
	case *storage.Storage[float32]:
		return op.ReduceFloat32(d, s)
	case *storage.Storage[float64]:
		return op.ReduceFloat64(d, s)
	}
	return nil, notSupported(op.Name(), s.DType())
}

// ApplyBinary runs the binary operator: dst[i] = op(dst[i], src[i]).
func ApplyBinary[T storage.Supported](op BinaryOp, dd loops.Descriptor, dst *storage.Storage[T], sd loops.Descriptor, src *storage.Storage[T]) error {
	switch dst := any(dst).(type) {
	case *storage.Storage[int8]:
		return op.ApplyInt8(dd, dst, sd, any(src).(*storage.Storage[int8]))
	case *storage.Storage[int32]:
		return op.ApplyInt32(dd, dst, sd, any(src).(*storage.Storage[int32]))
	case *storage.Storage[float32]:
		return op.ApplyFloat32(dd, dst, sd, any(src).(*storage.Storage[float32]))
	case *storage.Storage[float64]:
		return op.ApplyFloat64(dd, dst, sd, any(src).(*storage.Storage[float64]))
	}
	return nil
}

// ApplyBinaryAny is like ApplyBinary for storages only known at runtime. Both must have the same dtype.
func ApplyBinaryAny(op BinaryOp, dd loops.Descriptor, dst storage.Any, sd loops.Descriptor, src storage.Any) error {
	if dst.DType() != src.DType() {
		return errors.Wrapf(ErrIncompatibleLayout, "%s: dtypes %s and %s differ", op.Name(), dst.DType(), src.DType())
	}
	switch dst := dst.(type) {
	case *storage.Storage[int8]:
		return ApplyBinary(op, dd, dst, sd, src.(*storage.Storage[int8]))
	case *storage.Storage[int32]:
		return ApplyBinary(op, dd, dst, sd, src.(*storage.Storage[int32]))
	case *storage.Storage[float32]:
		return ApplyBinary(op, dd, dst, sd, src.(*storage.Storage[float32]))
	case *storage.Storage[float64]:
		return ApplyBinary(op, dd, dst, sd, src.(*storage.Storage[float64]))
	}
	return notSupported(op.Name(), dst.DType())
}

// ApplyBinaryScalar runs the binary operator with a constant right-hand side: dst[i] = op(dst[i], value).
func ApplyBinaryScalar[T storage.Supported](op BinaryOp, d loops.Descriptor, dst *storage.Storage[T], value T) error {
	switch dst := any(dst).(type) {
	case *storage.Storage[int8]:
		return op.ApplyScalarInt8(d, dst, any(value).(int8))
	case *storage.Storage[int32]:
		return op.ApplyScalarInt32(d, dst, any(value).(int32))
	case *storage.Storage[float32]:
		return op.ApplyScalarFloat32(d, dst, any(value).(float32))
	case *storage.Storage[float64]:
		return op.ApplyScalarFloat64(d, dst, any(value).(float64))
	}
	return nil
}

// ApplyBinaryScalarAny is like ApplyBinaryScalar for a storage only known at runtime.
// value is converted to the dtype of dst, see FromFloat64.
func ApplyBinaryScalarAny(op BinaryOp, d loops.Descriptor, dst storage.Any, value float64) error {
	switch dst := dst.(type) {
	case *storage.Storage[int8]:
		return op.ApplyScalarInt8(d, dst, FromFloat64[int8](value))
	case *storage.Storage[int32]:
		return op.ApplyScalarInt32(d, dst, FromFloat64[int32](value))
	case *storage.Storage[float32]:
		return op.ApplyScalarFloat32(d, dst, FromFloat64[float32](value))
	case *storage.Storage[float64]:
		return op.ApplyScalarFloat64(d, dst, value)
	}
	return notSupported(op.Name(), dst.DType())
}
