// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/pkg/errors"
)

// Lanewise is a BinaryOp computing each result element from the two elements with the same
// indices only.
type Lanewise struct {
	name         string
	floatingOnly bool

	int8Kernel    *binaryKernel[int8]
	int32Kernel   *binaryKernel[int32]
	float32Kernel *binaryKernel[float32]
	float64Kernel *binaryKernel[float64]
}

var _ BinaryOp = (*Lanewise)(nil)

// Name implements Operator.
func (op *Lanewise) Name() string { return op.name }

// FloatingOnly implements Operator.
func (op *Lanewise) FloatingOnly() bool { return op.floatingOnly }

func (op *Lanewise) ApplyInt8(dd loops.Descriptor, dst *storage.Storage[int8], sd loops.Descriptor, src *storage.Storage[int8]) error {
	return applyLanewise(op, op.int8Kernel, dd, dst, sd, src)
}

func (op *Lanewise) ApplyInt32(dd loops.Descriptor, dst *storage.Storage[int32], sd loops.Descriptor, src *storage.Storage[int32]) error {
	return applyLanewise(op, op.int32Kernel, dd, dst, sd, src)
}

func (op *Lanewise) ApplyFloat32(dd loops.Descriptor, dst *storage.Storage[float32], sd loops.Descriptor, src *storage.Storage[float32]) error {
	return applyLanewise(op, op.float32Kernel, dd, dst, sd, src)
}

func (op *Lanewise) ApplyFloat64(dd loops.Descriptor, dst *storage.Storage[float64], sd loops.Descriptor, src *storage.Storage[float64]) error {
	return applyLanewise(op, op.float64Kernel, dd, dst, sd, src)
}

func (op *Lanewise) ApplyScalarInt8(d loops.Descriptor, dst *storage.Storage[int8], value int8) error {
	return applyLanewiseScalar(op, op.int8Kernel, d, dst, value)
}

func (op *Lanewise) ApplyScalarInt32(d loops.Descriptor, dst *storage.Storage[int32], value int32) error {
	return applyLanewiseScalar(op, op.int32Kernel, d, dst, value)
}

func (op *Lanewise) ApplyScalarFloat32(d loops.Descriptor, dst *storage.Storage[float32], value float32) error {
	return applyLanewiseScalar(op, op.float32Kernel, d, dst, value)
}

func (op *Lanewise) ApplyScalarFloat64(d loops.Descriptor, dst *storage.Storage[float64], value float64) error {
	return applyLanewiseScalar(op, op.float64Kernel, d, dst, value)
}

func applyLanewise[T storage.Supported](op *Lanewise, k *binaryKernel[T], dd loops.Descriptor, dst *storage.Storage[T], sd loops.Descriptor, src *storage.Storage[T]) error {
	if k == nil {
		return notSupported(op.name, dst.DType())
	}
	if len(dd.Offsets) != len(sd.Offsets) || dd.Bound != sd.Bound {
		return errors.Wrapf(ErrIncompatibleLayout, "%s: destination visits %d x %d elements, source %d x %d",
			op.name, len(dd.Offsets), dd.Bound, len(sd.Offsets), sd.Bound)
	}
	runBinary(dd, dst, sd, src, k)
	return nil
}

func applyLanewiseScalar[T storage.Supported](op *Lanewise, k *binaryKernel[T], d loops.Descriptor, dst *storage.Storage[T], value T) error {
	if k == nil {
		return notSupported(op.name, dst.DType())
	}
	runBinaryScalar(d, dst, value, k)
	return nil
}

func newBinaryKernel[T storage.Supported](scalar func(a, b T) T, vector func(a, b hwy.Vec[T]) hwy.Vec[T]) *binaryKernel[T] {
	return &binaryKernel[T]{scalar: scalar, vector: vector}
}

// Add returns the operator a+b. Integers wrap around.
func Add() *Lanewise {
	return &Lanewise{
		name:          "add",
		int8Kernel:    newBinaryKernel(func(a, b int8) int8 { return a + b }, hwy.Add[int8]),
		int32Kernel:   newBinaryKernel(func(a, b int32) int32 { return a + b }, hwy.Add[int32]),
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return a + b }, hwy.Add[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return a + b }, hwy.Add[float64]),
	}
}

// Sub returns the operator a-b. Integers wrap around.
func Sub() *Lanewise {
	return &Lanewise{
		name:          "sub",
		int8Kernel:    newBinaryKernel(func(a, b int8) int8 { return a - b }, hwy.Sub[int8]),
		int32Kernel:   newBinaryKernel(func(a, b int32) int32 { return a - b }, hwy.Sub[int32]),
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return a - b }, hwy.Sub[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return a - b }, hwy.Sub[float64]),
	}
}

// Mul returns the operator a*b. Integers wrap around.
func Mul() *Lanewise {
	return &Lanewise{
		name:          "mul",
		int8Kernel:    newBinaryKernel(func(a, b int8) int8 { return a * b }, hwy.Mul[int8]),
		int32Kernel:   newBinaryKernel(func(a, b int32) int32 { return a * b }, hwy.Mul[int32]),
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return a * b }, hwy.Mul[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return a * b }, hwy.Mul[float64]),
	}
}

// Div returns the operator a/b. It is floating-point only.
func Div() *Lanewise {
	return &Lanewise{
		name:          "div",
		floatingOnly:  true,
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return a / b }, hwy.Div[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return a / b }, hwy.Div[float64]),
	}
}

// Min returns the operator min(a, b). NaN propagates.
func Min() *Lanewise {
	return &Lanewise{
		name:          "min",
		int8Kernel:    newBinaryKernel(func(a, b int8) int8 { return min(a, b) }, simd.Min[int8]),
		int32Kernel:   newBinaryKernel(func(a, b int32) int32 { return min(a, b) }, simd.Min[int32]),
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return min(a, b) }, simd.Min[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return min(a, b) }, simd.Min[float64]),
	}
}

// Max returns the operator max(a, b). NaN propagates.
func Max() *Lanewise {
	return &Lanewise{
		name:          "max",
		int8Kernel:    newBinaryKernel(func(a, b int8) int8 { return max(a, b) }, simd.Max[int8]),
		int32Kernel:   newBinaryKernel(func(a, b int32) int32 { return max(a, b) }, simd.Max[int32]),
		float32Kernel: newBinaryKernel(func(a, b float32) float32 { return max(a, b) }, simd.Max[float32]),
		float64Kernel: newBinaryKernel(func(a, b float64) float64 { return max(a, b) }, simd.Max[float64]),
	}
}
