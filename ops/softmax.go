// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/gopjrt/dtypes"
)

// softmax implements Softmax and LogSoftmax. All the elements visited by the descriptor
// form one distribution; use one descriptor per axis slice to normalize slices independently.
type softmax struct {
	log bool
}

var _ UnaryOp = softmax{}

// Softmax returns the operator exp(x-max) / sum(exp(x-max)), where max is the largest element.
// It is floating-point only.
//
// The max is computed first, then the exponentials are stored while their sum is accumulated,
// then every element is divided by the sum.
func Softmax() UnaryOp { return softmax{} }

// LogSoftmax returns the operator x - max - log(sum(exp(x-max))). It is floating-point only.
//
// Unlike Softmax it doesn't store the exponentials: the last pass is computed from the
// original values.
func LogSoftmax() UnaryOp { return softmax{log: true} }

func (op softmax) Name() string {
	if op.log {
		return "logsoftmax"
	}
	return "softmax"
}

func (op softmax) FloatingOnly() bool { return true }

func (op softmax) ApplyInt8(loops.Descriptor, *storage.Storage[int8]) error {
	return notSupported(op.Name(), dtypes.Int8)
}

func (op softmax) ApplyInt32(loops.Descriptor, *storage.Storage[int32]) error {
	return notSupported(op.Name(), dtypes.Int32)
}

func (op softmax) ApplyFloat32(d loops.Descriptor, s *storage.Storage[float32]) error {
	runSoftmax(d, s, op.log)
	return nil
}

func (op softmax) ApplyFloat64(d loops.Descriptor, s *storage.Storage[float64]) error {
	runSoftmax(d, s, op.log)
	return nil
}

func runSoftmax[T floats](d loops.Descriptor, s *storage.Storage[T], log bool) {
	if d.Size() == 0 {
		return
	}
	maxValue := runReduce(d, s, nil, false, maxReducer[T]())

	exp := mathFn[T](math.Exp)
	vMax := hwy.Set(maxValue)
	expShifted := newUnaryKernel(
		func(x T) T { return exp(x - maxValue) },
		func(v hwy.Vec[T]) hwy.Vec[T] { return simd.Map(hwy.Sub(v, vMax), exp) })
	sum := runReduce(d, s, expShifted, !log, sumReducer[T]())

	if log {
		shift := maxValue + mathFn[T](math.Log)(sum)
		runUnary(d, s, shiftKernel(-shift))
		return
	}
	vSum := hwy.Set(sum)
	runUnary(d, s, newUnaryKernel(
		func(x T) T { return x / sum },
		func(v hwy.Vec[T]) hwy.Vec[T] { return hwy.Div(v, vSum) }))
}
