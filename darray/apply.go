// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package darray

import (
	"context"
	"runtime"

	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/ops"
	"github.com/gomlx/darray/types/shapes"
	"github.com/gomlx/darray/types/storage"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Apply runs the unary operator in place over all the elements of a, visited in storage order.
func (a *DArray) Apply(op ops.UnaryOp) error {
	return a.ApplyOrder(op, shapes.OrderS)
}

// ApplyOrder runs the unary operator in place, visiting the elements in the given order.
//
// The order only matters for operators whose result depends on the visiting order (none of
// the element-wise operators do).
func (a *DArray) ApplyOrder(op ops.UnaryOp, order shapes.Order) error {
	return call(func() error {
		return ops.ApplyAny(op, loops.Of(a.layout, order), a.storage)
	})
}

// ApplyAlongAxis runs the unary operator independently on each 1-D lane of a along axis.
// For instance ApplyAlongAxis(ops.Softmax(), -1) normalizes each row of a matrix.
func (a *DArray) ApplyAlongAxis(op ops.UnaryOp, axis int) error {
	if axis < 0 {
		axis += a.Rank()
	}
	if axis < 0 || axis >= a.Rank() {
		return errors.Errorf("ApplyAlongAxis(%s, axis=%d): axis out-of-bounds for %s", op.Name(), axis, a)
	}
	outer, err := a.layout.Narrow(axis, 0, min(1, a.layout.Dimensions[axis]))
	if err != nil {
		return err
	}
	return call(func() error {
		for indices := range outer.Iter() {
			lane := a.layout.Axis(axis, indices...)
			if err := ops.ApplyAny(op, loops.Of(lane, shapes.OrderC), a.storage); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyParallel is like Apply, but splits the work among up to workers goroutines. If
// workers <= 0, runtime.GOMAXPROCS(0) is used.
//
// The work is split along the outer loop of the traversal. Arrays whose traversal has a
// single inner loop, such as contiguous ones, are split along that loop instead, see
// loops.Descriptor.Split.
//
// Only element-wise operators (*ops.Elementwise) can be split: any other operator returns
// an error wrapping ops.ErrOperationNotSupported. Chunks not yet started when ctx is done
// are skipped and the context error is returned.
func (a *DArray) ApplyParallel(ctx context.Context, op ops.UnaryOp, workers int) error {
	if _, ok := op.(*ops.Elementwise); !ok {
		return errors.Wrapf(ops.ErrOperationNotSupported, "ApplyParallel(%s): only element-wise operators can be split", op.Name())
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := loops.Of(a.layout, shapes.OrderS)
	if len(d.Offsets) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range d.Split(workers) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return call(func() error { return ops.ApplyAny(op, chunk, a.storage) })
		})
	}
	return g.Wait()
}

// Reduce folds all the elements of a into one value with the reduction op. T must match
// the dtype of a.
func Reduce[T storage.Supported](a *DArray, op ops.ReduceOp) (result T, err error) {
	s, err := storage.As[T](a.storage)
	if err != nil {
		return result, err
	}
	err = call(func() error {
		result, err = ops.Reduce(op, loops.Of(a.layout, shapes.OrderS), s)
		return err
	})
	return result, err
}

// ReduceAny is like Reduce, returning the result with the Go type of the elements.
func (a *DArray) ReduceAny(op ops.ReduceOp) (result any, err error) {
	err = call(func() error {
		result, err = ops.ReduceAny(op, loops.Of(a.layout, shapes.OrderS), a.storage)
		return err
	})
	return result, err
}

// BinaryApply computes a[i] = op(a[i], other[i]) in place for every index i. Both arrays
// must have the same dtype and dimensions, but can have any layout.
//
// If a and other share storage positions the result is undefined, unless they are the same view.
func (a *DArray) BinaryApply(op ops.BinaryOp, other *DArray) error {
	if a.DType() != other.DType() {
		return errors.Wrapf(ops.ErrIncompatibleLayout, "BinaryApply(%s): dtypes %s and %s differ", op.Name(), a.DType(), other.DType())
	}
	dd, sd, err := loops.OfPair(a.layout, other.layout, shapes.OrderC)
	if err != nil {
		return errors.Wrapf(ops.ErrIncompatibleLayout, "BinaryApply(%s): %v", op.Name(), err)
	}
	return call(func() error {
		return ops.ApplyBinaryAny(op, dd, a.storage, sd, other.storage)
	})
}

// BinaryScalar computes a[i] = op(a[i], value) in place. value is converted to the dtype
// of a as ops.FromFloat64 does.
func (a *DArray) BinaryScalar(op ops.BinaryOp, value float64) error {
	return call(func() error {
		return ops.ApplyBinaryScalarAny(op, loops.Of(a.layout, shapes.OrderS), a.storage, value)
	})
}
