// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
)

// Reduction is a ReduceOp whose result is accumulated element by element.
//
// Elements are combined in the order of the descriptor's offsets. In vectorized strategies
// each offset keeps one accumulator per lane that is folded once the vector phase of the
// offset is over, and the scalar remainder is combined after the fold. So the unit and step
// strategies accumulate in exactly the same order, while the generic strategy accumulates
// strictly sequentially: floating-point sums and products may differ in the last bits.
//
// Reducing an empty descriptor returns the seed of the reduction: 0 for sums, 1 for
// products, the lowest value of the dtype (-Inf for floats) for Max and the highest for Min.
type Reduction struct {
	name string

	int8Reducer    *reducer[int8]
	int32Reducer   *reducer[int32]
	float32Reducer *reducer[float32]
	float64Reducer *reducer[float64]
}

var _ ReduceOp = (*Reduction)(nil)

// Name implements Operator.
func (op *Reduction) Name() string { return op.name }

// FloatingOnly implements Operator.
func (op *Reduction) FloatingOnly() bool { return false }

// ReduceInt8 implements ReduceOp.
func (op *Reduction) ReduceInt8(d loops.Descriptor, s *storage.Storage[int8]) (int8, error) {
	return runReduce(d, s, nil, false, op.int8Reducer), nil
}

// ReduceInt32 implements ReduceOp.
func (op *Reduction) ReduceInt32(d loops.Descriptor, s *storage.Storage[int32]) (int32, error) {
	return runReduce(d, s, nil, false, op.int32Reducer), nil
}

// ReduceFloat32 implements ReduceOp.
func (op *Reduction) ReduceFloat32(d loops.Descriptor, s *storage.Storage[float32]) (float32, error) {
	return runReduce(d, s, nil, false, op.float32Reducer), nil
}

// ReduceFloat64 implements ReduceOp.
func (op *Reduction) ReduceFloat64(d loops.Descriptor, s *storage.Storage[float64]) (float64, error) {
	return runReduce(d, s, nil, false, op.float64Reducer), nil
}

// ReduceMax returns the maximum. NaN propagates: if any element is NaN the result is NaN.
func ReduceMax() *Reduction {
	return &Reduction{
		name:           "max",
		int8Reducer:    maxReducer[int8](),
		int32Reducer:   maxReducer[int32](),
		float32Reducer: maxReducer[float32](),
		float64Reducer: maxReducer[float64](),
	}
}

func maxReducer[T storage.Supported]() *reducer[T] {
	return &reducer[T]{
		seed:   storage.Lowest[T](),
		scalar: func(acc, x T) T { return max(acc, x) },
		vector: simd.Max[T],
		fold:   simd.ReduceMax[T],
	}
}

// ReduceMin returns the minimum. NaN propagates: if any element is NaN the result is NaN.
func ReduceMin() *Reduction {
	return &Reduction{
		name:           "min",
		int8Reducer:    minReducer[int8](),
		int32Reducer:   minReducer[int32](),
		float32Reducer: minReducer[float32](),
		float64Reducer: minReducer[float64](),
	}
}

func minReducer[T storage.Supported]() *reducer[T] {
	return &reducer[T]{
		seed:   storage.Highest[T](),
		scalar: func(acc, x T) T { return min(acc, x) },
		vector: simd.Min[T],
		fold:   simd.ReduceMin[T],
	}
}

// ReduceSum returns the sum of the elements, in the element type. Integers wrap around.
func ReduceSum() *Reduction {
	return &Reduction{
		name:           "sum",
		int8Reducer:    sumReducer[int8](),
		int32Reducer:   sumReducer[int32](),
		float32Reducer: sumReducer[float32](),
		float64Reducer: sumReducer[float64](),
	}
}

func sumReducer[T storage.Supported]() *reducer[T] {
	return &reducer[T]{
		seed:   0,
		scalar: func(acc, x T) T { return acc + x },
		vector: hwy.Add[T],
		fold:   hwy.ReduceSum[T],
	}
}

// ReduceProd returns the product of the elements, in the element type. Integers wrap around.
func ReduceProd() *Reduction {
	return &Reduction{
		name:           "prod",
		int8Reducer:    prodReducer[int8](),
		int32Reducer:   prodReducer[int32](),
		float32Reducer: prodReducer[float32](),
		float64Reducer: prodReducer[float64](),
	}
}

func prodReducer[T storage.Supported]() *reducer[T] {
	return &reducer[T]{
		seed:   1,
		scalar: func(acc, x T) T { return acc * x },
		vector: hwy.Mul[T],
		fold:   simd.ReduceMul[T],
	}
}

// NaN-aware reductions skip NaN elements of float32 and float64 storages. For integers
// they are the same as the plain reductions.

// ReduceNanMax returns the maximum, ignoring NaNs. If all elements are NaN it returns -Inf.
func ReduceNanMax() *Reduction {
	op := ReduceMax()
	op.name = "nanmax"
	op.float32Reducer = skipNaN(op.float32Reducer)
	op.float64Reducer = skipNaN(op.float64Reducer)
	return op
}

// ReduceNanMin returns the minimum, ignoring NaNs. If all elements are NaN it returns +Inf.
func ReduceNanMin() *Reduction {
	op := ReduceMin()
	op.name = "nanmin"
	op.float32Reducer = skipNaN(op.float32Reducer)
	op.float64Reducer = skipNaN(op.float64Reducer)
	return op
}

// ReduceNanSum returns the sum of the non-NaN elements.
func ReduceNanSum() *Reduction {
	op := ReduceSum()
	op.name = "nansum"
	op.float32Reducer = skipNaN(op.float32Reducer)
	op.float64Reducer = skipNaN(op.float64Reducer)
	return op
}

// ReduceNanProd returns the product of the non-NaN elements.
func ReduceNanProd() *Reduction {
	op := ReduceProd()
	op.name = "nanprod"
	op.float32Reducer = skipNaN(op.float32Reducer)
	op.float64Reducer = skipNaN(op.float64Reducer)
	return op
}

// skipNaN returns a reducer that leaves the accumulators unchanged for NaN elements.
// The seed of r must not be NaN.
func skipNaN[T floats](r *reducer[T]) *reducer[T] {
	return &reducer[T]{
		seed: r.seed,
		scalar: func(acc, x T) T {
			if x != x {
				return acc
			}
			return r.scalar(acc, x)
		},
		vector: func(acc, v hwy.Vec[T]) hwy.Vec[T] {
			return hwy.IfThenElse(hwy.IsNaN(v), acc, r.vector(acc, v))
		},
		fold: r.fold,
	}
}
