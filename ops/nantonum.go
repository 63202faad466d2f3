// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/types/storage"
)

// NanToNum returns the operator that replaces NaN by nan, +Inf by posInf and -Inf by negInf.
// Finite values are unchanged. It is a no-op for integers, which have neither NaN nor infinities.
//
// The replacement values must be finite, otherwise an error wrapping ErrInvalidParameter is
// returned. For float32 they are saturated to the largest finite float32 values.
func NanToNum(nan, posInf, negInf float64) (*Elementwise, error) {
	for _, value := range []float64{nan, posInf, negInf} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, invalidParameter("nantonum(nan=%g, +inf=%g, -inf=%g): replacement values must be finite", nan, posInf, negInf)
		}
	}
	return &Elementwise{
		name:          "nantonum",
		float32Kernel: nanToNumKernel(saturateFloat32(nan), saturateFloat32(posInf), saturateFloat32(negInf)),
		float64Kernel: nanToNumKernel(nan, posInf, negInf),
	}, nil
}

// NanToNumDefault is like NanToNum, replacing NaN by 0 and the infinities by the largest
// finite values of the dtype.
func NanToNumDefault() *Elementwise {
	return &Elementwise{
		name:          "nantonum",
		float32Kernel: nanToNumKernel(0, storage.MaxFinite[float32](), storage.MinFinite[float32]()),
		float64Kernel: nanToNumKernel(0, storage.MaxFinite[float64](), storage.MinFinite[float64]()),
	}
}

func saturateFloat32(x float64) float32 {
	return float32(math.Max(-math.MaxFloat32, math.Min(math.MaxFloat32, x)))
}

func nanToNumKernel[T floats](nan, posInf, negInf T) *unaryKernel[T] {
	highest, lowest := storage.MaxFinite[T](), storage.MinFinite[T]()
	k := newUnaryKernel(
		func(x T) T {
			switch {
			case x != x:
				return nan
			case x > highest:
				return posInf
			case x < lowest:
				return negInf
			}
			return x
		},
		func(v hwy.Vec[T]) hwy.Vec[T] {
			v = hwy.IfThenElse(hwy.IsNaN(v), hwy.Set(nan), v)
			v = hwy.IfThenElse(hwy.GreaterThan(v, hwy.Set(highest)), hwy.Set(posInf), v)
			return hwy.IfThenElse(hwy.LessThan(v, hwy.Set(lowest)), hwy.Set(negInf), v)
		})
	k.skip = func(v hwy.Vec[T]) bool { return hwy.IsFinite(v).AllTrue() }
	return k
}
