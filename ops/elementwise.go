// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/types/storage"
)

// Elementwise is a UnaryOp that transforms each element independently of the others.
//
// Since each element only depends on itself, the elements visited by a descriptor can be
// split in any way (see loops.Descriptor.Split) and transformed concurrently.
type Elementwise struct {
	name         string
	floatingOnly bool

	// A nil kernel means: ErrOperationNotSupported if floatingOnly, otherwise a no-op.
	int8Kernel    *unaryKernel[int8]
	int32Kernel   *unaryKernel[int32]
	float32Kernel *unaryKernel[float32]
	float64Kernel *unaryKernel[float64]
}

var _ UnaryOp = (*Elementwise)(nil)

// Name implements Operator.
func (op *Elementwise) Name() string { return op.name }

// FloatingOnly implements Operator.
func (op *Elementwise) FloatingOnly() bool { return op.floatingOnly }

// ApplyInt8 implements UnaryOp.
func (op *Elementwise) ApplyInt8(d loops.Descriptor, s *storage.Storage[int8]) error {
	return applyElementwise(op, op.int8Kernel, d, s)
}

// ApplyInt32 implements UnaryOp.
func (op *Elementwise) ApplyInt32(d loops.Descriptor, s *storage.Storage[int32]) error {
	return applyElementwise(op, op.int32Kernel, d, s)
}

// ApplyFloat32 implements UnaryOp.
func (op *Elementwise) ApplyFloat32(d loops.Descriptor, s *storage.Storage[float32]) error {
	return applyElementwise(op, op.float32Kernel, d, s)
}

// ApplyFloat64 implements UnaryOp.
func (op *Elementwise) ApplyFloat64(d loops.Descriptor, s *storage.Storage[float64]) error {
	return applyElementwise(op, op.float64Kernel, d, s)
}

func applyElementwise[T storage.Supported](op *Elementwise, k *unaryKernel[T], d loops.Descriptor, s *storage.Storage[T]) error {
	if k == nil {
		if op.floatingOnly {
			return notSupported(op.name, s.DType())
		}
		return nil
	}
	runUnary(d, s, k)
	return nil
}

// newFloatingOnly creates an Elementwise operator defined only for float32 and float64.
func newFloatingOnly(name string, f32 *unaryKernel[float32], f64 *unaryKernel[float64]) *Elementwise {
	return &Elementwise{name: name, floatingOnly: true, float32Kernel: f32, float64Kernel: f64}
}

// newMathOp creates a floating-point only operator from a function of package math.
// The vector version applies the very same function to every lane.
func newMathOp(name string, fn func(float64) float64) *Elementwise {
	return newFloatingOnly(name,
		newUnaryKernel(mathFn[float32](fn), nil),
		newUnaryKernel(fn, nil))
}

// Square returns the operator x -> x*x. Integers wrap around on overflow.
func Square() *Elementwise {
	return &Elementwise{
		name:          "square",
		int8Kernel:    squareKernel[int8](),
		int32Kernel:   squareKernel[int32](),
		float32Kernel: squareKernel[float32](),
		float64Kernel: squareKernel[float64](),
	}
}

func squareKernel[T storage.Supported]() *unaryKernel[T] {
	return newUnaryKernel(
		func(x T) T { return x * x },
		func(v hwy.Vec[T]) hwy.Vec[T] { return hwy.Mul(v, v) })
}

// Neg returns the operator x -> -x. The lowest integer value is unchanged.
func Neg() *Elementwise {
	return &Elementwise{
		name:          "neg",
		int8Kernel:    negKernel[int8](),
		int32Kernel:   negKernel[int32](),
		float32Kernel: negKernel[float32](),
		float64Kernel: negKernel[float64](),
	}
}

func negKernel[T storage.Supported]() *unaryKernel[T] {
	return newUnaryKernel(func(x T) T { return -x }, hwy.Neg[T])
}

// Abs returns the absolute value operator. The lowest integer value is unchanged.
func Abs() *Elementwise {
	return &Elementwise{
		name:          "abs",
		int8Kernel:    absKernel[int8](),
		int32Kernel:   absKernel[int32](),
		float32Kernel: absKernel[float32](),
		float64Kernel: absKernel[float64](),
	}
}

func absKernel[T storage.Supported]() *unaryKernel[T] {
	return newUnaryKernel(func(x T) T {
		if x < 0 {
			return -x
		}
		return x
	}, hwy.Abs[T])
}

// Fill returns the operator that sets every element to value, converted with FromFloat64.
func Fill(value float64) *Elementwise {
	return &Elementwise{
		name:          "fill",
		int8Kernel:    fillKernel(FromFloat64[int8](value)),
		int32Kernel:   fillKernel(FromFloat64[int32](value)),
		float32Kernel: fillKernel(FromFloat64[float32](value)),
		float64Kernel: fillKernel(value),
	}
}

func fillKernel[T storage.Supported](value T) *unaryKernel[T] {
	return newUnaryKernel(
		func(T) T { return value },
		func(hwy.Vec[T]) hwy.Vec[T] { return hwy.Set(value) })
}

// FillNaN returns the operator that replaces NaN values by value. It is a no-op for integers.
func FillNaN(value float64) *Elementwise {
	return &Elementwise{
		name:          "fillnan",
		float32Kernel: fillNaNKernel(float32(value)),
		float64Kernel: fillNaNKernel(value),
	}
}

func fillNaNKernel[T floats](value T) *unaryKernel[T] {
	k := newUnaryKernel(
		func(x T) T {
			if x != x {
				return value
			}
			return x
		},
		func(v hwy.Vec[T]) hwy.Vec[T] { return hwy.IfThenElse(hwy.IsNaN(v), hwy.Set(value), v) })
	k.skip = func(v hwy.Vec[T]) bool { return !hwy.IsNaN(v).AnyTrue() }
	return k
}

// roundingOp creates an operator that rounds floating-point numbers and is a no-op for integers.
func roundingOp(name string, fn func(float64) float64) *Elementwise {
	return &Elementwise{
		name:          name,
		float32Kernel: newUnaryKernel(mathFn[float32](fn), nil),
		float64Kernel: newUnaryKernel(fn, nil),
	}
}

// Ceil rounds up floating-point numbers. It is a no-op for integers.
func Ceil() *Elementwise { return roundingOp("ceil", math.Ceil) }

// Floor rounds down floating-point numbers. It is a no-op for integers.
func Floor() *Elementwise { return roundingOp("floor", math.Floor) }

// Rint rounds floating-point numbers to the nearest integer, half to even. It is a no-op for integers.
func Rint() *Elementwise { return roundingOp("rint", math.RoundToEven) }

// Floating-point only operators.

// Sinh returns the hyperbolic sine operator.
func Sinh() *Elementwise { return newMathOp("sinh", math.Sinh) }

// Acos returns the arc cosine operator.
func Acos() *Elementwise { return newMathOp("acos", math.Acos) }

// Expm1 returns the operator x -> exp(x)-1, accurate for x near 0.
func Expm1() *Elementwise { return newMathOp("expm1", math.Expm1) }

// Exp returns the exponential operator x -> e^x.
func Exp() *Elementwise { return newMathOp("exp", math.Exp) }

// Log returns the natural logarithm operator.
func Log() *Elementwise { return newMathOp("log", math.Log) }

// Log1p returns the operator x -> log(1+x), accurate for x near 0.
func Log1p() *Elementwise { return newMathOp("log1p", math.Log1p) }

// Sin returns the sine operator.
func Sin() *Elementwise { return newMathOp("sin", math.Sin) }

// Asin returns the arc sine operator.
func Asin() *Elementwise { return newMathOp("asin", math.Asin) }

// Cos returns the cosine operator.
func Cos() *Elementwise { return newMathOp("cos", math.Cos) }

// Cosh returns the hyperbolic cosine operator.
func Cosh() *Elementwise { return newMathOp("cosh", math.Cosh) }

// Tan returns the tangent operator.
func Tan() *Elementwise { return newMathOp("tan", math.Tan) }

// Atan returns the arc tangent operator.
func Atan() *Elementwise { return newMathOp("atan", math.Atan) }

// Tanh returns the hyperbolic tangent operator.
func Tanh() *Elementwise { return newMathOp("tanh", math.Tanh) }

// Sqrt returns the square root operator. Negative values yield NaN.
func Sqrt() *Elementwise {
	return newFloatingOnly("sqrt",
		newUnaryKernel(mathFn[float32](math.Sqrt), hwy.Sqrt[float32]),
		newUnaryKernel(math.Sqrt, hwy.Sqrt[float64]))
}

// Sigmoid returns the logistic function operator x -> 1/(1+exp(-x)).
func Sigmoid() *Elementwise {
	return newMathOp("sigmoid", func(x float64) float64 { return 1 / (1 + math.Exp(-x)) })
}

// Pow returns the operator x -> x^p.
func Pow(p float64) *Elementwise {
	return newMathOp("pow", func(x float64) float64 { return math.Pow(x, p) })
}
