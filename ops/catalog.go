// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"maps"
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// The catalogue lists the operators that can be built without parameters, by name.
// Parameterized operators are listed with default parameters, as used by benchmarks.

var unaryCatalog = map[string]func() UnaryOp{
	"square":     func() UnaryOp { return Square() },
	"neg":        func() UnaryOp { return Neg() },
	"abs":        func() UnaryOp { return Abs() },
	"ceil":       func() UnaryOp { return Ceil() },
	"floor":      func() UnaryOp { return Floor() },
	"rint":       func() UnaryOp { return Rint() },
	"sinh":       func() UnaryOp { return Sinh() },
	"acos":       func() UnaryOp { return Acos() },
	"expm1":      func() UnaryOp { return Expm1() },
	"exp":        func() UnaryOp { return Exp() },
	"log":        func() UnaryOp { return Log() },
	"log1p":      func() UnaryOp { return Log1p() },
	"sin":        func() UnaryOp { return Sin() },
	"asin":       func() UnaryOp { return Asin() },
	"cos":        func() UnaryOp { return Cos() },
	"cosh":       func() UnaryOp { return Cosh() },
	"tan":        func() UnaryOp { return Tan() },
	"atan":       func() UnaryOp { return Atan() },
	"tanh":       func() UnaryOp { return Tanh() },
	"sqrt":       func() UnaryOp { return Sqrt() },
	"sigmoid":    func() UnaryOp { return Sigmoid() },
	"softmax":    Softmax,
	"logsoftmax": LogSoftmax,
	"nantonum":   func() UnaryOp { return NanToNumDefault() },
	"fillnan":    func() UnaryOp { return FillNaN(0) },
	"fill":       func() UnaryOp { return Fill(0) },
	"pow":        func() UnaryOp { return Pow(2) },
	"clamp":      func() UnaryOp { return mustOp(Clamp(-1, 1)) },
	"compare>":   func() UnaryOp { return mustOp(CompareMask(CompareGT, 0)) },
}

var reduceCatalog = map[string]func() ReduceOp{
	"max":     func() ReduceOp { return ReduceMax() },
	"min":     func() ReduceOp { return ReduceMin() },
	"sum":     func() ReduceOp { return ReduceSum() },
	"prod":    func() ReduceOp { return ReduceProd() },
	"nanmax":  func() ReduceOp { return ReduceNanMax() },
	"nanmin":  func() ReduceOp { return ReduceNanMin() },
	"nansum":  func() ReduceOp { return ReduceNanSum() },
	"nanprod": func() ReduceOp { return ReduceNanProd() },
	"mean":    ReduceMean,
	"nanmean": ReduceNanMean,
	"varc":    func() ReduceOp { return mustOp(ReduceVarc(0, math.NaN())) },
}

// mustOp returns op, panicking if err is not nil: the parameters of the catalogue are constants.
func mustOp[T any](op T, err error) T {
	if err != nil {
		exceptions.Panicf("ops catalogue: %+v", err)
	}
	return op
}

var binaryCatalog = map[string]func() BinaryOp{
	"add": func() BinaryOp { return Add() },
	"sub": func() BinaryOp { return Sub() },
	"mul": func() BinaryOp { return Mul() },
	"div": func() BinaryOp { return Div() },
	"min": func() BinaryOp { return Min() },
	"max": func() BinaryOp { return Max() },
}

// UnaryByName returns a new unary operator by name. See UnaryNames.
func UnaryByName(name string) (UnaryOp, error) {
	fn, found := unaryCatalog[name]
	if !found {
		return nil, errors.Errorf("unknown unary operator %q, valid names are %v", name, UnaryNames())
	}
	return fn(), nil
}

// ReduceByName returns a new reduction by name. See ReduceNames.
func ReduceByName(name string) (ReduceOp, error) {
	fn, found := reduceCatalog[name]
	if !found {
		return nil, errors.Errorf("unknown reduction %q, valid names are %v", name, ReduceNames())
	}
	return fn(), nil
}

// BinaryByName returns a new binary operator by name. See BinaryNames.
func BinaryByName(name string) (BinaryOp, error) {
	fn, found := binaryCatalog[name]
	if !found {
		return nil, errors.Errorf("unknown binary operator %q, valid names are %v", name, BinaryNames())
	}
	return fn(), nil
}

// UnaryNames returns the sorted names of the unary operators in the catalogue.
func UnaryNames() []string { return sortedKeys(unaryCatalog) }

// ReduceNames returns the sorted names of the reductions in the catalogue.
func ReduceNames() []string { return sortedKeys(reduceCatalog) }

// BinaryNames returns the sorted names of the binary operators in the catalogue.
func BinaryNames() []string { return sortedKeys(binaryCatalog) }

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
