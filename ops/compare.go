// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"strconv"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/types/storage"
)

// Compare is a comparison operator used by CompareMask.
type Compare int

const (
	CompareLT Compare = iota
	CompareLE
	CompareEQ
	CompareGT
	CompareGE
	CompareNE
)

var compareSymbols = [...]string{
	CompareLT: "<",
	CompareLE: "<=",
	CompareEQ: "==",
	CompareGT: ">",
	CompareGE: ">=",
	CompareNE: "!=",
}

// String implements fmt.Stringer.
func (c Compare) String() string {
	if c.valid() {
		return compareSymbols[c]
	}
	return "Compare(" + strconv.Itoa(int(c)) + ")"
}

func (c Compare) valid() bool { return c >= 0 && int(c) < len(compareSymbols) }

// ParseCompare converts one of "<", "<=", "==", ">", ">=", "!=" to a Compare.
func ParseCompare(symbol string) (Compare, error) {
	for c, s := range compareSymbols {
		if s == symbol {
			return Compare(c), nil
		}
	}
	return 0, invalidParameter("unknown comparison %q", symbol)
}

// CompareMask returns the operator that replaces each element x by 1 if "x cmp value" holds,
// and by 0 otherwise. value is converted to each dtype with FromFloat64.
//
// Comparisons with NaN are false, except for CompareNE.
func CompareMask(cmp Compare, value float64) (*Elementwise, error) {
	if !cmp.valid() {
		return nil, invalidParameter("compare mask: unknown comparison %s", cmp)
	}
	return &Elementwise{
		name:          "compare" + cmp.String(),
		int8Kernel:    compareKernel(cmp, FromFloat64[int8](value)),
		int32Kernel:   compareKernel(cmp, FromFloat64[int32](value)),
		float32Kernel: compareKernel(cmp, FromFloat64[float32](value)),
		float64Kernel: compareKernel(cmp, value),
	}, nil
}

func compareKernel[T storage.Supported](cmp Compare, value T) *unaryKernel[T] {
	var (
		test  func(x T) bool
		vTest func(a, b hwy.Vec[T]) hwy.Mask[T]
	)
	// hwy has no NotEqual: it is computed as Equal with the results swapped.
	one, zero := hwy.Set[T](1), hwy.Zero[T]()
	switch cmp {
	case CompareLT:
		test, vTest = func(x T) bool { return x < value }, hwy.LessThan[T]
	case CompareLE:
		test, vTest = func(x T) bool { return x <= value }, hwy.LessEqual[T]
	case CompareEQ:
		test, vTest = func(x T) bool { return x == value }, hwy.Equal[T]
	case CompareGT:
		test, vTest = func(x T) bool { return x > value }, hwy.GreaterThan[T]
	case CompareGE:
		test, vTest = func(x T) bool { return x >= value }, hwy.GreaterEqual[T]
	case CompareNE:
		test, vTest = func(x T) bool { return x != value }, hwy.Equal[T]
		one, zero = zero, one
	}
	return newUnaryKernel(
		func(x T) T {
			if test(x) {
				return 1
			}
			return 0
		},
		func(v hwy.Vec[T]) hwy.Vec[T] {
			return hwy.IfThenElse(vTest(v, hwy.Set(value)), one, zero)
		})
}
