// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/gomlx/darray/darray"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/ops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/shapes"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats/scalar"
)

// Kinds of operators in the catalogue.
const (
	kindUnary  = "unary"
	kindReduce = "reduce"
	kindBinary = "binary"
)

// Physical layouts every operator is run on. All hold the same logical values.
var layoutNames = []string{"contiguous", "transposed", "strided", "scalar"}

// opRef names an operator of the catalogue.
type opRef struct {
	kind, name string
}

func (r opRef) String() string { return r.kind + ":" + r.name }

// allOps lists every operator of the catalogue.
func allOps() []opRef {
	var refs []opRef
	for _, name := range ops.UnaryNames() {
		refs = append(refs, opRef{kindUnary, name})
	}
	for _, name := range ops.ReduceNames() {
		refs = append(refs, opRef{kindReduce, name})
	}
	for _, name := range ops.BinaryNames() {
		refs = append(refs, opRef{kindBinary, name})
	}
	return refs
}

// selectOps parses a comma separated list of operators. Each entry is either "kind:name"
// or a bare name, which selects the operators of every kind with that name.
func selectOps(list string) ([]opRef, error) {
	all := allOps()
	if strings.TrimSpace(list) == "" {
		return all, nil
	}
	var refs []opRef
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		found := false
		for _, ref := range all {
			if entry == ref.String() || entry == ref.name {
				if !slices.Contains(refs, ref) {
					refs = append(refs, ref)
				}
				found = true
			}
		}
		if !found {
			return nil, errors.Errorf("unknown operator %q", entry)
		}
	}
	return refs, nil
}

// result of running one operator over one layout.
type result struct {
	strategy loops.Strategy
	elapsed  time.Duration
	values   []float64
	err      error
}

// benchCase holds the inputs shared by all layouts of one operator and dtype.
type benchCase struct {
	op         opRef
	dtype      dtypes.DType
	dimensions []int
	input      *darray.DArray // Contiguous logical values.
	other      *darray.DArray // Right-hand side of binary operators.
}

func newBenchCase(op opRef, dtype dtypes.DType, size, rank int, seed uint64) *benchCase {
	dimensions := slices.Repeat([]int{size}, rank)
	c := &benchCase{op: op, dtype: dtype, dimensions: dimensions}
	c.input = randomArray(dtype, dimensions, seed)
	if op.kind == kindBinary {
		c.other = randomArray(dtype, dimensions, seed+1)
		if op.name == "div" {
			// Keep divisors away from 0.
			must.M(c.other.BinaryScalar(ops.Max(), 0.5))
		}
	}
	return c
}

func randomArray(dtype dtypes.DType, dimensions []int, seed uint64) *darray.DArray {
	a := must.M1(darray.Zeros(dtype, dimensions...))
	rng := rand.New(rand.NewPCG(seed, 0x5eed))
	switch s := a.Storage().(type) {
	case *storage.Storage[int8]:
		fillRandom(s, rng)
	case *storage.Storage[int32]:
		fillRandom(s, rng)
	case *storage.Storage[float32]:
		fillRandom(s, rng)
	case *storage.Storage[float64]:
		fillRandom(s, rng)
	}
	return a
}

// fillRandom sets values uniformly distributed in [-4, 4), truncated for integers.
func fillRandom[T storage.Supported](s *storage.Storage[T], rng *rand.Rand) {
	for i := range s.Len() {
		s.Set(i, ops.FromFloat64[T](rng.Float64()*8-4))
	}
}

// view returns an array with the logical values of c.input in the named physical layout.
func (c *benchCase) view(layoutName string) *darray.DArray {
	rank := len(c.dimensions)
	var v *darray.DArray
	switch layoutName {
	case "contiguous", "scalar":
		v = must.M1(darray.Zeros(c.dtype, c.dimensions...))
	case "transposed":
		reversed := slices.Clone(c.dimensions)
		slices.Reverse(reversed)
		permutation := make([]int, rank)
		for axis := range permutation {
			permutation[axis] = rank - 1 - axis
		}
		v = must.M1(must.M1(darray.Zeros(c.dtype, reversed...)).Transpose(permutation...))
	case "strided":
		padded := slices.Clone(c.dimensions)
		padded[rank-1] *= 3
		v = must.M1(must.M1(darray.Zeros(c.dtype, padded...)).Step(rank-1, 3))
	}
	c.reset(v)
	return v
}

// reset sets the values of v back to the input.
func (c *benchCase) reset(v *darray.DArray) {
	must.M(v.Apply(ops.Fill(0)))
	must.M(v.BinaryApply(ops.Add(), c.input))
}

// run applies the operator repeat times on the given layout, resetting the values in between.
func (c *benchCase) run(layoutName string, repeat int) (r result) {
	if layoutName == "scalar" {
		defer simd.Disable()()
	}
	v := c.view(layoutName)
	r.strategy = loops.Of(v.Layout(), shapes.OrderS).Strategy()
	var reduced any
	for i := range repeat {
		if i > 0 {
			c.reset(v)
		}
		start := time.Now()
		switch c.op.kind {
		case kindUnary:
			r.err = v.Apply(must.M1(ops.UnaryByName(c.op.name)))
		case kindReduce:
			reduced, r.err = v.ReduceAny(must.M1(ops.ReduceByName(c.op.name)))
		case kindBinary:
			r.err = v.BinaryApply(must.M1(ops.BinaryByName(c.op.name)), c.other)
		}
		r.elapsed += time.Since(start)
		if r.err != nil {
			return
		}
	}
	if c.op.kind == kindReduce {
		r.values = []float64{toFloat64(reduced)}
	} else {
		r.values = flatFloat64(v)
	}
	return
}

func toFloat64(value any) float64 {
	switch v := value.(type) {
	case int8:
		return float64(v)
	case int32:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return math.NaN()
}

func flatFloat64(a *darray.DArray) []float64 {
	switch a.DType() {
	case dtypes.Int8:
		return convert(must.M1(darray.Flat[int8](a)))
	case dtypes.Int32:
		return convert(must.M1(darray.Flat[int32](a)))
	case dtypes.Float32:
		return convert(must.M1(darray.Flat[float32](a)))
	}
	return must.M1(darray.Flat[float64](a))
}

func convert[T constraints.Integer | constraints.Float](values []T) []float64 {
	converted := make([]float64, len(values))
	for i, v := range values {
		converted[i] = float64(v)
	}
	return converted
}

// agree returns whether got matches want: integers exactly, floating-point values within a
// tolerance that accounts for reductions accumulating in a different order.
func agree(dtype dtypes.DType, want, got []float64) bool {
	if len(want) != len(got) {
		return false
	}
	tolerance := 1e-9
	switch dtype {
	case dtypes.Float32:
		tolerance = 1e-3
	case dtypes.Int8, dtypes.Int32:
		return slices.Equal(want, got)
	}
	for i, w := range want {
		g := got[i]
		switch {
		case math.IsNaN(w) || math.IsNaN(g):
			if math.IsNaN(w) != math.IsNaN(g) {
				return false
			}
		case math.IsInf(w, 0) || math.IsInf(g, 0):
			if w != g {
				return false
			}
		case !scalar.EqualWithinAbsOrRel(w, g, tolerance, tolerance):
			return false
		}
	}
	return true
}
