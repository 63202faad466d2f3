// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/exceptions"
)

// unaryKernel is the per-dtype implementation of an element-wise transform.
// scalar and vector must compute exactly the same function.
type unaryKernel[T storage.Supported] struct {
	scalar func(x T) T
	vector func(v hwy.Vec[T]) hwy.Vec[T]

	// skip, if not nil, is called on each vector block: blocks for which it returns true
	// are left unchanged.
	skip func(v hwy.Vec[T]) bool
}

// newUnaryKernel returns a kernel whose vector version applies scalar to every lane,
// if vector is nil.
func newUnaryKernel[T storage.Supported](scalar func(T) T, vector func(hwy.Vec[T]) hwy.Vec[T]) *unaryKernel[T] {
	if vector == nil {
		vector = func(v hwy.Vec[T]) hwy.Vec[T] { return simd.Map(v, scalar) }
	}
	return &unaryKernel[T]{scalar: scalar, vector: vector}
}

// reducer is the per-dtype implementation of a reduction.
//
// Every offset of a vectorized traversal starts with a vector accumulator with all lanes set
// to seed, and updated with vector. After the vector phase, the accumulator is folded into
// a scalar with fold and combined with the running result with scalar. Then the scalar
// remainder is combined one element at a time.
type reducer[T storage.Supported] struct {
	seed   T
	scalar func(acc, x T) T
	vector func(acc, v hwy.Vec[T]) hwy.Vec[T]
	fold   func(v hwy.Vec[T]) T
}

// binaryKernel is the per-dtype implementation of a binary element-wise operation.
type binaryKernel[T storage.Supported] struct {
	scalar func(a, b T) T
	vector func(a, b hwy.Vec[T]) hwy.Vec[T]
}

// runUnary transforms in place every element visited by d.
func runUnary[T storage.Supported](d loops.Descriptor, s *storage.Storage[T], k *unaryKernel[T]) {
	switch d.Strategy() {
	case loops.StrategyUnit:
		for _, p := range d.Offsets {
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				v := s.GetVector(p)
				if k.skip == nil || !k.skip(v) {
					s.SetVector(p, k.vector(v))
				}
				p += d.SimdLen
			}
			for ; i < d.Bound; i++ {
				s.Set(p, k.scalar(s.Get(p)))
				p++
			}
		}

	case loops.StrategyStep:
		idx := d.SimdIdx()
		for _, p := range d.Offsets {
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				v := s.GatherVector(p, idx)
				if k.skip == nil || !k.skip(v) {
					s.ScatterVector(p, idx, k.vector(v))
				}
				p += d.SimdLen * d.Step
			}
			for ; i < d.Bound; i++ {
				s.Set(p, k.scalar(s.Get(p)))
				p += d.Step
			}
		}

	default:
		for _, p := range d.Offsets {
			for range d.Bound {
				s.Set(p, k.scalar(s.Get(p)))
				p += d.Step
			}
		}
	}
}

// runReduce reduces the elements visited by d, in the order of d.Offsets.
//
// If m is not nil, each element is first transformed by m and, if write is set, the
// transformed value is stored back.
func runReduce[T storage.Supported](d loops.Descriptor, s *storage.Storage[T], m *unaryKernel[T], write bool, r *reducer[T]) T {
	acc := r.seed
	switch d.Strategy() {
	case loops.StrategyUnit:
		for _, p := range d.Offsets {
			vacc := hwy.Set(r.seed)
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				v := s.GetVector(p)
				if m != nil {
					v = m.vector(v)
					if write {
						s.SetVector(p, v)
					}
				}
				vacc = r.vector(vacc, v)
				p += d.SimdLen
			}
			acc = r.scalar(acc, r.fold(vacc))
			for ; i < d.Bound; i++ {
				acc = r.scalar(acc, mapAt(s, p, m, write))
				p++
			}
		}

	case loops.StrategyStep:
		idx := d.SimdIdx()
		for _, p := range d.Offsets {
			vacc := hwy.Set(r.seed)
			i := 0
			for ; i < d.SimdBound; i += d.SimdLen {
				v := s.GatherVector(p, idx)
				if m != nil {
					v = m.vector(v)
					if write {
						s.ScatterVector(p, idx, v)
					}
				}
				vacc = r.vector(vacc, v)
				p += d.SimdLen * d.Step
			}
			acc = r.scalar(acc, r.fold(vacc))
			for ; i < d.Bound; i++ {
				acc = r.scalar(acc, mapAt(s, p, m, write))
				p += d.Step
			}
		}

	default:
		for _, p := range d.Offsets {
			for range d.Bound {
				acc = r.scalar(acc, mapAt(s, p, m, write))
				p += d.Step
			}
		}
	}
	return acc
}

// mapAt returns the element at p, transformed by m if it is not nil.
func mapAt[T storage.Supported](s *storage.Storage[T], p int, m *unaryKernel[T], write bool) T {
	x := s.Get(p)
	if m == nil {
		return x
	}
	x = m.scalar(x)
	if write {
		s.Set(p, x)
	}
	return x
}

// runBinary computes dst[i] = k(dst[i], src[i]) over two descriptors visiting the same
// number of elements. Both vector phases are used only if both descriptors have one.
func runBinary[T storage.Supported](dd loops.Descriptor, dst *storage.Storage[T], sd loops.Descriptor, src *storage.Storage[T], k *binaryKernel[T]) {
	if len(dd.Offsets) != len(sd.Offsets) || dd.Bound != sd.Bound {
		exceptions.Panicf("binary operation over descriptors with %d x %d and %d x %d elements",
			len(dd.Offsets), dd.Bound, len(sd.Offsets), sd.Bound)
	}
	dstStrategy, srcStrategy := dd.Strategy(), sd.Strategy()
	switch {
	case dstStrategy == loops.StrategyUnit && srcStrategy == loops.StrategyUnit:
		for n, p := range dd.Offsets {
			q := sd.Offsets[n]
			i := 0
			for ; i < dd.SimdBound; i += dd.SimdLen {
				dst.SetVector(p, k.vector(dst.GetVector(p), src.GetVector(q)))
				p += dd.SimdLen
				q += dd.SimdLen
			}
			for ; i < dd.Bound; i++ {
				dst.Set(p, k.scalar(dst.Get(p), src.Get(q)))
				p++
				q++
			}
		}

	case dstStrategy != loops.StrategyGeneric && srcStrategy != loops.StrategyGeneric:
		dstIdx, srcIdx := dd.SimdIdx(), sd.SimdIdx()
		for n, p := range dd.Offsets {
			q := sd.Offsets[n]
			i := 0
			for ; i < dd.SimdBound; i += dd.SimdLen {
				dst.ScatterVector(p, dstIdx, k.vector(dst.GatherVector(p, dstIdx), src.GatherVector(q, srcIdx)))
				p += dd.SimdLen * dd.Step
				q += sd.SimdLen * sd.Step
			}
			for ; i < dd.Bound; i++ {
				dst.Set(p, k.scalar(dst.Get(p), src.Get(q)))
				p += dd.Step
				q += sd.Step
			}
		}

	default:
		for n, p := range dd.Offsets {
			q := sd.Offsets[n]
			for range dd.Bound {
				dst.Set(p, k.scalar(dst.Get(p), src.Get(q)))
				p += dd.Step
				q += sd.Step
			}
		}
	}
}

// runBinaryScalar computes dst[i] = k(dst[i], value).
func runBinaryScalar[T storage.Supported](d loops.Descriptor, dst *storage.Storage[T], value T, k *binaryKernel[T]) {
	var broadcast hwy.Vec[T]
	if d.SimdBound > 0 {
		broadcast = hwy.Set(value)
	}
	runUnary(d, dst, &unaryKernel[T]{
		scalar: func(x T) T { return k.scalar(x, value) },
		vector: func(v hwy.Vec[T]) hwy.Vec[T] { return k.vector(v, broadcast) },
	})
}
