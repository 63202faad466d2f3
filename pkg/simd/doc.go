// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simd complements github.com/ajroetker/go-highway/hwy with the few vector
// operations the darray kernels need and hwy doesn't provide with the same semantics as
// the scalar Go code: Min, Max and their reductions propagate NaN like the Go builtins,
// ReduceMul folds a product and Map applies a scalar function to every lane.
//
// It also holds the switch that decides whether loops use their vector phase at all.
// Vectorization is off if hwy runs in scalar mode, e.g. when HWY_NO_SIMD is set, and it
// can be turned off for tests and benchmarks with Disable.
//
// Everything else (vector types, loads, stores, gathers and arithmetic) is used directly
// from hwy:
//
//	v := hwy.Load(data[p:])
//	v = simd.Max(v, hwy.Set[float32](0))
//	hwy.Store(v, data[p:])
package simd
