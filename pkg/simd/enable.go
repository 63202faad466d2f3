// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simd

import (
	"github.com/ajroetker/go-highway/hwy"
	"k8s.io/klog/v2"
)

var enabled = hwy.CurrentLevel() != hwy.DispatchScalar

func init() {
	klog.V(1).Infof("darray simd: hwy level %s, width %d bytes, vectorized loops %v",
		hwy.CurrentName(), hwy.CurrentWidth(), enabled)
}

// Enabled returns whether loops should use their vector phase.
func Enabled() bool { return enabled }

// Disable turns off the vector phase of the loops created after it is called, and returns
// a function that restores the previous state.
//
// It is meant for tests and benchmarks: it must not be called while operators are running.
func Disable() (restore func()) {
	previous := enabled
	enabled = false
	return func() { enabled = previous }
}

// Name describes the vectorization in use, e.g. "sse2" or "scalar".
func Name() string {
	if !enabled {
		return "scalar"
	}
	return hwy.CurrentName()
}
