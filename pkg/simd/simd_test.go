// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simd

import (
	"math"
	"testing"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// full returns a vector with all lanes of type T, the first ones set to values and the
// remaining ones to fill.
func full[T hwy.Lanes](fill T, values ...T) hwy.Vec[T] {
	data := make([]T, hwy.MaxLanes[T]())
	for i := range data {
		data[i] = fill
	}
	copy(data, values)
	return hwy.Load(data)
}

func TestDisable(t *testing.T) {
	initial := Enabled()
	restore := Disable()
	assert.False(t, Enabled())
	assert.Equal(t, "scalar", Name())
	restore()
	assert.Equal(t, initial, Enabled())
}

func TestMap(t *testing.T) {
	v := full[float64](0, 1, 4, 9)
	got := lanes(Map(v, math.Sqrt))
	require.Len(t, got, hwy.MaxLanes[float64]())
	assert.Equal(t, []float64{1, 2}, got[:2])
}

func TestMaxMin(t *testing.T) {
	nan := math.NaN()
	a := full[float32](1, float32(nan), 3)
	b := full[float32](2, 5, float32(nan))
	maxValues, minValues := lanes(Max(a, b)), lanes(Min(a, b))
	for _, values := range [][]float32{maxValues, minValues} {
		assert.True(t, math.IsNaN(float64(values[0])))
		assert.True(t, math.IsNaN(float64(values[1])))
	}
	assert.Equal(t, float32(2), maxValues[len(maxValues)-1])
	assert.Equal(t, float32(1), minValues[len(minValues)-1])

	i := lanes(Max(full[int8](-1, 7), full[int8](3)))
	assert.Equal(t, int8(7), i[0])
	assert.Equal(t, int8(3), i[1])
}

func TestReduce(t *testing.T) {
	f := full[float64](0, 3, -1)
	assert.Equal(t, 3.0, ReduceMax(f))
	assert.Equal(t, -1.0, ReduceMin(f))
	assert.Equal(t, 3.0, ReduceMul(full[float64](1, -3, -1)))

	// NaN in the last lane.
	last := make([]float64, hwy.MaxLanes[float64]())
	last[len(last)-1] = math.NaN()
	assert.True(t, math.IsNaN(ReduceMax(hwy.Load(last))))
	assert.True(t, math.IsNaN(ReduceMin(hwy.Load(last))))

	// int8 products wrap around: 16 * 16 = 256 = 0.
	assert.Equal(t, int8(0), ReduceMul(full[int8](1, 16, 16)))
	assert.Equal(t, int8(-128), ReduceMin(full[int8](0, -128, 127)))
}
