package main

import (
	"math"
	"testing"

	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/ops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOps(t *testing.T) {
	all, err := selectOps("")
	require.NoError(t, err)
	assert.Equal(t, allOps(), all)

	refs, err := selectOps("max, unary:exp,exp")
	require.NoError(t, err)
	assert.Equal(t, []opRef{{kindReduce, "max"}, {kindBinary, "max"}, {kindUnary, "exp"}}, refs)

	_, err = selectOps("nope")
	require.Error(t, err)
}

func TestParseDTypes(t *testing.T) {
	dts, err := parseDTypes("float32, int8")
	require.NoError(t, err)
	assert.Equal(t, []dtypes.DType{dtypes.Float32, dtypes.Int8}, dts)
	_, err = parseDTypes("int64")
	require.Error(t, err)
}

func TestAgree(t *testing.T) {
	assert.True(t, agree(dtypes.Float64, []float64{1, math.NaN(), math.Inf(1)}, []float64{1, math.NaN(), math.Inf(1)}))
	assert.False(t, agree(dtypes.Float64, []float64{1}, []float64{1.001}))
	assert.True(t, agree(dtypes.Float32, []float64{1}, []float64{1.0001}))
	assert.False(t, agree(dtypes.Int32, []float64{1}, []float64{1.0001}))
	assert.False(t, agree(dtypes.Float32, []float64{math.NaN()}, []float64{0}))
	assert.False(t, agree(dtypes.Float32, []float64{1}, []float64{1, 2}))
}

// Every operator of the catalogue yields the same values on every layout.
func TestBenchCase_Layouts(t *testing.T) {
	var seed uint64
	for _, ref := range allOps() {
		for _, dtype := range []dtypes.DType{dtypes.Int8, dtypes.Int32, dtypes.Float32, dtypes.Float64} {
			seed++
			c := newBenchCase(ref, dtype, 9, 2, seed)
			want := c.run("contiguous", 2)
			strategies := make(map[string]loops.Strategy)
			for _, layoutName := range layoutNames[1:] {
				got := c.run(layoutName, 2)
				strategies[layoutName] = got.strategy
				if want.err != nil {
					require.ErrorIs(t, want.err, ops.ErrOperationNotSupported, "%s %s", ref, dtype)
					require.ErrorIs(t, got.err, ops.ErrOperationNotSupported, "%s %s %s", ref, dtype, layoutName)
					continue
				}
				require.NoError(t, got.err, "%s %s %s", ref, dtype, layoutName)
				require.True(t, agree(dtype, want.values, got.values), "%s %s %s: want %v, got %v",
					ref, dtype, layoutName, want.values, got.values)
			}
			if simd.Enabled() {
				assert.Equal(t, loops.StrategyUnit, want.strategy)
				assert.Equal(t, loops.StrategyStep, strategies["strided"])
			}
			assert.Equal(t, loops.StrategyGeneric, strategies["scalar"])
		}
	}
}
