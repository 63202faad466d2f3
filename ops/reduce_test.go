package ops

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestReduceMax(t *testing.T) {
	// Every other element of [5, -3, 7, 2].
	s := storage.FromSlice([]int32{5, -3, 7, 2})
	d := loops.New(dtypes.Int32, []int{0}, 2, 2)
	result, err := Reduce(ReduceMax(), d, s)
	require.NoError(t, err)
	assert.Equal(t, int32(7), result)

	// NaN propagates.
	f := single([]float64{1, math.NaN(), 3})
	maxValue, err := Reduce(ReduceMax(), f.d, f.s)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(maxValue))
}

func TestReduceMax_Concat(t *testing.T) {
	a := randomValues[float32](10, 45)
	b := randomValues[float32](11, 29)
	maxA := must.M1(Reduce(ReduceMax(), single(a).d, single(a).s))
	maxB := must.M1(Reduce(ReduceMax(), single(b).d, single(b).s))
	ab := single(append(append([]float32{}, a...), b...))
	maxAB := must.M1(Reduce(ReduceMax(), ab.d, ab.s))
	assert.Equal(t, max(maxA, maxB), maxAB)

	minAB := must.M1(Reduce(ReduceMin(), ab.d, ab.s))
	minA := must.M1(Reduce(ReduceMin(), single(a).d, single(a).s))
	minB := must.M1(Reduce(ReduceMin(), single(b).d, single(b).s))
	assert.Equal(t, min(minA, minB), minAB)
}

func TestReductions(t *testing.T) {
	f := single([]int8{100, 100, -3})
	assert.Equal(t, int8(-59), must.M1(Reduce(ReduceSum(), f.d, f.s)), "int8 sums wrap around")
	assert.Equal(t, int8(-3), must.M1(Reduce(ReduceMin(), f.d, f.s)))
	assert.Equal(t, int8(-48), must.M1(Reduce(ReduceProd(), f.d, f.s)), "100*100*-3 wraps around")

	f64 := single([]float64{1, 2, math.NaN(), 4})
	assert.True(t, math.IsNaN(must.M1(Reduce(ReduceSum(), f64.d, f64.s))))
	assert.Equal(t, 7.0, must.M1(Reduce(ReduceNanSum(), f64.d, f64.s)))
	assert.Equal(t, 8.0, must.M1(Reduce(ReduceNanProd(), f64.d, f64.s)))
	assert.Equal(t, 4.0, must.M1(Reduce(ReduceNanMax(), f64.d, f64.s)))
	assert.Equal(t, 1.0, must.M1(Reduce(ReduceNanMin(), f64.d, f64.s)))
	assert.InDelta(t, 7.0/3, must.M1(Reduce(ReduceNanMean(), f64.d, f64.s)), 1e-15)
	assert.True(t, math.IsNaN(must.M1(Reduce(ReduceMean(), f64.d, f64.s))))

	allNaN := single([]float32{float32(math.NaN()), float32(math.NaN())})
	assert.True(t, math.IsInf(float64(must.M1(Reduce(ReduceNanMax(), allNaN.d, allNaN.s))), -1))
	assert.True(t, math.IsNaN(float64(must.M1(Reduce(ReduceNanMean(), allNaN.d, allNaN.s)))))

	// Integer NaN-aware reductions are the plain ones.
	i32 := single([]int32{math.MinInt32, 5})
	assert.Equal(t, int32(math.MinInt32+5), must.M1(Reduce(ReduceNanSum(), i32.d, i32.s)))
}

func TestReductions_Empty(t *testing.T) {
	d := loops.New(dtypes.Float64, nil, 0, 1)
	s := storage.New[float64](0)
	assert.Equal(t, 0.0, must.M1(Reduce(ReduceSum(), d, s)))
	assert.Equal(t, 1.0, must.M1(Reduce(ReduceProd(), d, s)))
	assert.True(t, math.IsInf(must.M1(Reduce(ReduceMax(), d, s)), -1))
	assert.True(t, math.IsInf(must.M1(Reduce(ReduceMin(), d, s)), 1))
	assert.True(t, math.IsNaN(must.M1(Reduce(ReduceMean(), d, s))))

	di := loops.New(dtypes.Int8, nil, 0, 1)
	si := storage.New[int8](0)
	assert.Equal(t, int8(math.MinInt8), must.M1(Reduce(ReduceMax(), di, si)))
	assert.Equal(t, int8(math.MaxInt8), must.M1(Reduce(ReduceMin(), di, si)))
}

func TestReduceMean(t *testing.T) {
	values := randomValues[float64](12, 2*101)
	want := 0.0
	for _, v := range values {
		want += v
	}
	want /= float64(len(values))
	for _, f := range fixtures(t, values, 2) {
		got := must.M1(Reduce(ReduceMean(), f.d, f.s))
		assert.True(t, scalar.EqualWithinAbsOrRel(want, got, 1e-14, 1e-14), "%s: want %g, got %g", f.name, want, got)
	}

	// Mean of float32 values, compared with the float64 mean.
	values32 := make([]float32, len(values))
	for i, v := range values {
		values32[i] = float32(v)
	}
	want32 := 0.0
	for _, v := range values32 {
		want32 += float64(v)
	}
	want32 /= float64(len(values32))
	f := single(values32)
	assert.InDelta(t, want32, float64(must.M1(Reduce(ReduceMean(), f.d, f.s))), 1e-6)
}

func TestReduceVarc(t *testing.T) {
	f := single([]float64{1, 2, 3, 4})
	population := must.M1(ReduceVarc(0, math.NaN()))
	sample := must.M1(ReduceVarc(1, math.NaN()))
	assert.InDelta(t, 1.25, must.M1(Reduce(population, f.d, f.s)), 1e-15)
	assert.InDelta(t, 5.0/3, must.M1(Reduce(sample, f.d, f.s)), 1e-15)

	// Given mean.
	withMean := must.M1(ReduceVarc(0, 2.5))
	assert.InDelta(t, 1.25, must.M1(Reduce(withMean, f.d, f.s)), 1e-15)

	f32 := single([]float32{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 4.0, float64(must.M1(Reduce(population, f32.d, f32.s))), 1e-6)

	_, err := ReduceVarc(-1, math.NaN())
	require.ErrorIs(t, err, ErrInvalidParameter)
}

// testReduceStrategies runs every reduction of the catalogue on the same logical values in
// three layouts. Integer results and min/max are identical for all strategies; the unit and
// step strategies accumulate in the same order, so their float results are identical too.
func testReduceStrategies[T storage.Supported](t *testing.T, values []T) {
	for _, name := range ReduceNames() {
		op, err := ReduceByName(name)
		require.NoError(t, err)
		var results []T
		for _, f := range fixtures(t, values, 3) {
			result, err := Reduce(op, f.d, f.s)
			if op.FloatingOnly() && !storage.IsFloat[T]() {
				require.ErrorIs(t, err, ErrOperationNotSupported, name)
				continue
			}
			require.NoError(t, err, name)
			results = append(results, result)
		}
		if len(results) == 0 {
			continue
		}
		context := fmt.Sprintf("%s (%s)", name, dtypes.FromGenericsType[T]())
		requireIdentical(t, results[:1], results[1:2], context+" unit vs step")
		switch {
		case !storage.IsFloat[T](), name == "max", name == "min", name == "nanmax", name == "nanmin":
			requireIdentical(t, results[:1], results[2:], context+" unit vs generic")
		default:
			requireNear(t, results[:1], results[2:], context+" unit vs generic")
		}
	}
}

func TestReduceStrategies(t *testing.T) {
	for _, mode := range []string{"vectorized", "scalar"} {
		t.Run(mode, func(t *testing.T) {
			if mode == "scalar" {
				defer simd.Disable()()
			}
			const n = 3 * 71
			testReduceStrategies(t, randomValues[int8](13, n))
			testReduceStrategies(t, randomValues[int32](14, n))
			testReduceStrategies(t, nearOne(randomValues[float32](15, n)))
			float64Values := nearOne(randomValues[float64](16, n))
			float64Values[7] = math.NaN()
			testReduceStrategies(t, float64Values)
		})
	}
}

// nearOne maps values from [-4, 4) to [0.5, 1.5), so long products don't overflow.
func nearOne[T floats](values []T) []T {
	for i, v := range values {
		values[i] = 1 + v/8
	}
	return values
}
