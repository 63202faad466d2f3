package ops

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquare(t *testing.T) {
	f := single([]float32{-2, 0, 3})
	require.NoError(t, Apply(Square(), f.d, f.s))
	assert.Equal(t, []float32{4, 0, 9}, f.s.Data())

	// Integers wrap around.
	i8 := single([]int8{16, 12, -3})
	require.NoError(t, Apply(Square(), i8.d, i8.s))
	assert.Equal(t, []int8{0, -112, 9}, i8.s.Data())
}

func TestClamp(t *testing.T) {
	op, err := Clamp(0, 1)
	require.NoError(t, err)
	f := single([]float64{-1, 0.5, 2})
	require.NoError(t, Apply(op, f.d, f.s))
	assert.Equal(t, []float64{0, 0.5, 1}, f.s.Data())

	// The result is within bounds, values already within bounds are unchanged.
	values := randomValues[float32](1, 74)
	op, err = Clamp(-1.5, 2)
	require.NoError(t, err)
	for _, f := range fixtures(t, values, 2) {
		require.NoError(t, Apply(op, f.d, f.s))
		for i, v := range f.values() {
			require.GreaterOrEqual(t, v, float32(-1.5))
			require.LessOrEqual(t, v, float32(2))
			if values[i] >= -1.5 && values[i] <= 2 {
				require.Equal(t, values[i], v)
			}
		}
		f.requireGapsUntouched(t)
	}

	// A NaN bound is disabled.
	op, err = Clamp(math.NaN(), 0)
	require.NoError(t, err)
	f = single([]float64{-10, 3, math.Inf(-1)})
	require.NoError(t, Apply(op, f.d, f.s))
	assert.Equal(t, []float64{-10, 0, math.Inf(-1)}, f.s.Data())

	// For integers, the lowest value is the NaN sentinel.
	op, err = Clamp(math.MinInt8, 5)
	require.NoError(t, err)
	i8 := single([]int8{-128, 10, 4})
	require.NoError(t, Apply(op, i8.d, i8.s))
	assert.Equal(t, []int8{-128, 5, 4}, i8.s.Data())

	// Parameters are converted with saturation.
	op, err = Clamp(-1000, 1000)
	require.NoError(t, err)
	i8 = single([]int8{-128, 127})
	require.NoError(t, Apply(op, i8.d, i8.s))
	assert.Equal(t, []int8{-128, 127}, i8.s.Data())

	_, err = Clamp(2, 1)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNanToNum(t *testing.T) {
	values := randomValues[float64](2, 74)
	values[3] = math.NaN()
	values[40] = math.Inf(1)
	values[41] = math.Inf(-1)
	values[73] = math.NaN()

	op, err := NanToNum(0, 100, -100)
	require.NoError(t, err)
	for _, f := range fixtures(t, values, 2) {
		require.NoError(t, Apply(op, f.d, f.s))
		for i, v := range f.values() {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s: element %d is %g", f.name, i, v)
			switch i {
			case 3, 73:
				require.Equal(t, 0.0, v)
			case 40:
				require.Equal(t, 100.0, v)
			case 41:
				require.Equal(t, -100.0, v)
			default:
				require.Equal(t, values[i], v)
			}
		}
		f.requireGapsUntouched(t)
	}

	// Defaults use the largest finite values of the dtype.
	f32 := single([]float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), 1})
	require.NoError(t, Apply(NanToNumDefault(), f32.d, f32.s))
	assert.Equal(t, []float32{0, math.MaxFloat32, -math.MaxFloat32, 1}, f32.s.Data())

	// No-op for integers.
	i32 := single([]int32{math.MinInt32, 0, math.MaxInt32})
	require.NoError(t, Apply(op, i32.d, i32.s))
	assert.Equal(t, []int32{math.MinInt32, 0, math.MaxInt32}, i32.s.Data())

	_, err = NanToNum(math.NaN(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NanToNum(0, math.Inf(1), 0)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFillNaN(t *testing.T) {
	f := single([]float32{1, float32(math.NaN()), 3})
	require.NoError(t, Apply(FillNaN(-1), f.d, f.s))
	assert.Equal(t, []float32{1, -1, 3}, f.s.Data())

	i8 := single([]int8{-128, 1})
	require.NoError(t, Apply(FillNaN(5), i8.d, i8.s))
	assert.Equal(t, []int8{-128, 1}, i8.s.Data())
}

func TestCompareMask(t *testing.T) {
	values := []float64{-1, 0, 1, math.NaN()}
	want := map[Compare][]float64{
		CompareLT: {1, 0, 0, 0},
		CompareLE: {1, 1, 0, 0},
		CompareEQ: {0, 1, 0, 0},
		CompareGT: {0, 0, 1, 0},
		CompareGE: {0, 1, 1, 0},
		CompareNE: {1, 0, 1, 1},
	}
	for cmp, expected := range want {
		op, err := CompareMask(cmp, 0)
		require.NoError(t, err)
		f := single(values)
		require.NoError(t, Apply(op, f.d, f.s))
		assert.Equal(t, expected, f.s.Data(), "comparison %s", cmp)

		parsed, err := ParseCompare(cmp.String())
		require.NoError(t, err)
		assert.Equal(t, cmp, parsed)
	}

	op, err := CompareMask(CompareGE, 2)
	require.NoError(t, err)
	i32 := single([]int32{1, 2, 3})
	require.NoError(t, Apply(op, i32.d, i32.s))
	assert.Equal(t, []int32{0, 1, 1}, i32.s.Data())

	_, err = CompareMask(Compare(42), 0)
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = ParseCompare("<>")
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRounding(t *testing.T) {
	f := single([]float64{-1.5, -0.5, 0.5, 1.5, 2.7})
	require.NoError(t, Apply(Rint(), f.d, f.s))
	assert.Equal(t, []float64{-2, -0, 0, 2, 3}, f.s.Data())

	f = single([]float64{-1.5, 2.2})
	require.NoError(t, Apply(Ceil(), f.d, f.s))
	assert.Equal(t, []float64{-1, 3}, f.s.Data())
	require.NoError(t, Apply(Floor(), f.d, f.s))
	assert.Equal(t, []float64{-1, 3}, f.s.Data())

	i8 := single([]int8{-3, 3})
	require.NoError(t, Apply(Floor(), i8.d, i8.s))
	assert.Equal(t, []int8{-3, 3}, i8.s.Data())
}

func TestAbsNeg(t *testing.T) {
	i8 := single([]int8{-128, -3, 4})
	require.NoError(t, Apply(Abs(), i8.d, i8.s))
	assert.Equal(t, []int8{-128, 3, 4}, i8.s.Data())
	require.NoError(t, Apply(Neg(), i8.d, i8.s))
	assert.Equal(t, []int8{-128, -3, -4}, i8.s.Data())
}

func TestFloatingOnly(t *testing.T) {
	unaryOps := []UnaryOp{Sinh(), Acos(), Expm1(), Exp(), Sqrt(), Pow(3), Softmax(), LogSoftmax()}
	int8Values := randomValues[int8](3, 74)
	int32Values := randomValues[int32](3, 74)
	for _, op := range unaryOps {
		require.True(t, op.FloatingOnly(), op.Name())
		for _, f := range fixtures(t, int8Values, 2) {
			require.ErrorIs(t, Apply(op, f.d, f.s), ErrOperationNotSupported, op.Name())
			require.Equal(t, int8Values, f.values(), "%s modified the storage", op.Name())
		}
		for _, f := range fixtures(t, int32Values, 2) {
			require.ErrorIs(t, Apply(op, f.d, f.s), ErrOperationNotSupported, op.Name())
			require.Equal(t, int32Values, f.values(), "%s modified the storage", op.Name())
		}
	}

	f := single(int32Values)
	for _, op := range []ReduceOp{ReduceMean(), ReduceNanMean(), must.M1(ReduceVarc(1, math.NaN()))} {
		_, err := Reduce(op, f.d, f.s)
		require.ErrorIs(t, err, ErrOperationNotSupported, op.Name())
	}

	f2 := single(int32Values)
	require.ErrorIs(t, ApplyBinary(Div(), f.d, f.s, f2.d, f2.s), ErrOperationNotSupported)
	require.ErrorIs(t, ApplyBinaryScalar(Div(), f.d, f.s, 2), ErrOperationNotSupported)
	require.Equal(t, int32Values, f.s.Data())
}

func TestTranscendental(t *testing.T) {
	f := single([]float64{0, 1, 0.5})
	require.NoError(t, Apply(Sinh(), f.d, f.s))
	assert.Equal(t, []float64{0, math.Sinh(1), math.Sinh(0.5)}, f.s.Data())

	small := float32(1e-7)
	f32 := single([]float32{0, small, 1})
	require.NoError(t, Apply(Expm1(), f32.d, f32.s))
	assert.Equal(t, []float32{0, float32(math.Expm1(float64(small))), float32(math.Expm1(1))}, f32.s.Data())

	f = single([]float64{2, 1, 0})
	require.NoError(t, Apply(Acos(), f.d, f.s))
	assert.True(t, math.IsNaN(f.s.Get(0)))
	assert.Equal(t, []float64{0, math.Pi / 2}, f.s.Data()[1:])

	f = single([]float64{0})
	require.NoError(t, Apply(Sigmoid(), f.d, f.s))
	assert.Equal(t, 0.5, f.s.Get(0))
}

// testUnaryStrategies applies every unary operator of the catalogue to the same logical
// values in three layouts, and checks all strategies give identical results.
func testUnaryStrategies[T storage.Supported](t *testing.T, values []T) {
	for _, name := range UnaryNames() {
		op, err := UnaryByName(name)
		require.NoError(t, err)
		fs := fixtures(t, values, 2)
		var results [][]T
		for _, f := range fs {
			err := Apply(op, f.d, f.s)
			if op.FloatingOnly() && !storage.IsFloat[T]() {
				require.ErrorIs(t, err, ErrOperationNotSupported, name)
				continue
			}
			require.NoError(t, err, name)
			f.requireGapsUntouched(t)
			results = append(results, f.values())
		}
		if len(results) == 0 {
			continue
		}
		context := fmt.Sprintf("%s (%s)", name, fs[0].s.DType())
		requireIdentical(t, results[0], results[1], context+" unit vs step")
		if name == "softmax" || name == "logsoftmax" {
			// The generic strategy sums in a different order.
			requireNear(t, results[0], results[2], context+" unit vs generic")
		} else {
			requireIdentical(t, results[0], results[2], context+" unit vs generic")
		}
	}
}

func TestUnaryStrategies(t *testing.T) {
	for _, mode := range []string{"vectorized", "scalar"} {
		t.Run(mode, func(t *testing.T) {
			if mode == "scalar" {
				defer simd.Disable()()
			}
			const n = 2 * 67
			testUnaryStrategies(t, randomValues[int8](4, n))
			testUnaryStrategies(t, randomValues[int32](5, n))
			testUnaryStrategies(t, randomValues[float32](6, n))
			float64Values := randomValues[float64](7, n)
			float64Values[5] = math.NaN()
			float64Values[100] = math.Inf(1)
			float64Values[101] = math.Copysign(0, -1)
			testUnaryStrategies(t, float64Values)
		})
	}
}

func TestUnaryStrategies_Scalar(t *testing.T) {
	defer simd.Disable()()
	values := randomValues[float32](8, 50)
	f := single(values)
	require.Equal(t, "Generic", f.d.Strategy().String())
	require.NoError(t, Apply(Square(), f.d, f.s))
	for i, v := range values {
		require.Equal(t, v*v, f.s.Get(i))
	}
}
