package ops

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gomlx/darray/loops"
	"github.com/gomlx/darray/pkg/simd"
	"github.com/gomlx/darray/types/storage"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

// fixture is a traversal of a storage holding some logical values.
type fixture[T storage.Supported] struct {
	name string
	d    loops.Descriptor
	s    *storage.Storage[T]
}

// gapMarker fills the storage positions not visited by the strided fixture.
const gapMarker = 7

const fixtureStep = 3

// fixtures returns the same logical values in three physical layouts, each traversed with a
// different strategy. The values are split in rows rows. The unit and step fixtures only
// use their vector strategy if vectorization is enabled and a row holds at least one vector.
func fixtures[T storage.Supported](t *testing.T, values []T, rows int) []fixture[T] {
	require.Zero(t, len(values)%rows)
	dtype := dtypes.FromGenericsType[T]()
	bound := len(values) / rows

	unitOffsets := make([]int, rows)
	stepOffsets := make([]int, rows)
	for row := range rows {
		unitOffsets[row] = row * bound
		stepOffsets[row] = row * bound * fixtureStep
	}

	strided := storage.New[T](len(values) * fixtureStep)
	strided.Fill(gapMarker)
	for i, v := range values {
		strided.Set(i*fixtureStep, v)
	}

	results := []fixture[T]{
		{name: "unit", d: loops.New(dtype, unitOffsets, bound, 1), s: storage.FromSlice(slices.Clone(values))},
		{name: "step", d: loops.New(dtype, stepOffsets, bound, fixtureStep), s: strided},
		{name: "generic", d: loops.New(dtype, unitOffsets, bound, 1).WithoutSimd(), s: storage.FromSlice(slices.Clone(values))},
	}
	if simd.Enabled() && bound >= results[0].d.SimdLen {
		require.Equal(t, loops.StrategyUnit, results[0].d.Strategy())
		require.Equal(t, loops.StrategyStep, results[1].d.Strategy())
	}
	require.Equal(t, loops.StrategyGeneric, results[2].d.Strategy())
	return results
}

// single returns a unit-stride fixture over a copy of values.
func single[T storage.Supported](values []T) fixture[T] {
	return fixture[T]{
		name: "unit",
		d:    loops.New(dtypes.FromGenericsType[T](), []int{0}, len(values), 1),
		s:    storage.FromSlice(slices.Clone(values)),
	}
}

// values returns the logical values, in traversal order.
func (f fixture[T]) values() []T {
	values := make([]T, 0, f.d.Size())
	for pos := range f.d.Positions() {
		values = append(values, f.s.Get(pos))
	}
	return values
}

// requireGapsUntouched checks that positions outside the traversal were not written.
func (f fixture[T]) requireGapsUntouched(t *testing.T) {
	visited := make(map[int]bool, f.d.Size())
	for pos := range f.d.Positions() {
		visited[pos] = true
	}
	for pos := range f.s.Len() {
		if !visited[pos] {
			require.Equal(t, T(gapMarker), f.s.Get(pos), "%s: position %d outside of the traversal was changed", f.name, pos)
		}
	}
}

// identical compares bit by bit, except that all NaNs are identical.
func identical[T storage.Supported](a, b T) bool {
	fa, fb := float64(a), float64(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.IsNaN(fa) && math.IsNaN(fb)
	}
	return math.Float64bits(fa) == math.Float64bits(fb)
}

func requireIdentical[T storage.Supported](t *testing.T, want, got []T, context string) {
	require.Len(t, got, len(want), context)
	for i := range want {
		require.Truef(t, identical(want[i], got[i]), "%s: element %d: want %v, got %v", context, i, want[i], got[i])
	}
}

// near compares with a tolerance adequate for values accumulated in a different order.
func near[T storage.Supported](a, b T) bool {
	fa, fb := float64(a), float64(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.IsNaN(fa) && math.IsNaN(fb)
	}
	if math.IsInf(fa, 0) || math.IsInf(fb, 0) {
		return fa == fb
	}
	tol := 1e-12
	if _, ok := any(a).(float32); ok {
		tol = 1e-5
	}
	return scalar.EqualWithinAbsOrRel(fa, fb, tol, tol)
}

func requireNear[T storage.Supported](t *testing.T, want, got []T, context string) {
	require.Len(t, got, len(want), context)
	for i := range want {
		require.Truef(t, near(want[i], got[i]), "%s: element %d: want %v, got %v", context, i, want[i], got[i])
	}
}

// randomValues returns n values uniformly distributed in [-4, 4), truncated for integers.
func randomValues[T storage.Supported](seed uint64, n int) []T {
	rng := rand.New(rand.NewPCG(seed, 17))
	values := make([]T, n)
	for i := range values {
		values[i] = FromFloat64[T](rng.Float64()*8 - 4)
	}
	return values
}
