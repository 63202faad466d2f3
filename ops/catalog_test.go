package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	for _, name := range UnaryNames() {
		op, err := UnaryByName(name)
		require.NoError(t, err)
		require.NotNil(t, op, name)
		assert.NotEmpty(t, op.Name(), name)
	}
	for _, name := range ReduceNames() {
		op, err := ReduceByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, op.Name())
	}
	for _, name := range BinaryNames() {
		op, err := BinaryByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, op.Name())
	}
	assert.Contains(t, UnaryNames(), "softmax")
	assert.IsIncreasing(t, UnaryNames())

	assert.Panics(t, func() { _ = mustOp(Clamp(2, 1)) })
	assert.Equal(t, "neg", mustOp[UnaryOp](Neg(), nil).Name())

	_, err := UnaryByName("nope")
	require.Error(t, err)
	_, err = ReduceByName("nope")
	require.Error(t, err)
	_, err = BinaryByName("nope")
	require.Error(t, err)
}
