package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQTableIsZero(t *testing.T) {
	q := NewQTable([]int{0, 1, 2}, []string{"L", "R"})

	assert.Equal(t, 6, q.Len())
	for _, s := range q.States() {
		for _, a := range q.Actions() {
			v, err := q.Get(s, a)
			require.NoError(t, err)
			assert.Zero(t, v)
		}
	}
}

func TestQTableRejectsUnknownPairs(t *testing.T) {
	q := NewQTable([]int{0}, []string{"L"})

	_, err := q.Get(1, "L")
	assert.ErrorIs(t, err, ErrUnknownPair)
	assert.ErrorIs(t, q.Set(0, "X", 1), ErrUnknownPair)
	assert.ErrorIs(t, q.Set(5, "L", 1), ErrUnknownPair)
	assert.Equal(t, 1, q.Len())
}

func TestArgmaxBreaksTiesByDeclaredOrder(t *testing.T) {
	q := NewQTable([]int{0}, []string{"up", "right", "down"})

	a, v, err := q.Argmax(0)
	require.NoError(t, err)
	assert.Equal(t, "up", a)
	assert.Zero(t, v)

	require.NoError(t, q.Set(0, "right", 2))
	require.NoError(t, q.Set(0, "down", 2))
	a, v, err = q.Argmax(0)
	require.NoError(t, err)
	assert.Equal(t, "right", a)
	assert.Equal(t, 2.0, v)
}

func TestArgmaxAllNegative(t *testing.T) {
	q := NewQTable([]int{0}, []string{"a", "b"})
	require.NoError(t, q.Set(0, "a", -3))
	require.NoError(t, q.Set(0, "b", -1))

	a, v, err := q.Argmax(0)
	require.NoError(t, err)
	assert.Equal(t, "b", a)
	assert.Equal(t, -1.0, v)
}

func TestValuesAndSnapshot(t *testing.T) {
	q := NewQTable([]int{0, 1}, []string{"a", "b"})
	require.NoError(t, q.Set(1, "b", 0.5))

	assert.Equal(t, map[int]float64{0: 0, 1: 0.5}, q.Values())

	snap := q.Snapshot()
	snap[1]["b"] = 9
	v, err := q.Get(1, "b")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
}
