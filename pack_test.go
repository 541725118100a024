package packsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntPack(n int) *Pack[int] {
	p := &Pack[int]{Problems: make([]int, n)}
	for i := range p.Problems {
		p.Problems[i] = i
	}
	return p
}

// takeAll submits n problems from tp, as feed would for one instance.
func takeAll(t *testing.T, tp *trackedPack[int], n int) (got []int, filled bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		p, f, ok := tp.takeNext()
		require.True(t, ok, "problem %d of %d", i+1, n)
		got = append(got, p)
		filled = f
	}
	return got, filled
}

func TestPackStateTransitions(t *testing.T) {
	tp := newTrackedPack(newIntPack(5), 0, 0)
	require.Equal(t, Unfilled, tp.state())

	got, filled := takeAll(t, tp, 2)
	assert.Equal(t, []int{0, 1}, got)
	assert.False(t, filled)
	assert.Equal(t, Partial, tp.state())

	// first instance finishes before the pack is fully submitted
	assert.False(t, tp.complete(2))
	assert.Equal(t, Partial, tp.state())

	got, filled = takeAll(t, tp, 3)
	assert.Equal(t, []int{2, 3, 4}, got)
	assert.True(t, filled)
	assert.Equal(t, Filled, tp.state())

	_, filled, ok := tp.takeNext()
	assert.False(t, ok)
	assert.False(t, filled)
	assert.Equal(t, Filled, tp.state())

	assert.True(t, tp.complete(3))
	assert.Equal(t, Solved, tp.state())
	assert.True(t, tp.solved())
}

func TestPackSolvedOnlyWhenEveryInstanceReturned(t *testing.T) {
	tp := newTrackedPack(newIntPack(4), 1, 3)

	takeAll(t, tp, 3) // instance A
	takeAll(t, tp, 1) // instance B takes the last problem
	require.Equal(t, Filled, tp.state())

	// B returns first: the pack must not be reported solved yet
	assert.False(t, tp.complete(1))
	assert.Equal(t, Filled, tp.state())

	assert.True(t, tp.complete(3))
	assert.Equal(t, Solved, tp.state())
}

func TestEmptyPackIsSolved(t *testing.T) {
	tp := newTrackedPack(newIntPack(0), 0, 0)
	assert.Equal(t, Solved, tp.state())
	_, _, ok := tp.takeNext()
	assert.False(t, ok)
	assert.Equal(t, Solved, tp.state())
}

func TestPackInvariantViolationsPanic(t *testing.T) {
	t.Run("computed beyond submitted", func(t *testing.T) {
		tp := newTrackedPack(newIntPack(3), 0, 0)
		takeAll(t, tp, 1)
		assert.Panics(t, func() { tp.complete(2) })
	})
	t.Run("completed after solved", func(t *testing.T) {
		tp := newTrackedPack(newIntPack(1), 0, 0)
		takeAll(t, tp, 1)
		require.True(t, tp.complete(1))
		assert.Panics(t, func() { tp.complete(1) })
	})
}

func TestPackStateString(t *testing.T) {
	assert.Equal(t, "Unfilled", Unfilled.String())
	assert.Equal(t, "Partial", Partial.String())
	assert.Equal(t, "Filled", Filled.String())
	assert.Equal(t, "Solved", Solved.String())
	assert.Equal(t, "Unknown", PackState(42).String())
}
