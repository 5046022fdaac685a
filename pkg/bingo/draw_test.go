package bingo

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() Source {
	return rand.New(rand.NewPCG(1, 2))
}

func TestDrawAllNumbersOnce(t *testing.T) {
	e := NewEngine(seeded(), nil)
	seen := map[int]bool{}
	for i := 1; i <= MaxNumber; i++ {
		d, err := e.Next()
		require.NoError(t, err)
		assert.Equal(t, i, d.Sequence)
		assert.Equal(t, Label(d.Number), d.Label)
		assert.False(t, seen[d.Number], "drew %d twice", d.Number)
		assert.GreaterOrEqual(t, d.Number, MinNumber)
		assert.LessOrEqual(t, d.Number, MaxNumber)
		seen[d.Number] = true
	}
	assert.Len(t, seen, MaxNumber)
	assert.True(t, e.Exhausted())

	_, err := e.Next()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Len(t, e.Marked(), MaxNumber)
}

func TestMarkedKeepsCallOrder(t *testing.T) {
	e := NewEngine(seeded(), nil)
	var calls []int
	for i := 0; i < 10; i++ {
		d, err := e.Next()
		require.NoError(t, err)
		calls = append(calls, d.Number)
		assert.True(t, e.IsMarked(d.Number))
	}
	assert.Equal(t, calls, e.Marked())
	assert.Equal(t, MaxNumber-10, e.Remaining())
}

func TestResetTwice(t *testing.T) {
	e := NewEngine(seeded(), nil)
	for i := 0; i < 5; i++ {
		_, err := e.Next()
		require.NoError(t, err)
	}
	e.Reset()
	assert.Empty(t, e.Marked())
	e.Reset()
	assert.Empty(t, e.Marked())
	assert.Equal(t, MaxNumber, e.Remaining())
}

func TestPoolFromCards(t *testing.T) {
	card := testCard(t)
	pool := PoolFromCards([]Card{card, card})
	assert.Len(t, pool, Size*Size-1)

	e := NewEngine(seeded(), pool)
	for i := 0; i < len(pool); i++ {
		d, err := e.Next()
		require.NoError(t, err)
		assert.True(t, card.Contains(d.Number))
	}
	assert.True(t, e.Exhausted())
}

func TestNewEngineDropsInvalidPoolEntries(t *testing.T) {
	e := NewEngine(seeded(), []int{0, 3, 3, 80, 75})
	assert.Equal(t, 2, e.Remaining())
}
