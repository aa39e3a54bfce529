package deck

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(1)))
	require.Equal(t, 52, d.Remaining())

	cards, err := d.Draw(52)
	require.NoError(t, err)

	seen := make(map[Card]bool)
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestShuffleIsDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	d1 := New(rand.New(rand.NewSource(42)))
	d2 := New(rand.New(rand.NewSource(42)))
	d1.Shuffle()
	d2.Shuffle()

	c1, err := d1.Draw(52)
	require.NoError(t, err)
	c2, err := d2.Draw(52)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestShufflePermutes(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(7)))
	before := make([]Card, 52)
	copy(before, d.cards)
	d.Shuffle()

	assert.NotEqual(t, before, d.cards, "shuffle left the deck in canonical order")
	assert.Equal(t, 52, d.Remaining())
}

func TestDrawExhausted(t *testing.T) {
	t.Parallel()

	d := New(rand.New(rand.NewSource(1)))

	cards, err := d.Draw(50)
	require.NoError(t, err)
	require.Len(t, cards, 50)
	require.Equal(t, 2, d.Remaining())

	_, err = d.Draw(3)
	require.ErrorIs(t, err, ErrExhausted)

	// A failed draw must not consume cards
	assert.Equal(t, 2, d.Remaining())

	cards, err = d.Draw(2)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}
