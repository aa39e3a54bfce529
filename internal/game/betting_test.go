package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []ActionKind{Fold, Check, Call, Bet, Raise} {
		parsed, err := ParseActionKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseActionKind("allin")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestBettingRoundComplete(t *testing.T) {
	t.Parallel()

	seats := []*Seat{
		{Number: 1, Status: StatusPlaying, Bet: 10},
		{Number: 2, Status: StatusPlaying, Bet: 10},
	}

	br := newBettingRound(10)
	br.CurrentBet = 10

	// Matched bets alone are not enough; both seats must have acted
	assert.False(t, br.complete(seats))

	br.markActed(1)
	assert.False(t, br.complete(seats))
	br.markActed(2)
	assert.True(t, br.complete(seats))
}

func TestBettingRoundUnmatchedBet(t *testing.T) {
	t.Parallel()

	seats := []*Seat{
		{Number: 1, Status: StatusPlaying, Bet: 50},
		{Number: 2, Status: StatusPlaying, Bet: 10},
	}

	br := newBettingRound(10)
	br.CurrentBet = 50
	br.markActed(1)
	br.markActed(2)

	assert.False(t, br.complete(seats), "seat 2 has not matched the bet")
}

func TestBettingRoundReopen(t *testing.T) {
	t.Parallel()

	br := newBettingRound(10)
	br.markActed(1)
	br.markActed(2)
	require.False(t, br.canRaise(1))

	// A full raise by seat 3 lets everyone else act again
	br.reopen(3)
	assert.True(t, br.canRaise(1))
	assert.True(t, br.canRaise(2))
	assert.False(t, br.canRaise(3))
}

func TestBettingRoundSingleActorCloses(t *testing.T) {
	t.Parallel()

	// One live seat against an all-in: matching the bet closes the round
	// even though the live seat never acted this street.
	seats := []*Seat{
		{Number: 1, Status: StatusPlaying, Bet: 100},
		{Number: 2, Status: StatusAllIn, Bet: 100},
	}

	br := newBettingRound(10)
	br.CurrentBet = 100
	assert.True(t, br.complete(seats))
}

func TestBettingRoundResetForStreet(t *testing.T) {
	t.Parallel()

	br := newBettingRound(10)
	br.CurrentBet = 80
	br.MinRaise = 40
	br.markActed(1)

	br.resetForStreet()
	assert.Zero(t, br.CurrentBet)
	assert.Equal(t, 10, br.MinRaise, "min raise resets to the big blind")
	assert.True(t, br.canRaise(1))
}
