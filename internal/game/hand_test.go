package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTable builds an in-progress table with blinds 5/10 and one seat per
// given stack size.
func testTable(t *testing.T, chips ...int) *Table {
	t.Helper()

	tbl, err := NewTable(Settings{SmallBlind: 5, BigBlind: 10, BuyIn: 1000, MaxPlayers: 8})
	require.NoError(t, err)

	for i, c := range chips {
		seat, err := tbl.AddSeat(fmt.Sprintf("p%d", i+1), fmt.Sprintf("Player %d", i+1))
		require.NoError(t, err)
		seat.Chips = c
	}
	require.NoError(t, tbl.Start())
	return tbl
}

func startHand(t *testing.T, tbl *Table, seed int64) *Hand {
	t.Helper()
	require.NoError(t, tbl.StartHand(rand.New(rand.NewSource(seed))))
	return tbl.Hand
}

func TestStartHandPostsBlinds(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	// First hand: button at seat 1, blinds at 2 and 3, seat 1 under the gun
	assert.Equal(t, 1, tbl.Button)
	assert.Equal(t, 2, h.Positions.SmallBlind)
	assert.Equal(t, 3, h.Positions.BigBlind)
	assert.Equal(t, 1, h.ToAct)

	assert.Equal(t, 995, tbl.Seat(2).Chips)
	assert.Equal(t, 5, tbl.Seat(2).Bet)
	assert.Equal(t, 990, tbl.Seat(3).Chips)
	assert.Equal(t, 10, tbl.Seat(3).Bet)
	assert.Equal(t, 10, h.Betting.CurrentBet)

	for _, s := range h.Seats() {
		assert.Len(t, s.HoleCards, 2)
	}
}

func TestOutOfTurnActionRejected(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	err := h.Apply(Action{Seat: 2, Kind: Call})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Rejection must not change any state
	assert.Equal(t, 1, h.ToAct)
	assert.Equal(t, 995, tbl.Seat(2).Chips)
}

func TestCheckOnlyWhenMatched(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	err := h.Apply(Action{Seat: 1, Kind: Check})
	assert.ErrorIs(t, err, ErrInvalidAction)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Call}))

	// Big blind has matched and may check its option
	assert.Equal(t, 3, h.ToAct)
	require.NoError(t, h.Apply(Action{Seat: 3, Kind: Check}))
	assert.Equal(t, Flop, h.Street)
	assert.Len(t, h.Community, 3)
}

func TestCallNeverExceedsCurrentBet(t *testing.T) {
	t.Parallel()

	// Seat 1 cannot cover the big blind; the call is capped at the stack
	// and produces an all-in below the current bet.
	tbl := testTable(t, 8, 1000, 1000)
	h := startHand(t, tbl, 1)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))
	seat := tbl.Seat(1)
	assert.Equal(t, 8, seat.Bet)
	assert.LessOrEqual(t, seat.Bet, h.Betting.CurrentBet)
	assert.Equal(t, StatusAllIn, seat.Status)
	assert.Zero(t, seat.Chips)
}

func TestCallRequiresOutstandingBet(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Call}))

	// Big blind already matches the current bet
	err := h.Apply(Action{Seat: 3, Kind: Call})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestAmountForbiddenOutsideBetRaise(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	err := h.Apply(Action{Seat: 1, Kind: Call, Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidAction)
	err = h.Apply(Action{Seat: 1, Kind: Fold, Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestRaiseValidation(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	// Bet is illegal while a bet (the blind) stands
	err := h.Apply(Action{Seat: 1, Kind: Bet, Amount: 50})
	assert.ErrorIs(t, err, ErrInvalidAction)

	// Raise increment below the big blind is rejected
	err = h.Apply(Action{Seat: 1, Kind: Raise, Amount: 15})
	assert.ErrorIs(t, err, ErrInvalidAction)

	// Raise beyond the stack is rejected
	err = h.Apply(Action{Seat: 1, Kind: Raise, Amount: 1500})
	assert.ErrorIs(t, err, ErrInvalidAction)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Raise, Amount: 30}))
	assert.Equal(t, 30, h.Betting.CurrentBet)
	assert.Equal(t, 20, h.Betting.MinRaise, "min raise tracks the last full raise")

	// Next raise must go to at least 50
	err = h.Apply(Action{Seat: 2, Kind: Raise, Amount: 45})
	assert.ErrorIs(t, err, ErrInvalidAction)
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Raise, Amount: 50}))
}

func TestBetOnlyWhenUnopened(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Call}))
	require.NoError(t, h.Apply(Action{Seat: 3, Kind: Check}))
	require.Equal(t, Flop, h.Street)

	// Small blind acts first postflop
	assert.Equal(t, 2, h.ToAct)

	// Raise is illegal with no bet outstanding
	err := h.Apply(Action{Seat: 2, Kind: Raise, Amount: 20})
	assert.ErrorIs(t, err, ErrInvalidAction)

	// Bet below the big blind minimum is rejected for a full stack
	err = h.Apply(Action{Seat: 2, Kind: Bet, Amount: 5})
	assert.ErrorIs(t, err, ErrInvalidAction)

	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Bet, Amount: 10}))
	assert.Equal(t, 10, h.Betting.CurrentBet)
}

func TestHeadsUpFoldPreflop(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000)
	h := startHand(t, tbl, 1)

	// Heads-up: button is small blind and acts first
	assert.Equal(t, 1, tbl.Button)
	assert.Equal(t, 1, h.Positions.SmallBlind)
	assert.Equal(t, 2, h.Positions.BigBlind)
	assert.Equal(t, 1, h.ToAct)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Fold}))

	assert.True(t, h.Complete)
	assert.False(t, h.WentToShowdown)
	assert.Empty(t, h.Community, "no further streets are dealt")

	// Winner collects exactly the blinds
	assert.Equal(t, 995, tbl.Seat(1).Chips)
	assert.Equal(t, 1005, tbl.Seat(2).Chips)
	assert.Equal(t, 2000, tbl.TotalChips())
}

func TestHeadsUpBigBlindOption(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000)
	h := startHand(t, tbl, 1)

	// Button limps; big blind still gets its option
	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))
	require.Equal(t, Preflop, h.Street)
	assert.Equal(t, 2, h.ToAct)

	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Check}))
	assert.Equal(t, Flop, h.Street)

	// Big blind acts first on every postflop street heads-up
	assert.Equal(t, 2, h.ToAct)
}

func TestChipConservationAcrossActions(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	startHand(t, tbl, 3)
	require.Equal(t, 3000, tbl.TotalChips())

	h := tbl.Hand
	actions := []Action{
		{Seat: 1, Kind: Raise, Amount: 30},
		{Seat: 2, Kind: Call},
		{Seat: 3, Kind: Call},
		{Seat: 2, Kind: Check},
		{Seat: 3, Kind: Bet, Amount: 40},
		{Seat: 1, Kind: Call},
		{Seat: 2, Kind: Fold},
	}
	for _, a := range actions {
		require.NoError(t, h.Apply(a))
		assert.Equal(t, 3000, tbl.TotalChips(), "after %s by seat %d", a.Kind, a.Seat)
	}
}

func TestAllInRunout(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 100, 300, 300)
	h := startHand(t, tbl, 5)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Raise, Amount: 100}))
	assert.Equal(t, StatusAllIn, tbl.Seat(1).Status)

	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Raise, Amount: 300}))
	require.NoError(t, h.Apply(Action{Seat: 3, Kind: Call}))

	// Everyone is all-in: the board runs out with no further betting
	require.True(t, h.Complete)
	assert.True(t, h.WentToShowdown)
	assert.Len(t, h.Community, 5)

	// The layers are paid out in full and cleared; seat 1 was capped at
	// the 300-chip main pot, the 400-chip side pot went to seats 2 and 3.
	require.NotEmpty(t, h.Results)
	total := 0
	for _, p := range h.Results {
		total += p.Amount
		if p.Seat == 1 {
			assert.LessOrEqual(t, p.Amount, 300, "short stack wins at most the main pot")
		}
	}
	assert.Equal(t, 700, total)
	assert.Zero(t, h.Pots.Total(), "paid pots hold no chips")
	assert.Equal(t, 700, tbl.TotalChips())
}

func TestShortAllInRaiseDoesNotReopen(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 150, 1000)
	h := startHand(t, tbl, 2)

	// Seat 1 makes a full raise; min raise becomes 90
	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Raise, Amount: 100}))
	require.Equal(t, 90, h.Betting.MinRaise)

	// Seat 2's all-in raise to 150 is short of a full raise
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Raise, Amount: 150}))
	assert.Equal(t, StatusAllIn, tbl.Seat(2).Status)
	assert.Equal(t, 150, h.Betting.CurrentBet)
	assert.Equal(t, 90, h.Betting.MinRaise, "short all-in does not move the min raise")

	require.NoError(t, h.Apply(Action{Seat: 3, Kind: Fold}))

	// Seat 1 already acted at the 100 level: the short all-in does not
	// reopen raising, only calling or folding.
	err := h.Apply(Action{Seat: 1, Kind: Raise, Amount: 300})
	assert.ErrorIs(t, err, ErrInvalidAction)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Call}))

	// Heads-up against an all-in there is nothing left to bet: run out
	require.True(t, h.Complete)
	assert.True(t, h.WentToShowdown)
	assert.Equal(t, 2150, tbl.TotalChips())
}

func TestFoldWinsUncontested(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 7)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Raise, Amount: 50}))
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Fold}))
	require.NoError(t, h.Apply(Action{Seat: 3, Kind: Fold}))

	require.True(t, h.Complete)
	require.Len(t, h.Results, 1)
	assert.Equal(t, 1, h.Results[0].Seat)
	assert.Equal(t, 65, h.Results[0].Amount, "raiser wins blinds plus their own bet back")
	assert.Equal(t, 1015, tbl.Seat(1).Chips)
	assert.Zero(t, h.Pots.Total(), "paid pots hold no chips")
	assert.Equal(t, 3000, tbl.TotalChips())
}

func TestValidActionsNormalization(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000, 1000)
	h := startHand(t, tbl, 1)

	actions := h.ValidActions()
	require.Len(t, actions, 3)
	assert.Equal(t, Fold, actions[0].Kind)
	assert.Equal(t, Call, actions[1].Kind)
	assert.Equal(t, 10, actions[1].Min)
	assert.Equal(t, 10, actions[1].Max)
	assert.Equal(t, Raise, actions[2].Kind)
	assert.Equal(t, 20, actions[2].Min, "min raise-to is current bet plus big blind")
	assert.Equal(t, 1000, actions[2].Max)
}

func TestBustedSeatSitsOut(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 50, 1000)
	h := startHand(t, tbl, 11)

	// Button shoves, big blind calls; one of them busts unless they chop
	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Raise, Amount: 50}))
	require.NoError(t, h.Apply(Action{Seat: 2, Kind: Call}))

	require.True(t, h.Complete)
	for _, s := range tbl.Seats {
		if s.Chips == 0 {
			assert.Equal(t, StatusSittingOut, s.Status)
		}
	}
	assert.Equal(t, 1050, tbl.TotalChips())
}

func TestThreeHandedCheckDownShowdown(t *testing.T) {
	t.Parallel()

	// Button folds preflop, the blinds check the hand down to showdown.
	// Whatever the deal, the stronger evaluated hand must take the whole
	// pot and the loser must drop by exactly their contribution.
	for seed := int64(1); seed <= 10; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			tbl := testTable(t, 1000, 1000, 1000)
			h := startHand(t, tbl, seed)

			require.NoError(t, h.Apply(Action{Seat: 1, Kind: Fold}))
			require.NoError(t, h.Apply(Action{Seat: 2, Kind: Call}))
			require.NoError(t, h.Apply(Action{Seat: 3, Kind: Check}))
			for _, street := range []Street{Flop, Turn, River} {
				require.Equal(t, street, h.Street)
				require.NoError(t, h.Apply(Action{Seat: 2, Kind: Check}))
				require.NoError(t, h.Apply(Action{Seat: 3, Kind: Check}))
			}

			require.True(t, h.Complete)
			require.True(t, h.WentToShowdown)
			require.Len(t, h.Community, 5)
			require.Contains(t, h.ShowdownRanks, 2)
			require.Contains(t, h.ShowdownRanks, 3)

			switch h.ShowdownRanks[2].Compare(h.ShowdownRanks[3]) {
			case 1:
				require.Equal(t, []Payout{{Seat: 2, Amount: 20}}, h.Results)
				assert.Equal(t, 1010, tbl.Seat(2).Chips)
				assert.Equal(t, 990, tbl.Seat(3).Chips, "loser drops by exactly their contribution")
			case -1:
				require.Equal(t, []Payout{{Seat: 3, Amount: 20}}, h.Results)
				assert.Equal(t, 1010, tbl.Seat(3).Chips)
				assert.Equal(t, 990, tbl.Seat(2).Chips, "loser drops by exactly their contribution")
			default:
				require.Equal(t, []Payout{{Seat: 2, Amount: 10}, {Seat: 3, Amount: 10}}, h.Results)
				assert.Equal(t, 1000, tbl.Seat(2).Chips)
				assert.Equal(t, 1000, tbl.Seat(3).Chips)
			}

			assert.Equal(t, 1000, tbl.Seat(1).Chips, "button folded without posting")
			assert.Equal(t, 3000, tbl.TotalChips())
		})
	}
}

func TestActionsRejectedAfterHandComplete(t *testing.T) {
	t.Parallel()

	tbl := testTable(t, 1000, 1000)
	h := startHand(t, tbl, 1)

	require.NoError(t, h.Apply(Action{Seat: 1, Kind: Fold}))
	require.True(t, h.Complete)

	err := h.Apply(Action{Seat: 2, Kind: Check})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Nil(t, h.ValidActions())
}
