package game

import "fmt"

// Street represents the betting phase of a hand
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// ActionKind represents a player action kind
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
	Raise
)

func (a ActionKind) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise"}[a]
}

// ParseActionKind converts a wire string into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
	}
}

// Action is a request by a seat, not an entity; it is validated and applied
// immediately and never persisted. Amount is the bet size for Bet and the
// raise-to total for Raise; it must be zero for other kinds.
type Action struct {
	Seat   int
	Kind   ActionKind
	Amount int
}

// ValidAction describes one legal action for the seat to act, with
// normalized amounts. Min == Max for Call (the exact call amount, capped
// at the seat's stack); for Raise both are raise-to totals.
type ValidAction struct {
	Kind ActionKind
	Min  int
	Max  int
}

// BettingRound holds the state that drives one street to completion.
// acted tracks which seats have acted since the last full raise; only a
// full raise (or the street's opening bet) re-arms it, so a short all-in
// raise does not reopen action for seats that already acted.
type BettingRound struct {
	CurrentBet int
	MinRaise   int
	bigBlind   int
	acted      map[int]bool
}

func newBettingRound(bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise: bigBlind,
		bigBlind: bigBlind,
		acted:    make(map[int]bool),
	}
}

// resetForStreet prepares the round for a new street.
func (br *BettingRound) resetForStreet() {
	br.CurrentBet = 0
	br.MinRaise = br.bigBlind
	br.acted = make(map[int]bool)
}

func (br *BettingRound) markActed(seat int) {
	br.acted[seat] = true
}

// reopen re-arms the acted set after a full raise. Everyone except the
// aggressor must act again.
func (br *BettingRound) reopen(raiser int) {
	br.acted = map[int]bool{raiser: true}
}

// canRaise reports whether the seat may raise. A seat that already acted
// since the last full raise is facing at most a short all-in and may only
// call or fold.
func (br *BettingRound) canRaise(seat int) bool {
	return !br.acted[seat]
}

// complete reports whether the street's betting is finished: every seat
// still able to act has matched the current bet and has acted since the
// last full raise. Blinds do not count as having acted, which gives the
// big blind its preflop option. When at most one seat can act, matching
// the bet alone closes the round (there is no one left to respond).
func (br *BettingRound) complete(seats []*Seat) bool {
	canAct := 0
	for _, s := range seats {
		if s.CanAct() {
			canAct++
		}
	}

	for _, s := range seats {
		if !s.CanAct() {
			continue
		}
		if s.Bet != br.CurrentBet {
			return false
		}
		if canAct > 1 && !br.acted[s.Number] {
			return false
		}
	}
	return true
}

func (br *BettingRound) clone() *BettingRound {
	c := &BettingRound{
		CurrentBet: br.CurrentBet,
		MinRaise:   br.MinRaise,
		bigBlind:   br.bigBlind,
		acted:      make(map[int]bool, len(br.acted)),
	}
	for k, v := range br.acted {
		c.acted[k] = v
	}
	return c
}
