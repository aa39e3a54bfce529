package game

import "github.com/cardroomhq/cardroom/internal/deck"

// SeatStatus represents a seat's participation state
type SeatStatus int

const (
	StatusPlaying SeatStatus = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
)

func (s SeatStatus) String() string {
	return [...]string{"playing", "folded", "all_in", "sitting_out"}[s]
}

// Seat is an occupied position at a table. Seat numbers are stable for the
// session; statuses and chips are mutated hand by hand.
type Seat struct {
	Number   int
	PlayerID string
	Name     string
	Chips    int
	Status   SeatStatus

	// Per-hand state, reset when a hand starts
	HoleCards []deck.Card
	Bet       int // committed this street
	TotalBet  int // committed this hand
}

// CanAct reports whether the seat may still act this street.
func (s *Seat) CanAct() bool {
	return s.Status == StatusPlaying
}

// InHand reports whether the seat still has a claim on any pot.
func (s *Seat) InHand() bool {
	return s.Status == StatusPlaying || s.Status == StatusAllIn
}

func (s *Seat) clone() *Seat {
	c := *s
	if s.HoleCards != nil {
		c.HoleCards = make([]deck.Card, len(s.HoleCards))
		copy(c.HoleCards, s.HoleCards)
	}
	return &c
}
