package game

import "sort"

// Positions holds the seat numbers resolved for one hand.
type Positions struct {
	Button     int
	SmallBlind int
	BigBlind   int
	FirstToAct int // first to act preflop
}

// ResolvePositions computes button, blinds and first-to-act for the seats
// currently playing. prevButton is the button seat of the previous hand,
// or 0 for the first hand of the table.
//
// Seats are ordered by ascending seat number, wrapping circularly. On the
// first hand the button goes to the lowest eligible seat — a disclosed
// deterministic policy. On later hands it moves to the next eligible seat
// clockwise from the previous button; seats that left or sat out are
// skipped without breaking the rotation.
//
// Heads-up, the button posts the small blind and acts first preflop.
func ResolvePositions(seats []*Seat, prevButton int) (Positions, error) {
	eligible := make([]int, 0, len(seats))
	for _, s := range seats {
		if s.Status == StatusPlaying {
			eligible = append(eligible, s.Number)
		}
	}
	sort.Ints(eligible)

	if len(eligible) < 2 {
		return Positions{}, ErrInsufficientPlayers
	}

	var button int
	if prevButton == 0 {
		button = eligible[0]
	} else {
		button = nextSeatAfter(eligible, prevButton)
	}

	if len(eligible) == 2 {
		other := nextSeatAfter(eligible, button)
		return Positions{
			Button:     button,
			SmallBlind: button,
			BigBlind:   other,
			FirstToAct: button,
		}, nil
	}

	sb := nextSeatAfter(eligible, button)
	bb := nextSeatAfter(eligible, sb)
	utg := nextSeatAfter(eligible, bb)

	return Positions{
		Button:     button,
		SmallBlind: sb,
		BigBlind:   bb,
		FirstToAct: utg,
	}, nil
}

// nextSeatAfter returns the first seat number strictly after the given one
// in ascending circular order. The given seat need not be in the list.
func nextSeatAfter(sorted []int, after int) int {
	for _, n := range sorted {
		if n > after {
			return n
		}
	}
	return sorted[0]
}
