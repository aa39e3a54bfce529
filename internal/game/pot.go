package game

import "sort"

// Pot is the main pot or a side pot. Eligible lists the seat numbers that
// may win it: seats that contributed to this layer and have not folded.
type Pot struct {
	Amount   int
	Eligible []int
}

// PotManager layers contributions into a main pot and side pots. A side
// pot boundary is created at each all-in seat's total commitment; amounts
// above a boundary form a separate pot excluding that seat. Folded chips
// stay in the layers they were contributed to as dead money.
type PotManager struct {
	pots []Pot
}

// NewPotManager creates a pot manager with an empty main pot. Pots only
// pick up chips when a street's bets are collected; until then the
// street's commitments live on the seats.
func NewPotManager(seats []*Seat) *PotManager {
	pot := Pot{}
	for _, s := range seats {
		if !isFolded(s) {
			pot.Eligible = append(pot.Eligible, s.Number)
		}
	}
	return &PotManager{pots: []Pot{pot}}
}

// Collect moves the street's bets into the pots. Bets are already counted
// in each seat's TotalBet; collecting zeroes the per-street amounts and
// re-layers the pots from the hand totals.
func (pm *PotManager) Collect(seats []*Seat) {
	for _, s := range seats {
		s.Bet = 0
	}
	pm.rebuild(seats)
}

// rebuild recomputes the pot layers from scratch. Boundaries are the
// distinct hand-total commitments of all-in seats; everything above the
// highest boundary is one final layer. Deriving pots from totals keeps
// the invariant that pot amounts always sum to total contributions.
func (pm *PotManager) rebuild(seats []*Seat) {
	boundarySet := make(map[int]bool)
	for _, s := range seats {
		if s.Status == StatusAllIn && s.TotalBet > 0 {
			boundarySet[s.TotalBet] = true
		}
	}
	boundaries := make([]int, 0, len(boundarySet)+1)
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	// The open layer above the last all-in
	maxTotal := 0
	for _, s := range seats {
		if s.TotalBet > maxTotal {
			maxTotal = s.TotalBet
		}
	}
	if len(boundaries) == 0 || boundaries[len(boundaries)-1] < maxTotal {
		boundaries = append(boundaries, maxTotal)
	}

	pm.pots = pm.pots[:0]
	prev := 0
	for _, level := range boundaries {
		pot := Pot{}
		for _, s := range seats {
			contribution := min(s.TotalBet, level) - min(s.TotalBet, prev)
			pot.Amount += contribution
			if contribution > 0 && !isFolded(s) {
				pot.Eligible = append(pot.Eligible, s.Number)
			}
		}
		if pot.Amount > 0 || len(pm.pots) == 0 {
			pm.pots = append(pm.pots, pot)
		}
		prev = level
	}
}

func isFolded(s *Seat) bool {
	return s.Status != StatusPlaying && s.Status != StatusAllIn
}

// clear empties the manager once the pots have been paid back out to the
// seats. Chips live in exactly one place at a time: on the seats, in the
// live street bets, or in the pots.
func (pm *PotManager) clear() {
	pm.pots = nil
}

// Pots returns the collected pots in creation order (main pot first).
func (pm *PotManager) Pots() []Pot {
	return pm.pots
}

// Total returns the chips in all collected pots.
func (pm *PotManager) Total() int {
	total := 0
	for _, p := range pm.pots {
		total += p.Amount
	}
	return total
}

// TotalWithLive returns collected pots plus the current street's
// uncollected bets, for display while betting is open.
func (pm *PotManager) TotalWithLive(seats []*Seat) int {
	total := pm.Total()
	for _, s := range seats {
		total += s.Bet
	}
	return total
}

func (pm *PotManager) clone() *PotManager {
	c := &PotManager{pots: make([]Pot, len(pm.pots))}
	for i, p := range pm.pots {
		c.pots[i] = Pot{Amount: p.Amount, Eligible: append([]int(nil), p.Eligible...)}
	}
	return c
}
