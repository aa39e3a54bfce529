package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// TableStatus represents the table lifecycle state
type TableStatus int

const (
	TableWaiting TableStatus = iota
	TableInProgress
	TablePaused
	TableFinished
)

func (s TableStatus) String() string {
	return [...]string{"waiting", "in_progress", "paused", "finished"}[s]
}

// Settings are the fixed parameters of a table.
type Settings struct {
	SmallBlind int
	BigBlind   int
	BuyIn      int
	MaxPlayers int
}

// Validate checks the settings against the allowed ranges.
func (s Settings) Validate() error {
	if s.SmallBlind <= 0 || s.BigBlind <= 0 {
		return fmt.Errorf("blinds must be positive")
	}
	if s.BigBlind < s.SmallBlind {
		return fmt.Errorf("big blind must be at least the small blind")
	}
	if s.BuyIn <= 0 {
		return fmt.Errorf("buy-in must be positive")
	}
	if s.MaxPlayers < 2 || s.MaxPlayers > 8 {
		return fmt.Errorf("max players must be between 2 and 8")
	}
	return nil
}

// Table owns its seats and the active hand, if any. Tables are value
// objects passed through the engine; there is no process-wide table
// state, so independent tables progress independently.
type Table struct {
	ID       string
	Code     string
	Settings Settings
	Seats    []*Seat // occupied seats, ascending seat number
	Button   int     // seat number, 0 until the first hand
	Status   TableStatus
	Hand     *Hand // nil between hands
}

// NewTable creates a table in the waiting state with a fresh ID and join
// code.
func NewTable(settings Settings) (*Table, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Table{
		ID:       NewID(),
		Code:     NewCode(),
		Settings: settings,
		Status:   TableWaiting,
	}, nil
}

// Seat returns the seat with the given number, or nil.
func (t *Table) Seat(number int) *Seat {
	for _, s := range t.Seats {
		if s.Number == number {
			return s
		}
	}
	return nil
}

// SeatByPlayer returns the seat occupied by the given player, or nil.
func (t *Table) SeatByPlayer(playerID string) *Seat {
	for _, s := range t.Seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// AddSeat seats a player at the lowest free seat number with the table's
// buy-in. Joining is allowed any time there is a free seat; a player
// joining mid-hand sits out until the next deal.
func (t *Table) AddSeat(playerID, name string) (*Seat, error) {
	if len(t.Seats) >= t.Settings.MaxPlayers {
		return nil, ErrTableFull
	}
	if t.SeatByPlayer(playerID) != nil {
		return nil, fmt.Errorf("player %s is already seated", playerID)
	}

	number := 1
	for _, s := range t.Seats {
		if s.Number == number {
			number++
		} else {
			break
		}
	}

	seat := &Seat{
		Number:   number,
		PlayerID: playerID,
		Name:     name,
		Chips:    t.Settings.BuyIn,
		Status:   StatusPlaying,
	}
	if t.Hand != nil && !t.Hand.Complete {
		seat.Status = StatusSittingOut
	}

	t.Seats = append(t.Seats, seat)
	sort.Slice(t.Seats, func(i, j int) bool { return t.Seats[i].Number < t.Seats[j].Number })
	return seat, nil
}

// RemoveSeat settles a seat's chips and removes it. A seat still involved
// in an active hand cannot leave.
func (t *Table) RemoveSeat(number int) (int, error) {
	seat := t.Seat(number)
	if seat == nil {
		return 0, fmt.Errorf("no seat %d", number)
	}
	if t.Hand != nil && !t.Hand.Complete && t.Hand.seat(number) != nil && seat.InHand() {
		return 0, fmt.Errorf("%w: seat %d is in the hand", ErrHandInProgress, number)
	}

	chips := seat.Chips
	for i, s := range t.Seats {
		if s.Number == number {
			t.Seats = append(t.Seats[:i], t.Seats[i+1:]...)
			break
		}
	}
	return chips, nil
}

// Start moves the table from waiting to in progress.
func (t *Table) Start() error {
	if t.Status != TableWaiting {
		return fmt.Errorf("table is %s, not waiting", t.Status)
	}
	playable := 0
	for _, s := range t.Seats {
		if s.Chips > 0 {
			playable++
		}
	}
	if playable < 2 {
		return ErrInsufficientPlayers
	}
	t.Status = TableInProgress
	return nil
}

// Pause suspends dealing between hands.
func (t *Table) Pause() error {
	if t.Status != TableInProgress {
		return fmt.Errorf("table is %s, not in progress", t.Status)
	}
	if t.Hand != nil && !t.Hand.Complete {
		return ErrHandInProgress
	}
	t.Status = TablePaused
	return nil
}

// Resume continues a paused table.
func (t *Table) Resume() error {
	if t.Status != TablePaused {
		return fmt.Errorf("table is %s, not paused", t.Status)
	}
	t.Status = TableInProgress
	return nil
}

// StartHand deals a new hand: seat statuses are reset, the button moves to
// the next eligible seat, hole cards go out and blinds are posted. The
// random source drives the shuffle and is injected for deterministic
// tests.
func (t *Table) StartHand(rng *rand.Rand) error {
	if t.Status != TableInProgress {
		return fmt.Errorf("table is %s, not in progress", t.Status)
	}
	if t.Hand != nil && !t.Hand.Complete {
		return ErrHandInProgress
	}

	for _, s := range t.Seats {
		s.Bet = 0
		s.TotalBet = 0
		s.HoleCards = nil
		switch {
		case s.Chips == 0:
			s.Status = StatusSittingOut
		case s.Status == StatusFolded || s.Status == StatusAllIn:
			s.Status = StatusPlaying
		}
	}

	pos, err := ResolvePositions(t.Seats, t.Button)
	if err != nil {
		return err
	}
	t.Button = pos.Button

	hand, err := newHand(rng, t.Seats, pos, t.Settings.SmallBlind, t.Settings.BigBlind)
	if err != nil {
		return err
	}
	t.Hand = hand
	return nil
}

// TotalChips returns all chips at the table: stacks, live bets and
// collected pots. It is invariant across every action within a hand.
func (t *Table) TotalChips() int {
	total := 0
	for _, s := range t.Seats {
		total += s.Chips + s.Bet
	}
	if t.Hand != nil {
		for _, pot := range t.Hand.Pots.Pots() {
			total += pot.Amount
		}
	}
	return total
}

// Clone deep-copies the table, its seats and any active hand. Transitions
// are applied to a clone and swapped in only after a successful commit, so
// a failed persistence attempt leaves no partial effect.
func (t *Table) Clone() *Table {
	c := *t
	c.Seats = make([]*Seat, len(t.Seats))
	byNumber := make(map[int]*Seat, len(t.Seats))
	for i, s := range t.Seats {
		c.Seats[i] = s.clone()
		byNumber[s.Number] = c.Seats[i]
	}
	if t.Hand != nil {
		c.Hand = t.Hand.clone(byNumber)
	}
	return &c
}
