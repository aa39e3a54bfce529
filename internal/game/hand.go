package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/cardroomhq/cardroom/internal/deck"
	"github.com/cardroomhq/cardroom/internal/evaluator"
)

// Payout records chips awarded to a seat when a hand resolves.
type Payout struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

// Hand is one dealt round of play. It exclusively owns its deck, betting
// round and pots; seats are shared with the owning table.
type Hand struct {
	ID        string
	Positions Positions
	Street    Street
	Community []deck.Card
	Betting   *BettingRound
	Pots      *PotManager
	ToAct     int // seat number to act, 0 when no action is pending
	Complete  bool

	// Resolution, set when Complete
	Results        []Payout
	WentToShowdown bool
	ShowdownRanks  map[int]evaluator.HandRank

	seats      []*Seat // participants, ascending seat number
	deck       *deck.Deck
	smallBlind int
	bigBlind   int
}

// newHand deals a hand for the seats currently playing: hole cards go out,
// blinds are posted (short stacks post all-in for what they have), and the
// betting round opens at the big blind.
func newHand(rng *rand.Rand, seats []*Seat, pos Positions, smallBlind, bigBlind int) (*Hand, error) {
	participants := make([]*Seat, 0, len(seats))
	for _, s := range seats {
		if s.Status == StatusPlaying {
			participants = append(participants, s)
		}
	}

	d := deck.New(rng)
	d.Shuffle()

	h := &Hand{
		ID:         NewID(),
		Positions:  pos,
		Street:     Preflop,
		Betting:    newBettingRound(bigBlind),
		seats:      participants,
		deck:       d,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
	}

	for _, s := range participants {
		cards, err := d.Draw(2)
		if err != nil {
			return nil, err
		}
		s.HoleCards = cards
	}

	h.postBlind(h.seat(pos.SmallBlind), smallBlind)
	h.postBlind(h.seat(pos.BigBlind), bigBlind)
	h.Betting.CurrentBet = bigBlind

	h.Pots = NewPotManager(participants)

	h.ToAct = pos.FirstToAct
	if first := h.seat(h.ToAct); first == nil || !first.CanAct() {
		h.ToAct = h.nextToAct(h.ToAct)
	}

	// Blinds may already have everyone all-in
	if h.ToAct == 0 || h.Betting.complete(h.seats) {
		if err := h.nextStreet(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// postBlind commits a forced bet, going all-in if the stack is short.
func (h *Hand) postBlind(s *Seat, amount int) {
	h.commit(s, min(amount, s.Chips))
}

func (h *Hand) commit(s *Seat, amount int) {
	s.Chips -= amount
	s.Bet += amount
	s.TotalBet += amount
	if s.Chips == 0 {
		s.Status = StatusAllIn
	}
}

func (h *Hand) seat(number int) *Seat {
	for _, s := range h.seats {
		if s.Number == number {
			return s
		}
	}
	return nil
}

// Seats returns the hand's participants in seat order.
func (h *Hand) Seats() []*Seat {
	return h.seats
}

// Apply validates and applies one action for the seat currently to act,
// then advances the turn, the street, or the hand as required.
func (h *Hand) Apply(action Action) error {
	if h.Complete || h.Street == Showdown {
		return fmt.Errorf("%w: hand is not accepting actions", ErrInvalidAction)
	}
	if h.ToAct == 0 || action.Seat != h.ToAct {
		return ErrNotYourTurn
	}

	s := h.seat(action.Seat)
	if s == nil || !s.CanAct() {
		return fmt.Errorf("%w: seat %d cannot act", ErrInvalidAction, action.Seat)
	}

	if action.Kind != Bet && action.Kind != Raise && action.Amount != 0 {
		return fmt.Errorf("%w: amount is only valid for bet and raise", ErrInvalidAction)
	}

	switch action.Kind {
	case Fold:
		s.Status = StatusFolded

	case Check:
		if s.Bet != h.Betting.CurrentBet {
			return fmt.Errorf("%w: cannot check, %d to call", ErrInvalidAction, h.Betting.CurrentBet-s.Bet)
		}

	case Call:
		if h.Betting.CurrentBet <= s.Bet {
			return fmt.Errorf("%w: nothing to call", ErrInvalidAction)
		}
		// A call is normalized to the outstanding amount, capped at the
		// stack; a capped call is an all-in.
		h.commit(s, min(h.Betting.CurrentBet-s.Bet, s.Chips))

	case Bet:
		if h.Betting.CurrentBet != 0 {
			return fmt.Errorf("%w: cannot bet into a bet, raise instead", ErrInvalidAction)
		}
		if action.Amount <= 0 || action.Amount > s.Chips {
			return fmt.Errorf("%w: bet of %d with stack %d", ErrInvalidAction, action.Amount, s.Chips)
		}
		if action.Amount < h.bigBlind && action.Amount < s.Chips {
			return fmt.Errorf("%w: bet below minimum %d", ErrInvalidAction, h.bigBlind)
		}
		h.commit(s, action.Amount)
		h.Betting.CurrentBet = s.Bet
		h.Betting.MinRaise = s.Bet
		h.Betting.reopen(s.Number)

	case Raise:
		if h.Betting.CurrentBet == 0 {
			return fmt.Errorf("%w: nothing to raise, bet instead", ErrInvalidAction)
		}
		if !h.Betting.canRaise(s.Number) {
			return fmt.Errorf("%w: action was not reopened", ErrInvalidAction)
		}
		total := action.Amount // raise-to
		maxTotal := s.Bet + s.Chips
		if total > maxTotal {
			return fmt.Errorf("%w: raise to %d with only %d behind", ErrInvalidAction, total, maxTotal)
		}
		if total <= h.Betting.CurrentBet {
			return fmt.Errorf("%w: raise must exceed current bet %d", ErrInvalidAction, h.Betting.CurrentBet)
		}
		increment := total - h.Betting.CurrentBet
		if increment < h.Betting.MinRaise && total < maxTotal {
			return fmt.Errorf("%w: raise increment %d below minimum %d", ErrInvalidAction, increment, h.Betting.MinRaise)
		}
		h.commit(s, total-s.Bet)
		h.Betting.CurrentBet = total
		if increment >= h.Betting.MinRaise {
			// A full raise reopens the action
			h.Betting.MinRaise = increment
			h.Betting.reopen(s.Number)
		}

	default:
		return fmt.Errorf("%w: unknown action kind", ErrInvalidAction)
	}

	h.Betting.markActed(s.Number)
	return h.advance(action.Seat)
}

// advance moves the turn after an accepted action.
func (h *Hand) advance(from int) error {
	if h.unfoldedCount() == 1 {
		h.finishUncontested()
		return nil
	}
	if h.Betting.complete(h.seats) {
		return h.nextStreet()
	}
	next := h.nextToAct(from)
	if next == 0 {
		return h.nextStreet()
	}
	h.ToAct = next
	return nil
}

// nextToAct finds the next seat that can act, strictly clockwise after the
// given seat number, or 0 if none can.
func (h *Hand) nextToAct(from int) int {
	nums := make([]int, 0, len(h.seats))
	for _, s := range h.seats {
		if s.CanAct() {
			nums = append(nums, s.Number)
		}
	}
	if len(nums) == 0 {
		return 0
	}
	sort.Ints(nums)
	return nextSeatAfter(nums, from)
}

// nextStreet collects bets into the pots and deals the next community
// cards. When all remaining seats are all-in, streets run out back to back
// until showdown with no further betting.
func (h *Hand) nextStreet() error {
	h.Pots.Collect(h.seats)
	h.Betting.resetForStreet()

	switch h.Street {
	case Preflop:
		h.Street = Flop
		if err := h.dealCommunity(3); err != nil {
			return err
		}
	case Flop:
		h.Street = Turn
		if err := h.dealCommunity(1); err != nil {
			return err
		}
	case Turn:
		h.Street = River
		if err := h.dealCommunity(1); err != nil {
			return err
		}
	case River:
		h.Street = Showdown
		h.ToAct = 0
		return h.finishShowdown()
	default:
		return nil
	}

	// Postflop action starts with the first seat able to act clockwise
	// from the button.
	h.ToAct = h.nextToAct(h.Positions.Button)
	if h.ToAct == 0 || h.Betting.complete(h.seats) {
		return h.nextStreet()
	}
	return nil
}

func (h *Hand) dealCommunity(n int) error {
	cards, err := h.deck.Draw(n)
	if err != nil {
		return err
	}
	h.Community = append(h.Community, cards...)
	return nil
}

func (h *Hand) unfoldedCount() int {
	n := 0
	for _, s := range h.seats {
		if s.InHand() {
			n++
		}
	}
	return n
}

// finishUncontested awards everything to the last seat standing. No cards
// are revealed and no further streets are dealt.
func (h *Hand) finishUncontested() {
	h.Pots.Collect(h.seats)

	var winner *Seat
	for _, s := range h.seats {
		if s.InHand() {
			winner = s
			break
		}
	}

	payouts := make([]Payout, 0, 1)
	total := 0
	for _, pot := range h.Pots.Pots() {
		total += pot.Amount
	}
	if total > 0 {
		payouts = append(payouts, Payout{Seat: winner.Number, Amount: total})
	}
	h.settle(payouts)
}

// finishShowdown evaluates the remaining hands and awards each pot to its
// best eligible hand, splitting ties. Side pots resolve independently in
// creation order.
func (h *Hand) finishShowdown() error {
	ranks := make(map[int]evaluator.HandRank)
	for _, s := range h.seats {
		if !s.InHand() {
			continue
		}
		rank, err := evaluator.Evaluate(append(append([]deck.Card{}, s.HoleCards...), h.Community...))
		if err != nil {
			return fmt.Errorf("evaluating seat %d: %w", s.Number, err)
		}
		ranks[s.Number] = rank
	}
	h.WentToShowdown = true
	h.ShowdownRanks = ranks

	payoutBySeat := make(map[int]int)
	for _, pot := range h.Pots.Pots() {
		winners := potWinners(pot, ranks)
		if len(winners) == 0 {
			continue
		}

		// Odd chips go to the first winner clockwise from the button.
		h.sortClockwiseFromButton(winners)
		base := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for i, seatNum := range winners {
			amount := base
			if i == 0 {
				amount += remainder
			}
			payoutBySeat[seatNum] += amount
		}
	}

	seatNums := make([]int, 0, len(payoutBySeat))
	for n := range payoutBySeat {
		seatNums = append(seatNums, n)
	}
	sort.Ints(seatNums)
	payouts := make([]Payout, 0, len(seatNums))
	for _, n := range seatNums {
		payouts = append(payouts, Payout{Seat: n, Amount: payoutBySeat[n]})
	}

	h.settle(payouts)
	return nil
}

// potWinners returns the eligible seats holding the best hand for one pot.
func potWinners(pot Pot, ranks map[int]evaluator.HandRank) []int {
	var best evaluator.HandRank
	var winners []int
	for _, seatNum := range pot.Eligible {
		rank, ok := ranks[seatNum]
		if !ok {
			continue
		}
		switch rank.Compare(best) {
		case 1:
			best = rank
			winners = []int{seatNum}
		case 0:
			if len(winners) > 0 {
				winners = append(winners, seatNum)
			}
		}
	}
	return winners
}

func (h *Hand) sortClockwiseFromButton(seatNums []int) {
	button := h.Positions.Button
	rel := func(n int) int {
		if n > button {
			return n - button
		}
		return n - button + 1<<16
	}
	sort.Slice(seatNums, func(i, j int) bool {
		return rel(seatNums[i]) < rel(seatNums[j])
	})
}

// settle pays the winners and closes the hand. The pots are cleared as
// they are paid so chips are never counted both in a stack and in a pot.
// Seats that bust transition to sitting out.
func (h *Hand) settle(payouts []Payout) {
	for _, p := range payouts {
		h.seat(p.Seat).Chips += p.Amount
	}
	h.Pots.clear()
	for _, s := range h.seats {
		if s.Chips == 0 {
			s.Status = StatusSittingOut
		}
	}
	h.Results = payouts
	h.ToAct = 0
	h.Complete = true
}

// ValidActions returns the legal actions for the seat to act, with
// normalized amounts, or nil when no action is pending.
func (h *Hand) ValidActions() []ValidAction {
	if h.Complete || h.ToAct == 0 {
		return nil
	}
	s := h.seat(h.ToAct)
	if s == nil || !s.CanAct() {
		return nil
	}

	actions := []ValidAction{{Kind: Fold}}

	toCall := h.Betting.CurrentBet - s.Bet
	if toCall <= 0 {
		actions = append(actions, ValidAction{Kind: Check})
	} else {
		call := min(toCall, s.Chips)
		actions = append(actions, ValidAction{Kind: Call, Min: call, Max: call})
	}

	if h.Betting.CurrentBet == 0 {
		if s.Chips > 0 {
			actions = append(actions, ValidAction{
				Kind: Bet,
				Min:  min(h.bigBlind, s.Chips),
				Max:  s.Chips,
			})
		}
	} else if h.Betting.canRaise(s.Number) {
		maxTotal := s.Bet + s.Chips
		if maxTotal > h.Betting.CurrentBet {
			actions = append(actions, ValidAction{
				Kind: Raise,
				Min:  min(h.Betting.CurrentBet+h.Betting.MinRaise, maxTotal),
				Max:  maxTotal,
			})
		}
	}

	return actions
}

// clone deep-copies the hand, resolving seats through the given mapping
// from seat number to the cloned table's seats.
func (h *Hand) clone(seatByNumber map[int]*Seat) *Hand {
	c := *h
	c.seats = make([]*Seat, len(h.seats))
	for i, s := range h.seats {
		c.seats[i] = seatByNumber[s.Number]
	}
	c.Community = append([]deck.Card(nil), h.Community...)
	c.Betting = h.Betting.clone()
	c.Pots = h.Pots.clone()
	c.deck = h.deck.Clone()
	if h.Results != nil {
		c.Results = append([]Payout(nil), h.Results...)
	}
	if h.ShowdownRanks != nil {
		c.ShowdownRanks = make(map[int]evaluator.HandRank, len(h.ShowdownRanks))
		for k, v := range h.ShowdownRanks {
			c.ShowdownRanks[k] = v
		}
	}
	return &c
}
