package game

import "github.com/cardroomhq/cardroom/internal/deck"

// SeatView is the externally visible state of one seat. HoleCards is only
// populated for the viewing player's own seat, or for unfolded seats once
// a hand has gone to showdown.
type SeatView struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	Chips     int      `json:"chips"`
	Status    string   `json:"status"`
	Bet       int      `json:"bet"`
	IsTurn    bool     `json:"is_turn"`
	HoleCards []string `json:"hole_cards,omitempty"`
	HandRank  string   `json:"hand_rank,omitempty"`
}

// TableView is the composite state pushed to clients after every
// transition. It never contains another player's live hole cards.
type TableView struct {
	TableID    string     `json:"table_id"`
	Code       string     `json:"code"`
	Status     string     `json:"status"`
	Button     int        `json:"button,omitempty"`
	SmallBlind int        `json:"small_blind"`
	BigBlind   int        `json:"big_blind"`
	Street     string     `json:"street,omitempty"`
	Community  []string   `json:"community_cards"`
	Pot        int        `json:"pot"`
	CurrentBet int        `json:"current_bet"`
	ToAct      int        `json:"to_act,omitempty"`
	Seats      []SeatView `json:"seats"`
	Results    []Payout   `json:"results,omitempty"`
}

// View renders the table state as seen by the given player. An empty
// playerID produces the fully redacted public view.
func (t *Table) View(playerID string) TableView {
	v := TableView{
		TableID:    t.ID,
		Code:       t.Code,
		Status:     t.Status.String(),
		Button:     t.Button,
		SmallBlind: t.Settings.SmallBlind,
		BigBlind:   t.Settings.BigBlind,
		Community:  []string{},
	}

	h := t.Hand
	if h != nil {
		v.Street = h.Street.String()
		v.Community = deck.Codes(h.Community)
		v.Pot = h.Pots.TotalWithLive(h.seats)
		v.CurrentBet = h.Betting.CurrentBet
		v.ToAct = h.ToAct
		v.Results = h.Results
	}

	v.Seats = make([]SeatView, 0, len(t.Seats))
	for _, s := range t.Seats {
		sv := SeatView{
			Seat:   s.Number,
			Name:   s.Name,
			Chips:  s.Chips,
			Status: s.Status.String(),
			Bet:    s.Bet,
		}
		if h != nil {
			sv.IsTurn = s.Number == h.ToAct
			if rank, ok := h.ShowdownRanks[s.Number]; ok {
				// Showdown reveals the contenders' cards to everyone
				sv.HoleCards = deck.Codes(s.HoleCards)
				sv.HandRank = rank.String()
			}
		}
		if s.PlayerID == playerID && len(s.HoleCards) > 0 {
			sv.HoleCards = deck.Codes(s.HoleCards)
		}
		v.Seats = append(v.Seats, sv)
	}

	return v
}
