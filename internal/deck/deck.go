package deck

import (
	"errors"
	"math/rand"
	"time"
)

// ErrExhausted is returned when a draw asks for more cards than remain.
// With at most 8 players (16 hole cards) and 5 community cards this is
// unreachable in play and indicates a programming error.
var ErrExhausted = errors.New("deck exhausted")

// Deck represents a deck of playing cards. The random source is injected
// so tests can produce deterministic shuffles.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a standard 52-card deck in canonical order. A nil rng gets
// a time-seeded source.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// Shuffle randomizes the deck with a Fisher-Yates shuffle.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top n cards.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrExhausted
	}
	cards := d.cards[:n:n]
	d.cards = d.cards[n:]
	return cards, nil
}

// Clone copies the deck's remaining cards. The random source is shared:
// clones exist so an in-flight transition can be discarded without
// disturbing the original's cards.
func (d *Deck) Clone() *Deck {
	return &Deck{cards: append([]Card(nil), d.cards...), rng: d.rng}
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
