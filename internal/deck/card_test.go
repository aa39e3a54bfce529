package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card Card
		code string
	}{
		{NewCard(Spades, Ace), "AS"},
		{NewCard(Hearts, Ten), "TH"},
		{NewCard(Diamonds, Two), "2D"},
		{NewCard(Clubs, King), "KC"},
		{NewCard(Hearts, Nine), "9H"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.card.Code())
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(suit, rank)
			parsed, err := Parse(card.Code())
			require.NoError(t, err)
			assert.Equal(t, card, parsed)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"", "A", "ASX", "1S", "AX", "XS"} {
		_, err := Parse(code)
		assert.Error(t, err, "code %q should not parse", code)
	}
}

func TestCardString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A♠", NewCard(Spades, Ace).String())
	assert.Equal(t, "7♦", NewCard(Diamonds, Seven).String())
}
