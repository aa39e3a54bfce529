// Package evaluator ranks 5-7 card poker hands into comparable HandRank
// values. The best five-card combination is found by scoring every
// five-card subset; with at most 7 cards that is 21 subsets, cheap enough
// that no precomputed tables are needed.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/cardroomhq/cardroom/internal/deck"
)

// Evaluate returns the strength of the best five-card hand available from
// the given cards. It accepts 5 to 7 cards (2 hole cards plus 3-5
// community cards).
func Evaluate(cards []deck.Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("evaluate needs 5-7 cards, got %d", len(cards))
	}

	seen := make(map[deck.Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return 0, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}

	var best HandRank
	var hand [5]deck.Card
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						hand[0], hand[1], hand[2], hand[3], hand[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						if r := rankFive(hand); r > best {
							best = r
						}
					}
				}
			}
		}
	}
	return best, nil
}

// rankFive scores exactly five cards.
func rankFive(cards [5]deck.Card) HandRank {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = int(c.Rank)
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	straightTop := straightTopRank(ranks)

	switch {
	case flush && straightTop > 0:
		return encode(StraightFlush, straightTop)
	case flush:
		return encode(Flush, ranks...)
	case straightTop > 0:
		return encode(Straight, straightTop)
	}

	// Group ranks by multiplicity, most frequent first, higher rank first
	// within equal multiplicity.
	counts := make(map[int]int)
	for _, r := range ranks {
		counts[r]++
	}
	groups := make([]int, 0, len(counts))
	for r := range counts {
		groups = append(groups, r)
	}
	sort.Slice(groups, func(i, j int) bool {
		if counts[groups[i]] != counts[groups[j]] {
			return counts[groups[i]] > counts[groups[j]]
		}
		return groups[i] > groups[j]
	})

	switch {
	case counts[groups[0]] == 4:
		return encode(FourOfAKind, groups[0], groups[1])
	case counts[groups[0]] == 3 && counts[groups[1]] == 2:
		return encode(FullHouse, groups[0], groups[1])
	case counts[groups[0]] == 3:
		return encode(ThreeOfAKind, groups[0], groups[1], groups[2])
	case counts[groups[0]] == 2 && counts[groups[1]] == 2:
		return encode(TwoPair, groups[0], groups[1], groups[2])
	case counts[groups[0]] == 2:
		return encode(OnePair, groups[0], groups[1], groups[2], groups[3])
	default:
		return encode(HighCard, ranks...)
	}
}

// straightTopRank returns the top rank of a straight formed by the five
// descending-sorted ranks, or 0 if they do not form one. The wheel
// (A-2-3-4-5) counts with the five as its top card.
func straightTopRank(sorted []int) int {
	for i := 1; i < 5; i++ {
		if sorted[i] == sorted[i-1] {
			return 0
		}
	}

	if sorted[0]-sorted[4] == 4 {
		return sorted[0]
	}

	// Ace plays low: A,5,4,3,2
	if sorted[0] == int(deck.Ace) && sorted[1] == 5 && sorted[1]-sorted[4] == 3 {
		return 5
	}

	return 0
}
