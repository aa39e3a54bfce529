package evaluator

// Hand categories, ascending strength
const (
	HighCard = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// HandRank is a totally ordered hand strength value. The category lives in
// the bits above 20; below that are up to five 4-bit rank nibbles in
// decreasing significance, so two ranks of the same category compare by
// kickers automatically. Higher is stronger.
type HandRank uint32

// Compare returns 1 if h is stronger than other, -1 if weaker, 0 if equal.
// Equal ranks split the pot.
func (h HandRank) Compare(other HandRank) int {
	if h > other {
		return 1
	}
	if h < other {
		return -1
	}
	return 0
}

// Category returns the hand category (HighCard..StraightFlush).
func (h HandRank) Category() int {
	return int(h >> 20)
}

// String returns the readable name of the hand category.
func (h HandRank) String() string {
	switch h.Category() {
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case OnePair:
		return "One Pair"
	case HighCard:
		return "High Card"
	default:
		return "Unknown"
	}
}

// encode packs a category and up to five significant ranks into a HandRank.
func encode(category int, ranks ...int) HandRank {
	r := HandRank(category) << 20
	shift := 16
	for _, rank := range ranks {
		r |= HandRank(rank) << shift
		shift -= 4
	}
	return r
}
