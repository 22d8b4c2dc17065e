package shared

import "github.com/google/uuid"

// Suit represents the suit of a card. Joker is the suit of the four
// printed jokers in the double deck.
type Suit string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
	Joker    Suit = "Joker"
)

// Rank constants for the named ranks. Printed jokers carry rank 0;
// the other cards carry 1 (Ace) through 13 (King).
const (
	RankJoker = 0
	RankAce   = 1
	RankKing  = 13
)

// Card represents a single physical card. Two decks are in play, so
// the same suit/rank pair exists twice; ID keeps the two instances
// distinct for the whole life of the game.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank int    `json:"rank"` // 0 for printed jokers, 1-13 otherwise
}

// NewCard creates a card with a fresh unique identity.
func NewCard(suit Suit, rank int) Card {
	return Card{ID: uuid.NewString(), Suit: suit, Rank: rank}
}

// IsJoker reports whether the card plays as a wild joker: printed
// jokers and every rank-2 card of any suit.
func (c Card) IsJoker() bool {
	return c.Suit == Joker || c.Rank == 2
}

// TallyValue returns the card's point value at the end-of-game tally.
// Jokers (printed or rank 2) count 0, aces 15, ranks 3-7 count 5 and
// ranks 8-13 count 10.
func (c Card) TallyValue() int {
	switch {
	case c.IsJoker():
		return 0
	case c.Rank == RankAce:
		return 15
	case c.Rank >= 3 && c.Rank <= 7:
		return 5
	default:
		return 10
	}
}
