package shared

import (
	"log"
	"math/rand/v2"
)

// DeckSize is the full pool: two standard 52-card decks plus two
// printed jokers per deck.
const DeckSize = 108

// Deck represents a collection of cards.
type Deck struct {
	Cards []Card
}

// NewDoubleDeck creates the 108-card pool used by the game: two copies
// of the standard deck plus four printed jokers.
func NewDoubleDeck() *Deck {
	suits := []Suit{Hearts, Diamonds, Clubs, Spades}

	var cards []Card
	for copyNo := 0; copyNo < 2; copyNo++ {
		for _, suit := range suits {
			for rank := RankAce; rank <= RankKing; rank++ {
				cards = append(cards, NewCard(suit, rank))
			}
		}
		cards = append(cards, NewCard(Joker, RankJoker), NewCard(Joker, RankJoker))
	}

	return &Deck{Cards: cards}
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	log.Println("Deck shuffled.")
}

// DealStacks peels numStacks stacks of stackSize cards off the deck.
// Returns nil if not enough cards remain.
func (d *Deck) DealStacks(numStacks, stackSize int) [][]Card {
	totalCardsNeeded := numStacks * stackSize
	if len(d.Cards) < totalCardsNeeded {
		log.Printf("Error: Not enough cards in deck (%d) to deal %d stacks of %d.", len(d.Cards), numStacks, stackSize)
		return nil
	}

	stacks := make([][]Card, numStacks)
	start := 0
	for i := 0; i < numStacks; i++ {
		end := start + stackSize
		stack := make([]Card, stackSize)
		copy(stack, d.Cards[start:end])
		stacks[i] = stack
		start = end
	}

	d.Cards = d.Cards[start:]
	log.Printf("Dealt %d stacks of %d cards; %d remain in deck.", numStacks, stackSize, len(d.Cards))
	return stacks
}
