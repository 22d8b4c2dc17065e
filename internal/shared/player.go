package shared

// Player represents one of the four seated players.
type Player struct {
	ID   string // Unique identifier for the player
	Name string // Player's chosen name
	Team int    // Team index, 0 or 1
	Seat int    // Seat index in play order, 0-3
	Hand []Card // Cards currently held by the player
}

// NewPlayer creates a new player with the given ID, name and seat.
// Teams alternate by seat: seats 0 and 2 are team 0, seats 1 and 3
// are team 1.
func NewPlayer(id string, name string, seat int) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Team: seat % 2,
		Seat: seat,
		Hand: []Card{},
	}
}

// AddCard adds a card to the player's hand.
func (p *Player) AddCard(card Card) {
	p.Hand = append(p.Hand, card)
}

// AddCards appends several cards to the player's hand.
func (p *Player) AddCards(cards []Card) {
	p.Hand = append(p.Hand, cards...)
}

// FindCard returns the card with the given identity if the player
// holds it.
func (p *Player) FindCard(cardID string) (Card, bool) {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// HasCard reports whether the player holds the card with the given
// identity.
func (p *Player) HasCard(cardID string) bool {
	_, ok := p.FindCard(cardID)
	return ok
}

// RemoveCard removes the card with the given identity from the
// player's hand. Returns false if the player does not hold it.
func (p *Player) RemoveCard(cardID string) bool {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveCards removes every listed card from the player's hand.
// Returns false without modifying the hand if any card is missing or
// listed twice.
func (p *Player) RemoveCards(cardIDs []string) bool {
	seen := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] || !p.HasCard(id) {
			return false
		}
		seen[id] = true
	}
	for _, id := range cardIDs {
		p.RemoveCard(id)
	}
	return true
}

// HandTally sums the tally value of every card still in hand.
func (p *Player) HandTally() int {
	total := 0
	for _, c := range p.Hand {
		total += c.TallyValue()
	}
	return total
}
