package shared

import "github.com/google/uuid"

// Team represents one of the two partnerships. The board is an
// append-only collection of melds owned jointly by both teammates;
// either teammate may place onto or extend any meld on it.
type Team struct {
	ID      string     `json:"id"`
	Number  int        `json:"-"` // Team index, 0 or 1
	Players [2]*Player `json:"-"`
	Melds   []*Meld    `json:"melds"`
}

// NewTeam creates a new team with the given index and players.
// It generates a unique UUID for the team ID.
func NewTeam(number int, player1, player2 *Player) *Team {
	return &Team{
		ID:      uuid.NewString(),
		Number:  number,
		Players: [2]*Player{player1, player2},
		Melds:   []*Meld{},
	}
}

// AddMeld appends a meld to the team's board.
func (t *Team) AddMeld(m *Meld) {
	t.Melds = append(t.Melds, m)
}

// FindMeld returns the board meld with the given identity.
func (t *Team) FindMeld(meldID string) (*Meld, bool) {
	for _, m := range t.Melds {
		if m.ID == meldID {
			return m, true
		}
	}
	return nil, false
}

// HasPureSequence reports whether the board holds at least one pure
// sequence of any length. Until it does, the team's placements are
// gated on establishing one.
func (t *Team) HasPureSequence() bool {
	for _, m := range t.Melds {
		if m.Kind == PureSequence {
			return true
		}
	}
	return false
}

// HasSevenPure reports whether the board holds a pure meld of at
// least seven cards, the qualifier that spares the team the end-game
// penalty.
func (t *Team) HasSevenPure() bool {
	for _, m := range t.Melds {
		if QualifiesSevenPure(m.Kind, len(m.Cards)) {
			return true
		}
	}
	return false
}

// BoardCardCount returns the number of cards across all board melds.
func (t *Team) BoardCardCount() int {
	n := 0
	for _, m := range t.Melds {
		n += len(m.Cards)
	}
	return n
}

// HandTally sums both teammates' in-hand card values.
func (t *Team) HandTally() int {
	return t.Players[0].HandTally() + t.Players[1].HandTally()
}
