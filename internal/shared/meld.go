package shared

import (
	"log"
	"sort"

	"github.com/google/uuid"
)

// MeldKind classifies a group of cards placed on a team board.
type MeldKind string

const (
	PureSequence   MeldKind = "PureSequence"   // same-suit run, no joker
	ImpureSequence MeldKind = "ImpureSequence" // same-suit run using one joker
	PureSet        MeldKind = "PureSet"        // same-rank group, no joker
	ImpureSet      MeldKind = "ImpureSet"      // same-rank group using one joker
	ThreeJokers    MeldKind = "ThreeJokers"    // exactly three jokers together
	InvalidMeld    MeldKind = "Invalid"
)

// Meld represents a group of cards on a team board. Kind is
// recomputed whenever cards are appended, so a meld can downgrade
// from pure to impure over its lifetime.
type Meld struct {
	ID    string   `json:"id"`
	Kind  MeldKind `json:"kind"`
	Cards []Card   `json:"cards"`
}

// NewMeld wraps an already-classified card group in a meld with a
// fresh identity.
func NewMeld(kind MeldKind, cards []Card) *Meld {
	return &Meld{
		ID:    uuid.NewString(),
		Kind:  kind,
		Cards: cards,
	}
}

// Append adds cards to the meld and reclassifies the combined group.
// On an invalid result the meld is left untouched and false is
// returned.
func (m *Meld) Append(cards []Card) bool {
	combined := make([]Card, 0, len(m.Cards)+len(cards))
	combined = append(combined, m.Cards...)
	combined = append(combined, cards...)

	kind := Classify(combined)
	if kind == InvalidMeld {
		return false
	}
	m.Kind = kind
	m.Cards = combined
	return true
}

// IsPure reports whether the meld kind scores as pure.
func (k MeldKind) IsPure() bool {
	return k == PureSequence || k == PureSet
}

// QualifiesSevenPure reports whether a meld of the given kind and size
// is the large pure meld required to legitimize a show: a pure
// sequence or pure set of at least seven cards.
func QualifiesSevenPure(kind MeldKind, size int) bool {
	return kind.IsPure() && size >= 7
}

// Classify maps a group of cards to its meld classification, or
// InvalidMeld if the group forms no legal meld.
//
// Rules, in order:
//   - exactly three jokers form the ThreeJokers meld;
//   - otherwise at most one joker is allowed;
//   - at least two natural (non-joker) cards are required;
//   - naturals sharing one rank form a set (suits may repeat, there
//     are two decks in play);
//   - naturals sharing one suit with no duplicate ranks form a
//     sequence when the rank gaps sum to zero, or to at most one
//     when a joker is present to fill the gap. Ace is low only
//     (rank 1) and nothing sits above the king: no wraparound.
func Classify(cards []Card) MeldKind {
	var jokerCards []Card
	naturals := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokerCards = append(jokerCards, c)
		} else {
			naturals = append(naturals, c)
		}
	}
	jokers := len(jokerCards)

	if len(cards) == 3 && jokers == 3 {
		return ThreeJokers
	}
	if jokers > 1 {
		return InvalidMeld
	}
	if len(naturals) < 2 {
		return InvalidMeld
	}

	// Set test: all naturals share one rank.
	isSet := true
	for _, c := range naturals[1:] {
		if c.Rank != naturals[0].Rank {
			isSet = false
			break
		}
	}
	if isSet {
		if jokers == 0 {
			return PureSet
		}
		return ImpureSet
	}

	// Sequence test: all naturals share one suit.
	for _, c := range naturals[1:] {
		if c.Suit != naturals[0].Suit {
			return InvalidMeld
		}
	}

	ranks := make([]int, len(naturals))
	for i, c := range naturals {
		ranks[i] = c.Rank
	}
	sort.Ints(ranks)

	gaps, ok := sequenceGaps(ranks)
	if !ok {
		return InvalidMeld // no pairs within a run
	}

	if jokers == 0 {
		if gaps != 0 {
			return InvalidMeld
		}
		return PureSequence
	}

	// A rank-2 card of the run's own suit sitting in its natural
	// position keeps the sequence pure: A-2-3 of spades is a pure run,
	// not a joker substitution.
	if jokerCards[0].Rank == 2 && jokerCards[0].Suit == naturals[0].Suit {
		promoted := append(append([]int{}, ranks...), 2)
		sort.Ints(promoted)
		if g, ok := sequenceGaps(promoted); ok && g == 0 {
			return PureSequence
		}
	}

	if gaps > 1 {
		return InvalidMeld
	}
	return ImpureSequence
}

// sequenceGaps returns the summed rank gaps of a sorted run, or
// ok=false when the run contains a duplicate rank.
func sequenceGaps(ranks []int) (int, bool) {
	gaps := 0
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return 0, false
		}
		gaps += ranks[i] - ranks[i-1] - 1
	}
	return gaps, true
}

// ContainsCard reports whether the meld holds the card with the given
// identity.
func (m *Meld) ContainsCard(cardID string) bool {
	for _, c := range m.Cards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// TallyPoints sums the tally value of every card in the meld.
func (m *Meld) TallyPoints() int {
	points := 0
	for _, c := range m.Cards {
		points += c.TallyValue()
	}
	return points
}

// MeldPoints returns the fixed bonus the meld itself is worth at the
// final tally: 200 for pure melds, 100 for impure ones (the
// three-joker meld always counts as impure).
func (m *Meld) MeldPoints() int {
	if m.Kind.IsPure() {
		return 200
	}
	if m.Kind == InvalidMeld {
		// A board never holds an invalid meld; treat it as a defect.
		log.Panicf("Invalid meld %s reached scoring.", m.ID)
	}
	return 100
}
