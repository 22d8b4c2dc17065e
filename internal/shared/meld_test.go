package shared

import "testing"

func c(suit Suit, rank int) Card {
	return NewCard(suit, rank)
}

func printedJoker() Card {
	return NewCard(Joker, RankJoker)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  MeldKind
	}{
		{
			name:  "ace two three same suit stays pure",
			cards: []Card{c(Spades, 1), c(Spades, 2), c(Spades, 3)},
			want:  PureSequence,
		},
		{
			name:  "plain consecutive run",
			cards: []Card{c(Hearts, 4), c(Hearts, 5), c(Hearts, 6)},
			want:  PureSequence,
		},
		{
			name:  "two naturals no joker",
			cards: []Card{c(Hearts, 9), c(Hearts, 10)},
			want:  PureSequence,
		},
		{
			name:  "pure set of sevens",
			cards: []Card{c(Hearts, 7), c(Diamonds, 7), c(Clubs, 7)},
			want:  PureSet,
		},
		{
			name:  "set with repeated suit",
			cards: []Card{c(Hearts, 7), c(Hearts, 7), c(Clubs, 7)},
			want:  PureSet,
		},
		{
			name:  "set with printed joker",
			cards: []Card{c(Hearts, 7), c(Diamonds, 7), printedJoker()},
			want:  ImpureSet,
		},
		{
			name:  "set with off-suit two as joker",
			cards: []Card{c(Hearts, 7), c(Diamonds, 7), c(Clubs, 2)},
			want:  ImpureSet,
		},
		{
			name:  "three printed jokers",
			cards: []Card{printedJoker(), printedJoker(), printedJoker()},
			want:  ThreeJokers,
		},
		{
			name:  "three wild twos",
			cards: []Card{c(Hearts, 2), c(Diamonds, 2), c(Clubs, 2)},
			want:  ThreeJokers,
		},
		{
			name:  "joker fills single gap",
			cards: []Card{c(Spades, 5), c(Spades, 6), c(Spades, 8), printedJoker()},
			want:  ImpureSequence,
		},
		{
			name:  "joker extends run without gap",
			cards: []Card{c(Spades, 5), c(Spades, 6), printedJoker()},
			want:  ImpureSequence,
		},
		{
			name:  "gap of two exceeds joker capacity",
			cards: []Card{c(Spades, 5), c(Spades, 6), c(Spades, 9), printedJoker()},
			want:  InvalidMeld,
		},
		{
			name:  "gap with no joker",
			cards: []Card{c(Spades, 5), c(Spades, 7)},
			want:  InvalidMeld,
		},
		{
			name:  "two jokers rejected",
			cards: []Card{c(Spades, 5), c(Spades, 6), printedJoker(), printedJoker()},
			want:  InvalidMeld,
		},
		{
			name:  "two wild twos rejected",
			cards: []Card{c(Spades, 5), c(Spades, 6), c(Hearts, 2), c(Diamonds, 2)},
			want:  InvalidMeld,
		},
		{
			name:  "single natural with joker rejected",
			cards: []Card{c(Spades, 5), printedJoker()},
			want:  InvalidMeld,
		},
		{
			name:  "duplicate rank within run",
			cards: []Card{c(Spades, 5), c(Spades, 5), c(Spades, 6)},
			want:  InvalidMeld,
		},
		{
			name:  "queen king ace does not wrap",
			cards: []Card{c(Spades, 12), c(Spades, 13), c(Spades, 1)},
			want:  InvalidMeld,
		},
		{
			name:  "run topping out at king",
			cards: []Card{c(Spades, 11), c(Spades, 12), c(Spades, 13)},
			want:  PureSequence,
		},
		{
			name:  "mixed suits rejected",
			cards: []Card{c(Spades, 5), c(Hearts, 6), c(Spades, 7)},
			want:  InvalidMeld,
		},
		{
			name:  "mixed ranks and suits rejected",
			cards: []Card{c(Spades, 5), c(Hearts, 5), c(Spades, 7)},
			want:  InvalidMeld,
		},
		{
			name:  "own-suit two as joker elsewhere in run",
			cards: []Card{c(Spades, 5), c(Spades, 6), c(Spades, 2)},
			want:  ImpureSequence,
		},
		{
			name:  "empty group rejected",
			cards: []Card{},
			want:  InvalidMeld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.cards); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQualifiesSevenPure(t *testing.T) {
	tests := []struct {
		name string
		kind MeldKind
		size int
		want bool
	}{
		{"seven card pure sequence", PureSequence, 7, true},
		{"eight card pure set", PureSet, 8, true},
		{"six card pure sequence too short", PureSequence, 6, false},
		{"seven card impure sequence", ImpureSequence, 7, false},
		{"seven card impure set", ImpureSet, 7, false},
		{"three jokers", ThreeJokers, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualifiesSevenPure(tt.kind, tt.size); got != tt.want {
				t.Errorf("QualifiesSevenPure(%s, %d) = %v, want %v", tt.kind, tt.size, got, tt.want)
			}
		})
	}
}

func TestMeldAppend(t *testing.T) {
	m := NewMeld(PureSequence, []Card{c(Hearts, 4), c(Hearts, 5), c(Hearts, 6)})

	// Extending with the next natural keeps the meld pure.
	if !m.Append([]Card{c(Hearts, 7)}) {
		t.Fatal("appending the next rank should succeed")
	}
	if m.Kind != PureSequence {
		t.Errorf("kind = %s, want %s", m.Kind, PureSequence)
	}

	// A joker extension downgrades the sequence to impure.
	if !m.Append([]Card{printedJoker()}) {
		t.Fatal("appending a joker should succeed")
	}
	if m.Kind != ImpureSequence {
		t.Errorf("kind = %s, want %s", m.Kind, ImpureSequence)
	}
	if len(m.Cards) != 5 {
		t.Errorf("meld has %d cards, want 5", len(m.Cards))
	}

	// A second joker would be the meld's second: rejected, meld untouched.
	if m.Append([]Card{c(Clubs, 2)}) {
		t.Fatal("second joker must be rejected")
	}
	if m.Kind != ImpureSequence || len(m.Cards) != 5 {
		t.Errorf("failed append mutated the meld: kind %s, %d cards", m.Kind, len(m.Cards))
	}
}

func TestMeldPoints(t *testing.T) {
	tests := []struct {
		name string
		meld *Meld
		want int
	}{
		{"pure sequence", NewMeld(PureSequence, nil), 200},
		{"pure set", NewMeld(PureSet, nil), 200},
		{"impure sequence", NewMeld(ImpureSequence, nil), 100},
		{"impure set", NewMeld(ImpureSet, nil), 100},
		{"three jokers scores impure", NewMeld(ThreeJokers, nil), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meld.MeldPoints(); got != tt.want {
				t.Errorf("MeldPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTallyValue(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want int
	}{
		{"printed joker", printedJoker(), 0},
		{"wild two", c(Hearts, 2), 0},
		{"ace", c(Spades, 1), 15},
		{"three", c(Spades, 3), 5},
		{"seven", c(Spades, 7), 5},
		{"eight", c(Spades, 8), 10},
		{"king", c(Spades, 13), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.TallyValue(); got != tt.want {
				t.Errorf("TallyValue() = %d, want %d", got, tt.want)
			}
		})
	}
}
