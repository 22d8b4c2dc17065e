package game

import (
	"fmt"
	"testing"

	"burraco-game/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(suit shared.Suit, rank int) shared.Card {
	return shared.NewCard(suit, rank)
}

func printedJoker() shared.Card {
	return shared.NewCard(shared.Joker, shared.RankJoker)
}

func cards(cs ...shared.Card) []shared.Card {
	return cs
}

func ids(cs ...shared.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// riggedGame returns an Active game with four registered players,
// empty hands and boards, seat 1 to act (dealer 0), and stocked piles
// so discards and draws have something to work with.
func riggedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame()
	for i, name := range []string{"Ana", "Ben", "Cal", "Dee"} {
		require.NoError(t, g.RegisterPlayer(fmt.Sprintf("p%d", i), name))
	}
	g.Teams = [2]*shared.Team{
		shared.NewTeam(0, g.Players[0], g.Players[2]),
		shared.NewTeam(1, g.Players[1], g.Players[3]),
	}
	g.Status = Active
	g.TurnIndex = 1
	g.ClosedPile = cards(card(shared.Clubs, 9), card(shared.Clubs, 10), card(shared.Clubs, 11))
	g.OpenPile = cards(card(shared.Diamonds, 4))
	for i := 0; i < handSize; i++ {
		g.BonusStack = append(g.BonusStack, card(shared.Hearts, 8))
	}
	return g
}

func TestRegisterPlayer(t *testing.T) {
	g := NewGame()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.RegisterPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i)))
	}

	assert.Error(t, g.RegisterPlayer("p4", "Fifth"), "fifth registration must fail")

	// Seats follow join order, teams alternate.
	for i := 0; i < 4; i++ {
		assert.Equal(t, i, g.Players[i].Seat)
		assert.Equal(t, i%2, g.Players[i].Team)
	}
}

func TestStartDeal(t *testing.T) {
	g := NewGame()
	require.Error(t, g.Start(), "start without players must fail")

	for i := 0; i < 4; i++ {
		require.NoError(t, g.RegisterPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i)))
	}
	require.NoError(t, g.Start())

	assert.Equal(t, Active, g.Status)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, handSize)
	}
	assert.Len(t, g.BonusStack, handSize)
	assert.Len(t, g.OpenPile, 1)
	assert.Len(t, g.ClosedPile, shared.DeckSize-5*handSize-1)
	assert.Equal(t, (g.DealerIndex+1)%numPlayers, g.TurnIndex)
	assert.Equal(t, shared.DeckSize, g.CardCount())

	assert.Error(t, g.Start(), "second start must fail")
	assert.Error(t, g.RegisterPlayer("p5", "Late"), "registering after start must fail")
}

func TestDrawClosed(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]

	require.Error(t, g.DrawClosed("p0"), "out-of-turn draw must fail")
	require.Error(t, g.DrawClosed("ghost"), "unknown player must fail")

	require.NoError(t, g.DrawClosed("p1"))
	assert.Len(t, p.Hand, 1)
	assert.Len(t, g.ClosedPile, 2)
	assert.True(t, g.hasDrawn)

	assert.Error(t, g.DrawClosed("p1"), "drawing twice must fail")
}

func TestDrawClosedEmptyPile(t *testing.T) {
	g := riggedGame(t)
	g.ClosedPile = nil
	assert.Error(t, g.DrawClosed("p1"))
}

func TestDrawOpenRequiresUsableMeld(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	p.Hand = cards(card(shared.Spades, 5), card(shared.Spades, 6), card(shared.Clubs, 13))

	// Top card completes no meld at all.
	g.OpenPile = cards(card(shared.Diamonds, 9))
	require.Error(t, g.DrawOpen("p1"))
	assert.Len(t, p.Hand, 3, "failed pickup must not touch the hand")
	assert.Len(t, g.OpenPile, 1, "failed pickup must leave the card on the pile")
	assert.False(t, g.hasDrawn)

	// 7 of spades completes 5-6-7, a pure sequence: satisfies the
	// team-pure obligation too.
	g.OpenPile = cards(card(shared.Spades, 7))
	require.NoError(t, g.DrawOpen("p1"))
	assert.Len(t, p.Hand, 4)
	assert.Len(t, g.OpenPile, 0)
	assert.True(t, g.hasDrawn)
}

func TestDrawOpenTeamPureGate(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	// Hand completes only an impure set with the top card.
	p.Hand = cards(card(shared.Hearts, 9), card(shared.Diamonds, 9), printedJoker())
	g.OpenPile = cards(card(shared.Clubs, 9))

	require.Error(t, g.DrawOpen("p1"), "pickup must fail while the team lacks a pure sequence")

	// Once the team board holds a pure sequence the same pickup works.
	g.Teams[1].AddMeld(shared.NewMeld(shared.PureSequence,
		cards(card(shared.Hearts, 4), card(shared.Hearts, 5), card(shared.Hearts, 6))))
	require.NoError(t, g.DrawOpen("p1"))
}

func TestDrawOpenJokerTop(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.Teams[1].AddMeld(shared.NewMeld(shared.PureSequence,
		cards(card(shared.Hearts, 4), card(shared.Hearts, 5), card(shared.Hearts, 6))))

	// A printed joker may not be picked up to extend a plain run.
	p.Hand = cards(card(shared.Spades, 5), card(shared.Spades, 6))
	g.OpenPile = cards(printedJoker())
	require.Error(t, g.DrawOpen("p1"))

	// It may be picked up to complete the three-joker meld.
	p.Hand = cards(card(shared.Hearts, 2), card(shared.Diamonds, 2))
	require.NoError(t, g.DrawOpen("p1"))
}

func TestDrawOpenWildTwoAsPureSequence(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	// A 2 of spades picked into A-2-3 of spades sits in its natural
	// position: the meld is a pure sequence, so the pickup is legal
	// even before the team has established one.
	p.Hand = cards(card(shared.Spades, 1), card(shared.Spades, 3))
	g.OpenPile = cards(card(shared.Spades, 2))
	require.NoError(t, g.DrawOpen("p1"))
}

func TestPlaceMeldsTeamPureGate(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	set := cards(card(shared.Hearts, 7), card(shared.Diamonds, 7), card(shared.Clubs, 7))
	run := cards(card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6))
	p.Hand = append(append([]shared.Card{}, set...), run...)

	require.Error(t, g.PlaceMelds("p1", [][]string{ids(set...)}),
		"first placement without a pure sequence must fail")
	assert.Len(t, p.Hand, 6)
	assert.Empty(t, g.Teams[1].Melds)

	require.NoError(t, g.PlaceMelds("p1", [][]string{ids(run...), ids(set...)}),
		"placing the set together with a pure sequence must succeed")
	assert.Empty(t, p.Hand)
	assert.Len(t, g.Teams[1].Melds, 2)
	assert.True(t, g.Teams[1].HasPureSequence())
	assert.True(t, g.hasPlaced)

	// With the pure sequence established, further placements are free.
	more := cards(card(shared.Clubs, 11), card(shared.Diamonds, 11), printedJoker())
	p.Hand = append([]shared.Card{}, more...)
	require.NoError(t, g.PlaceMelds("p1", [][]string{ids(more...)}))
	assert.Len(t, g.Teams[1].Melds, 3)
}

func TestPlaceMeldsAtomic(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	run := cards(card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6))
	junk := cards(card(shared.Hearts, 3), card(shared.Clubs, 12))
	p.Hand = append(append([]shared.Card{}, run...), junk...)

	err := g.PlaceMelds("p1", [][]string{ids(run...), ids(junk...)})
	require.Error(t, err, "one invalid meld must fail the whole call")
	assert.Len(t, p.Hand, 5)
	assert.Empty(t, g.Teams[1].Melds)
	assert.False(t, g.hasPlaced)
}

func TestPlaceMeldsGuards(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	run := cards(card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6))
	p.Hand = append([]shared.Card{}, run...)

	assert.Error(t, g.PlaceMelds("p1", [][]string{ids(run...)}), "placing before drawing must fail")

	g.hasDrawn = true
	assert.Error(t, g.PlaceMelds("p1", nil), "empty proposal must fail")
	assert.Error(t, g.PlaceMelds("p1", [][]string{ids(run[0], run[1], run[2], run[0])}),
		"reusing a card within the call must fail")
	assert.Error(t, g.PlaceMelds("p1", [][]string{{"nope", run[0].ID, run[1].ID}}),
		"cards outside the hand must fail")
}

func TestAddToMeld(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	m := shared.NewMeld(shared.PureSequence,
		cards(card(shared.Hearts, 4), card(shared.Hearts, 5), card(shared.Hearts, 6)))
	g.Teams[1].AddMeld(m)

	natural := card(shared.Hearts, 7)
	jkr := printedJoker()
	second := card(shared.Clubs, 2)
	p.Hand = cards(natural, jkr, second)

	require.NoError(t, g.AddToMeld("p1", m.ID, []string{natural.ID}))
	assert.Equal(t, shared.PureSequence, m.Kind)
	assert.Len(t, m.Cards, 4)

	// Appending a joker downgrades the sequence in place.
	require.NoError(t, g.AddToMeld("p1", m.ID, []string{jkr.ID}))
	assert.Equal(t, shared.ImpureSequence, m.Kind)
	assert.Len(t, m.Cards, 5)

	// A second joker would invalidate the meld.
	require.Error(t, g.AddToMeld("p1", m.ID, []string{second.ID}))
	assert.Equal(t, shared.ImpureSequence, m.Kind)
	assert.Len(t, m.Cards, 5)
	assert.True(t, p.HasCard(second.ID), "failed append must leave the card in hand")

	// Melds on the other team's board are out of reach.
	other := shared.NewMeld(shared.PureSet,
		cards(card(shared.Spades, 9), card(shared.Diamonds, 9)))
	g.Teams[0].AddMeld(other)
	assert.Error(t, g.AddToMeld("p1", other.ID, []string{second.ID}))
}

func TestDiscard(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	keep := card(shared.Clubs, 5)
	p.Hand = cards(keep)

	assert.Error(t, g.Discard("p1", keep.ID), "discarding before drawing must fail")

	g.hasDrawn = true
	g.hasPlaced = true
	assert.Error(t, g.Discard("p1", "nope"), "unknown card must fail")

	require.NoError(t, g.Discard("p1", keep.ID))
	assert.Empty(t, p.Hand)
	assert.Equal(t, keep.ID, g.OpenPile[len(g.OpenPile)-1].ID)
	assert.Equal(t, 2, g.TurnIndex, "turn must advance one seat")
	assert.False(t, g.hasDrawn)
	assert.False(t, g.hasPlaced)
	assert.Equal(t, Active, g.Status)
}

func TestDiscardJokerOnJoker(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	wild := card(shared.Hearts, 2)
	p.Hand = cards(wild)
	g.OpenPile = cards(printedJoker())

	assert.Error(t, g.Discard("p1", wild.ID))
	assert.Len(t, p.Hand, 1)
	assert.Len(t, g.OpenPile, 1)
}

func TestDiscardEndsGameOnEmptyClosedPile(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true
	g.ClosedPile = nil

	keep := card(shared.Clubs, 5)
	p.Hand = cards(keep)

	require.NoError(t, g.Discard("p1", keep.ID))
	assert.Equal(t, Ended, g.Status)
	assert.Equal(t, 1, g.TurnIndex, "no rotation when the game ends")

	assert.Error(t, g.DrawClosed("p2"), "no action permitted once ended")
}

func TestShow(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	big := cards(
		card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6),
		card(shared.Spades, 7), card(shared.Spades, 8), card(shared.Spades, 9),
		card(shared.Spades, 10),
	)
	set := cards(
		card(shared.Hearts, 12), card(shared.Diamonds, 12), card(shared.Clubs, 12),
		card(shared.Spades, 12), card(shared.Hearts, 12), printedJoker(),
	)
	leftover := card(shared.Clubs, 3)
	p.Hand = append(append(append([]shared.Card{}, big...), set...), leftover)

	require.NoError(t, g.Show("p1", [][]string{ids(big...), ids(set...)}))

	assert.Len(t, g.Teams[1].Melds, 2)
	assert.True(t, g.Teams[1].HasSevenPure())
	assert.Equal(t, leftover.ID, g.OpenPile[len(g.OpenPile)-1].ID)
	assert.Len(t, p.Hand, handSize, "bonus stack must replace the emptied hand")
	assert.True(t, g.BonusClaimed)
	assert.Empty(t, g.BonusStack)
	assert.Equal(t, 1, g.ShowsCompleted)

	// The turn does not rotate: the shower keeps acting with the
	// drawn flag still set, and ends the turn with a normal discard.
	assert.Equal(t, 1, g.TurnIndex)
	assert.True(t, g.hasDrawn)
	require.NoError(t, g.Discard("p1", p.Hand[0].ID))
	assert.Equal(t, 2, g.TurnIndex)
}

func TestShowRequiresSevenPure(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	run := cards(card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6))
	leftover := card(shared.Clubs, 3)
	p.Hand = append(append([]shared.Card{}, run...), leftover)

	assert.Error(t, g.Show("p1", [][]string{ids(run...)}))
	assert.Len(t, p.Hand, 4)
	assert.Empty(t, g.Teams[1].Melds)
	assert.False(t, g.BonusClaimed)
}

func TestShowMustLeaveExactlyOneCard(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true

	big := cards(
		card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6),
		card(shared.Spades, 7), card(shared.Spades, 8), card(shared.Spades, 9),
		card(shared.Spades, 10),
	)
	extras := cards(card(shared.Clubs, 3), card(shared.Clubs, 8))
	p.Hand = append(append([]shared.Card{}, big...), extras...)

	assert.Error(t, g.Show("p1", [][]string{ids(big...)}), "two cards would remain")
	assert.Empty(t, g.Teams[1].Melds)
}

func TestShowBonusStackClaimedOnce(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true
	g.BonusClaimed = true
	g.BonusStack = nil

	big := cards(
		card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6),
		card(shared.Spades, 7), card(shared.Spades, 8), card(shared.Spades, 9),
		card(shared.Spades, 10),
	)
	leftover := card(shared.Clubs, 3)
	p.Hand = append(append([]shared.Card{}, big...), leftover)

	err := g.Show("p1", [][]string{ids(big...)})
	require.Error(t, err, "a second claim of the bonus stack must be rejected")
	assert.Len(t, p.Hand, 8)
	assert.Empty(t, g.Teams[1].Melds)
}

func TestShowLeftoverJokerOnJoker(t *testing.T) {
	g := riggedGame(t)
	p := g.Players[1]
	g.hasDrawn = true
	g.OpenPile = cards(printedJoker())

	big := cards(
		card(shared.Spades, 4), card(shared.Spades, 5), card(shared.Spades, 6),
		card(shared.Spades, 7), card(shared.Spades, 8), card(shared.Spades, 9),
		card(shared.Spades, 10),
	)
	leftover := card(shared.Hearts, 2) // wild, may not land on the joker
	p.Hand = append(append([]shared.Card{}, big...), leftover)

	assert.Error(t, g.Show("p1", [][]string{ids(big...)}))
	assert.Len(t, p.Hand, 8)
	assert.Empty(t, g.Teams[1].Melds)
	assert.False(t, g.BonusClaimed)
}

// TestFullGameConservation plays draw/discard turns through a real
// deal until the closed pile runs out, checking the 108-card
// conservation invariant on every turn.
func TestFullGameConservation(t *testing.T) {
	g := NewGame()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.RegisterPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i)))
	}
	require.NoError(t, g.Start())

	for turns := 0; g.Status == Active; turns++ {
		require.Less(t, turns, shared.DeckSize, "game must end before the deck cycles")

		actor := g.Players[g.TurnIndex]
		require.NoError(t, g.DrawClosed(actor.ID))
		require.Equal(t, shared.DeckSize, g.CardCount())

		// Discard anything the joker rule allows; the hand always
		// holds a non-joker since only 12 cards in the pool are wild.
		discarded := false
		for _, c := range actor.Hand {
			if g.Discard(actor.ID, c.ID) == nil {
				discarded = true
				break
			}
		}
		require.True(t, discarded)
		require.Equal(t, shared.DeckSize, g.CardCount())
	}

	assert.Equal(t, Ended, g.Status)
	assert.Empty(t, g.ClosedPile)
}

func TestDisconnectBeforeDealAbandonsGame(t *testing.T) {
	g := NewGame()
	for i := 0; i < numPlayers; i++ {
		require.NoError(t, g.RegisterPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i)))
	}

	// No Start yet: teams and piles do not exist. The disconnect must
	// end the game cleanly instead of trying to score it.
	g.HandlePlayerDisconnect("p0")
	assert.Equal(t, Ended, g.Status)

	_, err := g.ComputeScores()
	assert.Error(t, err)
}
