package game

import "burraco-game/internal/shared"

// canPickUp reports whether the open-pile top card is immediately
// usable by the player: some combination of 3 to 7 cards drawn from
// the top card plus the player's hand must classify as a valid meld,
// subject to two extra constraints:
//   - a joker top card may only be picked up to complete a pure
//     sequence or the three-joker meld;
//   - while the player's team has no pure sequence on its board, the
//     meld justifying the pickup must itself be a pure sequence.
//
// The search floor of 3 is kept even though the classifier accepts
// 2-card melds; see DESIGN.md.
//
// Assumes lock is held.
func (g *Game) canPickUp(p *shared.Player, top shared.Card) bool {
	needPure := !g.Teams[p.Team].HasPureSequence()

	accepts := func(subset []shared.Card) bool {
		cards := append(append([]shared.Card{}, subset...), top)
		kind := shared.Classify(cards)
		if kind == shared.InvalidMeld {
			return false
		}
		if top.IsJoker() && kind != shared.PureSequence && kind != shared.ThreeJokers {
			return false
		}
		if needPure && kind != shared.PureSequence {
			return false
		}
		return true
	}

	for size := minPickup; size <= maxPickup; size++ {
		fromHand := size - 1 // the top card is always part of the meld
		if fromHand > len(p.Hand) {
			break
		}
		if anyCombination(p.Hand, fromHand, accepts) {
			return true
		}
	}
	return false
}

// anyCombination reports whether fn accepts any k-card combination of
// cards. The subset passed to fn is reused between calls and must not
// be retained.
func anyCombination(cards []shared.Card, k int, fn func([]shared.Card) bool) bool {
	subset := make([]shared.Card, 0, k)
	var recurse func(start int) bool
	recurse = func(start int) bool {
		if len(subset) == k {
			return fn(subset)
		}
		// Not enough cards left to complete the subset.
		if len(cards)-start < k-len(subset) {
			return false
		}
		for i := start; i < len(cards); i++ {
			subset = append(subset, cards[i])
			if recurse(i + 1) {
				return true
			}
			subset = subset[:len(subset)-1]
		}
		return false
	}
	return recurse(0)
}
