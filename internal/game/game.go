package game

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"burraco-game/internal/shared"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a game session. The
// transition is one-way, from Lobby through Active to Ended.
type Status string

const (
	Lobby  Status = "Lobby"  // collecting player registrations
	Active Status = "Active" // turns in progress
	Ended  Status = "Ended"  // closed pile ran out or second show completed
)

const (
	numPlayers = 4
	handSize   = 13
	minPickup  = 3
	maxPickup  = 7
	maxShows   = 2
)

// MessageSender defines the function signature for sending messages
// back to clients. The Hub provides an implementation of this.
type MessageSender func(clientID string, message []byte)

// Game owns all mutable state for one session: seating, piles, team
// boards and the per-turn flags. Every mutating call either succeeds
// atomically or fails with a descriptive error leaving the state
// untouched.
type Game struct {
	ID             string            `json:"id"`
	Status         Status            `json:"status"`
	Players        [4]*shared.Player `json:"-"`
	Teams          [2]*shared.Team   `json:"-"`
	DealerIndex    int               `json:"dealer_index"`
	TurnIndex      int               `json:"turn_index"`
	ClosedPile     []shared.Card     `json:"-"` // top = last
	OpenPile       []shared.Card     `json:"-"` // top = last = most recent discard
	BonusStack     []shared.Card     `json:"-"` // claimed whole by the first show
	BonusClaimed   bool              `json:"-"`
	ShowsCompleted int               `json:"shows_completed"`

	hasDrawn   bool // acting player has drawn this turn
	hasPlaced  bool // acting player has placed or extended this turn
	registered int

	mu          sync.Mutex
	sendMessage MessageSender
	onGameOver  func(g *Game, scores [2]TeamScore)
}

// NewGame initializes an empty game session in the Lobby state.
func NewGame() *Game {
	return &Game{
		ID:          uuid.NewString(),
		Status:      Lobby,
		TurnIndex:   -1,
		DealerIndex: 0,
	}
}

// RegisterPlayer seats a player at the next free seat. Join order
// determines seating; teams alternate 0/1 by seat. Fails once four
// players are seated or the game has started.
func (g *Game) RegisterPlayer(id, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != Lobby {
		return errors.New("game has already started")
	}
	if g.registered >= numPlayers {
		return errors.New("game is full")
	}

	seat := g.registered
	g.Players[seat] = shared.NewPlayer(id, name, seat)
	g.registered++
	log.Printf("Game %s: Registered player %s (%s) at seat %d, team %d.", g.ID, id, name, seat, seat%2)
	return nil
}

// Start deals the double deck and activates the game: four hands and
// the bonus stack are peeled off as 13-card stacks, the remainder
// becomes the closed pile, and one card seeds the open pile. The
// acting seat starts left of the dealer.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.start()
}

// start performs the deal. Assumes lock is held.
func (g *Game) start() error {
	if g.Status != Lobby {
		return errors.New("game has already started")
	}
	if g.registered != numPlayers {
		return fmt.Errorf("need %d players to start, have %d", numPlayers, g.registered)
	}

	deck := shared.NewDoubleDeck()
	deck.Shuffle()

	stacks := deck.DealStacks(numPlayers+1, handSize)
	if stacks == nil || len(deck.Cards) < 1 {
		// Should never trigger with the fixed 108-card pool; a hit
		// here means the deck construction itself is broken.
		return errors.New("setup error: not enough cards after the deal")
	}

	for i := 0; i < numPlayers; i++ {
		seat := (g.DealerIndex + 1 + i) % numPlayers
		g.Players[seat].Hand = stacks[i]
	}
	g.BonusStack = stacks[numPlayers]

	g.ClosedPile = deck.Cards
	top := g.ClosedPile[len(g.ClosedPile)-1]
	g.ClosedPile = g.ClosedPile[:len(g.ClosedPile)-1]
	g.OpenPile = []shared.Card{top}

	g.Teams = [2]*shared.Team{
		shared.NewTeam(0, g.Players[0], g.Players[2]),
		shared.NewTeam(1, g.Players[1], g.Players[3]),
	}

	g.TurnIndex = (g.DealerIndex + 1) % numPlayers
	g.hasDrawn = false
	g.hasPlaced = false
	g.Status = Active
	log.Printf("Game %s: Started. Dealer seat %d, player %s to act.", g.ID, g.DealerIndex, g.Players[g.TurnIndex].Name)
	return nil
}

// actingPlayer validates that the caller is seated and holds the
// turn. Assumes lock is held.
func (g *Game) actingPlayer(playerID string) (*shared.Player, error) {
	if g.Status != Active {
		return nil, fmt.Errorf("game is not active (status %s)", g.Status)
	}
	p := g.playerByID(playerID)
	if p == nil {
		return nil, errors.New("unknown player")
	}
	if p.Seat != g.TurnIndex {
		return nil, errors.New("not your turn")
	}
	return p, nil
}

// DrawClosed moves the top card of the closed pile into the caller's
// hand.
func (g *Game) DrawClosed(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if g.hasDrawn {
		return errors.New("already drew this turn")
	}
	if len(g.ClosedPile) == 0 {
		return errors.New("closed pile is empty")
	}

	top := g.ClosedPile[len(g.ClosedPile)-1]
	g.ClosedPile = g.ClosedPile[:len(g.ClosedPile)-1]
	p.AddCard(top)
	g.hasDrawn = true
	log.Printf("Game %s: Player %s drew from the closed pile (%d left).", g.ID, p.Name, len(g.ClosedPile))
	return nil
}

// DrawOpen moves the top card of the open pile into the caller's hand,
// provided the card is immediately usable in some meld (see pickup.go).
// The usability check is advisory: the caller is not forced to actually
// place the meld that justified the pickup.
func (g *Game) DrawOpen(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if g.hasDrawn {
		return errors.New("already drew this turn")
	}
	if len(g.OpenPile) == 0 {
		return errors.New("open pile is empty")
	}

	top := g.OpenPile[len(g.OpenPile)-1]
	if !g.canPickUp(p, top) {
		return errors.New("open-pile card is not immediately usable")
	}

	g.OpenPile = g.OpenPile[:len(g.OpenPile)-1]
	p.AddCard(top)
	g.hasDrawn = true
	log.Printf("Game %s: Player %s picked up %s %d from the open pile.", g.ID, p.Name, top.Suit, top.Rank)
	return nil
}

// PlaceMelds places one or more new melds from the caller's hand onto
// the team board. The call is all-or-nothing: every proposed meld must
// classify as valid, the card groups must be disjoint, and a team with
// no pure sequence on its board must include one among the melds being
// placed.
func (g *Game) PlaceMelds(playerID string, meldGroups [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if !g.hasDrawn {
		return errors.New("draw before placing melds")
	}
	if len(meldGroups) == 0 {
		return errors.New("no melds proposed")
	}

	groups, kinds, err := g.classifyGroups(p, meldGroups)
	if err != nil {
		return err
	}

	team := g.Teams[p.Team]
	if !team.HasPureSequence() {
		ok := false
		for _, k := range kinds {
			if k == shared.PureSequence {
				ok = true
				break
			}
		}
		if !ok {
			return errors.New("team must establish a pure sequence first")
		}
	}

	for i, cards := range groups {
		p.RemoveCards(meldGroups[i])
		m := shared.NewMeld(kinds[i], cards)
		team.AddMeld(m)
		log.Printf("Game %s: Player %s placed a %s of %d cards.", g.ID, p.Name, m.Kind, len(m.Cards))
	}
	g.hasPlaced = true
	return nil
}

// AddToMeld appends cards from the caller's hand to a named meld on
// the team board. The combined group is reclassified; the call fails
// if the result is invalid. A pure meld may downgrade to impure here.
func (g *Game) AddToMeld(playerID, meldID string, cardIDs []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if !g.hasDrawn {
		return errors.New("draw before adding to a meld")
	}
	if len(cardIDs) == 0 {
		return errors.New("no cards given")
	}

	team := g.Teams[p.Team]
	m, found := team.FindMeld(meldID)
	if !found {
		return errors.New("meld not found on your team's board")
	}

	cards, err := cardsFromHand(p, cardIDs)
	if err != nil {
		return err
	}

	before := m.Kind
	if !m.Append(cards) {
		return errors.New("cards do not extend the meld to a valid one")
	}
	p.RemoveCards(cardIDs)
	g.hasPlaced = true
	if before != m.Kind {
		log.Printf("Game %s: Player %s extended meld %s (%s is now %s).", g.ID, p.Name, m.ID, before, m.Kind)
	} else {
		log.Printf("Game %s: Player %s extended meld %s (%s).", g.ID, p.Name, m.ID, m.Kind)
	}
	return nil
}

// Discard moves a card from the caller's hand to the open pile and
// advances the turn. A joker may never be discarded on top of another
// joker. If the closed pile is empty after the discard, the game ends
// instead of rotating the acting seat.
func (g *Game) Discard(playerID, cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if !g.hasDrawn {
		return errors.New("draw before discarding")
	}
	card, found := p.FindCard(cardID)
	if !found {
		return errors.New("card not in your hand")
	}
	if err := g.checkDiscardable(card); err != nil {
		return err
	}

	p.RemoveCard(card.ID)
	g.OpenPile = append(g.OpenPile, card)
	log.Printf("Game %s: Player %s discarded %s %d.", g.ID, p.Name, card.Suit, card.Rank)

	if len(g.ClosedPile) == 0 {
		g.endGame("closed pile exhausted")
		return nil
	}

	g.TurnIndex = (g.TurnIndex + 1) % numPlayers
	g.hasDrawn = false
	g.hasPlaced = false
	log.Printf("Game %s: Turn advanced to seat %d (%s).", g.ID, g.TurnIndex, g.Players[g.TurnIndex].Name)
	return nil
}

// Show places a set of melds built entirely from the caller's hand,
// leaving exactly one card which is discarded immediately. At least
// one of the melds must be a pure sequence or pure set of seven or
// more cards. The reserved 13-card bonus stack, which must still be
// unclaimed, then joins the caller's hand and the turn stays open:
// the caller keeps placing or extending until they discard normally.
func (g *Game) Show(playerID string, meldGroups [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if !g.hasDrawn {
		return errors.New("draw before showing")
	}
	if g.BonusClaimed {
		return errors.New("bonus stack already claimed")
	}
	if len(meldGroups) == 0 {
		return errors.New("no melds proposed")
	}

	groups, kinds, err := g.classifyGroups(p, meldGroups)
	if err != nil {
		return err
	}

	qualifies := false
	used := 0
	for i, cards := range groups {
		used += len(cards)
		if shared.QualifiesSevenPure(kinds[i], len(cards)) {
			qualifies = true
		}
	}
	if !qualifies {
		return errors.New("show requires a pure meld of at least seven cards")
	}
	if len(p.Hand)-used != 1 {
		return fmt.Errorf("show must leave exactly one card in hand, would leave %d", len(p.Hand)-used)
	}

	leftover, err := g.showLeftover(p, groups)
	if err != nil {
		return err
	}
	if err := g.checkDiscardable(leftover); err != nil {
		return err
	}

	// Validation done: apply atomically.
	team := g.Teams[p.Team]
	for i, cards := range groups {
		p.RemoveCards(meldGroups[i])
		team.AddMeld(shared.NewMeld(kinds[i], cards))
	}
	p.RemoveCard(leftover.ID)
	g.OpenPile = append(g.OpenPile, leftover)

	p.AddCards(g.BonusStack)
	g.BonusStack = nil
	g.BonusClaimed = true
	g.ShowsCompleted++
	g.hasPlaced = true
	log.Printf("Game %s: Player %s showed %d melds and claimed the bonus stack (show %d).", g.ID, p.Name, len(groups), g.ShowsCompleted)

	if g.ShowsCompleted >= maxShows {
		g.endGame("second show completed")
		return nil
	}
	// The turn stays with the shower: hasDrawn remains set, so they
	// may keep placing from the enlarged hand until they discard.
	return nil
}

// showLeftover returns the single hand card not used by any proposed
// meld group. Assumes the group/hand arithmetic was already checked.
func (g *Game) showLeftover(p *shared.Player, groups [][]shared.Card) (shared.Card, error) {
	usedIDs := make(map[string]bool)
	for _, cards := range groups {
		for _, c := range cards {
			usedIDs[c.ID] = true
		}
	}
	for _, c := range p.Hand {
		if !usedIDs[c.ID] {
			return c, nil
		}
	}
	return shared.Card{}, errors.New("show leaves no card to discard")
}

// checkDiscardable rejects a joker landing on a joker.
func (g *Game) checkDiscardable(card shared.Card) error {
	if len(g.OpenPile) == 0 {
		return nil
	}
	top := g.OpenPile[len(g.OpenPile)-1]
	if top.IsJoker() && card.IsJoker() {
		return errors.New("cannot discard a joker onto a joker")
	}
	return nil
}

// classifyGroups resolves card-ID groups against the caller's hand and
// classifies each one. Groups must be disjoint and every card must be
// in hand; any invalid meld fails the whole call.
func (g *Game) classifyGroups(p *shared.Player, meldGroups [][]string) ([][]shared.Card, []shared.MeldKind, error) {
	seen := make(map[string]bool)
	groups := make([][]shared.Card, 0, len(meldGroups))
	kinds := make([]shared.MeldKind, 0, len(meldGroups))

	for _, ids := range meldGroups {
		cards := make([]shared.Card, 0, len(ids))
		for _, id := range ids {
			if seen[id] {
				return nil, nil, fmt.Errorf("card %s used twice", id)
			}
			seen[id] = true
			c, found := p.FindCard(id)
			if !found {
				return nil, nil, fmt.Errorf("card %s not in your hand", id)
			}
			cards = append(cards, c)
		}
		kind := shared.Classify(cards)
		if kind == shared.InvalidMeld {
			return nil, nil, fmt.Errorf("proposed meld of %d cards is not valid", len(cards))
		}
		groups = append(groups, cards)
		kinds = append(kinds, kind)
	}
	return groups, kinds, nil
}

// cardsFromHand resolves card IDs against a hand, rejecting
// duplicates.
func cardsFromHand(p *shared.Player, cardIDs []string) ([]shared.Card, error) {
	seen := make(map[string]bool, len(cardIDs))
	cards := make([]shared.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return nil, fmt.Errorf("card %s used twice", id)
		}
		seen[id] = true
		c, found := p.FindCard(id)
		if !found {
			return nil, fmt.Errorf("card %s not in your hand", id)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// endGame transitions to Ended and reports the final scores.
// Assumes lock is held.
func (g *Game) endGame(reason string) {
	g.Status = Ended
	log.Printf("Game %s: Ended (%s).", g.ID, reason)

	scores, err := g.computeScores()
	if err != nil {
		log.Printf("Game %s: Error computing final scores: %v", g.ID, err)
		return
	}
	log.Printf("Game %s: Final scores: team 0: %d, team 1: %d.", g.ID, scores[0].Total, scores[1].Total)

	g.notifyGameOver(scores)
	if g.onGameOver != nil {
		g.onGameOver(g, scores)
	}
}

// playerByID finds a seated player by identity. Assumes lock is held.
func (g *Game) playerByID(playerID string) *shared.Player {
	for _, p := range g.Players {
		if p != nil && p.ID == playerID {
			return p
		}
	}
	return nil
}

// CardCount returns the total number of cards across hands, boards,
// piles and the unclaimed bonus stack. It is constant at 108 for the
// whole game.
func (g *Game) CardCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.ClosedPile) + len(g.OpenPile) + len(g.BonusStack)
	for _, p := range g.Players {
		if p != nil {
			n += len(p.Hand)
		}
	}
	for _, t := range g.Teams {
		if t != nil {
			n += t.BoardCardCount()
		}
	}
	return n
}
