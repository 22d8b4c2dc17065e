package game

import "burraco-game/internal/shared"

// PublicSnapshot is the observer-safe view of a session: no hand
// contents, only statuses and counts. Safe to broadcast to anyone.
type PublicSnapshot struct {
	GameID         string       `json:"game_id"`
	Status         Status       `json:"status"`
	TurnIndex      int          `json:"turn_index"`
	DealerIndex    int          `json:"dealer_index"`
	OpenTop        *shared.Card `json:"open_top,omitempty"`
	OpenCount      int          `json:"open_count"`
	ClosedCount    int          `json:"closed_count"`
	ShowsCompleted int          `json:"shows_completed"`
	TeamHasPure    [2]bool      `json:"team_has_pure"`
}

// SeatInfo describes another player without revealing their hand.
type SeatInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Team      int    `json:"team"`
	CardCount int    `json:"card_count"`
}

// PlayerSnapshot is the per-player view: the public snapshot plus the
// player's own hand, the partner and opponents with card counts only,
// and both team boards in full.
type PlayerSnapshot struct {
	PublicSnapshot
	Hand      []shared.Card     `json:"hand"`
	Partner   SeatInfo          `json:"partner"`
	Opponents [2]SeatInfo       `json:"opponents"`
	Boards    [2][]*shared.Meld `json:"boards"`
}

// PublicState builds the observer-safe snapshot.
func (g *Game) PublicState() PublicSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.publicState()
}

// publicState assumes lock is held.
func (g *Game) publicState() PublicSnapshot {
	snap := PublicSnapshot{
		GameID:         g.ID,
		Status:         g.Status,
		TurnIndex:      g.TurnIndex,
		DealerIndex:    g.DealerIndex,
		OpenCount:      len(g.OpenPile),
		ClosedCount:    len(g.ClosedPile),
		ShowsCompleted: g.ShowsCompleted,
	}
	if len(g.OpenPile) > 0 {
		top := g.OpenPile[len(g.OpenPile)-1]
		snap.OpenTop = &top
	}
	for i, t := range g.Teams {
		if t != nil {
			snap.TeamHasPure[i] = t.HasPureSequence()
		}
	}
	return snap
}

// PlayerState builds the snapshot for one seated player. Returns
// false if the player is not part of this game.
func (g *Game) PlayerState(playerID string) (PlayerSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerState(playerID)
}

// playerState assumes lock is held.
func (g *Game) playerState(playerID string) (PlayerSnapshot, bool) {
	p := g.playerByID(playerID)
	if p == nil {
		return PlayerSnapshot{}, false
	}

	snap := PlayerSnapshot{PublicSnapshot: g.publicState()}
	snap.Hand = append([]shared.Card{}, p.Hand...)

	oppIdx := 0
	for _, other := range g.Players {
		if other == nil || other.ID == p.ID {
			continue
		}
		info := SeatInfo{
			ID:        other.ID,
			Name:      other.Name,
			Seat:      other.Seat,
			Team:      other.Team,
			CardCount: len(other.Hand),
		}
		if other.Team == p.Team {
			snap.Partner = info
		} else if oppIdx < 2 {
			snap.Opponents[oppIdx] = info
			oppIdx++
		}
	}

	for i, t := range g.Teams {
		if t != nil {
			snap.Boards[i] = t.Melds
		}
	}
	return snap, true
}
