package game

import "errors"

// TeamScore is the final tally breakdown for one team.
type TeamScore struct {
	TeamNumber int `json:"team_number"`
	MeldPoints int `json:"meld_points"` // 200 per pure meld, 100 per impure
	CardPoints int `json:"card_points"` // tally of cards on the board
	Penalty    int `json:"penalty"`     // -200 without a seven-card pure meld
	Transfer   int `json:"transfer"`    // opposing hands gained via the penalty rule
	Total      int `json:"total"`
}

// ComputeScores tallies both teams once the game has ended. Per team
// it sums the fixed meld bonuses and the card values of every board
// meld, applies the -200 penalty to a team that never placed a pure
// meld of seven or more cards, and, when exactly one team is
// penalized, transfers that team's remaining in-hand card values to
// the other team.
func (g *Game) ComputeScores() ([2]TeamScore, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.computeScores()
}

// computeScores assumes lock is held.
func (g *Game) computeScores() ([2]TeamScore, error) {
	var scores [2]TeamScore
	if g.Status != Ended {
		return scores, errors.New("game has not ended")
	}
	if g.Teams[0] == nil || g.Teams[1] == nil {
		return scores, errors.New("game was never dealt")
	}

	var penalized [2]bool
	for i, team := range g.Teams {
		scores[i].TeamNumber = i
		for _, m := range team.Melds {
			scores[i].MeldPoints += m.MeldPoints()
			scores[i].CardPoints += m.TallyPoints()
		}
		if !team.HasSevenPure() {
			penalized[i] = true
			scores[i].Penalty = -200
		}
	}

	// One-way transfer: the penalized team's residual hands feed the
	// other team's card points. No transfer when both or neither team
	// is penalized.
	if penalized[0] != penalized[1] {
		loser := 0
		if penalized[1] {
			loser = 1
		}
		scores[1-loser].Transfer = g.Teams[loser].HandTally()
	}

	for i := range scores {
		scores[i].Total = scores[i].MeldPoints + scores[i].CardPoints + scores[i].Penalty + scores[i].Transfer
	}
	return scores, nil
}
