package database

// GameResult is one finished game: the four seated players in play
// order, their team assignments and the per-team tally breakdown.
type GameResult struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"created_at"`
	Player1         string `json:"player1"`
	Player2         string `json:"player2"`
	Player3         string `json:"player3"`
	Player4         string `json:"player4"`
	Player1Team     int    `json:"player1_team"`
	Player2Team     int    `json:"player2_team"`
	Player3Team     int    `json:"player3_team"`
	Player4Team     int    `json:"player4_team"`
	Team1MeldPoints int    `json:"team1_meld_points"`
	Team2MeldPoints int    `json:"team2_meld_points"`
	Team1CardPoints int    `json:"team1_card_points"`
	Team2CardPoints int    `json:"team2_card_points"`
	Team1Penalty    int    `json:"team1_penalty"`
	Team2Penalty    int    `json:"team2_penalty"`
	Team1Score      int    `json:"team1_score"`
	Team2Score      int    `json:"team2_score"`
}
