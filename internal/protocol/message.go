package protocol

import "encoding/json"

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "join_game", "discard")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, allows flexible structures
}

// --- Client -> Server Payload Structs ---

type CreateGamePayload struct {
	Name string `json:"name"`
}

type JoinGamePayload struct {
	Name     string `json:"name"`
	GameCode string `json:"game_code"`
}

// PlaceMeldsPayload proposes one or more new melds, each a group of
// card identities from the caller's hand.
type PlaceMeldsPayload struct {
	Melds [][]string `json:"melds"`
}

// AddToMeldPayload appends hand cards to a meld already on the
// caller's team board.
type AddToMeldPayload struct {
	MeldID  string   `json:"meld_id"`
	CardIDs []string `json:"card_ids"`
}

type DiscardPayload struct {
	CardID string `json:"card_id"`
}

// ShowPayload proposes the meld set for a show. The one hand card not
// covered by the groups becomes the forced discard.
type ShowPayload struct {
	Melds [][]string `json:"melds"`
}

// --- Server -> Client Payload Structs ---

type GameCreatedPayload struct {
	GameCode string `json:"game_code"`
}

type LobbyUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seat int    `json:"seat"` // Seat index in play order (0-3)
	Team int    `json:"team"` // Team index (0 or 1)
}

type GameStartPayload struct {
	GameID  string       `json:"game_id"`
	Players []PlayerInfo `json:"players"`
}

// TeamScoreInfo mirrors the engine's per-team tally breakdown.
type TeamScoreInfo struct {
	TeamNumber int `json:"team_number"`
	MeldPoints int `json:"meld_points"`
	CardPoints int `json:"card_points"`
	Penalty    int `json:"penalty"`
	Transfer   int `json:"transfer"`
	Total      int `json:"total"`
}

type GameOverPayload struct {
	GameID string           `json:"game_id"`
	Scores [2]TeamScoreInfo `json:"scores"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

// Helper function to create a JSON message
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	// Handle nil payload specifically
	if payload == nil {
		msg := Message{
			Type:    msgType,
			Payload: nil, // Explicitly set Payload to nil for clarity
		}
		return json.Marshal(msg)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
	return json.Marshal(msg)
}
