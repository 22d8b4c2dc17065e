package game

import (
	"encoding/json"
	"log"

	"burraco-game/internal/protocol"
)

// StartSession wires the message sender and game-over callback, deals
// the game and sends the opening messages. It's called in a goroutine
// by the Hub once four players have registered.
func (g *Game) StartSession(sender MessageSender, onGameOver func(g *Game, scores [2]TeamScore)) {
	g.mu.Lock()
	g.sendMessage = sender
	g.onGameOver = onGameOver

	if err := g.start(); err != nil {
		log.Printf("Game %s: Failed to start: %v", g.ID, err)
		g.broadcastError("Internal server error during dealing.")
		g.mu.Unlock()
		return
	}

	playerInfos := make([]protocol.PlayerInfo, numPlayers)
	for i, p := range g.Players {
		playerInfos[i] = protocol.PlayerInfo{ID: p.ID, Name: p.Name, Seat: p.Seat, Team: p.Team}
	}
	startMsg, _ := protocol.NewMessage("game_start", protocol.GameStartPayload{
		GameID:  g.ID,
		Players: playerInfos,
	})
	g.broadcast(startMsg)

	g.broadcastSnapshots()
	g.mu.Unlock()
}

// HandlePlayerAction processes an incoming action from a player,
// mutating state on success and answering with an error payload on
// rejection. Fresh per-player snapshots go out after every accepted
// action.
func (g *Game) HandlePlayerAction(clientID string, msg protocol.Message) {
	var err error

	switch msg.Type {
	case "draw_closed":
		err = g.DrawClosed(clientID)
	case "draw_open":
		err = g.DrawOpen(clientID)
	case "place_melds":
		var payload protocol.PlaceMeldsPayload
		if err = json.Unmarshal(msg.Payload, &payload); err == nil {
			err = g.PlaceMelds(clientID, payload.Melds)
		}
	case "add_to_meld":
		var payload protocol.AddToMeldPayload
		if err = json.Unmarshal(msg.Payload, &payload); err == nil {
			err = g.AddToMeld(clientID, payload.MeldID, payload.CardIDs)
		}
	case "discard":
		var payload protocol.DiscardPayload
		if err = json.Unmarshal(msg.Payload, &payload); err == nil {
			err = g.Discard(clientID, payload.CardID)
		}
	case "show":
		var payload protocol.ShowPayload
		if err = json.Unmarshal(msg.Payload, &payload); err == nil {
			err = g.Show(clientID, payload.Melds)
		}
	default:
		log.Printf("Game %s: Received unhandled action type '%s' from %s", g.ID, msg.Type, clientID)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		log.Printf("Game %s: Rejected '%s' from %s: %v", g.ID, msg.Type, clientID, err)
		g.sendErrorToPlayer(clientID, err.Error())
		return
	}
	g.broadcastSnapshots()
}

// HandlePlayerDisconnect handles a player leaving mid-game. The game
// is forfeited: it moves straight to Ended and everyone is told.
func (g *Game) HandlePlayerDisconnect(clientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status == Ended {
		log.Printf("Game %s: Player %s disconnected, but game already over.", g.ID, clientID)
		return
	}
	p := g.playerByID(clientID)
	if p == nil {
		log.Printf("Game %s: Disconnect from unknown client ID %s", g.ID, clientID)
		return
	}
	if g.Status == Lobby {
		// Nothing was dealt yet, so there is nothing to score.
		g.Status = Ended
		log.Printf("Game %s: Player %s (%s) disconnected before the deal. Game abandoned.", g.ID, clientID, p.Name)
		return
	}

	log.Printf("Game %s: Player %s (%s) disconnected. Forfeiting game.", g.ID, clientID, p.Name)
	leftMsg, _ := protocol.NewMessage("player_left", protocol.PlayerLeftPayload{PlayerID: clientID})
	g.broadcast(leftMsg)

	g.endGame("player disconnected")
}

// --- Messaging Helpers (assume lock is held) ---

// broadcast sends a message to all players in the game.
func (g *Game) broadcast(message []byte) {
	if g.sendMessage == nil {
		return
	}
	for _, p := range g.Players {
		if p != nil {
			g.sendMessage(p.ID, message)
		}
	}
}

// broadcastSnapshots sends each player their own view of the game.
func (g *Game) broadcastSnapshots() {
	if g.sendMessage == nil {
		return
	}
	for _, p := range g.Players {
		if p == nil {
			continue
		}
		snap, ok := g.playerState(p.ID)
		if !ok {
			continue
		}
		msg, err := protocol.NewMessage("game_state", snap)
		if err != nil {
			log.Printf("Game %s: Error building snapshot for %s: %v", g.ID, p.ID, err)
			continue
		}
		g.sendMessage(p.ID, msg)
	}
}

// notifyGameOver broadcasts the final score breakdown.
func (g *Game) notifyGameOver(scores [2]TeamScore) {
	var payload protocol.GameOverPayload
	payload.GameID = g.ID
	for i, s := range scores {
		payload.Scores[i] = protocol.TeamScoreInfo{
			TeamNumber: s.TeamNumber,
			MeldPoints: s.MeldPoints,
			CardPoints: s.CardPoints,
			Penalty:    s.Penalty,
			Transfer:   s.Transfer,
			Total:      s.Total,
		}
	}
	msg, err := protocol.NewMessage("game_over", payload)
	if err != nil {
		log.Printf("Game %s: Error creating game_over message: %v", g.ID, err)
		return
	}
	g.broadcast(msg)
}

// sendErrorToPlayer sends an error message to a specific player.
func (g *Game) sendErrorToPlayer(playerID string, errorMsg string) {
	if g.sendMessage == nil {
		return
	}
	msg, err := protocol.NewMessage("error", protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		log.Printf("Game %s: Error creating error message for %s: %v", g.ID, playerID, err)
		return
	}
	g.sendMessage(playerID, msg)
}

// broadcastError sends an error message to all players.
func (g *Game) broadcastError(errorMsg string) {
	msg, err := protocol.NewMessage("error", protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		log.Printf("Game %s: Error creating broadcast error message: %v", g.ID, err)
		return
	}
	g.broadcast(msg)
}
