package handler

import (
	"encoding/json"

	"github.com/ItayH27/tanks-game-simulation/internal/progress"
)

var _ progress.Broadcaster = (*Hub)(nil)

// BroadcastTournamentEvent implements progress.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastTournamentEvent(tournamentID string, eventType string, data json.RawMessage) {
	h.BroadcastToTournament(tournamentID, WSEvent{
		Type:         eventType,
		TournamentID: tournamentID,
		Data:         data,
	})
}
