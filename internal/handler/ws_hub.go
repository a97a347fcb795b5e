package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/auth"
)

// Event types generated by the hub itself. Progress events keep the type
// they were published with.
const (
	EventConnected = "connected"
	EventError     = "error"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type         string `json:"type"`
	TournamentID string `json:"tournament_id"`
	Data         any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action       string `json:"action"` // "subscribe" or "unsubscribe"
	TournamentID string `json:"tournament_id"`
}

// WSConn wraps a WebSocket connection with its viewer and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	claims *auth.Claims
	send   chan []byte
}

func (c *WSConn) viewerID() string {
	if c.claims == nil {
		return ""
	}
	return c.claims.ViewerID
}

// Hub manages WebSocket connections and tournament-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	tournaments map[string]map[*WSConn]bool // tournamentID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		tournaments: make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	for id, conns := range h.tournaments {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.tournaments, id)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a tournament channel. It reports false
// when the connection's token does not cover the tournament.
func (h *Hub) Subscribe(c *WSConn, tournamentID string) bool {
	if c.claims != nil && !c.claims.CanView(tournamentID) {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tournaments[tournamentID] == nil {
		h.tournaments[tournamentID] = make(map[*WSConn]bool)
	}
	h.tournaments[tournamentID][c] = true
	return true
}

// Unsubscribe removes a connection from a tournament channel.
func (h *Hub) Unsubscribe(c *WSConn, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.tournaments[tournamentID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.tournaments, tournamentID)
		}
	}
}

// BroadcastToTournament sends an event to all connections subscribed to a tournament.
func (h *Hub) BroadcastToTournament(tournamentID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", tournamentID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.tournaments[tournamentID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("viewerId", c.viewerID()).Str("tournamentId", tournamentID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// sendTo queues an event for one connection.
func (h *Hub) sendTo(c *WSConn, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connections[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SubscriberCount returns the number of connections subscribed to a tournament.
func (h *Hub) SubscriberCount(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tournaments[tournamentID])
}
