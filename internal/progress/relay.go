package progress

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisrepo "github.com/ItayH27/tanks-game-simulation/internal/repository/redis"
)

// Broadcaster sends real-time events to connected viewers.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastTournamentEvent(tournamentID string, eventType string, data json.RawMessage)
}

// NoopBroadcaster is a no-op implementation for tests or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastTournamentEvent(string, string, json.RawMessage) {}

// Relay listens on every tournament events channel and forwards the
// payloads to a Broadcaster. Runner processes publish; the progress server
// relays.
type Relay struct {
	rdb *redis.Client
	out Broadcaster
}

// NewRelay creates a Relay.
func NewRelay(rdb *redis.Client, out Broadcaster) *Relay {
	return &Relay{rdb: rdb, out: out}
}

// Start blocks until ctx is done or the subscription closes.
func (r *Relay) Start(ctx context.Context) {
	pubsub := r.rdb.PSubscribe(ctx, redisrepo.EventsPattern)
	defer pubsub.Close()

	log.Info().Str("pattern", redisrepo.EventsPattern).Msg("Progress relay started")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Progress relay stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handleMessage(msg.Channel, msg.Payload)
		}
	}
}

// handleMessage forwards one pub/sub message. Only tournament event
// channels carrying a typed JSON event are relayed.
func (r *Relay) handleMessage(channel, payload string) {
	id, ok := redisrepo.TournamentFromChannel(channel)
	if !ok {
		return
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &head); err != nil || head.Type == "" {
		log.Warn().Str("channel", channel).Msg("Dropping malformed progress event")
		return
	}
	r.out.BroadcastTournamentEvent(id, head.Type, json.RawMessage(payload))
}
