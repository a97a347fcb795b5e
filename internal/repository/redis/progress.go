package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
)

// EventsPattern matches every tournament event channel.
const EventsPattern = "tournament:*:events"

// Key patterns for Redis tournament progress.
func EventsChannel(tournamentID string) string { return "tournament:" + tournamentID + ":events" }
func standingsKey(tournamentID string) string  { return "tournament:" + tournamentID + ":standings" }
func progressKey(tournamentID string) string   { return "tournament:" + tournamentID + ":progress" }

// TournamentFromChannel extracts the tournament id from an events channel.
func TournamentFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, "tournament:") || !strings.HasSuffix(channel, ":events") {
		return "", false
	}
	parts := strings.SplitN(channel, ":", 3)
	if len(parts) != 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PublishEvent publishes an encoded progress event on the tournament channel.
func (c *Client) PublishEvent(ctx context.Context, tournamentID string, payload []byte) error {
	if err := c.rdb.Publish(ctx, EventsChannel(tournamentID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// SetTotal records how many fixtures the tournament schedules.
func (c *Client) SetTotal(ctx context.Context, tournamentID string, total int) error {
	return c.rdb.HSet(ctx, progressKey(tournamentID), "total", total).Err()
}

// IncrProgress bumps one progress counter (finished, skipped).
func (c *Client) IncrProgress(ctx context.Context, tournamentID, field string) error {
	return c.rdb.HIncrBy(ctx, progressKey(tournamentID), field, 1).Err()
}

// Progress returns every progress counter.
func (c *Client) Progress(ctx context.Context, tournamentID string) (map[string]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, progressKey(tournamentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			out[k] = n
		}
	}
	return out, nil
}

// AddScore adds points to a participant on the live leaderboard.
func (c *Client) AddScore(ctx context.Context, tournamentID, name string, points int) error {
	return c.rdb.ZIncrBy(ctx, standingsKey(tournamentID), float64(points), name).Err()
}

// Standings returns the live leaderboard, highest score first and ties by
// name.
func (c *Client) Standings(ctx context.Context, tournamentID string) ([]model.Standing, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, standingsKey(tournamentID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get standings: %w", err)
	}
	out := make([]model.Standing, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, model.Standing{Name: name, Score: int(z.Score)})
	}
	model.SortStandings(out)
	return out, nil
}

// DeleteTournament removes all live keys for a tournament.
func (c *Client) DeleteTournament(ctx context.Context, tournamentID string) error {
	return c.rdb.Del(ctx, standingsKey(tournamentID), progressKey(tournamentID)).Err()
}
