package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ItayH27/tanks-game-simulation/internal/repository"
)

// Progress counter fields.
const (
	CounterTotal    = "total"
	CounterFinished = "finished"
	CounterSkipped  = "skipped"
)

// Redis publishes every event as JSON on the tournament's pub/sub channel
// and keeps the live counters and leaderboard up to date.
type Redis struct {
	Cache repository.ProgressCache
}

// Publish implements Publisher.
func (r Redis) Publish(ctx context.Context, ev Event) error {
	var errs []error
	switch ev.Type {
	case TournamentStarted:
		if ev.Tournament != nil {
			if err := r.Cache.SetTotal(ctx, ev.TournamentID, ev.Tournament.Fixtures); err != nil {
				errs = append(errs, fmt.Errorf("set total: %w", err))
			}
		}
	case FixtureFinished:
		if err := r.Cache.IncrProgress(ctx, ev.TournamentID, CounterFinished); err != nil {
			errs = append(errs, fmt.Errorf("incr finished: %w", err))
		}
		for _, p := range ev.Points {
			if err := r.Cache.AddScore(ctx, ev.TournamentID, p.Name, p.Score); err != nil {
				errs = append(errs, fmt.Errorf("add score: %w", err))
			}
		}
	case FixtureSkipped:
		if err := r.Cache.IncrProgress(ctx, ev.TournamentID, CounterSkipped); err != nil {
			errs = append(errs, fmt.Errorf("incr skipped: %w", err))
		}
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.Cache.PublishEvent(ctx, ev.TournamentID, payload); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
