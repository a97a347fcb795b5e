package progress

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Publisher receives progress events. Implementations must be safe for
// concurrent use; the runner publishes from every worker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Log writes events to a zerolog logger.
type Log struct {
	Logger *zerolog.Logger
}

// Publish implements Publisher.
func (l Log) Publish(_ context.Context, ev Event) error {
	lg := log.Logger
	if l.Logger != nil {
		lg = *l.Logger
	}
	e := lg.Debug()
	if ev.Type == TournamentStarted || ev.Type == TournamentFinished || ev.Type == FixtureSkipped {
		e = lg.Info()
	}
	e = e.Str("event", ev.Type).Str("tournamentId", ev.TournamentID)
	if ev.RunID != "" {
		e = e.Str("runId", ev.RunID)
	}
	if f := ev.Fixture; f != nil {
		e = e.Int("fixture", f.Index).
			Str("map", f.Map).
			Str("algorithm1", f.Algorithm1).
			Str("algorithm2", f.Algorithm2).
			Str("gameManager", f.GameManager)
		if ev.Type == FixtureFinished {
			e = e.Int("winner", f.Winner).Str("reason", f.Reason).Int("rounds", f.Rounds)
		}
		if f.Error != "" {
			e = e.Str("error", f.Error)
		}
	}
	if t := ev.Tournament; t != nil {
		e = e.Str("mode", t.Mode).Int("fixtures", t.Fixtures).Int("workers", t.Workers)
	}
	if ev.Status != "" {
		e = e.Str("status", ev.Status)
	}
	e.Msg("Tournament progress")
	return nil
}

// Multi fans an event out to every publisher. A failing publisher does
// not stop the others.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
