package progress

import (
	"context"
	"fmt"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/repository"
)

// Store persists tournament summaries, fixture outcomes and final standings.
type Store struct {
	Repo repository.TournamentRepository
}

// Publish implements Publisher.
func (s Store) Publish(ctx context.Context, ev Event) error {
	switch ev.Type {
	case TournamentStarted:
		if ev.Tournament == nil {
			return nil
		}
		if err := s.Repo.Create(ctx, ev.Tournament); err != nil {
			return fmt.Errorf("store tournament: %w", err)
		}
	case FixtureFinished, FixtureSkipped:
		if ev.Fixture == nil {
			return nil
		}
		if err := s.Repo.SaveFixture(ctx, *ev.Fixture); err != nil {
			return fmt.Errorf("store fixture %d: %w", ev.Fixture.Index, err)
		}
	case TournamentFinished:
		if len(ev.Standings) > 0 {
			if err := s.Repo.SaveStandings(ctx, ev.TournamentID, ev.Standings); err != nil {
				return fmt.Errorf("store standings: %w", err)
			}
		}
		status := ev.Status
		if status == "" {
			status = model.StatusFinished
		}
		if err := s.Repo.Finish(ctx, ev.TournamentID, status); err != nil {
			return fmt.Errorf("finish tournament: %w", err)
		}
	}
	return nil
}
