package repository

import (
	"context"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
)

// TournamentRepository stores tournament summaries and fixture outcomes.
type TournamentRepository interface {
	Create(ctx context.Context, t *model.Tournament) error
	FindByID(ctx context.Context, id string) (*model.Tournament, error)
	Finish(ctx context.Context, id, status string) error
	SaveFixture(ctx context.Context, f model.FixtureRecord) error
	ListFixtures(ctx context.Context, tournamentID string) ([]model.FixtureRecord, error)
	SaveStandings(ctx context.Context, tournamentID string, standings []model.Standing) error
	Standings(ctx context.Context, tournamentID string) ([]model.Standing, error)
}

// ProgressCache holds live tournament progress (Redis).
type ProgressCache interface {
	PublishEvent(ctx context.Context, tournamentID string, payload []byte) error
	SetTotal(ctx context.Context, tournamentID string, total int) error
	IncrProgress(ctx context.Context, tournamentID, field string) error
	Progress(ctx context.Context, tournamentID string) (map[string]int64, error)
	AddScore(ctx context.Context, tournamentID, name string, points int) error
	Standings(ctx context.Context, tournamentID string) ([]model.Standing, error)
	DeleteTournament(ctx context.Context, tournamentID string) error
}
