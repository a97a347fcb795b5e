// Package progress carries tournament progress events from the runner to
// logs, the live Redis leaderboard, the results store and WebSocket viewers.
package progress

import (
	"time"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
)

// Event types.
const (
	TournamentStarted  = "tournament_started"
	FixtureStarted     = "fixture_started"
	FixtureFinished    = "fixture_finished"
	FixtureSkipped     = "fixture_skipped"
	TournamentFinished = "tournament_finished"
)

// Event is one progress notification. Only the fields relevant to its Type
// are set.
type Event struct {
	Type         string               `json:"type"`
	TournamentID string               `json:"tournament_id"`
	RunID        string               `json:"run_id,omitempty"`
	Time         time.Time            `json:"time"`
	Tournament   *model.Tournament    `json:"tournament,omitempty"`
	Fixture      *model.FixtureRecord `json:"fixture,omitempty"`
	// Points awarded by a finished fixture, competition mode only.
	Points    []model.Standing `json:"points,omitempty"`
	Standings []model.Standing `json:"standings,omitempty"`
	Status    string           `json:"status,omitempty"`
}
