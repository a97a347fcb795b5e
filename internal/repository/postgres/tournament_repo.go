package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ItayH27/tanks-game-simulation/internal/model"
)

// TournamentRepo handles tournament, fixture and standings database operations.
type TournamentRepo struct {
	db *sql.DB
}

// NewTournamentRepo creates a TournamentRepo.
func NewTournamentRepo(db *sql.DB) *TournamentRepo {
	return &TournamentRepo{db: db}
}

// Create inserts a new tournament in running status and fills CreatedAt.
func (r *TournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	if t.Status == "" {
		t.Status = model.StatusRunning
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tournaments (id, mode, status, game_manager, maps_folder, game_map, algorithm1, algorithm2, workers, fixtures)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		t.ID, t.Mode, t.Status, t.GameManager, t.MapsFolder, t.Map, t.Algorithm1, t.Algorithm2, t.Workers, t.Fixtures,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

// FindByID returns a tournament, or nil when it does not exist.
func (r *TournamentRepo) FindByID(ctx context.Context, id string) (*model.Tournament, error) {
	var t model.Tournament
	err := r.db.QueryRowContext(ctx,
		`SELECT id, mode, status, game_manager, maps_folder, game_map, algorithm1, algorithm2,
		        workers, fixtures, created_at, finished_at
		 FROM tournaments WHERE id = $1`, id,
	).Scan(&t.ID, &t.Mode, &t.Status, &t.GameManager, &t.MapsFolder, &t.Map, &t.Algorithm1, &t.Algorithm2,
		&t.Workers, &t.Fixtures, &t.CreatedAt, &t.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}
	return &t, nil
}

// Finish sets the final status and stamps finished_at.
func (r *TournamentRepo) Finish(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET status = $2, finished_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("finish tournament: %w", err)
	}
	return nil
}

// SaveFixture upserts one fixture outcome.
func (r *TournamentRepo) SaveFixture(ctx context.Context, f model.FixtureRecord) error {
	board := f.Board
	if board == nil {
		board = []string{}
	}
	boardJSON, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO fixtures (tournament_id, idx, game_map, algorithm1, algorithm2, game_manager,
		                       skipped, error, winner, reason, rounds, remaining1, remaining2, board)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (tournament_id, idx) DO UPDATE SET
		   skipped = EXCLUDED.skipped, error = EXCLUDED.error, winner = EXCLUDED.winner,
		   reason = EXCLUDED.reason, rounds = EXCLUDED.rounds, remaining1 = EXCLUDED.remaining1,
		   remaining2 = EXCLUDED.remaining2, board = EXCLUDED.board, finished_at = now()`,
		f.TournamentID, f.Index, f.Map, f.Algorithm1, f.Algorithm2, f.GameManager,
		f.Skipped, f.Error, f.Winner, f.Reason, f.Rounds, f.Remaining1, f.Remaining2, boardJSON)
	if err != nil {
		return fmt.Errorf("save fixture: %w", err)
	}
	return nil
}

// ListFixtures returns all fixtures of a tournament in schedule order.
func (r *TournamentRepo) ListFixtures(ctx context.Context, tournamentID string) ([]model.FixtureRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tournament_id, idx, game_map, algorithm1, algorithm2, game_manager, skipped, error,
		        winner, reason, rounds, remaining1, remaining2, board, finished_at
		 FROM fixtures WHERE tournament_id = $1 ORDER BY idx`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	defer rows.Close()

	var out []model.FixtureRecord
	for rows.Next() {
		var f model.FixtureRecord
		var boardJSON []byte
		if err := rows.Scan(&f.TournamentID, &f.Index, &f.Map, &f.Algorithm1, &f.Algorithm2, &f.GameManager,
			&f.Skipped, &f.Error, &f.Winner, &f.Reason, &f.Rounds, &f.Remaining1, &f.Remaining2,
			&boardJSON, &f.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		if err := json.Unmarshal(boardJSON, &f.Board); err != nil {
			return nil, fmt.Errorf("unmarshal board: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveStandings replaces the final standings of a tournament.
func (r *TournamentRepo) SaveStandings(ctx context.Context, tournamentID string, standings []model.Standing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin standings tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM standings WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("clear standings: %w", err)
	}
	for _, s := range standings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO standings (tournament_id, name, score) VALUES ($1, $2, $3)`,
			tournamentID, s.Name, s.Score); err != nil {
			return fmt.Errorf("insert standing: %w", err)
		}
	}
	return tx.Commit()
}

// Standings returns stored standings, highest score first and ties by name.
func (r *TournamentRepo) Standings(ctx context.Context, tournamentID string) ([]model.Standing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, score FROM standings WHERE tournament_id = $1 ORDER BY score DESC, name`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	defer rows.Close()

	var out []model.Standing
	for rows.Next() {
		var s model.Standing
		if err := rows.Scan(&s.Name, &s.Score); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
