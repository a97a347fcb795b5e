// Package tournament schedules and runs batches of tank battles.
//
// A comparative run plays one map and one algorithm pair under every game
// manager module and groups identical outcomes. A competitive run plays a
// round-robin between algorithm modules across maps under one game
// manager and scores the results. Modules are loaded through a
// plugin.Table and stay resident only while the schedule still needs them.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/mapfile"
	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
	"github.com/ItayH27/tanks-game-simulation/internal/progress"
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

var (
	ErrTooFewAlgorithms = errors.New("tournament: at least two algorithms are required")
	ErrNoMaps           = errors.New("tournament: no map files found")
	ErrNoGameManagers   = errors.New("tournament: no game managers found")
)

// Runner executes fixtures against modules loaded through Table.
type Runner struct {
	Table *plugin.Table
	// Workers is the number of games run at once; values below 2 run
	// fixtures sequentially.
	Workers   int
	Publisher progress.Publisher
	// EngineOptions are passed to every game manager instance.
	EngineOptions []battle.Option
	// RoundLogDir receives one round log per game when set.
	RoundLogDir  string
	TournamentID string
	Now          func() time.Time
}

// Outcome is the result of one fixture. Names are display names.
type Outcome struct {
	Fixture     Fixture
	GameManager string
	Algorithm1  string
	Algorithm2  string
	Result      battle.Result
	Err         error
}

// Skipped reports whether the fixture did not produce a result.
func (o Outcome) Skipped() bool { return o.Err != nil }

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) publish(ctx context.Context, ev progress.Event) {
	if r.Publisher == nil {
		return
	}
	ev.TournamentID = r.TournamentID
	ev.RunID = logger.RunIDFromContext(ctx)
	ev.Time = r.now().UTC()
	if err := r.Publisher.Publish(ctx, ev); err != nil {
		lg := logger.ForRun(ctx)
		lg.Warn().Err(err).Str("event", ev.Type).Msg("Failed to publish progress event")
	}
}

func (r *Runner) startTournament(ctx context.Context, t *model.Tournament) {
	t.ID = r.TournamentID
	t.Status = model.StatusRunning
	t.Workers = max(r.Workers, 1)
	t.CreatedAt = r.now().UTC()
	r.publish(ctx, progress.Event{Type: progress.TournamentStarted, Tournament: t})
}

func (r *Runner) finishTournament(ctx context.Context, standings []model.Standing, err error) {
	status := model.StatusFinished
	if err != nil {
		status = model.StatusFailed
	}
	r.publish(ctx, progress.Event{Type: progress.TournamentFinished, Standings: standings, Status: status})
}

// fixtureEnv supplies the per-mode pieces of a fixture run.
type fixtureEnv struct {
	loadMap     func(path string) (*mapfile.Map, error)
	gameManager func(ctx context.Context, path string) (*plugin.Token, error)
	algorithms  *residents
	// labels holds the report name of every module path in the run.
	labels map[string]string
	// points converts a result into awarded points, competition only.
	points func(o Outcome) []model.Standing
}

// runFixture runs one fixture to completion. Every failure is logged and
// turned into a skipped outcome; algorithm usage is counted down either way.
func (r *Runner) runFixture(ctx context.Context, f Fixture, env fixtureEnv) Outcome {
	out := Outcome{
		Fixture:     f,
		GameManager: label(env.labels, f.GameManager),
		Algorithm1:  label(env.labels, f.Algorithm1),
		Algorithm2:  label(env.labels, f.Algorithm2),
	}
	defer env.algorithms.done(f.Algorithm1)
	defer env.algorithms.done(f.Algorithm2)

	lg := logger.ForRun(ctx).With().
		Int("fixture", f.Index).
		Str("map", filepath.Base(f.Map)).
		Str("algorithm1", out.Algorithm1).
		Str("algorithm2", out.Algorithm2).
		Str("gameManager", out.GameManager).
		Logger()

	r.publish(ctx, progress.Event{Type: progress.FixtureStarted, Fixture: r.baseRecord(out)})

	out.Result, out.Err = r.playFixture(ctx, f, out, env, lg)
	rec := r.record(out)
	if out.Err != nil {
		lg.Error().Err(out.Err).Msg("Fixture skipped")
		r.publish(ctx, progress.Event{Type: progress.FixtureSkipped, Fixture: rec})
		return out
	}

	lg.Info().
		Int("winner", out.Result.Winner).
		Str("reason", out.Result.Reason.String()).
		Int("rounds", out.Result.Rounds).
		Msg("Fixture finished")
	ev := progress.Event{Type: progress.FixtureFinished, Fixture: rec}
	if env.points != nil {
		ev.Points = env.points(out)
	}
	r.publish(ctx, ev)
	return out
}

func (r *Runner) playFixture(ctx context.Context, f Fixture, names Outcome, env fixtureEnv, lg zerolog.Logger) (battle.Result, error) {
	m, err := env.loadMap(f.Map)
	if err != nil {
		return battle.Result{}, fmt.Errorf("load map %s: %w", f.Map, err)
	}

	gmTok, err := env.gameManager(ctx, f.GameManager)
	if err != nil {
		return battle.Result{}, fmt.Errorf("load game manager: %w", err)
	}
	defer releaseToken(gmTok, lg)

	tok1, err := env.algorithms.acquire(ctx, f.Algorithm1)
	if err != nil {
		return battle.Result{}, fmt.Errorf("load algorithm %s: %w", names.Algorithm1, err)
	}
	defer releaseToken(tok1, lg)

	tok2, err := env.algorithms.acquire(ctx, f.Algorithm2)
	if err != nil {
		return battle.Result{}, fmt.Errorf("load algorithm %s: %w", names.Algorithm2, err)
	}
	defer releaseToken(tok2, lg)

	opts := append([]battle.Option(nil), r.EngineOptions...)
	if r.RoundLogDir != "" {
		name := fmt.Sprintf("output_%s_%s_vs_%s_%s.txt",
			mapStem(f.Map), fileSafe.Replace(names.Algorithm1), fileSafe.Replace(names.Algorithm2), fileSafe.Replace(names.GameManager))
		file, err := os.Create(filepath.Join(r.RoundLogDir, name))
		if err != nil {
			lg.Warn().Err(err).Msg("Failed to create round log")
		} else {
			defer file.Close()
			opts = append(opts, battle.WithRoundLog(file))
		}
	}

	return play(m, gmTok.Entry(), tok1.Entry(), tok2.Entry(), names, opts)
}

// play runs the game. Panics from module code become errors. Instances
// holding external resources are released before returning, while the
// module tokens are still held.
func play(m *mapfile.Map, gm, alg1, alg2 plugin.Entry, names Outcome, opts []battle.Option) (res battle.Result, err error) {
	var held instances
	defer held.releaseAll()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("game panicked: %v\n%s", p, debug.Stack())
		}
	}()

	p1 := alg1.Player(1, m.Cols, m.Rows, m.MaxSteps, m.NumShells)
	p2 := alg2.Player(2, m.Cols, m.Rows, m.MaxSteps, m.NumShells)
	g := m.Game(
		battle.Side{Name: names.Algorithm1, Player: p1, Tanks: held.wrap(alg1.TankAlgorithm)},
		battle.Side{Name: names.Algorithm2, Player: p2, Tanks: held.wrap(alg2.TankAlgorithm)},
	)
	return gm.GameManager(opts...).Run(g), nil
}

func releaseToken(tok *plugin.Token, lg zerolog.Logger) {
	if err := tok.Release(); err != nil {
		lg.Warn().Err(err).Str("module", tok.Name()).Msg("Failed to release module token")
	}
}

// releaser is implemented by tank algorithms that hold external
// resources, such as out-of-process protocol sessions.
type releaser interface {
	Release()
}

// instances records the releasable algorithms created during one game.
// The engine runs a game on a single goroutine, so no locking is needed.
type instances struct {
	held []releaser
}

func (in *instances) wrap(f battle.TankAlgorithmFactory) battle.TankAlgorithmFactory {
	return func(player, tank int) battle.TankAlgorithm {
		a := f(player, tank)
		if rel, ok := a.(releaser); ok {
			in.held = append(in.held, rel)
		}
		return a
	}
}

func (in *instances) releaseAll() {
	for _, rel := range in.held {
		rel.Release()
	}
	in.held = nil
}

func (r *Runner) baseRecord(o Outcome) *model.FixtureRecord {
	return &model.FixtureRecord{
		TournamentID: r.TournamentID,
		Index:        o.Fixture.Index,
		Map:          filepath.Base(o.Fixture.Map),
		Algorithm1:   o.Algorithm1,
		Algorithm2:   o.Algorithm2,
		GameManager:  o.GameManager,
	}
}

func (r *Runner) record(o Outcome) *model.FixtureRecord {
	rec := r.baseRecord(o)
	rec.FinishedAt = r.now().UTC()
	if o.Err != nil {
		rec.Skipped = true
		rec.Error = o.Err.Error()
		return rec
	}
	rec.Winner = o.Result.Winner
	rec.Reason = o.Result.Reason.String()
	rec.Rounds = o.Result.Rounds
	rec.Remaining1 = o.Result.Remaining[0]
	rec.Remaining2 = o.Result.Remaining[1]
	rec.Board = o.Result.Board.Normalized().Rows()
	return rec
}

func mapStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
