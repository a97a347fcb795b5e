package tournament

import (
	"context"
	"fmt"
	"sync"

	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/mapfile"
	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
)

// CompetitiveRequest describes a round-robin run.
type CompetitiveRequest struct {
	MapsFolder  string
	Maps        []string
	GameManager string
	Algorithms  []string
}

// CompetitiveReport is the scored outcome of a round-robin run.
type CompetitiveReport struct {
	MapsFolder  string                       `json:"game_maps_folder"`
	GameManager string                       `json:"game_manager"`
	Standings   []model.Standing             `json:"standings"`
	Outcomes    []Outcome                    `json:"-"`
	MapWarnings map[string][]mapfile.Warning `json:"-"`
}

// Skipped returns the fixtures that did not produce a result.
func (r *CompetitiveReport) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Skipped() {
			out = append(out, o)
		}
	}
	return out
}

// RunCompetitive plays the round-robin schedule under one game manager.
// Failing to load the game manager is fatal. Algorithms load on first use
// and unload after their last scheduled fixture; a malformed map or an
// algorithm that fails to load skips the fixtures involved.
func (r *Runner) RunCompetitive(ctx context.Context, req CompetitiveRequest) (*CompetitiveReport, error) {
	if len(req.Algorithms) < 2 {
		return nil, ErrTooFewAlgorithms
	}
	if len(req.Maps) == 0 {
		return nil, ErrNoMaps
	}
	lg := logger.ForRun(ctx)

	gmTok, err := r.Table.Load(ctx, req.GameManager, plugin.RoleGameManager)
	if err != nil {
		return nil, fmt.Errorf("load game manager %s: %w", plugin.DisplayName(req.GameManager), err)
	}
	defer func() {
		if err := gmTok.Release(); err != nil {
			lg.Warn().Err(err).Msg("Failed to release game manager")
		}
	}()

	fixtures := RoundRobin(req.Maps, req.Algorithms, req.GameManager)
	algos := newResidents(r.Table, Usage(fixtures))
	defer func() {
		if err := algos.close(); err != nil {
			lg.Warn().Err(err).Msg("Failed to release algorithm modules")
		}
	}()

	labels := Labels(req.Algorithms)
	gmName := fileName(req.GameManager)
	labels[req.GameManager] = plugin.DisplayName(req.GameManager)
	names := make([]string, len(req.Algorithms))
	for i, a := range req.Algorithms {
		names[i] = labels[a]
	}
	board := NewScoreboard(names)
	maps := newMapCache()

	r.startTournament(ctx, &model.Tournament{
		Mode:        model.ModeCompetition,
		GameManager: gmName,
		MapsFolder:  req.MapsFolder,
		Fixtures:    len(fixtures),
	})
	lg.Info().
		Int("algorithms", len(req.Algorithms)).
		Int("maps", len(req.Maps)).
		Int("fixtures", len(fixtures)).
		Int("workers", max(r.Workers, 1)).
		Msg("Competition started")

	env := fixtureEnv{
		loadMap: maps.load,
		gameManager: func(context.Context, string) (*plugin.Token, error) {
			return gmTok.Clone()
		},
		algorithms: algos,
		labels:     labels,
		points: func(o Outcome) []model.Standing {
			return board.Record(o.Algorithm1, o.Algorithm2, o.Result.Winner)
		},
	}
	outcomes := make([]Outcome, len(fixtures))
	runPool(ctx, r.Workers, len(fixtures), func(i int) {
		outcomes[i] = r.runFixture(ctx, fixtures[i], env)
	})

	report := &CompetitiveReport{
		MapsFolder:  req.MapsFolder,
		GameManager: gmName,
		Standings:   board.Standings(),
		Outcomes:    outcomes,
		MapWarnings: maps.warnings(),
	}
	r.finishTournament(ctx, report.Standings, ctx.Err())
	lg.Info().Int("skipped", len(report.Skipped())).Msg("Competition finished")
	return report, ctx.Err()
}

type mapEntry struct {
	m     *mapfile.Map
	warns []mapfile.Warning
	err   error
}

// mapCache parses each map file once per run.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*mapEntry
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*mapEntry)}
}

func (c *mapCache) load(path string) (*mapfile.Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		e = &mapEntry{}
		e.m, e.warns, e.err = mapfile.Load(path)
		c.entries[path] = e
	}
	return e.m, e.err
}

func (c *mapCache) warnings() map[string][]mapfile.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]mapfile.Warning)
	for path, e := range c.entries {
		if len(e.warns) > 0 {
			out[path] = e.warns
		}
	}
	return out
}
