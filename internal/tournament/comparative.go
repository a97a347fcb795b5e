package tournament

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/mapfile"
	"github.com/ItayH27/tanks-game-simulation/internal/model"
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
)

// ComparativeRequest describes a comparative run. Map is already parsed;
// a malformed map must stop the run before it starts.
type ComparativeRequest struct {
	Map          *mapfile.Map
	MapPath      string
	GameManagers []string
	Algorithm1   string
	Algorithm2   string
}

// ComparativeReport is the grouped outcome of a comparative run.
type ComparativeReport struct {
	Map        string    `json:"game_map"`
	Algorithm1 string    `json:"algorithm1"`
	Algorithm2 string    `json:"algorithm2"`
	Groups     []Group   `json:"groups"`
	Skipped    []Outcome `json:"-"`
}

// RunComparative plays the algorithm pair under every game manager. Failing
// to load either algorithm is fatal; a failing game manager only skips its
// fixture.
func (r *Runner) RunComparative(ctx context.Context, req ComparativeRequest) (*ComparativeReport, error) {
	if len(req.GameManagers) == 0 {
		return nil, ErrNoGameManagers
	}
	if req.Map == nil {
		return nil, fmt.Errorf("tournament: %w: no map", mapfile.ErrMalformed)
	}
	lg := logger.ForRun(ctx)

	fixtures := ComparativeFixtures(req.MapPath, req.GameManagers, req.Algorithm1, req.Algorithm2)
	algos := newResidents(r.Table, Usage(fixtures))
	defer func() {
		if err := algos.close(); err != nil {
			lg.Warn().Err(err).Msg("Failed to release algorithm modules")
		}
	}()

	labels := Labels([]string{req.Algorithm1, req.Algorithm2})
	for p, l := range Labels(req.GameManagers) {
		labels[p] = l
	}
	for _, path := range []string{req.Algorithm1, req.Algorithm2} {
		if err := algos.preload(ctx, path); err != nil {
			return nil, fmt.Errorf("load algorithm %s: %w", labels[path], err)
		}
	}

	r.startTournament(ctx, &model.Tournament{
		Mode:       model.ModeComparative,
		Map:        filepath.Base(req.MapPath),
		Algorithm1: fileName(req.Algorithm1),
		Algorithm2: fileName(req.Algorithm2),
		Fixtures:   len(fixtures),
	})
	lg.Info().Int("gameManagers", len(fixtures)).Int("workers", max(r.Workers, 1)).Msg("Comparative run started")

	env := fixtureEnv{
		loadMap: func(string) (*mapfile.Map, error) { return req.Map, nil },
		gameManager: func(ctx context.Context, path string) (*plugin.Token, error) {
			return r.Table.Load(ctx, path, plugin.RoleGameManager)
		},
		algorithms: algos,
		labels:     labels,
	}
	outcomes := make([]Outcome, len(fixtures))
	runPool(ctx, r.Workers, len(fixtures), func(i int) {
		outcomes[i] = r.runFixture(ctx, fixtures[i], env)
	})

	report := &ComparativeReport{
		Map:        filepath.Base(req.MapPath),
		Algorithm1: fileName(req.Algorithm1),
		Algorithm2: fileName(req.Algorithm2),
		Groups:     GroupOutcomes(outcomes),
	}
	for _, o := range outcomes {
		if o.Skipped() {
			report.Skipped = append(report.Skipped, o)
		}
	}
	r.finishTournament(ctx, nil, ctx.Err())
	lg.Info().Int("groups", len(report.Groups)).Int("skipped", len(report.Skipped)).Msg("Comparative run finished")
	return report, ctx.Err()
}
