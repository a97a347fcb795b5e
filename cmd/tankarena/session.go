package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/algo"
	"github.com/ItayH27/tanks-game-simulation/internal/config"
	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/mapfile"
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
	"github.com/ItayH27/tanks-game-simulation/internal/progress"
	"github.com/ItayH27/tanks-game-simulation/internal/repository/postgres"
	redisrepo "github.com/ItayH27/tanks-game-simulation/internal/repository/redis"
	"github.com/ItayH27/tanks-game-simulation/internal/tournament"
	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

// inputErrorsFile collects recovered map problems in the working directory.
const inputErrorsFile = "input_errors.txt"

// session is everything one tournament run needs: a cancellable context
// carrying the run id, the module table and a runner publishing progress.
type session struct {
	ctx    context.Context
	runID  string
	runner *tournament.Runner
	stop   []func()
}

func newSession(parent context.Context, cfg *config.Config, workers int, roundLogDir string) *session {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	runID := logger.NewRunID()
	ctx = logger.WithRunID(ctx, runID)
	s := &session{ctx: ctx, runID: runID, stop: []func(){cancel}}

	opener := plugin.Dispatch{
		Catalog: algo.Builtins(),
		Exec:    plugin.ExecOpener{Args: cfg.ModuleArgs},
	}
	table := plugin.NewTable(opener, plugin.NewRegistry())
	s.onClose(func() {
		if err := table.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close module table")
		}
	})

	lg := logger.ForRun(ctx)
	pubs := progress.Multi{progress.Log{Logger: &lg}}
	if cfg.RedisURL != "" {
		client, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			lg.Warn().Err(err).Msg("Redis unavailable, live progress disabled")
		} else {
			s.onClose(func() { client.Close() })
			pubs = append(pubs, progress.Redis{Cache: client})
		}
	}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			lg.Warn().Err(err).Msg("Database unavailable, results will not be stored")
		} else {
			s.onClose(func() { closeDB(db) })
			pubs = append(pubs, progress.Store{Repo: postgres.NewTournamentRepo(db)})
		}
	}

	s.runner = &tournament.Runner{
		Table:         table,
		Workers:       workers,
		Publisher:     pubs,
		EngineOptions: []battle.Option{battle.WithNoAmmoRounds(cfg.NoAmmoRounds)},
		RoundLogDir:   roundLogDir,
		TournamentID:  runID,
	}
	return s
}

func (s *session) onClose(fn func()) { s.stop = append(s.stop, fn) }

// close runs the cleanups in reverse order.
func (s *session) close() {
	for i := len(s.stop) - 1; i >= 0; i-- {
		s.stop[i]()
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}

// outputDir is where reports and round logs go: the configured output
// directory, or the folder the run reads its modules from.
func outputDir(cfg *config.Config, fallback string) string {
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return fallback
}

// writeInputErrors writes recovered map problems to input_errors.txt,
// grouped by map file. Nothing is written when there are none.
func writeInputErrors(warns map[string][]mapfile.Warning) {
	names := make([]string, 0, len(warns))
	for name, w := range warns {
		if len(w) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	f, err := os.Create(inputErrorsFile)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create input errors file")
		return
	}
	defer f.Close()

	for _, name := range names {
		if len(names) > 1 {
			fmt.Fprintf(f, "%s:\n", filepath.Base(name))
		}
		if err := mapfile.WriteWarnings(f, warns[name]); err != nil {
			log.Warn().Err(err).Msg("Failed to write input errors")
			return
		}
	}
}

// saveReport writes the text report and, when asked, the JSON form to out.
func saveReport(out io.Writer, dir, prefix string, jsonOut bool, report any, write func(io.Writer) error) error {
	path, err := tournament.SaveReport(dir, prefix, time.Now(), out, write)
	if err != nil {
		return err
	}
	if path != "" {
		log.Info().Str("path", path).Msg("Report written")
	}
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}
	return nil
}
