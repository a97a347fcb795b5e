package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/mapfile"
	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
	"github.com/ItayH27/tanks-game-simulation/internal/tournament"
)

func newComparativeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "comparative game_map=<file> game_managers_folder=<dir> algorithm1=<file> algorithm2=<file> [num_threads=<n>]",
		Short: "Play one map and algorithm pair under every game manager and group the outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := parseArgs(args,
				[]string{"game_map", "game_managers_folder", "algorithm1", "algorithm2"},
				[]string{argThreads})
			if err != nil {
				return err
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			workers, err := threads(kv, cfg.Workers)
			errs := []error{err,
				checkFile("game_map", kv["game_map"]),
				checkDir("game_managers_folder", kv["game_managers_folder"]),
				checkFile("algorithm1", kv["algorithm1"]),
				checkFile("algorithm2", kv["algorithm2"]),
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			gms, err := plugin.Discover(kv["game_managers_folder"])
			if err != nil {
				return err
			}
			if len(gms) == 0 {
				return fmt.Errorf("%s: %w", kv["game_managers_folder"], tournament.ErrNoGameManagers)
			}

			m, warns, err := mapfile.Load(kv["game_map"])
			writeInputErrors(map[string][]mapfile.Warning{kv["game_map"]: warns})
			if err != nil {
				return err
			}

			dir := outputDir(cfg, kv["game_managers_folder"])
			roundLogs := ""
			if opts.verbose {
				roundLogs = dir
			}
			s := newSession(cmd.Context(), cfg, workers, roundLogs)
			defer s.close()
			lg := logger.ForRun(s.ctx)
			lg.Info().Str("map", m.File).Int("gameManagers", len(gms)).Int("workers", workers).Msg("Starting comparative run")

			rep, runErr := s.runner.RunComparative(s.ctx, tournament.ComparativeRequest{
				Map:          m,
				MapPath:      kv["game_map"],
				GameManagers: gms,
				Algorithm1:   kv["algorithm1"],
				Algorithm2:   kv["algorithm2"],
			})
			if rep == nil {
				return runErr
			}
			if err := saveReport(cmd.OutOrStdout(), dir, "comparative_results", opts.jsonOut, rep, func(w io.Writer) error {
				return tournament.WriteComparative(w, rep)
			}); err != nil {
				return err
			}
			return runErr
		},
	}
}
