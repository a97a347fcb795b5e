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

func newCompetitionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "competition game_maps_folder=<dir> game_manager=<file> algorithms_folder=<dir> [num_threads=<n>]",
		Short: "Play a round-robin between algorithms on every map and score the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := parseArgs(args,
				[]string{"game_maps_folder", "game_manager", "algorithms_folder"},
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
				checkDir("game_maps_folder", kv["game_maps_folder"]),
				checkFile("game_manager", kv["game_manager"]),
				checkDir("algorithms_folder", kv["algorithms_folder"]),
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			maps, err := mapfile.List(kv["game_maps_folder"])
			if err != nil {
				return err
			}
			if len(maps) == 0 {
				return fmt.Errorf("%s: %w", kv["game_maps_folder"], tournament.ErrNoMaps)
			}
			algorithms, err := plugin.Discover(kv["algorithms_folder"])
			if err != nil {
				return err
			}
			if len(algorithms) < 2 {
				return fmt.Errorf("%s: %w, found %d", kv["algorithms_folder"], tournament.ErrTooFewAlgorithms, len(algorithms))
			}

			dir := outputDir(cfg, kv["algorithms_folder"])
			roundLogs := ""
			if opts.verbose {
				roundLogs = dir
			}
			s := newSession(cmd.Context(), cfg, workers, roundLogs)
			defer s.close()
			lg := logger.ForRun(s.ctx)
			lg.Info().Int("maps", len(maps)).Int("algorithms", len(algorithms)).Int("workers", workers).Msg("Starting competition")

			rep, runErr := s.runner.RunCompetitive(s.ctx, tournament.CompetitiveRequest{
				MapsFolder:  kv["game_maps_folder"],
				Maps:        maps,
				GameManager: kv["game_manager"],
				Algorithms:  algorithms,
			})
			if rep == nil {
				return runErr
			}
			writeInputErrors(rep.MapWarnings)
			if err := saveReport(cmd.OutOrStdout(), dir, "competition", opts.jsonOut, rep, func(w io.Writer) error {
				return tournament.WriteCompetitive(w, rep)
			}); err != nil {
				return err
			}
			return runErr
		},
	}
}
