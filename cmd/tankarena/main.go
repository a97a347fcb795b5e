// Command tankarena runs tank battle tournaments.
//
//	tankarena comparative game_map=<file> game_managers_folder=<dir> algorithm1=<file> algorithm2=<file> [num_threads=<n>]
//	tankarena competition game_maps_folder=<dir> game_manager=<file> algorithms_folder=<dir> [num_threads=<n>]
//	tankarena token --viewer <id> [--tournament <id>]
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ItayH27/tanks-game-simulation/internal/config"
	"github.com/ItayH27/tanks-game-simulation/internal/logger"
)

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	dbURL      string
	redisURL   string
	verbose    bool
	jsonOut    bool
}

// config loads env and the optional YAML file, then applies flag overrides.
func (o *options) config() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}
	if o.dbURL != "" {
		cfg.DatabaseURL = o.dbURL
	}
	if o.redisURL != "" {
		cfg.RedisURL = o.redisURL
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tankarena",
		Short: "Run tank battle tournaments between algorithm modules",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.SetVerbose()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.dbURL, "db", "", "Postgres URL for the results store (or DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.redisURL, "redis", "", "Redis URL for live progress (or REDIS_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging and per-game round logs")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Also print the report as JSON to stdout")

	root.AddCommand(newComparativeCmd(opts), newCompetitionCmd(opts), newTokenCmd(opts))
	return root
}

func main() {
	logger.InitWriter(os.Stderr)
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
