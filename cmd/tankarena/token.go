package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ItayH27/tanks-game-simulation/internal/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		viewer       string
		tournamentID string
		expiry       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token --viewer <id> [--tournament <id>]",
		Short: "Print a viewer token for the progress server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			mgr := auth.NewJWTManager(cfg.JWTSecret).WithExpiry(expiry)
			token, err := mgr.GenerateViewerToken(viewer, tournamentID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&viewer, "viewer", "", "Viewer id")
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Limit the token to one tournament")
	cmd.Flags().DurationVar(&expiry, "expiry", auth.DefaultViewerExpiry, "Token lifetime")
	cmd.MarkFlagRequired("viewer")
	return cmd
}
