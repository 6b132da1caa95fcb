package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var startersCmd = &cobra.Command{
	Use:   "starters",
	Short: "Recompute starter status only",
	Long:  "Samples recent box scores and rewrites every player's starter flag.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.pipeline.RunStarters(ctx)
		if err != nil {
			return fmt.Errorf("starters: %w", err)
		}
		formatStarterLine(os.Stdout, report)
		return nil
	},
}

var normalizePositionsCmd = &cobra.Command{
	Use:   "normalize-positions",
	Short: "Rewrite stored positions into the canonical set",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		updated, err := db.Players.NormalizePositions(cmd.Context())
		if err != nil {
			return fmt.Errorf("normalize positions: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "%d positions updated\n", updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startersCmd)
	rootCmd.AddCommand(normalizePositionsCmd)
}
