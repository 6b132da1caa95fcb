package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"nba_stats/ingestion/internal/pipeline"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full sync pipeline",
	Long:  "Syncs teams, players, games with box scores, and starter status for the season.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.pipeline.Run(ctx)
		if report != nil {
			formatReport(os.Stdout, report)
		}
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// formatReport writes a summary of a sync run to out
func formatReport(out io.Writer, r *pipeline.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "RUN\t%s\n", r.RunID)
	_, _ = fmt.Fprintf(w, "SEASON\t%s\n", r.Season)
	_, _ = fmt.Fprintf(w, "DURATION\t%s\n", r.Duration.Round(time.Second))
	_, _ = fmt.Fprintf(w, "TEAMS\t%d\n", r.Teams)
	_, _ = fmt.Fprintf(w, "PLAYERS\t%d\n", r.Players)
	_, _ = fmt.Fprintf(w, "GAMES\t%d\n", r.Games)
	_, _ = fmt.Fprintf(w, "BOX SCORES\t%d ingested, %d failed, %d empty, %d already loaded\n",
		r.BoxScores.Ingested, r.BoxScores.Failed, r.BoxScores.Empty, r.BoxScores.AlreadyLoaded)
	if r.Starters != nil {
		formatStarterLine(w, r.Starters)
	}

	stages := make([]string, 0, len(r.StageErrors))
	for stage := range r.StageErrors {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		_, _ = fmt.Fprintf(w, "ERROR %s\t%s\n", stage, r.StageErrors[stage])
	}
	_ = w.Flush()
}

func formatStarterLine(w io.Writer, s *pipeline.StarterReport) {
	_, _ = fmt.Fprintf(w, "STARTERS\t%d starters, %d bench, %d unknown from %d games\n",
		s.Starters, s.Bench, s.Unknown, s.GamesAnalyzed)
}
