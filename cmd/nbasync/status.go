package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"nba_stats/ingestion/internal/repository"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table counts and whether a sync is needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := db.Counts(cmd.Context())
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		formatCounts(os.Stdout, counts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatCounts writes table counts to out
func formatCounts(out io.Writer, c repository.Counts) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	_, _ = fmt.Fprintf(w, "teams\t%d\n", c.Teams)
	_, _ = fmt.Fprintf(w, "players\t%d\n", c.Players)
	_, _ = fmt.Fprintf(w, "games\t%d\n", c.Games)
	_, _ = fmt.Fprintf(w, "box_scores\t%d\n", c.BoxScores)
	_, _ = fmt.Fprintf(w, "needs_sync\t%t\n", c.NeedsSync())
	_ = w.Flush()
}
