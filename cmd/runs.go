package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/greenatlas/ecoserv/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded model run timings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initRunLog(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded.")
			return nil
		}

		formatRunList(os.Stdout, entries)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 50, "max number of runs to display")
	rootCmd.AddCommand(runsCmd)
}

// formatRunList writes a tabular list of run timings to w.
func formatRunList(out io.Writer, entries []runlog.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROJECT\tRUN\tMODEL\tDURATION\tRECORDED")
	_, _ = fmt.Fprintln(w, "-------\t---\t-----\t--------\t--------")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Project,
			e.RunTitle,
			e.Model,
			e.Duration.Round(time.Millisecond).String(),
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
