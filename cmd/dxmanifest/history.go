package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/dxmanifest/internal/config"
	"github.com/nao1215/dxmanifest/internal/database"
	"github.com/nao1215/dxmanifest/internal/model"
	"github.com/nao1215/dxmanifest/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List previous builds",
		Long: `History lists the builds recorded in the history database, newest first.

With a run ID, the full summary of that run is printed instead.

Examples:
  # List the last 20 builds
  dxmanifest history

  # List every build as JSON
  dxmanifest history --limit 0 --json

  # Show the summary of run 12
  dxmanifest history 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().String("history-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no build history: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q", args[0])
		}
		summary, err := db.GetRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		if asJSON {
			_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).Write(summary)
		} else {
			_, err = report.NewSimpleWriter(out, report.WithVerbose(true)).Write(summary)
		}
		return err
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON {
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteList(runs)
		return err
	}

	printHistory(out, runs)
	return nil
}

// printHistory prints runs as a table.
func printHistory(out io.Writer, runs []*model.Summary) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No builds recorded")
		return
	}

	fmt.Fprintf(out, "Build history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-12s  %6s  %6s  %6s  %-8s  %s\n",
		"ID", "Date", "Dataset", "Rows", "Pos", "Neg", "Status", "Manifest")

	for _, r := range runs {
		status := "ok"
		if r.Failed() {
			status = "failed"
		}
		dataset := r.Dataset
		if dataset == "" {
			dataset = "-"
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %-12s  %6d  %6d  %6d  %-8s  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			dataset,
			r.RowsWritten,
			r.Positive,
			r.Negative,
			status,
			r.OutputPath,
		)
	}
}
