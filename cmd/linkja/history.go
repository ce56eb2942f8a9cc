package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkja/linkja-hashing-sub000/internal/config"
	"github.com/linkja/linkja-hashing-sub000/internal/database"
	"github.com/linkja/linkja-hashing-sub000/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past hashing runs",
		Long: `History lists hashing runs recorded on this machine, newest first.

The history holds run IDs, states, counts and output file names. It never
holds patient data, hashes or salts.

Examples:
  # List the 20 most recent runs
  linkja history

  # Show one run in detail
  linkja history --id 2f1a6d0e-8d4b-4c7e-9b1e-3a2f5c6d7e8f

  # Remove runs older than 90 days
  linkja history --prune 2160h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("id", "", "Show the run with this ID")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of runs to list (0 for all)")
	cmd.Flags().Duration("prune", 0, "Delete runs older than this duration")
	cmd.Flags().String("format", config.DefaultReportFormat, "Output format: text, json or markdown")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	runID, err := flags.GetString("id")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	prune, err := flags.GetDuration("prune")
	if err != nil {
		return err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil //nolint:nilerr // A missing database means no runs yet
	}
	defer db.Close()

	ctx := cmd.Context()

	if prune > 0 {
		n, err := db.DeleteRunsBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s).\n", n)
		return nil
	}

	if runID != "" {
		summary, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		_, err = w.Write(summary)
		return err
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(runs)
	return err
}
