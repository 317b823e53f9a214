package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
	"github.com/nao1215/riskscan/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect recorded analysis runs",
		Long: `History reads the runs recorded by 'riskscan analyze' from the history
database in the XDG data directory.

Examples:
  # List the most recent runs
  riskscan history

  # Show the summary of run 3
  riskscan history --show 3

  # Show run 3 as JSON
  riskscan history --show 3 --json

  # List every run that analyzed a filing with this fingerprint
  riskscan history --fingerprint 4f2a...

  # Delete run 3
  riskscan history --delete 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("show", "s", 0, "Show the summary of the run with this ID")
	cmd.Flags().Int64("delete", 0, "Delete the run with this ID")
	cmd.Flags().String("fingerprint", "", "List runs that analyzed a filing with this fingerprint")
	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Maximum number of runs to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false, "Print the run as JSON (with --show)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	show, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	del, err := flags.GetInt64("delete")
	if err != nil {
		return err
	}
	fingerprint, err := flags.GetString("fingerprint")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	if show < 0 || del < 0 {
		return errors.New("run ID must be positive")
	}
	if show > 0 && del > 0 {
		return errors.New("--show and --delete cannot be used together")
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case show > 0:
		return showRun(ctx, out, db, show, jsonOutput)
	case del > 0:
		return deleteRun(ctx, out, db, del)
	case fingerprint != "":
		return listDocumentRuns(ctx, out, db, fingerprint)
	default:
		return listRuns(ctx, out, db, limit)
	}
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'riskscan analyze <input-dir>' to analyze filings.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-9s  %-9s  %-7s  %-9s  %s\n",
		"ID", "Date", "Documents", "Extracted", "Words", "Sentences", "Input")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-9d  %-9d  %-7d  %-9d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Documents,
			r.Extracted,
			r.Words,
			r.Sentences,
			r.InputDir,
		)
	}
	fmt.Fprintln(out, "\nUse 'riskscan history --show <id>' to see a run.")

	return nil
}

// showRun prints one stored run.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64, jsonOutput bool) error {
	result, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("run %d not found", id)
	}

	if jsonOutput {
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion())).Write(result)
		return err
	}

	fmt.Fprintf(out, "Run #%d (%s)\n", id, result.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Output: %s\n", result.OutputDir)
	_, err = report.NewSimpleWriter(out, report.WithVerbose(true)).Write(result)
	return err
}

// deleteRun removes one stored run.
func deleteRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64) error {
	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("run %d not found", id)
	}
	fmt.Fprintf(out, "Deleted run #%d\n", id)
	return nil
}

// listDocumentRuns prints every stored outcome of a filing.
func listDocumentRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, fingerprint string) error {
	docs, err := db.FindDocuments(ctx, fingerprint)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintf(out, "No runs found for fingerprint %s\n", fingerprint)
		return nil
	}

	fmt.Fprintf(out, "Runs that analyzed %s (%d):\n\n", fingerprint, len(docs))
	fmt.Fprintf(out, "  %-6s  %-8s  %s\n", "Run", "Status", "Path")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, d := range docs {
		fmt.Fprintf(out, "  %-6d  %-8s  %s\n", d.RunID, d.Status, d.Path)
	}

	return nil
}
