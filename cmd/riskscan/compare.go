package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
	"github.com/nao1215/riskscan/internal/model"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <old-run-id> <new-run-id>",
		Short: "Compare the negative vocabulary of two recorded runs",
		Long: `Compare shows how the most negative words changed between two runs
recorded in the history database:
- Words that entered the list
- Words that dropped out of the list
- Words whose negative score changed

Use 'riskscan history' to find run IDs.

Examples:
  # Compare run 4 with run 7
  riskscan compare 4 7

  # Output the comparison as Markdown or JSON
  riskscan compare --markdown 4 7
  riskscan compare --json 4 7`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// WordChange describes how one word's negative score moved between runs.
type WordChange struct {
	Word     string  `json:"word"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
}

// Delta returns the score change.
func (c WordChange) Delta() float64 {
	return c.Current - c.Previous
}

// RunComparison is the difference between two stored runs.
type RunComparison struct {
	PreviousRun  int64        `json:"previous_run"`
	CurrentRun   int64        `json:"current_run"`
	DocumentDiff int          `json:"document_diff"`
	WordDiff     int          `json:"word_diff"`
	SentenceDiff int          `json:"sentence_diff"`
	NewWords     []WordChange `json:"new_words"`
	DroppedWords []WordChange `json:"dropped_words"`
	ChangedWords []WordChange `json:"changed_words"`
	Unchanged    int          `json:"unchanged"`
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run ID %q", a)
		}
		ids[i] = id
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return fmt.Errorf("--json and --markdown cannot be used together")
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cmp, err := compareRuns(cmd.Context(), db, ids[0], ids[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	case markdownOutput:
		return writeComparisonMarkdown(out, cmp)
	default:
		writeComparisonText(out, cmp)
		return nil
	}
}

// compareRuns loads two runs and computes their difference.
func compareRuns(ctx context.Context, db *database.HistoryDB, previousID, currentID int64) (*RunComparison, error) {
	runs := make([]*model.AnalysisResult, 2)
	words := make([][]model.WordStat, 2)
	for i, id := range []int64{previousID, currentID} {
		r, err := db.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, fmt.Errorf("run %d not found", id)
		}
		runs[i] = r

		w, err := db.GetNegativeWords(ctx, id)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}

	cmp := diffWords(words[0], words[1])
	cmp.PreviousRun = previousID
	cmp.CurrentRun = currentID
	cmp.DocumentDiff = len(runs[1].Outcomes) - len(runs[0].Outcomes)
	cmp.WordDiff = len(runs[1].Words) - len(runs[0].Words)
	cmp.SentenceDiff = len(runs[1].Sentences) - len(runs[0].Sentences)
	return cmp, nil
}

// diffWords compares two negative word lists. A word appearing for several
// documents is represented by its highest negative score.
func diffWords(previous, current []model.WordStat) *RunComparison {
	prev := maxNegative(previous)
	curr := maxNegative(current)

	cmp := &RunComparison{}
	for word, score := range curr {
		old, ok := prev[word]
		switch {
		case !ok:
			cmp.NewWords = append(cmp.NewWords, WordChange{Word: word, Current: score})
		case old != score:
			cmp.ChangedWords = append(cmp.ChangedWords, WordChange{Word: word, Previous: old, Current: score})
		default:
			cmp.Unchanged++
		}
	}
	for word, score := range prev {
		if _, ok := curr[word]; !ok {
			cmp.DroppedWords = append(cmp.DroppedWords, WordChange{Word: word, Previous: score})
		}
	}

	byWord := func(a, b WordChange) int {
		if a.Word < b.Word {
			return -1
		}
		if a.Word > b.Word {
			return 1
		}
		return 0
	}
	slices.SortFunc(cmp.NewWords, byWord)
	slices.SortFunc(cmp.DroppedWords, byWord)
	slices.SortFunc(cmp.ChangedWords, byWord)
	return cmp
}

func maxNegative(stats []model.WordStat) map[string]float64 {
	m := make(map[string]float64, len(stats))
	for _, s := range stats {
		if v, ok := m[s.Word]; !ok || s.Negative > v {
			m[s.Word] = s.Negative
		}
	}
	return m
}

// formatDiff renders a signed count.
func formatDiff(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// writeComparisonText prints the comparison in human-readable format.
func writeComparisonText(out io.Writer, cmp *RunComparison) {
	fmt.Fprintf(out, "Run Comparison: #%d -> #%d\n\n", cmp.PreviousRun, cmp.CurrentRun)
	fmt.Fprintf(out, "  %-10s  %s\n", "Documents", formatDiff(cmp.DocumentDiff))
	fmt.Fprintf(out, "  %-10s  %s\n", "Words", formatDiff(cmp.WordDiff))
	fmt.Fprintf(out, "  %-10s  %s\n", "Sentences", formatDiff(cmp.SentenceDiff))

	if len(cmp.NewWords) > 0 {
		fmt.Fprintf(out, "\nNew negative words (%d):\n", len(cmp.NewWords))
		for _, w := range cmp.NewWords {
			fmt.Fprintf(out, "  + %-20s %.3f\n", w.Word, w.Current)
		}
	}
	if len(cmp.DroppedWords) > 0 {
		fmt.Fprintf(out, "\nDropped negative words (%d):\n", len(cmp.DroppedWords))
		for _, w := range cmp.DroppedWords {
			fmt.Fprintf(out, "  - %-20s %.3f\n", w.Word, w.Previous)
		}
	}
	if len(cmp.ChangedWords) > 0 {
		fmt.Fprintf(out, "\nChanged scores (%d):\n", len(cmp.ChangedWords))
		for _, w := range cmp.ChangedWords {
			fmt.Fprintf(out, "  ~ %-20s %.3f -> %.3f\n", w.Word, w.Previous, w.Current)
		}
	}
	fmt.Fprintf(out, "\n%d words unchanged\n", cmp.Unchanged)
}

// writeComparisonMarkdown prints the comparison as Markdown.
func writeComparisonMarkdown(out io.Writer, cmp *RunComparison) error {
	md := markdown.NewMarkdown(out)
	md.H1(fmt.Sprintf("Run Comparison: #%d -> #%d", cmp.PreviousRun, cmp.CurrentRun))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Change"},
		Rows: [][]string{
			{"Documents", formatDiff(cmp.DocumentDiff)},
			{"Words", formatDiff(cmp.WordDiff)},
			{"Sentences", formatDiff(cmp.SentenceDiff)},
		},
	})
	md.PlainText("")

	if len(cmp.NewWords) > 0 {
		md.H2(fmt.Sprintf("New Negative Words (%d)", len(cmp.NewWords)))
		md.PlainText("")
		items := make([]string, len(cmp.NewWords))
		for i, w := range cmp.NewWords {
			items[i] = fmt.Sprintf("%s (%.3f)", markdown.Bold(w.Word), w.Current)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if len(cmp.DroppedWords) > 0 {
		md.H2(fmt.Sprintf("Dropped Negative Words (%d)", len(cmp.DroppedWords)))
		md.PlainText("")
		items := make([]string, len(cmp.DroppedWords))
		for i, w := range cmp.DroppedWords {
			items[i] = fmt.Sprintf("%s (%.3f)", "~~"+w.Word+"~~", w.Previous)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if len(cmp.ChangedWords) > 0 {
		md.H2(fmt.Sprintf("Changed Scores (%d)", len(cmp.ChangedWords)))
		md.PlainText("")
		rows := make([][]string, len(cmp.ChangedWords))
		for i, w := range cmp.ChangedWords {
			rows[i] = []string{w.Word, fmt.Sprintf("%.3f", w.Previous), fmt.Sprintf("%.3f", w.Current), fmt.Sprintf("%+.3f", w.Delta())}
		}
		md.Table(markdown.TableSet{Header: []string{"Word", "Previous", "Current", "Change"}, Rows: rows})
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText(markdown.Italic(fmt.Sprintf("%d words unchanged", cmp.Unchanged)))
	return md.Build()
}
