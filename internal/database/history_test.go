package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/riskscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestResult builds a run with one document of each status.
func createTestResult() *model.AnalysisResult {
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	doc := &model.Document{ID: "acme_2024", Path: "in/acme_2024.txt", Year: 2024, Fingerprint: "abc123"}
	empty := &model.Document{ID: "beta", Path: "in/beta.txt", Year: 2025, Fingerprint: "def456"}

	return &model.AnalysisResult{
		InputDir:   "in",
		OutputDir:  "out",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Outcomes: []model.Outcome{
			model.NewSuccessOutcome(doc, model.RiskSection{Document: "acme_2024", Source: "risk_acme_2024.txt", Text: "Risks."}),
			model.NewEmptyOutcome(empty, "risk factors section not found"),
			model.NewFailedOutcome("in/broken.pdf", errors.New("malformed PDF")),
		},
		Words: []model.WordStat{
			{Word: "litigation", Frequency: 50, Compound: -0.4, Negative: 1, Document: "risk_acme_2024.txt"},
			{Word: "business", Frequency: 50, Document: "risk_acme_2024.txt", Neutral: 1},
		},
		Sentences: []model.SentenceRecord{
			{Sentence: "We face costly litigation risks.", Label: model.LabelNegative, Score: 0.9, Document: "risk_acme_2024.txt"},
		},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error when database does not exist")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveRun(context.Background(), createTestResult()); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after reopen, got %d", len(runs))
		}
	})
}

// TestDefaultOptions tests the default option values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists || !opts.EnableWAL {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

// TestSaveAndGetRun tests storing and restoring a run.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, createTestResult())
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected stored run")
	}
	if got.RunID != id || got.InputDir != "in" || got.OutputDir != "out" {
		t.Errorf("unexpected run %+v", got)
	}
	if len(got.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got.Outcomes))
	}
	want := []model.OutcomeStatus{model.OutcomeSuccess, model.OutcomeEmpty, model.OutcomeFailed}
	for i, o := range got.Outcomes {
		if o.Status != want[i] {
			t.Errorf("outcome %d status = %v, want %v", i, o.Status, want[i])
		}
	}
	if len(got.Words) != 2 || len(got.Sentences) != 1 {
		t.Errorf("unexpected pools: %d words, %d sentences", len(got.Words), len(got.Sentences))
	}
	if got.Outcomes[0].Section.Text != "" {
		t.Error("section text should not be stored")
	}

	missing, err := db.GetRun(ctx, id+100)
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing run, got %v, %v", missing, err)
	}
}

// TestSaveRun_Nil tests that a nil result is rejected.
func TestSaveRun_Nil(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := db.SaveRun(context.Background(), nil); err == nil {
		t.Error("expected error for nil result")
	}
}

// TestListRuns tests listing run metadata.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for range 3 {
		if _, err := db.SaveRun(ctx, createTestResult()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Error("runs should be listed most recent first")
	}

	m := runs[0]
	if m.Documents != 3 || m.Extracted != 1 || m.Empty != 1 || m.Failed != 1 {
		t.Errorf("unexpected counters %+v", m)
	}
	if m.Words != 2 || m.Sentences != 1 {
		t.Errorf("unexpected pool sizes %+v", m)
	}
	if m.Duration() != 2*time.Second {
		t.Errorf("Duration() = %v, want 2s", m.Duration())
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(limited))
	}
}

// TestDocuments tests document outcome queries.
func TestDocuments(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.SaveRun(ctx, createTestResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.SaveRun(ctx, createTestResult())
	if err != nil {
		t.Fatal(err)
	}

	docs, err := db.GetRunDocuments(ctx, first)
	if err != nil {
		t.Fatalf("GetRunDocuments() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].Path != "in/acme_2024.txt" || docs[0].Year != 2024 || docs[0].Status != model.OutcomeSuccess {
		t.Errorf("unexpected first document %+v", docs[0])
	}
	if docs[2].Path != "in/broken.pdf" || docs[2].Status != model.OutcomeFailed || docs[2].Reason != "malformed PDF" {
		t.Errorf("unexpected failed document %+v", docs[2])
	}

	found, err := db.FindDocuments(ctx, "abc123")
	if err != nil {
		t.Fatalf("FindDocuments() error = %v", err)
	}
	if len(found) != 2 || found[0].RunID != second || found[1].RunID != first {
		t.Errorf("unexpected fingerprint matches %+v", found)
	}

	none, err := db.FindDocuments(ctx, "")
	if err != nil || len(none) != 0 {
		t.Errorf("empty fingerprint should match nothing, got %v, %v", none, err)
	}
}

// TestNegativeWords tests the stored word head of a run.
func TestNegativeWords(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, createTestResult())
	if err != nil {
		t.Fatal(err)
	}

	words, err := db.GetNegativeWords(ctx, id)
	if err != nil {
		t.Fatalf("GetNegativeWords() error = %v", err)
	}
	if len(words) != 2 || words[0].Word != "litigation" {
		t.Errorf("unexpected words %+v", words)
	}
}

// TestDeleteRun tests removing a run.
func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, createTestResult())
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := db.DeleteRun(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("DeleteRun() = %v, %v", deleted, err)
	}
	if got, _ := db.GetRun(ctx, id); got != nil {
		t.Error("run should be gone")
	}
	if docs, _ := db.GetRunDocuments(ctx, id); len(docs) != 0 {
		t.Error("documents should be gone")
	}

	deleted, err = db.DeleteRun(ctx, id)
	if err != nil || deleted {
		t.Errorf("second delete should report false, got %v, %v", deleted, err)
	}
}

// TestParseTimestamp tests parsing of SQLite timestamp formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		zero  bool
	}{
		{"2025-03-14T09:00:00.123456Z", false},
		{"2025-03-14T09:00:00Z", false},
		{"2025-03-14 09:00:00", false},
		{"not a time", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
