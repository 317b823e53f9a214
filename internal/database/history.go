package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/riskscan/internal/lexical"
	"github.com/nao1215/riskscan/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "riskscan.db"

// storedNegativeWords is the number of negative words kept per run.
const storedNegativeWords = 30

// HistoryDB provides SQLite-based storage for completed analysis runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- Runs store one completed analysis each
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		input_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		documents INTEGER NOT NULL,
		extracted INTEGER NOT NULL,
		empty INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		words INTEGER NOT NULL,
		sentences INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Documents track the outcome of every filing in a run
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		doc_id TEXT,
		year INTEGER,
		fingerprint TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		UNIQUE(run_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	CREATE INDEX IF NOT EXISTS idx_documents_fingerprint ON documents(fingerprint);

	-- Negative words keep the head of each run's word pool
	CREATE TABLE IF NOT EXISTS negative_words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		word TEXT NOT NULL,
		negative REAL NOT NULL,
		compound REAL NOT NULL,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_words_run ON negative_words(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed run and returns its ID.
// It satisfies the pipeline's history recorder.
func (h *HistoryDB) SaveRun(ctx context.Context, result *model.AnalysisResult) (id int64, err error) {
	if result == nil {
		return 0, errors.New("nil analysis result")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, input_dir, output_dir, documents, extracted, empty, failed, words, sentences, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		result.InputDir,
		result.OutputDir,
		len(result.Outcomes),
		result.Count(model.OutcomeSuccess),
		result.Count(model.OutcomeEmpty),
		result.Count(model.OutcomeFailed),
		len(result.Words),
		len(result.Sentences),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, o := range result.Outcomes {
		var docID, fingerprint string
		var year int
		if o.Document != nil {
			docID, fingerprint, year = o.Document.ID, o.Document.Fingerprint, o.Document.Year
		}
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO documents (run_id, path, doc_id, year, fingerprint, status, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO NOTHING
		`, id, o.Path, docID, year, fingerprint, o.Status.String(), o.Reason); err != nil {
			return 0, fmt.Errorf("failed to insert document: %w", err)
		}
	}

	for _, w := range lexical.TopNegative(result.Words, storedNegativeWords) {
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO negative_words (run_id, word, negative, compound, document)
		VALUES (?, ?, ?, ?, ?)
		`, id, w.Word, w.Negative, w.Compound, w.Document); err != nil {
			return 0, fmt.Errorf("failed to insert word: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunMetadata contains summary information about a stored run.
// It is used for listing runs without loading the full result.
type RunMetadata struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputDir  string
	Documents  int
	Extracted  int
	Empty      int
	Failed     int
	Words      int
	Sentences  int
}

// Duration returns how long the run took.
func (m RunMetadata) Duration() time.Duration {
	return m.FinishedAt.Sub(m.StartedAt)
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, started_at, finished_at, input_dir, output_dir, documents, extracted, empty, failed, words, sentences
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var m RunMetadata
		var started, finished string
		if err := rows.Scan(&m.ID, &started, &finished, &m.InputDir, &m.OutputDir,
			&m.Documents, &m.Extracted, &m.Empty, &m.Failed, &m.Words, &m.Sentences); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		m.StartedAt = parseTimestamp(started)
		m.FinishedAt = parseTimestamp(finished)
		runs = append(runs, m)
	}

	return runs, rows.Err()
}

// GetRun retrieves a stored run by its ID. It returns nil without error
// when the run does not exist.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.AnalysisResult, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx, "SELECT result_json FROM runs WHERE id = ?", id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	result.RunID = id
	for i := range result.Outcomes {
		result.Outcomes[i].Status = model.ParseOutcomeStatus(result.Outcomes[i].StatusText)
	}

	return &result, nil
}

// DocumentRecord is a stored document outcome.
type DocumentRecord struct {
	RunID       int64
	Path        string
	DocumentID  string
	Year        int
	Fingerprint string
	Status      model.OutcomeStatus
	Reason      string
}

// GetRunDocuments returns the document outcomes of a run in path order.
func (h *HistoryDB) GetRunDocuments(ctx context.Context, runID int64) ([]DocumentRecord, error) {
	return h.queryDocuments(ctx, "WHERE run_id = ? ORDER BY path", runID)
}

// FindDocuments returns every stored outcome of a document with the given
// fingerprint, most recent run first.
func (h *HistoryDB) FindDocuments(ctx context.Context, fingerprint string) ([]DocumentRecord, error) {
	if fingerprint == "" {
		return nil, nil
	}
	return h.queryDocuments(ctx, "WHERE fingerprint = ? ORDER BY run_id DESC", fingerprint)
}

func (h *HistoryDB) queryDocuments(ctx context.Context, where string, args ...any) ([]DocumentRecord, error) {
	query := `
	SELECT run_id, path, doc_id, year, fingerprint, status, reason
	FROM documents
	` + where

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var r DocumentRecord
		var docID, fingerprint, reason sql.NullString
		var year sql.NullInt64
		var status string
		if err := rows.Scan(&r.RunID, &r.Path, &docID, &year, &fingerprint, &status, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		r.DocumentID = docID.String
		r.Year = int(year.Int64)
		r.Fingerprint = fingerprint.String
		r.Reason = reason.String
		r.Status = model.ParseOutcomeStatus(status)
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetNegativeWords returns the stored most negative words of a run.
func (h *HistoryDB) GetNegativeWords(ctx context.Context, runID int64) ([]model.WordStat, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT word, negative, compound, document
	FROM negative_words
	WHERE run_id = ?
	ORDER BY negative DESC, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var stats []model.WordStat
	for rows.Next() {
		var s model.WordStat
		if err := rows.Scan(&s.Word, &s.Negative, &s.Compound, &s.Document); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// DeleteRun removes a run and its documents and words.
// It reports whether a run was deleted.
func (h *HistoryDB) DeleteRun(ctx context.Context, id int64) (bool, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM documents WHERE run_id = ?",
		"DELETE FROM negative_words WHERE run_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return false, fmt.Errorf("failed to delete run data: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
