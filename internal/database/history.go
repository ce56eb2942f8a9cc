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

	"github.com/linkja/linkja-hashing-sub000/internal/engine"
)

// FileName is the database file created inside the history directory.
const FileName = "history.db"

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores engine summaries for past runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// missing. When false, Open fails on a missing database.
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

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

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

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		state TEXT NOT NULL,
		site_id TEXT,
		project_id TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		input_records INTEGER DEFAULT 0,
		hashed_records INTEGER DEFAULT 0,
		invalid_records INTEGER DEFAULT 0,
		trusted INTEGER DEFAULT 0,
		error TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_site_project ON runs(site_id, project_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores s. Saving the same run ID twice replaces the earlier row.
func (h *HistoryDB) SaveRun(ctx context.Context, s *engine.Summary) error {
	if s == nil || s.RunID == "" {
		return errors.New("summary has no run ID")
	}

	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	var finished sql.NullString
	if !s.FinishedAt.IsZero() {
		finished = sql.NullString{String: s.FinishedAt.UTC().Format(timeLayout), Valid: true}
	}

	query := `
	INSERT INTO runs (run_id, state, site_id, project_id, started_at, finished_at,
		input_records, hashed_records, invalid_records, trusted, error, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		state = excluded.state,
		finished_at = excluded.finished_at,
		input_records = excluded.input_records,
		hashed_records = excluded.hashed_records,
		invalid_records = excluded.invalid_records,
		trusted = excluded.trusted,
		error = excluded.error,
		summary_json = excluded.summary_json
	`

	_, err = h.db.ExecContext(ctx, query,
		s.RunID,
		s.State,
		s.SiteID,
		s.ProjectID,
		s.StartedAt.UTC().Format(timeLayout),
		finished,
		s.InputRecords,
		s.HashedRecords,
		s.InvalidRecords,
		s.Trusted,
		s.Error,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun returns the stored summary for runID.
func (h *HistoryDB) GetRun(ctx context.Context, runID string) (*engine.Summary, error) {
	var summaryJSON string
	err := h.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE run_id = ?`, runID).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var s engine.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &s); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &s, nil
}

// RunMetadata is one row of the run list.
type RunMetadata struct {
	RunID          string
	State          string
	SiteID         string
	ProjectID      string
	StartedAt      time.Time
	FinishedAt     time.Time
	InputRecords   int
	HashedRecords  int
	InvalidRecords int
	Trusted        bool
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT run_id, state, site_id, project_id, started_at, finished_at,
		input_records, hashed_records, invalid_records, trusted
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta              RunMetadata
			siteID, projectID sql.NullString
			started           string
			finished          sql.NullString
		)
		if err := rows.Scan(&meta.RunID, &meta.State, &siteID, &projectID, &started, &finished,
			&meta.InputRecords, &meta.HashedRecords, &meta.InvalidRecords, &meta.Trusted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.SiteID = siteID.String
		meta.ProjectID = projectID.String
		meta.StartedAt = parseTimestamp(started)
		if finished.Valid {
			meta.FinishedAt = parseTimestamp(finished.String)
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// DeleteRunsBefore removes runs that started before t and returns how many
// were removed.
func (h *HistoryDB) DeleteRunsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, t.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return res.RowsAffected()
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
