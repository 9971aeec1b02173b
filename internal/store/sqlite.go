package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jobscout-za/jobscout/internal/model"
)

var (
	_ model.SeenStore   = (*SQLiteStore)(nil)
	_ model.RunRecorder = (*SQLiteStore)(nil)
)

// SQLiteStore tracks seen listing fingerprints and watcher run history in a
// SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seen_listings (
		fingerprint TEXT PRIMARY KEY,
		first_seen  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_runs (
		id       TEXT PRIMARY KEY,
		search   TEXT NOT NULL,
		region   TEXT NOT NULL,
		location TEXT NOT NULL,
		listings INTEGER NOT NULL,
		new      INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		ran_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_runs_ran_at ON search_runs (ran_at)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// HasSeen returns true if the fingerprint has already been recorded.
func (s *SQLiteStore) HasSeen(fingerprint string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_listings WHERE fingerprint = ?", fingerprint).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", fingerprint, err)
	}
	return true, nil
}

// MarkSeen records a fingerprint as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(fingerprint string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO seen_listings (fingerprint, first_seen) VALUES (?, ?)",
		fingerprint, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("marking %s as seen: %w", fingerprint, err)
	}
	return nil
}

// Cleanup deletes seen entries and run history older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).Unix()
	if _, err := s.db.Exec("DELETE FROM seen_listings WHERE first_seen < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up seen listings older than %v: %w", olderThan, err)
	}
	if _, err := s.db.Exec("DELETE FROM search_runs WHERE ran_at < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up search runs older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no fingerprint has been recorded yet.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM seen_listings").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// RecordRun appends a watcher run. A missing ID or timestamp is filled in.
func (s *SQLiteStore) RecordRun(run model.SearchRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RanAt.IsZero() {
		run.RanAt = s.now()
	}
	_, err := s.db.Exec(
		`INSERT INTO search_runs (id, search, region, location, listings, new, failures, ran_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Search, run.Region, run.Location, run.Listings, run.New, run.Failures, run.RanAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording run of %s: %w", run.Search, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]model.SearchRun, error) {
	rows, err := s.db.Query(
		`SELECT id, search, region, location, listings, new, failures, ran_at
		 FROM search_runs ORDER BY ran_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		var (
			r     model.SearchRun
			ranAt int64
		)
		if err := rows.Scan(&r.ID, &r.Search, &r.Region, &r.Location, &r.Listings, &r.New, &r.Failures, &ranAt); err != nil {
			return nil, fmt.Errorf("scanning search run: %w", err)
		}
		r.RanAt = time.Unix(ranAt, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
