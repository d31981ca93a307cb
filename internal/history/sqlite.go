package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		target TEXT NOT NULL,
		tool TEXT NOT NULL,
		overlap_mode TEXT NOT NULL,
		potential INTEGER NOT NULL,
		applied INTEGER NOT NULL,
		fix_percent REAL NOT NULL,
		counts TEXT NOT NULL,
		report TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts rec and sets its ID.
func (s *SQLiteStore) Save(rec *Record) error {
	counts, report, err := encode(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO runs (created_at, target, tool, overlap_mode, potential, applied, fix_percent, counts, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query,
		rec.CreatedAt, rec.Target, rec.Tool, rec.OverlapMode,
		rec.Report.Fixes.Potential, rec.Report.Fixes.Fixed, rec.Report.Fixes.Percent,
		counts, report,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *SQLiteStore) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, created_at, target, tool, overlap_mode, counts, report FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var (
			rec            Record
			counts, report string
		)
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Target, &rec.Tool, &rec.OverlapMode, &counts, &report); err != nil {
			return nil, err
		}
		if err := decode(&rec, counts, report); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
