package history

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to dsn and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			target TEXT NOT NULL,
			tool TEXT NOT NULL,
			overlap_mode TEXT NOT NULL,
			potential INTEGER NOT NULL,
			applied INTEGER NOT NULL,
			fix_percent DOUBLE PRECISION NOT NULL,
			counts JSONB NOT NULL,
			report JSONB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Save inserts rec and sets its ID.
func (s *PostgresStore) Save(rec *Record) error {
	counts, report, err := encode(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO runs (created_at, target, tool, overlap_mode, potential, applied, fix_percent, counts, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err = s.db.QueryRow(query,
		rec.CreatedAt, rec.Target, rec.Tool, rec.OverlapMode,
		rec.Report.Fixes.Potential, rec.Report.Fixes.Fixed, rec.Report.Fixes.Percent,
		counts, report,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *PostgresStore) List(limit int) ([]Record, error) {
	query := `SELECT id, created_at, target, tool, overlap_mode, counts::text, report::text FROM runs ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
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
