package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tidystat/internal/tidy"
)

// Store persists analysis runs.
type Store interface {
	Close() error
	Save(rec *Record) error
	List(limit int) ([]Record, error)
}

// Record is one completed analysis run.
type Record struct {
	ID          int64                  `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Target      string                 `json:"target"`
	Tool        string                 `json:"tool"`
	OverlapMode string                 `json:"overlap_mode"`
	Counts      map[string]tidy.Counts `json:"counts"`
	Report      *tidy.Report           `json:"report"`
}

// NewRecord builds a record from a finished analysis.
func NewRecord(tool, target string, mode tidy.OverlapMode, a *tidy.Analysis) *Record {
	rec := &Record{
		CreatedAt:   time.Now().UTC(),
		Target:      target,
		Tool:        tool,
		OverlapMode: string(mode),
		Counts:      make(map[string]tidy.Counts, len(a.Results)),
		Report:      a.Report,
	}
	for _, res := range a.Results {
		c := res.Counts
		// Matched message text is kept in the output log, not the database.
		c.UnaryStrs, c.NonAssignmentStrs, c.AssignmentStrs = nil, nil, nil
		rec.Counts[res.Phase.Name] = c
	}
	return rec
}

// FixPercent is the share of potential replacements the real check applied.
func (r Record) FixPercent() float64 {
	if r.Report == nil {
		return 0
	}
	return r.Report.Fixes.Percent
}

// Open returns the store for dsn. postgres:// and postgresql:// URLs select
// PostgreSQL; anything else is a SQLite database path.
func Open(dsn string) (Store, error) {
	switch {
	case dsn == "":
		return nil, errors.New("history database is not configured")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStore(dsn)
	default:
		return NewSQLiteStore(dsn)
	}
}

// encode validates rec, stamps its creation time and returns the JSON
// columns.
func encode(rec *Record) (counts, report string, err error) {
	if rec == nil || rec.Report == nil {
		return "", "", errors.New("history record has no report")
	}
	c, err := json.Marshal(rec.Counts)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode counts: %w", err)
	}
	r, err := json.Marshal(rec.Report)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode report: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return string(c), string(r), nil
}

func decode(rec *Record, counts, report string) error {
	if err := json.Unmarshal([]byte(counts), &rec.Counts); err != nil {
		return fmt.Errorf("run %d: failed to decode counts: %w", rec.ID, err)
	}
	rec.Report = &tidy.Report{}
	if err := json.Unmarshal([]byte(report), rec.Report); err != nil {
		return fmt.Errorf("run %d: failed to decode report: %w", rec.ID, err)
	}
	return nil
}
