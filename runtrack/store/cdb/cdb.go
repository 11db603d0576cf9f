package cdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the postgres driver with the database/sql package.
	_ "github.com/lib/pq"

	"github.com/mycok/kwScout/runtrack"
)

var (
	markCompleteQuery = `
					INSERT INTO completed_runs (industry, keyword, completed_at)
					VALUES ($1, $2, NOW())
					ON CONFLICT (industry, keyword)
					DO NOTHING
					`

	isCompleteQuery = "SELECT completed_at FROM completed_runs WHERE industry=$1 AND keyword=$2"
)

// Static and compile-time check to ensure CockroachDBTracker implements
// Tracker interface.
var _ runtrack.Tracker = (*CockroachDBTracker)(nil)

// CockroachDBTracker implements a persistent run-completion tracker
// using a CockroachDB instance.
type CockroachDBTracker struct {
	db *sql.DB
}

// NewCockroachDBTracker returns a CockroachDBTracker instance.
func NewCockroachDBTracker(dsn string) (*CockroachDBTracker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &CockroachDBTracker{db}, nil
}

// Close terminates the connection to the cockroachDB instance.
func (s *CockroachDBTracker) Close() error {
	return s.db.Close()
}

// IsComplete checks whether the run identified by the industry and
// keyword pair has already completed.
func (s *CockroachDBTracker) IsComplete(industry, keyword string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var completedAt time.Time

	err := s.db.QueryRowContext(
		ctx, isCompleteQuery, industry, keyword,
	).Scan(&completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}

		return false, fmt.Errorf("is complete: %w", err)
	}

	return true, nil
}

// MarkComplete records the run identified by the industry and keyword
// pair as completed. The completion time of an already-completed run is
// preserved.
func (s *CockroachDBTracker) MarkComplete(industry, keyword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, markCompleteQuery, industry, keyword); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}

	return nil
}
