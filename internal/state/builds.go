package state

import (
	"context"
	"fmt"
	"time"
)

// keepBuilds bounds the build history table.
const keepBuilds = 50

// BuildRecord is one finished build.
type BuildRecord struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   string
	Pages     int
	Warnings  int
}

// RecordBuild stores r and trims the history to the most recent builds.
func (s *Store) RecordBuild(ctx context.Context, r BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO builds (build_id, started_at, duration_ms, outcome, pages, warnings) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Outcome, r.Pages, r.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"DELETE FROM builds WHERE build_id NOT IN (SELECT build_id FROM builds ORDER BY started_at DESC LIMIT ?)",
		keepBuilds,
	)
	if err != nil {
		return fmt.Errorf("trim builds: %w", err)
	}
	return nil
}

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, started_at, duration_ms, outcome, pages, warnings FROM builds ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		var r BuildRecord
		var started, ms int64
		if err := rows.Scan(&r.ID, &started, &ms, &r.Outcome, &r.Pages, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
