package state

import (
	"context"
	"fmt"
	"time"
)

// Fingerprints returns every stored page fingerprint keyed by input path.
func (s *Store) Fingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT input_path, fingerprint FROM page_fingerprints")
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, fp string
		if err := rows.Scan(&path, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		out[path] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// ReplaceFingerprints swaps the stored set for fps in one transaction.
func (s *Store) ReplaceFingerprints(ctx context.Context, fps map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM page_fingerprints"); err != nil {
		return fmt.Errorf("clear fingerprints: %w", err)
	}
	now := time.Now().UnixMilli()
	for path, fp := range fps {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO page_fingerprints (input_path, fingerprint, updated_at) VALUES (?, ?, ?)",
			path, fp, now,
		); err != nil {
			return fmt.Errorf("insert fingerprint %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// Changed compares current fingerprints with stored ones and returns the input
// paths that are new or different.
func Changed(previous, current map[string]string) []string {
	var out []string
	for path, fp := range current {
		if previous[path] != fp {
			out = append(out, path)
		}
	}
	return out
}
