package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is the SQLite-backed state store. All access is serialized.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, foundation.FileSystemError("create state directory").WithCause(err).WithContext("path", path).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS remote_cache (
		url TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		content_type TEXT,
		size INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS page_fingerprints (
		input_path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		warnings INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// CacheEntry indexes one remote file stored on disk.
type CacheEntry struct {
	URL         string
	Path        string
	ContentType string
	Size        int64
	FetchedAt   time.Time
}

// Fresh reports whether the entry is younger than maxAge at now.
func (e CacheEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.FetchedAt) < maxAge
}

// PutCacheEntry inserts or replaces the entry for e.URL.
func (s *Store) PutCacheEntry(ctx context.Context, e CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO remote_cache (url, path, content_type, size, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET path = excluded.path, content_type = excluded.content_type,
		 size = excluded.size, fetched_at = excluded.fetched_at`,
		e.URL, e.Path, e.ContentType, e.Size, e.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

// CacheEntry returns the entry for url; ok is false when none exists.
func (s *Store) CacheEntry(ctx context.Context, url string) (CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e CacheEntry
	var contentType sql.NullString
	var fetched int64
	err := s.db.QueryRowContext(ctx,
		"SELECT url, path, content_type, size, fetched_at FROM remote_cache WHERE url = ?", url,
	).Scan(&e.URL, &e.Path, &contentType, &e.Size, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("query cache entry: %w", err)
	}
	e.ContentType = contentType.String
	e.FetchedAt = time.UnixMilli(fetched)
	return e, true, nil
}

// PruneCache removes entries fetched before cutoff and returns their paths so the
// caller can delete the files.
func (s *Store) PruneCache(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path FROM remote_cache WHERE fetched_at < ?", cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query stale entries: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan stale entry: %w", err)
		}
		paths = append(paths, p)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM remote_cache WHERE fetched_at < ?", cutoff.UnixMilli()); err != nil {
		return nil, fmt.Errorf("delete stale entries: %w", err)
	}
	return paths, nil
}
