// Package sqlite implements cache.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JakeFAU/recipe-graph-crawler/internal/cache"
)

// FileName is the database file created inside the cache directory.
const FileName = "http_cache.sqlite"

const schema = `CREATE TABLE IF NOT EXISTS responses (
	url         TEXT PRIMARY KEY,
	final_url   TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	headers     TEXT NOT NULL,
	body        BLOB NOT NULL,
	stored_at   TEXT NOT NULL
)`

// Store is a cache.Store backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ cache.Store = (*Store)(nil)

// Open creates dir if needed and opens the cache database inside it.
func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	stmts := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		schema,
	}
	for _, stmt := range stmts {
		if _, execErr := db.ExecContext(ctx, stmt); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", stmt, execErr)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get implements cache.Store.
func (s *Store) Get(ctx context.Context, url string) (cache.Entry, bool, error) {
	var (
		entry    cache.Entry
		headers  string
		storedAt string
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT final_url, status_code, headers, body, stored_at FROM responses WHERE url = ?`, url)
	err := row.Scan(&entry.URL, &entry.StatusCode, &headers, &entry.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("query cached response: %w", err)
	}
	if headers != "" {
		var h http.Header
		if err := json.Unmarshal([]byte(headers), &h); err != nil {
			return cache.Entry{}, false, fmt.Errorf("decode cached headers: %w", err)
		}
		entry.Headers = h
	}
	if t, err := time.Parse(time.RFC3339Nano, storedAt); err == nil {
		entry.StoredAt = t
	}
	return entry, true, nil
}

// Put implements cache.Store. An existing entry for url is replaced.
func (s *Store) Put(ctx context.Context, url string, entry cache.Entry) error {
	headers, err := json.Marshal(entry.Headers)
	if err != nil {
		return fmt.Errorf("encode headers: %w", err)
	}
	body := entry.Body
	if body == nil {
		body = []byte{}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (url, final_url, status_code, headers, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			final_url = excluded.final_url,
			status_code = excluded.status_code,
			headers = excluded.headers,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		url, entry.URL, entry.StatusCode, string(headers), body, entry.StoredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
