// Package local implements cache.Store as one JSON file per URL on the local
// filesystem.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/recipe-graph-crawler/internal/cache"
	"github.com/JakeFAU/recipe-graph-crawler/internal/hash/sha256"
)

// Config captures the parameters for the filesystem cache.
type Config struct {
	// BaseDir is the root directory where entries are stored.
	BaseDir string `mapstructure:"dir"`
}

// Store writes entries under BaseDir/responses.
type Store struct {
	dir    string
	hasher *sha256.Hasher
}

var _ cache.Store = (*Store)(nil)

// New validates the base directory, creating it when missing, and returns a
// Store rooted there.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	dir := filepath.Join(cfg.BaseDir, "responses")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	return &Store{dir: dir, hasher: sha256.New()}, nil
}

func (s *Store) path(url string) string {
	return filepath.Join(s.dir, s.hasher.Key(url)+".json")
}

// Get implements cache.Store.
func (s *Store) Get(_ context.Context, url string) (cache.Entry, bool, error) {
	data, err := os.ReadFile(s.path(url))
	if errors.Is(err, os.ErrNotExist) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cache.Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

// Put implements cache.Store. The entry is written to a temporary file and
// renamed so a reader never sees a partial entry.
func (s *Store) Put(_ context.Context, url string, entry cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(url)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

// Close implements cache.Store.
func (s *Store) Close() error {
	return nil
}
