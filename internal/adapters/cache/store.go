// Package cache implements the fingerprint-addressed cache store.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore using a flat JSON file.
//
// The store is a thin addressing layer: it maps fingerprints to opaque
// payloads and knows nothing about eviction. Concurrent puts for the same
// fingerprint are expected to carry identical payloads, so last-writer-wins
// via an atomic rename is sufficient.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.CacheEntry
}

// NewStore creates a new CacheStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.CacheEntry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read cache store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal cache store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.Wrap(err, "failed to create directory for cache store")
	}

	// Write-then-rename keeps a concurrent reader from observing a torn file.
	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return zerr.Wrap(err, "failed to write cache store")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.Wrap(err, "failed to replace cache store")
	}

	return nil
}

// Get retrieves the entry for an exact fingerprint.
func (s *Store) Get(key string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// GetPrefix retrieves the most recent entry whose key starts with prefix.
// It exists for the fallback lookup: same matrix, different dependency
// manifest. The caller must treat the result as a restore hint only.
func (s *Store) GetPrefix(prefix string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *domain.CacheEntry
	for key, entry := range s.cache {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if newest == nil || entry.CreatedAt.After(newest.CreatedAt) {
			e := entry
			newest = &e
		}
	}
	return newest, nil
}

// Put stores the entry.
func (s *Store) Put(entry domain.CacheEntry) error {
	s.mu.Lock()
	s.cache[entry.Key] = entry
	s.mu.Unlock()

	return s.save()
}
