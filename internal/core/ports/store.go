package ports

import "go.trai.ch/grid/internal/core/domain"

// CacheStore is the thin addressing layer over the cache backend. It has no
// eviction logic of its own; that is delegated to the backing storage.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get retrieves the entry for an exact fingerprint.
	// Returns nil, nil if not found.
	Get(key string) (*domain.CacheEntry, error)

	// GetPrefix retrieves the most recent entry whose key starts with the
	// given prefix. It backs the fallback lookup policy: the result is a
	// restore hint for warm-starting provisioning, never an exact hit.
	// Returns nil, nil if nothing matches.
	GetPrefix(prefix string) (*domain.CacheEntry, error)

	// Put stores the entry. Puts are atomic per key; last-writer-wins.
	Put(entry domain.CacheEntry) error
}
