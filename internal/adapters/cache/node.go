package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/core/ports"
)

const NodeID graft.ID = "adapter.cache_store"

// DefaultPath is the cache store location relative to the working directory.
const DefaultPath = ".grid/cache.json"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			store, err := NewStore(DefaultPath)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
