package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/core/ports"
)

const (
	// HasherNodeID is the unique identifier for the manifest hasher node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// CollectorNodeID is the unique identifier for the artifact collector node.
	CollectorNodeID graft.ID = "adapter.fs.collector"
)

func init() {
	graft.Register(graft.Node[ports.ManifestHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ManifestHasher, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[ports.ArtifactCollector]{
		ID:        CollectorNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ArtifactCollector, error) {
			return NewCollector(), nil
		},
	})
}
