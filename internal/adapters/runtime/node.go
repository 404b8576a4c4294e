package runtime

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/adapters/cache"
	"go.trai.ch/grid/internal/adapters/fs"
	"go.trai.ch/grid/internal/adapters/logger"
	"go.trai.ch/grid/internal/adapters/shell"
	"go.trai.ch/grid/internal/adapters/telemetry"
	"go.trai.ch/grid/internal/core/ports"
)

// NodeID is the unique identifier for the provisioner node.
const NodeID graft.ID = "adapter.provisioner"

func init() {
	graft.Register(graft.Node[ports.Provisioner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, cache.NodeID, fs.HasherNodeID, logger.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (ports.Provisioner, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.ManifestHasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return New(runner, store, hasher, log, tel), nil
		},
	})
}
