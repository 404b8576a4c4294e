package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/adapters/fs"
	"go.trai.ch/grid/internal/adapters/logger"
	"go.trai.ch/grid/internal/adapters/shell"
	"go.trai.ch/grid/internal/adapters/telemetry"
	"go.trai.ch/grid/internal/core/ports"
)

// NodeID is the unique identifier for the executor node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, fs.CollectorNodeID, logger.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (*Executor, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			collector, err := graft.Dep[ports.ArtifactCollector](ctx)
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
			return New(runner, collector, log, tel), nil
		},
	})
}
