package report

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/adapters/logger"
	"go.trai.ch/grid/internal/core/ports"
)

// NodeID is the unique identifier for the reporter node.
const NodeID graft.ID = "adapter.reporter"

func init() {
	graft.Register(graft.Node[ports.Reporter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Reporter, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
