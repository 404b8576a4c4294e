package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	progrockadapter "go.trai.ch/grid/internal/adapters/telemetry/progrock"
	"go.trai.ch/grid/internal/core/ports"
)

// NodeID is the unique identifier for the telemetry adapter node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			// Rich progress is opt-in; CI logs stay plain by default.
			if os.Getenv("GRID_PROGRESS") == "rich" {
				return progrockadapter.New(), nil
			}
			return NewNoOp(), nil
		},
	})
}
