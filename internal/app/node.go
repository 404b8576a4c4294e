package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/grid/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/grid/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/grid/internal/adapters/report" //nolint:depguard // Wired in app layer
	"go.trai.ch/grid/internal/adapters/runtime" //nolint:depguard // Wired in app layer
	"go.trai.ch/grid/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/grid/internal/core/ports"
	"go.trai.ch/grid/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			runtime.NodeID,
			scheduler.NodeID,
			report.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			provisioner, err := graft.Dep[ports.Provisioner](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[*scheduler.Executor](ctx)
			if err != nil {
				return nil, err
			}

			reporter, err := graft.Dep[ports.Reporter](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, provisioner, executor, reporter, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
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

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: tel,
	}, nil
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}
