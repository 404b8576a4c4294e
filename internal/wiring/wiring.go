// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/grid/internal/adapters/cache"
	_ "go.trai.ch/grid/internal/adapters/config"
	_ "go.trai.ch/grid/internal/adapters/fs"
	_ "go.trai.ch/grid/internal/adapters/logger"
	_ "go.trai.ch/grid/internal/adapters/report"
	_ "go.trai.ch/grid/internal/adapters/runtime"
	_ "go.trai.ch/grid/internal/adapters/shell"
	_ "go.trai.ch/grid/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/grid/internal/app"
	_ "go.trai.ch/grid/internal/engine/scheduler"
)
