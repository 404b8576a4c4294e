package ports

import "go.trai.ch/grid/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline declaration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the declaration at the given path and returns the immutable
	// pipeline configuration.
	Load(path string) (*domain.PipelineConfig, error)
}
