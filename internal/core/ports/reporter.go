package ports

import (
	"context"

	"go.trai.ch/grid/internal/core/domain"
)

// Reporter publishes the run outcome to external collaborators: durable
// artifact storage and the coverage service. The report configuration is
// passed per call because it is part of the run declaration, not of the
// process.
//
// Reporting is fire-and-forget with respect to pipeline correctness. A
// returned error must be logged by the caller but never changes the overall
// verdict; it only affects visibility, not the "did tests pass" signal.
//
//go:generate go run go.uber.org/mock/mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	Publish(ctx context.Context, cfg domain.ReportConfig, outcome domain.PipelineOutcome, artifactDir string) error
}
