package ports

import (
	"context"

	"go.trai.ch/grid/internal/core/domain"
)

// Provisioner materializes the matrix environments.
//
// Implementations are responsible for:
//   - Short-circuiting all install work on an exact fingerprint hit
//   - Warm-starting from a prefix restore hint (with full re-install)
//   - Keeping per-identifier failures independent: one identifier failing
//     must not abort provisioning of the others
//
// The returned slice holds one Environment per matrix identifier, each in a
// terminal status (Ready or Failed). The error return is reserved for
// whole-run problems such as an unreadable dependency manifest; individual
// provisioning failures surface as Status = Failed on their environment.
//
//go:generate go run go.uber.org/mock/mockgen -source=provisioner.go -destination=mocks/mock_provisioner.go -package=mocks
type Provisioner interface {
	ProvisionAll(ctx context.Context, cfg domain.PipelineConfig) ([]domain.Environment, error)
}
