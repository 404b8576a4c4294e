// Package telemetry provides progress recording adapters.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/grid/internal/core/ports"
)

// NoOp is a no-op implementation of ports.Telemetry.
type NoOp struct{}

// NewNoOp creates a new NoOp recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a no-op vertex.
func (t *NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, &NoOpVertex{}
}

// Close does nothing.
func (t *NoOp) Close() error { return nil }

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Stdout returns a discarding writer.
func (v *NoOpVertex) Stdout() io.Writer { return io.Discard }

// Stderr returns a discarding writer.
func (v *NoOpVertex) Stderr() io.Writer { return io.Discard }

// Log does nothing.
func (v *NoOpVertex) Log(_ domain.LogLevel, _ string) {}

// Complete does nothing.
func (v *NoOpVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoOpVertex) Cached() {}
