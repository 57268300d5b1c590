// Package telemetry provides telemetry implementations that record nothing.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
)

var _ ports.Telemetry = NoOp{}

// NoOp is a ports.Telemetry that discards every vertex.
type NoOp struct{}

// Record returns ctx unchanged and a vertex that discards everything.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (NoOp) Close() error {
	return nil
}

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Log(_ domain.LogLevel, _ string) {}
func (noopVertex) Complete(_ error) {}
func (noopVertex) Cached() {}
