// Package telemetry provides telemetry adapters that need no backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
)

var _ ports.Telemetry = NoOp{}

// NoOp is a ports.Telemetry that discards everything.
type NoOp struct{}

// Record returns a vertex that discards all output.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	v := noOpVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing.
func (NoOp) Close() error { return nil }

type noOpVertex struct{}

func (noOpVertex) Stdout() io.Writer           { return io.Discard }
func (noOpVertex) Stderr() io.Writer           { return io.Discard }
func (noOpVertex) Log(domain.LogLevel, string) {}
func (noOpVertex) Complete(error)              {}
func (noOpVertex) Cached()                     {}
