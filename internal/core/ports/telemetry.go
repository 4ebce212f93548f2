package ports

import (
	"context"
	"io"

	"go.trai.ch/redo/internal/core/domain"
)

// Telemetry records the progress of tasks within a run.
type Telemetry interface {
	// Record starts a vertex for the named task.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is the recorded progress of a single task.
type Vertex interface {
	// Stdout returns a writer capturing the task's standard output.
	Stdout() io.Writer
	// Stderr returns a writer capturing the task's error output.
	Stderr() io.Writer
	// Log records a message associated with this vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
	// Cached marks the vertex as up to date.
	Cached()
}

type vertexKey struct{}

// ContextWithVertex returns a context carrying the vertex.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex stored in ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
