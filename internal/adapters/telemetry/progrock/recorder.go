// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/redo/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry using progrock.
// When a mirror writer is set, task output is also copied there, one prefixed line at a time.
type Recorder struct {
	w      progrock.Writer
	rec    *progrock.Recorder
	mirror io.Writer
	mu     sync.Mutex
}

// New creates a new Recorder with a default tape, mirroring task output to stdout.
func New() *Recorder {
	return NewRecorder(progrock.NewTape(), os.Stdout)
}

// NewRecorder creates a new Recorder with the given writer. mirror may be nil.
func NewRecorder(w progrock.Writer, mirror io.Writer) *Recorder {
	return &Recorder{
		w:      w,
		rec:    progrock.NewRecorder(w),
		mirror: mirror,
	}
}

// Record starts recording a new vertex for the named task.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := r.rec.Vertex(digest.FromString(name), name)
	vertex := &Vertex{vertex: v, stdout: v.Stdout(), stderr: v.Stderr()}
	if r.mirror != nil {
		vertex.mirrors = []*lineWriter{
			{prefix: name, out: r.mirror, mu: &r.mu},
			{prefix: name, out: r.mirror, mu: &r.mu},
		}
		vertex.stdout = io.MultiWriter(vertex.stdout, vertex.mirrors[0])
		vertex.stderr = io.MultiWriter(vertex.stderr, vertex.mirrors[1])
	}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
