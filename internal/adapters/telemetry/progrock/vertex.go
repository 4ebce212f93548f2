package progrock

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/redo/internal/core/domain"
)

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex  *progrock.VertexRecorder
	stdout  io.Writer
	stderr  io.Writer
	mirrors []*lineWriter
}

// Stdout returns a writer to capture standard output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.stdout
}

// Stderr returns a writer to capture error output stream.
func (v *Vertex) Stderr() io.Writer {
	return v.stderr
}

// Log records a message associated with this vertex.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	_, _ = fmt.Fprintf(v.stdout, "[%s] %s\n", level.String(), msg)
}

// Complete marks the vertex as finished, successfully or with an error.
func (v *Vertex) Complete(err error) {
	v.flush()
	v.vertex.Done(err)
}

// Cached marks the vertex as up to date.
func (v *Vertex) Cached() {
	v.flush()
	v.vertex.Cached()
}

func (v *Vertex) flush() {
	for _, m := range v.mirrors {
		m.Flush()
	}
}

// lineWriter copies complete lines to out as "[prefix] line".
// mu is shared by all writers of one Recorder so lines from parallel tasks never interleave.
type lineWriter struct {
	prefix string
	out    io.Writer
	mu     *sync.Mutex
	buf    bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := w.buf.Next(idx + 1)
		_, _ = fmt.Fprintf(w.out, "[%s] %s", w.prefix, line)
	}
	return len(p), nil
}

// Flush writes any buffered partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		_, _ = fmt.Fprintf(w.out, "[%s] %s\n", w.prefix, w.buf.String())
		w.buf.Reset()
	}
}
