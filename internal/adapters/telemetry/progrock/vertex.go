package progrock

import (
	"fmt"
	"io"

	"github.com/vito/progrock"
	"go.trai.ch/grid/internal/core/domain"
)

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vr *progrock.VertexRecorder
}

// Stdout returns a writer to capture standard output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.vr.Stdout()
}

// Stderr returns a writer to capture error output stream.
func (v *Vertex) Stderr() io.Writer {
	return v.vr.Stderr()
}

// Log records a structured log message associated with this vertex. Warnings
// and errors go to the error stream so they stand out in the rendered tape.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	out := v.vr.Stdout()
	if level >= domain.LogLevelWarn {
		out = v.vr.Stderr()
	}
	_, _ = fmt.Fprintf(out, "[%s] %s\n", level.String(), msg)
}

// Complete marks the vertex as finished (successfully or with an error).
func (v *Vertex) Complete(err error) {
	v.vr.Done(err)
}

// Cached marks the vertex as a cache hit.
func (v *Vertex) Cached() {
	v.vr.Cached()
}
