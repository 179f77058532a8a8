package ui

import (
	"fmt"
	"io"
	"strings"
)

// VerboseTracer prints agent activity to the console, enabled by the
// --verbose flag.
type VerboseTracer struct {
	out io.Writer
}

// NewVerboseTracer creates a tracer writing to out.
func NewVerboseTracer(out io.Writer) *VerboseTracer {
	return &VerboseTracer{out: out}
}

// Trace prints one event line.
func (t *VerboseTracer) Trace(event string, keyvals ...any) {
	var sb strings.Builder
	sb.WriteString(event)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintln(t.out, traceStyle.Render(sb.String()))
}
