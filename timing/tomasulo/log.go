package tomasulo

import (
	"bufio"
	"fmt"
	"io"
)

// Logger receives one event per call: the cycle it occurred in, the
// operation name (the log stream's Operation column vocabulary), and a
// detail string (typically the instruction tag, or "<old> TO <new>" for a
// checkpoint advance).
type Logger interface {
	Log(cycle uint64, operation, detail string)
}

// NopLogger discards every event. It is the Engine's default logger so
// that running the engine never requires a writer.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(uint64, string, string) {}

// TSVLogger writes the human-readable cycle log: header
// CYCLE\tOPERATION\tINSTRUCTION followed by one row per event.
type TSVLogger struct {
	w           *bufio.Writer
	wroteHeader bool
}

// NewTSVLogger wraps w in a buffered TSV writer. Callers should Flush
// once the run has completed.
func NewTSVLogger(w io.Writer) *TSVLogger {
	return &TSVLogger{w: bufio.NewWriter(w)}
}

// Log implements Logger.
func (t *TSVLogger) Log(cycle uint64, operation, detail string) {
	if !t.wroteHeader {
		fmt.Fprintf(t.w, "CYCLE\tOPERATION\tINSTRUCTION\n")
		t.wroteHeader = true
	}
	fmt.Fprintf(t.w, "%d\t%s\t%s\n", cycle, operation, detail)
}

// Flush flushes any buffered log lines to the underlying writer.
func (t *TSVLogger) Flush() error {
	return t.w.Flush()
}
