package rsx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger receives progress lines from the compile functions. Log writes a
// partial line, LogLine finishes one.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// StdoutLogger returns a logger that writes to stdout
func StdoutLogger() Logger {
	return WriterLogger(os.Stdout)
}

// WriterLogger returns a logger that writes to w. Writes are serialized so
// one logger can be shared between goroutines.
func WriterLogger(w io.Writer) Logger {
	return &streamLogger{out: w}
}

type streamLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *streamLogger) Log(values ...any) {
	s.mu.Lock()
	io.WriteString(s.out, spaced(values))
	s.mu.Unlock()
}

func (s *streamLogger) LogLine(values ...any) {
	s.mu.Lock()
	io.WriteString(s.out, spaced(values)+"\n")
	s.mu.Unlock()
}

// BufferedLogger keeps everything it is given in memory. It is safe for
// concurrent use.
type BufferedLogger struct {
	mu      sync.Mutex
	done    []string
	partial strings.Builder
}

// NewBufferedLogger creates an empty buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (b *BufferedLogger) Log(values ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partial.WriteString(spaced(values))
}

// LogLine ends the pending partial line, if any, with values
func (b *BufferedLogger) LogLine(values ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done = append(b.done, b.partial.String()+spaced(values))
	b.partial.Reset()
}

// String returns everything captured, pending partial line included
func (b *BufferedLogger) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, line := range b.done {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(b.partial.String())
	return sb.String()
}

// Lines returns a copy of the completed lines
func (b *BufferedLogger) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.done...)
}

// Reset drops all captured output
func (b *BufferedLogger) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done = b.done[:0]
	b.partial.Reset()
}

type discardLogger struct{}

func (discardLogger) Log(...any)     {}
func (discardLogger) LogLine(...any) {}

// NullLogger returns a logger that drops everything. It is the default.
func NullLogger() Logger {
	return discardLogger{}
}

// spaced joins values with single spaces, whatever their types.
func spaced(values []any) string {
	return strings.TrimSuffix(fmt.Sprintln(values...), "\n")
}
