// Package diagnostics collects the semantic warnings enumerated in the
// error-handling design: void elements with children or inline content,
// hash-splat attributes, unknown filters, a tag carrying both inline
// text and nested children, and unknown AST node kinds. None of these
// abort conversion; they are gathered here so both a library caller
// (structured slice) and a terminal user (stderr) learn about them.
package diagnostics

import (
	"fmt"
	"os"
	"sync"

	"github.com/logrusorgru/aurora"
)

// Kind enumerates the closed set of semantic warning conditions.
type Kind string

const (
	VoidElementWithContent Kind = "void-element-with-content"
	HashSplatAttribute     Kind = "hash-splat-attribute"
	UnknownFilter          Kind = "unknown-filter"
	UnknownNodeKind        Kind = "unknown-node-kind"
	MixedTagContent        Kind = "mixed-tag-content"
)

// Warning is one recorded semantic warning.
type Warning struct {
	Kind    Kind
	Message string
	Line    int
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// Sink accumulates warnings during a single conversion and optionally
// mirrors them to stderr. Its warning list is guarded by a mutex; the
// directory driver still creates one Sink per file so each file's
// warnings stay separate.
type Sink struct {
	mu       sync.Mutex
	warnings []Warning
	Stderr   bool
	Color    bool
}

// NewSink creates a Sink that mirrors warnings to stderr when stderr is
// true, colorized when color is true.
func NewSink(stderr, color bool) *Sink {
	return &Sink{Stderr: stderr, Color: color}
}

// Warn records a warning and, if configured, writes it to stderr.
func (s *Sink) Warn(kind Kind, line int, format string, args ...interface{}) {
	w := Warning{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}

	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()

	if !s.Stderr {
		return
	}
	au := aurora.NewAurora(s.Color)
	fmt.Fprintf(os.Stderr, "%s %s\n", au.Yellow("warning:"), w.String())
}

// Warnings returns the warnings recorded so far, in recording order.
func (s *Sink) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}
