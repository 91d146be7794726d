//go:build !debug

// Package debug provides build-tag gated tracing for the HAML→ERB
// pipeline. This file is the production build: every function is a
// no-op and is expected to be inlined away by the compiler.
package debug

// Log traces a single step of the conversion pipeline (parse, attrs,
// emit, ...). In production builds this is a no-op.
func Log(phase, message string, args ...interface{}) {
}

// LogWithData traces a step along with structured context. In
// production builds this is a no-op.
func LogWithData(phase, message string, data map[string]interface{}) {
}

// LogError traces a recoverable error condition encountered mid-pipeline.
// In production builds this is a no-op.
func LogError(phase, message string, err error) {
}

// Enabled reports whether debug tracing is compiled in.
func Enabled() bool { return false }
