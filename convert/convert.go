// Package convert is the top-level façade of the HAML-to-ERB pipeline:
// it parses HAML source, walks the resulting tree with the Tree
// Emitter, and exposes the conversion and validation operations as a
// single public API.
package convert

import (
	"fmt"

	"github.com/go-haml/haml2erb/diagnostics"
	"github.com/go-haml/haml2erb/erb"
	"github.com/go-haml/haml2erb/haml"
	"github.com/go-haml/haml2erb/validator"
)

// SyntaxError reports a HAML source that could not be parsed. It carries
// the line number (when known) and message of the parser's own error.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("haml syntax error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("haml syntax error: %s", e.Message)
}

// Options controls a single conversion.
type Options struct {
	// Warnings, if non-nil, receives semantic warnings recorded during
	// emission (void-element misuse, hash-splat attributes, unknown
	// filters, unknown node kinds). If nil, a throwaway sink is used.
	Warnings *diagnostics.Sink
}

// Result is the outcome of a successful conversion.
type Result struct {
	ERB      string
	Warnings []diagnostics.Warning
}

// Convert parses haml source and renders it to ERB text. It returns a
// *SyntaxError if the source cannot be parsed, or an *interp.UnclosedError
// surfaced from the emitter if an interpolation is never closed.
func Convert(source string, opts Options) (Result, error) {
	root, err := haml.Parse(source)
	if err != nil {
		if se, ok := err.(*haml.SyntaxError); ok {
			return Result{}, &SyntaxError{Line: se.Line, Message: se.Message}
		}
		return Result{}, err
	}

	sink := opts.Warnings
	if sink == nil {
		sink = diagnostics.NewSink(false, false)
	}

	e := erb.NewEmitter(sink)
	out, err := e.Emit(root, 0)
	if err != nil {
		return Result{}, err
	}

	return Result{ERB: out, Warnings: sink.Warnings()}, nil
}

// Validate runs the ERB Validator over already-converted text.
func Validate(erbText string, cfg validator.Config) validator.Result {
	return validator.Validate(erbText, cfg)
}

// ConvertAndValidate converts source and validates the result in one
// call, as a `convert_and_validate` convenience wrapper.
func ConvertAndValidate(source string, opts Options, cfg validator.Config) (Result, validator.Result, error) {
	res, err := Convert(source, opts)
	if err != nil {
		return Result{}, validator.Result{}, err
	}
	return res, Validate(res.ERB, cfg), nil
}
