// Package haml parses the indentation-significant HAML markup language
// into a typed abstract syntax tree.
//
// HAML parsing is treated by the conversion pipeline as an externally
// supplied library (see the top-level convert package); this package is
// that library's concrete implementation, since no third-party Go HAML
// parser exists in the ecosystem. The AST shape mirrors the field names
// the rest of this module consumes: Attributes, DynamicAttributes.Old/New,
// ObjectRef, Value, Parse, SelfClosing, Name, Line, Text, Keyword.
package haml

import "fmt"

// Kind identifies the payload shape of a Node.
type Kind int

const (
	KindRoot Kind = iota
	KindTag
	KindScript
	KindSilentScript
	KindFilter
	KindDoctype
	KindComment
	KindPlain
	KindHamlComment
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindTag:
		return "tag"
	case KindScript:
		return "script"
	case KindSilentScript:
		return "silent_script"
	case KindFilter:
		return "filter"
	case KindDoctype:
		return "doctype"
	case KindComment:
		return "comment"
	case KindPlain:
		return "plain"
	case KindHamlComment:
		return "haml_comment"
	default:
		return "unknown"
	}
}

// DynamicAttributes holds the two raw hash-literal expression fragments
// a tag may carry: the HAML "old" `(key=val)` form (normalized by the
// parser into an equivalent hash-literal string) and the "new"
// `{key: val}` form. Either may be empty.
type DynamicAttributes struct {
	Old string
	New string
}

// IsEmpty reports whether neither form is present.
func (d *DynamicAttributes) IsEmpty() bool {
	return d == nil || (d.Old == "" && d.New == "")
}

// Node is one element of the HAML AST.
type Node struct {
	Kind Kind
	Line int

	// tag
	Name              string
	Attributes        map[string]string // already-resolved static string->string pairs, including folded shorthand class/id
	DynamicAttributes *DynamicAttributes
	ObjectRef         string // raw bracket text, e.g. `@item, :row`; empty means absent
	HasObjectRef      bool
	Value             string
	Parse             bool
	SelfClosing       bool

	// script, silent_script
	Text    string
	Keyword string // one of the control-flow opener keywords, or "" if absent

	// filter
	FilterName string

	// doctype
	DoctypeType     string
	DoctypeEncoding string

	// comment
	CommentCondition string // bracketed `/[if ...]` condition text, or ""

	Children []*Node
}

// NewNode allocates a Node of the given kind at the given source line.
func NewNode(kind Kind, line int) *Node {
	return &Node{Kind: kind, Line: line}
}

// SyntaxError is raised by Parse when the HAML source cannot be parsed.
// It carries the offending line number when known.
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
