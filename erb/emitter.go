// Package erb implements the Tree Emitter: it walks a HAML AST and
// produces the equivalent ERB text, dispatching per node kind and
// delegating attribute rendering and interpolation rewriting to the
// erb/attrs and erb/interp subpackages.
package erb

import (
	"fmt"
	"strings"

	"github.com/go-haml/haml2erb/diagnostics"
	"github.com/go-haml/haml2erb/erb/attrs"
	"github.com/go-haml/haml2erb/erb/interp"
	"github.com/go-haml/haml2erb/haml"
)

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

func isVoid(name string) bool {
	_, ok := voidElements[name]
	return ok
}

// Emitter walks a haml.Node tree and renders ERB text, recording
// semantic warnings (void-element misuse, unknown filters, unknown node
// kinds) on sink as it goes.
type Emitter struct {
	sink *diagnostics.Sink
}

// NewEmitter constructs an Emitter that records warnings on sink.
func NewEmitter(sink *diagnostics.Sink) *Emitter {
	return &Emitter{sink: sink}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// Emit renders node and its descendants at the given depth into a
// single string ending at a line boundary. It returns a non-nil error
// (an *interp.UnclosedError) if any interpolation region in node's
// text content is never closed; no partial or corrupt output is
// returned alongside that error.
func (e *Emitter) Emit(node *haml.Node, depth int) (string, error) {
	var sb strings.Builder
	if err := e.emitInto(&sb, node, depth); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (e *Emitter) emitChildren(sb *strings.Builder, children []*haml.Node, depth int) error {
	for _, c := range children {
		if err := e.emitInto(sb, c, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitInto(sb *strings.Builder, node *haml.Node, depth int) error {
	switch node.Kind {
	case haml.KindRoot:
		return e.emitChildren(sb, node.Children, depth)

	case haml.KindTag:
		return e.emitTag(sb, node, depth)

	case haml.KindScript:
		return e.emitScript(sb, node, depth)

	case haml.KindSilentScript:
		return e.emitSilentScript(sb, node, depth)

	case haml.KindFilter:
		return e.emitFilter(sb, node, depth)

	case haml.KindDoctype:
		e.emitDoctype(sb, node, depth)
		return nil

	case haml.KindComment:
		return e.emitComment(sb, node, depth)

	case haml.KindPlain:
		return e.emitPlain(sb, node, depth)

	case haml.KindHamlComment:
		// emits nothing
		return nil

	default:
		e.sink.Warn(diagnostics.UnknownNodeKind, node.Line, "unknown node kind %v", node.Kind)
		return nil
	}
}

func (e *Emitter) emitTag(sb *strings.Builder, node *haml.Node, depth int) error {
	attrString := attrs.Build(
		node.Attributes,
		dynOld(node), dynNew(node),
		node.ObjectRef, node.HasObjectRef,
		node.Line, e.sink,
	)
	v := isVoid(node.Name)

	sb.WriteString(indent(depth))
	sb.WriteString("<")
	sb.WriteString(node.Name)
	sb.WriteString(attrString)
	sb.WriteString(">")

	hasValue := node.Value != ""
	hasChildren := len(node.Children) > 0

	switch {
	case node.SelfClosing || (v && !hasChildren && !hasValue):
		sb.WriteString("\n")

	case hasValue:
		content, err := formatTagContent(node)
		if err != nil {
			return err
		}
		if v {
			e.sink.Warn(diagnostics.VoidElementWithContent, node.Line, "void element <%s> has inline content", node.Name)
			sb.WriteString("\n")
			sb.WriteString(indent(depth))
			sb.WriteString(content)
			sb.WriteString("\n")
			return nil
		}
		if hasChildren {
			e.sink.Warn(diagnostics.MixedTagContent, node.Line, "<%s> has both inline content and nested children; rendering both", node.Name)
			sb.WriteString(content)
			sb.WriteString("\n")
			if err := e.emitChildren(sb, node.Children, depth+1); err != nil {
				return err
			}
			sb.WriteString(indent(depth))
			sb.WriteString("</")
			sb.WriteString(node.Name)
			sb.WriteString(">\n")
			return nil
		}
		sb.WriteString(content)
		sb.WriteString("</")
		sb.WriteString(node.Name)
		sb.WriteString(">\n")

	case hasChildren:
		if v {
			e.sink.Warn(diagnostics.VoidElementWithContent, node.Line, "void element <%s> has children", node.Name)
			sb.WriteString("\n")
			return e.emitChildren(sb, node.Children, depth+1)
		}
		sb.WriteString("\n")
		if err := e.emitChildren(sb, node.Children, depth+1); err != nil {
			return err
		}
		sb.WriteString(indent(depth))
		sb.WriteString("</")
		sb.WriteString(node.Name)
		sb.WriteString(">\n")

	default:
		sb.WriteString("</")
		sb.WriteString(node.Name)
		sb.WriteString(">\n")
	}
	return nil
}

func dynOld(node *haml.Node) string {
	if node.DynamicAttributes == nil {
		return ""
	}
	return node.DynamicAttributes.Old
}

func dynNew(node *haml.Node) string {
	if node.DynamicAttributes == nil {
		return ""
	}
	return node.DynamicAttributes.New
}

// formatTagContent renders a tag's inline value: a parsed double-quoted
// interpolated string literal is unquoted with the limited escape rule
// and interpolation-scanned; a parsed expression emits `<%= value %>`;
// plain text is interpolation-scanned. An unclosed interpolation
// anywhere in the value is returned as an error, never silently
// dropped.
func formatTagContent(node *haml.Node) (string, error) {
	if node.Parse {
		if s, ok := unquoteInterpolated(node.Value); ok {
			scanned, err := interp.Convert(s)
			if err != nil {
				return "", err
			}
			return scanned, nil
		}
		return fmt.Sprintf("<%%= %s %%>", node.Value), nil
	}
	return interp.Convert(node.Value)
}

// unquoteInterpolated reports whether value is, in its entirety, a
// double-quoted string literal containing an interpolation, and if so
// returns its unquoted, minimally unescaped inner text. Only `\"` and
// `\\` are unescaped; any other escape sequence (`\n`, `\t`, `\u{...}`)
// passes through unchanged.
func unquoteInterpolated(value string) (string, bool) {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", false
	}
	inner := value[1 : len(value)-1]
	if !strings.Contains(inner, "#{") {
		return "", false
	}
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\') {
			sb.WriteByte(inner[i+1])
			i++
			continue
		}
		sb.WriteByte(inner[i])
	}
	return sb.String(), true
}

func (e *Emitter) emitScript(sb *strings.Builder, node *haml.Node, depth int) error {
	if len(node.Children) > 0 {
		sb.WriteString(indent(depth))
		sb.WriteString("<%= ")
		sb.WriteString(node.Text)
		sb.WriteString(" %>\n")
		if err := e.emitChildren(sb, node.Children, depth+1); err != nil {
			return err
		}
		sb.WriteString(indent(depth))
		sb.WriteString("<% end %>\n")
		return nil
	}

	if s, ok := unquoteInterpolated(node.Text); ok {
		scanned, err := interp.Convert(s)
		if err != nil {
			return err
		}
		sb.WriteString(indent(depth))
		sb.WriteString(scanned)
		sb.WriteString("\n")
		return nil
	}

	sb.WriteString(indent(depth))
	sb.WriteString("<%= ")
	sb.WriteString(node.Text)
	sb.WriteString(" %>\n")
	return nil
}

func (e *Emitter) emitSilentScript(sb *strings.Builder, node *haml.Node, depth int) error {
	sb.WriteString(indent(depth))
	sb.WriteString("<% ")
	sb.WriteString(node.Text)
	sb.WriteString(" %>\n")

	for _, c := range node.Children {
		childDepth := depth + 1
		if c.Kind == haml.KindSilentScript && haml.IsMidBlockContinuation(c.Text) {
			childDepth = depth
		}
		if err := e.emitInto(sb, c, childDepth); err != nil {
			return err
		}
	}

	if len(node.Children) == 0 {
		return nil
	}
	if needsEnd(node.Text, node.Keyword) {
		sb.WriteString(indent(depth))
		sb.WriteString("<% end %>\n")
	}
	return nil
}

func needsEnd(text, keyword string) bool {
	switch keyword {
	case "if", "unless", "case", "begin":
		return true
	}
	return haml.IsBlockOpener(text)
}

func (e *Emitter) emitFilter(sb *strings.Builder, node *haml.Node, depth int) error {
	lines := splitFilterLines(node.Text)

	switch node.FilterName {
	case "javascript":
		sb.WriteString(indent(depth))
		sb.WriteString("<script>\n")
		for _, l := range lines {
			scanned, err := interp.Convert(l)
			if err != nil {
				return err
			}
			sb.WriteString(indent(depth + 1))
			sb.WriteString(scanned)
			sb.WriteString("\n")
		}
		sb.WriteString(indent(depth))
		sb.WriteString("</script>\n")

	case "css":
		sb.WriteString(indent(depth))
		sb.WriteString("<style>\n")
		for _, l := range lines {
			scanned, err := interp.Convert(l)
			if err != nil {
				return err
			}
			sb.WriteString(indent(depth + 1))
			sb.WriteString(scanned)
			sb.WriteString("\n")
		}
		sb.WriteString(indent(depth))
		sb.WriteString("</style>\n")

	case "plain", "erb":
		for _, l := range lines {
			sb.WriteString(indent(depth))
			sb.WriteString(l)
			sb.WriteString("\n")
		}

	case "ruby":
		for _, l := range lines {
			if strings.TrimSpace(l) == "" {
				continue
			}
			sb.WriteString(indent(depth))
			sb.WriteString("<% ")
			sb.WriteString(l)
			sb.WriteString(" %>\n")
		}

	default:
		e.sink.Warn(diagnostics.UnknownFilter, node.Line, "unknown filter %q", node.FilterName)
		sb.WriteString(indent(depth))
		sb.WriteString("<!-- Unknown filter: ")
		sb.WriteString(node.FilterName)
		sb.WriteString(" -->\n")
		for _, l := range lines {
			sb.WriteString(indent(depth))
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	return nil
}

func splitFilterLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (e *Emitter) emitDoctype(sb *strings.Builder, node *haml.Node, depth int) {
	sb.WriteString(indent(depth))
	if node.DoctypeType == "xml" {
		encoding := node.DoctypeEncoding
		if encoding == "" {
			encoding = "UTF-8"
		}
		fmt.Fprintf(sb, `<?xml version="1.0" encoding="%s"?>`, encoding)
		sb.WriteString("\n")
		return
	}
	sb.WriteString("<!DOCTYPE html>\n")
}

// emitComment renders a `/` HTML comment, or, when the node carries a
// bracketed condition (`/[if IE]`), a conditional comment wrapping
// either its inline text or its rendered children.
func (e *Emitter) emitComment(sb *strings.Builder, node *haml.Node, depth int) error {
	if node.CommentCondition == "" {
		sb.WriteString(indent(depth))
		sb.WriteString("<!-- ")
		sb.WriteString(node.Text)
		sb.WriteString(" -->\n")
		return nil
	}

	sb.WriteString(indent(depth))
	fmt.Fprintf(sb, "<!--[%s]>", node.CommentCondition)
	if node.Text != "" {
		sb.WriteString(node.Text)
		sb.WriteString("<![endif]-->\n")
		return nil
	}
	sb.WriteString("\n")
	if err := e.emitChildren(sb, node.Children, depth+1); err != nil {
		return err
	}
	sb.WriteString(indent(depth))
	sb.WriteString("<![endif]-->\n")
	return nil
}

func (e *Emitter) emitPlain(sb *strings.Builder, node *haml.Node, depth int) error {
	scanned, err := interp.Convert(node.Text)
	if err != nil {
		return err
	}
	sb.WriteString(indent(depth))
	sb.WriteString(scanned)
	sb.WriteString("\n")
	return nil
}
