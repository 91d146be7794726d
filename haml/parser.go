package haml

import (
	"strings"
)

// Parse parses HAML source into its AST root, per the data model
// described by the HAML AST types in this package. It returns a *SyntaxError (wrapped in the
// plain error interface) on malformed input.
func Parse(source string) (*Node, error) {
	root := NewNode(KindRoot, 0)

	lines := splitLines(source)

	type frame struct {
		indentW int
		node    *Node

		collectFilter    bool
		filterIndent     int
		filterBodyIndent int // indent width of the first body line; -1 until seen
		filterLines      []string

		collectIgnore bool
		ignoreIndent  int
	}

	stack := []*frame{{indentW: -1, node: root}}

	finalizeFilter := func(f *frame) {
		if f.collectFilter {
			f.node.Text = strings.Join(f.filterLines, "\n")
		}
	}

	popTo := func(w int) {
		for len(stack) > 1 && stack[len(stack)-1].indentW >= w {
			finalizeFilter(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}
	}

	// popAbove pops only frames strictly deeper than w, leaving a frame
	// at exactly w in place. Used for mid-block continuation lines
	// (else/elsif/when/rescue/ensure), which are written at the same
	// indentation as their opening if/case/begin but must nest as its
	// child in the AST so the emitter's single-`end` rule holds.
	popAbove := func(w int) {
		for len(stack) > 1 && stack[len(stack)-1].indentW > w {
			finalizeFilter(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}
	}

	for _, ln := range lines {
		top := stack[len(stack)-1]

		if strings.TrimSpace(ln.body) == "" {
			// blank lines never close a filter/ignore block and never
			// affect nesting
			if top.collectFilter {
				top.filterLines = append(top.filterLines, "")
			}
			continue
		}

		w := indentWidth(ln.indent)

		if top.collectFilter && w > top.filterIndent {
			if top.filterBodyIndent < 0 {
				top.filterBodyIndent = w
			}
			top.filterLines = append(top.filterLines, stripFilterIndent(ln.indent, top.filterBodyIndent)+ln.body)
			continue
		}
		if top.collectIgnore && w > top.ignoreIndent {
			continue
		}

		if isMidBlockContinuationLine(ln.body) {
			popAbove(w)
		} else {
			popTo(w)
		}
		top = stack[len(stack)-1]

		node, canHaveChildren, isFilter, isIgnore, err := parseLine(ln.body, ln.line)
		if err != nil {
			return nil, err
		}

		top.node.Children = append(top.node.Children, node)

		if canHaveChildren {
			nf := &frame{indentW: w, node: node}
			if isFilter {
				nf.collectFilter = true
				nf.filterIndent = w
				nf.filterBodyIndent = -1
			}
			if isIgnore {
				nf.collectIgnore = true
				nf.ignoreIndent = w
			}
			stack = append(stack, nf)
		}
	}

	popTo(0)
	finalizeFilter(stack[0])

	return root, nil
}

// stripFilterIndent removes up to baseWidth columns of leading
// whitespace from indent, returning what remains (preserving relative
// indentation of filter body lines).
func stripFilterIndent(indent string, baseWidth int) string {
	w := 0
	for i, r := range indent {
		if w >= baseWidth {
			return indent[i:]
		}
		if r == '\t' {
			w += 8 - (w % 8)
		} else {
			w++
		}
	}
	return ""
}

// parseLine dispatches on the line's leading marker and returns the
// parsed node, whether it is structurally allowed to own indented
// children, and whether those children should be collected as raw
// filter text or silently ignored (haml comment).
func parseLine(body string, line int) (node *Node, canHaveChildren, isFilter, isIgnore bool, err error) {
	switch {
	case strings.HasPrefix(body, "-#"):
		n := NewNode(KindHamlComment, line)
		return n, true, false, true, nil

	case strings.HasPrefix(body, "!!!"):
		return parseDoctype(body, line), false, false, false, nil

	case strings.HasPrefix(body, "/"):
		return parseComment(body, line)

	case strings.HasPrefix(body, "-"):
		return parseSilentScript(body, line), true, false, false, nil

	case strings.HasPrefix(body, "="):
		n := NewNode(KindScript, line)
		n.Text = strings.TrimSpace(strings.TrimPrefix(body, "="))
		return n, true, false, false, nil

	case strings.HasPrefix(body, ":"):
		n := NewNode(KindFilter, line)
		i := 1
		for i < len(body) && isNameChar(body[i]) {
			i++
		}
		n.FilterName = body[1:i]
		return n, true, true, false, nil

	case strings.HasPrefix(body, "%") || strings.HasPrefix(body, ".") || strings.HasPrefix(body, "#"):
		return parseTag(body, line)

	case strings.HasPrefix(body, "\\"):
		n := NewNode(KindPlain, line)
		n.Text = body[1:]
		return n, false, false, false, nil

	default:
		n := NewNode(KindPlain, line)
		n.Text = body
		return n, false, false, false, nil
	}
}

func parseDoctype(body string, line int) *Node {
	n := NewNode(KindDoctype, line)
	rest := strings.TrimSpace(strings.TrimPrefix(body, "!!!"))
	if rest == "" {
		n.DoctypeType = "html"
		return n
	}
	fields := strings.Fields(rest)
	if strings.EqualFold(fields[0], "XML") {
		n.DoctypeType = "xml"
		if len(fields) > 1 {
			n.DoctypeEncoding = fields[1]
		}
		return n
	}
	n.DoctypeType = rest
	return n
}

func parseComment(body string, line int) (*Node, bool, bool, bool, error) {
	n := NewNode(KindComment, line)
	rest := strings.TrimPrefix(body, "/")

	rest = strings.TrimPrefix(rest, " ")
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, false, false, false, &SyntaxError{Line: line, Message: "unterminated conditional comment"}
		}
		n.CommentCondition = rest[1:end]
		rest = strings.TrimPrefix(rest[end+1:], " ")
	}
	n.Text = rest
	return n, true, false, false, nil
}

func parseSilentScript(body string, line int) *Node {
	n := NewNode(KindSilentScript, line)
	n.Text = strings.TrimSpace(strings.TrimPrefix(body, "-"))
	n.Keyword = KeywordOf(n.Text)
	return n
}

func parseTag(body string, line int) (*Node, bool, bool, bool, error) {
	head, rest, err := parseTagHead(body)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Line = line
		}
		return nil, false, false, false, err
	}

	n := NewNode(KindTag, line)
	n.Name = head.Name
	n.DynamicAttributes = head.DynamicAttributes
	n.ObjectRef = head.ObjectRef
	n.HasObjectRef = head.HasObjectRef
	n.SelfClosing = head.SelfClosing

	attrs := map[string]string{}
	if len(head.Classes) > 0 {
		attrs["class"] = strings.Join(head.Classes, " ")
	}
	if head.ID != "" {
		attrs["id"] = head.ID
	}
	n.Attributes = attrs

	switch {
	case strings.HasPrefix(rest, "="):
		n.Value = strings.TrimSpace(strings.TrimPrefix(rest, "="))
		n.Parse = true
	case rest != "":
		n.Value = rest
		n.Parse = false
	}

	return n, !n.SelfClosing, false, false, nil
}
