// Package attrs implements the Attribute Builder: it merges a tag's
// shorthand class/ID, static attribute hash, dynamic attribute-hash
// expression text, and object-reference bracket text into a single
// HTML attribute string, classifying each dynamic value as static HTML,
// embedded-code output, or conditional-presence embedded code.
package attrs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-haml/haml2erb/diagnostics"
	"github.com/go-haml/haml2erb/erb/interp"
	"github.com/go-haml/haml2erb/erb/staticlit"
)

// frag is one fragment contributing to a merged class= or id= attribute.
// Fragments produced by embedded-code output (object references, or a
// dynamic value that could not be resolved statically) are kept verbatim
// and excluded from HTML escaping; this is the sole escaping exception.
type frag struct {
	text   string
	isCode bool
}

type builder struct {
	classFrags []frag
	idFrags    []frag
	other      []string

	sink *diagnostics.Sink
	line int
}

// Build merges static, dynamic, and object-reference attribute sources
// into a single attribute string. The result is either empty or begins
// with a single leading space, ready to be concatenated directly after
// a tag name.
//
// static is the HAML parser's already-resolved string attributes
// (shorthand class/ID folding included). dynamicOld and dynamicNew are
// raw hash-literal expression text from, respectively, HAML's
// old-style `(key=val)` attributes (already normalized to hash-literal
// text by the parser) and new-style `{key: val}` attributes; either may
// be empty. objectRef is the raw bracket text of a `[obj]` or
// `[obj, :prefix]` reference; hasObjectRef reports whether one was
// present at all. line and sink are used to report semantic warnings
// (currently: hash-splat attributes).
func Build(static map[string]string, dynamicOld, dynamicNew, objectRef string, hasObjectRef bool, line int, sink *diagnostics.Sink) string {
	b := &builder{sink: sink, line: line}

	for _, key := range []string{"class", "id"} {
		if v, ok := static[key]; ok && v != "" {
			b.addClassOrID(key, v, false)
		}
	}
	otherKeys := make([]string, 0, len(static))
	for key, v := range static {
		if key == "class" || key == "id" || v == "" {
			continue
		}
		otherKeys = append(otherKeys, key)
	}
	sort.Strings(otherKeys)
	for _, key := range otherKeys {
		b.other = append(b.other, fmt.Sprintf(`%s="%s"`, key, escapeAttr(static[key])))
	}

	for _, dyn := range []string{dynamicOld, dynamicNew} {
		if strings.TrimSpace(dyn) == "" {
			continue
		}
		b.addDynamic(dyn)
	}

	if hasObjectRef {
		classExpr, idExpr := objectRefFragments(objectRef)
		b.addClassOrID("class", classExpr, true)
		b.addClassOrID("id", idExpr, true)
	}

	return b.render()
}

func (b *builder) addClassOrID(key, text string, isCode bool) {
	if key == "class" {
		b.classFrags = append(b.classFrags, frag{text: text, isCode: isCode})
	} else {
		b.idFrags = append(b.idFrags, frag{text: text, isCode: isCode})
	}
}

func (b *builder) render() string {
	var sb strings.Builder

	if s := mergeFrags(b.classFrags); s != "" {
		sb.WriteString(` class="`)
		sb.WriteString(s)
		sb.WriteString(`"`)
	}
	if s := mergeFrags(b.idFrags); s != "" {
		sb.WriteString(` id="`)
		sb.WriteString(s)
		sb.WriteString(`"`)
	}
	for _, o := range b.other {
		sb.WriteString(" ")
		sb.WriteString(o)
	}
	return sb.String()
}

func mergeFrags(frags []frag) string {
	if len(frags) == 0 {
		return ""
	}
	parts := make([]string, len(frags))
	for i, f := range frags {
		if f.isCode || strings.Contains(f.text, "<%") {
			parts[i] = f.text
		} else {
			parts[i] = escapeAttr(f.text)
		}
	}
	return strings.Join(parts, " ")
}

// addDynamic processes one dynamic hash-literal fragment (the text of
// either a `{...}` or a normalized `(...)` attribute group), per
// the attribute semantics table.
func (b *builder) addDynamic(text string) {
	if v, ok := staticlit.Parse(text); ok {
		if h, ok := v.(*staticlit.Hash); ok {
			for _, e := range h.Entries {
				b.addValue(normalizeKey(e.Key), e.Value)
			}
			return
		}
	}

	inner := strings.TrimSpace(text)
	inner = strings.TrimPrefix(inner, "{")
	inner = strings.TrimSuffix(inner, "}")
	b.scanByKey(inner, "")
}

// scanByKey implements the by-key fallback scan: parse one key, extract
// one value with a balanced-delimiter scanner, classify it, repeat.
// prefix is the dash-joined key path of enclosing nested hashes that
// could not be resolved statically (empty at the top level).
func (b *builder) scanByKey(text string, prefix string) {
	i, n := 0, len(text)
	for i < n {
		for i < n && isSpace(text[i]) {
			i++
		}
		if i >= n {
			return
		}

		if strings.HasPrefix(text[i:], "**") {
			b.sink.Warn(diagnostics.HashSplatAttribute, b.line, "Double splat (**) attribute skipped")
			i += 2
			_, next := scanValue(text, i)
			i = next
			i = skipComma(text, i)
			continue
		}

		key, next, ok := scanKey(text, i)
		if !ok {
			return
		}
		i = next

		valueText, next := scanValue(text, i)
		i = next
		i = skipComma(text, i)

		b.classifyByKey(joinKey(prefix, key), valueText)
	}
}

func skipComma(s string, i int) int {
	n := len(s)
	for i < n && isSpace(s[i]) {
		i++
	}
	if i < n && s[i] == ',' {
		i++
	}
	return i
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "-" + key
}

// classifyByKey applies the by-key value-classification rules of
// the attribute semantics table to one already key-and-value-split entry.
func (b *builder) classifyByKey(key, value string) {
	value = strings.TrimSpace(value)

	switch {
	case strings.HasPrefix(value, "{"):
		if v, ok := staticlit.Parse(value); ok {
			if h, ok := v.(*staticlit.Hash); ok {
				for _, e := range h.Entries {
					b.addValue(joinKey(key, normalizeKey(e.Key)), e.Value)
				}
				return
			}
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}")
		b.scanByKey(inner, key)
		return

	case strings.HasPrefix(value, "["):
		if v, ok := staticlit.Parse(value); ok {
			b.addValue(key, v)
			return
		}
		b.emitDynamic(key, value)
		return

	case value == "nil":
		// omitted entirely
		return

	case isQuotedLiteral(value):
		inner := value[1 : len(value)-1]
		if strings.Contains(inner, "#{") {
			scanned, err := interp.Convert(inner)
			if err != nil {
				b.emitDynamic(key, value)
				return
			}
			if key == "class" || key == "id" {
				b.addClassOrID(key, scanned, true)
				return
			}
			b.other = append(b.other, fmt.Sprintf(`%s="%s"`, key, scanned))
			return
		}
		b.addScalarOrClassID(key, inner)
		return
	}

	if v, ok := staticlit.Parse(value); ok {
		b.addValue(key, v)
		return
	}

	b.emitDynamic(key, value)
}

// emitDynamic renders a value that could not be statically resolved,
// per the dynamic rows of the attribute-semantics table.
func (b *builder) emitDynamic(key, expr string) {
	if key == "class" {
		b.classFrags = append(b.classFrags, frag{text: fmt.Sprintf("<%%= %s %%>", expr), isCode: true})
		return
	}
	if key == "id" {
		b.idFrags = append(b.idFrags, frag{text: fmt.Sprintf("<%%= %s %%>", expr), isCode: true})
		return
	}
	if isBooleanAttribute(key) {
		b.other = append(b.other, fmt.Sprintf(`<%%= '%s' if (%s) %%>`, key, expr))
		return
	}
	b.other = append(b.other, fmt.Sprintf(`%s="<%%= %s %%>"`, key, expr))
}

// addValue applies the attribute-semantics table to an already-resolved
// staticlit.Value, recursing one nesting level at a time through nested
// hashes.
func (b *builder) addValue(key string, v staticlit.Value) {
	switch t := v.(type) {
	case bool:
		if t {
			if isBooleanAttribute(key) {
				b.other = append(b.other, key)
			} else {
				b.other = append(b.other, fmt.Sprintf(`%s="true"`, key))
			}
			return
		}
		if isBooleanAttribute(key) {
			return
		}
		b.other = append(b.other, fmt.Sprintf(`%s="false"`, key))

	case int64:
		b.addScalarOrClassID(key, strconv.FormatInt(t, 10))

	case float64:
		b.addScalarOrClassID(key, strconv.FormatFloat(t, 'g', -1, 64))

	case string:
		b.addScalarOrClassID(key, t)

	case staticlit.Symbol:
		b.addScalarOrClassID(key, string(t))

	case *staticlit.Array:
		if key == "class" {
			parts := make([]string, 0, len(t.Elements))
			for _, el := range t.Elements {
				parts = append(parts, fmt.Sprint(nativeOf(el)))
			}
			b.classFrags = append(b.classFrags, frag{text: strings.Join(parts, " ")})
			return
		}
		encoded, err := json.Marshal(nativeOf(t))
		if err != nil {
			return
		}
		b.other = append(b.other, fmt.Sprintf(`%s="%s"`, key, escapeAttr(string(encoded))))

	case *staticlit.Hash:
		for _, e := range t.Entries {
			b.addValue(joinKey(key, normalizeKey(e.Key)), e.Value)
		}
	}
}

func (b *builder) addScalarOrClassID(key, value string) {
	if key == "class" || key == "id" {
		b.addClassOrID(key, value, false)
		return
	}
	b.other = append(b.other, fmt.Sprintf(`%s="%s"`, key, escapeAttr(value)))
}

func nativeOf(v staticlit.Value) interface{} {
	switch t := v.(type) {
	case *staticlit.Hash:
		m := make(map[string]interface{}, len(t.Entries))
		for _, e := range t.Entries {
			m[normalizeKey(e.Key)] = nativeOf(e.Value)
		}
		return m
	case *staticlit.Array:
		arr := make([]interface{}, len(t.Elements))
		for i, el := range t.Elements {
			arr[i] = nativeOf(el)
		}
		return arr
	case staticlit.Symbol:
		return string(t)
	default:
		return t
	}
}

// normalizeKey applies the attribute-name normalization rule: symbol
// keys have underscores rewritten to hyphens; string keys pass through
// verbatim.
func normalizeKey(k staticlit.Key) string {
	if k.IsSymbol {
		return strings.ReplaceAll(k.Name, "_", "-")
	}
	return k.Name
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// isQuotedLiteral reports whether value is, in its entirety, a single
// quoted string literal (as opposed to a concatenation like `"a" + b`,
// which will fail this check and fall through to dynamic handling).
func isQuotedLiteral(value string) bool {
	if len(value) < 2 {
		return false
	}
	quote := value[0]
	if quote != '"' && quote != '\'' {
		return false
	}
	for i := 1; i < len(value); i++ {
		if value[i] == '\\' {
			i++
			continue
		}
		if value[i] == quote {
			return i == len(value)-1
		}
	}
	return false
}

// scanKey parses one hash key starting at i: a bareword followed by
// `:`, a `:symbol` followed by `=>`, or a quoted string followed by
// `=>` or `:`. Bareword and symbol keys have underscores rewritten to
// hyphens, as normalizeKey does; quoted keys are returned verbatim.
func scanKey(s string, i int) (key string, next int, ok bool) {
	n := len(s)
	for i < n && isSpace(s[i]) {
		i++
	}
	if i >= n {
		return "", i, false
	}

	switch {
	case s[i] == '"' || s[i] == '\'':
		quote := s[i]
		start := i
		i++
		for i < n {
			if s[i] == '\\' {
				i += 2
				continue
			}
			if s[i] == quote {
				i++
				break
			}
			i++
		}
		key = unquoteSimple(s[start:i])

	case s[i] == ':':
		i++
		start := i
		for i < n && isIdentChar(s[i]) {
			i++
		}
		key = strings.ReplaceAll(s[start:i], "_", "-")

	default:
		start := i
		for i < n && isIdentChar(s[i]) {
			i++
		}
		if i == start {
			return "", i, false
		}
		key = strings.ReplaceAll(s[start:i], "_", "-")
	}

	for i < n && isSpace(s[i]) {
		i++
	}
	switch {
	case i+1 < n && s[i] == '=' && s[i+1] == '>':
		i += 2
	case i < n && s[i] == ':':
		i++
	default:
		return "", i, false
	}
	for i < n && isSpace(s[i]) {
		i++
	}
	return key, i, true
}

func unquoteSimple(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			sb.WriteByte(inner[i+1])
			i++
			continue
		}
		sb.WriteByte(inner[i])
	}
	return sb.String()
}

// scanValue extracts one value's text starting at i, up to the next
// top-level comma (or end of input), respecting `{}`, `()`, `[]`
// nesting and backslash-escaped string literals.
func scanValue(s string, i int) (string, int) {
	start := i
	n := len(s)
	depth := 0
	var quote byte

	for i < n {
		c := s[i]
		if quote != 0 {
			if c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			i++
		case '{', '(', '[':
			depth++
			i++
		case '}', ')', ']':
			depth--
			i++
		case ',':
			if depth == 0 {
				return strings.TrimSpace(s[start:i]), i
			}
			i++
		default:
			i++
		}
	}
	return strings.TrimSpace(s[start:i]), i
}

// objectRefFragments builds the class and id embedded-code fragments
// for a `[obj]` or `[obj, :prefix]` object reference.
func objectRefFragments(raw string) (classExpr, idExpr string) {
	objExpr, prefix := splitObjectRef(raw)

	classBody := fmt.Sprintf("%s.class.name.underscore", objExpr)
	idBody := fmt.Sprintf("%s.class.name.underscore + '_' + %s.to_key.first.to_s", objExpr, objExpr)

	if prefix == "" {
		return fmt.Sprintf("<%%= %s %%>", classBody), fmt.Sprintf("<%%= %s %%>", idBody)
	}
	return fmt.Sprintf(`<%%= "%s_" + %s %%>`, prefix, classBody),
		fmt.Sprintf(`<%%= "%s_" + %s %%>`, prefix, idBody)
}

// splitObjectRef splits `obj` or `obj, :prefix` bracket text into the
// object expression and an optional bare prefix name.
func splitObjectRef(raw string) (objExpr, prefix string) {
	_, idx := scanValue(raw, 0)
	if idx >= len(raw) {
		return strings.TrimSpace(raw), ""
	}
	objExpr = strings.TrimSpace(raw[:idx])
	rest := strings.TrimSpace(raw[idx+1:])
	rest = strings.TrimPrefix(rest, ":")
	return objExpr, rest
}
