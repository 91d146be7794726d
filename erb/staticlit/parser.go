// Package staticlit implements a small declarative grammar, built on
// participle, over a fragment of source-language expression text
// expected to be a mapping or sequence literal. It resolves the
// fragment to a fully static value tree, or reports "dynamic" when any
// descendant is not a literal.
//
// This is a whole-fragment fast path only: any lex/parse failure, or
// any nil leaf, reports "dynamic" and the Attribute Builder's
// hand-written by-key scanner (erb/attrs) picks up the slack, so
// correctness never depends on this grammar covering every syntactic
// corner of the source language.
package staticlit

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Symbol is a source-language symbol literal (`:foo`), kept distinct
// from plain strings in the value tree. The Attribute Builder renders a
// symbol value as its bare name; the underscore-to-hyphen rewrite it
// applies to symbol-typed keys is not applied to symbol values.
type Symbol string

// Key identifies one entry of a Hash: its literal text and whether it
// was written as a symbol (`foo:`, `:foo =>`) or a string
// (`"foo" =>`, `"foo":`).
type Key struct {
	Name     string
	IsSymbol bool
}

// Entry is one key/value pair of a Hash, in source order.
type Entry struct {
	Key   Key
	Value Value
}

// Hash is a fully resolved mapping literal, preserving source order.
type Hash struct {
	Entries []Entry
}

// Array is a fully resolved sequence literal, preserving source order.
type Array struct {
	Elements []Value
}

// Value holds one resolved literal: nil, bool, int64, float64, string,
// Symbol, *Hash, or *Array.
type Value interface{}

var literalLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
	{Name: "Symbol", Pattern: `:[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Float", Pattern: `[-+]?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},
	{Name: "Bool", Pattern: `\b(true|false)\b`},
	{Name: "Nil", Pattern: `\bnil\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[{}\[\],:]`},
	{Name: "FatArrow", Pattern: `=>`},
})

type grammarValue struct {
	Hash   *grammarHash  `parser:"(  @@"`
	Array  *grammarArray `parser:"|  @@"`
	IsNil  bool          `parser:"|  @Nil"`
	Bool   *string       `parser:"|  @Bool"`
	Float  *float64      `parser:"|  @Float"`
	Int    *int64        `parser:"|  @Int"`
	Symbol *string       `parser:"|  @Symbol"`
	Str    *string       `parser:"|  @String )"`
}

type grammarEntry struct {
	BareKey *string       `parser:"(  @Ident ':'"`
	SymKey  *string       `parser:"|  @Symbol '=>'"`
	StrKeyA *string       `parser:"|  @String '=>'"`
	StrKeyB *string       `parser:"|  @String ':' )"`
	Value   *grammarValue `parser:"@@"`
}

type grammarHash struct {
	Entries []*grammarEntry `parser:"'{' (@@ (',' @@)*)? ','? '}'"`
}

type grammarArray struct {
	Elements []*grammarValue `parser:"'[' (@@ (',' @@)*)? ','? ']'"`
}

var grammar = participle.MustBuild(
	&grammarValue{},
	participle.Lexer(literalLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse attempts to resolve fragment as a fully static value. The
// second return value reports success; on failure (syntax error, a nil
// leaf anywhere, or an interpolated string), the caller should fall back
// to dynamic handling.
func Parse(fragment string) (Value, bool) {
	var gv grammarValue
	if err := grammar.ParseString("", fragment, &gv); err != nil {
		return nil, false
	}
	return resolve(&gv)
}

func resolve(gv *grammarValue) (Value, bool) {
	switch {
	case gv.Hash != nil:
		h := &Hash{Entries: make([]Entry, 0, len(gv.Hash.Entries))}
		for _, e := range gv.Hash.Entries {
			key, ok := resolveKey(e)
			if !ok {
				return nil, false
			}
			val, ok := resolve(e.Value)
			if !ok {
				return nil, false
			}
			h.Entries = append(h.Entries, Entry{Key: key, Value: val})
		}
		return h, true

	case gv.Array != nil:
		a := &Array{Elements: make([]Value, 0, len(gv.Array.Elements))}
		for _, el := range gv.Array.Elements {
			val, ok := resolve(el)
			if !ok {
				return nil, false
			}
			a.Elements = append(a.Elements, val)
		}
		return a, true

	case gv.IsNil:
		// a literal nil anywhere makes the whole-fragment
		// parse dynamic; the by-key fallback handles nil-omission
		// per-key instead.
		return nil, false

	case gv.Bool != nil:
		return *gv.Bool == "true", true

	case gv.Float != nil:
		return *gv.Float, true

	case gv.Int != nil:
		return *gv.Int, true

	case gv.Symbol != nil:
		return Symbol(strings.TrimPrefix(*gv.Symbol, ":")), true

	case gv.Str != nil:
		s, ok := unquote(*gv.Str)
		if !ok {
			return nil, false
		}
		return s, true
	}
	return nil, false
}

func resolveKey(e *grammarEntry) (Key, bool) {
	switch {
	case e.BareKey != nil:
		return Key{Name: *e.BareKey, IsSymbol: true}, true
	case e.SymKey != nil:
		return Key{Name: strings.TrimPrefix(*e.SymKey, ":"), IsSymbol: true}, true
	case e.StrKeyA != nil:
		s, ok := unquote(*e.StrKeyA)
		return Key{Name: s, IsSymbol: false}, ok
	case e.StrKeyB != nil:
		s, ok := unquote(*e.StrKeyB)
		return Key{Name: s, IsSymbol: false}, ok
	}
	return Key{}, false
}

// unquote strips the surrounding quotes from a lexed String token and
// applies the limited unescape rule (`\"`→`"`, `\'`→`'`, `\\`→`\`, in
// either quote style; other escapes are kept verbatim). A string containing an
// unescaped interpolation opener is rejected (the fragment containing it
// is dynamic).
func unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	quote := raw[0]
	inner := raw[1 : len(raw)-1]

	if containsUnescapedInterpolation(inner) {
		return "", false
	}

	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			next := inner[i+1]
			if next == '"' || next == '\\' || next == '\'' {
				sb.WriteByte(next)
				i++
				continue
			}
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte(c)
	}
	_ = quote
	return sb.String(), true
}

func containsUnescapedInterpolation(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '#' && s[i+1] == '{' {
			return true
		}
	}
	return false
}
