package haml

import (
	"regexp"
	"strings"
)

// blockOpenerKeywords are the control-flow keywords that open a
// block-structured embedded-code construct requiring a matching `end`.
var blockOpenerKeywords = map[string]struct{}{
	"if":     {},
	"unless": {},
	"case":   {},
	"begin":  {},
	"while":  {},
	"until":  {},
	"for":    {},
}

// midBlockKeywords are the continuation keywords that appear at the
// depth of their opener and neither open nor close a block.
var midBlockKeywords = map[string]struct{}{
	"else":   {},
	"elsif":  {},
	"when":   {},
	"rescue": {},
	"ensure": {},
}

var trailingDoPattern = regexp.MustCompile(`\bdo(\s*\|[^|]*\|)?\s*$`)

// firstWord returns the first word of s, delimited by whitespace or an
// opening parenthesis.
func firstWord(s string) string {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t(")
	if i < 0 {
		return s
	}
	return s[:i]
}

// IsBlockOpener reports whether text opens a block-structured
// embedded-code construct per the core invariants: a leading
// control-flow keyword, or a trailing `do` (optionally followed by a
// pipe-delimited parameter list).
func IsBlockOpener(text string) bool {
	w := firstWord(text)
	if _, ok := blockOpenerKeywords[w]; ok {
		return true
	}
	if _, ok := midBlockKeywords[w]; ok {
		return false
	}
	return trailingDoPattern.MatchString(strings.TrimSpace(text))
}

// IsMidBlockContinuation reports whether text is a mid-block
// continuation keyword (else/elsif/when/rescue/ensure).
func IsMidBlockContinuation(text string) bool {
	_, ok := midBlockKeywords[firstWord(text)]
	return ok
}

// isMidBlockContinuationLine reports whether a raw HAML source line
// (before parsing into a Node) is a silent_script mid-block
// continuation, i.e. begins with `-` and its text is a continuation
// keyword.
func isMidBlockContinuationLine(body string) bool {
	if !strings.HasPrefix(body, "-") || strings.HasPrefix(body, "-#") {
		return false
	}
	return IsMidBlockContinuation(strings.TrimSpace(strings.TrimPrefix(body, "-")))
}

// KeywordOf returns the leading control-flow keyword of text, or "" if
// text does not start with one (mid-block keywords included).
func KeywordOf(text string) string {
	w := firstWord(text)
	if _, ok := blockOpenerKeywords[w]; ok {
		return w
	}
	if _, ok := midBlockKeywords[w]; ok {
		return w
	}
	return ""
}
