// Package interp implements the Interpolation Scanner: a brace-balanced
// rewrite of `#{expr}` occurrences in a text segment into ERB output
// tags (`<%= expr %>`), honoring backslash escapes and nested braces.
//
// The scan is a single left-to-right rune walk that enters a nested
// brace-counting region on each interpolation opener and returns to
// the outer scan once that region's braces balance, tracking
// odd/even-backslash escapes along the way so `\#{` and `\\#{` are
// told apart.
package interp

import "fmt"

// UnclosedError reports an interpolation whose opening `#{` is never
// balanced before end of input.
type UnclosedError struct {
	Pos int
}

func (e *UnclosedError) Error() string {
	return fmt.Sprintf("unclosed interpolation starting near offset %d", e.Pos)
}

// Convert rewrites every unescaped `#{expr}` occurrence in text into
// `<%= expr %>`. An escaped opener (`\#{`) is unescaped to a literal
// `#{` in the output and not scanned as an interpolation.
func Convert(text string) (string, error) {
	out := make([]rune, 0, len(text))
	runes := []rune(text)
	n := len(runes)

	i := 0
	for i < n {
		if runes[i] == '#' && i+1 < n && runes[i+1] == '{' {
			backslashes := countPrecedingBackslashes(runes, i)
			if backslashes%2 == 1 {
				// Escaped opener: drop one backslash from the already
				// written output, emit the literal `#{` verbatim.
				out = append(out[:len(out)-1], '#', '{')
				i += 2
				continue
			}

			body, next, err := scanBody(runes, i+2)
			if err != nil {
				return "", err
			}
			out = append(out, []rune("<%= ")...)
			out = append(out, body...)
			out = append(out, []rune(" %>")...)
			i = next
			continue
		}

		out = append(out, runes[i])
		i++
	}

	return string(out), nil
}

// countPrecedingBackslashes counts the run of consecutive backslashes
// immediately before position pos in runes.
func countPrecedingBackslashes(runes []rune, pos int) int {
	count := 0
	for j := pos - 1; j >= 0 && runes[j] == '\\'; j-- {
		count++
	}
	return count
}

// scanBody scans the body of an interpolation starting just after the
// opening `#{`, with a brace counter starting at 1. It tracks
// string-literal state for single- and double-quoted strings; inside a
// double-quoted string a nested interpolation is itself scanned with
// its own local brace counter. Returns the body verbatim (without the
// surrounding braces) and the index just past the closing `}`.
func scanBody(runes []rune, start int) ([]rune, int, error) {
	n := len(runes)
	depth := 1
	i := start
	var quote rune

	for i < n {
		c := runes[i]

		if quote != 0 {
			if c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
				i++
				continue
			}
			if quote == '"' && c == '#' && i+1 < n && runes[i+1] == '{' {
				_, next, err := scanBody(runes, i+2)
				if err != nil {
					return nil, 0, err
				}
				i = next
				continue
			}
			i++
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
			i++
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return runes[start : i-1], i, nil
			}
		default:
			i++
		}
	}

	return nil, 0, &UnclosedError{Pos: start}
}
