// Package validator implements the ERB validator: a structural,
// always-on check that the emitted markup's tags and embedded-code
// tags balance, plus an optional external-process check against a
// real ERB parser.
//
// The structural layer parses the output with goquery and walks the
// resulting DOM looking for imbalance; the external layer shells out
// to an operator-configured binary via os/exec and captures its
// stdout/stderr.
package validator

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Error is one validation finding.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e Error) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result is the outcome of validating one ERB document.
type Result struct {
	Errors []Error
}

// Success reports whether no errors were found.
func (r Result) Success() bool { return len(r.Errors) == 0 }

// Config controls the optional external validation layer.
type Config struct {
	// ValidatorCommand, when non-empty, is run with the candidate ERB
	// text on stdin; a non-zero exit is recorded as a validation error
	// carrying the command's stderr.
	ValidatorCommand []string
}

var embeddedTagPattern = regexp.MustCompile(`<%=?.*?%>|<%`)

// Validate runs both validation layers and concatenates their findings.
func Validate(erbText string, cfg Config) Result {
	var errs []Error
	errs = append(errs, structuralErrors(erbText)...)
	errs = append(errs, externalErrors(erbText, cfg)...)
	return Result{Errors: errs}
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {},
	"source": {}, "track": {}, "wbr": {},
}

var tagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^>]*?(/?)>`)

// structuralErrors neutralizes embedded-code tags (so `<%= %>`/`<% %>`
// never confuse the HTML tokenizer), confirms the remaining markup
// parses as a well-formed document with goquery, and separately walks
// the tag stream to confirm every non-void open tag has a matching
// close tag at the same or an outer nesting. goquery's own tokenizer
// silently auto-closes mismatched tags rather than reporting them, so
// the explicit stack walk below is what actually catches the case
// this package's structural checks are meant to catch.
func structuralErrors(erbText string) []Error {
	if err := checkBalancedCodeTags(erbText); err != nil {
		return []Error{*err}
	}

	neutralized := embeddedTagPattern.ReplaceAllString(erbText, "")

	if _, err := goquery.NewDocumentFromReader(strings.NewReader(neutralized)); err != nil {
		return []Error{{Message: fmt.Sprintf("structural parse failed: %v", err)}}
	}

	return checkTagBalance(neutralized)
}

// checkTagBalance walks the open/close tag stream of html and reports
// any non-void element left unclosed or closed out of order.
func checkTagBalance(html string) []Error {
	var stack []string
	var errs []Error

	for _, m := range tagPattern.FindAllStringSubmatch(html, -1) {
		full, name, selfClose := m[0], strings.ToLower(m[1]), m[2]
		if _, void := voidElements[name]; void {
			continue
		}
		if selfClose == "/" {
			continue
		}
		if strings.HasPrefix(full, "</") {
			if len(stack) == 0 || stack[len(stack)-1] != name {
				errs = append(errs, Error{Message: fmt.Sprintf("unmatched closing tag </%s>", name)})
				continue
			}
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, name)
	}

	for _, name := range stack {
		errs = append(errs, Error{Message: fmt.Sprintf("unclosed tag <%s>", name)})
	}
	return errs
}

// checkBalancedCodeTags confirms every `<%` has a matching `%>`.
func checkBalancedCodeTags(erbText string) *Error {
	depth := 0
	for i := 0; i+1 < len(erbText); i++ {
		if erbText[i] == '<' && erbText[i+1] == '%' {
			depth++
		}
		if erbText[i] == '%' && erbText[i+1] == '>' {
			depth--
			if depth < 0 {
				return &Error{Message: "unmatched `%>` with no preceding `<%`"}
			}
		}
	}
	if depth != 0 {
		return &Error{Message: "unbalanced embedded-code tags"}
	}
	return nil
}

// externalErrors shells out to an operator-configured ERB-parsing
// binary, feeding it erbText on stdin.
func externalErrors(erbText string, cfg Config) []Error {
	if len(cfg.ValidatorCommand) == 0 {
		return nil
	}

	cmd := exec.Command(cfg.ValidatorCommand[0], cfg.ValidatorCommand[1:]...)
	cmd.Stdin = strings.NewReader(erbText)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return []Error{{Message: fmt.Sprintf("external validator: %s", msg)}}
	}
	return nil
}
