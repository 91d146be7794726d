package convert

import (
	"testing"

	"github.com/go-haml/haml2erb/erb/interp"
)

func TestConvertSimple(t *testing.T) {
	res, err := Convert("%p hello", Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.ERB != "<p>hello</p>\n" {
		t.Errorf("got %q", res.ERB)
	}
}

func TestConvertSyntaxError(t *testing.T) {
	_, err := Convert("%p{", Options{})
	if err == nil {
		t.Fatal("expected a syntax error, got nil")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
}

func TestConvertUnclosedInterpolationErrors(t *testing.T) {
	_, err := Convert("Hi #{name", Options{})
	if err == nil {
		t.Fatal("expected an unclosed-interpolation error, got nil")
	}
	if _, ok := err.(*interp.UnclosedError); !ok {
		t.Fatalf("expected *interp.UnclosedError, got %T: %v", err, err)
	}
}
