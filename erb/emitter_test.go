package erb

import (
	"strings"
	"testing"

	"github.com/go-haml/haml2erb/diagnostics"
	"github.com/go-haml/haml2erb/erb/interp"
	"github.com/go-haml/haml2erb/haml"
)

func emit(t *testing.T, src string) string {
	t.Helper()
	root, err := haml.Parse(src)
	if err != nil {
		t.Fatalf("haml.Parse(%q): %v", src, err)
	}
	e := NewEmitter(diagnostics.NewSink(false, false))
	out, err := e.Emit(root, 0)
	if err != nil {
		t.Fatalf("Emit(%q): %v", src, err)
	}
	return out
}

func TestEmitSimpleTag(t *testing.T) {
	got := emit(t, "%p Hello")
	want := "<p>Hello</p>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitVoidSelfClosing(t *testing.T) {
	got := emit(t, "%br/")
	if got != "<br>\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitNestedTags(t *testing.T) {
	got := emit(t, "%div\n  %span hi")
	want := "<div>\n  <span>hi</span>\n</div>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitClassIDShorthand(t *testing.T) {
	got := emit(t, "%div.card#main")
	want := `<div class="card" id="main"></div>` + "\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitScriptOutput(t *testing.T) {
	got := emit(t, "= user.name")
	if got != "<%= user.name %>\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitSilentScriptIfEnd(t *testing.T) {
	got := emit(t, "- if admin\n  %p yes")
	want := "<% if admin %>\n  <p>yes</p>\n<% end %>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitSilentScriptElsifSameDepth(t *testing.T) {
	got := emit(t, "- if a\n  %p 1\n- elsif b\n  %p 2")
	want := "<% if a %>\n  <p>1</p>\n<% elsif b %>\n  <p>2</p>\n<% end %>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitDoctypeHTML(t *testing.T) {
	if got := emit(t, "!!!"); got != "<!DOCTYPE html>\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitDoctypeXML(t *testing.T) {
	got := emit(t, "!!! XML")
	if got != `<?xml version="1.0" encoding="UTF-8"?>`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitComment(t *testing.T) {
	if got := emit(t, "/ hello"); got != "<!-- hello -->\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitConditionalComment(t *testing.T) {
	got := emit(t, "/[if IE] oldbrowser")
	want := "<!--[if IE]>oldbrowser<![endif]-->\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitPlainInterpolated(t *testing.T) {
	got := emit(t, "Hi #{name}!")
	if got != "Hi <%= name %>!\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitVoidElementWithContentWarns(t *testing.T) {
	root, err := haml.Parse("%br Hello")
	if err != nil {
		t.Fatal(err)
	}
	sink := diagnostics.NewSink(false, false)
	e := NewEmitter(sink)
	got, err := e.Emit(root, 0)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(got, "<br>") || !strings.Contains(got, "Hello") {
		t.Errorf("got %q", got)
	}
	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(sink.Warnings()))
	}
}

func TestEmitJavascriptFilter(t *testing.T) {
	got := emit(t, ":javascript\n  alert(1);")
	want := "<script>\n  alert(1);\n</script>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitUnknownFilterWarnsAndEmitsComment(t *testing.T) {
	root, err := haml.Parse(":bogus\n  raw text")
	if err != nil {
		t.Fatal(err)
	}
	sink := diagnostics.NewSink(false, false)
	e := NewEmitter(sink)
	got, err := e.Emit(root, 0)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(got, "<!-- Unknown filter: bogus -->") {
		t.Errorf("got %q", got)
	}
	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(sink.Warnings()))
	}
}

func TestEmitTagWithInlineContentAndChildrenWarnsAndKeepsBoth(t *testing.T) {
	root, err := haml.Parse("%p Hello\n  %span World")
	if err != nil {
		t.Fatal(err)
	}
	sink := diagnostics.NewSink(false, false)
	e := NewEmitter(sink)
	got, err := e.Emit(root, 0)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "<span>World</span>") {
		t.Errorf("got %q, want both inline content and nested child preserved", got)
	}
	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(sink.Warnings()))
	}
}

func TestEmitUnclosedInterpolationErrors(t *testing.T) {
	root, err := haml.Parse("Hi #{name")
	if err != nil {
		t.Fatal(err)
	}
	e := NewEmitter(diagnostics.NewSink(false, false))
	_, err = e.Emit(root, 0)
	if err == nil {
		t.Fatal("expected an unclosed-interpolation error, got nil")
	}
	if _, ok := err.(*interp.UnclosedError); !ok {
		t.Fatalf("expected *interp.UnclosedError, got %T: %v", err, err)
	}
}
