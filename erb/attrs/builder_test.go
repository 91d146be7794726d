package attrs

import (
	"strings"
	"testing"

	"github.com/go-haml/haml2erb/diagnostics"
)

func sink() *diagnostics.Sink { return diagnostics.NewSink(false, false) }

func TestBuildShorthandClassAndID(t *testing.T) {
	got := Build(map[string]string{"class": "btn", "id": "main"}, "", "", "", false, 1, sink())
	if got != ` class="btn" id="main"` {
		t.Errorf("got %q", got)
	}
}

func TestBuildStaticDynamicHash(t *testing.T) {
	got := Build(nil, "", `{class: "btn", disabled: true, title: "hi"}`, "", false, 1, sink())
	if !strings.Contains(got, `class="btn"`) {
		t.Errorf("missing class: %q", got)
	}
	if !strings.Contains(got, "disabled") || strings.Contains(got, `disabled="`) {
		t.Errorf("expected bare disabled attribute: %q", got)
	}
	if !strings.Contains(got, `title="hi"`) {
		t.Errorf("missing title: %q", got)
	}
}

func TestBuildMergesClassFromMultipleSources(t *testing.T) {
	got := Build(map[string]string{"class": "shorthand"}, "", `{class: "dynamic"}`, "", false, 1, sink())
	if got != ` class="shorthand dynamic"` {
		t.Errorf("got %q", got)
	}
}

func TestBuildNestedHashFlattensToDataDash(t *testing.T) {
	got := Build(nil, "", `{data: {toggle: "modal", target: "#x"}}`, "", false, 1, sink())
	if !strings.Contains(got, `data-toggle="modal"`) {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, `data-target="#x"`) {
		t.Errorf("got %q", got)
	}
}

func TestBuildDynamicFallbackByKey(t *testing.T) {
	got := Build(nil, "", `{class: current_user.admin? ? "admin" : "user", id: "row-1"}`, "", false, 1, sink())
	if !strings.Contains(got, `class="<%= current_user.admin? ? "admin" : "user" %>"`) &&
		!strings.Contains(got, `<%= current_user.admin? ? "admin" : "user" %>`) {
		t.Errorf("expected dynamic class fragment, got %q", got)
	}
	if !strings.Contains(got, `id="row-1"`) {
		t.Errorf("got %q", got)
	}
}

func TestBuildHashSplatWarns(t *testing.T) {
	s := sink()
	got := Build(nil, "", `{**extra, id: "x"}`, "", false, 5, s)
	if !strings.Contains(got, `id="x"`) {
		t.Errorf("expected remaining key processed, got %q", got)
	}
	if len(s.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(s.Warnings()))
	}
	if s.Warnings()[0].Kind != diagnostics.HashSplatAttribute {
		t.Errorf("unexpected warning kind: %v", s.Warnings()[0].Kind)
	}
}

func TestBuildObjectReference(t *testing.T) {
	got := Build(nil, "", "", "@post", true, 1, sink())
	if !strings.Contains(got, `class="<%= @post.class.name.underscore %>"`) {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "to_key.first.to_s") {
		t.Errorf("got %q", got)
	}
}

func TestBuildObjectReferenceWithPrefix(t *testing.T) {
	got := Build(nil, "", "", "@post, :summary", true, 1, sink())
	if !strings.Contains(got, `"summary_" + @post.class.name.underscore`) {
		t.Errorf("got %q", got)
	}
}

func TestBuildInterpolatedStringValue(t *testing.T) {
	got := Build(nil, "", `{title: "Hello #{name}!"}`, "", false, 1, sink())
	if !strings.Contains(got, `title="Hello <%= name %>!"`) {
		t.Errorf("got %q", got)
	}
}

func TestBuildArrayClass(t *testing.T) {
	got := Build(nil, "", `{class: ["btn", "btn-primary"]}`, "", false, 1, sink())
	if got != ` class="btn btn-primary"` {
		t.Errorf("got %q", got)
	}
}

func TestBuildNilValueOmitted(t *testing.T) {
	got := Build(nil, "", `{title: "x", hidden: nil}`, "", false, 1, sink())
	if strings.Contains(got, "hidden") {
		t.Errorf("expected hidden omitted, got %q", got)
	}
}
