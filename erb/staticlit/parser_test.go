package staticlit

import "testing"

func TestParseScalars(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Value
	}{
		{"string double", `"hello"`, "hello"},
		{"string single", `'hello'`, "hello"},
		{"symbol", `:foo`, Symbol("foo")},
		{"int", `42`, int64(42)},
		{"negative int", `-7`, int64(-7)},
		{"float", `3.5`, 3.5},
		{"bool true", `true`, true},
		{"bool false", `false`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.in)
			if !ok {
				t.Fatalf("Parse(%q) reported dynamic, want static", tc.in)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseNilIsDynamic(t *testing.T) {
	if _, ok := Parse(`nil`); ok {
		t.Fatal("nil leaf should report dynamic")
	}
	if _, ok := Parse(`{foo: nil}`); ok {
		t.Fatal("nil nested in a hash should report dynamic")
	}
}

func TestParseHashBarewordKeys(t *testing.T) {
	v, ok := Parse(`{class: "btn", disabled: true}`)
	if !ok {
		t.Fatal("expected static parse")
	}
	h, ok := v.(*Hash)
	if !ok {
		t.Fatalf("expected *Hash, got %T", v)
	}
	if len(h.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h.Entries))
	}
	if h.Entries[0].Key != (Key{Name: "class", IsSymbol: true}) {
		t.Errorf("unexpected key: %+v", h.Entries[0].Key)
	}
	if h.Entries[0].Value != "btn" {
		t.Errorf("unexpected value: %+v", h.Entries[0].Value)
	}
}

func TestParseHashRocketSyntax(t *testing.T) {
	v, ok := Parse(`{:id => "main", "data-role" => "widget"}`)
	if !ok {
		t.Fatal("expected static parse")
	}
	h := v.(*Hash)
	if h.Entries[0].Key != (Key{Name: "id", IsSymbol: true}) {
		t.Errorf("unexpected key 0: %+v", h.Entries[0].Key)
	}
	if h.Entries[1].Key != (Key{Name: "data-role", IsSymbol: false}) {
		t.Errorf("unexpected key 1: %+v", h.Entries[1].Key)
	}
}

func TestParseNestedArrayAndHash(t *testing.T) {
	v, ok := Parse(`{class: ["btn", "btn-primary"], data: {toggle: "modal"}}`)
	if !ok {
		t.Fatal("expected static parse")
	}
	h := v.(*Hash)
	arr, ok := h.Entries[0].Value.(*Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected 2-element array, got %#v", h.Entries[0].Value)
	}
	nested, ok := h.Entries[1].Value.(*Hash)
	if !ok || len(nested.Entries) != 1 {
		t.Fatalf("expected nested hash, got %#v", h.Entries[1].Value)
	}
}

func TestParseDynamicFallback(t *testing.T) {
	dynamicCases := []string{
		`user.name`,
		`params[:id]`,
		`condition ? "a" : "b"`,
		`{class: "x" + suffix}`,
		`**splat`,
		`"interpolated #{value}"`,
		`{key: "has #{interp}"}`,
	}
	for _, in := range dynamicCases {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) reported static, want dynamic", in)
		}
	}
}
