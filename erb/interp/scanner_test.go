package interp

import "testing"

func TestConvertBasic(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"simple interpolation", "Hi #{name}!", "Hi <%= name %>!"},
		{
			"nested braces",
			"Total: #{items.sum { |i| i.price }}",
			"Total: <%= items.sum { |i| i.price } %>",
		},
		{"escaped opener", `\#{x}`, "#{x}"},
		{"multiple", "#{a} and #{b}", "<%= a %> and <%= b %>"},
		{
			"nested string interpolation",
			`#{"outer #{inner}"}`,
			`<%= "outer #{inner}" %>`,
		},
		{
			"brace inside string literal doesn't affect counter",
			`#{foo("}")}`,
			`<%= foo("}") %>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Convert(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestConvertUnclosed(t *testing.T) {
	_, err := Convert("#{oops")
	if err == nil {
		t.Fatal("expected error for unclosed interpolation")
	}
	if _, ok := err.(*UnclosedError); !ok {
		t.Fatalf("expected *UnclosedError, got %T", err)
	}
}

func TestConvertEscapedDoubleBackslash(t *testing.T) {
	// Two backslashes (even count) means NOT escaped: both
	// backslashes stay literal, and the interpolation still scans.
	got, err := Convert(`\\#{x}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `\\<%= x %>`
	if got != want {
		t.Errorf("Convert = %q, want %q", got, want)
	}
}
