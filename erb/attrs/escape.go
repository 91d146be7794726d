package attrs

import "strings"

// escapeAttr escapes the two characters that can break out of a
// double-quoted HTML attribute value. `<` and `>` are deliberately left
// alone: HTML5 permits them unescaped inside attribute values, and
// leaving them alone keeps framework action strings like
// `change->form#submit` readable in the generated markup.
func escapeAttr(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"\"", "&quot;",
	)
	return replacer.Replace(s)
}
