package attrs

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed boolean_attributes.txt
var booleanAttributesText string

var (
	booleanAttributesOnce sync.Once
	booleanAttributeSet   map[string]struct{}
)

// ensureBooleanAttributesLoaded lazily parses the embedded
// boolean-attribute list into a lookup set, guarded by a sync.Once so
// concurrent conversions share one parse.
func ensureBooleanAttributesLoaded() {
	booleanAttributesOnce.Do(func() {
		lines := strings.Split(booleanAttributesText, "\n")
		booleanAttributeSet = make(map[string]struct{}, len(lines))
		for _, line := range lines {
			name := strings.TrimSpace(line)
			if name == "" {
				continue
			}
			booleanAttributeSet[name] = struct{}{}
		}
	})
}

// isBooleanAttribute reports whether key is one of the HTML boolean
// attributes whose presence alone (rather than its string value) conveys
// meaning.
func isBooleanAttribute(key string) bool {
	ensureBooleanAttributesLoaded()
	_, ok := booleanAttributeSet[key]
	return ok
}
