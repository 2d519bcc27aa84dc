package extract

import (
	"fmt"
	"strings"
)

// String returns v as trimmed text. Non-string scalars are formatted; nil is empty.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// StringList returns the non-blank string items of a JSON array, trimmed.
// Numbers, booleans and nested values are dropped; anything that is not an
// array yields nil.
func StringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool interprets a JSON value as a pass flag. Only true, "true" (any case)
// and non-zero numbers count as true.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0
	default:
		return false
	}
}
