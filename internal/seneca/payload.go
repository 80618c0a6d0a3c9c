package seneca

import (
	"fmt"
	"strings"
)

// The upstream payload is decoded JSON with no schema guarantees: any field
// may be absent, null, or the wrong type. These helpers make every access
// total — a miss yields a zero value, never a panic.

// asMap returns v as an object, or nil.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asSlice returns v as an array, or nil.
func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// str returns the first non-empty string field among keys, trimmed.
func str(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// text stringifies a scalar value. Strings pass through; numbers and bools
// are formatted; objects and arrays yield "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, bool:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

// wordText normalizes a grid definition's word, which upstream delivers as a
// plain string, an array of fragments to concatenate, or an object wrapping
// the string.
func wordText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		var b strings.Builder
		for _, frag := range t {
			b.WriteString(text(frag))
		}
		return strings.TrimSpace(b.String())
	case map[string]any:
		return str(t, "word", "text")
	default:
		return ""
	}
}

// blankWord returns the expected word for a fill-in-the-blank slot. The slot's
// word field is either the word itself or a list of accepted spellings, in
// which case the first non-empty entry is canonical.
func blankWord(slot map[string]any) string {
	switch w := slot["word"].(type) {
	case string:
		return strings.TrimSpace(w)
	case []any:
		for _, candidate := range w {
			if s := strings.TrimSpace(text(candidate)); s != "" {
				return s
			}
		}
	}
	return ""
}
