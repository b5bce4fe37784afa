package textutil

import (
	"strings"
	"unicode/utf8"
)

// ContainsAny reports whether text contains any of the keywords. Matching is
// plain substring search; callers lowercase both sides.
func ContainsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Rule pairs a keyword list with the value it selects.
type Rule[T any] struct {
	Keywords []string
	Value    T
}

// FirstMatch walks rules in order and returns the value of the first rule
// with a keyword present in text.
func FirstMatch[T any](text string, rules []Rule[T]) (T, bool) {
	for _, rule := range rules {
		if ContainsAny(text, rule.Keywords...) {
			return rule.Value, true
		}
	}
	var zero T
	return zero, false
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// Lower lowercases and joins the given parts with single spaces.
func Lower(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}
