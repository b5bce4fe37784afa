package textutil

import "strings"

// SanitizeID converts an identifier to a filesystem-safe token. Case is kept
// because source video IDs are case-sensitive; letters, digits, hyphens, and
// underscores pass through and everything else becomes an underscore. Returns
// "unknown" for empty input.
func SanitizeID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	return out
}
