package query

import "strings"

// ParseValueList turns "(a, 'b', \"c\")" into [a b c]. One outer pair of
// parentheses is removed if present, items are split on commas and trimmed,
// and one matching pair of single or double quotes is stripped per item.
// An empty list yields an empty, non-nil slice.
func ParseValueList(s string) []string {
	s = strings.TrimSpace(s)
	if IsParenthesized(s) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, Unquote(strings.TrimSpace(p)))
	}
	return out
}

// Unquote strips one matching pair of single or double quotes.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
