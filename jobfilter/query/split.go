package query

import "strings"

// HasOuterParens reports whether one matching pair of parentheses wraps the
// whole expression, as in "(a OR b)" but not "(a) OR (b)".
func HasOuterParens(expr string) bool {
	expr = strings.TrimSpace(expr)
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(expr)-1; i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return false
		}
	}
	return true
}

// SplitTopLevel splits expr on sep wherever sep occurs outside parentheses.
// sep is matched case-insensitively. Parts are trimmed and empty parts dropped.
func SplitTopLevel(expr, sep string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
			continue
		case ')':
			depth--
			continue
		}
		if depth != 0 || i+len(sep) > len(expr) {
			continue
		}
		if strings.EqualFold(expr[i:i+len(sep)], sep) {
			parts = appendPart(parts, expr[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	return appendPart(parts, expr[start:])
}

func appendPart(parts []string, p string) []string {
	p = strings.TrimSpace(p)
	if p == "" {
		return parts
	}
	return append(parts, p)
}
