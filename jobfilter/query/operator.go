package query

import "strings"

// Op is a comparison operator of the filter language
type Op int

const (
	OpEq Op = iota
	OpNotEq
	OpGt
	OpLt
	OpGte
	OpLte
	OpLike
)

// String returns the SQL spelling of the operator.
func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNotEq:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpLike:
		return "LIKE"
	default:
		return "?"
	}
}

// operatorTokens is ordered longest match first so that ">=" is never read as ">".
var operatorTokens = []struct {
	token string
	op    Op
}{
	{">=", OpGte},
	{"<=", OpLte},
	{"!=", OpNotEq},
	{"=", OpEq},
	{">", OpGt},
	{"<", OpLt},
	{" LIKE ", OpLike},
}

// Token returns the spelling of the operator inside a filter expression.
func (op Op) Token() string {
	for _, t := range operatorTokens {
		if t.op == op {
			return t.token
		}
	}
	return ""
}

// SplitComparison finds the first operator, in precedence order, that occurs
// in expr and splits expr on its first occurrence. Both sides are trimmed.
func SplitComparison(expr string) (lhs string, op Op, rhs string, ok bool) {
	for _, t := range operatorTokens {
		idx := strings.Index(expr, t.token)
		if idx < 0 {
			continue
		}
		lhs = strings.TrimSpace(expr[:idx])
		rhs = strings.TrimSpace(expr[idx+len(t.token):])
		return lhs, t.op, rhs, true
	}
	return "", 0, "", false
}

// SplitAttributeComparison reads "<name><op><value>" where name is a run of
// [A-Za-z0-9_]. The operator must follow the name, so operator characters
// inside the value are left alone.
func SplitAttributeComparison(expr string) (name string, op Op, value string, ok bool) {
	expr = strings.TrimSpace(expr)
	end := 0
	for end < len(expr) && isIdentByte(expr[end]) {
		end++
	}
	if end == 0 {
		return "", 0, "", false
	}
	name, rest := expr[:end], strings.TrimLeft(expr[end:], " \t")
	for _, t := range operatorTokens {
		token := strings.TrimLeft(t.token, " ")
		if strings.HasPrefix(rest, token) {
			return name, t.op, strings.TrimSpace(rest[len(token):]), true
		}
	}
	return "", 0, "", false
}

func isIdentByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// IsParenthesized reports whether a value is written as a (...) list.
func IsParenthesized(value string) bool {
	value = strings.TrimSpace(value)
	return len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')'
}
