package query

import "strings"

// Node is a parsed filter expression
type Node interface {
	isNode()
}

// And matches when every part matches
type And struct {
	Parts []Node
}

func (And) isNode() {}

// Or matches when any part matches
type Or struct {
	Parts []Node
}

func (Or) isNode() {}

// Leaf is a single condition, handed as-is to the condition compilers
type Leaf struct {
	Expr string
}

func (Leaf) isNode() {}

// Invalid is a subtree the parser refused to descend into
type Invalid struct {
	Expr   string
	Reason string
}

func (Invalid) isNode() {}

// Format renders a node back into filter syntax with explicit grouping.
func Format(n Node) string {
	switch e := n.(type) {
	case nil:
		return ""
	case Leaf:
		return e.Expr
	case Invalid:
		return "<invalid: " + e.Reason + ">"
	case And:
		return joinNodes(e.Parts, " AND ")
	case Or:
		return joinNodes(e.Parts, " OR ")
	default:
		return "?"
	}
}

func joinNodes(parts []Node, sep string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, Format(p))
	}
	return "(" + strings.Join(out, sep) + ")"
}
