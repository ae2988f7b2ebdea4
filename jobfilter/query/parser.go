package query

import (
	"fmt"
	"strings"
)

const (
	orSep  = " OR "
	andSep = " AND "
)

// DefaultMaxDepth bounds how deep Parse recurses into nested groups
const DefaultMaxDepth = 64

// ParseOptions configures Parse
type ParseOptions struct {
	MaxDepth int
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxDepth: DefaultMaxDepth}
}

// Parse turns a filter string into a tree. OR binds loosest, then AND; a group
// wrapped in one pair of parentheses is unwrapped first. An empty or blank
// filter yields nil.
func Parse(input string) Node {
	return ParseWithOptions(input, DefaultParseOptions())
}

func ParseWithOptions(input string, opts ParseOptions) Node {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	p := &parser{maxDepth: opts.MaxDepth}
	return p.parse(input, 0)
}

type parser struct {
	maxDepth int
}

func (p *parser) parse(expr string, depth int) Node {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	if depth > p.maxDepth {
		return Invalid{Expr: expr, Reason: fmt.Sprintf("nesting deeper than %d", p.maxDepth)}
	}

	if HasOuterParens(expr) {
		return p.parse(expr[1:len(expr)-1], depth+1)
	}

	if parts := SplitTopLevel(expr, orSep); len(parts) > 1 {
		return collapse(p.parseAll(parts, depth), func(n []Node) Node { return Or{Parts: n} })
	}
	if parts := SplitTopLevel(expr, andSep); len(parts) > 1 {
		return collapse(p.parseAll(parts, depth), func(n []Node) Node { return And{Parts: n} })
	}

	return Leaf{Expr: expr}
}

func (p *parser) parseAll(parts []string, depth int) []Node {
	nodes := make([]Node, 0, len(parts))
	for _, part := range parts {
		if n := p.parse(part, depth+1); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func collapse(nodes []Node, wrap func([]Node) Node) Node {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return wrap(nodes)
	}
}
