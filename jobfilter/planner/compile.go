package planner

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// Compiler walks a parsed filter tree and writes it into an accumulator.
type Compiler struct {
	registry *Registry
	sess     *Session
}

// Compile writes node into acc. An AND node becomes a nested group of its
// parts; an OR node becomes a nested group whose first part is added with
// where and the rest with orWhere. Leaves go to the first recognising
// condition.
func Compile(sess *Session, registry *Registry, node query.Node, acc sqlbuilder.Accumulator) {
	c := &Compiler{registry: registry, sess: sess}
	c.compile(node, acc)
}

func (c *Compiler) compile(node query.Node, acc sqlbuilder.Accumulator) {
	switch n := node.(type) {
	case nil:
		return
	case query.Leaf:
		c.leaf(n.Expr, acc)
	case query.Invalid:
		c.sess.drop(n.Expr, n.Reason, nil)
	case query.And:
		acc.WhereGroup(func(g sqlbuilder.Accumulator) {
			for _, part := range n.Parts {
				g.WhereGroup(func(pg sqlbuilder.Accumulator) { c.compile(part, pg) })
			}
		})
	case query.Or:
		acc.WhereGroup(func(g sqlbuilder.Accumulator) {
			for i, part := range n.Parts {
				branch := func(pg sqlbuilder.Accumulator) { c.compile(part, pg) }
				if i == 0 {
					g.WhereGroup(branch)
				} else {
					g.OrWhereGroup(branch)
				}
			}
		})
	default:
		c.sess.drop(fmt.Sprintf("%v", n), fmt.Sprintf("unsupported node %T", n), nil)
	}
}

// leaf applies one condition inside its own group so that a fault part-way
// through leaves nothing behind.
func (c *Compiler) leaf(expr string, acc sqlbuilder.Accumulator) {
	cond := c.registry.Resolve(expr)
	if cond == nil {
		c.sess.drop(expr, "unrecognised condition", nil)
		return
	}
	acc.WhereGroup(func(g sqlbuilder.Accumulator) {
		defer func() {
			if r := recover(); r != nil {
				g.Reset()
				c.sess.dropped = append(c.sess.dropped, Dropped{Expr: expr, Reason: "internal error"})
				c.sess.log.WithFields(logrus.Fields{
					"expression": expr,
					"condition":  cond.Name(),
					"error":      fmt.Sprint(r),
				}).Error("filter condition failed")
			}
		}()
		cond.Apply(c.sess, g, expr)
	})
}
