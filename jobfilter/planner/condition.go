package planner

import (
	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// Condition compiles one kind of leaf expression. Recognizes must be cheap
// and side-effect free; Apply writes zero or more clauses into acc and never
// fails: anything it cannot compile is logged through the session and dropped.
type Condition interface {
	Name() string
	Recognizes(expr string) bool
	Apply(sess *Session, acc sqlbuilder.Accumulator, expr string)
}

// catchAll is implemented by conditions that recognise broadly enough that
// they must be consulted after every more specific condition.
type catchAll interface {
	CatchAll() bool
}

func isCatchAll(c Condition) bool {
	ca, ok := c.(catchAll)
	return ok && ca.CatchAll()
}

// comparison is a parsed "<column> <op> <value>" ready to be written into a
// scope. Every condition turns its operator into SQL through apply.
type comparison struct {
	column string
	op     query.Op
	raw    string
	value  any
	// numeric compares through a numeric cast of a text column
	numeric bool
}

func (c comparison) apply(acc sqlbuilder.Accumulator) {
	switch {
	case c.op == query.OpLike:
		acc.WhereLike(c.column, c.raw)
	case c.numeric:
		f, _ := c.value.(float64)
		acc.WhereNumber(c.column, c.op, f)
	default:
		acc.Where(c.column, c.op, c.value)
	}
}

// applyList writes a (...) value list: = becomes IN and != becomes NOT IN.
// Any other operator is not meaningful for a list.
func applyList(acc sqlbuilder.Accumulator, column string, op query.Op, values []string) bool {
	switch op {
	case query.OpEq:
		acc.WhereIn(column, values)
	case query.OpNotEq:
		acc.WhereNotIn(column, values)
	default:
		return false
	}
	return true
}
