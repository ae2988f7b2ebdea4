package planner

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

var dateTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// BasicCondition compiles "<field> <op> <value>" against the entity's own
// allow-listed columns.
type BasicCondition struct {
	entity schema.Entity
}

func NewBasicCondition(entity schema.Entity) *BasicCondition {
	return &BasicCondition{entity: entity}
}

func (c *BasicCondition) Name() string   { return "basic" }
func (c *BasicCondition) CatchAll() bool { return true }

func (c *BasicCondition) Recognizes(expr string) bool {
	field, _, _, ok := query.SplitComparison(expr)
	return ok && c.entity.HasField(field)
}

func (c *BasicCondition) Apply(sess *Session, acc sqlbuilder.Accumulator, expr string) {
	name, op, raw, ok := query.SplitComparison(expr)
	if !ok {
		sess.drop(expr, "no comparison operator", nil)
		return
	}
	field, ok := c.entity.Field(name)
	if !ok {
		sess.drop(expr, "field is not filterable", logrus.Fields{"field": name})
		return
	}

	if query.IsParenthesized(raw) {
		if !applyList(acc, field.Name, op, query.ParseValueList(raw)) {
			sess.drop(expr, "value list needs = or !=", logrus.Fields{"field": name, "operator": op.String()})
			return
		}
		sess.step("%s %s list on %s", c.Name(), op, field.Name)
		return
	}

	cmp, ok := fieldComparison(field, op, raw)
	if !ok {
		sess.drop(expr, "value does not match the field type", logrus.Fields{"field": name, "kind": field.Kind.String()})
		return
	}
	cmp.apply(acc)
	sess.step("%s %s %s", c.Name(), field.Name, op)
}

// fieldComparison coerces raw into the Go type that binds against a native
// column of the given kind.
func fieldComparison(field schema.Field, op query.Op, raw string) (comparison, bool) {
	cmp := comparison{column: field.Name, op: op, raw: raw, value: raw}
	if op == query.OpLike {
		return cmp, true
	}
	switch field.Kind {
	case schema.FieldBool:
		switch strings.ToLower(raw) {
		case "true", "1":
			cmp.value = true
		case "false", "0":
			cmp.value = false
		default:
			return cmp, false
		}
	case schema.FieldNumber:
		f, ok := schema.ParseNumber(raw)
		if !ok {
			return cmp, false
		}
		cmp.value = f
	case schema.FieldDateTime:
		if !validDateTime(raw) {
			return cmp, false
		}
	}
	return cmp, true
}

func validDateTime(s string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
