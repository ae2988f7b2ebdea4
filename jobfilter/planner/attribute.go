package planner

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// AttributePrefix introduces a dynamic attribute in filters and sort keys.
const AttributePrefix = "attribute:"

// AttributeCondition compiles "attribute:<name> <op> <value>" into an EXISTS
// over the entity's attribute value rows.
type AttributeCondition struct {
	entity schema.Entity
}

func NewAttributeCondition(entity schema.Entity) *AttributeCondition {
	return &AttributeCondition{entity: entity}
}

func (c *AttributeCondition) Name() string { return "attribute" }

func (c *AttributeCondition) Recognizes(expr string) bool {
	return strings.HasPrefix(strings.TrimSpace(expr), AttributePrefix)
}

func (c *AttributeCondition) Apply(sess *Session, acc sqlbuilder.Accumulator, expr string) {
	body := strings.TrimPrefix(strings.TrimSpace(expr), AttributePrefix)
	name, op, raw, ok := query.SplitAttributeComparison(body)
	if !ok {
		sess.drop(expr, "malformed attribute condition", nil)
		return
	}
	attr, ok := sess.Attribute(name)
	if !ok {
		sess.drop(expr, "unknown attribute", logrus.Fields{"attribute": name})
		return
	}

	store := c.entity.Attributes
	rel := c.entity.AttributeRelation()

	if query.IsParenthesized(raw) {
		values := query.ParseValueList(raw)
		if attr.Type != schema.AttrSelect || (op != query.OpEq && op != query.OpNotEq) {
			sess.drop(expr, "value list needs a select attribute and = or !=",
				logrus.Fields{"attribute": name, "type": string(attr.Type), "operator": op.String()})
			return
		}
		acc.WhereHas(rel, func(sub sqlbuilder.Accumulator) {
			sub.Where(store.AttributeKey, query.OpEq, attr.ID)
			applyList(sub, store.ValueColumn, op, values)
		})
		sess.step("%s %s %s list", c.Name(), attr.Name, op)
		return
	}

	cmp, ok := attributeComparison(attr, store.ValueColumn, op, query.Unquote(raw))
	if !ok {
		sess.drop(expr, "value does not match the attribute type",
			logrus.Fields{"attribute": name, "type": string(attr.Type)})
		return
	}
	acc.WhereHas(rel, func(sub sqlbuilder.Accumulator) {
		sub.Where(store.AttributeKey, query.OpEq, attr.ID)
		cmp.apply(sub)
	})
	sess.step("%s %s %s", c.Name(), attr.Name, op)
}

// attributeComparison types the literal by the attribute's declared type.
// Stored values are normalised on write, so dates compare as YYYY-MM-DD and
// booleans as "true"/"false". A boolean literal outside true/false/1/0 is
// compared as written.
func attributeComparison(attr schema.Attribute, column string, op query.Op, raw string) (comparison, bool) {
	cmp := comparison{column: column, op: op, raw: raw, value: raw}
	if op == query.OpLike {
		return cmp, true
	}
	switch attr.Type {
	case schema.AttrNumber:
		f, ok := schema.ParseNumber(raw)
		if !ok {
			return cmp, false
		}
		cmp.value = f
		cmp.numeric = true
	case schema.AttrDate:
		d, ok := schema.ParseDate(raw)
		if !ok {
			return cmp, false
		}
		cmp.value = d
	case schema.AttrBoolean:
		if b, ok := schema.ParseBoolLiteral(raw); ok {
			cmp.value = b
		}
	}
	return cmp, true
}
