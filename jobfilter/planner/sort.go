package planner

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

const sortAlias = "sort_values"

// SortCompiler applies sort_by/sort_direction: a native field, an
// "attribute:<name>" key, or the entity's fallback order for anything else.
type SortCompiler struct {
	entity schema.Entity
}

func NewSortCompiler(entity schema.Entity) *SortCompiler {
	return &SortCompiler{entity: entity}
}

func (c *SortCompiler) Apply(sess *Session, q sqlbuilder.Sorter, sortBy, direction string) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		return
	}
	dir, ok := sqlbuilder.ParseDirection(direction)
	if !ok {
		sess.log.WithField("sort_direction", direction).Warn("unknown sort direction, using asc")
	}

	if strings.HasPrefix(sortBy, AttributePrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(sortBy, AttributePrefix))
		if attr, ok := sess.Attribute(name); ok {
			c.byAttribute(q, attr, dir)
			sess.step("sort attribute %s %s", attr.Name, dir)
			return
		}
		c.fallback(sess, q, sortBy)
		return
	}

	if c.entity.HasField(sortBy) {
		q.OrderBy(sqlbuilder.Order{Expr: c.entity.Column(sortBy), Dir: dir})
		sess.step("sort %s %s", sortBy, dir)
		return
	}
	c.fallback(sess, q, sortBy)
}

// byAttribute left-joins the attribute's value rows so that entities without
// a value are kept, and orders them last in either direction.
func (c *SortCompiler) byAttribute(q sqlbuilder.Sorter, attr schema.Attribute, dir sqlbuilder.Direction) {
	store := c.entity.Attributes
	q.LeftJoin(fmt.Sprintf("%s AS %s ON %s.%s = %s AND %s.%s = ?",
		store.Table, sortAlias,
		sortAlias, store.OwnerKey, c.entity.Column(c.entity.PrimaryKey),
		sortAlias, store.AttributeKey), attr.ID)

	expr := sortAlias + "." + store.ValueColumn
	if attr.Type == schema.AttrNumber {
		expr = q.Dialect().NumericExpr(expr)
	}
	q.OrderBy(sqlbuilder.Order{Expr: expr, Dir: dir, NullsLast: true})
	q.Select(c.entity.Columns()...)
}

func (c *SortCompiler) fallback(sess *Session, q sqlbuilder.Sorter, sortBy string) {
	fb := c.entity.FallbackSort
	dir := sqlbuilder.Asc
	if fb.Descending {
		dir = sqlbuilder.Desc
	}
	q.OrderBy(sqlbuilder.Order{Expr: c.entity.Column(fb.Field), Dir: dir})
	sess.log.WithFields(logrus.Fields{"sort_by": sortBy}).Warn("unknown sort key, using fallback order")
	sess.step("sort fallback %s %s", fb.Field, dir)
}
