package planner

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

const (
	hasAnyToken = " HAS_ANY "
	isAnyToken  = " IS_ANY "
	// remoteValue in an IS_ANY list on a relation with a flag field matches
	// the flag instead of a related row
	remoteValue = "remote"
)

// membership is a parsed "<relation> <token> (v1, v2, ...)"
type membership struct {
	relation string
	values   []string
}

func parseMembership(expr, token string) (membership, bool) {
	idx := strings.Index(expr, token)
	if idx < 0 {
		return membership{}, false
	}
	return membership{
		relation: strings.TrimSpace(expr[:idx]),
		values:   query.ParseValueList(expr[idx+len(token):]),
	}, true
}

func resolveRelation(sess *Session, entity schema.Entity, expr, name string) (schema.Relation, bool) {
	rel, ok := entity.Relation(name)
	if !ok {
		sess.drop(expr, "relation is not filterable", logrus.Fields{"relation": name})
	}
	return rel, ok
}

// HasAnyCondition matches rows related to at least one of the listed labels.
type HasAnyCondition struct {
	entity schema.Entity
}

func NewHasAnyCondition(entity schema.Entity) *HasAnyCondition {
	return &HasAnyCondition{entity: entity}
}

func (c *HasAnyCondition) Name() string { return "has_any" }

func (c *HasAnyCondition) Recognizes(expr string) bool {
	return strings.Contains(expr, hasAnyToken)
}

func (c *HasAnyCondition) Apply(sess *Session, acc sqlbuilder.Accumulator, expr string) {
	m, ok := parseMembership(expr, hasAnyToken)
	if !ok {
		sess.drop(expr, "malformed HAS_ANY", nil)
		return
	}
	rel, ok := resolveRelation(sess, c.entity, expr, m.relation)
	if !ok {
		return
	}
	acc.WhereHas(rel, func(sub sqlbuilder.Accumulator) {
		sub.WhereIn(rel.Label(), m.values)
	})
	sess.step("%s %s.%s in %d values", c.Name(), rel.Name, rel.Label(), len(m.values))
}

// IsAnyCondition is HAS_ANY with one extension: on a relation that carries a
// flag field, the value "Remote" matches entities whose flag is set.
type IsAnyCondition struct {
	entity schema.Entity
}

func NewIsAnyCondition(entity schema.Entity) *IsAnyCondition {
	return &IsAnyCondition{entity: entity}
}

func (c *IsAnyCondition) Name() string { return "is_any" }

func (c *IsAnyCondition) Recognizes(expr string) bool {
	return strings.Contains(expr, isAnyToken)
}

func (c *IsAnyCondition) Apply(sess *Session, acc sqlbuilder.Accumulator, expr string) {
	m, ok := parseMembership(expr, isAnyToken)
	if !ok {
		sess.drop(expr, "malformed IS_ANY", nil)
		return
	}
	rel, ok := resolveRelation(sess, c.entity, expr, m.relation)
	if !ok {
		return
	}

	rest, flagged := splitFlagValue(m.values)
	if rel.FlagField == "" || !flagged {
		acc.WhereHas(rel, func(sub sqlbuilder.Accumulator) {
			sub.WhereIn(rel.Label(), m.values)
		})
		sess.step("%s %s.%s in %d values", c.Name(), rel.Name, rel.Label(), len(m.values))
		return
	}

	acc.WhereGroup(func(g sqlbuilder.Accumulator) {
		g.Where(rel.FlagField, query.OpEq, true)
		if len(rest) > 0 {
			g.OrWhereHas(rel, func(sub sqlbuilder.Accumulator) {
				sub.WhereIn(rel.Label(), rest)
			})
		}
	})
	sess.step("%s %s or %s.%s in %d values", c.Name(), rel.FlagField, rel.Name, rel.Label(), len(rest))
}

// splitFlagValue removes every "Remote" (any case) from values and reports
// whether one was present.
func splitFlagValue(values []string) ([]string, bool) {
	rest := make([]string, 0, len(values))
	found := false
	for _, v := range values {
		if strings.EqualFold(v, remoteValue) {
			found = true
			continue
		}
		rest = append(rest, v)
	}
	return rest, found
}

// ExistsCondition matches entities with at least one related row.
type ExistsCondition struct {
	entity schema.Entity
}

func NewExistsCondition(entity schema.Entity) *ExistsCondition {
	return &ExistsCondition{entity: entity}
}

const existsSuffix = " EXISTS"

func (c *ExistsCondition) Name() string { return "exists" }

func (c *ExistsCondition) Recognizes(expr string) bool {
	return strings.HasSuffix(strings.TrimSpace(expr), existsSuffix)
}

func (c *ExistsCondition) Apply(sess *Session, acc sqlbuilder.Accumulator, expr string) {
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(expr), existsSuffix))
	rel, ok := resolveRelation(sess, c.entity, expr, name)
	if !ok {
		return
	}
	acc.WhereHas(rel, nil)
	sess.step("%s %s", c.Name(), rel.Name)
}
