package sqlbuilder

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// Direction is an ORDER BY direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection reads asc/desc case-insensitively. ok is false for anything
// else, in which case Asc is returned.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return Asc, false
	}
}

// Order is one ORDER BY term
type Order struct {
	Expr      string
	Dir       Direction
	NullsLast bool
}

func (o Order) String() string {
	s := o.Expr + " " + strings.ToUpper(string(o.Dir))
	if o.NullsLast {
		s += " NULLS LAST"
	}
	return s
}

// Sorter is the query surface the sort compiler writes into.
type Sorter interface {
	Dialect() Dialect
	Select(columns ...string)
	LeftJoin(join string, args ...any)
	OrderBy(o Order)
}

type joinClause struct {
	sql  string
	args []any
}

// Query is the SELECT being built for one entity: the WHERE scope the filter
// compiles into plus joins, ordering and the select list.
type Query struct {
	entity  schema.Entity
	dialect Dialect
	where   *Scope
	columns []string
	joins   []joinClause
	orders  []Order
}

// NewQuery starts an unfiltered query over entity.
func NewQuery(entity schema.Entity, dialect Dialect) *Query {
	if dialect == nil {
		dialect = SQLite
	}
	return &Query{
		entity:  entity,
		dialect: dialect,
		where:   NewScope(dialect, entity.Table, entity.PrimaryKey),
	}
}

func (q *Query) Entity() schema.Entity { return q.entity }
func (q *Query) Dialect() Dialect      { return q.dialect }

// Scope is the top-level WHERE scope.
func (q *Query) Scope() *Scope { return q.where }

func (q *Query) Select(columns ...string) {
	q.columns = append([]string(nil), columns...)
}

func (q *Query) LeftJoin(join string, args ...any) {
	q.joins = append(q.joins, joinClause{sql: join, args: args})
}

func (q *Query) OrderBy(o Order) {
	q.orders = append(q.orders, o)
}

// Orders returns the ORDER BY terms added so far.
func (q *Query) Orders() []Order {
	return append([]Order(nil), q.orders...)
}

func (q *Query) selectList() []string {
	if len(q.columns) > 0 {
		return q.columns
	}
	return q.entity.Columns()
}

func (q *Query) base(columns ...string) sq.SelectBuilder {
	b := sq.Select(columns...).From(q.entity.Table)
	for _, j := range q.joins {
		b = b.LeftJoin(j.sql, j.args...)
	}
	if pred := q.where.Sqlizer(); pred != nil {
		b = b.Where(pred)
	}
	return b
}

func (q *Query) orderTerms() []string {
	pk := q.entity.Column(q.entity.PrimaryKey)
	terms := make([]string, 0, len(q.orders)+1)
	tie := true
	for _, o := range q.orders {
		terms = append(terms, o.String())
		if o.Expr == pk {
			tie = false
		}
	}
	if tie {
		terms = append(terms, Order{Expr: pk, Dir: Asc}.String())
	}
	return terms
}

// ToSQL renders the full query with the dialect's placeholders.
func (q *Query) ToSQL() (string, []any, error) {
	return q.PageSQL(0, 0)
}

// PageSQL renders the query limited to one page. A zero limit means no limit.
func (q *Query) PageSQL(limit, offset uint64) (string, []any, error) {
	b := q.base(q.selectList()...).OrderBy(q.orderTerms()...)
	if limit > 0 {
		b = b.Limit(limit)
	}
	if offset > 0 {
		b = b.Offset(offset)
	}
	return q.render(b)
}

// CountSQL counts the rows the filter matches, ignoring order and paging.
func (q *Query) CountSQL() (string, []any, error) {
	inner := q.base(q.entity.Column(q.entity.PrimaryKey))
	return q.render(sq.Select("COUNT(*)").FromSelect(inner, "filtered"))
}

func (q *Query) render(b sq.SelectBuilder) (string, []any, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}
	sql, err = q.dialect.Placeholder().ReplacePlaceholders(sql)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}
