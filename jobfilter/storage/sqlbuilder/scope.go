package sqlbuilder

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// Accumulator is the query surface the condition compilers write into.
// Clauses added with the plain methods are ANDed with what came before; the
// Or variants OR the new clause with everything accumulated so far at that
// level, following SQL precedence.
type Accumulator interface {
	Where(column string, op query.Op, value any)
	WhereNumber(column string, op query.Op, value float64)
	WhereIn(column string, values []string)
	WhereNotIn(column string, values []string)
	WhereLike(column, needle string)
	WhereGroup(fn func(Accumulator))
	OrWhereGroup(fn func(Accumulator))
	WhereHas(rel schema.Relation, fn func(Accumulator))
	OrWhereHas(rel schema.Relation, fn func(Accumulator))
	// Reset discards every clause added at this level
	Reset()
}

type connector int

const (
	connAnd connector = iota
	connOr
)

type clause struct {
	conn connector
	pred sq.Sqlizer
}

// Scope is one level of WHERE clauses. Bare column names are qualified with
// the scope's table.
type Scope struct {
	dialect Dialect
	table   string
	key     string
	clauses []clause
}

// NewScope starts an empty scope over table, whose primary key is key.
func NewScope(dialect Dialect, table, key string) *Scope {
	if dialect == nil {
		dialect = SQLite
	}
	if key == "" {
		key = "id"
	}
	return &Scope{dialect: dialect, table: table, key: key}
}

func (s *Scope) column(name string) string {
	if strings.ContainsAny(name, ".(") {
		return name
	}
	return s.table + "." + name
}

func (s *Scope) add(conn connector, pred sq.Sqlizer) {
	s.clauses = append(s.clauses, clause{conn: conn, pred: pred})
}

func (s *Scope) Where(column string, op query.Op, value any) {
	if op == query.OpLike {
		s.WhereLike(column, fmt.Sprint(value))
		return
	}
	s.add(connAnd, comparison(s.column(column), op, value))
}

func (s *Scope) WhereNumber(column string, op query.Op, value float64) {
	s.add(connAnd, comparison(s.dialect.NumericExpr(s.column(column)), op, value))
}

func (s *Scope) WhereIn(column string, values []string) {
	s.add(connAnd, sq.Eq{s.column(column): nonNil(values)})
}

func (s *Scope) WhereNotIn(column string, values []string) {
	s.add(connAnd, sq.NotEq{s.column(column): nonNil(values)})
}

func (s *Scope) WhereLike(column, needle string) {
	expr := fmt.Sprintf(`%s %s ? ESCAPE '\'`, s.dialect.TextExpr(s.column(column)), s.dialect.LikeOperator())
	s.add(connAnd, sq.Expr(expr, "%"+EscapeLike(needle)+"%"))
}

func (s *Scope) WhereGroup(fn func(Accumulator)) {
	s.group(connAnd, fn)
}

func (s *Scope) OrWhereGroup(fn func(Accumulator)) {
	s.group(connOr, fn)
}

func (s *Scope) group(conn connector, fn func(Accumulator)) {
	child := NewScope(s.dialect, s.table, s.key)
	fn(child)
	if pred := child.Sqlizer(); pred != nil {
		s.add(conn, pred)
	}
}

func (s *Scope) WhereHas(rel schema.Relation, fn func(Accumulator)) {
	s.has(connAnd, rel, fn)
}

func (s *Scope) OrWhereHas(rel schema.Relation, fn func(Accumulator)) {
	s.has(connOr, rel, fn)
}

func (s *Scope) has(conn connector, rel schema.Relation, fn func(Accumulator)) {
	inner := NewScope(s.dialect, rel.Table, "id")
	if fn != nil {
		fn(inner)
	}
	s.add(conn, exists{sub: s.relationSubquery(rel, inner)})
}

func (s *Scope) relationSubquery(rel schema.Relation, inner *Scope) sq.SelectBuilder {
	owner := s.table + "." + s.key
	b := sq.Select("1").From(rel.Table)
	switch rel.Strategy {
	case schema.JoinPivot:
		b = b.Join(fmt.Sprintf("%s ON %s.%s = %s",
			rel.Pivot, rel.Pivot, rel.PivotRelatedKey, rel.Column("id"))).
			Where(fmt.Sprintf("%s.%s = %s", rel.Pivot, rel.PivotOwnerKey, owner))
	default:
		b = b.Where(fmt.Sprintf("%s = %s", rel.Column(rel.ForeignKey), owner))
	}
	if pred := inner.Sqlizer(); pred != nil {
		b = b.Where(pred)
	}
	return b
}

func (s *Scope) Reset() {
	s.clauses = nil
}

// Len is the number of clauses at this level.
func (s *Scope) Len() int {
	return len(s.clauses)
}

// Sqlizer folds the clauses into one predicate: runs of AND-connected clauses
// are ORed together. It returns nil for an empty scope.
func (s *Scope) Sqlizer() sq.Sqlizer {
	if len(s.clauses) == 0 {
		return nil
	}

	var runs []sq.And
	for i, c := range s.clauses {
		if i == 0 || c.conn == connOr {
			runs = append(runs, sq.And{})
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], c.pred)
	}

	terms := make(sq.Or, 0, len(runs))
	for _, run := range runs {
		if len(run) == 1 {
			terms = append(terms, run[0])
			continue
		}
		terms = append(terms, run)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return terms
}

// ToSql renders the folded predicate, "" for an empty scope.
func (s *Scope) ToSql() (string, []any, error) {
	pred := s.Sqlizer()
	if pred == nil {
		return "", nil, nil
	}
	return pred.ToSql()
}

func comparison(column string, op query.Op, value any) sq.Sqlizer {
	switch op {
	case query.OpNotEq:
		return sq.NotEq{column: value}
	case query.OpGt:
		return sq.Gt{column: value}
	case query.OpLt:
		return sq.Lt{column: value}
	case query.OpGte:
		return sq.GtOrEq{column: value}
	case query.OpLte:
		return sq.LtOrEq{column: value}
	default:
		return sq.Eq{column: value}
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type exists struct {
	sub sq.SelectBuilder
}

func (e exists) ToSql() (string, []any, error) {
	sql, args, err := e.sub.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (" + sql + ")", args, nil
}
