package sqlbuilder

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect carries the few places where the SQL the compiler emits differs
// between backends.
type Dialect interface {
	Name() string
	Placeholder() sq.PlaceholderFormat
	// LikeOperator is a case-insensitive LIKE
	LikeOperator() string
	// TextExpr lets LIKE run against a column of any type
	TextExpr(column string) string
	// NumericExpr casts a text column to a number, or NULL when it is not numeric
	NumericExpr(column string) string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                      { return "sqlite" }
func (sqliteDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }
func (sqliteDialect) LikeOperator() string              { return "LIKE" }
func (sqliteDialect) TextExpr(column string) string     { return column }

// NumericExpr accepts an optional leading sign, digits and at most one dot
// followed by a digit, the same shape the postgres pattern allows.
func (sqliteDialect) NumericExpr(column string) string {
	t := "TRIM(" + column + ")"
	return "(CASE WHEN " + t + " GLOB '*[0-9]*'" +
		" AND " + t + " NOT GLOB '*[^0-9.+-]*'" +
		" AND " + t + " NOT GLOB '?*[+-]*'" +
		" AND " + t + " NOT GLOB '*.*.*'" +
		" AND " + t + " NOT GLOB '*.'" +
		" THEN CAST(" + t + " AS REAL) END)"
}

type postgresDialect struct{}

func (postgresDialect) Name() string                      { return "postgres" }
func (postgresDialect) Placeholder() sq.PlaceholderFormat { return sq.Dollar }
func (postgresDialect) LikeOperator() string              { return "ILIKE" }
func (postgresDialect) TextExpr(column string) string     { return "CAST(" + column + " AS TEXT)" }

func (postgresDialect) NumericExpr(column string) string {
	return "(CASE WHEN " + column + ` ~ '^\s*[-+]{0,1}[0-9]*\.{0,1}[0-9]+\s*$' THEN CAST(` +
		column + " AS DOUBLE PRECISION) END)"
}

var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so that s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
