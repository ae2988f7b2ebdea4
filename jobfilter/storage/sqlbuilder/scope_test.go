package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
)

func render(t *testing.T, s *Scope) (string, []any) {
	t.Helper()
	sql, args, err := s.ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestScopeWhereOperators(t *testing.T) {
	tests := []struct {
		op   query.Op
		want string
	}{
		{query.OpEq, "jobs.salary_min = ?"},
		{query.OpNotEq, "jobs.salary_min <> ?"},
		{query.OpGt, "jobs.salary_min > ?"},
		{query.OpLt, "jobs.salary_min < ?"},
		{query.OpGte, "jobs.salary_min >= ?"},
		{query.OpLte, "jobs.salary_min <= ?"},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			s := NewScope(SQLite, "jobs", "id")
			s.Where("salary_min", tt.op, 100.0)
			sql, args := render(t, s)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []any{100.0}, args)
		})
	}
}

func TestScopeWhereLikeEscapes(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.Where("title", query.OpLike, "100%_done")
	sql, args := render(t, s)
	assert.Equal(t, `jobs.title LIKE ? ESCAPE '\'`, sql)
	assert.Equal(t, []any{`%100\%\_done%`}, args)

	pg := NewScope(Postgres, "jobs", "id")
	pg.WhereLike("title", "dev")
	sql, _ = render(t, pg)
	assert.Contains(t, sql, "ILIKE")
}

func TestScopeWhereInEmpty(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.WhereIn("job_type", nil)
	sql, _ := render(t, s)
	assert.Equal(t, "(1=0)", sql)

	s = NewScope(SQLite, "jobs", "id")
	s.WhereNotIn("job_type", []string{})
	sql, _ = render(t, s)
	assert.Equal(t, "(1=1)", sql)
}

func TestScopeWhereIn(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.WhereIn("job_type", []string{"a", "b"})
	s.WhereNotIn("status", []string{"draft"})
	sql, args := render(t, s)
	assert.Equal(t, "(jobs.job_type IN (?,?) AND jobs.status NOT IN (?))", sql)
	assert.Equal(t, []any{"a", "b", "draft"}, args)
}

func TestScopeOrFoldsByPrecedence(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.Where("a", query.OpEq, 1)
	s.Where("b", query.OpEq, 2)
	s.OrWhereGroup(func(g Accumulator) {
		g.Where("c", query.OpEq, 3)
	})
	sql, args := render(t, s)
	assert.Equal(t, "((jobs.a = ? AND jobs.b = ?) OR jobs.c = ?)", sql)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestScopeEmptyGroupIsDropped(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.WhereGroup(func(Accumulator) {})
	assert.Equal(t, 0, s.Len())

	s.OrWhereGroup(func(g Accumulator) { g.Where("a", query.OpEq, 1) })
	sql, _ := render(t, s)
	assert.Equal(t, "jobs.a = ?", sql)
}

func TestScopeWhereHasPivot(t *testing.T) {
	rel, ok := schema.JobEntity().Relation("languages")
	require.True(t, ok)

	s := NewScope(SQLite, "jobs", "id")
	s.WhereHas(rel, func(g Accumulator) {
		g.WhereIn(rel.Label(), []string{"PHP", "Go"})
	})
	sql, args := render(t, s)
	assert.Equal(t, "EXISTS (SELECT 1 FROM languages JOIN job_language ON job_language.language_id = languages.id "+
		"WHERE job_language.job_id = jobs.id AND languages.name IN (?,?))", sql)
	assert.Equal(t, []any{"PHP", "Go"}, args)
}

func TestScopeWhereHasDirect(t *testing.T) {
	rel, ok := schema.JobEntity().Relation("attributeValues")
	require.True(t, ok)

	s := NewScope(SQLite, "jobs", "id")
	s.WhereHas(rel, nil)
	sql, args := render(t, s)
	assert.Equal(t, "EXISTS (SELECT 1 FROM job_attribute_values WHERE job_attribute_values.job_id = jobs.id)", sql)
	assert.Empty(t, args)
}

func TestScopeWhereNumberCasts(t *testing.T) {
	s := NewScope(SQLite, "job_attribute_values", "id")
	s.WhereNumber("value", query.OpGte, 3)
	sql, args := render(t, s)
	assert.Contains(t, sql, "CAST(TRIM(job_attribute_values.value) AS REAL)")
	assert.Contains(t, sql, ">= ?")
	assert.Equal(t, []any{3.0}, args)
}

func TestScopeReset(t *testing.T) {
	s := NewScope(SQLite, "jobs", "id")
	s.Where("a", query.OpEq, 1)
	s.Reset()
	sql, args := render(t, s)
	assert.Equal(t, "", sql)
	assert.Nil(t, args)
}
