package jobfilter

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jobboard/jobfilter/jobfilter/planner"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

func serviceAttributes() *schema.AttributeSet {
	return schema.NewAttributeSet(
		schema.Attribute{ID: 1, Name: "level", Type: schema.AttrSelect, Options: []string{"Junior", "Senior"}},
		schema.Attribute{ID: 2, Name: "years_experience", Type: schema.AttrNumber},
	)
}

func newTestService(t *testing.T, dialect sqlbuilder.Dialect) (*FilterService, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	opts := DefaultOptions()
	opts.Logger = log
	return NewFilterService(schema.JobEntity(), dialect, serviceAttributes(), opts), hook
}

func TestApplyFilterAndSort(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.SQLite)
	q := svc.Apply(context.Background(), Params{
		Filter:        "job_type=full-time AND languages HAS_ANY (Go)",
		SortBy:        "salary_max",
		SortDirection: "desc",
	})
	sql, args, err := q.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM jobs WHERE (jobs.job_type = ? AND EXISTS (SELECT 1 FROM languages")
	assert.Contains(t, sql, "ORDER BY jobs.salary_max DESC, jobs.id ASC")
	assert.Equal(t, []any{"full-time", "Go"}, args)
}

func TestApplyEmptyParams(t *testing.T) {
	svc, hook := newTestService(t, sqlbuilder.SQLite)
	c := svc.Compile(context.Background(), Params{})
	sql, args, err := c.Query.ToSQL()
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY jobs.id ASC")
	assert.Empty(t, args)
	assert.Empty(t, c.Dropped)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level, e.Message)
	}
}

func TestCompileTagsLogEntries(t *testing.T) {
	svc, hook := newTestService(t, sqlbuilder.SQLite)
	c := svc.Compile(context.Background(), Params{Filter: "password=x AND attribute:nope=1"})
	require.NotEmpty(t, c.ID)
	require.Len(t, c.Dropped, 2)

	warnings := 0
	for _, e := range hook.AllEntries() {
		assert.Equal(t, c.ID, e.Data["compile_id"])
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestCompileIDsDiffer(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.SQLite)
	a := svc.Compile(context.Background(), Params{Filter: "status=open"})
	b := svc.Compile(context.Background(), Params{Filter: "status=open"})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestApplyPostgresPlaceholders(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.Postgres)
	q := svc.Apply(context.Background(), Params{
		Filter: "title LIKE go AND attribute:level=(Senior)",
		SortBy: "attribute:years_experience",
	})
	sql, args, err := q.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "sort_values.attribute_id = $1")
	assert.Contains(t, sql, "CAST(jobs.title AS TEXT) ILIKE $2")
	assert.Contains(t, sql, "NULLS LAST")
	assert.NotContains(t, sql, "?")
	assert.Equal(t, []any{int64(2), "%go%", int64(1), "Senior"}, args)
}

// explodingDialect fails while the sort is being compiled, outside any
// single filter clause.
type explodingDialect struct {
	sqlbuilder.Dialect
}

func (explodingDialect) NumericExpr(string) string { panic("no numeric support") }

func TestCompileRecoversWithBaseQuery(t *testing.T) {
	svc, hook := newTestService(t, explodingDialect{sqlbuilder.SQLite})
	c := svc.Compile(context.Background(), Params{
		Filter: "status=open",
		SortBy: "attribute:years_experience",
	})
	require.NotNil(t, c.Query)
	assert.Equal(t, 0, c.Query.Scope().Len())
	assert.Empty(t, c.Query.Orders())
	require.Len(t, c.Dropped, 1)
	assert.Equal(t, "internal error", c.Dropped[0].Reason)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestCustomRegistryMustBeOrdered(t *testing.T) {
	e := schema.JobEntity()
	_, err := NewFilterServiceWithRegistry(e, sqlbuilder.SQLite, nil,
		planner.NewRegistry(planner.NewBasicCondition(e), planner.NewExistsCondition(e)), DefaultOptions())
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConfig))

	svc, err := NewFilterServiceWithRegistry(e, sqlbuilder.SQLite, nil,
		planner.NewRegistry(planner.NewExistsCondition(e), planner.NewBasicCondition(e)), DefaultOptions())
	require.NoError(t, err)
	c := svc.Compile(context.Background(), Params{Filter: "languages HAS_ANY (Go) AND locations EXISTS"})
	require.Len(t, c.Dropped, 1)
	assert.Equal(t, "languages HAS_ANY (Go)", c.Dropped[0].Expr)
}

func TestPaging(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.SQLite)
	tests := []struct {
		in            Params
		page, perPage int
	}{
		{Params{}, 1, DefaultPerPage},
		{Params{Page: 3, PerPage: 20}, 3, 20},
		{Params{Page: -1, PerPage: 1000}, 1, DefaultMaxPerPage},
	}
	for _, tt := range tests {
		page, perPage := svc.paging(tt.in)
		assert.Equal(t, tt.page, page)
		assert.Equal(t, tt.perPage, perPage)
	}
}

func TestExplain(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.SQLite)
	ex, err := svc.Explain(context.Background(), Params{Filter: "status=open", Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Contains(t, ex.SQL, "LIMIT 10 OFFSET 10")
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT jobs.id FROM jobs WHERE jobs.status = ?) AS filtered", ex.CountSQL)
	assert.Equal(t, []any{"open"}, ex.CountArgs)
	assert.NotEmpty(t, ex.Steps)
}

func TestConcurrentCompilationsShareRegistry(t *testing.T) {
	svc, _ := newTestService(t, sqlbuilder.SQLite)

	const n = 32
	results := make([]string, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			q := svc.Apply(ctx, Params{
				Filter: fmt.Sprintf("attribute:years_experience>=%d AND (languages HAS_ANY (Go) OR is_remote=true)", i),
				SortBy: "attribute:level",
			})
			sql, args, err := q.ToSQL()
			if err != nil {
				return err
			}
			if len(args) != 5 {
				return fmt.Errorf("compilation %d: got %d args", i, len(args))
			}
			results[i] = sql
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i := 1; i < n; i++ {
		assert.Equal(t, results[0], results[i])
	}
}
