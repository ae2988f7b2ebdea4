package jobfilter_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jobboard/jobfilter/jobfilter"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlite"
)

func monotonicNow(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func salary(v float64) *float64 { return &v }

// newStore creates a database with four jobs:
//
//	1 Senior Go Engineer   full-time  New York  Go           Senior 5y visa
//	2 Frontend Developer   contract   remote    JS, PHP      Junior 1y
//	3 PHP Developer        full-time  Berlin    PHP          Lead  10y no visa
//	4 Marketing Manager    full-time  London    -            -
func newStore(t *testing.T) (*jobfilter.Store, string) {
	t.Helper()
	ctx := context.Background()
	st, dbPath := createStore(t)

	for _, attr := range []schema.Attribute{
		{Name: "level", Type: schema.AttrSelect, Options: []string{"Junior", "Senior", "Lead"}},
		{Name: "years_experience", Type: schema.AttrNumber},
		{Name: "visa_sponsorship", Type: schema.AttrBoolean},
		{Name: "benefits", Type: schema.AttrText},
	} {
		_, err := st.DefineAttribute(ctx, attr)
		require.NoError(t, err)
	}

	jobs := []jobfilter.JobInput{
		{
			Title: "Senior Go Engineer", JobType: "full-time",
			SalaryMin: salary(90000), SalaryMax: salary(120000),
			Languages: []string{"Go"}, Locations: []string{"New York"}, Categories: []string{"Engineering"},
			Attributes: map[string]string{
				"level": "Senior", "years_experience": "5", "visa_sponsorship": "yes", "benefits": "health, dental",
			},
		},
		{
			Title: "Frontend Developer", JobType: "contract", IsRemote: true,
			SalaryMin: salary(50000), SalaryMax: salary(70000),
			Languages: []string{"JavaScript", "PHP"}, Categories: []string{"Engineering"},
			Attributes: map[string]string{"level": "Junior", "years_experience": "1"},
		},
		{
			Title: "PHP Developer", JobType: "full-time",
			SalaryMin: salary(60000), SalaryMax: salary(80000),
			Languages: []string{"PHP"}, Locations: []string{"Berlin"}, Categories: []string{"Engineering"},
			Attributes: map[string]string{"level": "Lead", "years_experience": "10", "visa_sponsorship": "0"},
		},
		{
			Title: "Marketing Manager", JobType: "full-time",
			SalaryMin: salary(40000), SalaryMax: salary(50000),
			Locations: []string{"London"}, Categories: []string{"Marketing"},
		},
	}
	for i, job := range jobs {
		id, err := st.PutJob(ctx, job)
		require.NoError(t, err)
		require.Equal(t, int64(i+1), id)
	}
	return st, dbPath
}

func createStore(t *testing.T) (*jobfilter.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	log, _ := logtest.NewNullLogger()
	opts := jobfilter.DefaultOptions()
	opts.Logger = log
	opts.Now = monotonicNow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	st, err := jobfilter.Create(context.Background(), sqlite.New(dbPath), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, dbPath
}

func search(t *testing.T, st *jobfilter.Store, p jobfilter.Params) []int64 {
	t.Helper()
	res, err := st.Search(context.Background(), jobfilter.SearchRequest{Params: p})
	require.NoError(t, err)
	ids := make([]int64, 0, len(res.Rows))
	for _, r := range res.Rows {
		ids = append(ids, r.ID())
	}
	return ids
}

func TestFilters_SQLite(t *testing.T) {
	st, _ := newStore(t)

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"empty", "", []int64{1, 2, 3, 4}},
		{"and", "job_type=full-time AND salary_min>=60000", []int64{1, 3}},
		{"or", "salary_min>=90000 OR is_remote=true", []int64{1, 2}},
		{"like is case insensitive", "title LIKE developer", []int64{2, 3}},
		{"field list", "job_type=(contract, 'internship')", []int64{2}},
		{"field not in list", "job_type!=(contract)", []int64{1, 3, 4}},
		{"has any", "languages HAS_ANY (PHP,JavaScript)", []int64{2, 3}},
		{"is any with remote", "locations IS_ANY (New York,Remote)", []int64{1, 2}},
		{"is any only remote", "locations IS_ANY (remote)", []int64{2}},
		{"exists", "locations EXISTS", []int64{1, 3, 4}},
		{"attribute exists", "attributeValuesRelation EXISTS", []int64{1, 2, 3}},
		{"attribute number is numeric", "attribute:years_experience>=5", []int64{1, 3}},
		{"attribute select list", "attribute:level=(Senior,Lead)", []int64{1, 3}},
		{"attribute boolean", "attribute:visa_sponsorship=true", []int64{1}},
		{"attribute text like", "attribute:benefits LIKE DENTAL", []int64{1}},
		{"unknown field is dropped", "password=hunter2 AND job_type=contract", []int64{2}},
		{"unknown attribute is dropped", "attribute:nope=1 AND job_type=contract", []int64{2}},
		{"nested", "(job_type=full-time OR is_remote=true) AND languages HAS_ANY (PHP)", []int64{2, 3}},
		{"empty list matches nothing", "languages HAS_ANY ()", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search(t, st, jobfilter.Params{Filter: tt.filter}))
		})
	}
}

// Four jobs that differ only in job type, experience and schedule:
//
//	1 contract   2y  Flexible Hours
//	2 freelance  3y  Flexible Hours
//	3 contract   4y  Fixed
//	4 full-time  7y  Flexible Hours
func TestAttributeScenarios_SQLite(t *testing.T) {
	ctx := context.Background()
	st, _ := createStore(t)

	for _, attr := range []schema.Attribute{
		{Name: "years_experience", Type: schema.AttrNumber},
		{Name: "work_schedule", Type: schema.AttrText},
		{Name: "visa_sponsorship", Type: schema.AttrBoolean},
	} {
		_, err := st.DefineAttribute(ctx, attr)
		require.NoError(t, err)
	}
	for _, j := range []struct{ jobType, years, schedule string }{
		{"contract", "2", "Flexible Hours"},
		{"freelance", "3", "Flexible Hours"},
		{"contract", "4", "Fixed"},
		{"full-time", "7", "Flexible Hours"},
	} {
		_, err := st.PutJob(ctx, jobfilter.JobInput{
			Title: "Engineer", JobType: j.jobType,
			Attributes: map[string]string{"years_experience": j.years, "work_schedule": j.schedule, "visa_sponsorship": "false"},
		})
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"numeric range", "attribute:years_experience>=3 AND attribute:years_experience<5", []int64{2, 3}},
		{"numeric not lexical", "attribute:years_experience>=10", []int64{}},
		{"or group inside and", "(job_type=contract OR job_type=freelance) AND attribute:work_schedule=Flexible Hours", []int64{1, 2}},
		{"or splits before and", "job_type=contract OR job_type=freelance AND attribute:work_schedule=Flexible Hours", []int64{1, 2, 3}},
		{"operator chars in value", "attribute:work_schedule LIKE ible Ho", []int64{1, 2, 4}},
		{"boolean literal", "attribute:visa_sponsorship=0", []int64{1, 2, 3, 4}},
		{"unrecognised boolean matches nothing", "attribute:visa_sponsorship=maybe", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search(t, st, jobfilter.Params{Filter: tt.filter}))
		})
	}
}

func TestSort_SQLite(t *testing.T) {
	st, _ := newStore(t)

	assert.Equal(t, []int64{4, 2, 3, 1}, search(t, st, jobfilter.Params{SortBy: "salary_min"}))
	assert.Equal(t, []int64{1, 3, 2, 4}, search(t, st, jobfilter.Params{SortBy: "salary_min", SortDirection: "DESC"}))

	// jobs without a value sort last in both directions
	assert.Equal(t, []int64{3, 1, 2, 4}, search(t, st, jobfilter.Params{SortBy: "attribute:years_experience", SortDirection: "desc"}))
	assert.Equal(t, []int64{2, 1, 3, 4}, search(t, st, jobfilter.Params{SortBy: "attribute:years_experience", SortDirection: "asc"}))

	// unknown keys fall back to newest first
	assert.Equal(t, []int64{4, 3, 2, 1}, search(t, st, jobfilter.Params{SortBy: "secret"}))
	assert.Equal(t, []int64{4, 3, 2, 1}, search(t, st, jobfilter.Params{SortBy: "attribute:nope"}))

	assert.Equal(t, []int64{3, 1}, search(t, st, jobfilter.Params{
		Filter:        "attribute:years_experience>=5",
		SortBy:        "attribute:years_experience",
		SortDirection: "desc",
	}))
}

func TestPagination_SQLite(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	res, err := st.Search(ctx, jobfilter.SearchRequest{Params: jobfilter.Params{Page: 2, PerPage: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Equal(t, 2, res.LastPage)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(4), res.Rows[0].ID())

	res, err = st.Search(ctx, jobfilter.SearchRequest{Params: jobfilter.Params{Page: 9, PerPage: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Empty(t, res.Rows)
}

func TestEagerLoading_SQLite(t *testing.T) {
	st, _ := newStore(t)

	res, err := st.Search(context.Background(), jobfilter.SearchRequest{
		Params:            jobfilter.Params{Filter: "languages HAS_ANY (PHP)"},
		IncludeRelations:  []string{"languages", "locations"},
		IncludeAttributes: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	frontend := res.Rows[0]
	assert.Equal(t, "Frontend Developer", frontend["title"])
	assert.Equal(t, true, frontend["is_remote"])
	assert.Equal(t, 50000.0, frontend["salary_min"])
	assert.Nil(t, frontend["published_at"])
	assert.Equal(t, []string{"JavaScript", "PHP"}, frontend["languages"])
	assert.Equal(t, []string{}, frontend["locations"])

	php := res.Rows[1]
	assert.Equal(t, []string{"Berlin"}, php["locations"])
	attrs, ok := php["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Lead", attrs["level"])
	assert.Equal(t, 10.0, attrs["years_experience"])
	assert.Equal(t, false, attrs["visa_sponsorship"])

	_, err = st.Search(context.Background(), jobfilter.SearchRequest{IncludeRelations: []string{"owners"}})
	require.Error(t, err)
	assert.True(t, jobfilter.IsKind(err, jobfilter.ErrInvalidInput))
}

func TestPutJobValidation_SQLite(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	_, err := st.PutJob(ctx, jobfilter.JobInput{Title: "x", Attributes: map[string]string{"nope": "1"}})
	require.Error(t, err)
	assert.True(t, jobfilter.IsKind(err, jobfilter.ErrUnknownAttribute))

	_, err = st.PutJob(ctx, jobfilter.JobInput{Title: "x", Attributes: map[string]string{"level": "Intern"}})
	require.Error(t, err)

	_, err = st.PutJob(ctx, jobfilter.JobInput{})
	require.Error(t, err)
	assert.True(t, jobfilter.IsKind(err, jobfilter.ErrInvalidInput))

	// nothing above was written
	assert.Len(t, search(t, st, jobfilter.Params{}), 4)
}

func TestRedefineAttribute_SQLite(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	// warm the attribute cache with a miss
	assert.Equal(t, []int64{1, 2, 3, 4}, search(t, st, jobfilter.Params{Filter: "attribute:remote_policy=hybrid"}))

	attr, err := st.DefineAttribute(ctx, schema.Attribute{Name: "remote_policy", Type: schema.AttrText})
	require.NoError(t, err)
	assert.NotZero(t, attr.ID)

	id, err := st.PutJob(ctx, jobfilter.JobInput{Title: "Ops", Attributes: map[string]string{"remote_policy": "hybrid"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, search(t, st, jobfilter.Params{Filter: "attribute:remote_policy=hybrid"}))

	redefined, err := st.DefineAttribute(ctx, schema.Attribute{Name: "remote_policy", Type: schema.AttrSelect, Options: []string{"hybrid", "onsite"}})
	require.NoError(t, err)
	assert.Equal(t, attr.ID, redefined.ID)

	attrs, err := st.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, attrs, 5)
	assert.Equal(t, "benefits", attrs[0].Name)

	got, err := st.Attribute(ctx, "remote_policy")
	require.NoError(t, err)
	assert.Equal(t, []string{"hybrid", "onsite"}, got.Options)

	_, err = st.Attribute(ctx, "nope")
	assert.True(t, jobfilter.IsKind(err, jobfilter.ErrNotFound))
}

func TestReopen_SQLite(t *testing.T) {
	st, dbPath := newStore(t)
	require.NoError(t, st.Close())

	reopened, err := jobfilter.Open(context.Background(), sqlite.New(dbPath), jobfilter.DefaultOptions())
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []int64{2, 3}, search(t, reopened, jobfilter.Params{Filter: "languages HAS_ANY (PHP)"}))

	_, err = jobfilter.Open(context.Background(), sqlite.New(filepath.Join(t.TempDir(), "empty.db")), jobfilter.DefaultOptions())
	require.Error(t, err)
	assert.True(t, jobfilter.IsKind(err, jobfilter.ErrSchema))
}
