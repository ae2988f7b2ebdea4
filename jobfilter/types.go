package jobfilter

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/ops"
	"github.com/jobboard/jobfilter/jobfilter/planner"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// Params are the raw request parameters of a job search
type Params struct {
	Filter        string
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// Options configures a FilterService and a Store
type Options struct {
	// MaxDepth bounds parenthesis nesting in a filter
	MaxDepth       int
	DefaultPerPage int
	MaxPerPage     int
	Logger         logrus.FieldLogger

	// AttributeCacheSize of zero disables the process-wide attribute cache
	AttributeCacheSize int
	AttributeCacheTTL  time.Duration

	Now func() time.Time
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxDepth:           DefaultMaxDepth,
		DefaultPerPage:     DefaultPerPage,
		MaxPerPage:         DefaultMaxPerPage,
		Logger:             logrus.StandardLogger(),
		AttributeCacheSize: DefaultAttributeCacheSize,
		AttributeCacheTTL:  DefaultAttributeCacheTTL,
		Now:                time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.DefaultPerPage <= 0 {
		o.DefaultPerPage = d.DefaultPerPage
	}
	if o.MaxPerPage <= 0 {
		o.MaxPerPage = d.MaxPerPage
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.AttributeCacheTTL <= 0 {
		o.AttributeCacheTTL = d.AttributeCacheTTL
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// Compiled is a filter and sort turned into a query, with a record of what
// the compiler did.
type Compiled struct {
	// ID correlates the log entries of one compilation
	ID      string
	Query   *sqlbuilder.Query
	Steps   []string
	Dropped []planner.Dropped
}

// Explanation is the SQL a search would run
type Explanation struct {
	ID        string            `json:"compile_id"`
	SQL       string            `json:"sql"`
	Args      []any             `json:"args"`
	CountSQL  string            `json:"count_sql"`
	CountArgs []any             `json:"count_args"`
	Steps     []string          `json:"steps"`
	Dropped   []planner.Dropped `json:"dropped,omitempty"`
}

// SearchRequest is a search with its paging and eager loading choices
type SearchRequest struct {
	Params
	IncludeRelations  []string
	IncludeAttributes bool
}

// JobInput is re-exported so that callers seed jobs without importing ops.
type JobInput = ops.JobInput

type SearchResult = ops.SearchResult
