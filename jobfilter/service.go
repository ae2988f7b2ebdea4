package jobfilter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/planner"
	"github.com/jobboard/jobfilter/jobfilter/query"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// FilterService turns raw filter and sort parameters into a query. It keeps
// no per-request state and may be shared between goroutines.
type FilterService struct {
	entity   schema.Entity
	dialect  sqlbuilder.Dialect
	registry *planner.Registry
	sorter   *planner.SortCompiler
	attrs    schema.AttributeLookup
	opts     Options
}

// NewFilterService builds a service over the default condition registry of
// entity. attrs may be nil, in which case attribute clauses are dropped.
func NewFilterService(entity schema.Entity, dialect sqlbuilder.Dialect, attrs schema.AttributeLookup, opts Options) *FilterService {
	return &FilterService{
		entity:   entity,
		dialect:  dialect,
		registry: planner.DefaultRegistry(entity),
		sorter:   planner.NewSortCompiler(entity),
		attrs:    attrs,
		opts:     opts.withDefaults(),
	}
}

// NewFilterServiceWithRegistry uses a custom registry, which must list its
// specific conditions before any catch-all.
func NewFilterServiceWithRegistry(entity schema.Entity, dialect sqlbuilder.Dialect, attrs schema.AttributeLookup,
	registry *planner.Registry, opts Options) (*FilterService, error) {
	if err := registry.Validate(); err != nil {
		return nil, Wrap(ErrConfig, "condition registry", err)
	}
	s := NewFilterService(entity, dialect, attrs, opts)
	s.registry = registry
	return s, nil
}

func (s *FilterService) Entity() schema.Entity       { return s.entity }
func (s *FilterService) Dialect() sqlbuilder.Dialect { return s.dialect }

// Apply returns the filtered and sorted query. It never fails: clauses that
// cannot be compiled are logged and left out.
func (s *FilterService) Apply(ctx context.Context, p Params) *sqlbuilder.Query {
	return s.Compile(ctx, p).Query
}

// Compile is Apply with a record of the compilation.
func (s *FilterService) Compile(ctx context.Context, p Params) (c *Compiled) {
	id := uuid.NewString()
	log := s.opts.Logger.WithField("compile_id", id)

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"filter": p.Filter,
				"error":  fmt.Sprint(r),
			}).Error("filter compilation failed, returning unfiltered query")
			c = &Compiled{
				ID:      id,
				Query:   sqlbuilder.NewQuery(s.entity, s.dialect),
				Dropped: []planner.Dropped{{Expr: p.Filter, Reason: "internal error"}},
			}
		}
	}()

	q := sqlbuilder.NewQuery(s.entity, s.dialect)
	sess := planner.NewSession(ctx, log, s.attrs)

	node := query.ParseWithOptions(p.Filter, query.ParseOptions{MaxDepth: s.opts.MaxDepth})
	if node != nil {
		log.WithField("tree", query.Format(node)).Debug("filter parsed")
	}
	planner.Compile(sess, s.registry, node, q.Scope())
	s.sorter.Apply(sess, q, p.SortBy, p.SortDirection)

	return &Compiled{
		ID:      id,
		Query:   q,
		Steps:   sess.Steps(),
		Dropped: sess.Dropped(),
	}
}

// Explain renders the page and count statements of a compilation.
func (s *FilterService) Explain(ctx context.Context, p Params) (*Explanation, error) {
	c := s.Compile(ctx, p)
	page, perPage := s.paging(p)

	sql, args, err := c.Query.PageSQL(uint64(perPage), uint64(page-1)*uint64(perPage))
	if err != nil {
		return nil, Wrap(ErrSQL, "render query", err)
	}
	countSQL, countArgs, err := c.Query.CountSQL()
	if err != nil {
		return nil, Wrap(ErrSQL, "render count query", err)
	}
	return &Explanation{
		ID:        c.ID,
		SQL:       sql,
		Args:      args,
		CountSQL:  countSQL,
		CountArgs: countArgs,
		Steps:     c.Steps,
		Dropped:   c.Dropped,
	}, nil
}

// paging clamps the requested page and page size.
func (s *FilterService) paging(p Params) (page, perPage int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	perPage = p.PerPage
	if perPage <= 0 {
		perPage = s.opts.DefaultPerPage
	}
	if perPage > s.opts.MaxPerPage {
		perPage = s.opts.MaxPerPage
	}
	return page, perPage
}
