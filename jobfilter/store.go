package jobfilter

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jobboard/jobfilter/jobfilter/attrcache"
	"github.com/jobboard/jobfilter/jobfilter/ops"
	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage"
)

// Store is an open job database with a filter service over it
type Store struct {
	adapter storage.Adapter
	db      *sql.DB
	entity  schema.Entity
	opts    Options
	repo    *ops.AttributeRepository
	cache   *attrcache.Cache
	service *FilterService
}

// Create creates the job tables and opens a store over them
func Create(ctx context.Context, adapter storage.Adapter, opts Options) (*Store, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "create schema", err)
	}
	return newStore(adapter, db, opts), nil
}

// Open opens a database created by Create
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Store, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.OpenSchema(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSchema, "open schema", err)
	}
	return newStore(adapter, db, opts), nil
}

func newStore(adapter storage.Adapter, db *sql.DB, opts Options) *Store {
	opts = opts.withDefaults()
	entity := schema.JobEntity()
	st := &Store{
		adapter: adapter,
		db:      db,
		entity:  entity,
		opts:    opts,
		repo:    ops.NewAttributeRepository(db, adapter.Dialect(), entity.Attributes.DefinitionTable),
	}

	var lookup schema.AttributeLookup = st.repo
	if opts.AttributeCacheSize > 0 {
		st.cache = attrcache.New(st.repo, opts.AttributeCacheSize, opts.AttributeCacheTTL)
		lookup = st.cache
	}
	st.service = NewFilterService(entity, adapter.Dialect(), lookup, opts)
	return st
}

// Close closes the store
func (st *Store) Close() error {
	if st.db != nil {
		if err := st.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return st.adapter.Close()
}

func (st *Store) Service() *FilterService { return st.service }

// Search compiles the request and runs one page of it
func (st *Store) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	for _, name := range req.IncludeRelations {
		if rel, ok := st.entity.Relation(name); !ok || rel.Strategy != schema.JoinPivot {
			return nil, InvalidInput("include", "unknown relation "+name)
		}
	}

	c := st.service.Compile(ctx, req.Params)
	page, perPage := st.service.paging(req.Params)
	res, err := ops.Search(ctx, st.db, c.Query, ops.SearchOptions{
		Page:              page,
		PerPage:           perPage,
		IncludeRelations:  req.IncludeRelations,
		IncludeAttributes: req.IncludeAttributes,
	})
	if err != nil {
		return nil, Wrap(ErrSQL, "search", err)
	}
	return res, nil
}

// Explain renders the SQL of a search without running it
func (st *Store) Explain(ctx context.Context, p Params) (*Explanation, error) {
	return st.service.Explain(ctx, p)
}

// PutJob inserts a job with its relations and attribute values
func (st *Store) PutJob(ctx context.Context, job JobInput) (int64, error) {
	if strings.TrimSpace(job.Title) == "" {
		return 0, InvalidInput("title", "title is required")
	}
	id, err := ops.PutJob(ctx, st.db, st.adapter.Dialect(), st.entity, st.repo, job, st.opts.Now())
	if errors.Is(err, ops.ErrUnknownAttribute) {
		return 0, Wrap(ErrUnknownAttribute, "put job", err)
	}
	if err != nil {
		return 0, Wrap(ErrSQL, "put job", err)
	}
	return id, nil
}

// DefineAttribute creates or redefines an attribute
func (st *Store) DefineAttribute(ctx context.Context, attr schema.Attribute) (schema.Attribute, error) {
	if !attr.Type.Valid() {
		return schema.Attribute{}, InvalidInput("type", "unknown attribute type "+string(attr.Type))
	}
	if attr.Type != schema.AttrSelect && len(attr.Options) > 0 {
		return schema.Attribute{}, InvalidInput("options", "only select attributes take options")
	}
	defined, err := st.repo.Define(ctx, attr, st.opts.Now())
	if err != nil {
		return schema.Attribute{}, Wrap(ErrSQL, "define attribute", err)
	}
	if st.cache != nil {
		st.cache.Invalidate(attr.Name)
	}
	return defined, nil
}

// Attributes lists the defined attributes by name
func (st *Store) Attributes(ctx context.Context) ([]schema.Attribute, error) {
	attrs, err := st.repo.List(ctx)
	if err != nil {
		return nil, Wrap(ErrSQL, "list attributes", err)
	}
	return attrs, nil
}

// Attribute looks up one attribute definition
func (st *Store) Attribute(ctx context.Context, name string) (schema.Attribute, error) {
	attr, ok, err := st.repo.FindByName(ctx, name)
	if err != nil {
		return schema.Attribute{}, Wrap(ErrSQL, "find attribute", err)
	}
	if !ok {
		return schema.Attribute{}, &Error{Kind: ErrNotFound, Message: "attribute not found", Field: name}
	}
	return attr, nil
}
