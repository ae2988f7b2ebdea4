package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// Row is one matched job keyed by field name. Eager loaded relations are
// stored under the relation name and attribute values under "attributes".
type Row map[string]any

// ID returns the row's primary key, or zero when it is missing.
func (r Row) ID() int64 {
	id, _ := r["id"].(int64)
	return id
}

// SearchOptions controls paging and eager loading
type SearchOptions struct {
	Page              int
	PerPage           int
	IncludeRelations  []string
	IncludeAttributes bool
}

// SearchResult is one page of matches
type SearchResult struct {
	Rows     []Row  `json:"data"`
	Total    int64  `json:"total"`
	Page     int    `json:"current_page"`
	PerPage  int    `json:"per_page"`
	LastPage int    `json:"last_page"`
	SQL      string `json:"-"`
	Args     []any  `json:"-"`
}

// Search executes a compiled query: it counts the matches and then loads
// the requested page.
func Search(ctx context.Context, db *sql.DB, q *sqlbuilder.Query, opts SearchOptions) (*SearchResult, error) {
	if opts.PerPage <= 0 {
		return nil, fmt.Errorf("per page must be positive")
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	countSQL, countArgs, err := q.CountSQL()
	if err != nil {
		return nil, fmt.Errorf("render count: %w", err)
	}
	var total int64
	if err := db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	res := &SearchResult{
		Rows:     []Row{},
		Total:    total,
		Page:     opts.Page,
		PerPage:  opts.PerPage,
		LastPage: lastPage(total, opts.PerPage),
	}

	offset := uint64(opts.Page-1) * uint64(opts.PerPage)
	res.SQL, res.Args, err = q.PageSQL(uint64(opts.PerPage), offset)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	if total == 0 || offset >= uint64(total) {
		return res, nil
	}

	rows, err := db.QueryContext(ctx, res.SQL, res.Args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	entity := q.Entity()
	for rows.Next() {
		row, err := scanRow(rows, entity.Fields)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loader := &relationLoader{db: db, dialect: q.Dialect(), entity: entity}
	for _, name := range opts.IncludeRelations {
		if err := loader.labels(ctx, res.Rows, name); err != nil {
			return nil, err
		}
	}
	if opts.IncludeAttributes {
		if err := loader.attributes(ctx, res.Rows); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func lastPage(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// scanRow reads the entity columns in declaration order. Select lists built
// by sqlbuilder.Query always follow schema.Entity.Columns.
func scanRow(rows *sql.Rows, fields []schema.Field) (Row, error) {
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch {
		case f.Name == "id":
			dest[i] = new(sql.NullInt64)
		case f.Kind == schema.FieldNumber:
			dest[i] = new(sql.NullFloat64)
		case f.Kind == schema.FieldBool:
			dest[i] = new(sql.NullBool)
		default:
			dest[i] = new(sql.NullString)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(fields))
	for i, f := range fields {
		switch v := dest[i].(type) {
		case *sql.NullInt64:
			row[f.Name] = nullable(v.Int64, v.Valid)
		case *sql.NullFloat64:
			row[f.Name] = nullable(v.Float64, v.Valid)
		case *sql.NullBool:
			row[f.Name] = nullable(v.Bool, v.Valid)
		case *sql.NullString:
			row[f.Name] = nullable(v.String, v.Valid)
		}
	}
	return row, nil
}

func nullable[T any](v T, valid bool) any {
	if !valid {
		return nil
	}
	return v
}
