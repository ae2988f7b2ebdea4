package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// AttributeRepository reads and writes attribute definitions.
type AttributeRepository struct {
	db      *sql.DB
	dialect sqlbuilder.Dialect
	table   string
}

func NewAttributeRepository(db *sql.DB, dialect sqlbuilder.Dialect, table string) *AttributeRepository {
	if table == "" {
		table = "attributes"
	}
	return &AttributeRepository{db: db, dialect: dialect, table: table}
}

func (r *AttributeRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select("id", "name", "type", "options").
		From(r.table).
		PlaceholderFormat(r.dialect.Placeholder())
}

// FindByName implements schema.AttributeLookup.
func (r *AttributeRepository) FindByName(ctx context.Context, name string) (schema.Attribute, bool, error) {
	query, args, err := r.selectBuilder().Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return schema.Attribute{}, false, err
	}
	attr, err := scanAttribute(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Attribute{}, false, nil
	}
	if err != nil {
		return schema.Attribute{}, false, fmt.Errorf("find attribute %q: %w", name, err)
	}
	return attr, true, nil
}

// List returns every attribute ordered by name.
func (r *AttributeRepository) List(ctx context.Context) ([]schema.Attribute, error) {
	query, args, err := r.selectBuilder().OrderBy("name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	defer rows.Close()

	var out []schema.Attribute
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out = append(out, attr)
	}
	return out, rows.Err()
}

// Define creates the attribute or replaces the type and options of an
// existing one with the same name.
func (r *AttributeRepository) Define(ctx context.Context, attr schema.Attribute, now time.Time) (schema.Attribute, error) {
	if attr.Name == "" {
		return schema.Attribute{}, fmt.Errorf("attribute name is required")
	}
	if !attr.Type.Valid() {
		return schema.Attribute{}, fmt.Errorf("attribute %q: unknown type %q", attr.Name, attr.Type)
	}

	var options any
	if len(attr.Options) > 0 {
		b, err := json.Marshal(attr.Options)
		if err != nil {
			return schema.Attribute{}, err
		}
		options = string(b)
	}

	ts := formatTimestamp(now)
	query, args, err := sq.Insert(r.table).
		Columns("name", "type", "options", "created_at", "updated_at").
		Values(attr.Name, string(attr.Type), options, ts, ts).
		Suffix("ON CONFLICT (name) DO UPDATE SET type = excluded.type, options = excluded.options, updated_at = excluded.updated_at RETURNING id").
		PlaceholderFormat(r.dialect.Placeholder()).
		ToSql()
	if err != nil {
		return schema.Attribute{}, err
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&attr.ID); err != nil {
		return schema.Attribute{}, fmt.Errorf("define attribute %q: %w", attr.Name, err)
	}
	return attr, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttribute(row rowScanner) (schema.Attribute, error) {
	var (
		attr    schema.Attribute
		typ     string
		options sql.NullString
	)
	if err := row.Scan(&attr.ID, &attr.Name, &typ, &options); err != nil {
		return schema.Attribute{}, err
	}
	attr.Type = schema.AttributeType(typ)
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &attr.Options); err != nil {
			return schema.Attribute{}, fmt.Errorf("attribute %q options: %w", attr.Name, err)
		}
	}
	return attr, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
