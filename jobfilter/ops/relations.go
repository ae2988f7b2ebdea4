package ops

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

type relationLoader struct {
	db      *sql.DB
	dialect sqlbuilder.Dialect
	entity  schema.Entity
}

func rowIDs(rows []Row) ([]int64, map[int64]Row) {
	ids := make([]int64, 0, len(rows))
	byID := make(map[int64]Row, len(rows))
	for _, r := range rows {
		id := r.ID()
		ids = append(ids, id)
		byID[id] = r
	}
	return ids, byID
}

func (l *relationLoader) query(ctx context.Context, b sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.PlaceholderFormat(l.dialect.Placeholder()).ToSql()
	if err != nil {
		return nil, err
	}
	return l.db.QueryContext(ctx, query, args...)
}

// labels attaches the labels of a pivot relation to each row, as a sorted
// list under the relation name.
func (l *relationLoader) labels(ctx context.Context, rows []Row, name string) error {
	rel, ok := l.entity.Relation(name)
	if !ok || rel.Strategy != schema.JoinPivot {
		return fmt.Errorf("relation %q cannot be loaded", name)
	}
	if len(rows) == 0 {
		return nil
	}
	ids, byID := rowIDs(rows)
	for _, r := range rows {
		r[name] = []string{}
	}

	owner := rel.Pivot + "." + rel.PivotOwnerKey
	res, err := l.query(ctx, sq.Select(owner, rel.Column(rel.Label())).
		From(rel.Table).
		Join(fmt.Sprintf("%s ON %s.%s = %s", rel.Pivot, rel.Pivot, rel.PivotRelatedKey, rel.Column("id"))).
		Where(sq.Eq{owner: ids}).
		OrderBy(owner, rel.Column(rel.Label())))
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	defer res.Close()

	for res.Next() {
		var (
			id    int64
			label string
		)
		if err := res.Scan(&id, &label); err != nil {
			return fmt.Errorf("scan %s: %w", name, err)
		}
		if r, ok := byID[id]; ok {
			r[name] = append(r[name].([]string), label)
		}
	}
	return res.Err()
}

// attributes attaches each row's attribute values, typed by their
// definition, as a map under "attributes".
func (l *relationLoader) attributes(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	store := l.entity.Attributes
	ids, byID := rowIDs(rows)
	for _, r := range rows {
		r["attributes"] = map[string]any{}
	}

	owner := store.Table + "." + store.OwnerKey
	def := store.DefinitionTable
	res, err := l.query(ctx, sq.Select(owner, def+".name", def+".type", store.Table+"."+store.ValueColumn).
		From(store.Table).
		Join(fmt.Sprintf("%s ON %s.id = %s.%s", def, def, store.Table, store.AttributeKey)).
		Where(sq.Eq{owner: ids}).
		OrderBy(owner, def+".name"))
	if err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	defer res.Close()

	for res.Next() {
		var (
			id    int64
			attr  schema.Attribute
			typ   string
			value sql.NullString
		)
		if err := res.Scan(&id, &attr.Name, &typ, &value); err != nil {
			return fmt.Errorf("scan attribute value: %w", err)
		}
		attr.Type = schema.AttributeType(typ)
		r, ok := byID[id]
		if !ok {
			continue
		}
		var typed any
		if value.Valid {
			typed = attr.TypedValue(value.String)
		}
		r["attributes"].(map[string]any)[attr.Name] = typed
	}
	return res.Err()
}
