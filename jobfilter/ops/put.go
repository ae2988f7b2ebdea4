package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jobboard/jobfilter/jobfilter/schema"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// ErrUnknownAttribute is returned when a job carries a value for an
// attribute that has not been defined.
var ErrUnknownAttribute = errors.New("unknown attribute")

// JobInput is one job listing with its relations and attribute values
type JobInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	CompanyName string            `json:"company_name,omitempty"`
	SalaryMin   *float64          `json:"salary_min,omitempty"`
	SalaryMax   *float64          `json:"salary_max,omitempty"`
	IsRemote    bool              `json:"is_remote,omitempty"`
	JobType     string            `json:"job_type,omitempty"`
	Status      string            `json:"status,omitempty"`
	PublishedAt string            `json:"published_at,omitempty"`
	CreatedAt   string            `json:"created_at,omitempty"`
	Languages   []string          `json:"languages,omitempty"`
	Locations   []string          `json:"locations,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// relationLabels pairs a relation name with the labels a job input carries.
func (j JobInput) relationLabels() map[string][]string {
	return map[string][]string{
		"languages":  j.Languages,
		"locations":  j.Locations,
		"categories": j.Categories,
	}
}

// PutJob inserts a job, links its relations (creating missing related rows)
// and upserts its attribute values, all in one transaction.
func PutJob(ctx context.Context, db *sql.DB, dialect sqlbuilder.Dialect, entity schema.Entity,
	attrs schema.AttributeLookup, job JobInput, now time.Time) (int64, error) {
	if strings.TrimSpace(job.Title) == "" {
		return 0, fmt.Errorf("job title is required")
	}

	values, err := resolveAttributes(ctx, attrs, job.Attributes)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	w := &writer{tx: tx, ph: dialect.Placeholder()}
	ts := formatTimestamp(now)
	createdAt := ts
	if job.CreatedAt != "" {
		createdAt = job.CreatedAt
	}

	var publishedAt any
	if job.PublishedAt != "" {
		publishedAt = job.PublishedAt
	}
	status := job.Status
	if status == "" {
		status = "published"
	}

	jobID, err := w.insertReturningID(ctx, sq.Insert(entity.Table).
		Columns("title", "description", "company_name", "salary_min", "salary_max",
			"is_remote", "job_type", "status", "published_at", "created_at", "updated_at").
		Values(job.Title, job.Description, job.CompanyName, floatOrNil(job.SalaryMin), floatOrNil(job.SalaryMax),
			job.IsRemote, job.JobType, status, publishedAt, createdAt, ts))
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}

	labels := job.relationLabels()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if len(labels[name]) == 0 {
			continue
		}
		rel, ok := entity.Relation(name)
		if !ok || rel.Strategy != schema.JoinPivot {
			return 0, fmt.Errorf("relation %q cannot be written", name)
		}
		for _, label := range labels[name] {
			if err := w.link(ctx, rel, jobID, label); err != nil {
				return 0, fmt.Errorf("link %s %q: %w", name, label, err)
			}
		}
	}

	if err := w.putAttributeValues(ctx, entity.Attributes, jobID, values, ts); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return jobID, nil
}

type writer struct {
	tx *sql.Tx
	ph sq.PlaceholderFormat
}

func (w *writer) insertReturningID(ctx context.Context, b sq.InsertBuilder) (int64, error) {
	query, args, err := b.Suffix("RETURNING id").PlaceholderFormat(w.ph).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := w.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (w *writer) exec(ctx context.Context, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = w.tx.ExecContext(ctx, query, args...)
	return err
}

// relatedID finds the related row carrying label, creating it when missing.
func (w *writer) relatedID(ctx context.Context, rel schema.Relation, label string) (int64, error) {
	query, args, err := sq.Select("id").From(rel.Table).
		Where(sq.Eq{rel.Label(): label}).
		PlaceholderFormat(w.ph).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	err = w.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return w.insertReturningID(ctx, sq.Insert(rel.Table).Columns(rel.Label()).Values(label))
}

func (w *writer) link(ctx context.Context, rel schema.Relation, jobID int64, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	relatedID, err := w.relatedID(ctx, rel, label)
	if err != nil {
		return err
	}
	return w.exec(ctx, sq.Insert(rel.Pivot).
		Columns(rel.PivotOwnerKey, rel.PivotRelatedKey).
		Values(jobID, relatedID).
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(w.ph))
}

type attributeValue struct {
	attr  schema.Attribute
	value string
}

// resolveAttributes checks and normalises attribute values before any row is
// written.
func resolveAttributes(ctx context.Context, attrs schema.AttributeLookup, values map[string]string) ([]attributeValue, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]attributeValue, 0, len(names))
	for _, name := range names {
		if attrs == nil {
			return nil, fmt.Errorf("attribute %q: %w", name, ErrUnknownAttribute)
		}
		attr, ok, err := attrs.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("attribute %q: %w", name, ErrUnknownAttribute)
		}
		value := attr.NormalizeValue(values[name])
		if attr.Type == schema.AttrSelect && len(attr.Options) > 0 && !attr.HasOption(value) {
			return nil, fmt.Errorf("attribute %q: %q is not one of %v", name, value, attr.Options)
		}
		out = append(out, attributeValue{attr: attr, value: value})
	}
	return out, nil
}

func (w *writer) putAttributeValues(ctx context.Context, store schema.AttributeStore, jobID int64, values []attributeValue, ts string) error {
	for _, v := range values {
		err := w.exec(ctx, sq.Insert(store.Table).
			Columns(store.OwnerKey, store.AttributeKey, store.ValueColumn, "created_at", "updated_at").
			Values(jobID, v.attr.ID, v.value, ts, ts).
			Suffix(fmt.Sprintf("ON CONFLICT (%s, %s) DO UPDATE SET %s = excluded.%s, updated_at = excluded.updated_at",
				store.OwnerKey, store.AttributeKey, store.ValueColumn, store.ValueColumn)).
			PlaceholderFormat(w.ph))
		if err != nil {
			return fmt.Errorf("put attribute %q: %w", v.attr.Name, err)
		}
	}
	return nil
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
