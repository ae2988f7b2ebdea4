package schema

import "strings"

// FieldKind is the storage kind of a native entity column
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldNumber
	FieldBool
	FieldDateTime
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "bool"
	case FieldDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Field is an allow-listed, filterable column of an entity
type Field struct {
	Name string
	Kind FieldKind
}

// AttributeStore locates the EAV value rows that belong to an entity
type AttributeStore struct {
	// DefinitionTable holds the attribute definitions
	DefinitionTable string
	Table           string
	OwnerKey        string
	AttributeKey    string
	ValueColumn     string
}

// SortKey is the fallback ordering of an entity
type SortKey struct {
	Field      string
	Descending bool
}

// Entity describes the filterable surface of a table: its native columns,
// its named relations and where its dynamic attributes live.
type Entity struct {
	Name       string
	Table      string
	PrimaryKey string
	Fields     []Field
	Relations  []Relation
	Attributes AttributeStore
	// FallbackSort applies when a requested sort key is not recognised
	FallbackSort SortKey
}

// Field looks up an allow-listed field by name.
func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether name is an allow-listed field.
func (e Entity) HasField(name string) bool {
	_, ok := e.Field(name)
	return ok
}

// Relation looks up an allow-listed relation by name.
func (e Entity) Relation(name string) (Relation, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// Column qualifies a column name with the entity table.
func (e Entity) Column(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return e.Table + "." + name
}

// Columns returns the qualified select list, in field order.
func (e Entity) Columns() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, e.Column(f.Name))
	}
	return out
}

// AttributeRelation is the has-many relation to the entity's attribute values.
func (e Entity) AttributeRelation() Relation {
	return Relation{
		Name:        "attributeValues",
		Table:       e.Attributes.Table,
		Strategy:    JoinDirect,
		ForeignKey:  e.Attributes.OwnerKey,
		LabelColumn: e.Attributes.ValueColumn,
	}
}

// FieldNames returns the allow-listed field names in declaration order.
func (e Entity) FieldNames() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Name)
	}
	return out
}

// JobEntity is the job listing entity served by the filter API.
func JobEntity() Entity {
	return Entity{
		Name:       "job",
		Table:      "jobs",
		PrimaryKey: "id",
		Fields: []Field{
			{Name: "id", Kind: FieldNumber},
			{Name: "title", Kind: FieldString},
			{Name: "description", Kind: FieldString},
			{Name: "company_name", Kind: FieldString},
			{Name: "salary_min", Kind: FieldNumber},
			{Name: "salary_max", Kind: FieldNumber},
			{Name: "is_remote", Kind: FieldBool},
			{Name: "job_type", Kind: FieldString},
			{Name: "status", Kind: FieldString},
			{Name: "published_at", Kind: FieldDateTime},
			{Name: "created_at", Kind: FieldDateTime},
			{Name: "updated_at", Kind: FieldDateTime},
		},
		Relations: JobRelations(),
		Attributes: AttributeStore{
			DefinitionTable: "attributes",
			Table:           "job_attribute_values",
			OwnerKey:        "job_id",
			AttributeKey:    "attribute_id",
			ValueColumn:     "value",
		},
		FallbackSort: SortKey{Field: "created_at", Descending: true},
	}
}
