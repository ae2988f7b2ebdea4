package schema

// DefaultLabelColumn is matched when a relation declares no label column.
const DefaultLabelColumn = "name"

// JoinStrategy is how a related table reaches its owner row
type JoinStrategy int

const (
	// JoinPivot goes through a many-to-many pivot table
	JoinPivot JoinStrategy = iota
	// JoinDirect is a has-many whose rows carry the owner key
	JoinDirect
)

// Relation is one entry of the static relation table. Each relation knows how
// to join back to the owning entity and which column holds its human label.
type Relation struct {
	Name     string
	Table    string
	Strategy JoinStrategy

	// pivot strategy
	Pivot           string
	PivotOwnerKey   string
	PivotRelatedKey string

	// direct strategy
	ForeignKey string

	LabelColumn string
	// FlagField is a boolean entity field matched by the "Remote" pseudo value
	FlagField string
}

// Label returns the column that relation membership is matched on.
func (r Relation) Label() string {
	if r.LabelColumn == "" {
		return DefaultLabelColumn
	}
	return r.LabelColumn
}

// Column qualifies a column with the related table.
func (r Relation) Column(name string) string {
	return r.Table + "." + name
}

// JobRelations is the relation table of the job entity.
func JobRelations() []Relation {
	attributeValues := Relation{
		Table:       "job_attribute_values",
		Strategy:    JoinDirect,
		ForeignKey:  "job_id",
		LabelColumn: "value",
	}
	values := attributeValues
	values.Name = "attributeValues"
	valuesRelation := attributeValues
	valuesRelation.Name = "attributeValuesRelation"

	return []Relation{
		{
			Name:            "languages",
			Table:           "languages",
			Strategy:        JoinPivot,
			Pivot:           "job_language",
			PivotOwnerKey:   "job_id",
			PivotRelatedKey: "language_id",
			LabelColumn:     "name",
		},
		{
			Name:            "locations",
			Table:           "locations",
			Strategy:        JoinPivot,
			Pivot:           "job_location",
			PivotOwnerKey:   "job_id",
			PivotRelatedKey: "location_id",
			LabelColumn:     "city",
			FlagField:       "is_remote",
		},
		{
			Name:            "categories",
			Table:           "categories",
			Strategy:        JoinPivot,
			Pivot:           "category_job",
			PivotOwnerKey:   "job_id",
			PivotRelatedKey: "category_id",
			LabelColumn:     "name",
		},
		values,
		valuesRelation,
	}
}
