package rondo

// A ColumnType describes the value domain of a single column in a Schema.
type ColumnType interface {
	// Name returns the canonical short name of this type, e.g. "int"
	Name() string
	// Validate returns an error iff v cannot be stored in a column of this type
	Validate(v interface{}) error
	// SQLType returns the SQLite column affinity for this type, or "" for none
	SQLType() string
}

// Schema is an ordered mapping from column names to ColumnTypes.
// Schemas are structural: two Schemas are equal iff they contain the
// same columns with the same types in the same order.
type Schema interface {
	NumColumns() int
	ColumnNames() []string
	ColumnTypes() []ColumnType
	HasColumn(colName string) bool
	IndexOf(colName string) (int, bool)
	TypeOf(colName string) (ColumnType, error)
	Equals(otherSchema Schema) error
	Clone() Schema
	// Select returns a new Schema restricted to the given columns, in the given order
	Select(colNames []string) (Schema, error)
	// Rename returns a new Schema with columns renamed according to the given old->new mapping
	Rename(colNames map[string]string) (Schema, error)
	// Remove returns a new Schema without the given columns
	Remove(colNames []string) (Schema, error)
	// Intersect returns the column names present in both Schemas, in this Schema's order
	Intersect(otherSchema Schema) []string
	// String renders this Schema as "a:int,b:str"
	String() string
}
