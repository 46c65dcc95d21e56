package rondo

// SortColumn names a column and the direction rows should be ordered by it
type SortColumn struct {
	Name      string
	Ascending bool
}

// A PartitionSpec is an immutable description of how a dataset should be
// divided into partitions and ordered within them. Two semantically
// identical specs produce identical canonical serializations and therefore
// identical hashes; partition-by column order is semantically significant.
type PartitionSpec interface {
	// PartitionBy returns the ordered partition key column names. An empty
	// list means the whole dataset forms a single implicit partition.
	PartitionBy() []string
	// Presort returns the ordering applied within each partition before a
	// transform runs
	Presort() []SortColumn
	// PresortExpr renders the presort as "a ASC,b DESC"
	PresortExpr() string
	// Algo returns the partitioning algorithm token, e.g. "hash"
	Algo() string
	// NumPartitionsExpr returns the unevaluated partition-count expression
	NumPartitionsExpr() string
	RowLimit() int
	SizeLimit() int64
	// Empty returns true iff there are no partition-by and no presort columns
	Empty() bool
	// GetCursor builds a fresh PartitionCursor bound to the key sub-schema
	// derived from the given row schema
	GetCursor(rowSchema Schema, physicalPartitionNo int) (PartitionCursor, error)
	// GetKeySchema derives the key sub-schema, preserving partition-by order
	GetKeySchema(rowSchema Schema) (Schema, error)
	// GetSorts returns the combined partition-by (ascending) + presort sort
	// specification used by backends that physically sort before grouping
	GetSorts(rowSchema Schema) ([]SortColumn, error)
	// GetNumPartitions evaluates the partition-count expression. Every
	// keyword referenced by the expression must have a resolver.
	GetNumPartitions(resolvers map[string]func() int) (int, error)
	// Canonical returns the fixed-field-order document serialization of
	// this spec, suitable for hashing and cross-process transmission
	Canonical() []byte
	// Hash returns a content hash of the canonical serialization
	Hash() uint64
	// UUID returns a deterministic identifier derived from the canonical
	// serialization
	UUID() string
	Equals(other PartitionSpec) bool
}

// A PartitionCursor exposes per-row and per-partition context to user
// transform code during one partitioned traversal pass. It is mutable and
// reused across the rows of a partition; it is never persisted beyond the
// pass.
type PartitionCursor interface {
	// Set binds the cursor to a row. It is O(1) and does not copy the row.
	Set(row []interface{}, partitionNo int, sliceNo int)
	// Row returns the currently bound raw row
	Row() []interface{}
	// PartitionNo returns the positional index of the current partition
	// among all partitions seen so far in this pass
	PartitionNo() int
	// SliceNo returns the index of the current sub-chunk within the partition
	SliceNo() int
	// PhysicalPartitionNo returns the physical partition number the cursor
	// was created for
	PhysicalPartitionNo() int
	// KeyValueArray returns the partition key values of the current row,
	// positions matching the key schema
	KeyValueArray() []interface{}
	// KeyValueDict returns the partition key values of the current row as a
	// name->value mapping
	KeyValueDict() map[string]interface{}
	// Value looks up a column of the current row by name
	Value(colName string) (interface{}, error)
	RowSchema() Schema
	KeySchema() Schema
}
