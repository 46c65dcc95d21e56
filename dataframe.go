package rondo

// A DataFrame is a logical handle on tabular data, produced and consumed
// by an ExecutionEngine. Its physical representation is backend-specific:
// the partitioning and runner logic in this module is written purely
// against this surface, never against a concrete backend type.
type DataFrame interface {
	Schema() Schema
	// Metadata returns the parameters attached to this DataFrame.
	// Result metadata is frozen by the engine which produced it.
	Metadata() *Params
	// IsLocal returns true iff this DataFrame's data is held in-process
	IsLocal() bool
	// IsBounded returns true iff this DataFrame is finite
	IsBounded() bool
}

// A LocalDataFrame is a bounded, in-process DataFrame whose rows can be
// counted, iterated and restructured directly.
type LocalDataFrame interface {
	DataFrame
	// Count returns the physical number of rows
	Count() int
	// Rows returns all rows, each conforming to the Schema. The returned
	// slice is not a copy and must not be mutated.
	Rows() [][]interface{}
	// Peek returns the first row without consuming it, or nil if empty
	Peek() []interface{}
	// SelectColumns returns a new frame restricted to the given columns
	SelectColumns(colNames []string) (LocalDataFrame, error)
	// RenameColumns returns a new frame with columns renamed per the old->new mapping
	RenameColumns(colNames map[string]string) (LocalDataFrame, error)
	// DropColumns returns a new frame without the given columns
	DropColumns(colNames []string) (LocalDataFrame, error)
}
