// Package dataframe provides Rondo's local bounded dataframe, the concrete
// form every reference-engine operation materializes into, plus the schema
// derivation helpers shared by join-like operations.
package dataframe

import (
	"fmt"

	"github.com/go-rondo/rondo"
)

// ArrayDataFrame is a local, bounded DataFrame over in-memory rows
type ArrayDataFrame struct {
	rows     [][]interface{}
	schema   rondo.Schema
	metadata *rondo.Params
}

// CreateArrayDataFrame is a factory for ArrayDataFrames. Every row must
// match the schema in width and column types.
func CreateArrayDataFrame(rows [][]interface{}, schema rondo.Schema) (*ArrayDataFrame, error) {
	return CreateArrayDataFrameWithMetadata(rows, schema, nil)
}

// CreateArrayDataFrameWithMetadata is a factory for ArrayDataFrames with
// pre-attached metadata
func CreateArrayDataFrameWithMetadata(rows [][]interface{}, schema rondo.Schema, metadata *rondo.Params) (*ArrayDataFrame, error) {
	types := schema.ColumnTypes()
	names := schema.ColumnNames()
	for i, row := range rows {
		if len(row) != len(types) {
			return nil, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(types))
		}
		for j, colType := range types {
			if err := colType.Validate(row[j]); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, names[j], err)
			}
		}
	}
	if metadata == nil {
		metadata = rondo.CreateParams()
	}
	if rows == nil {
		rows = [][]interface{}{}
	}
	return &ArrayDataFrame{rows: rows, schema: schema, metadata: metadata}, nil
}

// Schema returns the Schema of this ArrayDataFrame
func (a *ArrayDataFrame) Schema() rondo.Schema {
	return a.schema
}

// Metadata returns the parameters attached to this ArrayDataFrame
func (a *ArrayDataFrame) Metadata() *rondo.Params {
	return a.metadata
}

// IsLocal returns true: ArrayDataFrames are always in-process
func (a *ArrayDataFrame) IsLocal() bool {
	return true
}

// IsBounded returns true: ArrayDataFrames are always finite
func (a *ArrayDataFrame) IsBounded() bool {
	return true
}

// Count returns the physical number of rows
func (a *ArrayDataFrame) Count() int {
	return len(a.rows)
}

// Rows returns all rows. The returned slice is not a copy.
func (a *ArrayDataFrame) Rows() [][]interface{} {
	return a.rows
}

// Peek returns the first row without consuming it, or nil if empty
func (a *ArrayDataFrame) Peek() []interface{} {
	if len(a.rows) == 0 {
		return nil
	}
	return a.rows[0]
}

// SelectColumns returns a new frame restricted to the given columns
func (a *ArrayDataFrame) SelectColumns(colNames []string) (rondo.LocalDataFrame, error) {
	selected, err := a.schema.Select(colNames)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(colNames))
	for i, name := range colNames {
		positions[i], _ = a.schema.IndexOf(name)
	}
	rows := make([][]interface{}, len(a.rows))
	for i, row := range a.rows {
		projected := make([]interface{}, len(positions))
		for j, pos := range positions {
			projected[j] = row[pos]
		}
		rows[i] = projected
	}
	return &ArrayDataFrame{rows: rows, schema: selected, metadata: rondo.CreateParams()}, nil
}

// RenameColumns returns a new frame with columns renamed per the old->new
// mapping. Row data is shared, not copied.
func (a *ArrayDataFrame) RenameColumns(colNames map[string]string) (rondo.LocalDataFrame, error) {
	renamed, err := a.schema.Rename(colNames)
	if err != nil {
		return nil, err
	}
	return &ArrayDataFrame{rows: a.rows, schema: renamed, metadata: rondo.CreateParams()}, nil
}

// DropColumns returns a new frame without the given columns
func (a *ArrayDataFrame) DropColumns(colNames []string) (rondo.LocalDataFrame, error) {
	removed, err := a.schema.Remove(colNames)
	if err != nil {
		return nil, err
	}
	return a.SelectColumns(removed.ColumnNames())
}

// WithMetadata returns a view of df carrying the given metadata. Local
// frames share their row data with the view; other frames are returned
// unchanged.
func WithMetadata(df rondo.DataFrame, metadata *rondo.Params) rondo.DataFrame {
	if metadata == nil {
		return df
	}
	if adf, ok := df.(*ArrayDataFrame); ok {
		return &ArrayDataFrame{rows: adf.rows, schema: adf.schema, metadata: metadata}
	}
	return df
}

// ToLocalBounded realizes a DataFrame into a concrete local form. The
// reference backend operates on local bounded data only; distributed
// frames must be collected by their own backend first.
func ToLocalBounded(df rondo.DataFrame) (rondo.LocalDataFrame, error) {
	if df == nil {
		return nil, fmt.Errorf("dataframe is nil")
	}
	local, ok := df.(rondo.LocalDataFrame)
	if !ok || !df.IsLocal() {
		return nil, fmt.Errorf("dataframe %T is not local", df)
	}
	if !df.IsBounded() {
		return nil, fmt.Errorf("dataframe %T is not bounded", df)
	}
	return local, nil
}
