package partition

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
)

// cursor is the concrete PartitionCursor. Key column positions within the
// row schema are resolved once at construction and reused on every Set.
type cursor struct {
	rowSchema           rondo.Schema
	keySchema           rondo.Schema
	keyPositions        []int
	physicalPartitionNo int
	row                 []interface{}
	partitionNo         int
	sliceNo             int
}

func createCursor(rowSchema rondo.Schema, keySchema rondo.Schema, physicalPartitionNo int) (*cursor, error) {
	keyPositions := make([]int, keySchema.NumColumns())
	for i, name := range keySchema.ColumnNames() {
		pos, ok := rowSchema.IndexOf(name)
		if !ok {
			return nil, errors.MissingColumnError{Name: name}
		}
		keyPositions[i] = pos
	}
	return &cursor{
		rowSchema:           rowSchema,
		keySchema:           keySchema,
		keyPositions:        keyPositions,
		physicalPartitionNo: physicalPartitionNo,
		partitionNo:         physicalPartitionNo,
	}, nil
}

// Set binds the cursor to a row without copying it
func (c *cursor) Set(row []interface{}, partitionNo int, sliceNo int) {
	c.row = row
	c.partitionNo = partitionNo
	c.sliceNo = sliceNo
}

// Row returns the currently bound raw row
func (c *cursor) Row() []interface{} {
	return c.row
}

// PartitionNo returns the positional index of the current partition
func (c *cursor) PartitionNo() int {
	return c.partitionNo
}

// SliceNo returns the index of the current sub-chunk within the partition
func (c *cursor) SliceNo() int {
	return c.sliceNo
}

// PhysicalPartitionNo returns the physical partition number this cursor
// was created for
func (c *cursor) PhysicalPartitionNo() int {
	return c.physicalPartitionNo
}

// KeyValueArray returns the key values of the current row, positions
// matching the key schema
func (c *cursor) KeyValueArray() []interface{} {
	values := make([]interface{}, len(c.keyPositions))
	for i, pos := range c.keyPositions {
		values[i] = c.row[pos]
	}
	return values
}

// KeyValueDict returns the key values of the current row as a name->value
// mapping
func (c *cursor) KeyValueDict() map[string]interface{} {
	values := make(map[string]interface{}, len(c.keyPositions))
	for i, name := range c.keySchema.ColumnNames() {
		values[name] = c.row[c.keyPositions[i]]
	}
	return values
}

// Value looks up a column of the current row by name
func (c *cursor) Value(colName string) (interface{}, error) {
	pos, ok := c.rowSchema.IndexOf(colName)
	if !ok {
		return nil, errors.MissingColumnError{Name: colName}
	}
	return c.row[pos], nil
}

// RowSchema returns the full schema of the dataset being traversed
func (c *cursor) RowSchema() rondo.Schema {
	return c.rowSchema
}

// KeySchema returns the partition key sub-schema
func (c *cursor) KeySchema() rondo.Schema {
	return c.keySchema
}
