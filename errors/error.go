package errors

import (
	"fmt"
)

// PresortSyntaxError occurs when a presort expression cannot be parsed
type PresortSyntaxError struct{ Clause string }

// Error returns a textual representation of this PresortSyntaxError
func (e PresortSyntaxError) Error() string {
	return fmt.Sprintf("Malformed presort clause %q", e.Clause)
}

// DuplicatePartitionColumnError occurs when a column appears more than once
// in a partition-by list or a presort expression
type DuplicatePartitionColumnError struct{ Name string }

// Error returns a textual representation of this DuplicatePartitionColumnError
func (e DuplicatePartitionColumnError) Error() string {
	return fmt.Sprintf("Column %s appears more than once", e.Name)
}

// PartitionPresortOverlapError occurs when a column is listed both as a
// partition-by column and a presort column
type PartitionPresortOverlapError struct{ Name string }

// Error returns a textual representation of this PartitionPresortOverlapError
func (e PartitionPresortOverlapError) Error() string {
	return fmt.Sprintf("Column %s is both a partition-by and a presort column", e.Name)
}

// SpecSourceTypeError occurs when a PartitionSpec is constructed from an
// unrecognized source type
type SpecSourceTypeError struct{ Type string }

// Error returns a textual representation of this SpecSourceTypeError
func (e SpecSourceTypeError) Error() string {
	return fmt.Sprintf("Cannot construct a partition spec from a value of type %s", e.Type)
}

// SizeSyntaxError occurs when a size limit expression cannot be parsed
type SizeSyntaxError struct{ Expr string }

// Error returns a textual representation of this SizeSyntaxError
func (e SizeSyntaxError) Error() string {
	return fmt.Sprintf("Malformed size expression %q", e.Expr)
}

// MissingColumnError occurs when a referenced column does not exist in a schema
type MissingColumnError struct{ Name string }

// Error returns a textual representation of this MissingColumnError
func (e MissingColumnError) Error() string {
	return fmt.Sprintf("Column %s does not exist", e.Name)
}

// KeywordResolutionError occurs when a partition-count expression references
// a keyword for which no resolver was supplied
type KeywordResolutionError struct{ Keyword string }

// Error returns a textual representation of this KeywordResolutionError
func (e KeywordResolutionError) Error() string {
	return fmt.Sprintf("No resolver supplied for keyword %s", e.Keyword)
}

// ExpressionSyntaxError occurs when a partition-count expression cannot be parsed
type ExpressionSyntaxError struct {
	Expr string
	Pos  int
}

// Error returns a textual representation of this ExpressionSyntaxError
func (e ExpressionSyntaxError) Error() string {
	return fmt.Sprintf("Malformed expression %q at position %d", e.Expr, e.Pos)
}

// ExpressionEvalError occurs when a partition-count expression cannot be evaluated
type ExpressionEvalError struct{ Reason string }

// Error returns a textual representation of this ExpressionEvalError
func (e ExpressionEvalError) Error() string {
	return fmt.Sprintf("Cannot evaluate expression: %s", e.Reason)
}

// SchemaMismatchError occurs when an operation requires identical schemas
// and the inputs differ
type SchemaMismatchError struct {
	Expected string
	Actual   string
}

// Error returns a textual representation of this SchemaMismatchError
func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("Schema %s does not match %s", e.Actual, e.Expected)
}

// SchemaContractError occurs when a transform's output schema does not
// match its declared output schema. It is fatal regardless of any
// ignore-errors policy.
type SchemaContractError struct {
	Expected string
	Actual   string
}

// Error returns a textual representation of this SchemaContractError
func (e SchemaContractError) Error() string {
	return fmt.Sprintf("Map output schema %s mismatches declared schema %s", e.Actual, e.Expected)
}

// UnsupportedOperationError occurs when a backend is asked for an operation
// it explicitly does not implement
type UnsupportedOperationError struct{ Op string }

// Error returns a textual representation of this UnsupportedOperationError
func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported by this engine", e.Op)
}

// NotSerializedError occurs when a co-transform is run against a dataframe
// which is not a serialized carrier
type NotSerializedError struct{}

// Error returns a textual representation of this NotSerializedError
func (e NotSerializedError) Error() string {
	return "Input is not a serialized carrier dataframe"
}

// EmptyInputError occurs when a processor receives no input dataframes
type EmptyInputError struct{}

// Error returns a textual representation of this EmptyInputError
func (e EmptyInputError) Error() string {
	return "No input dataframes"
}

// SingleInputError occurs when a single-input processor receives more than
// one input dataframe
type SingleInputError struct{ Count int }

// Error returns a textual representation of this SingleInputError
func (e SingleInputError) Error() string {
	return fmt.Sprintf("Expected a single input dataframe, got %d", e.Count)
}

// FrozenParamsError occurs when a mutation is attempted on frozen Params
type FrozenParamsError struct{ Key string }

// Error returns a textual representation of this FrozenParamsError
func (e FrozenParamsError) Error() string {
	return fmt.Sprintf("Cannot set key %s on frozen params", e.Key)
}
