package schema

import (
	"fmt"
	"strings"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
)

// Schema is an ordered list of named, typed columns with an index for
// constant-time name lookup.
type schema struct {
	names []string
	types []rondo.ColumnType
	index map[string]int
}

// CreateSchema is a factory for Schemas. Column names must be non-empty
// and distinct.
func CreateSchema(names []string, types []rondo.ColumnType) (rondo.Schema, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%d column names given for %d types", len(names), len(types))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if len(name) == 0 {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := index[name]; exists {
			return nil, errors.DuplicatePartitionColumnError{Name: name}
		}
		index[name] = i
	}
	return &schema{names: append([]string{}, names...), types: append([]rondo.ColumnType{}, types...), index: index}, nil
}

// Parse builds a Schema from a compact "a:int,b:str" expression
func Parse(expr string) (rondo.Schema, error) {
	var names []string
	var types []rondo.ColumnType
	for _, clause := range strings.Split(expr, ",") {
		clause = strings.TrimSpace(clause)
		if len(clause) == 0 {
			continue
		}
		parts := strings.SplitN(clause, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed schema clause %q", clause)
		}
		colType, err := parseType(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSpace(parts[0]))
		types = append(types, colType)
	}
	return CreateSchema(names, types)
}

// MustParse builds a Schema from a compact expression, panicking on error.
// Intended for statically-known schema literals.
func MustParse(expr string) rondo.Schema {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func parseType(token string) (rondo.ColumnType, error) {
	switch strings.ToLower(token) {
	case "int", "long", "short", "byte":
		return &rondo.IntColumnType{}, nil
	case "float", "double":
		return &rondo.FloatColumnType{}, nil
	case "str", "string":
		return &rondo.StringColumnType{}, nil
	case "bool", "boolean":
		return &rondo.BoolColumnType{}, nil
	case "bytes", "binary":
		return &rondo.BytesColumnType{}, nil
	case "any", "object":
		return &rondo.AnyColumnType{}, nil
	}
	return nil, fmt.Errorf("unrecognized column type %q", token)
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.names)
}

// ColumnNames returns the names in this Schema, in column order
func (s *schema) ColumnNames() []string {
	return s.names
}

// ColumnTypes returns the types in this Schema, in column order
func (s *schema) ColumnTypes() []rondo.ColumnType {
	return s.types
}

// HasColumn returns true iff this Schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.index[colName]
	return ok
}

// IndexOf returns the position of the given column within this Schema
func (s *schema) IndexOf(colName string) (int, bool) {
	i, ok := s.index[colName]
	return i, ok
}

// TypeOf returns the type of the given column
func (s *schema) TypeOf(colName string) (rondo.ColumnType, error) {
	i, ok := s.index[colName]
	if !ok {
		return nil, errors.MissingColumnError{Name: colName}
	}
	return s.types[i], nil
}

// Equals returns nil iff this and another Schema contain the same columns
// with the same types in the same order
func (s *schema) Equals(otherSchema rondo.Schema) error {
	if otherSchema == nil {
		return fmt.Errorf("other schema is nil")
	}
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("schemas have unequal numbers of columns: %d vs %d", s.NumColumns(), otherSchema.NumColumns())
	}
	otherNames := otherSchema.ColumnNames()
	otherTypes := otherSchema.ColumnTypes()
	for i, name := range s.names {
		if name != otherNames[i] {
			return fmt.Errorf("column %d name mismatch: %s vs %s", i, name, otherNames[i])
		}
		if s.types[i].Name() != otherTypes[i].Name() {
			return fmt.Errorf("column %s type mismatch: %s vs %s", name, s.types[i].Name(), otherTypes[i].Name())
		}
	}
	return nil
}

// Clone returns a copy of this Schema
func (s *schema) Clone() rondo.Schema {
	clone, _ := CreateSchema(s.names, s.types)
	return clone
}

// Select returns a new Schema restricted to the given columns, in the given order
func (s *schema) Select(colNames []string) (rondo.Schema, error) {
	types := make([]rondo.ColumnType, len(colNames))
	for i, name := range colNames {
		idx, ok := s.index[name]
		if !ok {
			return nil, errors.MissingColumnError{Name: name}
		}
		types[i] = s.types[idx]
	}
	return CreateSchema(colNames, types)
}

// Rename returns a new Schema with columns renamed per the old->new mapping
func (s *schema) Rename(colNames map[string]string) (rondo.Schema, error) {
	for old := range colNames {
		if !s.HasColumn(old) {
			return nil, errors.MissingColumnError{Name: old}
		}
	}
	names := make([]string, len(s.names))
	for i, name := range s.names {
		if renamed, ok := colNames[name]; ok {
			names[i] = renamed
		} else {
			names[i] = name
		}
	}
	return CreateSchema(names, s.types)
}

// Remove returns a new Schema without the given columns
func (s *schema) Remove(colNames []string) (rondo.Schema, error) {
	removing := make(map[string]bool, len(colNames))
	for _, name := range colNames {
		if !s.HasColumn(name) {
			return nil, errors.MissingColumnError{Name: name}
		}
		removing[name] = true
	}
	var names []string
	var types []rondo.ColumnType
	for i, name := range s.names {
		if !removing[name] {
			names = append(names, name)
			types = append(types, s.types[i])
		}
	}
	return CreateSchema(names, types)
}

// Intersect returns the column names present in both Schemas, in this Schema's order
func (s *schema) Intersect(otherSchema rondo.Schema) []string {
	common := []string{}
	for _, name := range s.names {
		if otherSchema.HasColumn(name) {
			common = append(common, name)
		}
	}
	return common
}

// String renders this Schema as "a:int,b:str"
func (s *schema) String() string {
	var b strings.Builder
	for i, name := range s.names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(s.types[i].Name())
	}
	return b.String()
}
