package rondo

import "fmt"

// IntColumnType is a column type which stores a signed integer value
type IntColumnType struct{}

// Name returns the canonical short name of an IntColumnType
func (b *IntColumnType) Name() string {
	return "int"
}

// Validate returns an error iff v is not an integer value
func (b *IntColumnType) Validate(v interface{}) error {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	}
	return fmt.Errorf("value %v (%T) is not an int", v, v)
}

// SQLType returns the SQLite affinity of an IntColumnType
func (b *IntColumnType) SQLType() string {
	return "INTEGER"
}

// FloatColumnType is a column type which stores a floating-point value
type FloatColumnType struct{}

// Name returns the canonical short name of a FloatColumnType
func (b *FloatColumnType) Name() string {
	return "float"
}

// Validate returns an error iff v is not a floating-point value
func (b *FloatColumnType) Validate(v interface{}) error {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case float32, float64:
		return nil
	}
	return fmt.Errorf("value %v (%T) is not a float", v, v)
}

// SQLType returns the SQLite affinity of a FloatColumnType
func (b *FloatColumnType) SQLType() string {
	return "REAL"
}

// StringColumnType is a column type which stores a string value
type StringColumnType struct{}

// Name returns the canonical short name of a StringColumnType
func (b *StringColumnType) Name() string {
	return "str"
}

// Validate returns an error iff v is not a string value
func (b *StringColumnType) Validate(v interface{}) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("value %v (%T) is not a string", v, v)
	}
	return nil
}

// SQLType returns the SQLite affinity of a StringColumnType
func (b *StringColumnType) SQLType() string {
	return "TEXT"
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Name returns the canonical short name of a BoolColumnType
func (b *BoolColumnType) Name() string {
	return "bool"
}

// Validate returns an error iff v is not a boolean value
func (b *BoolColumnType) Validate(v interface{}) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(bool); !ok {
		return fmt.Errorf("value %v (%T) is not a bool", v, v)
	}
	return nil
}

// SQLType returns the SQLite affinity of a BoolColumnType
func (b *BoolColumnType) SQLType() string {
	return "INTEGER"
}

// BytesColumnType is a column type which stores variable-length byte arrays
type BytesColumnType struct{}

// Name returns the canonical short name of a BytesColumnType
func (b *BytesColumnType) Name() string {
	return "bytes"
}

// Validate returns an error iff v is not a byte array
func (b *BytesColumnType) Validate(v interface{}) error {
	if v == nil {
		return nil
	}
	if _, ok := v.([]byte); !ok {
		return fmt.Errorf("value %v (%T) is not a byte array", v, v)
	}
	return nil
}

// SQLType returns the SQLite affinity of a BytesColumnType
func (b *BytesColumnType) SQLType() string {
	return "BLOB"
}

// AnyColumnType is a column type which stores values of any type
type AnyColumnType struct{}

// Name returns the canonical short name of an AnyColumnType
func (b *AnyColumnType) Name() string {
	return "any"
}

// Validate always succeeds for an AnyColumnType
func (b *AnyColumnType) Validate(v interface{}) error {
	return nil
}

// SQLType returns an empty affinity, leaving storage class to the store
func (b *AnyColumnType) SQLType() string {
	return ""
}
