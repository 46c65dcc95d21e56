// Package partition implements Rondo's partitioning model: immutable
// PartitionSpecs describing how a dataset is divided and ordered, the
// PartitionCursor exposed to user transforms during a partitioned
// traversal, and the arithmetic expression grammar used for lazy
// partition-count resolution.
package partition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
	rschema "github.com/go-rondo/rondo/schema"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

const (
	// KeywordRowCount is resolved to the row count of the running dataset
	KeywordRowCount = "ROWCOUNT"
	// KeywordCoreCount is resolved to the core count of the running cluster
	KeywordCoreCount = "CORECOUNT"
)

// Spec is the canonical, immutable partitioning description. Construct one
// with NewSpec or NewSpecFrom; all normalization and validation happens at
// construction time.
type Spec struct {
	by        []string
	presort   []rondo.SortColumn
	algo      string
	num       string
	rowLimit  int
	sizeLimit int64
}

// rawSpec accumulates constructor inputs before normalization.
// Last write wins across sources and options.
type rawSpec struct {
	by        []string
	presort   interface{} // string expression or []rondo.SortColumn
	algo      string
	num       string
	rowLimit  int
	sizeLimit interface{} // string expression or int64 bytes
}

// A SpecOption sets one field of a Spec under construction
type SpecOption func(*rawSpec)

// By sets the ordered partition key columns
func By(cols ...string) SpecOption {
	return func(r *rawSpec) { r.by = cols }
}

// Presort sets the within-partition ordering from a comma-separated
// "col [asc|desc]" expression
func Presort(expr string) SpecOption {
	return func(r *rawSpec) { r.presort = expr }
}

// PresortPairs sets the within-partition ordering from explicit pairs
func PresortPairs(pairs []rondo.SortColumn) SpecOption {
	return func(r *rawSpec) { r.presort = pairs }
}

// Algo sets the partitioning algorithm token. It is lower-cased during
// normalization and interpreted by the backend.
func Algo(algo string) SpecOption {
	return func(r *rawSpec) { r.algo = algo }
}

// Num sets the partition-count expression from an integer or a string
// arithmetic expression over reserved keywords
func Num(num interface{}) SpecOption {
	return func(r *rawSpec) {
		switch v := num.(type) {
		case string:
			r.num = strings.TrimSpace(v)
		default:
			r.num = cast.ToString(num)
		}
	}
}

// RowLimit caps the number of rows per partition
func RowLimit(limit int) SpecOption {
	return func(r *rawSpec) { r.rowLimit = limit }
}

// SizeLimit caps the byte size per partition, accepting suffixed
// expressions such as "5k", "2m" or "1g"
func SizeLimit(limit string) SpecOption {
	return func(r *rawSpec) { r.sizeLimit = limit }
}

// NewSpec builds a Spec from options alone. With no options it is the
// empty spec: no partition columns, no presort, algo "hash", num "0".
func NewSpec(opts ...SpecOption) (*Spec, error) {
	return NewSpecFrom(nil, opts...)
}

// NewSpecFrom builds a Spec from a source plus overriding options. The
// source may be nil, another *Spec (or any rondo.PartitionSpec), a
// map[string]interface{} document or a JSON document string; anything else
// is a definition error. Overrides win and the merged field set is fully
// re-normalized.
func NewSpecFrom(source interface{}, opts ...SpecOption) (*Spec, error) {
	raw := &rawSpec{}
	if err := raw.absorb(source); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(raw)
	}
	return raw.normalize()
}

func (r *rawSpec) absorb(source interface{}) error {
	switch v := source.(type) {
	case nil:
		return nil
	case *Spec:
		r.by = v.by
		r.presort = append([]rondo.SortColumn{}, v.presort...)
		r.algo = v.algo
		r.num = v.num
		r.rowLimit = v.rowLimit
		r.sizeLimit = v.sizeLimit
		return nil
	case rondo.PartitionSpec:
		r.by = v.PartitionBy()
		r.presort = v.Presort()
		r.algo = v.Algo()
		r.num = v.NumPartitionsExpr()
		r.rowLimit = v.RowLimit()
		r.sizeLimit = v.SizeLimit()
		return nil
	case map[string]interface{}:
		return r.absorbDocument(v)
	case string:
		parsed := gjson.Parse(v)
		if !parsed.IsObject() {
			return errors.SpecSourceTypeError{Type: "non-object JSON string"}
		}
		doc := make(map[string]interface{})
		parsed.ForEach(func(key, value gjson.Result) bool {
			doc[key.String()] = value.Value()
			return true
		})
		return r.absorbDocument(doc)
	}
	return errors.SpecSourceTypeError{Type: fmt.Sprintf("%T", source)}
}

func (r *rawSpec) absorbDocument(doc map[string]interface{}) error {
	for key, value := range doc {
		switch key {
		case "by", "partition_by":
			cols, err := cast.ToStringSliceE(value)
			if err != nil {
				return errors.SpecSourceTypeError{Type: fmt.Sprintf("partition_by %T", value)}
			}
			r.by = cols
		case "presort":
			expr, err := cast.ToStringE(value)
			if err != nil {
				return errors.SpecSourceTypeError{Type: fmt.Sprintf("presort %T", value)}
			}
			r.presort = expr
		case "algo":
			r.algo = cast.ToString(value)
		case "num", "num_partitions":
			r.num = strings.TrimSpace(cast.ToString(value))
		case "row_limit":
			limit, err := cast.ToIntE(value)
			if err != nil {
				return errors.SpecSourceTypeError{Type: fmt.Sprintf("row_limit %T", value)}
			}
			r.rowLimit = limit
		case "size_limit":
			r.sizeLimit = value
		default:
			return errors.SpecSourceTypeError{Type: fmt.Sprintf("unrecognized key %s", key)}
		}
	}
	return nil
}

func (r *rawSpec) normalize() (*Spec, error) {
	spec := &Spec{
		by:       []string{},
		presort:  []rondo.SortColumn{},
		algo:     "hash",
		num:      "0",
		rowLimit: r.rowLimit,
	}
	seen := make(map[string]bool, len(r.by))
	for _, col := range r.by {
		if seen[col] {
			return nil, errors.DuplicatePartitionColumnError{Name: col}
		}
		seen[col] = true
		spec.by = append(spec.by, col)
	}
	presort, err := normalizePresort(r.presort)
	if err != nil {
		return nil, err
	}
	for _, sc := range presort {
		if seen[sc.Name] {
			return nil, errors.PartitionPresortOverlapError{Name: sc.Name}
		}
	}
	spec.presort = presort
	if len(r.algo) > 0 {
		spec.algo = strings.ToLower(strings.TrimSpace(r.algo))
	}
	if len(r.num) > 0 {
		spec.num = r.num
	}
	if n, err := strconv.Atoi(spec.num); err == nil && n < 0 {
		return nil, errors.ExpressionEvalError{Reason: fmt.Sprintf("negative partition count %d", n)}
	}
	if spec.rowLimit < 0 {
		spec.rowLimit = 0
	}
	sizeLimit, err := normalizeSizeLimit(r.sizeLimit)
	if err != nil {
		return nil, err
	}
	spec.sizeLimit = sizeLimit
	return spec, nil
}

func normalizePresort(presort interface{}) ([]rondo.SortColumn, error) {
	switch v := presort.(type) {
	case nil:
		return []rondo.SortColumn{}, nil
	case []rondo.SortColumn:
		seen := make(map[string]bool, len(v))
		for _, sc := range v {
			if seen[sc.Name] {
				return nil, errors.DuplicatePartitionColumnError{Name: sc.Name}
			}
			seen[sc.Name] = true
		}
		return append([]rondo.SortColumn{}, v...), nil
	case string:
		return parsePresort(v)
	}
	return nil, errors.SpecSourceTypeError{Type: fmt.Sprintf("presort %T", presort)}
}

// parsePresort parses comma-separated "<col> [asc|desc]" clauses,
// defaulting to ascending
func parsePresort(expr string) ([]rondo.SortColumn, error) {
	result := []rondo.SortColumn{}
	if len(strings.TrimSpace(expr)) == 0 {
		return result, nil
	}
	seen := make(map[string]bool)
	for _, clause := range strings.Split(expr, ",") {
		fields := strings.Fields(clause)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, errors.PresortSyntaxError{Clause: strings.TrimSpace(clause)}
		}
		sc := rondo.SortColumn{Name: fields[0], Ascending: true}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
				sc.Ascending = true
			case "desc":
				sc.Ascending = false
			default:
				return nil, errors.PresortSyntaxError{Clause: strings.TrimSpace(clause)}
			}
		}
		if seen[sc.Name] {
			return nil, errors.DuplicatePartitionColumnError{Name: sc.Name}
		}
		seen[sc.Name] = true
		result = append(result, sc)
	}
	return result, nil
}

func normalizeSizeLimit(limit interface{}) (int64, error) {
	switch v := limit.(type) {
	case nil:
		return 0, nil
	case int64:
		if v < 0 {
			return 0, errors.SizeSyntaxError{Expr: fmt.Sprintf("%d", v)}
		}
		return v, nil
	case int:
		return normalizeSizeLimit(int64(v))
	case float64:
		return normalizeSizeLimit(int64(v))
	case string:
		return parseSize(v)
	}
	return 0, errors.SizeSyntaxError{Expr: fmt.Sprintf("%v", limit)}
}

// parseSize parses a byte size with an optional k/m/g suffix (powers of 1024)
func parseSize(expr string) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(expr))
	if len(trimmed) == 0 {
		return 0, nil
	}
	multiplier := int64(1)
	switch trimmed[len(trimmed)-1] {
	case 'k':
		multiplier = 1 << 10
		trimmed = trimmed[:len(trimmed)-1]
	case 'm':
		multiplier = 1 << 20
		trimmed = trimmed[:len(trimmed)-1]
	case 'g':
		multiplier = 1 << 30
		trimmed = trimmed[:len(trimmed)-1]
	case 'b':
		trimmed = trimmed[:len(trimmed)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(trimmed), 10, 64)
	if err != nil || n < 0 {
		return 0, errors.SizeSyntaxError{Expr: expr}
	}
	return n * multiplier, nil
}

// PartitionBy returns the ordered partition key column names
func (s *Spec) PartitionBy() []string {
	return s.by
}

// Presort returns the within-partition ordering
func (s *Spec) Presort() []rondo.SortColumn {
	return s.presort
}

// PresortExpr renders the presort as "a ASC,b DESC"
func (s *Spec) PresortExpr() string {
	clauses := make([]string, len(s.presort))
	for i, sc := range s.presort {
		direction := "ASC"
		if !sc.Ascending {
			direction = "DESC"
		}
		clauses[i] = sc.Name + " " + direction
	}
	return strings.Join(clauses, ",")
}

// Algo returns the partitioning algorithm token
func (s *Spec) Algo() string {
	return s.algo
}

// NumPartitionsExpr returns the unevaluated partition-count expression
func (s *Spec) NumPartitionsExpr() string {
	return s.num
}

// RowLimit returns the per-partition row cap, 0 meaning none
func (s *Spec) RowLimit() int {
	return s.rowLimit
}

// SizeLimit returns the per-partition byte cap, 0 meaning none
func (s *Spec) SizeLimit() int64 {
	return s.sizeLimit
}

// Empty returns true iff there are no partition-by and no presort columns
func (s *Spec) Empty() bool {
	return len(s.by) == 0 && len(s.presort) == 0
}

// GetCursor builds a fresh PartitionCursor bound to the key sub-schema of
// the given row schema
func (s *Spec) GetCursor(rowSchema rondo.Schema, physicalPartitionNo int) (rondo.PartitionCursor, error) {
	keySchema, err := s.GetKeySchema(rowSchema)
	if err != nil {
		return nil, err
	}
	return createCursor(rowSchema, keySchema, physicalPartitionNo)
}

// GetKeySchema derives the key sub-schema from the row schema, preserving
// partition-by order
func (s *Spec) GetKeySchema(rowSchema rondo.Schema) (rondo.Schema, error) {
	var missing error
	types := make([]rondo.ColumnType, 0, len(s.by))
	for _, col := range s.by {
		colType, err := rowSchema.TypeOf(col)
		if err != nil {
			missing = multierror.Append(missing, err)
			continue
		}
		types = append(types, colType)
	}
	if missing != nil {
		return nil, missing
	}
	return rschema.CreateSchema(s.by, types)
}

// GetSorts returns the combined ordered sort specification: partition-by
// columns ascending, then presort columns per their direction
func (s *Spec) GetSorts(rowSchema rondo.Schema) ([]rondo.SortColumn, error) {
	var missing error
	sorts := make([]rondo.SortColumn, 0, len(s.by)+len(s.presort))
	for _, col := range s.by {
		if !rowSchema.HasColumn(col) {
			missing = multierror.Append(missing, errors.MissingColumnError{Name: col})
			continue
		}
		sorts = append(sorts, rondo.SortColumn{Name: col, Ascending: true})
	}
	for _, sc := range s.presort {
		if !rowSchema.HasColumn(sc.Name) {
			missing = multierror.Append(missing, errors.MissingColumnError{Name: sc.Name})
			continue
		}
		sorts = append(sorts, sc)
	}
	if missing != nil {
		return nil, missing
	}
	return sorts, nil
}

// GetNumPartitions evaluates the partition-count expression. Integer
// literals return directly; expressions require a resolver for every
// keyword they reference.
func (s *Spec) GetNumPartitions(resolvers map[string]func() int) (int, error) {
	if n, err := strconv.Atoi(s.num); err == nil {
		if n < 0 {
			return 0, errors.ExpressionEvalError{Reason: fmt.Sprintf("negative partition count %d", n)}
		}
		return n, nil
	}
	value, err := evalExpression(s.num, resolvers)
	if err != nil {
		return 0, err
	}
	n := int(value)
	if n < 0 {
		n = 0
	}
	return n, nil
}

// specDocument fixes the canonical field order of the serialized form:
// by-columns, num-partitions, presort, algo, row-limit, size-limit
type specDocument struct {
	PartitionBy   []string `json:"partition_by"`
	NumPartitions string   `json:"num_partitions"`
	Presort       string   `json:"presort"`
	Algo          string   `json:"algo"`
	RowLimit      int      `json:"row_limit"`
	SizeLimit     int64    `json:"size_limit"`
}

// Canonical returns the fixed-field-order document serialization of this
// spec. NewSpecFrom accepts it back unchanged.
func (s *Spec) Canonical() []byte {
	doc, err := json.Marshal(specDocument{
		PartitionBy:   s.by,
		NumPartitions: s.num,
		Presort:       s.PresortExpr(),
		Algo:          s.algo,
		RowLimit:      s.rowLimit,
		SizeLimit:     s.sizeLimit,
	})
	if err != nil {
		// specDocument contains only marshalable fields
		panic(err)
	}
	return doc
}

// Hash returns the xxhash64 content hash of the canonical serialization
func (s *Spec) Hash() uint64 {
	return xxhash.Sum64(s.Canonical())
}

// UUID returns a deterministic v5 UUID derived from the canonical
// serialization
func (s *Spec) UUID() string {
	return uuid.NewV5(uuid.NamespaceOID, string(s.Canonical())).String()
}

// Equals returns true iff the canonical serializations are identical
func (s *Spec) Equals(other rondo.PartitionSpec) bool {
	if other == nil {
		return false
	}
	return string(s.Canonical()) == string(other.Canonical())
}
