package dataframe

import (
	"fmt"

	"github.com/go-rondo/rondo"
	rschema "github.com/go-rondo/rondo/schema"
)

// GetJoinSchemas derives the key schema and output schema of a join. When
// on is empty, the largest common-name column set shared by both schemas
// becomes the key set, in df1's column order. Key columns must carry the
// same type on both sides, appear once in the output, and every non-key
// column name must be unique across the two inputs. Cross joins take no
// keys and allow no shared names.
func GetJoinSchemas(df1 rondo.DataFrame, df2 rondo.DataFrame, how rondo.JoinType, on []string) (keySchema rondo.Schema, outputSchema rondo.Schema, err error) {
	s1, s2 := df1.Schema(), df2.Schema()
	common := s1.Intersect(s2)
	if how == rondo.CrossJoin {
		if len(on) > 0 {
			return nil, nil, fmt.Errorf("cross join takes no keys, got %v", on)
		}
		if len(common) > 0 {
			return nil, nil, fmt.Errorf("cross join inputs share columns %v", common)
		}
		keySchema, err = rschema.CreateSchema(nil, nil)
		if err != nil {
			return nil, nil, err
		}
	} else {
		keys := on
		if len(keys) == 0 {
			keys = common
		}
		if len(keys) == 0 {
			return nil, nil, fmt.Errorf("no join keys given and no common columns between %s and %s", s1, s2)
		}
		keySet := make(map[string]bool, len(keys))
		for _, name := range keys {
			keySet[name] = true
		}
		for _, name := range keys {
			t1, err := s1.TypeOf(name)
			if err != nil {
				return nil, nil, err
			}
			t2, err := s2.TypeOf(name)
			if err != nil {
				return nil, nil, err
			}
			if t1.Name() != t2.Name() {
				return nil, nil, fmt.Errorf("join key %s has type %s on one side and %s on the other", name, t1.Name(), t2.Name())
			}
		}
		// a shared non-key name would collide in the merged schema
		for _, name := range common {
			if !keySet[name] {
				return nil, nil, fmt.Errorf("column %s exists on both sides but is not a join key", name)
			}
		}
		keySchema, err = s1.Select(keys)
		if err != nil {
			return nil, nil, err
		}
	}
	outNames := append([]string{}, s1.ColumnNames()...)
	outTypes := append([]rondo.ColumnType{}, s1.ColumnTypes()...)
	s2Types := s2.ColumnTypes()
	for i, name := range s2.ColumnNames() {
		if keySchema.HasColumn(name) {
			continue
		}
		outNames = append(outNames, name)
		outTypes = append(outTypes, s2Types[i])
	}
	outputSchema, err = rschema.CreateSchema(outNames, outTypes)
	if err != nil {
		return nil, nil, err
	}
	return keySchema, outputSchema, nil
}
