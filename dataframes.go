package rondo

import "fmt"

// DataFrames is an ordered, named collection of DataFrames, used as the
// input to multi-input operators and SQL statements. Unnamed frames are
// assigned positional names "_0", "_1", ...
type DataFrames struct {
	names  []string
	frames map[string]DataFrame
	named  bool
}

// CreateDataFrames builds a DataFrames collection with positional names
func CreateDataFrames(dfs ...DataFrame) *DataFrames {
	res := &DataFrames{frames: make(map[string]DataFrame, len(dfs))}
	for i, df := range dfs {
		name := fmt.Sprintf("_%d", i)
		res.names = append(res.names, name)
		res.frames[name] = df
	}
	return res
}

// CreateNamedDataFrames builds a DataFrames collection with explicit names.
// names and dfs must have equal length and names must be distinct.
func CreateNamedDataFrames(names []string, dfs []DataFrame) (*DataFrames, error) {
	if len(names) != len(dfs) {
		return nil, fmt.Errorf("%d names given for %d dataframes", len(names), len(dfs))
	}
	res := &DataFrames{frames: make(map[string]DataFrame, len(dfs)), named: true}
	for i, name := range names {
		if _, exists := res.frames[name]; exists {
			return nil, fmt.Errorf("duplicate dataframe name %s", name)
		}
		res.names = append(res.names, name)
		res.frames[name] = dfs[i]
	}
	return res, nil
}

// Len returns the number of DataFrames in this collection
func (d *DataFrames) Len() int {
	return len(d.names)
}

// HasName returns true iff the collection was built with explicit names
func (d *DataFrames) HasName() bool {
	return d.named
}

// Names returns the names in this collection, in order
func (d *DataFrames) Names() []string {
	return d.names
}

// Get retrieves a DataFrame by name
func (d *DataFrames) Get(name string) (DataFrame, bool) {
	df, ok := d.frames[name]
	return df, ok
}

// First returns the first DataFrame in this collection, or nil if empty
func (d *DataFrames) First() DataFrame {
	if len(d.names) == 0 {
		return nil
	}
	return d.frames[d.names[0]]
}

// ForEach iterates over the collection in order
func (d *DataFrames) ForEach(fn func(name string, df DataFrame) error) error {
	for _, name := range d.names {
		if err := fn(name, d.frames[name]); err != nil {
			return err
		}
	}
	return nil
}
