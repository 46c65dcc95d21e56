package processors

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
)

// Rename renames columns of its single input per the old-to-new mapping
type Rename struct {
	Columns map[string]string
}

// Process applies the rename
func (p *Rename) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	return local.RenameColumns(p.Columns)
}

// DropColumns removes columns from its single input. With IfExists set,
// names absent from the schema are silently skipped instead of failing.
type DropColumns struct {
	Columns  []string
	IfExists bool
}

// Process applies the drop
func (p *DropColumns) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	colNames := p.Columns
	if p.IfExists {
		colNames = []string{}
		for _, name := range p.Columns {
			if local.Schema().HasColumn(name) {
				colNames = append(colNames, name)
			}
		}
		if len(colNames) == 0 {
			return local, nil
		}
	}
	return local.DropColumns(colNames)
}

// SelectColumns restricts its single input to the given columns, in the
// given order
type SelectColumns struct {
	Columns []string
}

// Process applies the selection
func (p *SelectColumns) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	return local.SelectColumns(p.Columns)
}
