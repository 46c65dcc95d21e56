package processors

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
	"github.com/hashicorp/go-multierror"
)

// Join folds a left-to-right join across its inputs using a fixed join
// mode and key list. A single input passes through untouched.
type Join struct {
	How rondo.JoinType
	On  []string
}

// Process joins the inputs left to right
func (p *Join) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	var result rondo.DataFrame
	err := dfs.ForEach(func(name string, df rondo.DataFrame) error {
		if result == nil {
			result = df
			return nil
		}
		joined, err := pctx.Engine.Join(result, df, p.How, p.On)
		if err != nil {
			return err
		}
		result = joined
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetOp selects which set operation a SetOperation processor folds
type SetOp int

const (
	// UnionOp concatenates inputs
	UnionOp SetOp = iota
	// SubtractOp removes the rows of later inputs from the first
	SubtractOp
	// IntersectOp keeps only rows present in every input
	IntersectOp
)

// SetOperation folds union, subtract or intersect left to right across its
// inputs with a fixed distinctness flag. All inputs must share one schema;
// mismatches are collected and reported together before any data moves.
type SetOperation struct {
	Op       SetOp
	Distinct bool
}

// Process validates the input schemas, then folds the configured operation
func (p *SetOperation) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	first := dfs.First()
	var mismatches *multierror.Error
	_ = dfs.ForEach(func(name string, df rondo.DataFrame) error {
		if err := first.Schema().Equals(df.Schema()); err != nil {
			mismatches = multierror.Append(mismatches, errors.SchemaMismatchError{
				Expected: first.Schema().String(),
				Actual:   df.Schema().String(),
			})
		}
		return nil
	})
	if err := mismatches.ErrorOrNil(); err != nil {
		return nil, err
	}
	result := first
	skippedFirst := false
	err := dfs.ForEach(func(name string, df rondo.DataFrame) error {
		if !skippedFirst {
			skippedFirst = true
			return nil
		}
		var err error
		switch p.Op {
		case SubtractOp:
			result, err = pctx.Engine.Subtract(result, df, p.Distinct)
		case IntersectOp:
			result, err = pctx.Engine.Intersect(result, df, p.Distinct)
		default:
			result, err = pctx.Engine.Union(result, df, p.Distinct)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if p.Op == UnionOp && p.Distinct && dfs.Len() == 1 {
		return pctx.Engine.Distinct(result)
	}
	return result, nil
}

// Distinct removes duplicate rows from its single input
type Distinct struct{}

// Process deduplicates the input
func (p *Distinct) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	return pctx.Engine.Distinct(df)
}

// SQLSelect executes a SQL statement against its named inputs, using either
// an explicitly supplied SQL engine or the execution engine's default
type SQLSelect struct {
	Statement string
	Engine    rondo.SQLEngine
}

// Process resolves the SQL engine and runs the statement
func (p *SQLSelect) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	sqlEngine := p.Engine
	if sqlEngine == nil {
		sqlEngine = pctx.Engine.DefaultSQLEngine()
	}
	return sqlEngine.Select(dfs, p.Statement)
}
