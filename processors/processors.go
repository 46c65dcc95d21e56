// Package processors provides stateless operators built purely on top of
// the ExecutionEngine contract. Each processor takes zero or more named
// input dataframes plus the shared engine context, and is pure with respect
// to engine state, so a workflow layer can compose them freely.
package processors

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
)

// Context is the shared execution context handed to every processor
type Context struct {
	Engine rondo.ExecutionEngine
	Params *rondo.Params
	Spec   rondo.PartitionSpec
}

// A Processor computes one output dataframe from named inputs
type Processor interface {
	Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error)
}

func singleInput(dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	if dfs.Len() != 1 {
		return nil, errors.SingleInputError{Count: dfs.Len()}
	}
	return dfs.First(), nil
}
