package processors

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
)

// Zip combines its inputs into one serialized carrier dataframe under the
// given join mode and the context's partition spec. Payloads larger than
// ToFileThreshold bytes spill to TempPath; a zero threshold keeps all
// payloads inline.
type Zip struct {
	How             rondo.JoinType
	TempPath        string
	ToFileThreshold int64
}

// Process zips the inputs into a carrier
func (p *Zip) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	return pctx.Engine.ZipAll(dfs, p.How, pctx.Spec, p.TempPath, p.ToFileThreshold)
}
