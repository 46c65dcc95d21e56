package processors

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/partition"
	"github.com/go-rondo/rondo/transformer"
)

// RunTransformer wraps a user transform in a TransformerRunner and hands it
// to the engine's Map. Ignore lists the tolerated error categories.
type RunTransformer struct {
	Transform rondo.Transform
	Ignore    []error
}

// Process runs the transform over the single input, partitioned per the
// context's spec
func (p *RunTransformer) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	spec, err := contextSpec(pctx)
	if err != nil {
		return nil, err
	}
	runner, err := transformer.CreateTransformerRunner(df, p.Transform, spec, pctx.Params, p.Ignore)
	if err != nil {
		return nil, err
	}
	task := &rondo.MapTask{
		Fn:           runner.Run,
		OutputSchema: runner.OutputSchema(),
		Spec:         spec,
		Metadata:     df.Metadata(),
		OnInit:       runner.OnInit,
	}
	return pctx.Engine.Map(df, task)
}

// RunCoTransformer wraps a user co-transform in a CoTransformerRunner and
// hands it to the engine's CoMap. The single input must be a serialized
// carrier produced by a Zip processor or ZipAll.
type RunCoTransformer struct {
	Transform rondo.CoTransform
	Ignore    []error
}

// Process runs the co-transform over the carrier input
func (p *RunCoTransformer) Process(pctx *Context, dfs *rondo.DataFrames) (rondo.DataFrame, error) {
	df, err := singleInput(dfs)
	if err != nil {
		return nil, err
	}
	spec, err := contextSpec(pctx)
	if err != nil {
		return nil, err
	}
	runner, err := transformer.CreateCoTransformerRunner(df, p.Transform, spec, pctx.Params, p.Ignore)
	if err != nil {
		return nil, err
	}
	task := &rondo.CoMapTask{
		Fn:           runner.Run,
		OutputSchema: runner.OutputSchema(),
		Spec:         spec,
		Metadata:     df.Metadata(),
		OnInit:       runner.OnInit,
	}
	return pctx.Engine.CoMap(df, task)
}

func contextSpec(pctx *Context) (rondo.PartitionSpec, error) {
	if pctx.Spec != nil {
		return pctx.Spec, nil
	}
	return partition.NewSpec()
}
