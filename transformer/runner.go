// Package transformer wraps user transforms so they can be handed to an
// ExecutionEngine's Map/CoMap as plain partition functions, adding schema
// capture, cursor initialization and the error-tolerance policy.
package transformer

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	"github.com/go-rondo/rondo/errors"
	"github.com/go-rondo/rondo/partition"
	rschema "github.com/go-rondo/rondo/schema"
)

// TransformerRunner adapts a Transform into a MapFunc. It captures the
// parent dataset's schema and metadata at construction, so every
// sub-partition handed to the user function carries correct provenance
// metadata.
type TransformerRunner struct {
	schema       rondo.Schema
	metadata     *rondo.Params
	transform    rondo.Transform
	spec         rondo.PartitionSpec
	params       *rondo.Params
	outputSchema rondo.Schema
	ignore       []error
}

// CreateTransformerRunner builds a runner for one traversal of df. ignore
// lists the error categories to tolerate: a matching transform failure
// degrades to an empty result of the declared output schema; an empty list
// means every failure propagates.
func CreateTransformerRunner(df rondo.DataFrame, transform rondo.Transform, spec rondo.PartitionSpec, params *rondo.Params, ignore []error) (*TransformerRunner, error) {
	outputSchema, err := transform.OutputSchema(df)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = rondo.CreateParams()
	}
	return &TransformerRunner{
		schema:       df.Schema(),
		metadata:     df.Metadata(),
		transform:    transform,
		spec:         spec,
		params:       params,
		outputSchema: outputSchema,
		ignore:       ignore,
	}, nil
}

// OutputSchema returns the declared output schema of the wrapped transform
func (r *TransformerRunner) OutputSchema() rondo.Schema {
	return r.outputSchema
}

// OnInit rebuilds a fresh cursor for the given partition from the captured
// schema, then invokes the transform's own initialization hook, if any
func (r *TransformerRunner) OnInit(partitionNo int, df rondo.DataFrame) error {
	cursor, err := r.spec.GetCursor(r.schema, partitionNo)
	if err != nil {
		return err
	}
	init, ok := r.transform.(rondo.TransformInitializer)
	if !ok {
		return nil
	}
	tctx := &rondo.TransformContext{Cursor: cursor, Spec: r.spec, Params: r.params}
	return init.OnInit(tctx, dataframe.WithMetadata(df, r.metadata))
}

// Run binds the cursor onto the transform call, propagates the
// dataset-level metadata onto the partition view, and applies the
// error-tolerance policy to the outcome
func (r *TransformerRunner) Run(cursor rondo.PartitionCursor, df rondo.LocalDataFrame) (rondo.LocalDataFrame, error) {
	tctx := &rondo.TransformContext{Cursor: cursor, Spec: r.spec, Params: r.params}
	view := dataframe.WithMetadata(df, r.metadata).(rondo.LocalDataFrame)
	out, err := r.safeTransform(tctx, view)
	if err != nil {
		if tolerated(err, r.ignore) {
			return dataframe.CreateArrayDataFrame(nil, r.outputSchema)
		}
		return nil, err
	}
	return out, nil
}

// safeTransform recovers panics inside the user transform into errors so
// the tolerance policy can classify them
func (r *TransformerRunner) safeTransform(tctx *rondo.TransformContext, df rondo.LocalDataFrame) (out rondo.LocalDataFrame, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if anErr, ok := rec.(error); ok {
				err = fmt.Errorf("Transform Panic: %w\n%s", anErr, debug.Stack())
			} else {
				err = fmt.Errorf("Transform Panic: %v\n%s", rec, debug.Stack())
			}
		}
	}()
	out, err = r.transform.Transform(tctx, df)
	return
}

// tolerated reports whether err matches one of the declared tolerated
// error categories. Schema contract violations are checked by the engine
// after the runner returns, so they can never be suppressed here.
func tolerated(err error, ignore []error) bool {
	for _, category := range ignore {
		if stderrors.Is(err, category) {
			return true
		}
	}
	return false
}

// CoTransformerRunner adapts a CoTransform over a serialized carrier
// dataframe into a CoMapFunc
type CoTransformerRunner struct {
	schema       rondo.Schema
	metadata     *rondo.Params
	transform    rondo.CoTransform
	spec         rondo.PartitionSpec
	params       *rondo.Params
	keySchema    rondo.Schema
	outputSchema rondo.Schema
	ignore       []error
}

// CreateCoTransformerRunner builds a runner for one traversal of a
// serialized carrier df. Passing a non-serialized input is a usage error,
// raised here before any row is processed. The per-input key schema is
// derived by subtracting the serialized payload columns from the carrier
// schema.
func CreateCoTransformerRunner(df rondo.DataFrame, transform rondo.CoTransform, spec rondo.PartitionSpec, params *rondo.Params, ignore []error) (*CoTransformerRunner, error) {
	meta := df.Metadata()
	if meta == nil || !meta.GetBool(rondo.MetaSerialized, false) {
		return nil, errors.NotSerializedError{}
	}
	payloadCols := meta.GetStringSlice(rondo.MetaSerializedCols, nil)
	keySchema, err := df.Schema().Remove(payloadCols)
	if err != nil {
		return nil, err
	}
	emptyGroup, err := emptyInputFrames(meta)
	if err != nil {
		return nil, err
	}
	outputSchema, err := transform.OutputSchema(emptyGroup)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = rondo.CreateParams()
	}
	return &CoTransformerRunner{
		schema:       df.Schema(),
		metadata:     meta,
		transform:    transform,
		spec:         spec,
		params:       params,
		keySchema:    keySchema,
		outputSchema: outputSchema,
		ignore:       ignore,
	}, nil
}

// emptyInputFrames reconstructs empty, schema-correct frames for every
// zipped input, used to resolve the co-transform's output schema before
// any payload is decoded
func emptyInputFrames(meta *rondo.Params) (*rondo.DataFrames, error) {
	schemaExprs := meta.GetStringSlice(rondo.MetaSchemas, nil)
	frames := make([]rondo.DataFrame, len(schemaExprs))
	for i, expr := range schemaExprs {
		inputSchema, err := rschema.Parse(expr)
		if err != nil {
			return nil, err
		}
		frame, err := dataframe.CreateArrayDataFrame(nil, inputSchema)
		if err != nil {
			return nil, err
		}
		frames[i] = frame
	}
	if meta.GetBool(rondo.MetaSerializedHasName, false) {
		return rondo.CreateNamedDataFrames(meta.GetStringSlice(rondo.MetaSerializedNames, nil), frames)
	}
	return rondo.CreateDataFrames(frames...), nil
}

// OutputSchema returns the declared output schema of the wrapped co-transform
func (r *CoTransformerRunner) OutputSchema() rondo.Schema {
	return r.outputSchema
}

// KeySchema returns the carrier's key schema
func (r *CoTransformerRunner) KeySchema() rondo.Schema {
	return r.keySchema
}

// OnInit rebuilds a fresh cursor for the given partition, then invokes the
// co-transform's own initialization hook with empty, schema-correct frames
func (r *CoTransformerRunner) OnInit(partitionNo int, df rondo.DataFrame) error {
	cursor, err := cursorForCarrier(r.spec, r.schema, r.keySchema, partitionNo)
	if err != nil {
		return err
	}
	init, ok := r.transform.(rondo.CoTransformInitializer)
	if !ok {
		return nil
	}
	emptyGroup, err := emptyInputFrames(r.metadata)
	if err != nil {
		return err
	}
	tctx := &rondo.TransformContext{Cursor: cursor, Spec: r.spec, Params: r.params}
	return init.OnInit(tctx, emptyGroup)
}

// Run binds the cursor onto the co-transform call and applies the
// error-tolerance policy to the outcome
func (r *CoTransformerRunner) Run(cursor rondo.PartitionCursor, dfs *rondo.DataFrames) (rondo.LocalDataFrame, error) {
	tctx := &rondo.TransformContext{Cursor: cursor, Spec: r.spec, Params: r.params}
	out, err := r.safeTransform(tctx, dfs)
	if err != nil {
		if tolerated(err, r.ignore) {
			return dataframe.CreateArrayDataFrame(nil, r.outputSchema)
		}
		return nil, err
	}
	return out, nil
}

func (r *CoTransformerRunner) safeTransform(tctx *rondo.TransformContext, dfs *rondo.DataFrames) (out rondo.LocalDataFrame, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if anErr, ok := rec.(error); ok {
				err = fmt.Errorf("CoTransform Panic: %w\n%s", anErr, debug.Stack())
			} else {
				err = fmt.Errorf("CoTransform Panic: %v\n%s", rec, debug.Stack())
			}
		}
	}()
	out, err = r.transform.Transform(tctx, dfs)
	return
}

func cursorForCarrier(spec rondo.PartitionSpec, carrierSchema rondo.Schema, keySchema rondo.Schema, physicalPartitionNo int) (rondo.PartitionCursor, error) {
	if spec != nil && len(spec.PartitionBy()) > 0 {
		return spec.GetCursor(carrierSchema, physicalPartitionNo)
	}
	derived, err := partition.NewSpec(partition.By(keySchema.ColumnNames()...))
	if err != nil {
		return nil, err
	}
	return derived.GetCursor(carrierSchema, physicalPartitionNo)
}
