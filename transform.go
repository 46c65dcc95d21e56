package rondo

// A TransformContext carries the execution context a user transform may
// read during OnInit and Transform. It is constructed by the runner and
// passed explicitly, so a transform never depends on fields being injected
// after construction.
type TransformContext struct {
	Cursor PartitionCursor
	Spec   PartitionSpec
	Params *Params
}

// A Transform is a user-supplied unit of computation over one dataframe,
// applied once per partition
type Transform interface {
	// OutputSchema declares the schema of this transform's output for the
	// given input. The engine enforces it on every partition's output.
	OutputSchema(df DataFrame) (Schema, error)
	// Transform computes the output for one partition
	Transform(tctx *TransformContext, df LocalDataFrame) (LocalDataFrame, error)
}

// A TransformInitializer is a Transform with a per-partition
// initialization hook, invoked before any row of the partition is processed
type TransformInitializer interface {
	OnInit(tctx *TransformContext, df DataFrame) error
}

// A CoTransform is a user-supplied unit of computation over multiple named
// dataframes, applied once per co-partitioned group
type CoTransform interface {
	// OutputSchema declares the schema of this co-transform's output. The
	// given collection contains empty, schema-correct frames only.
	OutputSchema(dfs *DataFrames) (Schema, error)
	// Transform computes the output for one co-partitioned group
	Transform(tctx *TransformContext, dfs *DataFrames) (LocalDataFrame, error)
}

// A CoTransformInitializer is a CoTransform with a per-partition
// initialization hook
type CoTransformInitializer interface {
	OnInit(tctx *TransformContext, dfs *DataFrames) error
}
