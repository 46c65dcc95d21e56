package rondo

import (
	"github.com/go-rondo/rondo/logging"
	"github.com/spf13/afero"
)

// A MapFunc is applied once per partition during a partitioned traversal
type MapFunc func(cursor PartitionCursor, df LocalDataFrame) (LocalDataFrame, error)

// A CoMapFunc is applied once per co-partitioned group of named dataframes
type CoMapFunc func(cursor PartitionCursor, dfs *DataFrames) (LocalDataFrame, error)

// An InitFunc is invoked once per partition, before any row of that
// partition is processed
type InitFunc func(partitionNo int, df DataFrame) error

// A MapTask bundles everything an ExecutionEngine needs to run a
// partitioned map over a DataFrame
type MapTask struct {
	Fn           MapFunc
	OutputSchema Schema
	Spec         PartitionSpec
	Metadata     *Params
	OnInit       InitFunc
}

// A CoMapTask bundles everything an ExecutionEngine needs to run a
// co-partitioned map over a serialized carrier DataFrame
type CoMapTask struct {
	Fn           CoMapFunc
	OutputSchema Schema
	Spec         PartitionSpec
	Metadata     *Params
	OnInit       InitFunc
}

// Carrier metadata keys describing a serialized dataframe produced by
// ExecutionEngine.ZipAll and consumed by CoMap
const (
	// MetaSerialized marks a dataframe as a serialized carrier
	MetaSerialized = "serialized"
	// MetaSerializedCols lists the payload column names, in input order
	MetaSerializedCols = "serialized_cols"
	// MetaSerializedNames lists the input names, in input order
	MetaSerializedNames = "serialized_names"
	// MetaSchemas lists the input schema expressions, in input order
	MetaSchemas = "schemas"
	// MetaSerializedHasName records whether inputs carried explicit names
	MetaSerializedHasName = "serialized_has_name"
)

// A SQLEngine executes a SQL statement against a set of named dataframes.
// Table names are taken verbatim from the collection and replace any
// pre-existing table of the same name in the engine's ephemeral store.
type SQLEngine interface {
	Select(dfs *DataFrames, statement string) (DataFrame, error)
}

// An ExecutionEngine is the context every operator and runner depends on.
// It defines the operations any backend must implement against the
// partition model. Backends may execute partitions in parallel or across a
// cluster, as long as the per-partition semantics are preserved: one cursor
// per partition, OnInit before any row of that partition, and schema
// contract enforcement on every map output.
type ExecutionEngine interface {
	// Log returns the engine's logger
	Log() *logging.Logger
	// FS returns the engine's filesystem handle
	FS() afero.Fs
	// Conf returns the engine's configuration
	Conf() *Params
	// DefaultSQLEngine returns the engine's default SQL sub-engine
	DefaultSQLEngine() SQLEngine
	// Repartition redistributes a DataFrame according to a PartitionSpec.
	// Backends which cannot honor the request must warn and pass through.
	Repartition(df DataFrame, spec PartitionSpec) (DataFrame, error)
	// Map is the central primitive: it materializes partitions according to
	// task.Spec and applies task.Fn once per partition. The output schema
	// of every invocation must structurally equal task.OutputSchema.
	Map(df DataFrame, task *MapTask) (DataFrame, error)
	// CoMap applies task.Fn once per logical partition of a serialized
	// carrier DataFrame produced by ZipAll
	CoMap(df DataFrame, task *CoMapTask) (DataFrame, error)
	// Join joins two DataFrames. If on is empty, the largest common-name
	// column set shared by both schemas is used.
	Join(df1 DataFrame, df2 DataFrame, how JoinType, on []string) (DataFrame, error)
	// Union concatenates two DataFrames with identical schemas
	Union(df1 DataFrame, df2 DataFrame, distinct bool) (DataFrame, error)
	// Subtract returns rows of df1 not present in df2
	Subtract(df1 DataFrame, df2 DataFrame, distinct bool) (DataFrame, error)
	// Intersect returns rows present in both DataFrames
	Intersect(df1 DataFrame, df2 DataFrame, distinct bool) (DataFrame, error)
	// Distinct removes duplicate rows, preserving column order
	Distinct(df DataFrame) (DataFrame, error)
	// Broadcast hints that a DataFrame should be made available to every
	// worker. Backends without a distribution concept realize the data
	// into a concrete local form.
	Broadcast(df DataFrame) (DataFrame, error)
	// Persist hints that a DataFrame should be materialized
	Persist(df DataFrame) (DataFrame, error)
	// ZipAll combines the given dataframes into one serialized carrier
	// DataFrame under the given join mode and partition spec. Payloads
	// larger than toFileThreshold bytes spill to tempPath.
	ZipAll(dfs *DataFrames, how JoinType, spec PartitionSpec, tempPath string, toFileThreshold int64) (DataFrame, error)
	// Load reads a DataFrame from the engine's filesystem
	Load(path string, formatHint string, columns []string) (DataFrame, error)
	// Save writes a DataFrame to the engine's filesystem
	Save(df DataFrame, path string, formatHint string, mode string) error
	// Stop releases any resources held by the engine
	Stop()
}
