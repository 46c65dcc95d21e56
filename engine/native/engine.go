// Package native provides the reference ExecutionEngine: a single-process,
// synchronous backend which applies transforms one partition at a time. It
// prioritizes correctness of output over physical partitioning hints, and
// acts as the default test oracle for other backends.
package native

import (
	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	"github.com/go-rondo/rondo/errors"
	"github.com/go-rondo/rondo/fileio"
	"github.com/go-rondo/rondo/logging"
	"github.com/go-rondo/rondo/partition"
	"github.com/spf13/afero"
)

// Engine is the reference single-process ExecutionEngine
type Engine struct {
	conf      *rondo.Params
	fs        afero.Fs
	log       *logging.Logger
	sqlEngine rondo.SQLEngine
}

// CreateEngine builds an Engine over the OS filesystem with a default
// stderr logger
func CreateEngine(conf *rondo.Params) *Engine {
	return CreateEngineWithFS(conf, afero.NewOsFs(), logging.CreateDefaultLogger())
}

// CreateEngineWithFS builds an Engine over a caller-supplied filesystem
// and logger, useful for tests running against an in-memory filesystem
func CreateEngineWithFS(conf *rondo.Params, fs afero.Fs, log *logging.Logger) *Engine {
	if conf == nil {
		conf = rondo.CreateParams()
	}
	e := &Engine{conf: conf, fs: fs, log: log}
	e.sqlEngine = CreateSQLiteEngine(e)
	return e
}

// Log returns the engine's logger
func (e *Engine) Log() *logging.Logger {
	return e.log
}

// FS returns the engine's filesystem handle
func (e *Engine) FS() afero.Fs {
	return e.fs
}

// Conf returns the engine's configuration
func (e *Engine) Conf() *rondo.Params {
	return e.conf
}

// DefaultSQLEngine returns the engine's SQLite sub-engine
func (e *Engine) DefaultSQLEngine() rondo.SQLEngine {
	return e.sqlEngine
}

// Stop releases engine resources. The reference engine holds none.
func (e *Engine) Stop() {}

// Repartition is a physical optimization this engine cannot honor: it
// warns and passes the data through unchanged.
func (e *Engine) Repartition(df rondo.DataFrame, spec rondo.PartitionSpec) (rondo.DataFrame, error) {
	e.log.Warnf("native engine doesn't respect repartition")
	return df, nil
}

// Map materializes partitions according to task.Spec and applies task.Fn
// once per partition. OnInit, if given, completes before any row is
// processed. Every output must structurally equal task.OutputSchema.
func (e *Engine) Map(df rondo.DataFrame, task *rondo.MapTask) (rondo.DataFrame, error) {
	spec := task.Spec
	if spec == nil {
		empty, err := partition.NewSpec()
		if err != nil {
			return nil, err
		}
		spec = empty
	}
	if spec.NumPartitionsExpr() != "0" {
		e.log.Warnf("native engine doesn't respect num_partitions %s", spec.NumPartitionsExpr())
	}
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	cursor, err := spec.GetCursor(df.Schema(), 0)
	if err != nil {
		return nil, err
	}
	if task.OnInit != nil {
		if err := task.OnInit(0, df); err != nil {
			return nil, err
		}
	}
	metadata := frozenMetadata(task.Metadata)
	if len(spec.PartitionBy()) == 0 {
		if peeked := local.Peek(); peeked != nil {
			cursor.Set(peeked, 0, 0)
		}
		out, err := task.Fn(cursor, local)
		if err != nil {
			return nil, err
		}
		if schemaErr := out.Schema().Equals(task.OutputSchema); schemaErr != nil {
			return nil, errors.SchemaContractError{Expected: task.OutputSchema.String(), Actual: out.Schema().String()}
		}
		return dataframe.CreateArrayDataFrameWithMetadata(out.Rows(), out.Schema(), metadata)
	}
	return e.mapGrouped(local, cursor, spec, task, metadata)
}

func (e *Engine) mapGrouped(local rondo.LocalDataFrame, cursor rondo.PartitionCursor, spec rondo.PartitionSpec, task *rondo.MapTask, metadata *rondo.Params) (rondo.DataFrame, error) {
	rowSchema := local.Schema()
	keyPositions, err := columnPositions(rowSchema, spec.PartitionBy())
	if err != nil {
		return nil, err
	}
	groups, err := groupRows(local.Rows(), keyPositions)
	if err != nil {
		return nil, err
	}
	presortPositions, err := sortPositions(rowSchema, spec.Presort())
	if err != nil {
		return nil, err
	}
	outputRows := [][]interface{}{}
	partitionNo := cursor.PartitionNo()
	for _, group := range groups {
		rows := group
		if len(presortPositions) > 0 {
			rows = sortRows(rows, presortPositions)
		}
		groupFrame, err := dataframe.CreateArrayDataFrame(rows, rowSchema)
		if err != nil {
			return nil, err
		}
		partitionNo++
		cursor.Set(rows[0], partitionNo, 0)
		out, err := task.Fn(cursor, groupFrame)
		if err != nil {
			return nil, err
		}
		if schemaErr := out.Schema().Equals(task.OutputSchema); schemaErr != nil {
			return nil, errors.SchemaContractError{Expected: task.OutputSchema.String(), Actual: out.Schema().String()}
		}
		outputRows = append(outputRows, out.Rows()...)
	}
	return dataframe.CreateArrayDataFrameWithMetadata(outputRows, task.OutputSchema, metadata)
}

// Join joins two DataFrames with a hash join. Keys are auto-derived from
// common column names when on is empty.
func (e *Engine) Join(df1 rondo.DataFrame, df2 rondo.DataFrame, how rondo.JoinType, on []string) (rondo.DataFrame, error) {
	keySchema, outputSchema, err := dataframe.GetJoinSchemas(df1, df2, how, on)
	if err != nil {
		return nil, err
	}
	left, err := dataframe.ToLocalBounded(df1)
	if err != nil {
		return nil, err
	}
	right, err := dataframe.ToLocalBounded(df2)
	if err != nil {
		return nil, err
	}
	rows, err := joinRows(left, right, how, keySchema, outputSchema)
	if err != nil {
		return nil, err
	}
	return dataframe.CreateArrayDataFrame(rows, outputSchema)
}

// Union concatenates two DataFrames with identical schemas, optionally
// removing duplicate rows
func (e *Engine) Union(df1 rondo.DataFrame, df2 rondo.DataFrame, distinct bool) (rondo.DataFrame, error) {
	left, right, err := alignedInputs(df1, df2)
	if err != nil {
		return nil, err
	}
	rows := append(append([][]interface{}{}, left.Rows()...), right.Rows()...)
	if distinct {
		rows = distinctRows(rows)
	}
	return dataframe.CreateArrayDataFrame(rows, df1.Schema())
}

// Subtract returns the distinct rows of df1 not present in df2. EXCEPT ALL
// is not supported by this engine and fails explicitly.
func (e *Engine) Subtract(df1 rondo.DataFrame, df2 rondo.DataFrame, distinct bool) (rondo.DataFrame, error) {
	if !distinct {
		return nil, errors.UnsupportedOperationError{Op: "EXCEPT ALL"}
	}
	left, right, err := alignedInputs(df1, df2)
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]bool, right.Count())
	for _, row := range right.Rows() {
		exclude[encodeRow(row)] = true
	}
	rows := [][]interface{}{}
	seen := make(map[string]bool, left.Count())
	for _, row := range left.Rows() {
		key := encodeRow(row)
		if !exclude[key] && !seen[key] {
			seen[key] = true
			rows = append(rows, row)
		}
	}
	return dataframe.CreateArrayDataFrame(rows, df1.Schema())
}

// Intersect returns the distinct rows present in both DataFrames.
// INTERSECT ALL is not supported by this engine and fails explicitly.
func (e *Engine) Intersect(df1 rondo.DataFrame, df2 rondo.DataFrame, distinct bool) (rondo.DataFrame, error) {
	if !distinct {
		return nil, errors.UnsupportedOperationError{Op: "INTERSECT ALL"}
	}
	left, right, err := alignedInputs(df1, df2)
	if err != nil {
		return nil, err
	}
	include := make(map[string]bool, right.Count())
	for _, row := range right.Rows() {
		include[encodeRow(row)] = true
	}
	rows := [][]interface{}{}
	seen := make(map[string]bool, left.Count())
	for _, row := range left.Rows() {
		key := encodeRow(row)
		if include[key] && !seen[key] {
			seen[key] = true
			rows = append(rows, row)
		}
	}
	return dataframe.CreateArrayDataFrame(rows, df1.Schema())
}

// Distinct removes duplicate rows, preserving first-occurrence order and
// the original column order
func (e *Engine) Distinct(df rondo.DataFrame) (rondo.DataFrame, error) {
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	return dataframe.CreateArrayDataFrame(distinctRows(local.Rows()), df.Schema())
}

// Broadcast is a distribution hint with no meaning for a single-process
// engine; it realizes the data into a concrete local form
func (e *Engine) Broadcast(df rondo.DataFrame) (rondo.DataFrame, error) {
	return dataframe.ToLocalBounded(df)
}

// Persist is a materialization hint with no meaning for a single-process
// engine; it realizes the data into a concrete local form
func (e *Engine) Persist(df rondo.DataFrame) (rondo.DataFrame, error) {
	return dataframe.ToLocalBounded(df)
}

// Load reads a DataFrame from the engine's filesystem
func (e *Engine) Load(path string, formatHint string, columns []string) (rondo.DataFrame, error) {
	return fileio.Load(e.fs, path, formatHint, columns)
}

// Save writes a DataFrame to the engine's filesystem
func (e *Engine) Save(df rondo.DataFrame, path string, formatHint string, mode string) error {
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return err
	}
	return fileio.Save(e.fs, local, path, formatHint, mode)
}

func alignedInputs(df1 rondo.DataFrame, df2 rondo.DataFrame) (rondo.LocalDataFrame, rondo.LocalDataFrame, error) {
	if err := df1.Schema().Equals(df2.Schema()); err != nil {
		return nil, nil, errors.SchemaMismatchError{Expected: df1.Schema().String(), Actual: df2.Schema().String()}
	}
	left, err := dataframe.ToLocalBounded(df1)
	if err != nil {
		return nil, nil, err
	}
	right, err := dataframe.ToLocalBounded(df2)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func frozenMetadata(metadata *rondo.Params) *rondo.Params {
	if metadata == nil {
		return rondo.CreateParams().Freeze()
	}
	return metadata.Clone().Freeze()
}

func distinctRows(rows [][]interface{}) [][]interface{} {
	result := [][]interface{}{}
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := encodeRow(row)
		if !seen[key] {
			seen[key] = true
			result = append(result, row)
		}
	}
	return result
}
