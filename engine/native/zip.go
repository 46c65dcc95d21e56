package native

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	"github.com/go-rondo/rondo/errors"
	"github.com/go-rondo/rondo/partition"
	rschema "github.com/go-rondo/rondo/schema"
	"github.com/gofrs/uuid"
	"github.com/pierrec/lz4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// fileRefPrefix marks a payload cell holding a spilled-file reference
// instead of inline bytes
const fileRefPrefix = "rondofile://"

func init() {
	// cell values cross the gob boundary as interfaces
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
	gob.Register([]byte{})
}

// ZipAll combines the given dataframes into one serialized carrier: each
// input is grouped by the co-partition keys, each group's rows are encoded
// into a payload column, and the per-input frames are folded together with
// the requested join mode. Payloads larger than toFileThreshold spill to
// lz4-compressed files under tempPath.
func (e *Engine) ZipAll(dfs *rondo.DataFrames, how rondo.JoinType, spec rondo.PartitionSpec, tempPath string, toFileThreshold int64) (rondo.DataFrame, error) {
	if dfs.Len() == 0 {
		return nil, errors.EmptyInputError{}
	}
	locals := make([]rondo.LocalDataFrame, 0, dfs.Len())
	err := dfs.ForEach(func(name string, df rondo.DataFrame) error {
		local, err := dataframe.ToLocalBounded(df)
		if err != nil {
			return err
		}
		locals = append(locals, local)
		return nil
	})
	if err != nil {
		return nil, err
	}
	keys, err := zipKeys(locals, how, spec)
	if err != nil {
		return nil, err
	}
	var presort []rondo.SortColumn
	if spec != nil {
		presort = spec.Presort()
	}
	serialized := make([]rondo.LocalDataFrame, len(locals))
	var group errgroup.Group
	for i := range locals {
		i := i
		group.Go(func() error {
			frame, err := serializeInput(e.fs, locals[i], i, keys, presort, tempPath, toFileThreshold)
			if err != nil {
				return err
			}
			serialized[i] = frame
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	carrier := rondo.DataFrame(serialized[0])
	for i := 1; i < len(serialized); i++ {
		carrier, err = e.Join(carrier, serialized[i], how, keys)
		if err != nil {
			return nil, err
		}
	}
	local, err := dataframe.ToLocalBounded(carrier)
	if err != nil {
		return nil, err
	}
	metadata, err := carrierMetadata(dfs)
	if err != nil {
		return nil, err
	}
	return dataframe.CreateArrayDataFrameWithMetadata(local.Rows(), local.Schema(), metadata)
}

// zipKeys resolves the co-partition key columns: the spec's partition-by
// columns when given, otherwise the largest common-name column set across
// all inputs. Cross mode takes no keys.
func zipKeys(locals []rondo.LocalDataFrame, how rondo.JoinType, spec rondo.PartitionSpec) ([]string, error) {
	if how == rondo.CrossJoin {
		return nil, nil
	}
	if spec != nil && len(spec.PartitionBy()) > 0 {
		for _, local := range locals {
			for _, key := range spec.PartitionBy() {
				if !local.Schema().HasColumn(key) {
					return nil, errors.MissingColumnError{Name: key}
				}
			}
		}
		return spec.PartitionBy(), nil
	}
	keys := locals[0].Schema().ColumnNames()
	for _, local := range locals[1:] {
		filtered := []string{}
		for _, name := range keys {
			if local.Schema().HasColumn(name) {
				filtered = append(filtered, name)
			}
		}
		keys = filtered
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no common columns to zip on")
	}
	return keys, nil
}

func serializeInput(fs afero.Fs, local rondo.LocalDataFrame, idx int, keys []string, presort []rondo.SortColumn, tempPath string, toFileThreshold int64) (rondo.LocalDataFrame, error) {
	payloadCol := fmt.Sprintf("_%d", idx)
	names := append(append([]string{}, keys...), payloadCol)
	types := make([]rondo.ColumnType, 0, len(names))
	for _, key := range keys {
		colType, err := local.Schema().TypeOf(key)
		if err != nil {
			return nil, err
		}
		types = append(types, colType)
	}
	types = append(types, &rondo.BytesColumnType{})
	frameSchema, err := rschema.CreateSchema(names, types)
	if err != nil {
		return nil, err
	}
	keyPositions, err := columnPositions(local.Schema(), keys)
	if err != nil {
		return nil, err
	}
	// presort columns absent from this input are ordered by the others
	var sorts []sortPosition
	for _, sc := range presort {
		if pos, ok := local.Schema().IndexOf(sc.Name); ok {
			sorts = append(sorts, sortPosition{pos: pos, ascending: sc.Ascending})
		}
	}
	var groups [][][]interface{}
	if len(keys) == 0 {
		groups = [][][]interface{}{local.Rows()}
	} else {
		groups, err = groupRows(local.Rows(), keyPositions)
		if err != nil {
			return nil, err
		}
	}
	rows := make([][]interface{}, 0, len(groups))
	for _, groupedRows := range groups {
		if len(sorts) > 0 {
			groupedRows = sortRows(groupedRows, sorts)
		}
		blob, err := encodePayload(fs, groupedRows, tempPath, toFileThreshold)
		if err != nil {
			return nil, err
		}
		row := make([]interface{}, 0, len(keys)+1)
		if len(groupedRows) > 0 {
			for _, pos := range keyPositions {
				row = append(row, groupedRows[0][pos])
			}
		} else {
			for range keyPositions {
				row = append(row, nil)
			}
		}
		row = append(row, blob)
		rows = append(rows, row)
	}
	return dataframe.CreateArrayDataFrame(rows, frameSchema)
}

func encodePayload(fs afero.Fs, rows [][]interface{}, tempPath string, toFileThreshold int64) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rows); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	blob := buf.Bytes()
	if toFileThreshold <= 0 || int64(len(blob)) <= toFileThreshold || len(tempPath) == 0 {
		return blob, nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(tempPath, id.String()+".lz4")
	if err := fs.MkdirAll(tempPath, 0755); err != nil {
		return nil, err
	}
	file, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	writer := lz4.NewWriter(file)
	if _, err := writer.Write(blob); err != nil {
		file.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return []byte(fileRefPrefix + path), nil
}

func decodePayload(fs afero.Fs, blob []byte) ([][]interface{}, error) {
	if blob == nil {
		return [][]interface{}{}, nil
	}
	if strings.HasPrefix(string(blob), fileRefPrefix) {
		path := strings.TrimPrefix(string(blob), fileRefPrefix)
		file, err := fs.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		raw, err := io.ReadAll(lz4.NewReader(file))
		if err != nil {
			return nil, err
		}
		blob = raw
	}
	var rows [][]interface{}
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return rows, nil
}

func carrierMetadata(dfs *rondo.DataFrames) (*rondo.Params, error) {
	cols := make([]string, dfs.Len())
	schemas := make([]string, dfs.Len())
	i := 0
	err := dfs.ForEach(func(name string, df rondo.DataFrame) error {
		cols[i] = fmt.Sprintf("_%d", i)
		schemas[i] = df.Schema().String()
		i++
		return nil
	})
	if err != nil {
		return nil, err
	}
	metadata := rondo.CreateParams()
	metadata.Set(rondo.MetaSerialized, true)
	metadata.Set(rondo.MetaSerializedCols, cols)
	metadata.Set(rondo.MetaSerializedNames, dfs.Names())
	metadata.Set(rondo.MetaSchemas, schemas)
	metadata.Set(rondo.MetaSerializedHasName, dfs.HasName())
	return metadata.Freeze(), nil
}

// CoMap applies task.Fn once per logical partition of a serialized carrier.
// Each carrier row holds one co-partitioned group of every input.
func (e *Engine) CoMap(df rondo.DataFrame, task *rondo.CoMapTask) (rondo.DataFrame, error) {
	meta := df.Metadata()
	if meta == nil || !meta.GetBool(rondo.MetaSerialized, false) {
		return nil, errors.NotSerializedError{}
	}
	local, err := dataframe.ToLocalBounded(df)
	if err != nil {
		return nil, err
	}
	payloadCols := meta.GetStringSlice(rondo.MetaSerializedCols, nil)
	inputNames := meta.GetStringSlice(rondo.MetaSerializedNames, nil)
	schemaExprs := meta.GetStringSlice(rondo.MetaSchemas, nil)
	hasName := meta.GetBool(rondo.MetaSerializedHasName, false)
	inputSchemas := make([]rondo.Schema, len(schemaExprs))
	for i, expr := range schemaExprs {
		inputSchemas[i], err = rschema.Parse(expr)
		if err != nil {
			return nil, err
		}
	}
	payloadPositions, err := columnPositions(local.Schema(), payloadCols)
	if err != nil {
		return nil, err
	}
	spec := task.Spec
	if spec == nil || len(spec.PartitionBy()) == 0 {
		// the carrier's key columns are everything but the payloads
		keySchema, err := local.Schema().Remove(payloadCols)
		if err != nil {
			return nil, err
		}
		spec, err = partition.NewSpec(partition.By(keySchema.ColumnNames()...))
		if err != nil {
			return nil, err
		}
	}
	cursor, err := spec.GetCursor(local.Schema(), 0)
	if err != nil {
		return nil, err
	}
	if task.OnInit != nil {
		if err := task.OnInit(0, df); err != nil {
			return nil, err
		}
	}
	outputRows := [][]interface{}{}
	for i, row := range local.Rows() {
		frames := make([]rondo.DataFrame, len(payloadPositions))
		for j, pos := range payloadPositions {
			blob, _ := row[pos].([]byte)
			rows, err := decodePayload(e.fs, blob)
			if err != nil {
				return nil, err
			}
			frame, err := dataframe.CreateArrayDataFrame(rows, inputSchemas[j])
			if err != nil {
				return nil, err
			}
			frames[j] = frame
		}
		var group *rondo.DataFrames
		if hasName {
			group, err = rondo.CreateNamedDataFrames(inputNames, frames)
			if err != nil {
				return nil, err
			}
		} else {
			group = rondo.CreateDataFrames(frames...)
		}
		cursor.Set(row, i+1, 0)
		out, err := task.Fn(cursor, group)
		if err != nil {
			return nil, err
		}
		if schemaErr := out.Schema().Equals(task.OutputSchema); schemaErr != nil {
			return nil, errors.SchemaContractError{Expected: task.OutputSchema.String(), Actual: out.Schema().String()}
		}
		outputRows = append(outputRows, out.Rows()...)
	}
	return dataframe.CreateArrayDataFrameWithMetadata(outputRows, task.OutputSchema, frozenMetadata(task.Metadata))
}
