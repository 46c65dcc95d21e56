package native

import (
	"strings"
	"testing"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	"github.com/go-rondo/rondo/errors"
	"github.com/go-rondo/rondo/logging"
	"github.com/go-rondo/rondo/partition"
	rschema "github.com/go-rondo/rondo/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func zipInputs(t *testing.T) *rondo.DataFrames {
	sales := frame(t, "k:int,v:int", [][]interface{}{
		{1, 10},
		{2, 20},
		{1, 30},
	})
	labels := frame(t, "k:int,w:str", [][]interface{}{
		{1, "one"},
		{2, "two"},
	})
	dfs, err := rondo.CreateNamedDataFrames([]string{"sales", "labels"}, []rondo.DataFrame{sales, labels})
	require.Nil(t, err)
	return dfs
}

func TestZipAllProducesCarrier(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	carrier, err := engine.ZipAll(zipInputs(t), rondo.InnerJoin, nil, "", 0)
	require.Nil(t, err)
	require.Equal(t, "k:int,_0:bytes,_1:bytes", carrier.Schema().String())

	meta := carrier.Metadata()
	require.True(t, meta.IsFrozen())
	require.True(t, meta.GetBool(rondo.MetaSerialized, false))
	require.Equal(t, []string{"_0", "_1"}, meta.GetStringSlice(rondo.MetaSerializedCols, nil))
	require.Equal(t, []string{"sales", "labels"}, meta.GetStringSlice(rondo.MetaSerializedNames, nil))
	require.Equal(t, []string{"k:int,v:int", "k:int,w:str"}, meta.GetStringSlice(rondo.MetaSchemas, nil))
	require.True(t, meta.GetBool(rondo.MetaSerializedHasName, false))

	require.Equal(t, 2, len(localRows(t, carrier)))
}

func TestZipComapRoundTrip(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	carrier, err := engine.ZipAll(zipInputs(t), rondo.InnerJoin, nil, "", 0)
	require.Nil(t, err)

	outputSchema := rschema.MustParse("k:int,sales:int,label:str")
	initCalls := 0
	task := &rondo.CoMapTask{
		Fn: func(cursor rondo.PartitionCursor, dfs *rondo.DataFrames) (rondo.LocalDataFrame, error) {
			require.Equal(t, []string{"sales", "labels"}, dfs.Names())
			salesDF, ok := dfs.Get("sales")
			require.True(t, ok)
			labelsDF, ok := dfs.Get("labels")
			require.True(t, ok)
			sales, err := dataframe.ToLocalBounded(salesDF)
			require.Nil(t, err)
			labels, err := dataframe.ToLocalBounded(labelsDF)
			require.Nil(t, err)
			total := 0
			for _, row := range sales.Rows() {
				total += row[1].(int)
			}
			label := labels.Peek()[1]
			return dataframe.CreateArrayDataFrame([][]interface{}{
				{cursor.KeyValueArray()[0], total, label},
			}, outputSchema)
		},
		OutputSchema: outputSchema,
		OnInit: func(partitionNo int, df rondo.DataFrame) error {
			initCalls++
			return nil
		},
	}
	out, err := engine.CoMap(carrier, task)
	require.Nil(t, err)
	require.Equal(t, 1, initCalls)
	require.Equal(t, [][]interface{}{
		{1, 40, "one"},
		{2, 20, "two"},
	}, localRows(t, out))
}

func TestZipPayloadSpillsToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	engine := CreateEngineWithFS(nil, fs, logging.CreateDefaultLogger())
	defer engine.Stop()

	carrier, err := engine.ZipAll(zipInputs(t), rondo.InnerJoin, nil, "/tmp/rondo-zip", 1)
	require.Nil(t, err)

	// every payload exceeds the 1-byte threshold, so each cell holds a file
	// reference instead of inline bytes
	for _, row := range localRows(t, carrier) {
		for _, cell := range row[1:] {
			blob, ok := cell.([]byte)
			require.True(t, ok)
			require.True(t, strings.HasPrefix(string(blob), fileRefPrefix))
		}
	}
	files, err := afero.ReadDir(fs, "/tmp/rondo-zip")
	require.Nil(t, err)
	require.NotEmpty(t, files)

	// decoding reads the spilled files back through the same fs
	outputSchema := rschema.MustParse("k:int,n:int")
	task := &rondo.CoMapTask{
		Fn: func(cursor rondo.PartitionCursor, dfs *rondo.DataFrames) (rondo.LocalDataFrame, error) {
			sales, err := dataframe.ToLocalBounded(dfs.First())
			if err != nil {
				return nil, err
			}
			return dataframe.CreateArrayDataFrame([][]interface{}{
				{cursor.KeyValueArray()[0], sales.Count()},
			}, outputSchema)
		},
		OutputSchema: outputSchema,
	}
	out, err := engine.CoMap(carrier, task)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{
		{1, 2},
		{2, 1},
	}, localRows(t, out))
}

func TestZipWithExplicitSpecAndPresort(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	spec, err := partition.NewSpec(partition.By("k"), partition.Presort("v desc"))
	require.Nil(t, err)
	carrier, err := engine.ZipAll(zipInputs(t), rondo.InnerJoin, spec, "", 0)
	require.Nil(t, err)

	outputSchema := rschema.MustParse("k:int,first:int")
	task := &rondo.CoMapTask{
		Fn: func(cursor rondo.PartitionCursor, dfs *rondo.DataFrames) (rondo.LocalDataFrame, error) {
			sales, err := dataframe.ToLocalBounded(dfs.First())
			if err != nil {
				return nil, err
			}
			return dataframe.CreateArrayDataFrame([][]interface{}{
				{cursor.KeyValueArray()[0], sales.Peek()[1]},
			}, outputSchema)
		},
		OutputSchema: outputSchema,
	}
	out, err := engine.CoMap(carrier, task)
	require.Nil(t, err)
	// presort v desc puts 30 first in the k=1 group
	require.Equal(t, [][]interface{}{
		{1, 30},
		{2, 20},
	}, localRows(t, out))
}

func TestZipRejectsMissingExplicitKey(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	spec, err := partition.NewSpec(partition.By("zz"))
	require.Nil(t, err)
	_, err = engine.ZipAll(zipInputs(t), rondo.InnerJoin, spec, "", 0)
	require.NotNil(t, err)
}

func TestZipRejectsDisjointInputs(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	dfs := rondo.CreateDataFrames(
		frame(t, "a:int", [][]interface{}{{1}}),
		frame(t, "b:int", [][]interface{}{{2}}),
	)
	_, err := engine.ZipAll(dfs, rondo.InnerJoin, nil, "", 0)
	require.NotNil(t, err)
}

func TestZipEmptyInput(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	_, err := engine.ZipAll(rondo.CreateDataFrames(), rondo.InnerJoin, nil, "", 0)
	require.IsType(t, errors.EmptyInputError{}, err)
}

func TestCoMapRejectsPlainFrame(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}})
	task := &rondo.CoMapTask{
		Fn: func(cursor rondo.PartitionCursor, dfs *rondo.DataFrames) (rondo.LocalDataFrame, error) {
			return nil, nil
		},
		OutputSchema: rschema.MustParse("a:int"),
	}
	_, err := engine.CoMap(df, task)
	require.IsType(t, errors.NotSerializedError{}, err)
}
