package native

import (
	"testing"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	"github.com/go-rondo/rondo/errors"
	"github.com/go-rondo/rondo/partition"
	rschema "github.com/go-rondo/rondo/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func frame(t *testing.T, schemaExpr string, rows [][]interface{}) rondo.DataFrame {
	df, err := dataframe.CreateArrayDataFrame(rows, rschema.MustParse(schemaExpr))
	require.Nil(t, err)
	return df
}

func localRows(t *testing.T, df rondo.DataFrame) [][]interface{} {
	local, err := dataframe.ToLocalBounded(df)
	require.Nil(t, err)
	return local.Rows()
}

func TestMapSinglePartition(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}, {2}, {3}})
	events := []string{}
	outputSchema := rschema.MustParse("total:int")
	task := &rondo.MapTask{
		Fn: func(cursor rondo.PartitionCursor, local rondo.LocalDataFrame) (rondo.LocalDataFrame, error) {
			events = append(events, "fn")
			require.Equal(t, 0, cursor.PartitionNo())
			require.Equal(t, 0, cursor.SliceNo())
			require.Equal(t, []interface{}{1}, cursor.Row())
			total := 0
			for _, row := range local.Rows() {
				total += row[0].(int)
			}
			result, err := dataframe.CreateArrayDataFrame([][]interface{}{{total}}, outputSchema)
			require.Nil(t, err)
			return result, nil
		},
		OutputSchema: outputSchema,
		OnInit: func(partitionNo int, df rondo.DataFrame) error {
			events = append(events, "init")
			require.Equal(t, 0, partitionNo)
			return nil
		},
	}
	out, err := engine.Map(df, task)
	require.Nil(t, err)
	// on_init completes before any row is processed, and fires exactly once
	require.Equal(t, []string{"init", "fn"}, events)
	require.Equal(t, [][]interface{}{{6}}, localRows(t, out))
}

func TestMapSchemaContractViolation(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}})
	task := &rondo.MapTask{
		Fn: func(cursor rondo.PartitionCursor, local rondo.LocalDataFrame) (rondo.LocalDataFrame, error) {
			return local, nil
		},
		OutputSchema: rschema.MustParse("totally:str,different:str"),
	}
	_, err := engine.Map(df, task)
	require.IsType(t, errors.SchemaContractError{}, err)
}

func TestMapGroupedWithPresort(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "k:int,v:int", [][]interface{}{
		{1, 10},
		{2, 20},
		{1, 30},
		{2, 5},
	})
	spec, err := partition.NewSpec(partition.By("k"), partition.Presort("v desc"))
	require.Nil(t, err)

	outputSchema := rschema.MustParse("k:int,partition:int,first:int")
	task := &rondo.MapTask{
		Fn: func(cursor rondo.PartitionCursor, local rondo.LocalDataFrame) (rondo.LocalDataFrame, error) {
			first := local.Peek()
			return dataframe.CreateArrayDataFrame([][]interface{}{
				{cursor.KeyValueArray()[0], cursor.PartitionNo(), first[1]},
			}, outputSchema)
		},
		OutputSchema: outputSchema,
		Spec:         spec,
	}
	out, err := engine.Map(df, task)
	require.Nil(t, err)
	// groups come in first-occurrence order, numbered from 1; presort puts
	// the largest v first within each group
	require.Equal(t, [][]interface{}{
		{1, 1, 30},
		{2, 2, 20},
	}, localRows(t, out))
}

func TestMapMetadataFrozen(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}})
	metadata := rondo.CreateParams()
	require.Nil(t, metadata.Set("origin", "test"))
	task := &rondo.MapTask{
		Fn: func(cursor rondo.PartitionCursor, local rondo.LocalDataFrame) (rondo.LocalDataFrame, error) {
			return local, nil
		},
		OutputSchema: df.Schema(),
		Metadata:     metadata,
	}
	out, err := engine.Map(df, task)
	require.Nil(t, err)
	require.True(t, out.Metadata().IsFrozen())
	require.Equal(t, "test", out.Metadata().GetString("origin", ""))
	require.IsType(t, errors.FrozenParamsError{}, out.Metadata().Set("origin", "elsewhere"))
	// the caller's own Params instance stays mutable
	require.Nil(t, metadata.Set("origin", "still mine"))
}

func TestJoinAutoDerivedKeys(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	left := frame(t, "k:int,v:int", [][]interface{}{{1, 10}, {2, 20}})
	right := frame(t, "k:int,w:str", [][]interface{}{{2, "two"}, {3, "three"}})

	out, err := engine.Join(left, right, rondo.InnerJoin, nil)
	require.Nil(t, err)
	require.Equal(t, "k:int,v:int,w:str", out.Schema().String())
	require.Equal(t, [][]interface{}{{2, 20, "two"}}, localRows(t, out))
}

func TestJoinOuterModes(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	left := frame(t, "k:int,v:int", [][]interface{}{{1, 10}, {2, 20}})
	right := frame(t, "k:int,w:str", [][]interface{}{{2, "two"}, {3, "three"}})

	out, err := engine.Join(left, right, rondo.LeftOuterJoin, []string{"k"})
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{
		{1, 10, nil},
		{2, 20, "two"},
	}, localRows(t, out))

	out, err = engine.Join(left, right, rondo.RightOuterJoin, []string{"k"})
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{
		{2, 20, "two"},
		{3, nil, "three"},
	}, localRows(t, out))

	out, err = engine.Join(left, right, rondo.FullOuterJoin, []string{"k"})
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{
		{1, 10, nil},
		{2, 20, "two"},
		{3, nil, "three"},
	}, localRows(t, out))
}

func TestJoinCross(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	left := frame(t, "a:int", [][]interface{}{{1}, {2}})
	right := frame(t, "b:str", [][]interface{}{{"x"}})
	out, err := engine.Join(left, right, rondo.CrossJoin, nil)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{1, "x"}, {2, "x"}}, localRows(t, out))

	// cross join over shared column names is a definition error
	_, err = engine.Join(left, frame(t, "a:int", [][]interface{}{{9}}), rondo.CrossJoin, nil)
	require.NotNil(t, err)
}

func TestSetOperations(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df1 := frame(t, "x:int", [][]interface{}{{1}, {2}, {2}, {3}})
	df2 := frame(t, "x:int", [][]interface{}{{2}, {3}, {4}})

	union, err := engine.Union(df1, df2, true)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{1}, {2}, {3}, {4}}, localRows(t, union))

	unionAll, err := engine.Union(df1, df2, false)
	require.Nil(t, err)
	require.Equal(t, 7, len(localRows(t, unionAll)))

	intersect, err := engine.Intersect(df1, df2, true)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{2}, {3}}, localRows(t, intersect))

	subtract, err := engine.Subtract(df1, df2, true)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{1}}, localRows(t, subtract))
}

func TestSetOperationsRejectNonDistinct(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df1 := frame(t, "x:int", [][]interface{}{{1}})
	df2 := frame(t, "x:int", [][]interface{}{{1}})

	_, err := engine.Subtract(df1, df2, false)
	require.IsType(t, errors.UnsupportedOperationError{}, err)

	_, err = engine.Intersect(df1, df2, false)
	require.IsType(t, errors.UnsupportedOperationError{}, err)
}

func TestSetOperationsRejectMismatchedSchemas(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df1 := frame(t, "x:int", [][]interface{}{{1}})
	df2 := frame(t, "y:int", [][]interface{}{{1}})
	_, err := engine.Union(df1, df2, true)
	require.IsType(t, errors.SchemaMismatchError{}, err)

	// column order is part of the schema
	df3 := frame(t, "x:int,y:int", nil)
	df4 := frame(t, "y:int,x:int", nil)
	_, err = engine.Union(df3, df4, true)
	require.IsType(t, errors.SchemaMismatchError{}, err)
}

func TestDistinctPreservesOrder(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int,b:str", [][]interface{}{
		{2, "two"},
		{1, "one"},
		{2, "two"},
		{1, "uno"},
	})
	out, err := engine.Distinct(df)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{
		{2, "two"},
		{1, "one"},
		{1, "uno"},
	}, localRows(t, out))
	require.Equal(t, "a:int,b:str", out.Schema().String())
}

func TestBroadcastAndPersist(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}})
	broadcast, err := engine.Broadcast(df)
	require.Nil(t, err)
	require.True(t, broadcast.IsLocal())

	persisted, err := engine.Persist(df)
	require.Nil(t, err)
	require.True(t, persisted.IsLocal())
}

func TestRepartitionWarnsAndPassesThrough(t *testing.T) {
	engine := CreateEngine(nil)
	defer engine.Stop()

	df := frame(t, "a:int", [][]interface{}{{1}})
	spec, err := partition.NewSpec(partition.Num(16))
	require.Nil(t, err)
	out, err := engine.Repartition(df, spec)
	require.Nil(t, err)
	require.Equal(t, df, out)
}
