package rondo

import (
	"testing"

	"github.com/go-rondo/rondo/errors"
	"github.com/stretchr/testify/require"
)

func TestParamsGetters(t *testing.T) {
	params := ParamsFrom(map[string]interface{}{
		"name":    "rondo",
		"count":   3,
		"big":     int64(1 << 40),
		"enabled": true,
		"cols":    []string{"a", "b"},
	})
	require.Equal(t, 5, params.Len())
	require.Equal(t, "rondo", params.GetString("name", ""))
	require.Equal(t, 3, params.GetInt("count", 0))
	require.Equal(t, int64(1<<40), params.GetInt64("big", 0))
	require.True(t, params.GetBool("enabled", false))
	require.Equal(t, []string{"a", "b"}, params.GetStringSlice("cols", nil))

	require.Equal(t, "dflt", params.GetString("missing", "dflt"))
	require.Equal(t, 7, params.GetInt("missing", 7))

	// numeric strings coerce
	require.Nil(t, params.Set("textual", "42"))
	require.Equal(t, 42, params.GetInt("textual", 0))
}

func TestParamsFreeze(t *testing.T) {
	params := CreateParams()
	require.Nil(t, params.Set("a", 1))
	require.False(t, params.IsFrozen())

	params.Freeze()
	require.True(t, params.IsFrozen())
	err := params.Set("b", 2)
	require.IsType(t, errors.FrozenParamsError{}, err)
	require.Equal(t, 1, params.GetInt("a", 0))
}

func TestParamsCloneIsMutable(t *testing.T) {
	params := CreateParams()
	require.Nil(t, params.Set("a", 1))
	params.Freeze()

	clone := params.Clone()
	require.False(t, clone.IsFrozen())
	require.Nil(t, clone.Set("a", 2))
	require.Equal(t, 2, clone.GetInt("a", 0))
	require.Equal(t, 1, params.GetInt("a", 0))
}

func TestDataFramesOrdering(t *testing.T) {
	dfs := CreateDataFrames(nil, nil, nil)
	require.Equal(t, 3, dfs.Len())
	require.False(t, dfs.HasName())
	require.Equal(t, []string{"_0", "_1", "_2"}, dfs.Names())
}

func TestNamedDataFrames(t *testing.T) {
	dfs, err := CreateNamedDataFrames([]string{"left", "right"}, []DataFrame{nil, nil})
	require.Nil(t, err)
	require.True(t, dfs.HasName())
	require.Equal(t, []string{"left", "right"}, dfs.Names())

	_, err = CreateNamedDataFrames([]string{"a"}, []DataFrame{nil, nil})
	require.NotNil(t, err)

	_, err = CreateNamedDataFrames([]string{"a", "a"}, []DataFrame{nil, nil})
	require.NotNil(t, err)
}

func TestParseJoinType(t *testing.T) {
	for expr, expected := range map[string]JoinType{
		"inner":       InnerJoin,
		"left_outer":  LeftOuterJoin,
		"right_outer": RightOuterJoin,
		"full_outer":  FullOuterJoin,
		"cross":       CrossJoin,
	} {
		how, err := ParseJoinType(expr)
		require.Nil(t, err)
		require.Equal(t, expected, how)
	}
	_, err := ParseJoinType("diagonal")
	require.NotNil(t, err)
}
