package schema

import (
	"testing"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
	"github.com/stretchr/testify/require"
)

func TestSchemaParse(t *testing.T) {
	s, err := Parse("a:int, b:str, c:float, d:bool, e:bytes, f:any")
	require.Nil(t, err)
	require.Equal(t, 6, s.NumColumns())
	require.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, s.ColumnNames())
	require.Equal(t, "a:int,b:str,c:float,d:bool,e:bytes,f:any", s.String())
}

func TestSchemaParseAliases(t *testing.T) {
	s, err := Parse("a:long,b:double,c:string,d:boolean,e:binary,f:object")
	require.Nil(t, err)
	require.Equal(t, "a:int,b:float,c:str,d:bool,e:bytes,f:any", s.String())
}

func TestSchemaParseErrors(t *testing.T) {
	_, err := Parse("a:int,b")
	require.NotNil(t, err)

	_, err = Parse("a:spreadsheet")
	require.NotNil(t, err)

	_, err = Parse("a:int,a:str")
	require.IsType(t, errors.DuplicatePartitionColumnError{}, err)
}

func TestSchemaEqualityBasic(t *testing.T) {
	s1 := MustParse("a:int,b:str")
	s2 := MustParse("a:int,b:str")
	require.Nil(t, s1.Equals(s2))
}

func TestSchemaEqualityOrderSensitive(t *testing.T) {
	s1 := MustParse("a:int,b:str")
	s2 := MustParse("b:str,a:int")
	require.NotNil(t, s1.Equals(s2))
}

func TestSchemaEqualityTypeSensitive(t *testing.T) {
	s1 := MustParse("a:int,b:str")
	s2 := MustParse("a:int,b:int")
	require.NotNil(t, s1.Equals(s2))
	require.NotNil(t, s1.Equals(MustParse("a:int")))
	require.NotNil(t, s1.Equals(nil))
}

func TestSchemaLookup(t *testing.T) {
	s := MustParse("a:int,b:str")
	require.True(t, s.HasColumn("b"))
	require.False(t, s.HasColumn("z"))

	i, ok := s.IndexOf("b")
	require.True(t, ok)
	require.Equal(t, 1, i)

	colType, err := s.TypeOf("a")
	require.Nil(t, err)
	require.IsType(t, &rondo.IntColumnType{}, colType)

	_, err = s.TypeOf("z")
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestSchemaSelect(t *testing.T) {
	s := MustParse("a:int,b:str,c:float")
	selected, err := s.Select([]string{"c", "a"})
	require.Nil(t, err)
	require.Equal(t, "c:float,a:int", selected.String())

	_, err = s.Select([]string{"z"})
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestSchemaRename(t *testing.T) {
	s := MustParse("a:int,b:str")
	renamed, err := s.Rename(map[string]string{"a": "x"})
	require.Nil(t, err)
	require.Equal(t, "x:int,b:str", renamed.String())
	// source schema untouched
	require.Equal(t, "a:int,b:str", s.String())

	_, err = s.Rename(map[string]string{"z": "y"})
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestSchemaRemove(t *testing.T) {
	s := MustParse("a:int,b:str,c:float")
	removed, err := s.Remove([]string{"b"})
	require.Nil(t, err)
	require.Equal(t, "a:int,c:float", removed.String())

	_, err = s.Remove([]string{"z"})
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestSchemaIntersect(t *testing.T) {
	s1 := MustParse("a:int,b:str,c:float")
	s2 := MustParse("c:float,x:int,a:int")
	require.Equal(t, []string{"a", "c"}, s1.Intersect(s2))
	require.Equal(t, []string{"c", "a"}, s2.Intersect(s1))
	require.Empty(t, s1.Intersect(MustParse("z:int")))
}

func TestSchemaClone(t *testing.T) {
	s := MustParse("a:int,b:str")
	clone := s.Clone()
	require.Nil(t, s.Equals(clone))
}
