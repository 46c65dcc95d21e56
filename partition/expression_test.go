package partition

import (
	"testing"

	"github.com/go-rondo/rondo/errors"
	"github.com/stretchr/testify/require"
)

func resolvers(values map[string]int) map[string]func() int {
	result := make(map[string]func() int, len(values))
	for keyword, value := range values {
		value := value
		result[keyword] = func() int { return value }
	}
	return result
}

func TestExpressionArithmetic(t *testing.T) {
	spec, err := NewSpec(Num("(x + Y) * 2"))
	require.Nil(t, err)
	n, err := spec.GetNumPartitions(resolvers(map[string]int{"x": 1, "Y": 2}))
	require.Nil(t, err)
	require.Equal(t, 6, n)
}

func TestExpressionMissingResolver(t *testing.T) {
	spec, err := NewSpec(Num("(x + Y) * 2"))
	require.Nil(t, err)
	_, err = spec.GetNumPartitions(resolvers(map[string]int{"x": 1}))
	require.IsType(t, errors.KeywordResolutionError{}, err)
}

func TestExpressionMinMax(t *testing.T) {
	spec, err := NewSpec(Num("min(ROWCOUNT,CORECOUNT)"))
	require.Nil(t, err)
	n, err := spec.GetNumPartitions(resolvers(map[string]int{
		KeywordRowCount:  100,
		KeywordCoreCount: 90,
	}))
	require.Nil(t, err)
	require.Equal(t, 90, n)

	value, err := evalExpression("max(2, 8/2, 3)", nil)
	require.Nil(t, err)
	require.Equal(t, float64(4), value)
}

func TestExpressionTruncation(t *testing.T) {
	spec, err := NewSpec(Num("ROWCOUNT/2"))
	require.Nil(t, err)
	n, err := spec.GetNumPartitions(resolvers(map[string]int{KeywordRowCount: 7}))
	require.Nil(t, err)
	require.Equal(t, 3, n)
}

func TestExpressionClampedNonNegative(t *testing.T) {
	spec, err := NewSpec(Num("2 - ROWCOUNT"))
	require.Nil(t, err)
	n, err := spec.GetNumPartitions(resolvers(map[string]int{KeywordRowCount: 10}))
	require.Nil(t, err)
	require.Equal(t, 0, n)
}

func TestExpressionSyntaxErrors(t *testing.T) {
	_, err := evalExpression("2 +", nil)
	require.IsType(t, errors.ExpressionSyntaxError{}, err)

	_, err = evalExpression("2 $ 3", nil)
	require.IsType(t, errors.ExpressionSyntaxError{}, err)

	_, err = evalExpression("floor(2)", nil)
	require.IsType(t, errors.ExpressionSyntaxError{}, err)

	_, err = evalExpression("(1 + 2", nil)
	require.IsType(t, errors.ExpressionSyntaxError{}, err)
}

func TestExpressionDivisionByZero(t *testing.T) {
	_, err := evalExpression("4 / (2 - 2)", nil)
	require.IsType(t, errors.ExpressionEvalError{}, err)
}

func TestExpressionUnaryMinus(t *testing.T) {
	value, err := evalExpression("-2 * -3", nil)
	require.Nil(t, err)
	require.Equal(t, float64(6), value)
}
