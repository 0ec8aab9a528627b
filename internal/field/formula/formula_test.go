package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	e, err := Parse("total - previous")
	require.NoError(t, err)
	v := e.Eval(map[string]float64{"total": 10, "previous": 3})
	assert.Equal(t, 7.0, v)
}

func TestEvalPrecedenceAndParens(t *testing.T) {
	e, err := Parse("(a + b) * 2")
	require.NoError(t, err)
	assert.Equal(t, 10.0, e.Eval(map[string]float64{"a": 1, "b": 4}))

	e2, err := Parse("a + b * 2")
	require.NoError(t, err)
	assert.Equal(t, 9.0, e2.Eval(map[string]float64{"a": 1, "b": 4}))
}

func TestEvalMissingVarIsNaN(t *testing.T) {
	e, err := Parse("energy / 3.6")
	require.NoError(t, err)
	v := e.Eval(map[string]float64{})
	assert.True(t, math.IsNaN(v))
}

func TestVars(t *testing.T) {
	e, err := Parse("total - previous + offset")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"total", "previous", "offset"}, e.Vars())
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	_, err := Parse("(a + b")
	assert.Error(t, err)
}
