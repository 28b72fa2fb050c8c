package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgument(t *testing.T) {
	assert.Equal(t, float64(1), ParseArgument("1"))
	assert.Equal(t, 2.5, ParseArgument("2.5"))
	assert.Equal(t, true, ParseArgument("true"))
	assert.Equal(t, "quoted", ParseArgument(`"quoted"`))
	assert.Equal(t, "plain", ParseArgument("plain"))
	assert.Equal(t, []any{float64(1), float64(2)}, ParseArgument("[1,2]"))
	assert.Equal(t, map[string]any{"a": float64(1)}, ParseArgument(`{"a":1}`))
}

func TestParseKwargs(t *testing.T) {
	kwargs, err := ParseKwargs([]string{"x=1", "name=bob", "expr=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": float64(1), "name": "bob", "expr": "a=b"}, kwargs)

	_, err = ParseKwargs([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseKwargs([]string{"=1"})
	assert.Error(t, err)
	_, err = ParseKwargs([]string{"x=1", "x=2"})
	assert.Error(t, err)
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString("a short text that is long enough to be wrapped at fifty characters for sure")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "", WrapString(""))
}

