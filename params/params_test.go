package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripNoHeaderReturnsTextUnchanged(t *testing.T) {
	out, rest, err := Strip("MATCH (a) RETURN a")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "MATCH (a) RETURN a", rest)
}

func TestStripParsesScalarEntries(t *testing.T) {
	out, rest, err := Strip(`CYPHER {name: "bob", age: 30, score: 1.5, active: true} MATCH (a) RETURN a`)
	require.NoError(t, err)
	assert.Equal(t, "bob", out["name"])
	assert.Equal(t, int64(30), out["age"])
	assert.Equal(t, 1.5, out["score"])
	assert.Equal(t, true, out["active"])
	assert.Equal(t, " MATCH (a) RETURN a", rest)
}

func TestStripParsesNestedList(t *testing.T) {
	out, _, err := Strip(`CYPHER {ids: [1, 2, 3]} RETURN 1`)
	require.NoError(t, err)
	list, ok := out["ids"].([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[1])
}

func TestStripUnterminatedHeaderErrors(t *testing.T) {
	_, _, err := Strip(`CYPHER {name: "bob" RETURN 1`)
	require.Error(t, err)
}
