package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvCloneDoesNotLeakAdditionsBack(t *testing.T) {
	e := NewEnv()
	e.Bind("a", Node)

	child := e.Clone()
	child.Bind("b", Unspecified)

	_, ok := e.Has("b")
	assert.False(t, ok, "binding b on the clone must not appear in the parent")

	hint, ok := child.Has("a")
	require.True(t, ok)
	assert.Equal(t, Node, hint)
}

func TestEnvFreshDropsBindingsKeepsUnionFlag(t *testing.T) {
	e := NewEnv()
	e.Bind("a", Node)
	e.UnionFlag = UnionAll

	fresh := e.Fresh()
	_, ok := fresh.Has("a")
	assert.False(t, ok)
	assert.Equal(t, UnionAll, fresh.UnionFlag)
}

func TestBindPatternVarSameHintIsNoOp(t *testing.T) {
	v := New(nil, nil, nil, nil)
	e := NewEnv()
	e.Bind("a", Node)
	assert.True(t, v.bindPatternVar(e, "a", Node))
}
