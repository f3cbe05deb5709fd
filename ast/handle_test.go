package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoot() *Query {
	clauses := []Clause{
		&MatchClause{Patterns: []*PatternPath{{Elements: []PatternElement{&NodePattern{Var: "a"}}}}},
		&WithClause{Items: []*ProjectionItem{{Expr: &Ident{Name: "a"}}}},
		&ReturnClause{Items: []*ProjectionItem{{Expr: &Ident{Name: "a"}}}},
	}
	sq := &SingleQuery{Clauses: clauses}
	return &Query{Single: []*SingleQuery{sq}}
}

func TestNewMasterHandleOwnsContextOutright(t *testing.T) {
	ctx := NewContext(nil)
	h := NewMasterHandle(sampleRoot(), ctx)
	assert.False(t, h.Synthetic())
	assert.Same(t, ctx, h.Context())
}

func TestSegmentSharesContextAndRetainsMaster(t *testing.T) {
	ctx := NewContext(nil)
	master := NewMasterHandle(sampleRoot(), ctx)

	seg := Segment(master, 0, 2)
	require.True(t, seg.Synthetic())
	assert.Same(t, ctx, seg.Context())
	assert.Len(t, seg.Root().Single[0].Clauses, 2)
}

func TestSegmentRefMapCarriesWithBoundary(t *testing.T) {
	master := NewMasterHandle(sampleRoot(), NewContext(nil))
	seg := Segment(master, 0, 1)
	assert.True(t, seg.Refs()["a"])
}

func TestHandleRetainReleaseRoundTrip(t *testing.T) {
	ctx := NewContext(nil)
	master := NewMasterHandle(sampleRoot(), ctx)
	seg := Segment(master, 0, 2)

	seg.Retain()
	seg.Release()
	assert.NotNil(t, seg.Root())

	seg.Release()
	assert.Nil(t, seg.Root())
	assert.NotNil(t, master.Root(), "releasing a segment must not dispose the master's tree")
}
