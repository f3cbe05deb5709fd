package rewrite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/token"
)

func matchOf(vars ...string) *ast.MatchClause {
	var els []ast.PatternElement
	for _, v := range vars {
		els = append(els, &ast.NodePattern{Var: v})
	}
	return &ast.MatchClause{Patterns: []*ast.PatternPath{{Elements: els}}}
}

func TestCoalesceAdjacentMatches(t *testing.T) {
	m1 := matchOf("a")
	m2 := matchOf("b")
	merged, changed := coalesceAdjacent([]ast.Clause{m1, m2})
	require.True(t, changed)
	require.Len(t, merged, 1)
	mc := merged[0].(*ast.MatchClause)
	assert.Len(t, mc.Patterns, 2)
}

func TestCoalesceAdjacentMatchesStructural(t *testing.T) {
	m1 := matchOf("a")
	m2 := matchOf("b")
	merged, changed := coalesceAdjacent([]ast.Clause{m1, m2})
	require.True(t, changed)

	want := []ast.Clause{&ast.MatchClause{Patterns: []*ast.PatternPath{
		{Elements: []ast.PatternElement{&ast.NodePattern{Var: "a"}}},
		{Elements: []ast.PatternElement{&ast.NodePattern{Var: "b"}}},
	}}}
	if diff := cmp.Diff(want, merged, cmp.AllowUnexported(token.Pos{})); diff != "" {
		t.Errorf("coalesced clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestCoalesceDoesNotMergeOptionalWithPlain(t *testing.T) {
	m1 := &ast.MatchClause{Optional: true, Patterns: []*ast.PatternPath{{}}}
	m2 := matchOf("a")
	merged, changed := coalesceAdjacent([]ast.Clause{m1, m2})
	assert.False(t, changed)
	assert.Len(t, merged, 2)
}

func TestCoalesceCombinesWhereWithAnd(t *testing.T) {
	m1 := &ast.MatchClause{
		Patterns: []*ast.PatternPath{{}},
		Where:    &ast.Ident{Name: "p"},
	}
	m2 := &ast.MatchClause{
		Patterns: []*ast.PatternPath{{}},
		Where:    &ast.Ident{Name: "q"},
	}
	merged, changed := coalesceAdjacent([]ast.Clause{m1, m2})
	require.True(t, changed)
	where := merged[0].(*ast.MatchClause).Where.(*ast.BinaryExpr)
	assert.Equal(t, token.AND, where.Op)
}

func TestCoalesceAdjacentCreates(t *testing.T) {
	c1 := &ast.CreateClause{Patterns: []*ast.PatternPath{{Elements: []ast.PatternElement{&ast.NodePattern{Var: "a"}}}}}
	c2 := &ast.CreateClause{Patterns: []*ast.PatternPath{{Elements: []ast.PatternElement{&ast.NodePattern{Var: "b"}}}}}
	merged, changed := coalesceAdjacent([]ast.Clause{c1, c2})
	require.True(t, changed)
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].(*ast.CreateClause).Patterns, 2)
}

func TestExpandStarsReturnUsesSourceOrderOfFirstBinding(t *testing.T) {
	clauses := []ast.Clause{
		matchOf("a", "b"),
		&ast.ReturnClause{Star: true},
	}
	expanded, changed := expandStars(clauses)
	require.True(t, changed)
	ret := expanded[1].(*ast.ReturnClause)
	require.Len(t, ret.Items, 2)
	assert.Equal(t, "a", ret.Items[0].Expr.(*ast.Ident).Name)
	assert.Equal(t, "b", ret.Items[1].Expr.(*ast.Ident).Name)
}

func TestExpandStarsWithRebindsScope(t *testing.T) {
	clauses := []ast.Clause{
		matchOf("a", "b"),
		&ast.WithClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "a"}}}},
		&ast.ReturnClause{Star: true},
	}
	expanded, changed := expandStars(clauses)
	require.True(t, changed)
	ret := expanded[2].(*ast.ReturnClause)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, "a", ret.Items[0].Expr.(*ast.Ident).Name)
}

func TestExpandStarsNoOpWithoutStar(t *testing.T) {
	clauses := []ast.Clause{
		matchOf("a"),
		&ast.ReturnClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "a"}}}},
	}
	_, changed := expandStars(clauses)
	assert.False(t, changed)
}

func TestRewriteReturningSubquerySkipsLeadingWithWhenExplicit(t *testing.T) {
	inner := &ast.Query{Single: []*ast.SingleQuery{{
		Clauses: []ast.Clause{
			&ast.WithClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "a"}}}},
			matchOf("a", "b"),
			&ast.ReturnClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "b"}}}},
		},
	}}}
	sub := &ast.CallSubqueryClause{Inner: inner}
	clauses := []ast.Clause{matchOf("a"), sub}

	out, changed := rewriteReturningSubqueries(clauses)
	require.True(t, changed)
	require.Len(t, out, 3)
	assert.Same(t, sub, out[1], "no leading WITH should be synthesized when the subquery already opens with one")

	trailing := out[2].(*ast.WithClause)
	names := map[string]bool{}
	for _, item := range trailing.Items {
		names[projectedName(item)] = true
	}
	assert.True(t, names["a"], "outer variable a must survive the subquery boundary")
	assert.True(t, names["b"], "the subquery's returned column must cross the boundary")
}

func TestRewriteReturningSubqueryIsIdempotent(t *testing.T) {
	inner := &ast.Query{Single: []*ast.SingleQuery{{
		Clauses: []ast.Clause{
			matchOf("a", "b"),
			&ast.ReturnClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "b"}}}},
		},
	}}}
	sub := &ast.CallSubqueryClause{Inner: inner}
	clauses := []ast.Clause{matchOf("a"), sub}

	once, changed := rewriteReturningSubqueries(clauses)
	require.True(t, changed)
	require.True(t, sub.Exported)

	twice, changedAgain := rewriteReturningSubqueries(once)
	assert.False(t, changedAgain)
	assert.Equal(t, once, twice)
}

func TestRewriteFixpointStopsWhenStable(t *testing.T) {
	q := &ast.Query{Single: []*ast.SingleQuery{{
		Clauses: []ast.Clause{
			matchOf("a"),
			&ast.ReturnClause{Items: []*ast.ProjectionItem{{Expr: &ast.Ident{Name: "a"}}}},
		},
	}}}
	r := New()
	assert.False(t, r.RewriteFixpoint(q))
}

func TestRewriteFixpointConverges(t *testing.T) {
	q := &ast.Query{Single: []*ast.SingleQuery{{
		Clauses: []ast.Clause{
			matchOf("a"),
			matchOf("b"),
			&ast.ReturnClause{Star: true},
		},
	}}}
	r := New()
	assert.True(t, r.RewriteFixpoint(q))
	assert.Len(t, q.Single[0].Clauses, 2)
}
