package rewrite

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/token"
)

// coalesceAdjacent merges adjacent MATCH clauses (both optional or both
// non-optional, neither separated by an updating clause by construction —
// the walk only ever looks at true neighbors in the clause list) into one,
// combining their pattern paths and AND-ing their WHERE predicates. It also
// merges adjacent CREATE clauses, which carry no predicate to combine.
// Returns true if any merge happened.
func coalesceAdjacent(clauses []ast.Clause) ([]ast.Clause, bool) {
	if len(clauses) < 2 {
		return clauses, false
	}
	out := make([]ast.Clause, 0, len(clauses))
	rewrote := false
	out = append(out, clauses[0])
	for _, c := range clauses[1:] {
		prev := out[len(out)-1]
		if merged, ok := tryMerge(prev, c); ok {
			out[len(out)-1] = merged
			rewrote = true
			continue
		}
		out = append(out, c)
	}
	return out, rewrote
}

func tryMerge(a, b ast.Clause) (ast.Clause, bool) {
	switch x := a.(type) {
	case *ast.MatchClause:
		y, ok := b.(*ast.MatchClause)
		if !ok || x.Optional != y.Optional {
			return nil, false
		}
		merged := &ast.MatchClause{
			Span:     ast.NewBase(x.Pos(), y.End()),
			Optional: x.Optional,
			Patterns: append(append([]*ast.PatternPath{}, x.Patterns...), y.Patterns...),
			Where:    andWhere(x.Where, y.Where),
		}
		return merged, true

	case *ast.CreateClause:
		y, ok := b.(*ast.CreateClause)
		if !ok {
			return nil, false
		}
		merged := &ast.CreateClause{
			Span:     ast.NewBase(x.Pos(), y.End()),
			Patterns: append(append([]*ast.PatternPath{}, x.Patterns...), y.Patterns...),
		}
		return merged, true
	}
	return nil, false
}

func andWhere(a, b ast.Expr) ast.Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &ast.BinaryExpr{
		Span: ast.NewBase(a.Pos(), b.End()),
		Op:   token.AND,
		X:    a,
		Y:    b,
	}
}
