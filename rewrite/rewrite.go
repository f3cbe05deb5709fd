// Package rewrite applies the three canonicalizing AST transformations:
// coalescing adjacent same-kind pattern clauses, rewriting returning
// subqueries into explicit projection form, and expanding `*` projections.
// Each stage is idempotent and reports whether it changed anything; the
// Rewriter re-runs every stage until a full pass makes no further change.
package rewrite

import "github.com/cyquery/frontend/ast"

// Rewriter applies the fixed sequence of transforms to a query body. It
// mutates the AST in place, following the teacher's (and this module's)
// convention of owning the tree it is handed rather than copying it.
type Rewriter struct{}

// New returns a ready-to-use Rewriter. It carries no state: every
// transform is a pure function of the clause list it is given.
func New() *Rewriter { return &Rewriter{} }

// Rewrite runs coalesce, subquery-rewrite, and star-expansion in order over
// every SingleQuery branch of q, and reports whether the AST changed at
// all. Callers must re-run validation when it did.
func (r *Rewriter) Rewrite(q *ast.Query) (rewrote bool) {
	for _, sq := range q.Single {
		clauses := sq.Clauses

		if merged, changed := coalesceAdjacent(clauses); changed {
			clauses = merged
			rewrote = true
		}
		if rewritten, changed := rewriteReturningSubqueries(clauses); changed {
			clauses = rewritten
			rewrote = true
		}
		if expanded, changed := expandStars(clauses); changed {
			clauses = expanded
			rewrote = true
		}

		sq.Clauses = clauses
	}
	return rewrote
}

// RewriteFixpoint repeatedly calls Rewrite until a pass makes no further
// change, guarding against pathological input with a hard iteration cap —
// every individual transform is idempotent, so a pass that changes nothing
// normally comes by the second iteration, but a cap keeps a bug in one of
// them from looping forever.
func (r *Rewriter) RewriteFixpoint(q *ast.Query) bool {
	any := false
	for i := 0; i < 8; i++ {
		if !r.Rewrite(q) {
			break
		}
		any = true
	}
	return any
}
