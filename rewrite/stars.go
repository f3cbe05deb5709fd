package rewrite

import "github.com/cyquery/frontend/ast"

// expandStars replaces `RETURN *` / `WITH *` with an explicit projection
// list naming every identifier bound so far in the clause sequence, in
// source order of first binding. scope accumulates bindings as it walks so
// a later `*` sees everything bound up to that point, not just the whole
// query. A `*` on the first clause is left in place, so the validator can
// reject a query that begins with one.
func expandStars(clauses []ast.Clause) ([]ast.Clause, bool) {
	rewrote := false
	scope := newOrderedSet()

	for i, c := range clauses {
		switch n := c.(type) {
		case *ast.WithClause:
			if n.Star && i > 0 {
				n.Items = projectionsFor(scope)
				n.Star = false
				rewrote = true
			}
			scope = rebind(scope, n.Items)
		case *ast.ReturnClause:
			if n.Star && i > 0 {
				n.Items = projectionsFor(scope)
				n.Star = false
				rewrote = true
			}
		default:
			for _, name := range boundNames(c) {
				scope.add(name)
			}
		}
		clauses[i] = c
	}
	return clauses, rewrote
}

func projectionsFor(scope *orderedSet) []*ast.ProjectionItem {
	items := make([]*ast.ProjectionItem, 0, len(scope.order))
	for _, name := range scope.order {
		items = append(items, &ast.ProjectionItem{
			Expr: &ast.Ident{Name: name},
		})
	}
	return items
}

// rebind replaces scope's contents with exactly the names projected by a
// WITH clause, since WITH opens a fresh scope for everything after it.
func rebind(scope *orderedSet, items []*ast.ProjectionItem) *orderedSet {
	fresh := newOrderedSet()
	for _, it := range items {
		if name := projectedName(it); name != "" {
			fresh.add(name)
		}
	}
	return fresh
}

type orderedSet struct {
	order []string
	has   map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{has: map[string]bool{}}
}

func (s *orderedSet) add(name string) {
	if name == "" || s.has[name] {
		return
	}
	s.has[name] = true
	s.order = append(s.order, name)
}
