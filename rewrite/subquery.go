package rewrite

import (
	"fmt"

	"github.com/cyquery/frontend/ast"
)

// rewriteReturningSubqueries transforms every CALL {...} whose inner query
// ends in RETURN into, at most, an explicit leading WITH that imports every
// name the subquery references from the outer scope (skipped when the
// subquery already opens with its own import WITH), followed by the
// original CallSubqueryClause, followed by a trailing WITH that re-projects
// the inner RETURN's columns under their real names plus every variable
// still live from the outer scope — a WITH rather than a RETURN, since a
// returning CALL subquery continues the row stream rather than terminating
// it, and validation forbids a query from ending on one in the first
// place. A return column that reuses an outer variable's name shadows it,
// matching how the subquery's own binding would shadow it. The transform
// marks the clause as Exported so a later fixpoint pass leaves it alone.
func rewriteReturningSubqueries(clauses []ast.Clause) ([]ast.Clause, bool) {
	out := make([]ast.Clause, 0, len(clauses))
	rewrote := false
	for i, c := range clauses {
		sub, ok := c.(*ast.CallSubqueryClause)
		if !ok {
			out = append(out, c)
			continue
		}
		inner := sub.Inner
		if sub.Exported || !innerReturns(inner) {
			out = append(out, c)
			continue
		}

		imports := importedNames(inner)

		// A subquery that already opens with an explicit import WITH
		// declares its own outer dependencies; synthesizing another
		// leading WITH on top of it would needlessly narrow the outer
		// scope a second time.
		var leadingWith *ast.WithClause
		if !startsWithExplicitWith(inner) && len(imports) > 0 {
			withItems := make([]*ast.ProjectionItem, 0, len(imports))
			for _, name := range imports {
				withItems = append(withItems, &ast.ProjectionItem{
					Span: sub.Span,
					Expr: &ast.Ident{Span: sub.Span, Name: name},
				})
			}
			leadingWith = &ast.WithClause{Span: sub.Span, Items: withItems}
		}

		returnItems := innerReturnItems(inner)
		produced := map[string]bool{}
		trailing := make([]*ast.ProjectionItem, 0, len(returnItems))
		for idx, item := range returnItems {
			name := projectedName(item)
			if name == "" {
				name = fmt.Sprintf("@sub_%d", idx)
			}
			produced[name] = true
			trailing = append(trailing, exportItem(item, name))
		}
		// Everything still bound in the outer scope ahead of this clause
		// rides through unchanged unless a return column just shadowed it.
		for _, name := range outerBoundNames(clauses[:i]) {
			if produced[name] {
				continue
			}
			produced[name] = true
			trailing = append(trailing, &ast.ProjectionItem{
				Span: sub.Span,
				Expr: &ast.Ident{Span: sub.Span, Name: name},
			})
		}
		trailingWith := &ast.WithClause{Span: sub.Span, Items: trailing}

		sub.Exported = true
		if leadingWith != nil {
			out = append(out, leadingWith)
		}
		out = append(out, sub, trailingWith)
		rewrote = true
	}
	return out, rewrote
}

// exportItem re-projects a subquery's RETURN item under name, reusing the
// item verbatim when an Ident expression already carries that name.
func exportItem(item *ast.ProjectionItem, name string) *ast.ProjectionItem {
	if id, ok := item.Expr.(*ast.Ident); ok && item.Alias == "" && id.Name == name {
		return &ast.ProjectionItem{Span: item.Span, Expr: item.Expr}
	}
	return &ast.ProjectionItem{Span: item.Span, Expr: item.Expr, Alias: name}
}

// outerBoundNames collects, in first-bound order, every name the given
// clauses (the branch's clauses preceding a CALL subquery) bind.
func outerBoundNames(clauses []ast.Clause) []string {
	seen := map[string]bool{}
	var order []string
	for _, c := range clauses {
		for _, n := range boundNames(c) {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			order = append(order, n)
		}
	}
	return order
}

// startsWithExplicitWith reports whether q's first branch opens with a
// user-written WITH — an explicit import list the CALL subquery contract
// already governs directly.
func startsWithExplicitWith(q *ast.Query) bool {
	if len(q.Single) == 0 || len(q.Single[0].Clauses) == 0 {
		return false
	}
	_, ok := q.Single[0].Clauses[0].(*ast.WithClause)
	return ok
}

func innerReturns(q *ast.Query) bool {
	for _, sq := range q.Single {
		if len(sq.Clauses) == 0 {
			continue
		}
		if sq.Clauses[len(sq.Clauses)-1].Kind() == ast.KindReturn {
			return true
		}
	}
	return false
}

func innerReturnItems(q *ast.Query) []*ast.ProjectionItem {
	last := q.Single[len(q.Single)-1]
	if len(last.Clauses) == 0 {
		return nil
	}
	ret, ok := last.Clauses[len(last.Clauses)-1].(*ast.ReturnClause)
	if !ok {
		return nil
	}
	return ret.Items
}

// importedNames collects, in first-use order, every identifier the
// subquery references that is not itself bound somewhere inside it — the
// names that must cross the CALL {...} boundary from the outer scope.
func importedNames(q *ast.Query) []string {
	bound := map[string]bool{}
	var order []string
	seen := map[string]bool{}

	for _, sq := range q.Single {
		for _, c := range sq.Clauses {
			for _, n := range boundNames(c) {
				bound[n] = true
			}
		}
		for _, c := range sq.Clauses {
			for _, id := range ast.Identifiers(c) {
				if bound[id.Name] || seen[id.Name] {
					continue
				}
				seen[id.Name] = true
				order = append(order, id.Name)
			}
		}
	}
	return order
}

func boundNames(c ast.Clause) []string {
	var names []string
	switch n := c.(type) {
	case *ast.MatchClause:
		for _, p := range n.Patterns {
			names = append(names, patternNames(p)...)
		}
	case *ast.CreateClause:
		for _, p := range n.Patterns {
			names = append(names, patternNames(p)...)
		}
	case *ast.MergeClause:
		if n.Pattern != nil {
			names = append(names, patternNames(n.Pattern)...)
		}
	case *ast.WithClause:
		for _, it := range n.Items {
			names = append(names, projectedName(it))
		}
	case *ast.ReturnClause:
		for _, it := range n.Items {
			names = append(names, projectedName(it))
		}
	case *ast.UnwindClause:
		names = append(names, n.As)
	case *ast.ForeachClause:
		names = append(names, n.Var)
	}
	return names
}

func patternNames(p *ast.PatternPath) []string {
	var names []string
	if p.Var != "" {
		names = append(names, p.Var)
	}
	for _, el := range p.Elements {
		switch e := el.(type) {
		case *ast.NodePattern:
			if e.Var != "" {
				names = append(names, e.Var)
			}
		case *ast.RelPattern:
			if e.Var != "" {
				names = append(names, e.Var)
			}
		}
	}
	return names
}

func projectedName(it *ast.ProjectionItem) string {
	if it.Alias != "" {
		return it.Alias
	}
	if id, ok := it.Expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
