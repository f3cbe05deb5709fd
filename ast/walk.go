package ast

// Walk traverses an AST in depth-first order. It calls before(node) on
// entry to each node; if before returns false, the node's children are
// skipped. It calls after(node) once children have been visited. Either
// callback may be nil.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if node == nil {
		return
	}
	if before != nil && !before(node) {
		if after != nil {
			after(node)
		}
		return
	}
	walkChildren(node, before, after)
	if after != nil {
		after(node)
	}
}

func walkClauses(list []Clause, before func(Node) bool, after func(Node)) {
	for _, c := range list {
		Walk(c, before, after)
	}
}

func walkExprs(list []Expr, before func(Node) bool, after func(Node)) {
	for _, e := range list {
		Walk(e, before, after)
	}
}

func walkPatterns(list []*PatternPath, before func(Node) bool, after func(Node)) {
	for _, p := range list {
		Walk(p, before, after)
	}
}

func walkChildren(node Node, before func(Node) bool, after func(Node)) {
	switch n := node.(type) {
	case *Query:
		for _, s := range n.Single {
			Walk(s, before, after)
		}

	case *SingleQuery:
		walkClauses(n.Clauses, before, after)

	case *MatchClause:
		walkPatterns(n.Patterns, before, after)
		if n.Where != nil {
			Walk(n.Where, before, after)
		}

	case *CreateClause:
		walkPatterns(n.Patterns, before, after)

	case *MergeClause:
		if n.Pattern != nil {
			Walk(n.Pattern, before, after)
		}
		for _, s := range n.OnCreate {
			Walk(s, before, after)
		}
		for _, s := range n.OnMatch {
			Walk(s, before, after)
		}

	case *SetClause:
		for _, i := range n.Items {
			Walk(i, before, after)
		}

	case *SetItem:
		if n.Target != nil {
			Walk(n.Target, before, after)
		}
		if n.Entity != nil {
			Walk(n.Entity, before, after)
		}
		if n.Value != nil {
			Walk(n.Value, before, after)
		}

	case *RemoveClause:
		for _, i := range n.Items {
			Walk(i, before, after)
		}

	case *RemoveItem:
		if n.Target != nil {
			Walk(n.Target, before, after)
		}
		if n.Entity != nil {
			Walk(n.Entity, before, after)
		}

	case *DeleteClause:
		walkExprs(n.Exprs, before, after)

	case *WithClause:
		for _, i := range n.Items {
			Walk(i, before, after)
		}
		if n.Where != nil {
			Walk(n.Where, before, after)
		}
		for _, o := range n.OrderBy {
			Walk(o, before, after)
		}
		if n.Skip != nil {
			Walk(n.Skip, before, after)
		}
		if n.Limit != nil {
			Walk(n.Limit, before, after)
		}

	case *ReturnClause:
		for _, i := range n.Items {
			Walk(i, before, after)
		}
		for _, o := range n.OrderBy {
			Walk(o, before, after)
		}
		if n.Skip != nil {
			Walk(n.Skip, before, after)
		}
		if n.Limit != nil {
			Walk(n.Limit, before, after)
		}

	case *ProjectionItem:
		Walk(n.Expr, before, after)

	case *OrderItem:
		Walk(n.Expr, before, after)

	case *UnwindClause:
		Walk(n.List, before, after)

	case *ForeachClause:
		Walk(n.List, before, after)
		walkClauses(n.Body, before, after)

	case *CallClause:
		walkExprs(n.Args, before, after)

	case *CallSubqueryClause:
		Walk(n.Inner, before, after)

	case *PatternPath:
		for _, e := range n.Elements {
			Walk(e, before, after)
		}

	case *NodePattern:
		if n.Props != nil {
			Walk(n.Props, before, after)
		}

	case *RelPattern:
		if n.Props != nil {
			Walk(n.Props, before, after)
		}

	case *ListLit:
		walkExprs(n.Elems, before, after)

	case *MapLiteral:
		for _, e := range n.Entries {
			Walk(e.Value, before, after)
		}

	case *PropertyAccess:
		Walk(n.X, before, after)

	case *Subscript:
		Walk(n.X, before, after)
		if n.Index != nil {
			Walk(n.Index, before, after)
		}
		if n.Lo != nil {
			Walk(n.Lo, before, after)
		}
		if n.Hi != nil {
			Walk(n.Hi, before, after)
		}

	case *FunctionCall:
		walkExprs(n.Args, before, after)

	case *BinaryExpr:
		Walk(n.X, before, after)
		Walk(n.Y, before, after)

	case *UnaryExpr:
		Walk(n.X, before, after)

	case *ListComprehension:
		Walk(n.List, before, after)
		if n.Where != nil {
			Walk(n.Where, before, after)
		}
		if n.Eval != nil {
			Walk(n.Eval, before, after)
		}

	case *PatternComprehension:
		Walk(n.Pattern, before, after)
		if n.Where != nil {
			Walk(n.Where, before, after)
		}
		Walk(n.Eval, before, after)

	case *Reduce:
		Walk(n.Init, before, after)
		Walk(n.List, before, after)
		Walk(n.Eval, before, after)

	case *CaseExpr:
		if n.Value != nil {
			Walk(n.Value, before, after)
		}
		for _, w := range n.Whens {
			Walk(w.When, before, after)
			Walk(w.Then, before, after)
		}
		if n.Else != nil {
			Walk(n.Else, before, after)
		}

	case *QuantifiedExpr:
		Walk(n.List, before, after)
		if n.Where != nil {
			Walk(n.Where, before, after)
		}

	// Leaves: Ident, Param, IntLit, FloatLit, StringLit, BoolLit, NullLit, Star
	default:
	}
}

// Identifiers returns every *Ident referenced anywhere under node, in
// source order, including duplicates.
func Identifiers(node Node) []*Ident {
	var out []*Ident
	Walk(node, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			out = append(out, id)
		}
		return true
	}, nil)
	return out
}
