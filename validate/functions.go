package validate

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/kinds"
)

// checkExpr validates e in env, returning false the first time an error is
// recorded (the cooperative BREAK signal). aggAllowed reports whether an
// aggregation function is legal at this position (only true directly under
// WITH/RETURN projections and ORDER BY; WHERE predicates and nested
// arguments are checked with it false).
func (v *Validator) checkExpr(env *Env, e ast.Expr, aggAllowed bool) bool {
	if e == nil {
		return true
	}
	switch n := e.(type) {
	case *ast.Ident:
		return v.checkRef(env, n)

	case *ast.Param, *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NullLit:
		return true

	case *ast.Star:
		return !v.fail(kinds.InvalidUsageOfStarParameter.New())

	case *ast.ListLit:
		for _, el := range n.Elems {
			if !v.checkExpr(env, el, false) {
				return false
			}
		}
		return true

	case *ast.MapLiteral:
		for _, entry := range n.Entries {
			if !v.checkExpr(env, entry.Value, false) {
				return false
			}
		}
		return true

	case *ast.PropertyAccess:
		return v.checkExpr(env, n.X, false)

	case *ast.Subscript:
		if !v.checkExpr(env, n.X, false) {
			return false
		}
		if n.IsSlice {
			return v.checkExpr(env, n.Lo, false) && v.checkExpr(env, n.Hi, false)
		}
		return v.checkExpr(env, n.Index, false)

	case *ast.BinaryExpr:
		return v.checkExpr(env, n.X, false) && v.checkExpr(env, n.Y, false)

	case *ast.UnaryExpr:
		return v.checkExpr(env, n.X, false)

	case *ast.CaseExpr:
		if n.Value != nil && !v.checkExpr(env, n.Value, false) {
			return false
		}
		for _, w := range n.Whens {
			if !v.checkExpr(env, w.When, false) || !v.checkExpr(env, w.Then, false) {
				return false
			}
		}
		if n.Else != nil {
			return v.checkExpr(env, n.Else, false)
		}
		return true

	case *ast.QuantifiedExpr:
		return v.checkQuantified(env, n)

	case *ast.ListComprehension:
		return v.checkListComprehension(env, n)

	case *ast.PatternComprehension:
		return v.checkPatternComprehension(env, n)

	case *ast.Reduce:
		return v.checkReduce(env, n)

	case *ast.FunctionCall:
		return v.checkFunctionCall(env, n, aggAllowed)
	}
	return true
}

func (v *Validator) checkFunctionCall(env *Env, fc *ast.FunctionCall, aggAllowed bool) bool {
	if fc.Star {
		if fc.Name != "count" {
			return !v.fail(kinds.InvalidUsageOfStarParameter.New())
		}
		if fc.Distinct {
			return !v.fail(kinds.InvalidUsageOfDistinctStar.New())
		}
		return true
	}

	if v.funcs != nil {
		if !v.funcs.Exists(fc.Name) {
			return !v.fail(kinds.UnknownFunction.New(fc.Name))
		}
		if v.funcs.IsAggregate(fc.Name) && !aggAllowed {
			return !v.fail(kinds.InvalidUseOfAggregation.New(fc.Name))
		}
	}

	for _, arg := range fc.Args {
		if !v.checkExpr(env, arg, false) {
			return false
		}
	}
	return true
}
