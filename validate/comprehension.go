package validate

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/kinds"
)

// checkListComprehension introduces Var for the duration of the body
// (collection, predicate, eval, in that order) and removes it again on
// exit, regardless of outcome, per 4.3.4's scope-isolation requirement.
func (v *Validator) checkListComprehension(env *Env, c *ast.ListComprehension) bool {
	if !v.checkExpr(env, c.List, false) {
		return false
	}
	introduced := v.introduceLocal(env, c.Var)
	defer v.retractLocal(env, c.Var, introduced)

	if c.Where != nil && !v.checkExpr(env, c.Where, false) {
		return false
	}
	if c.Eval != nil && !v.checkExpr(env, c.Eval, false) {
		return false
	}
	return true
}

// checkPatternComprehension validates the pattern in its own nested scope
// (so its bindings never leak to the surrounding environment), then the
// predicate and eval expression under that nested scope.
func (v *Validator) checkPatternComprehension(env *Env, c *ast.PatternComprehension) bool {
	inner := env.Clone()
	if !v.checkPatternPath(inner, c.Pattern) {
		return false
	}
	if c.Where != nil && !v.checkExpr(inner, c.Where, false) {
		return false
	}
	return v.checkExpr(inner, c.Eval, false)
}

// checkReduce requires both an init expression and an eval expression
// (MissingEvalExpInReduce), forbids aggregation functions inside the eval
// expression, and scopes the accumulator and loop variable to the body.
func (v *Validator) checkReduce(env *Env, r *ast.Reduce) bool {
	if r.Eval == nil || r.Init == nil {
		return !v.fail(kinds.MissingEvalExpInReduce.New())
	}
	if !v.checkExpr(env, r.Init, false) {
		return false
	}
	if !v.checkExpr(env, r.List, false) {
		return false
	}

	accIntroduced := v.introduceLocal(env, r.Acc)
	defer v.retractLocal(env, r.Acc, accIntroduced)
	varIntroduced := v.introduceLocal(env, r.Var)
	defer v.retractLocal(env, r.Var, varIntroduced)

	return v.checkExpr(env, r.Eval, false)
}

// checkQuantified scopes Var to List/Where, same discipline as a list
// comprehension.
func (v *Validator) checkQuantified(env *Env, q *ast.QuantifiedExpr) bool {
	if !v.checkExpr(env, q.List, false) {
		return false
	}
	introduced := v.introduceLocal(env, q.Var)
	defer v.retractLocal(env, q.Var, introduced)

	if q.Where != nil {
		return v.checkExpr(env, q.Where, false)
	}
	return true
}

// introduceLocal binds name to Unspecified if it is not already bound,
// reporting whether this call was the one that introduced it (so the
// caller only retracts bindings it added itself).
func (v *Validator) introduceLocal(env *Env, name string) bool {
	if name == "" {
		return false
	}
	if _, ok := env.Has(name); ok {
		return false
	}
	env.Bind(name, Unspecified)
	return true
}

func (v *Validator) retractLocal(env *Env, name string, introduced bool) {
	if introduced {
		env.Unbind(name)
	}
}
