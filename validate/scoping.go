package validate

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/kinds"
)

// checkRef validates a single identifier reference against env, honoring
// IgnoreRefs (set when an inner subquery returned `*`, per 4.3.1).
func (v *Validator) checkRef(env *Env, id *ast.Ident) bool {
	if env.IgnoreRefs {
		return true
	}
	if _, ok := env.Has(id.Name); !ok {
		return !v.fail(kinds.NotDefined.New(id.Name))
	}
	return true
}

// bindPatternVar applies the general MATCH/MERGE binding rule: reusing an
// existing binding of the same hint is a no-op reference; NODE/EDGE hint
// mismatches are SameAliasNodeAndRelationship; any other hint mismatch
// (typically Unspecified vs. NODE/EDGE, e.g. a name bound by UNWIND then
// used as a pattern variable) is VariableAlreadyDeclared.
func (v *Validator) bindPatternVar(env *Env, name string, hint TypingHint) bool {
	if name == "" {
		return true
	}
	existing, ok := env.Has(name)
	if !ok {
		env.Bind(name, hint)
		return true
	}
	if existing == hint {
		return true
	}
	if (existing == Node && hint == Edge) || (existing == Edge && hint == Node) {
		return !v.fail(kinds.SameAliasNodeAndRelationship.New(name))
	}
	return !v.fail(kinds.VariableAlreadyDeclared.New(name))
}

// checkPatternPath validates and binds every element of a MATCH/MERGE
// pattern path: the path variable itself (if any), then each node and
// relationship in source order.
func (v *Validator) checkPatternPath(env *Env, p *ast.PatternPath) bool {
	if p.Var != "" {
		if !v.bindPatternVar(env, p.Var, Unspecified) {
			return false
		}
	}
	for _, el := range p.Elements {
		switch e := el.(type) {
		case *ast.NodePattern:
			if e.Props != nil && !v.checkExpr(env, e.Props, false) {
				return false
			}
			if !v.bindPatternVar(env, e.Var, Node) {
				return false
			}
		case *ast.RelPattern:
			if e.Props != nil && !v.checkExpr(env, e.Props, false) {
				return false
			}
			if !v.bindPatternVar(env, e.Var, Edge) {
				return false
			}
		}
	}
	return true
}
