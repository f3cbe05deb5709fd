// Package validate implements the Semantic Validator: a depth-first walk
// over a (possibly rewritten) AST driven by a strategy-returning visitor,
// enforcing scoping, clause ordering, procedure conformance, union
// compatibility, and construct-specific rules.
package validate

import "github.com/cyquery/frontend/ast"

// TypingHint tags how a bound name is used: as a node, a relationship, or
// something unspecified (lists, scalars, paths). Binding the same name to
// incompatible hints in one scope is invalid.
type TypingHint int

const (
	Unspecified TypingHint = iota
	Node
	Edge
)

// UnionFlavor distinguishes a plain UNION from UNION ALL, or records that
// no union has been seen yet in the current query scope.
type UnionFlavor int

const (
	UnionNotSeen UnionFlavor = iota
	UnionPlain
	UnionAll
)

// Env is the Validation Environment: the mutable state threaded through
// one query scope's walk.
type Env struct {
	Defined    map[string]TypingHint
	Clause     ast.ClauseKind
	HasClause  bool
	UnionFlag  UnionFlavor
	IgnoreRefs bool
}

// NewEnv returns an empty environment for a fresh scope.
func NewEnv() *Env {
	return &Env{Defined: map[string]TypingHint{}}
}

// Clone returns a deep-enough copy of e: a new Defined map with the same
// entries, so mutating the copy never affects e. Used when entering a
// child scope that starts from the parent's bindings (FOREACH body,
// comprehension body) and must not leak its own additions back out.
func (e *Env) Clone() *Env {
	cp := &Env{
		Defined:    make(map[string]TypingHint, len(e.Defined)),
		Clause:     e.Clause,
		HasClause:  e.HasClause,
		UnionFlag:  e.UnionFlag,
		IgnoreRefs: e.IgnoreRefs,
	}
	for k, v := range e.Defined {
		cp.Defined[k] = v
	}
	return cp
}

// Fresh returns a new environment carrying only the union flag of e and
// none of its bindings — used by WITH (without *), which discards the prior
// scope's identifiers outright.
func (e *Env) Fresh() *Env {
	return &Env{
		Defined:   map[string]TypingHint{},
		UnionFlag: e.UnionFlag,
	}
}

// Has reports whether name is bound in this scope.
func (e *Env) Has(name string) (TypingHint, bool) {
	t, ok := e.Defined[name]
	return t, ok
}

// Bind records name as bound with the given hint. It does not itself check
// for conflicts; callers check Has (or go through bindPatternVar) first so
// they can report the specific error kind.
func (e *Env) Bind(name string, hint TypingHint) {
	e.Defined[name] = hint
}

// Unbind removes name, used when a comprehension, quantifier, or reduce
// handler introduced a local name and must remove it again on exit.
func (e *Env) Unbind(name string) {
	delete(e.Defined, name)
}
