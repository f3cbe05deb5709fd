package validate

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/errctx"
	"github.com/cyquery/frontend/kinds"
	"github.com/cyquery/frontend/registry"
)

// Procedure is an alias for registry.Procedure so callers outside this
// package's import graph can spell CALL/YIELD signatures as
// validate.Procedure without reaching into package registry directly.
type Procedure = registry.Procedure

// Strategy is what a handler tells the walker to do after visiting a node.
type Strategy int

const (
	// RECURSE: the walker descends into the node's children automatically.
	RECURSE Strategy = iota
	// CONTINUE: the handler already visited whatever children it needs;
	// the walker does not auto-descend.
	CONTINUE
	// BREAK: abort the walk. An error has already been recorded.
	BREAK
)

// ProcedureRegistry is the inward collaborator CALL/YIELD validation
// consults. registry.Procedures implements it.
type ProcedureRegistry interface {
	Lookup(name string) (Procedure, bool)
}

// FunctionRegistry is the inward collaborator function-call validation
// consults. registry.Functions implements it.
type FunctionRegistry interface {
	Exists(name string) bool
	IsAggregate(name string) bool
}

// Validator walks a query body, accumulating the first error into its
// errctx.Context. It also holds the annotation context built for the
// query; no check in this package reads it.
type Validator struct {
	ectx  *errctx.Context
	actx  *ast.Context
	procs ProcedureRegistry
	funcs FunctionRegistry
}

// New returns a Validator wired to the given registries and error context.
// actx is the annotation context built by the AST Builder for this query.
func New(ectx *errctx.Context, actx *ast.Context, procs ProcedureRegistry, funcs FunctionRegistry) *Validator {
	return &Validator{ectx: ectx, actx: actx, procs: procs, funcs: funcs}
}

// Validate walks q's top-level branches. Each SingleQuery is validated in
// its own fresh scope; UNION branches additionally must agree on column
// names and ALL-flavor, per 4.3.2's UNION contract.
func (v *Validator) Validate(q *ast.Query) error {
	var firstColumns []string
	flavor := UnionNotSeen

	for i, sq := range q.Single {
		env := NewEnv()
		env.UnionFlag = flavor
		if v.validateSingleQuery(sq, env) == BREAK {
			return v.ectx.Err()
		}

		if len(q.Single) > 1 && !endsInReturn(sq) {
			if v.fail(kinds.UnionMissingReturns.New()) {
				return v.ectx.Err()
			}
		}

		cols := returnColumns(sq)
		if i == 0 {
			firstColumns = cols
		} else if !stringsEqual(cols, firstColumns) {
			if v.fail(kinds.UnionMismatchedReturns.New()) {
				return v.ectx.Err()
			}
		}

		if i < len(q.UnionAll) {
			next := UnionPlain
			if q.UnionAll[i] {
				next = UnionAll
			}
			if flavor != UnionNotSeen && flavor != next {
				if v.fail(kinds.UnionCombination.New()) {
					return v.ectx.Err()
				}
			}
			flavor = next
		}
	}
	return v.ectx.Err()
}

// fail reports err to the error context and returns true the first time
// (cooperative BREAK signal), matching the first-error-wins policy.
func (v *Validator) fail(err error) bool {
	return v.ectx.Report(err)
}

func endsInReturn(sq *ast.SingleQuery) bool {
	if len(sq.Clauses) == 0 {
		return false
	}
	return sq.Clauses[len(sq.Clauses)-1].Kind() == ast.KindReturn
}

func returnColumns(sq *ast.SingleQuery) []string {
	if len(sq.Clauses) == 0 {
		return nil
	}
	ret, ok := sq.Clauses[len(sq.Clauses)-1].(*ast.ReturnClause)
	if !ok {
		return nil
	}
	cols := make([]string, len(ret.Items))
	for i, it := range ret.Items {
		cols[i] = columnName(it)
	}
	return cols
}

func columnName(it *ast.ProjectionItem) string {
	if it.Alias != "" {
		return it.Alias
	}
	if id, ok := it.Expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
