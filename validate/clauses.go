package validate

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/kinds"
)

// validateSingleQuery enforces the query-level structural rules (4.3.3)
// while dispatching each clause, in order, to its per-kind handler (4.3.2),
// threading one Env through the whole branch.
func (v *Validator) validateSingleQuery(sq *ast.SingleQuery, env *Env) Strategy {
	clauses := sq.Clauses
	if len(clauses) == 0 {
		return CONTINUE
	}

	if startsWithStar(clauses[0]) {
		if v.fail(kinds.QueryCannotBeginWith.New(clauses[0].Kind().String())) {
			return BREAK
		}
	}

	sawReturn := false
	sawOptionalMatch := false
	lastWasUpdating := false

	for _, c := range clauses {
		if sawReturn {
			if v.fail(kinds.UnexpectedClauseFollowingReturn.New()) {
				return BREAK
			}
		}

		kind := c.Kind()

		if sawOptionalMatch && kind == ast.KindMatch && !c.(*ast.MatchClause).Optional {
			if v.fail(kinds.MissingWithAfterOptionalMatch.New()) {
				return BREAK
			}
		}
		if lastWasUpdating && isReadingOrImportingKind(kind) {
			if v.fail(kinds.MissingWith.New(kind.String())) {
				return BREAK
			}
		}

		if v.dispatchClause(c, env) == BREAK {
			return BREAK
		}

		switch kind {
		case ast.KindMatch:
			sawOptionalMatch = c.(*ast.MatchClause).Optional
		case ast.KindWith:
			sawOptionalMatch = false
		}
		lastWasUpdating = isUpdatingKind(kind)

		if kind == ast.KindReturn {
			sawReturn = true
		}
	}

	last := clauses[len(clauses)-1]
	if !isTerminalKind(last.Kind()) {
		if v.fail(kinds.InvalidLastClause.New(last.Kind().String())) {
			return BREAK
		}
	}
	if sub, ok := last.(*ast.CallSubqueryClause); ok && innerQueryReturns(sub.Inner) {
		if v.fail(kinds.InvalidLastClause.New("CALL {} that returns")) {
			return BREAK
		}
	}

	return CONTINUE
}

func startsWithStar(c ast.Clause) bool {
	switch n := c.(type) {
	case *ast.WithClause:
		return n.Star
	case *ast.ReturnClause:
		return n.Star
	}
	return false
}

func isUpdatingKind(k ast.ClauseKind) bool {
	switch k {
	case ast.KindCreate, ast.KindMerge, ast.KindSet, ast.KindRemove, ast.KindDelete, ast.KindForeach:
		return true
	}
	return false
}

func isReadingOrImportingKind(k ast.ClauseKind) bool {
	switch k {
	case ast.KindMatch, ast.KindUnwind, ast.KindCall:
		return true
	}
	return false
}

func isTerminalKind(k ast.ClauseKind) bool {
	switch k {
	case ast.KindReturn, ast.KindCreate, ast.KindMerge, ast.KindDelete, ast.KindSet, ast.KindRemove, ast.KindCall, ast.KindCallSubquery, ast.KindForeach:
		return true
	}
	return false
}

func innerQueryReturns(q *ast.Query) bool {
	for _, sq := range q.Single {
		if len(sq.Clauses) > 0 && sq.Clauses[len(sq.Clauses)-1].Kind() == ast.KindReturn {
			return true
		}
	}
	return false
}

// dispatchClause is the node-kind-keyed dispatch table (Design Note §9,
// third bullet): one entry per ClauseKind, each returning a Strategy.
func (v *Validator) dispatchClause(c ast.Clause, env *Env) Strategy {
	env.Clause = c.Kind()
	env.HasClause = true

	switch n := c.(type) {
	case *ast.MatchClause:
		return v.validateMatch(n, env)
	case *ast.CreateClause:
		return v.validateCreate(n, env)
	case *ast.MergeClause:
		return v.validateMerge(n, env)
	case *ast.SetClause:
		return v.validateSet(n, env)
	case *ast.RemoveClause:
		return v.validateRemove(n, env)
	case *ast.DeleteClause:
		return v.validateDelete(n, env)
	case *ast.WithClause:
		return v.validateWith(n, env)
	case *ast.ReturnClause:
		return v.validateReturn(n, env)
	case *ast.UnwindClause:
		return v.validateUnwind(n, env)
	case *ast.ForeachClause:
		return v.validateForeach(n, env)
	case *ast.CallClause:
		return v.validateCall(n, env)
	case *ast.CallSubqueryClause:
		return v.validateCallSubquery(n, env)
	}
	if v.fail(kinds.ParserError.New("unsupported clause")) {
		return BREAK
	}
	return CONTINUE
}

// validateMatch: reads only; allShortestPaths may not appear in the WHERE
// predicate (AllShortestPathSupport). A shortestPath() written as an
// expression is not checked here: shortest paths are represented
// structurally via PatternPath.Shortest, and a shortestPath FunctionCall
// goes through checkFunctionCall like any other call.
func (v *Validator) validateMatch(m *ast.MatchClause, env *Env) Strategy {
	for _, p := range m.Patterns {
		for _, r := range p.Rels() {
			if err := checkVarLengthRange(r.VarLength); err != nil {
				if v.fail(err) {
					return BREAK
				}
			}
		}
		if p.Shortest == ast.ShortestAll {
			if err := checkAllShortestPathRange(p); err != nil {
				if v.fail(err) {
					return BREAK
				}
			}
			if err := checkShortestPathEndpoints(p, env); err != nil {
				if v.fail(err) {
					return BREAK
				}
			}
		}
		if p.Shortest == ast.ShortestSingle {
			if err := checkShortestPathEndpoints(p, env); err != nil {
				if v.fail(err) {
					return BREAK
				}
			}
		}
		if !v.checkPatternPath(env, p) {
			return BREAK
		}
	}
	if m.Where != nil {
		if containsAllShortestPaths(m.Where) {
			if v.fail(kinds.AllShortestPathSupport.New()) {
				return BREAK
			}
		}
		if !v.checkExpr(env, m.Where, false) {
			return BREAK
		}
	}
	return CONTINUE
}

// checkVarLengthRange enforces that a relationship's *min..max hop range,
// when both bounds are given, has a minimum no greater than its maximum.
func checkVarLengthRange(vl *ast.VarLength) error {
	if vl == nil || vl.Min == nil || vl.Max == nil {
		return nil
	}
	if *vl.Min > *vl.Max {
		return kinds.VarLenInvalidRange.New()
	}
	return nil
}

func checkAllShortestPathRange(p *ast.PatternPath) error {
	for _, r := range p.Rels() {
		if r.VarLength != nil && r.VarLength.Min != nil && *r.VarLength.Min > 1 {
			return kinds.AllShortestPathMinimalLength.New()
		}
	}
	return nil
}

func checkShortestPathEndpoints(p *ast.PatternPath, env *Env) error {
	nodes := p.Nodes()
	if len(nodes) < 2 {
		return nil
	}
	first, last := nodes[0], nodes[len(nodes)-1]
	for _, n := range []*ast.NodePattern{first, last} {
		if n.Var == "" {
			return kinds.ShortestPathBoundNodes.New()
		}
		if _, ok := env.Has(n.Var); !ok {
			return kinds.ShortestPathBoundNodes.New()
		}
	}
	return nil
}

func containsAllShortestPaths(e ast.Expr) bool {
	found := false
	ast.Walk(e, func(n ast.Node) bool {
		if fc, ok := n.(*ast.FunctionCall); ok && fc.Name == "allShortestPaths" {
			found = true
			return false
		}
		return true
	}, nil)
	return found
}

// validateCreate: every relationship has exactly one type and is directed;
// variable-length relations are forbidden; sibling patterns cannot see
// each other's new bindings while their inline properties are evaluated,
// so every pattern's property expressions are checked before any pattern's
// new variables are bound.
func (v *Validator) validateCreate(c *ast.CreateClause, env *Env) Strategy {
	for _, p := range c.Patterns {
		for _, r := range p.Rels() {
			if len(r.Types) != 1 {
				if v.fail(kinds.OneRelationshipType.New("CREATE")) {
					return BREAK
				}
			}
			if r.Dir == ast.DirEither {
				if v.fail(kinds.CreateDirectedRelationship.New()) {
					return BREAK
				}
			}
			if r.VarLength != nil {
				if v.fail(kinds.VarLen.New("CREATE")) {
					return BREAK
				}
			}
		}
	}

	// Evaluate every pattern's inline properties against the env as it
	// stood before this CREATE clause.
	for _, p := range c.Patterns {
		for _, el := range p.Elements {
			var props *ast.MapLiteral
			switch e := el.(type) {
			case *ast.NodePattern:
				props = e.Props
			case *ast.RelPattern:
				props = e.Props
			}
			if props != nil && !v.checkExpr(env, props, false) {
				return BREAK
			}
		}
	}

	// Now bind. A standalone single-node pattern reusing an existing name
	// creates nothing and is rejected outright. An existing node reused
	// as an anchor within a longer pattern is fine unless it is also
	// given labels or properties (which CREATE cannot apply to an
	// existing entity).
	for _, p := range c.Patterns {
		nodes := p.Nodes()
		if len(p.Elements) == 1 && len(nodes) == 1 {
			n := nodes[0]
			if n.Var != "" {
				if _, ok := env.Has(n.Var); ok {
					if v.fail(kinds.Redeclare.New("variable", n.Var, "CREATE")) {
						return BREAK
					}
				}
			}
		}
		for _, n := range nodes {
			if n.Var == "" {
				continue
			}
			if _, ok := env.Has(n.Var); ok {
				if len(n.Labels) > 0 || n.Props != nil {
					if v.fail(kinds.Redeclare.New("variable", n.Var, "CREATE")) {
						return BREAK
					}
				}
				continue
			}
			env.Bind(n.Var, Node)
		}
		for _, r := range p.Rels() {
			if r.Var == "" {
				continue
			}
			if _, ok := env.Has(r.Var); ok {
				if v.fail(kinds.Redeclare.New("variable", r.Var, "CREATE")) {
					return BREAK
				}
				continue
			}
			env.Bind(r.Var, Edge)
		}
	}
	return CONTINUE
}

// validateMerge: the single pattern's new relationship (if any) must have
// exactly one type and no variable length; re-binding an existing node
// forbids attaching labels/properties to it.
func (v *Validator) validateMerge(m *ast.MergeClause, env *Env) Strategy {
	if m.Pattern != nil {
		for _, r := range m.Pattern.Rels() {
			if len(r.Types) != 1 {
				if v.fail(kinds.OneRelationshipType.New("MERGE")) {
					return BREAK
				}
			}
			if r.VarLength != nil {
				if v.fail(kinds.VarLen.New("MERGE")) {
					return BREAK
				}
			}
		}
		for _, n := range m.Pattern.Nodes() {
			if n.Var == "" {
				continue
			}
			if _, ok := env.Has(n.Var); ok && (len(n.Labels) > 0 || n.Props != nil) {
				if v.fail(kinds.UnhandledTypeInlineProperties.New()) {
					return BREAK
				}
			}
		}
		if !v.checkPatternPath(env, m.Pattern) {
			return BREAK
		}
	}
	for _, item := range m.OnCreate {
		if !v.checkSetItem(env, item) {
			return BREAK
		}
	}
	for _, item := range m.OnMatch {
		if !v.checkSetItem(env, item) {
			return BREAK
		}
	}
	return CONTINUE
}

// validateSet: the left-hand side of a property assignment must be a
// plain identifier (enforced structurally: SetItem.Target's X is already
// required to be an *ast.Ident by the parser's grammar for SET; this
// check defends against a future grammar relaxation).
func (v *Validator) validateSet(s *ast.SetClause, env *Env) Strategy {
	for _, item := range s.Items {
		if !v.checkSetItem(env, item) {
			return BREAK
		}
	}
	return CONTINUE
}

func (v *Validator) checkSetItem(env *Env, item *ast.SetItem) bool {
	if item.Target != nil {
		if _, ok := item.Target.X.(*ast.Ident); !ok {
			return !v.fail(kinds.SetLhsNonAlias.New())
		}
		if !v.checkExpr(env, item.Target.X, false) {
			return false
		}
	}
	if item.Entity != nil {
		if !v.checkExpr(env, item.Entity, false) {
			return false
		}
	}
	if item.Value != nil {
		return v.checkExpr(env, item.Value, false)
	}
	return true
}

// validateRemove: each target must be identifier.property or a label on a
// bound identifier.
func (v *Validator) validateRemove(r *ast.RemoveClause, env *Env) Strategy {
	for _, item := range r.Items {
		if item.Target != nil {
			if _, ok := item.Target.X.(*ast.Ident); !ok {
				if v.fail(kinds.RemoveInvalidInput.New()) {
					return BREAK
				}
			}
			if !v.checkExpr(env, item.Target.X, false) {
				return BREAK
			}
			continue
		}
		if item.Entity != nil {
			if !v.checkExpr(env, item.Entity, false) {
				return BREAK
			}
			continue
		}
		if v.fail(kinds.RemoveInvalidInput.New()) {
			return BREAK
		}
	}
	return CONTINUE
}

// validateDelete: each expression must be an identifier, function call, or
// subscript (a path or collected-entity reference).
func (v *Validator) validateDelete(d *ast.DeleteClause, env *Env) Strategy {
	for _, e := range d.Exprs {
		switch e.(type) {
		case *ast.Ident, *ast.FunctionCall, *ast.Subscript:
		default:
			if v.fail(kinds.DeleteInvalidArguments.New()) {
				return BREAK
			}
		}
		if !v.checkExpr(env, e, false) {
			return BREAK
		}
	}
	return CONTINUE
}

// validateWith: opens a fresh scope except when the projection is `*`
// (handled by the rewriter before validation ever sees a real query, but
// validation still tolerates an un-rewritten `*` defensively). Column
// names must be unique, LIMIT/SKIP must be non-negative integer literals
// or parameters, aggregation is permitted in projections/ORDER BY.
// validateWith checks item expressions under the pre-projection scope, then
// checks WHERE/ORDER BY/SKIP/LIMIT under the post-projection scope (the one
// the WITH is about to replace env with) — a plain WITH discards everything
// but its projected names, so its own predicate and ordering only see those
// names, matching the 4.3.2 contract that WITH's WHERE/ORDER BY follow the
// projection rather than precede it.
func (v *Validator) validateWith(w *ast.WithClause, env *Env) Strategy {
	if !v.checkItems(env, w.Items, !w.Star) {
		return BREAK
	}
	if w.Star {
		if !v.checkOrderWhere(env, w.Where, w.OrderBy, w.Skip, w.Limit) {
			return BREAK
		}
		return CONTINUE
	}
	fresh := env.Fresh()
	for _, item := range w.Items {
		name := item.Alias
		if name == "" {
			if id, ok := item.Expr.(*ast.Ident); ok {
				name = id.Name
			} else {
				if v.fail(kinds.WithProjectionMissingAlias.New()) {
					return BREAK
				}
			}
		}
		fresh.Bind(name, Unspecified)
	}
	if !v.checkOrderWhere(fresh, w.Where, w.OrderBy, w.Skip, w.Limit) {
		return BREAK
	}
	*env = *fresh
	return CONTINUE
}

// validateReturn: same column discipline as WITH. RETURN does not truncate
// the scope the way WITH does — there is no clause left to see it — so its
// ORDER BY/SKIP/LIMIT check against a clone of env overlaid with the
// returned aliases, letting `RETURN a.name AS n ORDER BY n` resolve `n` as
// well as still-visible pre-projection names.
func (v *Validator) validateReturn(r *ast.ReturnClause, env *Env) Strategy {
	if !v.checkItems(env, r.Items, true) {
		return BREAK
	}
	post := env
	if !r.Star {
		post = env.Clone()
		for _, item := range r.Items {
			if name := columnName(item); name != "" {
				post.Bind(name, Unspecified)
			}
		}
	}
	if !v.checkOrderWhere(post, nil, r.OrderBy, r.Skip, r.Limit) {
		return BREAK
	}
	return CONTINUE
}

// checkItems validates every projection item's expression under env and,
// when requireUniqueNames is set, rejects a repeated result column name.
func (v *Validator) checkItems(env *Env, items []*ast.ProjectionItem, requireUniqueNames bool) bool {
	seen := map[string]bool{}
	for _, item := range items {
		if !v.checkExpr(env, item.Expr, true) {
			return false
		}
		name := columnName(item)
		if requireUniqueNames && name != "" && !isInternalAlias(name) {
			if seen[name] {
				if v.fail(kinds.SameResultColumnName.New(name)) {
					return false
				}
			}
			seen[name] = true
		}
	}
	return true
}

// checkOrderWhere validates a WHERE predicate and ORDER BY/SKIP/LIMIT
// clauses under env, the scope in effect once the enclosing projection has
// applied.
func (v *Validator) checkOrderWhere(env *Env, where ast.Expr, order []*ast.OrderItem, skip, limit ast.Expr) bool {
	if where != nil && !v.checkExpr(env, where, false) {
		return false
	}
	for _, o := range order {
		if !v.checkExpr(env, o.Expr, true) {
			return false
		}
	}
	if skip != nil && !v.checkSkipOrLimit(skip, false) {
		return false
	}
	if limit != nil && !v.checkSkipOrLimit(limit, true) {
		return false
	}
	return true
}

func isInternalAlias(name string) bool {
	return len(name) > 0 && name[0] == '@'
}

func (v *Validator) checkSkipOrLimit(e ast.Expr, isLimit bool) bool {
	fail := func() bool {
		if isLimit {
			return !v.fail(kinds.LimitMustBeNonNegative.New())
		}
		return !v.fail(kinds.SkipMustBeNonNegative.New())
	}
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Value < 0 {
			return fail()
		}
		return true
	case *ast.Param:
		return true
	default:
		return fail()
	}
}

// validateUnwind: the loop variable must be new.
func (v *Validator) validateUnwind(u *ast.UnwindClause, env *Env) Strategy {
	if !v.checkExpr(env, u.List, false) {
		return BREAK
	}
	if _, ok := env.Has(u.As); ok {
		if v.fail(kinds.VariableAlreadyDeclared.New(u.As)) {
			return BREAK
		}
	}
	env.Bind(u.As, Unspecified)
	return CONTINUE
}

// validateForeach: body may contain only updating clauses; introduces a
// child scope holding the loop variable and leaves the parent environment
// unchanged on exit.
func (v *Validator) validateForeach(f *ast.ForeachClause, env *Env) Strategy {
	if !v.checkExpr(env, f.List, false) {
		return BREAK
	}
	child := env.Clone()
	child.Bind(f.Var, Unspecified)

	for _, c := range f.Body {
		if !isUpdatingKind(c.Kind()) {
			if v.fail(kinds.ForeachInvalidBody.New()) {
				return BREAK
			}
		}
		if v.dispatchClause(c, child) == BREAK {
			return BREAK
		}
	}
	return CONTINUE
}

// validateCall: the procedure must exist; arity must match unless
// variadic; YIELD projections must be unique and each must be a declared
// output.
func (v *Validator) validateCall(c *ast.CallClause, env *Env) Strategy {
	for _, a := range c.Args {
		if !v.checkExpr(env, a, false) {
			return BREAK
		}
	}

	if v.procs != nil {
		proc, ok := v.procs.Lookup(c.Name)
		if !ok {
			if v.fail(kinds.ProcedureNotRegistered.New(c.Name)) {
				return BREAK
			}
			return CONTINUE
		}
		if !proc.Variadic && proc.Argc >= 0 && len(c.Args) != proc.Argc {
			if v.fail(kinds.ProcedureInvalidArguments.New(c.Name, proc.Argc, len(c.Args))) {
				return BREAK
			}
		}
		seen := map[string]bool{}
		for _, y := range c.Yield {
			if seen[y.Name] {
				if v.fail(kinds.SameResultColumnName.New(y.Name)) {
					return BREAK
				}
			}
			seen[y.Name] = true
			if !proc.HasOutput(y.Name) {
				if v.fail(kinds.ProcedureInvalidOutput.New(c.Name, y.Name)) {
					return BREAK
				}
			}
			alias := y.Alias
			if alias == "" {
				alias = y.Name
			}
			env.Bind(alias, Unspecified)
		}
	}
	return CONTINUE
}

// validateCallSubquery: saves the outer environment, validates the inner
// query in its own scope (an import-list leading WITH if present, else
// empty), then restores the outer environment plus the aliases the
// subquery's terminal RETURN projected; a terminal `RETURN *` sets the
// outer env's IgnoreRefs instead. Only the inner query's first UNION
// branch is validated and consulted for those aliases.
func (v *Validator) validateCallSubquery(c *ast.CallSubqueryClause, env *Env) Strategy {
	inner := NewEnv()

	innerClauses := flattenFirstBranch(c.Inner)
	if len(innerClauses) > 0 {
		if w, ok := innerClauses[0].(*ast.WithClause); ok {
			if !v.checkImportList(env, inner, w) {
				return BREAK
			}
			innerClauses = innerClauses[1:]
		}
	}

	for _, ic := range innerClauses {
		if v.dispatchClause(ic, inner) == BREAK {
			return BREAK
		}
	}

	if len(innerClauses) > 0 {
		if ret, ok := innerClauses[len(innerClauses)-1].(*ast.ReturnClause); ok {
			if ret.Star {
				env.IgnoreRefs = true
			}
			for _, item := range ret.Items {
				name := columnName(item)
				if name != "" {
					env.Bind(name, Unspecified)
				}
			}
		}
	}
	return CONTINUE
}

func flattenFirstBranch(q *ast.Query) []ast.Clause {
	if len(q.Single) == 0 {
		return nil
	}
	return q.Single[0].Clauses
}

// checkImportList enforces 4.3.2's CALL {...} leading-WITH contract: no
// ORDER BY/SKIP/LIMIT/predicate; every item is a plain identifier, or a
// non-identifier expression that references nothing from the outer scope.
func (v *Validator) checkImportList(outer, inner *Env, w *ast.WithClause) bool {
	if len(w.OrderBy) > 0 || w.Skip != nil || w.Limit != nil || w.Where != nil {
		return !v.fail(kinds.CallSubqueryInvalidReferences.New("<import list>"))
	}
	for _, item := range w.Items {
		if id, ok := item.Expr.(*ast.Ident); ok && item.Alias == "" {
			if _, ok := outer.Has(id.Name); !ok {
				return !v.fail(kinds.NotDefined.New(id.Name))
			}
			inner.Bind(id.Name, outer.Defined[id.Name])
			continue
		}
		if referencesOuterScope(item.Expr, outer) {
			return !v.fail(kinds.CallSubqueryInvalidReferences.New(columnName(item)))
		}
		name := item.Alias
		if name == "" {
			return !v.fail(kinds.WithProjectionMissingAlias.New())
		}
		inner.Bind(name, Unspecified)
	}
	return true
}

func referencesOuterScope(e ast.Expr, outer *Env) bool {
	found := false
	ast.Walk(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			if _, bound := outer.Has(id.Name); bound {
				found = true
				return false
			}
		}
		return true
	}, nil)
	return found
}
