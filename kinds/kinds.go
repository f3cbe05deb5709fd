// Package kinds names every error a query can fail with past the lexer, as
// distinct *errors.Kind values. Each kind carries a message template; callers
// fill it in with New(args...) and compare with kind.Is(err) downstream.
package kinds

import errors "gopkg.in/src-d/go-errors.v1"

// Parse errors: malformed or unsupported top-level query shape.
var (
	ParserError              = errors.NewKind("syntax error: %s")
	EmptyQuery               = errors.NewKind("query text is empty")
	MultipleStatements       = errors.NewKind("query contains more than one statement")
	UnsupportedQueryType     = errors.NewKind("unsupported query type: %s")
	InvalidConstraintCommand = errors.NewKind("invalid constraint command: %s")
)

// Structure errors: clauses in an order the grammar allows but the language
// forbids.
var (
	InvalidLastClause               = errors.NewKind("query cannot end with a %s clause")
	UnexpectedClauseFollowingReturn = errors.NewKind("no clause is allowed to follow RETURN")
	QueryCannotBeginWith            = errors.NewKind("query cannot begin with a %s clause")
	MissingWith                     = errors.NewKind("a WITH clause is required between %s and the clause that follows it")
	MissingWithAfterOptionalMatch   = errors.NewKind("a WITH clause is required after OPTIONAL MATCH before updating clauses")
)

// Pattern errors: relationship/path shape violations.
var (
	OneRelationshipType           = errors.NewKind("exactly one relationship type is required in a %s pattern")
	CreateDirectedRelationship    = errors.NewKind("only directed relationships are supported in CREATE/MERGE patterns")
	VarLen                        = errors.NewKind("variable-length relationships are not allowed in a %s pattern")
	VarLenInvalidRange            = errors.NewKind("variable-length range must have a minimum no greater than its maximum")
	UnhandledTypeInlineProperties = errors.NewKind("inline properties are not supported on this pattern element")
	ShortestPathBoundNodes        = errors.NewKind("shortestPath requires both endpoint nodes to already be bound")
	AllShortestPathMinimalLength  = errors.NewKind("allShortestPaths requires a minimum path length of zero or one")
	AllShortestPathSupport        = errors.NewKind("allShortestPaths does not support this pattern shape")
	ShortestPathSupport           = errors.NewKind("shortestPath does not support this pattern shape")
)

// Scoping errors: name binding and redeclaration.
var (
	NotDefined                         = errors.NewKind("variable `%s` is not defined")
	VariableAlreadyDeclared            = errors.NewKind("variable `%s` is already declared in this scope")
	VariableAlreadyDeclaredInOuterScope = errors.NewKind("variable `%s` is already declared in an outer scope")
	SameAliasNodeAndRelationship        = errors.NewKind("`%s` is used as both a node and a relationship alias")
	SameAliasMultiplePatterns           = errors.NewKind("`%s` is bound by more than one pattern element")
	Redeclare                           = errors.NewKind("%s `%s` conflicts with an existing declaration in %s")
	WithProjectionMissingAlias          = errors.NewKind("expression in WITH must be aliased unless it is a variable")
	SameResultColumnName                = errors.NewKind("duplicate result column name: %s")
)

// Procedure/function errors.
var (
	ProcedureNotRegistered      = errors.NewKind("unknown procedure: %s")
	ProcedureInvalidArguments   = errors.NewKind("procedure %s expects %d argument(s), got %d")
	ProcedureInvalidOutput      = errors.NewKind("procedure %s has no output named `%s`")
	UnknownFunction             = errors.NewKind("unknown function: %s")
	InvalidUseOfAggregation     = errors.NewKind("invalid use of aggregating function %s")
	InvalidUsageOfStarParameter = errors.NewKind("`*` is only valid as the sole argument to count()")
	InvalidUsageOfDistinctStar  = errors.NewKind("DISTINCT cannot be combined with `*`")
)

// Union/subquery errors.
var (
	UnionMissingReturns           = errors.NewKind("every branch of a UNION must end with a RETURN clause")
	UnionMismatchedReturns        = errors.NewKind("all branches of a UNION must return the same result columns")
	UnionCombination              = errors.NewKind("cannot mix UNION and UNION ALL in the same query")
	CallSubqueryInvalidReferences = errors.NewKind("CALL subquery references variable `%s` not visible at this point")
)

// Miscellaneous.
var (
	LimitMustBeNonNegative = errors.NewKind("LIMIT must be a non-negative integer")
	SkipMustBeNonNegative  = errors.NewKind("SKIP must be a non-negative integer")
	DeleteInvalidArguments = errors.NewKind("DELETE arguments must be node, relationship, or path expressions")
	RemoveInvalidInput     = errors.NewKind("REMOVE target must be a label or a property")
	SetLhsNonAlias         = errors.NewKind("left-hand side of SET must be a variable, property, or label")
	MissingEvalExpInReduce = errors.NewKind("reduce() requires an accumulator initializer and an evaluation expression")
	ForeachInvalidBody     = errors.NewKind("FOREACH body may only contain updating clauses")
)

// ReservedAliasPrefix resolves the `@`-prefix Open Question: user-written
// aliases starting with `@` collide with the generator's own anonymous
// naming scheme and are rejected outright rather than silently shadowed.
var ReservedAliasPrefix = errors.NewKind("alias `%s` uses the reserved `@` prefix")
