// Package ast declares the node types used to represent a parsed graph
// query: clauses, patterns, and expressions, plus the reference-counted
// handle that owns a query's root and the annotation contexts attached to
// it. Node names follow the clause/expression vocabulary used throughout
// the validator and rewriter rather than any particular grammar production
// numbering.
package ast

import "github.com/cyquery/frontend/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Clause is implemented by every top-level query clause.
type Clause interface {
	Node
	clauseNode()
	// Kind identifies the clause for dispatch purposes.
	Kind() ClauseKind
}

// ClauseKind enumerates the clause kinds the validator and rewriter
// dispatch on.
type ClauseKind int

const (
	KindMatch ClauseKind = iota
	KindCreate
	KindMerge
	KindSet
	KindRemove
	KindDelete
	KindWith
	KindReturn
	KindUnwind
	KindForeach
	KindCall
	KindCallSubquery
)

func (k ClauseKind) String() string {
	switch k {
	case KindMatch:
		return "MATCH"
	case KindCreate:
		return "CREATE"
	case KindMerge:
		return "MERGE"
	case KindSet:
		return "SET"
	case KindRemove:
		return "REMOVE"
	case KindDelete:
		return "DELETE"
	case KindWith:
		return "WITH"
	case KindReturn:
		return "RETURN"
	case KindUnwind:
		return "UNWIND"
	case KindForeach:
		return "FOREACH"
	case KindCall:
		return "CALL"
	case KindCallSubquery:
		return "CALL {}"
	default:
		return "UNKNOWN"
	}
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

type Span struct {
	From, To token.Pos
}

func (b Span) Pos() token.Pos { return b.From }
func (b Span) End() token.Pos { return b.To }

// NewBase builds the embedded position pair shared by every node literal
// constructed outside the package (the parser, the rewriter).
func NewBase(from, to token.Pos) Span { return Span{From: from, To: to} }

// ---------------------------------------------------------------------------
// Query / SingleQuery

// Query is the outermost node: one or more SingleQuery branches joined by
// UNION, each branch an independent scope (spec: "On UNION, discard the
// environment entirely").
type Query struct {
	Span
	Single []*SingleQuery
	// UnionAll[i] describes the union joining Single[i] and Single[i+1]:
	// true for UNION ALL, false for plain UNION.
	UnionAll []bool
}

// SingleQuery is a linear sequence of clauses sharing one scope lineage.
type SingleQuery struct {
	Span
	Clauses []Clause
}

// ---------------------------------------------------------------------------
// Patterns

// Direction describes a relationship pattern's arrow orientation.
type Direction int

const (
	DirEither Direction = iota
	DirOut              // (a)-[]->(b)
	DirIn                // (a)<-[]-(b)
)

// NodePattern is a single node in a pattern path: (var:Label {props}).
type NodePattern struct {
	Span
	Var    string
	Labels []string
	Props  *MapLiteral
}

func (n *NodePattern) patternElem() {}

// VarLength describes a variable-length relationship's hop range, e.g.
// *2..5, *.., *3.
type VarLength struct {
	Min, Max *int64
}

// RelPattern is a single relationship in a pattern path:
// -[var:TYPE*min..max {props}]->.
type RelPattern struct {
	Span
	Var       string
	Types     []string
	Dir       Direction
	VarLength *VarLength
	Props     *MapLiteral
}

func (r *RelPattern) patternElem() {}

// PatternElement is a NodePattern or RelPattern within a PatternPath.
type PatternElement interface {
	Node
	patternElem()
}

// ShortestKind marks a pattern path as wrapped in shortestPath(...) or
// allShortestPaths(...).
type ShortestKind int

const (
	ShortestNone ShortestKind = iota
	ShortestSingle
	ShortestAll
)

// PatternPath is a chain of alternating node/relationship patterns,
// optionally bound to a path variable and optionally wrapped by a
// shortest-path function.
type PatternPath struct {
	Span
	Var      string
	Shortest ShortestKind
	Elements []PatternElement
}

// Nodes returns every NodePattern in the path, in source order.
func (p *PatternPath) Nodes() []*NodePattern {
	var out []*NodePattern
	for _, e := range p.Elements {
		if n, ok := e.(*NodePattern); ok {
			out = append(out, n)
		}
	}
	return out
}

// Rels returns every RelPattern in the path, in source order.
func (p *PatternPath) Rels() []*RelPattern {
	var out []*RelPattern
	for _, e := range p.Elements {
		if r, ok := e.(*RelPattern); ok {
			out = append(out, r)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Clauses

// MatchClause reads the graph via one or more pattern paths.
type MatchClause struct {
	Span
	Optional bool
	Patterns []*PatternPath
	Where    Expr
}

func (*MatchClause) clauseNode()       {}
func (*MatchClause) Kind() ClauseKind { return KindMatch }

// CreateClause creates one or more pattern paths.
type CreateClause struct {
	Span
	Patterns []*PatternPath
}

func (*CreateClause) clauseNode()       {}
func (*CreateClause) Kind() ClauseKind { return KindCreate }

// MergeClause merges a single pattern path, with optional ON CREATE / ON
// MATCH SET actions.
type MergeClause struct {
	Span
	Pattern  *PatternPath
	OnCreate []*SetItem
	OnMatch  []*SetItem
}

func (*MergeClause) clauseNode()       {}
func (*MergeClause) Kind() ClauseKind { return KindMerge }

// SetItem is one assignment or label addition within SET / MERGE ON ... SET.
type SetItem struct {
	Span
	// Target is the LHS of a property assignment (identifier.property);
	// nil when this item is a label addition (SET n:Label) or a whole-
	// entity replacement (SET n = {...} / SET n += {...}).
	Target *PropertyAccess
	// Entity is set instead of Target for SET n = expr / SET n += expr /
	// SET n:Label forms.
	Entity   *Ident
	Labels   []string
	Add      bool // += instead of =
	Value    Expr
}

// RemoveItem is one removal target within REMOVE: identifier.property or
// identifier:Label.
type RemoveItem struct {
	Span
	Target *PropertyAccess
	Entity *Ident
	Labels []string
}

// SetClause updates properties and labels of already-bound entities.
type SetClause struct {
	Span
	Items []*SetItem
}

func (*SetClause) clauseNode()       {}
func (*SetClause) Kind() ClauseKind { return KindSet }

// RemoveClause removes properties and labels.
type RemoveClause struct {
	Span
	Items []*RemoveItem
}

func (*RemoveClause) clauseNode()       {}
func (*RemoveClause) Kind() ClauseKind { return KindRemove }

// DeleteClause deletes entities; Detach marks DETACH DELETE.
type DeleteClause struct {
	Span
	Detach bool
	Exprs  []Expr
}

func (*DeleteClause) clauseNode()       {}
func (*DeleteClause) Kind() ClauseKind { return KindDelete }

// ProjectionItem is one expression (with optional alias) in WITH/RETURN.
type ProjectionItem struct {
	Span
	Expr  Expr
	Alias string // "" if none given
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Span
	Expr Expr
	Desc bool
}

// WithClause re-projects the current row set, opening a fresh scope
// (spec: "except when the projection is *").
type WithClause struct {
	Span
	Distinct bool
	Star     bool
	Items    []*ProjectionItem
	Where    Expr
	OrderBy  []*OrderItem
	Skip     Expr
	Limit    Expr
}

func (*WithClause) clauseNode()       {}
func (*WithClause) Kind() ClauseKind { return KindWith }

// ReturnClause terminates a query with a projected row set.
type ReturnClause struct {
	Span
	Distinct bool
	Star     bool
	Items    []*ProjectionItem
	OrderBy  []*OrderItem
	Skip     Expr
	Limit    Expr
}

func (*ReturnClause) clauseNode()       {}
func (*ReturnClause) Kind() ClauseKind { return KindReturn }

// UnwindClause expands a list expression into rows bound to As.
type UnwindClause struct {
	Span
	List Expr
	As   string
}

func (*UnwindClause) clauseNode()       {}
func (*UnwindClause) Kind() ClauseKind { return KindUnwind }

// ForeachClause iterates a list, running Body (updating clauses only) once
// per element bound to Var.
type ForeachClause struct {
	Span
	Var  string
	List Expr
	Body []Clause
}

func (*ForeachClause) clauseNode()       {}
func (*ForeachClause) Kind() ClauseKind { return KindForeach }

// YieldItem is one projected procedure output, with optional alias.
type YieldItem struct {
	Span
	Name  string
	Alias string
}

// CallClause invokes a registered procedure.
type CallClause struct {
	Span
	Name  string
	Args  []Expr
	Yield []*YieldItem
}

func (*CallClause) clauseNode()       {}
func (*CallClause) Kind() ClauseKind { return KindCall }

// CallSubqueryClause runs Inner as an isolated scope (CALL { ... }).
type CallSubqueryClause struct {
	Span
	Inner *Query

	// Exported marks a returning CALL subquery whose import/export WITH
	// wrapper has already been synthesized by the rewriter, so a later
	// rewrite pass leaves it alone instead of wrapping it again.
	Exported bool
}

func (*CallSubqueryClause) clauseNode()       {}
func (*CallSubqueryClause) Kind() ClauseKind { return KindCallSubquery }

// ---------------------------------------------------------------------------
// Expressions

// Ident is a bare identifier reference.
type Ident struct {
	Span
	Name string
}

func (*Ident) exprNode() {}

// Param is a $name parameter reference.
type Param struct {
	Span
	Name string
}

func (*Param) exprNode() {}

// IntLit, FloatLit, StringLit, BoolLit, NullLit are basic literals.
type IntLit struct {
	Span
	Value int64
}
type FloatLit struct {
	Span
	Value float64
}
type StringLit struct {
	Span
	Value string
}
type BoolLit struct {
	Span
	Value bool
}
type NullLit struct{ Span }

func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NullLit) exprNode()   {}

// ListLit is a literal list: [e1, e2, ...].
type ListLit struct {
	Span
	Elems []Expr
}

func (*ListLit) exprNode() {}

// MapEntry is one key:value pair of a MapLiteral.
type MapEntry struct {
	Key   string
	Value Expr
}

// MapLiteral is a literal map/property map: {k: v, ...}.
type MapLiteral struct {
	Span
	Entries []MapEntry
}

func (*MapLiteral) exprNode() {}

// PropertyAccess is base.Prop.
type PropertyAccess struct {
	Span
	X    Expr
	Prop string
}

func (*PropertyAccess) exprNode() {}

// Subscript is base[Index] or base[Lo..Hi] (list slicing when Lo/Hi set).
type Subscript struct {
	Span
	X       Expr
	Index   Expr
	Lo, Hi  Expr
	IsSlice bool
}

func (*Subscript) exprNode() {}

// FunctionCall is name(args...), including COUNT(*) via Star and
// DISTINCT via Distinct.
type FunctionCall struct {
	Span
	Name     string
	Distinct bool
	Star     bool
	Args     []Expr
}

func (*FunctionCall) exprNode() {}

// BinaryExpr is X Op Y.
type BinaryExpr struct {
	Span
	Op   token.Kind
	X, Y Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is Op X (unary minus, NOT).
type UnaryExpr struct {
	Span
	Op token.Kind
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// ListComprehension is [Var IN List WHERE Where | Eval].
type ListComprehension struct {
	Span
	Var   string
	List  Expr
	Where Expr
	Eval  Expr // nil means the comprehension yields Var itself
}

func (*ListComprehension) exprNode() {}

// PatternComprehension is [p = pattern WHERE Where | Eval].
type PatternComprehension struct {
	Span
	Pattern *PatternPath
	Where   Expr
	Eval    Expr
}

func (*PatternComprehension) exprNode() {}

// Reduce is reduce(Acc = Init, Var IN List | Eval).
type Reduce struct {
	Span
	Acc  string
	Init Expr
	Var  string
	List Expr
	Eval Expr
}

func (*Reduce) exprNode() {}

// Star represents the bare `*` token used in RETURN/WITH projections and
// as the COUNT(*) / DISTINCT * operands; the validator rejects it
// everywhere except those two positions (spec 4.3.5).
type Star struct{ Span }

func (*Star) exprNode() {}

// CaseWhen is one WHEN/THEN arm of a CaseExpr.
type CaseWhen struct {
	When Expr
	Then Expr
}

// CaseExpr is CASE [Value] WHEN ... THEN ... [ELSE Else] END. Value is nil
// for the generic (boolean-condition) form.
type CaseExpr struct {
	Span
	Value Expr
	Whens []CaseWhen
	Else  Expr
}

func (*CaseExpr) exprNode() {}

// QuantifierOp identifies which list-predicate function a QuantifiedExpr
// evaluates: ANY, ALL, NONE, or SINGLE.
type QuantifierOp int

const (
	QuantifierAny QuantifierOp = iota
	QuantifierAll
	QuantifierNone
	QuantifierSingle
)

func (q QuantifierOp) String() string {
	switch q {
	case QuantifierAny:
		return "ANY"
	case QuantifierAll:
		return "ALL"
	case QuantifierNone:
		return "NONE"
	case QuantifierSingle:
		return "SINGLE"
	default:
		return "UNKNOWN"
	}
}

// QuantifiedExpr is ANY|ALL|NONE|SINGLE(Var IN List WHERE Where), a
// boolean-valued list predicate.
type QuantifiedExpr struct {
	Span
	Op    QuantifierOp
	Var   string
	List  Expr
	Where Expr
}

func (*QuantifiedExpr) exprNode() {}
