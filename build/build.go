// Package build implements the AST Builder: it drives the lexical parser
// collaborator, selects the single statement root, and wraps the result in
// a reference-counted ast.Handle enriched with an annotation context.
package build

import (
	"bytes"

	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/kinds"
	"github.com/cyquery/frontend/parser"
)

// Parse reports kinds.EmptyQuery when queryText is empty once whitespace
// and trailing semicolons are removed; otherwise it hands the full,
// untrimmed text to the lexical parser in single-statement mode (the parser
// itself accepts trailing semicolons).
// A non-STATEMENT root, multiple statements, or lexer-level diagnostics are
// all reported as errors grounded in kinds.
func Parse(filename string, queryText []byte) (*parser.Result, error) {
	trimmed := bytes.TrimRight(bytes.TrimSpace(queryText), ";")
	trimmed = bytes.TrimSpace(trimmed)
	if len(trimmed) == 0 {
		return nil, kinds.EmptyQuery.New()
	}

	res := parser.Parse(filename, queryText)

	if res.Errors().Len() > 0 {
		first := res.Errors().First()
		ctxText, ctxOff := first.Context()
		return nil, kinds.ParserError.Wrap(first, positionalMessage(first.Error(), ctxText, ctxOff))
	}

	if !res.EOF() {
		return nil, kinds.MultipleStatements.New()
	}

	if res.NRoots() == 0 {
		return nil, kinds.EmptyQuery.New()
	}

	root := res.Root(0)
	if root.Kind != parser.RootStatement {
		return nil, kinds.UnsupportedQueryType.New("non-statement root")
	}

	return res, nil
}

// positionalMessage folds a lexer error's message and surrounding context
// slice into the single string kinds.ParserError's template expects. The
// wrapped cause (the original errors.Error) still carries line/column/
// offset for callers that want them individually.
func positionalMessage(msg, context string, ctxOffset int) string {
	if context == "" {
		return msg
	}
	return msg + " (near: " + context + ")"
}

// Build creates a master ast.Handle from a parse-result: refcount 1, a
// fresh annotation context over the original source, and the query body
// enriched with name annotations (aliases and declaration sites) so the
// rewriter and validator never need to re-derive them. Returns
// kinds.ReservedAliasPrefix if the parsed tree carries a user alias
// beginning with `@`, the prefix reserved for generated names. The scanner
// does not accept `@` in identifiers, so query text that writes such an
// alias already fails in Parse with a syntax error.
func Build(res *parser.Result) (*ast.Handle, error) {
	root := res.Root(0)
	ctx := ast.NewContext(res.Source())
	if err := enrich(root.Query, ctx); err != nil {
		return nil, err
	}
	h := ast.NewMasterHandle(root.Query, ctx)
	return h, nil
}

// enrich walks the query body once, assigning a canonical alias to every
// pattern element and declaring every bound name so later lookups by the
// rewriter and validator resolve without re-walking. Rejects any
// user-written alias that starts with the reserved `@` prefix before it
// is ever declared, so it can never collide with a generated name.
func enrich(q *ast.Query, ctx *ast.Context) error {
	for _, sq := range q.Single {
		for _, clause := range sq.Clauses {
			var werr error
			ast.Walk(clause, func(n ast.Node) bool {
				switch p := n.(type) {
				case *ast.NodePattern:
					if werr = checkReservedAlias(p.Var); werr != nil {
						return false
					}
					alias := ctx.Alias(n, p.Var)
					ctx.Declare(alias, n)
				case *ast.RelPattern:
					if werr = checkReservedAlias(p.Var); werr != nil {
						return false
					}
					alias := ctx.Alias(n, p.Var)
					ctx.Declare(alias, n)
				case *ast.PatternPath:
					if p.Var != "" {
						if werr = checkReservedAlias(p.Var); werr != nil {
							return false
						}
						alias := ctx.Alias(n, p.Var)
						ctx.Declare(alias, n)
					}
				case *ast.ProjectionItem:
					if p.Alias != "" {
						if werr = checkReservedAlias(p.Alias); werr != nil {
							return false
						}
						ctx.Declare(p.Alias, p.Expr)
					}
				}
				return true
			}, nil)
			if werr != nil {
				return werr
			}
		}
	}
	return nil
}

// checkReservedAlias rejects a user-written name that starts with `@`, the
// prefix reserved for generated names (anonymous pattern variables, the
// rewriter's synthesized CALL-subquery export names).
func checkReservedAlias(name string) error {
	if len(name) > 0 && name[0] == '@' {
		return kinds.ReservedAliasPrefix.New(name)
	}
	return nil
}
