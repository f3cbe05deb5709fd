// Package parser implements the lexical-parser collaborator the AST
// builder depends on: it turns query text into a Result carrying zero or
// more tagged roots, a list of positional errors, and an indication of
// whether the whole input was consumed. The AST builder depends only on
// this public shape (RootKind, Result, Root, errors.List), never on
// scanning internals.
package parser

import (
	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/errors"
	"github.com/cyquery/frontend/token"
)

// RootKind tags one top-level item returned by the parser.
type RootKind int

const (
	// RootComment is a skipped top-level comment.
	RootComment RootKind = iota
	// RootStatement is a parsed query; only these carry a non-nil Query.
	RootStatement
)

// Root is one top-level item of a Result.
type Root struct {
	Kind  RootKind
	Pos   token.Pos
	Query *ast.Query // non-nil iff Kind == RootStatement
}

// Result is the opaque product of parsing one query text: an ordered list
// of roots, the errors encountered, and whether the parser consumed the
// entire input (false signals trailing content, e.g. a second statement).
type Result struct {
	file       *token.File
	src        []byte
	roots      []Root
	errs       errors.List
	consumed   bool
}

// NRoots returns the number of top-level roots in the result.
func (r *Result) NRoots() int { return len(r.roots) }

// Root returns the i'th top-level root.
func (r *Result) Root(i int) Root { return r.roots[i] }

// Errors returns the accumulated lexical/syntax errors, if any.
func (r *Result) Errors() errors.List { return r.errs }

// EOF reports whether the parser consumed the entire input. When false,
// there is unparsed trailing content after the first statement, which the
// AST builder surfaces as MultipleStatements.
func (r *Result) EOF() bool { return r.consumed }

// File returns the token.File backing this result's positions.
func (r *Result) File() *token.File { return r.file }

// Source returns the raw query text the result was parsed from.
func (r *Result) Source() []byte { return r.src }

// Parse parses queryText in single-statement mode: it parses at most one
// statement as a RootStatement entry (comments are skipped by the scanner,
// so no RootComment entry is produced). Trailing semicolons are consumed;
// any other non-whitespace, non-comment content after that statement is
// left unconsumed and reported via EOF returning false,
// mirroring a bison-generated single-statement parser's behavior on
// multi-statement input.
func Parse(filename string, queryText []byte) *Result {
	file := token.NewFile(filename, len(queryText))
	p := &parser{}
	p.init(file, queryText)
	return p.parseResult()
}
