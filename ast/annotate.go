package ast

import "fmt"

// Context is the Annotation-Context Collection: a set of side tables keyed
// by AST node identity, shared by the master handle and every segment
// derived from it. It canonicalizes aliases (generating `@anon_N` names for
// nodes the user left unnamed), caches stringification, and tracks which
// node declared a given name so later references can resolve back to it.
type Context struct {
	src []byte

	aliases map[Node]string
	strs    map[Node]string
	refs    map[string]Node
	anonSeq int
}

// NewContext builds an empty annotation context over src, the original
// query text used for source-range slicing in ToString.
func NewContext(src []byte) *Context {
	return &Context{
		aliases: make(map[Node]string),
		strs:    make(map[Node]string),
		refs:    make(map[string]Node),
		src:     src,
	}
}

// Alias returns node's canonical alias. If userAlias is non-empty it is
// adopted and cached; otherwise a fresh `@anon_N` name is generated once
// and returned on every subsequent call for the same node.
func (c *Context) Alias(node Node, userAlias string) string {
	if a, ok := c.aliases[node]; ok {
		return a
	}
	a := userAlias
	if a == "" {
		a = c.nextAnon()
	}
	c.aliases[node] = a
	return a
}

// HasAlias reports whether node already has a canonical alias recorded,
// without generating one.
func (c *Context) HasAlias(node Node) (string, bool) {
	a, ok := c.aliases[node]
	return a, ok
}

func (c *Context) nextAnon() string {
	c.anonSeq++
	return fmt.Sprintf("@anon_%d", c.anonSeq)
}

// ToString renders node the way diagnostics and generated column names do:
// a pattern element or path yields its canonical alias (real or
// generated); anything else yields the raw source text it spans. The
// result is cached, so repeated calls for the same node are idempotent
// even across multiple generated aliases elsewhere in the query.
func (c *Context) ToString(node Node) string {
	if s, ok := c.strs[node]; ok {
		return s
	}
	var s string
	switch n := node.(type) {
	case *NodePattern:
		s = c.Alias(node, n.Var)
	case *RelPattern:
		s = c.Alias(node, n.Var)
	case *PatternPath:
		s = c.Alias(node, n.Var)
	case *Ident:
		s = n.Name
	default:
		s = c.sourceSlice(node)
	}
	c.strs[node] = s
	return s
}

func (c *Context) sourceSlice(node Node) string {
	from, to := node.Pos().Offset(), node.End().Offset()
	if from < 0 || to > len(c.src) || from > to {
		return ""
	}
	return string(c.src[from:to])
}

// Declare records node as the canonical declaration site of name, so a
// later identifier reference can be resolved back to the pattern element
// or projection that introduced it.
func (c *Context) Declare(name string, node Node) { c.refs[name] = node }

// Resolve returns the node that declared name, if any.
func (c *Context) Resolve(name string) (Node, bool) {
	n, ok := c.refs[name]
	return n, ok
}

// Reset clears the reference map between independent scopes (entering a
// fresh UNION branch or CALL subquery) without discarding alias or
// stringification caches, which remain valid for the lifetime of the
// parse result.
func (c *Context) Reset() {
	c.refs = make(map[string]Node)
}
