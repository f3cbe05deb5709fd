package ast

import "sync/atomic"

// RefMap records, for a segment boundary, which names used downstream of
// that boundary must remain visible across it (spec: "a reference map of
// names used downstream").
type RefMap map[string]bool

// Handle is a shared, reference-counted owner of one query body. A master
// handle owns a Context and the original parsed Query outright; a segment
// handle shares the master's Context but owns a synthesized Query limited
// to a half-open slice of the master's top-level clauses.
type Handle struct {
	root      *Query
	synthetic bool // true for segment/derivative handles
	ctx       *Context
	refs      RefMap

	refcount int32

	master *Handle // nil for a master handle itself
}

// NewMasterHandle wraps root as a master handle with refcount 1, owning
// ctx outright.
func NewMasterHandle(root *Query, ctx *Context) *Handle {
	return &Handle{root: root, ctx: ctx, refcount: 1}
}

// Root returns the query body this handle wraps.
func (h *Handle) Root() *Query { return h.root }

// Context returns the shared annotation-context collection.
func (h *Handle) Context() *Context { return h.ctx }

// Synthetic reports whether this handle's root was synthesized (a
// segment) rather than borrowed directly from a parse result.
func (h *Handle) Synthetic() bool { return h.synthetic }

// Refs returns the reference map attached at this handle's segment
// boundary, or nil if none was built.
func (h *Handle) Refs() RefMap { return h.refs }

// Retain atomically increments the refcount and returns h, so callers can
// chain it at a borrow site.
func (h *Handle) Retain() *Handle {
	atomic.AddInt32(&h.refcount, 1)
	return h
}

// Release atomically decrements the refcount. When it reaches zero, a
// segment handle disposes only its synthesized root (the master and its
// Context, still retained elsewhere, are untouched); a master handle
// disposes its Context along with the parsed root. Releasing a handle
// whose count is already zero is a caller bug; behavior in that case is
// deliberately left undefined, matching a bare atomic-decrement primitive.
func (h *Handle) Release() {
	if atomic.AddInt32(&h.refcount, -1) > 0 {
		return
	}
	h.root = nil
	master := h.master
	if master == nil {
		h.ctx = nil
	}
	h.master = nil
	h.refs = nil
	if master != nil {
		master.Release()
	}
}

// Segment builds a new handle over the half-open clause range [start, end)
// of master's top-level clauses, sharing master's Context. When the
// clause at index end is a WITH or RETURN, it is folded into the
// synthesized segment's reference map so names crossing the segment
// boundary stay visible to validation on either side, per the spec's
// segment-extraction rule.
func Segment(master *Handle, start, end int) *Handle {
	clauses := master.root.Single[0].Clauses
	sliced := make([]Clause, end-start)
	copy(sliced, clauses[start:end])

	seg := &SingleQuery{Clauses: sliced}
	if len(sliced) > 0 {
		seg.Span = NewBase(sliced[0].Pos(), sliced[len(sliced)-1].End())
	}
	root := &Query{Single: []*SingleQuery{seg}}
	if len(sliced) > 0 {
		root.Span = seg.Span
	}

	h := &Handle{
		root:      root,
		synthetic: true,
		ctx:       master.ctx,
		refcount:  1,
		master:    master,
	}
	h.refs = buildRefMap(clauses, end)
	master.Retain()
	return h
}

// buildRefMap collects the identifiers referenced by every clause after
// index boundary and, when the clause at boundary is a WITH or RETURN, by
// that clause too — the names a preceding segment must keep bound. A
// boundary clause of any other kind contributes nothing itself.
func buildRefMap(clauses []Clause, boundary int) RefMap {
	if boundary >= len(clauses) {
		return RefMap{}
	}
	refs := RefMap{}
	switch clauses[boundary].Kind() {
	case KindWith, KindReturn:
		for _, id := range Identifiers(clauses[boundary]) {
			refs[id.Name] = true
		}
	}
	for _, c := range clauses[boundary+1:] {
		for _, id := range Identifiers(c) {
			refs[id.Name] = true
		}
	}
	return refs
}
