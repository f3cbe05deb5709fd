// Package registry provides the default, in-memory implementations of the
// procedure and function registries the validator consults: pure lookup
// tables over signatures, with no execution behind them.
package registry

import "sync"

// Procedure describes one callable procedure's signature: how many
// arguments it takes, whether it writes, and what names it yields.
type Procedure struct {
	Name     string
	Argc     int
	Variadic bool
	ReadOnly bool
	Outputs  []string
}

// HasOutput reports whether name is one of this procedure's declared
// outputs.
func (p Procedure) HasOutput(name string) bool {
	for _, o := range p.Outputs {
		if o == name {
			return true
		}
	}
	return false
}

// Procedures is a concurrency-safe registry of known procedures, consulted
// by CALL/YIELD validation.
type Procedures struct {
	mu    sync.RWMutex
	procs map[string]Procedure
}

// NewProcedures returns a registry seeded with a representative set of
// built-in procedures.
func NewProcedures() *Procedures {
	r := &Procedures{procs: make(map[string]Procedure)}
	for _, p := range defaultProcedures {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a procedure definition.
func (r *Procedures) Register(p Procedure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[p.Name] = p
}

// Lookup returns the procedure named name, if registered.
func (r *Procedures) Lookup(name string) (Procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procs[name]
	return p, ok
}

var defaultProcedures = []Procedure{
	{Name: "db.labels", Argc: 0, ReadOnly: true, Outputs: []string{"label"}},
	{Name: "db.relationshipTypes", Argc: 0, ReadOnly: true, Outputs: []string{"relationshipType"}},
	{Name: "db.propertyKeys", Argc: 0, ReadOnly: true, Outputs: []string{"propertyKey"}},
	{Name: "db.indexes", Argc: 0, ReadOnly: true, Outputs: []string{"label", "properties", "status"}},
	{Name: "algo.pageRank", Argc: 2, ReadOnly: true, Outputs: []string{"node", "score"}},
	{Name: "algo.wcc", Argc: 1, ReadOnly: true, Outputs: []string{"node", "component"}},
	{Name: "algo.bfs", Argc: 3, ReadOnly: true, Outputs: []string{"nodes"}},
	{Name: "db.create.setNodeVectorIndex", Argc: -1, Variadic: true, Outputs: []string{}},
}
