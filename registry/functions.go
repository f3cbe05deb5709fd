package registry

import "sync"

// Functions is the arithmetic/aggregate function registry the validator
// consults for existence and aggregation-ness, matching the
// exists/is_aggregate contract of spec's arithmetic-function registry.
type Functions struct {
	mu         sync.RWMutex
	scalar     map[string]bool
	aggregates map[string]bool
}

// NewFunctions returns a registry seeded with a representative set of
// scalar and aggregate functions.
func NewFunctions() *Functions {
	f := &Functions{
		scalar:     map[string]bool{},
		aggregates: map[string]bool{},
	}
	for _, name := range defaultScalarFunctions {
		f.scalar[name] = true
	}
	for _, name := range defaultAggregateFunctions {
		f.aggregates[name] = true
	}
	return f
}

// Exists reports whether name is a known scalar or aggregate function.
func (f *Functions) Exists(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scalar[name] || f.aggregates[name]
}

// IsAggregate reports whether name collapses rows (count, sum, ...).
func (f *Functions) IsAggregate(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.aggregates[name]
}

// RegisterScalar adds a scalar function name at runtime.
func (f *Functions) RegisterScalar(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scalar[name] = true
}

// RegisterAggregate adds an aggregate function name at runtime.
func (f *Functions) RegisterAggregate(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aggregates[name] = true
}

var defaultScalarFunctions = []string{
	"toInteger", "toFloat", "toString", "toBoolean",
	"coalesce", "id", "labels", "type", "properties",
	"length", "size", "head", "tail", "last", "reverse",
	"startNode", "endNode", "exists", "abs", "ceil", "floor", "round", "sign",
	"upper", "lower", "trim", "ltrim", "rtrim", "left", "right", "substring",
	"replace", "split", "keys", "range", "timestamp",
}

var defaultAggregateFunctions = []string{
	"count", "sum", "avg", "min", "max", "collect",
	"stDev", "stDevP", "percentileCont", "percentileDisc",
}
