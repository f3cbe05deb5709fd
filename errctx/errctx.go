// Package errctx provides the explicit, caller-owned error slot the
// validator reports into (Parse and Build return ordinary errors). It
// replaces a thread-local/global single-error slot with an ordinary value
// the caller constructs, passes by pointer, and inspects when validation
// stops early.
package errctx

import "fmt"

// Context carries at most one error: the first one reported. Every
// subsequent Report call is a no-op, so a deeply nested walk can report
// freely without worrying about clobbering the error that actually matters.
type Context struct {
	err   error
	phase string
}

// New returns an empty Context. phase labels the pipeline stage using it,
// for diagnostics only (e.g. "validate", "rewrite").
func New(phase string) *Context {
	return &Context{phase: phase}
}

// Report records err as the failure if none has been recorded yet. It
// returns true the first time it is called with a non-nil error (the
// "cooperative BREAK" signal: the caller should stop walking), and false on
// every call after that, including when err is nil.
func (c *Context) Report(err error) bool {
	if err == nil || c.err != nil {
		return false
	}
	c.err = err
	return true
}

// Reportf is Report with fmt.Errorf-style formatting.
func (c *Context) Reportf(format string, args ...any) bool {
	return c.Report(fmt.Errorf(format, args...))
}

// Failed reports whether an error has already been recorded.
func (c *Context) Failed() bool { return c.err != nil }

// Err returns the first reported error, or nil if none was reported.
func (c *Context) Err() error { return c.err }

// Phase returns the pipeline stage label this context was created with.
func (c *Context) Phase() string { return c.phase }
