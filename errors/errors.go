// Package errors defines the positional diagnostic type shared by the
// scanner and parser: an Error carries a source position, a surrounding
// context slice, and a message, and a List accumulates many of them so the
// first one can win without discarding the rest for display.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cyquery/frontend/token"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain assignable to target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Error is a positional diagnostic produced by the lexer or parser.
type Error interface {
	error
	Position() token.Pos
	// Context returns the raw source text surrounding the error and the
	// byte offset within that slice at which the error begins.
	Context() (text string, offset int)
}

var _ Error = &posError{}

type posError struct {
	pos     token.Pos
	msg     string
	context string
	ctxOff  int
}

func (e *posError) Error() string             { return e.msg }
func (e *posError) Position() token.Pos       { return e.pos }
func (e *posError) Context() (string, int)    { return e.context, e.ctxOff }
func (e *posError) Unwrap() error             { return nil }

// Newf creates a positional Error with no surrounding-context slice.
func Newf(p token.Pos, format string, args ...interface{}) Error {
	return &posError{pos: p, msg: fmt.Sprintf(format, args...)}
}

// NewfContext creates a positional Error carrying the raw source line (or
// other bounded window) around p, and the offset of p within that window.
func NewfContext(p token.Pos, context string, ctxOffset int, format string, args ...interface{}) Error {
	return &posError{pos: p, msg: fmt.Sprintf(format, args...), context: context, ctxOff: ctxOffset}
}

// List is a list of Errors. The zero value is an empty list ready to use.
type List []Error

// Add appends err to the list.
func (p *List) Add(err Error) { *p = append(*p, err) }

// AddNewf appends a new positional error built from format and args.
func (p *List) AddNewf(pos token.Pos, format string, args ...interface{}) {
	p.Add(Newf(pos, format, args...))
}

// Reset empties the list.
func (p *List) Reset() { *p = (*p)[:0] }

// Len reports the number of accumulated errors.
func (p List) Len() int { return len(p) }

// Sort orders the list by source position, then by message.
func (p List) Sort() {
	slices.SortFunc(p, func(a, b Error) int {
		if c := comparePos(a.Position(), b.Position()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

func comparePos(a, b token.Pos) int {
	if a == b {
		return 0
	}
	if !a.IsValid() {
		return -1
	}
	if !b.IsValid() {
		return +1
	}
	pa, pb := a.Position(), b.Position()
	if c := cmp.Compare(pa.Offset, pb.Offset); c != 0 {
		return c
	}
	return cmp.Compare(pa.Filename, pb.Filename)
}

// Err returns an error equivalent to the list, or nil if it is empty.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

func (p List) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", p[0].Error(), len(p)-1)
	}
}

// First returns the first accumulated error, or nil.
func (p List) First() Error {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Strings renders every error in the list as "pos: message" on its own line.
func (p List) Strings() []string {
	lines := make([]string, len(p))
	for i, e := range p {
		pos := e.Position()
		if pos.IsValid() {
			lines[i] = fmt.Sprintf("%s: %s", pos, e.Error())
		} else {
			lines[i] = e.Error()
		}
	}
	return lines
}

// String joins every error in the list, one per line.
func (p List) String() string { return strings.Join(p.Strings(), "\n") }
