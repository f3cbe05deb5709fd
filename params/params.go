// Package params strips an optional `CYPHER { key: value, ... }` prefix off
// a query's text into a parameter map, returning the untouched remainder of
// the query body for the lexical parser to consume.
package params

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/spf13/cast"
)

var headerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\bCYPHER\b|\btrue\b|\bfalse\b|\bnull\b`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"|'([^'\\]|\\.)*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}:,\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// headerAST is the CYPHER { ... } prefix grammar.
type headerAST struct {
	Entries []*entryAST `parser:"\"CYPHER\" \"{\" ( @@ ( \",\" @@ )* )? \"}\""`
}

type entryAST struct {
	Key   string     `parser:"@Ident \":\""`
	Value *valueAST  `parser:"@@"`
}

type valueAST struct {
	Str   *string     `parser:"  @String"`
	Float *string     `parser:"| @Float"`
	Int   *string     `parser:"| @Int"`
	True  bool        `parser:"| @\"true\""`
	False bool        `parser:"| @\"false\""`
	Null  bool        `parser:"| @\"null\""`
	List  []*valueAST `parser:"| \"[\" ( @@ ( \",\" @@ )* )? \"]\""`
}

// toAny coerces a captured literal to its runtime type with cast, the same
// tolerant-conversion helper the teacher's session-variable layer uses
// (numeric literals are captured as raw strings by the lexer above; cast
// does the string -> int64/float64 conversion rather than strconv directly,
// so a malformed literal degrades to zero instead of panicking).
func (v *valueAST) toAny() any {
	switch {
	case v.Str != nil:
		return unquote(*v.Str)
	case v.Float != nil:
		return cast.ToFloat64(*v.Float)
	case v.Int != nil:
		return cast.ToInt64(*v.Int)
	case v.True:
		return true
	case v.False:
		return false
	case v.Null:
		return nil
	case v.List != nil:
		out := make([]any, len(v.List))
		for i, e := range v.List {
			out[i] = e.toAny()
		}
		return out
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

var headerParser = participle.MustBuild[headerAST](
	participle.Lexer(headerLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
)

// Strip looks for a leading "CYPHER { ... }" header in queryText. When
// present, it parses the header into a parameter map and returns the
// remaining query text with the header removed; when absent, it returns an
// empty map and the original text unchanged.
func Strip(queryText string) (map[string]any, string, error) {
	trimmed := strings.TrimLeft(queryText, " \t\r\n")
	if !strings.HasPrefix(strings.ToUpper(trimmed), "CYPHER") {
		return map[string]any{}, queryText, nil
	}

	end, err := headerExtent(trimmed)
	if err != nil {
		return nil, "", err
	}

	header := trimmed[:end]
	rest := trimmed[end:]

	hdr, err := headerParser.ParseString("", header)
	if err != nil {
		return nil, "", err
	}

	out := make(map[string]any, len(hdr.Entries))
	for _, e := range hdr.Entries {
		out[e.Key] = e.Value.toAny()
	}
	return out, rest, nil
}

// headerExtent finds the byte offset just past the header's closing brace,
// tracking nesting depth so a header containing a list value's own
// brackets doesn't terminate early.
func headerExtent(text string) (int, error) {
	depth := 0
	inString := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, &MalformedHeaderError{Text: text}
}

// MalformedHeaderError reports an unterminated CYPHER { ... } header.
type MalformedHeaderError struct{ Text string }

func (e *MalformedHeaderError) Error() string {
	return "params: unterminated CYPHER header"
}
