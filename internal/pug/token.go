package pug

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Structure
	TokenEOF     TokenType = iota // end of file
	TokenNewline                  // line break at the same indentation
	TokenIndent                   // indentation increased
	TokenOutdent                  // indentation decreased by one level

	// Tag heads
	TokenTag             // div, span, MyComponent
	TokenInterpolatedTag // #{expr}
	TokenID              // #id
	TokenClass           // .class
	TokenAttrs           // (name=value ...)
	TokenAndAttributes   // &attributes(expr)
	TokenSlash           // / (self closing)
	TokenColon           // : (block expansion)

	// Content
	TokenText      // plain text (rest of line or piped)
	TokenTextBlock // dot block: tag.
	TokenCode      // - code, = code, != code
	TokenComment   // // comment or //- comment

	// Keywords
	TokenIf      // if expr
	TokenElseIf  // else if expr
	TokenElse    // else
	TokenUnless  // unless expr
	TokenEach    // each val, key in obj
	TokenCase    // case expr
	TokenWhen    // when expr
	TokenDefault // default
	TokenMixin   // mixin name(args)
	TokenCall    // +name(args)
	TokenBlock   // block / block name
	TokenYield   // yield
	TokenFilter  // :name
	TokenDoctype // doctype html
	TokenInclude // include path
	TokenExtends // extends path
)

var tokenNames = map[TokenType]string{
	TokenEOF:             "EOF",
	TokenNewline:         "Newline",
	TokenIndent:          "Indent",
	TokenOutdent:         "Outdent",
	TokenTag:             "Tag",
	TokenInterpolatedTag: "InterpolatedTag",
	TokenID:              "ID",
	TokenClass:           "Class",
	TokenAttrs:           "Attrs",
	TokenAndAttributes:   "&attributes",
	TokenSlash:           "/",
	TokenColon:           ":",
	TokenText:            "Text",
	TokenTextBlock:       "TextBlock",
	TokenCode:            "Code",
	TokenComment:         "Comment",
	TokenIf:              "if",
	TokenElseIf:          "else if",
	TokenElse:            "else",
	TokenUnless:          "unless",
	TokenEach:            "each",
	TokenCase:            "case",
	TokenWhen:            "when",
	TokenDefault:         "default",
	TokenMixin:           "mixin",
	TokenCall:            "+call",
	TokenBlock:           "block",
	TokenYield:           "yield",
	TokenFilter:          "filter",
	TokenDoctype:         "doctype",
	TokenInclude:         "include",
	TokenExtends:         "extends",
}

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token represents a lexical token with its value and source position.
// Structured tokens carry extra fields: attribute lists, each bindings,
// mixin arguments and raw text blocks.
type Token struct {
	Type   TokenType
	Val    string
	Line   int
	Column int

	Attrs   []*Attribute // TokenAttrs
	Key     string       // TokenEach: key binding
	Obj     string       // TokenEach: iterable expression
	Args    string       // TokenMixin, TokenCall
	Lines   []string     // TokenTextBlock, TokenComment, TokenFilter, multi-line TokenCode
	Buffer  bool         // TokenCode, TokenComment
	Escape  bool         // TokenCode: value must be escaped
	Dynamic bool         // TokenCall, TokenMixin: name is an expression
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Val == "" {
		return fmt.Sprintf("%s at %d:%d", t.Type, t.Line, t.Column)
	}
	val := t.Val
	if len(val) > 20 {
		val = val[:17] + "..."
	}
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, val, t.Line, t.Column)
}

// Position represents a source code location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted position string.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
