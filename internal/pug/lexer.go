package pug

import (
	"regexp"
	"strings"
)

// Lexer tokenizes indentation-significant template source. Unlike a
// character stream lexer it works line by line: indentation changes become
// Indent/Outdent tokens and raw regions (text blocks, comment bodies,
// filter bodies) are captured whole.
type Lexer struct {
	filename string
	lines    []string
	lineNo   int   // index of the line being lexed (0-based)
	base     int   // indentation of the logical line being lexed
	indents  []int // indentation stack, widths in characters
	indentCh byte  // ' ' or '\t' once established

	tokens []Token
	errors *ErrorList
}

// NewLexer creates a new Lexer for the given source.
func NewLexer(filename, source string) *Lexer {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.TrimPrefix(source, "\ufeff")
	return &Lexer{
		filename: filename,
		lines:    strings.Split(source, "\n"),
		indents:  []int{0},
		errors:   NewErrorList(),
	}
}

// Errors returns any errors encountered during lexing.
func (l *Lexer) Errors() *ErrorList {
	return l.errors
}

// Lex tokenizes the whole source. The returned slice always ends with EOF.
func (l *Lexer) Lex() []Token {
	first := true
	for ; l.lineNo < len(l.lines); l.lineNo++ {
		raw := l.lines[l.lineNo]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent, ok := l.measureIndent(raw)
		if !ok {
			continue
		}
		if !l.emitIndentation(indent, first) {
			continue
		}
		first = false
		l.base = indent
		l.lexLine(raw[indent:], indent+1)
	}
	line := len(l.lines)
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.tokens = append(l.tokens, Token{Type: TokenOutdent, Line: line, Column: 1})
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: line, Column: 1})
	return l.tokens
}

// position returns a Position on the current line.
func (l *Lexer) position(col int) Position {
	return Position{File: l.filename, Line: l.lineNo + 1, Column: col}
}

func (l *Lexer) errorf(col int, format string, args ...any) {
	err := NewErrorf(l.position(col), format, args...)
	if l.lineNo < len(l.lines) {
		err.Source = strings.TrimRight(l.lines[l.lineNo], " \t")
	}
	l.errors.Add(err)
}

func (l *Lexer) emit(typ TokenType, val string, col int) *Token {
	l.tokens = append(l.tokens, Token{Type: typ, Val: val, Line: l.lineNo + 1, Column: col})
	return &l.tokens[len(l.tokens)-1]
}

// measureIndent returns the number of leading indentation characters.
// Tabs and spaces cannot be mixed within one file.
func (l *Lexer) measureIndent(raw string) (int, bool) {
	n := 0
	for n < len(raw) && (raw[n] == ' ' || raw[n] == '\t') {
		if l.indentCh == 0 {
			l.indentCh = raw[n]
		} else if raw[n] != l.indentCh {
			l.errorf(n+1, "invalid indentation, you can use tabs or spaces but not both")
			return 0, false
		}
		n++
	}
	return n, true
}

func (l *Lexer) emitIndentation(indent int, first bool) bool {
	top := l.indents[len(l.indents)-1]
	switch {
	case indent > top:
		if first {
			l.errorf(1, "unexpected indentation on the first line")
			return false
		}
		l.indents = append(l.indents, indent)
		l.emit(TokenIndent, "", 1)
	case indent == top:
		if !first {
			l.emit(TokenNewline, "", 1)
		}
	default:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > indent {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(TokenOutdent, "", 1)
		}
		if l.indents[len(l.indents)-1] != indent {
			l.errorf(1, "inconsistent indentation, expected %d characters", l.indents[len(l.indents)-1])
			return false
		}
	}
	return true
}

// collectRawBlock consumes the lines indented deeper than base that follow
// the current line and returns them with the common indentation removed.
// Trailing blank lines are left for the main loop.
func (l *Lexer) collectRawBlock(base int) []string {
	last := l.lineNo
	for j := l.lineNo + 1; j < len(l.lines); j++ {
		line := l.lines[j]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if leadingWhitespace(line) <= base {
			break
		}
		last = j
	}
	if last == l.lineNo {
		return nil
	}
	block := l.lines[l.lineNo+1 : last+1]
	l.lineNo = last

	strip := -1
	for _, line := range block {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if w := leadingWhitespace(line); strip < 0 || w < strip {
			strip = w
		}
	}
	out := make([]string, len(block))
	for i, line := range block {
		if len(line) >= strip {
			out[i] = strings.TrimRight(line[strip:], " \t")
		}
	}
	return out
}

func leadingWhitespace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

var (
	eachPattern     = regexp.MustCompile(`^([\w$]+)(?:\s*,\s*([\w$]+))?\s+(?:in|of)\s+(.+)$`)
	tagNamePattern  = regexp.MustCompile(`^\w(?:[-:\w]*\w)?`)
	classPattern    = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*`)
	idPattern       = regexp.MustCompile(`^[\w-]+`)
	mixinPattern    = regexp.MustCompile(`^[\w-]+`)
	callAttrPattern = regexp.MustCompile(`^\s*[-\w]+ *=`)
	keywordPattern  = regexp.MustCompile(`^[a-z]+`)
	filterPattern   = regexp.MustCompile(`^[\w-]+`)
	blockModeRegexp = regexp.MustCompile(`^(?:(append|prepend|replace)\s+)?([\w-]+)$`)
)

// lexLine lexes one logical line. col is the 1-based column of content[0].
// Block expansion (`li: a text`) re-enters lexLine for the nested head.
func (l *Lexer) lexLine(content string, col int) {
	indent := l.base
	content = strings.TrimRight(content, " \t")

	switch {
	case strings.HasPrefix(content, "//"):
		buffer := !strings.HasPrefix(content, "//-")
		val := strings.TrimPrefix(content, "//")
		val = strings.TrimPrefix(val, "-")
		tok := l.emit(TokenComment, val, col)
		tok.Buffer = buffer
		tok.Lines = l.collectRawBlock(indent)
		return

	case content == "|" || strings.HasPrefix(content, "| "):
		l.emit(TokenText, strings.TrimPrefix(strings.TrimPrefix(content, "|"), " "), col)
		return

	case strings.HasPrefix(content, "<"):
		l.emit(TokenText, content, col)
		return

	case strings.HasPrefix(content, "-"):
		code := strings.TrimSpace(content[1:])
		tok := l.emit(TokenCode, code, col)
		if code == "" {
			tok.Lines = l.collectRawBlock(indent)
			tok.Val = strings.Join(tok.Lines, "\n")
		}
		return

	case strings.HasPrefix(content, "!="):
		tok := l.emit(TokenCode, strings.TrimSpace(content[2:]), col)
		tok.Buffer = true
		return

	case strings.HasPrefix(content, "="):
		tok := l.emit(TokenCode, strings.TrimSpace(content[1:]), col)
		tok.Buffer = true
		tok.Escape = true
		return

	case strings.HasPrefix(content, ":") && len(content) > 1 && isWordByte(content[1]):
		name := filterPattern.FindString(content[1:])
		tok := l.emit(TokenFilter, name, col)
		rest := strings.TrimSpace(content[1+len(name):])
		lines := l.collectRawBlock(indent)
		if rest != "" {
			lines = append([]string{rest}, lines...)
		}
		tok.Lines = lines
		return

	case strings.HasPrefix(content, "+"):
		l.lexCall(content, col)
		return

	case strings.HasPrefix(content, "#{"):
		end := matchBrace(content, 1)
		if end < 0 {
			l.errorf(col, "unclosed tag interpolation")
			return
		}
		l.emit(TokenInterpolatedTag, strings.TrimSpace(content[2:end]), col)
		l.lexTagTail(content[end+1:], col+end+1)
		return
	}

	if word := keywordPattern.FindString(content); word != "" {
		if l.lexKeyword(word, content, col) {
			return
		}
	}

	if content[0] == '#' || content[0] == '.' {
		l.emit(TokenTag, "div", col)
		l.lexTagTail(content, col)
		return
	}

	name := tagNamePattern.FindString(content)
	if name == "" {
		l.errorf(col, "unexpected text %q", content)
		return
	}
	l.emit(TokenTag, name, col)
	l.lexTagTail(content[len(name):], col+len(name))
}

// lexKeyword handles lines starting with a keyword. It returns false when
// the word turns out to be an ordinary tag name.
func (l *Lexer) lexKeyword(word, content string, col int) bool {
	rest := content[len(word):]
	hasArg := strings.HasPrefix(rest, " ")
	arg := strings.TrimSpace(rest)

	switch word {
	case "if":
		if !hasArg {
			return false
		}
		l.emit(TokenIf, arg, col)
	case "unless":
		if !hasArg {
			return false
		}
		l.emit(TokenUnless, arg, col)
	case "else":
		switch {
		case arg == "":
			l.emit(TokenElse, "", col)
		case strings.HasPrefix(arg, "if "):
			l.emit(TokenElseIf, strings.TrimSpace(arg[3:]), col)
		default:
			l.errorf(col, "unexpected text after else: %q", arg)
		}
	case "each", "for":
		if !hasArg {
			return false
		}
		m := eachPattern.FindStringSubmatch(arg)
		if m == nil {
			l.errorf(col, "malformed each: expected `each value[, key] in expression`")
			return true
		}
		tok := l.emit(TokenEach, m[1], col)
		tok.Key = m[2]
		tok.Obj = strings.TrimSpace(m[3])
	case "while":
		if !hasArg {
			return false
		}
		l.emit(TokenCode, "while ("+arg+")", col)
	case "case":
		if !hasArg {
			return false
		}
		l.emit(TokenCase, arg, col)
	case "when":
		if !hasArg {
			return false
		}
		expr, tail, ok := splitBlockExpansion(arg)
		l.emit(TokenWhen, expr, col)
		if ok {
			l.emit(TokenColon, "", col)
			l.lexLine(tail, col+len(content)-len(tail))
		}
	case "default":
		if arg != "" && !strings.HasPrefix(arg, ":") {
			return false
		}
		l.emit(TokenDefault, "", col)
		if tail := strings.TrimSpace(strings.TrimPrefix(arg, ":")); tail != "" {
			l.emit(TokenColon, "", col)
			l.lexLine(tail, col+len(content)-len(tail))
		}
	case "mixin":
		if !hasArg {
			return false
		}
		name := mixinPattern.FindString(arg)
		if name == "" {
			l.errorf(col, "malformed mixin declaration")
			return true
		}
		tok := l.emit(TokenMixin, name, col)
		if after := arg[len(name):]; strings.HasPrefix(after, "(") {
			end := matchParen(after, 0)
			if end < 0 {
				l.errorf(col, "unclosed mixin arguments")
				return true
			}
			tok.Args = strings.TrimSpace(after[1:end])
		}
	case "block":
		if arg == "" {
			l.emit(TokenBlock, "", col)
			return true
		}
		if !hasArg {
			return false
		}
		m := blockModeRegexp.FindStringSubmatch(arg)
		if m == nil {
			l.errorf(col, "malformed block name %q", arg)
			return true
		}
		tok := l.emit(TokenBlock, m[2], col)
		tok.Args = m[1]
		if tok.Args == "" {
			tok.Args = "replace"
		}
	case "yield":
		if arg != "" {
			return false
		}
		l.emit(TokenYield, "", col)
	case "doctype":
		l.emit(TokenDoctype, arg, col)
	case "include", "extends":
		if !hasArg {
			return false
		}
		typ := TokenInclude
		if word == "extends" {
			typ = TokenExtends
		}
		l.emit(typ, arg, col)
	default:
		return false
	}
	return true
}

// lexCall lexes a mixin invocation: +name(args)(attrs)&attributes(x).
// +name(attrs) is accepted when the only group starts with an attribute.
func (l *Lexer) lexCall(content string, col int) {
	i := 1
	tok := l.emit(TokenCall, "", col)
	idx := len(l.tokens) - 1
	if strings.HasPrefix(content[i:], "#{") {
		end := matchBrace(content, i+1)
		if end < 0 {
			l.errorf(col, "unclosed mixin name interpolation")
			return
		}
		tok.Val = strings.TrimSpace(content[i+2 : end])
		tok.Dynamic = true
		i = end + 1
	} else {
		name := mixinPattern.FindString(content[i:])
		if name == "" {
			l.errorf(col, "expected mixin name after +")
			return
		}
		tok.Val = name
		i += len(name)
	}
	if i < len(content) && content[i] == '(' {
		end := l.matchParenAcrossLines(&content, i)
		if end < 0 {
			l.errorf(col+i, "unclosed mixin arguments")
			return
		}
		if !callAttrPattern.MatchString(content[i+1 : end]) {
			l.tokens[idx].Args = strings.TrimSpace(content[i+1 : end])
			i = end + 1
		}
	}
	l.lexTagTail(content[i:], col+i)
}

// lexTagTail lexes everything after a tag or call name: shorthand ids and
// classes, attribute lists and the trailing content of the line.
func (l *Lexer) lexTagTail(rest string, col int) {
	i := 0
loop:
	for i < len(rest) {
		switch {
		case rest[i] == '#' && i+1 < len(rest) && rest[i+1] != '{':
			id := idPattern.FindString(rest[i+1:])
			if id == "" {
				l.errorf(col+i, "expected id after #")
				return
			}
			l.emit(TokenID, id, col+i)
			i += 1 + len(id)
		case rest[i] == '.' && i+1 < len(rest) && rest[i+1] != ' ':
			class := classPattern.FindString(rest[i+1:])
			if class == "" {
				break loop
			}
			l.emit(TokenClass, class, col+i)
			i += 1 + len(class)
		case rest[i] == '(':
			end := l.matchParenAcrossLines(&rest, i)
			if end < 0 {
				l.errorf(col+i, "unclosed attribute list")
				return
			}
			attrs, err := l.lexAttrs(rest[i+1:end], col+i+1)
			if err != nil {
				return
			}
			tok := l.emit(TokenAttrs, "", col+i)
			tok.Attrs = attrs
			i = end + 1
		case strings.HasPrefix(rest[i:], "&attributes("):
			start := i + len("&attributes")
			end := l.matchParenAcrossLines(&rest, start)
			if end < 0 {
				l.errorf(col+i, "unclosed &attributes")
				return
			}
			l.emit(TokenAndAttributes, strings.TrimSpace(rest[start+1:end]), col+i)
			i = end + 1
		default:
			break loop
		}
	}
	l.lexContentTail(rest[i:], col+i)
}

// lexContentTail handles the end of a tag line: text, code, a text block,
// block expansion or self closing.
func (l *Lexer) lexContentTail(rest string, col int) {
	indent := l.base
	switch {
	case rest == "":
	case rest == ".":
		tok := l.emit(TokenTextBlock, "", col)
		tok.Lines = l.collectRawBlock(indent)
	case rest == "/":
		l.emit(TokenSlash, "", col)
	case strings.HasPrefix(rest, ": "):
		l.emit(TokenColon, "", col)
		tail := strings.TrimLeft(rest[1:], " ")
		l.lexLine(tail, col+len(rest)-len(tail))
	case strings.HasPrefix(rest, "!="):
		tok := l.emit(TokenCode, strings.TrimSpace(rest[2:]), col)
		tok.Buffer = true
	case strings.HasPrefix(rest, "="):
		tok := l.emit(TokenCode, strings.TrimSpace(rest[1:]), col)
		tok.Buffer = true
		tok.Escape = true
	case rest[0] == ' ':
		l.emit(TokenText, rest[1:], col+1)
	default:
		l.errorf(col, "unexpected text %q", rest)
	}
}

// matchParenAcrossLines finds the paren matching src[open]. When the list
// continues on following lines they are appended to *src and consumed.
func (l *Lexer) matchParenAcrossLines(src *string, open int) int {
	for {
		if end := matchParen(*src, open); end >= 0 {
			return end
		}
		if l.lineNo+1 >= len(l.lines) {
			return -1
		}
		l.lineNo++
		*src += "\n" + strings.TrimSpace(l.lines[l.lineNo])
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
