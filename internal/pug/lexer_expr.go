package pug

import (
	"strings"
)

// exprScanner walks embedded JavaScript source tracking string literals and
// bracket depth, so that delimiters inside strings or nested brackets are
// not mistaken for the end of the expression.
type exprScanner struct {
	src   string
	pos   int
	depth int
	quote byte // active quote character, 0 outside strings
}

// step advances over one byte and reports whether that byte was at the top
// level (outside strings and brackets) before it was consumed.
func (s *exprScanner) step() (ch byte, top bool) {
	ch = s.src[s.pos]
	s.pos++
	if s.quote != 0 {
		switch ch {
		case '\\':
			if s.pos < len(s.src) {
				s.pos++
			}
		case s.quote:
			s.quote = 0
		}
		return ch, false
	}
	top = s.depth == 0
	switch ch {
	case '"', '\'', '`':
		s.quote = ch
	case '(', '[', '{':
		s.depth++
	case ')', ']', '}':
		s.depth--
	}
	return ch, top
}

// matchParen returns the index of the parenthesis closing src[open], or -1.
func matchParen(src string, open int) int {
	return matchClosing(src, open)
}

// matchBrace returns the index of the brace closing src[open], or -1.
func matchBrace(src string, open int) int {
	return matchClosing(src, open)
}

func matchClosing(src string, open int) int {
	s := &exprScanner{src: src, pos: open}
	for s.pos < len(src) {
		i := s.pos
		s.step()
		if s.depth == 0 && s.quote == 0 && i > open {
			return i
		}
		if s.depth < 0 {
			return -1
		}
	}
	return -1
}

// splitBlockExpansion splits `expr: tail` at the first top-level colon that
// is followed by a space and is not part of a ternary expression.
func splitBlockExpansion(src string) (expr, tail string, ok bool) {
	s := &exprScanner{src: src}
	ternary := 0
	for s.pos < len(src) {
		i := s.pos
		ch, top := s.step()
		if !top {
			continue
		}
		switch ch {
		case '?':
			ternary++
		case ':':
			if ternary > 0 {
				ternary--
				continue
			}
			if i+1 == len(src) || src[i+1] == ' ' {
				return strings.TrimSpace(src[:i]), strings.TrimSpace(src[i+1:]), true
			}
		}
	}
	return strings.TrimSpace(src), "", false
}

// lexAttrs parses the inside of an attribute list: name=value pairs
// separated by commas, newlines or whitespace.
func (l *Lexer) lexAttrs(src string, col int) ([]*Attribute, error) {
	var attrs []*Attribute
	i := 0
	for {
		for i < len(src) && (isSpace(src[i]) || src[i] == ',') {
			i++
		}
		if i >= len(src) {
			return attrs, nil
		}

		pos := l.position(col + i)
		var name string
		if q := src[i]; q == '"' || q == '\'' {
			end := strings.IndexByte(src[i+1:], q)
			if end < 0 {
				l.errorf(col+i, "unterminated attribute name")
				return nil, l.errors.Err()
			}
			name = src[i+1 : i+1+end]
			i += end + 2
		} else {
			start := i
			for i < len(src) && !isSpace(src[i]) && src[i] != '=' && src[i] != ',' && !strings.HasPrefix(src[i:], "!=") {
				i++
			}
			name = src[start:i]
		}
		if name == "" {
			l.errorf(col+i, "expected attribute name")
			return nil, l.errors.Err()
		}

		j := i
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		escape := true
		switch {
		case strings.HasPrefix(src[j:], "!="):
			escape = false
			j += 2
		case j < len(src) && src[j] == '=':
			j++
		default:
			attrs = append(attrs, &Attribute{Name: name, Val: "true", MustEscape: true, Position: pos})
			continue
		}
		for j < len(src) && isSpace(src[j]) {
			j++
		}
		end := scanAttrValue(src, j)
		val := strings.TrimSpace(src[j:end])
		if val == "" {
			l.errorf(col+j, "expected value for attribute %q", name)
			return nil, l.errors.Err()
		}
		attrs = append(attrs, &Attribute{Name: name, Val: val, MustEscape: escape, Position: pos})
		i = end
	}
}

// scanAttrValue returns the end of the attribute value starting at start.
// Whitespace ends a value unless the expression visibly continues across it
// (`a + b`, `x ? y : z`).
func scanAttrValue(src string, start int) int {
	s := &exprScanner{src: src, pos: start}
	for s.pos < len(src) {
		i := s.pos
		ch, top := s.step()
		if !top {
			continue
		}
		switch {
		case ch == ',' || ch == '\n':
			return i
		case ch == ' ' || ch == '\t':
			j := i
			for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
				j++
			}
			if j >= len(src) || src[j] == ',' || src[j] == '\n' {
				return i
			}
			if continuesExpr(src[:i], src[j:]) {
				s.pos = j
				continue
			}
			return i
		}
	}
	return len(src)
}

func continuesExpr(before, after string) bool {
	before = strings.TrimRight(before, " \t")
	if before != "" && strings.ContainsRune("+-*/%&|^=<>!?:.~,(", rune(before[len(before)-1])) {
		return true
	}
	if after != "" && strings.ContainsRune("+-*/%&|^=<>?:.", rune(after[0])) {
		return true
	}
	return strings.HasPrefix(after, "in ") || strings.HasPrefix(after, "instanceof ")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
