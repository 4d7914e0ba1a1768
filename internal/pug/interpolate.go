package pug

import (
	"errors"
	"strings"
)

// interpolate splits text containing #{expr}, !{expr} and #[tag text]
// sequences into Text, inline Code and Tag nodes. A backslash before the
// sigil keeps it literal.
func interpolate(text string, pos Position, opts Options) ([]Node, error) {
	var nodes []Node
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, &Text{Val: buf.String(), Position: pos})
			buf.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\\' && i+2 < len(text) && isInterpolationStart(text[i+1:]) {
			buf.WriteString(text[i+1 : i+3])
			i += 2
			continue
		}
		if ch == '#' && i+1 < len(text) && text[i+1] == '[' {
			end := matchTagInterpolation(text, i+1)
			if end < 0 {
				return nil, NewErrorWithHint(pos, "unclosed tag interpolation", "close it with ]")
			}
			inner, err := interpolateTag(text[i+2:end], pos, opts)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, inner...)
			i = end
			continue
		}
		if (ch == '#' || ch == '!') && i+1 < len(text) && text[i+1] == '{' {
			end := matchBrace(text, i+1)
			if end < 0 {
				return nil, NewErrorWithHint(pos, "unclosed interpolation", "close it with }")
			}
			expr := strings.TrimSpace(text[i+2 : end])
			if expr == "" {
				return nil, NewError(pos, "empty interpolation")
			}
			flush()
			nodes = append(nodes, &Code{
				Val:        expr,
				Buffer:     true,
				MustEscape: ch == '#',
				IsInline:   true,
				Position:   pos,
			})
			i = end
			continue
		}
		buf.WriteByte(ch)
	}
	flush()
	return nodes, nil
}

func isInterpolationStart(s string) bool {
	return strings.HasPrefix(s, "#{") || strings.HasPrefix(s, "!{") || strings.HasPrefix(s, "#[")
}

// matchTagInterpolation returns the index of the bracket closing src[open],
// or -1. Attribute lists are skipped as expressions so brackets inside
// their strings do not count.
func matchTagInterpolation(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			end := matchParen(src, i)
			if end < 0 {
				return -1
			}
			i = end
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// interpolateTag parses the body of #[...] as a single line of template.
// Leading newlines keep reported line numbers on the enclosing line.
func interpolateTag(src string, pos Position, opts Options) ([]Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, NewError(pos, "empty tag interpolation")
	}
	if strings.HasPrefix(src, " ") || strings.Contains(src, "\n") {
		return nil, NewErrorWithHint(pos, "invalid tag interpolation", "start with a tag name and keep it on one line")
	}
	prefix := strings.Repeat("\n", max(pos.Line-1, 0))
	root, err := Parse(pos.File, prefix+src, opts)
	if err != nil {
		msg := err.Error()
		var pe *Error
		if errors.As(err, &pe) {
			msg = pe.Message
		}
		return nil, NewErrorf(pos, "in tag interpolation: %s", msg)
	}
	return root.Nodes, nil
}
