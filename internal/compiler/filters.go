package compiler

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkParser "github.com/yuin/goldmark/parser"
)

// FilterFunc transforms the body of a `:name` block into HTML at compile
// time.
type FilterFunc func(text string) (string, error)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(goldmarkParser.WithAutoHeadingID()),
)

// MarkdownFilter renders GitHub flavored markdown.
func MarkdownFilter(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EscapeFilter renders text literally.
func EscapeFilter(text string) (string, error) {
	return html.EscapeString(text), nil
}

// DefaultFilters returns the built-in filters. The map is fresh on each call
// so callers may add to it.
func DefaultFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		"markdown": MarkdownFilter,
		"md":       MarkdownFilter,
		"escape":   EscapeFilter,
		"plain":    EscapeFilter,
	}
}
