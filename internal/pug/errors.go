package pug

import (
	"fmt"
	"strings"
)

// Error is a template error at a source position. Source holds the
// offending line when it is known and is printed with a caret under
// Pos.Column.
type Error struct {
	Pos     Position
	Message string
	Hint    string
	Source  string
}

// Error implements the error interface.
//
//	views/card.pug:3:7: error: unclosed attribute list (close it with ")")
//	  > a(href="/"
//	          ^
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: error: %s", e.Pos, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&sb, " (%s)", e.Hint)
	}
	if e.Source == "" {
		return sb.String()
	}
	sb.WriteString("\n  > ")
	sb.WriteString(e.Source)
	if e.Pos.Column > 0 && e.Pos.Column <= len(e.Source)+1 {
		sb.WriteString("\n    ")
		// Keep tabs so the caret lines up with tab-indented sources.
		for _, r := range e.Source[:e.Pos.Column-1] {
			if r == '\t' {
				sb.WriteByte('\t')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('^')
	}
	return sb.String()
}

// NewError creates an Error.
func NewError(pos Position, message string) *Error {
	return &Error{Pos: pos, Message: message}
}

// NewErrorf creates an Error with a formatted message.
func NewErrorf(pos Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// NewErrorWithHint creates an Error with a suggested fix.
func NewErrorWithHint(pos Position, message, hint string) *Error {
	return &Error{Pos: pos, Message: message, Hint: hint}
}

// ErrorList accumulates errors while lexing and parsing a template.
type ErrorList struct {
	errs []*Error
}

// NewErrorList creates an empty list.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends err.
func (el *ErrorList) Add(err *Error) {
	el.errs = append(el.errs, err)
}

// HasErrors reports whether any error was added.
func (el *ErrorList) HasErrors() bool {
	return len(el.errs) > 0
}

// Error joins the messages with newlines.
func (el *ErrorList) Error() string {
	msgs := make([]string, len(el.errs))
	for i, err := range el.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	errs := make([]error, len(el.errs))
	for i, err := range el.errs {
		errs[i] = err
	}
	return errs
}

// Err returns the list as an error, or nil when it is empty.
func (el *ErrorList) Err() error {
	if len(el.errs) == 0 {
		return nil
	}
	return el
}
