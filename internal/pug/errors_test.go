package pug

import (
	"errors"
	"testing"
)

func TestError_Format(t *testing.T) {
	pos := Position{File: "a.pug", Line: 3, Column: 7}

	tests := map[string]struct {
		err  *Error
		want string
	}{
		"message": {
			err:  NewError(pos, "unexpected token"),
			want: "a.pug:3:7: error: unexpected token",
		},
		"hint": {
			err:  NewErrorWithHint(pos, "unclosed interpolation", "close it with }"),
			want: "a.pug:3:7: error: unclosed interpolation (close it with })",
		},
		"source with caret": {
			err:  &Error{Pos: pos, Message: "bad", Source: "  a(href"},
			want: "a.pug:3:7: error: bad\n  > " + "  a(href" + "\n    " + "      ^",
		},
		"tabs kept under caret": {
			err:  &Error{Pos: Position{File: "a.pug", Line: 1, Column: 3}, Message: "bad", Source: "\tp x"},
			want: "a.pug:1:3: error: bad\n  > \tp x\n    \t ^",
		},
		"column past the line": {
			err:  &Error{Pos: Position{File: "a.pug", Line: 1, Column: 40}, Message: "bad", Source: "p"},
			want: "a.pug:1:40: error: bad\n  > p",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorList(t *testing.T) {
	el := NewErrorList()
	if el.Err() != nil {
		t.Fatal("Err() != nil for an empty list")
	}

	first := NewError(Position{File: "a.pug", Line: 1, Column: 1}, "one")
	el.Add(first)
	el.Add(NewErrorf(Position{File: "a.pug", Line: 2, Column: 1}, "%s", "two"))
	if !el.HasErrors() {
		t.Fatal("HasErrors() = false")
	}

	err := el.Err()
	if got, want := err.Error(), "a.pug:1:1: error: one\na.pug:2:1: error: two"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var pugErr *Error
	if !errors.As(err, &pugErr) || pugErr != first {
		t.Errorf("errors.As() = %v, want the first error", pugErr)
	}
	if !errors.Is(err, first) {
		t.Error("errors.Is(err, first) = false")
	}
}
