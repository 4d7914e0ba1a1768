package compiler

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/parser"
)

// reservedNames are never resolved through locals.
var reservedNames = []string{
	"____",
	"Array",
	"undefined",
	"pug_mixins",
	"pug_interp",
	"pug_locals",
	"locals",
}

// localsBinder rewrites free identifiers of a template body to resolve
// through the locals object passed to the compiled function.
type localsBinder struct {
	reserved map[string]bool
}

func newLocalsBinder(factoryRoot string, globals []string) *localsBinder {
	b := &localsBinder{reserved: make(map[string]bool)}
	for _, name := range reservedNames {
		b.reserved[name] = true
	}
	if factoryRoot != "" {
		b.reserved[factoryRoot] = true
	}
	for _, g := range globals {
		b.reserved[g] = true
	}
	return b
}

// freeLocals returns the identifiers of body that must come from locals.
func (b *localsBinder) freeLocals(filename, body string) ([]string, error) {
	prog, err := parser.ParseFile(nil, filename, body, 0)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range freeIdentifiers(prog) {
		if !b.reserved[name] {
			names = append(names, name)
		}
	}
	return names, nil
}

// bind wraps body in a closure whose parameters are the free locals. Each
// argument prefers the locals object and falls back to an outer binding of
// the same name.
func (b *localsBinder) bind(filename, body string) (string, error) {
	names, err := b.freeLocals(filename, body)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return body, nil
	}

	args := make([]string, len(names))
	for i, name := range names {
		key := jsString(name)
		args[i] = fmt.Sprintf("%s in pug_locals ? pug_locals[%s] : typeof %s !== \"undefined\" ? %s : undefined", key, key, name, name)
	}

	var sb strings.Builder
	sb.WriteString("var pug_locals = locals || {};\n")
	fmt.Fprintf(&sb, "(function (%s) {\n", strings.Join(names, ", "))
	sb.WriteString(body)
	fmt.Fprintf(&sb, "\n}.call(this, %s));", strings.Join(args, ",\n"))
	return sb.String(), nil
}
