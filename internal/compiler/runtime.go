package compiler

import (
	_ "embed"
	"strings"
)

// Runtime helper sources. Generated templates call these by name; the
// constant evaluator preloads all of them.
var (
	//go:embed runtime/join_classes.js
	joinClassesJS string
	//go:embed runtime/fix_style.js
	fixStyleJS string
	//go:embed runtime/fix_attrs.js
	fixAttrsJS string
	//go:embed runtime/merge.js
	mergeJS string
	//go:embed runtime/escape.js
	escapeJS string
	//go:embed runtime/set_locals.js
	setLocalsJS string
)

type helper struct {
	name string
	src  string
	deps []string
}

// helpers is ordered so that every helper follows its dependencies.
var helpers = []helper{
	{name: "pug_join_classes", src: joinClassesJS},
	{name: "pug_fix_style", src: fixStyleJS},
	{name: "pug_fix_attrs", src: fixAttrsJS, deps: []string{"pug_join_classes", "pug_fix_style"}},
	{name: "pug_merge", src: mergeJS, deps: []string{"pug_join_classes", "pug_fix_style"}},
	{name: "pug_escape", src: escapeJS},
}

// allHelpers returns the source of every runtime helper.
func allHelpers() string {
	var sb strings.Builder
	for _, h := range helpers {
		sb.WriteString(h.src)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// helpersFor returns the source of the helpers the program references,
// including their dependencies.
func helpersFor(program string) string {
	needed := make(map[string]bool)
	for _, h := range helpers {
		if strings.Contains(program, h.name) {
			needed[h.name] = true
			for _, d := range h.deps {
				needed[d] = true
			}
		}
	}
	var sb strings.Builder
	for _, h := range helpers {
		if needed[h.name] {
			sb.WriteString(h.src)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// setLocalsSource is attached to every compiled template as fn.locals.
func setLocalsSource() string {
	return strings.TrimSpace(setLocalsJS)
}
