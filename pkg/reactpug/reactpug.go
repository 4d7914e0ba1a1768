// Package reactpug compiles pug templates into JavaScript functions that
// build React element trees.
//
// A compiled template is the source of a function taking a single locals
// object. Calling it returns one element, or a root element wrapping every
// top-level node the template produced:
//
//	src, err := reactpug.Compile("div(class=\"a\" class=\"b\") Hello", reactpug.Options{})
//
// The output can be evaluated with new Function("React", src) or, with
// FormatCommonJS, loaded as a CommonJS module.
package reactpug

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grindlemire/go-reactpug/internal/compiler"
	"github.com/grindlemire/go-reactpug/internal/pug"
)

// FilterFunc renders the body of a `:name` filter block to HTML.
type FilterFunc = compiler.FilterFunc

// Rewriter is an optional pass applied to the optimized program.
type Rewriter = compiler.Rewriter

// Format selects how the compiled function is exposed.
type Format = compiler.Format

const (
	FormatBody     = compiler.FormatBody
	FormatCommonJS = compiler.FormatCommonJS
)

// ParseFormat maps "body", "commonjs" or "cjs" to a Format. The empty
// string selects FormatBody.
func ParseFormat(name string) (Format, error) {
	return compiler.ParseFormat(name)
}

// SourceError reports a failure on generated JavaScript and carries it.
type SourceError = compiler.SourceError

// Options configures compilation. The zero value compiles for
// React.createElement with a div root in FormatBody.
type Options struct {
	// Filename is used in diagnostics.
	Filename string
	// Basedir shortens Filename in diagnostics when it is below Basedir.
	Basedir string
	// Factory is the element factory expression.
	Factory string
	// RootTag names the element wrapping multiple top-level nodes.
	RootTag string
	Format  Format
	// Globals resolve in the enclosing scope instead of through locals.
	Globals []string
	// Rewriter runs after the generic optimizer.
	Rewriter Rewriter
	// EscapeAttributes HTML-escapes `=` attribute values. React escapes
	// attribute values itself, so this is off by default.
	EscapeAttributes bool
	// Filters are added to the built-in :markdown and :escape filters.
	Filters map[string]FilterFunc
	// Color enables ANSI colors in optimizer diagnostics.
	Color bool
}

func (o Options) displayName() string {
	name := o.Filename
	if name == "" {
		return "template.pug"
	}
	if o.Basedir != "" {
		if rel, err := filepath.Rel(o.Basedir, name); err == nil && !filepath.IsAbs(rel) && rel[0] != '.' {
			return rel
		}
	}
	return name
}

func (o Options) compilerConfig(filename string) compiler.Config {
	filters := compiler.DefaultFilters()
	for name, f := range o.Filters {
		filters[name] = f
	}
	return compiler.Config{
		Filename: filename,
		Factory:  o.Factory,
		RootTag:  o.RootTag,
		Format:   o.Format,
		Globals:  o.Globals,
		Rewriter: o.Rewriter,
		Filters:  filters,
		Color:    o.Color,
	}
}

// Compile compiles template source.
func Compile(src string, opts Options) (string, error) {
	filename := opts.displayName()
	root, err := pug.Parse(filename, src, pug.Options{EscapeAttributes: opts.EscapeAttributes})
	if err != nil {
		return "", err
	}
	return compiler.Compile(root, opts.compilerConfig(filename))
}

// CompileFile reads and compiles the template at path. opts.Filename
// defaults to path.
func CompileFile(path string, opts Options) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	if opts.Filename == "" {
		opts.Filename = path
	}
	return Compile(string(src), opts)
}
