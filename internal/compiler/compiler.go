// Package compiler turns a template AST into the source of a JavaScript
// function that builds an element tree through a React style factory.
//
// Compilation runs in four stages: the generator visits the AST and emits
// an intermediate program, the optimizer folds and prunes it, and the
// assembler binds free identifiers to the locals object and wraps the
// result in the final function.
package compiler

import (
	"fmt"
	"time"

	"github.com/grindlemire/go-reactpug/internal/log"
	"github.com/grindlemire/go-reactpug/internal/pug"
)

// Format selects how the compiled function is exposed.
type Format int

const (
	// FormatBody ends with `return fn;`, suitable for new Function("React", src).
	FormatBody Format = iota
	// FormatCommonJS requires react and assigns module.exports.
	FormatCommonJS
)

// String returns the config name of the format.
func (f Format) String() string {
	switch f {
	case FormatBody:
		return "body"
	case FormatCommonJS:
		return "commonjs"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a config name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "body":
		return FormatBody, nil
	case "commonjs", "cjs":
		return FormatCommonJS, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", name)
	}
}

const (
	DefaultFactory = "React.createElement"
	DefaultRootTag = "div"
)

// Config controls a single compilation.
type Config struct {
	Filename string
	// Factory is the element factory expression. Defaults to
	// React.createElement.
	Factory string
	// RootTag wraps templates that produce more than one element.
	RootTag string
	Format  Format
	// Globals are identifiers that resolve in the enclosing scope instead of
	// through locals.
	Globals  []string
	Rewriter Rewriter
	Filters  map[string]FilterFunc
	Color    bool
}

func (c Config) withDefaults() Config {
	if c.Factory == "" {
		c.Factory = DefaultFactory
	}
	if c.RootTag == "" {
		c.RootTag = DefaultRootTag
	}
	if c.Filters == nil {
		c.Filters = DefaultFilters()
	}
	if c.Rewriter == nil {
		c.Rewriter = NopRewriter{}
	}
	return c
}

// Compile compiles a parsed template into JavaScript source.
func Compile(root *pug.Block, cfg Config) (string, error) {
	cfg = cfg.withDefaults()
	start := time.Now()

	eval, err := NewEvaluator()
	if err != nil {
		return "", fmt.Errorf("failed to start constant evaluator: %w", err)
	}

	gen := NewGenerator(eval, cfg.Factory, cfg.Filters)
	prog, err := gen.Generate(root)
	if err != nil {
		return "", err
	}

	opt := &Optimizer{Filename: cfg.Filename, Rewriter: cfg.Rewriter, Color: cfg.Color}
	body, err := opt.Optimize(prog.String())
	if err != nil {
		return "", err
	}

	asm := &assembler{
		filename: cfg.Filename,
		factory:  cfg.Factory,
		rootTag:  cfg.RootTag,
		format:   cfg.Format,
		binder:   newLocalsBinder(factoryRoot(cfg.Factory), cfg.Globals),
		color:    cfg.Color,
	}
	out, err := asm.assemble(body)
	if err != nil {
		return "", err
	}
	log.Compile("%s: compiled in %s (%d lines, %d bytes)", cfg.Filename, time.Since(start), prog.Len(), len(out))
	return out, nil
}
