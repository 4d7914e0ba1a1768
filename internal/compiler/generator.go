package compiler

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/grindlemire/go-reactpug/internal/log"
	"github.com/grindlemire/go-reactpug/internal/pug"
)

// Generator lowers a template AST into the intermediate program. Output is
// accumulated in a list named ____ in every function scope it emits.
type Generator struct {
	prog   *Program
	mixins *MixinRegistry
	attrs  *attributeCompiler

	factory  string // element factory expression, e.g. React.createElement
	receiver string // receiver passed to factory.apply
	filters  map[string]FilterFunc

	// owners holds the keys of the mixin definitions being emitted.
	owners []string

	// eachCounter numbers synthesized loop keys (pug_index0, pug_index1, ...).
	eachCounter int

	// inComment renders text as comment lines inside a block comment.
	inComment bool
}

// NewGenerator creates a Generator for one compilation.
func NewGenerator(eval *Evaluator, factory string, filters map[string]FilterFunc) *Generator {
	return &Generator{
		prog:     &Program{},
		mixins:   NewMixinRegistry(),
		attrs:    &attributeCompiler{eval: eval},
		factory:  factory,
		receiver: factoryReceiver(factory),
		filters:  filters,
	}
}

// Generate visits root and returns the intermediate program with unused
// mixin definitions removed.
func (g *Generator) Generate(root *pug.Block) (*Program, error) {
	if err := g.visit(root); err != nil {
		return nil, err
	}
	if g.mixins.Dynamic() {
		log.Compile("dynamic mixin call found, keeping all mixins")
	} else if removed := g.mixins.Eliminate(g.prog); removed > 0 {
		log.Compile("removed %d lines of unused mixins %v", removed, g.mixins.Unused())
	}
	return g.prog, nil
}

func (g *Generator) visit(n pug.Node) error {
	switch n := n.(type) {
	case *pug.Block:
		return g.visitBlock(n)
	case *pug.NamedBlock:
		return g.visitNodes(n.Nodes)
	case *pug.YieldBlock:
		return nil
	case *pug.Text:
		return g.visitText(n.Val, n.Position)
	case *pug.Literal:
		return g.visitText(n.Str, n.Position)
	case *pug.Comment:
		if n.Buffer {
			g.writeln("//" + n.Val)
		}
		return nil
	case *pug.BlockComment:
		return g.visitBlockComment(n)
	case *pug.Code:
		return g.visitCode(n)
	case *pug.Case:
		return g.visitCase(n)
	case *pug.When:
		return g.visitWhen(n)
	case *pug.Conditional:
		return g.visitConditional(n)
	case *pug.Each:
		return g.visitEach(n)
	case *pug.Mixin:
		return g.visitMixin(n)
	case *pug.MixinBlock:
		g.writeln("block && (____ = ____.concat(block.call(this)));")
		return nil
	case *pug.Tag:
		return g.visitTag(n)
	case *pug.Filter:
		return g.visitFilter(n)
	default:
		return pug.NewErrorf(n.Pos(), "%s is not supported", n.Kind())
	}
}

func (g *Generator) visitBlock(b *pug.Block) error {
	if b == nil {
		return nil
	}
	return g.visitNodes(b.Nodes)
}

func (g *Generator) visitNodes(nodes []pug.Node) error {
	for _, n := range nodes {
		if err := g.visit(n); err != nil {
			return err
		}
	}
	return nil
}

var (
	entityPattern = regexp.MustCompile(`&((#\d+)|#[xX]([A-Fa-f0-9]+)|(\w+));?`)
	markupPattern = regexp.MustCompile(`[<>&]`)
)

// visitText pushes decoded plain text. Raw markup is rejected rather than
// escaped: elements must be written as tags.
func (g *Generator) visitText(val string, pos pug.Position) error {
	if g.inComment {
		for _, line := range strings.Split(val, "\n") {
			g.writeln("// " + line)
		}
		return nil
	}
	if markupPattern.MatchString(entityPattern.ReplaceAllString(val, "")) {
		return pug.NewErrorWithHint(pos, `Plain Text cannot contain "<" or ">" or "&"`,
			"use tags for markup and entities such as &lt; for literal characters")
	}
	if val == "" {
		return nil
	}
	g.writef("____.push(%s);", jsString(html.UnescapeString(val)))
	return nil
}

func (g *Generator) visitBlockComment(c *pug.BlockComment) error {
	if !c.Buffer {
		return nil
	}
	g.writeln("//" + c.Val)
	g.inComment = true
	defer func() { g.inComment = false }()
	return g.visitBlock(c.Block)
}

func (g *Generator) visitCode(c *pug.Code) error {
	switch {
	case c.Buffer && !c.MustEscape:
		g.writef("____.push(%s(\"div\", {dangerouslySetInnerHTML: {__html: %s}}));", g.factory, c.Val)
	case c.Buffer:
		g.writef("____.push(%s);", c.Val)
	default:
		g.writeln(c.Val)
	}
	if c.Block != nil {
		g.writeln("{")
		if err := g.visitBlock(c.Block); err != nil {
			return err
		}
		g.writeln("}")
	}
	return nil
}

func (g *Generator) visitFilter(f *pug.Filter) error {
	filter, ok := g.filters[f.Name]
	if !ok {
		return pug.NewErrorf(f.Position, "unknown filter :%s", f.Name)
	}
	out, err := filter(f.Text)
	if err != nil {
		return pug.NewErrorf(f.Position, "filter :%s: %v", f.Name, err)
	}
	g.writef("____.push(%s(\"div\", {dangerouslySetInnerHTML: {__html: %s}}));", g.factory, jsString(out))
	return nil
}

// writeln appends a line owned by the currently open mixin definitions.
func (g *Generator) writeln(s string) {
	g.prog.append(s, g.owners)
}

// writef appends a formatted line.
func (g *Generator) writef(format string, args ...any) {
	g.writeln(fmt.Sprintf(format, args...))
}

// nextEachKey returns a fresh loop key name.
func (g *Generator) nextEachKey() string {
	name := fmt.Sprintf("pug_index%d", g.eachCounter)
	g.eachCounter++
	return name
}

// factoryReceiver returns the object the factory is a method of, or null.
func factoryReceiver(factory string) string {
	if i := strings.LastIndexByte(factory, '.'); i > 0 {
		return factory[:i]
	}
	return "null"
}

// factoryRoot returns the first identifier of the factory expression.
func factoryRoot(factory string) string {
	if i := strings.IndexByte(factory, '.'); i > 0 {
		return factory[:i]
	}
	return factory
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(sb.String(), "\n")
}
