package compiler

import (
	"strings"

	"github.com/grindlemire/go-reactpug/internal/pug"
)

// mixinRef returns the registry key and the table reference for a mixin.
// Dynamic names are keyed by their expression.
func mixinRef(m *pug.Mixin) (key, ref string) {
	if m.Dynamic {
		return "#{" + m.Name + "}", "pug_mixins[" + m.Name + "]"
	}
	return m.Name, "pug_mixins[" + jsString(m.Name) + "]"
}

func (g *Generator) visitMixin(m *pug.Mixin) error {
	key, ref := mixinRef(m)
	if m.Call {
		return g.visitMixinCall(m, key, ref)
	}
	return g.visitMixinDefinition(m, key, ref)
}

// visitMixinDefinition assigns a function into the mixin table. Every line
// it emits is owned by the mixin so the definition can be dropped if the
// mixin is never called.
func (g *Generator) visitMixinDefinition(m *pug.Mixin, key, ref string) error {
	g.mixins.Define(key)
	g.owners = append(g.owners, key)
	defer func() { g.owners = g.owners[:len(g.owners)-1] }()

	params := splitParams(m.Args)
	var rest string
	if n := len(params); n > 0 && strings.HasPrefix(params[n-1], "...") {
		rest = strings.TrimPrefix(params[n-1], "...")
		params = params[:n-1]
	}

	sig := "pug_mixin_options"
	if len(params) > 0 {
		sig += ", " + strings.Join(params, ", ")
	}
	g.writef("%s = function (%s) {", ref, sig)
	g.writeln("var block = (pug_mixin_options && pug_mixin_options.block), attributes = (pug_mixin_options && pug_mixin_options.attributes) || {};")
	if rest != "" {
		// arguments[0] is the options object.
		g.writef("var %s = [];", rest)
		g.writef("for (pug_interp = %d; pug_interp < arguments.length; pug_interp++) {", len(params)+1)
		g.writef("%s.push(arguments[pug_interp]);", rest)
		g.writeln("}")
	}
	g.writeln("var ____ = [];")
	if err := g.visitBlock(m.Block); err != nil {
		return err
	}
	g.writeln("return ____;")
	g.writeln("};")
	return nil
}

func (g *Generator) visitMixinCall(m *pug.Mixin, key, ref string) error {
	g.mixins.Use(key)
	if m.Dynamic {
		g.mixins.MarkDynamic()
	}

	suffix := "));"
	if m.Args != "" {
		suffix = ", " + m.Args + "));"
	}
	hasAttrs := len(m.Attrs) > 0 || len(m.AttributeBlocks) > 0
	if m.Block == nil && !hasAttrs {
		g.writef("____ = ____.concat(%s.call(this, {}%s", ref, suffix)
		return nil
	}

	g.writef("____ = ____.concat(%s.call(this, {", ref)
	if m.Block != nil {
		g.writeln("block: function () {")
		g.writeln("var ____ = [];")
		if err := g.visitBlock(m.Block); err != nil {
			return err
		}
		g.writeln("return ____;")
		if hasAttrs {
			g.writeln("},")
		} else {
			g.writeln("}")
		}
	}
	if hasAttrs {
		g.writeln("attributes: " + g.mergedAttributes(m.Attrs, m.AttributeBlocks))
	}
	g.writeln("}" + suffix)
	return nil
}

// mergedAttributes compiles attrs without tag aliases and merges any
// &attributes objects into a fresh object at runtime.
func (g *Generator) mergedAttributes(attrs []*pug.Attribute, blocks []string) string {
	obj := g.attrs.compile(attrs, false)
	if len(blocks) == 0 {
		return obj
	}
	return "pug_merge([" + obj + ", " + strings.Join(blocks, ", ") + "])"
}

func splitParams(args string) []string {
	var params []string
	for _, p := range strings.Split(args, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}
