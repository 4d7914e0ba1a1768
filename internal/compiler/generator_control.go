package compiler

import (
	"github.com/grindlemire/go-reactpug/internal/pug"
)

func (g *Generator) visitCase(c *pug.Case) error {
	g.writef("switch (%s) {", c.Expr)
	if err := g.visitBlock(c.Block); err != nil {
		return err
	}
	g.writeln("}")
	return nil
}

// visitWhen emits one switch arm. An arm without a block falls through.
func (g *Generator) visitWhen(w *pug.When) error {
	if w.Expr == "default" {
		g.writeln("default:")
	} else {
		g.writef("case %s:", w.Expr)
	}
	if w.Block == nil {
		return nil
	}
	if err := g.visitBlock(w.Block); err != nil {
		return err
	}
	g.writeln("break;")
	return nil
}

func (g *Generator) visitConditional(c *pug.Conditional) error {
	g.writef("if (%s) {", c.Test)
	if err := g.visitBlock(c.Consequent); err != nil {
		return err
	}
	switch alt := c.Alternate.(type) {
	case nil:
		g.writeln("}")
		return nil
	case *pug.Conditional:
		g.writeln("} else")
		return g.visitConditional(alt)
	case *pug.Block:
		g.writeln("} else {")
		if err := g.visitBlock(alt); err != nil {
			return err
		}
		g.writeln("}")
		return nil
	default:
		return pug.NewErrorf(alt.Pos(), "%s is not supported as an else branch", alt.Kind())
	}
}

// visitEach lowers a loop to an immediately invoked function returning its
// own output list. Arrays and array-likes are detected by a numeric length;
// anything else is enumerated with for-in.
func (g *Generator) visitEach(e *pug.Each) error {
	key := e.Key
	if key == "" {
		key = g.nextEachKey()
	}
	hasAlt := e.Alternate != nil

	g.writeln("____.push(function () {")
	g.writeln("var ____ = [];")
	g.writef("var $$obj = %s;", e.Obj)
	g.writeln("if ('number' == typeof $$obj.length) {")
	if hasAlt {
		g.writeln("if ($$obj.length) {")
	}
	g.writef("for (var %[1]s = 0, $$l = $$obj.length; %[1]s < $$l; %[1]s++) {", key)
	g.writef("var %s = $$obj[%s];", e.Val, key)
	if err := g.visitBlock(e.Block); err != nil {
		return err
	}
	g.writeln("}")
	if hasAlt {
		g.writeln("} else {")
		if err := g.visitBlock(e.Alternate); err != nil {
			return err
		}
		g.writeln("}")
	}

	g.writeln("} else {")
	g.writeln("var $$l = 0;")
	g.writef("for (var %s in $$obj) {", key)
	g.writeln("$$l++;")
	g.writef("var %s = $$obj[%s];", e.Val, key)
	if err := g.visitBlock(e.Block); err != nil {
		return err
	}
	g.writeln("}")
	if hasAlt {
		g.writeln("if ($$l === 0) {")
		if err := g.visitBlock(e.Alternate); err != nil {
			return err
		}
		g.writeln("}")
	}
	g.writeln("}")
	g.writeln("return ____;")
	g.writeln("}.call(this));")
	return nil
}
