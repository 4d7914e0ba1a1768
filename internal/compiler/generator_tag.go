package compiler

import (
	"fmt"

	"github.com/grindlemire/go-reactpug/internal/pug"
)

// visitTag emits a factory call for an element:
//
//	____.push(F.apply(R, [name, attrs].concat(children)));
//
// Children come from an immediately invoked function that collects the
// inline code and the child block.
func (g *Generator) visitTag(t *pug.Tag) error {
	name := t.Name
	if !t.Buffer && isIntrinsic(name) {
		name = jsString(name)
	}

	attrs := t.Attrs
	code := t.Code
	// A textarea's content is its value.
	if t.Name == "textarea" && code != nil && code.Buffer && code.MustEscape {
		attrs = append(append([]*pug.Attribute(nil), attrs...), &pug.Attribute{
			Name:     "value",
			Val:      code.Val,
			Position: code.Position,
		})
		code = nil
	}

	var props string
	if len(t.AttributeBlocks) > 0 {
		props = "pug_fix_attrs(" + g.mergedAttributes(attrs, t.AttributeBlocks) + ")"
	} else {
		props = g.attrs.compile(attrs, true)
	}

	head := fmt.Sprintf("____.push(%s.apply(%s, [%s, %s]", g.factory, g.receiver, name, props)
	if code == nil && t.Block.Empty() {
		g.writeln(head + "));")
		return nil
	}

	g.writeln(head)
	g.writeln(".concat(function () {")
	g.writeln("var ____ = [];")
	if code != nil {
		if err := g.visitCode(code); err != nil {
			return err
		}
	}
	if err := g.visitBlock(t.Block); err != nil {
		return err
	}
	g.writeln("return ____;")
	g.writeln("}.call(this))));")
	return nil
}

// isIntrinsic reports whether a tag name denotes a host element rather than
// a component reference. Host elements start with a lowercase letter.
func isIntrinsic(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}
