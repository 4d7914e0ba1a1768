package compiler

import (
	"strings"

	"github.com/grindlemire/go-reactpug/internal/log"
	"github.com/grindlemire/go-reactpug/internal/pug"
)

// tagAliases rename attributes whose markup names are reserved words or
// differently cased as element properties.
var tagAliases = map[string]string{
	"for":       "htmlFor",
	"maxlength": "maxLength",
}

var htmlEscaper = strings.NewReplacer(`"`, "&quot;", "&", "&amp;", "<", "&lt;", ">", "&gt;")

// attributeCompiler lowers attribute lists to object literal expressions.
type attributeCompiler struct {
	eval *Evaluator
}

// compile returns an object literal expression for attrs. In tag context
// attribute names are converted to element property names (class becomes
// className, for becomes htmlFor); otherwise names are kept so the result
// can be merged at runtime.
func (c *attributeCompiler) compile(attrs []*pug.Attribute, tagContext bool) string {
	var props []string
	var classes []string

	for _, attr := range attrs {
		key := attr.Name
		if alias, ok := tagAliases[key]; ok && tagContext {
			key = alias
		}
		val := attr.Val

		if strings.HasPrefix(key, "on") {
			if out, rule := rewrite(eventRules, val); rule != "" {
				log.Compile("%s: rewrote %s=%s (%s)", attr.Position, key, val, rule)
				val = out
			}
		}
		if strings.HasSuffix(key, "Link") {
			if out, rule := rewrite(linkRules, val); rule != "" {
				val = out
			}
		}

		switch {
		case key == "class":
			classes = append(classes, val)
		case key == "style":
			props = append(props, jsString(key)+": "+c.style(val))
		default:
			props = append(props, jsString(key)+": "+c.value(val, attr.MustEscape))
		}
	}

	if len(classes) > 0 {
		name := "class"
		if tagContext {
			name = "className"
		}
		props = append(props, jsString(name)+": "+c.classes(classes))
	}
	return "{" + strings.Join(props, ", ") + "}"
}

// classes joins class values, folding them when every value is constant.
func (c *attributeCompiler) classes(vals []string) string {
	joined := "pug_join_classes([" + strings.Join(vals, ", ") + "])"
	for _, v := range vals {
		if !c.eval.IsConstant(v) {
			return joined
		}
	}
	if lit, ok := c.eval.fold(joined); ok {
		return lit
	}
	return joined
}

// style normalizes a style value, folding it when constant.
func (c *attributeCompiler) style(val string) string {
	call := "pug_fix_style(" + val + ")"
	if !c.eval.IsConstant(val) {
		return call
	}
	if lit, ok := c.eval.fold(call); ok {
		return lit
	}
	return call
}

// value folds a constant attribute value or returns the runtime expression.
// Escaping happens at compile time for constant strings and at runtime
// otherwise.
func (c *attributeCompiler) value(val string, escape bool) string {
	if !escape {
		if lit, ok := c.eval.Literal(val); ok {
			return lit
		}
		return val
	}
	if v, err := c.eval.ToConstant(val); err == nil {
		if s, ok := v.Export().(string); ok {
			return jsString(htmlEscaper.Replace(s))
		}
		if lit, ok := c.eval.encode(v); ok {
			return lit
		}
	}
	return "pug_escape(" + val + ")"
}
