package compiler

import (
	"github.com/dop251/goja/ast"
)

// rewriteRule is a named source-to-source rewrite over a parsed attribute
// expression. Replacement text is assembled from slices of the original
// source, so user code is never re-printed.
type rewriteRule struct {
	name  string
	apply func(src string, expr ast.Expression) (string, bool)
}

// eventRules turn handler calls into bound callbacks so that
// `onClick=select(item)` does not run select during rendering.
var eventRules = []rewriteRule{
	{name: "bind-call", apply: bindCall},
	{name: "bind-method", apply: bindMethod},
}

// linkRules expand two-way binding sugar on `*Link` attributes.
var linkRules = []rewriteRule{
	{name: "state-link", apply: stateLink},
}

// rewrite applies the first matching rule to expr. It returns expr
// unchanged when no rule matches or the expression does not parse.
func rewrite(rules []rewriteRule, expr string) (string, string) {
	node, src, err := parseExpression(expr)
	if err != nil {
		return expr, ""
	}
	for _, r := range rules {
		if out, ok := r.apply(src, node); ok {
			return out, r.name
		}
	}
	return expr, ""
}

// text returns the source of n.
func text(src string, n ast.Node) string {
	return src[int(n.Idx0())-1 : int(n.Idx1())-1]
}

// callArgs returns the source between the call's parentheses.
func callArgs(src string, call *ast.CallExpression) string {
	if len(call.ArgumentList) == 0 {
		return ""
	}
	return src[int(call.LeftParenthesis) : int(call.RightParenthesis)-1]
}

func withArgs(first, args string) string {
	if args == "" {
		return first
	}
	return first + ", " + args
}

// bindCall: f(a, b) => f.bind(null, a, b)
func bindCall(src string, expr ast.Expression) (string, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return "", false
	}
	switch call.Callee.(type) {
	case *ast.DotExpression, *ast.BracketExpression:
		return "", false
	}
	return text(src, call.Callee) + ".bind(" + withArgs("null", callArgs(src, call)) + ")", true
}

// bindMethod: obj.m(a) => (pug_interp = obj, pug_interp.m.bind(pug_interp, a))
// The receiver is evaluated once. Calls that already bind are left alone.
func bindMethod(src string, expr ast.Expression) (string, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return "", false
	}
	var obj, member string
	switch callee := call.Callee.(type) {
	case *ast.DotExpression:
		if callee.Identifier.Name.String() == "bind" {
			return "", false
		}
		obj = text(src, callee.Left)
		member = "." + callee.Identifier.Name.String()
	case *ast.BracketExpression:
		obj = text(src, callee.Left)
		member = src[int(callee.LeftBracket)-1 : int(callee.RightBracket)]
	default:
		return "", false
	}
	return "(pug_interp = " + obj + ", pug_interp" + member +
		".bind(" + withArgs("pug_interp", callArgs(src, call)) + "))", true
}

// stateLink: this.state.name => {value: this.state.name, requestChange: setter}
func stateLink(_ string, expr ast.Expression) (string, bool) {
	dot, ok := expr.(*ast.DotExpression)
	if !ok {
		return "", false
	}
	state, ok := dot.Left.(*ast.DotExpression)
	if !ok || state.Identifier.Name.String() != "state" {
		return "", false
	}
	if _, ok := state.Left.(*ast.ThisExpression); !ok {
		return "", false
	}
	prop := dot.Identifier.Name.String()
	return "{value: this.state." + prop + ", requestChange: function (v) { this.setState({" +
		prop + ": v}); }.bind(this)}", true
}
