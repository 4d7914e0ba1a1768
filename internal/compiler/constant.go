package compiler

import (
	"errors"
	"fmt"
	"math"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// knownGlobals are the only identifiers a constant expression may reference.
var knownGlobals = []string{"undefined", "NaN", "Infinity", "Math", "pug_interp"}

// Evaluator decides whether template expressions are compile-time constants
// and folds them. Each compilation owns one Evaluator; it is not safe for
// concurrent use.
type Evaluator struct {
	vm        *goja.Runtime
	stringify goja.Callable
	known     map[string]bool
}

// NewEvaluator creates an Evaluator whose VM has the runtime helpers loaded.
func NewEvaluator() (*Evaluator, error) {
	vm := goja.New()
	if _, err := vm.RunString(allHelpers() + "\nvar pug_interp;"); err != nil {
		return nil, fmt.Errorf("loading runtime helpers: %w", err)
	}
	stringify, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return nil, errors.New("JSON.stringify is not callable")
	}
	known := make(map[string]bool, len(knownGlobals))
	for _, name := range knownGlobals {
		known[name] = true
	}
	return &Evaluator{vm: vm, stringify: stringify, known: known}, nil
}

// parseExpression parses a single expression. The returned source is the
// text the node offsets refer to.
func parseExpression(expr string) (ast.Expression, string, error) {
	src := "(" + expr + "\n)"
	prog, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return nil, "", err
	}
	if len(prog.Body) != 1 {
		return nil, "", fmt.Errorf("expected a single expression, got %d statements", len(prog.Body))
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, "", fmt.Errorf("expected an expression, got %T", prog.Body[0])
	}
	return stmt.Expression, src, nil
}

// IsConstant reports whether expr can be evaluated at compile time: it uses
// only literals, operators and the known globals, and has no side effects.
func (e *Evaluator) IsConstant(expr string) bool {
	node, _, err := parseExpression(expr)
	if err != nil {
		return false
	}
	return e.isConstant(node)
}

func (e *Evaluator) isConstant(n ast.Expression) bool {
	switch n := n.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return true
	case *ast.Identifier:
		return e.known[n.Name.String()]
	case *ast.ArrayLiteral:
		for _, v := range n.Value {
			if v != nil && !e.isConstant(v) {
				return false
			}
		}
		return true
	case *ast.SpreadElement:
		return e.isConstant(n.Expression)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			switch p := p.(type) {
			case *ast.PropertyKeyed:
				if p.Kind != ast.PropertyKindValue {
					return false
				}
				if p.Computed && !e.isConstant(p.Key) {
					return false
				}
				if !e.isConstant(p.Value) {
					return false
				}
			case *ast.PropertyShort:
				if p.Initializer != nil || !e.known[p.Name.Name.String()] {
					return false
				}
			case *ast.SpreadElement:
				if !e.isConstant(p.Expression) {
					return false
				}
			default:
				return false
			}
		}
		return true
	case *ast.UnaryExpression:
		switch n.Operator {
		case token.DELETE, token.INCREMENT, token.DECREMENT:
			return false
		}
		return e.isConstant(n.Operand)
	case *ast.BinaryExpression:
		return e.isConstant(n.Left) && e.isConstant(n.Right)
	case *ast.ConditionalExpression:
		return e.isConstant(n.Test) && e.isConstant(n.Consequent) && e.isConstant(n.Alternate)
	case *ast.SequenceExpression:
		for _, s := range n.Sequence {
			if !e.isConstant(s) {
				return false
			}
		}
		return true
	case *ast.TemplateLiteral:
		if n.Tag != nil {
			return false
		}
		for _, x := range n.Expressions {
			if !e.isConstant(x) {
				return false
			}
		}
		return true
	case *ast.DotExpression:
		return e.isConstant(n.Left)
	case *ast.BracketExpression:
		return e.isConstant(n.Left) && e.isConstant(n.Member)
	default:
		// Calls, functions, assignments, this, regular expressions.
		return false
	}
}

// ToConstant evaluates a constant expression.
func (e *Evaluator) ToConstant(expr string) (goja.Value, error) {
	if !e.IsConstant(expr) {
		return nil, fmt.Errorf("%q is not constant", expr)
	}
	return e.vm.RunString("(" + expr + "\n)")
}

// Literal folds expr into a JavaScript literal. ok is false when expr is not
// constant or its value has no literal form; callers then fall back to the
// runtime expression.
func (e *Evaluator) Literal(expr string) (string, bool) {
	v, err := e.ToConstant(expr)
	if err != nil {
		return "", false
	}
	return e.encode(v)
}

// fold evaluates trusted source built from constant expressions and encodes
// the result.
func (e *Evaluator) fold(src string) (string, bool) {
	v, err := e.vm.RunString(src)
	if err != nil {
		return "", false
	}
	return e.encode(v)
}

func (e *Evaluator) encode(v goja.Value) (string, bool) {
	if v == nil || goja.IsUndefined(v) {
		return "undefined", true
	}
	if goja.IsNull(v) {
		return "null", true
	}
	if _, isFunc := goja.AssertFunction(v); isFunc {
		return "", false
	}
	if f, ok := v.Export().(float64); ok {
		switch {
		case math.IsNaN(f):
			return "NaN", true
		case math.IsInf(f, 1):
			return "Infinity", true
		case math.IsInf(f, -1):
			return "-Infinity", true
		}
	}
	if obj, ok := v.(*goja.Object); ok {
		switch obj.ClassName() {
		case "Object", "Array":
		default:
			return "", false
		}
	}
	out, err := e.stringify(goja.Undefined(), v)
	if err != nil || goja.IsUndefined(out) {
		return "", false
	}
	return out.String(), true
}
