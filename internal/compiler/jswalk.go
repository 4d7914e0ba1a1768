package compiler

import (
	"github.com/dop251/goja/ast"
)

// scope is one function scope. Block scoped declarations are treated as
// function scoped, which can only hide a free identifier that is also
// declared in a sibling block.
type scope struct {
	names  map[string]bool
	parent *scope
}

func (s *scope) declared(name string) bool {
	for ; s != nil; s = s.parent {
		if s.names[name] {
			return true
		}
	}
	return false
}

// freeWalker collects identifiers that are referenced but not declared.
type freeWalker struct {
	scope *scope
	seen  map[string]bool
	free  []string
}

// freeIdentifiers returns the free identifiers of a program in order of
// first reference.
func freeIdentifiers(prog *ast.Program) []string {
	w := &freeWalker{seen: make(map[string]bool)}
	w.enter(nil, prog.Body)
	w.statements(prog.Body)
	return w.free
}

// enter opens a scope holding params and the hoisted declarations of body.
func (w *freeWalker) enter(params *ast.ParameterList, body []ast.Statement) {
	s := &scope{names: make(map[string]bool), parent: w.scope}
	if params != nil {
		for _, b := range params.List {
			bindingNames(b.Target, s.names)
		}
		if params.Rest != nil {
			bindingNames(params.Rest, s.names)
		}
	}
	for _, stmt := range body {
		hoist(stmt, s.names)
	}
	w.scope = s
}

func (w *freeWalker) leave() {
	w.scope = w.scope.parent
}

func (w *freeWalker) ref(name string) {
	if w.scope.declared(name) || w.seen[name] {
		return
	}
	w.seen[name] = true
	w.free = append(w.free, name)
}

// bindingNames adds the identifiers bound by a declaration target.
func bindingNames(target ast.Expression, names map[string]bool) {
	switch t := target.(type) {
	case *ast.Identifier:
		names[t.Name.String()] = true
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			bindingNames(el, names)
		}
		bindingNames(t.Rest, names)
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				names[p.Name.Name.String()] = true
			case *ast.PropertyKeyed:
				bindingNames(p.Value, names)
			}
		}
		bindingNames(t.Rest, names)
	case *ast.AssignExpression:
		bindingNames(t.Left, names)
	case *ast.Binding:
		bindingNames(t.Target, names)
	}
}

func bindingList(list []*ast.Binding, names map[string]bool) {
	for _, b := range list {
		bindingNames(b.Target, names)
	}
}

// hoist records the declarations of stmt that belong to the enclosing
// function scope. It does not descend into nested functions.
func hoist(stmt ast.Statement, names map[string]bool) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		bindingList(s.List, names)
	case *ast.LexicalDeclaration:
		bindingList(s.List, names)
	case *ast.FunctionDeclaration:
		if s.Function.Name != nil {
			names[s.Function.Name.Name.String()] = true
		}
	case *ast.ClassDeclaration:
		if s.Class.Name != nil {
			names[s.Class.Name.Name.String()] = true
		}
	case *ast.BlockStatement:
		for _, x := range s.List {
			hoist(x, names)
		}
	case *ast.IfStatement:
		hoist(s.Consequent, names)
		if s.Alternate != nil {
			hoist(s.Alternate, names)
		}
	case *ast.ForStatement:
		switch init := s.Initializer.(type) {
		case *ast.ForLoopInitializerVarDeclList:
			bindingList(init.List, names)
		case *ast.ForLoopInitializerLexicalDecl:
			bindingList(init.LexicalDeclaration.List, names)
		}
		hoist(s.Body, names)
	case *ast.ForInStatement:
		forInto(s.Into, names)
		hoist(s.Body, names)
	case *ast.ForOfStatement:
		forInto(s.Into, names)
		hoist(s.Body, names)
	case *ast.WhileStatement:
		hoist(s.Body, names)
	case *ast.DoWhileStatement:
		hoist(s.Body, names)
	case *ast.LabelledStatement:
		hoist(s.Statement, names)
	case *ast.WithStatement:
		hoist(s.Body, names)
	case *ast.SwitchStatement:
		for _, c := range s.Body {
			for _, x := range c.Consequent {
				hoist(x, names)
			}
		}
	case *ast.TryStatement:
		hoist(s.Body, names)
		if s.Catch != nil {
			if s.Catch.Parameter != nil {
				bindingNames(s.Catch.Parameter, names)
			}
			hoist(s.Catch.Body, names)
		}
		if s.Finally != nil {
			hoist(s.Finally, names)
		}
	}
}

func forInto(into ast.ForInto, names map[string]bool) {
	switch i := into.(type) {
	case *ast.ForIntoVar:
		bindingNames(i.Binding.Target, names)
	case *ast.ForDeclaration:
		bindingNames(i.Target, names)
	}
}

func (w *freeWalker) statements(list []ast.Statement) {
	for _, s := range list {
		w.statement(s)
	}
}

func (w *freeWalker) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *ast.ExpressionStatement:
		w.expr(s.Expression)
	case *ast.VariableStatement:
		w.bindings(s.List)
	case *ast.LexicalDeclaration:
		w.bindings(s.List)
	case *ast.FunctionDeclaration:
		w.function(s.Function)
	case *ast.ClassDeclaration:
		w.class(s.Class)
	case *ast.BlockStatement:
		w.statements(s.List)
	case *ast.IfStatement:
		w.expr(s.Test)
		w.statement(s.Consequent)
		w.statement(s.Alternate)
	case *ast.ForStatement:
		switch init := s.Initializer.(type) {
		case *ast.ForLoopInitializerExpression:
			w.expr(init.Expression)
		case *ast.ForLoopInitializerVarDeclList:
			w.bindings(init.List)
		case *ast.ForLoopInitializerLexicalDecl:
			w.bindings(init.LexicalDeclaration.List)
		}
		w.expr(s.Test)
		w.expr(s.Update)
		w.statement(s.Body)
	case *ast.ForInStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.statement(s.Body)
	case *ast.ForOfStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.statement(s.Body)
	case *ast.WhileStatement:
		w.expr(s.Test)
		w.statement(s.Body)
	case *ast.DoWhileStatement:
		w.statement(s.Body)
		w.expr(s.Test)
	case *ast.ReturnStatement:
		w.expr(s.Argument)
	case *ast.ThrowStatement:
		w.expr(s.Argument)
	case *ast.LabelledStatement:
		w.statement(s.Statement)
	case *ast.WithStatement:
		w.expr(s.Object)
		w.statement(s.Body)
	case *ast.SwitchStatement:
		w.expr(s.Discriminant)
		for _, c := range s.Body {
			w.expr(c.Test)
			w.statements(c.Consequent)
		}
	case *ast.TryStatement:
		w.statement(s.Body)
		if s.Catch != nil {
			w.statement(s.Catch.Body)
		}
		if s.Finally != nil {
			w.statement(s.Finally)
		}
	}
}

func (w *freeWalker) forInto(into ast.ForInto) {
	switch i := into.(type) {
	case *ast.ForIntoVar:
		w.pattern(i.Binding.Target)
		w.expr(i.Binding.Initializer)
	case *ast.ForDeclaration:
		w.pattern(i.Target)
	case *ast.ForIntoExpression:
		w.expr(i.Expression)
	}
}

func (w *freeWalker) bindings(list []*ast.Binding) {
	for _, b := range list {
		w.pattern(b.Target)
		w.expr(b.Initializer)
	}
}

// pattern walks the expressions inside a declaration target: default
// values and computed keys. The bound names themselves are not references.
func (w *freeWalker) pattern(target ast.Expression) {
	switch t := target.(type) {
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			w.pattern(el)
		}
		w.pattern(t.Rest)
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				w.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					w.expr(p.Key)
				}
				w.pattern(p.Value)
			}
		}
		w.pattern(t.Rest)
	case *ast.AssignExpression:
		w.pattern(t.Left)
		w.expr(t.Right)
	}
}

func (w *freeWalker) function(fn *ast.FunctionLiteral) {
	w.enter(fn.ParameterList, fn.Body.List)
	w.scope.names["arguments"] = true
	if fn.Name != nil {
		w.scope.names[fn.Name.Name.String()] = true
	}
	w.params(fn.ParameterList)
	w.statements(fn.Body.List)
	w.leave()
}

func (w *freeWalker) arrow(fn *ast.ArrowFunctionLiteral) {
	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		w.enter(fn.ParameterList, body.List)
		w.params(fn.ParameterList)
		w.statements(body.List)
	case *ast.ExpressionBody:
		w.enter(fn.ParameterList, nil)
		w.params(fn.ParameterList)
		w.expr(body.Expression)
	default:
		return
	}
	w.leave()
}

func (w *freeWalker) params(params *ast.ParameterList) {
	if params == nil {
		return
	}
	for _, b := range params.List {
		w.pattern(b.Target)
		w.expr(b.Initializer)
	}
	w.pattern(params.Rest)
}

func (w *freeWalker) class(c *ast.ClassLiteral) {
	w.expr(c.SuperClass)
	for _, el := range c.Body {
		switch el := el.(type) {
		case *ast.MethodDefinition:
			if el.Computed {
				w.expr(el.Key)
			}
			w.function(el.Body)
		case *ast.FieldDefinition:
			if el.Computed {
				w.expr(el.Key)
			}
			w.expr(el.Initializer)
		case *ast.ClassStaticBlock:
			w.enter(nil, el.Block.List)
			w.statements(el.Block.List)
			w.leave()
		}
	}
}

func (w *freeWalker) exprs(list []ast.Expression) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w *freeWalker) expr(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
	case *ast.Identifier:
		w.ref(e.Name.String())
	case *ast.ArrayLiteral:
		w.exprs(e.Value)
	case *ast.ObjectLiteral:
		for _, p := range e.Value {
			switch p := p.(type) {
			case *ast.PropertyKeyed:
				if p.Computed {
					w.expr(p.Key)
				}
				w.expr(p.Value)
			case *ast.PropertyShort:
				w.ref(p.Name.Name.String())
			case *ast.SpreadElement:
				w.expr(p.Expression)
			}
		}
	case *ast.SpreadElement:
		w.expr(e.Expression)
	case *ast.AssignExpression:
		switch e.Left.(type) {
		case *ast.ArrayPattern, *ast.ObjectPattern:
			w.destructure(e.Left)
		default:
			w.expr(e.Left)
		}
		w.expr(e.Right)
	case *ast.BinaryExpression:
		w.expr(e.Left)
		w.expr(e.Right)
	case *ast.UnaryExpression:
		w.expr(e.Operand)
	case *ast.ConditionalExpression:
		w.expr(e.Test)
		w.expr(e.Consequent)
		w.expr(e.Alternate)
	case *ast.SequenceExpression:
		w.exprs(e.Sequence)
	case *ast.CallExpression:
		w.expr(e.Callee)
		w.exprs(e.ArgumentList)
	case *ast.NewExpression:
		w.expr(e.Callee)
		w.exprs(e.ArgumentList)
	case *ast.DotExpression:
		w.expr(e.Left)
	case *ast.PrivateDotExpression:
		w.expr(e.Left)
	case *ast.BracketExpression:
		w.expr(e.Left)
		w.expr(e.Member)
	case *ast.TemplateLiteral:
		w.expr(e.Tag)
		w.exprs(e.Expressions)
	case *ast.FunctionLiteral:
		w.function(e)
	case *ast.ArrowFunctionLiteral:
		w.arrow(e)
	case *ast.ClassLiteral:
		w.class(e)
	case *ast.YieldExpression:
		w.expr(e.Argument)
	case *ast.AwaitExpression:
		w.expr(e.Argument)
	case *ast.Optional:
		w.expr(e.Expression)
	case *ast.OptionalChain:
		w.expr(e.Expression)
	}
}

// destructure walks an assignment pattern, where bound names are
// references to existing variables.
func (w *freeWalker) destructure(target ast.Expression) {
	switch t := target.(type) {
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			w.destructure(el)
		}
		w.destructure(t.Rest)
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				w.ref(p.Name.Name.String())
				w.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					w.expr(p.Key)
				}
				w.destructure(p.Value)
			}
		}
		w.destructure(t.Rest)
	case *ast.AssignExpression:
		w.destructure(t.Left)
		w.expr(t.Right)
	default:
		w.expr(target)
	}
}
