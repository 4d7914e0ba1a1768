package reactpug

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// Element is a rendered element descriptor.
type Element struct {
	Name     string         `json:"name"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []any          `json:"children,omitempty"` // *Element or string
}

// Text returns the concatenated text of e and its descendants.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Children {
		switch c := c.(type) {
		case string:
			sb.WriteString(c)
		case *Element:
			sb.WriteString(c.Text())
		}
	}
	return sb.String()
}

// RenderOptions configures Render.
type RenderOptions struct {
	Options
	// Components are callable as tag names, e.g. `Button(label="x")`.
	// Each receives the element's props with children under "children".
	Components map[string]func(props map[string]any) any
}

// domAttrs maps React property names back to HTML attribute names.
var domAttrs = map[string]string{
	"className": "class",
	"htmlFor":   "for",
}

// renderer evaluates compiled templates against a factory that builds
// Element values.
type renderer struct {
	vm *goja.Runtime
}

// Render compiles src and evaluates it with locals. The result is an
// *Element, a string for a lone text node, or nil.
func Render(src string, locals map[string]any, opts RenderOptions) (any, error) {
	compileOpts := opts.Options
	compileOpts.Format = FormatBody
	out, err := Compile(src, compileOpts)
	if err != nil {
		return nil, err
	}
	return Evaluate(out, locals, opts)
}

// Evaluate runs a FormatBody artifact with locals.
func Evaluate(compiled string, locals map[string]any, opts RenderOptions) (any, error) {
	r := &renderer{vm: goja.New()}

	factory := opts.Factory
	if factory == "" {
		factory = "React.createElement"
	}
	path := strings.Split(factory, ".")
	root, err := r.factoryObject(path)
	if err != nil {
		return nil, err
	}

	wrapper, err := r.vm.RunString("(function (" + path[0] + ") {\n" + compiled + "\n})")
	if err != nil {
		return nil, fmt.Errorf("evaluating template: %w", err)
	}
	outer, ok := goja.AssertFunction(wrapper)
	if !ok {
		return nil, fmt.Errorf("evaluating template: wrapper is not a function")
	}
	fnVal, err := outer(goja.Undefined(), root)
	if err != nil {
		return nil, fmt.Errorf("evaluating template: %w", err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("evaluating template: compiled source did not return a function")
	}

	localsObj := r.vm.NewObject()
	for k, v := range locals {
		if err := localsObj.Set(k, r.toJS(v)); err != nil {
			return nil, err
		}
	}
	for name, c := range opts.Components {
		if err := localsObj.Set(name, r.component(c)); err != nil {
			return nil, err
		}
	}

	result, err := fn(goja.Undefined(), localsObj)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	return r.node(result), nil
}

// factoryObject builds the value bound to the factory's root identifier.
func (r *renderer) factoryObject(path []string) (goja.Value, error) {
	var v goja.Value = r.vm.ToValue(r.createElement)
	for i := len(path) - 1; i > 0; i-- {
		obj := r.vm.NewObject()
		if err := obj.Set(path[i], v); err != nil {
			return nil, err
		}
		v = obj
	}
	return v, nil
}

func (r *renderer) createElement(call goja.FunctionCall) goja.Value {
	name := call.Argument(0)
	props := call.Argument(1)

	var children []any
	for _, arg := range call.Arguments[min(2, len(call.Arguments)):] {
		children = r.appendChildren(children, arg)
	}

	if fn, ok := goja.AssertFunction(name); ok {
		p := r.vm.NewObject()
		if obj, ok := props.(*goja.Object); ok {
			for _, k := range obj.Keys() {
				_ = p.Set(k, obj.Get(k))
			}
		}
		kids := make([]any, len(children))
		for i, c := range children {
			kids[i] = r.vm.ToValue(c)
		}
		_ = p.Set("children", r.vm.NewArray(kids...))
		out, err := fn(goja.Undefined(), p)
		if err != nil {
			if ex, ok := err.(*goja.Exception); ok {
				panic(ex)
			}
			panic(r.vm.NewGoError(err))
		}
		return out
	}

	el := &Element{Name: name.String()}
	if obj, ok := props.(*goja.Object); ok {
		el.Attrs = make(map[string]any)
		for _, k := range obj.Keys() {
			key := k
			if alias, ok := domAttrs[k]; ok {
				key = alias
			}
			el.Attrs[key] = obj.Get(k).Export()
		}
	}
	el.Children = children
	return r.vm.ToValue(el)
}

// appendChildren flattens v into children, dropping the values React does
// not render.
func (r *renderer) appendChildren(children []any, v goja.Value) []any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return children
	}
	if el, ok := v.Export().(*Element); ok {
		return append(children, el)
	}
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "Array" {
		n := int(obj.Get("length").ToInteger())
		for i := 0; i < n; i++ {
			children = r.appendChildren(children, obj.Get(fmt.Sprint(i)))
		}
		return children
	}
	if _, ok := v.Export().(bool); ok {
		return children
	}
	return append(children, v.String())
}

// node converts a template result to its Go form.
func (r *renderer) node(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if el, ok := v.Export().(*Element); ok {
		return el
	}
	return v.String()
}

// component adapts a Go component to a JavaScript function.
func (r *renderer) component(c func(props map[string]any) any) goja.Value {
	return r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		props, _ := call.Argument(0).Export().(map[string]any)
		return r.toJS(c(props))
	})
}

// toJS converts Go data to plain JavaScript values so arrays pass
// Array.isArray and objects support for-in.
func (r *renderer) toJS(v any) goja.Value {
	switch v := v.(type) {
	case map[string]any:
		obj := r.vm.NewObject()
		for k, x := range v {
			_ = obj.Set(k, r.toJS(x))
		}
		return obj
	case []any:
		items := make([]any, len(v))
		for i, x := range v {
			items[i] = r.toJS(x)
		}
		return r.vm.NewArray(items...)
	case []string:
		items := make([]any, len(v))
		for i, x := range v {
			items[i] = x
		}
		return r.vm.NewArray(items...)
	default:
		return r.vm.ToValue(v)
	}
}
