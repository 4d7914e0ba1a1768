package compiler

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/google/go-cmp/cmp"
)

func TestFreeLocals(t *testing.T) {
	b := newLocalsBinder("React", []string{"moment"})

	tests := map[string]struct {
		body string
		want []string
	}{
		"references in order": {
			body: "____.push(b + a + b);",
			want: []string{"b", "a"},
		},
		"reserved names": {
			body: "____.push(React.createElement.apply(React, [undefined, Array.isArray(x), moment()]));",
			want: []string{"x"},
		},
		"var declarations": {
			body: "var a = 1;\n____.push(a + c);",
			want: []string{"c"},
		},
		"hoisted var after use": {
			body: "____.push(a);\nvar a = 1;",
		},
		"function params and arguments": {
			body: "var f = function (p) { return p + arguments.length + q; };",
			want: []string{"q"},
		},
		"function declaration name": {
			body: "function pug_join_classes(v) { return v; }\npug_join_classes(y);",
			want: []string{"y"},
		},
		"named function expression": {
			body: "var g = function self(n) { return n ? self(n - 1) : z; };",
			want: []string{"z"},
		},
		"property names are not references": {
			body: "____.push(obj.prop, {key: val, [k]: 1});",
			want: []string{"obj", "val", "k"},
		},
		"shorthand property is a reference": {
			body: "____.push({short});",
			want: []string{"short"},
		},
		"for in key": {
			body: "for (var key in src) { ____.push(key); }",
			want: []string{"src"},
		},
		"catch parameter": {
			body: "try { risky(); } catch (e) { ____.push(e); }",
			want: []string{"risky"},
		},
		"let and const": {
			body: "{ let a = 1; const b = a; ____.push(b, c); }",
			want: []string{"c"},
		},
		"arrow functions": {
			body: "____.push(list.map((x) => x + offset));",
			want: []string{"list", "offset"},
		},
		"destructuring declarations": {
			body: "var {a, b: [c]} = src;\n____.push(a, c, d);",
			want: []string{"src", "d"},
		},
		"destructuring assignment": {
			body: "({a} = src);",
			want: []string{"a", "src"},
		},
		"labels are not references": {
			body: "outer: for (;;) { break outer; }",
		},
		"class declaration": {
			body: "class Item extends Base { render() { return this.x + y; } }\n____.push(new Item());",
			want: []string{"Base", "y"},
		},
		"typeof": {
			body: "____.push(typeof maybe);",
			want: []string{"maybe"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := b.freeLocals("t.js", tt.body)
			if err != nil {
				t.Fatalf("freeLocals() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("freeLocals() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocalsBinder_Bind(t *testing.T) {
	b := newLocalsBinder("React", nil)

	body, err := b.bind("t.js", "____.push(a);")
	if err != nil {
		t.Fatalf("bind() error = %v", err)
	}
	if !strings.HasPrefix(body, "var pug_locals = locals || {};\n(function (a) {\n") {
		t.Errorf("bind() = %q", body)
	}

	// Evaluate the bound body in the scopes it will be used in: locals wins,
	// then an outer binding, then undefined.
	tests := map[string]struct {
		locals string
		outer  string
		want   string
	}{
		"from locals":      {locals: `{a: "local"}`, outer: `"outer"`, want: "local"},
		"locals undefined": {locals: `{a: undefined}`, outer: `"outer"`, want: "undefined"},
		"from outer scope": {locals: `{}`, outer: `"outer"`, want: "outer"},
		"missing":          {locals: `{}`, want: "undefined"},
		"no locals object": {locals: `null`, want: "undefined"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			vm := goja.New()
			src := "(function (locals) {\nvar ____ = [];\n"
			if tt.outer != "" {
				src = "var a = " + tt.outer + ";\n" + src
			}
			src += body + "\nreturn String(____[0]);\n})(" + tt.locals + ")"
			v, err := vm.RunString(src)
			if err != nil {
				t.Fatalf("RunString() error = %v\n%s", err, src)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalsBinder_NothingFree(t *testing.T) {
	b := newLocalsBinder("React", nil)
	body := "____.push(React.createElement(\"p\", null));"
	got, err := b.bind("t.js", body)
	if err != nil {
		t.Fatalf("bind() error = %v", err)
	}
	if got != body {
		t.Errorf("bind() = %q, want body unchanged", got)
	}
}
