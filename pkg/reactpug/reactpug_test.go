package reactpug

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grindlemire/go-reactpug/internal/pug"
)

func el(name string, attrs map[string]any, children ...any) *Element {
	return &Element{Name: name, Attrs: attrs, Children: children}
}

func TestRender(t *testing.T) {
	type tc struct {
		input  string
		locals map[string]any
		opts   RenderOptions
		want   any
	}

	tests := map[string]tc{
		"repeated class attributes are joined": {
			input:  `div(class="a" class="b") Hello`,
			locals: map[string]any{},
			want:   el("div", map[string]any{"class": "a b"}, "Hello"),
		},
		"literal text is decoded": {
			input: "p Tom &amp; Jerry &lt;3",
			want:  el("p", map[string]any{}, "Tom & Jerry <3"),
		},
		"lone text node": {
			input: "| just text",
			want:  "just text",
		},
		"empty template": {
			input: "",
			want:  el("div", nil),
		},
		"several roots are wrapped": {
			input: "h1 Title\np Body",
			want: el("div", nil,
				el("h1", map[string]any{}, "Title"),
				el("p", map[string]any{}, "Body"),
			),
		},
		"else branch when false": {
			input:  "if cond\n  p yes\nelse\n  p no",
			locals: map[string]any{"cond": false},
			want:   el("p", map[string]any{}, "no"),
		},
		"if branch when true": {
			input:  "if cond\n  p yes\nelse\n  p no",
			locals: map[string]any{"cond": true},
			want:   el("p", map[string]any{}, "yes"),
		},
		"unless": {
			input:  "unless hidden\n  p shown",
			locals: map[string]any{"hidden": false},
			want:   el("p", map[string]any{}, "shown"),
		},
		"else if chain": {
			input:  "if n == 1\n  p one\nelse if n == 2\n  p two\nelse\n  p many",
			locals: map[string]any{"n": 2},
			want:   el("p", map[string]any{}, "two"),
		},
		"each over array": {
			input:  "ul\n  each item in items\n    li= item",
			locals: map[string]any{"items": []any{"a", "b"}},
			want: el("ul", map[string]any{},
				el("li", map[string]any{}, "a"),
				el("li", map[string]any{}, "b"),
			),
		},
		"each over object with key": {
			input:  "ul\n  each v, k in obj\n    li= k + '=' + v",
			locals: map[string]any{"obj": map[string]any{"x": 1}},
			want:   el("ul", map[string]any{}, el("li", map[string]any{}, "x=1")),
		},
		"each alternate for empty array": {
			input:  "ul\n  each item in items\n    li= item\n  else\n    li empty",
			locals: map[string]any{"items": []any{}},
			want:   el("ul", map[string]any{}, el("li", map[string]any{}, "empty")),
		},
		"each alternate for empty object": {
			input:  "ul\n  each item in items\n    li= item\n  else\n    li empty",
			locals: map[string]any{"items": map[string]any{}},
			want:   el("ul", map[string]any{}, el("li", map[string]any{}, "empty")),
		},
		"each alternate skipped when not empty": {
			input:  "ul\n  each item in items\n    li= item\n  else\n    li empty",
			locals: map[string]any{"items": []any{"x"}},
			want:   el("ul", map[string]any{}, el("li", map[string]any{}, "x")),
		},
		"case when": {
			input:  "case kind\n  when 'a'\n    p A\n  when 'b'\n  when 'c'\n    p BC\n  default\n    p other",
			locals: map[string]any{"kind": "b"},
			want:   el("p", map[string]any{}, "BC"),
		},
		"dynamic class and constant class": {
			input:  "div.base(class=extra)",
			locals: map[string]any{"extra": []any{"x", "", "y"}},
			want:   el("div", map[string]any{"class": "base x y"}),
		},
		"class object": {
			input: "div(class={active: true, hidden: false})",
			want:  el("div", map[string]any{"class": "active"}),
		},
		"for and maxlength are renamed in tags": {
			input: `label(for="name")` + "\n" + `input(maxlength=3)`,
			want: el("div", nil,
				el("label", map[string]any{"for": "name"}),
				el("input", map[string]any{"maxLength": int64(3)}),
			),
		},
		"id shorthand": {
			input: "section#main.wide",
			want:  el("section", map[string]any{"id": "main", "class": "wide"}),
		},
		"buffered code": {
			input:  "p= greeting + ', ' + name",
			locals: map[string]any{"greeting": "hi", "name": "bob"},
			want:   el("p", map[string]any{}, "hi, bob"),
		},
		"unbuffered code": {
			input:  "- var x = 2 * n\np= x",
			locals: map[string]any{"n": 21},
			want:   el("p", map[string]any{}, "42"),
		},
		"interpolation": {
			input:  "p Hello #{name}!",
			locals: map[string]any{"name": "world"},
			want:   el("p", map[string]any{}, "Hello ", "world", "!"),
		},
		"tag interpolation": {
			input:  "p #[strong= name] wrote #[a(href='/x') this]",
			locals: map[string]any{"name": "ann"},
			want: el("p", map[string]any{},
				el("strong", map[string]any{}, "ann"),
				" wrote ",
				el("a", map[string]any{"href": "/x"}, "this"),
			),
		},
		"mixin with block and attributes": {
			input: "mixin card(title)\n  div(class=attributes.class)\n    h2= title\n    block\n" +
				"+card('T')(class='c')\n  p body",
			want: el("div", map[string]any{"class": "c"},
				el("h2", map[string]any{}, "T"),
				el("p", map[string]any{}, "body"),
			),
		},
		"mixin call with attributes only": {
			input: "mixin box\n  div&attributes(attributes)\n+box(class='k')",
			want:  el("div", map[string]any{"class": "k"}),
		},
		"constant attribute escaped at compile time": {
			input: `p(title='a"b & c')`,
			opts:  RenderOptions{Options: Options{EscapeAttributes: true}},
			want:  el("p", map[string]any{"title": "a&quot;b &amp; c"}),
		},
		"dynamic attribute escaped at runtime": {
			input:  "p(title=t)",
			locals: map[string]any{"t": "<x>"},
			opts:   RenderOptions{Options: Options{EscapeAttributes: true}},
			want:   el("p", map[string]any{"title": "&lt;x&gt;"}),
		},
		"constant attribute left to the factory": {
			input: `p(title='a"b')`,
			want:  el("p", map[string]any{"title": `a"b`}),
		},
		"mixin rest arguments": {
			input: "mixin list(...items)\n  ul\n    each i in items\n      li= i\n+list('a', 'b')",
			want: el("ul", map[string]any{},
				el("li", map[string]any{}, "a"),
				el("li", map[string]any{}, "b"),
			),
		},
		"dynamic mixin call": {
			input:  "mixin a\n  p A\nmixin b\n  p B\n+#{which}()",
			locals: map[string]any{"which": "b"},
			want:   el("p", map[string]any{}, "B"),
		},
		"attribute spread": {
			input:  "a(href='/x')&attributes(extra)",
			locals: map[string]any{"extra": map[string]any{"class": "btn", "target": "_blank"}},
			want:   el("a", map[string]any{"href": "/x", "class": "btn", "target": "_blank"}),
		},
		"style object": {
			input: "div(style={color: 'red', 'font-size': '2px'})",
			want:  el("div", map[string]any{"style": map[string]any{"color": "red", "fontSize": "2px"}}),
		},
		"style string": {
			input: `div(style="color: red; margin-top: 1px")`,
			want:  el("div", map[string]any{"style": map[string]any{"color": "red", "marginTop": "1px"}}),
		},
		"buffered comment is dropped": {
			input: "// note\np x",
			want:  el("p", map[string]any{}, "x"),
		},
		"globals resolve outside locals": {
			input: "p= Math.max(1, 2)",
			want:  el("p", map[string]any{}, "2"),
		},
		"locals shadow nothing when missing": {
			input: "p= typeof missing",
			want:  el("p", map[string]any{}, "undefined"),
		},
		"block expansion": {
			input: "ul: li x",
			want:  el("ul", map[string]any{}, el("li", map[string]any{}, "x")),
		},
		"textarea value": {
			input:  "textarea= body",
			locals: map[string]any{"body": "hi"},
			want:   el("textarea", map[string]any{"value": "hi"}),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Render(tt.input, tt.locals, tt.opts)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_Components(t *testing.T) {
	opts := RenderOptions{
		Components: map[string]func(map[string]any) any{
			"Greeting": func(props map[string]any) any {
				return "hello " + props["name"].(string)
			},
		},
	}
	got, err := Render("div\n  Greeting(name='ann')", nil, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := el("div", map[string]any{}, "hello ann")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_CustomFactory(t *testing.T) {
	got, err := Render("span(class='x') y", nil, RenderOptions{Options: Options{Factory: "h"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := el("span", map[string]any{"class": "x"}, "y")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_TextRoundTrip(t *testing.T) {
	tests := map[string]string{
		"ascii":    "plain words",
		"entities": "a &amp; b &quot;c&quot; &#39;d&#39; &#x41;",
		"unicode":  "héllo wörld ✓",
		"quotes":   `he said "hi" and 'bye'`,
	}
	decoded := map[string]string{
		"ascii":    "plain words",
		"entities": `a & b "c" 'd' A`,
		"unicode":  "héllo wörld ✓",
		"quotes":   `he said "hi" and 'bye'`,
	}

	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			for _, locals := range []map[string]any{nil, {"a": 1}, {"b": "x"}} {
				got, err := Render("p "+text, locals, RenderOptions{})
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				e, ok := got.(*Element)
				if !ok {
					t.Fatalf("Render() = %T, want *Element", got)
				}
				if e.Text() != decoded[name] {
					t.Errorf("Text() = %q, want %q", e.Text(), decoded[name])
				}
			}
		})
	}
}

func TestCompile_MixinElimination(t *testing.T) {
	type tc struct {
		input   string
		present []string
		absent  []string
	}

	tests := map[string]tc{
		"unused mixin is removed": {
			input:   "mixin ghost\n  p boo\nmixin used\n  p kept\n+used()",
			present: []string{"kept"},
			absent:  []string{"ghost", "boo"},
		},
		"dynamic call keeps every mixin": {
			input:   "mixin ghost\n  p boo\n+#{name}()",
			present: []string{"ghost", "boo"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Compile(tt.input, Options{})
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			for _, s := range tt.present {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCompile_Formats(t *testing.T) {
	type tc struct {
		opts   Options
		prefix string
		suffix string
	}

	tests := map[string]tc{
		"body": {
			opts:   Options{},
			suffix: "return fn;\n",
		},
		"commonjs": {
			opts:   Options{Format: FormatCommonJS},
			prefix: "var React = require(\"react\");\n",
			suffix: "module.exports = fn;\n",
		},
		"commonjs with custom factory": {
			opts:   Options{Format: FormatCommonJS, Factory: "h"},
			prefix: "var fn",
			suffix: "module.exports = fn;\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Compile("p x", tt.opts)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("output does not start with %q:\n%s", tt.prefix, out)
			}
			if !strings.HasSuffix(out, tt.suffix) {
				t.Errorf("output does not end with %q:\n%s", tt.suffix, out)
			}
			if !strings.Contains(out, "fn.locals = function pug_set_locals") {
				t.Errorf("output missing locals helper:\n%s", out)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	type tc struct {
		input   string
		wantErr string
	}

	tests := map[string]tc{
		"raw markup in text": {
			input:   "p a <b> c",
			wantErr: `Plain Text cannot contain "<" or ">" or "&"`,
		},
		"bare ampersand": {
			input:   "p fish & chips",
			wantErr: `Plain Text cannot contain`,
		},
		"include unsupported": {
			input:   "include header.pug",
			wantErr: "is not supported",
		},
		"unknown filter": {
			input:   ":nope\n  body",
			wantErr: "unknown filter :nope",
		},
		"invalid expression": {
			input:   "p= a +",
			wantErr: "parse generated code",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(tt.input, Options{Filename: "t.pug"})
			if err == nil {
				t.Fatalf("Compile() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Compile() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCompile_ErrorTypes(t *testing.T) {
	_, err := Compile("p= a +", Options{Filename: "t.pug"})
	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error = %T, want *SourceError", err)
	}
	if srcErr.Source == "" {
		t.Error("SourceError.Source is empty")
	}

	_, err = Compile("p a <b>", Options{Filename: "t.pug"})
	var pugErr *pug.Error
	if !errors.As(err, &pugErr) {
		t.Fatalf("error = %T, want *pug.Error", err)
	}
	if pugErr.Pos.Line != 1 {
		t.Errorf("error line = %d, want 1", pugErr.Pos.Line)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views", "hello.pug")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("p <oops>"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := CompileFile(path, Options{Basedir: dir})
	if err == nil {
		t.Fatal("CompileFile() succeeded, want error")
	}
	if !strings.Contains(err.Error(), filepath.Join("views", "hello.pug")) {
		t.Errorf("error %q does not name the file relative to Basedir", err)
	}

	if _, err := CompileFile(filepath.Join(dir, "missing.pug"), Options{}); err == nil {
		t.Error("CompileFile() on missing file succeeded")
	}
}
