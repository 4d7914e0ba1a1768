package pug

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// dump renders an AST as an indented outline for comparison in tests.
func dump(n Node) string {
	var sb strings.Builder
	dumpNode(&sb, n, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func dumpNode(sb *strings.Builder, n Node, depth int) {
	line := func(format string, args ...any) {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(sb, format, args...)
		sb.WriteByte('\n')
	}
	children := func(b *Block) {
		if b == nil {
			return
		}
		for _, c := range b.Nodes {
			dumpNode(sb, c, depth+1)
		}
	}

	switch n := n.(type) {
	case *Block:
		for _, c := range n.Nodes {
			dumpNode(sb, c, depth)
		}
	case *Tag:
		var attrs []string
		for _, a := range n.Attrs {
			attrs = append(attrs, a.Name+"="+a.Val)
		}
		head := "Tag " + n.Name
		if len(attrs) > 0 {
			head += " (" + strings.Join(attrs, " ") + ")"
		}
		if n.Code != nil {
			head += " = " + n.Code.Val
		}
		if n.SelfClosing {
			head += " /"
		}
		line("%s", head)
		children(n.Block)
	case *Text:
		line("Text %q", n.Val)
	case *Code:
		op := "-"
		if n.Buffer {
			op = "!="
			if n.MustEscape {
				op = "="
			}
		}
		line("Code %s %s", op, n.Val)
		children(n.Block)
	case *Conditional:
		line("If %s", n.Test)
		children(n.Consequent)
		switch alt := n.Alternate.(type) {
		case *Block:
			line("Else")
			children(alt)
		case *Conditional:
			line("Else")
			dumpNode(sb, alt, depth+1)
		}
	case *Each:
		line("Each %s,%s in %s", n.Val, n.Key, n.Obj)
		children(n.Block)
		if n.Alternate != nil {
			line("EachElse")
			children(n.Alternate)
		}
	case *Case:
		line("Case %s", n.Expr)
		children(n.Block)
	case *When:
		if n.Block == nil {
			line("When %s (fallthrough)", n.Expr)
			return
		}
		line("When %s", n.Expr)
		children(n.Block)
	case *Mixin:
		kind := "Mixin"
		if n.Call {
			kind = "Call"
		}
		line("%s %s(%s)", kind, n.Name, n.Args)
		children(n.Block)
	case *MixinBlock:
		line("MixinBlock")
	case *Comment:
		line("Comment %q", n.Val)
	case *BlockComment:
		line("BlockComment %q", n.Val)
		children(n.Block)
	case *Filter:
		line("Filter %s %q", n.Name, n.Text)
	default:
		line("%s", n.Kind())
	}
}

func TestParser_Structure(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"tag with text": {
			input: "p hello",
			want: `Tag p
  Text "hello"`,
		},
		"shorthand becomes attributes": {
			input: "a#home.nav.big(href='/') Home",
			want: `Tag a (id="home" class="nav" class="big" href='/')
  Text "Home"`,
		},
		"interpolated text": {
			input: "p Hello #{name}!",
			want: `Tag p
  Text "Hello "
  Code = name
  Text "!"`,
		},
		"buffered code": {
			input: "p= user.name\np!= raw",
			want: `Tag p = user.name
Tag p = raw`,
		},
		"nested children": {
			input: "ul\n  li one\n  li two",
			want: `Tag ul
  Tag li
    Text "one"
  Tag li
    Text "two"`,
		},
		"block expansion": {
			input: "ul: li: a link",
			want: `Tag ul
  Tag li
    Tag a
      Text "link"`,
		},
		"text block": {
			input: "p.\n  one\n  two",
			want: `Tag p
  Text "one\ntwo"`,
		},
		"if else if else": {
			input: "if a\n  p A\nelse if b\n  p B\nelse\n  p C",
			want: `If a
  Tag p
    Text "A"
Else
  If b
    Tag p
      Text "B"
  Else
    Tag p
      Text "C"`,
		},
		"unless": {
			input: "unless done\n  p todo",
			want: `If !(done)
  Tag p
    Text "todo"`,
		},
		"each with else": {
			input: "each item, i in items\n  li= item\nelse\n  li none",
			want: `Each item,i in items
  Tag li = item
EachElse
  Tag li
    Text "none"`,
		},
		"case with fallthrough": {
			input: "case n\n  when 0\n  when 1\n    p few\n  default\n    p many",
			want: `Case n
  When 0 (fallthrough)
  When 1
    Tag p
      Text "few"
  When default
    Tag p
      Text "many"`,
		},
		"mixin definition and call": {
			input: "mixin item(x)\n  li= x\n  block\n+item('a')\n  span inner",
			want: `Mixin item(x)
  Tag li = x
  MixinBlock
Call item('a')
  Tag span
    Text "inner"`,
		},
		"call without block": {
			input: "+item(1)",
			want:  `Call item(1)`,
		},
		"call with attributes and no arguments": {
			input: "+item(class='k')",
			want:  `Call item()`,
		},
		"call with arguments and attributes": {
			input: "+item(x)(class='k')",
			want:  `Call item(x)`,
		},
		"comments": {
			input: "// visible\n//- hidden\n//\n  body",
			want: `Comment " visible"
Comment " hidden"
BlockComment ""
  Text "body"`,
		},
		"filter": {
			input: ":markdown\n  # Title",
			want:  `Filter markdown "# Title"`,
		},
		"unbuffered code with block": {
			input: "- if (x)\n  p yes",
			want: `Code - if (x)
  Tag p
    Text "yes"`,
		},
		"self closing": {
			input: "img(src=url)/",
			want:  `Tag img (src=url) /`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root, err := Parse("test.pug", tt.input, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, dump(root)); diff != "" {
				t.Errorf("AST mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_EscapeAttributes(t *testing.T) {
	type tc struct {
		opts Options
		want bool
	}

	tests := map[string]tc{
		"escaping left to the factory": {
			opts: Options{},
			want: false,
		},
		"escaping requested": {
			opts: Options{EscapeAttributes: true},
			want: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root, err := Parse("test.pug", "a(title=t)", tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tag := root.Nodes[0].(*Tag)
			if got := tag.Attrs[0].MustEscape; got != tt.want {
				t.Errorf("MustEscape = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	type tc struct {
		input       string
		errContains string
	}

	tests := map[string]tc{
		"stray else": {
			input:       "p\nelse\n  p",
			errContains: "unexpected else",
		},
		"when outside case": {
			input:       "when 1\n  p",
			errContains: "outside of case",
		},
		"case without whens": {
			input:       "case x",
			errContains: "no when clauses",
		},
		"unclosed interpolation": {
			input:       "p #{name",
			errContains: "unclosed interpolation",
		},
		"unclosed tag interpolation": {
			input:       "p #[strong x",
			errContains: "unclosed tag interpolation",
		},
		"tag interpolation without tag": {
			input:       "p #[ x]",
			errContains: "invalid tag interpolation",
		},
		"lexer error wins": {
			input:       "  p",
			errContains: "first line",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test.pug", tt.input, Options{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestInterpolate(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"plain": {
			input: "just text",
			want:  `Text "just text"`,
		},
		"escaped and raw": {
			input: "#{a} and !{b}",
			want: `Code = a
Text " and "
Code != b`,
		},
		"backslash keeps sigil": {
			input: `price \#{x}`,
			want:  `Text "price #{x}"`,
		},
		"braces inside expression": {
			input: "#{fn({a: 1})}",
			want:  `Code = fn({a: 1})`,
		},
		"tag interpolation": {
			input: "#[strong x] y",
			want: `Tag strong
  Text "x"
Text " y"`,
		},
		"tag interpolation with attributes": {
			input: "see #[a(href='/[x]') here]",
			want: `Text "see "
Tag a (href='/[x]')
  Text "here"`,
		},
		"nested tag interpolation": {
			input: "#[em a #[b c]]",
			want: `Tag em
  Text "a "
  Tag b
    Text "c"`,
		},
		"backslash keeps tag sigil": {
			input: `\#[b]`,
			want:  `Text "#[b]"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			nodes, err := interpolate(tt.input, Position{Line: 1, Column: 1}, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, dump(&Block{Nodes: nodes})); diff != "" {
				t.Errorf("nodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
