package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grindlemire/go-reactpug/pkg/reactpug"
)

func TestReadLocals(t *testing.T) {
	root := writeTree(t, map[string]string{
		"l.yaml": "name: Ada\ntags: [a, b]\nuser:\n  admin: true\n",
		"l.json": `{"name": "Ada", "count": 2}`,
		"bad":    "name: [",
	})

	tests := map[string]struct {
		file    string
		want    map[string]any
		wantErr bool
	}{
		"yaml": {
			file: "l.yaml",
			want: map[string]any{
				"name": "Ada",
				"tags": []any{"a", "b"},
				"user": map[string]any{"admin": true},
			},
		},
		"json": {
			file: "l.json",
			want: map[string]any{"name": "Ada", "count": 2},
		},
		"invalid": {
			file:    "bad",
			wantErr: true,
		},
		"missing": {
			file:    "nope.yaml",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := readLocals(filepath.Join(root, tt.file))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("readLocals() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readLocals() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("readLocals() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	root := writeTree(t, map[string]string{
		"card.pug": "div.card(class=kind)\n  h1= name\n  each t in tags\n    span= t",
	})
	locals := map[string]any{
		"name": "Ada",
		"kind": "wide",
		"tags": []any{"a", "b"},
	}

	var buf bytes.Buffer
	if err := renderTemplate(&buf, filepath.Join(root, "card.pug"), locals, reactpug.Options{}); err != nil {
		t.Fatalf("renderTemplate() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"name":  "div",
		"attrs": map[string]any{"class": "card wide"},
		"children": []any{
			map[string]any{"name": "h1", "children": []any{"Ada"}},
			map[string]any{"name": "span", "children": []any{"a"}},
			map[string]any{"name": "span", "children": []any{"b"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("renderTemplate() mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONSafe(t *testing.T) {
	el := &reactpug.Element{
		Name:     "button",
		Attrs:    map[string]any{"onClick": func() {}, "id": "b"},
		Children: []any{"Go"},
	}
	got := jsonSafe(el).(*reactpug.Element)
	want := &reactpug.Element{
		Name:     "button",
		Attrs:    map[string]any{"onClick": "[function]", "id": "b"},
		Children: []any{"Go"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("jsonSafe() mismatch (-want +got):\n%s", diff)
	}
	if _, err := json.Marshal(got); err != nil {
		t.Errorf("json.Marshal() error = %v", err)
	}
}
