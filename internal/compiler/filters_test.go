package compiler

import (
	"testing"
)

func TestFilters(t *testing.T) {
	tests := map[string]struct {
		filter string
		input  string
		want   string
	}{
		"markdown heading": {
			filter: "markdown",
			input:  "# Hello World",
			want:   "<h1 id=\"hello-world\">Hello World</h1>\n",
		},
		"md alias": {
			filter: "md",
			input:  "*em*",
			want:   "<p><em>em</em></p>\n",
		},
		"strikethrough": {
			filter: "markdown",
			input:  "~~gone~~",
			want:   "<p><del>gone</del></p>\n",
		},
		"escape": {
			filter: "escape",
			input:  "<b> & \"q\"",
			want:   "&lt;b&gt; &amp; &#34;q&#34;",
		},
		"plain": {
			filter: "plain",
			input:  "a < b",
			want:   "a &lt; b",
		},
	}

	filters := DefaultFilters()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, ok := filters[tt.filter]
			if !ok {
				t.Fatalf("filter %q not registered", tt.filter)
			}
			got, err := f(tt.input)
			if err != nil {
				t.Fatalf("filter error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.filter, tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultFilters_Fresh(t *testing.T) {
	a := DefaultFilters()
	a["custom"] = EscapeFilter
	if _, ok := DefaultFilters()["custom"]; ok {
		t.Error("DefaultFilters() returned a shared map")
	}
}
