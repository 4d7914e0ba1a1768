package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/grindlemire/go-reactpug/pkg/reactpug"
)

// runRender implements the render subcommand.
// It compiles one template, evaluates it with locals and prints the
// resulting element tree as JSON.
func runRender(args []string) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	closeLog, err := o.setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	if len(o.paths) != 1 {
		return fmt.Errorf("render takes exactly one template, got %d", len(o.paths))
	}

	cfg, err := o.settings()
	if err != nil {
		return err
	}
	opts, err := compileOptions(cfg, colorEnabled(os.Stderr))
	if err != nil {
		return err
	}

	var locals map[string]any
	if o.locals != "" {
		if locals, err = readLocals(o.locals); err != nil {
			return err
		}
	}

	return renderTemplate(os.Stdout, o.paths[0], locals, opts)
}

// renderTemplate renders the template at path and writes indented JSON to w.
func renderTemplate(w io.Writer, path string, locals map[string]any, opts reactpug.Options) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	opts.Filename = path

	tree, err := reactpug.Render(string(src), locals, reactpug.RenderOptions{Options: opts})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonSafe(tree))
}

// readLocals loads a YAML or JSON document of template locals.
func readLocals(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locals: %w", err)
	}
	var locals map[string]any
	if err := yaml.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("parsing locals %s: %w", path, err)
	}
	return locals, nil
}

// jsonSafe replaces values encoding/json cannot encode, such as event
// handlers, with a placeholder.
func jsonSafe(v any) any {
	switch v := v.(type) {
	case *reactpug.Element:
		if v == nil {
			return nil
		}
		el := &reactpug.Element{Name: v.Name}
		if v.Attrs != nil {
			el.Attrs = jsonSafe(v.Attrs).(map[string]any)
		}
		for _, c := range v.Children {
			el.Children = append(el.Children, jsonSafe(c))
		}
		return el
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = jsonSafe(x)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = jsonSafe(x)
		}
		return out
	case nil:
		return nil
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return "[function]"
	}
	return v
}
