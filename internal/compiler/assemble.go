package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja/parser"
	"github.com/evanw/esbuild/pkg/api"

	"github.com/grindlemire/go-reactpug/internal/log"
)

// assembler turns an optimized statement sequence into the final template
// function.
type assembler struct {
	filename string
	factory  string
	rootTag  string
	format   Format
	binder   *localsBinder
	color    bool
}

func (a *assembler) assemble(body string) (string, error) {
	if err := a.validate("(function (locals) {\n" + body + "\n});"); err != nil {
		return "", err
	}

	bound, err := a.binder.bind(a.filename, body)
	if err != nil {
		return "", a.fail(StageValidate, body, err)
	}

	var sb strings.Builder
	sb.WriteString("var fn = function (locals) {\n")
	sb.WriteString("var ____ = [];\n")
	sb.WriteString(bound)
	sb.WriteString("\nif (____.length === 1 && !Array.isArray(____[0])) {\nreturn ____.pop();\n}\n")
	fmt.Fprintf(&sb, "____.unshift(%s, null);\n", jsString(a.rootTag))
	fmt.Fprintf(&sb, "return %s.apply(%s, ____);\n};\n", a.factory, factoryReceiver(a.factory))
	fn := sb.String()
	if err := a.validate(fn); err != nil {
		return "", err
	}

	src := fn + "fn.locals = " + setLocalsSource() + ";\n"
	formatted, err := a.formatSource(src)
	if err != nil {
		return "", a.fail(StageValidate, src, err)
	}

	switch a.format {
	case FormatCommonJS:
		var out strings.Builder
		if factoryRoot(a.factory) == "React" {
			out.WriteString("var React = require(\"react\");\n")
		}
		out.WriteString(formatted)
		out.WriteString("module.exports = fn;\n")
		return out.String(), nil
	default:
		return formatted + "return fn;\n", nil
	}
}

// validate reports whether src parses as a standalone program.
func (a *assembler) validate(src string) error {
	if _, err := parser.ParseFile(nil, a.filename, src, 0); err != nil {
		return a.fail(StageValidate, src, err)
	}
	return nil
}

// formatSource pretty-prints src without changing its meaning.
func (a *assembler) formatSource(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:        api.LoaderJS,
		Target:        api.ES2015,
		Sourcefile:    a.filename,
		Charset:       api.CharsetUTF8,
		LegalComments: api.LegalCommentsNone,
		LogLevel:      api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{
			Kind:  api.ErrorMessage,
			Color: a.color,
		})
		return "", errors.New(strings.TrimSpace(strings.Join(msgs, "")))
	}
	return string(result.Code), nil
}

func (a *assembler) fail(stage, src string, err error) *SourceError {
	log.Error("%s: %s failed: %v\n%s", a.filename, stage, err, src)
	return &SourceError{Stage: stage, Filename: a.filename, Source: src, Err: err}
}
