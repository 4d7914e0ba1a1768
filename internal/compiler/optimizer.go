package compiler

import (
	"errors"
	"strings"
	"time"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/evanw/esbuild/pkg/api"

	"github.com/grindlemire/go-reactpug/internal/log"
)

// Optimizer runs the generic optimizer and the domain rewriter over an
// intermediate program and returns the optimized statement sequence.
type Optimizer struct {
	Filename string
	Rewriter Rewriter
	// Color enables ANSI colors in formatted optimizer diagnostics.
	Color bool
}

// wrap assembles the helpers, the mixin table and the program inside an
// immediately invoked function so the optimizer sees one closed scope.
func wrap(ir string) string {
	var sb strings.Builder
	sb.WriteString(";(function () {\n")
	sb.WriteString(helpersFor(ir))
	sb.WriteString("var pug_mixins = {};\nvar pug_interp;\n")
	sb.WriteString(ir)
	sb.WriteString("\n}.call(this));\n")
	return sb.String()
}

// Optimize returns the optimized body statements of ir.
func (o *Optimizer) Optimize(ir string) (string, error) {
	src := wrap(ir)
	if _, err := parser.ParseFile(nil, o.Filename, src, 0); err != nil {
		return "", o.fail(StageParse, src, err)
	}

	start := time.Now()
	result := api.Transform(src, api.TransformOptions{
		Loader:        api.LoaderJS,
		Target:        api.ES2015,
		Sourcefile:    o.Filename,
		MinifySyntax:  true,
		Charset:       api.CharsetUTF8,
		LegalComments: api.LegalCommentsNone,
		LogLevel:      api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{
			Kind:  api.ErrorMessage,
			Color: o.Color,
		})
		return "", o.fail(StageOptimize, src, errors.New(strings.TrimSpace(strings.Join(msgs, ""))))
	}
	log.Optimize("%s: esbuild %d -> %d bytes in %s", o.Filename, len(src), len(result.Code), time.Since(start))

	rewriter := o.Rewriter
	if rewriter == nil {
		rewriter = NopRewriter{}
	}
	optimized, err := rewriter.Rewrite(string(result.Code))
	if err != nil {
		return "", o.fail(StageRewrite, string(result.Code), err)
	}

	body, err := extractBody(o.Filename, optimized)
	if err != nil {
		return "", o.fail(StageOptimize, optimized, err)
	}
	return body, nil
}

func (o *Optimizer) fail(stage, src string, err error) *SourceError {
	log.Error("%s: %s failed: %v\n%s", o.Filename, stage, err, src)
	return &SourceError{Stage: stage, Filename: o.Filename, Source: src, Err: err}
}

// extractBody finds the wrapper function in src and returns the source
// between its braces.
func extractBody(filename, src string) (string, error) {
	prog, err := parser.ParseFile(nil, filename, src, 0)
	if err != nil {
		return "", err
	}
	for _, stmt := range prog.Body {
		if fn := wrapperFunction(stmt); fn != nil {
			body := src[int(fn.Body.LeftBrace):int(fn.Body.RightBrace)-1]
			return strings.TrimSpace(body), nil
		}
	}
	return "", errors.New("wrapper function not found in optimized program")
}

// wrapperFunction matches `(function () { ... }).call(this)`.
func wrapperFunction(stmt ast.Statement) *ast.FunctionLiteral {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return nil
	}
	call, ok := es.Expression.(*ast.CallExpression)
	if !ok {
		return nil
	}
	dot, ok := call.Callee.(*ast.DotExpression)
	if !ok || dot.Identifier.Name.String() != "call" {
		return nil
	}
	fn, _ := dot.Left.(*ast.FunctionLiteral)
	return fn
}
