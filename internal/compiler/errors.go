package compiler

import "fmt"

// Compilation stages that can fail on generated source.
const (
	StageParse    = "parse"
	StageOptimize = "optimize"
	StageRewrite  = "rewrite"
	StageValidate = "validate"
)

// SourceError reports a failure on synthesized source. The source is kept
// verbatim because diagnostics about generated code are not actionable
// without it.
type SourceError struct {
	Stage    string
	Filename string
	Source   string
	Err      error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s generated code: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s generated code: %v", e.Filename, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}
