package compiler

// Rewriter is a domain-specific pass run after the generic optimizer. It
// receives a complete program and must return an equivalent one.
type Rewriter interface {
	Rewrite(src string) (string, error)
}

// RewriterFunc adapts a function to the Rewriter interface.
type RewriterFunc func(src string) (string, error)

// Rewrite calls f(src).
func (f RewriterFunc) Rewrite(src string) (string, error) {
	return f(src)
}

// NopRewriter returns its input unchanged.
type NopRewriter struct{}

// Rewrite returns src.
func (NopRewriter) Rewrite(src string) (string, error) {
	return src, nil
}
