package pug

import "strings"

// skipNewlineBefore consumes a Newline when the token after it is one of
// types. Continuation keywords (else, when) sit on their own line at the
// same indentation as the construct they continue.
func (p *Parser) skipNewlineBefore(types ...TokenType) bool {
	if p.current().Type != TokenNewline {
		for _, t := range types {
			if p.current().Type == t {
				return true
			}
		}
		return false
	}
	next := p.peek().Type
	for _, t := range types {
		if next == t {
			p.advance()
			return true
		}
	}
	return false
}

// parseConditional parses if/unless with its else-if/else chain.
func (p *Parser) parseConditional() *Conditional {
	tok := p.current()
	cond := &Conditional{Test: tok.Val, Position: p.position()}
	if tok.Type == TokenUnless {
		cond.Test = "!(" + tok.Val + ")"
	}
	p.advance()
	cond.Consequent = p.parseIndentedBlock()

	if !p.skipNewlineBefore(TokenElseIf, TokenElse) {
		return cond
	}
	switch p.current().Type {
	case TokenElseIf:
		cond.Alternate = p.parseConditional()
	case TokenElse:
		p.advance()
		cond.Alternate = p.parseIndentedBlock()
	}
	return cond
}

// parseEach parses an each loop and its optional else block.
func (p *Parser) parseEach() *Each {
	tok := p.current()
	each := &Each{Obj: tok.Obj, Val: tok.Val, Key: tok.Key, Position: p.position()}
	p.advance()
	each.Block = p.parseIndentedBlock()
	if p.skipNewlineBefore(TokenElse) {
		p.advance()
		each.Alternate = p.parseIndentedBlock()
	}
	return each
}

// parseCase parses a case statement. A when without a body falls through
// to the next one and keeps a nil Block.
func (p *Parser) parseCase() *Case {
	tok := p.current()
	c := &Case{Expr: tok.Val, Position: p.position()}
	p.advance()
	c.Block = &Block{Position: p.position()}
	if p.current().Type != TokenIndent {
		p.errorf("case %q has no when clauses", tok.Val)
		return c
	}
	p.advance()
	for {
		switch p.current().Type {
		case TokenEOF:
			return c
		case TokenOutdent:
			p.advance()
			return c
		case TokenNewline:
			p.advance()
			continue
		case TokenWhen, TokenDefault:
			c.Block.Nodes = append(c.Block.Nodes, p.parseWhen())
		default:
			p.errorf("unexpected %s inside case, expected when or default", p.current().Type)
		}
		if p.errors.HasErrors() {
			return c
		}
	}
}

func (p *Parser) parseWhen() *When {
	tok := p.current()
	when := &When{Expr: tok.Val, Position: p.position()}
	if tok.Type == TokenDefault {
		when.Expr = "default"
	}
	p.advance()
	switch p.current().Type {
	case TokenColon:
		p.advance()
		when.Block = &Block{Position: p.position(), Nodes: p.parseStatement()}
	case TokenIndent:
		when.Block = p.parseIndentedBlock()
	}
	return when
}

// parseMixinDefinition parses `mixin name(args)` and its body.
func (p *Parser) parseMixinDefinition() *Mixin {
	tok := p.current()
	m := &Mixin{Name: tok.Val, Args: tok.Args, Dynamic: tok.Dynamic, Position: p.position()}
	p.advance()
	m.Block = p.parseIndentedBlock()
	return m
}

// parseCall parses `+name(args)` with optional attributes and a block that
// the mixin body receives as its `block`.
func (p *Parser) parseCall() *Mixin {
	tok := p.current()
	m := &Mixin{Name: tok.Val, Args: tok.Args, Dynamic: tok.Dynamic, Call: true, Position: p.position()}
	p.advance()
	p.parseAttributeTokens(&m.Attrs, &m.AttributeBlocks)

	block := &Block{Position: p.position()}
	switch tok := p.current(); tok.Type {
	case TokenColon:
		p.advance()
		block.Nodes = append(block.Nodes, p.parseStatement()...)
	case TokenText:
		pos := p.position()
		p.advance()
		block.Nodes = append(block.Nodes, p.parseText(tok.Val, pos)...)
	case TokenCode:
		p.advance()
		block.Nodes = append(block.Nodes, &Code{
			Val:        tok.Val,
			Buffer:     tok.Buffer,
			MustEscape: tok.Escape,
			IsInline:   true,
			Position:   Position{File: p.lexer.filename, Line: tok.Line, Column: tok.Column},
		})
	case TokenTextBlock:
		pos := p.position()
		p.advance()
		if len(tok.Lines) > 0 {
			block.Nodes = append(block.Nodes, p.parseText(strings.Join(tok.Lines, "\n"), pos)...)
		}
	}
	if p.current().Type == TokenIndent {
		block.Nodes = append(block.Nodes, p.parseIndentedBlock().Nodes...)
	}
	if len(block.Nodes) > 0 {
		m.Block = block
	}
	return m
}
