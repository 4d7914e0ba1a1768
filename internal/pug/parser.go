package pug

import (
	"encoding/json"
	"strings"
)

// Options configures the parser.
type Options struct {
	// EscapeAttributes forwards the escape request of `name=value`
	// attributes to the compiler. When false (the default) attribute values
	// are left to the element factory, which escapes them when rendering.
	EscapeAttributes bool
}

// Parser builds a template AST from the token stream.
type Parser struct {
	lexer  *Lexer
	tokens []Token
	pos    int
	opts   Options
	errors *ErrorList
}

// NewParser creates a new Parser for the given lexer.
func NewParser(lexer *Lexer, opts Options) *Parser {
	return &Parser{
		lexer:  lexer,
		tokens: lexer.Lex(),
		opts:   opts,
		errors: NewErrorList(),
	}
}

// Parse parses source into the root block of a template.
func Parse(filename, source string, opts Options) (*Block, error) {
	return NewParser(NewLexer(filename, source), opts).ParseFile()
}

// Errors returns any errors encountered during parsing.
func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// ParseFile parses the whole token stream. Lexer errors take precedence
// since later parse errors are usually a consequence of them.
func (p *Parser) ParseFile() (*Block, error) {
	if err := p.lexer.Errors().Err(); err != nil {
		return nil, err
	}
	root := &Block{Position: p.position()}
	for p.current().Type != TokenEOF {
		switch p.current().Type {
		case TokenNewline:
			p.advance()
		case TokenOutdent:
			p.advance()
		default:
			root.Nodes = append(root.Nodes, p.parseStatement()...)
		}
		if p.errors.HasErrors() {
			return nil, p.errors
		}
	}
	return root, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// position returns the current token's position.
func (p *Parser) position() Position {
	tok := p.current()
	return Position{File: p.lexer.filename, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	err := NewErrorf(p.position(), format, args...)
	if line := p.current().Line - 1; line >= 0 && line < len(p.lexer.lines) {
		err.Source = strings.TrimRight(p.lexer.lines[line], " \t")
	}
	p.errors.Add(err)
	// Skip to the next line so one mistake reports once.
	for t := p.current().Type; t != TokenEOF && t != TokenNewline && t != TokenOutdent; t = p.current().Type {
		p.advance()
	}
}

// parseStatement parses one line-level construct. Text with interpolations
// expands to several nodes, hence the slice.
func (p *Parser) parseStatement() []Node {
	tok := p.current()
	pos := p.position()

	switch tok.Type {
	case TokenTag, TokenInterpolatedTag:
		return []Node{p.parseTag()}
	case TokenText:
		p.advance()
		return p.parseText(tok.Val, pos)
	case TokenCode:
		return []Node{p.parseCode()}
	case TokenComment:
		return []Node{p.parseComment()}
	case TokenIf, TokenUnless:
		return []Node{p.parseConditional()}
	case TokenEach:
		return []Node{p.parseEach()}
	case TokenCase:
		return []Node{p.parseCase()}
	case TokenMixin:
		return []Node{p.parseMixinDefinition()}
	case TokenCall:
		return []Node{p.parseCall()}
	case TokenBlock:
		p.advance()
		if tok.Val == "" {
			return []Node{&MixinBlock{Position: pos}}
		}
		return []Node{&NamedBlock{Name: tok.Val, Mode: tok.Args, Nodes: p.parseIndentedBlock().Nodes, Position: pos}}
	case TokenYield:
		p.advance()
		return []Node{&YieldBlock{Position: pos}}
	case TokenFilter:
		p.advance()
		return []Node{&Filter{Name: tok.Val, Text: strings.Join(tok.Lines, "\n"), Position: pos}}
	case TokenDoctype:
		p.advance()
		return []Node{&Doctype{Val: tok.Val, Position: pos}}
	case TokenInclude:
		p.advance()
		return []Node{&Include{Path: tok.Val, Position: pos}}
	case TokenExtends:
		p.advance()
		return []Node{&Extends{Path: tok.Val, Position: pos}}
	case TokenElse, TokenElseIf:
		p.errorf("unexpected %s without a preceding if or each", tok.Type)
	case TokenWhen, TokenDefault:
		p.errorf("unexpected %s outside of case", tok.Type)
	case TokenIndent:
		p.errorf("unexpected indentation")
	default:
		p.errorf("unexpected token %s", tok.Type)
	}
	return nil
}

// parseIndentedBlock parses an Indent ... Outdent region. It returns an empty
// block when the current token does not open one.
func (p *Parser) parseIndentedBlock() *Block {
	block := &Block{Position: p.position()}
	if p.current().Type != TokenIndent {
		return block
	}
	p.advance()
	for {
		switch p.current().Type {
		case TokenEOF:
			return block
		case TokenOutdent:
			p.advance()
			return block
		case TokenNewline:
			p.advance()
			continue
		}
		block.Nodes = append(block.Nodes, p.parseStatement()...)
		if p.errors.HasErrors() {
			return block
		}
	}
}

func (p *Parser) parseText(val string, pos Position) []Node {
	nodes, err := interpolate(val, pos, p.opts)
	if err != nil {
		if e, ok := err.(*Error); ok {
			p.errors.Add(e)
		}
		return nil
	}
	return nodes
}

func (p *Parser) parseCode() *Code {
	tok := p.current()
	code := &Code{
		Val:        tok.Val,
		Buffer:     tok.Buffer,
		MustEscape: tok.Escape,
		Position:   p.position(),
	}
	p.advance()
	if p.current().Type == TokenIndent {
		code.Block = p.parseIndentedBlock()
	}
	return code
}

func (p *Parser) parseComment() Node {
	tok := p.current()
	pos := p.position()
	p.advance()
	if len(tok.Lines) == 0 {
		return &Comment{Val: tok.Val, Buffer: tok.Buffer, Position: pos}
	}
	block := &Block{Position: pos}
	for i, line := range tok.Lines {
		block.Nodes = append(block.Nodes, &Text{
			Val:      line,
			Position: Position{File: pos.File, Line: pos.Line + i + 1, Column: 1},
		})
	}
	return &BlockComment{Val: tok.Val, Buffer: tok.Buffer, Block: block, Position: pos}
}

// parseTag parses a tag line: name, shorthand, attributes, trailing content
// and the indented child block.
func (p *Parser) parseTag() *Tag {
	tok := p.current()
	tag := &Tag{
		Name:     tok.Val,
		Buffer:   tok.Type == TokenInterpolatedTag,
		Block:    &Block{Position: p.position()},
		Position: p.position(),
	}
	p.advance()
	p.parseAttributeTokens(&tag.Attrs, &tag.AttributeBlocks)

	switch tok := p.current(); tok.Type {
	case TokenSlash:
		tag.SelfClosing = true
		p.advance()
	case TokenColon:
		p.advance()
		tag.Block.Nodes = append(tag.Block.Nodes, p.parseStatement()...)
	case TokenCode:
		tag.Code = &Code{
			Val:        tok.Val,
			Buffer:     tok.Buffer,
			MustEscape: tok.Escape,
			IsInline:   true,
			Position:   p.position(),
		}
		p.advance()
	case TokenText:
		pos := p.position()
		p.advance()
		tag.Block.Nodes = append(tag.Block.Nodes, p.parseText(tok.Val, pos)...)
	case TokenTextBlock:
		pos := p.position()
		p.advance()
		if len(tok.Lines) > 0 {
			tag.Block.Nodes = append(tag.Block.Nodes, p.parseText(strings.Join(tok.Lines, "\n"), pos)...)
		}
	}

	if p.current().Type == TokenIndent {
		tag.Block.Nodes = append(tag.Block.Nodes, p.parseIndentedBlock().Nodes...)
	}
	return tag
}

// parseAttributeTokens consumes #id, .class, (attrs) and &attributes(...)
// tokens in source order.
func (p *Parser) parseAttributeTokens(attrs *[]*Attribute, blocks *[]string) {
	for {
		tok := p.current()
		switch tok.Type {
		case TokenID:
			*attrs = append(*attrs, &Attribute{Name: "id", Val: jsString(tok.Val), Position: p.position()})
		case TokenClass:
			*attrs = append(*attrs, &Attribute{Name: "class", Val: jsString(tok.Val), Position: p.position()})
		case TokenAttrs:
			for _, a := range tok.Attrs {
				a.MustEscape = a.MustEscape && p.opts.EscapeAttributes
				*attrs = append(*attrs, a)
			}
		case TokenAndAttributes:
			*blocks = append(*blocks, tok.Val)
		default:
			return
		}
		p.advance()
	}
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(sb.String(), "\n")
}
