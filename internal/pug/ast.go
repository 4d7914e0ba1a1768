package pug

// Node is the interface implemented by all template AST nodes.
type Node interface {
	node()         // marker method to ensure type safety
	Pos() Position // returns the source position of the node
	Kind() string  // node kind name used in diagnostics
}

// Block is an ordered list of child nodes.
type Block struct {
	Nodes    []Node
	Position Position
}

func (b *Block) node()         {}
func (b *Block) Pos() Position { return b.Position }
func (b *Block) Kind() string  { return "Block" }

// Empty reports whether the block is nil or has no children.
func (b *Block) Empty() bool { return b == nil || len(b.Nodes) == 0 }

// NamedBlock is a `block name` region. Without a linker it renders its
// own content in place.
type NamedBlock struct {
	Name     string
	Mode     string // replace, append or prepend
	Nodes    []Node
	Position Position
}

func (b *NamedBlock) node()         {}
func (b *NamedBlock) Pos() Position { return b.Position }
func (b *NamedBlock) Kind() string  { return "NamedBlock" }

// YieldBlock marks where an including template injects content.
type YieldBlock struct {
	Position Position
}

func (y *YieldBlock) node()         {}
func (y *YieldBlock) Pos() Position { return y.Position }
func (y *YieldBlock) Kind() string  { return "YieldBlock" }

// Attribute is a single tag or mixin attribute. Val is always source code
// in the target scripting language, never a pre-evaluated value.
type Attribute struct {
	Name       string
	Val        string
	MustEscape bool
	Position   Position
}

// Tag is an element: name, attributes and children.
type Tag struct {
	Name            string
	Attrs           []*Attribute
	AttributeBlocks []string // &attributes(expr) expressions
	Code            *Code    // inline `tag= expr`
	Block           *Block
	Buffer          bool // name is an expression (#{expr})
	SelfClosing     bool
	Position        Position
}

func (t *Tag) node()         {}
func (t *Tag) Pos() Position { return t.Position }
func (t *Tag) Kind() string  { return "Tag" }

// Text is plain text content.
type Text struct {
	Val      string
	Position Position
}

func (t *Text) node()         {}
func (t *Text) Pos() Position { return t.Position }
func (t *Text) Kind() string  { return "Text" }

// Literal is raw literal content produced by legacy front-ends.
type Literal struct {
	Str      string
	Position Position
}

func (l *Literal) node()         {}
func (l *Literal) Pos() Position { return l.Position }
func (l *Literal) Kind() string  { return "Literal" }

// Code is an embedded expression or statement.
type Code struct {
	Val        string
	Buffer     bool // output the value
	MustEscape bool // escape the buffered value (= vs !=)
	IsInline   bool // produced by #{} interpolation
	Block      *Block
	Position   Position
}

func (c *Code) node()         {}
func (c *Code) Pos() Position { return c.Position }
func (c *Code) Kind() string  { return "Code" }

// Comment is a single-line comment.
type Comment struct {
	Val      string
	Buffer   bool // false for //- comments
	Position Position
}

func (c *Comment) node()         {}
func (c *Comment) Pos() Position { return c.Position }
func (c *Comment) Kind() string  { return "Comment" }

// BlockComment is a comment with an indented body.
type BlockComment struct {
	Val      string
	Buffer   bool
	Block    *Block
	Position Position
}

func (c *BlockComment) node()         {}
func (c *BlockComment) Pos() Position { return c.Position }
func (c *BlockComment) Kind() string  { return "BlockComment" }

// Case is a switch over Expr whose block holds When nodes.
type Case struct {
	Expr     string
	Block    *Block
	Position Position
}

func (c *Case) node()         {}
func (c *Case) Pos() Position { return c.Position }
func (c *Case) Kind() string  { return "Case" }

// When is one arm of a Case. Expr is "default" for the default arm and a
// nil Block falls through to the next arm.
type When struct {
	Expr     string
	Block    *Block
	Position Position
}

func (w *When) node()         {}
func (w *When) Pos() Position { return w.Position }
func (w *When) Kind() string  { return "When" }

// Conditional is if / else if / else. Alternate is a *Block, a
// *Conditional or nil.
type Conditional struct {
	Test       string
	Consequent *Block
	Alternate  Node
	Position   Position
}

func (c *Conditional) node()         {}
func (c *Conditional) Pos() Position { return c.Position }
func (c *Conditional) Kind() string  { return "Conditional" }

// Each iterates Obj binding Val (and optionally Key). Alternate renders
// when the iterable has no elements.
type Each struct {
	Obj       string
	Val       string
	Key       string
	Block     *Block
	Alternate *Block
	Position  Position
}

func (e *Each) node()         {}
func (e *Each) Pos() Position { return e.Position }
func (e *Each) Kind() string  { return "Each" }

// Mixin is either a definition (Call == false) or an invocation.
// Dynamic mixins carry an expression in Name instead of a literal.
type Mixin struct {
	Name            string
	Args            string
	Dynamic         bool
	Call            bool
	Block           *Block
	Attrs           []*Attribute
	AttributeBlocks []string
	Position        Position
}

func (m *Mixin) node()         {}
func (m *Mixin) Pos() Position { return m.Position }
func (m *Mixin) Kind() string  { return "Mixin" }

// MixinBlock renders the block passed to the enclosing mixin call.
type MixinBlock struct {
	Position Position
}

func (m *MixinBlock) node()         {}
func (m *MixinBlock) Pos() Position { return m.Position }
func (m *MixinBlock) Kind() string  { return "MixinBlock" }

// Filter is a `:name` block whose text is transformed at compile time.
type Filter struct {
	Name     string
	Text     string
	Position Position
}

func (f *Filter) node()         {}
func (f *Filter) Pos() Position { return f.Position }
func (f *Filter) Kind() string  { return "Filter" }

// Doctype is a document type declaration.
type Doctype struct {
	Val      string
	Position Position
}

func (d *Doctype) node()         {}
func (d *Doctype) Pos() Position { return d.Position }
func (d *Doctype) Kind() string  { return "Doctype" }

// Include references another template file. Resolving it requires a linker.
type Include struct {
	Path     string
	Position Position
}

func (i *Include) node()         {}
func (i *Include) Pos() Position { return i.Position }
func (i *Include) Kind() string  { return "Include" }

// Extends references a parent layout. Resolving it requires a linker.
type Extends struct {
	Path     string
	Position Position
}

func (e *Extends) node()         {}
func (e *Extends) Pos() Position { return e.Position }
func (e *Extends) Kind() string  { return "Extends" }
