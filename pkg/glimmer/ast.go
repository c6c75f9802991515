// Package glimmer parses Glimmer/Handlebars templates into a read-only tree.
//
// The node set is closed: every node type is declared in this file, and the
// unexported marker methods keep other packages from adding their own.
//
// ╭──────────────────────────────────────────────────────────╮
// │ Template                                                 │
// │   └── Statement*                                         │
// │        ├── TextNode                                      │
// │        ├── MustacheStatement   {{path params hash}}      │
// │        ├── BlockStatement      {{#path ..}} Block {{/}}  │
// │        ├── ElementNode         <tag attrs modifiers>     │
// │        │     ├── AttrNode ── TextNode | Mustache | Concat│
// │        │     └── ElementModifierStatement                │
// │        ├── CommentStatement    <!-- -->                  │
// │        └── MustacheCommentStatement {{! }}               │
// │                                                          │
// │ Expression                                               │
// │   ├── PathExpression  this.foo  @bar  foo-bar            │
// │   ├── SubExpression   (path params hash)                 │
// │   └── literals        "x" 1 true null undefined          │
// ╰──────────────────────────────────────────────────────────╯
package glimmer

import (
	"strings"

	"github.com/walteh/emberls/pkg/position"
)

type NodeType string

const (
	TypeTemplate                 NodeType = "Template"
	TypeBlock                    NodeType = "Block"
	TypeElementNode              NodeType = "ElementNode"
	TypeAttrNode                 NodeType = "AttrNode"
	TypeTextNode                 NodeType = "TextNode"
	TypeMustacheStatement        NodeType = "MustacheStatement"
	TypeBlockStatement           NodeType = "BlockStatement"
	TypeElementModifierStatement NodeType = "ElementModifierStatement"
	TypeSubExpression            NodeType = "SubExpression"
	TypeConcatStatement          NodeType = "ConcatStatement"
	TypePathExpression           NodeType = "PathExpression"
	TypeStringLiteral            NodeType = "StringLiteral"
	TypeNumberLiteral            NodeType = "NumberLiteral"
	TypeBooleanLiteral           NodeType = "BooleanLiteral"
	TypeNullLiteral              NodeType = "NullLiteral"
	TypeUndefinedLiteral         NodeType = "UndefinedLiteral"
	TypeHash                     NodeType = "Hash"
	TypeHashPair                 NodeType = "HashPair"
	TypeCommentStatement         NodeType = "CommentStatement"
	TypeMustacheCommentStatement NodeType = "MustacheCommentStatement"
)

// Node is any template tree node.
type Node interface {
	Type() NodeType
	Range() position.Range
	Children() []Node
	glimmerNode()
}

// Statement is a node that can appear in a template, block or element body.
type Statement interface {
	Node
	statement()
}

// Expression is a node that can appear as a callee, param or hash value.
type Expression interface {
	Node
	expression()
}

// Call is implemented by every node shaped like `path params hash`.
type Call interface {
	Node
	Callee() Expression
	Arguments() []Expression
	NamedArguments() *Hash
}

type loc struct {
	Loc position.Range
}

func (l loc) Range() position.Range { return l.Loc }
func (loc) glimmerNode()            {}

type Template struct {
	loc
	Body []Statement
}

type Block struct {
	loc
	Body        []Statement
	BlockParams []string
	// Chained is set on the inverse of `{{else if ...}}`, whose only
	// statement is the nested block.
	Chained bool
}

type ElementNode struct {
	loc
	Tag         string
	Attributes  []*AttrNode
	Modifiers   []*ElementModifierStatement
	Comments    []*MustacheCommentStatement
	Body        []Statement
	BlockParams []string
	SelfClosing bool
}

// AttrNode.Value is a *TextNode, *MustacheStatement or *ConcatStatement.
type AttrNode struct {
	loc
	Name  string
	Value Node
}

type TextNode struct {
	loc
	Chars string
}

type MustacheStatement struct {
	loc
	Path    Expression
	Params  []Expression
	Hash    *Hash
	Trusted bool
}

type BlockStatement struct {
	loc
	Path    Expression
	Params  []Expression
	Hash    *Hash
	Program *Block
	Inverse *Block
}

type ElementModifierStatement struct {
	loc
	Path   Expression
	Params []Expression
	Hash   *Hash
}

type SubExpression struct {
	loc
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// ConcatStatement.Parts holds *TextNode and *MustacheStatement values.
type ConcatStatement struct {
	loc
	Parts []Node
}

type PathExpression struct {
	loc
	Original string
	Head     string
	Tail     []string
	This     bool
	Data     bool
}

type StringLiteral struct {
	loc
	Value string
}

type NumberLiteral struct {
	loc
	Value    float64
	Original string
}

type BooleanLiteral struct {
	loc
	Value bool
}

type NullLiteral struct{ loc }

type UndefinedLiteral struct{ loc }

type Hash struct {
	loc
	Pairs []*HashPair
}

type HashPair struct {
	loc
	Key   string
	Value Expression
}

type CommentStatement struct {
	loc
	Value string
}

type MustacheCommentStatement struct {
	loc
	Value string
}

func (*Template) Type() NodeType                 { return TypeTemplate }
func (*Block) Type() NodeType                    { return TypeBlock }
func (*ElementNode) Type() NodeType              { return TypeElementNode }
func (*AttrNode) Type() NodeType                 { return TypeAttrNode }
func (*TextNode) Type() NodeType                 { return TypeTextNode }
func (*MustacheStatement) Type() NodeType        { return TypeMustacheStatement }
func (*BlockStatement) Type() NodeType           { return TypeBlockStatement }
func (*ElementModifierStatement) Type() NodeType { return TypeElementModifierStatement }
func (*SubExpression) Type() NodeType            { return TypeSubExpression }
func (*ConcatStatement) Type() NodeType          { return TypeConcatStatement }
func (*PathExpression) Type() NodeType           { return TypePathExpression }
func (*StringLiteral) Type() NodeType            { return TypeStringLiteral }
func (*NumberLiteral) Type() NodeType            { return TypeNumberLiteral }
func (*BooleanLiteral) Type() NodeType           { return TypeBooleanLiteral }
func (*NullLiteral) Type() NodeType              { return TypeNullLiteral }
func (*UndefinedLiteral) Type() NodeType         { return TypeUndefinedLiteral }
func (*Hash) Type() NodeType                     { return TypeHash }
func (*HashPair) Type() NodeType                 { return TypeHashPair }
func (*CommentStatement) Type() NodeType         { return TypeCommentStatement }
func (*MustacheCommentStatement) Type() NodeType { return TypeMustacheCommentStatement }

func (*TextNode) statement()                 {}
func (*MustacheStatement) statement()        {}
func (*BlockStatement) statement()           {}
func (*ElementNode) statement()              {}
func (*CommentStatement) statement()         {}
func (*MustacheCommentStatement) statement() {}

func (*PathExpression) expression()   {}
func (*SubExpression) expression()    {}
func (*StringLiteral) expression()    {}
func (*NumberLiteral) expression()    {}
func (*BooleanLiteral) expression()   {}
func (*NullLiteral) expression()      {}
func (*UndefinedLiteral) expression() {}

// Children follow the order a cursor walks the source: callee, params, hash,
// then bodies.

func (n *Template) Children() []Node { return statements(n.Body) }
func (n *Block) Children() []Node    { return statements(n.Body) }

func (n *ElementNode) Children() []Node {
	out := make([]Node, 0, len(n.Attributes)+len(n.Modifiers)+len(n.Comments)+len(n.Body))
	for _, a := range n.Attributes {
		if a != nil {
			out = append(out, a)
		}
	}
	for _, m := range n.Modifiers {
		if m != nil {
			out = append(out, m)
		}
	}
	for _, c := range n.Comments {
		if c != nil {
			out = append(out, c)
		}
	}
	return append(out, statements(n.Body)...)
}

func (n *AttrNode) Children() []Node {
	if n.Value == nil {
		return nil
	}
	return []Node{n.Value}
}

func (n *TextNode) Children() []Node { return nil }

func (n *MustacheStatement) Children() []Node { return callChildren(n.Path, n.Params, n.Hash) }

func (n *BlockStatement) Children() []Node {
	out := callChildren(n.Path, n.Params, n.Hash)
	if n.Program != nil {
		out = append(out, n.Program)
	}
	if n.Inverse != nil {
		out = append(out, n.Inverse)
	}
	return out
}

func (n *ElementModifierStatement) Children() []Node { return callChildren(n.Path, n.Params, n.Hash) }
func (n *SubExpression) Children() []Node            { return callChildren(n.Path, n.Params, n.Hash) }

func (n *ConcatStatement) Children() []Node {
	out := make([]Node, 0, len(n.Parts))
	for _, p := range n.Parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (n *PathExpression) Children() []Node           { return nil }
func (n *StringLiteral) Children() []Node            { return nil }
func (n *NumberLiteral) Children() []Node            { return nil }
func (n *BooleanLiteral) Children() []Node           { return nil }
func (n *NullLiteral) Children() []Node              { return nil }
func (n *UndefinedLiteral) Children() []Node         { return nil }
func (n *CommentStatement) Children() []Node         { return nil }
func (n *MustacheCommentStatement) Children() []Node { return nil }

func (n *Hash) Children() []Node {
	out := make([]Node, 0, len(n.Pairs))
	for _, p := range n.Pairs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (n *HashPair) Children() []Node {
	if n.Value == nil {
		return nil
	}
	return []Node{n.Value}
}

func (n *MustacheStatement) Callee() Expression              { return n.Path }
func (n *MustacheStatement) Arguments() []Expression         { return n.Params }
func (n *MustacheStatement) NamedArguments() *Hash           { return n.Hash }
func (n *BlockStatement) Callee() Expression                 { return n.Path }
func (n *BlockStatement) Arguments() []Expression            { return n.Params }
func (n *BlockStatement) NamedArguments() *Hash              { return n.Hash }
func (n *ElementModifierStatement) Callee() Expression       { return n.Path }
func (n *ElementModifierStatement) Arguments() []Expression  { return n.Params }
func (n *ElementModifierStatement) NamedArguments() *Hash    { return n.Hash }
func (n *SubExpression) Callee() Expression                  { return n.Path }
func (n *SubExpression) Arguments() []Expression             { return n.Params }
func (n *SubExpression) NamedArguments() *Hash               { return n.Hash }

func statements(body []Statement) []Node {
	out := make([]Node, 0, len(body))
	for _, s := range body {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func callChildren(path Expression, params []Expression, hash *Hash) []Node {
	out := make([]Node, 0, len(params)+2)
	if path != nil {
		out = append(out, path)
	}
	for _, p := range params {
		if p != nil {
			out = append(out, p)
		}
	}
	if hash != nil && len(hash.Pairs) > 0 {
		out = append(out, hash)
	}
	return out
}

// CalleeName returns the original text of a call's callee when it is a path
// expression, and "" otherwise.
func CalleeName(c Call) string {
	if c == nil {
		return ""
	}
	if p, ok := c.Callee().(*PathExpression); ok && p != nil {
		return p.Original
	}
	return ""
}

func newPathExpression(original string, rng position.Range) *PathExpression {
	p := &PathExpression{loc: loc{Loc: rng}, Original: original}

	rest := original
	if strings.HasPrefix(rest, "@") {
		p.Data = true
		rest = rest[1:]
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool { return r == '.' || r == '/' })
	if len(parts) > 0 && parts[0] == "this" && !p.Data {
		p.This = true
		parts = parts[1:]
	}
	if len(parts) > 0 {
		p.Head = parts[0]
		p.Tail = parts[1:]
	}

	return p
}
