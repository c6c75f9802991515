// Package script turns JavaScript and TypeScript source into a small,
// read-only tree. Only the shapes definition lookups care about get their own
// node type; everything else is kept as Other so ranges still nest.
package script

import (
	"github.com/walteh/emberls/pkg/position"
)

type NodeType string

const (
	TypeProgram          NodeType = "Program"
	TypeCallExpression   NodeType = "CallExpression"
	TypeMemberExpression NodeType = "MemberExpression"
	TypeIdentifier       NodeType = "Identifier"
	TypeStringLiteral    NodeType = "StringLiteral"
	TypePair             NodeType = "Pair"
	TypeOther            NodeType = "Other"
)

type Node interface {
	Type() NodeType
	Range() position.Range
	Children() []Node
	scriptNode()
}

type loc struct {
	Loc position.Range
}

func (l loc) Range() position.Range { return l.Loc }
func (loc) scriptNode()             {}

type Program struct {
	loc
	Body []Node
}

type CallExpression struct {
	loc
	Callee    Node
	Arguments []Node
}

type MemberExpression struct {
	loc
	Object   Node
	Property *Identifier
}

type Identifier struct {
	loc
	Name string
}

type StringLiteral struct {
	loc
	Value string
}

// Pair is an object literal entry. Key is the key text with quotes removed.
type Pair struct {
	loc
	Key     string
	KeyNode Node
	Value   Node
}

// Other is any syntax the tree does not model. Kind is the grammar's node
// name, e.g. "class_declaration".
type Other struct {
	loc
	Kind  string
	Nodes []Node
}

func (*Program) Type() NodeType          { return TypeProgram }
func (*CallExpression) Type() NodeType   { return TypeCallExpression }
func (*MemberExpression) Type() NodeType { return TypeMemberExpression }
func (*Identifier) Type() NodeType       { return TypeIdentifier }
func (*StringLiteral) Type() NodeType    { return TypeStringLiteral }
func (*Pair) Type() NodeType             { return TypePair }
func (*Other) Type() NodeType            { return TypeOther }

func (n *Program) Children() []Node { return compact(n.Body...) }

func (n *CallExpression) Children() []Node {
	return compact(append([]Node{n.Callee}, n.Arguments...)...)
}

func (n *MemberExpression) Children() []Node {
	if n.Property == nil {
		return compact(n.Object)
	}
	return compact(n.Object, n.Property)
}

func (n *Identifier) Children() []Node    { return nil }
func (n *StringLiteral) Children() []Node { return nil }
func (n *Pair) Children() []Node          { return compact(n.KeyNode, n.Value) }
func (n *Other) Children() []Node         { return compact(n.Nodes...) }

func compact(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// CalleeName is the identifier a call is made through: `foo` for `foo()`
// and `bar` for `x.bar()`. It is "" for any other callee shape.
func CalleeName(call *CallExpression) string {
	if call == nil {
		return ""
	}
	switch c := call.Callee.(type) {
	case *Identifier:
		return c.Name
	case *MemberExpression:
		if c.Property != nil {
			return c.Property.Name
		}
	}
	return ""
}

// StringProperty returns the first string value assigned to key in any
// object literal of the tree.
func StringProperty(root Node, key string) (string, bool) {
	if root == nil {
		return "", false
	}
	if pair, ok := root.(*Pair); ok && pair.Key == key {
		if s, ok := pair.Value.(*StringLiteral); ok {
			return s.Value, true
		}
	}
	for _, child := range root.Children() {
		if v, ok := StringProperty(child, key); ok {
			return v, true
		}
	}
	return "", false
}
