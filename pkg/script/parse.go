package script

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/walteh/emberls/pkg/position"
	"gitlab.com/tozd/go/errors"
)

type Dialect int

const (
	JavaScript Dialect = iota
	TypeScript
)

func (d Dialect) String() string {
	if d == TypeScript {
		return "typescript"
	}
	return "javascript"
}

func (d Dialect) language() *sitter.Language {
	if d == TypeScript {
		return ts.GetLanguage()
	}
	return javascript.GetLanguage()
}

// DialectForPath picks TypeScript for .ts files and JavaScript otherwise.
func DialectForPath(path string) Dialect {
	if strings.EqualFold(filepath.Ext(path), ".ts") {
		return TypeScript
	}
	return JavaScript
}

// IsScriptPath reports whether path is a file Parse can read.
func IsScriptPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".ts":
		return true
	}
	return false
}

// Parse builds the script tree for text. Syntax errors do not fail the
// parse: the broken region becomes an Other node of kind "ERROR".
func Parse(ctx context.Context, text string, dialect Dialect) (*Program, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(dialect.language())

	src := []byte(text)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", dialect, err)
	}
	defer tree.Close()

	b := &builder{src: src, mapper: position.NewMapper(text)}
	root := tree.RootNode()

	prog := &Program{loc: b.loc(root)}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		prog.Body = append(prog.Body, b.convert(root.NamedChild(i)))
	}
	// the grammar's root range stops at the last token; the program covers
	// the whole text
	prog.Loc = b.mapper.Range(0, len(src))

	return prog, nil
}

type builder struct {
	src    []byte
	mapper *position.Mapper
}

func (b *builder) loc(n *sitter.Node) loc {
	return loc{Loc: b.mapper.Range(int(n.StartByte()), int(n.EndByte()))}
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func (b *builder) convert(n *sitter.Node) Node {
	switch n.Type() {
	case "call_expression":
		call := &CallExpression{loc: b.loc(n)}
		if fn := n.ChildByFieldName("function"); fn != nil {
			call.Callee = b.convert(fn)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Type() == "arguments" {
				call.Arguments = b.namedChildren(args)
			} else {
				call.Arguments = []Node{b.convert(args)}
			}
		}
		return call
	case "member_expression":
		member := &MemberExpression{loc: b.loc(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			member.Object = b.convert(obj)
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			member.Property = &Identifier{loc: b.loc(prop), Name: b.text(prop)}
		}
		return member
	case "identifier", "property_identifier", "shorthand_property_identifier", "type_identifier":
		return &Identifier{loc: b.loc(n), Name: b.text(n)}
	case "string":
		return &StringLiteral{loc: b.loc(n), Value: unquote(b.text(n))}
	case "pair":
		pair := &Pair{loc: b.loc(n)}
		if key := n.ChildByFieldName("key"); key != nil {
			pair.KeyNode = b.convert(key)
			pair.Key = b.text(key)
			if s, ok := pair.KeyNode.(*StringLiteral); ok {
				pair.Key = s.Value
			}
		}
		if value := n.ChildByFieldName("value"); value != nil {
			pair.Value = b.convert(value)
		}
		return pair
	}

	return &Other{loc: b.loc(n), Kind: n.Type(), Nodes: b.namedChildren(n)}
}

func (b *builder) namedChildren(n *sitter.Node) []Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, b.convert(child))
		}
	}
	return out
}

func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}
