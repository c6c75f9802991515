package glimmer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/walteh/emberls/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// SyntaxError points at the token the parser could not accept.
type SyntaxError struct {
	Position position.Position
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line+1, e.Position.Character+1, e.Message)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "command": true,
	"embed": true, "hr": true, "img": true, "input": true, "keygen": true,
	"link": true, "meta": true, "param": true, "source": true, "track": true,
	"wbr": true,
}

// Parse turns template text into a tree. The tree is never partially
// returned: on error the result is nil.
func Parse(text string) (*Template, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:    text,
		tokens: tokens,
		mapper: position.NewMapper(text),
	}

	tmpl, err := p.parseTemplate()
	if err != nil {
		return nil, errors.Errorf("parsing template: %w", err)
	}

	return tmpl, nil
}

type parser struct {
	src    string
	tokens []token
	pos    int
	mapper *position.Mapper
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// lastEnd is the end offset of the most recently consumed token.
func (p *parser) lastEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].end
}

func (p *parser) expect(kinds ...string) (token, error) {
	t := p.peek()
	for _, k := range kinds {
		if t.is(k) {
			return p.next(), nil
		}
	}
	return t, p.errorf(t, "expected %s, found %s", strings.Join(kinds, " or "), describe(t))
}

func (p *parser) errorf(at token, format string, args ...any) error {
	return &SyntaxError{Position: p.mapper.Position(at.start), Message: fmt.Sprintf(format, args...)}
}

func (p *parser) rng(start, end int) position.Range {
	return p.mapper.Range(start, end)
}

func describe(t token) string {
	if t.is("EOF") {
		return "end of template"
	}
	return strconv.Quote(t.value)
}

func (p *parser) parseTemplate() (*Template, error) {
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); !t.is("EOF") {
		return nil, p.errorf(t, "unexpected %s", describe(t))
	}

	return &Template{loc: loc{Loc: p.rng(0, len(p.src))}, Body: body}, nil
}

// atElse reports whether the next tokens are `{{else`.
func (p *parser) atElse() bool {
	return p.peek().is("OpenMustache") && p.peekAt(1).is("Path") && p.peekAt(1).value == "else"
}

// parseStatements reads statements until a token that closes the enclosing
// construct: end of input, `{{/`, `</` or `{{else`.
func (p *parser) parseStatements() ([]Statement, error) {
	var body []Statement
	for {
		t := p.peek()
		switch {
		case t.is("EOF"), t.is("OpenEndBlock"), t.is("OpenEndTag"), p.atElse():
			return body, nil
		case t.is("Text"), t.is("Char"):
			body = append(body, p.parseText())
		case t.is("LongComment"), t.is("ShortComment"):
			p.next()
			body = append(body, &MustacheCommentStatement{loc: loc{Loc: p.rng(t.start, t.end)}, Value: commentValue(t.value)})
		case t.is("HTMLComment"):
			p.next()
			body = append(body, &CommentStatement{
				loc:   loc{Loc: p.rng(t.start, t.end)},
				Value: strings.TrimSuffix(strings.TrimPrefix(t.value, "<!--"), "-->"),
			})
		case t.is("OpenMustache"), t.is("OpenTriple"):
			stmt, err := p.parseMustache()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		case t.is("OpenBlock"):
			stmt, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		case t.is("OpenTag"):
			stmt, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		default:
			return nil, p.errorf(t, "unexpected %s", describe(t))
		}
	}
}

func (p *parser) parseText() *TextNode {
	first := p.peek()
	last := first
	for p.peek().is("Text") || p.peek().is("Char") {
		last = p.next()
	}
	return &TextNode{loc: loc{Loc: p.rng(first.start, last.end)}, Chars: p.src[first.start:last.end]}
}

func commentValue(raw string) string {
	v := strings.TrimPrefix(raw, "{{")
	v = strings.TrimPrefix(v, "~")
	v = strings.TrimPrefix(v, "!")
	v = strings.TrimSuffix(v, "}}")
	v = strings.TrimSuffix(v, "~")
	if strings.HasPrefix(v, "--") && strings.HasSuffix(v, "--") && len(v) >= 4 {
		v = v[2 : len(v)-2]
	}
	return v
}

func (p *parser) parseMustache() (*MustacheStatement, error) {
	open := p.next()
	trusted := open.is("OpenTriple")
	closeKind := "Close"
	if trusted {
		closeKind = "CloseTriple"
	}

	call, err := p.parseCallBody(closeKind)
	if err != nil {
		return nil, err
	}

	end, err := p.expect(closeKind)
	if err != nil {
		return nil, err
	}

	return &MustacheStatement{
		loc:     loc{Loc: p.rng(open.start, end.end)},
		Path:    call.path,
		Params:  call.params,
		Hash:    call.hash,
		Trusted: trusted,
	}, nil
}

func (p *parser) parseBlock() (*BlockStatement, error) {
	open := p.next()

	block, err := p.parseBlockSection(open.start)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("OpenEndBlock"); err != nil {
		return nil, err
	}
	name, err := p.expect("Path")
	if err != nil {
		return nil, err
	}
	if want := CalleeName(block); name.value != want {
		return nil, p.errorf(name, "%q doesn't match %q", name.value, want)
	}
	end, err := p.expect("Close")
	if err != nil {
		return nil, err
	}

	block.Loc = p.rng(open.start, end.end)

	return block, nil
}

// parseBlockSection reads `path params hash [as |x|]}} body [{{else ...}}]`.
// An `{{else if ...}}` becomes a nested block inside a chained inverse that
// shares the closing `{{/x}}` of the outer block.
func (p *parser) parseBlockSection(start int) (*BlockStatement, error) {
	call, err := p.parseCallBody("Close")
	if err != nil {
		return nil, err
	}
	open, err := p.expect("Close")
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	block := &BlockStatement{
		Path:   call.path,
		Params: call.params,
		Hash:   call.hash,
		Program: &Block{
			loc:         loc{Loc: p.rng(open.end, p.peek().start)},
			Body:        body,
			BlockParams: call.blockParams,
		},
	}

	if p.atElse() {
		elseOpen := p.next()
		p.next()

		if p.peek().is("Close") {
			elseClose := p.next()
			inverse, err := p.parseStatements()
			if err != nil {
				return nil, err
			}
			block.Inverse = &Block{loc: loc{Loc: p.rng(elseClose.end, p.peek().start)}, Body: inverse}
		} else {
			nested, err := p.parseBlockSection(elseOpen.start)
			if err != nil {
				return nil, err
			}
			nested.Loc = p.rng(elseOpen.start, p.peek().start)
			block.Inverse = &Block{loc: loc{Loc: nested.Loc}, Body: []Statement{nested}, Chained: true}
		}
	}

	block.Loc = p.rng(start, p.peek().start)

	return block, nil
}

type callBody struct {
	path        Expression
	params      []Expression
	hash        *Hash
	blockParams []string
}

// parseCallBody reads `path params hash [as |x y|]` up to, not including,
// the closing token.
func (p *parser) parseCallBody(closeKind string) (*callBody, error) {
	path, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	call := &callBody{path: path}
	for {
		t := p.peek()
		switch {
		case t.is(closeKind), t.is("RParen"), t.is("EOF"):
			return call, nil
		case t.is("Path") && t.value == "as" && p.peekAt(1).is("Pipe"):
			params, err := p.parseBlockParams()
			if err != nil {
				return nil, err
			}
			call.blockParams = params
		case t.is("Path") && p.peekAt(1).is("Equals"):
			pair, err := p.parseHashPair()
			if err != nil {
				return nil, err
			}
			if call.hash == nil {
				call.hash = &Hash{loc: loc{Loc: pair.Loc}}
			}
			call.hash.Pairs = append(call.hash.Pairs, pair)
			call.hash.Loc.End = pair.Loc.End
		default:
			param, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.params = append(call.params, param)
		}
	}
}

func (p *parser) parseBlockParams() ([]string, error) {
	p.next()
	p.next()

	var names []string
	for p.peek().is("Path") {
		names = append(names, p.next().value)
	}
	if _, err := p.expect("Pipe"); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *parser) parseHashPair() (*HashPair, error) {
	key := p.next()
	p.next()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &HashPair{
		loc:   loc{Loc: p.rng(key.start, p.lastEnd())},
		Key:   key.value,
		Value: value,
	}, nil
}

func (p *parser) parseExpression() (Expression, error) {
	t := p.peek()
	switch {
	case t.is("String"):
		p.next()
		value, err := unquote(t.value)
		if err != nil {
			return nil, p.errorf(t, "invalid string %s", t.value)
		}
		return &StringLiteral{loc: loc{Loc: p.rng(t.start, t.end)}, Value: value}, nil
	case t.is("Number"):
		p.next()
		f, err := strconv.ParseFloat(t.value, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %s", t.value)
		}
		return &NumberLiteral{loc: loc{Loc: p.rng(t.start, t.end)}, Value: f, Original: t.value}, nil
	case t.is("Path"):
		p.next()
		rng := p.rng(t.start, t.end)
		switch t.value {
		case "true", "false":
			return &BooleanLiteral{loc: loc{Loc: rng}, Value: t.value == "true"}, nil
		case "null":
			return &NullLiteral{loc: loc{Loc: rng}}, nil
		case "undefined":
			return &UndefinedLiteral{loc: loc{Loc: rng}}, nil
		}
		return newPathExpression(t.value, rng), nil
	case t.is("LParen"):
		return p.parseSubExpression()
	}
	return nil, p.errorf(t, "expected an expression, found %s", describe(t))
}

func (p *parser) parseSubExpression() (*SubExpression, error) {
	open := p.next()

	call, err := p.parseCallBody("RParen")
	if err != nil {
		return nil, err
	}
	end, err := p.expect("RParen")
	if err != nil {
		return nil, err
	}

	return &SubExpression{
		loc:    loc{Loc: p.rng(open.start, end.end)},
		Path:   call.path,
		Params: call.params,
		Hash:   call.hash,
	}, nil
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 {
		return "", errors.New("string literal too short")
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String(), nil
}

func (p *parser) parseElement() (*ElementNode, error) {
	open := p.next()
	el := &ElementNode{Tag: strings.TrimPrefix(open.value, "<")}

	for {
		t := p.peek()
		switch {
		case t.is("SelfClose"):
			p.next()
			el.SelfClosing = true
			el.Loc = p.rng(open.start, t.end)
			return el, nil
		case t.is("TagEnd"):
			p.next()
			if voidElements[el.Tag] {
				el.Loc = p.rng(open.start, t.end)
				return el, nil
			}
			return p.parseElementBody(el, open)
		case t.is("AttrName") && t.value == "as" && strings.HasPrefix(p.peekAt(1).value, "|"):
			p.next()
			el.BlockParams = p.parseElementBlockParams()
		case t.is("AttrName"):
			attr, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			el.Attributes = append(el.Attributes, attr)
		case t.is("OpenMustache"):
			mod, err := p.parseModifier()
			if err != nil {
				return nil, err
			}
			el.Modifiers = append(el.Modifiers, mod)
		case t.is("ShortComment"):
			p.next()
			el.Comments = append(el.Comments, &MustacheCommentStatement{loc: loc{Loc: p.rng(t.start, t.end)}, Value: commentValue(t.value)})
		case t.is("Char"):
			p.next()
		default:
			return nil, p.errorf(t, "unclosed element <%s>", el.Tag)
		}
	}
}

func (p *parser) parseElementBlockParams() []string {
	var names []string
	for p.peek().is("AttrName") {
		t := p.next()
		for _, name := range strings.Fields(strings.ReplaceAll(t.value, "|", " ")) {
			names = append(names, name)
		}
		if strings.HasSuffix(t.value, "|") && (len(t.value) > 1 || len(names) > 0) {
			break
		}
	}
	return names
}

func (p *parser) parseElementBody(el *ElementNode, open token) (*ElementNode, error) {
	children, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	el.Body = children

	if t := p.peek(); !t.is("OpenEndTag") {
		return nil, p.errorf(t, "unclosed element <%s>", el.Tag)
	}
	p.next()

	name, err := p.expect("TagName")
	if err != nil {
		return nil, err
	}
	if name.value != el.Tag {
		return nil, p.errorf(name, "closing tag </%s> doesn't match <%s>", name.value, el.Tag)
	}
	end, err := p.expect("TagEnd")
	if err != nil {
		return nil, err
	}

	el.Loc = p.rng(open.start, end.end)
	return el, nil
}

func (p *parser) parseAttribute() (*AttrNode, error) {
	name := p.next()
	attr := &AttrNode{Name: name.value}

	if !p.peek().is("Equals") {
		attr.Loc = p.rng(name.start, name.end)
		attr.Value = &TextNode{loc: loc{Loc: p.rng(name.end, name.end)}}
		return attr, nil
	}
	p.next()

	t := p.peek()
	switch {
	case t.is("DQuote"), t.is("SQuote"):
		value, end, err := p.parseQuotedValue(t.kind)
		if err != nil {
			return nil, err
		}
		attr.Value = value
		attr.Loc = p.rng(name.start, end)
	case t.is("OpenMustache"):
		value, err := p.parseMustache()
		if err != nil {
			return nil, err
		}
		attr.Value = value
		attr.Loc = p.rng(name.start, p.lastEnd())
	case t.is("AttrName"):
		p.next()
		attr.Value = &TextNode{loc: loc{Loc: p.rng(t.start, t.end)}, Chars: t.value}
		attr.Loc = p.rng(name.start, t.end)
	default:
		return nil, p.errorf(t, "expected a value for attribute %s", name.value)
	}

	return attr, nil
}

// parseQuotedValue returns a TextNode for plain text and a ConcatStatement
// when the value interpolates mustaches. The returned offset is the end of
// the closing quote.
func (p *parser) parseQuotedValue(quote string) (Node, int, error) {
	open := p.next()

	var parts []Node
	for {
		t := p.peek()
		switch {
		case t.is(quote):
			p.next()
			if len(parts) == 1 {
				if text, ok := parts[0].(*TextNode); ok {
					return text, t.end, nil
				}
			}
			if len(parts) == 0 {
				return &TextNode{loc: loc{Loc: p.rng(open.end, t.start)}}, t.end, nil
			}
			return &ConcatStatement{loc: loc{Loc: p.rng(open.end, t.start)}, Parts: parts}, t.end, nil
		case t.is("AttrText"):
			p.next()
			parts = append(parts, &TextNode{loc: loc{Loc: p.rng(t.start, t.end)}, Chars: t.value})
		case t.is("OpenMustache"):
			m, err := p.parseMustache()
			if err != nil {
				return nil, 0, err
			}
			parts = append(parts, m)
		default:
			return nil, 0, p.errorf(t, "unterminated attribute value")
		}
	}
}

func (p *parser) parseModifier() (*ElementModifierStatement, error) {
	open := p.next()

	call, err := p.parseCallBody("Close")
	if err != nil {
		return nil, err
	}
	end, err := p.expect("Close")
	if err != nil {
		return nil, err
	}

	return &ElementModifierStatement{
		loc:    loc{Loc: p.rng(open.start, end.end)},
		Path:   call.path,
		Params: call.params,
		Hash:   call.hash,
	}, nil
}
