package glimmer

import (
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

// idChar is a single Handlebars identifier character. Hyphens are allowed,
// so `foo-bar` lexes as one path.
const idChar = "[^\\s!\"#%&'()*+,./;<=>@\\[\\]\\\\^`{|}~]"

const pathPattern = "@?" + idChar + "+(?:[./]" + idChar + "+)*"

var (
	expressionRules = []lexer.Rule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "Path", Pattern: pathPattern},
		{Name: "Equals", Pattern: `=`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "ExprChar", Pattern: `.`},
	}

	// LexerRules is the state machine for templates:
	//
	//	Root ──"{{"──▶ Mustache ──"}}"──▶ back
	//	Root ──"<x"──▶ Tag ──"\""──▶ AttrDQ ──"{{"──▶ Mustache
	//	Root ──"</"──▶ EndTag
	LexerRules = lexer.Rules{
		"Root": {
			{Name: "LongComment", Pattern: `(?s)\{\{~?!--.*?--~?\}\}`},
			{Name: "ShortComment", Pattern: `(?s)\{\{~?!.*?\}\}`},
			{Name: "HTMLComment", Pattern: `(?s)<!--.*?-->`},
			{Name: "OpenTriple", Pattern: `\{\{\{~?`, Action: lexer.Push("Triple")},
			{Name: "OpenBlock", Pattern: `\{\{~?#`, Action: lexer.Push("Mustache")},
			{Name: "OpenEndBlock", Pattern: `\{\{~?/`, Action: lexer.Push("Mustache")},
			{Name: "OpenMustache", Pattern: `\{\{~?`, Action: lexer.Push("Mustache")},
			{Name: "OpenEndTag", Pattern: `</`, Action: lexer.Push("EndTag")},
			{Name: "OpenTag", Pattern: `<[A-Za-z@:_][^\s/>{]*`, Action: lexer.Push("Tag")},
			{Name: "Text", Pattern: `[^<{]+`},
			{Name: "TextChar", Pattern: `[<{]`},
		},
		"Tag": {
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "ShortComment", Pattern: `(?s)\{\{~?!.*?\}\}`},
			{Name: "OpenMustache", Pattern: `\{\{~?`, Action: lexer.Push("Mustache")},
			{Name: "SelfClose", Pattern: `/>`, Action: lexer.Pop()},
			{Name: "TagEnd", Pattern: `>`, Action: lexer.Pop()},
			{Name: "Equals", Pattern: `=`},
			{Name: "DQuote", Pattern: `"`, Action: lexer.Push("AttrDQ")},
			{Name: "SQuote", Pattern: `'`, Action: lexer.Push("AttrSQ")},
			{Name: "AttrName", Pattern: `[^\s"'>/={]+`},
			{Name: "TagChar", Pattern: `[/{]`},
		},
		"AttrDQ": {
			{Name: "OpenMustache", Pattern: `\{\{~?`, Action: lexer.Push("Mustache")},
			{Name: "DQuote", Pattern: `"`, Action: lexer.Pop()},
			{Name: "AttrText", Pattern: `[^"{]+|\{`},
		},
		"AttrSQ": {
			{Name: "OpenMustache", Pattern: `\{\{~?`, Action: lexer.Push("Mustache")},
			{Name: "SQuote", Pattern: `'`, Action: lexer.Pop()},
			{Name: "AttrTextSQ", Pattern: `[^'{]+|\{`},
		},
		"EndTag": {
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "TagEnd", Pattern: `>`, Action: lexer.Pop()},
			{Name: "TagName", Pattern: `[^\s>]+`},
		},
		"Mustache": append([]lexer.Rule{
			{Name: "Close", Pattern: `~?\}\}`, Action: lexer.Pop()},
		}, expressionRules...),
		"Triple": append([]lexer.Rule{
			{Name: "CloseTriple", Pattern: `~?\}\}\}`, Action: lexer.Pop()},
		}, expressionRules...),
	}

	// TemplateLexer is the stateful lexer for Glimmer templates.
	TemplateLexer = lexer.MustStateful(LexerRules)

	symbolNames = invertSymbols(TemplateLexer.Symbols())

	// rule names must keep one pattern across states; these fold back to the
	// kind the parser reads.
	tokenAliases = map[string]string{
		"TextChar":   "Char",
		"TagChar":    "Char",
		"ExprChar":   "Char",
		"AttrTextSQ": "AttrText",
	}
)

type token struct {
	kind  string
	value string
	start int
	end   int
}

func (t token) is(kind string) bool { return t.kind == kind }

// tokenize lexes the whole template, dropping whitespace between tag and
// mustache parts. Text whitespace lives inside Text tokens and is kept.
func tokenize(text string) ([]token, error) {
	lex, err := TemplateLexer.LexString("", text)
	if err != nil {
		return nil, errors.Errorf("creating lexer: %w", err)
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Errorf("lexing template: %w", err)
	}

	out := make([]token, 0, len(raw))
	for _, t := range raw {
		kind := symbolNames[t.Type]
		if alias, ok := tokenAliases[kind]; ok {
			kind = alias
		}
		if t.EOF() {
			kind = "EOF"
		}
		if kind == "Whitespace" {
			continue
		}
		out = append(out, token{
			kind:  kind,
			value: t.Value,
			start: t.Pos.Offset,
			end:   t.Pos.Offset + len(t.Value),
		})
	}

	if len(out) == 0 || !out[len(out)-1].is("EOF") {
		out = append(out, token{kind: "EOF", start: len(text), end: len(text)})
	}

	return out, nil
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, typ := range symbols {
		out[typ] = name
	}
	return out
}
