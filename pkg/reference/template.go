package reference

import (
	"strings"

	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/glimmer"
)

type templatePath = astpath.Path[glimmer.Node]

var templateRules = []rule[glimmer.Node]{
	{name: "angle component", match: angleComponent},
	{name: "block component", match: blockComponent},
	{name: "action name", match: actionName},
	{name: "local property", match: localProperty},
	{name: "component or helper", match: componentOrHelper},
	{name: "attribute argument", match: attributeArgument},
	{name: "hash pair usage", match: hashPairUsage},
}

// ClassifyTemplate returns the reference under a template cursor.
func ClassifyTemplate(p *templatePath) (Reference, bool) {
	return classify(templateRules, p)
}

// <FooBar />
func angleComponent(p *templatePath) (Reference, bool) {
	el, ok := p.Node.(*glimmer.ElementNode)
	if !ok || !startsUpper(el.Tag) {
		return Reference{}, false
	}
	return Reference{Kind: AngleComponent, Name: el.Tag}, true
}

// {{#foo-bar}}{{/foo-bar}}
func blockComponent(p *templatePath) (Reference, bool) {
	block, ok := p.Node.(*glimmer.BlockStatement)
	if !ok {
		return Reference{}, false
	}
	path, ok := block.Path.(*glimmer.PathExpression)
	if !ok || path.This || path.Data || !DashedName(path.Original) {
		return Reference{}, false
	}
	return Reference{Kind: BlockComponent, Name: path.Original}, true
}

// {{action "save"}}, (action this.save), <button {{action "save"}}>
func actionName(p *templatePath) (Reference, bool) {
	parent, ok := p.ParentNode()
	if !ok {
		return Reference{}, false
	}
	call, ok := parent.(glimmer.Call)
	if !ok {
		return Reference{}, false
	}
	switch call.(type) {
	case *glimmer.MustacheStatement, *glimmer.SubExpression, *glimmer.ElementModifierStatement:
	default:
		return Reference{}, false
	}
	if glimmer.CalleeName(call) != "action" || !isFirstArgument(call, p.Node) {
		return Reference{}, false
	}

	switch n := p.Node.(type) {
	case *glimmer.StringLiteral:
		return Reference{Kind: ActionName, Name: PropertyName(n.Value)}, true
	case *glimmer.PathExpression:
		if n.This && n.Head != "" {
			return Reference{Kind: ActionName, Name: n.Head}, true
		}
	}
	return Reference{}, false
}

// {{this.title}}
func localProperty(p *templatePath) (Reference, bool) {
	path, ok := p.Node.(*glimmer.PathExpression)
	if !ok || !path.This || path.Head == "" {
		return Reference{}, false
	}
	return Reference{Kind: LocalProperty, Name: path.Head}, true
}

// {{foo-bar}}, {{format-date x}}, (some-helper), {{component "foo-bar"}}
func componentOrHelper(p *templatePath) (Reference, bool) {
	parent, hasParent := p.ParentNode()

	switch n := p.Node.(type) {
	case *glimmer.StringLiteral:
		call, ok := parent.(glimmer.Call)
		if hasParent && ok && glimmer.CalleeName(call) == "component" && isFirstArgument(call, n) {
			return Reference{Kind: MustacheOrHelper, Name: n.Value}, true
		}
	case *glimmer.PathExpression:
		if !hasParent || n.This {
			return Reference{}, false
		}
		switch call := parent.(type) {
		case *glimmer.MustacheStatement, *glimmer.BlockStatement, *glimmer.SubExpression:
			if call.(glimmer.Call).Callee() == glimmer.Expression(n) {
				return Reference{Kind: MustacheOrHelper, Name: n.Original}, true
			}
		}
	}
	return Reference{}, false
}

// <FooBar @title="x" />
func attributeArgument(p *templatePath) (Reference, bool) {
	attr, ok := p.Node.(*glimmer.AttrNode)
	if !ok || !strings.HasPrefix(attr.Name, "@") {
		return Reference{}, false
	}
	ref := Reference{Kind: AttributeArgument, Name: attr.Name}
	if parent, ok := p.ParentNode(); ok {
		if el, ok := parent.(*glimmer.ElementNode); ok {
			ref.Owner = el.Tag
		}
	}
	return ref, true
}

// {{my-component title=x}}
func hashPairUsage(p *templatePath) (Reference, bool) {
	pair, ok := p.Node.(*glimmer.HashPair)
	if !ok {
		return Reference{}, false
	}
	grandparent, ok := p.GrandparentNode()
	if !ok {
		return Reference{}, false
	}
	call, ok := grandparent.(glimmer.Call)
	if !ok {
		return Reference{}, false
	}
	owner := glimmer.CalleeName(call)
	if !DashedName(owner) {
		return Reference{}, false
	}
	return Reference{Kind: HashPairUsage, Name: pair.Key, Owner: owner}, true
}

func isFirstArgument(call glimmer.Call, n glimmer.Node) bool {
	args := call.Arguments()
	if len(args) == 0 {
		return false
	}
	return glimmer.Node(args[0]) == n
}
