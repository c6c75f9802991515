package reference

import (
	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/script"
)

type scriptPath = astpath.Path[script.Node]

var scriptRules = []rule[script.Node]{
	{name: "model field type", match: fieldType(ModelFieldType, "belongsTo", "hasMany")},
	{name: "transform field type", match: fieldType(TransformFieldType, "attr")},
}

// ClassifyScript returns the reference under a script cursor.
func ClassifyScript(p *scriptPath) (Reference, bool) {
	return classify(scriptRules, p)
}

// fieldType matches the string argument of `belongsTo('post')` style calls,
// whether the callee is imported directly or reached through `DS.`.
func fieldType(kind Kind, callees ...string) func(*scriptPath) (Reference, bool) {
	return func(p *scriptPath) (Reference, bool) {
		lit, ok := p.Node.(*script.StringLiteral)
		if !ok {
			return Reference{}, false
		}
		parent, ok := p.ParentNode()
		if !ok {
			return Reference{}, false
		}
		call, ok := parent.(*script.CallExpression)
		if !ok || len(call.Arguments) == 0 || call.Arguments[0] != script.Node(lit) {
			return Reference{}, false
		}
		name := script.CalleeName(call)
		for _, c := range callees {
			if name == c {
				return Reference{Kind: kind, Name: lit.Value}, true
			}
		}
		return Reference{}, false
	}
}
