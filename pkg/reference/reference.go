// Package reference decides what a cursor is pointing at.
//
// Classification is a pure function of the focused node, its parent and its
// grandparent. Rules are tried in order and the first match wins.
package reference

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/emberls/pkg/astpath"
)

type Kind int

const (
	None Kind = iota
	AngleComponent
	BlockComponent
	MustacheOrHelper
	ActionName
	LocalProperty
	AttributeArgument
	HashPairUsage
	ModelFieldType
	TransformFieldType
)

var kindNames = map[Kind]string{
	None:               "None",
	AngleComponent:     "AngleComponent",
	BlockComponent:     "BlockComponent",
	MustacheOrHelper:   "MustacheOrHelper",
	ActionName:         "ActionName",
	LocalProperty:      "LocalProperty",
	AttributeArgument:  "AttributeArgument",
	HashPairUsage:      "HashPairUsage",
	ModelFieldType:     "ModelFieldType",
	TransformFieldType: "TransformFieldType",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reference is what a cursor points at.
//
// Name depends on the kind: the raw tag for AngleComponent, the callee for
// BlockComponent and MustacheOrHelper, the property name for ActionName and
// LocalProperty, the attribute name (with its `@`) for AttributeArgument, the
// key for HashPairUsage and the string value for the field types.
//
// Owner is set for AttributeArgument (the element's tag) and HashPairUsage
// (the callee of the invocation the pair belongs to).
type Reference struct {
	Kind  Kind
	Name  string
	Owner string
}

func (r Reference) String() string {
	if r.Owner != "" {
		return fmt.Sprintf("%s(%q, %q)", r.Kind, r.Name, r.Owner)
	}
	return fmt.Sprintf("%s(%q)", r.Kind, r.Name)
}

// IsComponentOrHelper reports whether r names something that resolves to
// component scripts and templates together. Angle components count.
func (r Reference) IsComponentOrHelper() bool {
	return r.Kind == AngleComponent || r.Kind == MustacheOrHelper
}

type rule[N astpath.Node[N]] struct {
	name  string
	match func(*astpath.Path[N]) (Reference, bool)
}

func classify[N astpath.Node[N]](rules []rule[N], p *astpath.Path[N]) (Reference, bool) {
	if p == nil {
		return Reference{}, false
	}
	for _, r := range rules {
		if ref, ok := r.match(p); ok {
			return ref, true
		}
	}
	return Reference{}, false
}

// DashedName reports whether name looks like a component invocation: it has
// a hyphen, does not start with one, and is not a property path.
func DashedName(name string) bool {
	return strings.Contains(name, "-") && !strings.HasPrefix(name, "-") && !strings.Contains(name, ".")
}

// PropertyName reduces `this.foo.bar` (or an action string like
// `foo.bar`) to the first property segment, `foo`.
func PropertyName(text string) string {
	text = strings.Replace(text, "this.", "", 1)
	head, _, _ := strings.Cut(text, ".")
	return head
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
