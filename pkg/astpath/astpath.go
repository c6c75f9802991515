// Package astpath finds the node under a cursor in either syntax tree and
// keeps the ancestor chain that led to it.
package astpath

import "github.com/walteh/emberls/pkg/position"

// Node is what a tree exposes to the locator. N is the tree's own node
// interface, so a Path over template nodes never mixes with script nodes.
type Node[N any] interface {
	Range() position.Range
	Children() []N
}

// Path is one step of an ancestor chain. Parent is nil at the root.
type Path[N Node[N]] struct {
	Node   N
	Parent *Path[N]
}

// Locate descends from root to the deepest node whose range contains pos.
// It returns nil when root itself does not contain pos.
func Locate[N Node[N]](root N, pos position.Position) *Path[N] {
	if !root.Range().Contains(pos) {
		return nil
	}

	current := &Path[N]{Node: root}
	for {
		next, ok := containingChild(current.Node, pos)
		if !ok {
			return current
		}
		current = &Path[N]{Node: next, Parent: current}
	}
}

func containingChild[N Node[N]](node N, pos position.Position) (N, bool) {
	for _, child := range node.Children() {
		if child.Range().Contains(pos) {
			return child, true
		}
	}
	var zero N
	return zero, false
}

// ParentNode returns the parent's node, or false at the root.
func (p *Path[N]) ParentNode() (N, bool) {
	if p == nil || p.Parent == nil {
		var zero N
		return zero, false
	}
	return p.Parent.Node, true
}

// GrandparentNode returns the node two steps up, or false when the chain is
// shorter than that.
func (p *Path[N]) GrandparentNode() (N, bool) {
	if p == nil || p.Parent == nil {
		var zero N
		return zero, false
	}
	return p.Parent.ParentNode()
}
