package astpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/position"
)

type fakeNode struct {
	name     string
	rng      position.Range
	children []*fakeNode
}

func (f *fakeNode) Range() position.Range { return f.rng }
func (f *fakeNode) Children() []*fakeNode { return f.children }

func node(name string, sl, sc, el, ec int, children ...*fakeNode) *fakeNode {
	return &fakeNode{name: name, rng: position.NewRange(sl, sc, el, ec), children: children}
}

func names(p *astpath.Path[*fakeNode]) []string {
	var out []string
	for step := p; step != nil; step = step.Parent {
		out = append(out, step.Node.name)
	}
	return out
}

func TestLocate(t *testing.T) {
	tree := node("root", 0, 0, 3, 0,
		node("a", 0, 0, 0, 10,
			node("a1", 0, 2, 0, 5),
			node("a2", 0, 5, 0, 8),
		),
		node("b", 1, 0, 2, 4),
	)

	tests := []struct {
		name string
		pos  position.Position
		want []string
	}{
		{name: "deepest child", pos: position.New(0, 3), want: []string{"a1", "a", "root"}},
		{name: "end of one child is start of the next", pos: position.New(0, 5), want: []string{"a2", "a", "root"}},
		{name: "inside parent but no child", pos: position.New(0, 9), want: []string{"a", "root"}},
		{name: "multi line child", pos: position.New(1, 70), want: []string{"b", "root"}},
		{name: "only root", pos: position.New(2, 9), want: []string{"root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := astpath.Locate(tree, tt.pos)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestLocate_OutsideRoot(t *testing.T) {
	tree := node("root", 0, 0, 1, 0)
	assert.Nil(t, astpath.Locate(tree, position.New(4, 0)))
}

func TestPath_Ancestors(t *testing.T) {
	leaf := node("leaf", 0, 1, 0, 2)
	tree := node("root", 0, 0, 0, 5, node("mid", 0, 0, 0, 4, leaf))

	got := astpath.Locate(tree, position.New(0, 1))
	require.NotNil(t, got)

	parent, ok := got.ParentNode()
	require.True(t, ok)
	assert.Equal(t, "mid", parent.name)

	grand, ok := got.GrandparentNode()
	require.True(t, ok)
	assert.Equal(t, "root", grand.name)

	_, ok = got.Parent.Parent.ParentNode()
	assert.False(t, ok)
	_, ok = got.Parent.GrandparentNode()
	assert.False(t, ok)
}
