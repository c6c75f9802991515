package script_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/script"
)

const modelJS = `import Model, { attr, belongsTo } from '@ember-data/model';

export default Model.extend({
  title: attr('string'),
  author: DS.belongsTo('user'),
});
`

const modelTS = `import Model, { attr, hasMany } from '@ember-data/model';

export default class Post extends Model {
  @attr('date') declare publishedAt: Date;
  @hasMany('comment') declare comments: Comment[];
}
`

func locate(t *testing.T, root script.Node, pos position.Position) *astpath.Path[script.Node] {
	t.Helper()
	path := astpath.Locate(root, pos)
	require.NotNil(t, path, "nothing at %s", pos)
	return path
}

func TestParse_CallArguments(t *testing.T) {
	ctx := context.Background()
	prog, err := script.Parse(ctx, modelJS, script.JavaScript)
	require.NoError(t, err)

	tests := []struct {
		name   string
		pos    position.Position
		value  string
		callee string
	}{
		{name: "plain identifier callee", pos: position.New(3, 14), value: "string", callee: "attr"},
		{name: "member callee", pos: position.New(4, 25), value: "user", callee: "belongsTo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := locate(t, prog, tt.pos)
			lit, ok := path.Node.(*script.StringLiteral)
			require.True(t, ok, "got %T", path.Node)
			assert.Equal(t, tt.value, lit.Value)

			parent, ok := path.ParentNode()
			require.True(t, ok)
			call, ok := parent.(*script.CallExpression)
			require.True(t, ok, "got %T", parent)
			assert.Equal(t, tt.callee, script.CalleeName(call))
			require.NotEmpty(t, call.Arguments)
			assert.Same(t, lit, call.Arguments[0])
		})
	}
}

func TestParse_TypeScriptDecorators(t *testing.T) {
	prog, err := script.Parse(context.Background(), modelTS, script.TypeScript)
	require.NoError(t, err)

	path := locate(t, prog, position.New(4, 13))
	lit, ok := path.Node.(*script.StringLiteral)
	require.True(t, ok, "got %T", path.Node)
	assert.Equal(t, "comment", lit.Value)
	assert.Equal(t, position.NewRange(4, 11, 4, 20), lit.Range())

	parent, ok := path.ParentNode()
	require.True(t, ok)
	assert.Equal(t, "hasMany", script.CalleeName(parent.(*script.CallExpression)))
}

func TestParse_BrokenSourceStillParses(t *testing.T) {
	prog, err := script.Parse(context.Background(), "export default Model.extend({ a: attr('x'", script.JavaScript)
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.Equal(t, position.NewRange(0, 0, 0, 41), prog.Range())
}

func TestStringProperty(t *testing.T) {
	const env = `'use strict';

module.exports = function (environment) {
  let ENV = {
    modulePrefix: 'my-app',
    'podModulePrefix': "my-app/pods",
    environment,
  };
  return ENV;
};
`
	prog, err := script.Parse(context.Background(), env, script.JavaScript)
	require.NoError(t, err)

	prefix, ok := script.StringProperty(prog, "podModulePrefix")
	require.True(t, ok)
	assert.Equal(t, "my-app/pods", prefix)

	module, ok := script.StringProperty(prog, "modulePrefix")
	require.True(t, ok)
	assert.Equal(t, "my-app", module)

	_, ok = script.StringProperty(prog, "environment")
	assert.False(t, ok)
}

func TestDialectForPath(t *testing.T) {
	assert.Equal(t, script.TypeScript, script.DialectForPath("app/models/post.ts"))
	assert.Equal(t, script.JavaScript, script.DialectForPath("app/models/post.js"))
	assert.True(t, script.IsScriptPath("a/b.TS"))
	assert.False(t, script.IsScriptPath("a/b.hbs"))
}
