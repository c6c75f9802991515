package location_test

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/position"
)

func TestFirstTextPosition(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		needle string
		want   position.Position
	}{
		{
			name:   "prefix of a longer identifier is skipped",
			text:   "  const fooBar = 1;\nfooBarBaz();\n",
			needle: "fooBar",
			want:   position.New(0, 8),
		},
		{
			name:   "longer identifier first",
			text:   "fooBarBaz();\n  fooBar() {}\n",
			needle: "fooBar",
			want:   position.New(1, 2),
		},
		{
			name:   "start of line",
			text:   "x\nfooBar: 1,\n",
			needle: "fooBar",
			want:   position.New(1, 0),
		},
		{
			name:   "glued to previous text",
			text:   "this.fooBar\n",
			needle: "fooBar",
			want:   position.New(0, 0),
		},
		{
			name:   "only first occurrence per line",
			text:   "a.fooBar fooBar\n\tfooBar\n",
			needle: "fooBar",
			want:   position.New(1, 1),
		},
		{
			name:   "block yield",
			text:   "<div>\n  {{yield this}}\n</div>\n",
			needle: "{{yield",
			want:   position.New(1, 2),
		},
		{
			name:   "digits may follow",
			text:   "  foo1\n",
			needle: "foo",
			want:   position.New(0, 2),
		},
		{
			name:   "crlf",
			text:   "a\r\n  save() {\r\n",
			needle: "save",
			want:   position.New(1, 2),
		},
		{
			name:   "utf16 columns",
			text:   "// 😀 save\n",
			needle: "save",
			want:   position.New(0, 6),
		},
		{
			name:   "empty needle",
			text:   "abc",
			needle: "",
			want:   position.New(0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, location.FirstTextPosition(tt.text, tt.needle))
		})
	}
}

func TestToLocations(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/app/components/x.js", []byte("export default 1;"), 0o644))
	require.NoError(t, fs.MkdirAll("/p/app/components/y", 0o755))

	got := location.ToLocations(fs, []string{
		"/p/app/components/missing.js",
		"/p/app/components/y",
		"/p/app/components/x.js",
	})

	assert.Equal(t, []location.Location{
		{URI: "file:///p/app/components/x.js", Range: position.Range{}},
	}, got)
}

type unreadableFs struct {
	afero.Fs
	path string
}

func (f unreadableFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func TestToLocationsWithPosition(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/p/a.js", []byte("export default Component.extend({\n  save() {},\n});\n"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/p/b.js", []byte("nothing here\n"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/p/c.js", []byte("  save\n"), 0o644))
	fs := unreadableFs{Fs: mem, path: "/p/c.js"}

	got := location.ToLocationsWithPosition(context.Background(), fs, []string{"/p/a.js", "/p/b.js", "/p/c.js", "/p/d.js"}, "save")

	assert.Equal(t, []location.Location{
		{URI: "file:///p/a.js", Range: position.NewRange(1, 2, 1, 6)},
		{URI: "file:///p/b.js", Range: position.Range{}},
	}, got)
}

func TestURIRoundTrip(t *testing.T) {
	uri := location.URIFromPath("/p/app/my components/x.hbs")
	assert.Equal(t, "file:///p/app/my%20components/x.hbs", uri)

	path, err := location.PathFromURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "/p/app/my components/x.hbs", path)

	_, err = location.PathFromURI("untitled:Untitled-1")
	assert.Error(t, err)
}
