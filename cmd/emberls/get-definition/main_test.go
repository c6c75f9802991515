package get_definition

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/location"
)

func TestRun(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/ws/app/ember-cli-build.js":                   "",
		"/ws/app/package.json":                         `{"name": "app"}`,
		"/ws/app/app/templates/application.hbs":        "<XButton />\n{{format-date}}\n",
		"/ws/app/app/components/x-button.js":           "export default class XButton {}\n",
		"/ws/app/app/components/x-button/template.hbs": "<button></button>\n",
		"/ws/app/app/helpers/format-date.js":           "export default helper(() => {});\n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	tests := []struct {
		name      string
		line      int
		character int
		want      []string
	}{
		{"angle component", 0, 3, []string{"/ws/app/app/components/x-button/template.hbs"}},
		{"helper", 1, 4, []string{"/ws/app/app/helpers/format-date.js"}},
		{"nothing", 2, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{
				file:      "/ws/app/app/templates/application.hbs",
				line:      tt.line,
				character: tt.character,
				workspace: "/ws",
			}

			var out bytes.Buffer
			require.NoError(t, h.Run(ctx, fs, &out))

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
				if line == "" {
					continue
				}
				var loc location.Location
				require.NoError(t, json.Unmarshal([]byte(line), &loc))
				path, err := location.PathFromURI(loc.URI)
				require.NoError(t, err)
				got = append(got, path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_InvalidPosition(t *testing.T) {
	h := &Handler{file: "/x.hbs", line: -1}
	err := h.Run(context.Background(), afero.NewMemMapFs(), &bytes.Buffer{})
	require.Error(t, err)
}
