package lsp_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/lsp"
	"github.com/walteh/emberls/pkg/lsp/protocol"
)

const (
	fooBarTemplate  = "/ws/app/app/templates/components/foo-bar.hbs"
	applicationPath = "/ws/app/app/templates/application.hbs"
	indexPath       = "/ws/app/app/templates/index.hbs"
)

func setup(t *testing.T) (context.Context, *lsp.Server) {
	t.Helper()
	ctx, server, _ := setupWithFs(t)
	return ctx, server
}

func setupWithFs(t *testing.T) (context.Context, *lsp.Server, afero.Fs) {
	t.Helper()

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/ws/app/ember-cli-build.js":            "module.exports = function () {};\n",
		"/ws/app/package.json":                  `{"name": "app"}`,
		"/ws/app/app/components/foo-bar.js":     "export default class FooBar {}\n",
		fooBarTemplate:                          "<div></div>\n",
		indexPath:                               "{{foo-bar}}\n",
		"/ws/node_modules/x/ember-cli-build.js": "",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return ctx, lsp.NewServer(fs, lsp.Options{Version: "v0.0.0-test"}), fs
}

func uri(path string) protocol.DocumentURI {
	return protocol.DocumentURI(location.URIFromPath(path))
}

func definitionAt(path string, line, character uint32) *protocol.DefinitionParams {
	return &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri(path)},
			Position:     protocol.Position{Line: line, Character: character},
		},
	}
}

func TestInitialize(t *testing.T) {
	ctx, server := setup(t)

	res, err := server.Initialize(ctx, &protocol.InitializeParams{
		ClientInfo:       &protocol.ClientInfo{Name: "test"},
		WorkspaceFolders: []protocol.WorkspaceFolder{{URI: uri("/ws"), Name: "ws"}, {URI: "untitled:x"}},
	})
	require.NoError(t, err)

	assert.True(t, res.Capabilities.DefinitionProvider)
	require.NotNil(t, res.Capabilities.TextDocumentSync)
	assert.True(t, res.Capabilities.TextDocumentSync.OpenClose)
	assert.Equal(t, protocol.Full, res.Capabilities.TextDocumentSync.Change)
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, lsp.ServerName, res.ServerInfo.Name)
	assert.Equal(t, "v0.0.0-test", res.ServerInfo.Version)

	assert.Equal(t, []string{"/ws"}, server.Workspaces())

	require.NoError(t, server.Initialized(ctx, &protocol.InitializedParams{}))
}

func TestInitialize_RootURIFallback(t *testing.T) {
	ctx, server := setup(t)

	_, err := server.Initialize(ctx, &protocol.InitializeParams{RootURI: uri("/ws/app")})
	require.NoError(t, err)

	assert.Equal(t, []string{"/ws/app"}, server.Workspaces())
}

func TestDefinition_OpenDocument(t *testing.T) {
	ctx, server := setup(t)

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri(applicationPath), LanguageID: "handlebars", Version: 1, Text: "<Foo />\n"},
	}))

	// <Foo /> has no component behind it
	got, err := server.Definition(ctx, definitionAt(applicationPath, 0, 2))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, server.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri(applicationPath)}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{
			Range: &protocol.Range{Start: protocol.Position{Line: 0, Character: 1}, End: protocol.Position{Line: 0, Character: 4}},
			Text:  "FooBar",
		}},
	}))

	doc, ok := server.Documents().Get(uri(applicationPath))
	require.True(t, ok)
	assert.Equal(t, "<FooBar />\n", doc.Content)
	assert.EqualValues(t, 2, doc.Version)

	got, err = server.Definition(ctx, definitionAt(applicationPath, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, []protocol.Location{{URI: uri(fooBarTemplate)}}, got)

	require.NoError(t, server.DidClose(ctx, &protocol.DidCloseTextDocumentParams{TextDocument: protocol.TextDocumentIdentifier{URI: uri(applicationPath)}}))
	_, ok = server.Documents().Text(string(uri(applicationPath)))
	assert.False(t, ok)
}

func TestDefinition_FullChange(t *testing.T) {
	ctx, server := setup(t)

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri(indexPath), Version: 1, Text: "{{foo-bar}}\n"},
	}))
	require.NoError(t, server.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri(indexPath)}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "<p></p>\n"}},
	}))

	text, ok := server.Documents().Text(string(uri(indexPath)))
	require.True(t, ok)
	assert.Equal(t, "<p></p>\n", text)

	got, err := server.Definition(ctx, definitionAt(indexPath, 0, 4))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefinition_ReadsFromDisk(t *testing.T) {
	ctx, server := setup(t)

	got, err := server.Definition(ctx, definitionAt(indexPath, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, []protocol.Location{{URI: uri(fooBarTemplate)}}, got)
}

func TestDidChange_UnknownDocument(t *testing.T) {
	ctx, server := setup(t)

	err := server.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri(indexPath)}},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestDefinition_AfterShutdown(t *testing.T) {
	ctx, server := setup(t)

	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, server.Exit(ctx))

	_, err := server.Definition(ctx, definitionAt(indexPath, 0, 4))
	require.Error(t, err)
}

func TestDidChange_ManifestRefreshesAddons(t *testing.T) {
	ctx, server, fs := setupWithFs(t)

	const kitButton = "/ws/app/node_modules/kit/addon/components/kit-button.js"
	require.NoError(t, afero.WriteFile(fs, "/ws/app/node_modules/kit/package.json", []byte(`{"name": "kit", "keywords": ["ember-addon"]}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, kitButton, []byte("export default class KitButton {}\n"), 0o644))

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri(applicationPath), Version: 1, Text: "{{kit-button}}\n"},
	}))

	// kit is not a dependency yet
	got, err := server.Definition(ctx, definitionAt(applicationPath, 0, 4))
	require.NoError(t, err)
	assert.Empty(t, got)

	const manifest = `{"name": "app", "dependencies": {"kit": "*"}}`
	require.NoError(t, afero.WriteFile(fs, "/ws/app/package.json", []byte(manifest), 0o644))

	// the cached roots are still in use until the manifest is edited
	got, err = server.Definition(ctx, definitionAt(applicationPath, 0, 4))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri("/ws/app/package.json"), LanguageID: "json", Version: 1, Text: `{"name": "app"}`},
	}))
	require.NoError(t, server.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri("/ws/app/package.json")}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: manifest}},
	}))

	got, err = server.Definition(ctx, definitionAt(applicationPath, 0, 4))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uri(kitButton), got[0].URI)
}

func TestDidClose_ManifestRefreshesAddons(t *testing.T) {
	ctx, server, fs := setupWithFs(t)

	const kitButton = "/ws/app/node_modules/kit/addon/components/kit-button.js"
	require.NoError(t, afero.WriteFile(fs, "/ws/app/node_modules/kit/package.json", []byte(`{"name": "kit", "keywords": ["ember-addon"]}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, kitButton, []byte("export default class KitButton {}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, applicationPath, []byte("{{kit-button}}\n"), 0o644))

	got, err := server.Definition(ctx, definitionAt(applicationPath, 0, 4))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, afero.WriteFile(fs, "/ws/app/package.json", []byte(`{"name": "app", "devDependencies": {"kit": "*"}}`), 0o644))
	require.NoError(t, server.DidClose(ctx, &protocol.DidCloseTextDocumentParams{TextDocument: protocol.TextDocumentIdentifier{URI: uri("/ws/app/package.json")}}))

	got, err = server.Definition(ctx, definitionAt(applicationPath, 0, 4))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uri(kitButton), got[0].URI)
}
