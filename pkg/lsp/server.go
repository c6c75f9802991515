package lsp

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/emberls/pkg/addon"
	"github.com/walteh/emberls/pkg/definition"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/lsp/protocol"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/project"
	"gitlab.com/tozd/go/errors"
)

const ServerName = "emberls"

type Options struct {
	// AddonCacheTTL bounds how long the addon roots of a project are reused.
	// Zero means addon.DefaultTTL.
	AddonCacheTTL time.Duration
	Version       string
}

// Server represents an LSP server instance
type Server struct {
	id      string
	version string

	documents *DocumentManager
	registry  *project.Registry
	roots     *addon.RootsCache
	provider  *definition.Provider

	mu         sync.Mutex
	workspaces []string
	shutdown   bool
}

var _ protocol.Server = (*Server)(nil)

func NewServer(fs afero.Fs, opts Options) *Server {
	ttl := opts.AddonCacheTTL
	if ttl <= 0 {
		ttl = addon.DefaultTTL
	}

	documents := NewDocumentManager()
	registry := project.NewRegistry(fs)
	roots := addon.NewRootsCache(ttl, registry.AddonRoots)

	return &Server{
		id:        xid.New().String(),
		version:   opts.Version,
		documents: documents,
		registry:  registry,
		roots:     roots,
		provider:  definition.NewProvider(fs, registry, addon.NewResolver(fs, roots), documents),
	}
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

// BuildServerInstance wires s to a jrpc2 server ready to be started.
func (s *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions) *protocol.ServerInstance {
	ctx = zerolog.Ctx(ctx).With().Str("server_id", s.id).Logger().WithContext(ctx)
	return protocol.NewServerInstance(ctx, s, opts)
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)
	if params.ClientInfo != nil {
		logger.Debug().Str("client", params.ClientInfo.Name).Str("client_version", params.ClientInfo.Version).Msg("initializing server")
	}

	var workspaces []string
	for _, folder := range params.WorkspaceFolders {
		workspaces = appendWorkspace(ctx, workspaces, string(folder.URI))
	}
	if len(workspaces) == 0 && params.RootURI != "" {
		workspaces = appendWorkspace(ctx, workspaces, string(params.RootURI))
	}

	s.mu.Lock()
	s.workspaces = workspaces
	s.mu.Unlock()

	for _, ws := range workspaces {
		projects, err := s.registry.Discover(ctx, ws)
		if err != nil {
			logger.Warn().Err(err).Str("workspace", ws).Msg("project discovery incomplete")
		}
		for _, p := range projects {
			logger.Info().Str("root", p.Root).Msg("ember project found")
		}
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.Full,
			},
			DefinitionProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
	}, nil
}

func appendWorkspace(ctx context.Context, workspaces []string, uri string) []string {
	path, err := location.PathFromURI(uri)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("uri", uri).Msg("ignoring workspace folder")
		return workspaces
	}
	return append(workspaces, path)
}

func (s *Server) Workspaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.workspaces...)
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	zerolog.Ctx(ctx).Debug().Int("projects", len(s.registry.Projects())).Msg("server initialized")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.roots.Flush()
	zerolog.Ctx(ctx).Debug().Msg("server shutting down")
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("server exiting")
	return nil
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Msg("document opened")

	s.documents.Store(params.TextDocument.URI, &Document{
		URI:        string(params.TextDocument.URI),
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	})

	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("document changed")

	if len(params.ContentChanges) == 0 {
		return nil
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	updated := *doc
	updated.Version = params.TextDocument.Version
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			updated.Content = change.Text
		} else {
			updated.Content = replaceContentFromRange(ctx, updated.Content, change.Range, change.Text)
		}
	}

	s.documents.Store(params.TextDocument.URI, &updated)
	s.forgetAddonRoots(ctx, params.TextDocument.URI)

	return nil
}

// forgetAddonRoots drops the cached addon roots of the project owning uri
// when uri is its package.json.
func (s *Server) forgetAddonRoots(ctx context.Context, uri protocol.DocumentURI) {
	path, err := location.PathFromURI(string(uri))
	if err != nil {
		return
	}
	if filepath.Base(path) != project.ManifestFileName {
		return
	}
	zerolog.Ctx(ctx).Debug().Str("root", filepath.Dir(path)).Msg("forgetting addon roots")
	s.roots.Forget(filepath.Dir(path))
}

func replaceContentFromRange(ctx context.Context, content string, rangez *protocol.Range, text string) string {
	mapper := position.NewMapper(content)
	start := mapper.Offset(protocol.ToPosition(rangez.Start))
	end := mapper.Offset(protocol.ToPosition(rangez.End))
	if end < start {
		start, end = end, start
	}
	zerolog.Ctx(ctx).Debug().Int("start", start).Int("end", end).Msg("replacing content")
	return content[:start] + text + content[end:]
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Msg("document closed")

	s.documents.Delete(params.TextDocument.URI)
	s.forgetAddonRoots(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	if s.isShutdown() {
		return nil, errors.New("server is shut down")
	}

	found := s.provider.ResolveDefinition(ctx, string(params.TextDocument.URI), protocol.ToPosition(params.Position))

	out := make([]protocol.Location, 0, len(found))
	for _, loc := range found {
		out = append(out, protocol.Location{
			URI:   protocol.DocumentURI(loc.URI),
			Range: protocol.FromRange(loc.Range),
		})
	}

	return protocol.NonNilSlice(out), nil
}
