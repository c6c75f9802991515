package protocol

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
)

// Server is the part of the LSP server surface the language server
// implements.
type Server interface {
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialize
	Initialize(context.Context, *InitializeParams) (*InitializeResult, error)
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialized
	Initialized(context.Context, *InitializedParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#shutdown
	Shutdown(context.Context) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#exit
	Exit(context.Context) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didOpen
	DidOpen(context.Context, *DidOpenTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didChange
	DidChange(context.Context, *DidChangeTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didClose
	DidClose(context.Context, *DidCloseTextDocumentParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_definition
	Definition(context.Context, *DefinitionParams) ([]Location, error)
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"$/cancelRequest":         createEmptyResultHandler(cancelRequest),
		"exit":                    createEmptyHandler(exit(server)),
		"initialize":              createHandler(server.Initialize),
		"initialized":             createEmptyResultHandler(server.Initialized),
		"shutdown":                createEmptyHandler(server.Shutdown),
		"textDocument/definition": createHandler(server.Definition),
		"textDocument/didChange":  createEmptyResultHandler(server.DidChange),
		"textDocument/didClose":   createEmptyResultHandler(server.DidClose),
		"textDocument/didOpen":    createEmptyResultHandler(server.DidOpen),
	}
}

// cancellation is accepted and ignored
func cancelRequest(context.Context, *CancelParams) error {
	return nil
}

func exit(server Server) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := server.Exit(ctx)
		if srv := jrpc2.ServerFromContext(ctx); srv != nil {
			go srv.Stop()
		}
		return err
	}
}
