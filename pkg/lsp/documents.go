package lsp

import (
	"sync"

	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/lsp/protocol"
)

// normalizeURI keys documents by file path so that differently escaped URIs
// of the same file share an entry. Non-file URIs are kept as they are.
func normalizeURI(uri string) string {
	if path, err := location.PathFromURI(uri); err == nil {
		return path
	}
	return uri
}

// Document represents a text document with its metadata
type Document struct {
	URI        string
	LanguageID protocol.LanguageKind
	Version    int32
	Content    string
}

// DocumentManager holds the documents open in the editor.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
	}
}

func (m *DocumentManager) Get(uri protocol.DocumentURI) (*Document, bool) {
	content, ok := m.store.Load(normalizeURI(string(uri)))
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

// Text returns the editor's copy of uri, if it is open.
func (m *DocumentManager) Text(uri string) (string, bool) {
	doc, ok := m.Get(protocol.DocumentURI(uri))
	if !ok {
		return "", false
	}
	return doc.Content, true
}

func (m *DocumentManager) Store(uri protocol.DocumentURI, doc *Document) {
	m.store.Store(normalizeURI(string(uri)), doc)
}

func (m *DocumentManager) Delete(uri protocol.DocumentURI) {
	m.store.Delete(normalizeURI(string(uri)))
}
