// Package definition answers "go to definition" for a cursor in an Ember
// template or script.
package definition

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/emberls/pkg/addon"
	"github.com/walteh/emberls/pkg/layout"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/project"
	"github.com/walteh/emberls/pkg/script"
)

// Projects finds the project a file belongs to.
type Projects interface {
	ForPath(ctx context.Context, path string) (*project.Project, bool)
}

// Documents holds the text of documents an editor has open. Documents it
// does not know are read from the filesystem.
type Documents interface {
	Text(uri string) (string, bool)
}

type Provider struct {
	fs       afero.Fs
	projects Projects
	addons   *addon.Resolver
	docs     Documents
}

// NewProvider wires a provider. docs may be nil.
func NewProvider(fs afero.Fs, projects Projects, addons *addon.Resolver, docs Documents) *Provider {
	return &Provider{fs: fs, projects: projects, addons: addons, docs: docs}
}

// ResolveDefinition returns the locations the reference under pos points
// to. It never fails: an unknown document, a parse error or a position on
// nothing resolvable all give an empty result.
func (p *Provider) ResolveDefinition(ctx context.Context, uri string, pos position.Position) []location.Location {
	logger := zerolog.Ctx(ctx).With().Str("uri", uri).Stringer("position", pos).Logger()
	ctx = logger.WithContext(ctx)

	path, err := location.PathFromURI(uri)
	if err != nil {
		logger.Debug().Err(err).Msg("not a file")
		return nil
	}

	proj, ok := p.projects.ForPath(ctx, path)
	if !ok {
		logger.Debug().Msg("no project owns document")
		return nil
	}

	text, ok := p.text(ctx, uri, path)
	if !ok {
		return nil
	}

	var locs []location.Location
	switch {
	case layout.IsTemplatePath(path):
		locs = p.template(ctx, proj, path, text, pos)
	case script.IsScriptPath(path):
		locs = p.script(ctx, proj, path, text, pos)
	default:
		logger.Debug().Msg("unsupported document type")
	}

	logger.Debug().Int("locations", len(locs)).Msg("resolved definition")
	return locs
}

func (p *Provider) text(ctx context.Context, uri, path string) (string, bool) {
	if p.docs != nil {
		if text, ok := p.docs.Text(uri); ok {
			return text, true
		}
	}
	content, err := afero.ReadFile(p.fs, path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("document unavailable")
		return "", false
	}
	return string(content), true
}

// existingOr keeps the candidates that are on disk, or returns fallback()
// when none are.
func (p *Provider) existingOr(candidates []string, fallback func() []string) []string {
	if found := location.Existing(p.fs, candidates); len(found) > 0 {
		return found
	}
	return fallback()
}
