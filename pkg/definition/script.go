package definition

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/layout"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/project"
	"github.com/walteh/emberls/pkg/reference"
	"github.com/walteh/emberls/pkg/script"
)

func (p *Provider) script(ctx context.Context, proj *project.Project, path, text string, pos position.Position) []location.Location {
	logger := zerolog.Ctx(ctx)

	prog, err := script.Parse(ctx, text, script.DialectForPath(path))
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("could not parse script")
		return nil
	}

	var root script.Node = prog
	ref, ok := reference.ClassifyScript(astpath.Locate(root, pos))
	if !ok {
		logger.Debug().Msg("no reference under cursor")
		return nil
	}
	logger.Debug().Stringer("reference", ref).Msg("classified script reference")

	var candidates []string
	var collection string
	switch ref.Kind {
	case reference.ModelFieldType:
		candidates, collection = layout.ModelPaths(proj.Root, ref.Name), "models"
	case reference.TransformFieldType:
		candidates, collection = layout.TransformPaths(proj.Root, ref.Name), "transforms"
	default:
		return nil
	}

	paths := p.existingOr(candidates, func() []string {
		return p.addons.ForType(ctx, proj.Root, collection, ref.Name)
	})
	return location.ToLocations(p.fs, paths)
}
