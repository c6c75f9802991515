package definition

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/emberls/pkg/astpath"
	"github.com/walteh/emberls/pkg/glimmer"
	"github.com/walteh/emberls/pkg/layout"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/project"
	"github.com/walteh/emberls/pkg/reference"
)

const yieldNeedle = "{{yield"

func (p *Provider) template(ctx context.Context, proj *project.Project, path, text string, pos position.Position) []location.Location {
	logger := zerolog.Ctx(ctx)

	tmpl, err := glimmer.Parse(text)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("could not parse template")
		return nil
	}

	var root glimmer.Node = tmpl
	ref, ok := reference.ClassifyTemplate(astpath.Locate(root, pos))
	if !ok {
		logger.Debug().Msg("no reference under cursor")
		return nil
	}
	logger.Debug().Stringer("reference", ref).Msg("classified template reference")

	switch ref.Kind {
	case reference.AngleComponent:
		paths := p.componentPaths(ctx, proj, layout.ComponentNameFromTag(ref.Name))
		return location.ToLocations(p.fs, layout.PreferTemplates(paths))

	case reference.BlockComponent:
		paths := p.existingOr(layout.ComponentTemplatePaths(proj.Root, proj.Conventions(), ref.Name), func() []string {
			return layout.Templates(p.addons.ForComponent(ctx, proj.Root, ref.Name))
		})
		return location.ToLocationsWithPosition(ctx, p.fs, paths, yieldNeedle)

	case reference.ActionName, reference.LocalProperty:
		name := layout.ComponentNameFromPath(proj.Root, path)
		if name == "" {
			logger.Debug().Str("path", path).Msg("template does not belong to a component")
			return nil
		}
		paths := p.existingOr(layout.ComponentScriptPaths(proj.Root, proj.Conventions(), name), func() []string {
			return layout.NonTemplates(p.addons.ForComponent(ctx, proj.Root, name))
		})
		return location.ToLocationsWithPosition(ctx, p.fs, paths, ref.Name)

	case reference.MustacheOrHelper:
		candidates := componentCandidates(proj, ref.Name)
		candidates = append(candidates, layout.HelperPaths(proj.Root, ref.Name)...)
		paths := p.existingOr(candidates, func() []string {
			return p.addons.ForComponent(ctx, proj.Root, ref.Name)
		})
		return location.ToLocations(p.fs, layout.PreferTemplates(paths))

	case reference.AttributeArgument:
		if ref.Owner == "" {
			return nil
		}
		paths := p.componentPaths(ctx, proj, layout.ComponentNameFromTag(ref.Owner))
		return location.ToLocationsWithPosition(ctx, p.fs, layout.PreferTemplates(paths), ref.Name)

	case reference.HashPairUsage:
		paths := p.componentPaths(ctx, proj, ref.Owner)
		return location.ToLocationsWithPosition(ctx, p.fs, layout.PreferTemplates(paths), "@"+ref.Name)
	}

	return nil
}

// componentPaths finds the scripts and templates of a component, in the
// project or else in its addons.
func (p *Provider) componentPaths(ctx context.Context, proj *project.Project, name string) []string {
	return p.existingOr(componentCandidates(proj, name), func() []string {
		return p.addons.ForComponent(ctx, proj.Root, name)
	})
}

func componentCandidates(proj *project.Project, name string) []string {
	conventions := proj.Conventions()
	candidates := layout.ComponentScriptPaths(proj.Root, conventions, name)
	return append(candidates, layout.ComponentTemplatePaths(proj.Root, conventions, name)...)
}
