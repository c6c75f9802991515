// Package addon searches a project's addons for the files a name resolves
// to when the project itself has none.
package addon

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/emberls/pkg/layout"
	"github.com/walteh/emberls/pkg/location"
)

// Resolver scans addon roots in order. The first root with any existing
// candidate is the only one used, and within it files under an `addon`
// directory win over re-exports under `app`.
type Resolver struct {
	fs    afero.Fs
	roots *RootsCache
}

func NewResolver(fs afero.Fs, roots *RootsCache) *Resolver {
	return &Resolver{fs: fs, roots: roots}
}

// ForComponent finds the scripts, templates and helpers an addon provides
// for name.
func (r *Resolver) ForComponent(ctx context.Context, root, name string) []string {
	return r.search(ctx, root, func(addonRoot string) []string {
		var candidates []string
		candidates = append(candidates, layout.ScriptCandidates(addonRoot, "addon", name)...)
		candidates = append(candidates, layout.ScriptCandidates(addonRoot, "app", name)...)
		candidates = append(candidates, layout.TemplateCandidates(addonRoot, "app", name)...)
		candidates = append(candidates, layout.TemplateCandidates(addonRoot, "addon", name)...)
		candidates = append(candidates, layout.HelperCandidates(addonRoot, "app", name)...)
		candidates = append(candidates, layout.HelperCandidates(addonRoot, "addon", name)...)
		return candidates
	})
}

// ForType finds the files an addon provides for name in collection, e.g.
// `models` or `transforms`.
func (r *Resolver) ForType(ctx context.Context, root, collection, name string) []string {
	return r.search(ctx, root, func(addonRoot string) []string {
		var candidates []string
		candidates = append(candidates, layout.CollectionCandidates(addonRoot, "app", collection, name)...)
		candidates = append(candidates, layout.CollectionCandidates(addonRoot, "addon", collection, name)...)
		return candidates
	})
}

func (r *Resolver) search(ctx context.Context, root string, candidates func(addonRoot string) []string) []string {
	var found []string
	var chosen string
	for _, addonRoot := range r.roots.GetOrCompute(ctx, root) {
		if found = location.Existing(r.fs, candidates(addonRoot)); len(found) > 0 {
			chosen = addonRoot
			zerolog.Ctx(ctx).Debug().Str("addon", addonRoot).Strs("paths", found).Msg("resolved in addon")
			break
		}
	}

	// only directories below the addon root count
	var inAddonFolder []string
	for _, p := range found {
		if layout.HasAddonFolder(strings.TrimPrefix(p, chosen)) {
			inAddonFolder = append(inAddonFolder, p)
		}
	}
	if len(inAddonFolder) > 0 {
		return inAddonFolder
	}
	return found
}
