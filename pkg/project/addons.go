package project

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// AddonRoots lists the directories to search for addon files, in order:
// configured addon_paths, in-repo addons from `ember-addon.paths`, then
// dependencies and devDependencies in manifest order. Packages are found by
// walking up through node_modules directories and kept only when their
// manifest carries the `ember-addon` keyword.
//
// Roots are returned even when err is not nil; err lists what was skipped.
func (r *Registry) AddonRoots(ctx context.Context, root string) ([]string, error) {
	var (
		roots []string
		errs  error
		seen  = map[string]bool{}
	)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}

	cfg := &Config{}
	if proj := r.registered(root); proj != nil && proj.Config != nil {
		cfg = proj.Config
	}
	for _, p := range cfg.AddonPaths {
		dir := filepath.Join(root, p)
		if !isDir(r.fs, dir) {
			errs = multierr.Append(errs, errors.Errorf("addon path %s is not a directory", dir))
			continue
		}
		add(dir)
	}

	m, err := readManifest(r.fs, root)
	if err != nil {
		return roots, multierr.Append(errs, err)
	}

	for _, p := range m.EmberAddon.Paths {
		dir := filepath.Join(root, p)
		if isDir(r.fs, dir) {
			add(dir)
		}
	}

	deps := append(append([]string{}, m.Dependencies...), m.DevDependencies...)
	for _, dep := range deps {
		dir, ok := r.resolvePackage(root, dep)
		if !ok {
			zerolog.Ctx(ctx).Trace().Str("package", dep).Msg("dependency not installed")
			continue
		}
		dm, err := readManifest(r.fs, dir)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if dm.isAddon() {
			add(dir)
		}
	}

	return roots, errs
}

// resolvePackage finds name in the nearest node_modules at or above root.
func (r *Registry) resolvePackage(root, name string) (string, bool) {
	dir := root
	for {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if isFile(r.fs, filepath.Join(candidate, ManifestFileName)) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
