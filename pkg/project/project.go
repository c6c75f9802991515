// Package project finds Ember projects on disk and reads the layout facts
// definition lookups need: the module-unification flag, the pod prefix and
// the addon search path.
package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/emberls/pkg/layout"
	"github.com/walteh/emberls/pkg/script"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

const BuildFileName = "ember-cli-build.js"

var DefaultIgnore = []string{"**/node_modules/**", "**/tmp/**", "**/dist/**", "**/.git/**"}

type Project struct {
	Root              string
	ModuleUnification bool
	PodPrefix         string
	Config            *Config
}

func (p *Project) Conventions() []layout.Convention {
	return layout.Conventions(p.ModuleUnification, p.PodPrefix)
}

// Registry is the set of known projects. It is safe for concurrent use.
type Registry struct {
	fs afero.Fs

	mu       sync.RWMutex
	projects map[string]*Project
}

func NewRegistry(fs afero.Fs) *Registry {
	return &Registry{fs: fs, projects: make(map[string]*Project)}
}

// Discover registers every directory under workspace holding an
// ember-cli-build.js. Directories matched by the ignore globs of the
// workspace config (or DefaultIgnore) are not entered.
func (r *Registry) Discover(ctx context.Context, workspace string) ([]*Project, error) {
	cfg, err := LoadConfig(r.fs, workspace)
	if err != nil {
		return nil, err
	}
	ignore := append(append([]string{}, DefaultIgnore...), cfg.Ignore...)

	var found []*Project
	var errs error
	walkErr := afero.Walk(r.fs, workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(workspace, path)
		if err != nil {
			return nil
		}
		if rel != "." && ignored(ignore, filepath.ToSlash(filepath.Join(rel, BuildFileName))) {
			return filepath.SkipDir
		}

		if !isFile(r.fs, filepath.Join(path, BuildFileName)) {
			return nil
		}

		proj, err := r.Load(ctx, path)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		found = append(found, proj)
		return nil
	})
	if walkErr != nil {
		return found, errors.Errorf("walking %s: %w", workspace, walkErr)
	}

	zerolog.Ctx(ctx).Debug().Str("workspace", workspace).Int("projects", len(found)).Msg("discovered projects")

	return found, errs
}

func ignored(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Load reads the project at root and registers it, replacing any previous
// entry.
func (r *Registry) Load(ctx context.Context, root string) (*Project, error) {
	cfg, err := LoadConfig(r.fs, root)
	if err != nil {
		return nil, errors.Errorf("loading project %s: %w", root, err)
	}

	proj := &Project{Root: root, Config: cfg}

	if cfg.ModuleUnification != nil {
		proj.ModuleUnification = *cfg.ModuleUnification
	} else {
		proj.ModuleUnification = isDir(r.fs, filepath.Join(root, "src", "ui"))
	}

	if cfg.PodModulePrefix != "" {
		proj.PodPrefix = strings.Trim(cfg.PodModulePrefix, "/")
	} else {
		proj.PodPrefix = podPrefix(ctx, r.fs, root)
	}

	zerolog.Ctx(ctx).Debug().
		Str("root", root).
		Bool("module_unification", proj.ModuleUnification).
		Str("pod_prefix", proj.PodPrefix).
		Msg("loaded project")

	r.mu.Lock()
	r.projects[root] = proj
	r.mu.Unlock()

	return proj, nil
}

// Projects lists the registered projects ordered by root.
func (r *Registry) Projects() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Root < out[j].Root })
	return out
}

// ForPath returns the project owning path: the deepest registered root
// containing it, or else the nearest ancestor holding an ember-cli-build.js
// or, failing that, a package.json.
func (r *Registry) ForPath(ctx context.Context, path string) (*Project, bool) {
	if proj := r.registered(path); proj != nil {
		return proj, true
	}

	for _, marker := range []string{BuildFileName, ManifestFileName} {
		root, ok := r.findUp(filepath.Dir(path), marker)
		if !ok {
			continue
		}
		proj, err := r.Load(ctx, root)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("root", root).Msg("could not load project")
			return nil, false
		}
		return proj, true
	}

	return nil, false
}

func (r *Registry) registered(path string) *Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Project
	for root, p := range r.projects {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(root) > len(best.Root) {
			best = p
		}
	}
	return best
}

func (r *Registry) findUp(dir, marker string) (string, bool) {
	for {
		if isFile(r.fs, filepath.Join(dir, marker)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// podPrefix reads podModulePrefix from config/environment.js, relative to
// the app's modulePrefix.
func podPrefix(ctx context.Context, fs afero.Fs, root string) string {
	path := filepath.Join(root, "config", "environment.js")
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return ""
	}

	tree, err := script.Parse(ctx, string(content), script.JavaScript)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("could not parse environment config")
		return ""
	}

	prefix, ok := script.StringProperty(tree, "podModulePrefix")
	if !ok {
		return ""
	}
	if module, ok := script.StringProperty(tree, "modulePrefix"); ok && module != "" {
		prefix = strings.TrimPrefix(prefix, module+"/")
	}
	return strings.Trim(prefix, "/")
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}
