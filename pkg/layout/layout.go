// Package layout enumerates the files an Ember project could keep a
// component, helper, model or transform in.
//
// Every function here is pure: candidates are built from their inputs only
// and may not exist on disk.
package layout

import (
	"path/filepath"
	"strings"

	"github.com/huandu/xstrings"
)

type ConventionKind int

const (
	Classic ConventionKind = iota
	Pod
	ModuleUnification
)

func (k ConventionKind) String() string {
	switch k {
	case Pod:
		return "pod"
	case ModuleUnification:
		return "module-unification"
	}
	return "classic"
}

// Convention is one file layout. PodPrefix is only read for Pod.
type Convention struct {
	Kind      ConventionKind
	PodPrefix string
}

// Prefix is the root-relative directory the convention keeps its
// collections under.
func (c Convention) Prefix() string {
	switch c.Kind {
	case Pod:
		return filepath.Join("app", c.PodPrefix)
	case ModuleUnification:
		return filepath.Join("src", "ui")
	}
	return "app"
}

// Conventions returns the layouts a project uses, module-unification first,
// then pods, then classic. Pods are additive. Classic is dropped for
// module-unification projects.
func Conventions(moduleUnification bool, podPrefix string) []Convention {
	var out []Convention
	if moduleUnification {
		out = append(out, Convention{Kind: ModuleUnification})
	}
	if podPrefix != "" {
		out = append(out, Convention{Kind: Pod, PodPrefix: podPrefix})
	}
	if !moduleUnification {
		out = append(out, Convention{Kind: Classic})
	}
	return out
}

// ScriptCandidates lists the component script files for name under one
// prefix: flat files first, then the co-located component.js/ts.
func ScriptCandidates(root, prefix, name string) []string {
	dir := filepath.Join(root, prefix, "components")
	return []string{
		filepath.Join(dir, name+".js"),
		filepath.Join(dir, name+".ts"),
		filepath.Join(dir, name, "component.js"),
		filepath.Join(dir, name, "component.ts"),
	}
}

// TemplateCandidates lists the component template files for name under one
// prefix. The co-located template.hbs comes before the split
// templates/components file.
func TemplateCandidates(root, prefix, name string) []string {
	return []string{
		filepath.Join(root, prefix, "components", name, "template.hbs"),
		filepath.Join(root, prefix, "templates", "components", name+".hbs"),
	}
}

func HelperCandidates(root, prefix, name string) []string {
	return CollectionCandidates(root, prefix, "helpers", name)
}

// CollectionCandidates lists `{root}/{prefix}/{collection}/{name}.js|ts`.
func CollectionCandidates(root, prefix, collection, name string) []string {
	dir := filepath.Join(root, prefix, collection)
	return []string{
		filepath.Join(dir, name+".js"),
		filepath.Join(dir, name+".ts"),
	}
}

func ComponentScriptPaths(root string, conventions []Convention, name string) []string {
	var out []string
	for _, c := range conventions {
		out = append(out, ScriptCandidates(root, c.Prefix(), name)...)
	}
	return out
}

func ComponentTemplatePaths(root string, conventions []Convention, name string) []string {
	var out []string
	for _, c := range conventions {
		out = append(out, TemplateCandidates(root, c.Prefix(), name)...)
	}
	return out
}

// HelperPaths lists the app helpers for name. Helpers only live under `app`.
func HelperPaths(root, name string) []string {
	return HelperCandidates(root, "app", name)
}

func ModelPaths(root, name string) []string {
	return CollectionCandidates(root, "app", "models", name)
}

func TransformPaths(root, name string) []string {
	return CollectionCandidates(root, "app", "transforms", name)
}

// ComponentNameFromTag turns an angle bracket tag into the dashed name the
// files use: `FooBar` is `foo-bar` and `Ui::FooBar` is `ui/foo-bar`.
func ComponentNameFromTag(tag string) string {
	parts := strings.Split(tag, "::")
	for i, p := range parts {
		parts[i] = xstrings.ToKebabCase(p)
	}
	return strings.Join(parts, "/")
}

var componentDirs = []string{"/-components/", "/components/"}

var componentFiles = []string{"/template.hbs", "/component.js", "/component.ts"}

// ComponentNameFromPath derives the component a file belongs to from its
// location under a `components` (or `-components`) directory. It returns ""
// for files outside one.
func ComponentNameFromPath(root, path string) string {
	rel := filepath.ToSlash(strings.TrimPrefix(path, root))

	var name string
	for _, dir := range componentDirs {
		if _, after, ok := strings.Cut(rel, dir); ok {
			name = after
			break
		}
	}
	if name == "" {
		return ""
	}

	for _, file := range componentFiles {
		if strings.HasSuffix(name, file) {
			name = strings.TrimSuffix(name, file)
			break
		}
	}

	name, _, _ = strings.Cut(name, ".")
	return name
}

func IsTemplatePath(path string) bool {
	return strings.HasSuffix(path, ".hbs")
}

// HasAddonFolder reports whether any directory in path is named `addon`.
func HasAddonFolder(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "addon" {
			return true
		}
	}
	return false
}

// Templates keeps the .hbs paths of paths.
func Templates(paths []string) []string {
	return filter(paths, IsTemplatePath)
}

// NonTemplates keeps everything but the .hbs paths of paths.
func NonTemplates(paths []string) []string {
	return filter(paths, func(p string) bool { return !IsTemplatePath(p) })
}

// PreferTemplates narrows paths to its templates when there is more than one
// path and at least one template among them.
func PreferTemplates(paths []string) []string {
	if len(paths) <= 1 {
		return paths
	}
	if templates := Templates(paths); len(templates) > 0 {
		return templates
	}
	return paths
}

func filter(paths []string, keep func(string) bool) []string {
	var out []string
	for _, p := range paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
