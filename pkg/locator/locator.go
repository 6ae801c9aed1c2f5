// Package locator resolves Python module names to the files that define
// them. Resolution walks an ordered list of search roots, probing for
// packages and plain modules, and falls back to a table of standard-library
// names for modules that ship without a visible source file.
package locator

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies where a resolved module lives.
type Kind int

const (
	// KindLocal is a module found under the project or an explicit search
	// path.
	KindLocal Kind = iota
	// KindThirdParty is a module found under a configured site-packages
	// style root.
	KindThirdParty
	// KindStdlib is a standard-library module.
	KindStdlib
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindThirdParty:
		return "third-party"
	case KindStdlib:
		return "stdlib"
	}
	return "unknown"
}

// ModuleSpec describes a resolved module. Origin is empty when the module
// resolved by name only, with no source file to follow into.
type ModuleSpec struct {
	Name   string `json:"name"`
	Origin string `json:"origin,omitempty"`
	Kind   Kind   `json:"kind"`
}

// Root is a directory probed during resolution.
type Root struct {
	Path string
	Kind Kind
}

// Resolver locates modules against a fixed set of search roots. Lookups are
// memoised, including misses, since the same imports recur across a project.
type Resolver struct {
	roots []Root
	memo  map[string]*ModuleSpec
}

// NewResolver builds a resolver over the given roots, probed in order.
func NewResolver(roots []Root) *Resolver {
	return &Resolver{roots: roots, memo: make(map[string]*ModuleSpec)}
}

// DefaultRoots returns the standard search roots for a target file: the
// file's own directory and the working directory as local roots, followed by
// any extra paths as third-party roots.
func DefaultRoots(target string, extra []string) []Root {
	roots := []Root{}
	if target != "" {
		if abs, err := filepath.Abs(filepath.Dir(target)); err == nil {
			roots = append(roots, Root{Path: abs, Kind: KindLocal})
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, Root{Path: cwd, Kind: KindLocal})
	}
	for _, p := range extra {
		if abs, err := filepath.Abs(p); err == nil {
			roots = append(roots, Root{Path: abs, Kind: KindThirdParty})
		}
	}
	return roots
}

// Resolve locates a single dotted module name. The second return is false
// when the name does not correspond to any known module.
func (r *Resolver) Resolve(name string) (*ModuleSpec, bool) {
	if name == "" {
		return nil, false
	}
	if spec, seen := r.memo[name]; seen {
		return spec, spec != nil
	}
	spec := r.locate(name)
	r.memo[name] = spec
	return spec, spec != nil
}

// ResolveQualified locates the module part of a qualified name by trimming
// trailing components until a module resolves. "os.path.join" resolves to
// the spec for "os.path".
func (r *Resolver) ResolveQualified(name string) (*ModuleSpec, bool) {
	parts := strings.Split(name, ".")
	for i := len(parts); i > 0; i-- {
		if spec, ok := r.Resolve(strings.Join(parts[:i], ".")); ok {
			return spec, true
		}
	}
	return nil, false
}

func (r *Resolver) locate(name string) *ModuleSpec {
	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
	for _, root := range r.roots {
		for _, candidate := range []string{
			filepath.Join(root.Path, rel, "__init__.py"),
			filepath.Join(root.Path, rel+".py"),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				kind := root.Kind
				if kind != KindThirdParty && IsStdlibModule(strings.Split(name, ".")[0]) {
					kind = KindStdlib
				}
				return &ModuleSpec{Name: name, Origin: candidate, Kind: kind}
			}
		}
	}
	// The nameless fallback fires only when the whole name denotes a
	// stdlib module; anything longer trims back to the module that owns it.
	if IsStdlibModule(name) {
		return &ModuleSpec{Name: name, Kind: KindStdlib}
	}
	return nil
}

// ModuleNameForPath derives the dotted module name of a file from the
// resolver's roots. Files outside every root fall back to their basename.
func (r *Resolver) ModuleNameForPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, root := range r.roots {
		rel, err := filepath.Rel(root.Path, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		return moduleNameFromRel(rel)
	}
	return moduleNameFromRel(filepath.Base(abs))
}

func moduleNameFromRel(rel string) string {
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
	if rel == "__init__" {
		return ""
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

// AbsoluteFromRelative converts a relative import into an absolute module
// name. base is the importing module's own dotted name, level the number of
// leading dots, and name the imported suffix, possibly empty for a bare
// "from . import x". isPackage marks importing modules that are packages
// (__init__.py), whose first level refers to themselves.
func AbsoluteFromRelative(base string, level int, name string, isPackage bool) string {
	parts := []string{}
	if base != "" {
		parts = strings.Split(base, ".")
	}
	drop := level
	if isPackage {
		drop--
	}
	if drop > len(parts) {
		drop = len(parts)
	}
	parts = parts[:len(parts)-drop]
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}
