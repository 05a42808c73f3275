// Package modresolve implements the external module-resolution collaborator
// spec 6.3 documents: given a specifier and an importing file, locate the
// source file it names. Full npm-package resolution semantics (package.json
// "exports" condition maps, scoped packages, symlink realpath handling) are
// out of scope per spec Non-goals; this package implements the 5-step order
// spec 6.3 names with a deliberately simplified node_modules walk (see
// DESIGN.md's resolution of the exports-conditions Open Question).
package modresolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tsz-lang/tszcore/internal/config"
)

// FS abstracts the filesystem so tests can resolve against an in-memory
// tree instead of touching disk.
type FS interface {
	Stat(path string) (exists bool, isDir bool)
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) Stat(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// OS is the real filesystem-backed FS.
var OS FS = osFS{}

// Resolver resolves import specifiers relative to a base directory
// containing node_modules-style package directories.
type Resolver struct {
	FS         FS
	TypeRoots  []string
}

func New(fs FS, typeRoots []string) *Resolver {
	return &Resolver{FS: fs, TypeRoots: typeRoots}
}

// Resolve implements the 5-step order spec 6.3 names: relative, absolute,
// path-mapping (paths is a baseUrl-relative prefix map, same shape as
// tsconfig's "paths"), a node_modules walk upward from fromDir, and finally
// a @types fallback under each configured type root.
func (r *Resolver) Resolve(specifier, fromDir string, paths map[string][]string, baseURL string) (string, bool) {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return r.resolveFile(filepath.Join(fromDir, specifier))
	}
	if filepath.IsAbs(specifier) {
		return r.resolveFile(specifier)
	}
	if resolved, ok := r.resolvePathMapping(specifier, paths, baseURL); ok {
		return resolved, true
	}
	if resolved, ok := r.resolveNodeModules(specifier, fromDir); ok {
		return resolved, true
	}
	return r.resolveTypesFallback(specifier)
}

func (r *Resolver) resolveFile(base string) (string, bool) {
	for _, ext := range config.SourceFileExtensions {
		candidate := base + ext
		if exists, isDir := r.FS.Stat(candidate); exists && !isDir {
			return candidate, true
		}
	}
	if exists, isDir := r.FS.Stat(base); exists && !isDir {
		return base, true
	}
	if exists, isDir := r.FS.Stat(base); exists && isDir {
		return r.resolveFile(filepath.Join(base, "index"))
	}
	return "", false
}

func (r *Resolver) resolvePathMapping(specifier string, paths map[string][]string, baseURL string) (string, bool) {
	for pattern, targets := range paths {
		prefix := strings.TrimSuffix(pattern, "*")
		if !strings.HasPrefix(specifier, prefix) {
			continue
		}
		suffix := specifier[len(prefix):]
		for _, target := range targets {
			candidate := strings.Replace(target, "*", suffix, 1)
			if resolved, ok := r.resolveFile(filepath.Join(baseURL, candidate)); ok {
				return resolved, true
			}
		}
	}
	return "", false
}

// resolveNodeModules walks upward from fromDir looking for a node_modules
// directory containing the package, the same ascent node's CommonJS
// resolver uses. Package "exports" condition maps are deliberately not
// consulted here (see DESIGN.md) -- only a package's root entry file, under
// the simplifying assumption that the package's main entry is named
// `index` or matches its directory name.
func (r *Resolver) resolveNodeModules(specifier string, fromDir string) (string, bool) {
	dir := fromDir
	for {
		candidateDir := filepath.Join(dir, "node_modules", specifier)
		if exists, isDir := r.FS.Stat(candidateDir); exists && isDir {
			if resolved, ok := r.resolveFile(filepath.Join(candidateDir, "index")); ok {
				return resolved, true
			}
		}
		if resolved, ok := r.resolveFile(filepath.Join(dir, "node_modules", specifier)); ok {
			return resolved, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (r *Resolver) resolveTypesFallback(specifier string) (string, bool) {
	pkgName := specifier
	if strings.HasPrefix(pkgName, "@") {
		parts := strings.SplitN(pkgName, "/", 2)
		if len(parts) == 2 {
			pkgName = parts[0][1:] + "__" + parts[1]
		}
	}
	for _, root := range r.TypeRoots {
		candidate := filepath.Join(root, "@types", pkgName, "index")
		if resolved, ok := r.resolveFile(candidate); ok {
			return resolved, true
		}
	}
	return "", false
}
