// Package search resolves package names against the pkg-config search
// path and caches loaded metadata files for the lifetime of the
// process.
package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/matijaskala/pkgconfig-openbsd/internal/pcerr"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcfile"
)

// Index provides name-to-metadata lookup across a search path. It
// caches every file it has successfully loaded; the cache is never
// invalidated during a run, mirroring the once-populated-then-queried
// shape of a static package index.
type Index struct {
	path   []string
	logger hclog.Logger

	loaded          map[string]*pcfile.PkgConfig
	usedUninstalled bool
}

// New builds an Index over the given ordered search path. The self
// package (if any) should be seeded with Seed before the first Lookup.
func New(path []string, logger hclog.Logger) *Index {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Index{
		path:   path,
		logger: logger,
		loaded: make(map[string]*pcfile.PkgConfig),
	}
}

// Seed injects a pre-built metadata entry (used for the synthetic
// "pkg-config" self-package) directly into the cache, bypassing the
// filesystem probe.
func (idx *Index) Seed(name string, pc *pcfile.PkgConfig) {
	idx.loaded[name] = pc
}

// Lookup resolves name to a parsed metadata file, in this precedence:
//  1. an already-cached entry (including seeded ones)
//  2. name treated as a literal path if it contains a path separator
//     or ends in ".pc"
//  3. "<name>-uninstalled.pc" in each search directory, unless
//     uninstalled lookups are disabled
//  4. "<name>.pc" in each search directory
//
// A successful load is cached under name for the remainder of the run.
func (idx *Index) Lookup(name string, allowUninstalled bool) (*pcfile.PkgConfig, error) {
	if pc, ok := idx.loaded[name]; ok {
		return pc, nil
	}

	if looksLikePath(name) {
		pc, err := idx.loadFile(name)
		if err != nil {
			return nil, err
		}
		idx.loaded[name] = pc
		return pc, nil
	}

	if allowUninstalled {
		for _, dir := range idx.path {
			candidate := filepath.Join(dir, name+"-uninstalled.pc")
			if pc, err := idx.tryLoad(candidate); err == nil {
				idx.logger.Debug("resolved package to uninstalled variant", "name", name, "path", candidate)
				idx.loaded[name] = pc
				idx.usedUninstalled = true
				return pc, nil
			}
		}
	}

	for _, dir := range idx.path {
		candidate := filepath.Join(dir, name+".pc")
		if pc, err := idx.tryLoad(candidate); err == nil {
			idx.logger.Debug("resolved package", "name", name, "path", candidate)
			idx.loaded[name] = pc
			return pc, nil
		}
	}

	return nil, pcerr.New(pcerr.NotFound, name, "package "+name+" not found in search path")
}

func looksLikePath(name string) bool {
	return strings.ContainsRune(name, filepath.Separator) || strings.HasSuffix(name, ".pc")
}

func (idx *Index) loadFile(path string) (*pcfile.PkgConfig, error) {
	pc, err := pcfile.Load(path)
	if err != nil {
		return nil, err
	}
	if missing := pc.Validate(); missing != "" {
		if pc.Empty() {
			return nil, pcerr.New(pcerr.Invalid, path, path+" appears to be empty; missing required field "+missing)
		}
		return nil, pcerr.New(pcerr.Invalid, path, "missing required field "+missing)
	}
	return pc, nil
}

// tryLoad loads a candidate file, treating a missing file as a normal
// miss (not an error) so the caller can keep probing the search path.
func (idx *Index) tryLoad(path string) (*pcfile.PkgConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return idx.loadFile(path)
}

// Path returns the resolved search path this index probes, in order.
func (idx *Index) Path() []string {
	out := make([]string, len(idx.path))
	copy(out, idx.path)
	return out
}

// Loaded reports whether name is already present in the cache, without
// triggering a filesystem probe.
func (idx *Index) Loaded(name string) bool {
	_, ok := idx.loaded[name]
	return ok
}

// UsedUninstalled reports whether any Lookup during this Index's
// lifetime resolved to a "-uninstalled.pc" variant, backing --uninstalled.
func (idx *Index) UsedUninstalled() bool {
	return idx.usedUninstalled
}

// All returns every package name currently in the search path that has
// a ".pc" file, used by --list-all. It scans each search directory
// once and does not populate the load cache (callers that need parsed
// metadata should still Lookup by name).
func (idx *Index) All() []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range idx.path {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			base := e.Name()
			if !strings.HasSuffix(base, ".pc") || strings.HasSuffix(base, "-uninstalled.pc") {
				continue
			}
			name := strings.TrimSuffix(base, ".pc")
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
