/*
Copyright © 2026 sodagql contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package adjacency implements the Module Adjacency index (spec.md §4.5):
// an inverted imported→importers map rebuilt from a snapshot set, used to
// compute the set of files transitively affected by a change.
package adjacency

import (
	"path/filepath"
	"sort"
	"strings"

	"sodagql.dev/builder/internal/discovery"
)

// Graph is an immutable snapshot of import adjacency: every discovered
// file appears as a key, even if nothing imports it, matching gopls'
// metadata.Graph convention of a total (not partial) key space.
type Graph struct {
	importedBy map[string]map[string]struct{}
}

// fallbackSuffixes mirrors the discovery scanner's relative-import probe
// order (spec.md §4.3), used here to resolve specifiers against the
// snapshot set itself rather than the filesystem.
var fallbackSuffixes = []string{
	"",
	".ts",
	".tsx",
	".js",
	".jsx",
	"/index.ts",
	"/index.tsx",
	"/index.js",
	"/index.jsx",
}

// Build constructs a Graph from a discovery snapshot set. Every snapshot's
// resolved imports become an edge (spec.md §4.5 prefers `snapshot.
// dependencies`). For a snapshot with no tracked dependencies at all but
// whose analysis still lists non-type-only relative imports — a
// runtime-inserted module such as a JS fallback whose dependency edges
// weren't captured during analysis — attempt a runtime specifier
// resolution against the snapshot set and include any edges found, so
// such files don't silently drop out of the graph.
func Build(snapshots map[string]discovery.Snapshot) *Graph {
	g := &Graph{importedBy: make(map[string]map[string]struct{}, len(snapshots))}
	for filePath := range snapshots {
		g.importedBy[filePath] = map[string]struct{}{}
	}
	knownPaths := make(map[string]string, len(snapshots))
	for filePath := range snapshots {
		knownPaths[filepath.ToSlash(filePath)] = filePath
	}

	for importer, snap := range snapshots {
		tracked := false
		for _, imported := range snap.ResolvedImports {
			if imported == "" {
				continue
			}
			tracked = true
			g.addEdge(imported, importer)
		}
		if tracked {
			continue
		}
		for _, imp := range snap.Analysis.Imports {
			if imp.IsTypeOnly || !isRelativeSpecifier(imp.Source) {
				continue
			}
			if resolved, ok := resolveAgainstKnownPaths(knownPaths, importer, imp.Source); ok {
				g.addEdge(resolved, importer)
			}
		}
	}
	return g
}

func (g *Graph) addEdge(imported, importer string) {
	if _, ok := g.importedBy[imported]; !ok {
		g.importedBy[imported] = map[string]struct{}{}
	}
	g.importedBy[imported][importer] = struct{}{}
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveAgainstKnownPaths probes fallbackSuffixes against the snapshot
// set's own keys (not the filesystem) to resolve a relative specifier
// from importer, mirroring the discovery scanner's resolution order.
func resolveAgainstKnownPaths(knownPaths map[string]string, importer, specifier string) (string, bool) {
	base := filepath.Join(filepath.Dir(importer), specifier)
	for _, suffix := range fallbackSuffixes {
		candidate := filepath.ToSlash(base + suffix)
		if filePath, ok := knownPaths[candidate]; ok {
			return filePath, true
		}
	}
	return "", false
}

// ImportedBy returns the sorted set of files that import filePath.
func (g *Graph) ImportedBy(filePath string) []string {
	set, ok := g.importedBy[filePath]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for importer := range set {
		out = append(out, importer)
	}
	sort.Strings(out)
	return out
}

// Files returns every file present in the graph, sorted.
func (g *Graph) Files() []string {
	out := make([]string, 0, len(g.importedBy))
	for f := range g.importedBy {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Affected computes the set of files transitively affected by a change to
// the given changed files: the changed files themselves plus every file
// that (transitively) imports one of them, via a flat BFS over the
// importedBy index rather than recursion.
func (g *Graph) Affected(changed []string) []string {
	visited := make(map[string]struct{}, len(changed))
	queue := append([]string(nil), changed...)
	for _, c := range changed {
		visited[c] = struct{}{}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, importer := range g.ImportedBy(current) {
			if _, seen := visited[importer]; seen {
				continue
			}
			visited[importer] = struct{}{}
			queue = append(queue, importer)
		}
	}

	out := make([]string, 0, len(visited))
	for f := range visited {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
