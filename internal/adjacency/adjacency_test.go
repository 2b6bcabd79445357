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

package adjacency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/discovery"
)

func snap(path string, imports map[string]string) discovery.Snapshot {
	return discovery.Snapshot{FilePath: path, ResolvedImports: imports}
}

func TestBuildEveryFileIsAKeyEvenWithNoImporters(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/leaf.ts": snap("/leaf.ts", nil),
	}
	g := Build(snapshots)
	assert.Equal(t, []string{"/leaf.ts"}, g.Files())
	assert.Empty(t, g.ImportedBy("/leaf.ts"))
}

func TestImportedByIndex(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": snap("/a.ts", map[string]string{"./c": "/c.ts"}),
		"/b.ts": snap("/b.ts", map[string]string{"./c": "/c.ts"}),
		"/c.ts": snap("/c.ts", nil),
	}
	g := Build(snapshots)
	assert.Equal(t, []string{"/a.ts", "/b.ts"}, g.ImportedBy("/c.ts"))
}

func TestAffectedTransitiveClosure(t *testing.T) {
	// entry -> mid -> leaf
	snapshots := map[string]discovery.Snapshot{
		"/entry.ts": snap("/entry.ts", map[string]string{"./mid": "/mid.ts"}),
		"/mid.ts":   snap("/mid.ts", map[string]string{"./leaf": "/leaf.ts"}),
		"/leaf.ts":  snap("/leaf.ts", nil),
	}
	g := Build(snapshots)
	affected := g.Affected([]string{"/leaf.ts"})
	assert.ElementsMatch(t, []string{"/leaf.ts", "/mid.ts", "/entry.ts"}, affected)
}

func TestAffectedDoesNotCrossUnrelatedBranches(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": snap("/a.ts", map[string]string{"./shared": "/shared.ts"}),
		"/b.ts": snap("/b.ts", nil),
		"/shared.ts": snap("/shared.ts", nil),
	}
	g := Build(snapshots)
	affected := g.Affected([]string{"/shared.ts"})
	assert.ElementsMatch(t, []string{"/shared.ts", "/a.ts"}, affected)
	assert.NotContains(t, affected, "/b.ts")
}

// TestBuildFallsBackToRuntimeResolutionForUntrackedDependencies covers
// spec.md §4.5: a snapshot with no ResolvedImports edges at all (a
// runtime-inserted module, e.g. a JS fallback) but whose analysis still
// lists a non-type-only relative import must still contribute an edge,
// found by resolving that specifier against the snapshot set itself.
func TestBuildFallsBackToRuntimeResolutionForUntrackedDependencies(t *testing.T) {
	entry := snap("/entry.js", nil)
	entry.Analysis = analyzer.ModuleAnalysis{
		FilePath: "/entry.js",
		Imports:  []analyzer.ModuleImport{{Source: "./leaf", IsTypeOnly: false}},
	}
	snapshots := map[string]discovery.Snapshot{
		"/entry.js": entry,
		"/leaf.ts":  snap("/leaf.ts", nil),
	}
	g := Build(snapshots)
	assert.Equal(t, []string{"/entry.js"}, g.ImportedBy("/leaf.ts"))
}

// TestBuildFallbackIgnoresTypeOnlyImports ensures the runtime-resolution
// fallback only considers non-type-only imports, per spec.md §4.5.
func TestBuildFallbackIgnoresTypeOnlyImports(t *testing.T) {
	entry := snap("/entry.js", nil)
	entry.Analysis = analyzer.ModuleAnalysis{
		FilePath: "/entry.js",
		Imports:  []analyzer.ModuleImport{{Source: "./leaf", IsTypeOnly: true}},
	}
	snapshots := map[string]discovery.Snapshot{
		"/entry.js": entry,
		"/leaf.ts":  snap("/leaf.ts", nil),
	}
	g := Build(snapshots)
	assert.Empty(t, g.ImportedBy("/leaf.ts"))
}
