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

package artifact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/element"
	"sodagql.dev/builder/internal/registry"
)

func TestAggregate_PairsDefinitionsWithPrebuilds(t *testing.T) {
	analyses := map[string]analyzer.ModuleAnalysis{
		"/a.ts": {
			FilePath:    "/a.ts",
			Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0", IsTopLevel: true}},
		},
	}
	namespaces := map[string]registry.Namespace{
		"/a.ts": {"program.0": true},
	}
	id := canonical.MustNew("/a.ts", "program.0")
	prebuilds := map[canonical.Id]element.Prebuild{id: "compiled-fragment"}
	kinds := map[canonical.Id]element.Kind{id: element.KindFragment}

	out, err := Aggregate(analyses, namespaces, prebuilds, kinds)
	require.Nil(t, err)
	require.Len(t, out.Elements, 1)
	assert.Equal(t, "compiled-fragment", out.Elements[id].Prebuild)
	assert.Equal(t, element.KindFragment, out.Elements[id].Kind)
}

func TestAggregate_MissingPrebuildIsArtifactNotFound(t *testing.T) {
	analyses := map[string]analyzer.ModuleAnalysis{
		"/a.ts": {
			FilePath:    "/a.ts",
			Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}},
		},
	}
	namespaces := map[string]registry.Namespace{
		"/a.ts": {"program.0": true},
	}

	_, err := Aggregate(analyses, namespaces, map[canonical.Id]element.Prebuild{}, map[canonical.Id]element.Kind{})
	require.NotNil(t, err)
	assert.Equal(t, builderrors.CodeArtifactNotFoundInRuntime, err.Code)
}

func TestAggregate_MissingNamespaceEntryIsArtifactNotFound(t *testing.T) {
	analyses := map[string]analyzer.ModuleAnalysis{
		"/a.ts": {
			FilePath:    "/a.ts",
			Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}},
		},
	}
	id := canonical.MustNew("/a.ts", "program.0")
	prebuilds := map[canonical.Id]element.Prebuild{id: "compiled-fragment"}
	kinds := map[canonical.Id]element.Kind{id: element.KindFragment}

	// The registry never evaluated this module's namespace at all, which
	// must fail the same way a prebuild-less definition does.
	_, err := Aggregate(analyses, map[string]registry.Namespace{}, prebuilds, kinds)
	require.NotNil(t, err)
	assert.Equal(t, builderrors.CodeArtifactNotFoundInRuntime, err.Code)
}

func TestAggregate_CombinesElementsAcrossFiles(t *testing.T) {
	analyses := map[string]analyzer.ModuleAnalysis{
		"/z.ts": {FilePath: "/z.ts", Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}}},
		"/a.ts": {FilePath: "/a.ts", Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}}},
	}
	namespaces := map[string]registry.Namespace{
		"/z.ts": {"program.0": true},
		"/a.ts": {"program.0": true},
	}
	zID := canonical.MustNew("/z.ts", "program.0")
	aID := canonical.MustNew("/a.ts", "program.0")
	prebuilds := map[canonical.Id]element.Prebuild{zID: "z", aID: "a"}
	kinds := map[canonical.Id]element.Kind{zID: element.KindModel, aID: element.KindModel}

	out, err := Aggregate(analyses, namespaces, prebuilds, kinds)
	require.Nil(t, err)
	require.Len(t, out.Elements, 2)
	assert.Equal(t, "a", out.Elements[aID].Prebuild)
	assert.Equal(t, "z", out.Elements[zID].Prebuild)
}

// TestAggregate_DeterministicAcrossRepeatedRuns guards invariant 4: two
// Aggregate calls over identical inputs must produce byte-for-byte
// identical artifacts, so elements of files untouched by an incremental
// Update compare equal to those of the previous build.
func TestAggregate_DeterministicAcrossRepeatedRuns(t *testing.T) {
	analyses := map[string]analyzer.ModuleAnalysis{
		"/z.ts": {FilePath: "/z.ts", Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}}},
		"/a.ts": {FilePath: "/a.ts", Definitions: []analyzer.ModuleDefinition{{AstPath: "program.0"}}},
	}
	namespaces := map[string]registry.Namespace{
		"/z.ts": {"program.0": true},
		"/a.ts": {"program.0": true},
	}
	zID := canonical.MustNew("/z.ts", "program.0")
	aID := canonical.MustNew("/a.ts", "program.0")
	prebuilds := map[canonical.Id]element.Prebuild{zID: "z", aID: "a"}
	kinds := map[canonical.Id]element.Kind{zID: element.KindModel, aID: element.KindModel}

	first, err := Aggregate(analyses, namespaces, prebuilds, kinds)
	require.Nil(t, err)
	second, err := Aggregate(analyses, namespaces, prebuilds, kinds)
	require.Nil(t, err)

	if diff := cmp.Diff(first.Elements, second.Elements); diff != "" {
		t.Errorf("Aggregate is not deterministic across repeated runs (-first +second):\n%s", diff)
	}
}
