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

package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/discovery"
)

func TestValidatePassesOnClosedWorld(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": {
			FilePath: "/a.ts",
			Analysis: analyzer.ModuleAnalysis{Imports: []analyzer.ModuleImport{{Source: "./b"}}},
			ResolvedImports: map[string]string{
				"./b": "/b.ts",
			},
		},
		"/b.ts": {FilePath: "/b.ts"},
	}
	assert.NoError(t, Validate(snapshots))
}

func TestValidateFailsOnUnresolvedSpecifier(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": {
			FilePath:        "/a.ts",
			Analysis:        analyzer.ModuleAnalysis{Imports: []analyzer.ModuleImport{{Source: "./missing"}}},
			ResolvedImports: map[string]string{},
		},
	}
	err := Validate(snapshots)
	require.Error(t, err)
	var be *builderrors.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, builderrors.CodeMissingImport, be.Code)
}

func TestValidateIgnoresTypeOnlyGaps(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": {
			FilePath: "/a.ts",
			Analysis: analyzer.ModuleAnalysis{Imports: []analyzer.ModuleImport{
				{Source: "./types", IsTypeOnly: true},
			}},
			ResolvedImports: map[string]string{},
		},
	}
	assert.NoError(t, Validate(snapshots))
}

func TestValidateIgnoresNonRelativeSpecifiers(t *testing.T) {
	snapshots := map[string]discovery.Snapshot{
		"/a.ts": {
			FilePath:        "/a.ts",
			Analysis:        analyzer.ModuleAnalysis{Imports: []analyzer.ModuleImport{{Source: "@sodagql/runtime"}}},
			ResolvedImports: map[string]string{},
		},
	}
	assert.NoError(t, Validate(snapshots))
}
