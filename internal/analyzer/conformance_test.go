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

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/analyzer/legacy"
	"sodagql.dev/builder/internal/analyzer/treesitter"
)

// astPaths extracts the sorted-by-appearance astPath of every definition,
// the one property both backends are contractually required to agree on.
func astPaths(a analyzer.ModuleAnalysis) []string {
	paths := make([]string, len(a.Definitions))
	for i, d := range a.Definitions {
		paths[i] = d.AstPath
	}
	return paths
}

func TestBackendsAgreeOnAstPaths(t *testing.T) {
	fixtures := []struct {
		name   string
		source string
	}{
		{
			name: "top level fragment",
			source: `
import { gql } from "@sodagql/runtime";
export const UserFields = gql.fragment("UserFields on User { id name }");
`,
		},
		{
			name: "nested arrow fragments",
			source: `
import { gql } from "@sodagql/runtime";
const makeQuery = () => gql.operation("query Q { viewer { id } }");
export const wrapped = (() => gql.fragment("F on Node { id }"))();
`,
		},
		{
			name: "class property definitions are diagnostics not definitions",
			source: `
import { gql } from "@sodagql/runtime";
class Widget {
  fields = gql.fragment("WidgetFields on Widget { id }");
}
`,
		},
		{
			name: "renamed helper import",
			source: `
import { gql as graphql } from "@sodagql/runtime";
export const Ping = graphql.fragment("Ping on Query { ping }");
`,
		},
		{
			name: "default and star helper imports",
			source: `
import gql from "@sodagql/runtime";
import * as gql2 from "@sodagql/runtime";
export const A = gql.fragment("A on Query { a }");
`,
		},
		{
			name: "re-export and named export forms",
			source: `
import { gql } from "@sodagql/runtime";
const Internal = gql.fragment("Internal on Query { a }");
export { Internal as Public };
`,
		},
	}

	tsAnalyzer := treesitter.New()
	legacyAnalyzer := legacy.New()

	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			in := analyzer.Input{FilePath: "/virtual/" + fx.name + ".ts", Source: []byte(fx.source)}

			primary, err := tsAnalyzer.Analyze(in)
			require.NoError(t, err)

			secondary, err := legacyAnalyzer.Analyze(in)
			require.NoError(t, err)

			assert.Equal(t, astPaths(primary), astPaths(secondary), "astPath sequences must match between backends")
			assert.Equal(t, len(primary.Imports), len(secondary.Imports))
			assert.Equal(t, len(primary.Exports), len(secondary.Exports))
			assert.Equal(t, len(primary.Diagnostics), len(secondary.Diagnostics))

			for i := range primary.Definitions {
				assert.Equal(t, primary.Definitions[i].IsExported, secondary.Definitions[i].IsExported)
				assert.Equal(t, primary.Definitions[i].ExportBinding, secondary.Definitions[i].ExportBinding)
				assert.Equal(t, primary.Definitions[i].IsTopLevel, secondary.Definitions[i].IsTopLevel,
					"astPath %q: backends must agree on isTopLevel", primary.Definitions[i].AstPath)
			}
		})
	}
}

func TestBackendTypesAreDistinct(t *testing.T) {
	assert.NotEqual(t, treesitter.New().Type(), legacy.New().Type())
	assert.Equal(t, "treesitter-go", treesitter.New().Type())
	assert.Equal(t, "treesitter-legacy", legacy.New().Type())
}
