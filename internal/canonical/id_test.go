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

package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsRelativePaths(t *testing.T) {
	_, err := New("relative/path.ts", "foo")
	require.ErrorIs(t, err, ErrNotAbsolute)
}

func TestNewNormalizesDotDotSegments(t *testing.T) {
	a, err := New("/workspace/src/../src/a.ts", "fragment")
	require.NoError(t, err)

	b, err := New("/workspace/src/a.ts", "fragment")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "/workspace/src/a.ts::fragment", string(a))
}

func TestFilePathAndAstPathRoundTrip(t *testing.T) {
	id := MustNew("/workspace/src/a.ts", "Query.arrow#2")
	assert.Equal(t, "/workspace/src/a.ts", id.FilePath())
	assert.Equal(t, "Query.arrow#2", id.AstPath())
}

func TestIdsWithDifferentAstPathsNeverCollide(t *testing.T) {
	seen := map[Id]bool{}
	for _, p := range []string{"a", "b", "arrow#1", "arrow#2", "_class_1"} {
		id := MustNew("/workspace/src/a.ts", p)
		require.False(t, seen[id], "unexpected collision for %s", p)
		seen[id] = true
	}
}
