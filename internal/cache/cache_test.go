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

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sodagql.dev/builder/internal/discovery"
	"sodagql.dev/builder/internal/fingerprint"
)

func sampleSnapshot(path string) discovery.Snapshot {
	return discovery.Snapshot{
		FilePath:        path,
		Fingerprint:     fingerprint.Compute([]byte("x"), 1, 100),
		ResolvedImports: map[string]string{},
	}
}

func TestMemoryCacheNamespacesEntries(t *testing.T) {
	c := NewMemoryCache()
	nsA := Namespace{AnalyzerId: "treesitter-go", EvaluatorId: "eval-1"}
	nsB := Namespace{AnalyzerId: "treesitter-legacy", EvaluatorId: "eval-1"}

	require.NoError(t, c.Store(nsA, "/a.ts", sampleSnapshot("/a.ts")))
	require.NoError(t, c.Store(nsB, "/a.ts", sampleSnapshot("/a.ts")))

	_, okA := c.Peek(nsA, "/a.ts")
	_, okB := c.Peek(nsB, "/a.ts")
	assert.True(t, okA)
	assert.True(t, okB)

	require.NoError(t, c.Clear(nsA))
	_, okA = c.Peek(nsA, "/a.ts")
	_, okB = c.Peek(nsB, "/a.ts")
	assert.False(t, okA)
	assert.True(t, okB, "clearing one namespace must not affect another")
}

func TestMemoryCacheDeleteAndSize(t *testing.T) {
	c := NewMemoryCache()
	ns := Namespace{AnalyzerId: "a", EvaluatorId: "e"}
	require.NoError(t, c.Store(ns, "/a.ts", sampleSnapshot("/a.ts")))
	require.NoError(t, c.Store(ns, "/b.ts", sampleSnapshot("/b.ts")))

	size, err := c.Size(ns)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	require.NoError(t, c.Delete(ns, "/a.ts"))
	size, err = c.Size(ns)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer c.Close()

	ns := Namespace{AnalyzerId: "treesitter-go", EvaluatorId: "eval-1"}
	snap := sampleSnapshot("/a.ts")

	require.NoError(t, c.Store(ns, "/a.ts", snap))

	got, ok, err := c.Load(ns, "/a.ts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.FilePath, got.FilePath)
	assert.Equal(t, snap.Fingerprint, got.Fingerprint)

	entries, err := c.Entries(ns)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.ts"}, entries)

	require.NoError(t, c.Delete(ns, "/a.ts"))
	_, ok, err = c.Load(ns, "/a.ts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoundAdaptsToDiscoveryCache(t *testing.T) {
	c := NewMemoryCache()
	bound := Bound{Cache: c, NS: Namespace{AnalyzerId: "a", EvaluatorId: "e"}}

	bound.Store("/a.ts", sampleSnapshot("/a.ts"))
	snap, ok := bound.Peek("/a.ts")
	assert.True(t, ok)
	assert.Equal(t, "/a.ts", snap.FilePath)
}
