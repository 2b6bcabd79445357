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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoConfigFilePresent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(New(), dir)
	require.NoError(t, err)
	assert.Equal(t, BackendTreeSitter, cfg.Analyzer)
	assert.Equal(t, CacheMemory, cfg.Cache)
	assert.Equal(t, dir, cfg.ProjectDir)
}

func TestLoad_ReadsYamlFile(t *testing.T) {
	dir := t.TempDir()
	content := "entrypoints:\n  - src/**/*.ts\nanalyzer: fallback\ncache: disk\nasync: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sodagql.yaml"), []byte(content), 0644))

	cfg, err := Load(New(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Entrypoints)
	assert.Equal(t, AnalyzerBackend("fallback"), cfg.Analyzer)
	assert.Equal(t, CacheBackend("disk"), cfg.Cache)
	assert.True(t, cfg.Async)
}

func TestClone_DeepCopiesSlices(t *testing.T) {
	cfg := Default()
	cfg.Entrypoints = []string{"a.ts"}
	clone := cfg.Clone()
	clone.Entrypoints[0] = "b.ts"
	assert.Equal(t, "a.ts", cfg.Entrypoints[0])
}
