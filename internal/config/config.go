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

// Package config loads BuilderConfig from sodagql.yaml via viper, with CLI
// flags applied on top by the cmd package, mirroring the teacher's
// CemConfig (spec.md §2.3).
package config

// AnalyzerBackend selects which AstAnalyzer implementation a session uses.
type AnalyzerBackend string

const (
	BackendTreeSitter AnalyzerBackend = "treesitter"
	BackendFallback   AnalyzerBackend = "fallback"
)

// CacheBackend selects which DiscoveryCache implementation a session uses.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheDisk   CacheBackend = "disk"
)

// BuilderConfig is the CLI/programmatic configuration surface (spec.md
// §2.3), loadable from sodagql.yaml or overridden by flags.
type BuilderConfig struct {
	ProjectDir string `mapstructure:"projectDir" yaml:"projectDir"`
	ConfigFile string `mapstructure:"configFile" yaml:"configFile"`

	// Entrypoints is the glob list discovery starts from.
	Entrypoints []string `mapstructure:"entrypoints" yaml:"entrypoints"`
	// Exclude is appended to the scanner's default excludes
	// (**/node_modules/**, **/*.d.ts).
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// NoDefaultExcludes disables the scanner's built-in exclude patterns.
	NoDefaultExcludes bool `mapstructure:"noDefaultExcludes" yaml:"noDefaultExcludes"`

	Analyzer AnalyzerBackend `mapstructure:"analyzer" yaml:"analyzer"`
	Cache    CacheBackend    `mapstructure:"cache" yaml:"cache"`
	// Async selects concurrent element evaluation (effect.AsyncScheduler).
	Async bool `mapstructure:"async" yaml:"async"`

	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	Quiet   bool `mapstructure:"quiet" yaml:"quiet"`
}

// Default returns a BuilderConfig with the scanner's and session's own
// defaults made explicit, the way the teacher's CemConfig is constructed
// before viper overlays user settings onto it.
func Default() *BuilderConfig {
	return &BuilderConfig{
		Entrypoints: []string{"**/*.ts", "**/*.tsx"},
		Analyzer:    BackendTreeSitter,
		Cache:       CacheMemory,
	}
}

// Clone deep-copies a BuilderConfig's slices, mirroring CemConfig.Clone.
func (c *BuilderConfig) Clone() *BuilderConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Entrypoints != nil {
		clone.Entrypoints = append([]string(nil), c.Entrypoints...)
	}
	if c.Exclude != nil {
		clone.Exclude = append([]string(nil), c.Exclude...)
	}
	return &clone
}
