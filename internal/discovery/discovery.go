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

// Package discovery implements the Discovery Scanner (spec.md §4.2): a
// non-recursive breadth-first walk from a set of entrypoint globs, resolving
// relative imports against a fixed extension probe order and producing a
// DiscoverySnapshot per visited file.
package discovery

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/bmatcuk/doublestar/v4"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/fingerprint"
	"sodagql.dev/builder/internal/platform"
)

// candidateSuffixes is the fixed probe order spec.md §4.2 requires when
// resolving a relative import specifier that has no extension.
var candidateSuffixes = []string{
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

// defaultExcludePatterns mirrors the teacher's "always ignore build noise"
// defaults, expressed as doublestar patterns.
var defaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/*.d.ts",
}

// Snapshot is one file's discovery result: its analysis, fingerprint, and
// resolved import edges (spec.md §4.2).
type Snapshot struct {
	FilePath    string
	Fingerprint fingerprint.Fingerprint
	Analysis    analyzer.ModuleAnalysis
	// ResolvedImports maps each ModuleImport's Source specifier to the
	// absolute file path it resolved to, or "" if unresolved.
	ResolvedImports map[string]string
}

// Stats summarizes one discovery run for reporting (spec.md §4.2, §7).
type Stats struct {
	Visited int
	Hits    int // snapshots reused from cache via FastPathEqual
	Misses  int // snapshots re-analyzed because no fast-path-equal entry existed
	// CacheSkips counts files the caller explicitly invalidated: the cache
	// fast path is never consulted for them, per spec.md §4.3 step 3.
	CacheSkips int
	// TypeOnlyUnresolved counts type-only relative imports that didn't
	// resolve to a file — tolerated per spec.md §4.3, unrelated to cache
	// behavior.
	TypeOnlyUnresolved int
}

// Cache is the minimal surface the scanner needs from a DiscoveryCache
// (spec.md §4.3); the full cache interface lives in internal/cache and is
// satisfied by both its in-memory and disk-backed implementations.
type Cache interface {
	Peek(filePath string) (Snapshot, bool)
	Store(filePath string, snap Snapshot)
}

// Scanner walks a source tree from a set of entrypoints, producing
// Snapshots keyed by absolute file path.
type Scanner struct {
	FS       platform.FileSystem
	Analyzer analyzer.Analyzer
	Cache    Cache
	// Fingerprints is an optional in-memory (mtimeMs, size) memo (spec.md
	// §4.2) consulted before Cache: a miss or mismatch here skips the
	// Cache.Peek round-trip entirely, which matters when Cache is a
	// disk-backed DiscoveryCache (e.g. the sqlite-backed one) rather than
	// MemoryCache. A match still requires Cache.Peek to fetch the actual
	// Snapshot to reuse.
	Fingerprints *fingerprint.Memo
	RootDir      string
	Excludes     []string
	NoDefault    bool
}

// New constructs a Scanner with default excludes enabled.
func New(fs platform.FileSystem, az analyzer.Analyzer, cache Cache, rootDir string) *Scanner {
	return &Scanner{FS: fs, Analyzer: az, Cache: cache, RootDir: rootDir}
}

func (s *Scanner) excludeMatcher() (*ignore.GitIgnore, []string) {
	patterns := make([]string, 0, len(s.Excludes)+len(defaultExcludePatterns))
	patterns = append(patterns, s.Excludes...)
	if !s.NoDefault {
		patterns = append(patterns, defaultExcludePatterns...)
	}
	gi := ignore.CompileIgnoreLines(patterns...)
	return gi, patterns
}

func (s *Scanner) isExcluded(gi *ignore.GitIgnore, patterns []string, filePath string) bool {
	rel, err := filepath.Rel(s.RootDir, filePath)
	if err != nil {
		rel = filePath
	}
	rel = filepath.ToSlash(rel)
	if gi != nil && gi.MatchesPath(rel) {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.PathMatch(p, rel); ok {
			return true
		}
	}
	return false
}

// expandEntrypoints expands a set of glob patterns (relative to RootDir)
// into absolute file paths, grounded on the teacher's Files/Exclude
// expansion pass in its generate pipeline. A pattern without glob
// metacharacters is looked up through FS; a pattern with them is expanded
// by doublestar against the OS filesystem.
func (s *Scanner) expandEntrypoints(globs []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, g := range globs {
		pattern := g
		if !path.IsAbs(pattern) {
			pattern = filepath.ToSlash(filepath.Join(s.RootDir, pattern))
		}
		var matches []string
		if strings.ContainsAny(pattern, "*?[{") {
			var err error
			matches, err = doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, builderrors.DiscoveryIOError(g, err)
			}
		} else if s.FS.Exists(pattern) {
			matches = []string{pattern}
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if !seen[abs] {
				seen[abs] = true
				out = append(out, abs)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Scan performs a full discovery pass from the given entrypoint globs,
// returning every reachable Snapshot keyed by absolute file path.
// invalidatedPaths names files the caller has explicitly invalidated (e.g.
// a BuilderChangeSet's Added/Updated/Removed entries) — these skip the
// cache fast path unconditionally and are counted as cacheSkip rather than
// cacheMiss (spec.md §4.3 step 3). A nil/empty set is the normal
// BuildInitial case where nothing is explicitly invalidated.
func (s *Scanner) Scan(entrypointGlobs []string, invalidatedPaths map[string]bool) (map[string]Snapshot, Stats, error) {
	entrypoints, err := s.expandEntrypoints(entrypointGlobs)
	if err != nil {
		return nil, Stats{}, err
	}
	if len(entrypoints) == 0 {
		return nil, Stats{}, builderrors.EntryNotFound(strings.Join(entrypointGlobs, ", "))
	}

	gi, patterns := s.excludeMatcher()

	visited := make(map[string]Snapshot)
	stats := Stats{}

	// Explicit worklist, not recursion: mirrors the registry trampoline's
	// flat-traversal discipline so a long linear import chain cannot
	// overflow the Go call stack here either. Files are taken from the
	// front, so they are visited breadth-first from the entrypoints.
	stack := append([]string(nil), entrypoints...)
	onStack := make(map[string]bool, len(entrypoints))
	for _, e := range entrypoints {
		onStack[e] = true
	}

	for len(stack) > 0 {
		filePath := stack[0]
		stack = stack[1:]

		if _, already := visited[filePath]; already {
			continue
		}
		if s.isExcluded(gi, patterns, filePath) {
			continue
		}

		snap, outcome, err := s.analyzeOne(filePath, invalidatedPaths[filePath])
		if err != nil {
			return nil, stats, err
		}
		stats.Visited++
		switch outcome {
		case cacheHit:
			stats.Hits++
		case cacheSkip:
			stats.CacheSkips++
		default:
			stats.Misses++
		}
		visited[filePath] = snap

		for _, imp := range snap.Analysis.Imports {
			if !isRelativeSpecifier(imp.Source) {
				continue
			}
			resolved, ok := s.resolveRelativeImport(filepath.Dir(filePath), imp.Source)
			if !ok {
				if imp.IsTypeOnly {
					stats.TypeOnlyUnresolved++
					continue
				}
				return nil, stats, builderrors.MissingImport(filePath, imp.Source)
			}
			snap.ResolvedImports[imp.Source] = resolved
			if !visited[resolved].analyzed() && !onStack[resolved] {
				stack = append(stack, resolved)
				onStack[resolved] = true
			}
		}
		visited[filePath] = snap
	}

	return visited, stats, nil
}

func (snap Snapshot) analyzed() bool {
	return snap.FilePath != ""
}

// cacheOutcome classifies how analyzeOne produced its Snapshot, per
// spec.md §4.3's three-way cacheHit/cacheMiss/cacheSkip accounting.
type cacheOutcome int

const (
	cacheMiss cacheOutcome = iota
	cacheHit
	cacheSkip
)

// emptyModuleExtensions are the extensions spec.md §4.3 says resolve
// successfully but always analyze to an empty module: plain JS has no
// typed GraphQL helper import to discover definitions from.
var emptyModuleExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".jsx": true,
}

// analyzeOne reads, fingerprints, and (if the cache has no fast-path-equal
// entry, and the file wasn't explicitly invalidated) re-analyzes a single
// file. explicitlyInvalidated skips the cache fast path unconditionally
// and reports cacheSkip instead of cacheMiss (spec.md §4.3 step 3).
func (s *Scanner) analyzeOne(filePath string, explicitlyInvalidated bool) (Snapshot, cacheOutcome, error) {
	content, err := s.FS.ReadFile(filePath)
	if err != nil {
		return Snapshot{}, cacheMiss, builderrors.DiscoveryIOError(filePath, err)
	}
	info, err := s.FS.Stat(filePath)
	if err != nil {
		return Snapshot{}, cacheMiss, builderrors.DiscoveryIOError(filePath, err)
	}
	fp := fingerprint.Compute(content, info.Size(), info.ModTime().UnixMilli())

	if !explicitlyInvalidated {
		if s.fastPathLikelyHit(filePath, fp) && s.Cache != nil {
			if cached, ok := s.Cache.Peek(filePath); ok && fingerprint.FastPathEqual(cached.Fingerprint, fp) {
				return cached, cacheHit, nil
			}
		}
	}

	var analysis analyzer.ModuleAnalysis
	if emptyModuleExtensions[strings.ToLower(filepath.Ext(filePath))] {
		analysis = analyzer.ModuleAnalysis{FilePath: filePath}
	} else {
		analysis, err = s.Analyzer.Analyze(analyzer.Input{FilePath: filePath, Source: content})
		if err != nil {
			return Snapshot{}, cacheMiss, builderrors.DiscoveryIOError(filePath, err)
		}
	}

	snap := Snapshot{
		FilePath:        filePath,
		Fingerprint:     fp,
		Analysis:        analysis,
		ResolvedImports: make(map[string]string, len(analysis.Imports)),
	}
	if s.Cache != nil {
		s.Cache.Store(filePath, snap)
	}
	if s.Fingerprints != nil {
		s.Fingerprints.Set(filePath, fp)
	}
	outcome := cacheMiss
	if explicitlyInvalidated {
		outcome = cacheSkip
	}
	return snap, outcome, nil
}

// fastPathLikelyHit reports whether the in-memory fingerprint memo (when
// configured) agrees fp matches the last-seen fingerprint for filePath.
// With no memo configured, Cache.Peek is consulted directly as before.
func (s *Scanner) fastPathLikelyHit(filePath string, fp fingerprint.Fingerprint) bool {
	if s.Fingerprints == nil {
		return true
	}
	last, ok := s.Fingerprints.Get(filePath)
	return ok && fingerprint.FastPathEqual(last, fp)
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveRelativeImport probes candidateSuffixes in order against the
// scanner's filesystem and returns the first path that exists.
func (s *Scanner) resolveRelativeImport(fromDir, specifier string) (string, bool) {
	base := filepath.Join(fromDir, specifier)
	for _, suffix := range candidateSuffixes {
		candidate := base + suffix
		if s.FS.Exists(candidate) {
			info, err := s.FS.Stat(candidate)
			if err == nil && !info.IsDir() {
				abs, err := filepath.Abs(candidate)
				if err != nil {
					abs = candidate
				}
				return abs, true
			}
		}
	}
	return "", false
}

// Dependency-graph validation over an already-discovered snapshot set
// (spec.md §4.4) lives in internal/depgraph, which needs only the
// snapshot map itself, not a second filesystem round-trip.
