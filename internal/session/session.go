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

package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"sodagql.dev/builder/internal/adjacency"
	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/artifact"
	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/cache"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/depgraph"
	"sodagql.dev/builder/internal/discovery"
	"sodagql.dev/builder/internal/effect"
	"sodagql.dev/builder/internal/element"
	"sodagql.dev/builder/internal/fingerprint"
	"sodagql.dev/builder/internal/platform"
	"sodagql.dev/builder/internal/registry"
)

// maxAffectedModulesBeforeFullRebuild is the escape hatch grounded on the
// teacher's ProcessChangedFilesWithSkip: once an incremental change
// touches more than this many files, the cost of computing a precise
// invalidated set stops paying for itself and the session simply
// invalidates everything it knows about, still through the identical
// discovery→validate→adjacency→evaluate→aggregate pipeline.
const maxAffectedModulesBeforeFullRebuild = 64

// BuilderSession is the long-lived orchestrator (spec.md §4.8): it owns
// discovery snapshots and the module adjacency graph so that successive
// builds can run incrementally against a reported BuilderChangeSet.
type BuilderSession struct {
	mu sync.Mutex

	fs       platform.FileSystem
	az       analyzer.Analyzer
	cacheNS  cache.Namespace
	cacheStore cache.DiscoveryCache
	rootDir  string
	excludes []string

	entrypoints map[string]struct{}

	snapshots       map[string]discovery.Snapshot
	moduleAdjacency *adjacency.Graph
	fingerprints    *fingerprint.Memo
	lastArtifact    *artifact.BuilderArtifact

	async bool
}

// Config wires a BuilderSession to its concrete dependencies.
type Config struct {
	FS             platform.FileSystem
	Analyzer       analyzer.Analyzer
	Cache          cache.DiscoveryCache
	CacheNamespace cache.Namespace
	RootDir        string
	Excludes       []string
	// Async selects evaluateAsync() for element evaluation; false uses the
	// synchronous scheduler (spec.md §4.6).
	Async bool
}

func New(cfg Config) *BuilderSession {
	return &BuilderSession{
		fs:          cfg.FS,
		az:          cfg.Analyzer,
		cacheNS:     cfg.CacheNamespace,
		cacheStore:  cfg.Cache,
		rootDir:     cfg.RootDir,
		excludes:    cfg.Excludes,
		entrypoints: make(map[string]struct{}),
		snapshots:   make(map[string]discovery.Snapshot),
		fingerprints: fingerprint.NewMemo(),
		async:       cfg.Async,
	}
}

// UpdateEntrypoints atomically adds/removes entrypoint globs (spec.md §4.8).
func (s *BuilderSession) UpdateEntrypoints(delta EntrypointDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range delta.ToAdd {
		s.entrypoints[g] = struct{}{}
	}
	for _, g := range delta.ToRemove {
		delete(s.entrypoints, g)
	}
}

func (s *BuilderSession) entrypointGlobs() []string {
	globs := make([]string, 0, len(s.entrypoints))
	for g := range s.entrypoints {
		globs = append(globs, g)
	}
	sort.Strings(globs)
	return globs
}

// BuildInitial runs the full pipeline; lastArtifact is nil on entry
// (spec.md §4.8).
func (s *BuilderSession) BuildInitial() (artifact.BuilderArtifact, *builderrors.BuildError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	pterm.Debug.Printf("[%s] build: starting initial build\n", runID)

	art, err := s.runPipeline(runID, nil, nil)
	if err != nil {
		pterm.Error.Printf("[%s] build: failed: %s\n", runID, err.Error())
		return artifact.BuilderArtifact{}, err
	}
	s.lastArtifact = &art
	pterm.Success.Printf("[%s] build: produced %d elements\n", runID, len(art.Elements))
	return art, nil
}

// Update applies an incremental ChangeSet (spec.md §4.8). An empty change
// set with a prior artifact returns that artifact unchanged.
func (s *BuilderSession) Update(changes BuilderChangeSet) (artifact.BuilderArtifact, *builderrors.BuildError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if changes.isEmpty() && s.lastArtifact != nil {
		return *s.lastArtifact, nil
	}

	runID := uuid.NewString()
	pterm.Debug.Printf("[%s] build: incremental update (added=%d updated=%d removed=%d)\n",
		runID, len(changes.Added), len(changes.Updated), len(changes.Removed))

	changedOrRemoved := append(append([]string(nil), changes.Added...), changes.Updated...)
	changedOrRemoved = append(changedOrRemoved, changes.Removed...)

	var affected []string
	if s.moduleAdjacency != nil {
		affected = s.moduleAdjacency.Affected(changedOrRemoved)
	} else {
		affected = changedOrRemoved
	}

	invalidated := unionStrings(affected, changes.Removed, changes.Added, changes.Updated)
	// explicit is the literal caller-declared change set — spec.md §4.3
	// step 3's "explicitly invalidated" files, which skip the cache fast
	// path and count as cacheSkip. It's narrower than invalidated: files
	// only reachable transitively via Affected() (e.g. an importer of a
	// changed file) have their cache entries dropped too, but since their
	// own source bytes haven't changed, the scanner couldn't distinguish
	// them from a normal fingerprint-driven cacheMiss once their cache
	// entry is gone — which is exactly the behavior spec.md's scenario 5
	// exercises via the unaffected-but-invalidated case.
	explicit := unionStrings(changes.Added, changes.Updated, changes.Removed)
	if len(invalidated) > maxAffectedModulesBeforeFullRebuild {
		pterm.Debug.Printf("[%s] build: %d files affected, exceeds threshold, invalidating entire known set\n",
			runID, len(invalidated))
		invalidated = s.allKnownFiles()
		explicit = invalidated
	}

	for _, removed := range changes.Removed {
		s.purge(removed)
	}
	for _, path := range invalidated {
		if s.cacheStore != nil {
			_ = s.cacheStore.Delete(s.cacheNS, path)
		}
		s.fingerprints.Invalidate(path)
	}

	art, err := s.runPipeline(runID, changes.Removed, explicit)
	if err != nil {
		pterm.Error.Printf("[%s] build: failed: %s\n", runID, err.Error())
		return artifact.BuilderArtifact{}, err
	}
	s.lastArtifact = &art
	pterm.Success.Printf("[%s] build: produced %d elements\n", runID, len(art.Elements))
	return art, nil
}

// GetSnapshot returns observability data about the session's current
// state (spec.md §4.8).
func (s *BuilderSession) GetSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := 0
	if s.moduleAdjacency != nil {
		size = len(s.moduleAdjacency.Files())
	}
	return Snapshot{SnapshotCount: len(s.snapshots), ModuleAdjacencySize: size}
}

// DumpAdjacency returns, for every file the session currently knows about,
// the sorted list of files that import it — the `graph` CLI subcommand's
// debug dump (spec.md §2.4).
func (s *BuilderSession) DumpAdjacency() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moduleAdjacency == nil {
		return nil
	}
	out := make(map[string][]string, len(s.moduleAdjacency.Files()))
	for _, f := range s.moduleAdjacency.Files() {
		out[f] = s.moduleAdjacency.ImportedBy(f)
	}
	return out
}

func (s *BuilderSession) allKnownFiles() []string {
	out := make([]string, 0, len(s.snapshots))
	for f := range s.snapshots {
		out = append(out, f)
	}
	return out
}

func (s *BuilderSession) purge(filePath string) {
	delete(s.snapshots, filePath)
	s.fingerprints.Invalidate(filePath)
	if s.cacheStore != nil {
		_ = s.cacheStore.Delete(s.cacheNS, filePath)
	}
}

// runPipeline is the single control-flow path both BuildInitial and
// Update funnel through (spec.md §2): discovery → validate → adjacency →
// intermediate modules → evaluate modules/elements → aggregate.
// explicitlyInvalidated names files the caller declared changed (nil for
// a from-scratch BuildInitial) — threaded into the scanner so it can
// distinguish a forced cacheSkip from a content-driven cacheMiss.
func (s *BuilderSession) runPipeline(runID string, removed []string, explicitlyInvalidated []string) (artifact.BuilderArtifact, *builderrors.BuildError) {
	var discoveryCache discovery.Cache
	if s.cacheStore != nil {
		discoveryCache = cache.Bound{Cache: s.cacheStore, NS: s.cacheNS}
	}
	scanner := discovery.New(s.fs, s.az, discoveryCache, s.rootDir)
	scanner.Excludes = s.excludes
	scanner.Fingerprints = s.fingerprints

	invalidatedSet := make(map[string]bool, len(explicitlyInvalidated))
	for _, p := range explicitlyInvalidated {
		invalidatedSet[p] = true
	}

	snapshots, stats, err := scanner.Scan(s.entrypointGlobs(), invalidatedSet)
	if err != nil {
		if be, ok := err.(*builderrors.BuildError); ok {
			return artifact.BuilderArtifact{}, be
		}
		return artifact.BuilderArtifact{}, builderrors.DiscoveryIOError("", err)
	}
	pterm.Debug.Printf("[%s] discovery: visited=%d hits=%d misses=%d skips=%d\n",
		runID, stats.Visited, stats.Hits, stats.Misses, stats.CacheSkips)

	for _, path := range removed {
		delete(snapshots, path)
	}

	if err := depgraph.Validate(snapshots); err != nil {
		if be, ok := err.(*builderrors.BuildError); ok {
			return artifact.BuilderArtifact{}, be
		}
		return artifact.BuilderArtifact{}, builderrors.DiscoveryIOError("", err)
	}

	graph := adjacency.Build(snapshots)

	reg := registry.New()
	analyses := make(map[string]analyzer.ModuleAnalysis, len(snapshots))
	elementKinds := make(map[canonical.Id]element.Kind)

	filePaths := make([]string, 0, len(snapshots))
	for fp := range snapshots {
		filePaths = append(filePaths, fp)
	}
	sort.Strings(filePaths)

	for _, fp := range filePaths {
		snap := snapshots[fp]
		analyses[fp] = snap.Analysis
		reg.RegisterModule(registry.IntermediateModule{
			FilePath:         fp,
			HasGraphQLDefs:   snap.Analysis.HasGraphQLDefinitions(),
			GeneratorFactory: moduleFactory(snap),
		})
		for _, def := range snap.Analysis.Definitions {
			el, elErr := buildElement(fp, def)
			if elErr != nil {
				return artifact.BuilderArtifact{}, builderrors.EvaluationFailed("", fp, elErr.Error(), elErr)
			}
			elementKinds[el.CanonicalId] = el.Kind
			if regErr := reg.RegisterElement(el); regErr != nil {
				return artifact.BuilderArtifact{}, regErr
			}
		}
	}

	ev := reg.NewEvaluator()
	moduleNamespaces, evalModErr := ev.EvaluateModules(filePaths)
	if evalModErr != nil {
		return artifact.BuilderArtifact{}, evalModErr
	}

	var (
		prebuilds map[canonical.Id]element.Prebuild
		evalErr   *builderrors.BuildError
	)
	if s.async {
		prebuilds, evalErr = reg.EvaluateElementsAsync(effect.NewAsyncScheduler(s.fs))
	} else {
		prebuilds, evalErr = reg.EvaluateElements(effect.NewSyncScheduler(s.fs))
	}
	if evalErr != nil {
		return artifact.BuilderArtifact{}, evalErr
	}

	art, aggErr := artifact.Aggregate(analyses, moduleNamespaces, prebuilds, elementKinds)
	if aggErr != nil {
		return artifact.BuilderArtifact{}, aggErr
	}
	art.Report.Cache = artifact.CacheReport{Hits: stats.Hits, Misses: stats.Misses, Skips: stats.CacheSkips}

	s.snapshots = snapshots
	s.moduleAdjacency = graph
	return art, nil
}

func unionStrings(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, v := range g {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
