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

// Package artifact implements the Artifact Aggregator (spec.md §4.7): it
// pairs every analyzer-declared ModuleDefinition with the Element.Prebuild
// the registry produced for it and assembles the whole-build
// BuilderArtifact, indexed by CanonicalId (spec.md §3).
package artifact

import (
	"sort"

	A "github.com/IBM/fp-go/array"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/element"
	"sodagql.dev/builder/internal/registry"
)

// BuilderArtifactElement is one aggregated element: an analyzer-declared
// definition paired with the Prebuild payload its Element produced.
type BuilderArtifactElement struct {
	Id       canonical.Id
	Kind     element.Kind
	Prebuild element.Prebuild
}

// CacheReport summarizes discovery cache behavior for the build that
// produced this artifact.
type CacheReport struct {
	Hits   int
	Misses int
	Skips  int
}

// Report carries build observability data alongside the artifact, per
// spec.md §3's BuilderArtifact.report.
type Report struct {
	DurationMs int64
	Warnings   []string
	Cache      CacheReport
}

// BuilderArtifact is the whole-build aggregate: every evaluated element,
// indexed by CanonicalId, per spec.md §3. Per invariant 4, on a
// successful build its element set is exactly the set of definitions
// across all current snapshots.
type BuilderArtifact struct {
	Elements map[canonical.Id]BuilderArtifactElement
	Report   Report
}

// Aggregate walks the final namespace the registry evaluated for each
// intermediate module (spec.md line 136) and pairs every ModuleDefinition
// found across analyses with the Prebuild produced for its canonical id.
// A definition absent from its module's namespace, or present there but
// missing from prebuilds, is ARTIFACT_NOT_FOUND_IN_RUNTIME_MODULE: the
// analyzer saw a declaration the registry's generator/trampoline never
// actually evaluated, which can only happen from a bug upstream in element
// registration. Files are visited in sorted path order so a build's
// diagnostics (not its resulting map) are produced deterministically.
func Aggregate(
	analyses map[string]analyzer.ModuleAnalysis,
	namespaces map[string]registry.Namespace,
	prebuilds map[canonical.Id]element.Prebuild,
	elementKinds map[canonical.Id]element.Kind,
) (BuilderArtifact, *builderrors.BuildError) {
	filePaths := make([]string, 0, len(analyses))
	for filePath := range analyses {
		filePaths = append(filePaths, filePath)
	}
	sort.Strings(filePaths)

	elements := make(map[canonical.Id]BuilderArtifactElement)

	for _, filePath := range filePaths {
		analysis := analyses[filePath]
		ns := namespaces[filePath]

		paired := A.Chain(func(def analyzer.ModuleDefinition) []BuilderArtifactElement {
			return definitionToArtifactElements(filePath, def, ns, prebuilds, elementKinds)
		})(analysis.Definitions)

		if len(paired) != len(analysis.Definitions) {
			// At least one definition had no matching namespace entry or
			// prebuild; find and report the first one for a precise error.
			for _, def := range analysis.Definitions {
				id, idErr := canonical.New(filePath, def.AstPath)
				if idErr != nil {
					return BuilderArtifact{}, builderrors.EvaluationFailed("", filePath, idErr.Error(), idErr)
				}
				if _, ok := ns[def.AstPath]; !ok {
					return BuilderArtifact{}, builderrors.ArtifactNotFoundInRuntime(string(id))
				}
				if _, ok := prebuilds[id]; !ok {
					return BuilderArtifact{}, builderrors.ArtifactNotFoundInRuntime(string(id))
				}
			}
		}

		for _, el := range paired {
			elements[el.Id] = el
		}
	}

	return BuilderArtifact{Elements: elements}, nil
}

func definitionToArtifactElements(
	filePath string,
	def analyzer.ModuleDefinition,
	ns registry.Namespace,
	prebuilds map[canonical.Id]element.Prebuild,
	elementKinds map[canonical.Id]element.Kind,
) []BuilderArtifactElement {
	id, err := canonical.New(filePath, def.AstPath)
	if err != nil {
		return []BuilderArtifactElement{}
	}
	if _, ok := ns[def.AstPath]; !ok {
		return []BuilderArtifactElement{}
	}
	pb, ok := prebuilds[id]
	if !ok {
		return []BuilderArtifactElement{}
	}
	return []BuilderArtifactElement{{
		Id:       id,
		Kind:     elementKinds[id],
		Prebuild: pb,
	}}
}
