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
	"strings"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/discovery"
	"sodagql.dev/builder/internal/effect"
	"sodagql.dev/builder/internal/element"
	"sodagql.dev/builder/internal/registry"
)

// moduleFactory builds the GeneratorFactory for one discovered file: it
// yields an import request for every resolved relative import (in
// deterministic specifier order) and folds each dependency's namespace
// plus this file's own exports into its own Namespace (spec.md §3's
// IntermediateModule / nested-record namespace shape).
func moduleFactory(snap discovery.Snapshot) registry.GeneratorFactory {
	return func(yield func(registry.EvaluationRequest) registry.Namespace) registry.Namespace {
		specifiers := make([]string, 0, len(snap.ResolvedImports))
		for specifier := range snap.ResolvedImports {
			specifiers = append(specifiers, specifier)
		}
		sort.Strings(specifiers)

		ns := registry.Namespace{}
		for _, specifier := range specifiers {
			resolved := snap.ResolvedImports[specifier]
			if resolved == "" {
				continue
			}
			ns[specifier] = yield(registry.EvaluationRequest{FilePath: resolved})
		}
		for _, exp := range snap.Analysis.Exports {
			ns[exp.Exported] = exp.Local
		}
		// Every declared definition gets a namespace entry regardless of
		// export status, so the Artifact Aggregator's namespace walk
		// (spec.md line 136) can confirm the registry actually evaluated
		// it rather than trusting construction-time correspondence with
		// the prebuilds map.
		for _, def := range snap.Analysis.Definitions {
			ns[def.AstPath] = true
		}
		return ns
	}
}

// kindFromExpression classifies a ModuleDefinition's Element variant by
// inspecting the helper call's member name in its raw expression text
// (`gql.fragment(...)`, `gql.operation(...)`, `gql.model(...)`,
// `gql.slice(...)`): the analyzer (C2) deliberately does not classify
// definitions itself, since that would require it to know the toolkit's
// vocabulary rather than just "is this a call to the configured helper."
func kindFromExpression(expr string) element.Kind {
	switch {
	case strings.Contains(expr, ".fragment("):
		return element.KindFragment
	case strings.Contains(expr, ".operation("), strings.Contains(expr, ".query("), strings.Contains(expr, ".mutation("), strings.Contains(expr, ".subscription("):
		return element.KindOperation
	case strings.Contains(expr, ".model("):
		return element.KindModel
	case strings.Contains(expr, ".slice("):
		return element.KindSlice
	default:
		return element.KindFragment
	}
}

// buildElement constructs the Element for one ModuleDefinition. Define
// stats the defining file through the effect.Context (exercising the
// effect scheduler rather than closing over the already-parsed source),
// and produces a Prebuild carrying the definition's astPath, export
// binding and expression text, but not the file's bytes — a minimal,
// serializable payload downstream transformers can re-parse (spec.md §3's
// "serializable, downstream-consumable subset").
func buildElement(filePath string, def analyzer.ModuleDefinition) (*element.Element, error) {
	id, err := canonical.New(filePath, def.AstPath)
	if err != nil {
		return nil, err
	}
	kind := kindFromExpression(def.Expression)
	return &element.Element{
		CanonicalId: id,
		FilePath:    filePath,
		Kind:        kind,
		Define: func(ctx effect.Context) (element.Prebuild, error) {
			if _, err := ctx.Stat(filePath); err != nil {
				return nil, err
			}
			return Prebuild{
				AstPath:       def.AstPath,
				IsExported:    def.IsExported,
				ExportBinding: def.ExportBinding,
				Expression:    def.Expression,
			}, nil
		},
	}, nil
}

// Prebuild is the default Prebuild payload shape produced for every
// element this session evaluates (spec.md §3 leaves the exact prebuild
// contents to the implementation — "e.g., operation name, parsed
// document, variable names, projection path graph").
type Prebuild struct {
	AstPath       string
	IsExported    bool
	ExportBinding string
	Expression    string
}
