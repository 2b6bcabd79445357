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

// Package depgraph implements the Dependency Graph Validator (spec.md
// §4.4): a closed-world check over an already-discovered snapshot set,
// failing fast on the first relative import that does not resolve to a
// snapshot the scanner actually visited.
package depgraph

import (
	"sort"

	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/discovery"
)

// Validate walks every snapshot's imports in a deterministic (sorted by
// file path) order and fails on the first missing non-type-only relative
// import, matching spec.md §4.4's "first gap wins" requirement.
//
// discovery.Scanner.Scan already resolves imports as it walks and returns
// MISSING_IMPORT immediately on a gap; this validator exists for the case
// where a BuilderSession holds a snapshot set assembled incrementally
// (spec.md §4.9 update()) and needs to re-check closure without
// re-running discovery end to end.
func Validate(snapshots map[string]discovery.Snapshot) error {
	paths := make([]string, 0, len(snapshots))
	for p := range snapshots {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		snap := snapshots[filePath]
		for _, imp := range snap.Analysis.Imports {
			if !isRelativeSpecifier(imp.Source) {
				continue
			}
			resolved, ok := snap.ResolvedImports[imp.Source]
			if !ok || resolved == "" {
				if imp.IsTypeOnly {
					continue
				}
				return builderrors.MissingImport(filePath, imp.Source)
			}
			if _, present := snapshots[resolved]; !present {
				if imp.IsTypeOnly {
					continue
				}
				return builderrors.MissingImport(filePath, imp.Source)
			}
		}
	}
	return nil
}

func isRelativeSpecifier(specifier string) bool {
	return len(specifier) >= 2 && specifier[0] == '.' &&
		(specifier[1] == '/' || (len(specifier) >= 3 && specifier[1] == '.' && specifier[2] == '/'))
}
