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

// Package session implements the Builder Session (spec.md §4.8): the
// long-lived orchestrator that owns discovery snapshots and the module
// adjacency graph, and drives the full
// discovery→validate→adjacency→evaluate→aggregate pipeline either from
// scratch or incrementally against a reported BuilderChangeSet.
package session

// BuilderChangeSet is the absolute-path file mutation set a caller
// reports to Update (spec.md §3).
type BuilderChangeSet struct {
	Added   []string
	Updated []string
	Removed []string
}

func (c BuilderChangeSet) isEmpty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// EntrypointDelta is the atomic add/remove set UpdateEntrypoints applies
// to the session's entrypoint glob set (spec.md §4.8).
type EntrypointDelta struct {
	ToAdd    []string
	ToRemove []string
}

// Snapshot is the observability tuple GetSnapshot returns (spec.md §4.8).
type Snapshot struct {
	SnapshotCount      int
	ModuleAdjacencySize int
}
