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

package registry

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/effect"
	"sodagql.dev/builder/internal/element"
)

// EvaluateElementsAsync is the evaluateAsync() counterpart to
// EvaluateElements: every element's Define closure runs concurrently
// against the same effect.Context (spec.md §4.6). A failure does not stop
// the other Define calls; once all have returned, the first failure is
// reported.
func (r *Registry) EvaluateElementsAsync(ctx effect.Context) (map[canonical.Id]element.Prebuild, *builderrors.BuildError) {
	var (
		mu  sync.Mutex
		out = make(map[canonical.Id]element.Prebuild, len(r.elements))
	)

	g := new(errgroup.Group)
	for id, el := range r.elements {
		id, el := id, el
		g.Go(func() error {
			pb, err := el.Define(ctx)
			if err != nil {
				return builderrors.EvaluationFailed(string(id), el.FilePath, err.Error(), err)
			}
			mu.Lock()
			out[id] = pb
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if buildErr, ok := err.(*builderrors.BuildError); ok {
			return nil, buildErr
		}
		return nil, builderrors.EvaluationFailed("", "", err.Error(), err)
	}
	return out, nil
}
