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

// Package element defines the tagged Element union evaluated after every
// module's generator has finished (spec.md §4.7): fragments, operations,
// models, and slices, each carrying a Define closure that runs against an
// effect.Context to produce a Prebuild payload the artifact aggregator
// later pairs with its analyzer-declared definition.
package element

import (
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/effect"
)

// Kind tags which of the four element variants an Element carries.
type Kind string

const (
	KindFragment  Kind = "fragment"
	KindOperation Kind = "operation"
	KindModel     Kind = "model"
	KindSlice     Kind = "slice"
)

// Prebuild is the opaque payload a Define closure produces; the registry
// and artifact aggregator pass it through without interpreting its shape.
type Prebuild any

// Element is one fragment/operation/model/slice declaration discovered in
// a module, plus the closure that computes its Prebuild payload.
type Element struct {
	CanonicalId canonical.Id
	FilePath    string
	Kind        Kind
	Define      func(ctx effect.Context) (Prebuild, error)
}
