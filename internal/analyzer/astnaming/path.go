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

// Package astnaming implements the astPath naming rule from spec.md §3/§4.1
// as a shared, backend-agnostic utility. Both tree-sitter backends drive
// their own node walk but push/pop segments onto a common Builder so that,
// given the same scope nesting, they produce byte-identical astPath strings
// — the conformance contract the spec requires of "two interchangeable
// backends" is satisfied by construction rather than by coincidence.
package astnaming

import (
	"strconv"
	"strings"
)

// Builder accumulates dotted astPath segments as a backend walks into and
// out of nested scopes, and hands out the anonymous-scope counters the
// spec requires (arrow#N, _class_N, _function_N, numbered per file).
type Builder struct {
	segments   []string
	arrowCount int
	classCount int
	funcCount  int
}

// NewBuilder returns an empty Builder for a single file's walk.
func NewBuilder() *Builder {
	return &Builder{}
}

// Push adds a named segment (variable, method, class name, or object
// property key) and returns a function that pops it back off — intended
// to be used with defer at each backend's recursive-descent call site.
func (b *Builder) Push(name string) (pop func()) {
	b.segments = append(b.segments, name)
	depth := len(b.segments)
	return func() {
		b.segments = b.segments[:depth-1]
	}
}

// PushArrow synthesizes and pushes an "arrow#N" segment for an unnamed
// arrow function, numbered per file starting at 0.
func (b *Builder) PushArrow() (pop func()) {
	name := "arrow#" + strconv.Itoa(b.arrowCount)
	b.arrowCount++
	return b.Push(name)
}

// PushAnonymousClass synthesizes and pushes a "_class_N" segment.
func (b *Builder) PushAnonymousClass() (pop func()) {
	name := "_class_" + strconv.Itoa(b.classCount)
	b.classCount++
	return b.Push(name)
}

// PushAnonymousFunction synthesizes and pushes a "_function_N" segment.
func (b *Builder) PushAnonymousFunction() (pop func()) {
	name := "_function_" + strconv.Itoa(b.funcCount)
	b.funcCount++
	return b.Push(name)
}

// Path joins the currently pushed segments with ".".
func (b *Builder) Path() string {
	return strings.Join(b.segments, ".")
}

// PathWith joins the currently pushed segments plus a trailing leaf
// segment (e.g. the name of the definition itself) with ".".
func (b *Builder) PathWith(leaf string) string {
	if len(b.segments) == 0 {
		return leaf
	}
	return b.Path() + "." + leaf
}
