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

// Package registry implements the Intermediate-Module Registry (spec.md
// §4.6): the lazy, generator-driven evaluation of a module graph into
// per-module Namespaces, plus the Element registry evaluated once every
// module has finished.
package registry

import (
	"sort"

	"sodagql.dev/builder/internal/builderrors"
	"sodagql.dev/builder/internal/canonical"
	"sodagql.dev/builder/internal/effect"
	"sodagql.dev/builder/internal/element"
)

// IntermediateModule is one file's lazily-evaluable unit: its
// GeneratorFactory is only invoked once the trampoline actually needs its
// Namespace (spec.md §4.1).
type IntermediateModule struct {
	FilePath         string
	HasGraphQLDefs   bool
	GeneratorFactory GeneratorFactory
}

// Registry holds every module discovered in a build and every Element any
// of them declared. Modules are evaluated lazily through Evaluator;
// elements are evaluated afterward, decoupled from module evaluation, via
// EvaluateElements/EvaluateElementsAsync.
type Registry struct {
	modules  map[string]IntermediateModule
	elements map[canonical.Id]*element.Element
}

func New() *Registry {
	return &Registry{
		modules:  make(map[string]IntermediateModule),
		elements: make(map[canonical.Id]*element.Element),
	}
}

func (r *Registry) RegisterModule(m IntermediateModule) {
	r.modules[m.FilePath] = m
}

// RegisterElement adds an element to the post-module-evaluation registry.
// It fails fast with ARTIFACT_ALREADY_REGISTERED if the canonical id
// collides — astPath collisions are a build-breaking condition, never a
// silent overwrite (spec.md §7).
func (r *Registry) RegisterElement(el *element.Element) *builderrors.BuildError {
	if _, exists := r.elements[el.CanonicalId]; exists {
		return builderrors.ArtifactAlreadyRegistered(string(el.CanonicalId))
	}
	r.elements[el.CanonicalId] = el
	return nil
}

func (r *Registry) Elements() map[canonical.Id]*element.Element {
	return r.elements
}

// frame is one live stack entry in the trampoline: the module currently
// being evaluated, its generator, and (once it has yielded) the dependency
// it's waiting on.
type frame struct {
	filePath    string
	gen         *generator
	resolvedDep Namespace
}

// Evaluator drives the module trampoline for one build. Completed module
// namespaces are cached on the Evaluator so that a module imported from
// multiple places is evaluated exactly once (spec.md §8's diamond
// scenario), and the cache persists across EvaluateModule calls for
// different entrypoints within the same build.
type Evaluator struct {
	registry   *Registry
	cache      map[string]Namespace
	inProgress map[string]bool
}

func (r *Registry) NewEvaluator() *Evaluator {
	return &Evaluator{
		registry:   r,
		cache:      make(map[string]Namespace),
		inProgress: make(map[string]bool),
	}
}

// EvaluateModule runs the flat iterative trampoline for one entry file and
// everything it transitively imports. It never recurses: the call stack
// of imports is represented as an explicit slice of frames, so an
// N-module linear import chain cannot overflow the Go stack (spec.md §8).
func (e *Evaluator) EvaluateModule(entryFilePath string) (Namespace, *builderrors.BuildError) {
	if ns, ok := e.cache[entryFilePath]; ok {
		return ns, nil
	}

	var stack []*frame
	push := func(filePath string) *builderrors.BuildError {
		m, ok := e.registry.modules[filePath]
		if !ok {
			return builderrors.ModuleNotFound(filePath)
		}
		stack = append(stack, &frame{filePath: filePath, gen: newGenerator(m.GeneratorFactory)})
		e.inProgress[filePath] = true
		return nil
	}

	if err := push(entryFilePath); err != nil {
		return nil, err
	}

	// abandon stops every still-live generator goroutine left on the stack
	// (the one actively stepped included, if it didn't already finish) so
	// an error return never leaks a coroutine blocked forever on reqCh/
	// respCh. BuilderSession is long-lived and runPipeline runs repeatedly
	// across watch rebuilds, so an unreleased frame here compounds.
	abandon := func() {
		for _, f := range stack {
			f.gen.stop()
			delete(e.inProgress, f.filePath)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		var (
			req  EvaluationRequest
			ns   Namespace
			done bool
			err  *builderrors.BuildError
		)
		if !top.gen.started {
			req, ns, done, err = top.gen.start()
		} else {
			req, ns, done, err = top.gen.resume(top.resolvedDep)
		}
		if err != nil {
			// top's own goroutine already exited (it reported err via
			// doneCh); every frame below it on the stack is still
			// parked mid-yield and must be stopped explicitly.
			abandon()
			return nil, err
		}

		if done {
			e.cache[top.filePath] = ns
			delete(e.inProgress, top.filePath)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return ns, nil
			}
			stack[len(stack)-1].resolvedDep = ns
			continue
		}

		dep := req.FilePath

		if cached, ok := e.cache[dep]; ok {
			top.resolvedDep = cached
			continue
		}

		if e.inProgress[dep] {
			if e.cyclesRelax(top.filePath, dep) {
				top.resolvedDep = Namespace{}
				continue
			}
			abandon()
			return nil, builderrors.CircularDependency(e.chainFrom(stack, dep))
		}

		if pushErr := push(dep); pushErr != nil {
			abandon()
			return nil, pushErr
		}
	}

	// Unreachable: the loop only exits via a return above.
	return nil, builderrors.ModuleNotFound(entryFilePath)
}

// cyclesRelax implements spec.md §4.6's circular-dependency relaxation
// rule: a cycle is tolerated (resolved with an empty Namespace) unless
// both modules in the cycle declare GraphQL definitions, in which case it
// is a genuine, unbreakable circular dependency.
func (e *Evaluator) cyclesRelax(from, to string) bool {
	fromHasGql := e.registry.modules[from].HasGraphQLDefs
	toHasGql := e.registry.modules[to].HasGraphQLDefs
	return !(fromHasGql && toHasGql)
}

func (e *Evaluator) chainFrom(stack []*frame, closingOn string) []string {
	chain := make([]string, 0, len(stack)+1)
	start := 0
	for i, f := range stack {
		if f.filePath == closingOn {
			start = i
			break
		}
	}
	for _, f := range stack[start:] {
		chain = append(chain, f.filePath)
	}
	chain = append(chain, closingOn)
	return chain
}

// EvaluateModules runs EvaluateModule for each entry file in deterministic
// order, sharing this Evaluator's cache across all of them.
func (e *Evaluator) EvaluateModules(entryFilePaths []string) (map[string]Namespace, *builderrors.BuildError) {
	sorted := append([]string(nil), entryFilePaths...)
	sort.Strings(sorted)

	out := make(map[string]Namespace, len(sorted))
	for _, fp := range sorted {
		ns, err := e.EvaluateModule(fp)
		if err != nil {
			return nil, err
		}
		out[fp] = ns
	}
	return out, nil
}

// EvaluateElements runs every registered Element's Define closure
// synchronously and in deterministic (canonical id sorted) order, after
// all modules have finished evaluating. Element evaluation is
// deliberately decoupled from module evaluation (spec.md §4.7): it never
// triggers a module's generator to resume.
func (r *Registry) EvaluateElements(ctx effect.Context) (map[canonical.Id]element.Prebuild, *builderrors.BuildError) {
	ids := make([]string, 0, len(r.elements))
	byString := make(map[string]canonical.Id, len(r.elements))
	for id := range r.elements {
		ids = append(ids, string(id))
		byString[string(id)] = id
	}
	sort.Strings(ids)

	out := make(map[canonical.Id]element.Prebuild, len(ids))
	for _, idStr := range ids {
		id := byString[idStr]
		el := r.elements[id]
		pb, err := el.Define(ctx)
		if err != nil {
			return nil, builderrors.EvaluationFailed(idStr, el.FilePath, err.Error(), err)
		}
		out[id] = pb
	}
	return out, nil
}
