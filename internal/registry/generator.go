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
	"fmt"

	"sodagql.dev/builder/internal/builderrors"
)

// Namespace is what a module's generator produces once it finishes: the
// bindings a dependent module receives for having imported this one.
type Namespace map[string]any

// EvaluationRequest is what a module generator yields to ask the
// trampoline to resolve one of its imports before it can continue.
type EvaluationRequest struct {
	FilePath string
}

// GeneratorFactory builds the body of one module's generator. yield
// suspends the generator until the trampoline supplies the requested
// module's Namespace; the return value is the module's own completed
// Namespace. Go has no native generator syntax, so this is realized with
// a dedicated goroutine per module acting as a coroutine: the body runs
// on its own goroutine and blocks on a channel handoff at every yield,
// letting the trampoline driving it stay a flat loop with an explicit
// frame stack instead of recursing into the body itself.
type GeneratorFactory func(yield func(EvaluationRequest) Namespace) Namespace

type genResult struct {
	namespace Namespace
	err       *builderrors.BuildError
}

// generator is the running instance of one GeneratorFactory: a single-shot
// coroutine driven by start/resume.
type generator struct {
	reqCh   chan EvaluationRequest
	respCh  chan Namespace
	doneCh  chan genResult
	stopCh  chan struct{}
	started bool
}

func newGenerator(factory GeneratorFactory) *generator {
	g := &generator{
		reqCh:  make(chan EvaluationRequest),
		respCh: make(chan Namespace),
		doneCh: make(chan genResult, 1),
		stopCh: make(chan struct{}),
	}
	go g.run(factory)
	return g
}

// generatorStopped is the sentinel panic value yield raises once stop has
// been called, unwinding the generator's goroutine through run's deferred
// recover without reporting it as an evaluation failure.
type generatorStopped struct{}

func (g *generator) run(factory GeneratorFactory) {
	defer func() {
		if r := recover(); r != nil {
			if _, stopped := r.(generatorStopped); stopped {
				return
			}
			g.doneCh <- genResult{err: &builderrors.BuildError{
				Code:    builderrors.CodeEvaluationFailed,
				Message: fmt.Sprintf("generator panicked: %v", r),
			}}
		}
	}()
	yield := func(req EvaluationRequest) Namespace {
		select {
		case g.reqCh <- req:
		case <-g.stopCh:
			panic(generatorStopped{})
		}
		select {
		case ns := <-g.respCh:
			return ns
		case <-g.stopCh:
			panic(generatorStopped{})
		}
	}
	ns := factory(yield)
	g.doneCh <- genResult{namespace: ns}
}

// stop unblocks an abandoned generator's goroutine at its next yield (or
// the one it's already parked in) so it can exit instead of leaking.
// Safe to call at most once per generator; the trampoline only abandons a
// frame once, on the single error path that drops it from the stack.
func (g *generator) stop() {
	close(g.stopCh)
}

// step blocks until the generator either yields a request (done=false)
// or finishes (done=true, possibly with err).
func (g *generator) step() (req EvaluationRequest, ns Namespace, done bool, err *builderrors.BuildError) {
	select {
	case req = <-g.reqCh:
		return req, nil, false, nil
	case res := <-g.doneCh:
		return EvaluationRequest{}, res.namespace, true, res.err
	}
}

// start advances a freshly created generator to its first yield or completion.
func (g *generator) start() (EvaluationRequest, Namespace, bool, *builderrors.BuildError) {
	g.started = true
	return g.step()
}

// resume hands the resolved dependency back to a previously yielded
// generator and advances it to its next yield or completion.
func (g *generator) resume(resolved Namespace) (EvaluationRequest, Namespace, bool, *builderrors.BuildError) {
	g.respCh <- resolved
	return g.step()
}
