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

// Package effect implements the Effect Scheduler (spec.md §4.9): the
// capability an Element's Define closure uses to read files, stat them,
// and fan out independent sub-effects, executed either by a synchronous
// (blocking, in-order) scheduler or an asynchronous one that runs
// independent effects concurrently via errgroup.
package effect

import (
	"errors"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"sodagql.dev/builder/internal/platform"
)

// ErrEffectPending is returned by the synchronous scheduler when a
// Define closure requests a fan-out of more than one independent
// effect — true parallelism is only available under the async
// scheduler, matching spec.md §4.6's "evaluate() ... fails if any
// element's define() yields a pending async operation."
var ErrEffectPending = errors.New("effect: pending async operation requested from synchronous scheduler")

// Context is what a Define closure sees. ReadFile/Stat abort the
// calling Define on error; the Optional variants report "not found" as
// (zero, false, nil) rather than an error, per spec.md §6.
type Context interface {
	ReadFile(path string) ([]byte, error)
	ReadFileOptional(path string) ([]byte, bool, error)
	Stat(path string) (fs.FileInfo, error)
	StatOptional(path string) (fs.FileInfo, bool, error)

	// Parallel runs independent tasks, each given the same Context. The
	// synchronous scheduler only tolerates a single task (run inline);
	// two or more is a pending async operation and fails with
	// ErrEffectPending. The asynchronous scheduler fans every task out
	// concurrently and waits for all of them.
	Parallel(tasks ...func(Context) error) error

	// IsAsync reports which scheduler is driving this Context.
	IsAsync() bool
}

type baseContext struct {
	fs platform.FileSystem
}

func (c baseContext) ReadFile(path string) ([]byte, error) {
	return c.fs.ReadFile(path)
}

func (c baseContext) ReadFileOptional(path string) ([]byte, bool, error) {
	if !c.fs.Exists(path) {
		return nil, false, nil
	}
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c baseContext) Stat(path string) (fs.FileInfo, error) {
	return c.fs.Stat(path)
}

func (c baseContext) StatOptional(path string) (fs.FileInfo, bool, error) {
	if !c.fs.Exists(path) {
		return nil, false, nil
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// SyncScheduler executes effects in a tight, blocking loop — the
// synchronous evaluate() mode (spec.md §4.6).
type SyncScheduler struct {
	baseContext
}

func NewSyncScheduler(fs platform.FileSystem) *SyncScheduler {
	return &SyncScheduler{baseContext{fs: fs}}
}

func (s *SyncScheduler) IsAsync() bool { return false }

func (s *SyncScheduler) Parallel(tasks ...func(Context) error) error {
	if len(tasks) > 1 {
		return ErrEffectPending
	}
	for _, t := range tasks {
		if err := t(s); err != nil {
			return err
		}
	}
	return nil
}

// AsyncScheduler fans independent effects out concurrently via errgroup —
// the evaluateAsync() mode (spec.md §4.6).
type AsyncScheduler struct {
	baseContext
}

func NewAsyncScheduler(fs platform.FileSystem) *AsyncScheduler {
	return &AsyncScheduler{baseContext{fs: fs}}
}

func (s *AsyncScheduler) IsAsync() bool { return true }

func (s *AsyncScheduler) Parallel(tasks ...func(Context) error) error {
	g := new(errgroup.Group)
	for _, t := range tasks {
		task := t
		g.Go(func() error { return task(s) })
	}
	return g.Wait()
}
