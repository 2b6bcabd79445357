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

package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	bconfig "sodagql.dev/builder/internal/config"
	"sodagql.dev/builder/internal/platform"
	"sodagql.dev/builder/internal/session"
)

// debounceWindow batches rapid-fire filesystem events into one
// BuilderChangeSet, the same debounce shape as the teacher's
// session_watch.go.
const debounceWindow = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [entrypoint globs...]",
	Short: "Watch the source tree and rebuild incrementally on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir(cmd)
		if err != nil {
			return err
		}

		cfg, err := bconfig.Load(bconfig.New(), dir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if len(args) > 0 {
			cfg.Entrypoints = args
		}

		sess, err := newSession(cfg, dir)
		if err != nil {
			return err
		}
		sess.UpdateEntrypoints(session.EntrypointDelta{ToAdd: cfg.Entrypoints})

		art, buildErr := sess.BuildInitial()
		if buildErr != nil {
			return fmt.Errorf("initial build failed: %w", buildErr)
		}
		pterm.Success.Printf("initial build: %d elements\n", len(art.Elements))

		watcher, err := platform.NewFSNotifyFileWatcher()
		if err != nil {
			return fmt.Errorf("starting file watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		return runWatchLoop(sess, watcher)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatchLoop accumulates fsnotify events into a debounced
// BuilderChangeSet and feeds it to sess.Update, mirroring the teacher's
// session_watch.go event-coalescing loop.
func runWatchLoop(sess *session.BuilderSession, watcher platform.FileWatcher) error {
	pending := session.BuilderChangeSet{}
	var timer *time.Timer
	flush := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			switch {
			case ev.Op&platform.Remove != 0 || ev.Op&platform.Rename != 0:
				pending.Removed = append(pending.Removed, ev.Name)
			case ev.Op&platform.Create != 0:
				pending.Added = append(pending.Added, ev.Name)
			case ev.Op&platform.Write != 0:
				pending.Updated = append(pending.Updated, ev.Name)
			default:
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case flush <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			pterm.Error.Printf("watch error: %s\n", err)

		case <-flush:
			changes := pending
			pending = session.BuilderChangeSet{}
			art, buildErr := sess.Update(changes)
			if buildErr != nil {
				pterm.Error.Printf("rebuild failed: %s\n", buildErr.Error())
				continue
			}
			pterm.Success.Printf("rebuilt: %d elements\n", len(art.Elements))
		}
	}
}
