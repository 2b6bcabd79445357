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
	"sort"

	"github.com/spf13/cobra"

	bconfig "sodagql.dev/builder/internal/config"
	"sodagql.dev/builder/internal/session"
)

var graphCmd = &cobra.Command{
	Use:   "graph [entrypoint globs...]",
	Short: "Dump the module adjacency graph for debugging incremental builds",
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

		if _, buildErr := sess.BuildInitial(); buildErr != nil {
			return fmt.Errorf("build failed: %w", buildErr)
		}

		adjacency := sess.DumpAdjacency()
		files := make([]string, 0, len(adjacency))
		for f := range adjacency {
			files = append(files, f)
		}
		sort.Strings(files)

		for _, f := range files {
			importers := adjacency[f]
			if len(importers) == 0 {
				fmt.Printf("%s\n", f)
				continue
			}
			fmt.Printf("%s  <-  %v\n", f, importers)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
