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

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/analyzer/legacy"
	"sodagql.dev/builder/internal/analyzer/treesitter"
	"sodagql.dev/builder/internal/artifact"
	"sodagql.dev/builder/internal/cache"
	bconfig "sodagql.dev/builder/internal/config"
	"sodagql.dev/builder/internal/platform"
	"sodagql.dev/builder/internal/session"
)

var buildCmd = &cobra.Command{
	Use:   "build [entrypoint globs...]",
	Short: "Run a one-shot build and print the artifact report",
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
		if noDefault, _ := cmd.Flags().GetBool("no-default-excludes"); noDefault {
			cfg.NoDefaultExcludes = noDefault
		}
		if async, _ := cmd.Flags().GetBool("async"); async {
			cfg.Async = async
		}

		sess, err := newSession(cfg, dir)
		if err != nil {
			return err
		}
		sess.UpdateEntrypoints(session.EntrypointDelta{ToAdd: cfg.Entrypoints})

		art, buildErr := sess.BuildInitial()
		if buildErr != nil {
			return fmt.Errorf("build failed: %w", buildErr)
		}

		renderReport(art.Report)
		pterm.Success.Printf("built %d elements\n", len(art.Elements))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("no-default-excludes", false, "do not exclude node_modules/**.d.ts by default")
	buildCmd.Flags().Bool("async", false, "evaluate elements concurrently via the async effect scheduler")
}

// newSession wires a BuilderSession from a BuilderConfig, choosing the
// analyzer and cache backends it names (spec.md §2.3).
func newSession(cfg *bconfig.BuilderConfig, dir string) (*session.BuilderSession, error) {
	var az analyzer.Analyzer
	switch cfg.Analyzer {
	case bconfig.BackendFallback:
		az = legacy.New()
	default:
		az = treesitter.New()
	}

	var discoveryCache cache.DiscoveryCache
	switch cfg.Cache {
	case bconfig.CacheDisk:
		path, err := cache.DefaultCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving cache dir: %w", err)
		}
		sqliteCache, err := cache.OpenSQLiteCache(path)
		if err != nil {
			return nil, fmt.Errorf("opening disk cache: %w", err)
		}
		discoveryCache = sqliteCache
	default:
		discoveryCache = cache.NewMemoryCache()
	}

	return session.New(session.Config{
		FS:             platform.NewOSFileSystem(),
		Analyzer:       az,
		Cache:          discoveryCache,
		CacheNamespace: cache.Namespace{AnalyzerId: az.Type(), EvaluatorId: "registry-v1"},
		RootDir:        dir,
		Excludes:       cfg.Exclude,
		Async:          cfg.Async,
	}), nil
}

// renderReport prints a pterm bar chart of cache hits/misses/skips,
// matching the teacher's RenderBarChart build-summary convention.
func renderReport(report artifact.Report) {
	bars := pterm.Bars{
		{Label: "hits", Value: report.Cache.Hits},
		{Label: "misses", Value: report.Cache.Misses},
		{Label: "skips", Value: report.Cache.Skips},
	}
	_ = pterm.DefaultBarChart.WithBars(bars).WithHorizontal().Render()
	for _, w := range report.Warnings {
		pterm.Warning.Println(w)
	}
}
