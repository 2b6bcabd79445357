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

// Package cmd is the sodagql CLI: build, watch, and graph subcommands over
// a BuilderSession.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sodagql.dev/builder/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "sodagql",
	Short: "Build orchestrator for typed GraphQL client modules",
	Long: `Scans TypeScript/JavaScript sources for fragment, operation, model, and
slice definitions, resolves their import graph, and produces a single
BuilderArtifact of compiled elements.`,
}

// Execute runs the root command; called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("project-dir", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress info/success output")
}

// projectDir resolves --project-dir (or the cwd) to an absolute path and
// wires --verbose/--quiet into the package logger, the way the teacher's
// initConfig does before any command runs.
func projectDir(cmd *cobra.Command) (string, error) {
	flag, _ := cmd.Flags().GetString("project-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	logging.SetDebugEnabled(verbose)
	logging.SetQuietEnabled(quiet)

	if flag == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return cwd, nil
	}
	return expandPath(flag)
}

// expandPath expands a leading ~ and resolves the result to an absolute
// path, matching the teacher's root.go helper of the same name.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			path = home
		} else if strings.HasPrefix(path, "~/") {
			path = filepath.Join(home, path[2:])
		}
	}
	return filepath.Abs(path)
}
