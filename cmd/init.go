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

	bconfig "sodagql.dev/builder/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default sodagql.yaml into the project directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir(cmd)
		if err != nil {
			return err
		}
		if err := bconfig.WriteDefault(dir); err != nil {
			return fmt.Errorf("writing sodagql.yaml: %w", err)
		}
		pterm.Success.Printf("wrote %s/sodagql.yaml\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
