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

package config

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads sodagql.yaml from projectDir (if present) plus any
// SODAGQL_*-prefixed environment overrides into a fresh BuilderConfig,
// mirroring the teacher's initConfig (cmd/root.go): file values take
// precedence over Default(). No flags are bound to viper here; the CLI
// commands set flag values on the returned config.
func Load(v *viper.Viper, projectDir string) (*BuilderConfig, error) {
	cfg := Default()

	v.SetConfigName("sodagql")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectDir)
	v.SetEnvPrefix("SODAGQL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.ProjectDir = projectDir
	return cfg, nil
}

// New constructs a fresh *viper.Viper, isolated from the package-level
// global instance — each BuilderSession-owning command gets its own, so
// concurrent `sodagql watch` invocations in tests never share config state.
func New() *viper.Viper {
	return viper.New()
}

// WriteDefault marshals Default() as YAML and writes it to
// <projectDir>/sodagql.yaml, for `sodagql init`-style scaffolding. Viper
// reads config back in via its own decoder, but writing it out goes
// through yaml.v3 directly so the file keeps comment-free, deterministic
// key ordering independent of viper's internal map representation.
func WriteDefault(projectDir string) error {
	out, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(projectDir+string(os.PathSeparator)+"sodagql.yaml", out, 0o644)
}
