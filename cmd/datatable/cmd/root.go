// Copyright 2024 The Dokuly Datatable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dokuly/datatable/cmd/datatable/cmd/demo"
	"github.com/dokuly/datatable/cmd/datatable/cmd/export_table"
	"github.com/dokuly/datatable/cmd/datatable/cmd/layout"
	"github.com/dokuly/datatable/cmd/datatable/cmd/list_columns"
	"github.com/dokuly/datatable/cmd/datatable/cmd/render"
	"github.com/dokuly/datatable/cmd/datatable/cmd/serve"
	"github.com/dokuly/datatable/cmd/datatable/cmd/validate"
	"github.com/dokuly/datatable/internal/domains"
	configUtils "github.com/dokuly/datatable/internal/utils/config"
)

const (
	defaultConfigDir  = "datatable"
	defaultConfigFile = "config.yml"
)

var (
	Version    string
	Commit     string
	CommitDate string

	RootCmd = &cobra.Command{
		Use:   "datatable",
		Short: "datatable renders, filters and exports configured record tables",
		Long: "A declarative table engine for JSON, CSV and PostgreSQL records. Every table " +
			"is described in the config file: its columns, filter types, templates and tree " +
			"settings. The rows can be searched, filtered, sorted, expanded and paginated and " +
			"exported to CSV, Markdown and PDF. Exports and saved column layouts are kept in " +
			"a storage (directory and S3)",
	}
	cfgFile string
	Config  = domains.NewConfig()
)

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				Commit = setting.Value
			}
			if setting.Key == "vcs.time" {
				CommitDate = setting.Value
			}
		}
	}
	if Version != "" {
		RootCmd.Version = fmt.Sprintf("%s %s %s", Version, Commit, CommitDate)
	} else {
		RootCmd.Version = fmt.Sprintf("%s %s", Commit, CommitDate)
	}

	cobra.OnInitialize(initConfig)
	// Removing short help flag from default
	RootCmd.PersistentFlags().BoolP("help", "", false, "help for datatable")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file ")
	RootCmd.PersistentFlags().StringP("log-format", "", "text", "logging format [text|json]")
	RootCmd.PersistentFlags().StringP("log-level", "", zerolog.LevelInfoValue,
		fmt.Sprintf(
			"logging level %s|%s|%s",
			zerolog.LevelDebugValue,
			zerolog.LevelInfoValue,
			zerolog.LevelWarnValue,
		),
	)

	RootCmd.AddCommand(render.Cmd)
	RootCmd.AddCommand(export_table.Cmd)
	RootCmd.AddCommand(list_columns.Cmd)
	RootCmd.AddCommand(layout.Cmd)
	RootCmd.AddCommand(serve.Cmd)
	RootCmd.AddCommand(demo.Cmd)
	RootCmd.AddCommand(validate.Cmd)

	if err := viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	if err := viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	RootCmd.InitDefaultCompletionCmd()
	RootCmd.InitDefaultHelpCmd()
	RootCmd.InitDefaultVersionFlag()

	for _, c := range RootCmd.Commands() {
		if c.Name() == "completion" || c.Name() == "help" {
			c.DisableFlagParsing = true
			for _, subc := range c.Commands() {
				subc.DisableFlagParsing = true
			}
		}
	}
}

// defaultConfigPath returns <user config dir>/datatable/config.yml when that file exists.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, defaultConfigDir, defaultConfigFile)
	if _, err := os.Stat(p); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("ConfigPath", p).Msg("cannot access default config file")
		}
		return ""
	}
	return p
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = defaultConfigPath()
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal().Err(err).Msg("error reading from config file")
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	decoderCfg := func(cfg *mapstructure.DecoderConfig) {
		cfg.DecodeHook = configUtils.DecodeHooks()
	}

	if err := viper.Unmarshal(Config, decoderCfg); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	if cfgFile != "" {
		// Viper lowercases map keys, column keys of the filters must keep their case
		if err := configUtils.ParseTableFiltersManually(cfgFile, Config); err != nil {
			log.Fatal().Err(err).Msg("error parsing table filters")
		}
	}
}
