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

package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/server"
	"github.com/dokuly/datatable/internal/sources"
	"github.com/dokuly/datatable/internal/storages/builder"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "serve",
		Short: "serve the configured tables over http",
		Long: "Loads the records of every configured table and serves rows, filter options and " +
			"csv and markdown exports. The view state is passed as query parameters, saved " +
			"column layouts are read from the storage",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serve(ctx); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = domains.NewConfig()
)

func init() {
	Cmd.Flags().StringP("listen", "l", domains.DefaultServerListen, "listen address")
	if err := viper.BindPFlag("server.listen", Cmd.Flags().Lookup("listen")); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func serve(ctx context.Context) error {
	st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
	if err != nil {
		return err
	}
	data, err := sources.LoadAll(ctx, Config.Tables)
	if err != nil {
		return err
	}
	for _, def := range Config.Tables {
		if _, err := tabledef.Build(def, nil, tabledef.BuildOptions{}); err != nil {
			return err
		}
	}
	s := server.New(Config.Tables, data, tabledef.NewLayoutStore(st))
	return s.ListenAndServe(ctx, Config.Server.Listen)
}
