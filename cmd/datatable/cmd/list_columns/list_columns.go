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

package list_columns

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/session"
	"github.com/dokuly/datatable/internal/storages/builder"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/internal/utils/logger"
	"github.com/dokuly/datatable/pkg/datatable"
)

var (
	Cmd = &cobra.Command{
		Use:   "list-columns",
		Short: "list the columns of a table with their filter settings and layout position",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := listColumns(); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config    = domains.NewConfig()
	tableName string
)

func init() {
	Cmd.Flags().StringVarP(&tableName, "table", "t", "", "table name")
}

func listColumns() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	def, err := session.Definition(Config, tableName)
	if err != nil {
		return err
	}
	st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
	if err != nil {
		return err
	}
	t, err := tabledef.Open(ctx, def, nil, tabledef.NewLayoutStore(st), tabledef.View{}, tabledef.BuildOptions{})
	if err != nil {
		return err
	}
	renderColumns(os.Stdout, t)
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func renderColumns(w io.Writer, t *datatable.Table) {
	position := make(map[string]int)
	for i, key := range t.Layout().Keys() {
		position[key] = i + 1
	}

	var data [][]string
	for _, c := range t.Columns() {
		pos := "hidden"
		if p, ok := position[c.Key]; ok {
			pos = strconv.Itoa(p)
		}
		maxWidth := ""
		if c.MaxWidth > 0 {
			maxWidth = strconv.Itoa(c.MaxWidth)
		}
		data = append(data, []string{
			c.Key,
			c.Title(),
			c.FilterType.String(),
			yesNo(c.IsFilterable()),
			yesNo(c.IncludedInCSV()),
			pos,
			maxWidth,
			yesNo(c.Hierarchical),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"key", "header", "filter", "filterable", "csv", "position", "max width", "tree"})
	table.AppendBulk(data)
	table.Render()
}
