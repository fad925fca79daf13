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

package layout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

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
		Use:   "layout",
		Short: "show, change or reset the saved column layout of a table",
	}
	showCmd = &cobra.Command{
		Use:   "show",
		Short: "print the visible columns of a table in display order",
		Args:  cobra.NoArgs,
		Run: runE(func(ctx context.Context, ls *tabledef.LayoutStore) error {
			t, err := open(ctx, ls)
			if err != nil {
				return err
			}
			return show(os.Stdout, t)
		}),
	}
	setCmd = &cobra.Command{
		Use:   "set",
		Short: "change and save the layout",
		Long: "Moves, shows and hides columns starting from the current layout and saves the " +
			"result. A shown column is appended at the end",
		Args: cobra.NoArgs,
		Run: runE(func(ctx context.Context, ls *tabledef.LayoutStore) error {
			t, err := open(ctx, ls)
			if err != nil {
				return err
			}
			if err := apply(t, changes); err != nil {
				return err
			}
			if err := t.SaveLayout(); err != nil {
				return err
			}
			return show(os.Stdout, t)
		}),
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "delete the saved layout",
		Args:  cobra.NoArgs,
		Run: runE(func(ctx context.Context, ls *tabledef.LayoutStore) error {
			def, err := session.Definition(Config, tableName)
			if err != nil {
				return err
			}
			deleted, err := ls.Delete(ctx, def.Name)
			if err != nil {
				return err
			}
			log.Info().Str("TableName", def.Name).Bool("Deleted", deleted).Msg("layout reset")
			return nil
		}),
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "list the tables with a saved layout",
		Args:  cobra.NoArgs,
		Run: runE(func(ctx context.Context, ls *tabledef.LayoutStore) error {
			names, err := ls.List(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		}),
	}

	Config    = domains.NewConfig()
	tableName string
	changes   = &Changes{}
)

// Changes are the layout edits of the set command, applied in field order.
type Changes struct {
	Order []string
	Show  []string
	Hide  []string
	// Moves are from:to pairs of visible positions, starting at 0.
	Moves []string
}

func init() {
	Cmd.PersistentFlags().StringVarP(&tableName, "table", "t", "", "table name")
	setCmd.Flags().StringSliceVarP(&changes.Order, "columns", "c", nil, "visible columns in display order")
	setCmd.Flags().StringSliceVarP(&changes.Show, "show", "", nil, "columns to show")
	setCmd.Flags().StringSliceVarP(&changes.Hide, "hide", "", nil, "columns to hide")
	setCmd.Flags().StringArrayVarP(&changes.Moves, "move", "m", nil, "move a column as from:to")

	Cmd.AddCommand(showCmd, setCmd, resetCmd, listCmd)
}

func runE(f func(ctx context.Context, ls *tabledef.LayoutStore) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
			log.Err(err).Msg("")
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		if err := f(ctx, tabledef.NewLayoutStore(st)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
}

func open(ctx context.Context, ls *tabledef.LayoutStore) (*datatable.Table, error) {
	def, err := session.Definition(Config, tableName)
	if err != nil {
		return nil, err
	}
	return tabledef.Open(ctx, def, nil, ls, tabledef.View{}, tabledef.BuildOptions{})
}

func apply(t *datatable.Table, c *Changes) error {
	l := t.Layout()
	if len(c.Order) > 0 {
		for _, key := range c.Order {
			if _, err := t.Column(key); err != nil {
				return err
			}
		}
		l.SetOrder(c.Order)
	}
	for _, key := range c.Show {
		if err := l.Show(key); err != nil {
			return err
		}
	}
	for _, key := range c.Hide {
		if err := l.Hide(key); err != nil {
			return err
		}
	}
	for _, m := range c.Moves {
		var from, to int
		if _, err := fmt.Sscanf(m, "%d:%d", &from, &to); err != nil {
			return fmt.Errorf("invalid move \"%s\": expected from:to", m)
		}
		if err := l.Move(from, to); err != nil {
			return fmt.Errorf("move \"%s\": %w", m, err)
		}
	}
	return nil
}

func show(w io.Writer, t *datatable.Table) error {
	_, err := fmt.Fprintln(w, strings.Join(t.Layout().Keys(), ","))
	return err
}
