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

package render

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/session"
	"github.com/dokuly/datatable/internal/utils/logger"
	"github.com/dokuly/datatable/pkg/datatable"
	"github.com/dokuly/datatable/pkg/datatable/export"
)

var (
	Cmd = &cobra.Command{
		Use:   "render",
		Short: "print one page of a table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := render(ctx, os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config    = domains.NewConfig()
	viewFlags *session.ViewFlags
)

func init() {
	viewFlags = session.AddViewFlags(Cmd)
}

func render(ctx context.Context, w io.Writer) error {
	view, err := viewFlags.View()
	if err != nil {
		return err
	}
	s, err := session.Open(ctx, Config, viewFlags.Table)
	if err != nil {
		return err
	}
	t, err := s.Table(ctx, view, viewFlags.BuildOptions())
	if err != nil {
		return err
	}
	return Page(w, t)
}

// Page prints the current page of the table followed by the active view state.
func Page(w io.Writer, t *datatable.Table) error {
	page, err := export.Text(w, t)
	if err != nil {
		return err
	}
	ev := log.Debug().
		Str("TableName", t.Name()).
		Int("Page", page.Number).
		Int("TotalPages", page.TotalPages).
		Int("Rows", page.Total)
	if s := t.Sort(); s.Column != nil {
		ev = ev.Str("Sort", s.Column.Key).Str("Order", s.Order.String())
	}
	if search := t.Search(); search != "" {
		ev = ev.Str("Search", search)
	}
	ev.Int("Filters", len(t.Filters())).Msg("page rendered")
	return nil
}
