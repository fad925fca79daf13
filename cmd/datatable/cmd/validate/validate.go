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

package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/sources"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/internal/utils/logger"
	"github.com/dokuly/datatable/pkg/datatable"
)

var errValidationFailed = errors.New("validation failed")

var (
	Cmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the table definitions of the config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := run(ctx, os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config   = domains.NewConfig()
	loadData bool
)

func init() {
	Cmd.Flags().BoolVarP(&loadData, "load-data", "", false, "also load the records of every table")
}

// Finding is one validation result of a table.
type Finding struct {
	Table    string
	Severity string
	Column   string
	Msg      string
}

func run(ctx context.Context, w io.Writer) error {
	findings := Validate(ctx, Config.Tables, loadData)
	render(w, findings)
	for _, f := range findings {
		if f.Severity == datatable.ErrorValidationSeverity {
			return errValidationFailed
		}
	}
	log.Info().Int("Tables", len(Config.Tables)).Int("Findings", len(findings)).Msg("config is valid")
	return nil
}

// Validate checks every definition: column warnings, table options, initial filters and
// optionally the data source.
func Validate(ctx context.Context, defs []*domains.TableDefinition, withData bool) []Finding {
	var res []Finding
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if _, ok := seen[def.Name]; ok {
			res = append(res, Finding{Table: def.Name, Severity: datatable.ErrorValidationSeverity,
				Msg: "duplicate table name"})
			continue
		}
		seen[def.Name] = struct{}{}

		cols, err := tabledef.Columns(def.Columns)
		if err != nil {
			res = append(res, Finding{Table: def.Name, Severity: datatable.ErrorValidationSeverity, Msg: err.Error()})
			continue
		}
		warnings := datatable.ValidateColumns(cols)
		for _, w := range warnings {
			res = append(res, Finding{Table: def.Name, Severity: w.Severity, Column: w.ColumnKey, Msg: w.Msg})
		}
		if warnings.IsFatal() {
			continue
		}

		var data []datatable.Record
		if withData {
			data, err = load(ctx, def)
			if err != nil {
				res = append(res, Finding{Table: def.Name, Severity: datatable.ErrorValidationSeverity, Msg: err.Error()})
				continue
			}
		}
		if _, err := tabledef.Build(def, data, tabledef.BuildOptions{}); err != nil {
			res = append(res, Finding{Table: def.Name, Severity: datatable.ErrorValidationSeverity, Msg: err.Error()})
		}
	}
	return res
}

func load(ctx context.Context, def *domains.TableDefinition) ([]datatable.Record, error) {
	l, err := sources.New(def.Source)
	if err != nil {
		return nil, err
	}
	data, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load records: %w", err)
	}
	return data, nil
}

func render(w io.Writer, findings []Finding) {
	if len(findings) == 0 {
		return
	}
	data := make([][]string, 0, len(findings))
	for _, f := range findings {
		data = append(data, []string{f.Table, f.Severity, f.Column, f.Msg})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"table", "severity", "column", "message"})
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()
}
