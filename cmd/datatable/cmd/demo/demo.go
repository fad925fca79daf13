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

package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/sources"
	"github.com/dokuly/datatable/internal/utils/logger"
	"github.com/dokuly/datatable/pkg/datatable"
)

var (
	Cmd = &cobra.Command{
		Use:   "demo",
		Short: "generate a hierarchical demo parts list",
		Long: "Prints generated part records as a JSON array. With --print-config a config file " +
			"describing the demo table is printed instead",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := run(os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config      = domains.NewConfig()
	rows        int
	seed        uint64
	printConfig string
)

func init() {
	Cmd.Flags().IntVarP(&rows, "rows", "n", 100, "number of records")
	Cmd.Flags().Uint64VarP(&seed, "seed", "", 1, "random seed")
	Cmd.Flags().StringVarP(&printConfig, "print-config", "", "",
		"print a config for the records stored at this json path")
	Cmd.Flags().Lookup("print-config").NoOptDefVal = "parts.json"
}

func run(w io.Writer) error {
	if printConfig != "" {
		return writeConfig(w, printConfig)
	}
	records, err := (&sources.Demo{Rows: rows, Seed: seed}).Load(context.Background())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("cannot encode records: %w", err)
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}

// Definition describes the demo parts list stored at path.
func Definition(path string) *domains.TableDefinition {
	return &domains.TableDefinition{
		Name:         "parts",
		Source:       domains.SourceConfig{Type: sources.JSONSourceType, Path: path},
		ParentIDKey:  "parent_task",
		TreeData:     true,
		ItemsPerPage: 20,
		DefaultSort:  &domains.DefaultSortConfig{ColumnNumber: 0, Order: datatable.SortAsc},
		Features: domains.FeaturesConfig{
			ColumnSelector: true,
			CSVDownload:    true,
			Pagination:     true,
			Search:         true,
		},
		Columns: []*domains.ColumnDefinition{
			{Key: "part_no", Header: "Part number", Hierarchical: true},
			{Key: "name", Header: "Name", MaxWidth: 30},
			{
				Key:           "state",
				Header:        "State",
				FilterType:    datatable.FilterTypeSelect,
				FilterOptions: []string{"Draft", "Review", "Released", "Obsolete"},
			},
			{Key: "qty", Header: "Quantity", FilterType: datatable.FilterTypeNumber},
			{Key: "unit_price", Header: "Unit price", FilterType: datatable.FilterTypeNumber},
			{Key: "created", Header: "Created", FilterType: datatable.FilterTypeDate},
			{Key: "owner", Header: "Owner", Mask: "name"},
			{
				Key:               "supplier",
				Header:            "Supplier",
				Template:          `{{ .Value "supplier.name" }}`,
				CSVTemplate:       `{{ .Value "supplier.name" }} <{{ .Value "supplier.contact" }}>`,
				DefaultShowColumn: boolPtr(false),
			},
		},
	}
}

func writeConfig(w io.Writer, path string) error {
	cfg := struct {
		Tables []*domains.TableDefinition `yaml:"tables"`
	}{
		Tables: []*domains.TableDefinition{Definition(path)},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	return enc.Close()
}
