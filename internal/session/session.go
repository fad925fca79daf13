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

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/sources"
	"github.com/dokuly/datatable/internal/storages"
	"github.com/dokuly/datatable/internal/storages/builder"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/pkg/datatable"
)

var (
	ErrNoTables       = errors.New("no tables configured")
	ErrTableNotChosen = errors.New("several tables configured, choose one with --table")
	ErrUnknownTable   = errors.New("unknown table")
)

// Session is a configured table with its records loaded and the storage opened.
type Session struct {
	Def     *domains.TableDefinition
	Records []datatable.Record
	Storage storages.Storager
	Layouts *tabledef.LayoutStore
}

// Definition picks the table definition by name. An empty name is allowed when exactly one
// table is configured.
func Definition(cfg *domains.Config, name string) (*domains.TableDefinition, error) {
	if len(cfg.Tables) == 0 {
		return nil, ErrNoTables
	}
	if name == "" {
		if len(cfg.Tables) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrTableNotChosen, strings.Join(TableNames(cfg), ", "))
		}
		return cfg.Tables[0], nil
	}
	def := cfg.Table(name)
	if def == nil {
		return nil, fmt.Errorf("%w \"%s\"", ErrUnknownTable, name)
	}
	return def, nil
}

func TableNames(cfg *domains.Config) []string {
	res := make([]string, len(cfg.Tables))
	for i, t := range cfg.Tables {
		res[i] = t.Name
	}
	sort.Strings(res)
	return res
}

// Open loads the records of the table and opens the configured storage.
func Open(ctx context.Context, cfg *domains.Config, name string) (*Session, error) {
	def, err := Definition(cfg, name)
	if err != nil {
		return nil, err
	}
	st, err := builder.GetStorage(ctx, &cfg.Storage, &cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("cannot open storage: %w", err)
	}
	loader, err := sources.New(def.Source)
	if err != nil {
		return nil, fmt.Errorf("table \"%s\": %w", def.Name, err)
	}
	start := time.Now()
	records, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("table \"%s\": cannot load records: %w", def.Name, err)
	}
	log.Debug().
		Str("TableName", def.Name).
		Int("Records", len(records)).
		Dur("Elapsed", time.Since(start)).
		Msg("records loaded")
	return &Session{
		Def:     def,
		Records: records,
		Storage: st,
		Layouts: tabledef.NewLayoutStore(st),
	}, nil
}

// Table builds the table with the saved layout and the view applied.
func (s *Session) Table(ctx context.Context, view tabledef.View, opts tabledef.BuildOptions) (*datatable.Table, error) {
	return tabledef.Open(ctx, s.Def, s.Records, s.Layouts, view, opts)
}
