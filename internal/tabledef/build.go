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

package tabledef

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/pkg/datatable"
)

// BuildOptions tunes a table built from a definition.
type BuildOptions struct {
	// ItemsPerPage overrides the page size of the definition when positive.
	ItemsPerPage int
	OnSaveLayout datatable.LayoutSaver
	// Now anchors relative dates of the initial filters. Zero means time.Now.
	Now time.Time
}

// Column converts a column definition into a descriptor.
func Column(def *domains.ColumnDefinition) (*datatable.Column, error) {
	if def.Template != "" && def.Mask != "" {
		return nil, fmt.Errorf("column \"%s\": template and mask are mutually exclusive", def.Key)
	}
	col := &datatable.Column{
		Key:             def.Key,
		Header:          def.Header,
		HeaderTooltip:   def.HeaderTooltip,
		FilterType:      def.FilterType,
		FilterOptions:   def.FilterOptions,
		NotFilterable:   def.Filterable != nil && !*def.Filterable,
		ExcludeFromCSV:  def.IncludeInCSV != nil && !*def.IncludeInCSV,
		HiddenByDefault: def.DefaultShowColumn != nil && !*def.DefaultShowColumn,
		MaxWidth:        def.MaxWidth,
		Hierarchical:    def.Hierarchical,
	}
	var err error
	if def.Template != "" {
		if col.Formatter, err = TemplateFormatter(def.Key, def.Template); err != nil {
			return nil, fmt.Errorf("column \"%s\" template: %w", def.Key, err)
		}
	}
	if def.Mask != "" {
		if col.Formatter, err = MaskFormatter(def.Mask); err != nil {
			return nil, fmt.Errorf("column \"%s\": %w", def.Key, err)
		}
	}
	if def.CSVTemplate != "" {
		if col.CSVFormatter, err = TemplateFormatter(def.Key+".csv", def.CSVTemplate); err != nil {
			return nil, fmt.Errorf("column \"%s\" csv template: %w", def.Key, err)
		}
	}
	if def.SearchTemplate != "" {
		if col.SearchValue, err = TemplateValue(def.Key+".search", def.SearchTemplate); err != nil {
			return nil, fmt.Errorf("column \"%s\" search template: %w", def.Key, err)
		}
	}
	return col, nil
}

func Columns(defs []*domains.ColumnDefinition) ([]*datatable.Column, error) {
	res := make([]*datatable.Column, 0, len(defs))
	for _, def := range defs {
		col, err := Column(def)
		if err != nil {
			return nil, err
		}
		res = append(res, col)
	}
	return res, nil
}

// Build creates the table of a definition over the loaded records and applies the initial
// filters of the definition.
func Build(def *domains.TableDefinition, data []datatable.Record, opts BuildOptions) (*datatable.Table, error) {
	cols, err := Columns(def.Columns)
	if err != nil {
		return nil, err
	}
	perPage := def.PerPage()
	if opts.ItemsPerPage > 0 {
		perPage = opts.ItemsPerPage
	}
	var defaultSort *datatable.DefaultSort
	if def.DefaultSort != nil {
		defaultSort = &datatable.DefaultSort{
			ColumnNumber: def.DefaultSort.ColumnNumber,
			Order:        def.DefaultSort.Order,
		}
	}
	t, err := datatable.New(datatable.Options{
		Data:         data,
		Columns:      cols,
		TableName:    def.Name,
		ItemsPerPage: perPage,
		Features: datatable.Features{
			ColumnSelector: def.Features.ColumnSelector,
			CSVDownload:    def.Features.CSVDownload,
			Pagination:     def.Features.Pagination,
			Search:         def.Features.Search,
		},
		NavigateColumn: def.NavigateColumn,
		DefaultSort:    defaultSort,
		IDKey:          def.IDKey,
		ParentIDKey:    def.ParentIDKey,
		TreeData:       def.TreeData,
		Where:          def.Where,
		OnSaveLayout:   opts.OnSaveLayout,
	})
	if err != nil {
		return nil, fmt.Errorf("table \"%s\": %w", def.Name, err)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if err := ApplyFilters(t, def.Filters, now); err != nil {
		return nil, fmt.Errorf("table \"%s\": %w", def.Name, err)
	}
	log.Debug().
		Str("TableName", t.Name()).
		Int("Records", len(data)).
		Int("Columns", len(cols)).
		Msg("table built")
	return t, nil
}

// ApplyFilters parses and sets the textual filter values keyed by column key.
func ApplyFilters(t *datatable.Table, filters map[string]string, now time.Time) error {
	for key, raw := range filters {
		col, err := t.Column(key)
		if err != nil {
			return fmt.Errorf("filter \"%s\": %w", key, err)
		}
		fv, err := ParseFilterValue(col, raw, now)
		if err != nil {
			return fmt.Errorf("filter \"%s\": %w", key, err)
		}
		if err := t.SetFilter(key, fv); err != nil {
			return fmt.Errorf("filter \"%s\": %w", key, err)
		}
	}
	return nil
}
