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

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spaolacci/murmur3"

	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/internal/utils"
	"github.com/dokuly/datatable/pkg/datatable"
	"github.com/dokuly/datatable/pkg/datatable/export"
)

const filterParamPrefix = "filter."

var errReadOnly = errors.New("layouts are read only over http")

type columnResponse struct {
	Key        string `json:"key"`
	Header     string `json:"header"`
	Tooltip    string `json:"tooltip,omitempty"`
	FilterType string `json:"filter_type"`
	Filterable bool   `json:"filterable"`
	Visible    bool   `json:"visible"`
}

type tableResponse struct {
	Name    string           `json:"name"`
	Records int              `json:"records"`
	Columns []columnResponse `json:"columns"`
}

type rowResponse struct {
	ID          int               `json:"id"`
	Level       int               `json:"level"`
	HasChildren bool              `json:"has_children"`
	Expanded    bool              `json:"expanded"`
	Cells       map[string]string `json:"cells"`
}

type rowsResponse struct {
	Table      string        `json:"table"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Search     string        `json:"search,omitempty"`
	Columns    []string      `json:"columns"`
	Rows       []rowResponse `json:"rows"`
}

// writeJSON sends v with an ETag of the encoded body and answers 304 when the client
// already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode response: %w", err)
	}
	etag := fmt.Sprintf("\"%016x\"", murmur3.Sum64(body))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Debug().Err(err).Msg("cannot write response")
	}
	return nil
}

func columnsResponse(t *datatable.Table) []columnResponse {
	res := make([]columnResponse, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		res = append(res, columnResponse{
			Key:        c.Key,
			Header:     c.Title(),
			Tooltip:    c.HeaderTooltip,
			FilterType: c.FilterType.String(),
			Filterable: c.IsFilterable(),
			Visible:    t.Layout().IsVisible(c.Key),
		})
	}
	return res
}

// parseView reads the view state from the query: search, sort, order, page, per_page,
// filter.<key>, expand and columns.
func parseView(r *http.Request) (tabledef.View, int, error) {
	q := r.URL.Query()
	v := tabledef.View{
		Search:  q.Get("search"),
		SortKey: q.Get("sort"),
		Filters: make(map[string]string),
	}
	var err error
	if v.Order, err = datatable.ParseSortOrder(q.Get("order")); err != nil {
		return v, 0, badRequest(err)
	}
	if p := q.Get("page"); p != "" {
		if v.Page, err = strconv.Atoi(p); err != nil {
			return v, 0, badRequest(fmt.Errorf("invalid page \"%s\"", p))
		}
	}
	var perPage int
	if p := q.Get("per_page"); p != "" {
		if perPage, err = strconv.Atoi(p); err != nil || perPage < 0 {
			return v, 0, badRequest(fmt.Errorf("invalid per_page \"%s\"", p))
		}
	}
	for key, values := range q {
		if strings.HasPrefix(key, filterParamPrefix) && len(values) > 0 {
			v.Filters[strings.TrimPrefix(key, filterParamPrefix)] = values[len(values)-1]
		}
	}
	if e := q.Get("expand"); e != "" {
		v.Expand = strings.Split(e, ",")
	}
	if c := q.Get("columns"); c != "" {
		v.Columns = strings.Split(c, ",")
	}
	return v, perPage, nil
}

// table builds the table of the request with the saved layout and the query view applied.
func (s *Server) table(r *http.Request) (*datatable.Table, error) {
	name := mux.Vars(r)["name"]
	def, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w \"%s\"", ErrUnknownTable, name)
	}
	view, perPage, err := parseView(r)
	if err != nil {
		return nil, err
	}
	t, err := tabledef.Open(r.Context(), def, s.data[name], s.layouts, view, tabledef.BuildOptions{
		ItemsPerPage: perPage,
		Now:          s.now(),
		OnSaveLayout: readOnlyLayout,
	})
	var viewErr *tabledef.ViewError
	if errors.As(err, &viewErr) {
		return nil, badRequest(err)
	}
	return t, err
}

func readOnlyLayout(datatable.Layout) error {
	return errReadOnly
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) error {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]tableResponse, 0, len(names))
	for _, name := range names {
		t, err := tabledef.Build(s.tables[name], nil, tabledef.BuildOptions{})
		if err != nil {
			return err
		}
		res = append(res, tableResponse{
			Name:    name,
			Records: len(s.data[name]),
			Columns: columnsResponse(t),
		})
	}
	return writeJSON(w, r, res)
}

func (s *Server) rows(w http.ResponseWriter, r *http.Request) error {
	t, err := s.table(r)
	if err != nil {
		return err
	}
	page := t.CurrentPage()
	cols := t.VisibleColumns()
	res := rowsResponse{
		Table:      t.Name(),
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Search:     t.Search(),
		Columns:    make([]string, len(cols)),
		Rows:       make([]rowResponse, 0, len(page.Rows)),
	}
	for i, c := range cols {
		res.Columns[i] = c.Key
	}
	for _, row := range page.Rows {
		rr := rowResponse{
			ID:          row.ID,
			Level:       row.Level,
			HasChildren: row.HasSubObject,
			Cells:       make(map[string]string, len(cols)),
		}
		if key, ok := t.Model().RowKey(row); ok {
			rr.Expanded = t.IsExpanded(key)
		}
		for _, c := range cols {
			rr.Cells[c.Key] = c.Render(row, t.Search()).String()
		}
		res.Rows = append(res.Rows, rr)
	}
	return writeJSON(w, r, res)
}

func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request) error {
	t, err := s.table(r)
	if err != nil {
		return err
	}
	opts, err := t.FilterOptions(mux.Vars(r)["key"])
	if err != nil {
		return err
	}
	if opts == nil {
		opts = []string{}
	}
	return writeJSON(w, r, opts)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) error {
	t, err := s.table(r)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		return badRequest(err)
	}

	buf := &bytes.Buffer{}
	var rows int
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		rows, err = export.CSV(buf, t)
	case export.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		rows, err = export.Markdown(buf, t)
	default:
		return badRequest(fmt.Errorf("%w \"%s\"", export.ErrUnknownFormat, format))
	}
	if err != nil {
		return err
	}

	_, exportID := utils.WithExportID(r.Context())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.FileName(t.Name(), format)))
	w.Header().Set("X-Export-Id", exportID)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Str("ExportID", exportID).Msg("cannot write export response")
		return nil
	}
	log.Info().
		Str("TableName", t.Name()).
		Str("Format", string(format)).
		Int("Rows", rows).
		Str("ExportID", exportID).
		Msg("export completed")
	return nil
}
