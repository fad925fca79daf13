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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/storages/memory"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/pkg/datatable"
)

func partsDefinition() *domains.TableDefinition {
	return &domains.TableDefinition{
		Name:        "parts",
		DefaultSort: &domains.DefaultSortConfig{ColumnNumber: 0},
		Columns: []*domains.ColumnDefinition{
			{Key: "name", Header: "Name"},
			{Key: "qty", Header: "Qty", FilterType: datatable.FilterTypeNumber},
			{Key: "state", Header: "State", FilterType: datatable.FilterTypeSelect},
		},
	}
}

func partsData() map[string][]datatable.Record {
	return map[string][]datatable.Record{
		"parts": {
			{"id": 1.0, "name": "Bravo", "qty": 5.0, "state": "Draft"},
			{"id": 2.0, "name": "alpha", "qty": 12.0, "state": "Released"},
			{"id": 3.0, "name": "Charlie", "qty": 8.0, "state": "Released"},
		},
	}
}

func testServer(t *testing.T) (*Server, *tabledef.LayoutStore) {
	t.Helper()
	layouts := tabledef.NewLayoutStore(memory.New(""))
	s := New([]*domains.TableDefinition{partsDefinition()}, partsData(), layouts)
	s.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return s, layouts
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_ListTables(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res []tableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "parts", res[0].Name)
	assert.Equal(t, 3, res[0].Records)
	require.Len(t, res[0].Columns, 3)
	assert.Equal(t, "qty", res[0].Columns[1].Key)
	assert.Equal(t, "number", res[0].Columns[1].FilterType)
	assert.True(t, res[0].Columns[1].Visible)
}

func TestServer_Rows(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables/parts/rows?sort=qty&order=desc&filter.qty=6..")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res rowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "parts", res.Table)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"name", "qty", "state"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[0].ID)
	assert.Equal(t, "12", res.Rows[0].Cells["qty"])
	assert.Equal(t, "Charlie", res.Rows[1].Cells["name"])
}

func TestServer_RowsPagingAndColumns(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables/parts/rows?per_page=2&page=2&columns=state,name&search=r")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res rowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"state", "name"}, res.Columns)
	assert.Equal(t, "r", res.Search)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Rows, 1)
	assert.NotContains(t, res.Rows[0].Cells, "qty")
}

func TestServer_SavedLayout(t *testing.T) {
	s, layouts := testServer(t)
	require.NoError(t, layouts.Save(context.Background(), datatable.Layout{
		Table:   "parts",
		Columns: []string{"qty", "name"},
	}))
	rec := get(t, s, "/tables/parts/rows")
	require.Equal(t, http.StatusOK, rec.Code)

	var res rowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"qty", "name"}, res.Columns)
}

func TestServer_FilterOptions(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables/parts/columns/state/options")
	require.Equal(t, http.StatusOK, rec.Code)
	var opts []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Draft", "Released"}, opts)

	rec = get(t, s, "/tables/parts/columns/missing/options")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Export(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables/parts/export.csv?filter.state=Released")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="parts.csv"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Export-Id"))
	assert.Equal(t,
		"\"Name\",\"Qty\",\"State\"\n\"alpha\",\"12\",\"Released\"\n\"Charlie\",\"8\",\"Released\"\n",
		rec.Body.String(),
	)

	rec = get(t, s, "/tables/parts/export.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| alpha")

	rec = get(t, s, "/tables/parts/export.pdf")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Errors(t *testing.T) {
	s, _ := testServer(t)
	tests := []struct {
		name   string
		target string
		code   int
	}{
		{name: "unknown table", target: "/tables/nope/rows", code: http.StatusNotFound},
		{name: "bad page", target: "/tables/parts/rows?page=abc", code: http.StatusBadRequest},
		{name: "bad per page", target: "/tables/parts/rows?per_page=-1", code: http.StatusBadRequest},
		{name: "bad order", target: "/tables/parts/rows?sort=qty&order=up", code: http.StatusBadRequest},
		{name: "bad filter", target: "/tables/parts/rows?filter.qty=abc", code: http.StatusBadRequest},
		{name: "unknown sort column", target: "/tables/parts/rows?sort=zzz", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_RequestID(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestWithErrorHandle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "export in progress", err: datatable.ErrExportInProgress, code: http.StatusConflict},
		{name: "unknown column", err: fmt.Errorf("x: %w", datatable.ErrUnknownColumn), code: http.StatusNotFound},
		{name: "http error", err: &HTTPError{Code: http.StatusTeapot, Err: errors.New("tea")}, code: http.StatusTeapot},
		{name: "other", err: errors.New("boom"), code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := WithErrorHandle(func(w http.ResponseWriter, r *http.Request) error {
				return tt.err
			})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestServer_ETag(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/tables/parts/rows?sort=qty")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/tables/parts/rows?sort=qty", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	s.Handler().ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())

	other := get(t, s, "/tables/parts/rows?sort=qty&order=desc")
	assert.NotEqual(t, etag, other.Header().Get("ETag"))
}
