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
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/storages/memory"
	"github.com/dokuly/datatable/internal/utils/testutils"
	"github.com/dokuly/datatable/pkg/datatable"
	"github.com/dokuly/datatable/pkg/datatable/export"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func boolPtr(b bool) *bool {
	return &b
}

func partsDefinition() *domains.TableDefinition {
	return &domains.TableDefinition{
		Name:         "parts",
		ItemsPerPage: 2,
		DefaultSort:  &domains.DefaultSortConfig{ColumnNumber: 0},
		Columns: []*domains.ColumnDefinition{
			{Key: "name", Header: "Name", Template: `{{ .Record.name | upper }}`, CSVTemplate: `{{ .Record.name }}`},
			{Key: "qty", Header: "Qty", FilterType: datatable.FilterTypeNumber},
			{Key: "state", Header: "State", FilterType: datatable.FilterTypeMultiSelect},
			{Key: "supplier", Header: "Supplier", Template: `{{ .Value "supplier.name" | default "-" }}`,
				SearchTemplate: `{{ .Value "supplier.name" }}`},
			{Key: "owner", Header: "Owner", Mask: MName, Filterable: boolPtr(false)},
			{Key: "internal", Header: "Internal", IncludeInCSV: boolPtr(false), DefaultShowColumn: boolPtr(false)},
		},
	}
}

func partsData() []datatable.Record {
	return []datatable.Record{
		{"id": 1.0, "name": "Bracket", "qty": 12.0, "state": "Released", "owner": "John Smith",
			"supplier": map[string]any{"name": "ACME"}, "internal": "x"},
		{"id": 2.0, "name": "Screw", "qty": 200.0, "state": "Draft", "owner": "Jane Doe"},
		{"id": 3.0, "name": "Axle", "qty": 4.0, "state": "Review", "owner": "Max Mustermann",
			"supplier": map[string]any{"name": "Globex"}},
	}
}

func names(rows []*datatable.Row) []any {
	res := make([]any, len(rows))
	for i, r := range rows {
		res[i] = r.Record["name"]
	}
	return res
}

func TestBuild(t *testing.T) {
	tbl, err := Build(partsDefinition(), partsData(), BuildOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, "parts", tbl.Name())
	assert.Equal(t, 2, tbl.ItemsPerPage())
	assert.Equal(t, []any{"Axle", "Bracket", "Screw"}, names(tbl.Processed()))
	assert.Equal(t, []string{"name", "qty", "state", "supplier", "owner"}, tbl.Layout().Keys())

	owner, err := tbl.Column("owner")
	require.NoError(t, err)
	assert.False(t, owner.IsFilterable())
	internal, err := tbl.Column("internal")
	require.NoError(t, err)
	assert.False(t, internal.IncludedInCSV())

	row := tbl.Processed()[1]
	name, err := tbl.Column("name")
	require.NoError(t, err)
	assert.Equal(t, "BRACKET", name.Render(row, "").String())
	assert.Equal(t, "Bracket", name.RenderCSV(row).String())

	supplier, err := tbl.Column("supplier")
	require.NoError(t, err)
	assert.Equal(t, "ACME", supplier.Render(row, "").String())
	assert.Equal(t, "-", supplier.Render(tbl.Processed()[2], "").String())
	assert.NotEqual(t, "John Smith", owner.Render(row, "").String())

	tbl.SetSearch("globex")
	assert.Equal(t, []any{"Axle"}, names(tbl.Processed()))
}

func TestBuild_InitialFilters(t *testing.T) {
	def := partsDefinition()
	def.Filters = map[string]string{"qty": "10..", "state": "Released, Draft"}
	tbl, err := Build(def, partsData(), BuildOptions{ItemsPerPage: 10, Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 10, tbl.ItemsPerPage())
	assert.Equal(t, []any{"Bracket", "Screw"}, names(tbl.Processed()))

	def.Filters = map[string]string{"missing": "x"}
	_, err = Build(def, partsData(), BuildOptions{})
	require.ErrorIs(t, err, datatable.ErrUnknownColumn)

	def.Filters = map[string]string{"qty": "ten"}
	_, err = Build(def, partsData(), BuildOptions{})
	require.Error(t, err)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		col  *domains.ColumnDefinition
	}{
		{name: "bad template", col: &domains.ColumnDefinition{Key: "a", Template: "{{ .Record.a "}},
		{name: "bad csv template", col: &domains.ColumnDefinition{Key: "a", CSVTemplate: "{{ end }}"}},
		{name: "bad search template", col: &domains.ColumnDefinition{Key: "a", SearchTemplate: "{{"}},
		{name: "unknown mask", col: &domains.ColumnDefinition{Key: "a", Mask: "iban"}},
		{name: "template and mask", col: &domains.ColumnDefinition{Key: "a", Template: "x", Mask: MName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&domains.TableDefinition{Name: "t", Columns: []*domains.ColumnDefinition{tt.col}}, nil, BuildOptions{})
			require.Error(t, err)
		})
	}

	_, err := Build(&domains.TableDefinition{
		Name:    "dup",
		Columns: []*domains.ColumnDefinition{{Key: "a"}, {Key: "a"}},
	}, nil, BuildOptions{})
	require.Error(t, err)
}

func TestBuild_ExportUsesCSVTemplate(t *testing.T) {
	tbl, err := Build(partsDefinition(), partsData(), BuildOptions{})
	require.NoError(t, err)
	header, records := export.Records(tbl)
	assert.Equal(t, []string{"Name", "Qty", "State", "Supplier", "Owner"}, header)
	require.Len(t, records, 3)
	assert.Equal(t, "Axle", records[0][0])
	assert.Equal(t, "Globex", records[0][3])
}

func TestApplyView(t *testing.T) {
	tbl, err := Build(partsDefinition(), partsData(), BuildOptions{})
	require.NoError(t, err)

	err = ApplyView(tbl, View{
		SortKey: "qty",
		Order:   datatable.SortDesc,
		Filters: map[string]string{"qty": "..100"},
		Page:    2,
		Columns: []string{"qty", "name"},
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, []any{"Bracket", "Axle"}, names(tbl.Processed()))
	assert.Equal(t, 1, tbl.PageNumber())
	assert.Equal(t, []string{"qty", "name"}, tbl.Layout().Keys())

	require.Error(t, ApplyView(tbl, View{SortKey: "missing"}, testNow))
}

func TestApplyView_Expand(t *testing.T) {
	def := &domains.TableDefinition{
		Name:     "tasks",
		TreeData: true,
		Columns:  []*domains.ColumnDefinition{{Key: "title", Hierarchical: true}},
	}
	data := []datatable.Record{
		{"id": 1.0, "title": "Assembly"},
		{"id": 2.0, "title": "Screw", "parent_task": 1.0},
		{"id": 3.0, "title": "Washer", "parent_task": 2.0},
	}
	tbl, err := Build(def, data, BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, ApplyView(tbl, View{Expand: []string{"1"}}, testNow))
	assert.Len(t, tbl.Processed(), 2)

	tbl, err = Build(def, data, BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, ApplyView(tbl, View{Expand: []string{ExpandAll}}, testNow))
	assert.Len(t, tbl.Processed(), 3)
}

func TestLayoutStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New("")
	ls := NewLayoutStore(st)

	_, ok, err := ls.Load(ctx, "parts")
	require.NoError(t, err)
	assert.False(t, ok)

	tbl, err := Build(partsDefinition(), partsData(), BuildOptions{OnSaveLayout: ls.Saver(ctx)})
	require.NoError(t, err)
	require.NoError(t, tbl.Layout().Move(0, 1))
	require.NoError(t, tbl.SaveLayout())

	info, err := st.Stat(ctx, "layouts/parts.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", info.ContentType)

	l, ok, err := ls.Load(ctx, "parts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"qty", "name", "state", "supplier", "owner"}, l.Columns)

	require.NoError(t, st.Put(ctx, "layouts/archive/old.json", strings.NewReader("{}")))
	require.NoError(t, st.Put(ctx, "layouts/notes.txt", strings.NewReader("x")))
	tables, err := ls.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"parts"}, tables)

	deleted, err := ls.Delete(ctx, "parts")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = ls.Delete(ctx, "parts")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLayoutStore_Errors(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("bucket is read only")

	tests := []struct {
		name    string
		table   string
		setup   func(st *testutils.StorageMock)
		wantErr error
		errText string
	}{
		{name: "empty name", table: "", wantErr: ErrInvalidLayoutName},
		{name: "nested name", table: "../parts", wantErr: ErrInvalidLayoutName},
		{
			name:  "backend failure",
			table: "parts",
			setup: func(st *testutils.StorageMock) {
				st.On("Remove", mock.Anything, "parts.json").Return(backendErr)
			},
			wantErr: backendErr,
			errText: "cannot delete layout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &testutils.StorageMock{}
			st.On("Sub", "layouts").Return(st)
			if tt.setup != nil {
				tt.setup(st)
			}
			ls := NewLayoutStore(st)

			deleted, err := ls.Delete(ctx, tt.table)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.errText != "" {
				assert.ErrorContains(t, err, tt.errText)
			}
			assert.False(t, deleted)
			st.AssertExpectations(t)
		})
	}
}
