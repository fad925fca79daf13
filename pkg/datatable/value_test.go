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

package datatable

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name  string
		value any
		key   string
		ok    bool
	}{
		{name: "nil", value: nil},
		{name: "empty string", value: ""},
		{name: "zero", value: 0.0},
		{name: "false", value: false},
		{name: "float", value: 12.0, key: "12", ok: true},
		{name: "int", value: 12, key: "12", ok: true},
		{name: "string digits", value: "12", key: "12", ok: true},
		{name: "fraction", value: 1.5, key: "1.5", ok: true},
		{name: "string", value: "task-1", key: "task-1", ok: true},
		{name: "json number", value: json.Number("7"), key: "7", ok: true},
		{name: "nan", value: math.NaN()},
		{name: "inf", value: math.Inf(1)},
		{name: "negative inf float32", value: float32(math.Inf(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := NormalizeID(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "nan", value: math.NaN()},
		{name: "positive inf", value: math.Inf(1)},
		{name: "negative inf", value: math.Inf(-1)},
		{name: "float32 nan", value: float32(math.NaN())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := toDecimal(tt.value)
			assert.False(t, ok)

			m := BuildModel([]Record{{"id": tt.value, "qty": tt.value}, {"id": 2.0, "parent_task": tt.value, "qty": 3.0}}, "", "")
			require.Len(t, m.Rows, 2)
			assert.Len(t, m.ObjectMap, 1)
			assert.Empty(t, m.ParentMap)
			assert.True(t, m.IsRoot(m.Rows[1]))

			qty := &Column{Key: "qty", FilterType: FilterTypeNumber}
			assert.False(t, MatchFilter(m.Rows[0], qty, NumberRange{Min: decPtr("1")}))
			assert.False(t, MatchFilter(m.Rows[0], qty, NumberRange{Max: decPtr("1")}))
			assert.True(t, MatchFilter(m.Rows[1], qty, NumberRange{Min: decPtr("1")}))

			assert.NotPanics(t, func() {
				CompareValues(tt.value, 3.0)
				SortRows(m.Rows, SortState{Column: qty, Order: SortDesc})
			})
			assert.ElementsMatch(t, []int{0, 1}, rowIDs(SortRows(m.Rows, SortState{Column: qty})))
		})
	}
}

func TestTable_NonFiniteSortAndFilter(t *testing.T) {
	tbl, err := New(Options{
		Data:    []Record{{"id": 1.0, "qty": math.NaN()}, {"id": 2.0, "qty": 3.0}, {"id": 3.0, "qty": math.Inf(1)}},
		Columns: []*Column{{Key: "qty", FilterType: FilterTypeNumber}},
	})
	require.NoError(t, err)
	require.NoError(t, tbl.SortBy("qty"))
	assert.Len(t, tbl.Processed(), 3)

	require.NoError(t, tbl.SetFilter("qty", NumberRange{Min: decPtr("1")}))
	assert.Equal(t, []int{1}, rowIDs(tbl.Processed()))
}

func TestValueCell(t *testing.T) {
	ts := time.Date(2024, 3, 1, 17, 45, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value any
		kind  CellKind
		text  string
	}{
		{name: "nil", value: nil, kind: CellEmpty, text: ""},
		{name: "string", value: "abc", kind: CellText, text: "abc"},
		{name: "float", value: 12.5, kind: CellNumber, text: "12.5"},
		{name: "int", value: 3, kind: CellNumber, text: "3"},
		{name: "bool", value: true, kind: CellText, text: "true"},
		{name: "decimal", value: decimal.RequireFromString("1.10"), kind: CellText, text: "1.1"},
		{name: "time", value: ts, kind: CellText, text: "2024-03-01T17:45:00Z"},
		{name: "array", value: []any{"a", 1.0}, kind: CellText, text: `["a",1]`},
		{name: "object", value: map[string]any{"k": "v"}, kind: CellText, text: `{"k":"v"}`},
		{name: "node", value: &Node{Text: "link"}, kind: CellNode, text: "link"},
		{name: "nil node", value: Cell{Kind: CellNode}, kind: CellNode, text: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ValueCell(tt.value)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.text, c.String())
		})
	}
}

func TestRow_Value(t *testing.T) {
	m := BuildModel(partRecords(), "", "")

	v, ok := m.Rows[2].Value("supplier.name")
	assert.True(t, ok)
	assert.Equal(t, "ACME", v)

	_, ok = m.Rows[0].Value("supplier.name")
	assert.False(t, ok)

	_, ok = m.Rows[0].Value("missing")
	assert.False(t, ok)

	v, ok = m.Rows[0].Value("tags.#")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestColumn_Render(t *testing.T) {
	m := BuildModel(partRecords(), "", "")
	col := &Column{
		Key: "name",
		Formatter: func(row *Row, col *Column, searchTerm string) Cell {
			v, _ := row.Value(col.Key)
			return TextCell("[" + v.(string) + ":" + searchTerm + "]")
		},
	}
	assert.Equal(t, "[Bravo:br]", col.Render(m.Rows[0], "br").String())
	assert.Equal(t, "[Bravo:]", col.RenderCSV(m.Rows[0]).String())

	col.CSVFormatter = func(row *Row, col *Column, searchTerm string) Cell {
		return TextCell("csv")
	}
	assert.Equal(t, "csv", col.RenderCSV(m.Rows[0]).String())
}
