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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortState_Toggle(t *testing.T) {
	name := &Column{Key: "name"}
	qty := &Column{Key: "qty"}

	s := SortState{}.Toggle(name)
	assert.Equal(t, SortAsc, s.Order)
	s = s.Toggle(name)
	assert.Equal(t, SortDesc, s.Order)
	s = s.Toggle(name)
	assert.Equal(t, SortAsc, s.Order)
	s = s.Toggle(name).Toggle(qty)
	assert.Equal(t, "qty", s.Column.Key)
	assert.Equal(t, SortAsc, s.Order)
}

func TestSortRows(t *testing.T) {
	m := BuildModel([]Record{
		{"name": "Item 10"},
		{"name": "Item 9"},
		{"name": "item 2"},
		{"name": "Item 9"},
	}, "", "")
	col := &Column{Key: "name"}

	asc := SortRows(m.Rows, SortState{Column: col, Order: SortAsc})
	desc := SortRows(m.Rows, SortState{Column: col, Order: SortDesc})
	names := func(rows []*Row) []any {
		res := make([]any, len(rows))
		for i, r := range rows {
			res[i] = r.Record["name"]
		}
		return res
	}
	ascNames := names(asc)
	assert.Less(t, indexOf(ascNames, "item 2"), indexOf(ascNames, "Item 9"))
	assert.Less(t, indexOf(ascNames, "Item 9"), indexOf(ascNames, "Item 10"))
	descNames := names(desc)
	assert.Less(t, indexOf(descNames, "Item 10"), indexOf(descNames, "Item 9"))

	// Input untouched, ids stable.
	assert.Equal(t, []int{0, 1, 2, 3}, rowIDs(m.Rows))
	for _, r := range asc {
		assert.Same(t, m.Rows[r.ID], r)
	}
}

func TestSortRows_MissingValues(t *testing.T) {
	m := BuildModel([]Record{{"name": "b"}, {}, {"name": nil}, {"name": "a"}}, "", "")
	res := SortRows(m.Rows, SortState{Column: &Column{Key: "name"}})
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, rowIDs(res))
}

func indexOf(values []any, v any) int {
	for i := range values {
		if values[i] == v {
			return i
		}
	}
	return -1
}

func TestSortRows_StableTies(t *testing.T) {
	m := BuildModel([]Record{
		{"state": "b", "n": 1.0},
		{"state": "a", "n": 2.0},
		{"state": "b", "n": 3.0},
		{"state": "a", "n": 4.0},
	}, "", "")
	col := &Column{Key: "state"}
	res := SortRows(m.Rows, SortState{Column: col})
	assert.Equal(t, []int{1, 3, 0, 2}, rowIDs(res))
	res = SortRows(m.Rows, SortState{Column: col, Order: SortDesc})
	assert.Equal(t, []int{0, 2, 1, 3}, rowIDs(res))
}

func TestSortRows_SortFunctionOverride(t *testing.T) {
	m := BuildModel([]Record{{"n": 1.0}, {"n": 3.0}, {"n": 2.0}}, "", "")
	var seenOrder SortOrder
	col := &Column{
		Key: "n",
		SortFunction: func(a, b *Row, order SortOrder) int {
			seenOrder = order
			// Always descending regardless of the requested order.
			return CompareValues(b.Record["n"], a.Record["n"])
		},
	}
	res := SortRows(m.Rows, SortState{Column: col, Order: SortAsc})
	require.Equal(t, []int{1, 2, 0}, rowIDs(res))
	assert.Equal(t, SortAsc, seenOrder)
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, o)
	o, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, o)
	_, err = ParseSortOrder("up")
	require.Error(t, err)
}

func TestSortOrder_Text(t *testing.T) {
	text, err := SortDesc.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "desc", string(text))

	var o SortOrder
	require.NoError(t, o.UnmarshalText([]byte("descending")))
	assert.Equal(t, SortDesc, o)
	require.Error(t, o.UnmarshalText([]byte("up")))

	var ft FilterType
	require.NoError(t, ft.UnmarshalText([]byte("multiselect")))
	assert.Equal(t, FilterTypeMultiSelect, ft)
	text, err = FilterTypeDate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "date", string(text))
}
