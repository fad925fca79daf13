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

func taskRecords() []Record {
	return []Record{
		{"id": 1.0, "title": "Assembly B"},
		{"id": 2.0, "title": "Assembly A"},
		{"id": 3.0, "title": "Sub 2", "parent_task": 2.0},
		{"id": 4.0, "title": "Sub 1", "parent_task": 2.0},
		{"id": 5.0, "title": "Leaf", "parent_task": "4"},
		{"id": 6.0, "title": "Orphan root", "parent_task": 0.0},
	}
}

func titles(rows []*Row) []string {
	res := make([]string, len(rows))
	for i, r := range rows {
		res[i] = r.Record["title"].(string)
	}
	return res
}

func levels(rows []*Row) []int {
	res := make([]int, len(rows))
	for i, r := range rows {
		res[i] = r.Level
	}
	return res
}

func TestBuildModel(t *testing.T) {
	data := taskRecords()
	m := BuildModel(data, "", "")

	require.Len(t, m.Rows, 6)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, rowIDs(m.Rows))
	assert.False(t, m.Rows[0].HasSubObject)
	assert.True(t, m.Rows[1].HasSubObject)
	assert.True(t, m.Rows[3].HasSubObject)
	assert.Len(t, m.ParentMap["2"], 2)
	assert.Same(t, m.Rows[4], m.ParentMap["4"][0])
	assert.Same(t, m.Rows[2], m.ObjectMap["3"])
	// Caller data untouched.
	assert.NotContains(t, data[1], "hasSubObject")

	empty := BuildModel(nil, "", "")
	assert.Empty(t, empty.Rows)
}

func TestBuildModel_CustomKeys(t *testing.T) {
	m := BuildModel([]Record{
		{"pk": "a"},
		{"pk": "b", "parent": "a"},
	}, "pk", "parent")
	assert.True(t, m.Rows[0].HasSubObject)
	assert.Equal(t, []int{0}, rowIDs(m.Roots(m.Rows)))
}

func TestFlatten(t *testing.T) {
	m := BuildModel(taskRecords(), "", "")
	sortByTitle := SortState{Column: &Column{Key: "title"}}
	roots := m.Roots(m.Rows)

	collapsed := m.Flatten(roots, ExpansionState{}, sortByTitle)
	assert.Equal(t, []string{"Assembly A", "Assembly B", "Orphan root"}, titles(collapsed))

	expanded := ExpansionState{"2": true}
	res := m.Flatten(roots, expanded, sortByTitle)
	assert.Equal(t, []string{"Assembly A", "Sub 1", "Sub 2", "Assembly B", "Orphan root"}, titles(res))
	assert.Equal(t, []int{0, 1, 1, 0, 0}, levels(res))

	expanded["4"] = true
	res = m.Flatten(roots, expanded, sortByTitle)
	assert.Equal(t, []string{"Assembly A", "Sub 1", "Leaf", "Sub 2", "Assembly B", "Orphan root"}, titles(res))
	assert.Equal(t, []int{0, 1, 2, 1, 0, 0}, levels(res))

	// Original rows keep level zero.
	assert.Zero(t, m.Rows[4].Level)
}

func TestFlatten_CollapseKeepsDescendantState(t *testing.T) {
	m := BuildModel(taskRecords(), "", "")
	sortByTitle := SortState{Column: &Column{Key: "title"}}
	roots := m.Roots(m.Rows)
	expanded := ExpansionState{"2": true, "4": true}

	before := titles(m.Flatten(roots, expanded, sortByTitle))

	expanded.Toggle("2")
	collapsed := titles(m.Flatten(roots, expanded, sortByTitle))
	assert.Equal(t, []string{"Assembly A", "Assembly B", "Orphan root"}, collapsed)
	assert.True(t, expanded["4"])

	expanded.Toggle("2")
	assert.Equal(t, before, titles(m.Flatten(roots, expanded, sortByTitle)))
}

func TestFlatten_DescendingChildren(t *testing.T) {
	m := BuildModel(taskRecords(), "", "")
	res := m.Flatten(m.Roots(m.Rows), ExpansionState{"2": true}, SortState{Column: &Column{Key: "title"}, Order: SortDesc})
	assert.Equal(t, []string{"Orphan root", "Assembly B", "Assembly A", "Sub 2", "Sub 1"}, titles(res))
}
