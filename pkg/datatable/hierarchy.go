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

// ExpansionState maps a normalized row identity to its expanded flag.
type ExpansionState map[string]bool

// Toggle flips the flag of a single node. Descendant flags are kept.
func (e ExpansionState) Toggle(id string) {
	e[id] = !e[id]
}

func (e ExpansionState) Clone() ExpansionState {
	res := make(ExpansionState, len(e))
	for k, v := range e {
		res[k] = v
	}
	return res
}

// Roots returns the rows whose parent reference is falsy, preserving order.
func (m *Model) Roots(rows []*Row) []*Row {
	res := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if m.IsRoot(r) {
			res = append(res, r)
		}
	}
	return res
}

// Flatten produces the depth-first visible sequence. Roots and every children group are
// sorted independently. Children are spliced right after their parent only when the parent is
// expanded. Returned rows are copies carrying their Level.
func (m *Model) Flatten(roots []*Row, expanded ExpansionState, sort SortState) []*Row {
	res := make([]*Row, 0, len(roots))
	visited := make(map[*Row]struct{})
	var walk func(rows []*Row, level int)
	walk = func(rows []*Row, level int) {
		for _, r := range SortRows(rows, sort) {
			if _, ok := visited[r]; ok {
				continue
			}
			visited[r] = struct{}{}
			vr := *r
			vr.Level = level
			res = append(res, &vr)
			id, ok := m.RowKey(r)
			if !ok || !expanded[id] {
				continue
			}
			if children := m.ParentMap[id]; len(children) > 0 {
				walk(children, level+1)
			}
		}
	}
	walk(roots, 0)
	return res
}
