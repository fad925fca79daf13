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
)

func TestPaginate(t *testing.T) {
	m := BuildModel(make([]Record, 7), "", "")

	tests := []struct {
		name    string
		page    int
		size    int
		ids     []int
		number  int
		pages   int
		hasPrev bool
		hasNext bool
	}{
		{name: "first", page: 1, size: 3, ids: []int{0, 1, 2}, number: 1, pages: 3, hasNext: true},
		{name: "middle", page: 2, size: 3, ids: []int{3, 4, 5}, number: 2, pages: 3, hasPrev: true, hasNext: true},
		{name: "last partial", page: 3, size: 3, ids: []int{6}, number: 3, pages: 3, hasPrev: true},
		{name: "clamped high", page: 9, size: 3, ids: []int{6}, number: 3, pages: 3, hasPrev: true},
		{name: "clamped low", page: 0, size: 3, ids: []int{0, 1, 2}, number: 1, pages: 3, hasNext: true},
		{name: "unpaged", page: 1, size: 0, ids: []int{0, 1, 2, 3, 4, 5, 6}, number: 1, pages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(m.Rows, tt.page, tt.size)
			assert.Equal(t, tt.ids, rowIDs(p.Rows))
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, tt.pages, p.TotalPages)
			assert.Equal(t, tt.hasPrev, p.HasPrev())
			assert.Equal(t, tt.hasNext, p.HasNext())
			assert.Equal(t, 7, p.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 3, 10)
	assert.Empty(t, p.Rows)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
}
