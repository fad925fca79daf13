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
	"strings"
	"time"

	"github.com/dokuly/datatable/pkg/datatable"
)

// ExpandAll is the Expand value that opens every node.
const ExpandAll = "all"

// View is an externally supplied view state: CLI flags or HTTP query parameters.
type View struct {
	Search  string
	SortKey string
	Order   datatable.SortOrder
	Page    int
	Filters map[string]string
	// Expand lists record ids to expand in tree mode.
	Expand []string
	// Columns is the visible column order. Empty keeps the current layout.
	Columns []string
}

// ApplyView sets the view state on the table. The page is applied last since filter and
// search changes reset it.
func ApplyView(t *datatable.Table, v View, now time.Time) error {
	if len(v.Columns) > 0 {
		t.ApplyLayout(datatable.Layout{Table: t.Name(), Columns: v.Columns})
	}
	if err := ApplyFilters(t, v.Filters, now); err != nil {
		return err
	}
	t.SetSearch(v.Search)
	if v.SortKey != "" {
		if err := t.SetSort(v.SortKey, v.Order); err != nil {
			return fmt.Errorf("sort \"%s\": %w", v.SortKey, err)
		}
	}
	for _, id := range v.Expand {
		id = strings.TrimSpace(id)
		if strings.EqualFold(id, ExpandAll) {
			t.ExpandAll()
			continue
		}
		if id != "" {
			t.SetExpanded(id, true)
		}
	}
	if v.Page > 0 {
		t.SetPage(v.Page)
	}
	return nil
}
