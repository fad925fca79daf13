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

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/dokuly/datatable/pkg/datatable"
)

const levelIndent = "  "

// Markers are the glyphs placed before hierarchical cells in tree mode.
type Markers struct {
	Collapsed string
	Expanded  string
	Leaf      string
}

var (
	UnicodeMarkers = Markers{Collapsed: "▸ ", Expanded: "▾ ", Leaf: "  "}
	ASCIIMarkers   = Markers{Collapsed: "+ ", Expanded: "- ", Leaf: "  "}
)

// DisplayCells resolves the displayed text of a row: the display formatter output clipped to
// the column max width and, for hierarchical columns in tree mode, indented by level.
func DisplayCells(t *datatable.Table, row *datatable.Row, cols []*datatable.Column, m Markers, tail string) []string {
	res := make([]string, len(cols))
	for i, c := range cols {
		s := c.Clip(c.Render(row, t.Search()).String(), tail)
		if t.TreeData() && c.Hierarchical {
			marker := m.Leaf
			if row.HasSubObject {
				marker = m.Collapsed
				if key, ok := t.Model().RowKey(row); ok && t.IsExpanded(key) {
					marker = m.Expanded
				}
			}
			s = strings.Repeat(levelIndent, row.Level) + marker + s
		}
		res[i] = s
	}
	return res
}

// Text renders the current page over the visible columns as a boxed table followed by a
// page summary line.
func Text(w io.Writer, t *datatable.Table) (datatable.Page, error) {
	cols := t.VisibleColumns()
	page := t.CurrentPage()

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title()
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	for _, r := range page.Rows {
		table.Append(DisplayCells(t, r, cols, UnicodeMarkers, "…"))
	}
	table.Render()

	if _, err := fmt.Fprintf(w, "page %d of %d, %d rows\n", page.Number, page.TotalPages, page.Total); err != nil {
		return page, fmt.Errorf("unable to write page summary: %w", err)
	}
	return page, nil
}
