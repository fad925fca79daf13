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
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// NavigateColumnKey is the key of the synthetic trailing column added by Options.NavigateColumn.
const NavigateColumnKey = "__navigate"

// FilterType defines how a per-column filter value is matched against a cell.
type FilterType uint8

const (
	// FilterTypeText is a case-insensitive substring match.
	FilterTypeText FilterType = iota
	// FilterTypeSelect is an exact match against a single value.
	FilterTypeSelect
	// FilterTypeMultiSelect matches when the cell is one of the selected values.
	FilterTypeMultiSelect
	// FilterTypeNumber is an inclusive numeric range.
	FilterTypeNumber
	// FilterTypeDate is an inclusive calendar date range.
	FilterTypeDate
)

func (t FilterType) String() string {
	switch t {
	case FilterTypeSelect:
		return "select"
	case FilterTypeMultiSelect:
		return "multiselect"
	case FilterTypeNumber:
		return "number"
	case FilterTypeDate:
		return "date"
	default:
		return "text"
	}
}

func (t FilterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FilterType) UnmarshalText(text []byte) error {
	v, err := ParseFilterType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseFilterType parses the configuration keyword. Empty string means text.
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FilterTypeText, nil
	case "select":
		return FilterTypeSelect, nil
	case "multiselect":
		return FilterTypeMultiSelect, nil
	case "number":
		return FilterTypeNumber, nil
	case "date":
		return FilterTypeDate, nil
	}
	return FilterTypeText, fmt.Errorf("unknown filter type \"%s\"", s)
}

// Formatter renders a cell. searchTerm is the current global search string and may be used
// for highlighting.
type Formatter func(row *Row, col *Column, searchTerm string) Cell

// SortFunc fully overrides the default comparator, including direction handling.
type SortFunc func(a, b *Row, order SortOrder) int

// ValueFunc resolves the value used for searching and filtering instead of the raw field.
type ValueFunc func(row *Row) any

// Column is a static descriptor of one displayable/exportable field. Boolean options are
// expressed negatively so that the zero value keeps the defaults: filterable, exported and
// shown.
type Column struct {
	Key        string
	Header     string
	HeaderFunc func() string

	Formatter    Formatter
	CSVFormatter Formatter
	SortFunction SortFunc
	SearchValue  ValueFunc

	FilterType    FilterType
	FilterOptions []string

	NotFilterable   bool
	ExcludeFromCSV  bool
	HiddenByDefault bool

	MaxWidth      int
	Hierarchical  bool
	HeaderTooltip string
}

// Title returns the header label.
func (c *Column) Title() string {
	if c.HeaderFunc != nil {
		return c.HeaderFunc()
	}
	return c.Header
}

func (c *Column) IsFilterable() bool {
	return !c.NotFilterable
}

func (c *Column) IncludedInCSV() bool {
	return !c.ExcludeFromCSV
}

func (c *Column) ShownByDefault() bool {
	return !c.HiddenByDefault
}

func (c *Column) synthetic() bool {
	return c.Key == NavigateColumnKey
}

// resolve returns the value used by the search and filter engines.
func (c *Column) resolve(row *Row) (any, bool) {
	if c.SearchValue != nil {
		v := c.SearchValue(row)
		return v, v != nil
	}
	return row.Value(c.Key)
}

// Render produces the display cell: the formatter if any, otherwise the raw value.
func (c *Column) Render(row *Row, searchTerm string) Cell {
	if c.Formatter != nil {
		return c.Formatter(row, c, searchTerm)
	}
	v, _ := row.Value(c.Key)
	return ValueCell(v)
}

// RenderCSV produces the text-export cell: csv formatter, then formatter, then raw value.
func (c *Column) RenderCSV(row *Row) Cell {
	if c.CSVFormatter != nil {
		return c.CSVFormatter(row, c, "")
	}
	return c.Render(row, "")
}

// Clip truncates s to MaxWidth display cells, ending with tail when cut. Zero MaxWidth
// keeps s unchanged.
func (c *Column) Clip(s, tail string) string {
	if c.MaxWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, c.MaxWidth, tail)
}

func findColumn(cols []*Column, key string) (int, *Column) {
	for i, c := range cols {
		if c.Key == key {
			return i, c
		}
	}
	return -1, nil
}
