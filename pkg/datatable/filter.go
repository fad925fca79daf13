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
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrFilterShape = errors.New("filter value does not match column filter type")

// FilterValue is a per-column filter. Its concrete type must match the column FilterType.
type FilterValue interface {
	FilterType() FilterType
	// IsEmpty reports whether the value is equivalent to no filter.
	IsEmpty() bool
}

type TextFilter string

func (f TextFilter) FilterType() FilterType { return FilterTypeText }
func (f TextFilter) IsEmpty() bool          { return f == "" }

type SelectFilter string

func (f SelectFilter) FilterType() FilterType { return FilterTypeSelect }
func (f SelectFilter) IsEmpty() bool          { return f == "" }

type MultiSelectFilter []string

func (f MultiSelectFilter) FilterType() FilterType { return FilterTypeMultiSelect }
func (f MultiSelectFilter) IsEmpty() bool          { return len(f) == 0 }

// NumberRange is inclusive on both ends. Nil bound means unbounded.
type NumberRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

func (f NumberRange) FilterType() FilterType { return FilterTypeNumber }
func (f NumberRange) IsEmpty() bool          { return f.Min == nil && f.Max == nil }

// DateRange is inclusive on both ends and compares calendar dates.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (f DateRange) FilterType() FilterType { return FilterTypeDate }
func (f DateRange) IsEmpty() bool          { return f.From == nil && f.To == nil }

// FilterState maps a column key to its filter value.
type FilterState map[string]FilterValue

// Active returns the non-empty filters.
func (fs FilterState) Active() FilterState {
	res := make(FilterState, len(fs))
	for k, v := range fs {
		if !isEmptyFilter(v) {
			res[k] = v
		}
	}
	return res
}

func (fs FilterState) Clone() FilterState {
	res := make(FilterState, len(fs))
	for k, v := range fs {
		res[k] = v
	}
	return res
}

func isEmptyFilter(v FilterValue) bool {
	return v == nil || v.IsEmpty()
}

// CheckFilterValue validates the value shape against the column.
func CheckFilterValue(col *Column, v FilterValue) error {
	if !col.IsFilterable() {
		return fmt.Errorf("column \"%s\" is not filterable", col.Key)
	}
	if v == nil {
		return nil
	}
	if v.FilterType() != col.FilterType {
		return fmt.Errorf(
			"%w: column \"%s\" expects %s got %s", ErrFilterShape, col.Key, col.FilterType, v.FilterType(),
		)
	}
	return nil
}

// RowPredicate is an additional conjunct of the filter engine.
type RowPredicate func(row *Row) bool

// SearchTerms splits the global search string on commas and whitespace.
func SearchTerms(search string) []string {
	terms := strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for i := range terms {
		terms[i] = strings.ToLower(terms[i])
	}
	return terms
}

// FilterRows keeps the rows that pass every active column filter, every search term and every
// extra predicate. The input slice is not modified.
func FilterRows(rows []*Row, cols []*Column, state FilterState, search string, extra ...RowPredicate) []*Row {
	active := state.Active()
	terms := SearchTerms(search)
	type boundFilter struct {
		col   *Column
		value FilterValue
	}
	filters := make([]boundFilter, 0, len(active))
	for _, c := range cols {
		if v, ok := active[c.Key]; ok && c.IsFilterable() {
			filters = append(filters, boundFilter{col: c, value: v})
		}
	}
	searchCols := make([]*Column, 0, len(cols))
	for _, c := range cols {
		if !c.synthetic() {
			searchCols = append(searchCols, c)
		}
	}

	res := make([]*Row, 0, len(rows))
rowLoop:
	for _, r := range rows {
		for _, f := range filters {
			if !MatchFilter(r, f.col, f.value) {
				continue rowLoop
			}
		}
		if !matchSearch(r, searchCols, terms) {
			continue
		}
		for _, p := range extra {
			if p != nil && !p(r) {
				continue rowLoop
			}
		}
		res = append(res, r)
	}
	return res
}

// MatchSearch reports whether every term is contained in at least one column value.
func MatchSearch(row *Row, cols []*Column, search string) bool {
	return matchSearch(row, cols, SearchTerms(search))
}

func matchSearch(row *Row, cols []*Column, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	values := make([]string, 0, len(cols))
	for _, c := range cols {
		v, ok := c.resolve(row)
		if !ok {
			continue
		}
		s, ok := stringify(v)
		if !ok {
			continue
		}
		values = append(values, strings.ToLower(s))
	}
	for _, term := range terms {
		if !slices.ContainsFunc(values, func(s string) bool { return strings.Contains(s, term) }) {
			return false
		}
	}
	return true
}

// MatchFilter evaluates a single column filter. A value of the wrong shape or an
// unresolvable cell never matches.
func MatchFilter(row *Row, col *Column, fv FilterValue) bool {
	if isEmptyFilter(fv) {
		return true
	}
	if fv.FilterType() != col.FilterType {
		return false
	}
	v, ok := col.resolve(row)
	if !ok {
		return false
	}
	switch f := fv.(type) {
	case TextFilter:
		s, ok := stringify(v)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(string(f)))
	case SelectFilter:
		s, ok := stringify(v)
		return ok && s == string(f)
	case MultiSelectFilter:
		for _, item := range flatten(v) {
			s, ok := stringify(item)
			if ok && slices.Contains(f, s) {
				return true
			}
		}
		return false
	case NumberRange:
		d, ok := toDecimal(v)
		if !ok {
			return false
		}
		if f.Min != nil && d.LessThan(*f.Min) {
			return false
		}
		if f.Max != nil && d.GreaterThan(*f.Max) {
			return false
		}
		return true
	case DateRange:
		d, ok := toDate(v)
		if !ok {
			return false
		}
		if f.From != nil && d.Before(calendarDate(*f.From)) {
			return false
		}
		if f.To != nil && d.After(calendarDate(*f.To)) {
			return false
		}
		return true
	}
	return false
}

// UniqueValues collects the distinct non-empty stringified values of the column, flattening
// arrays, sorted lexicographically.
func UniqueValues(rows []*Row, col *Column) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		v, ok := col.resolve(r)
		if !ok {
			continue
		}
		for _, item := range flatten(v) {
			s, ok := stringify(item)
			if !ok || s == "" {
				continue
			}
			seen[s] = struct{}{}
		}
	}
	res := make([]string, 0, len(seen))
	for s := range seen {
		res = append(res, s)
	}
	slices.Sort(res)
	return res
}

// FilterOptions returns the explicit options of a select column or derives them from rows.
func FilterOptions(rows []*Row, col *Column) []string {
	if len(col.FilterOptions) > 0 {
		return slices.Clone(col.FilterOptions)
	}
	return UniqueValues(rows, col)
}
