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
	"slices"
	"strings"
)

type SortOrder uint8

const (
	SortAsc SortOrder = iota
	SortDesc
)

func (o SortOrder) String() string {
	if o == SortDesc {
		return "desc"
	}
	return "asc"
}

func (o SortOrder) Flip() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

func (o SortOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *SortOrder) UnmarshalText(text []byte) error {
	v, err := ParseSortOrder(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return SortAsc, nil
	case "desc", "descending":
		return SortDesc, nil
	}
	return SortAsc, fmt.Errorf("unknown sort order \"%s\"", s)
}

// SortState holds the single sorted column. A nil Column means unsorted.
type SortState struct {
	Column *Column
	Order  SortOrder
}

// Toggle flips the order when the same column is selected again and resets to ascending
// for a new column.
func (s SortState) Toggle(col *Column) SortState {
	if s.Column != nil && col != nil && s.Column.Key == col.Key {
		return SortState{Column: s.Column, Order: s.Order.Flip()}
	}
	return SortState{Column: col, Order: SortAsc}
}

// Compare orders two rows according to the state.
func (s SortState) Compare(a, b *Row) int {
	if s.Column == nil {
		return 0
	}
	if s.Column.SortFunction != nil {
		return s.Column.SortFunction(a, b, s.Order)
	}
	va, _ := a.Value(s.Column.Key)
	vb, _ := b.Value(s.Column.Key)
	c := CompareValues(va, vb)
	if s.Order == SortDesc {
		return -c
	}
	return c
}

// SortRows returns a stably sorted copy of rows.
func SortRows(rows []*Row, state SortState) []*Row {
	res := slices.Clone(rows)
	if state.Column == nil {
		return res
	}
	slices.SortStableFunc(res, state.Compare)
	return res
}
