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

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Layout is the persisted column arrangement of a table: the visible keys in display order.
type Layout struct {
	Table   string
	Columns []string
}

// LayoutSaver persists a layout. Storage is owned by the caller.
type LayoutSaver func(layout Layout) error

const (
	layoutTablePath   = "table"
	layoutColumnsPath = "columns"
)

func EncodeLayout(l Layout) ([]byte, error) {
	data, err := sjson.SetBytes([]byte("{}"), layoutTablePath, l.Table)
	if err != nil {
		return nil, fmt.Errorf("unable to set table name: %w", err)
	}
	cols := l.Columns
	if cols == nil {
		cols = []string{}
	}
	data, err = sjson.SetBytes(data, layoutColumnsPath, cols)
	if err != nil {
		return nil, fmt.Errorf("unable to set columns: %w", err)
	}
	return data, nil
}

func DecodeLayout(data []byte) (Layout, error) {
	if !gjson.ValidBytes(data) {
		return Layout{}, errors.New("invalid layout document")
	}
	res := gjson.ParseBytes(data)
	cols := res.Get(layoutColumnsPath)
	if !cols.IsArray() {
		return Layout{}, errors.New("layout columns must be an array")
	}
	l := Layout{
		Table: res.Get(layoutTablePath).String(),
	}
	for _, c := range cols.Array() {
		l.Columns = append(l.Columns, c.String())
	}
	return l, nil
}
