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
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Record is one opaque semantic record.
type Record map[string]any

// Row is a record annotated by the engine.
type Row struct {
	// ID is the position of the record in the loaded data. It never changes after sorting or
	// filtering.
	ID           int
	Record       Record
	HasSubObject bool
	// Level is the tree depth. It is assigned by Flatten only.
	Level int

	raw []byte
}

// Value returns the field value. Keys containing dots that are not present as-is are resolved
// as a gjson path over the record, so "supplier.name" reaches nested objects.
func (r *Row) Value(key string) (any, bool) {
	if r == nil || r.Record == nil {
		return nil, false
	}
	if v, ok := r.Record[key]; ok {
		return v, v != nil
	}
	if !strings.ContainsAny(key, ".#|") {
		return nil, false
	}
	if r.raw == nil {
		data, err := json.Marshal(r.Record)
		if err != nil {
			log.Debug().Err(err).Int("RowId", r.ID).Msg("unable to encode record for path lookup")
			r.raw = []byte("{}")
		} else {
			r.raw = data
		}
	}
	res := gjson.GetBytes(r.raw, key)
	if !res.Exists() || res.Type == gjson.Null {
		return nil, false
	}
	return res.Value(), true
}

// Model is the annotated data load.
type Model struct {
	Rows        []*Row
	ObjectMap   map[string]*Row
	ParentMap   map[string][]*Row
	IDKey       string
	ParentIDKey string
}

const (
	DefaultIDKey       = "id"
	DefaultParentIDKey = "parent_task"
)

// BuildModel assigns row ids in input order and derives the hierarchy maps. The caller's
// records are not modified.
func BuildModel(data []Record, idKey, parentIDKey string) *Model {
	if idKey == "" {
		idKey = DefaultIDKey
	}
	if parentIDKey == "" {
		parentIDKey = DefaultParentIDKey
	}
	m := &Model{
		Rows:        make([]*Row, 0, len(data)),
		ObjectMap:   make(map[string]*Row, len(data)),
		ParentMap:   make(map[string][]*Row),
		IDKey:       idKey,
		ParentIDKey: parentIDKey,
	}
	for idx, rec := range data {
		r := &Row{ID: idx, Record: rec}
		m.Rows = append(m.Rows, r)
		if id, ok := r.key(idKey); ok {
			m.ObjectMap[id] = r
		}
		if parent, ok := r.key(parentIDKey); ok {
			m.ParentMap[parent] = append(m.ParentMap[parent], r)
		}
	}
	for _, r := range m.Rows {
		if id, ok := r.key(idKey); ok {
			r.HasSubObject = len(m.ParentMap[id]) > 0
		}
	}
	return m
}

// key returns the normalized identity stored under the field. Falsy values are absent.
func (r *Row) key(field string) (string, bool) {
	v, ok := r.Value(field)
	if !ok {
		return "", false
	}
	return NormalizeID(v)
}

// RowKey returns the normalized value of the id field of the row.
func (m *Model) RowKey(r *Row) (string, bool) {
	return r.key(m.IDKey)
}

// IsRoot reports whether the parent reference of the row is falsy.
func (m *Model) IsRoot(r *Row) bool {
	_, ok := r.key(m.ParentIDKey)
	return !ok
}

// InitialVisibleColumns keeps the columns shown by default in their original order.
func InitialVisibleColumns(cols []*Column) []*Column {
	res := make([]*Column, 0, len(cols))
	for _, c := range cols {
		if c.ShownByDefault() {
			res = append(res, c)
		}
	}
	return res
}
