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

package sources

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/pkg/datatable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func writeGzipFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return p
}

const partsJSON = `[
  {"id": 1, "name": "Bravo", "qty": 5, "supplier": {"name": "ACME"}},
  {"id": 2, "name": "alpha", "qty": 12, "tags": ["smd", "0402"]}
]`

func TestJSON_Load(t *testing.T) {
	for _, path := range []string{
		writeFile(t, "parts.json", partsJSON),
		writeGzipFile(t, "parts.json.gz", partsJSON),
		writeGzipFile(t, "parts-compressed.json", partsJSON),
		writeFile(t, "parts-plain.json.gz", partsJSON),
	} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			records, err := (&JSON{Path: path}).Load(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "Bravo", records[0]["name"])
			assert.Equal(t, 12.0, records[1]["qty"])
			assert.Equal(t, map[string]any{"name": "ACME"}, records[0]["supplier"])
			assert.Equal(t, []any{"smd", "0402"}, records[1]["tags"])
		})
	}
}

func TestJSON_Errors(t *testing.T) {
	_, err := (&JSON{Path: filepath.Join(t.TempDir(), "missing.json")}).Load(context.Background())
	require.ErrorContains(t, err, "cannot open source file")

	_, err = (&JSON{Path: writeFile(t, "obj.json", `{"id": 1}`)}).Load(context.Background())
	require.ErrorContains(t, err, "cannot decode json array")

	_, err = (&JSON{Path: writeFile(t, "broken.json.gz", "\x1f\x8b\x00")}).Load(context.Background())
	require.ErrorContains(t, err, "cannot read source file")
}

func TestNDJSON_Load(t *testing.T) {
	path := writeFile(t, "tasks.ndjson", `{"id": 1, "title": "Assembly"}

{"id": 2, "title": "Screw", "parent_task": 1}
`)
	records, err := (&NDJSON{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1.0, records[1]["parent_task"])

	bad := writeFile(t, "bad.ndjson", "{\"id\": 1}\nnot json\n")
	_, err = (&NDJSON{Path: bad}).Load(context.Background())
	require.ErrorContains(t, err, "line 2")
}

func TestCSV_Load(t *testing.T) {
	path := writeFile(t, "parts.csv", "id,name,qty,parent_task\n1,\"Bracket, steel\",12,\n2,Screw,200,1\n")
	records, err := (&CSV{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, datatable.Record{"id": "1", "name": "Bracket, steel", "qty": "12"}, records[0])
	assert.Equal(t, "1", records[1]["parent_task"])

	m := datatable.BuildModel(records, "", "")
	assert.True(t, m.Rows[0].HasSubObject)

	empty, err := (&CSV{Path: writeFile(t, "empty.csv", "")}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = (&CSV{Path: writeFile(t, "ragged.csv", "a,b\n1\n")}).Load(context.Background())
	require.ErrorContains(t, err, "cannot read csv line")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domains.SourceConfig
		want    Loader
		wantErr bool
	}{
		{name: "default json", cfg: domains.SourceConfig{Path: "a.json"}, want: &JSON{Path: "a.json"}},
		{name: "ndjson", cfg: domains.SourceConfig{Type: "NDJSON", Path: "a.ndjson"}, want: &NDJSON{Path: "a.ndjson"}},
		{name: "csv", cfg: domains.SourceConfig{Type: "csv", Path: "a.csv"}, want: &CSV{Path: "a.csv"}},
		{name: "postgres", cfg: domains.SourceConfig{Type: "postgres", Dsn: "postgres://", Query: "select 1"},
			want: &Postgres{Dsn: "postgres://", Query: "select 1"}},
		{name: "demo", cfg: domains.SourceConfig{Type: "demo"}, want: &Demo{Rows: defaultDemoRows}},
		{name: "json without path", cfg: domains.SourceConfig{Type: "json"}, wantErr: true},
		{name: "postgres without query", cfg: domains.SourceConfig{Type: "postgres", Dsn: "x"}, wantErr: true},
		{name: "unknown", cfg: domains.SourceConfig{Type: "xlsx", Path: "a.xlsx"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l)
		})
	}
	_, err := New(domains.SourceConfig{Type: "xlsx"})
	require.ErrorIs(t, err, ErrUnknownSourceType)
}

func TestLoadAll(t *testing.T) {
	defs := []*domains.TableDefinition{
		{Name: "parts", Source: domains.SourceConfig{Type: "json", Path: writeFile(t, "parts.json", partsJSON)}},
		{Name: "tasks", Source: domains.SourceConfig{Type: "ndjson", Path: writeFile(t, "t.ndjson", `{"id": 1}`)}},
		{Name: "demo", Source: domains.SourceConfig{Type: "demo"}},
	}
	res, err := LoadAll(context.Background(), defs)
	require.NoError(t, err)
	assert.Len(t, res["parts"], 2)
	assert.Len(t, res["tasks"], 1)
	assert.Len(t, res["demo"], defaultDemoRows)

	defs = append(defs, &domains.TableDefinition{
		Name:   "broken",
		Source: domains.SourceConfig{Type: "csv", Path: filepath.Join(t.TempDir(), "missing.csv")},
	})
	_, err = LoadAll(context.Background(), defs)
	require.ErrorContains(t, err, "table \"broken\"")
}

func TestDemo_Load(t *testing.T) {
	records, err := (&Demo{Rows: 12, Seed: 7}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 12)

	m := datatable.BuildModel(records, "", "")
	roots := m.Roots(m.Rows)
	assert.Len(t, roots, 3)
	assert.True(t, m.Rows[0].HasSubObject)
	assert.Len(t, m.ParentMap["1"], 4)
	assert.Len(t, m.ParentMap["11"], 1)
	for _, r := range m.Rows {
		assert.Contains(t, datatableStates(), r.Record["state"])
	}

	_, err = (&Demo{Rows: -1}).Load(context.Background())
	require.Error(t, err)
}

func datatableStates() []any {
	res := make([]any, len(demoStates))
	for i := range demoStates {
		res[i] = demoStates[i]
	}
	return res
}

func TestRecordValue(t *testing.T) {
	id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", recordValue(id))
	assert.Equal(t, "raw", recordValue([]byte("raw")))
	d := decimal.RequireFromString("10.50")
	assert.Equal(t, d, recordValue(d))
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, recordValue(ts))
	assert.Equal(t, []any{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", int32(1)}, recordValue([]any{id, int32(1)}))
	assert.Nil(t, recordValue(nil))
}
