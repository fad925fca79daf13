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

package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokuly/datatable/internal/storages"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("export canceled")
}

func TestPutGetStat(t *testing.T) {
	ctx := context.Background()
	st := New("")

	require.NoError(t, st.Put(ctx, "exports/1/parts.csv", bytes.NewReader([]byte(`"Name"`))))
	data, err := storages.ReadAll(ctx, st, "exports/1/parts.csv")
	require.NoError(t, err)
	assert.Equal(t, `"Name"`, string(data))

	info, err := st.Stat(ctx, "exports/1/parts.csv")
	require.NoError(t, err)
	assert.Equal(t, "exports/1/parts.csv", info.Key)
	assert.Equal(t, int64(6), info.Size)
	assert.Equal(t, "text/csv; charset=utf-8", info.ContentType)
	assert.WithinDuration(t, time.Now(), info.LastModified, time.Second)

	_, err = st.Get(ctx, "exports/1/missing.csv")
	require.ErrorIs(t, err, storages.ErrObjectNotFound)
	_, err = st.Stat(ctx, "exports/1/missing.csv")
	require.ErrorIs(t, err, storages.ErrObjectNotFound)
}

func TestPut_Failure(t *testing.T) {
	ctx := context.Background()
	st := New("")
	require.Error(t, st.Put(ctx, "exports/1/parts.pdf", failingReader{}))
	require.ErrorIs(t, st.Put(ctx, "../parts.pdf", bytes.NewReader(nil)), storages.ErrInvalidKey)

	objs, err := st.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	st := New("")
	require.NoError(t, st.Put(ctx, "layouts/parts.json", bytes.NewReader([]byte("{}"))))
	require.NoError(t, st.Remove(ctx, "layouts/parts.json"))
	require.ErrorIs(t, st.Remove(ctx, "layouts/parts.json"), storages.ErrObjectNotFound)
}

func TestSubAndList(t *testing.T) {
	ctx := context.Background()
	st := New("/base")
	layouts := st.Sub("layouts")
	require.NoError(t, layouts.Put(ctx, "parts.json", bytes.NewReader([]byte("{}"))))
	require.NoError(t, layouts.Put(ctx, "tasks.json", bytes.NewReader([]byte("{}"))))
	require.NoError(t, st.Put(ctx, "exports/1/parts.csv", bytes.NewReader([]byte("a"))))
	require.NoError(t, st.Put(ctx, "layoutsx/other.json", bytes.NewReader([]byte("{}"))))

	assert.Equal(t, "memory:///base/layouts", layouts.Location())

	objs, err := layouts.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"parts.json", "tasks.json"}, storages.Keys(objs))

	objs, err = st.List(ctx, "layouts")
	require.NoError(t, err)
	assert.Equal(t, []string{"layouts/parts.json", "layouts/tasks.json"}, storages.Keys(objs))

	objs, err = st.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, objs, 4)

	objs, err = st.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, objs)

	info, err := layouts.Stat(ctx, "parts.json")
	require.NoError(t, err)
	assert.Equal(t, "parts.json", info.Key)
}

func TestGet_Markdown(t *testing.T) {
	ctx := context.Background()
	st := New("")
	require.NoError(t, st.Put(ctx, "a.md", bytes.NewReader([]byte("| a |"))))
	r, err := st.Get(ctx, "a.md")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "| a |", string(data))
}
