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

package ioutils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dokuly/datatable/internal/storages"
	"github.com/dokuly/datatable/internal/storages/memory"
	"github.com/dokuly/datatable/internal/utils/testutils"
)

func TestObjectWriter(t *testing.T) {
	ctx := context.Background()
	st := memory.New("exports")

	w := NewObjectWriter(ctx, st, "parts.csv.gz")
	cw := NewWriter(w)
	gz := Compress(cw, CodecPgzip)
	_, err := gz.Write([]byte(exportData))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.Greater(t, cw.GetCount(), int64(0))

	obj, err := st.Get(ctx, "parts.csv.gz")
	require.NoError(t, err)
	r, err := Decompress(obj, CodecGzip)
	require.NoError(t, err)
	res, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, exportData, string(res))
}

func TestObjectWriter_PutError(t *testing.T) {
	st := &testutils.StorageMock{}
	st.On("Put", mock.Anything, "parts.csv", mock.Anything).
		Return(errors.New("bucket is read only"))

	w := NewObjectWriter(context.Background(), st, "parts.csv")
	_, _ = w.Write([]byte(exportData))
	err := w.Close()
	require.ErrorContains(t, err, "bucket is read only")
	st.AssertExpectations(t)
}

func TestObjectWriter_CloseWithError(t *testing.T) {
	ctx := context.Background()
	st := memory.New("")
	w := NewObjectWriter(ctx, st, "parts.csv")
	_, err := w.Write([]byte("\"Name\"\n"))
	require.NoError(t, err)

	abort := errors.New("export canceled")
	require.ErrorIs(t, w.CloseWithError(abort), abort)
	require.ErrorIs(t, w.Close(), abort)
	_, err = st.Get(ctx, "parts.csv")
	require.ErrorIs(t, err, storages.ErrObjectNotFound)
}

func TestCountReader(t *testing.T) {
	r := NewReader(io.NopCloser(bytes.NewReader([]byte(exportData))))
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, int64(len(exportData)), r.GetCount())
	require.NoError(t, r.Close())
}
