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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dokuly/datatable/internal/storages"
)

// ObjectWriter streams writes into a storage object. The upload runs while data is written
// and Close waits for it to finish. Closing again after an abort returns the upload result.
type ObjectWriter struct {
	pw   *io.PipeWriter
	done chan error
	once sync.Once
	err  error
}

func NewObjectWriter(ctx context.Context, st storages.Storager, filePath string) *ObjectWriter {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := st.Put(ctx, filePath, pr)
		// Unblock the writer if the upload stopped reading early.
		pr.CloseWithError(err)
		done <- err
	}()
	return &ObjectWriter{
		pw:   pw,
		done: done,
	}
}

func (ow *ObjectWriter) Write(p []byte) (int, error) {
	return ow.pw.Write(p)
}

func (ow *ObjectWriter) Close() error {
	if err := ow.pw.Close(); err != nil {
		return fmt.Errorf("error closing pipe: %w", err)
	}
	if err := ow.wait(); err != nil {
		return fmt.Errorf("error storing object: %w", err)
	}
	return nil
}

// CloseWithError aborts the upload.
func (ow *ObjectWriter) CloseWithError(err error) error {
	_ = ow.pw.CloseWithError(err)
	return ow.wait()
}

func (ow *ObjectWriter) wait() error {
	ow.once.Do(func() {
		ow.err = <-ow.done
	})
	return ow.err
}
