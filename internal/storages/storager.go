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

package storages

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Object describes a stored export or layout.
type Object struct {
	// Key is relative to the storage the object was listed from.
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storager is where exports and saved column layouts are written to. Keys are slash
// separated and relative to the storage root; they never leave it.
type Storager interface {
	// Location names the storage root in logs and export results.
	Location() string
	// Sub returns a storage rooted at prefix below this one.
	Sub(prefix string) Storager
	// List returns the objects below prefix sorted by key. A missing prefix is empty.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Stat returns ErrObjectNotFound for a missing key.
	Stat(ctx context.Context, key string) (*Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put stores body under key. A failed or cancelled upload leaves no object behind.
	Put(ctx context.Context, key string, body io.Reader) error
	// Remove deletes the object. A missing key is ErrObjectNotFound.
	Remove(ctx context.Context, key string) error
}
