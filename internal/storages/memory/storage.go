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
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dokuly/datatable/internal/storages"
)

type object struct {
	data         []byte
	lastModified time.Time
}

type bucket struct {
	mu      sync.RWMutex
	objects map[string]*object
}

// Storage keeps exports and layouts in process memory, for the memory storage type where
// nothing outlives the process. Sub storages share the same objects.
type Storage struct {
	root string
	b    *bucket
}

func New(root string) *Storage {
	return &Storage{
		root: strings.Trim(path.Clean("/"+root), "/"),
		b:    &bucket{objects: make(map[string]*object)},
	}
}

func (s *Storage) full(key string) (string, error) {
	k, err := storages.CleanKey(key)
	if err != nil {
		return "", err
	}
	return path.Join(s.root, k), nil
}

func (s *Storage) Location() string {
	return "memory:///" + s.root
}

func (s *Storage) Sub(prefix string) storages.Storager {
	return &Storage{
		root: strings.Trim(path.Join(s.root, path.Clean("/"+prefix)), "/"),
		b:    s.b,
	}
}

func (s *Storage) List(_ context.Context, prefix string) ([]storages.Object, error) {
	base := s.root
	if p := strings.Trim(path.Clean("/"+prefix), "/"); p != "" {
		base = path.Join(s.root, p)
	}
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	var res []storages.Object
	for k, o := range s.b.objects {
		if base != "" && !strings.HasPrefix(k, base+"/") {
			continue
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(k, s.root), "/")
		res = append(res, s.describe(rel, o))
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key < res[j].Key
	})
	return res, nil
}

func (s *Storage) describe(key string, o *object) storages.Object {
	return storages.Object{
		Key:          key,
		Size:         int64(len(o.data)),
		LastModified: o.lastModified,
		ContentType:  storages.ContentType(key),
	}
}

func (s *Storage) Stat(_ context.Context, key string) (*storages.Object, error) {
	k, err := s.full(key)
	if err != nil {
		return nil, err
	}
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	o, ok := s.b.objects[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	res := s.describe(strings.TrimPrefix(k, s.root+"/"), o)
	return &res, nil
}

func (s *Storage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	k, err := s.full(key)
	if err != nil {
		return nil, err
	}
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	o, ok := s.b.objects[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader) error {
	k, err := s.full(key)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.objects[k] = &object{data: data, lastModified: time.Now()}
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	k, err := s.full(key)
	if err != nil {
		return err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.objects[k]; !ok {
		return fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	delete(s.b.objects, k)
	return nil
}
