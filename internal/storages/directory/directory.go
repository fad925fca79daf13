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

package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/storages"
)

const (
	dirMode  os.FileMode = 0750
	fileMode os.FileMode = 0640

	// Partial uploads are written next to their target under this prefix and renamed.
	partialPrefix = ".partial-"
)

// Storage keeps exports and layouts as files below a root directory.
type Storage struct {
	root string
}

func NewStorage(cfg *Config) (*Storage, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open storage directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %s is not a directory", cfg.Path)
	}
	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}
	return &Storage{root: root}, nil
}

func (s *Storage) file(key string) (string, error) {
	k, err := storages.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *Storage) Location() string {
	return s.root
}

func (s *Storage) Sub(prefix string) storages.Storager {
	k, err := storages.CleanKey(prefix)
	if err != nil {
		return s
	}
	return &Storage{root: filepath.Join(s.root, filepath.FromSlash(k))}
}

func (s *Storage) List(ctx context.Context, prefix string) ([]storages.Object, error) {
	dir := s.root
	if strings.Trim(prefix, "/") != "" {
		var err error
		if dir, err = s.file(prefix); err != nil {
			return nil, err
		}
	}
	var res []storages.Object
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), partialPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		res = append(res, describe(filepath.ToSlash(rel), info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key < res[j].Key
	})
	return res, nil
}

func describe(key string, info fs.FileInfo) storages.Object {
	return storages.Object{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
		ContentType:  storages.ContentType(key),
	}
}

func (s *Storage) Stat(_ context.Context, key string) (*storages.Object, error) {
	name, err := s.file(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) || err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", key, err)
	}
	k, _ := storages.CleanKey(key)
	res := describe(k, info)
	return &res, nil
}

func (s *Storage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	name, err := s.file(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
	}
	return f, err
}

// Put writes body to a partial file and renames it over the target once the body is
// complete, so readers never see a truncated export.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader) (err error) {
	name, err := s.file(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, partialPrefix+"*")
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Warn().Err(rmErr).Str("Key", key).Msg("cannot remove partial object")
		}
	}()

	_, err = io.Copy(f, contextReader{ctx: ctx, r: body})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", key, err)
	}
	if err = os.Chmod(f.Name(), fileMode); err != nil {
		return fmt.Errorf("cannot set file mode: %w", err)
	}
	if err = os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("cannot store %s: %w", key, err)
	}
	return nil
}

// Remove deletes the object and then the directories it leaves empty, up to the root.
func (s *Storage) Remove(_ context.Context, key string) error {
	name, err := s.file(key)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storages.ErrObjectNotFound, key)
		}
		return fmt.Errorf("cannot remove %s: %w", key, err)
	}
	for dir := filepath.Dir(name); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
