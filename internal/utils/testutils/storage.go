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

package testutils

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dokuly/datatable/internal/storages"
)

// StorageMock is a testify mock of storages.Storager.
type StorageMock struct {
	mock.Mock
}

func (s *StorageMock) Location() string {
	args := s.Called()
	return args.String(0)
}

func (s *StorageMock) Sub(prefix string) storages.Storager {
	args := s.Called(prefix)
	return args.Get(0).(storages.Storager)
}

func (s *StorageMock) List(ctx context.Context, prefix string) ([]storages.Object, error) {
	args := s.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storages.Object), args.Error(1)
}

func (s *StorageMock) Stat(ctx context.Context, key string) (*storages.Object, error) {
	args := s.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storages.Object), args.Error(1)
}

func (s *StorageMock) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := s.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (s *StorageMock) Put(ctx context.Context, key string, body io.Reader) error {
	args := s.Called(ctx, key, body)
	return args.Error(0)
}

func (s *StorageMock) Remove(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}
