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

package builder

import (
	"context"
	"fmt"
	"os"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/storages"
	"github.com/dokuly/datatable/internal/storages/directory"
	"github.com/dokuly/datatable/internal/storages/memory"
	"github.com/dokuly/datatable/internal/storages/s3"
)

const (
	DirectoryStorageType = "directory"
	S3StorageType        = "s3"
	MemoryStorageType    = "memory"
)

// GetStorage builds the export and layout storage. STORAGE_TYPE overrides the configured type.
func GetStorage(ctx context.Context, stCfg *domains.StorageConfig, logCfg *domains.LogConfig) (
	storages.Storager, error,
) {
	storageType := stCfg.Type
	if envCfg := os.Getenv("STORAGE_TYPE"); envCfg != "" {
		storageType = envCfg
	}
	switch storageType {
	case DirectoryStorageType, "":
		if stCfg.Directory == nil {
			stCfg.Directory = directory.NewConfig()
		}
		return directory.NewStorage(stCfg.Directory)
	case S3StorageType:
		if stCfg.S3 == nil {
			return nil, fmt.Errorf("s3 storage is not configured")
		}
		return s3.NewStorage(ctx, stCfg.S3, logCfg.Level)
	case MemoryStorageType:
		// objects live as long as the process
		return memory.New(""), nil
	}
	return nil, fmt.Errorf("unknown storage type \"%s\"", storageType)
}
