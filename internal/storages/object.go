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
	"fmt"
	"io"
	"path"
	"strings"
)

const compressedExt = ".gz"

var contentTypes = map[string]string{
	".csv":  "text/csv; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".pdf":  "application/pdf",
	".json": "application/json",
}

// ContentType returns the media type of an export or layout object by its key. Compressed
// exports are application/gzip.
func ContentType(key string) string {
	if strings.HasSuffix(key, compressedExt) {
		return "application/gzip"
	}
	if ct, ok := contentTypes[path.Ext(key)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// CleanKey normalises key and rejects keys that are empty or escape the storage root.
func CleanKey(key string) (string, error) {
	k := path.Clean(strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/"))
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", fmt.Errorf("%w \"%s\"", ErrInvalidKey, key)
	}
	return k, nil
}

// URL joins the storage location and key for export results.
func URL(st Storager, key string) string {
	loc := st.Location()
	if strings.HasSuffix(loc, "/") {
		return loc + key
	}
	return loc + "/" + key
}

// Keys returns the keys of objs.
func Keys(objs []Object) []string {
	res := make([]string, len(objs))
	for i, o := range objs {
		res[i] = o.Key
	}
	return res
}

// ReadAll reads the whole object.
func ReadAll(ctx context.Context, st Storager, key string) ([]byte, error) {
	r, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading object %s: %w", key, err)
	}
	return data, nil
}
