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

package utils

import (
	"context"

	"github.com/google/uuid"
)

type exportIDKey struct{}

// WithExportID tags the context with a new export id.
func WithExportID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, exportIDKey{}, id), id
}

func ExportIDFromCtx(ctx context.Context) string {
	id, ok := ctx.Value(exportIDKey{}).(string)
	if !ok {
		return ""
	}
	return id
}
