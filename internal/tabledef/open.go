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

package tabledef

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/pkg/datatable"
)

// Open builds the table of a definition, restores its saved layout from layouts and applies
// the view. layouts may be nil.
func Open(
	ctx context.Context, def *domains.TableDefinition, data []datatable.Record, layouts *LayoutStore,
	view View, opts BuildOptions,
) (*datatable.Table, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if layouts != nil && opts.OnSaveLayout == nil {
		opts.OnSaveLayout = layouts.Saver(ctx)
	}
	t, err := Build(def, data, opts)
	if err != nil {
		return nil, err
	}
	if layouts != nil {
		l, found, err := layouts.Load(ctx, def.Name)
		if err != nil {
			log.Warn().Err(err).Str("TableName", def.Name).Msg("cannot load saved layout")
		} else if found {
			t.ApplyLayout(l)
		}
	}
	if err := ApplyView(t, view, opts.Now); err != nil {
		return nil, &ViewError{Err: err}
	}
	return t, nil
}

// ViewError reports a view state that does not fit the table.
type ViewError struct {
	Err error
}

func (e *ViewError) Error() string {
	return e.Err.Error()
}

func (e *ViewError) Unwrap() error {
	return e.Err
}
