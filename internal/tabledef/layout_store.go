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
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dokuly/datatable/internal/storages"
	"github.com/dokuly/datatable/pkg/datatable"
)

const (
	layoutsDir = "layouts"
	layoutExt  = ".json"
)

// ErrInvalidLayoutName is returned for table names that cannot name a layout object.
var ErrInvalidLayoutName = errors.New("invalid layout name")

// LayoutStore keeps saved column layouts as layouts/<table>.json objects.
type LayoutStore struct {
	st storages.Storager
}

func NewLayoutStore(st storages.Storager) *LayoutStore {
	return &LayoutStore{st: st.Sub(layoutsDir)}
}

func layoutKey(table string) (string, error) {
	if table == "" || strings.ContainsAny(table, "/\\") || table == "." || table == ".." {
		return "", fmt.Errorf("%w \"%s\"", ErrInvalidLayoutName, table)
	}
	return table + layoutExt, nil
}

func (ls *LayoutStore) Save(ctx context.Context, l datatable.Layout) error {
	key, err := layoutKey(l.Table)
	if err != nil {
		return err
	}
	data, err := datatable.EncodeLayout(l)
	if err != nil {
		return err
	}
	if err := ls.st.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("cannot store layout: %w", err)
	}
	return nil
}

// Load returns the saved layout of the table. The flag is false when none was saved.
func (ls *LayoutStore) Load(ctx context.Context, table string) (datatable.Layout, bool, error) {
	key, err := layoutKey(table)
	if err != nil {
		return datatable.Layout{}, false, err
	}
	data, err := storages.ReadAll(ctx, ls.st, key)
	if errors.Is(err, storages.ErrObjectNotFound) {
		return datatable.Layout{}, false, nil
	}
	if err != nil {
		return datatable.Layout{}, false, fmt.Errorf("cannot read layout: %w", err)
	}
	l, err := datatable.DecodeLayout(data)
	if err != nil {
		return datatable.Layout{}, false, err
	}
	return l, true, nil
}

// List returns the names of tables with a saved layout.
func (ls *LayoutStore) List(ctx context.Context) ([]string, error) {
	objs, err := ls.st.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("cannot list layouts: %w", err)
	}
	var res []string
	for _, o := range objs {
		if strings.Contains(o.Key, "/") || !strings.HasSuffix(o.Key, layoutExt) {
			continue
		}
		res = append(res, strings.TrimSuffix(o.Key, layoutExt))
	}
	sort.Strings(res)
	return res, nil
}

// Saver binds the store to a table as its layout saver.
func (ls *LayoutStore) Saver(ctx context.Context) datatable.LayoutSaver {
	return func(l datatable.Layout) error {
		return ls.Save(ctx, l)
	}
}

// Delete removes the saved layout of the table. The flag is false when none was saved.
func (ls *LayoutStore) Delete(ctx context.Context, table string) (bool, error) {
	key, err := layoutKey(table)
	if err != nil {
		return false, err
	}
	err = ls.st.Remove(ctx, key)
	if errors.Is(err, storages.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot delete layout: %w", err)
	}
	return true, nil
}
