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

package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/dokuly/datatable/pkg/datatable"
)

// CSV reads a file whose first line holds the field keys. All values are strings; empty
// fields are stored as missing values.
type CSV struct {
	Path string
}

func (c *CSV) Load(ctx context.Context) ([]datatable.Record, error) {
	counter, r, err := openFile(c.Path)
	if err != nil {
		return nil, err
	}
	defer closeFile(c.Path, counter, r)

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read csv header: %w", err)
	}

	var records []datatable.Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read csv line: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := make(datatable.Record, len(header))
		for i, key := range header {
			if fields[i] == "" {
				continue
			}
			rec[key] = fields[i]
		}
		records = append(records, rec)
	}
	return records, nil
}
