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
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dokuly/datatable/pkg/datatable"
)

// JSON reads a file holding a single array of objects.
type JSON struct {
	Path string
}

func (j *JSON) Load(ctx context.Context) ([]datatable.Record, error) {
	counter, r, err := openFile(j.Path)
	if err != nil {
		return nil, err
	}
	defer closeFile(j.Path, counter, r)

	var records []datatable.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("cannot decode json array: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// NDJSON reads one object per line. Empty lines are skipped.
type NDJSON struct {
	Path string
}

const maxNDJSONLine = 16 * 1024 * 1024

func (n *NDJSON) Load(ctx context.Context) ([]datatable.Record, error) {
	counter, r, err := openFile(n.Path)
	if err != nil {
		return nil, err
	}
	defer closeFile(n.Path, counter, r)

	var records []datatable.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxNDJSONLine)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec := datatable.Record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode json object: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read ndjson file: %w", err)
	}
	return records, nil
}
