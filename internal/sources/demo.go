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
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faker/faker/v4"

	"github.com/dokuly/datatable/pkg/datatable"
)

const defaultDemoRows = 100

var demoStates = []string{"Draft", "Review", "Released", "Obsolete"}

// Demo generates a hierarchical parts list: every fifth record is an assembly and the
// records following it are its components.
type Demo struct {
	Rows int
	Seed uint64
}

func (d *Demo) Load(ctx context.Context) ([]datatable.Record, error) {
	if d.Rows < 0 {
		return nil, errors.New("rows must not be negative")
	}
	rnd := rand.New(rand.NewPCG(d.Seed, d.Seed^0x9e3779b97f4a7c15))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]datatable.Record, 0, d.Rows)
	var assembly int
	for i := 1; i <= d.Rows; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec := datatable.Record{
			"id":         float64(i),
			"part_no":    fmt.Sprintf("PRT-%05d", i),
			"name":       faker.Word() + " " + faker.Word(),
			"state":      demoStates[rnd.IntN(len(demoStates))],
			"qty":        float64(rnd.IntN(500)),
			"unit_price": fmt.Sprintf("%d.%02d", rnd.IntN(200), rnd.IntN(100)),
			"created":    base.AddDate(0, 0, rnd.IntN(365)).Format(time.DateOnly),
			"owner":      faker.Name(),
			"supplier": map[string]any{
				"name":    faker.DomainName(),
				"contact": faker.Email(),
			},
		}
		if i%5 == 1 {
			assembly = i
			rec["name"] = "Assembly " + rec["part_no"].(string)
		} else {
			rec["parent_task"] = float64(assembly)
		}
		records = append(records, rec)
	}
	return records, nil
}
