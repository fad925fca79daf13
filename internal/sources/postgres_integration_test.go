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

//go:build integration

package sources

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/dokuly/datatable/internal/utils/testutils"
	"github.com/dokuly/datatable/pkg/datatable"
)

type postgresSourceSuite struct {
	testutils.PgSourceSuite
}

func (s *postgresSourceSuite) SetupSuite() {
	s.Schema = []string{
		`CREATE TABLE parts (
			id          INT PRIMARY KEY,
			parent_task INT,
			name        TEXT NOT NULL,
			unit_price  NUMERIC(10, 2),
			weight      FLOAT8,
			released    DATE,
			ref         UUID
		)`,
		`INSERT INTO parts VALUES
			(1, NULL, 'Assembly', 10.50, 'NaN', '2024-03-01', '6ba7b810-9dad-11d1-80b4-00c04fd430c8'),
			(2, 1, 'Screw', 0.05, 'Infinity', NULL, NULL),
			(3, 1, 'Washer', 0.02, 1.5, NULL, NULL)`,
		`CREATE TABLE tasks (id INT PRIMARY KEY, title TEXT NOT NULL)`,
	}
	s.PgSourceSuite.SetupSuite()
	s.Seed(context.Background(), "tasks", []string{"id", "title"}, [][]any{
		{int32(1), "Design"},
		{int32(2), "Build"},
	})
}

func (s *postgresSourceSuite) TestLoad() {
	ctx := context.Background()
	p := &Postgres{Dsn: s.DSN(), Query: "SELECT * FROM parts ORDER BY id"}
	records, err := p.Load(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)

	s.Equal("Assembly", records[0]["name"])
	s.True(decimal.RequireFromString("10.5").Equal(records[0]["unit_price"].(decimal.Decimal)))
	s.Equal("6ba7b810-9dad-11d1-80b4-00c04fd430c8", records[0]["ref"])
	s.Nil(records[1]["released"])

	m := datatable.BuildModel(records, "", "")
	s.True(m.Rows[0].HasSubObject)
}

func (s *postgresSourceSuite) TestLoad_NonFiniteFloats() {
	ctx := context.Background()
	records, err := (&Postgres{Dsn: s.DSN(), Query: "SELECT id, weight FROM parts ORDER BY id"}).Load(ctx)
	s.Require().NoError(err)
	s.True(math.IsNaN(records[0]["weight"].(float64)))
	s.True(math.IsInf(records[1]["weight"].(float64), 1))

	tbl, err := datatable.New(datatable.Options{
		Data:    records,
		Columns: []*datatable.Column{{Key: "weight", FilterType: datatable.FilterTypeNumber}},
	})
	s.Require().NoError(err)
	s.Require().NoError(tbl.SortBy("weight"))
	s.Len(tbl.Processed(), 3)
}

func (s *postgresSourceSuite) TestLoad_Seeded() {
	ctx := context.Background()
	records, err := (&Postgres{Dsn: s.DSN(), Query: "SELECT id, title FROM tasks ORDER BY id"}).Load(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(int32(1), records[0]["id"])
	s.Equal("Build", records[1]["title"])
}

func (s *postgresSourceSuite) TestLoad_InvalidQuery() {
	ctx := context.Background()
	_, err := (&Postgres{Dsn: s.DSN(), Query: "SELECT * FROM missing"}).Load(ctx)
	s.Require().ErrorContains(err, "does not exist")
}

func TestPostgresSource(t *testing.T) {
	suite.Run(t, new(postgresSourceSuite))
}
