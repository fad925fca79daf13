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
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgDatabase = "datatable"
	pgUser     = "datatable"
	pgPassword = "datatable"
	pgImage    = "postgres:17"

	pgPort nat.Port = "5432/tcp"
)

// PgSourceSuite runs a disposable PostgreSQL server for postgres source tests. Schema
// statements run once the server accepts connections.
type PgSourceSuite struct {
	suite.Suite
	Schema []string

	container testcontainers.Container
	dsn       string
}

func pgDSN(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, host, port.Port(), pgDatabase)
}

func (s *PgSourceSuite) SetupSuite() {
	ctx := context.Background()
	var err error
	s.container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{string(pgPort)},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForSQL(pgPort, "pgx", pgDSN),
		},
		Started: true,
	})
	s.Require().NoError(err, "cannot start postgres")

	host, err := s.container.Host(ctx)
	s.Require().NoError(err)
	port, err := s.container.MappedPort(ctx, pgPort)
	s.Require().NoError(err)
	s.dsn = pgDSN(host, port)

	for _, stmt := range s.Schema {
		s.Exec(ctx, stmt)
	}
}

func (s *PgSourceSuite) TearDownSuite() {
	if s.container != nil {
		s.Assert().NoError(s.container.Terminate(context.Background()))
	}
}

// DSN is the connection string a postgres source uses to reach the server.
func (s *PgSourceSuite) DSN() string {
	return s.dsn
}

func (s *PgSourceSuite) connect(ctx context.Context) *pgx.Conn {
	conn, err := pgx.Connect(ctx, s.dsn)
	s.Require().NoError(err, "cannot connect to postgres")
	return conn
}

func (s *PgSourceSuite) Exec(ctx context.Context, sql string, args ...any) {
	conn := s.connect(ctx)
	defer conn.Close(ctx)
	_, err := conn.Exec(ctx, sql, args...)
	s.Require().NoErrorf(err, "cannot execute %q", sql)
}

// Seed copies rows into table, one value per column in cols.
func (s *PgSourceSuite) Seed(ctx context.Context, table string, cols []string, rows [][]any) {
	conn := s.connect(ctx)
	defer conn.Close(ctx)
	n, err := conn.CopyFrom(ctx, pgx.Identifier{table}, cols, pgx.CopyFromRows(rows))
	s.Require().NoErrorf(err, "cannot seed %s", table)
	s.Require().Equal(int64(len(rows)), n)
}
