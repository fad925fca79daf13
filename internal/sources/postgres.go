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
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dokuly/datatable/pkg/datatable"
)

// Postgres runs a query and turns every result row into a record keyed by column name.
// Numeric columns are decoded as exact decimals.
type Postgres struct {
	Dsn   string
	Query string
}

func (p *Postgres) Load(ctx context.Context) ([]datatable.Record, error) {
	conn, err := pgx.Connect(ctx, p.Dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("error closing database connection")
		}
	}()
	pgxdecimal.Register(conn.TypeMap())

	rows, err := conn.Query(ctx, p.Query)
	if err != nil {
		return nil, fmt.Errorf("cannot execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []datatable.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("cannot decode row: %w", err)
		}
		rec := make(datatable.Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = recordValue(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}
	return records, nil
}

// recordValue converts driver values the engine has no dedicated handling for.
func recordValue(v any) any {
	switch vv := v.(type) {
	case nil, string, bool, float64, float32, int64, int32, int16, int8, int, time.Time, decimal.Decimal:
		return vv
	case [16]byte:
		return uuid.UUID(vv).String()
	case []byte:
		return string(vv)
	case []any:
		res := make([]any, len(vv))
		for i := range vv {
			res[i] = recordValue(vv[i])
		}
		return res
	case map[string]any:
		return vv
	case fmt.Stringer:
		return vv.String()
	}
	return v
}
