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
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/utils/ioutils"
	"github.com/dokuly/datatable/pkg/datatable"
)

const (
	JSONSourceType     = "json"
	NDJSONSourceType   = "ndjson"
	CSVSourceType      = "csv"
	PostgresSourceType = "postgres"
	DemoSourceType     = "demo"
)

// defaultLoadConcurrency limits how many sources are read at the same time.
const defaultLoadConcurrency = 4

var ErrUnknownSourceType = errors.New("unknown source type")

// Loader reads the whole record set of a table.
type Loader interface {
	Load(ctx context.Context) ([]datatable.Record, error)
}

// New returns the loader for the source config.
func New(cfg domains.SourceConfig) (Loader, error) {
	switch strings.ToLower(cfg.Type) {
	case JSONSourceType, "":
		if cfg.Path == "" {
			return nil, errors.New("json source requires path")
		}
		return &JSON{Path: cfg.Path}, nil
	case NDJSONSourceType:
		if cfg.Path == "" {
			return nil, errors.New("ndjson source requires path")
		}
		return &NDJSON{Path: cfg.Path}, nil
	case CSVSourceType:
		if cfg.Path == "" {
			return nil, errors.New("csv source requires path")
		}
		return &CSV{Path: cfg.Path}, nil
	case PostgresSourceType:
		if cfg.Dsn == "" || cfg.Query == "" {
			return nil, errors.New("postgres source requires dsn and query")
		}
		return &Postgres{Dsn: cfg.Dsn, Query: cfg.Query}, nil
	case DemoSourceType:
		return &Demo{Rows: defaultDemoRows}, nil
	}
	return nil, fmt.Errorf("%w \"%s\"", ErrUnknownSourceType, cfg.Type)
}

// LoadAll loads the sources of all definitions concurrently. The result is keyed by table name.
func LoadAll(ctx context.Context, defs []*domains.TableDefinition) (map[string][]datatable.Record, error) {
	loaders := make([]Loader, len(defs))
	for i, def := range defs {
		l, err := New(def.Source)
		if err != nil {
			return nil, fmt.Errorf("table \"%s\": %w", def.Name, err)
		}
		loaders[i] = l
	}

	results := make([][]datatable.Record, len(defs))
	eg, gtx := errgroup.WithContext(ctx)
	eg.SetLimit(defaultLoadConcurrency)
	for i := range defs {
		eg.Go(func() error {
			records, err := loaders[i].Load(gtx)
			if err != nil {
				return fmt.Errorf("table \"%s\": %w", defs[i].Name, err)
			}
			results[i] = records
			log.Debug().
				Str("TableName", defs[i].Name).
				Int("Records", len(records)).
				Msg("source loaded")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := make(map[string][]datatable.Record, len(defs))
	for i, def := range defs {
		res[def.Name] = results[i]
	}
	return res, nil
}

// openFile opens a source file. Gzip compressed files are decompressed transparently.
func openFile(path string) (*ioutils.Reader, io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open source file: %w", err)
	}
	counter := ioutils.NewReader(f)
	r, err := ioutils.Decompress(counter, ioutils.CodecPgzip)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read source file: %w", err)
	}
	return counter, r, nil
}

func closeFile(path string, counter *ioutils.Reader, r io.Closer) {
	if err := r.Close(); err != nil {
		log.Warn().Err(err).Str("Path", path).Msg("error closing source file")
	}
	log.Debug().
		Str("Path", path).
		Int64("Bytes", counter.GetCount()).
		Msg("source file read")
}
