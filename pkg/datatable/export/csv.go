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

package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/pkg/datatable"
)

// CSVWriter writes comma separated records with every field double quoted and "\n" line
// endings.
type CSVWriter struct {
	w *bufio.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		w: bufio.NewWriter(w),
	}
}

func (w *CSVWriter) Write(record []string) error {
	for n, field := range record {
		if n > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
		for len(field) > 0 {
			i := strings.IndexByte(field, '"')
			if i < 0 {
				i = len(field)
			}
			if _, err := w.w.WriteString(field[:i]); err != nil {
				return err
			}
			field = field[i:]
			if len(field) > 0 {
				if _, err := w.w.WriteString(`""`); err != nil {
					return err
				}
				field = field[1:]
			}
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

func (w *CSVWriter) Flush() error {
	return w.w.Flush()
}

// CSV writes the processed sequence of the table. An empty table produces the header line
// only. It returns the number of data rows written.
func CSV(w io.Writer, t *datatable.Table) (int, error) {
	header, records := Records(t)
	cw := NewCSVWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("unable to write csv header: %w", err)
	}
	for idx, rec := range records {
		if err := cw.Write(rec); err != nil {
			return idx, fmt.Errorf("unable to write csv record %d: %w", idx, err)
		}
	}
	if err := cw.Flush(); err != nil {
		return len(records), fmt.Errorf("unable to flush csv: %w", err)
	}
	log.Debug().
		Str("TableName", t.Name()).
		Int("Rows", len(records)).
		Msg("csv export written")
	return len(records), nil
}
