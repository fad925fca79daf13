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
	"errors"
	"fmt"
	"strings"

	"github.com/dokuly/datatable/pkg/datatable"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w \"%s\"", ErrUnknownFormat, s)
}

// FileName returns "<table name>.<ext>" with the default table name when none is set.
func FileName(tableName string, f Format) string {
	if tableName == "" {
		tableName = datatable.DefaultTableName
	}
	return tableName + "." + string(f)
}

// Columns returns the exported columns: every column included in CSV, in full column order,
// regardless of visibility.
func Columns(t *datatable.Table) []*datatable.Column {
	var res []*datatable.Column
	for _, c := range t.Columns() {
		if c.IncludedInCSV() {
			res = append(res, c)
		}
	}
	return res
}

// Records resolves the header and cell text of the processed sequence. Pagination is not
// applied.
func Records(t *datatable.Table) (header []string, records [][]string) {
	cols := Columns(t)
	header = make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title()
	}
	rows := t.Processed()
	records = make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = c.RenderCSV(r).String()
		}
		records[i] = rec
	}
	return header, records
}
