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
	"fmt"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/pkg/datatable"
)

// TemplateContext is the dot of column templates.
type TemplateContext struct {
	Record datatable.Record
	RowID  int
	Level  int
	Search string
	row    *datatable.Row
}

// Value resolves a field, including dotted paths into nested objects.
func (tc TemplateContext) Value(key string) any {
	v, _ := tc.row.Value(key)
	return v
}

func newTemplateContext(row *datatable.Row, search string) TemplateContext {
	return TemplateContext{
		Record: row.Record,
		RowID:  row.ID,
		Level:  row.Level,
		Search: search,
		row:    row,
	}
}

func parseTemplate(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(FuncMap()).
		Option("missingkey=zero").
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}
	return tmpl, nil
}

func execTemplate(tmpl *template.Template, ctx TemplateContext) (string, bool) {
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, ctx); err != nil {
		log.Debug().
			Err(err).
			Str("Template", tmpl.Name()).
			Int("RowId", ctx.RowID).
			Msg("template execution failed")
		return "", false
	}
	return buf.String(), true
}

// TemplateFormatter renders the cell text with a sprig template. Failing rows render empty.
func TemplateFormatter(name, src string) (datatable.Formatter, error) {
	tmpl, err := parseTemplate(name, src)
	if err != nil {
		return nil, err
	}
	return func(row *datatable.Row, _ *datatable.Column, searchTerm string) datatable.Cell {
		s, ok := execTemplate(tmpl, newTemplateContext(row, searchTerm))
		if !ok {
			return datatable.Cell{}
		}
		return datatable.TextCell(s)
	}, nil
}

// TemplateValue resolves the search and filter value of a column with a template.
func TemplateValue(name, src string) (datatable.ValueFunc, error) {
	tmpl, err := parseTemplate(name, src)
	if err != nil {
		return nil, err
	}
	return func(row *datatable.Row) any {
		s, ok := execTemplate(tmpl, newTemplateContext(row, ""))
		if !ok {
			return nil
		}
		return s
	}, nil
}

// MaskFormatter renders the raw value through a go-masker function.
func MaskFormatter(kind string) (datatable.Formatter, error) {
	mask, err := MaskFunc(kind)
	if err != nil {
		return nil, err
	}
	return func(row *datatable.Row, col *datatable.Column, _ string) datatable.Cell {
		v, ok := row.Value(col.Key)
		if !ok {
			return datatable.Cell{}
		}
		return datatable.TextCell(mask(datatable.ValueCell(v).String()))
	}, nil
}
