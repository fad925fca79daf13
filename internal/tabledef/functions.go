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
	"fmt"
	"maps"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/ggwhite/go-masker"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/dokuly/datatable/pkg/datatable"
)

const (
	MPassword   string = "password"
	MName       string = "name"
	MAddress    string = "addr"
	MEmail      string = "email"
	MMobile     string = "mobile"
	MTelephone  string = "tel"
	MID         string = "id"
	MCreditCard string = "credit_card"
	MURL        string = "url"
	MHash       string = "hash"
	MDefault    string = "default"
)

// FuncMap returns the sprig functions extended with the table helpers.
func FuncMap() template.FuncMap {
	functions := template.FuncMap{
		"masking":    masking,
		"jsonGet":    jsonGet,
		"formatDate": formatDate,
		"isNil":      isNil,
		"cell":       cellText,
		"pseudonym":  pseudonym,
	}
	tm := make(template.FuncMap)
	maps.Copy(tm, sprig.TxtFuncMap())
	maps.Copy(tm, functions)
	return tm
}

// MaskFunc returns the go-masker function of the kind.
func MaskFunc(kind string) (func(string) string, error) {
	m := &masker.Masker{}
	switch kind {
	case MPassword:
		return m.Password, nil
	case MName:
		return m.Name, nil
	case MAddress:
		return m.Address, nil
	case MEmail:
		return m.Email, nil
	case MMobile:
		return m.Mobile, nil
	case MID:
		return m.ID, nil
	case MTelephone:
		return m.Telephone, nil
	case MCreditCard:
		return m.CreditCard, nil
	case MURL:
		return m.URL, nil
	case MDefault:
		return defaultMasker, nil
	case MHash:
		return func(v string) string {
			return Pseudonym("", v)
		}, nil
	}
	return nil, fmt.Errorf("wrong mask type \"%s\"", kind)
}

func masking(kind string, v any) (string, error) {
	f, err := MaskFunc(kind)
	if err != nil {
		return "", err
	}
	return f(cast.ToString(v)), nil
}

func defaultMasker(v string) string {
	return strings.Repeat("*", len([]rune(v)))
}

// jsonGet reads a gjson path from a record or a JSON string.
func jsonGet(path string, data any) any {
	switch v := data.(type) {
	case string:
		return gjson.Get(v, path).Value()
	case datatable.Record:
		r := &datatable.Row{Record: v}
		res, _ := r.Value(path)
		return res
	case map[string]any:
		r := &datatable.Row{Record: v}
		res, _ := r.Value(path)
		return res
	}
	return nil
}

func formatDate(layout string, v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return t.Format(layout), nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

func isNil(v any) bool {
	return v == nil
}

func cellText(v any) string {
	return datatable.ValueCell(v).String()
}
