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

package datatable

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// NormalizeID converts an identity value into a map key. JSON numbers (float64) and strings
// holding the same digits map to the same key. Falsy values (nil, "", 0, false) and non-finite
// numbers are absent.
func NormalizeID(v any) (string, bool) {
	switch vv := v.(type) {
	case nil:
		return "", false
	case bool:
		if !vv {
			return "", false
		}
	case string:
		if vv == "" {
			return "", false
		}
		return vv, true
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		if f == 0 || !isFinite(f) {
			return "", false
		}
		return decimal.NewFromFloat(f).String(), true
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// stringify renders a resolved value for search and select matching. Arrays are joined with
// commas, objects are JSON encoded.
func stringify(v any) (string, bool) {
	switch vv := v.(type) {
	case nil:
		return "", false
	case []any:
		parts := make([]string, 0, len(vv))
		for _, item := range vv {
			s, _ := stringify(item)
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	case []string:
		return strings.Join(vv, ","), true
	case map[string]any, Record:
		data, err := json.Marshal(vv)
		if err != nil {
			return "", false
		}
		return string(data), true
	case Cell:
		return vv.String(), true
	}
	return ValueCell(v).String(), true
}

// flatten returns the elements of an array value or the value itself.
func flatten(v any) []any {
	switch vv := v.(type) {
	case []any:
		return vv
	case []string:
		res := make([]any, len(vv))
		for i := range vv {
			res[i] = vv[i]
		}
		return res
	}
	return []any{v}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch vv := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return vv, true
	case float64:
		if !isFinite(vv) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(vv), true
	case float32:
		if !isFinite(float64(vv)) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(vv), true
	case json.Number:
		d, err := decimal.NewFromString(vv.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(vv))
		return d, err == nil
	case bool:
		return decimal.Decimal{}, false
	}
	i, err := cast.ToInt64E(v)
	if err == nil {
		return decimal.NewFromInt(i), true
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || !isFinite(f) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

// isFinite reports whether f can be held by a decimal. NaN and infinities cannot.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toDate(v any) (time.Time, bool) {
	switch vv := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return calendarDate(vv), true
	case *time.Time:
		if vv == nil {
			return time.Time{}, false
		}
		return calendarDate(*vv), true
	case string:
		if strings.TrimSpace(vv) == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseAny(strings.TrimSpace(vv))
		if err != nil {
			return time.Time{}, false
		}
		return calendarDate(t), true
	}
	return time.Time{}, false
}

// calendarDate drops the clock part keeping the date as written in its own location.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
