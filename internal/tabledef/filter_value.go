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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/xhit/go-str2duration/v2"

	"github.com/dokuly/datatable/pkg/datatable"
)

// RangeSeparator separates the bounds of number and date filter values: "6..", "..10",
// "2024-01-01..now".
const RangeSeparator = ".."

// ParseFilterValue parses the textual form of a filter value for the column filter type.
//
//	text, select   the raw string
//	multiselect    comma separated values
//	number         "min..max", "min..", "..max" or an exact "n"
//	date           "from..to" bounds, or a single day; a bound is any date format, "now",
//	               "today" or a duration relative to now such as "-7d" or "+2w"
func ParseFilterValue(col *datatable.Column, raw string, now time.Time) (datatable.FilterValue, error) {
	raw = strings.TrimSpace(raw)
	switch col.FilterType {
	case datatable.FilterTypeText:
		return datatable.TextFilter(raw), nil
	case datatable.FilterTypeSelect:
		return datatable.SelectFilter(raw), nil
	case datatable.FilterTypeMultiSelect:
		var values datatable.MultiSelectFilter
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return values, nil
	case datatable.FilterTypeNumber:
		return parseNumberRange(raw)
	case datatable.FilterTypeDate:
		return parseDateRange(raw, now)
	}
	return nil, fmt.Errorf("unsupported filter type %s", col.FilterType)
}

func splitRange(raw string) (string, string, bool) {
	from, to, found := strings.Cut(raw, RangeSeparator)
	return strings.TrimSpace(from), strings.TrimSpace(to), found
}

func parseNumberRange(raw string) (datatable.FilterValue, error) {
	if raw == "" {
		return datatable.NumberRange{}, nil
	}
	from, to, isRange := splitRange(raw)
	if !isRange {
		d, err := decimal.NewFromString(from)
		if err != nil {
			return nil, fmt.Errorf("invalid number \"%s\": %w", from, err)
		}
		return datatable.NumberRange{Min: &d, Max: &d}, nil
	}
	var res datatable.NumberRange
	if from != "" {
		d, err := decimal.NewFromString(from)
		if err != nil {
			return nil, fmt.Errorf("invalid lower bound \"%s\": %w", from, err)
		}
		res.Min = &d
	}
	if to != "" {
		d, err := decimal.NewFromString(to)
		if err != nil {
			return nil, fmt.Errorf("invalid upper bound \"%s\": %w", to, err)
		}
		res.Max = &d
	}
	if res.Min != nil && res.Max != nil && res.Min.GreaterThan(*res.Max) {
		return nil, errors.New("lower bound is greater than upper bound")
	}
	return res, nil
}

func parseDateRange(raw string, now time.Time) (datatable.FilterValue, error) {
	if raw == "" {
		return datatable.DateRange{}, nil
	}
	from, to, isRange := splitRange(raw)
	if !isRange {
		d, err := parseDateBound(from, now)
		if err != nil {
			return nil, err
		}
		return datatable.DateRange{From: &d, To: &d}, nil
	}
	var res datatable.DateRange
	if from != "" {
		d, err := parseDateBound(from, now)
		if err != nil {
			return nil, fmt.Errorf("invalid lower bound: %w", err)
		}
		res.From = &d
	}
	if to != "" {
		d, err := parseDateBound(to, now)
		if err != nil {
			return nil, fmt.Errorf("invalid upper bound: %w", err)
		}
		res.To = &d
	}
	return res, nil
}

func parseDateBound(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(s) {
	case "now", "today":
		return now, nil
	}
	if s[0] == '-' || s[0] == '+' {
		d, err := str2duration.ParseDuration(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date \"%s\": %w", s, err)
		}
		return now.Add(d), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date \"%s\": %w", s, err)
	}
	return t, nil
}
