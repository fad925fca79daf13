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
	"fmt"
	"slices"
	"strings"
)

const (
	ErrorValidationSeverity   = "error"
	WarningValidationSeverity = "warning"
	InfoValidationSeverity    = "info"
)

type ValidationWarnings []*ValidationWarning

func (re ValidationWarnings) IsFatal() bool {
	return slices.ContainsFunc(re, func(warning *ValidationWarning) bool {
		return warning.Severity == ErrorValidationSeverity
	})
}

func (re ValidationWarnings) Error() string {
	msgs := make([]string, 0, len(re))
	for _, w := range re {
		if w.Severity == ErrorValidationSeverity {
			msgs = append(msgs, w.String())
		}
	}
	return strings.Join(msgs, "; ")
}

type ValidationWarning struct {
	Msg       string         `json:"msg,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	ColumnKey string         `json:"columnKey,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func NewValidationWarning() *ValidationWarning {
	return &ValidationWarning{
		Severity: WarningValidationSeverity,
		Meta:     make(map[string]any),
	}
}

func (re *ValidationWarning) SetMsg(msg string) *ValidationWarning {
	re.Msg = msg
	return re
}

func (re *ValidationWarning) SetMsgf(msg string, args ...any) *ValidationWarning {
	re.Msg = fmt.Sprintf(msg, args...)
	return re
}

func (re *ValidationWarning) SetSeverity(severity string) *ValidationWarning {
	re.Severity = severity
	return re
}

func (re *ValidationWarning) SetColumn(key string) *ValidationWarning {
	re.ColumnKey = key
	return re
}

func (re *ValidationWarning) AddMeta(key string, value any) *ValidationWarning {
	re.Meta[key] = value
	return re
}

func (re *ValidationWarning) String() string {
	if re.ColumnKey != "" {
		return fmt.Sprintf("column \"%s\": %s", re.ColumnKey, re.Msg)
	}
	return re.Msg
}

// ValidateColumns checks a column set at configuration time.
func ValidateColumns(cols []*Column) ValidationWarnings {
	var warnings ValidationWarnings
	seen := make(map[string]int, len(cols))
	visible := 0
	for idx, c := range cols {
		if c == nil {
			warnings = append(warnings, NewValidationWarning().
				SetSeverity(ErrorValidationSeverity).
				AddMeta("Position", idx).
				SetMsg("column descriptor is nil"))
			continue
		}
		if c.Key == "" {
			warnings = append(warnings, NewValidationWarning().
				SetSeverity(ErrorValidationSeverity).
				AddMeta("Position", idx).
				SetMsg("column key cannot be empty"))
		} else if prev, ok := seen[c.Key]; ok {
			warnings = append(warnings, NewValidationWarning().
				SetSeverity(ErrorValidationSeverity).
				SetColumn(c.Key).
				AddMeta("Position", idx).
				AddMeta("PreviousPosition", prev).
				SetMsg("duplicate column key"))
		} else {
			seen[c.Key] = idx
		}
		if c.FilterType > FilterTypeDate {
			warnings = append(warnings, NewValidationWarning().
				SetSeverity(ErrorValidationSeverity).
				SetColumn(c.Key).
				AddMeta("FilterType", int(c.FilterType)).
				SetMsg("unknown filter type"))
		}
		if len(c.FilterOptions) > 0 && c.FilterType != FilterTypeSelect && c.FilterType != FilterTypeMultiSelect {
			warnings = append(warnings, NewValidationWarning().
				SetColumn(c.Key).
				AddMeta("FilterType", c.FilterType.String()).
				SetMsg("filter options are ignored for this filter type"))
		}
		if c.MaxWidth < 0 {
			warnings = append(warnings, NewValidationWarning().
				SetSeverity(ErrorValidationSeverity).
				SetColumn(c.Key).
				AddMeta("MaxWidth", c.MaxWidth).
				SetMsg("max width cannot be negative"))
		}
		if c.ShownByDefault() {
			visible++
		}
	}
	if len(cols) > 0 && visible == 0 {
		warnings = append(warnings, NewValidationWarning().
			SetSeverity(InfoValidationSeverity).
			SetMsg("all columns are hidden by default"))
	}
	return warnings
}
