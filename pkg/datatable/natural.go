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
	"strings"

	"github.com/shopspring/decimal"
)

// NaturalCompare compares strings splitting them into runs of digits and non-digits. Digit
// runs are compared as integers of arbitrary length, other runs lexicographically and
// case-insensitively. The operand with fewer tokens sorts first when all shared tokens are
// equal.
func NaturalCompare(a, b string) int {
	ta := tokenize(strings.ToLower(a))
	tb := tokenize(strings.ToLower(b))
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		if isDigitRun(x) && isDigitRun(y) {
			if c := compareDigitRuns(x, y); c != 0 {
				return c
			}
			continue
		}
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	}
	return 0
}

func tokenize(s string) []string {
	var tokens []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[i-1]) {
			tokens = append(tokens, s[start:i])
			start = i
		}
	}
	return tokens
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigitRun(s string) bool {
	return len(s) > 0 && isDigit(s[0])
}

func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

// CompareValues is the default comparator. Missing values compare equal to anything. Two
// numeric values are compared as numbers, everything else with NaturalCompare over the
// stringified values.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		return 0
	}
	if isNumeric(a) && isNumeric(b) {
		da, okA := toDecimal(a)
		db, okB := toDecimal(b)
		if okA && okB {
			return da.Cmp(db)
		}
	}
	sa, okA := stringify(a)
	sb, okB := stringify(b)
	if !okA || !okB {
		return 0
	}
	return NaturalCompare(sa, sb)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, decimal.Decimal:
		return true
	}
	return false
}
