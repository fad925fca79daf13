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
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellNode
)

// Node is a reference to a rendered element. Text holds its textual children which is what
// text exports use.
type Node struct {
	Text string
	Ref  any
}

// Cell is the result of a formatter.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Node   *Node
}

func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

func NodeCell(n *Node) Cell {
	if n == nil {
		return Cell{}
	}
	return Cell{Kind: CellNode, Node: n}
}

// String returns the textual form of the cell.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellNode:
		if c.Node == nil {
			return ""
		}
		return c.Node.Text
	case CellEmpty:
		return ""
	}
	panic(fmt.Sprintf("unknown cell kind %d", c.Kind))
}

// ValueCell converts a raw record value into a cell. Objects and arrays are JSON encoded.
func ValueCell(v any) Cell {
	switch vv := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return vv
	case *Node:
		return NodeCell(vv)
	case string:
		return TextCell(vv)
	case float64:
		return NumberCell(vv)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return NumberCell(cast.ToFloat64(vv))
	case json.Number:
		return TextCell(vv.String())
	case decimal.Decimal:
		return TextCell(vv.String())
	case time.Time:
		return TextCell(vv.Format(time.RFC3339))
	case bool:
		return TextCell(strconv.FormatBool(vv))
	case map[string]any, []any, Record:
		data, err := json.Marshal(vv)
		if err != nil {
			return TextCell(fmt.Sprintf("%v", vv))
		}
		return TextCell(string(data))
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return TextCell(fmt.Sprintf("%v", v))
		}
		return TextCell(string(data))
	}
	return TextCell(s)
}
