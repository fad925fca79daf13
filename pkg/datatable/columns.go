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
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownColumn         = errors.New("unknown column")
	ErrColumnIndexOutOfRange = errors.New("column index out of range")
	ErrNoDragInProgress      = errors.New("no column drag in progress")
)

// MoveColumn removes the column at from and reinserts it at to. The input slice is not
// modified.
func MoveColumn(cols []*Column, from, to int) ([]*Column, error) {
	if from < 0 || from >= len(cols) || to < 0 || to >= len(cols) {
		return nil, fmt.Errorf("%w: move %d -> %d of %d", ErrColumnIndexOutOfRange, from, to, len(cols))
	}
	res := slices.Clone(cols)
	c := res[from]
	res = slices.Delete(res, from, from+1)
	res = slices.Insert(res, to, c)
	return res, nil
}

// HeaderCell is the horizontal geometry of a rendered header cell.
type HeaderCell struct {
	Left  float64
	Width float64
}

func (h HeaderCell) Midpoint() float64 {
	return h.Left + h.Width/2
}

// ColumnLayout is the view-side list of visible columns. It never changes the full column
// list it was created from.
type ColumnLayout struct {
	all     []*Column
	visible []*Column
	// dragging is the key of the dragged column, empty when no drag is in progress.
	dragging string
}

func NewColumnLayout(cols []*Column) *ColumnLayout {
	return &ColumnLayout{
		all:     slices.Clone(cols),
		visible: InitialVisibleColumns(cols),
	}
}

// All returns the full column list in its original order.
func (l *ColumnLayout) All() []*Column {
	return slices.Clone(l.all)
}

// Visible returns the visible columns in display order.
func (l *ColumnLayout) Visible() []*Column {
	return slices.Clone(l.visible)
}

func (l *ColumnLayout) IsVisible(key string) bool {
	idx, _ := findColumn(l.visible, key)
	return idx != -1
}

func (l *ColumnLayout) Move(from, to int) error {
	res, err := MoveColumn(l.visible, from, to)
	if err != nil {
		return err
	}
	l.visible = res
	return nil
}

// Show appends a hidden column at the end of the visible list.
func (l *ColumnLayout) Show(key string) error {
	_, c := findColumn(l.all, key)
	if c == nil {
		return fmt.Errorf("%w \"%s\"", ErrUnknownColumn, key)
	}
	if l.IsVisible(key) {
		return nil
	}
	l.visible = append(l.visible, c)
	return nil
}

func (l *ColumnLayout) Hide(key string) error {
	if idx, _ := findColumn(l.all, key); idx == -1 {
		return fmt.Errorf("%w \"%s\"", ErrUnknownColumn, key)
	}
	l.visible = slices.DeleteFunc(l.visible, func(c *Column) bool {
		return c.Key == key
	})
	return nil
}

func (l *ColumnLayout) Toggle(key string) error {
	if l.IsVisible(key) {
		return l.Hide(key)
	}
	return l.Show(key)
}

// SetOrder replaces the visible list by the given keys. Unknown keys are skipped.
func (l *ColumnLayout) SetOrder(keys []string) {
	res := make([]*Column, 0, len(keys))
	for _, k := range keys {
		if _, c := findColumn(l.all, k); c != nil && !slices.Contains(res, c) {
			res = append(res, c)
		}
	}
	l.visible = res
}

// Keys returns the visible column keys in display order.
func (l *ColumnLayout) Keys() []string {
	res := make([]string, len(l.visible))
	for i, c := range l.visible {
		res[i] = c.Key
	}
	return res
}

// BeginDrag starts dragging the visible column at index.
func (l *ColumnLayout) BeginDrag(index int) error {
	if index < 0 || index >= len(l.visible) {
		return fmt.Errorf("%w: drag %d of %d", ErrColumnIndexOutOfRange, index, len(l.visible))
	}
	l.dragging = l.visible[index].Key
	return nil
}

// dragIndex returns the current visible index of the dragged column. A column hidden during
// the drag ends the drag.
func (l *ColumnLayout) dragIndex() (int, error) {
	if l.dragging == "" {
		return -1, ErrNoDragInProgress
	}
	idx, _ := findColumn(l.visible, l.dragging)
	if idx == -1 {
		l.dragging = ""
		return -1, ErrNoDragInProgress
	}
	return idx, nil
}

// DragOver handles the pointer hovering the header cell at target. A rightward drag moves the
// column only once the pointer passed the target midpoint, a leftward drag only before it.
// It reports whether the column moved.
func (l *ColumnLayout) DragOver(target int, pointerX float64, cell HeaderCell) (bool, error) {
	from, err := l.dragIndex()
	if err != nil {
		return false, err
	}
	if target < 0 || target >= len(l.visible) {
		return false, fmt.Errorf("%w: drag over %d of %d", ErrColumnIndexOutOfRange, target, len(l.visible))
	}
	if target == from {
		return false, nil
	}
	mid := cell.Midpoint()
	if from < target && pointerX <= mid {
		return false, nil
	}
	if from > target && pointerX >= mid {
		return false, nil
	}
	if err := l.Move(from, target); err != nil {
		return false, err
	}
	return true, nil
}

// EndDrag finishes the drag and returns the final index of the dragged column.
func (l *ColumnLayout) EndDrag() (int, error) {
	idx, err := l.dragIndex()
	if err != nil {
		return -1, err
	}
	l.dragging = ""
	return idx, nil
}
