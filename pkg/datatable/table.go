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

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const DefaultTableName = "table_data"

var (
	ErrUnknownRow        = errors.New("unknown row")
	ErrExportInProgress  = errors.New("export already in progress")
	ErrNoLayoutSaver     = errors.New("layout saver is not configured")
	ErrContextMenuNotSet = errors.New("context menu is not enabled")
)

// DefaultSort selects the initial sort by position in the column list.
type DefaultSort struct {
	ColumnNumber int
	Order        SortOrder
}

// Event is the interaction that triggered a row callback.
type Event struct {
	Type      string
	Button    int
	X, Y      float64
	Modifiers []string
}

type RowEventHandler func(rowID int, row *Row, ev Event)

// ContextMenuAction is a right-click menu entry.
type ContextMenuAction struct {
	Label   string
	Handler RowEventHandler
}

// BoundAction is a context menu action bound to the row it was opened for.
type BoundAction struct {
	Label string
	run   func()
}

func (a BoundAction) Run() {
	a.run()
}

// Features lists the optional UI regions a renderer should show.
type Features struct {
	ColumnSelector bool
	CSVDownload    bool
	Pagination     bool
	Search         bool
}

// Options is the construction surface of a table.
type Options struct {
	Data         []Record
	Columns      []*Column
	TableName    string
	ItemsPerPage int

	Features Features

	NavigateColumn bool
	OnNavigate     RowEventHandler

	DefaultSort *DefaultSort

	IDKey       string
	ParentIDKey string
	TreeData    bool

	OnRowClick       RowEventHandler
	OnRowDoubleClick RowEventHandler

	ContextMenuActions []ContextMenuAction
	UseOnRightClick    bool

	// Where is an optional expression every row must satisfy.
	Where string

	OnSaveLayout LayoutSaver
}

// Table holds the view state of one data load: filters, search, sort, expansion, page and
// column layout. It is driven by a single UI event loop and is not safe for concurrent use,
// except TryLockExport.
type Table struct {
	opts     Options
	columns  []*Column
	model    *Model
	layout   *ColumnLayout
	where    *WhereCond
	filters  FilterState
	search   string
	sort     SortState
	expanded ExpansionState
	page     int
	export   *semaphore.Weighted
}

// New validates the configuration and builds the table.
func New(opts Options) (*Table, error) {
	cols := append([]*Column{}, opts.Columns...)
	if opts.NavigateColumn {
		cols = append(cols, &Column{
			Key:            NavigateColumnKey,
			NotFilterable:  true,
			ExcludeFromCSV: true,
			SortFunction:   func(a, b *Row, order SortOrder) int { return 0 },
			Formatter: func(row *Row, col *Column, searchTerm string) Cell {
				return TextCell("→")
			},
		})
	}
	if warnings := ValidateColumns(cols); warnings.IsFatal() {
		return nil, fmt.Errorf("invalid column configuration: %w", warnings)
	}
	if opts.ItemsPerPage < 0 {
		return nil, fmt.Errorf("items per page cannot be negative: %d", opts.ItemsPerPage)
	}
	if opts.DefaultSort != nil && (opts.DefaultSort.ColumnNumber < 0 || opts.DefaultSort.ColumnNumber >= len(opts.Columns)) {
		return nil, fmt.Errorf(
			"%w: default sort column %d of %d", ErrColumnIndexOutOfRange, opts.DefaultSort.ColumnNumber, len(opts.Columns),
		)
	}
	where, err := NewWhereCond(opts.Where)
	if err != nil {
		return nil, err
	}

	t := &Table{
		opts:    opts,
		columns: cols,
		layout:  NewColumnLayout(cols),
		where:   where,
		export:  semaphore.NewWeighted(1),
	}
	t.SetData(opts.Data)
	return t, nil
}

// Name is the export file name stem.
func (t *Table) Name() string {
	if t.opts.TableName == "" {
		return DefaultTableName
	}
	return t.opts.TableName
}

func (t *Table) Features() Features {
	return t.opts.Features
}

func (t *Table) TreeData() bool {
	return t.opts.TreeData
}

func (t *Table) ItemsPerPage() int {
	return t.opts.ItemsPerPage
}

// SetData replaces the data load. Row ids and hierarchy maps are rebuilt, filters, search,
// expansion and page are reset and the sort returns to the default sort.
func (t *Table) SetData(data []Record) {
	t.model = BuildModel(data, t.opts.IDKey, t.opts.ParentIDKey)
	t.filters = make(FilterState)
	t.search = ""
	t.expanded = make(ExpansionState)
	t.page = 1
	t.sort = SortState{}
	if ds := t.opts.DefaultSort; ds != nil {
		t.sort = SortState{Column: t.opts.Columns[ds.ColumnNumber], Order: ds.Order}
	}
	log.Debug().
		Str("TableName", t.Name()).
		Int("Rows", len(t.model.Rows)).
		Int("Parents", len(t.model.ParentMap)).
		Msg("table data loaded")
}

func (t *Table) Model() *Model {
	return t.model
}

// Rows returns every annotated row in input order.
func (t *Table) Rows() []*Row {
	return t.model.Rows
}

func (t *Table) Row(rowID int) (*Row, error) {
	if rowID < 0 || rowID >= len(t.model.Rows) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRow, rowID)
	}
	return t.model.Rows[rowID], nil
}

// Columns returns the full column list including the synthetic navigate column.
func (t *Table) Columns() []*Column {
	return append([]*Column{}, t.columns...)
}

func (t *Table) Column(key string) (*Column, error) {
	_, c := findColumn(t.columns, key)
	if c == nil {
		return nil, fmt.Errorf("%w \"%s\"", ErrUnknownColumn, key)
	}
	return c, nil
}

func (t *Table) Layout() *ColumnLayout {
	return t.layout
}

func (t *Table) VisibleColumns() []*Column {
	return t.layout.Visible()
}

func (t *Table) Search() string {
	return t.search
}

func (t *Table) SetSearch(search string) {
	if search != t.search {
		t.page = 1
	}
	t.search = search
}

func (t *Table) Filters() FilterState {
	return t.filters.Clone()
}

// SetFilter sets the filter of a column. An empty value removes it.
func (t *Table) SetFilter(key string, v FilterValue) error {
	c, err := t.Column(key)
	if err != nil {
		return err
	}
	if err := CheckFilterValue(c, v); err != nil {
		return err
	}
	if isEmptyFilter(v) {
		delete(t.filters, key)
	} else {
		t.filters[key] = v
	}
	t.page = 1
	return nil
}

func (t *Table) ClearFilter(key string) {
	delete(t.filters, key)
	t.page = 1
}

func (t *Table) ClearFilters() {
	t.filters = make(FilterState)
	t.page = 1
}

// FilterOptions returns the choices of a select or multiselect column.
func (t *Table) FilterOptions(key string) ([]string, error) {
	c, err := t.Column(key)
	if err != nil {
		return nil, err
	}
	return FilterOptions(t.model.Rows, c), nil
}

func (t *Table) Sort() SortState {
	return t.sort
}

// SortBy toggles the sort on the column.
func (t *Table) SortBy(key string) error {
	c, err := t.Column(key)
	if err != nil {
		return err
	}
	t.sort = t.sort.Toggle(c)
	return nil
}

// SetSort sets the sort column and order directly. An empty key removes the sort.
func (t *Table) SetSort(key string, order SortOrder) error {
	if key == "" {
		t.sort = SortState{}
		return nil
	}
	c, err := t.Column(key)
	if err != nil {
		return err
	}
	t.sort = SortState{Column: c, Order: order}
	return nil
}

func (t *Table) IsExpanded(id any) bool {
	k, ok := NormalizeID(id)
	return ok && t.expanded[k]
}

// ToggleExpanded flips the expansion of one node.
func (t *Table) ToggleExpanded(id any) {
	if k, ok := NormalizeID(id); ok {
		t.expanded.Toggle(k)
	}
}

func (t *Table) SetExpanded(id any, expanded bool) {
	if k, ok := NormalizeID(id); ok {
		t.expanded[k] = expanded
	}
}

// ExpandAll expands every row that has children.
func (t *Table) ExpandAll() {
	for k := range t.model.ParentMap {
		t.expanded[k] = true
	}
}

func (t *Table) CollapseAll() {
	t.expanded = make(ExpansionState)
}

// Processed returns the filtered, sorted and, in tree mode, flattened sequence. Exports use it
// as it does not depend on the page.
func (t *Table) Processed() []*Row {
	rows := FilterRows(t.model.Rows, t.columns, t.filters, t.search, t.where.Predicate())
	if !t.opts.TreeData {
		return SortRows(rows, t.sort)
	}
	return t.model.Flatten(t.model.Roots(rows), t.expanded, t.sort)
}

func (t *Table) PageNumber() int {
	return t.page
}

// CurrentPage returns the current page of the processed sequence.
func (t *Table) CurrentPage() Page {
	p := Paginate(t.Processed(), t.page, t.opts.ItemsPerPage)
	t.page = p.Number
	return p
}

// SetPage moves to the page, clamped to the available pages.
func (t *Table) SetPage(page int) {
	t.page = ClampPage(page, len(t.Processed()), t.opts.ItemsPerPage)
}

func (t *Table) NextPage() {
	t.SetPage(t.page + 1)
}

func (t *Table) PrevPage() {
	t.SetPage(t.page - 1)
}

func (t *Table) Click(rowID int, ev Event) error {
	return t.dispatch(t.opts.OnRowClick, rowID, ev)
}

func (t *Table) DoubleClick(rowID int, ev Event) error {
	return t.dispatch(t.opts.OnRowDoubleClick, rowID, ev)
}

func (t *Table) Navigate(rowID int, ev Event) error {
	return t.dispatch(t.opts.OnNavigate, rowID, ev)
}

func (t *Table) dispatch(h RowEventHandler, rowID int, ev Event) error {
	r, err := t.Row(rowID)
	if err != nil {
		return err
	}
	if h != nil {
		h(rowID, r, ev)
	}
	return nil
}

// ContextMenu returns the right-click actions bound to the row.
func (t *Table) ContextMenu(rowID int, ev Event) ([]BoundAction, error) {
	if !t.opts.UseOnRightClick {
		return nil, ErrContextMenuNotSet
	}
	r, err := t.Row(rowID)
	if err != nil {
		return nil, err
	}
	res := make([]BoundAction, 0, len(t.opts.ContextMenuActions))
	for _, a := range t.opts.ContextMenuActions {
		h := a.Handler
		res = append(res, BoundAction{
			Label: a.Label,
			run: func() {
				if h != nil {
					h(rowID, r, ev)
				}
			},
		})
	}
	return res, nil
}

// CurrentLayout returns the visible column arrangement.
func (t *Table) CurrentLayout() Layout {
	return Layout{Table: t.Name(), Columns: t.layout.Keys()}
}

// ApplyLayout restores a saved arrangement. Unknown keys are ignored.
func (t *Table) ApplyLayout(l Layout) {
	t.layout.SetOrder(l.Columns)
}

// SaveLayout hands the current arrangement to the configured saver.
func (t *Table) SaveLayout() error {
	if t.opts.OnSaveLayout == nil {
		return ErrNoLayoutSaver
	}
	if err := t.opts.OnSaveLayout(t.CurrentLayout()); err != nil {
		return fmt.Errorf("unable to save layout: %w", err)
	}
	return nil
}

// TryLockExport reserves the single export slot of the table. The returned function releases
// it.
func (t *Table) TryLockExport() (func(), error) {
	if !t.export.TryAcquire(1) {
		return nil, ErrExportInProgress
	}
	return func() { t.export.Release(1) }, nil
}
