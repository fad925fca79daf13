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

package session

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/pkg/datatable"
)

// ViewFlags are the command line flags describing a table view.
type ViewFlags struct {
	Table   string
	Search  string
	Sort    string
	Order   string
	Page    int
	PerPage int
	Filters []string
	Expand  []string
	Columns []string
}

// AddViewFlags registers the view flags on the command.
func AddViewFlags(cmd *cobra.Command) *ViewFlags {
	f := &ViewFlags{}
	flags := cmd.Flags()
	flags.StringVarP(&f.Table, "table", "t", "", "table name, may be omitted when only one table is configured")
	flags.StringVarP(&f.Search, "search", "s", "", "global search, comma separated terms must all match")
	flags.StringVarP(&f.Sort, "sort", "", "", "sort column key")
	flags.StringVarP(&f.Order, "order", "", "asc", "sort order [asc|desc]")
	flags.IntVarP(&f.Page, "page", "p", 1, "page number")
	flags.IntVarP(&f.PerPage, "per-page", "", 0, "rows per page, overrides the table items_per_page")
	flags.StringArrayVarP(&f.Filters, "filter", "f", nil,
		"column filter as key=value, number and date ranges use min..max")
	flags.StringSliceVarP(&f.Expand, "expand", "", nil,
		fmt.Sprintf("record ids to expand in tree mode or \"%s\"", tabledef.ExpandAll))
	flags.StringSliceVarP(&f.Columns, "columns", "c", nil, "visible columns in display order")
	return f
}

func (f *ViewFlags) View() (tabledef.View, error) {
	order, err := datatable.ParseSortOrder(f.Order)
	if err != nil {
		return tabledef.View{}, err
	}
	filters, err := ParseFilterFlags(f.Filters)
	if err != nil {
		return tabledef.View{}, err
	}
	return tabledef.View{
		Search:  f.Search,
		SortKey: f.Sort,
		Order:   order,
		Page:    f.Page,
		Filters: filters,
		Expand:  f.Expand,
		Columns: f.Columns,
	}, nil
}

func (f *ViewFlags) BuildOptions() tabledef.BuildOptions {
	return tabledef.BuildOptions{ItemsPerPage: f.PerPage}
}

// ParseFilterFlags splits key=value pairs on the first equal sign.
func ParseFilterFlags(values []string) (map[string]string, error) {
	res := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter \"%s\": expected key=value", v)
		}
		res[key] = value
	}
	return res, nil
}
