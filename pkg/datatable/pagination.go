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

// Page is one slice of the processed sequence. Number is 1-based.
type Page struct {
	Rows       []*Row
	Number     int
	Size       int
	Total      int
	TotalPages int
}

func (p Page) HasPrev() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// TotalPages is ceil(total/size) with a minimum of one page. A non-positive size means a single
// page holding everything.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage keeps the page number inside [1, TotalPages].
func ClampPage(page, total, size int) int {
	if page < 1 {
		return 1
	}
	if n := TotalPages(total, size); page > n {
		return n
	}
	return page
}

// Paginate slices rows into the requested page. Out of range pages are clamped.
func Paginate(rows []*Row, page, size int) Page {
	total := len(rows)
	page = ClampPage(page, total, size)
	p := Page{
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}
	if size <= 0 {
		p.Rows = rows
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}
	p.Rows = rows[start:end]
	return p
}
