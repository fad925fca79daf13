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

package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/pkg/datatable"
)

// Clipboard receives Markdown exports.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the clipboard of the desktop session (xclip, xsel, wl-copy, pbcopy or
// the Windows API).
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

var markdownEscaper = strings.NewReplacer(
	"|", "\\|",
	"\r\n", "<br>",
	"\n", "<br>",
	"\r", "<br>",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown writes the processed sequence as a GitHub flavored pipe table. It returns the number
// of data rows written.
func Markdown(w io.Writer, t *datatable.Table) (int, error) {
	header, records := Records(t)
	if len(header) == 0 {
		return 0, nil
	}
	for i := range header {
		header[i] = escapeMarkdown(header[i])
	}
	for _, rec := range records {
		for i := range rec {
			rec[i] = escapeMarkdown(rec[i])
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeader(header)
	table.AppendBulk(records)
	table.Render()
	return len(records), nil
}

// CopyMarkdown renders the Markdown table and places it on the clipboard.
func CopyMarkdown(cb Clipboard, t *datatable.Table) (int, error) {
	buf := &bytes.Buffer{}
	n, err := Markdown(buf, t)
	if err != nil {
		return 0, err
	}
	if err := cb.WriteAll(buf.String()); err != nil {
		return 0, fmt.Errorf("unable to copy markdown to clipboard: %w", err)
	}
	log.Debug().
		Str("TableName", t.Name()).
		Int("Rows", n).
		Msg("markdown export copied to clipboard")
	return n, nil
}
