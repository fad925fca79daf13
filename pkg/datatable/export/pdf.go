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
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	stringsutils "github.com/dokuly/datatable/internal/utils/strings"
	"github.com/dokuly/datatable/pkg/datatable"
)

const (
	DefaultPDFMarginMM  = 10.0
	DefaultPDFDPI       = 96.0
	DefaultPDFFontScale = 2
	DefaultJPEGQuality  = 90
	DefaultPDFCellChars = 40

	mmPerInch   = 25.4
	cellPadding = 3
)

var (
	stripBackground  color.Color = color.White
	headerBackground color.Color = color.Gray{Y: 0xe6}
	gridColor        color.Color = color.Gray{Y: 0xbf}
)

// Strip is one row of the rendered table.
type Strip struct {
	Cells  []string
	Header bool
}

// Rasterizer renders a strip into an image. The PDF places strips top to bottom in the order
// they are produced.
type Rasterizer interface {
	Rasterize(ctx context.Context, s Strip) (image.Image, error)
}

type PDFOptions struct {
	MarginMM    float64
	DPI         float64
	FontScale   int
	JPEGQuality int
	// CellChars caps the column width in characters; longer text is wrapped.
	CellChars int
	// AllRows renders the whole processed sequence instead of the current page.
	AllRows    bool
	Rasterizer Rasterizer
	// Progress is called after every placed row.
	Progress func(done, total int)
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.MarginMM <= 0 {
		o.MarginMM = DefaultPDFMarginMM
	}
	if o.DPI <= 0 {
		o.DPI = DefaultPDFDPI
	}
	if o.FontScale <= 0 {
		o.FontScale = DefaultPDFFontScale
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.CellChars <= 0 {
		o.CellChars = DefaultPDFCellChars
	}
	return o
}

// PDFResult describes a finished PDF export.
type PDFResult struct {
	Pages int
	Rows  int
}

// PDF renders the displayed rows over the visible columns into an A4 document, one JPEG strip
// per row. A new page starts when the next strip does not fit the printable height. Only one
// export per table runs at a time, a concurrent call fails with ErrExportInProgress.
func PDF(ctx context.Context, w io.Writer, t *datatable.Table, opts PDFOptions) (PDFResult, error) {
	release, err := t.TryLockExport()
	if err != nil {
		return PDFResult{}, err
	}
	defer release()
	opts = opts.withDefaults()

	cols := t.VisibleColumns()
	var rows []*datatable.Row
	if opts.AllRows {
		rows = t.Processed()
	} else {
		rows = t.CurrentPage().Rows
	}
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title()
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = DisplayCells(t, r, cols, ASCIIMarkers, "...")
	}
	rasterizer := opts.Rasterizer
	if rasterizer == nil {
		rasterizer = NewTextRasterizer(header, cells, opts.CellChars, opts.FontScale)
	}

	doc := newPDFDocument(t.Name(), opts)
	if len(cols) > 0 {
		if err := doc.placeStrip(ctx, rasterizer, Strip{Cells: header, Header: true}); err != nil {
			return PDFResult{}, fmt.Errorf("unable to render header: %w", err)
		}
	}
	for idx, rowCells := range cells {
		if err := ctx.Err(); err != nil {
			return PDFResult{}, err
		}
		if err := doc.placeStrip(ctx, rasterizer, Strip{Cells: rowCells}); err != nil {
			return PDFResult{}, fmt.Errorf("unable to render row %d: %w", rows[idx].ID, err)
		}
		if opts.Progress != nil {
			opts.Progress(idx+1, len(cells))
		}
	}

	if err := doc.pdf.Output(w); err != nil {
		return PDFResult{}, fmt.Errorf("unable to write pdf: %w", err)
	}
	res := PDFResult{Pages: doc.pdf.PageCount(), Rows: len(rows)}
	log.Debug().
		Str("TableName", t.Name()).
		Int("Rows", res.Rows).
		Int("Pages", res.Pages).
		Msg("pdf export written")
	return res, nil
}

type pdfDocument struct {
	pdf       *fpdf.Fpdf
	opts      PDFOptions
	width     float64
	top       float64
	bottom    float64
	y         float64
	stripSeq  int
	pageEmpty bool
}

func newPDFDocument(title string, opts PDFOptions) *pdfDocument {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(opts.MarginMM, opts.MarginMM, opts.MarginMM)
	pdf.SetAutoPageBreak(false, opts.MarginMM)
	pdf.SetCreator("datatable", true)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	return &pdfDocument{
		pdf:       pdf,
		opts:      opts,
		width:     pageW - 2*opts.MarginMM,
		top:       opts.MarginMM,
		bottom:    pageH - opts.MarginMM,
		y:         opts.MarginMM,
		pageEmpty: true,
	}
}

func (d *pdfDocument) placeStrip(ctx context.Context, r Rasterizer, s Strip) error {
	img, err := r.Rasterize(ctx, s)
	if err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: d.opts.JPEGQuality}); err != nil {
		return fmt.Errorf("unable to encode strip: %w", err)
	}

	b := img.Bounds()
	wmm := float64(b.Dx()) * mmPerInch / d.opts.DPI
	hmm := float64(b.Dy()) * mmPerInch / d.opts.DPI
	if wmm > d.width {
		hmm *= d.width / wmm
		wmm = d.width
	}
	if pageHeight := d.bottom - d.top; hmm > pageHeight {
		wmm *= pageHeight / hmm
		hmm = pageHeight
	}
	if d.y+hmm > d.bottom && !d.pageEmpty {
		d.pdf.AddPage()
		d.y = d.top
	}

	d.stripSeq++
	name := fmt.Sprintf("strip-%d", d.stripSeq)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	d.pdf.RegisterImageOptionsReader(name, opts, buf)
	d.pdf.ImageOptions(name, d.opts.MarginMM, d.y, wmm, hmm, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("unable to place strip: %w", err)
	}
	d.y += hmm
	d.pageEmpty = false
	return nil
}

// TextRasterizer draws strips with a fixed width bitmap font. Every strip shares the same
// column widths so the strips line up into a grid.
type TextRasterizer struct {
	face   *basicfont.Face
	widths []int
	scale  int
}

// NewTextRasterizer sizes the columns to the widest cell, capped at cellChars characters.
func NewTextRasterizer(header []string, rows [][]string, cellChars, scale int) *TextRasterizer {
	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i := range widths {
			if i >= len(cells) {
				break
			}
			for _, line := range stringsutils.WrapLines(cells[i], 0) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(line), cellChars))
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}
	for i := range widths {
		widths[i] = max(widths[i], 1)
	}
	return &TextRasterizer{
		face:   basicfont.Face7x13,
		widths: widths,
		scale:  max(scale, 1),
	}
}

func (tr *TextRasterizer) Rasterize(ctx context.Context, s Strip) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines := make([][]string, len(tr.widths))
	height := 1
	for i, w := range tr.widths {
		var cell string
		if i < len(s.Cells) {
			cell = s.Cells[i]
		}
		lines[i] = stringsutils.WrapLines(cell, w)
		height = max(height, len(lines[i]))
	}

	advance := tr.face.Advance
	width := 1
	for _, w := range tr.widths {
		width += w*advance + 2*cellPadding + 1
	}
	px := image.Rect(0, 0, width, height*tr.face.Height+2*cellPadding+1)
	img := image.NewRGBA(px)
	bg := stripBackground
	if s.Header {
		bg = headerBackground
	}
	draw.Draw(img, px, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	grid := &image.Uniform{C: gridColor}
	draw.Draw(img, image.Rect(0, 0, width, 1), grid, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, px.Max.Y-1, width, px.Max.Y), grid, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 1, px.Max.Y), grid, image.Point{}, draw.Src)

	x := 1
	d := &font.Drawer{Dst: img, Src: image.Black, Face: tr.face}
	for i, w := range tr.widths {
		for n, line := range lines[i] {
			d.Dot = fixed.P(x+cellPadding, cellPadding+tr.face.Ascent+n*tr.face.Height)
			d.DrawString(line)
		}
		x += w*advance + 2*cellPadding
		draw.Draw(img, image.Rect(x, 0, x+1, px.Max.Y), grid, image.Point{}, draw.Src)
		x++
	}

	if tr.scale == 1 {
		return img, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, px.Dx()*tr.scale, px.Dy()*tr.scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, px, draw.Src, nil)
	return scaled, nil
}
