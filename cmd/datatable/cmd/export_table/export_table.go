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

package export_table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/session"
	"github.com/dokuly/datatable/internal/storages"
	"github.com/dokuly/datatable/internal/utils"
	"github.com/dokuly/datatable/internal/utils/ioutils"
	"github.com/dokuly/datatable/internal/utils/logger"
	"github.com/dokuly/datatable/pkg/datatable"
	"github.com/dokuly/datatable/pkg/datatable/export"
)

const (
	exportsDir = "exports"
	stdoutPath = "-"
)

var errClipboardFormat = errors.New("only markdown can be copied to the clipboard")

var (
	Cmd = &cobra.Command{
		Use:   "export",
		Short: "export the processed rows of a table to csv, markdown or pdf",
		Long: "Exports the rows after search, filters, sort and tree flattening. CSV and Markdown " +
			"contain every exported column and all rows, PDF renders the visible columns of the " +
			"current page unless --all-rows is set. The result is written to stdout, a file, the " +
			"configured storage or, for markdown, the clipboard",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := run(ctx); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config    = domains.NewConfig()
	viewFlags *session.ViewFlags
	params    = &Params{}
)

// Params are the export destination options.
type Params struct {
	Format    string
	Output    string
	ToStorage bool
	Clipboard bool
	AllRows   bool
	Progress  bool
}

func init() {
	viewFlags = session.AddViewFlags(Cmd)
	Cmd.Flags().StringVarP(&params.Format, "format", "F", string(export.FormatCSV), "export format [csv|md|pdf]")
	Cmd.Flags().StringVarP(&params.Output, "output", "o", stdoutPath, "output file, - for stdout")
	Cmd.Flags().BoolVarP(&params.ToStorage, "to-storage", "", false,
		"store the export in the configured storage under exports/<export id>/")
	Cmd.Flags().BoolVarP(&params.Clipboard, "clipboard", "", false, "copy the markdown table to the clipboard")
	Cmd.Flags().BoolVarP(&params.AllRows, "all-rows", "", false, "render every processed row into the pdf")
	Cmd.Flags().BoolVarP(&params.Progress, "progress", "", true, "show the pdf rendering progress on stderr")
	Cmd.Flags().BoolP("gzip", "", false, "compress the export with gzip")
	Cmd.Flags().BoolP("pgzip", "", false, "compress the export with parallel gzip")

	for _, flagName := range []string{"gzip", "pgzip"} {
		flag := Cmd.Flags().Lookup(flagName)
		if err := viper.BindPFlag(fmt.Sprintf("%s.%s", "export", flagName), flag); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
}

func run(ctx context.Context) error {
	view, err := viewFlags.View()
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(params.Format)
	if err != nil {
		return err
	}
	s, err := session.Open(ctx, Config, viewFlags.Table)
	if err != nil {
		return err
	}
	t, err := s.Table(ctx, view, viewFlags.BuildOptions())
	if err != nil {
		return err
	}
	_, err = Export(ctx, t, s.Storage, format, params, &Config.Export)
	return err
}

// Result describes a finished export.
type Result struct {
	ExportID string
	Path     string
	Rows     int
	Bytes    int64
}

// Export writes the table in the format to the destination of the params.
func Export(
	ctx context.Context, t *datatable.Table, st storages.Storager, format export.Format, p *Params,
	cfg *domains.Export,
) (*Result, error) {
	ctx, exportID := utils.WithExportID(ctx)
	res := &Result{ExportID: exportID}

	if p.Clipboard {
		if format != export.FormatMarkdown {
			return nil, errClipboardFormat
		}
		rows, err := export.CopyMarkdown(export.SystemClipboard{}, t)
		if err != nil {
			return nil, err
		}
		res.Rows = rows
		logResult(t, format, res)
		return res, nil
	}

	codec := ioutils.CodecFor(cfg.Gzip, cfg.Pgzip)
	sink, sinkPath, err := openSink(ctx, st, t, format, p, codec)
	if err != nil {
		return nil, err
	}
	res.Path = sinkPath
	counter := ioutils.NewWriter(sink)
	w := ioutils.Compress(counter, codec)

	res.Rows, err = write(ctx, w, t, format, p, cfg.Pdf)
	if err != nil {
		abort(sink, w, sinkPath, exportID, err)
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	res.Bytes = counter.GetCount()
	logResult(t, format, res)
	return res, nil
}

// abort drops a failed export. A storage object is cancelled before the writer chain is
// closed, so the upload never sees the flushed tail. A partially written file is removed.
func abort(sink, w io.WriteCloser, sinkPath, exportID string, cause error) {
	ow, isObject := sink.(*ioutils.ObjectWriter)
	if isObject {
		if err := ow.CloseWithError(cause); err != nil {
			log.Debug().Err(err).Str("ExportID", exportID).Msg("export object aborted")
		}
	}
	if err := w.Close(); err != nil && !isObject {
		log.Warn().Err(err).Str("ExportID", exportID).Msg("cannot close export")
	}
	if _, isFile := sink.(*os.File); isFile {
		if err := os.Remove(sinkPath); err != nil {
			log.Warn().Err(err).Str("ExportID", exportID).Str("Path", sinkPath).Msg("cannot remove partial export")
		}
	}
}

func openSink(
	ctx context.Context, st storages.Storager, t *datatable.Table, format export.Format, p *Params, codec ioutils.Codec,
) (io.WriteCloser, string, error) {
	fileName := export.FileName(t.Name(), format) + codec.Ext()
	switch {
	case p.ToStorage:
		key := path.Join(exportsDir, utils.ExportIDFromCtx(ctx), fileName)
		return ioutils.NewObjectWriter(ctx, st, key), storages.URL(st, key), nil
	case p.Output == "" || p.Output == stdoutPath:
		return ioutils.NopWriteCloser(os.Stdout), stdoutPath, nil
	}
	f, err := os.Create(p.Output)
	if err != nil {
		return nil, "", fmt.Errorf("cannot create output file: %w", err)
	}
	return f, p.Output, nil
}

func write(
	ctx context.Context, w io.Writer, t *datatable.Table, format export.Format, p *Params, cfg domains.PdfConfig,
) (int, error) {
	switch format {
	case export.FormatCSV:
		return export.CSV(w, t)
	case export.FormatMarkdown:
		return export.Markdown(w, t)
	case export.FormatPDF:
		opts := export.PDFOptions{
			MarginMM:    cfg.MarginMM,
			DPI:         cfg.DPI,
			FontScale:   cfg.FontScale,
			JPEGQuality: cfg.JPEGQuality,
			CellChars:   cfg.CellChars,
			AllRows:     p.AllRows,
		}
		if p.Progress {
			bar := pb.New(0)
			bar.SetWriter(os.Stderr)
			bar.Set("prefix", fmt.Sprintf("rendering %s: ", t.Name()))
			bar.Start()
			defer bar.Finish()
			opts.Progress = func(done, total int) {
				bar.SetTotal(int64(total))
				bar.SetCurrent(int64(done))
			}
		}
		res, err := export.PDF(ctx, w, t, opts)
		return res.Rows, err
	}
	return 0, fmt.Errorf("%w \"%s\"", export.ErrUnknownFormat, format)
}

func logResult(t *datatable.Table, format export.Format, res *Result) {
	log.Info().
		Str("TableName", t.Name()).
		Str("Format", string(format)).
		Str("ExportID", res.ExportID).
		Str("Path", res.Path).
		Int("Rows", res.Rows).
		Int64("Bytes", res.Bytes).
		Msg("export completed")
}
