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

package ioutils

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog/log"
)

// GzipExt is appended to the names of compressed exports.
const GzipExt = ".gz"

var gzipMagic = []byte{0x1f, 0x8b}

// Codec is the compression of an export stream.
type Codec string

const (
	CodecNone  Codec = ""
	CodecGzip  Codec = "gzip"
	CodecPgzip Codec = "pgzip"
)

// CodecFor picks the codec from the export switches. pgzip wins when both are set.
func CodecFor(gzip, pgzip bool) Codec {
	switch {
	case pgzip:
		return CodecPgzip
	case gzip:
		return CodecGzip
	}
	return CodecNone
}

// Ext returns the file name suffix of the codec output.
func (c Codec) Ext() string {
	if c == CodecNone {
		return ""
	}
	return GzipExt
}

type compressWriter struct {
	io.Writer
	enc io.Closer
	dst io.Closer
}

// Compress wraps dst with the codec encoder. Close ends the stream and then closes dst, also
// when ending the stream failed. CodecNone returns dst itself.
func Compress(dst io.WriteCloser, c Codec) io.WriteCloser {
	var enc io.WriteCloser
	switch c {
	case CodecGzip:
		enc = gzip.NewWriter(dst)
	case CodecPgzip:
		enc = pgzip.NewWriter(dst)
	default:
		return dst
	}
	return &compressWriter{Writer: enc, enc: enc, dst: dst}
}

func (w *compressWriter) Close() error {
	var errs []error
	if err := w.enc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cannot finish compressed stream: %w", err))
	}
	if err := w.dst.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cannot close export sink: %w", err))
	}
	return errors.Join(errs...)
}

type decompressReader struct {
	io.Reader
	dec io.Closer
	src io.Closer
}

// Decompress returns the plain content of src. Gzip content is recognised by its magic bytes
// whatever the file is called, anything else is passed through. Closing the result closes src.
func Decompress(src io.ReadCloser, c Codec) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		closeSource(src)
		return nil, fmt.Errorf("cannot read stream header: %w", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return &decompressReader{Reader: br, src: src}, nil
	}

	var dec io.ReadCloser
	if c == CodecPgzip {
		dec, err = pgzip.NewReader(br)
	} else {
		dec, err = gzip.NewReader(br)
	}
	if err != nil {
		closeSource(src)
		return nil, fmt.Errorf("cannot open compressed stream: %w", err)
	}
	return &decompressReader{Reader: dec, dec: dec, src: src}, nil
}

func (r *decompressReader) Close() error {
	var errs []error
	if r.dec != nil {
		if err := r.dec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cannot close compressed stream: %w", err))
		}
	}
	if err := r.src.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cannot close source: %w", err))
	}
	return errors.Join(errs...)
}

func closeSource(src io.Closer) {
	if err := src.Close(); err != nil {
		log.Warn().Err(err).Msg("cannot close source")
	}
}
