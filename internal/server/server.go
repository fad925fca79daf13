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

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dokuly/datatable/internal/domains"
	"github.com/dokuly/datatable/internal/tabledef"
	"github.com/dokuly/datatable/pkg/datatable"
)

const (
	RequestIDHeader = "X-Request-Id"
	shutdownTimeout = 5 * time.Second
)

var ErrUnknownTable = errors.New("unknown table")

// HTTPError carries the response status of a handler error.
type HTTPError struct {
	Code int
	Err  error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func badRequest(err error) error {
	return &HTTPError{Code: http.StatusBadRequest, Err: err}
}

type Route struct {
	Path    string
	Methods []string
	Handler func(w http.ResponseWriter, r *http.Request) error
}

// Server is a read-only HTTP view of the configured tables. Every request builds its own
// table over the loaded records, so requests never share view state.
type Server struct {
	tables  map[string]*domains.TableDefinition
	data    map[string][]datatable.Record
	layouts *tabledef.LayoutStore
	now     func() time.Time
	router  *mux.Router
}

// New creates the server. layouts may be nil.
func New(defs []*domains.TableDefinition, data map[string][]datatable.Record, layouts *tabledef.LayoutStore) *Server {
	s := &Server{
		tables:  make(map[string]*domains.TableDefinition, len(defs)),
		data:    data,
		layouts: layouts,
		now:     time.Now,
	}
	for _, def := range defs {
		s.tables[def.Name] = def
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) routes() []*Route {
	return []*Route{
		{Path: "/tables", Methods: []string{http.MethodGet}, Handler: s.listTables},
		{Path: "/tables/{name}/rows", Methods: []string{http.MethodGet}, Handler: s.rows},
		{Path: "/tables/{name}/columns/{key}/options", Methods: []string{http.MethodGet}, Handler: s.filterOptions},
		{Path: "/tables/{name}/export.{format:csv|md}", Methods: []string{http.MethodGet}, Handler: s.export},
	}
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware)
	for _, r := range s.routes() {
		router.HandleFunc(r.Path, WithErrorHandle(r.Handler)).Methods(r.Methods...)
	}
	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("Listen", addr).Msg("serving tables")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// WithErrorHandle turns a handler error into a plain text response.
func WithErrorHandle(hndl func(w http.ResponseWriter, r *http.Request) error,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		err := hndl(w, r)
		if err == nil {
			return
		}
		code := http.StatusInternalServerError
		var httpErr *HTTPError
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
		case errors.Is(err, ErrUnknownTable), errors.Is(err, datatable.ErrUnknownColumn):
			code = http.StatusNotFound
		case errors.Is(err, datatable.ErrExportInProgress):
			code = http.StatusConflict
		}
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Str(RequestIDHeader, w.Header().Get(RequestIDHeader)).Msg("request failed")
		}
		http.Error(w, err.Error(), code)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("Method", r.Method).
			Str("Path", r.URL.Path).
			Int("Status", rec.status).
			Dur("Elapsed", time.Since(start)).
			Str("RequestId", w.Header().Get(RequestIDHeader)).
			Msg("request handled")
	})
}
