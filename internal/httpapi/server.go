// Package httpapi serves resource queries over HTTP.
//
// Each GET /{resource} request compiles its query string into a
// specification, runs it through a Finder and writes the rows as JSON:
//
//	GET /posts?status=published&relations=comments&page=1
//	{"data": [...], "page": {"page": 1, "limit": 25, "total": 2}}
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/logger"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/store"
)

// FingerprintHeader carries the specification fingerprint of a response.
const FingerprintHeader = "X-Sieve-Fingerprint"

// Finder executes a specification against one resource.
type Finder interface {
	Find(ctx context.Context, resource string, spec *queryir.Specification) (*store.Result, error)
}

// Server routes resource queries to a Finder.
type Server struct {
	finder   Finder
	ids      IDGenerator
	l        *logger.Logger
	mux      *chi.Mux
	allowRaw bool
}

// Option configures a Server.
type Option func(*Server)

// WithIDGenerator sets the request id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Server) { s.ids = ids }
}

// WithLogger sets the access logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.l = l }
}

// WithRawExpressions allows {expr} filters. They are written into SQL
// verbatim, so only enable them for trusted callers. Off by default.
func WithRawExpressions(allow bool) Option {
	return func(s *Server) { s.allowRaw = allow }
}

// New creates a server over finder.
func New(finder Finder, opts ...Option) *Server {
	s := &Server{
		finder: finder,
		ids:    UUIDGenerator{},
		l:      logger.GetLogger("http"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux = chi.NewRouter()
	s.mux.Use(s.requestID, s.accessLog)
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Get("/{resource}", s.handleFind)
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "", "no route for "+r.URL.Path)
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.l.Info().Str("listenAddr", addr).Msg("Start query http server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")

	spec, err := grammar.Assemble(firstValues(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if raw := queryir.RawExpressions(spec); len(raw) > 0 && !s.allowRaw {
		writeError(w, http.StatusBadRequest, "RAW_EXPRESSION_DISABLED", "",
			fmt.Sprintf("raw expression {%s} is not allowed", raw[0]))
		return
	}

	if inspection := queryir.Inspect(spec); !inspection.Clean {
		s.l.Debug().
			Str("request_id", RequestIDFrom(r.Context())).
			Strs("warnings", inspection.Warnings).
			Msg("permissive query")
	}

	if fp, err := queryir.Fingerprint(spec); err == nil {
		w.Header().Set(FingerprintHeader, fp)
	}

	result, err := s.finder.Find(r.Context(), resource, spec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// firstValues keeps the first value of every query key.
func firstValues(r *http.Request) queryir.Params {
	query := r.URL.Query()
	params := make(queryir.Params, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
