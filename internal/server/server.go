// Package server exposes the introspector over a read-only HTTP API.
//
//	GET /healthz
//	GET /schemas
//	GET /schemas/{schema}/tables[?ordered=true|false]
//	GET /schemas/{schema}/ddl[?constraints=false]
//	GET /schemas/{schema}/tables/{table}
//	GET /schemas/{schema}/tables/{table}/ddl[?constraints=false]
//
// The schema segment "_" means the backend's default schema.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbscribe/internal/config"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/introspect"
	"github.com/koustreak/dbscribe/internal/logger"
	"github.com/koustreak/dbscribe/internal/script"
)

const defaultSchemaSegment = "_"

// Server serves one introspector.
type Server struct {
	in           *introspect.Introspector
	log          *logger.Logger
	queryTimeout time.Duration
	router       chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQueryTimeout bounds every catalog call made for a request.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Server) { s.queryTimeout = d }
}

// New builds the router for in.
func New(in *introspect.Introspector, opts ...Option) *Server {
	s := &Server{in: in, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.timeout)

	r.Get("/healthz", s.health)
	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.listSchemas)
		r.Route("/{schema}", func(r chi.Router) {
			r.Get("/ddl", s.schemaDDL)
			r.Get("/tables", s.listTables)
			r.Get("/tables/{table}", s.inspectTable)
			r.Get("/tables/{table}/ddl", s.tableDDL)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", cfg.Addr).Logger().Info("server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("server stopping")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "backend": s.in.Profile().Name()}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.in.ListSchemas(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	ordered, err := boolQuery(r, "ordered", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var names []string
	if ordered {
		names, err = s.in.ListTablesOrdered(r.Context(), schemaParam(r), true)
	} else {
		names, err = s.in.ListTables(r.Context(), schemaParam(r))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) inspectTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.in.InspectTable(r.Context(), schemaParam(r), chi.URLParam(r, "table"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) tableDDL(w http.ResponseWriter, r *http.Request) {
	constraints, err := boolQuery(r, "constraints", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.in.InspectTable(r.Context(), schemaParam(r), chi.URLParam(r, "table"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	b := s.scriptBuilder(r)
	stmts := []string{b.BuildCreateTable(t, constraints)}
	for _, ix := range t.CreatableIndexes() {
		stmts = append(stmts, b.BuildCreateIndex(ix))
	}
	writeSQL(w, stmts...)
}

func (s *Server) schemaDDL(w http.ResponseWriter, r *http.Request) {
	constraints, err := boolQuery(r, "constraints", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tables, err := s.in.InspectSchema(r.Context(), schemaParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSQL(w, s.scriptBuilder(r).BuildCreateSchemaScript(tables, constraints))
}

func (s *Server) scriptBuilder(r *http.Request) *script.Builder {
	d := s.in.Profile().Dialect
	name := schemaParam(r)
	if name == "" {
		name = d.DefaultSchema
	}
	return script.New(d, script.WithSchema(name), script.WithDefaults())
}

// fail maps err to a status code and writes it as JSON.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]any{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		})
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  errs.KindOf(err).String(),
	})
}

func statusOf(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err), errs.IsConnectionNotOpen(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.DebugWith("request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}

func (s *Server) timeout(next http.Handler) http.Handler {
	if s.queryTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func schemaParam(r *http.Request) string {
	name := chi.URLParam(r, "schema")
	if name == defaultSchemaSegment {
		return ""
	}
	return name
}

func boolQuery(r *http.Request, key string, def bool) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.Wrap(errs.ErrKindInvalidInput, "invalid query parameter "+key, err)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSQL(w http.ResponseWriter, stmts ...string) {
	w.Header().Set("Content-Type", "application/sql; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for i, stmt := range stmts {
		if i > 0 {
			_, _ = w.Write([]byte(";\n\n"))
		}
		_, _ = w.Write([]byte(stmt))
	}
	_, _ = w.Write([]byte(";\n"))
}
